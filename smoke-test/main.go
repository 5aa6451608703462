//go:build smokebin

// In-process smoke test: issues a simulate and a dry certificate against a
// temp-file device, then exercises the verification API end to end without
// binding a real port.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/oxygenesis/wipecert/internal/app/http/handler"
	"github.com/oxygenesis/wipecert/internal/app/http/middleware"
	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/evidence"
	"github.com/oxygenesis/wipecert/internal/service"
	"github.com/oxygenesis/wipecert/internal/storage"
	"github.com/oxygenesis/wipecert/internal/version"
	"github.com/oxygenesis/wipecert/pkg/id"
)

// must fails the smoke test immediately with a helpful message.
func must(ok bool, msg string, args ...any) {
	if !ok {
		log.Fatalf("SMOKE FAIL: "+msg, args...)
	}
}

func main() {
	dev, err := os.CreateTemp("", "wipecert-smoke-dev")
	must(err == nil, "temp device: %v", err)
	defer os.Remove(dev.Name())
	_, err = dev.Write(bytes.Repeat([]byte{0xA5}, 8192))
	must(err == nil, "writing temp device: %v", err)
	dev.Close()

	signer, err := crypto.GenerateSigner("ecdsa")
	must(err == nil, "generating key: %v", err)
	defer signer.Close()

	collector, err := evidence.New(evidence.DefaultWindow)
	must(err == nil, "collector: %v", err)

	repo := storage.NewMemory()
	certifier := service.New(collector, repo, id.UUIDv4{}, service.UTCClock{}, version.Version, 10*time.Second)

	simBundle, err := certifier.Certify(context.Background(), service.Request{
		DevicePath: dev.Name(),
		DeviceID:   dev.Name(),
		WipeMethod: "overwrite-1-pass",
		Mode:       domain.ModeSimulate,
	}, signer)
	must(err == nil, "simulate certify: %v", err)

	dryBundle, err := certifier.Certify(context.Background(), service.Request{
		DevicePath: dev.Name(),
		DeviceID:   dev.Name(),
		WipeMethod: "overwrite-1-pass",
		Mode:       domain.ModeDry,
	}, signer)
	must(err == nil, "dry certify: %v", err)
	must(dryBundle.Certificate.EvidenceHash == domain.SentinelEvidence, "dry evidence not sentinel")

	pub, keyID, err := crypto.ParsePublicKeyPEM([]byte(signer.PublicPEM()))
	must(err == nil, "parsing public key: %v", err)
	verifier := crypto.NewVerifier(pub, keyID)

	h := handler.NewCertificate(repo, verifier)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", h.Health)
	mux.HandleFunc("/v1/certificates", h.Certificates)
	mux.HandleFunc("/v1/certificates/", h.CertificateByID)
	mux.HandleFunc("/v1/verify", h.Verify)

	ts := httptest.NewServer(middleware.Recovery(mux))
	defer ts.Close()

	do := func(method, path string, body any) (int, []byte) {
		var rdr io.Reader
		if body != nil {
			raw, _ := json.Marshal(body)
			rdr = bytes.NewReader(raw)
		}
		req, _ := http.NewRequest(method, ts.URL+path, rdr)
		resp, err := ts.Client().Do(req)
		must(err == nil, "%s %s: %v", method, path, err)
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, data
	}

	code, _ := do(http.MethodGet, "/v1/health", nil)
	must(code == http.StatusOK, "health: %d", code)

	code, _ = do(http.MethodGet, "/v1/certificates/"+simBundle.Certificate.ID, nil)
	must(code == http.StatusOK, "get certificate: %d", code)

	code, data := do(http.MethodPost, "/v1/verify", simBundle)
	must(code == http.StatusOK, "verify: %d", code)
	var report domain.VerificationReport
	must(json.Unmarshal(data, &report) == nil, "report decode")
	must(report.Status == domain.StatusValid, "simulate bundle not valid: %s (%s)", report.Status, report.Reason)

	// Tamper and expect a signature mismatch.
	tampered := *simBundle
	tampered.Certificate.WipeMethod = "shred (1 pass)"
	_, data = do(http.MethodPost, "/v1/verify", tampered)
	must(json.Unmarshal(data, &report) == nil, "report decode")
	must(report.Status == domain.StatusSignatureMismatch, "tampered bundle: %s", report.Status)

	log.Println("SMOKE OK")
}
