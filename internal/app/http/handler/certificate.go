package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/storage"
)

// Certificate serves the read-only registry and verification endpoints.
type Certificate struct {
	repo     storage.Repository
	verifier *crypto.Verifier
}

func NewCertificate(repo storage.Repository, verifier *crypto.Verifier) *Certificate {
	return &Certificate{repo: repo, verifier: verifier}
}

func (h *Certificate) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Certificates handles GET /v1/certificates.
func (h *Certificate) Certificates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	bundles, err := h.repo.List()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

// CertificateByID handles GET /v1/certificates/{id}.
func (h *Certificate) CertificateByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/certificates/")
	if id == "" || strings.Contains(id, "/") || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := h.repo.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Verify handles POST /v1/verify. The body is a signed bundle; the response
// is the verification report. Malformed input is a classified rejection,
// never a 5xx: remote verifying parties need a stable, actionable result.
func (h *Certificate) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	defer r.Body.Close()

	var bundle domain.Bundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeJSON(w, http.StatusOK, domain.VerificationReport{
			Status: domain.StatusMalformedCertificate,
			Reason: "undecodable bundle: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, h.verifier.Verify(&bundle))
}

// helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
