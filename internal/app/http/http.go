package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oxygenesis/wipecert/internal/app/http/handler"
	"github.com/oxygenesis/wipecert/internal/app/http/middleware"
	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/storage"
)

func defaultListenAndServe(srv *http.Server) error { return srv.ListenAndServe() }

var listenAndServe = defaultListenAndServe

// Start assembles the verification server. If test==true it returns without
// serving (for coverage/CI).
func Start(ctx context.Context, addr string, repo storage.Repository, verifier *crypto.Verifier, test bool) error {
	srv := buildServer(addr, repo, verifier)
	if test {
		return nil
	}
	slog.Info("listening", "addr", addr)
	return listenAndServe(srv)
}

// buildServer is kept package-private so tests can exercise routes without
// binding a port.
func buildServer(addr string, repo storage.Repository, verifier *crypto.Verifier) *http.Server {
	h := handler.NewCertificate(repo, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", h.Health)
	mux.HandleFunc("/v1/certificates", h.Certificates)      // GET -> list
	mux.HandleFunc("/v1/certificates/", h.CertificateByID)  // GET -> get by id
	mux.HandleFunc("/v1/verify", h.Verify)                  // POST bundle -> report

	root := middleware.Recovery(mux)

	return &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
