package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	httpApp "github.com/oxygenesis/wipecert/internal/app/http"
	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/storage"
)

var (
	serveAddr    string
	servePubPath string
	serveTest    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the certificate registry and verification API",
	Long: `Serve the read-only registry and verification endpoints:

  GET  /v1/health
  GET  /v1/certificates
  GET  /v1/certificates/{id}
  POST /v1/verify`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to config listen_addr)")
	serveCmd.Flags().StringVarP(&servePubPath, "pub", "p", "", "public key (defaults to config public_key_path)")
	serveCmd.Flags().BoolVar(&serveTest, "t", false, "test mode: build server only")
	_ = serveCmd.Flags().MarkHidden("t")
}

func runServe(cmd *cobra.Command, _ []string) error {
	pubPath := servePubPath
	if pubPath == "" {
		pubPath = cfg.PublicKeyPath
	}
	if pubPath == "" {
		return fmt.Errorf("%w: no public key configured (set --pub or public_key_path)", domain.ErrKeyUnavailable)
	}
	verifier, err := crypto.LoadVerifier(pubPath)
	if err != nil {
		return err
	}

	repo, err := storage.OpenSQLite(cfg.RegistryPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	return httpApp.Start(cmd.Context(), addr, repo, verifier, serveTest)
}
