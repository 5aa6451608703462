package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
)

var (
	signKeyPath string
	signOut     string
)

var signCmd = &cobra.Command{
	Use:   "sign <certificate-file>",
	Short: "Sign an unsigned certificate document",
	Long: `Sign an unsigned certificate JSON document with a private key and write
the certificate+signature bundle. The document is validated (schema, fields,
mode/evidence consistency) before any key material is touched; signing an
inconsistent claim is refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&signKeyPath, "key", "k", "", "private signing key (defaults to config key_path)")
	signCmd.Flags().StringVarP(&signOut, "out", "o", "", "bundle output path (defaults to <input>.signed.json)")
}

func runSign(cmd *cobra.Command, args []string) error {
	certPath := args[0]
	data, err := os.ReadFile(certPath)
	if err != nil {
		return fmt.Errorf("reading certificate: %w", err)
	}

	var cert domain.Certificate
	if err := json.Unmarshal(data, &cert); err != nil {
		return fmt.Errorf("%w: undecodable certificate document: %v", domain.ErrInvalidField, err)
	}
	if err := cert.Validate(); err != nil {
		return err
	}
	if err := cert.CheckConsistency(); err != nil {
		return err
	}

	keyPath := signKeyPath
	if keyPath == "" {
		keyPath = cfg.KeyPath
	}
	if keyPath == "" {
		return fmt.Errorf("%w: no signing key configured (set --key or key_path)", domain.ErrKeyUnavailable)
	}
	signer, err := crypto.LoadSigner(keyPath)
	if err != nil {
		return err
	}
	defer signer.Close()

	bundle, err := crypto.SignCertificate(&cert, signer)
	if err != nil {
		return err
	}

	out := signOut
	if out == "" {
		out = strings.TrimSuffix(certPath, ".json") + ".signed.json"
	}
	if err := writeBundle(bundle, out); err != nil {
		return err
	}

	color.Green("certificate signed")
	fmt.Printf("  algorithm: %s\n", bundle.Signature.Algorithm)
	fmt.Printf("  key id:    %s\n", bundle.Signature.KeyID)
	fmt.Printf("  bundle:    %s\n", out)
	return nil
}
