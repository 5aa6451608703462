package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
)

var verifyPubPath string

var verifyCmd = &cobra.Command{
	Use:   "verify <bundle-file>",
	Short: "Verify a signed certificate bundle",
	Long: `Verify a certificate+signature bundle against a public key. The canonical
bytes are re-derived from the certificate fields and the mode/evidence claim
is re-checked independently of the signature.

Exit code 0 means Valid; any rejection exits 1 with the specific reason.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&verifyPubPath, "pub", "p", "", "public key (defaults to config public_key_path)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	pubPath := verifyPubPath
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

	report := verifyBundleFile(verifier, args[0])

	if jsonOut {
		_ = json.NewEncoder(os.Stdout).Encode(report)
	} else if report.Status == domain.StatusValid {
		color.Green("VALID")
		fmt.Printf("  key id: %s\n", report.KeyID)
	} else {
		color.Red("REJECTED: %s", report.Status)
		fmt.Printf("  reason: %s\n", report.Reason)
	}

	if report.Status != domain.StatusValid {
		return fmt.Errorf("certificate rejected: %s", report.Status)
	}
	return nil
}

// verifyBundleFile maps file-level problems onto the malformed
// classification; the verifying party always gets a definite result.
func verifyBundleFile(verifier *crypto.Verifier, path string) domain.VerificationReport {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.VerificationReport{
			Status: domain.StatusMalformedCertificate,
			Reason: "unreadable bundle: " + err.Error(),
		}
	}
	var bundle domain.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return domain.VerificationReport{
			Status: domain.StatusMalformedCertificate,
			Reason: "undecodable bundle: " + err.Error(),
		}
	}
	return verifier.Verify(&bundle)
}
