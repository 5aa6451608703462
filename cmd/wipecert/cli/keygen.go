package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/crypto"
)

var (
	keygenAlgorithm string
	keygenOut       string
	keygenPubOut    string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key pair",
	Long: `Generate an asymmetric signing key pair and write the private key
(PKCS#8 PEM, mode 0600) and public key (SPKI PEM) to disk.

Algorithms: ecdsa (P-256, default), rsa (3072 bit), ed25519.`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenAlgorithm, "algorithm", "a", "ecdsa", "signature algorithm")
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "wipecert-key.pem", "private key output path")
	keygenCmd.Flags().StringVar(&keygenPubOut, "pub", "wipecert-pub.pem", "public key output path")
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	signer, err := crypto.GenerateSigner(keygenAlgorithm)
	if err != nil {
		return err
	}
	defer signer.Close()

	if err := crypto.SaveSignerKey(signer, keygenOut); err != nil {
		return err
	}
	if err := os.WriteFile(keygenPubOut, []byte(signer.PublicPEM()), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	color.Green("key pair generated")
	fmt.Printf("  algorithm: %s\n", signer.Algorithm())
	fmt.Printf("  key id:    %s\n", signer.KeyID())
	fmt.Printf("  private:   %s\n", keygenOut)
	fmt.Printf("  public:    %s\n", keygenPubOut)
	return nil
}
