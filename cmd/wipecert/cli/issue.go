package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/evidence"
	"github.com/oxygenesis/wipecert/internal/service"
	"github.com/oxygenesis/wipecert/internal/storage"
	"github.com/oxygenesis/wipecert/internal/version"
	"github.com/oxygenesis/wipecert/internal/wipe"
	"github.com/oxygenesis/wipecert/pkg/id"
)

var (
	issueDevice   string
	issueDeviceID string
	issueMethod   string
	issueMode     string
	issueOperator string
	issueKeyPath  string
	issueOut      string
	issuePre      bool
	issueNoStore  bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a signed wipe certificate for a device",
	Long: `Issue a certificate for a device whose sanitization outcome is already
decided. The CLI never invokes wipe commands itself, so only the simulate and
dry execution modes are available here; live certificates are issued by the
wipe tooling through the certification API with a real wipe executor.`,
	Args: cobra.NoArgs,
	RunE: runIssue,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.Flags().StringVarP(&issueDevice, "device", "d", "", "device path to sample (required)")
	issueCmd.Flags().StringVar(&issueDeviceID, "device-id", "", "device identifier (defaults to the device path)")
	issueCmd.Flags().StringVarP(&issueMethod, "method", "m", "", "wipe method description (required)")
	issueCmd.Flags().StringVar(&issueMode, "mode", "dry", "execution mode: simulate or dry")
	issueCmd.Flags().StringVar(&issueOperator, "operator", "", "operator name recorded in the certificate")
	issueCmd.Flags().StringVarP(&issueKeyPath, "key", "k", "", "private signing key (defaults to config key_path)")
	issueCmd.Flags().StringVarP(&issueOut, "out", "o", "", "bundle output path (defaults to <id>.cert.json)")
	issueCmd.Flags().BoolVar(&issuePre, "pre", false, "capture a pre-operation sample digest")
	issueCmd.Flags().BoolVar(&issueNoStore, "no-store", false, "skip the certificate registry")
	_ = issueCmd.MarkFlagRequired("device")
	_ = issueCmd.MarkFlagRequired("method")
}

func runIssue(cmd *cobra.Command, _ []string) error {
	mode, err := domain.ParseMode(issueMode)
	if err != nil {
		return err
	}
	if mode == domain.ModeLive {
		return fmt.Errorf("%w: the CLI cannot execute wipes; use simulate or dry", domain.ErrInconsistentEvidence)
	}

	keyPath := issueKeyPath
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

	collector, err := evidence.New(domain.SampleWindow{Offset: cfg.Sample.Offset, Length: cfg.Sample.Length})
	if err != nil {
		return err
	}

	var repo storage.Repository
	if issueNoStore {
		repo = nil
	} else {
		repo, err = storage.OpenSQLite(cfg.RegistryPath)
		if err != nil {
			return err
		}
		defer repo.Close()
	}

	deviceID := issueDeviceID
	if deviceID == "" {
		deviceID = issueDevice
	}

	certifier := service.New(collector, repo, id.UUIDv4{}, service.UTCClock{}, version.Version,
		time.Duration(cfg.ReadTimeoutSec)*time.Second)

	bundle, err := certifier.Certify(cmd.Context(), service.Request{
		DevicePath: issueDevice,
		DeviceID:   deviceID,
		WipeMethod: issueMethod,
		Mode:       mode,
		Operator:   issueOperator,
		Executor:   wipe.Nop{ReportedMethod: issueMethod},
		CapturePre: issuePre,
	}, signer)
	if err != nil {
		return err
	}

	out := issueOut
	if out == "" {
		out = bundle.Certificate.ID + ".cert.json"
	}
	if err := writeBundle(bundle, out); err != nil {
		return err
	}

	if mode == domain.ModeDry {
		color.Yellow("DRY RUN certificate issued (non-authoritative)")
	} else {
		color.Green("certificate issued")
	}
	fmt.Printf("  id:       %s\n", bundle.Certificate.ID)
	fmt.Printf("  device:   %s\n", bundle.Certificate.DeviceID)
	fmt.Printf("  mode:     %s\n", bundle.Certificate.ExecutionMode)
	fmt.Printf("  evidence: %s\n", bundle.Certificate.EvidenceHash)
	fmt.Printf("  bundle:   %s\n", out)
	return nil
}

func writeBundle(b *domain.Bundle, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}
