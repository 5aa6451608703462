package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxygenesis/wipecert/internal/domain"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCLI_KeygenIssueVerifyFlow(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.pem")
	pubPath := filepath.Join(dir, "pub.pem")
	cfgFile := filepath.Join(dir, "wipecert.yaml")
	devPath := filepath.Join(dir, "dev")
	bundlePath := filepath.Join(dir, "out.cert.json")

	require.NoError(t, os.WriteFile(cfgFile, []byte("registry_path: "+filepath.Join(dir, "registry.db")+"\n"), 0644))
	require.NoError(t, os.WriteFile(devPath, bytes.Repeat([]byte{0xA5}, 8192), 0644))

	require.NoError(t, runCLI(t, "--config", cfgFile, "keygen", "-a", "ecdsa", "-o", keyPath, "--pub", pubPath))
	require.FileExists(t, keyPath)
	require.FileExists(t, pubPath)

	require.NoError(t, runCLI(t, "--config", cfgFile, "issue",
		"-d", devPath, "-m", "overwrite-1-pass", "--mode", "simulate", "-k", keyPath, "-o", bundlePath))
	require.FileExists(t, bundlePath)

	require.NoError(t, runCLI(t, "--config", cfgFile, "verify", bundlePath, "-p", pubPath))

	// registry now holds the certificate
	require.NoError(t, runCLI(t, "--config", cfgFile, "list"))
}

func TestCLI_VerifyRejectsTamperedBundle(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.pem")
	pubPath := filepath.Join(dir, "pub.pem")
	cfgFile := filepath.Join(dir, "wipecert.yaml")
	devPath := filepath.Join(dir, "dev")
	bundlePath := filepath.Join(dir, "out.cert.json")

	require.NoError(t, os.WriteFile(cfgFile, []byte("registry_path: "+filepath.Join(dir, "registry.db")+"\n"), 0644))
	require.NoError(t, os.WriteFile(devPath, bytes.Repeat([]byte{7}, 8192), 0644))

	require.NoError(t, runCLI(t, "--config", cfgFile, "keygen", "-a", "ed25519", "-o", keyPath, "--pub", pubPath))
	require.NoError(t, runCLI(t, "--config", cfgFile, "issue",
		"-d", devPath, "-m", "overwrite-1-pass", "--mode", "dry", "-k", keyPath, "-o", bundlePath))

	// tamper with the signed method claim
	raw, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	var bundle domain.Bundle
	require.NoError(t, json.Unmarshal(raw, &bundle))
	bundle.Certificate.WipeMethod = "shred (1 pass)"
	raw, err = json.Marshal(bundle)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bundlePath, raw, 0644))

	err = runCLI(t, "--config", cfgFile, "verify", bundlePath, "-p", pubPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rejected")
}

func TestCLI_IssueRefusesLiveMode(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "wipecert.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("registry_path: "+filepath.Join(dir, "registry.db")+"\n"), 0644))

	err := runCLI(t, "--config", cfgFile, "issue",
		"-d", "/dev/sdb", "-m", "ATA Secure Erase", "--mode", "live", "-k", "unused.pem")
	require.ErrorIs(t, err, domain.ErrInconsistentEvidence)
}

func TestCLI_SignValidatesBeforeTouchingKeys(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.pem")
	pubPath := filepath.Join(dir, "pub.pem")
	cfgFile := filepath.Join(dir, "wipecert.yaml")
	certPath := filepath.Join(dir, "cert.json")
	outPath := filepath.Join(dir, "cert.signed.json")

	require.NoError(t, os.WriteFile(cfgFile, []byte("registry_path: "+filepath.Join(dir, "registry.db")+"\n"), 0644))
	require.NoError(t, runCLI(t, "--config", cfgFile, "keygen", "-a", "ecdsa", "-o", keyPath, "--pub", pubPath))

	cert := domain.Certificate{
		ID:                   "cli-sign-1",
		SchemaVersion:        domain.SchemaVersion,
		DeviceID:             "/dev/sdb",
		WipeMethod:           "NVMe Cryptographic Erase",
		ExecutionMode:        domain.ModeDry,
		DidExecute:           false,
		EvidenceAuthenticity: domain.EvidenceSentinel,
		EvidenceHash:         domain.SentinelEvidence,
		Sample:               domain.SampleWindow{Offset: 0, Length: 4096},
		Timestamp:            "2024-01-01T00:00:00Z",
		ToolVersion:          "0.3.0",
	}
	raw, err := json.Marshal(cert)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(certPath, raw, 0644))

	require.NoError(t, runCLI(t, "--config", cfgFile, "sign", certPath, "-k", keyPath, "-o", outPath))
	require.NoError(t, runCLI(t, "--config", cfgFile, "verify", outPath, "-p", pubPath))

	// a dry certificate carrying a real digest must be refused before signing
	cert.EvidenceHash = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	raw, err = json.Marshal(cert)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(certPath, raw, 0644))
	err = runCLI(t, "--config", cfgFile, "sign", certPath, "-k", keyPath, "-o", outPath)
	require.ErrorIs(t, err, domain.ErrInconsistentEvidence)
}
