package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oxygenesis/wipecert/internal/domain"
)

const (
	postDigest = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	preDigest  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func liveCert(t *testing.T) *domain.Certificate {
	t.Helper()
	cert, _, err := domain.Build(domain.BuildParams{
		ID:            "11111111-2222-3333-4444-555555555555",
		DeviceID:      "/dev/sdb",
		WipeMethod:    "ATA Secure Erase",
		ExecutionMode: domain.ModeLive,
		EvidenceHash:  postDigest,
		PreHash:       preDigest,
		Sample:        domain.SampleWindow{Offset: 0, Length: 4096},
		Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ToolVersion:   "0.3.0",
	})
	require.NoError(t, err)
	return cert
}

func signerAndVerifier(t *testing.T, alg string) (domain.Signer, *Verifier) {
	t.Helper()
	s, err := GenerateSigner(alg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	pub, keyID, err := ParsePublicKeyPEM([]byte(s.PublicPEM()))
	require.NoError(t, err)
	return s, NewVerifier(pub, keyID)
}

func TestVerify_EndToEndValid(t *testing.T) {
	for _, alg := range []string{"ecdsa", "ed25519"} {
		t.Run(alg, func(t *testing.T) {
			signer, verifier := signerAndVerifier(t, alg)
			bundle, err := SignCertificate(liveCert(t), signer)
			require.NoError(t, err)

			report := verifier.Verify(bundle)
			require.Equal(t, domain.StatusValid, report.Status, report.Reason)
			require.True(t, report.Status.Trusted())
			require.Equal(t, verifier.KeyID(), report.KeyID)
		})
	}
}

func TestVerify_RSA(t *testing.T) {
	if testing.Short() {
		t.Skip("rsa keygen is slow")
	}
	signer, verifier := signerAndVerifier(t, "rsa")
	bundle, err := SignCertificate(liveCert(t), signer)
	require.NoError(t, err)
	require.Equal(t, domain.StatusValid, verifier.Verify(bundle).Status)
}

func TestVerify_ForeignKeyIDRejected(t *testing.T) {
	signer, verifier := signerAndVerifier(t, "ecdsa")
	bundle, err := SignCertificate(liveCert(t), signer)
	require.NoError(t, err)

	// The signature still verifies under the supplied key; attribution to
	// another key must not be reported as Valid.
	bundle.Signature.KeyID = "ffffffffffffffff"
	report := verifier.Verify(bundle)
	require.Equal(t, domain.StatusSignatureMismatch, report.Status)
	require.Contains(t, report.Reason, "ffffffffffffffff")
}

func TestVerify_AnySingleFieldMutationRejected(t *testing.T) {
	signer, verifier := signerAndVerifier(t, "ecdsa")
	bundle, err := SignCertificate(liveCert(t), signer)
	require.NoError(t, err)

	mutations := map[string]func(*domain.Bundle){
		"device_id":     func(b *domain.Bundle) { b.Certificate.DeviceID = "/dev/sdc" },
		"wipe_method":   func(b *domain.Bundle) { b.Certificate.WipeMethod = "shred (1 pass)" },
		"evidence_hash": func(b *domain.Bundle) { b.Certificate.EvidenceHash = preDigest },
		"pre_hash":      func(b *domain.Bundle) { b.Certificate.PreHash = postDigest },
		"timestamp":     func(b *domain.Bundle) { b.Certificate.Timestamp = "2024-01-02T00:00:00Z" },
		"operator":      func(b *domain.Bundle) { b.Certificate.Operator = "mallory" },
		"sample_window": func(b *domain.Bundle) { b.Certificate.Sample.Length = 1 },
		"execution_mode": func(b *domain.Bundle) {
			b.Certificate.ExecutionMode = domain.ModeSimulate
			b.Certificate.DidExecute = false
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			tampered := *bundle
			mutate(&tampered)
			report := verifier.Verify(&tampered)
			require.Equal(t, domain.StatusSignatureMismatch, report.Status)
			require.False(t, report.Status.Trusted())
		})
	}
}

func TestVerify_WrongPublicKey(t *testing.T) {
	signer, _ := signerAndVerifier(t, "ecdsa")
	_, otherVerifier := signerAndVerifier(t, "ecdsa")

	bundle, err := SignCertificate(liveCert(t), signer)
	require.NoError(t, err)

	// repeated trials: no key-confusion false accept
	for i := 0; i < 8; i++ {
		require.Equal(t, domain.StatusSignatureMismatch, otherVerifier.Verify(bundle).Status)
	}
}

func TestVerify_WrongKeyType(t *testing.T) {
	ecdsaSigner, _ := signerAndVerifier(t, "ecdsa")
	_, edVerifier := signerAndVerifier(t, "ed25519")

	bundle, err := SignCertificate(liveCert(t), ecdsaSigner)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSignatureMismatch, edVerifier.Verify(bundle).Status)
}

func TestVerify_Malformed(t *testing.T) {
	signer, verifier := signerAndVerifier(t, "ecdsa")
	bundle, err := SignCertificate(liveCert(t), signer)
	require.NoError(t, err)

	cases := map[string]func(*domain.Bundle){
		"missing device_id":  func(b *domain.Bundle) { b.Certificate.DeviceID = "" },
		"unknown schema":     func(b *domain.Bundle) { b.Certificate.SchemaVersion = "99" },
		"bad timestamp":      func(b *domain.Bundle) { b.Certificate.Timestamp = "January 1st" },
		"unknown mode":       func(b *domain.Bundle) { b.Certificate.ExecutionMode = "paranoid" },
		"missing signature":  func(b *domain.Bundle) { b.Signature.Value = nil },
		"missing algorithm":  func(b *domain.Bundle) { b.Signature.Algorithm = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			broken := *bundle
			mutate(&broken)
			report := verifier.Verify(&broken)
			require.Equal(t, domain.StatusMalformedCertificate, report.Status)
			require.NotEmpty(t, report.Reason)
		})
	}

	require.Equal(t, domain.StatusMalformedCertificate, verifier.Verify(nil).Status)
}

func TestVerify_InconsistentClaim(t *testing.T) {
	signer, verifier := signerAndVerifier(t, "ecdsa")

	// A correctly signed certificate whose authored claim is internally
	// inconsistent: simulate mode asserting the wipe executed. The signature
	// is genuine, so only the consistency re-check can catch it.
	cert := liveCert(t)
	cert.ExecutionMode = domain.ModeSimulate
	cert.DidExecute = true

	bundle, err := SignCertificate(cert, signer)
	require.NoError(t, err)

	report := verifier.Verify(bundle)
	require.Equal(t, domain.StatusInconsistentClaim, report.Status)
	require.False(t, report.Status.Trusted())
}

func TestVerify_DrySentinelValid(t *testing.T) {
	signer, verifier := signerAndVerifier(t, "ecdsa")
	cert, _, err := domain.Build(domain.BuildParams{
		ID:            "dry-1",
		DeviceID:      "/dev/sdb",
		WipeMethod:    "overwrite-3-pass",
		ExecutionMode: domain.ModeDry,
		EvidenceHash:  domain.SentinelEvidence,
		Sample:        domain.SampleWindow{Offset: 0, Length: 4096},
		Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ToolVersion:   "0.3.0",
	})
	require.NoError(t, err)

	bundle, err := SignCertificate(cert, signer)
	require.NoError(t, err)
	require.Equal(t, domain.StatusValid, verifier.Verify(bundle).Status)
}
