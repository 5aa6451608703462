// Package crypto implements the signing and verification primitives for
// wipe certificates: hash-then-sign over the canonical certificate bytes
// with scoped private-key handles that are zeroized on release.
package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// Signature algorithm identifiers carried in the detached signature envelope.
const (
	AlgECDSAP256 = "ecdsa-p256-sha256"
	AlgRSAPKCS1  = "rsa-pkcs1-sha256"
	AlgEd25519   = "ed25519"
)

// fingerprint derives a short key identifier from the SPKI DER encoding.
func fingerprint(spkiDER []byte) string {
	sum := sha256.Sum256(spkiDER)
	return hex.EncodeToString(sum[:8])
}

// GenerateSigner creates a fresh signer for the named algorithm. Accepted
// names are the Alg* constants and the short aliases "ecdsa", "rsa" and
// "ed25519".
func GenerateSigner(algorithm string) (domain.Signer, error) {
	switch algorithm {
	case AlgECDSAP256, "ecdsa":
		return NewECDSASigner()
	case AlgRSAPKCS1, "rsa":
		return NewRSASigner(MinRSABits)
	case AlgEd25519:
		return NewEd25519Signer()
	}
	return nil, fmt.Errorf("%w: unknown algorithm %q", domain.ErrKeyUnavailable, algorithm)
}

// LoadSigner reads a PEM private key from disk and wraps it in the matching
// signer. PKCS#8, SEC 1 (EC) and PKCS#1 (RSA) encodings are accepted.
func LoadSigner(path string) (domain.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: %s is not PEM", domain.ErrKeyUnavailable, path)
	}
	key, err := parsePrivateKey(block)
	if err != nil {
		return nil, err
	}
	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		return newECDSASigner(k)
	case *rsa.PrivateKey:
		return newRSASigner(k)
	case ed25519.PrivateKey:
		return newEd25519Signer(k)
	}
	return nil, fmt.Errorf("%w: unsupported key type in %s", domain.ErrKeyUnavailable, path)
}

func parsePrivateKey(block *pem.Block) (any, error) {
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unparseable private key", domain.ErrKeyUnavailable)
}

// SaveSignerKey writes the signer's freshly generated private key to path in
// PKCS#8 PEM with 0600 permissions. Only the concrete signer types produced
// by GenerateSigner are supported.
func SaveSignerKey(s domain.Signer, path string) error {
	var key any
	switch v := s.(type) {
	case *ECDSASigner:
		key = v.priv
	case *RSASigner:
		key = v.priv
	case *Ed25519Signer:
		key = v.priv
	default:
		return fmt.Errorf("%w: cannot export key material", domain.ErrKeyUnavailable)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, pemBytes, 0600); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return nil
}

// LoadPublicKey reads a PEM SubjectPublicKeyInfo public key and returns it
// together with its fingerprint key ID.
func LoadPublicKey(path string) (crypto.PublicKey, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return ParsePublicKeyPEM(data)
}

// ParsePublicKeyPEM parses a PEM SPKI public key.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, string, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, "", fmt.Errorf("%w: not a PEM public key", domain.ErrKeyUnavailable)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return pub, fingerprint(block.Bytes), nil
}
