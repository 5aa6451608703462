package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/oxygenesis/wipecert/internal/domain"
)

var ecdsaGenerateKey = ecdsa.GenerateKey
var marshalPKIXPublicKey = x509.MarshalPKIXPublicKey

// ECDSASigner signs with ECDSA P-256, SHA-256 hash-then-sign, ASN.1 output.
type ECDSASigner struct {
	priv   *ecdsa.PrivateKey
	pubPEM string
	keyID  string
}

func NewECDSASigner() (*ECDSASigner, error) {
	k, err := ecdsaGenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return newECDSASigner(k)
}

func newECDSASigner(k *ecdsa.PrivateKey) (*ECDSASigner, error) {
	if k.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: ecdsa curve %s, want P-256", domain.ErrKeyUnavailable, k.Curve.Params().Name)
	}
	der, err := marshalPKIXPublicKey(&k.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &ECDSASigner{priv: k, pubPEM: string(pemBytes), keyID: fingerprint(der)}, nil
}

func (s *ECDSASigner) Sign(payload []byte) ([]byte, error) {
	if s.priv == nil {
		return nil, fmt.Errorf("%w: signer closed", domain.ErrKeyUnavailable)
	}
	h := sha256.Sum256(payload)
	sig, err := ecdsa.SignASN1(rand.Reader, s.priv, h[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailure, err)
	}
	return sig, nil
}

func (s *ECDSASigner) Algorithm() string { return AlgECDSAP256 }
func (s *ECDSASigner) KeyID() string     { return s.keyID }
func (s *ECDSASigner) PublicPEM() string { return s.pubPEM }

// Close zeroizes the scalar and drops the key.
func (s *ECDSASigner) Close() {
	if s.priv != nil {
		s.priv.D.SetInt64(0)
		s.priv = nil
	}
}

var _ domain.Signer = (*ECDSASigner)(nil)
