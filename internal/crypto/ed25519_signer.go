package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"

	"github.com/oxygenesis/wipecert/internal/domain"
)

var ed25519GenerateKey = ed25519.GenerateKey

// Ed25519Signer signs with Ed25519. The scheme hashes internally, so the
// canonical bytes are passed to the primitive as-is.
type Ed25519Signer struct {
	priv   ed25519.PrivateKey
	pubPEM string
	keyID  string
}

func NewEd25519Signer() (*Ed25519Signer, error) {
	_, k, err := ed25519GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return newEd25519Signer(k)
}

func newEd25519Signer(k ed25519.PrivateKey) (*Ed25519Signer, error) {
	der, err := marshalPKIXPublicKey(k.Public())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &Ed25519Signer{priv: k, pubPEM: string(pemBytes), keyID: fingerprint(der)}, nil
}

func (s *Ed25519Signer) Sign(payload []byte) ([]byte, error) {
	if s.priv == nil {
		return nil, fmt.Errorf("%w: signer closed", domain.ErrKeyUnavailable)
	}
	return ed25519.Sign(s.priv, payload), nil
}

func (s *Ed25519Signer) Algorithm() string { return AlgEd25519 }
func (s *Ed25519Signer) KeyID() string     { return s.keyID }
func (s *Ed25519Signer) PublicPEM() string { return s.pubPEM }

// Close zeroizes the seed and drops the key.
func (s *Ed25519Signer) Close() {
	for i := range s.priv {
		s.priv[i] = 0
	}
	s.priv = nil
}

var _ domain.Signer = (*Ed25519Signer)(nil)
