package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/pem"
	"fmt"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// MinRSABits is the smallest RSA modulus the signer accepts.
const MinRSABits = 3072

var rsaGenerateKey = rsa.GenerateKey

// RSASigner signs with RSA PKCS#1 v1.5 over SHA-256. Keys below 3072 bits
// are rejected at construction.
type RSASigner struct {
	priv   *rsa.PrivateKey
	pubPEM string
	keyID  string
}

func NewRSASigner(bits int) (*RSASigner, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("%w: rsa key %d bits, minimum %d", domain.ErrKeyUnavailable, bits, MinRSABits)
	}
	k, err := rsaGenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return newRSASigner(k)
}

func newRSASigner(k *rsa.PrivateKey) (*RSASigner, error) {
	if k.N.BitLen() < MinRSABits {
		return nil, fmt.Errorf("%w: rsa key %d bits, minimum %d", domain.ErrKeyUnavailable, k.N.BitLen(), MinRSABits)
	}
	der, err := marshalPKIXPublicKey(&k.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &RSASigner{priv: k, pubPEM: string(pemBytes), keyID: fingerprint(der)}, nil
}

func (s *RSASigner) Sign(payload []byte) ([]byte, error) {
	if s.priv == nil {
		return nil, fmt.Errorf("%w: signer closed", domain.ErrKeyUnavailable)
	}
	h := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.priv, crypto.SHA256, h[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigningFailure, err)
	}
	return sig, nil
}

func (s *RSASigner) Algorithm() string { return AlgRSAPKCS1 }
func (s *RSASigner) KeyID() string     { return s.keyID }
func (s *RSASigner) PublicPEM() string { return s.pubPEM }

// Close zeroizes the private exponent and prime factors and drops the key.
func (s *RSASigner) Close() {
	if s.priv != nil {
		s.priv.D.SetInt64(0)
		for _, p := range s.priv.Primes {
			p.SetInt64(0)
		}
		s.priv = nil
	}
}

var _ domain.Signer = (*RSASigner)(nil)
