package crypto

import (
	"fmt"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// SignCertificate computes a detached signature over the certificate's
// canonical bytes and returns the bundle pairing both. The certificate is
// copied, never mutated, so the caller's unsigned object stays unsigned.
func SignCertificate(cert *domain.Certificate, signer domain.Signer) (*domain.Bundle, error) {
	canon, err := cert.Canonical()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(canon)
	if err != nil {
		return nil, fmt.Errorf("signing certificate %s: %w", cert.ID, err)
	}
	return &domain.Bundle{
		Certificate: *cert,
		Signature: domain.Signature{
			Algorithm: signer.Algorithm(),
			KeyID:     signer.KeyID(),
			Value:     sig,
		},
	}, nil
}
