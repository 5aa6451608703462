package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// Verifier validates signed certificate bundles against one public key. It
// is stateless and safe for concurrent use.
type Verifier struct {
	pub   crypto.PublicKey
	keyID string
}

func NewVerifier(pub crypto.PublicKey, keyID string) *Verifier {
	return &Verifier{pub: pub, keyID: keyID}
}

// LoadVerifier builds a Verifier from a PEM public key file.
func LoadVerifier(path string) (*Verifier, error) {
	pub, keyID, err := LoadPublicKey(path)
	if err != nil {
		return nil, err
	}
	return NewVerifier(pub, keyID), nil
}

// KeyID returns the fingerprint of the verifier's public key.
func (v *Verifier) KeyID() string { return v.keyID }

// Verify classifies a bundle. The canonical bytes are re-derived from the
// certificate's structured fields; a pre-serialized blob in the input is
// never trusted. Order of checks: schema, then signature, then the
// mode/evidence consistency claim, which is re-checked even though the
// signature covers those fields, because a signature proves authorship, not
// that the authored claim is internally consistent. Any failure is a hard
// reject; there is no verified-with-warnings state.
func (v *Verifier) Verify(b *domain.Bundle) domain.VerificationReport {
	if b == nil {
		return reject(domain.StatusMalformedCertificate, "no bundle supplied")
	}
	if err := b.Certificate.Validate(); err != nil {
		return reject(domain.StatusMalformedCertificate, err.Error())
	}
	if len(b.Signature.Value) == 0 || b.Signature.Algorithm == "" {
		return reject(domain.StatusMalformedCertificate, "missing detached signature")
	}
	if b.Signature.KeyID != "" && b.Signature.KeyID != v.keyID {
		return reject(domain.StatusSignatureMismatch, "signature names key "+b.Signature.KeyID+", verification key is "+v.keyID)
	}

	canon, err := b.Certificate.Canonical()
	if err != nil {
		return reject(domain.StatusMalformedCertificate, err.Error())
	}
	if !v.verifyRaw(b.Signature.Algorithm, canon, b.Signature.Value) {
		return reject(domain.StatusSignatureMismatch, "signature does not verify over the canonical certificate bytes")
	}

	if err := b.Certificate.CheckConsistency(); err != nil {
		return reject(domain.StatusInconsistentClaim, err.Error())
	}

	return domain.VerificationReport{Status: domain.StatusValid, KeyID: v.keyID}
}

func reject(status domain.VerificationStatus, reason string) domain.VerificationReport {
	return domain.VerificationReport{Status: status, Reason: reason}
}

// verifyRaw dispatches on the envelope algorithm and the key type. A wrong
// key type or unknown algorithm verifies as false, never panics.
func (v *Verifier) verifyRaw(algorithm string, payload, sig []byte) bool {
	switch algorithm {
	case AlgECDSAP256:
		pub, ok := v.pub.(*ecdsa.PublicKey)
		if !ok {
			return false
		}
		h := sha256.Sum256(payload)
		return ecdsa.VerifyASN1(pub, h[:], sig)
	case AlgRSAPKCS1:
		pub, ok := v.pub.(*rsa.PublicKey)
		if !ok {
			return false
		}
		h := sha256.Sum256(payload)
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig) == nil
	case AlgEd25519:
		pub, ok := v.pub.(ed25519.PublicKey)
		if !ok {
			return false
		}
		return ed25519.Verify(pub, payload, sig)
	}
	return false
}
