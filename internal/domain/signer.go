package domain

// Signer is the cryptographic primitive used to sign canonical certificate
// bytes. Implementations hash-then-sign with a collision-resistant digest.
// Close releases the private key material (zeroized where the key type
// allows); a closed signer fails all further Sign calls.
type Signer interface {
	Sign(payload []byte) ([]byte, error)
	Algorithm() string // "ecdsa-p256-sha256", "rsa-pkcs1-sha256" or "ed25519"
	KeyID() string
	PublicPEM() string
	Close()
}
