package domain

// VerificationStatus classifies the outcome of verifying a bundle. There is
// no partial-trust state: anything other than StatusValid is a hard reject.
type VerificationStatus string

const (
	StatusValid                VerificationStatus = "valid"
	StatusSignatureMismatch    VerificationStatus = "signature_mismatch"
	StatusMalformedCertificate VerificationStatus = "malformed_certificate"
	StatusInconsistentClaim    VerificationStatus = "inconsistent_claim"
)

// Trusted reports the binary verdict audit consumers act on.
func (s VerificationStatus) Trusted() bool { return s == StatusValid }

// VerificationReport is the verifier's full answer: the classification plus
// the specific rejection reason for audit trails.
type VerificationReport struct {
	Status VerificationStatus `json:"status"`
	Reason string             `json:"reason,omitempty"`
	KeyID  string             `json:"key_id,omitempty"`
}
