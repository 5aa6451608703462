package domain

import "fmt"

// ExecutionMode declares the destructiveness class of a certification run.
type ExecutionMode string

const (
	// ModeLive means the destructive operation ran and the evidence hash
	// reflects real post-wipe device state.
	ModeLive ExecutionMode = "live"
	// ModeSimulate means no destructive operation ran, but the evidence hash
	// was computed from the (unmodified) device. A simulate certificate is
	// distinguishable from live only via DidExecute.
	ModeSimulate ExecutionMode = "simulate"
	// ModeDry means no destructive operation ran and no device was read; the
	// evidence hash carries the reserved sentinel.
	ModeDry ExecutionMode = "dry"
)

// EvidenceAuthenticity states whether the evidence hash is a real device
// digest or the reserved sentinel.
type EvidenceAuthenticity string

const (
	EvidenceReal     EvidenceAuthenticity = "real"
	EvidenceSentinel EvidenceAuthenticity = "sentinel"
)

// SentinelEvidence is the reserved evidence value for dry runs. It is
// deliberately not valid hex so it can never collide with a real digest.
const SentinelEvidence = "DRY-RUN-NO-SAMPLE"

// ParseMode maps a string onto an ExecutionMode.
func ParseMode(s string) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case ModeLive, ModeSimulate, ModeDry:
		return ExecutionMode(s), nil
	}
	return "", fmt.Errorf("%w: execution_mode %q", ErrInvalidField, s)
}

// DidExecute reports whether the mode implies a destructive operation ran.
func (m ExecutionMode) DidExecute() bool { return m == ModeLive }

// Authenticity reports the evidence class the mode requires.
func (m ExecutionMode) Authenticity() EvidenceAuthenticity {
	if m == ModeDry {
		return EvidenceSentinel
	}
	return EvidenceReal
}

// CheckModeConsistency is the mode guard. It rejects any certificate whose
// execution-mode claims disagree with the evidence actually attached: a dry
// run must carry the sentinel and nothing else, live and simulate must carry
// a real digest, and the explicit did_execute / evidence_authenticity fields
// must match what the mode implies. Both the builder and the verifier apply
// it; a signature proves authorship, not internal consistency.
func CheckModeConsistency(mode ExecutionMode, didExecute bool, auth EvidenceAuthenticity, evidenceHash string) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	if didExecute != mode.DidExecute() {
		return fmt.Errorf("%w: mode %s with did_execute=%t", ErrInconsistentEvidence, mode, didExecute)
	}
	if auth != mode.Authenticity() {
		return fmt.Errorf("%w: mode %s with evidence_authenticity=%s", ErrInconsistentEvidence, mode, auth)
	}
	switch mode {
	case ModeDry:
		if evidenceHash != SentinelEvidence {
			return fmt.Errorf("%w: dry run carries a non-sentinel evidence hash", ErrInconsistentEvidence)
		}
	default:
		if evidenceHash == SentinelEvidence {
			return fmt.Errorf("%w: mode %s carries the dry-run sentinel", ErrInconsistentEvidence, mode)
		}
		if !isHexDigest(evidenceHash) {
			return fmt.Errorf("%w: mode %s requires a hex evidence digest", ErrInconsistentEvidence, mode)
		}
	}
	return nil
}

// isHexDigest reports whether s looks like a lowercase hex SHA-256 digest.
func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
