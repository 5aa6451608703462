package domain

import (
	"fmt"
	"time"
)

// Validate performs the schema and field-presence checks on a certificate,
// independent of any signature. The signing CLI runs it before signing a
// caller-supplied document; the verifier runs it to classify malformed input.
func (c *Certificate) Validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil certificate", ErrInvalidField)
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidField)
	case c.SchemaVersion != SchemaVersion:
		return fmt.Errorf("%w: unknown schema_version %q", ErrInvalidField, c.SchemaVersion)
	case c.DeviceID == "":
		return fmt.Errorf("%w: missing device_id", ErrInvalidField)
	case c.WipeMethod == "":
		return fmt.Errorf("%w: missing wipe_method", ErrInvalidField)
	case c.EvidenceHash == "":
		return fmt.Errorf("%w: missing evidence_hash", ErrInvalidField)
	case c.ToolVersion == "":
		return fmt.Errorf("%w: missing tool_version", ErrInvalidField)
	}
	if _, err := ParseMode(string(c.ExecutionMode)); err != nil {
		return err
	}
	if _, err := time.Parse(TimestampFormat, c.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp %q not in fixed UTC format", ErrInvalidField, c.Timestamp)
	}
	if c.PreHash != "" && !isHexDigest(c.PreHash) {
		return fmt.Errorf("%w: pre_hash is not a hex digest", ErrInvalidField)
	}
	return nil
}

// CheckConsistency re-checks the mode/evidence invariant on a parsed
// certificate, using its explicit did_execute and evidence_authenticity
// claims.
func (c *Certificate) CheckConsistency() error {
	return CheckModeConsistency(c.ExecutionMode, c.DidExecute, c.EvidenceAuthenticity, c.EvidenceHash)
}
