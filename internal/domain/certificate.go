package domain

import (
	"fmt"
	"time"
)

// SchemaVersion identifies the certificate document schema.
const SchemaVersion = "1"

// TimestampFormat is the fixed wire format for certificate timestamps:
// RFC 3339, UTC, second precision.
const TimestampFormat = "2006-01-02T15:04:05Z"

// DeviceInfo carries optional device metadata captured by the caller
// (model, serial, size). This subsystem never probes the device itself.
type DeviceInfo struct {
	Path      string `json:"path,omitempty"`
	Model     string `json:"model,omitempty"`
	Serial    string `json:"serial,omitempty"`
	SizeBytes uint64 `json:"size_bytes,omitempty"`
	Transport string `json:"transport,omitempty"`
}

// SampleWindow records which device region the evidence hash covers.
type SampleWindow struct {
	Offset int64 `json:"offset"`
	Length int   `json:"length"`
}

// Certificate is the unsigned sanitization attestation. It is immutable once
// signed; corrections are issued as a new certificate, never as a patch.
type Certificate struct {
	ID                   string               `json:"id"`
	SchemaVersion        string               `json:"schema_version"`
	DeviceID             string               `json:"device_id"`
	Device               *DeviceInfo          `json:"device,omitempty"`
	WipeMethod           string               `json:"wipe_method"`
	ExecutionMode        ExecutionMode        `json:"execution_mode"`
	DidExecute           bool                 `json:"did_execute"`
	EvidenceAuthenticity EvidenceAuthenticity `json:"evidence_authenticity"`
	EvidenceHash         string               `json:"evidence_hash"`
	PreHash              string               `json:"pre_hash,omitempty"`
	Sample               SampleWindow         `json:"sample"`
	Timestamp            string               `json:"timestamp"`
	Hostname             string               `json:"hostname,omitempty"`
	Operator             string               `json:"operator,omitempty"`
	ToolVersion          string               `json:"tool_version"`
}

// Signature is the detached signature envelope. KeyID lets a verifier select
// the matching public key; Value is the raw signature, base64 on the wire.
type Signature struct {
	Algorithm string `json:"algorithm"`
	KeyID     string `json:"key_id"`
	Value     []byte `json:"value"`
}

// Bundle pairs a certificate with its detached signature in one container.
// The signer returns a Bundle rather than mutating the certificate, so an
// unsigned object can never be mistaken for a signed one.
type Bundle struct {
	Certificate Certificate `json:"certificate"`
	Signature   Signature   `json:"signature"`
}

// BuildParams is the full field set the builder assembles from. All facts
// (chosen method, mode, evidence digests) are decided by the caller; the
// builder performs pure validation and assembly.
type BuildParams struct {
	ID            string
	DeviceID      string
	Device        *DeviceInfo
	WipeMethod    string
	ExecutionMode ExecutionMode
	EvidenceHash  string
	PreHash       string
	Sample        SampleWindow
	Timestamp     time.Time
	Hostname      string
	Operator      string
	ToolVersion   string
}

// Build assembles and validates an unsigned certificate together with its
// canonical byte encoding. It fails fast: no partial certificate is returned.
func Build(p BuildParams) (*Certificate, []byte, error) {
	if p.ID == "" {
		return nil, nil, fmt.Errorf("%w: id", ErrInvalidField)
	}
	if p.DeviceID == "" {
		return nil, nil, fmt.Errorf("%w: device_id", ErrInvalidField)
	}
	if p.WipeMethod == "" {
		return nil, nil, fmt.Errorf("%w: wipe_method", ErrInvalidField)
	}
	if p.ToolVersion == "" {
		return nil, nil, fmt.Errorf("%w: tool_version", ErrInvalidField)
	}
	if p.Timestamp.IsZero() {
		return nil, nil, fmt.Errorf("%w: timestamp", ErrInvalidField)
	}
	mode, err := ParseMode(string(p.ExecutionMode))
	if err != nil {
		return nil, nil, err
	}
	if err := CheckModeConsistency(mode, mode.DidExecute(), mode.Authenticity(), p.EvidenceHash); err != nil {
		return nil, nil, err
	}
	if p.PreHash != "" && !isHexDigest(p.PreHash) {
		return nil, nil, fmt.Errorf("%w: pre_hash is not a hex digest", ErrInvalidField)
	}

	cert := &Certificate{
		ID:                   p.ID,
		SchemaVersion:        SchemaVersion,
		DeviceID:             p.DeviceID,
		Device:               p.Device,
		WipeMethod:           p.WipeMethod,
		ExecutionMode:        mode,
		DidExecute:           mode.DidExecute(),
		EvidenceAuthenticity: mode.Authenticity(),
		EvidenceHash:         p.EvidenceHash,
		PreHash:              p.PreHash,
		Sample:               p.Sample,
		Timestamp:            p.Timestamp.UTC().Format(TimestampFormat),
		Hostname:             p.Hostname,
		Operator:             p.Operator,
		ToolVersion:          p.ToolVersion,
	}
	canon, err := cert.Canonical()
	if err != nil {
		return nil, nil, err
	}
	return cert, canon, nil
}
