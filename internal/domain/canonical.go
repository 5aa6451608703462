package domain

import (
	"encoding/json"
	"fmt"
)

// canonicalForm is the fixed-order shadow of Certificate used for signing.
// Every field is always present (no omitempty), so two certificates with the
// same logical values marshal to byte-identical JSON regardless of how they
// were populated or transported. The signature never covers itself.
type canonicalForm struct {
	ID                   string               `json:"id"`
	SchemaVersion        string               `json:"schema_version"`
	DeviceID             string               `json:"device_id"`
	DevicePath           string               `json:"device_path"`
	DeviceModel          string               `json:"device_model"`
	DeviceSerial         string               `json:"device_serial"`
	DeviceSizeBytes      uint64               `json:"device_size_bytes"`
	DeviceTransport      string               `json:"device_transport"`
	WipeMethod           string               `json:"wipe_method"`
	ExecutionMode        ExecutionMode        `json:"execution_mode"`
	DidExecute           bool                 `json:"did_execute"`
	EvidenceAuthenticity EvidenceAuthenticity `json:"evidence_authenticity"`
	EvidenceHash         string               `json:"evidence_hash"`
	PreHash              string               `json:"pre_hash"`
	SampleOffset         int64                `json:"sample_offset"`
	SampleLength         int                  `json:"sample_length"`
	Timestamp            string               `json:"timestamp"`
	Hostname             string               `json:"hostname"`
	Operator             string               `json:"operator"`
	ToolVersion          string               `json:"tool_version"`
}

// Canonical returns the deterministic byte encoding the signature covers.
// It is re-derived from field values on both the signing and verifying side;
// a pre-serialized blob is never trusted.
func (c *Certificate) Canonical() ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil certificate", ErrInvalidField)
	}
	cf := canonicalForm{
		ID:                   c.ID,
		SchemaVersion:        c.SchemaVersion,
		DeviceID:             c.DeviceID,
		WipeMethod:           c.WipeMethod,
		ExecutionMode:        c.ExecutionMode,
		DidExecute:           c.DidExecute,
		EvidenceAuthenticity: c.EvidenceAuthenticity,
		EvidenceHash:         c.EvidenceHash,
		PreHash:              c.PreHash,
		SampleOffset:         c.Sample.Offset,
		SampleLength:         c.Sample.Length,
		Timestamp:            c.Timestamp,
		Hostname:             c.Hostname,
		Operator:             c.Operator,
		ToolVersion:          c.ToolVersion,
	}
	if c.Device != nil {
		cf.DevicePath = c.Device.Path
		cf.DeviceModel = c.Device.Model
		cf.DeviceSerial = c.Device.Serial
		cf.DeviceSizeBytes = c.Device.SizeBytes
		cf.DeviceTransport = c.Device.Transport
	}
	return json.Marshal(cf)
}
