package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

const testDigest = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
const testPre = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func validParams() BuildParams {
	return BuildParams{
		ID:            "cert-1",
		DeviceID:      "/dev/sdb",
		WipeMethod:    "ATA Secure Erase",
		ExecutionMode: ModeLive,
		EvidenceHash:  testDigest,
		PreHash:       testPre,
		Sample:        SampleWindow{Offset: 0, Length: 4096},
		Timestamp:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ToolVersion:   "0.3.0",
	}
}

func TestBuild_Live(t *testing.T) {
	cert, canon, err := Build(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if cert.Timestamp != "2024-01-01T00:00:00Z" {
		t.Fatalf("timestamp %q", cert.Timestamp)
	}
	if !cert.DidExecute || cert.EvidenceAuthenticity != EvidenceReal {
		t.Fatalf("live cert flags: did_execute=%t auth=%s", cert.DidExecute, cert.EvidenceAuthenticity)
	}
	if len(canon) == 0 {
		t.Fatal("empty canonical bytes")
	}
}

func TestBuild_DryRequiresSentinel(t *testing.T) {
	p := validParams()
	p.ExecutionMode = ModeDry
	// real digest under dry must be rejected before signing is attempted
	if _, _, err := Build(p); !errors.Is(err, ErrInconsistentEvidence) {
		t.Fatalf("got %v, want ErrInconsistentEvidence", err)
	}

	p.EvidenceHash = SentinelEvidence
	p.PreHash = ""
	cert, _, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}
	if cert.DidExecute || cert.EvidenceAuthenticity != EvidenceSentinel {
		t.Fatalf("dry cert flags: did_execute=%t auth=%s", cert.DidExecute, cert.EvidenceAuthenticity)
	}
}

func TestBuild_SimulateRejectsSentinel(t *testing.T) {
	p := validParams()
	p.ExecutionMode = ModeSimulate
	p.EvidenceHash = SentinelEvidence
	if _, _, err := Build(p); !errors.Is(err, ErrInconsistentEvidence) {
		t.Fatalf("got %v, want ErrInconsistentEvidence", err)
	}
}

func TestBuild_InvalidFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BuildParams)
	}{
		{"empty id", func(p *BuildParams) { p.ID = "" }},
		{"empty device_id", func(p *BuildParams) { p.DeviceID = "" }},
		{"empty wipe_method", func(p *BuildParams) { p.WipeMethod = "" }},
		{"empty tool_version", func(p *BuildParams) { p.ToolVersion = "" }},
		{"zero timestamp", func(p *BuildParams) { p.Timestamp = time.Time{} }},
		{"bad pre_hash", func(p *BuildParams) { p.PreHash = "not-hex" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			if _, _, err := Build(p); !errors.Is(err, ErrInvalidField) {
				t.Fatalf("got %v, want ErrInvalidField", err)
			}
		})
	}
}

func TestBuild_UnknownMode(t *testing.T) {
	p := validParams()
	p.ExecutionMode = "paranoid"
	if _, _, err := Build(p); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("got %v, want ErrInvalidField", err)
	}
}

func TestCanonical_Deterministic(t *testing.T) {
	a, canonA, err := Build(validParams())
	if err != nil {
		t.Fatal(err)
	}
	_, canonB, err := Build(validParams())
	if err != nil {
		t.Fatal(err)
	}
	if string(canonA) != string(canonB) {
		t.Fatal("two builds of identical fields produced different canonical bytes")
	}

	// JSON round trip must re-derive the identical canonical bytes.
	doc, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var back Certificate
	if err := json.Unmarshal(doc, &back); err != nil {
		t.Fatal(err)
	}
	canonC, err := back.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	if string(canonA) != string(canonC) {
		t.Fatal("canonical bytes changed across document round trip")
	}
}

func TestCanonical_CoversDeviceMetadata(t *testing.T) {
	p := validParams()
	a, canonA, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}
	p.Device = &DeviceInfo{Model: "EVO 870", Serial: "S123", SizeBytes: 500107862016}
	_, canonB, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(canonA) == string(canonB) {
		t.Fatal("device metadata not covered by canonical encoding")
	}
	if !strings.Contains(string(canonA), a.EvidenceHash) {
		t.Fatal("evidence hash missing from canonical bytes")
	}
}
