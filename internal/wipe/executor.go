// Package wipe defines the collaborator interfaces for device sanitization.
// The certificate core never invokes wipe commands itself; it consumes the
// already-decided (method, executed, success) facts an Executor reports.
package wipe

import (
	"context"
	"time"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// Result is the outcome tuple an executor hands to the certification flow.
type Result struct {
	Method     string
	DidExecute bool
	Success    bool
	Started    time.Time
	Finished   time.Time
	Detail     string
}

// Executor is the polymorphic wipe capability. Implementations exist per
// device class (ATA secure erase, NVMe format, multi-pass overwrite) and
// live outside this module; the core only sees the Result.
type Executor interface {
	Method() string
	Wipe(ctx context.Context, devicePath string) (*Result, error)
}

// Inspector supplies optional device metadata (model, serial, size) for
// embedding in the certificate. Device enumeration is out of scope here, so
// the production implementation also lives with the wipe tooling.
type Inspector interface {
	Inspect(ctx context.Context, devicePath string) (*domain.DeviceInfo, error)
}

// Nop is the executor used for simulate and dry runs: it never touches the
// device and reports DidExecute=false.
type Nop struct {
	ReportedMethod string
}

func (n Nop) Method() string { return n.ReportedMethod }

func (n Nop) Wipe(_ context.Context, _ string) (*Result, error) {
	now := time.Now().UTC()
	return &Result{
		Method:     n.ReportedMethod,
		DidExecute: false,
		Success:    true,
		Started:    now,
		Finished:   now,
		Detail:     "no destructive operation performed",
	}, nil
}

var _ Executor = Nop{}
