// Package service orchestrates one certification session: evidence capture,
// certificate assembly, signing and registry persistence.
package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oxygenesis/wipecert/internal/crypto"
	"github.com/oxygenesis/wipecert/internal/domain"
	"github.com/oxygenesis/wipecert/internal/evidence"
	"github.com/oxygenesis/wipecert/internal/storage"
	"github.com/oxygenesis/wipecert/internal/wipe"
)

// Clock abstracts the timestamp source for deterministic tests.
type Clock interface{ Now() time.Time }

// IDGenerator abstracts certificate ID creation.
type IDGenerator interface{ New() string }

// UTCClock is the production clock.
type UTCClock struct{}

func (UTCClock) Now() time.Time { return time.Now().UTC() }

// Request describes one device certification session. WipeMethod and Mode
// are already-decided facts; the service never chooses a wipe technique.
type Request struct {
	DevicePath string
	DeviceID   string
	WipeMethod string
	Mode       domain.ExecutionMode
	Operator   string
	Hostname   string

	// Executor runs the destructive operation for live mode. Nil is valid
	// for simulate and dry runs only.
	Executor wipe.Executor
	// Inspector optionally supplies device metadata for the certificate.
	Inspector wipe.Inspector
	// CapturePre requests a pre-operation digest of the sample window.
	CapturePre bool
}

// Certifier issues signed wipe certificates. The signer is passed per call
// so key acquisition stays scoped to the caller.
type Certifier struct {
	collector   *evidence.Collector
	repo        storage.Repository
	ids         IDGenerator
	clock       Clock
	toolVersion string
	readTimeout time.Duration
}

func New(collector *evidence.Collector, repo storage.Repository, ids IDGenerator, clock Clock, toolVersion string, readTimeout time.Duration) *Certifier {
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	return &Certifier{
		collector:   collector,
		repo:        repo,
		ids:         ids,
		clock:       clock,
		toolVersion: toolVersion,
		readTimeout: readTimeout,
	}
}

// Certify runs one session: optional pre-hash, wipe execution (live only),
// evidence capture, build, sign, persist. Any failure aborts the run; no
// partial certificate is emitted or stored.
func (c *Certifier) Certify(ctx context.Context, req Request, signer domain.Signer) (*domain.Bundle, error) {
	mode, err := domain.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	if mode == domain.ModeLive && req.Executor == nil {
		return nil, fmt.Errorf("%w: live mode requires a wipe executor", domain.ErrInconsistentEvidence)
	}

	var device *domain.DeviceInfo
	if req.Inspector != nil {
		device, err = req.Inspector.Inspect(ctx, req.DevicePath)
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", req.DevicePath, err)
		}
	}

	var preHash string
	if req.CapturePre && mode != domain.ModeDry {
		preHash, err = c.collectSample(ctx, req.DevicePath)
		if err != nil {
			return nil, err
		}
	}

	if mode == domain.ModeLive {
		res, err := req.Executor.Wipe(ctx, req.DevicePath)
		if err != nil {
			return nil, fmt.Errorf("wipe execution: %w", err)
		}
		if !res.DidExecute || !res.Success {
			return nil, fmt.Errorf("%w: live mode but executor reports executed=%t success=%t",
				domain.ErrInconsistentEvidence, res.DidExecute, res.Success)
		}
	}

	evidenceHash := domain.SentinelEvidence
	if mode != domain.ModeDry {
		evidenceHash, err = c.collectSample(ctx, req.DevicePath)
		if err != nil {
			return nil, err
		}
	}

	hostname := req.Hostname
	if hostname == "" {
		h, herr := os.Hostname()
		if herr != nil || h == "" {
			// Certificates always name the issuing host somehow.
			h = fmt.Sprintf("uid:%d", os.Getuid())
		}
		hostname = h
	}

	cert, _, err := domain.Build(domain.BuildParams{
		ID:            c.ids.New(),
		DeviceID:      req.DeviceID,
		Device:        device,
		WipeMethod:    req.WipeMethod,
		ExecutionMode: mode,
		EvidenceHash:  evidenceHash,
		PreHash:       preHash,
		Sample:        c.collector.Window(),
		Timestamp:     c.clock.Now(),
		Hostname:      hostname,
		Operator:      req.Operator,
		ToolVersion:   c.toolVersion,
	})
	if err != nil {
		return nil, err
	}

	bundle, err := crypto.SignCertificate(cert, signer)
	if err != nil {
		return nil, err
	}

	if c.repo != nil {
		if err := c.repo.Save(bundle); err != nil {
			return nil, fmt.Errorf("persisting certificate %s: %w", cert.ID, err)
		}
	}
	return bundle, nil
}

// CertifyFleet certifies many devices in parallel, one session each. The
// signer is shared read-only across sessions. The first failure cancels the
// remaining sessions.
func (c *Certifier) CertifyFleet(ctx context.Context, reqs []Request, signer domain.Signer) ([]*domain.Bundle, error) {
	bundles := make([]*domain.Bundle, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			b, err := c.Certify(ctx, req, signer)
			if err != nil {
				return fmt.Errorf("device %s: %w", req.DeviceID, err)
			}
			bundles[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundles, nil
}

func (c *Certifier) collectSample(ctx context.Context, path string) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()
	return c.collector.CollectPath(rctx, path)
}
