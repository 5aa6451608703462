// Package evidence captures the evidentiary hash that feeds a wipe
// certificate: a SHA-256 digest of one fixed sample window of the device.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// DefaultWindow is the sample region hashed when no policy is configured:
// the first 4096 bytes of the device.
var DefaultWindow = domain.SampleWindow{Offset: 0, Length: 4096}

// Collector reads exactly one deterministic sample window and digests it.
// The read is read-only and safe on live, in-use devices.
type Collector struct {
	window domain.SampleWindow
}

func New(window domain.SampleWindow) (*Collector, error) {
	if window.Length <= 0 || window.Offset < 0 {
		return nil, fmt.Errorf("%w: sample window offset=%d length=%d", domain.ErrInvalidField, window.Offset, window.Length)
	}
	return &Collector{window: window}, nil
}

// Window returns the configured sample window for embedding in certificates.
func (c *Collector) Window() domain.SampleWindow { return c.window }

// Collect reads the sample window from r and returns its hex SHA-256. A
// failed or short read surfaces as ErrEvidenceUnavailable; it is never
// replaced with a sentinel. The context bounds the read: on cancellation or
// timeout the result is likewise ErrEvidenceUnavailable.
func (c *Collector) Collect(ctx context.Context, r io.ReaderAt) (string, error) {
	type readResult struct {
		digest string
		err    error
	}
	done := make(chan readResult, 1)
	go func() {
		buf := make([]byte, c.window.Length)
		n, err := r.ReadAt(buf, c.window.Offset)
		if err != nil && err != io.EOF {
			done <- readResult{err: err}
			return
		}
		if n < c.window.Length {
			done <- readResult{err: fmt.Errorf("short read: %d of %d bytes", n, c.window.Length)}
			return
		}
		sum := sha256.Sum256(buf)
		done <- readResult{digest: hex.EncodeToString(sum[:])}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrEvidenceUnavailable, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrEvidenceUnavailable, res.err)
		}
		return res.digest, nil
	}
}

// CollectPath opens the device node read-only and collects from it.
func (c *Collector) CollectPath(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEvidenceUnavailable, err)
	}
	defer f.Close()
	return c.Collect(ctx, f)
}
