// Package probes implements file-based readiness and liveness probes for processes without an HTTP server.
package probes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
)

// Probes writes the readiness file once and refreshes the liveness file periodically.
type Probes struct {
	cfg    config.ProbesConfig
	logger *slog.Logger
}

func New(cfg config.ProbesConfig, logger *slog.Logger) *Probes {
	return &Probes{cfg: cfg, logger: logger.With("component", "probes")}
}

// MarkReady creates the readiness file.
func (p *Probes) MarkReady() error {
	if err := touch(p.cfg.ReadinessFileName); err != nil {
		return fmt.Errorf("failed to write readiness file: %w", err)
	}
	return nil
}

// RunLiveness touches the liveness file every interval until ctx is done, then removes both files.
func (p *Probes) RunLiveness(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.LivenessInterval)
	defer ticker.Stop()
	defer p.cleanup()

	if err := touch(p.cfg.LivenessFileName); err != nil {
		p.logger.Warn("failed to write liveness file", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := touch(p.cfg.LivenessFileName); err != nil {
				p.logger.Warn("failed to write liveness file", "error", err)
			}
		}
	}
}

func (p *Probes) cleanup() {
	for _, name := range []string{p.cfg.ReadinessFileName, p.cfg.LivenessFileName} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove probe file", "file", name, "error", err)
		}
	}
}

// touch creates the file or updates its modification time.
func touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(name, now, now); err == nil {
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	return f.Close()
}
