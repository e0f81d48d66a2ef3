// Package export converts a composed workbook to PDF through an external
// converter process. A primary headless LibreOffice backend is tried first;
// hosts that carry a platform-specific secondary converter fall back to it.
// Conversion is the only slow step of the pipeline, so invocations are gated
// by a converter-slot semaphore and bounded by a hard timeout that kills the
// converter's whole process group.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	otdoc "github.com/sasamuel24/otdoc"
)

// Backend is one way of turning an xlsx file into a PDF file.
type Backend interface {
	Name() string

	// Convert writes the PDF for workbookPath into outDir and returns its
	// path. The context carries the per-attempt deadline.
	Convert(ctx context.Context, workbookPath, outDir string) (string, error)
}

// Exporter drives the available backends in order.
type Exporter struct {
	backends []Backend
	slots    *semaphore.Weighted
	cfg      otdoc.Config
	log      *zap.Logger
}

// New probes the host for converter backends and builds an exporter around
// whatever it finds. Probing happens once, at startup, not per export.
func New(opts ...otdoc.Option) *Exporter {
	cfg := otdoc.Apply(opts...)
	return newExporter(Detect(cfg.Logger), cfg)
}

// NewWithBackends builds an exporter over an explicit backend list. Used by
// tests and by callers that manage converter discovery themselves.
func NewWithBackends(backends []Backend, opts ...otdoc.Option) *Exporter {
	return newExporter(backends, otdoc.Apply(opts...))
}

func newExporter(backends []Backend, cfg otdoc.Config) *Exporter {
	return &Exporter{
		backends: backends,
		slots:    semaphore.NewWeighted(int64(cfg.ConverterSlots)),
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// Backends lists the configured backend names in probe order.
func (e *Exporter) Backends() []string {
	names := make([]string, len(e.backends))
	for i, b := range e.backends {
		names[i] = b.Name()
	}
	return names
}

// Export converts the workbook bytes to PDF. Every configured backend gets
// one attempt under its own timeout; the first valid PDF wins. When none
// succeeds the result is a *otdoc.ExportUnavailableError and no bytes —
// partial or corrupt output is never returned.
func (e *Exporter) Export(ctx context.Context, workbook []byte) ([]byte, error) {
	if len(e.backends) == 0 {
		return nil, &otdoc.ExportUnavailableError{}
	}
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, otdoc.NewOpError("Export", err)
	}
	defer e.slots.Release(1)

	dir, err := os.MkdirTemp("", "otdoc-export-")
	if err != nil {
		return nil, otdoc.NewOpError("Export", err)
	}
	defer os.RemoveAll(dir)

	workbookPath := filepath.Join(dir, "orden.xlsx")
	if err := os.WriteFile(workbookPath, workbook, 0o600); err != nil {
		return nil, otdoc.NewOpError("Export", err)
	}

	var attempts []string
	for _, b := range e.backends {
		data, err := e.attempt(ctx, b, workbookPath, dir)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", b.Name(), err))
			e.log.Warn("converter backend failed",
				zap.String("backend", b.Name()), zap.Error(err))
			continue
		}
		return data, nil
	}
	return nil, &otdoc.ExportUnavailableError{Attempts: attempts}
}

func (e *Exporter) attempt(ctx context.Context, b Backend, workbookPath, dir string) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, e.cfg.ExportTimeout)
	defer cancel()

	pdfPath, err := b.Convert(actx, workbookPath, dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading converter output: %w", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("converter produced %d bytes that are not a PDF", len(data))
	}
	return data, nil
}
