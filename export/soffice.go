package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Detect probes the host for converter backends, primary first. The result
// is meant to be computed once at process startup.
func Detect(log *zap.Logger) []Backend {
	if log == nil {
		log = zap.NewNop()
	}
	var backends []Backend
	for _, name := range []string{"soffice", "libreoffice"} {
		if bin, err := exec.LookPath(name); err == nil {
			backends = append(backends, &sofficeBackend{bin: bin})
			break
		}
	}
	if b := detectExcelBackend(); b != nil {
		backends = append(backends, b)
	}
	if len(backends) == 0 {
		log.Warn("no pdf converter backend found on this host")
	} else {
		names := make([]string, len(backends))
		for i, b := range backends {
			names[i] = b.Name()
		}
		log.Info("pdf converter backends detected", zap.Strings("backends", names))
	}
	return backends
}

// sofficeBackend converts through headless LibreOffice.
type sofficeBackend struct {
	bin string
}

func (b *sofficeBackend) Name() string {
	return filepath.Base(b.bin)
}

func (b *sofficeBackend) Convert(ctx context.Context, workbookPath, outDir string) (string, error) {
	// Each invocation gets its own user profile. Concurrent LibreOffice
	// processes sharing a profile deadlock on its lock file.
	profile := filepath.Join(os.TempDir(), "otdoc-lo-"+uuid.NewString())
	defer os.RemoveAll(profile)

	cmd := exec.CommandContext(ctx, b.bin,
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=file://"+profile,
		"--convert-to", "pdf",
		"--outdir", outDir,
		workbookPath,
	)
	configureProcess(cmd)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("converter timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("soffice: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(workbookPath), filepath.Ext(workbookPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("soffice reported success but produced no pdf: %w", err)
	}
	return pdfPath, nil
}
