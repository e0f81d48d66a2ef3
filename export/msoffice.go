package export

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// detectExcelBackend returns the desktop-automation fallback on hosts that
// can run it, nil elsewhere. Only Windows machines with an installed Excel
// qualify, so the probe is cheap: the real capability check happens on the
// first conversion attempt.
func detectExcelBackend() Backend {
	if runtime.GOOS != "windows" {
		return nil
	}
	bin, err := exec.LookPath("powershell")
	if err != nil {
		return nil
	}
	return &excelBackend{shell: bin}
}

// excelBackend drives desktop Excel over COM to export the workbook. Slower
// and Windows-only; used when LibreOffice is absent.
type excelBackend struct {
	shell string
}

func (b *excelBackend) Name() string {
	return "excel-com"
}

func (b *excelBackend) Convert(ctx context.Context, workbookPath, outDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(workbookPath), filepath.Ext(workbookPath))
	pdfPath := filepath.Join(outDir, base+".pdf")

	// xlTypePDF = 0.
	script := fmt.Sprintf(`$ErrorActionPreference = 'Stop'
$excel = New-Object -ComObject Excel.Application
$excel.Visible = $false
$excel.DisplayAlerts = $false
try {
  $wb = $excel.Workbooks.Open(%q)
  $wb.ExportAsFixedFormat(0, %q)
  $wb.Close($false)
} finally {
  $excel.Quit()
}`, workbookPath, pdfPath)

	cmd := exec.CommandContext(ctx, b.shell, "-NoProfile", "-NonInteractive", "-Command", script)
	configureProcess(cmd)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("excel automation timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("excel-com: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return pdfPath, nil
}
