package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultDPI is the rasterization resolution for transcription images.
const DefaultDPI = 300

// Renderer rasterizes single PDF pages to PNG bytes.
type Renderer interface {
	// RenderPage renders the 0-based page index of the PDF at path.
	RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error)
}

// PopplerRenderer renders pages by shelling out to pdftoppm (poppler-utils).
type PopplerRenderer struct {
	// DPI is the render resolution. Zero means DefaultDPI.
	DPI int
}

// RenderPage renders one page to PNG.
func (r *PopplerRenderer) RenderPage(ctx context.Context, path string, pageIndex int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "bindery-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	// pdftoppm pages are 1-indexed.
	pageStr := fmt.Sprintf("%d", pageIndex+1)
	outputPrefix := filepath.Join(tmpDir, "page")

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", dpi),
		"-singlefile",
		path,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
