// Package pdftools wraps pdftoppm, the Poppler utility the core shells
// out to for rasterizing PDF pages ahead of OCR (spec.md §4.3: "PDFs
// without a usable text layer are rasterized page by page and routed to
// the OCR backend"). Grounded on cpcloud-micasa's
// internal/extract/ocr.go ocrPDF, which drives the same binary the same
// way: write the PDF to a scoped temp dir, shell out, glob the page
// images back in numeric order.
package pdftools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// RasterizeDPI is the resolution pdftoppm renders at, chosen to keep
// OCR accuracy reasonable without producing oversized page images.
const RasterizeDPI = 300

// Rasterize converts pdf's pages (up to maxPages, 0 meaning unlimited)
// to PNG images, in page order. Callers are expected to have already
// checked pdftoppm is on PATH.
func Rasterize(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "kreuzberg-rasterize-*")
	if err != nil {
		return nil, fmt.Errorf("create rasterize temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	outputPrefix := filepath.Join(tmpDir, "page")
	args := []string{"-png", "-r", fmt.Sprintf("%d", RasterizeDPI)}
	if maxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", maxPages))
	}
	args = append(args, pdfPath, outputPrefix)

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	paths, err := filepath.Glob(outputPrefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("glob rasterized pages: %w", err)
	}
	sort.Strings(paths)

	pages := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read rasterized page %q: %w", p, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// Available reports whether pdftoppm is resolvable on PATH.
func Available() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}
