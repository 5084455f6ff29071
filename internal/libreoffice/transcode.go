// Package libreoffice drives the external soffice/libreoffice binary in
// headless mode to transcode legacy binary office documents (DOC, PPT,
// XLS) into their modern XML equivalents, so the core's own extractors
// only ever need to read one schema per family (spec.md §4.4).
//
// The spawn/timeout/kill shape is grounded on the teacher's
// internal/daemon.EnsureDaemon (detached process, explicit wait with
// timeout) adapted from "wait for a socket" to "wait for process exit",
// since a transcode is a one-shot command rather than a long-lived
// daemon.
package libreoffice

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

// binaryEnvVars are checked, in order, before falling back to PATH
// (spec.md §4.4 step 1).
var binaryEnvVars = []string{
	"KREUZBERG_LIBREOFFICE_PATH",
	"SOFFICE_PATH",
	"LIBREOFFICE_PATH",
}

// standardLocations are OS-specific install paths checked after the env
// vars and before a PATH lookup.
var standardLocations = []string{
	"/usr/bin/soffice",
	"/usr/local/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
}

// errorKeywords classify a non-zero exit's stderr/stdout as a Parsing
// failure rather than an Io failure (spec.md §4.4 step 6).
var errorKeywords = []string{"format", "unsupported", "error:", "failed"}

// ResolveBinary finds the soffice/libreoffice executable per spec.md
// §4.4 step 1's search order.
func ResolveBinary() (string, error) {
	for _, envVar := range binaryEnvVars {
		if path := os.Getenv(envVar); path != "" {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	for _, loc := range standardLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	if path, err := exec.LookPath("soffice"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("libreoffice"); err == nil {
		return path, nil
	}
	return "", kerr.MissingDependency("soffice/libreoffice",
		"install LibreOffice or set KREUZBERG_LIBREOFFICE_PATH")
}

// Convert transcodes input (with the given source extension, e.g.
// "doc") to targetFormat (e.g. "docx"), per spec.md §4.4.
func Convert(ctx context.Context, input []byte, sourceExt, targetFormat string, timeout time.Duration) ([]byte, error) {
	binary, err := ResolveBinary()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	inDir, err := os.MkdirTemp("", "kreuzberg-lo-in-"+runID+"-*")
	if err != nil {
		return nil, kerr.IO("create LibreOffice input dir", err)
	}
	defer os.RemoveAll(inDir)

	outDir, err := os.MkdirTemp("", "kreuzberg-lo-out-"+runID+"-*")
	if err != nil {
		return nil, kerr.IO("create LibreOffice output dir", err)
	}
	defer os.RemoveAll(outDir)

	inputPath := filepath.Join(inDir, "input."+sourceExt)
	if err := os.WriteFile(inputPath, input, 0o600); err != nil {
		return nil, kerr.IO("write LibreOffice input file", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary,
		"--headless", "--convert-to", targetFormat, "--outdir", outDir, inputPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, kerr.IO("start LibreOffice", err)
	}
	waitErr := cmd.Wait()

	if runCtx.Err() == context.DeadlineExceeded {
		pid := -1
		if cmd.Process != nil {
			pid = cmd.Process.Pid
			_ = cmd.Process.Kill()
		}
		return nil, kerr.Parsing(fmt.Sprintf("LibreOffice conversion timed out after %s (pid %d)", timeout, pid), nil)
	}

	if waitErr != nil {
		combined := strings.ToLower(stdout.String() + stderr.String())
		for _, kw := range errorKeywords {
			if strings.Contains(combined, kw) {
				return nil, kerr.Parsing(strings.TrimSpace(stdout.String()+stderr.String()), waitErr)
			}
		}
		return nil, kerr.IO(fmt.Sprintf("soffice exited: %v", waitErr), waitErr)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outDir, stem+"."+targetFormat)
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, kerr.Parsing("LibreOffice produced no output file", err)
	}
	if len(data) == 0 {
		return nil, kerr.Parsing("LibreOffice produced empty output", nil)
	}
	return data, nil
}
