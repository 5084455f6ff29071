package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// tesseractLanguages maps the ISO codes spec.md §4.4 uses to tesseract's
// three-letter traineddata names.
var tesseractLanguages = map[string]string{
	"eng": "eng", "deu": "deu", "fra": "fra", "spa": "spa",
	"ita": "ita", "por": "por", "jpn": "jpn", "chi_sim": "chi_sim",
}

// Tesseract is the tesseract-ocr Backend: rasterized page images in,
// plain text plus a TSV-derived confidence out. Grounded on the
// subprocess-and-temp-file shape of cpcloud-micasa's
// internal/extract/ocr.go, generalized from "OCR a whole document" into
// "OCR one page image" so the PDF extractor can drive it per page.
type Tesseract struct {
	priority int
}

// NewTesseract returns a Tesseract backend at the given selection
// priority (spec.md §4.4).
func NewTesseract(priority int) *Tesseract {
	return &Tesseract{priority: priority}
}

func (t *Tesseract) Name() string      { return "tesseract" }
func (t *Tesseract) Initialize() error { return nil }
func (t *Tesseract) Shutdown() error   { return nil }
func (t *Tesseract) Priority() int     { return t.priority }

func (t *Tesseract) SupportsLanguage(lang string) bool {
	_, ok := tesseractLanguages[lang]
	return ok
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, opts *kreuzberg.OCRConfig) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "kreuzberg-ocr-*")
	if err != nil {
		return Result{}, fmt.Errorf("create ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(imgPath, image, 0o600); err != nil {
		return Result{}, fmt.Errorf("write ocr page image: %w", err)
	}

	lang := "eng"
	if opts != nil && opts.Language != "" {
		if mapped, ok := tesseractLanguages[opts.Language]; ok {
			lang = mapped
		}
	}

	var tsvBuf, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "tesseract", imgPath, "stdout", "-l", lang, "tsv")
	cmd.Stdout = &tsvBuf
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("tesseract: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	text, confidence := parseTesseractTSV(tsvBuf.Bytes())
	return Result{Text: text, Confidence: confidence}, nil
}

// parseTesseractTSV extracts plain text (grouped by block/paragraph/line
// breaks) and a mean word-confidence score from tesseract's TSV output.
// Columns: level, page_num, block_num, par_num, line_num, word_num,
// left, top, width, height, conf, text.
func parseTesseractTSV(tsv []byte) (string, float64) {
	lines := bytes.Split(tsv, []byte("\n"))
	if len(lines) < 2 {
		return "", 0
	}

	var result strings.Builder
	var lastBlock, lastPar, lastLine int
	var confSum float64
	var confCount int
	first := true

	for _, line := range lines[1:] {
		fields := bytes.Split(line, []byte("\t"))
		if len(fields) < 12 {
			continue
		}
		word := strings.TrimSpace(string(fields[11]))
		if word == "" {
			continue
		}

		block := atoi(fields[2])
		par := atoi(fields[3])
		lineNum := atoi(fields[4])
		conf := atof(fields[10])
		if conf >= 0 {
			confSum += conf
			confCount++
		}

		if !first {
			switch {
			case block != lastBlock || par != lastPar:
				result.WriteString("\n\n")
			case lineNum != lastLine:
				result.WriteString("\n")
			default:
				result.WriteString(" ")
			}
		}
		first = false

		result.WriteString(word)
		lastBlock, lastPar, lastLine = block, par, lineNum
	}

	if confCount == 0 {
		return result.String(), 0
	}
	return result.String(), (confSum / float64(confCount)) / 100.0
}

func atoi(b []byte) int {
	n := 0
	neg := false
	for i, c := range b {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func atof(b []byte) float64 {
	s := string(b)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	var n float64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + float64(c-'0')
	}
	if hasFrac {
		div := 1.0
		for _, c := range frac {
			if c < '0' || c > '9' {
				break
			}
			div *= 10
			n += float64(c-'0') / div
		}
	}
	if neg {
		n = -n
	}
	return n
}
