package extractors

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/pdftools"
)

// minOCRTextLen is the per-page character count below which a PDF page
// is treated as having no usable text layer, triggering the
// rasterize-and-OCR path (spec.md §4.3).
const minOCRTextLen = 8

// defaultOCRConfidenceFloor is the confidence spec.md §4.4 uses when no
// OCR config overrides it.
const defaultOCRConfidenceFloor = 0.0

type pdfExtractor struct {
	Base
	ocrRegistry *ocr.Registry
}

// NewPDF returns the PDF extractor: native text-layer extraction via
// dslipak/pdf (adopted per DESIGN.md from the pack's manifest
// reference, since no pack repo carries a full PDF-reading example to
// imitate code from) with a rasterize-then-OCR fallback through
// pdftoppm and ocrRegistry for pages/documents with no usable text
// layer, or when cfg.ForceOCR is set (spec.md §4.3).
func NewPDF(ocrRegistry *ocr.Registry) Extractor {
	e := &pdfExtractor{ocrRegistry: ocrRegistry}
	e.Base = Base{
		NameValue:     "pdf",
		PriorityValue: 0,
		MimeTypes:     []string{"application/pdf"},
		DoExtract:     e.extract,
	}
	return e
}

func (e *pdfExtractor) extract(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result := kreuzberg.New(mime)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, kerr.Parsing("malformed PDF", err)
	}

	numPages := r.NumPage()
	forceOCR := cfg != nil && cfg.ForceOCR

	pages := make([]kreuzberg.Page, 0, numPages)
	var tables []kreuzberg.Table
	hasNativeText := false
	needsOCRPages := make([]int, 0)

	if !forceOCR {
		for i := 1; i <= numPages; i++ {
			text, err := pagePlainText(r, i)
			if err != nil {
				needsOCRPages = append(needsOCRPages, i)
				continue
			}
			if len(strings.TrimSpace(text)) < minOCRTextLen {
				needsOCRPages = append(needsOCRPages, i)
				continue
			}
			hasNativeText = true
			pages = append(pages, kreuzberg.Page{Text: text, PageNumber: i})
			if table, ok := detectRuledTable(r.Page(i).Content(), i); ok {
				tables = append(tables, table)
			}
		}
	} else {
		for i := 1; i <= numPages; i++ {
			needsOCRPages = append(needsOCRPages, i)
		}
	}

	if len(needsOCRPages) > 0 && e.ocrRegistry != nil {
		ocrPages, confidences, err := e.ocrPages(data, needsOCRPages, cfg)
		if err != nil {
			// Non-fatal per spec.md §4.4: record the failure, keep
			// whatever native text was already recovered.
			result.Metadata.Additional["ocr_error"] = err.Error()
		} else {
			pages = append(pages, ocrPages...)
			if len(confidences) > 0 {
				result.Metadata.Additional["ocr_confidence"] = confidences
			}
		}
	}

	sortPagesByNumber(pages)

	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
	}

	result.Content = sb.String()
	result.Pages = pages
	result.Tables = tables
	result.Metadata.Format = &kreuzberg.FormatMetadata{
		Kind: kreuzberg.FormatPDF,
		PDF: &kreuzberg.PDFMetadata{
			PageCount: numPages,
			HasText:   hasNativeText,
		},
	}
	return result, nil
}

func (e *pdfExtractor) ocrPages(data []byte, pageNumbers []int, cfg *kreuzberg.ExtractionConfig) ([]kreuzberg.Page, map[int]float64, error) {
	if !pdftools.Available() {
		return nil, nil, kerr.MissingDependency("pdftoppm", "rasterizing PDF pages for OCR")
	}
	maxPage := 0
	for _, n := range pageNumbers {
		if n > maxPage {
			maxPage = n
		}
	}
	images, err := pdftools.Rasterize(context.Background(), data, maxPage)
	if err != nil {
		return nil, nil, err
	}

	var ocrConfig *kreuzberg.OCRConfig
	if cfg != nil {
		ocrConfig = cfg.OCR
	}

	wanted := make(map[int]bool, len(pageNumbers))
	for _, n := range pageNumbers {
		wanted[n] = true
	}

	var pages []kreuzberg.Page
	confidences := make(map[int]float64, len(pageNumbers))
	for i, img := range images {
		pageNum := i + 1
		if !wanted[pageNum] {
			continue
		}
		res, _, err := ocr.RecognizePage(context.Background(), e.ocrRegistry, img, ocrConfig, defaultOCRConfidenceFloor)
		if err != nil {
			return nil, nil, fmt.Errorf("ocr page %d: %w", pageNum, err)
		}
		pages = append(pages, kreuzberg.Page{Text: res.Text, PageNumber: pageNum})
		confidences[pageNum] = res.Confidence
	}
	return pages, confidences, nil
}

// pagePlainText extracts a single page's native text layer.
func pagePlainText(r *pdf.Reader, pageNum int) (string, error) {
	p := r.Page(pageNum)
	content, err := p.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := content.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return sb.String(), nil
}

func sortPagesByNumber(pages []kreuzberg.Page) {
	for i := 1; i < len(pages); i++ {
		for j := i; j > 0 && pages[j-1].PageNumber > pages[j].PageNumber; j-- {
			pages[j-1], pages[j] = pages[j], pages[j-1]
		}
	}
}

// ruleThickness is the maximum extent (in PDF user-space points) a
// filled rectangle can have along its thin axis and still count as a
// ruled line rather than a shaded block.
const ruleThickness = 2.0

// rulePositionEpsilon merges ruled lines whose positions differ by
// less than this many points into a single row/column boundary, since
// a hand-drawn grid rarely lands on identical floating-point values.
const rulePositionEpsilon = 1.5

// detectRuledTable reconstructs a table from a page's ruled horizontal
// and vertical lines (spec.md §4.3: "PDF: ruled-line tables are
// detected..."). Ruled lines are rendered as thin filled rectangles in
// the content stream, which dslipak/pdf's Content().Rect surfaces
// alongside the positioned text runs in Content().Text; this buckets
// each text run into the grid cell its (X, Y) falls inside. Returns
// ok=false when fewer than two lines are found in either direction,
// since that isn't a ruled grid at all.
func detectRuledTable(content pdf.Content, pageNum int) (kreuzberg.Table, bool) {
	var rowPositions, colPositions []float64
	for _, r := range content.Rect {
		minX, maxX := r.Min.X, r.Max.X
		minY, maxY := r.Min.Y, r.Max.Y
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		w, h := maxX-minX, maxY-minY
		switch {
		case h <= ruleThickness && w > ruleThickness:
			rowPositions = append(rowPositions, (minY+maxY)/2)
		case w <= ruleThickness && h > ruleThickness:
			colPositions = append(colPositions, (minX+maxX)/2)
		}
	}

	rowBounds := clusterPositions(rowPositions, rulePositionEpsilon)
	colBounds := clusterPositions(colPositions, rulePositionEpsilon)
	if len(rowBounds) < 2 || len(colBounds) < 2 {
		return kreuzberg.Table{}, false
	}
	// PDF Y grows upward; sort rowBounds descending so row 0 is the
	// topmost band on the page.
	sort.Sort(sort.Reverse(sort.Float64Slice(rowBounds)))

	cells := make([][]string, len(rowBounds)-1)
	for i := range cells {
		cells[i] = make([]string, len(colBounds)-1)
	}

	for _, t := range content.Text {
		row := bucketIndex(rowBounds, t.Y, true)
		col := bucketIndex(colBounds, t.X, false)
		if row < 0 || col < 0 {
			continue
		}
		if cells[row][col] != "" {
			cells[row][col] += " "
		}
		cells[row][col] += t.S
	}

	return kreuzberg.Table{
		Cells:      cells,
		Markdown:   renderTableMarkdown(cells),
		PageNumber: pageNum,
	}, true
}

// clusterPositions sorts vals and collapses runs within epsilon of each
// other into a single representative boundary.
func clusterPositions(vals []float64, epsilon float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	out := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > epsilon {
			out = append(out, v)
		}
	}
	return out
}

// bucketIndex returns the index i such that val falls between
// bounds[i] and bounds[i+1], or -1 if val lies outside every interval.
// bounds must be sorted ascending unless descending is true.
func bucketIndex(bounds []float64, val float64, descending bool) int {
	for i := 0; i < len(bounds)-1; i++ {
		lo, hi := bounds[i], bounds[i+1]
		if descending {
			lo, hi = bounds[i+1], bounds[i]
		}
		if val >= lo && val <= hi {
			return i
		}
	}
	return -1
}
