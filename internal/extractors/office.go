package extractors

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewOffice returns the extractor for the OOXML ZIP-container formats:
// DOCX (paragraphs + tables), PPTX (slide text, ordered), and XLSX
// (sheet cells rendered as pipe tables). spec.md §4.3 places the OOXML
// schemas among the formats the core must read directly (unlike the
// binary legacy DOC/PPT/XLS formats, which route through LibreOffice),
// so this extractor walks the zip member XML with the standard
// library's archive/zip and encoding/xml, the same way the teacher
// reads structured payloads off disk.
func NewOffice() Extractor {
	return &Base{
		NameValue:     "office",
		PriorityValue: 0,
		MimeTypes: []string{
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
		DoExtract: extractOffice,
	}
}

func extractOffice(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, kerr.Parsing("malformed OOXML container", err)
	}

	result := kreuzberg.New(mime)
	var (
		content string
		tables  []kreuzberg.Table
		app     string
		slides  int
	)

	switch mime {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		app = "Word"
		content, tables, err = extractDocx(zr)
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		app = "PowerPoint"
		content, slides, err = extractPptx(zr)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		app = "Excel"
		content, tables, err = extractXlsx(zr)
	default:
		return nil, kerr.UnsupportedFormat(mime)
	}
	if err != nil {
		return nil, err
	}

	result.Content = content
	result.Tables = tables
	result.Metadata.Format = &kreuzberg.FormatMetadata{
		Kind: kreuzberg.FormatOffice,
		Office: &kreuzberg.OfficeMetadata{
			Application: app,
			SlideCount:  slides,
		},
	}
	return result, nil
}

func zipFile(zr *zip.Reader, name string) ([]byte, bool) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, false
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				return nil, false
			}
			return b, true
		}
	}
	return nil, false
}

// --- DOCX ---

type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text string `xml:"t"`
}

type wordTable struct {
	Rows []wordTableRow `xml:"tr"`
}

type wordTableRow struct {
	Cells []wordTableCell `xml:"tc"`
}

type wordTableCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

func extractDocx(zr *zip.Reader) (string, []kreuzberg.Table, error) {
	raw, ok := zipFile(zr, "word/document.xml")
	if !ok {
		return "", nil, kerr.Parsing("DOCX missing word/document.xml", nil)
	}
	var doc wordDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", nil, kerr.Parsing("malformed DOCX document.xml", err)
	}

	var sb strings.Builder
	for _, p := range doc.Body.Paragraphs {
		sb.WriteString(paragraphText(p))
		sb.WriteString("\n\n")
	}

	var tables []kreuzberg.Table
	for _, t := range doc.Body.Tables {
		cells := make([][]string, 0, len(t.Rows))
		width := 0
		for _, r := range t.Rows {
			if len(r.Cells) > width {
				width = len(r.Cells)
			}
		}
		for _, r := range t.Rows {
			row := make([]string, width)
			for i, c := range r.Cells {
				texts := make([]string, len(c.Paragraphs))
				for j, p := range c.Paragraphs {
					texts[j] = paragraphText(p)
				}
				row[i] = strings.Join(texts, " ")
			}
			cells = append(cells, row)
		}
		tables = append(tables, kreuzberg.Table{
			Cells:      cells,
			Markdown:   renderTableMarkdown(cells),
			PageNumber: 1,
		})
		sb.WriteString(renderTableMarkdown(cells))
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String()), tables, nil
}

func paragraphText(p wordParagraph) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// --- PPTX ---

type pptxSlideText struct {
	Shapes []pptxShape `xml:"cSld>spTree>sp"`
}

type pptxShape struct {
	Paragraphs []pptxParagraph `xml:"txBody>p"`
}

type pptxParagraph struct {
	Runs []pptxRun `xml:"r"`
}

type pptxRun struct {
	Text string `xml:"t"`
}

func extractPptx(zr *zip.Reader) (string, int, error) {
	var slideNames []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideNames = append(slideNames, f.Name)
		}
	}
	sortSlideNames(slideNames)

	var sb strings.Builder
	for i, name := range slideNames {
		raw, ok := zipFile(zr, name)
		if !ok {
			continue
		}
		var slide pptxSlideText
		if err := xml.Unmarshal(raw, &slide); err != nil {
			return "", 0, kerr.Parsing(fmt.Sprintf("malformed PPTX slide %q", name), err)
		}
		fmt.Fprintf(&sb, "## Slide %d\n\n", i+1)
		for _, shape := range slide.Shapes {
			for _, p := range shape.Paragraphs {
				var pb strings.Builder
				for _, r := range p.Runs {
					pb.WriteString(r.Text)
				}
				if pb.Len() > 0 {
					sb.WriteString(pb.String())
					sb.WriteString("\n")
				}
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), len(slideNames), nil
}

// sortSlideNames orders slideN.xml entries numerically rather than
// lexically, since slide10.xml must follow slide9.xml, not slide1.xml.
func sortSlideNames(names []string) {
	sortByTrailingNumber(names, "ppt/slides/slide", ".xml")
}

// sortByTrailingNumber sorts names in place by the numeric value between
// prefix and suffix, so "sheet10.xml" follows "sheet9.xml" rather than
// "sheet1.xml" under a lexical sort.
func sortByTrailingNumber(names []string, prefix, suffix string) {
	num := func(name string) int {
		base := strings.TrimPrefix(name, prefix)
		base = strings.TrimSuffix(base, suffix)
		n := 0
		for _, c := range base {
			if c < '0' || c > '9' {
				break
			}
			n = n*10 + int(c-'0')
		}
		return n
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && num(names[j-1]) > num(names[j]); j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}

// --- XLSX ---

type xlsxSst struct {
	Items []xlsxSstItem `xml:"si"`
}

type xlsxSstItem struct {
	Text string `xml:"t"`
}

type xlsxSheetData struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref   string `xml:"r,attr"`
	Type  string `xml:"t,attr"`
	Value string `xml:"v"`
}

func extractXlsx(zr *zip.Reader) (string, []kreuzberg.Table, error) {
	var sst xlsxSst
	if raw, ok := zipFile(zr, "xl/sharedStrings.xml"); ok {
		if err := xml.Unmarshal(raw, &sst); err != nil {
			return "", nil, kerr.Parsing("malformed XLSX sharedStrings.xml", err)
		}
	}

	var sheetNames []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheetNames = append(sheetNames, f.Name)
		}
	}
	sortByTrailingNumber(sheetNames, "xl/worksheets/sheet", ".xml")

	var sb strings.Builder
	var tables []kreuzberg.Table
	for i, name := range sheetNames {
		raw, ok := zipFile(zr, name)
		if !ok {
			continue
		}
		var sheet xlsxSheetData
		if err := xml.Unmarshal(raw, &sheet); err != nil {
			return "", nil, kerr.Parsing(fmt.Sprintf("malformed XLSX sheet %q", name), err)
		}
		width := 0
		for _, r := range sheet.Rows {
			if len(r.Cells) > width {
				width = len(r.Cells)
			}
		}
		cells := make([][]string, 0, len(sheet.Rows))
		for _, r := range sheet.Rows {
			row := make([]string, width)
			for j, c := range r.Cells {
				row[j] = resolveCellValue(c, sst)
			}
			cells = append(cells, row)
		}
		table := kreuzberg.Table{Cells: cells, Markdown: renderTableMarkdown(cells), PageNumber: i + 1}
		tables = append(tables, table)
		fmt.Fprintf(&sb, "## Sheet %d\n\n%s\n\n", i+1, table.Markdown)
	}
	return strings.TrimSpace(sb.String()), tables, nil
}

func resolveCellValue(c xlsxCell, sst xlsxSst) string {
	if c.Type == "s" {
		idx := 0
		for _, ch := range c.Value {
			if ch < '0' || ch > '9' {
				idx = 0
				break
			}
			idx = idx*10 + int(ch-'0')
		}
		if idx >= 0 && idx < len(sst.Items) {
			return sst.Items[idx].Text
		}
		return ""
	}
	return c.Value
}

// renderTableMarkdown renders a cell grid as a GFM pipe table, padding
// ragged rows to the widest row's column count. Cell text is escaped
// per spec.md §4.3 so that literal "|" and embedded newlines can't
// corrupt the row structure.
func renderTableMarkdown(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}
	var sb strings.Builder
	for i, row := range cells {
		padded := make([]string, width)
		for j := 0; j < width && j < len(row); j++ {
			padded[j] = escapeTableCell(row[j])
		}
		sb.WriteString("| " + strings.Join(padded, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// escapeTableCell escapes characters that would otherwise break a GFM
// pipe-table row's column structure: a literal "|" is escaped to "\|",
// and embedded newlines are replaced with "<br>" since a raw newline
// would terminate the row early.
func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}
