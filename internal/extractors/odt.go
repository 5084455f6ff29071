package extractors

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewODT returns the OpenDocument Text extractor (spec.md §4.3): walks
// content.xml's paragraph and table elements the same way the OOXML
// office extractor walks DOCX, since ODF is likewise a ZIP container of
// namespaced XML with no pack-wired third-party reader.
func NewODT() Extractor {
	return &Base{
		NameValue:     "odt",
		PriorityValue: 0,
		MimeTypes:     []string{"application/vnd.oasis.opendocument.text"},
		DoExtract:     extractODT,
	}
}

type odtDocument struct {
	Body odtBody `xml:"body"`
}

type odtBody struct {
	Text odtText `xml:"text"`
}

type odtText struct {
	Paragraphs []odtParagraph `xml:"p"`
	Tables     []odtTable     `xml:"table"`
}

type odtParagraph struct {
	Content string `xml:",innerxml"`
	Spans   []odtSpan `xml:"span"`
}

type odtSpan struct {
	Content string `xml:",chardata"`
}

type odtTable struct {
	Rows []odtTableRow `xml:"table-row"`
}

type odtTableRow struct {
	Cells []odtTableCell `xml:"table-cell"`
}

type odtTableCell struct {
	Paragraphs []odtParagraph `xml:"p"`
}

func extractODT(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, kerr.Parsing("malformed ODT container", err)
	}
	raw, ok := zipFile(zr, "content.xml")
	if !ok {
		return nil, kerr.Parsing("ODT missing content.xml", nil)
	}

	var doc odtDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, kerr.Parsing("malformed ODT content.xml", err)
	}

	result := kreuzberg.New(mime)
	var sb strings.Builder
	for _, p := range doc.Body.Text.Paragraphs {
		sb.WriteString(odtParagraphText(p))
		sb.WriteString("\n\n")
	}

	var tables []kreuzberg.Table
	for _, t := range doc.Body.Text.Tables {
		width := 0
		for _, r := range t.Rows {
			if len(r.Cells) > width {
				width = len(r.Cells)
			}
		}
		cells := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			row := make([]string, width)
			for i, c := range r.Cells {
				texts := make([]string, len(c.Paragraphs))
				for j, p := range c.Paragraphs {
					texts[j] = odtParagraphText(p)
				}
				row[i] = strings.Join(texts, " ")
			}
			cells = append(cells, row)
		}
		table := kreuzberg.Table{Cells: cells, Markdown: renderTableMarkdown(cells), PageNumber: 1}
		tables = append(tables, table)
		sb.WriteString(table.Markdown)
		sb.WriteString("\n\n")
	}

	result.Content = strings.TrimSpace(sb.String())
	result.Tables = tables
	return result, nil
}

// odtParagraphText collects a paragraph's text content, stripping any
// nested markup tags (ODF wraps inline formatting in text:span elements
// with the same namespace-agnostic local name "span").
func odtParagraphText(p odtParagraph) string {
	if len(p.Spans) > 0 {
		var sb strings.Builder
		for _, s := range p.Spans {
			sb.WriteString(s.Content)
		}
		return sb.String()
	}
	return stripXMLTags(p.Content)
}

// stripXMLTags removes any remaining inline markup tags from innerxml
// content, leaving only chardata, for paragraphs with no text:span runs.
func stripXMLTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
