package extractors

import (
	"encoding/xml"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewDocBook returns the DocBook extractor: a single-pass XML walk
// mapping the DocBook article/book schema onto markdown headings,
// paragraphs, and lists (spec.md §4.3). Uses the standard library's
// encoding/xml the same way internal/extractors/office.go and odt.go
// do, for the same reason: no pack repo wires a third-party DocBook
// library.
func NewDocBook() Extractor {
	return &Base{
		NameValue:     "docbook",
		PriorityValue: 0,
		MimeTypes:     []string{"application/docbook+xml"},
		DoExtract:     extractDocBook,
	}
}

type docbookNode struct {
	XMLName xml.Name
	Attr    []xml.Attr    `xml:",any,attr"`
	Content string        `xml:",chardata"`
	Nodes   []docbookNode `xml:",any"`
}

func extractDocBook(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	var root docbookNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, kerr.Parsing("malformed DocBook XML", err)
	}

	result := kreuzberg.New(mime)
	var sb strings.Builder
	walkDocBook(root, 0, &sb, &result.Metadata)
	result.Content = strings.TrimSpace(normalizeBlankLines(sb.String()))
	return result, nil
}

func walkDocBook(n docbookNode, headingLevel int, sb *strings.Builder, meta *kreuzberg.Metadata) {
	switch n.XMLName.Local {
	case "title":
		text := docbookText(n)
		if meta.Title == "" {
			meta.Title = text
		}
		sb.WriteString("\n\n" + strings.Repeat("#", max(headingLevel, 1)) + " " + text + "\n\n")
		return
	case "author", "authorgroup":
		text := docbookText(n)
		if text != "" {
			meta.Authors = append(meta.Authors, text)
		}
		return
	case "para", "simpara":
		sb.WriteString("\n\n" + docbookText(n) + "\n\n")
		return
	case "itemizedlist", "orderedlist":
		for _, item := range n.Nodes {
			if item.XMLName.Local != "listitem" {
				continue
			}
			sb.WriteString("\n- " + strings.TrimSpace(docbookText(item)))
		}
		sb.WriteString("\n")
		return
	case "emphasis":
		sb.WriteString("_" + docbookText(n) + "_")
		return
	case "chapter", "sect1", "section", "article", "book":
		nextLevel := headingLevel + 1
		for _, c := range n.Nodes {
			walkDocBook(c, nextLevel, sb, meta)
		}
		return
	}
	for _, c := range n.Nodes {
		walkDocBook(c, headingLevel, sb, meta)
	}
}

func docbookText(n docbookNode) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(n.Content))
	for _, c := range n.Nodes {
		t := docbookText(c)
		if t != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(t)
		}
	}
	return strings.TrimSpace(sb.String())
}

func normalizeBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
