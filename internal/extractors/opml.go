package extractors

import (
	"encoding/xml"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewOPML returns the OPML extractor: outline hierarchy rendered as a
// nested markdown list, with the OPML head's title/date into metadata
// (spec.md §4.3).
func NewOPML() Extractor {
	return &Base{
		NameValue:     "opml",
		PriorityValue: 0,
		MimeTypes:     []string{"text/x-opml+xml"},
		DoExtract:     extractOPML,
	}
}

type opmlDocument struct {
	Head opmlHead `xml:"head"`
	Body opmlBody `xml:"body"`
}

type opmlHead struct {
	Title       string `xml:"title"`
	DateCreated string `xml:"dateCreated"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

func extractOPML(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	var doc opmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, kerr.Parsing("malformed OPML XML", err)
	}

	result := kreuzberg.New(mime)
	result.Metadata.Title = doc.Head.Title
	result.Metadata.Date = doc.Head.DateCreated

	var sb strings.Builder
	if doc.Head.Title != "" {
		sb.WriteString("# " + doc.Head.Title + "\n\n")
	}
	for _, o := range doc.Body.Outlines {
		writeOPMLOutline(o, 0, &sb)
	}
	result.Content = strings.TrimSpace(sb.String())
	return result, nil
}

func writeOPMLOutline(o opmlOutline, depth int, sb *strings.Builder) {
	sb.WriteString(strings.Repeat("  ", depth) + "- " + o.Text + "\n")
	for _, child := range o.Outlines {
		writeOPMLOutline(child, depth+1, sb)
	}
}
