package extractors

import (
	"encoding/xml"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewFictionBook returns the FictionBook (FB2) extractor: a single-pass
// walk of description/body mapping sections to headings and paragraphs
// to body text (spec.md §4.3).
func NewFictionBook() Extractor {
	return &Base{
		NameValue:     "fictionbook",
		PriorityValue: 0,
		MimeTypes:     []string{"application/x-fictionbook+xml"},
		DoExtract:     extractFictionBook,
	}
}

type fb2Document struct {
	Description fb2Description `xml:"description"`
	Body        fb2Body        `xml:"body"`
}

type fb2Description struct {
	TitleInfo fb2TitleInfo `xml:"title-info"`
}

type fb2TitleInfo struct {
	BookTitle string      `xml:"book-title"`
	Authors   []fb2Author `xml:"author"`
	Lang      string      `xml:"lang"`
}

type fb2Author struct {
	FirstName string `xml:"first-name"`
	LastName  string `xml:"last-name"`
}

type fb2Body struct {
	Sections []fb2Section `xml:"section"`
}

type fb2Section struct {
	Title      fb2Title     `xml:"title"`
	Paragraphs []string     `xml:"p"`
	Sections   []fb2Section `xml:"section"`
}

type fb2Title struct {
	Paragraphs []string `xml:"p"`
}

func extractFictionBook(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	var doc fb2Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, kerr.Parsing("malformed FictionBook XML", err)
	}

	result := kreuzberg.New(mime)
	result.Metadata.Title = doc.Description.TitleInfo.BookTitle
	result.Metadata.Language = doc.Description.TitleInfo.Lang
	for _, a := range doc.Description.TitleInfo.Authors {
		name := strings.TrimSpace(a.FirstName + " " + a.LastName)
		if name != "" {
			result.Metadata.Authors = append(result.Metadata.Authors, name)
		}
	}

	var sb strings.Builder
	if result.Metadata.Title != "" {
		sb.WriteString("# " + result.Metadata.Title + "\n\n")
	}
	for _, s := range doc.Body.Sections {
		writeFB2Section(s, 2, &sb)
	}
	result.Content = strings.TrimSpace(sb.String())
	return result, nil
}

func writeFB2Section(s fb2Section, level int, sb *strings.Builder) {
	if title := strings.Join(s.Title.Paragraphs, " "); title != "" {
		sb.WriteString(strings.Repeat("#", level) + " " + title + "\n\n")
	}
	for _, p := range s.Paragraphs {
		sb.WriteString(p + "\n\n")
	}
	for _, child := range s.Sections {
		writeFB2Section(child, level+1, sb)
	}
}
