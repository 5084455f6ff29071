package extractors

import (
	"regexp"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewTypst returns the Typst extractor: a line-oriented pass mapping
// Typst's `=`-prefixed heading markers, `-`/`+` list markers, and
// `*bold*`/`_italic_` inline markers onto markdown, plus front-matter
// style `#set document(...)` metadata calls (spec.md §4.3).
func NewTypst() Extractor {
	return &Base{
		NameValue:     "typst",
		PriorityValue: 0,
		MimeTypes:     []string{"text/x-typst"},
		DoExtract:     extractTypst,
	}
}

var (
	typstHeadingPattern = regexp.MustCompile(`^(=+)\s+(.*)$`)
	typstDocSetPattern  = regexp.MustCompile(`^#set\s+document\(\s*(.*?)\s*\)\s*$`)
	typstDocSetArgPattern = regexp.MustCompile(`(title|author)\s*:\s*"([^"]*)"`)
)

func extractTypst(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result := kreuzberg.New(mime)
	lines := strings.Split(string(data), "\n")
	var sb strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		if m := typstDocSetPattern.FindStringSubmatch(trimmed); m != nil {
			for _, arg := range typstDocSetArgPattern.FindAllStringSubmatch(m[1], -1) {
				switch arg[1] {
				case "title":
					result.Metadata.Title = arg[2]
				case "author":
					result.Metadata.Authors = append(result.Metadata.Authors, arg[2])
				}
			}
			continue
		}

		if m := typstHeadingPattern.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			sb.WriteString(strings.Repeat("#", level) + " " + m[2] + "\n\n")
			continue
		}

		text := trimmed
		if strings.HasPrefix(strings.TrimSpace(text), "- ") || strings.HasPrefix(strings.TrimSpace(text), "+ ") {
			indent := len(text) - len(strings.TrimLeft(text, " "))
			rest := strings.TrimSpace(text)[2:]
			sb.WriteString(strings.Repeat(" ", indent) + "- " + typstInline(rest) + "\n")
			continue
		}

		if text == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(typstInline(text) + "\n")
	}

	result.Content = strings.TrimSpace(normalizeBlankLines(sb.String()))
	return result, nil
}

// typstInline maps Typst's *bold*/_italic_ inline markers onto markdown's
// **bold**/_italic_ equivalents (already aligned for italics).
func typstInline(s string) string {
	boldPattern := regexp.MustCompile(`\*([^*]+)\*`)
	return boldPattern.ReplaceAllString(s, "**$1**")
}
