package extractors

import (
	"regexp"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewOrgMode returns the Org-mode extractor: a line-oriented pass
// mapping `*`-prefixed headline stars to markdown headings, `#+TITLE:`/
// `#+AUTHOR:`/`#+DATE:` keyword lines to metadata, and `-`/`+` plain
// list items, leaving the remaining body untouched (spec.md §4.3).
func NewOrgMode() Extractor {
	return &Base{
		NameValue:     "orgmode",
		PriorityValue: 0,
		MimeTypes:     []string{"text/x-org"},
		DoExtract:     extractOrgMode,
	}
}

var (
	orgHeadlinePattern = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	orgKeywordPattern  = regexp.MustCompile(`^#\+(\w+):\s*(.*)$`)
	orgListPattern     = regexp.MustCompile(`^(\s*)([-+])\s+(.*)$`)
)

func extractOrgMode(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result := kreuzberg.New(mime)
	lines := strings.Split(string(data), "\n")
	var sb strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		if m := orgKeywordPattern.FindStringSubmatch(trimmed); m != nil {
			switch strings.ToUpper(m[1]) {
			case "TITLE":
				result.Metadata.Title = m[2]
			case "AUTHOR":
				result.Metadata.Authors = append(result.Metadata.Authors, m[2])
			case "DATE":
				result.Metadata.Date = m[2]
			}
			continue
		}

		if m := orgHeadlinePattern.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			sb.WriteString(strings.Repeat("#", level) + " " + strings.TrimSpace(m[2]) + "\n\n")
			continue
		}

		if m := orgListPattern.FindStringSubmatch(trimmed); m != nil {
			sb.WriteString(m[1] + "- " + m[3] + "\n")
			continue
		}

		if trimmed == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(trimmed + "\n")
	}

	result.Content = strings.TrimSpace(normalizeBlankLines(sb.String()))
	return result, nil
}
