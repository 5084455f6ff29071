package extractors

import (
	"strings"
	"unicode"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewRST returns the reStructuredText extractor: a single-pass,
// line-oriented walk that maps underlined and overlined section titles to
// markdown headings (by first-seen-underline-character rank), field
// lists (`:field: value` before the first section) to metadata, and
// bullet list lines to markdown lists (spec.md §4.3).
func NewRST() Extractor {
	return &Base{
		NameValue:     "rst",
		PriorityValue: 0,
		MimeTypes:     []string{"text/x-rst"},
		DoExtract:     extractRST,
	}
}

// rstFieldMap mirrors the markdown extractor's metadataFieldMap for
// RST's docinfo field-list convention.
var rstFieldMap = map[string]string{
	"title":   "title",
	"author":  "authors",
	"date":    "date",
	"subject": "subject",
}

func extractRST(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result := kreuzberg.New(mime)
	lines := strings.Split(string(data), "\n")

	var sb strings.Builder
	var rankedChars []rune // underline characters in order first encountered, rank == index+1
	seenSection := false

	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r")

		if field, value, ok := parseRSTField(line); ok && !seenSection {
			applyRSTField(&result.Metadata, field, value)
			i++
			continue
		}

		if isRSTUnderline(line) && i+2 < len(lines) && isRSTUnderline(lines[i+2]) && strings.TrimSpace(lines[i+1]) != "" {
			overlineChar := rune(strings.TrimSpace(line)[0])
			level := rankOf(&rankedChars, overlineChar)
			sb.WriteString(strings.Repeat("#", level) + " " + strings.TrimSpace(lines[i+1]) + "\n\n")
			seenSection = true
			i += 3
			continue
		}

		if i+1 < len(lines) && isRSTUnderline(lines[i+1]) && strings.TrimSpace(line) != "" {
			underlineChar := rune(strings.TrimSpace(lines[i+1])[0])
			level := rankOf(&rankedChars, underlineChar)
			sb.WriteString(strings.Repeat("#", level) + " " + strings.TrimSpace(line) + "\n\n")
			seenSection = true
			i += 2
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ") {
			indent := len(line) - len(strings.TrimLeft(line, " "))
			sb.WriteString(strings.Repeat(" ", indent) + "- " + trimmed[2:] + "\n")
			i++
			continue
		}

		if trimmed == "" {
			sb.WriteString("\n")
			i++
			continue
		}
		sb.WriteString(trimmed + "\n")
		i++
	}

	result.Content = strings.TrimSpace(normalizeBlankLines(sb.String()))
	return result, nil
}

// isRSTUnderline reports whether line consists entirely of one repeated
// punctuation rune (RST's section-title underline convention), at
// least 3 characters wide.
func isRSTUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	first := rune(trimmed[0])
	if unicode.IsLetter(first) || unicode.IsDigit(first) {
		return false
	}
	for _, r := range trimmed {
		if r != first {
			return false
		}
	}
	return true
}

// rankOf returns the 1-based heading level for ch, assigning the next
// rank the first time ch is seen.
func rankOf(seen *[]rune, ch rune) int {
	for i, c := range *seen {
		if c == ch {
			return i + 1
		}
	}
	*seen = append(*seen, ch)
	return len(*seen)
}

func parseRSTField(line string) (field, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return "", "", false
	}
	rest := trimmed[1:]
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return "", "", false
	}
	field = strings.ToLower(strings.TrimSpace(rest[:idx]))
	value = strings.TrimSpace(rest[idx+1:])
	if value == "" {
		return "", "", false
	}
	return field, value, true
}

func applyRSTField(meta *kreuzberg.Metadata, field, value string) {
	target, ok := rstFieldMap[field]
	if !ok {
		meta.Additional[field] = value
		return
	}
	switch target {
	case "title":
		meta.Title = value
	case "authors":
		meta.Authors = append(meta.Authors, value)
	case "date":
		meta.Date = value
	case "subject":
		meta.Subject = value
	}
}
