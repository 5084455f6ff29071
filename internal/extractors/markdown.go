package extractors

import (
	"regexp"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewMarkdown returns the text/markdown extractor (spec.md §4.3): split
// YAML front matter, apply the metadata mapping, extract pipe tables,
// and leave the remaining markdown as the body.
func NewMarkdown() Extractor {
	return &Base{
		NameValue:     "markdown",
		PriorityValue: 0,
		MimeTypes:     []string{"text/markdown"},
		DoExtract:     extractMarkdown,
	}
}

var frontMatterPattern = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

// metadataFieldMap maps a YAML front-matter key to the Metadata field it
// populates (spec.md §4.3: "description maps to subject").
var metadataFieldMap = map[string]string{
	"title":       "title",
	"author":      "authors",
	"authors":     "authors",
	"date":        "date",
	"subject":     "subject",
	"description": "subject",
	"keywords":    "keywords",
}

func extractMarkdown(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result := kreuzberg.New(mime)
	content := string(data)

	body := content
	if m := frontMatterPattern.FindStringSubmatchIndex(content); m != nil {
		frontMatter := content[m[2]:m[3]]
		body = content[m[1]:]
		applyFrontMatter(&result.Metadata, frontMatter)
	}

	result.Tables = extractPipeTables(body)
	result.Content = strings.TrimLeft(body, "\n")
	return result, nil
}

// applyFrontMatter performs a minimal line-oriented "key: value" parse
// of a YAML front-matter block, which is sufficient for the flat
// metadata mapping spec.md §4.3 and §8 scenario 6 describe. List values
// (YAML flow sequences or comma-separated scalars) are joined by comma.
func applyFrontMatter(meta *kreuzberg.Metadata, frontMatter string) {
	for _, line := range strings.Split(frontMatter, "\n") {
		line = strings.TrimRight(line, "\r")
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			inner := strings.Trim(value, "[]")
			parts := strings.Split(inner, ",")
			for i, p := range parts {
				parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
			}
			value = strings.Join(parts, ", ")
		}

		target, ok := metadataFieldMap[key]
		if !ok {
			meta.Additional[key] = value
			continue
		}
		switch target {
		case "title":
			meta.Title = value
			meta.Additional["title"] = value
		case "authors":
			meta.Authors = strings.Split(value, ", ")
			meta.Additional["author"] = value
		case "date":
			meta.Date = value
			meta.Additional["date"] = value
		case "subject":
			meta.Subject = value
			meta.Additional["subject"] = value
		case "keywords":
			meta.Additional["keywords"] = value
		}
	}
}

var pipeRowPattern = regexp.MustCompile(`^\s*\|.*\|\s*$`)
var pipeSeparatorPattern = regexp.MustCompile(`^\s*\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)*\|?\s*$`)

// extractPipeTables scans body for consecutive GFM pipe-table lines and
// returns each as a Table with its original markdown preserved.
func extractPipeTables(body string) []kreuzberg.Table {
	lines := strings.Split(body, "\n")
	var tables []kreuzberg.Table

	i := 0
	for i < len(lines) {
		if !pipeRowPattern.MatchString(lines[i]) || i+1 >= len(lines) || !pipeSeparatorPattern.MatchString(lines[i+1]) {
			i++
			continue
		}
		start := i
		end := i + 2
		for end < len(lines) && pipeRowPattern.MatchString(lines[end]) {
			end++
		}
		block := lines[start:end]
		var cells [][]string
		for j, line := range block {
			if j == 1 {
				continue // separator row
			}
			cells = append(cells, splitPipeRow(line))
		}
		tables = append(tables, kreuzberg.Table{
			Cells:      cells,
			Markdown:   strings.Join(block, "\n"),
			PageNumber: 1,
		})
		i = end
	}
	return tables
}

func splitPipeRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
