package extractors

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/mimetype"
)

// NewHTML returns the text/html extractor: render to markdown via the
// HTML-to-markdown engine with the html_options toggles (spec.md §4.3).
// HTML parsing itself is out of the core's scope per spec.md §1 ("third
// party native libraries ... HTML-to-markdown, which are specified only
// by the contracts the core requires from them"); golang.org/x/net/html
// is the conforming tokenizer since no pack example wires a third-party
// HTML parser and it is the de facto standard-library extension for it.
func NewHTML() Extractor {
	return &Base{
		NameValue:     "html",
		PriorityValue: 0,
		MimeTypes:     []string{"text/html"},
		DoExtract:     extractHTML,
	}
}

func extractHTML(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	opts := kreuzberg.DefaultHTMLOptions()
	if cfg != nil {
		opts = cfg.HTMLOptions
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, kerr.Parsing("malformed HTML", err)
	}

	result := kreuzberg.New(mime)
	var title string
	c := &htmlConverter{opts: opts}
	c.render(doc, &title)
	result.Content = strings.TrimSpace(c.normalizeWhitespace(c.buf.String()))
	if title != "" {
		result.Metadata.Title = title
	}
	return result, nil
}

type htmlConverter struct {
	opts     kreuzberg.HTMLOptions
	buf      strings.Builder
	listDepth int
}

func (c *htmlConverter) write(s string) { c.buf.WriteString(s) }

func (c *htmlConverter) bullet() string {
	if c.opts.BulletChar != "" {
		return c.opts.BulletChar
	}
	return "-"
}

func (c *htmlConverter) indent() string {
	unit := "  "
	if c.opts.ListIndent == kreuzberg.ListIndentTabs {
		unit = "\t"
	}
	return strings.Repeat(unit, c.listDepth)
}

func (c *htmlConverter) codeFence() string {
	switch c.opts.CodeFenceStyle {
	case kreuzberg.CodeFenceTildes:
		return "~~~"
	case kreuzberg.CodeFenceIndented:
		return ""
	default:
		return "```"
	}
}

func (c *htmlConverter) render(n *html.Node, title *string) {
	switch n.Type {
	case html.TextNode:
		c.write(c.escape(n.Data))
	case html.ElementNode:
		c.renderElement(n, title)
		return
	default:
		c.renderChildren(n, title)
	}
}

func (c *htmlConverter) renderChildren(n *html.Node, title *string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.render(child, title)
	}
}

func (c *htmlConverter) escape(s string) string {
	if c.opts.EscapeMode == kreuzberg.EscapeNone {
		return s
	}
	replacer := strings.NewReplacer(
		"*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[", "]", "\\]",
	)
	if c.opts.EscapeMode == kreuzberg.EscapeAggressive {
		replacer = strings.NewReplacer(
			"*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[", "]", "\\]",
			"#", "\\#", "|", "\\|", "<", "\\<", ">", "\\>",
		)
	}
	return replacer.Replace(s)
}

func (c *htmlConverter) renderElement(n *html.Node, title *string) {
	switch n.DataAtom {
	case atom.Title:
		*title = textContent(n)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom - atom.H1 + 1)
		c.write("\n\n")
		if c.opts.HeadingStyle == kreuzberg.HeadingUnderlined && level <= 2 {
			text := textContent(n)
			c.write(text)
			c.write("\n")
			if level == 1 {
				c.write(strings.Repeat("=", max(len(text), 1)))
			} else {
				c.write(strings.Repeat("-", max(len(text), 1)))
			}
		} else {
			c.write(strings.Repeat("#", level) + " ")
			c.renderChildren(n, title)
			if c.opts.HeadingStyle == kreuzberg.HeadingATXClosed {
				c.write(" " + strings.Repeat("#", level))
			}
		}
		c.write("\n\n")
	case atom.P:
		c.write("\n\n")
		c.renderChildren(n, title)
		c.write("\n\n")
	case atom.Br:
		c.write("  \n")
	case atom.Strong, atom.B:
		c.write("**")
		c.renderChildren(n, title)
		c.write("**")
	case atom.Em, atom.I:
		c.write("_")
		c.renderChildren(n, title)
		c.write("_")
	case atom.Code:
		if !isInsidePre(n) {
			c.write("`")
			c.renderChildren(n, title)
			c.write("`")
			return
		}
		c.renderChildren(n, title)
	case atom.Pre:
		c.write("\n\n" + c.codeFence() + "\n")
		c.write(textContent(n))
		c.write("\n" + c.codeFence() + "\n\n")
	case atom.A:
		href := attr(n, "href")
		c.write("[")
		c.renderChildren(n, title)
		c.write("](" + href + ")")
	case atom.Img:
		src := attr(n, "src")
		alt := attr(n, "alt")
		if len(c.opts.KeepInlineImages) == 0 || mimetype.MatchesKeepList(c.opts.KeepInlineImages, src) {
			c.write("![" + alt + "](" + src + ")")
		}
	case atom.Ul, atom.Ol:
		c.listDepth++
		c.renderChildren(n, title)
		c.listDepth--
		c.write("\n")
	case atom.Li:
		c.write("\n" + c.indent() + c.bullet() + " ")
		c.renderChildren(n, title)
	case atom.Script, atom.Style, atom.Head:
		if n.DataAtom == atom.Head {
			c.renderChildren(n, title) // still need <title>
		}
		return
	default:
		c.renderChildren(n, title)
	}
}

func isInsidePre(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Pre {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func (c *htmlConverter) normalizeWhitespace(s string) string {
	if c.opts.WhitespaceMode == kreuzberg.WhitespaceStrict {
		return s
	}
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if blank && c.opts.WhitespaceMode == kreuzberg.WhitespaceMinimal {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
