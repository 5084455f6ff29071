package extractors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewRTF returns the text/rtf extractor: tokenizes the control stream
// and decodes it into plain text per spec.md §4.3/SPEC_FULL.md's
// supplemented control-word dispatch table.
func NewRTF() Extractor {
	return &Base{
		NameValue:     "rtf",
		PriorityValue: 0,
		MimeTypes:     []string{"text/rtf"},
		DoExtract:     extractRTF,
	}
}

// windows1252HighBytes maps the 0x80-0x9F range (where Latin-1 has C1
// controls) to their Windows-1252 characters, per spec.md §4.3.
var windows1252HighBytes = map[byte]rune{
	0x80: '€', 0x82: '‚', 0x83: 'ƒ', 0x84: '„',
	0x85: '…', 0x86: '†', 0x87: '‡', 0x88: 'ˆ',
	0x89: '‰', 0x8A: 'Š', 0x8B: '‹', 0x8C: 'Œ',
	0x8E: 'Ž', 0x91: '‘', 0x92: '’', 0x93: '“',
	0x94: '”', 0x95: '•', 0x96: '–', 0x97: '—',
	0x98: '˜', 0x99: '™', 0x9A: 'š', 0x9B: '›',
	0x9C: 'œ', 0x9E: 'ž', 0x9F: 'Ÿ',
}

// controlWordTokens maps a fixed set of control words to the literal
// text they emit (SPEC_FULL.md supplement, grounded on
// original_source/crates/kreuzberg/src/extractors/rtf.rs).
var controlWordTokens = map[string]string{
	"tab":        "\t",
	"line":       "\n",
	"bullet":     "•",
	"lquote":     "‘",
	"rquote":     "’",
	"ldblquote":  "“",
	"rdblquote":  "”",
	"endash":     "–",
	"emdash":     "—",
}

type rtfParser struct {
	data []byte
	pos  int
	out  strings.Builder
	// pict holds in-progress \pict group state.
	inPict     bool
	pictType   string
	pictWidth  float64
	pictHeight float64
}

func extractRTF(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	if len(data) == 0 || data[0] != '{' {
		return nil, kerr.Parsing("RTF input must begin with a group", nil)
	}
	p := &rtfParser{data: data}
	if err := p.run(); err != nil {
		return nil, err
	}
	result := kreuzberg.New(mime)
	result.Content = p.out.String()
	return result, nil
}

func (p *rtfParser) run() error {
	depth := 0
	for p.pos < len(p.data) {
		ch := p.data[p.pos]
		switch ch {
		case '{':
			depth++
			p.pos++
		case '}':
			depth--
			p.pos++
			if p.inPict && depth < 2 {
				p.emitPictToken()
				p.inPict = false
			}
		case '\\':
			p.pos++
			if err := p.control(); err != nil {
				return err
			}
		case '\r', '\n':
			p.pos++
		default:
			p.emitByte(ch)
			p.pos++
		}
	}
	return nil
}

func (p *rtfParser) emitByte(b byte) {
	if p.inPict {
		return
	}
	if b < 0x80 {
		p.out.WriteByte(b)
		return
	}
	if r, ok := windows1252HighBytes[b]; ok {
		p.out.WriteRune(r)
		return
	}
	p.out.WriteRune(rune(b)) // Latin-1 fallback for 0xA0-0xFF
}

func (p *rtfParser) control() error {
	if p.pos >= len(p.data) {
		return nil
	}
	// Escaped literal characters.
	switch p.data[p.pos] {
	case '\\', '{', '}':
		p.emitByte(p.data[p.pos])
		p.pos++
		return nil
	case '\'':
		p.pos++
		if p.pos+2 > len(p.data) {
			return kerr.Parsing("truncated \\'hh escape", nil)
		}
		hex := string(p.data[p.pos : p.pos+2])
		val, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return kerr.Parsing(fmt.Sprintf("invalid hex escape %q", hex), err)
		}
		p.pos += 2
		p.emitByte(byte(val))
		return nil
	}

	word, arg, hasArg := p.readControlWord()
	switch word {
	case "par":
		// \par introduces a blank-line separator only when the
		// preceding output did not already end in a newline
		// (spec.md §8 testable property).
		if !strings.HasSuffix(p.out.String(), "\n") {
			p.out.WriteString("\n\n")
		}
	case "u":
		if hasArg {
			r := arg
			if r < 0 {
				r += 65536 // signed wrap to Unicode, per spec.md §4.3
			}
			p.out.WriteRune(rune(r))
		}
		// \u is always followed by one ASCII fallback character (the
		// default \ucN skip count is 1), after the control word's own
		// delimiting space if there is one; consume both. A group brace
		// or a backslash in that position is left in place.
		if p.pos < len(p.data) && p.data[p.pos] == ' ' {
			p.pos++
		}
		if p.pos < len(p.data) && p.data[p.pos] != '\\' && p.data[p.pos] != '{' && p.data[p.pos] != '}' {
			p.pos++
		}
		return nil
	case "pict":
		p.inPict = true
		p.pictType, p.pictWidth, p.pictHeight = "", 0, 0
	case "jpegblip", "pngblip", "wmetafile", "dibitmap":
		if p.inPict {
			p.pictType = imageExtFor(word)
		}
	case "picwgoal":
		if p.inPict && hasArg {
			p.pictWidth = float64(arg) / 1440.0 // twips to inches
		}
	case "pichgoal":
		if p.inPict && hasArg {
			p.pictHeight = float64(arg) / 1440.0
		}
	default:
		if tok, ok := controlWordTokens[word]; ok {
			p.out.WriteString(tok)
		}
		// Unknown control words are skipped along with their numeric
		// argument, per SPEC_FULL.md's supplemented dispatch table.
	}

	// A single optional trailing space terminates a control word.
	if p.pos < len(p.data) && p.data[p.pos] == ' ' {
		p.pos++
	}
	return nil
}

func imageExtFor(word string) string {
	switch word {
	case "jpegblip":
		return "jpg"
	case "pngblip":
		return "png"
	case "wmetafile":
		return "wmf"
	case "dibitmap":
		return "bmp"
	default:
		return ""
	}
}

func (p *rtfParser) emitPictToken() {
	if p.pictType == "" {
		return
	}
	p.out.WriteString(fmt.Sprintf(`![image](image.%s width="%.1fin" height="%.1fin")`,
		p.pictType, p.pictWidth, p.pictHeight))
}

// readControlWord reads a control word (letters) followed by an
// optional signed numeric argument, per RTF's grammar.
func (p *rtfParser) readControlWord() (word string, arg int, hasArg bool) {
	start := p.pos
	for p.pos < len(p.data) && isAlpha(p.data[p.pos]) {
		p.pos++
	}
	word = string(p.data[start:p.pos])

	numStart := p.pos
	neg := false
	if p.pos < len(p.data) && p.data[p.pos] == '-' {
		neg = true
		p.pos++
	}
	digitStart := p.pos
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
	}
	if p.pos > digitStart {
		n, _ := strconv.Atoi(string(p.data[digitStart:p.pos]))
		if neg {
			n = -n
		}
		return word, n, true
	}
	p.pos = numStart
	return word, 0, false
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
