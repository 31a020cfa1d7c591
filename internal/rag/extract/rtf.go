package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// extractRTF converts RTF markup to plain text. The decoder is compiled in,
// so the capability flag is normally set; it remains consulted so that a
// build without the decoder degrades to the placeholder like the other
// optional formats.
func (e *Extractor) extractRTF(path string) (string, error) {
	if !e.caps.RTF {
		return fmt.Sprintf("RTF file %s (rtf decoder not available)", filepath.Base(path)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read rtf %s: %w", path, err)
	}
	return rtfToText(string(data)), nil
}

// destinations whose entire group content is markup, not document text.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"themedata":  true,
	"header":     true,
	"footer":     true,
}

// rtfToText strips RTF control words and groups, keeping document text.
// It handles the constructs that occur in practice in this corpus: \par and
// \line breaks, \tab, hex escapes (\'hh), escaped braces/backslashes, and
// ignorable or table destinations. Anything it does not understand is
// dropped, never echoed as markup.
func rtfToText(src string) string {
	var out strings.Builder
	skipDepth := 0 // depth inside a skipped group, 0 when emitting
	depth := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '{':
			depth++
			// An ignorable destination {\*\...} is skipped wholesale.
			if skipDepth == 0 && i+2 < len(src) && src[i+1] == '\\' && src[i+2] == '*' {
				skipDepth = depth
			}
		case '}':
			if skipDepth != 0 && depth == skipDepth {
				skipDepth = 0
			}
			depth--
		case '\\':
			if i+1 >= len(src) {
				break
			}
			next := src[i+1]
			switch {
			case next == '\\' || next == '{' || next == '}':
				if skipDepth == 0 {
					out.WriteByte(next)
				}
				i++
			case next == '\'':
				// Hex escape: \'hh
				if i+3 < len(src) {
					if v, err := strconv.ParseUint(src[i+2:i+4], 16, 8); err == nil && skipDepth == 0 {
						out.WriteRune(rune(v))
					}
					i += 3
				}
			default:
				word, param, consumed := readControlWord(src[i+1:])
				i += consumed
				_ = param
				if skipDepth != 0 {
					break
				}
				switch word {
				case "par", "line", "sect", "page":
					out.WriteString("\n")
				case "tab", "cell":
					out.WriteString("\t")
				case "row":
					out.WriteString("\n")
				default:
					if rtfSkipGroups[word] {
						skipDepth = depth
					}
				}
			}
		case '\r', '\n':
			// Raw newlines in RTF source are not document text.
		default:
			if skipDepth == 0 {
				out.WriteByte(c)
			}
		}
	}

	return strings.TrimSpace(out.String())
}

// readControlWord parses a control word (letters plus optional numeric
// parameter) starting at s[0], returning the word, its parameter text and
// the number of bytes consumed including a single trailing space delimiter.
func readControlWord(s string) (word, param string, consumed int) {
	i := 0
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}
	word = s[:i]
	start := i
	if i < len(s) && (s[i] == '-' || isDigit(s[i])) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	param = s[start:i]
	consumed = i
	if i < len(s) && s[i] == ' ' {
		consumed++
	}
	return word, param, consumed
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
