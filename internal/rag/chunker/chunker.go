package chunker

import "strings"

// separators is the boundary ladder tried in order when looking for a split
// point: paragraph break, line break, word break, then a hard character cut.
// All separator runes are ASCII.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(" "),
}

// Chunker splits plain text into overlapping passages under a target size,
// preferring semantic boundaries. Size and Overlap count characters, not
// bytes, so multibyte text keeps the same budget. It holds no state across
// calls.
type Chunker struct {
	Size    int // target maximum chunk length in characters
	Overlap int // trailing characters repeated at the start of the next chunk
}

// New returns a Chunker with sane fallbacks for degenerate parameters.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split breaks text into ordered chunks. Every chunk is at most Size
// characters unless a single unbreakable token exceeds Size, in which case
// that token becomes its own chunk. Adjacent chunks share Overlap characters
// of context. Empty input yields no chunks; input at or under Size yields
// exactly one trimmed chunk.
func (c *Chunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if len(runes) <= c.Size {
		return []string{trimmed}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + c.Size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[pos:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := c.cutPoint(runes, pos, end)
		chunk := strings.TrimSpace(string(runes[pos:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - c.Overlap
		if next <= pos {
			// Overlap would stall the scan; move forward regardless.
			next = cut
		}
		pos = next
	}

	return chunks
}

// cutPoint finds the rightmost boundary inside (start, limit], walking the
// separator ladder. With no boundary in the window the cut is a hard one at
// limit, unless the window sits inside a single oversized token, in which
// case the token is kept whole.
func (c *Chunker) cutPoint(runes []rune, start, limit int) int {
	window := runes[start:limit]
	for _, sep := range separators {
		if idx := lastIndexRunes(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}

	// No separator in the window: the token straddles the limit. Extend to
	// the token's end so it lands in one chunk rather than being split.
	rest := runes[limit:]
	tokenEnd := len(runes)
	for _, sep := range separators {
		if idx := indexRunes(rest, sep); idx >= 0 && limit+idx < tokenEnd {
			tokenEnd = limit + idx
		}
	}
	return tokenEnd
}

func indexRunes(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if matchAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

func lastIndexRunes(haystack, needle []rune) int {
	for i := len(haystack) - len(needle); i >= 0; i-- {
		if matchAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

func matchAt(haystack, needle []rune, at int) bool {
	for j, r := range needle {
		if haystack[at+j] != r {
			return false
		}
	}
	return true
}
