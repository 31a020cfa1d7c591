package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// readText reads a plain-text file as UTF-8. Files that are not valid UTF-8
// fall back to a Latin-1 interpretation, which cannot fail, so no text file
// is ever rejected for its encoding.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the code point of the same value.
func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}
