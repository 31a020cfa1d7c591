package extract

import (
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// extractDocx concatenates the text of every paragraph run in document
// order, one paragraph per line.
func extractDocx(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
