package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"scholarag/pkg/logger"
)

// ErrUnsupportedFormat is returned when a file's extension has no extractor.
// Directory-scope processing catches it and skips the file.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions is the ingestion allowlist, lowercase with leading dot.
var SupportedExtensions = []string{
	".pdf", ".docx", ".doc", ".txt", ".md", ".rtf", ".xlsx",
	".jpg", ".jpeg", ".png",
}

// Supported reports whether the extension (with leading dot, any case) has
// an extractor.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// Extractor converts raw files into plain text, dispatching on extension.
// Optional decoding capabilities (OCR, RTF, legacy .doc) are probed once at
// construction; when a capability is missing the affected formats degrade to
// a placeholder string instead of failing.
type Extractor struct {
	caps Capabilities
	log  *logger.Logger
}

// New builds an Extractor with the given capability set.
func New(caps Capabilities, log *logger.Logger) *Extractor {
	return &Extractor{caps: caps, log: log.WithComponent("extract")}
}

// Capabilities exposes the probed capability set, for startup logging and
// the stats surface.
func (e *Extractor) Capabilities() Capabilities {
	return e.caps
}

// Text extracts the plain-text content of the file at path. Unsupported
// extensions return ErrUnsupportedFormat; formats behind a missing
// capability return a placeholder naming the file and the gap.
func (e *Extractor) Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return readText(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDocx(path)
	case ".xlsx":
		return extractXlsx(path)
	case ".rtf":
		return e.extractRTF(path)
	case ".doc":
		return e.extractLegacyDoc(path)
	case ".jpg", ".jpeg", ".png":
		return e.extractImage(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
