package extract

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// OCRProvider recognizes text in an image file. Implementations are
// external collaborators; the default one shells out to tesseract.
type OCRProvider interface {
	Recognize(path string) (string, error)
}

// LegacyDocDecoder converts a legacy binary .doc file to plain text. The
// default implementation shells out to antiword.
type LegacyDocDecoder interface {
	Decode(path string) (string, error)
}

// Capabilities is the flag set produced by the startup probe. The extractor
// consults it instead of discovering missing decoders per call.
type Capabilities struct {
	RTF       bool // RTF decoding (built in, always true from the probe)
	OCR       bool
	LegacyDoc bool

	ocr OCRProvider
	doc LegacyDocDecoder
}

// DetectCapabilities probes the runtime environment once: the RTF decoder is
// compiled in, OCR requires a tesseract binary on PATH, and legacy .doc
// requires antiword. Missing binaries clear the corresponding flag; nothing
// here fails.
func DetectCapabilities() Capabilities {
	caps := Capabilities{RTF: true}
	if bin, err := exec.LookPath("tesseract"); err == nil {
		caps.OCR = true
		caps.ocr = tesseractOCR{bin: bin}
	}
	if bin, err := exec.LookPath("antiword"); err == nil {
		caps.LegacyDoc = true
		caps.doc = antiwordDecoder{bin: bin}
	}
	return caps
}

// WithOCR returns a copy of the capability set using the given provider,
// typically a fake in tests or a managed OCR service in production.
func (c Capabilities) WithOCR(p OCRProvider) Capabilities {
	c.OCR = p != nil
	c.ocr = p
	return c
}

// WithLegacyDoc returns a copy using the given legacy .doc decoder.
func (c Capabilities) WithLegacyDoc(d LegacyDocDecoder) Capabilities {
	c.LegacyDoc = d != nil
	c.doc = d
	return c
}

// tesseractOCR shells out to the tesseract binary found on PATH.
type tesseractOCR struct {
	bin string
}

func (t tesseractOCR) Recognize(path string) (string, error) {
	out, err := exec.Command(t.bin, path, "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(path), err)
	}
	return string(out), nil
}

// antiwordDecoder shells out to antiword for legacy .doc files.
type antiwordDecoder struct {
	bin string
}

func (a antiwordDecoder) Decode(path string) (string, error) {
	out, err := exec.Command(a.bin, path).Output()
	if err != nil {
		return "", fmt.Errorf("antiword failed on %s: %w", filepath.Base(path), err)
	}
	return string(out), nil
}

// extractImage runs OCR over an image file. Absence of the OCR capability or
// any recognition error degrades to a placeholder; it never propagates.
func (e *Extractor) extractImage(path string) (string, error) {
	name := filepath.Base(path)
	if !e.caps.OCR || e.caps.ocr == nil {
		return fmt.Sprintf("Image file %s (OCR not available)", name), nil
	}

	// Sniff the content so a misnamed non-image fails into the placeholder
	// path instead of confusing the OCR binary.
	if mtype, err := mimetype.DetectFile(path); err != nil || !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Sprintf("Image file %s (OCR failed: not a recognizable image)", name), nil
	}

	text, err := e.caps.ocr.Recognize(path)
	if err != nil {
		e.log.Warn(fmt.Sprintf("OCR failed for %s: %v", path, err))
		return fmt.Sprintf("Image file %s (OCR failed: %v)", name, err), nil
	}
	return text, nil
}

// extractLegacyDoc decodes a binary .doc file, degrading to a placeholder
// when the decoder is unavailable or fails.
func (e *Extractor) extractLegacyDoc(path string) (string, error) {
	name := filepath.Base(path)
	if !e.caps.LegacyDoc || e.caps.doc == nil {
		return fmt.Sprintf("Word file %s (legacy .doc decoder not available)", name), nil
	}
	text, err := e.caps.doc.Decode(path)
	if err != nil {
		e.log.Warn(fmt.Sprintf("legacy doc decode failed for %s: %v", path, err))
		return fmt.Sprintf("Word file %s (legacy .doc decode failed: %v)", name, err), nil
	}
	return text, nil
}
