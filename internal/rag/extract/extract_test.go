package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"scholarag/pkg/logger"
)

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("test")
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".PDF", ".docx", ".txt", ".rtf", ".jpeg"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{".exe", ".zip", "", ".pdfx"} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true, want false", ext)
		}
	}
}

func TestTextPlainFile(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	path := writeFile(t, t.TempDir(), "notes.txt", []byte("hello corpus\n"))

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello corpus\n" {
		t.Errorf("got %q", got)
	}
}

func TestTextLatin1Fallback(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	// 0xE9 is 'é' in Latin-1 and invalid as a standalone UTF-8 byte.
	path := writeFile(t, t.TempDir(), "caf.txt", []byte{'c', 'a', 'f', 0xE9})

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "café" {
		t.Errorf("got %q, want café", got)
	}
}

func TestTextUnsupportedFormat(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	_, err := e.Text("archive.zip")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestImagePlaceholderWithoutOCR(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	path := writeFile(t, t.TempDir(), "scan.png", []byte("not really an image"))

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Image file scan.png (OCR not available)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) Recognize(path string) (string, error) { return f.text, f.err }

func TestImageOCRRejectsNonImage(t *testing.T) {
	caps := Capabilities{RTF: true}.WithOCR(fakeOCR{text: "recognized"})
	e := New(caps, testLogger())
	// Content sniffing sees plain text, so the OCR provider is never asked.
	path := writeFile(t, t.TempDir(), "fake.jpg", []byte("just text bytes"))

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "OCR failed") {
		t.Errorf("got %q, want an OCR failure placeholder", got)
	}
}

func TestLegacyDocPlaceholder(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	path := writeFile(t, t.TempDir(), "old.doc", []byte{0xD0, 0xCF})

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Word file old.doc (legacy .doc decoder not available)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type fakeDocDecoder struct{ text string }

func (f fakeDocDecoder) Decode(path string) (string, error) { return f.text, nil }

func TestLegacyDocWithDecoder(t *testing.T) {
	caps := Capabilities{RTF: true}.WithLegacyDoc(fakeDocDecoder{text: "decoded body"})
	e := New(caps, testLogger())
	path := writeFile(t, t.TempDir(), "old.doc", []byte{0xD0, 0xCF})

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "decoded body" {
		t.Errorf("got %q", got)
	}
}

func TestRTFToText(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"plain paragraphs",
			`{\rtf1\ansi Hello World\par Second line\par}`,
			"Hello World\nSecond line",
		},
		{
			"font table skipped",
			`{\rtf1{\fonttbl{\f0 Times New Roman;}}Body text}`,
			"Body text",
		},
		{
			"ignorable destination skipped",
			`{\rtf1{\*\generator Acme Writer;}Visible}`,
			"Visible",
		},
		{
			"escapes",
			`{\rtf1 caf\'e9 \{braces\} back\\slash}`,
			"café {braces} back\\slash",
		},
		{
			"tabs and rows",
			`{\rtf1 a\tab b\cell c\row}`,
			"a\tb\tc",
		},
	}

	for _, tc := range cases {
		if got := rtfToText(tc.src); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRTFExtraction(t *testing.T) {
	e := New(Capabilities{RTF: true}, testLogger())
	path := writeFile(t, t.TempDir(), "doc.rtf", []byte(`{\rtf1\ansi Sample\par Text}`))

	got, err := e.Text(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Sample\nText" {
		t.Errorf("got %q", got)
	}
}
