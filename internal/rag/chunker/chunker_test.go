package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitEmpty(t *testing.T) {
	c := New(1000, 200)
	if got := c.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := c.Split("   \n\t  "); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

func TestSplitSingleChunk(t *testing.T) {
	c := New(1000, 200)
	got := c.Split("  short document  ")
	if len(got) != 1 || got[0] != "short document" {
		t.Fatalf("Split = %v, want one trimmed chunk", got)
	}
}

func TestSplitRespectsSize(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > c.Size {
			t.Errorf("chunk %d has %d chars, exceeds size %d", i, len(chunk), c.Size)
		}
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("a", 60)
	text := para + "\n\n" + para + "\n\n" + para

	// Zero overlap so chunks align exactly with the cut points.
	c := New(100, 0)
	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if strings.Contains(chunk, "\n\n") {
			t.Errorf("chunk %d spans a paragraph break: %q", i, chunk)
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	text := strings.Repeat("word ", 200)
	c := New(100, 30)
	chunks := c.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	// Adjacent chunks share trailing context: the start of each chunk after
	// the first should appear in its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > 10 {
			head = head[:10]
		}
		if !strings.Contains(chunks[i-1], head) {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestSplitCoversAllContent(t *testing.T) {
	var words []string
	for r := 'a'; r <= 'z'; r++ {
		words = append(words, strings.Repeat(string(r), 8))
	}
	text := strings.Join(words, " ")

	c := New(50, 10)
	joined := strings.Join(c.Split(text), " ")
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q missing from chunk output", w)
		}
	}
}

func TestSplitOversizedToken(t *testing.T) {
	token := strings.Repeat("x", 300)
	text := "intro words here " + token + " trailing words"

	c := New(100, 20)
	chunks := c.Split(text)

	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, token) {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized token was split across chunks: %v", chunks)
	}
}

func TestSplitCountsCharactersNotBytes(t *testing.T) {
	// Each repetition is 5 characters but 13 bytes; byte-based sizing would
	// cut chunks at roughly a third of the character budget.
	text := strings.Repeat("你好世界 ", 100)

	c := New(50, 10)
	chunks := c.Split(text)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	largest := 0
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, chunk)
		}
		n := utf8.RuneCountInString(chunk)
		if n > c.Size {
			t.Errorf("chunk %d has %d characters, exceeds size %d", i, n, c.Size)
		}
		if n > largest {
			largest = n
		}
	}
	if largest < 40 {
		t.Errorf("largest chunk has %d characters, the size budget must count characters", largest)
	}
	if len(chunks) > 20 {
		t.Errorf("got %d chunks, byte-based sizing would overshoot the chunk count", len(chunks))
	}
}

func TestNewDegenerateParameters(t *testing.T) {
	c := New(0, -5)
	if c.Size != 1000 || c.Overlap != 0 {
		t.Errorf("New(0,-5) = %+v, want defaults", c)
	}

	c = New(100, 100)
	if c.Overlap >= c.Size {
		t.Errorf("overlap %d not clamped below size %d", c.Overlap, c.Size)
	}

	// A pathological overlap must still terminate.
	chunks := New(10, 9).Split(strings.Repeat("ab ", 100))
	if len(chunks) == 0 {
		t.Error("no chunks produced")
	}
}
