package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	if got := Split("", 100); len(got) != 0 {
		t.Errorf("expected 0 chunks for empty input, got %d", len(got))
	}
	if got := Split("\n\n\n\n", 100); len(got) != 0 {
		t.Errorf("expected 0 chunks for whitespace-only input, got %d", len(got))
	}
}

func TestSplitSingleParagraph(t *testing.T) {
	chunks := Split("short paragraph", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short paragraph" {
		t.Errorf("unexpected chunk text %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplitKeepsParagraphsTogether(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"
	chunks := Split(text, 40)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "first paragraph\n\nsecond paragraph" {
		t.Errorf("unexpected first chunk: %q", chunks[0].Text)
	}
	if chunks[1].Text != "third paragraph" {
		t.Errorf("unexpected second chunk: %q", chunks[1].Text)
	}
}

func TestSplitOversizedParagraphFallsBackToSentences(t *testing.T) {
	text := "Alpha sentence one. Beta sentence two. Gamma sentence three."
	chunks := Split(text, 45)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
	if !strings.Contains(chunks[0].Text, "Alpha") || !strings.Contains(chunks[1].Text, "Gamma") {
		t.Errorf("sentence content lost: %q / %q", chunks[0].Text, chunks[1].Text)
	}
}

func TestSplitIndivisibleSentence(t *testing.T) {
	// A single sentence longer than the limit becomes its own chunk.
	long := strings.Repeat("x", 120)
	chunks := Split(long, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, long) {
		t.Error("oversized sentence content lost")
	}
}

func TestSplitBoundedByMaxLength(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This is a fairly normal length sentence for testing purposes.\n\n")
	}
	chunks := Split(b.String(), 300)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Text) > 300 {
			t.Errorf("chunk %d exceeds max length: %d chars", c.Index, len(c.Text))
		}
	}
}

func TestSplitReconstructsContent(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine.\n\nTen eleven twelve."
	chunks := Split(text, 30)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString(" ")
	}
	for _, word := range strings.Fields("One two three Four five six Seven eight nine Ten eleven twelve") {
		if !strings.Contains(joined.String(), word) {
			t.Errorf("word %q lost during chunking", word)
		}
	}
}
