package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 800, 100)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	if chunks := SplitText("", 800, 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %v", chunks)
	}
	if chunks := SplitText("   \n  ", 800, 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %v", chunks)
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := SplitText(text, 80, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 80 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, utf8.RuneCountInString(c))
		}
	}
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	text := "First paragraph with some words in it.\n\nSecond paragraph with other words."
	chunks := SplitText(text, 50, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected split at paragraph break, got %v", chunks)
	}
	if !strings.Contains(chunks[0], "First paragraph") {
		t.Errorf("first chunk missing first paragraph: %q", chunks[0])
	}
	if !strings.Contains(chunks[1], "Second paragraph") {
		t.Errorf("second chunk missing second paragraph: %q", chunks[1])
	}
}

func TestSplitTextOverlapSharesContent(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks := SplitText(text, 20, 5)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// With no separators in the text the splitter falls back to
	// character slicing, so each chunk starts before the previous ended.
	totalLen := 0
	for _, c := range chunks {
		totalLen += len(c)
	}
	if totalLen <= 100 {
		t.Errorf("expected overlapping chunks to repeat content, total %d", totalLen)
	}
}

func TestSplitTextNoContentLost(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks := SplitText(text, 20, 0)
	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q missing from chunks %v", word, chunks)
		}
	}
}

func TestSplitTextSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := SplitText(text, 30, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 30 {
			t.Errorf("chunk %d exceeds size limit: %q", i, c)
		}
	}
}
