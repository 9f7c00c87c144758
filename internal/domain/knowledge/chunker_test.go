package knowledge

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestChunk_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := Chunk("", 500, 100); got != nil {
		t.Errorf("Chunk(\"\") = %v; want nil", got)
	}
	if got := Chunk("   ", 500, 100); got != nil {
		t.Errorf("Chunk(\"   \") = %v; want nil", got)
	}
}

func TestChunk_ShortText_SingleChunk(t *testing.T) {
	t.Parallel()

	text := "A short document that fits in one chunk."
	got := Chunk(text, 500, 100)

	if len(got) != 1 {
		t.Fatalf("Chunk() returned %d chunks; want 1", len(got))
	}
	if got[0] != text {
		t.Errorf("Chunk()[0] = %q; want %q", got[0], text)
	}
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	t.Parallel()

	para1 := strings.Repeat("a", 200)
	para2 := strings.Repeat("b", 400)
	text := para1 + "\n\n" + para2

	got := Chunk(text, 300, 50)

	if len(got) < 2 {
		t.Fatalf("Chunk() returned %d chunks; want >= 2", len(got))
	}
	// First cut should land on the paragraph boundary, not mid-paragraph
	if got[0] != para1 {
		t.Errorf("first chunk = %q...; want the first paragraph alone", got[0][:min(40, len(got[0]))])
	}
}

func TestChunk_FallsBackToSentenceBreak(t *testing.T) {
	t.Parallel()

	sentence := "This is a sentence. "
	text := strings.Repeat(sentence, 40) // 800 chars, no paragraph breaks

	got := Chunk(text, 300, 50)

	if len(got) < 2 {
		t.Fatalf("Chunk() returned %d chunks; want >= 2", len(got))
	}
	for i, c := range got[:len(got)-1] {
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, c[len(c)-10:])
		}
	}
}

// TestChunk_CoversOriginalText verifies that the chunks jointly cover the
// input: every window of the original text appears in some chunk.
func TestChunk_CoversOriginalText(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("Sentence number content word filler text here. ")
	}
	text := strings.TrimSpace(b.String())

	chunks := Chunk(text, 500, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	joined := strings.Join(chunks, "")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q from input missing from all chunks", word)
		}
	}

	// No chunk may exceed the window by more than a boundary token
	for i, c := range chunks {
		if len(c) > 500+2 {
			t.Errorf("chunk %d length = %d; want <= chunk size plus boundary token", i, len(c))
		}
	}
}

// TestChunk_TerminatesWithLargeOverlap is the regression for the forward-
// progress floor: overlap >= chunk size must still terminate promptly.
func TestChunk_TerminatesWithLargeOverlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 2000) // no break points at all

	done := make(chan []string, 1)
	go func() { done <- Chunk(text, 100, 100) }()

	select {
	case chunks := <-done:
		if len(chunks) == 0 {
			t.Error("Chunk() returned no chunks for non-empty input")
		}
		// With a +1 floor the iteration count is bounded by the text length
		if len(chunks) > len(text) {
			t.Errorf("Chunk() returned %d chunks for %d chars; floor not advancing", len(chunks), len(text))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Chunk() did not terminate with overlap >= chunk size")
	}
}

// TestChunk_AccentedTextStaysValidUTF8 covers boundary cuts through text with
// no paragraph or sentence breaks: the raw window cut and the overlap
// back-step must both land on rune boundaries, never splitting a multi-byte
// character into dangling bytes.
func TestChunk_AccentedTextStaysValidUTF8(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("çã", 600) // 2400 bytes, every boundary mid-rune prone

	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"odd window no overlap", 501, 0},
		{"default parameters", DefaultChunkSize, DefaultChunkOverlap},
		{"odd overlap", 500, 101},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			chunks := Chunk(text, tc.chunkSize, tc.overlap)
			if len(chunks) < 2 {
				t.Fatalf("expected multiple chunks, got %d", len(chunks))
			}
			for i, c := range chunks {
				if !utf8.ValidString(c) {
					t.Errorf("chunk %d is not valid UTF-8 (ends %q)", i, c[len(c)-4:])
				}
			}
		})
	}
}

func TestChunk_OverlapSharedBetweenChunks(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("z", 1200) // forces cuts exactly at window boundaries

	chunks := Chunk(text, 500, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Consecutive chunks share the overlap region
	tail := chunks[0][len(chunks[0])-100:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Error("second chunk does not start with the first chunk's overlap tail")
	}
}
