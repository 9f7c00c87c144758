package knowledge

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters: target size in characters, with overlap for
// context continuity across chunk boundaries.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// sentence terminators tried in order when no paragraph break falls inside
// the window
var sentenceSeps = []string{". ", ".\n", "! ", "? "}

// Chunk splits text into overlapping slices of roughly chunkSize characters.
//
// Each window prefers to cut after the nearest paragraph break ("\n\n")
// inside it; failing that, after the nearest sentence terminator; failing
// both, exactly at the window boundary (may split mid-word). Slices are
// trimmed and empty ones dropped.
//
// The next window starts at max(start+1, end-overlap). The +1 floor
// guarantees forward progress even when overlap >= the remaining chunk
// length, so the loop terminates for every size/overlap combination.
func Chunk(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	length := len(text)

	for start < length {
		end := start + chunkSize
		if end > length {
			end = length
		}

		// Not at the end of the text: look backward for a good break point
		if end < length {
			if paraBreak := strings.LastIndex(text[start:end], "\n\n"); paraBreak > 0 {
				end = start + paraBreak + 2 // include the double newline
			} else {
				for _, sep := range sentenceSeps {
					if sentBreak := strings.LastIndex(text[start:end], sep); sentBreak > 0 {
						end = start + sentBreak + len(sep)
						break
					}
				}
			}
			// A raw window cut can land inside a multi-byte rune; back up to
			// the rune start so every chunk is valid UTF-8. Separator cuts
			// always land after ASCII, so this only moves boundary cuts.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Stop once a window reached the end of the text
		if end == length {
			break
		}

		// Advance with overlap; the +1 floor is the termination guarantee.
		// Moving forward to the next rune start keeps the window aligned
		// without ever stepping backward.
		next := end - overlap
		if next < start+1 {
			next = start + 1
		}
		for next < length && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return chunks
}
