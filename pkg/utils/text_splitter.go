package utils

import (
	"strings"
	"unicode/utf8"
)

// Separator preference, coarsest first: paragraph breaks, then lines,
// sentences, clauses, words, and finally raw characters.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// SplitText splits a long string into chunks of at most chunkSize characters,
// repeating roughly 'overlap' characters between neighbouring chunks so
// context is preserved at boundaries. Each chunk breaks at the coarsest
// separator present in the text rather than mid-word.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = len(text) + 1
	}
	if overlap >= chunkSize {
		overlap = 0 // fallback if overlap >= chunkSize
	}
	if utf8.RuneCountInString(text) <= chunkSize {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	s := splitter{chunkSize: chunkSize, overlap: overlap}
	return s.split(text, defaultSeparators)
}

type splitter struct {
	chunkSize int
	overlap   int
}

func (s splitter) split(text string, separators []string) []string {
	// Pick the coarsest separator that actually occurs; "" always matches
	// and splits per character.
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var final []string
	var pending []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending)...)
			pending = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending)...)
	}
	return final
}

// merge greedily packs pieces into chunks up to chunkSize, then carries the
// tail pieces forward until their combined length drops to the overlap.
func (s splitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if total+pieceLen > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+pieceLen > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator splits text by separator, reattaching the separator
// to the front of each following piece so no characters are lost when pieces
// are joined back together. An empty separator splits per character.
func splitKeepingSeparator(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, separator)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = separator + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
