// Package fulltext is the terminal retrieval tier: a scored linear scan
// over the flattened corpus, used when both the metadata index and vector
// retrieval came up empty. Search is a pure function of its inputs and
// never fails; no matches is a valid outcome the orchestrator turns into
// "not found".
package fulltext

import (
	"fmt"
	"sort"
	"strings"
)

const (
	scoreExactPhrase = 3
	scoreMultiTerm   = 2
	scoreSingleTerm  = 1
)

type match struct {
	lineNumber int
	text       string
	score      int
}

// Search scores every corpus line against the query: exact phrase first,
// then co-occurrence of two or more query terms, then any single term
// longer than two characters. Ties keep corpus order. Returns up to
// maxResults formatted "Line N: ..." entries, or "" when nothing matched.
func Search(query, corpus string, maxResults int) string {
	if query == "" || corpus == "" || maxResults <= 0 {
		return ""
	}

	queryLower := strings.ToLower(query)
	terms := strings.Fields(queryLower)

	var matches []match
	for i, line := range strings.Split(corpus, "\n") {
		lineLower := strings.ToLower(line)

		switch {
		case strings.Contains(lineLower, queryLower):
			matches = append(matches, match{i + 1, strings.TrimSpace(line), scoreExactPhrase})
		case len(terms) > 1 && countTerms(lineLower, terms) >= 2:
			matches = append(matches, match{i + 1, strings.TrimSpace(line), scoreMultiTerm})
		case anyLongTerm(lineLower, terms):
			matches = append(matches, match{i + 1, strings.TrimSpace(line), scoreSingleTerm})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].score > matches[b].score
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("Line %d: %s", m.lineNumber, m.text))
	}
	return strings.Join(parts, "\n")
}

func countTerms(line string, terms []string) int {
	count := 0
	for _, term := range terms {
		if strings.Contains(line, term) {
			count++
		}
	}
	return count
}

func anyLongTerm(line string, terms []string) bool {
	for _, term := range terms {
		if len(term) > 2 && strings.Contains(line, term) {
			return true
		}
	}
	return false
}
