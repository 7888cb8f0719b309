package fulltext

import (
	"strings"
	"testing"
)

const corpus = `Bucket purge removes all objects permanently.
To restore a bucket use the admin console.
The hsctl tool manages cluster nodes.
Purge operations cannot be undone once started.
Retention policies protect objects from deletion.`

func TestSearchExactPhraseRanksFirst(t *testing.T) {
	result := Search("bucket purge", corpus, 10)
	if result == "" {
		t.Fatal("expected matches")
	}

	lines := strings.Split(result, "\n")
	if !strings.Contains(lines[0], "Bucket purge removes") {
		t.Errorf("exact phrase match must rank first, got %q", lines[0])
	}
}

func TestSearchMultiTermBeatsSingleTerm(t *testing.T) {
	result := Search("purge objects", corpus, 10)
	lines := strings.Split(result, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected several matches, got %q", result)
	}

	// "Bucket purge removes all objects permanently." carries both terms;
	// lines with only one of them must come after it.
	if !strings.Contains(lines[0], "removes all objects") {
		t.Errorf("two-term line must rank first, got %q", lines[0])
	}
}

func TestSearchSingleTermMatch(t *testing.T) {
	result := Search("retention", corpus, 10)
	if !strings.Contains(result, "Retention policies") {
		t.Errorf("single term should still match, got %q", result)
	}
}

func TestSearchShortTermsIgnoredForSingleMatch(t *testing.T) {
	// "ab" appears inside "drab" but two-character terms do not qualify
	// for the single-term rule, and only one term matches overall.
	if result := Search("ab xyzzynotfound", "drab colors here.", 10); result != "" {
		t.Errorf("expected no matches, got %q", result)
	}
}

func TestSearchCapsResults(t *testing.T) {
	result := Search("bucket purge objects", corpus, 2)
	if got := len(strings.Split(result, "\n")); got != 2 {
		t.Errorf("got %d lines, want 2:\n%s", got, result)
	}
}

func TestSearchLineNumbersAreCorpusLines(t *testing.T) {
	result := Search("hsctl", corpus, 10)
	if !strings.HasPrefix(result, "Line 3: ") {
		t.Errorf("expected corpus line number 3, got %q", result)
	}
}

func TestSearchEmptyInputs(t *testing.T) {
	if Search("", corpus, 10) != "" {
		t.Error("empty query must return no matches")
	}
	if Search("bucket", "", 10) != "" {
		t.Error("empty corpus must return no matches")
	}
	if Search("no such text anywhere", corpus, 10) != "" {
		t.Error("unmatched query must return empty string")
	}
}

func TestSearchTieKeepsCorpusOrder(t *testing.T) {
	twoSingles := "alpha retention here.\nmore retention text."
	result := Search("retention", twoSingles, 10)
	lines := strings.Split(result, "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 matches, got %q", result)
	}
	if !strings.HasPrefix(lines[0], "Line 1:") || !strings.HasPrefix(lines[1], "Line 2:") {
		t.Errorf("equal scores must keep corpus order: %q", result)
	}
}

func TestSearchDoesNotMutateInputs(t *testing.T) {
	before := corpus
	Search("bucket", corpus, 10)
	if corpus != before {
		t.Error("corpus must be untouched")
	}
}
