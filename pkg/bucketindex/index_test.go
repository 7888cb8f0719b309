package bucketindex

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ai-docs-assistant-be/internal/pkg/logger"
)

func writeMetadata(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bucket_metadata.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newBuiltIndex(t *testing.T, maxResults int, lines ...string) *Index {
	t.Helper()
	ix := New(maxResults, false, logger.NewNop())
	if err := ix.Build(writeMetadata(t, lines...)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func TestIsBucketQuery(t *testing.T) {
	ix := New(5, false, logger.NewNop())

	cases := []struct {
		query string
		want  bool
	}{
		{"how to purge bucket in Cloudian", false},
		{"show buckets with department: engineering", true},
		{"dept:eng", true},
		{"list everything with label: audit", true},
		{"bucket: logs-bucket", true},
		{"bucket name: finance-reports", true},
		{"name: finance-reports", true},
		{"what is a bucket label", false},
		{"restore deleted objects", false},
		{"department of engineering buckets", false},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			if got := ix.IsBucketQuery(tc.query); got != tc.want {
				t.Errorf("IsBucketQuery(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestQuickSearchByDepartment(t *testing.T) {
	ix := newBuiltIndex(t, 5,
		"bucket: logs-bucket | department: engineering | label: retention-long",
		"bucket: finance-reports | department: finance | label: audit",
	)

	result, found := ix.QuickSearch("show buckets department: engineering")
	if !found {
		t.Fatal("expected quick-search hit")
	}
	if !strings.Contains(result, "logs-bucket") {
		t.Errorf("result missing engineering bucket: %q", result)
	}
	if strings.Contains(result, "finance-reports") {
		t.Errorf("result leaked other department: %q", result)
	}
	if !strings.HasPrefix(result, "Line 1: ") {
		t.Errorf("result lines must carry metadata line numbers: %q", result)
	}
}

func TestQuickSearchByNameAndLabel(t *testing.T) {
	ix := newBuiltIndex(t, 5,
		"bucket: logs-bucket | department: engineering | label: audit",
		"bucket: scratch | department: qa | label: temp",
	)

	result, found := ix.QuickSearch("bucket: logs-bucket")
	if !found || !strings.Contains(result, "logs-bucket") {
		t.Errorf("name lookup failed: found=%v result=%q", found, result)
	}

	result, found = ix.QuickSearch("everything with label: temp")
	if !found || !strings.Contains(result, "scratch") {
		t.Errorf("label lookup failed: found=%v result=%q", found, result)
	}
}

func TestQuickSearchGatesOutOperationalQuestions(t *testing.T) {
	ix := newBuiltIndex(t, 5,
		"bucket: logs-bucket | department: engineering",
	)

	if _, found := ix.QuickSearch("how do I purge a bucket"); found {
		t.Error("operational question must fall through, not hit the metadata tier")
	}
}

func TestQuickSearchDeduplicates(t *testing.T) {
	// One line reachable through both the department and label buckets.
	ix := newBuiltIndex(t, 5,
		"bucket: logs-bucket | department: engineering | label: audit",
	)

	result, found := ix.QuickSearch("label: audit department: engineering")
	if !found {
		t.Fatal("expected hit")
	}
	if got := strings.Count(result, "logs-bucket"); got != 1 {
		t.Errorf("line returned %d times, want 1:\n%s", got, result)
	}
}

func TestQuickSearchCapsResults(t *testing.T) {
	ix := newBuiltIndex(t, 2,
		"bucket: a1 | department: engineering",
		"bucket: a2 | department: engineering",
		"bucket: a3 | department: engineering",
	)

	result, found := ix.QuickSearch("department: engineering")
	if !found {
		t.Fatal("expected hit")
	}
	if got := len(strings.Split(result, "\n")); got != 2 {
		t.Errorf("got %d result lines, want cap of 2:\n%s", got, result)
	}
}

func TestBuildIdempotent(t *testing.T) {
	path := writeMetadata(t,
		"bucket: logs-bucket | department: engineering | label: audit",
		"bucket: finance-reports | department: finance",
	)

	ix := New(5, false, logger.NewNop())
	if err := ix.Build(path); err != nil {
		t.Fatal(err)
	}
	first := ix.Stats()
	firstResult, _ := ix.QuickSearch("department: finance")

	if err := ix.Build(path); err != nil {
		t.Fatal(err)
	}
	second := ix.Stats()
	secondResult, _ := ix.QuickSearch("department: finance")

	// Timing fields differ run to run by nature.
	first.LastBuildDuration, second.LastBuildDuration = 0, 0
	first.BuiltAt = second.BuiltAt
	if !reflect.DeepEqual(first, second) {
		t.Errorf("stats differ across identical builds:\n%+v\n%+v", first, second)
	}
	if firstResult != secondResult {
		t.Errorf("results differ across identical builds:\n%q\n%q", firstResult, secondResult)
	}
}

func TestBuildMissingFileDisablesIndex(t *testing.T) {
	ix := New(5, false, logger.NewNop())

	err := ix.Build(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if ix.Enabled() {
		t.Error("index must be disabled after a failed build")
	}
	if _, found := ix.QuickSearch("department: engineering"); found {
		t.Error("disabled index must not answer")
	}
}

func TestBuildEmptyPathDisablesQuietly(t *testing.T) {
	ix := New(5, false, logger.NewNop())
	if err := ix.Build(""); err != nil {
		t.Fatalf("empty path is a configuration choice, not an error: %v", err)
	}
	if ix.Enabled() {
		t.Error("index must stay disabled without a metadata path")
	}
}

func TestKeywordFallbackOffByDefault(t *testing.T) {
	// Gated-in phrasing whose extracted value matches nothing; with the
	// keyword scan off this must miss.
	ix := newBuiltIndex(t, 5,
		"bucket: logs-bucket | department: engineering",
	)

	if _, found := ix.QuickSearch("bucket: unknownvalue logs"); found {
		t.Error("expected miss with keyword fallback disabled")
	}
}

func TestKeywordFallbackWhenEnabled(t *testing.T) {
	ix := New(5, true, logger.NewNop())
	if err := ix.Build(writeMetadata(t,
		"bucket: logs-bucket | department: engineering",
	)); err != nil {
		t.Fatal(err)
	}

	result, found := ix.QuickSearch("bucket: nosuchname logs-bucket")
	if !found {
		t.Fatal("keyword fallback should catch the literal token")
	}
	if !strings.Contains(result, "logs-bucket") {
		t.Errorf("unexpected fallback result: %q", result)
	}
}

func TestEndToEndSpecExample(t *testing.T) {
	ix := newBuiltIndex(t, 5,
		"department: engineering | name: logs-bucket",
	)

	result, found := ix.QuickSearch("show buckets department: engineering")
	if !found {
		t.Fatal("expected hit")
	}
	if !strings.Contains(result, "logs-bucket") {
		t.Errorf("answer must contain the bucket name: %q", result)
	}
}
