// Package bucketindex holds the structured-metadata tier: an in-memory
// inverted index over the flattened bucket metadata file, bucketed by
// extracted department, label and resource-name values. It answers only
// queries that carry an explicit attribute marker; everything else falls
// through to the retrieval tiers.
package bucketindex

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"ai-docs-assistant-be/internal/pkg/logger"
)

var (
	deptPattern  = regexp.MustCompile(`dept(?:artment)?\s*:?\s*"?([\w\-\s]+)"?`)
	labelPattern = regexp.MustCompile(`label\s*:?\s*"?([\w\-:\.]+)"?`)
	namePattern  = regexp.MustCompile(`(?:bucket|name)\s*:?\s*"?([a-zA-Z0-9_\-\.]+)"?`)

	// Gate patterns require the colon: "dept: engineering" engages this
	// tier, "how do I purge a bucket" must not.
	gateDept  = regexp.MustCompile(`\bdept(?:artment)?\s*:`)
	gateLabel = regexp.MustCompile(`\blabel\s*:`)
	gateName  = regexp.MustCompile(`\b(?:bucket\s*name|bucket|name)\s*:`)

	keywordPattern = regexp.MustCompile(`\b([\w\-:\.]+)\b`)
)

type IndexedLine struct {
	LineNumber int
	Text       string
}

type Stats struct {
	Enabled           bool          `json:"enabled"`
	Lines             int           `json:"lines"`
	Departments       int           `json:"departments"`
	Labels            int           `json:"labels"`
	Names             int           `json:"names"`
	LastBuildDuration time.Duration `json:"last_build_duration"`
	BuiltAt           time.Time     `json:"built_at"`
}

type Index struct {
	maxResults      int
	keywordFallback bool
	logger          logger.ILogger

	mu         sync.RWMutex
	enabled    bool
	deptIndex  map[string][]IndexedLine
	labelIndex map[string][]IndexedLine
	nameIndex  map[string][]IndexedLine
	allLines   []IndexedLine
	buildDur   time.Duration
	builtAt    time.Time
}

func New(maxResults int, keywordFallback bool, log logger.ILogger) *Index {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Index{
		maxResults:      maxResults,
		keywordFallback: keywordFallback,
		logger:          log,
		deptIndex:       map[string][]IndexedLine{},
		labelIndex:      map[string][]IndexedLine{},
		nameIndex:       map[string][]IndexedLine{},
	}
}

// Build reads the metadata file and replaces the whole index in one swap.
// Any failure leaves the index disabled, never partially built; readers
// concurrent with a rebuild see the old buckets or the new ones.
func (ix *Index) Build(path string) error {
	start := time.Now()

	if path == "" {
		ix.disable()
		ix.logger.Info("bucketindex", "Bucket index disabled, no metadata path configured", nil)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		ix.disable()
		ix.logger.Warn("bucketindex", "Bucket metadata file not readable, index disabled", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to open metadata file %s: %w", path, err)
	}
	defer file.Close()

	deptIndex := map[string][]IndexedLine{}
	labelIndex := map[string][]IndexedLine{}
	nameIndex := map[string][]IndexedLine{}
	var allLines []IndexedLine

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		indexed := IndexedLine{LineNumber: lineNum, Text: line}
		allLines = append(allLines, indexed)
		lower := strings.ToLower(line)

		for _, m := range deptPattern.FindAllStringSubmatch(lower, -1) {
			key := strings.TrimSpace(m[1])
			deptIndex[key] = append(deptIndex[key], indexed)
		}
		for _, m := range labelPattern.FindAllStringSubmatch(lower, -1) {
			key := strings.TrimSpace(m[1])
			labelIndex[key] = append(labelIndex[key], indexed)
		}
		for _, m := range namePattern.FindAllStringSubmatch(lower, -1) {
			key := strings.TrimSpace(m[1])
			nameIndex[key] = append(nameIndex[key], indexed)
		}
	}

	if err := scanner.Err(); err != nil {
		ix.disable()
		ix.logger.Error("bucketindex", "Failed reading metadata file, index disabled", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	ix.mu.Lock()
	ix.enabled = true
	ix.deptIndex = deptIndex
	ix.labelIndex = labelIndex
	ix.nameIndex = nameIndex
	ix.allLines = allLines
	ix.buildDur = time.Since(start)
	ix.builtAt = time.Now()
	ix.mu.Unlock()

	ix.logger.Info("bucketindex", "Bucket index built", map[string]interface{}{
		"lines":       len(allLines),
		"departments": len(deptIndex),
		"labels":      len(labelIndex),
		"names":       len(nameIndex),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (ix *Index) disable() {
	ix.mu.Lock()
	ix.enabled = false
	ix.deptIndex = map[string][]IndexedLine{}
	ix.labelIndex = map[string][]IndexedLine{}
	ix.nameIndex = map[string][]IndexedLine{}
	ix.allLines = nil
	ix.mu.Unlock()
}

func (ix *Index) Enabled() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.enabled
}

// IsBucketQuery reports whether the query names an attribute explicitly.
// The colon requirement is the precision gate: without it, operational
// questions that merely mention buckets would be misrouted into metadata
// lookup instead of document retrieval.
func (ix *Index) IsBucketQuery(query string) bool {
	lower := strings.ToLower(query)
	return gateDept.MatchString(lower) ||
		gateLabel.MatchString(lower) ||
		gateName.MatchString(lower)
}

// QuickSearch extracts attribute values from a gated-in query and unions
// the matching bucket lines, de-duplicated in first-seen order and capped
// at the configured maximum. The formatted block keeps the original line
// numbers so answers stay traceable to the metadata file.
func (ix *Index) QuickSearch(query string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.enabled {
		return "", false
	}

	lower := strings.ToLower(query)
	if !ix.IsBucketQuery(lower) {
		return "", false
	}

	var results []IndexedLine

	if m := deptPattern.FindStringSubmatch(lower); m != nil {
		results = append(results, ix.deptIndex[strings.TrimSpace(m[1])]...)
	}
	if m := labelPattern.FindStringSubmatch(lower); m != nil {
		results = append(results, ix.labelIndex[strings.TrimSpace(m[1])]...)
	}
	if m := namePattern.FindStringSubmatch(lower); m != nil {
		results = append(results, ix.nameIndex[strings.TrimSpace(m[1])]...)
	}

	if len(results) == 0 && ix.keywordFallback {
		results = ix.keywordScan(lower)
	}

	if len(results) == 0 {
		return "", false
	}

	seen := make(map[int]bool, len(results))
	var b strings.Builder
	count := 0
	for _, line := range results {
		if seen[line.LineNumber] {
			continue
		}
		seen[line.LineNumber] = true
		if count > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Line %d: %s", line.LineNumber, line.Text)
		count++
		if count >= ix.maxResults {
			break
		}
	}

	return b.String(), true
}

// keywordScan is the optional O(lines) fallback for gated-in queries whose
// extracted values matched nothing. Off by default: it historically
// misrouted operational questions.
func (ix *Index) keywordScan(lowerQuery string) []IndexedLine {
	var results []IndexedLine
	for _, keyword := range keywordPattern.FindAllString(lowerQuery, -1) {
		if len(keyword) <= 2 {
			continue
		}
		for _, line := range ix.allLines {
			if strings.Contains(strings.ToLower(line.Text), keyword) {
				results = append(results, line)
				if len(results) >= ix.maxResults {
					break
				}
			}
		}
		if len(results) > 0 {
			break
		}
	}
	return results
}

func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		Enabled:           ix.enabled,
		Lines:             len(ix.allLines),
		Departments:       len(ix.deptIndex),
		Labels:            len(ix.labelIndex),
		Names:             len(ix.nameIndex),
		LastBuildDuration: ix.buildDur,
		BuiltAt:           ix.builtAt,
	}
}
