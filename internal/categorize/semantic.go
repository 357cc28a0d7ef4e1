package categorize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// exemplarDoc is one indexed merchant exemplar.
type exemplarDoc struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// SemanticMatchResult is a hit from the semantic tier. Score is in
// (0, 1]; higher is closer.
type SemanticMatchResult struct {
	Category string
	Exemplar string
	Score    float64
}

// SemanticIndex catches descriptions the keyword tier misses:
// truncated merchant names, location suffixes, minor misspellings.
// Candidates come from a full-text index over category exemplars and
// are rescored with string similarity so the final score does not
// depend on corpus statistics.
type SemanticIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewSemanticIndex builds an in-memory index over the config's
// exemplars.
func NewSemanticIndex(cfg *Config) (*SemanticIndex, error) {
	si := &SemanticIndex{}
	if err := si.Build(cfg); err != nil {
		return nil, err
	}
	return si, nil
}

func buildExemplarMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Build replaces the index contents from a config.
func (si *SemanticIndex) Build(cfg *Config) error {
	index, err := bleve.NewMemOnly(buildExemplarMapping())
	if err != nil {
		return fmt.Errorf("create semantic index: %w", err)
	}

	batch := index.NewBatch()
	for _, cat := range cfg.Categories {
		for i, ex := range cat.exemplars() {
			doc := exemplarDoc{
				Category: cat.Name,
				Text:     strings.ToLower(strings.TrimSpace(ex)),
			}
			if doc.Text == "" {
				continue
			}
			id := fmt.Sprintf("%s_%d", cat.Name, i)
			if err := batch.Index(id, doc); err != nil {
				return fmt.Errorf("index exemplar %s: %w", id, err)
			}
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("build semantic index: %w", err)
	}

	si.mu.Lock()
	old := si.index
	si.index = index
	si.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Query returns the closest category for the description, or nil when
// nothing in the corpus resembles it.
func (si *SemanticIndex) Query(description string) (*SemanticMatchResult, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" || si.index == nil {
		return nil, nil
	}

	matchQuery := bleve.NewMatchQuery(normalized)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = 5
	searchRequest.Fields = []string{"category", "text"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	var best *SemanticMatchResult
	for _, hit := range searchResults.Hits {
		category, _ := hit.Fields["category"].(string)
		text, _ := hit.Fields["text"].(string)
		if category == "" || text == "" {
			continue
		}
		score := similarity(normalized, text)
		if best == nil || score > best.Score {
			best = &SemanticMatchResult{
				Category: category,
				Exemplar: text,
				Score:    score,
			}
		}
	}
	return best, nil
}

// Close releases the underlying index.
func (si *SemanticIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.index != nil {
		return si.index.Close()
	}
	return nil
}

// similarity scores how closely an exemplar explains a description,
// in (0, 1]. Containment dominates since statement descriptions wrap
// merchant names in store numbers and city suffixes; edit distance and
// subsequence rank cover misspellings.
func similarity(desc, exemplar string) float64 {
	if desc == exemplar {
		return 1.0
	}
	if strings.Contains(desc, exemplar) {
		return 0.75 + 0.25*float64(len(exemplar))/float64(len(desc))
	}
	if strings.Contains(exemplar, desc) {
		return 0.75 + 0.25*float64(len(desc))/float64(len(exemplar))
	}

	maxLen := len(desc)
	if len(exemplar) > maxLen {
		maxLen = len(exemplar)
	}
	if maxLen == 0 {
		return 0
	}
	levScore := float64(maxLen-levenshteinDistance(desc, exemplar)) / float64(maxLen)

	rankScore := 0.0
	if rank := fuzzy.RankMatch(exemplar, desc); rank >= 0 && rank < len(desc) {
		rankScore = 0.6 - 0.4*float64(rank)/float64(len(desc))
	}

	if levScore > rankScore {
		return levScore
	}
	return rankScore
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func minOf(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
