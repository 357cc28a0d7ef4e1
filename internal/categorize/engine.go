package categorize

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// KeywordMatch is a hit from the keyword tier.
type KeywordMatch struct {
	Keyword    string
	Category   string
	Confidence float64
}

// KeywordEngine matches configured keywords against descriptions using
// the Aho-Corasick algorithm: one pass through the text finds every
// keyword regardless of how many are configured.
type KeywordEngine struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	category []string
	mu       sync.RWMutex
}

// NewKeywordEngine builds the engine from a validated config.
func NewKeywordEngine(cfg *Config) *KeywordEngine {
	e := &KeywordEngine{}
	e.Build(cfg)
	return e
}

// Build rebuilds the matcher from a config. Safe to call concurrently
// with Match; used for hot-swapping categories.
func (e *KeywordEngine) Build(cfg *Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var keywords []string
	var category []string
	for _, cat := range cfg.Categories {
		for _, kw := range cat.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" {
				continue
			}
			keywords = append(keywords, k)
			category = append(category, cat.Name)
		}
	}
	e.keywords = keywords
	e.category = category

	if len(keywords) == 0 {
		e.matcher = nil
		return
	}
	patterns := make([][]byte, len(keywords))
	for i, k := range keywords {
		patterns[i] = []byte(k)
	}
	e.matcher = ahocorasick.NewMatcher(patterns)
}

// Match returns the best keyword hit for the description, or nil.
// Among multiple hits the longest keyword wins: "tim hortons" beats
// "tim". Confidence is 1.0 for a description that is exactly the
// keyword, otherwise it scales with how much of the description the
// keyword explains, capped at 0.9.
func (e *KeywordEngine) Match(description string) *KeywordMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" {
		return nil
	}

	hits := e.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return nil
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.keywords) {
			continue
		}
		if best == -1 || len(e.keywords[idx]) > len(e.keywords[best]) {
			best = idx
		}
	}
	if best == -1 {
		return nil
	}

	kw := e.keywords[best]
	return &KeywordMatch{
		Keyword:    kw,
		Category:   e.category[best],
		Confidence: keywordConfidence(kw, normalized),
	}
}

// KeywordCount returns the number of keywords loaded.
func (e *KeywordEngine) KeywordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}

func keywordConfidence(keyword, normalized string) float64 {
	if keyword == normalized {
		return 1.0
	}
	ratio := float64(len(keyword)) / float64(len(normalized)) * 1.2
	if ratio > 0.9 {
		ratio = 0.9
	}
	if ratio < 0.7 {
		ratio = 0.7
	}
	return ratio
}
