package categorize

import (
	"fmt"
	"log/slog"
	"sync"
)

// MatchKind tags which tier produced a category.
type MatchKind int

const (
	// Unmatched means no tier scored above threshold; the fallback
	// category applies.
	Unmatched MatchKind = iota
	// RuleMatch comes from the keyword tier.
	RuleMatch
	// SemanticMatch comes from the exemplar index.
	SemanticMatch
)

func (k MatchKind) String() string {
	switch k {
	case RuleMatch:
		return "rule"
	case SemanticMatch:
		return "semantic"
	default:
		return "unmatched"
	}
}

// Match is the outcome of categorizing one description.
type Match struct {
	Kind       MatchKind
	Category   string
	Keyword    string
	Confidence float64
}

// Service runs the tiered categorization pipeline over one active
// config. The config can be swapped at runtime; a swap is atomic and
// an invalid replacement leaves the current config in place.
type Service struct {
	logger    *slog.Logger
	threshold float64

	mu       sync.RWMutex
	cfg      *Config
	engine   *KeywordEngine
	semantic *SemanticIndex
}

// DefaultSemanticThreshold is the minimum semantic score accepted when
// none is configured.
const DefaultSemanticThreshold = 0.3

// maxSemanticConfidence caps the semantic tier below 1.0; full
// confidence is reserved for exact keyword rules.
const maxSemanticConfidence = 0.99

// New creates a service from a validated config.
func New(cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	semantic, err := NewSemanticIndex(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		logger:    slog.Default(),
		threshold: DefaultSemanticThreshold,
		cfg:       cfg,
		engine:    NewKeywordEngine(cfg),
		semantic:  semantic,
	}, nil
}

// WithLogger sets the service's logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithThreshold sets the minimum semantic score accepted.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// Categorize assigns a category to a description. The keyword tier
// wins outright when it hits; the semantic tier answers only above the
// configured threshold; everything else is the fallback category with
// zero confidence.
func (s *Service) Categorize(description string) Match {
	s.mu.RLock()
	engine, semantic, fallback := s.engine, s.semantic, s.cfg.fallback()
	s.mu.RUnlock()

	if kw := engine.Match(description); kw != nil {
		return Match{
			Kind:       RuleMatch,
			Category:   kw.Category,
			Keyword:    kw.Keyword,
			Confidence: kw.Confidence,
		}
	}

	sem, err := semantic.Query(description)
	if err != nil {
		s.logger.Warn("semantic tier failed",
			slog.String("description", description),
			slog.Any("error", err))
	}
	if sem != nil && sem.Score >= s.threshold {
		confidence := sem.Score
		if confidence > maxSemanticConfidence {
			confidence = maxSemanticConfidence
		}
		return Match{
			Kind:       SemanticMatch,
			Category:   sem.Category,
			Keyword:    sem.Exemplar,
			Confidence: confidence,
		}
	}

	return Match{Kind: Unmatched, Category: fallback, Confidence: 0}
}

// CategorizeAll categorizes a batch of descriptions in order.
func (s *Service) CategorizeAll(descriptions []string) []Match {
	out := make([]Match, len(descriptions))
	for i, d := range descriptions {
		out[i] = s.Categorize(d)
	}
	return out
}

// Swap validates and installs a replacement config. On error the
// active config is untouched.
func (s *Service) Swap(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("rejected category config: %w", err)
	}
	semantic, err := NewSemanticIndex(cfg)
	if err != nil {
		return err
	}
	engine := NewKeywordEngine(cfg)

	s.mu.Lock()
	old := s.semantic
	s.cfg = cfg
	s.engine = engine
	s.semantic = semantic
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	s.logger.Info("category config swapped",
		slog.Int("version", cfg.Version),
		slog.Int("categories", len(cfg.Categories)))
	return nil
}

// Fallback returns the active fallback category name.
func (s *Service) Fallback() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.fallback()
}

// Close releases the semantic index.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.semantic != nil {
		return s.semantic.Close()
	}
	return nil
}
