package profile

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
)

// ErrUnknownFormat is returned when no profile's signatures clear the
// detection threshold.
var ErrUnknownFormat = errors.New("unrecognized institution")

const (
	defaultPages    = 3
	defaultMinScore = 2
)

// Detector scores extracted statement text against the registry and picks
// the best matching profile. Detection is deterministic: identical input
// always selects the same profile.
type Detector struct {
	registry *Registry
	pages    int
	minScore int
	logger   *slog.Logger
}

// NewDetector creates a detector over the given registry.
func NewDetector(registry *Registry) *Detector {
	return &Detector{
		registry: registry,
		pages:    defaultPages,
		minScore: defaultMinScore,
		logger:   slog.Default(),
	}
}

// WithPages sets how many leading pages are sampled. Institution headers
// appear early, so a small number suffices.
func (d *Detector) WithPages(n int) *Detector {
	if n > 0 {
		d.pages = n
	}
	return d
}

// WithMinScore sets the minimum signature score a profile must reach.
func (d *Detector) WithMinScore(n int) *Detector {
	d.minScore = n
	return d
}

// WithLogger sets the logger.
func (d *Detector) WithLogger(logger *slog.Logger) *Detector {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// Detect selects the best matching profile for the document, or
// ErrUnknownFormat when nothing clears the threshold.
func (d *Detector) Detect(doc extract.Document) (*Profile, error) {
	text := strings.ToLower(doc.Text(d.pages))

	var (
		best        *Profile
		bestScore   int
		bestLongest int
	)

	for _, p := range d.registry.All() {
		score, longest := scoreProfile(p, text)
		if score < d.minScore {
			continue
		}
		// Later registrations win ties: specific profiles are registered
		// after the broader ones they share signatures with.
		if score > bestScore || (score == bestScore && longest >= bestLongest) {
			best, bestScore, bestLongest = p, score, longest
		}
	}

	if best == nil {
		return nil, ErrUnknownFormat
	}
	d.logger.Debug("detected statement profile",
		slog.String("profile", best.ID),
		slog.Int("score", bestScore))
	return best, nil
}

// scoreProfile sums the weights of matched signatures and tracks the
// longest one for tie-breaking. Any exclude pattern hit vetoes the
// profile entirely.
func scoreProfile(p *Profile, text string) (score, longest int) {
	for _, ex := range p.Exclude {
		if strings.Contains(text, strings.ToLower(ex)) {
			return 0, 0
		}
	}
	for _, sig := range p.Signatures {
		if strings.Contains(text, strings.ToLower(sig.Pattern)) {
			score += sig.Weight
			if len(sig.Pattern) > longest {
				longest = len(sig.Pattern)
			}
		}
	}
	return score, longest
}
