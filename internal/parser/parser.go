// Package parser turns extracted statement text into raw transaction
// candidates. One strategy per statement profile encodes where the
// transaction table lives, how rows are shaped, and which lines are
// boilerplate. Rows that do not match a strategy's grammar are recorded
// as skipped, never fatal.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// Indicator carries column knowledge a strategy has about a row's
// direction when the printed amount is unsigned.
type Indicator int

const (
	// IndicatorNone means the printed sign stands on its own.
	IndicatorNone Indicator = iota
	// IndicatorDebit marks money leaving the account.
	IndicatorDebit
	// IndicatorCredit marks money entering the account.
	IndicatorCredit
)

// Candidate is one unvalidated row scraped from statement text. All
// fields are raw strings; the normalizer owns parsing and validation.
type Candidate struct {
	RawDate        string
	RawPostDate    string
	RawDescription string
	RawAmount      string
	RawBalance     string

	// RawConverted holds the CAD-converted amount when a foreign
	// currency statement prints an exchange detail line for the row.
	RawConverted string

	// Currency is set only when the statement carries an explicit
	// currency marker for the row.
	Currency string

	Indicator Indicator
	Page      int
	Line      int
}

// SkippedLine records a row inside a transaction region that did not
// match the expected grammar.
type SkippedLine struct {
	Page   int
	Line   int
	Text   string
	Reason string
}

// Result is the outcome of parsing one statement document.
type Result struct {
	Candidates []Candidate
	Skipped    []SkippedLine
}

func (r *Result) skip(b extract.TextBlock, reason string) {
	r.Skipped = append(r.Skipped, SkippedLine{
		Page:   b.Page,
		Line:   b.Line,
		Text:   b.Text,
		Reason: reason,
	})
}

// Strategy parses one profile's statement layout.
type Strategy interface {
	Parse(doc extract.Document, p *profile.Profile) (Result, error)
}

// Registry maps profile ids to parsing strategies. Built once at
// startup; adding an institution registers a new pair without touching
// existing strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register binds a strategy to a profile id.
func (r *Registry) Register(profileID string, s Strategy) {
	r.strategies[profileID] = s
}

// ForProfile returns the strategy for a profile id.
func (r *Registry) ForProfile(profileID string) (Strategy, error) {
	s, ok := r.strategies[profileID]
	if !ok {
		return nil, fmt.Errorf("no parsing strategy for profile %q", profileID)
	}
	return s, nil
}

// DefaultRegistry returns the registry covering every profile in
// profile.Default.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("bmo-chequing", &BMOChequing{})
	r.Register("bmo-credit", &BMOCredit{})
	r.Register("eq-bank", &EQBank{})
	r.Register("td-chequing", &TDChequing{})
	r.Register("td-credit", &TDCredit{})
	r.Register("tangerine-savings", &TangerineSavings{})
	r.Register("tangerine-credit", &TangerineCredit{})
	r.Register("rbc-chequing", &RBCChequing{})
	r.Register("rbc-visa", &RBCVisa{})
	r.Register("simplii", &Simplii{})
	r.Register("cibc-chequing", &CIBCChequing{})
	r.Register("cibc-visa-usd", &CIBCVisaUSD{})
	r.Register("amex-credit", &Amex{})
	r.Register("scotiabank-chequing", &ScotiabankChequing{})
	r.Register("scotiabank-credit", &ScotiabankCredit{})
	r.Register("wise", &Wise{})
	r.Register(profile.GenericID, &Generic{})
	return r
}

// Shared row-scanning helpers.

var (
	amountRe         = regexp.MustCompile(`-?\$?[\d,]+\.\d{2}`)
	trailingAmountRe = regexp.MustCompile(`(-?\$?[\d,]+\.?\d{2})\s*$`)
	bareAmountRe     = regexp.MustCompile(`[\d,]+\.\d{2}`)
)

var monthAbbrevs = map[string]bool{
	"jan": true, "feb": true, "mar": true, "apr": true,
	"may": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "oct": true, "nov": true, "dec": true,
}

func isMonthAbbrev(s string) bool {
	return monthAbbrevs[strings.ToLower(s)]
}

func containsAny(line string, phrases []string) bool {
	lower := strings.ToLower(line)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// findAmounts returns every bare decimal amount in the line, in order.
func findAmounts(line string) []string {
	return bareAmountRe.FindAllString(line, -1)
}

// lastAmount returns the trailing amount of a line and its start offset,
// or ("", -1).
func lastAmount(line string) (string, int) {
	loc := trailingAmountRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", -1
	}
	return line[loc[2]:loc[3]], loc[2]
}
