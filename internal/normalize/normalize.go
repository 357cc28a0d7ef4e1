// Package normalize validates raw transaction candidates into canonical
// ledger transactions: parsed dates, signed decimal amounts, cleaned
// descriptions. Rows that fail validation become row errors carried in
// the result, never a failed statement.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-pipeline/internal/ledger"
	"github.com/FACorreiaa/statement-pipeline/internal/parser"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
	"github.com/FACorreiaa/statement-pipeline/pkg/money"
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrUnparsableDate   = errors.New("unparsable date")
)

// RowError describes one candidate that could not be normalized.
type RowError struct {
	Page  int
	Line  int
	Field string
	Raw   string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("page %d line %d: %s %q: %v", e.Page, e.Line, e.Field, e.Raw, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result carries the transactions that normalized cleanly and the rows
// that did not.
type Result struct {
	Transactions []ledger.Transaction
	Errors       []RowError
}

// Normalizer converts candidates for one statement profile.
type Normalizer struct {
	logger *slog.Logger
	year   int
	now    func() time.Time
}

// New creates a normalizer that infers the statement year from the
// current date.
func New() *Normalizer {
	return &Normalizer{
		logger: slog.Default(),
		now:    time.Now,
	}
}

// WithLogger sets the normalizer's logger.
func (n *Normalizer) WithLogger(l *slog.Logger) *Normalizer {
	if l != nil {
		n.logger = l
	}
	return n
}

// WithYear pins the year used for date layouts that do not print one.
func (n *Normalizer) WithYear(year int) *Normalizer {
	n.year = year
	return n
}

// Normalize converts candidates into canonical transactions under the
// profile's date layouts and sign convention.
func (n *Normalizer) Normalize(statementID string, p *profile.Profile, cands []parser.Candidate) Result {
	var res Result
	for _, c := range cands {
		tx, rowErr := n.normalizeOne(statementID, p, c)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		tx.Seq = len(res.Transactions)
		res.Transactions = append(res.Transactions, tx)
	}
	if len(res.Errors) > 0 {
		n.logger.Warn("rows failed normalization",
			slog.String("statement_id", statementID),
			slog.String("profile", p.ID),
			slog.Int("failed", len(res.Errors)),
			slog.Int("ok", len(res.Transactions)))
	}
	return res
}

func (n *Normalizer) normalizeOne(statementID string, p *profile.Profile, c parser.Candidate) (ledger.Transaction, *RowError) {
	fail := func(field, raw string, err error) (ledger.Transaction, *RowError) {
		return ledger.Transaction{}, &RowError{
			Page: c.Page, Line: c.Line, Field: field, Raw: raw, Err: err,
		}
	}

	date, err := n.parseDate(c.RawDate, p.DateLayouts)
	if err != nil {
		return fail("date", c.RawDate, err)
	}

	amount, err := money.ParseStatementAmount(c.RawAmount)
	if err != nil {
		return fail("amount", c.RawAmount, err)
	}
	amount = applySign(amount, c.Indicator, p.Sign)

	desc := cleanDescription(c.RawDescription)
	if desc == "" {
		return fail("description", c.RawDescription, ErrEmptyDescription)
	}

	currency := c.Currency
	if currency == "" {
		currency = p.Currency
	}

	tx := ledger.Transaction{
		ID:          uuid.New(),
		StatementID: statementID,
		Date:        date,
		Description: desc,
		Amount:      amount,
		Currency:    currency,
		Source: ledger.Source{
			StatementID: statementID,
			Page:        c.Page,
			Line:        c.Line,
		},
	}
	if c.RawBalance != "" {
		if bal, err := money.ParseStatementAmount(c.RawBalance); err == nil {
			tx.Balance = &bal
		}
	}
	return tx, nil
}

// applySign produces the canonical signed amount, negative for debits.
// Column knowledge from the parser beats the printed sign; otherwise
// credit card statements invert, since they print spending as positive.
func applySign(amount decimal.Decimal, ind parser.Indicator, conv profile.SignConvention) decimal.Decimal {
	switch ind {
	case parser.IndicatorDebit:
		return amount.Abs().Neg()
	case parser.IndicatorCredit:
		return amount.Abs()
	}
	if conv == profile.SignCreditCard {
		return amount.Neg()
	}
	return amount
}

func (n *Normalizer) parseDate(raw string, layouts []string) (time.Time, error) {
	token := canonicalDateToken(raw)
	for _, layout := range layouts {
		t, err := time.Parse(layout, token)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = n.injectYear(t)
		}
		return t, nil
	}
	return time.Time{}, ErrUnparsableDate
}

// canonicalDateToken title-cases alphabetic runs so OCR'd variants like
// "FEB 26" or "december16" match Go reference layouts.
func canonicalDateToken(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inWord := false
	for _, r := range raw {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isAlpha && !inWord:
			b.WriteRune(toUpper(r))
		case isAlpha:
			b.WriteRune(toLower(r))
		default:
			b.WriteRune(r)
		}
		inWord = isAlpha
	}
	return strings.TrimSpace(b.String())
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}
	return r
}

// injectYear assigns the statement year to a year-less date. A date
// that would land more than a month in the future belongs to the
// previous year: a December row on a statement processed in January.
func (n *Normalizer) injectYear(t time.Time) time.Time {
	year := n.year
	if year == 0 {
		year = n.now().Year()
	}
	dated := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if n.year == 0 && dated.After(n.now().AddDate(0, 1, 0)) {
		dated = dated.AddDate(-1, 0, 0)
	}
	return dated
}

// cleanDescription collapses whitespace and strips stray separators
// left behind by column extraction.
func cleanDescription(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.Trim(s, "-–|• \t")
	return strings.TrimSpace(s)
}
