package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// BMOChequing parses Everyday Banking statements. Rows start with a
// glued Mon-day date and carry one to three amount columns: a lone
// amount is a balance row, two amounts are transaction and balance,
// three amounts are deducted, added and balance.
type BMOChequing struct{}

var bmoAccountDateRe = regexp.MustCompile(`^([A-Z][a-z]{2}\d{1,2})\s*(.*)$`)

var bmoAccountSkip = []string{
	"date description",
	"amounts deducted",
	"amounts added",
	"primary chequing account",
	"continued",
	"opening balance",
	"closing totals",
	"everyday banking",
}

var bmoDebitKeywords = []string{
	"transfer sent", "transfersent", "debit card purchase",
	"debitcardpurchase", "fee", "charge", "returned item", "overdraft",
}

func (s *BMOChequing) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			m := bmoAccountDateRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if containsAny(b.Text, bmoAccountSkip) || len(b.Text) <= 10 {
				continue
			}
			amounts := findAmounts(m[2])
			desc := strings.TrimSpace(bareAmountRe.ReplaceAllString(m[2], ""))
			desc = strings.TrimSpace(strings.Trim(desc, "$"))
			switch {
			case len(amounts) == 0:
				res.skip(b, "dated row without amount")
			case len(amounts) == 1:
				// Balance carried forward, not a transaction.
				res.skip(b, "balance-only row")
			default:
				ind := IndicatorCredit
				if containsAny(desc, bmoDebitKeywords) {
					ind = IndicatorDebit
				}
				res.Candidates = append(res.Candidates, Candidate{
					RawDate:        m[1],
					RawDescription: desc,
					RawAmount:      amounts[0],
					RawBalance:     amounts[len(amounts)-1],
					Indicator:      ind,
					Page:           b.Page,
					Line:           b.Line,
				})
			}
		}
	}
	return res, nil
}

// BMOCredit parses BMO Mastercard statements. Rows carry two dotted
// dates (transaction and posting), an optional long reference number,
// and a dollar amount at the end of the line.
type BMOCredit struct{}

var (
	bmoCreditRowRe = regexp.MustCompile(`^([A-Za-z]{3}\.?\s?\d{1,2})\s+([A-Za-z]{3}\.?\s?\d{1,2})\s+(.*)$`)
	bmoCreditAmtRe = regexp.MustCompile(`(-?[\d,]+\.\d{2})\s*(?:CR)?\s*$`)
	bmoRefRe       = regexp.MustCompile(`\s\d{10,}`)
)

var bmoCreditSkip = []string{
	"total", "interest", "fee", "balance", "payment due", "credit limit",
	"statement period",
}

func (s *BMOCredit) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			m := bmoCreditRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			rest := m[3]
			am := bmoCreditAmtRe.FindStringSubmatch(rest)
			if am == nil {
				res.skip(b, "dated row without amount")
				continue
			}
			amount := am[1]
			if strings.Contains(rest[len(rest)-len(am[0]):], "CR") {
				amount = "-" + strings.TrimPrefix(amount, "-")
			}
			desc := strings.TrimSpace(rest[:len(rest)-len(am[0])])
			desc = strings.TrimSpace(bmoRefRe.ReplaceAllString(desc, ""))
			if containsAny(desc, bmoCreditSkip) {
				res.skip(b, "summary row")
				continue
			}
			if desc == "" {
				res.skip(b, "empty description")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        strings.ReplaceAll(m[1], " ", ""),
				RawPostDate:    strings.ReplaceAll(m[2], " ", ""),
				RawDescription: desc,
				RawAmount:      amount,
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
