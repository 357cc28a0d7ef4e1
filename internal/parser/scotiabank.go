package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// ScotiabankChequing parses Scotiabank chequing statements. Transaction
// rows are recognized by bank operation keywords rather than position;
// the glued month-day token carries forward across rows.
type ScotiabankChequing struct{}

var scotiaDateRe = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)(\d{1,2})\b`)

var scotiaOperationKeywords = []string{
	"mb-billpayment", "mb-transfer", "withdrawal", "deposit",
	"fees/dues", "servicecharge", "point of salepurchase",
	"point of sale purchase", "debit memo", "mutual funds",
	"error correction", "ei canada",
}

var scotiaChequingCredit = []string{
	"deposit", "transfer from", "interest", "credit", "refund",
}

func (s *ScotiabankChequing) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	carryDate := ""
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if m := scotiaDateRe.FindStringSubmatch(b.Text); m != nil {
				carryDate = m[1] + m[2]
			}
			if len(b.Text) <= 10 || !containsAny(b.Text, scotiaOperationKeywords) {
				continue
			}
			amount, at := lastAmount(b.Text)
			if at < 0 {
				res.skip(b, "operation row without amount")
				continue
			}
			if carryDate == "" {
				res.skip(b, "operation row before any date")
				continue
			}
			desc := strings.TrimSpace(b.Text[:at])
			desc = strings.TrimSpace(scotiaDateRe.ReplaceAllString(desc, ""))
			ind := IndicatorDebit
			if containsAny(desc, scotiaChequingCredit) {
				ind = IndicatorCredit
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        carryDate,
				RawDescription: desc,
				RawAmount:      amount,
				Indicator:      ind,
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}

// ScotiabankCredit parses Scotia Momentum Visa statements. The
// transaction date is embedded inside the description text rather than
// in a leading column.
type ScotiabankCredit struct{}

var (
	scotiaCreditDateRe    = regexp.MustCompile(`\b([A-Za-z]{3})[-\s](\d{1,2})\b`)
	scotiaStandaloneNumRe = regexp.MustCompile(`\b\d{3}\b`)
)

var scotiaCreditSkip = []string{
	"beginning points", "points earned", "total", "balance", "statement",
	"account", "summary", "payment due", "payments/credits",
	"purchases/charges", "based on your", "rewards points",
	"eligible purchases", "credit limit",
}

func (s *ScotiabankCredit) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if len(b.Text) <= 15 || containsAny(b.Text, scotiaCreditSkip) {
				continue
			}
			amount, at := lastAmount(b.Text)
			if at < 0 {
				continue
			}
			dm := scotiaCreditDateRe.FindStringSubmatch(b.Text[:at])
			if dm == nil || !isMonthAbbrev(dm[1]) {
				continue
			}
			desc := strings.TrimSpace(scotiaCreditDateRe.ReplaceAllString(b.Text[:at], " "))
			desc = strings.TrimSpace(scotiaStandaloneNumRe.ReplaceAllString(desc, " "))
			desc = strings.Join(strings.Fields(desc), " ")
			if len(desc) < 3 {
				res.skip(b, "description too short")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        dm[1] + "-" + dm[2],
				RawDescription: desc,
				RawAmount:      amount,
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
