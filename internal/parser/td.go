package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// TDChequing parses TD Every Day Chequing statements. Amounts are
// unsigned; direction comes from the Credits / Debits section the row
// appears under.
type TDChequing struct{}

var tdChequingRowRe = regexp.MustCompile(`^(\d{2}/\d{2})\s+(.*?)\s+([\d,]+\.?\d{2})$`)

var tdChequingSkip = []string{
	"opening balance", "closing balance", "total", "description",
	"statement period",
}

func (s *TDChequing) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	section := IndicatorNone
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			trimmed := strings.TrimSpace(b.Text)
			switch trimmed {
			case "Credits", "DAILY ACCOUNT ACTIVITY":
				section = IndicatorCredit
				continue
			case "Debits":
				section = IndicatorDebit
				continue
			}
			m := tdChequingRowRe.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			if containsAny(m[2], tdChequingSkip) {
				res.skip(b, "summary row")
				continue
			}
			if section == IndicatorNone {
				res.skip(b, "dated row outside activity section")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        m[1],
				RawDescription: strings.TrimSpace(m[2]),
				RawAmount:      m[3],
				Indicator:      section,
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}

// TDCredit parses TD Cash Back Visa statements. Transaction and posting
// dates print as capitalized month abbreviations, sometimes glued to
// the day (FEB26).
type TDCredit struct{}

var tdCreditRowRe = regexp.MustCompile(`^([A-Z]{3}\s*\d{1,2})\s+([A-Z]{3}\s*\d{1,2})\s+(.*?)\s+(-?\$?[\d,]+\.\d{2})$`)

var tdCreditSkip = []string{
	"previous statement", "activity description", "amount", "date",
	"continued", "net amount", "total", "balance", "payment",
	"foreign currency", "@exchange rate",
}

func (s *TDCredit) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if len(b.Text) <= 15 {
				continue
			}
			m := tdCreditRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			desc := strings.TrimSpace(m[3])
			if containsAny(desc, tdCreditSkip) {
				res.skip(b, "summary row")
				continue
			}
			if !isMonthAbbrev(m[1][:3]) || !isMonthAbbrev(m[2][:3]) {
				res.skip(b, "invalid month token")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        m[1],
				RawPostDate:    m[2],
				RawDescription: desc,
				RawAmount:      m[4],
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
