package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// Wise parses Wise multi-currency account statements. These are
// category summaries rather than row-per-transaction tables: each
// activity line is dated to the end of the statement period.
type Wise struct{}

var (
	wisePeriodRe = regexp.MustCompile(`Date:\s*(\w+\s+\d+,\s+\d+)\s+to\s+(\w+\s+\d+,\s+\d+)`)
	wiseRowRe    = regexp.MustCompile(`^(.*?)\s+\$?([\d,]+\.\d{2})$`)
)

var wiseActivityKeywords = []string{
	"card payments", "moneysent", "money sent", "top up", "topup",
	"atm withdrawals", "exchange in", "exchange out", "fees",
	"payment", "withdrawal",
}

var wiseCreditKeywords = []string{
	"top up", "topup", "exchange in",
}

var wiseSkip = []string{
	"total balance", "statement", "xxxx-xxxx", "as of",
}

func (s *Wise) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	periodEnd := ""
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if m := wisePeriodRe.FindStringSubmatch(b.Text); m != nil {
				periodEnd = m[2]
				continue
			}
			lower := strings.ToLower(b.Text)
			if containsAny(lower, wiseSkip) || !containsAny(lower, wiseActivityKeywords) {
				continue
			}
			m := wiseRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if m[2] == "0.00" {
				continue
			}
			if periodEnd == "" {
				res.skip(b, "activity row before statement period")
				continue
			}
			ind := IndicatorDebit
			if containsAny(m[1], wiseCreditKeywords) {
				ind = IndicatorCredit
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        periodEnd,
				RawDescription: strings.TrimSpace(m[1]),
				RawAmount:      m[2],
				Indicator:      ind,
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
