package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// EQBank parses EQ Bank Personal Account statements. Rows carry a
// year-less month-day date and a signed dollar amount, so the printed
// sign is authoritative.
type EQBank struct{}

var eqRowRe = regexp.MustCompile(`^([A-Za-z]{3}\s+\d{1,2})\s+(.*?)\s+(-?\$[\d,]+\.?\d{2})$`)

var eqSkip = []string{
	"withdrawals", "deposits", "description", "date", "balance",
	"total", "statement period",
}

func (s *EQBank) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			m := eqRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if !isMonthAbbrev(m[1][:3]) {
				res.skip(b, "invalid month token")
				continue
			}
			desc := strings.TrimSpace(m[2])
			if containsAny(desc, eqSkip) {
				res.skip(b, "summary row")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        m[1],
				RawDescription: desc,
				RawAmount:      m[3],
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
