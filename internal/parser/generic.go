package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// Generic is the fallback strategy for statements no profile claims.
// It keeps any line shaped like a leading date token, free text, and a
// trailing amount, and leaves direction to the printed sign. Recall is
// deliberately conservative; unmatched layouts surface as skipped
// lines rather than bad rows.
type Generic struct{}

var genericDateRes = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\b`),
	regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)\b`),
	regexp.MustCompile(`^(\d{1,2}[-\s][A-Za-z]{3,9}(?:[-\s]\d{4})?)\b`),
	regexp.MustCompile(`^([A-Za-z]{3,9}\.?[-\s]?\d{1,2}(?:,?\s+\d{4})?)\b`),
}

var genericSkip = []string{
	"opening balance", "closing balance", "balance forward", "total",
	"subtotal", "summary", "statement period", "page ", "continued",
	"minimum payment", "credit limit", "interest rate", "payment due",
}

func (s *Generic) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if len(b.Text) < 12 || containsAny(b.Text, genericSkip) {
				continue
			}
			var date string
			rest := b.Text
			for _, re := range genericDateRes {
				if m := re.FindStringSubmatch(b.Text); m != nil {
					date = m[1]
					rest = strings.TrimSpace(b.Text[len(m[0]):])
					break
				}
			}
			if date == "" {
				continue
			}
			am := trailingAmountRe.FindStringSubmatch(rest)
			if am == nil {
				continue
			}
			desc := strings.TrimSpace(rest[:len(rest)-len(am[0])])
			if len(desc) < 3 {
				res.skip(b, "description too short")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        date,
				RawDescription: desc,
				RawAmount:      am[1],
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
