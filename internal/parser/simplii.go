package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// Simplii parses Simplii Financial Cash Back Visa statements. The
// transaction section is bounded by the Trans/Post table header and
// the totals footer; descriptions end with a spending category label
// that is trimmed off.
type Simplii struct{}

var (
	simpliiRowRe      = regexp.MustCompile(`^([A-Za-z]{3}\s+\d{1,2})\s+([A-Za-z]{3}\s+\d{1,2})\s+(.*)$`)
	simpliiAmountRe   = regexp.MustCompile(`(-?)\$?(\d{1,3}(?:,\d{3})*\.\d{2})$`)
	simpliiCategoryRe = regexp.MustCompile(`\s+(Hotel,|(?:Personal|Home|Entertainment|Household|Office|Retail|Transportation|Professional|BC|ON)\b).*$`)
)

var simpliiStop = []string{
	"total for", "total payments", "page ", "information about",
}

func (s *Simplii) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	inSection := false
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			lower := strings.ToLower(b.Text)
			if !inSection {
				if (strings.Contains(lower, "trans") && strings.Contains(lower, "post") &&
					strings.Contains(lower, "date")) ||
					(strings.Contains(lower, "card number") && strings.Contains(lower, "xxxx")) {
					inSection = true
				}
				continue
			}
			if containsAny(lower, simpliiStop) {
				inSection = false
				continue
			}
			if len(b.Text) <= 20 {
				continue
			}
			m := simpliiRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if !isMonthAbbrev(m[1][:3]) || !isMonthAbbrev(m[2][:3]) {
				res.skip(b, "invalid month token")
				continue
			}
			am := simpliiAmountRe.FindStringSubmatch(m[3])
			if am == nil {
				res.skip(b, "dated row without amount")
				continue
			}
			desc := strings.TrimSpace(m[3][:len(m[3])-len(am[0])])
			desc = strings.TrimSpace(simpliiCategoryRe.ReplaceAllString(desc, ""))
			if desc == "" {
				res.skip(b, "empty description")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        m[1],
				RawPostDate:    m[2],
				RawDescription: desc,
				RawAmount:      am[1] + am[2],
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
