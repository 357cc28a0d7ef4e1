package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// Amex parses American Express Cobalt statements. Dates print as a
// full or abbreviated month name glued to the day (December16), and a
// second posting date may follow the first.
type Amex struct{}

var amexRowRe = regexp.MustCompile(`^([A-Za-z]{3,9}\d{1,2})\s+(?:([A-Za-z]{3,9}\d{1,2})\s+)?(.*?)\s+(-?\$?[\d,]+\.?\d{2})$`)

var amexMonthNames = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
}

var amexSkip = []string{
	"total", "balance", "payment", "interest", "amount due",
	"statement", "membership rewards",
}

func amexMonthToken(tok string) bool {
	lower := strings.ToLower(strings.TrimRight(tok, "0123456789"))
	for _, m := range amexMonthNames {
		if lower == m || (len(lower) == 3 && strings.HasPrefix(m, lower)) {
			return true
		}
	}
	return false
}

func (s *Amex) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			m := amexRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if !amexMonthToken(m[1]) || (m[2] != "" && !amexMonthToken(m[2])) {
				continue
			}
			desc := strings.TrimSpace(m[3])
			if desc == "" || !startsUpper(desc) {
				continue
			}
			if containsAny(desc, amexSkip) {
				res.skip(b, "summary row")
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

func startsUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
