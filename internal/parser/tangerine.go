package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// TangerineSavings parses Tangerine account statements. The activity
// table splits single transactions across up to five extracted lines,
// so rows are assembled by scanning forward from each date line until
// both a description and amounts are collected. Rows carry the
// transaction amount and the running balance.
type TangerineSavings struct{}

var tangerineSavingsDateRe = regexp.MustCompile(`^(\d{1,2}\s[A-Za-z]{3}\s\d{4})\b`)

var tangerineSavingsCredit = []string{
	"interest paid", "deposit", "transfer in", "refund",
}

var tangerineBalanceWords = []string{"opening balance", "closing balance"}

func (s *TangerineSavings) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		blocks := activitySection(page)
		for j := 0; j < len(blocks); j++ {
			b := blocks[j]
			dm := tangerineSavingsDateRe.FindStringSubmatch(b.Text)
			if dm == nil {
				continue
			}
			date := dm[1]
			desc := strings.TrimSpace(b.Text[len(dm[0]):])
			// The description sometimes lands on the line above the date.
			if desc == "" && j > 0 && !tangerineSavingsDateRe.MatchString(blocks[j-1].Text) &&
				len(findAmounts(blocks[j-1].Text)) == 0 {
				desc = strings.TrimSpace(blocks[j-1].Text)
			}
			amounts := findAmounts(desc)
			end := j
			for k := j + 1; k < len(blocks) && k <= j+5 && len(amounts) < 2; k++ {
				if tangerineSavingsDateRe.MatchString(blocks[k].Text) {
					break
				}
				more := findAmounts(blocks[k].Text)
				if len(more) == 0 {
					if extra := strings.TrimSpace(blocks[k].Text); extra != "" {
						desc += " " + extra
					}
				} else {
					amounts = append(amounts, more...)
				}
				end = k
			}
			j = end
			desc = strings.TrimSpace(bareAmountRe.ReplaceAllString(desc, ""))
			desc = strings.Join(strings.Fields(desc), " ")
			if len(amounts) == 0 {
				res.skip(b, "dated row without amount")
				continue
			}
			if containsAny(desc, tangerineBalanceWords) {
				continue
			}
			ind := IndicatorDebit
			if containsAny(desc, tangerineSavingsCredit) {
				ind = IndicatorCredit
			}
			cand := Candidate{
				RawDate:        date,
				RawDescription: desc,
				RawAmount:      amounts[0],
				Indicator:      ind,
				Page:           b.Page,
				Line:           b.Line,
			}
			if len(amounts) > 1 {
				cand.RawBalance = amounts[1]
			}
			res.Candidates = append(res.Candidates, cand)
		}
	}
	return res, nil
}

// activitySection returns the blocks between the transaction table
// header and the trailing rate disclosure on a Tangerine page.
func activitySection(page extract.PageText) []extract.TextBlock {
	start, end := -1, len(page.Blocks)
	for i, b := range page.Blocks {
		lower := strings.ToLower(b.Text)
		if start < 0 && strings.Contains(lower, "transaction date") &&
			(strings.Contains(lower, "description") || strings.Contains(lower, "amount")) {
			start = i + 1
			continue
		}
		if start >= 0 && (strings.Contains(lower, "current interest rate") ||
			strings.Contains(lower, "the details -")) {
			end = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	return page.Blocks[start:end]
}

// TangerineCredit parses Tangerine Money-Back credit card statements.
// Rows carry full transaction and posting dates, an optional rewards
// column, and trailing province codes that are noise for matching.
type TangerineCredit struct{}

var (
	tangerineCreditRowRe = regexp.MustCompile(`^(\d{1,2}-[A-Z][a-z]{2}-\d{4})\s+(\d{1,2}-[A-Z][a-z]{2}-\d{4})\s+(.*?)\s+(-?\$?[\d,]+\.\d{2})(?:\s+\$?(?:[\d,]+\.\d{2}|–))?$`)
	provinceSuffixRe     = regexp.MustCompile(`\s+(QC|ON|BC|AB|MB|SK|NB|NS|PE|NL)$`)
)

func (s *TangerineCredit) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			if len(b.Text) <= 25 {
				continue
			}
			m := tangerineCreditRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			desc := provinceSuffixRe.ReplaceAllString(strings.TrimSpace(m[3]), "")
			if desc == "" {
				res.skip(b, "empty description")
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
