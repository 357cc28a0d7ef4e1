package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// RBCChequing parses RBC Day to Day Banking statements. The activity
// table prints the date once and leaves it blank on continuation rows,
// so the last seen date carries forward. Amounts are unsigned;
// direction comes from transaction keywords.
type RBCChequing struct{}

var rbcDateRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})\b`)

var rbcHeaderSkip = []string{
	"date", "description", "withdrawals", "deposits", "balance",
}

var rbcRowSkip = []string{
	"opening balance", "closing balance", "total deposits",
	"total withdrawals", "account fees summary", "fee electronic",
	"multiproduct rebate", "monthly fee", "summary of",
}

var rbcCreditKeywords = []string{
	"e-transfer", "autodeposit", "deposit", "rebate", "refund",
}

var rbcDebitKeywords = []string{
	"interac purchase", "contactless interac purchase",
	"online banking payment", "loan payment", "atm withdrawal",
	"fee", "charge", "misc payment",
}

func (s *RBCChequing) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		if !pageContains(page, "details of your account activity") {
			continue
		}
		carryDate := ""
		for _, b := range page.Blocks {
			lower := strings.ToLower(b.Text)
			if isHeaderLine(lower, rbcHeaderSkip) {
				continue
			}
			rest := b.Text
			if m := rbcDateRe.FindStringSubmatch(b.Text); m != nil && isMonthAbbrev(m[2]) {
				carryDate = m[1] + " " + m[2]
				rest = strings.TrimSpace(b.Text[len(m[0]):])
			}
			if carryDate == "" {
				continue
			}
			loc := bareAmountRe.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			amount := rest[loc[0]:loc[1]]
			desc := strings.TrimSpace(rest[:loc[0]])
			if desc == "" || containsAny(desc, rbcRowSkip) {
				continue
			}
			ind := IndicatorDebit
			if containsAny(desc, rbcCreditKeywords) {
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

// pageContains reports whether any block on the page contains the
// phrase, case-insensitively.
func pageContains(page extract.PageText, phrase string) bool {
	for _, b := range page.Blocks {
		if strings.Contains(strings.ToLower(b.Text), phrase) {
			return true
		}
	}
	return false
}

// isHeaderLine reports whether the line is built solely from table
// header words.
func isHeaderLine(lower string, words []string) bool {
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		f = strings.Trim(f, "($)")
		if f == "" {
			continue
		}
		found := false
		for _, w := range words {
			if f == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// RBCVisa parses RBC Visa statements. Transaction and posting dates
// print as glued uppercase month-day tokens (DEC22).
type RBCVisa struct{}

var rbcVisaRowRe = regexp.MustCompile(`^([A-Z]{3}\d{2})\s+([A-Z]{3}\d{2})\s+(.*?)\s+(-?)\$?([\d,]+\.?\d{2})$`)

var rbcVisaSkip = []string{
	"total", "balance", "payment - thank you", "interest", "credit limit",
	"cash back", "statement",
}

func (s *RBCVisa) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for _, b := range page.Blocks {
			m := rbcVisaRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			if !isMonthAbbrev(m[1][:3]) || !isMonthAbbrev(m[2][:3]) {
				res.skip(b, "invalid month token")
				continue
			}
			desc := strings.TrimSpace(m[3])
			if containsAny(desc, rbcVisaSkip) {
				res.skip(b, "summary row")
				continue
			}
			res.Candidates = append(res.Candidates, Candidate{
				RawDate:        m[1],
				RawPostDate:    m[2],
				RawDescription: desc,
				RawAmount:      m[4] + m[5],
				Page:           b.Page,
				Line:           b.Line,
			})
		}
	}
	return res, nil
}
