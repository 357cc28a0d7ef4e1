package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// CIBCChequing parses CIBC Smart Account statements. Transaction
// details start on the second page; the date column prints once per
// day and carries forward, and rows show the transaction amount
// followed by the running balance.
type CIBCChequing struct{}

var cibcDateRe = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\b`)

var cibcRowSkip = []string{
	"opening balance", "closing balance", "balance forward", "total",
	"summary", "continued", "transaction details",
}

var cibcCreditKeywords = []string{
	"deposit", "e-transfer", "transfer in", "interest", "refund", "rebate",
}

func (s *CIBCChequing) Parse(doc extract.Document, _ *profile.Profile) (Result, error) {
	var res Result
	for i, page := range doc.Pages {
		if i == 0 || !pageContains(page, "transaction details") {
			continue
		}
		carryDate := ""
		for _, b := range page.Blocks {
			if containsAny(b.Text, cibcRowSkip) {
				continue
			}
			rest := b.Text
			if m := cibcDateRe.FindStringSubmatch(b.Text); m != nil && isMonthAbbrev(m[1]) {
				carryDate = m[1] + " " + m[2]
				rest = strings.TrimSpace(b.Text[len(m[0]):])
			}
			if carryDate == "" {
				continue
			}
			amounts := findAmounts(rest)
			if len(amounts) == 0 {
				continue
			}
			loc := bareAmountRe.FindStringIndex(rest)
			desc := strings.TrimSpace(rest[:loc[0]])
			if desc == "" {
				res.skip(b, "amount without description")
				continue
			}
			ind := IndicatorDebit
			if containsAny(desc, cibcCreditKeywords) {
				ind = IndicatorCredit
			}
			cand := Candidate{
				RawDate:        carryDate,
				RawDescription: desc,
				RawAmount:      amounts[0],
				Indicator:      ind,
				Page:           b.Page,
				Line:           b.Line,
			}
			if len(amounts) > 1 {
				cand.RawBalance = amounts[len(amounts)-1]
			}
			res.Candidates = append(res.Candidates, cand)
		}
	}
	return res, nil
}

// CIBCVisaUSD parses CIBC U.S. Dollar Aventura statements. Amounts are
// in US dollars; the converted Canadian amount and exchange rate print
// on the following line and are consumed with the row.
type CIBCVisaUSD struct{}

var (
	cibcVisaRowRe      = regexp.MustCompile(`^([A-Za-z]{3}\s+\d{1,2})\s+([A-Za-z]{3}\s+\d{1,2})\s+(.*?)\s+([\d,]+\.\d{2})$`)
	cibcVisaExchangeRe = regexp.MustCompile(`^([\d,]+\.\d{2})\s+CAD\s+@\s+([\d.]+)`)
)

var cibcVisaSkip = []string{
	"total", "balance", "payment", "interest", "amount due", "summary",
}

func (s *CIBCVisaUSD) Parse(doc extract.Document, p *profile.Profile) (Result, error) {
	var res Result
	for _, page := range doc.Pages {
		for j := 0; j < len(page.Blocks); j++ {
			b := page.Blocks[j]
			if len(b.Text) <= 20 {
				continue
			}
			m := cibcVisaRowRe.FindStringSubmatch(b.Text)
			if m == nil {
				continue
			}
			desc := strings.TrimSpace(m[3])
			if containsAny(desc, cibcVisaSkip) {
				res.skip(b, "summary row")
				continue
			}
			cand := Candidate{
				RawDate:        m[1],
				RawPostDate:    m[2],
				RawDescription: desc,
				RawAmount:      m[4],
				Currency:       p.Currency,
				Page:           b.Page,
				Line:           b.Line,
			}
			// Exchange detail line belongs to this row, not the table.
			if j+1 < len(page.Blocks) {
				if em := cibcVisaExchangeRe.FindStringSubmatch(page.Blocks[j+1].Text); em != nil {
					cand.RawConverted = em[1]
					j++
				}
			}
			res.Candidates = append(res.Candidates, cand)
		}
	}
	return res, nil
}
