// Package export renders a merged ledger to CSV and XLSX.
package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-pipeline/internal/ledger"
	"github.com/FACorreiaa/statement-pipeline/pkg/money"
)

// Row is the flat export schema shared by both formats.
type Row struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Display     string `csv:"display"`
	Currency    string `csv:"currency"`
	Category    string `csv:"category"`
	Source      string `csv:"category_source"`
	Confidence  string `csv:"confidence"`
	StatementID string `csv:"statement_id"`
	Sources     int    `csv:"sources"`
}

// Rows flattens ledger entries into export rows, preserving order.
func Rows(l *ledger.Ledger) []*Row {
	rows := make([]*Row, 0, len(l.Entries))
	for _, e := range l.Entries {
		rows = append(rows, &Row{
			Date:        e.Date.Format("2006-01-02"),
			Description: e.Description,
			Amount:      e.Amount.StringFixed(2),
			Display:     money.NewFromDecimal(e.Amount, e.Currency).Display(),
			Currency:    e.Currency,
			Category:    e.Category,
			Source:      e.CategorySource,
			Confidence:  fmt.Sprintf("%.2f", e.Confidence),
			StatementID: e.StatementID,
			Sources:     len(e.Sources),
		})
	}
	return rows
}

// WriteCSV writes the ledger as CSV.
func WriteCSV(w io.Writer, l *ledger.Ledger) error {
	if err := gocsv.Marshal(Rows(l), w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SaveCSV writes the ledger as CSV to a file.
func SaveCSV(path string, l *ledger.Ledger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteCSV(f, l); err != nil {
		return err
	}
	return f.Close()
}

const (
	sheetTransactions = "Transactions"
	sheetSummary      = "Summary"
)

// SaveXLSX writes the ledger as a workbook with a transaction sheet
// and a per-category summary sheet.
func SaveXLSX(path string, l *ledger.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, l); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes the workbook to a writer.
func WriteXLSX(w io.Writer, l *ledger.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, l); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func buildWorkbook(f *excelize.File, l *ledger.Ledger) error {
	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return err
	}

	headers := []string{"Date", "Description", "Amount", "Display", "Currency",
		"Category", "Source", "Confidence", "Statement", "Sources"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetTransactions, cell, h); err != nil {
			return err
		}
	}

	for i, r := range Rows(l) {
		amount, _ := r.amountFloat()
		confidence, _ := r.confidenceFloat()
		values := []any{r.Date, r.Description, amount, r.Display, r.Currency,
			r.Category, r.Source, confidence, r.StatementID, r.Sources}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetTransactions, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheetTransactions, "B", "B", 42); err != nil {
		return err
	}

	return writeSummary(f, l)
}

type categoryTotal struct {
	category string
	currency string
	count    int
	total    decimal.Decimal
}

func writeSummary(f *excelize.File, l *ledger.Ledger) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	byCategory := make(map[string]*categoryTotal)
	for _, e := range l.Entries {
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &categoryTotal{category: e.Category}
			byCategory[e.Category] = ct
		}
		ct.count++
		ct.total = ct.total.Add(e.Amount)
		if ct.currency == "" {
			ct.currency = e.Currency
		}
	}

	totals := make([]*categoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		totals = append(totals, ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].category < totals[j].category
	})

	for col, h := range []string{"Category", "Transactions", "Net amount", "Net display"} {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, cell, h); err != nil {
			return err
		}
	}
	for i, ct := range totals {
		total, _ := ct.total.Float64()
		display := money.NewFromDecimal(ct.total, ct.currency).Display()
		values := []any{ct.category, ct.count, total, display}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetSummary, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Row) amountFloat() (float64, error) {
	d, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func (r *Row) confidenceFloat() (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(r.Confidence), "%f", &f)
	return f, err
}
