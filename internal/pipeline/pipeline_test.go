package pipeline

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-pipeline/internal/categorize"
	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/normalize"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

func newService(t *testing.T) *Service {
	t.Helper()
	cat, err := categorize.New(categorize.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return New(cat).WithNormalizer(normalize.New().WithYear(2025))
}

func eqBankDoc(extraRows ...string) extract.Document {
	text := "EQ Bank Personal Account\n" +
		"Mar 1 Interest earned $0.45\n" +
		"Mar 15 EFT out to linked account -$250.00\n" +
		"Mar 20 TIM HORTONS #2471 TORONTO -$4.50\n"
	for _, r := range extraRows {
		text += r + "\n"
	}
	return extract.FromText(text)
}

func TestProcessDocument_EndToEnd(t *testing.T) {
	s := newService(t)

	rep, err := s.ProcessDocument(context.Background(), "stmt-1", "eq-march.pdf", eqBankDoc())
	require.NoError(t, err)
	require.False(t, rep.Failed())

	assert.Equal(t, "eq-bank", rep.Profile)
	assert.Equal(t, "EQ Bank", rep.ProfileLabel)
	assert.Equal(t, 3, rep.Candidates)
	require.Len(t, rep.Transactions, 3)
	assert.Empty(t, rep.RowErrors)

	interest := rep.Transactions[0]
	assert.Equal(t, "Income", interest.Category)
	assert.Equal(t, "rule", interest.CategorySource)
	assert.Equal(t, 1.0, interest.Confidence)
	assert.True(t, interest.Amount.Equal(decimal.RequireFromString("0.45")))

	coffee := rep.Transactions[2]
	assert.Equal(t, "Dining", coffee.Category)
	assert.True(t, coffee.Amount.IsNegative())

	// The EFT row matches no category.
	assert.Equal(t, 1, rep.Unmatched)
	assert.Equal(t, categorize.FallbackCategory, rep.Transactions[1].Category)
	assert.Equal(t, "unmatched", rep.Transactions[1].CategorySource)
	assert.GreaterOrEqual(t, rep.LowConfidence, 1)
}

func TestProcessDocument_EmptyDocument(t *testing.T) {
	s := newService(t)

	_, err := s.ProcessDocument(context.Background(), "stmt-1", "scan.pdf", extract.FromText(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTextContent)
}

func TestProcessDocument_GenericFallback(t *testing.T) {
	s := newService(t)
	doc := extract.FromText(
		"Some Unknown Credit Union\n" +
			"03/15 COFFEE SHOP PURCHASE 4.50\n" +
			"03/16 PAYROLL DEPOSIT 1,500.00\n",
	)

	rep, err := s.ProcessDocument(context.Background(), "stmt-1", "unknown.pdf", doc)
	require.NoError(t, err)
	assert.Equal(t, profile.GenericID, rep.Profile)
	assert.Len(t, rep.Transactions, 2)
}

func TestProcessDocument_ISOStatementLedger(t *testing.T) {
	s := newService(t)
	doc := extract.FromText(
		"Unknown Bank Statement\n" +
			"2024-01-05 COFFEE SHOP -4.50\n" +
			"2024-01-06 PAYROLL DEPOSIT 2000.00\n",
	)

	rep, err := s.ProcessDocument(context.Background(), "jan", "jan.pdf", doc)
	require.NoError(t, err)
	assert.Equal(t, profile.GenericID, rep.Profile)
	require.Len(t, rep.Transactions, 2)
	assert.Empty(t, rep.RowErrors)

	coffee := rep.Transactions[0]
	assert.Equal(t, "2024-01-05", coffee.Date.Format("2006-01-02"))
	assert.Equal(t, "COFFEE SHOP", coffee.Description)
	assert.True(t, coffee.Amount.Equal(decimal.RequireFromString("-4.50")))
	assert.Equal(t, categorize.FallbackCategory, coffee.Category)
	assert.Equal(t, "unmatched", coffee.CategorySource)

	payroll := rep.Transactions[1]
	assert.Equal(t, "2024-01-06", payroll.Date.Format("2006-01-02"))
	assert.True(t, payroll.Amount.Equal(decimal.RequireFromString("2000.00")))
	assert.Equal(t, "Income", payroll.Category)
	assert.Equal(t, "rule", payroll.CategorySource)

	l := Merge([]*Report{rep})
	require.Len(t, l.Entries, 2)
}

func TestProcessDocument_FallbackDisabled(t *testing.T) {
	s := newService(t).WithGenericFallback(false)
	doc := extract.FromText("Some Unknown Credit Union\n03/15 COFFEE 4.50\n")

	_, err := s.ProcessDocument(context.Background(), "stmt-1", "unknown.pdf", doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrUnknownFormat)
}

func TestProcessDocument_CancelledContext(t *testing.T) {
	s := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ProcessDocument(ctx, "stmt-1", "eq.pdf", eqBankDoc())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessStatement_BadPDF(t *testing.T) {
	s := newService(t)

	_, err := s.ProcessStatement(context.Background(), "stmt-1", "broken.pdf", []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestProcessBatch_ContinuesPastFailures(t *testing.T) {
	s := newService(t).WithWorkers(2)
	good := eqBankDoc()

	reports, err := s.ProcessBatch(context.Background(), []Statement{
		{ID: "a", Name: "a.pdf", Doc: &good},
		{ID: "b", Name: "broken.pdf", Data: []byte("not a pdf")},
		{ID: "c", Name: "c.pdf", Doc: &good},
	})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.False(t, reports[0].Failed())
	assert.True(t, reports[1].Failed())
	assert.Equal(t, "b", reports[1].StatementID)
	assert.False(t, reports[2].Failed())
	assert.Len(t, reports[2].Transactions, 3)
}

func TestMerge_DeduplicatesAcrossStatements(t *testing.T) {
	s := newService(t)

	feb, err := s.ProcessDocument(context.Background(), "feb", "feb.pdf", eqBankDoc())
	require.NoError(t, err)
	mar, err := s.ProcessDocument(context.Background(), "mar", "mar.pdf", eqBankDoc(
		"Mar 28 LOBLAWS 1044 TORONTO -$84.12",
	))
	require.NoError(t, err)

	l := Merge([]*Report{feb, mar, {StatementID: "bad", Err: ErrNoTextContent}})
	require.Len(t, l.Entries, 4, "three overlapping rows collapse, one new row survives")
	assert.Equal(t, 3, l.Duplicates())

	last := l.Entries[len(l.Entries)-1]
	assert.Equal(t, "LOBLAWS 1044 TORONTO", last.Description)
	assert.Equal(t, "Groceries", last.Category)
	require.Len(t, last.Sources, 1)
	assert.Equal(t, "mar", last.Sources[0].StatementID)
}
