package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(day int, amount, desc string) Transaction {
	return Transaction{
		ID:          uuid.New(),
		Date:        time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "CAD",
	}
}

func TestBuilder_MergesOverlappingStatements(t *testing.T) {
	b := NewBuilder()
	b.Add("feb", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
		tx(2, "-89.99", "SPORT CHEK #110"),
	})
	b.Add("mar", []Transaction{
		tx(2, "-89.99", "SPORT CHEK #110"), // re-printed on the next statement
		tx(3, "1500.00", "PAYROLL DEPOSIT"),
	})

	l := b.Build()
	require.Len(t, l.Entries, 3)
	assert.Equal(t, 1, l.Duplicates())

	dup := l.Entries[1]
	assert.Equal(t, "SPORT CHEK #110", dup.Description)
	require.Len(t, dup.Sources, 2)
	assert.Equal(t, "feb", dup.Sources[0].StatementID)
	assert.Equal(t, "mar", dup.Sources[1].StatementID)
	assert.Equal(t, "feb", dup.StatementID, "first sighting wins the canonical row")
}

func TestBuilder_DescriptionMatchIsCaseInsensitive(t *testing.T) {
	b := NewBuilder()
	b.Add("a", []Transaction{tx(1, "-4.50", "Tim Hortons #2471")})
	b.Add("b", []Transaction{tx(1, "-4.50", "TIM HORTONS #2471")})

	l := b.Build()
	require.Len(t, l.Entries, 1)
	assert.Len(t, l.Entries[0].Sources, 2)
}

func TestBuilder_SameStatementRepeatsAreNotDuplicates(t *testing.T) {
	// Two identical coffees on the same day are two real transactions.
	b := NewBuilder()
	b.Add("a", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
		tx(1, "-4.50", "TIM HORTONS #2471"),
	})

	l := b.Build()
	assert.Len(t, l.Entries, 2)
	assert.Equal(t, 0, l.Duplicates())
}

func TestBuilder_RepeatedRowsMergePairwise(t *testing.T) {
	b := NewBuilder()
	b.Add("a", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
		tx(1, "-4.50", "TIM HORTONS #2471"),
	})
	b.Add("b", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
	})

	l := b.Build()
	require.Len(t, l.Entries, 2)
	assert.Equal(t, 1, l.Duplicates(), "the overlap absorbs only one of the pair")
}

func TestBuilder_ReAddReplacesStatement(t *testing.T) {
	b := NewBuilder()
	b.Add("a", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
		tx(2, "-10.00", "WRONG ROW"),
	})
	b.Add("a", []Transaction{
		tx(1, "-4.50", "TIM HORTONS #2471"),
		tx(2, "-12.00", "CORRECTED ROW"),
	})

	l := b.Build()
	require.Len(t, l.Entries, 2)
	assert.Equal(t, "CORRECTED ROW", l.Entries[1].Description)
	for _, e := range l.Entries {
		assert.Len(t, e.Sources, 1)
	}
}

func TestBuilder_ReAddKeepsOtherStatementsIntact(t *testing.T) {
	shared := tx(1, "-4.50", "TIM HORTONS #2471")
	b := NewBuilder()
	b.Add("a", []Transaction{shared})
	b.Add("b", []Transaction{shared})
	b.Add("a", []Transaction{shared})

	l := b.Build()
	require.Len(t, l.Entries, 1)
	assert.Len(t, l.Entries[0].Sources, 2)
}

func TestBuilder_BuildOrdersByDateThenUpload(t *testing.T) {
	b := NewBuilder()
	b.Add("later-upload-earlier-dates", []Transaction{
		tx(5, "-1.00", "B ROW"),
		tx(1, "-2.00", "A ROW"),
	})
	b.Add("second", []Transaction{
		tx(5, "-3.00", "C ROW"),
	})

	l := b.Build()
	require.Len(t, l.Entries, 3)
	assert.Equal(t, "A ROW", l.Entries[0].Description)
	assert.Equal(t, "B ROW", l.Entries[1].Description, "same day: first upload first")
	assert.Equal(t, "C ROW", l.Entries[2].Description)
}

func TestTransaction_Key(t *testing.T) {
	a := tx(1, "-4.50", "Tim Hortons")
	bb := tx(1, "-4.50", "TIM HORTONS")
	c := tx(1, "-4.51", "Tim Hortons")

	assert.Equal(t, a.Key(), bb.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
