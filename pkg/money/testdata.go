package money

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic statement test data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0),
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

var statementMerchants = []string{
	"TIM HORTONS #2471", "SHOPPERS DRUG MART #0893", "LOBLAWS #1029",
	"PRESTO FARE/TORONTO", "AMZN MKTP CA", "UBER CANADA/UBERTRIP",
	"LCBO/RAO #0522", "CDN TIRE STORE #00123", "METRO #725",
	"NO FRILLS #3871", "PETRO-CANADA", "SOBEYS #4412",
	"A&W #4290 TORONTO", "DOLLARAMA #944", "STAPLES #252",
}

// Merchant returns a random statement-style merchant line.
func (g *TestDataGenerator) Merchant() string {
	return statementMerchants[g.faker.Number(0, len(statementMerchants)-1)]
}

// RandomAmount generates a random decimal amount within a cent range.
func (g *TestDataGenerator) RandomAmount(minCents, maxCents int64) decimal.Decimal {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	cents := g.faker.Int64() % (maxCents - minCents + 1)
	if cents < 0 {
		cents = -cents
	}
	return decimal.New(minCents+cents, -2)
}

// RawAmount renders an amount in one of the notations seen on statements.
func (g *TestDataGenerator) RawAmount(d decimal.Decimal) string {
	abs := d.Abs().StringFixed(2)
	if !d.IsNegative() {
		return abs
	}
	switch g.faker.Number(0, 2) {
	case 0:
		return "-" + abs
	case 1:
		return "(" + abs + ")"
	default:
		return abs + " CR"
	}
}

// StatementLine renders a simple "date description amount" statement row.
func (g *TestDataGenerator) StatementLine(date string) string {
	amt := g.RandomAmount(100, 25000)
	if g.faker.Bool() {
		amt = amt.Neg()
	}
	return fmt.Sprintf("%s  %s  %s", date, g.Merchant(), g.RawAmount(amt))
}
