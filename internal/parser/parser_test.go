package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

func mustStrategy(t *testing.T, id string) (Strategy, *profile.Profile) {
	t.Helper()
	s, err := DefaultRegistry().ForProfile(id)
	require.NoError(t, err)
	p := profile.Default().Get(id)
	if p == nil && id == profile.GenericID {
		p = profile.Generic()
	}
	require.NotNil(t, p)
	return s, p
}

func TestDefaultRegistry_CoversAllProfiles(t *testing.T) {
	r := DefaultRegistry()
	for _, p := range profile.Default().All() {
		_, err := r.ForProfile(p.ID)
		assert.NoError(t, err, "profile %s has no strategy", p.ID)
	}
	_, err := r.ForProfile(profile.GenericID)
	assert.NoError(t, err)

	_, err = r.ForProfile("no-such-bank")
	assert.Error(t, err)
}

func TestBMOChequing(t *testing.T) {
	s, p := mustStrategy(t, "bmo-chequing")
	doc := extract.FromText(
		"Your Everyday Banking statement\n" +
			"Date Description Amounts deducted Amounts added Balance\n" +
			"Mar12 Debitcardpurchase SHOPPERS DRUG MART 45.67 1,234.56\n" +
			"Mar13 1,234.56\n" +
			"Mar14 Deposit PAYROLL ACME LTD 2,000.00 3,234.56\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	first := res.Candidates[0]
	assert.Equal(t, "Mar12", first.RawDate)
	assert.Equal(t, "45.67", first.RawAmount)
	assert.Equal(t, "1,234.56", first.RawBalance)
	assert.Equal(t, IndicatorDebit, first.Indicator)

	second := res.Candidates[1]
	assert.Equal(t, IndicatorCredit, second.Indicator)
	assert.Equal(t, "2,000.00", second.RawAmount)

	// The lone-amount row is a balance carry forward.
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "balance-only row", res.Skipped[0].Reason)
}

func TestBMOCredit(t *testing.T) {
	s, p := mustStrategy(t, "bmo-credit")
	doc := extract.FromText(
		"Nov. 3 Nov. 4 TIM HORTONS #2471 TORONTO ON 12345678901234 5.25\n" +
			"Nov. 5 Nov. 6 SPORT CHEK #110 MISSISSAUGA ON 89.99\n" +
			"Nov. 8 Nov. 9 TRSF FROM CHEQUING 100.00 CR\n" +
			"Nov. 9 Nov. 9 Total interest this period 0.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	first := res.Candidates[0]
	assert.Equal(t, "Nov.3", first.RawDate)
	assert.Equal(t, "Nov.4", first.RawPostDate)
	assert.Equal(t, "TIM HORTONS #2471 TORONTO ON", first.RawDescription,
		"reference number should be stripped")
	assert.Equal(t, "5.25", first.RawAmount)

	cr := res.Candidates[2]
	assert.Equal(t, "-100.00", cr.RawAmount, "CR suffix flips the sign")

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "summary row", res.Skipped[0].Reason)
}

func TestEQBank(t *testing.T) {
	s, p := mustStrategy(t, "eq-bank")
	doc := extract.FromText(
		"Mar 1 Interest earned $0.45\n" +
			"Mar 15 EFT out to TD Canada Trust -$250.00\n" +
			"Withdrawals Deposits\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "$0.45", res.Candidates[0].RawAmount)
	assert.Equal(t, "-$250.00", res.Candidates[1].RawAmount)
	assert.Equal(t, IndicatorNone, res.Candidates[0].Indicator,
		"eq bank prints signed amounts")
}

func TestTDChequing_Sections(t *testing.T) {
	s, p := mustStrategy(t, "td-chequing")
	doc := extract.FromText(
		"03/01 STRAY ROW BEFORE SECTIONS 10.00\n" +
			"Credits\n" +
			"03/02 E-TRANSFER RECEIVED 500.00\n" +
			"Debits\n" +
			"03/03 MONTHLY PLAN FEE 16.95\n" +
			"03/04 POINT OF SALE PURCHASE 23.10\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, IndicatorCredit, res.Candidates[0].Indicator)
	assert.Equal(t, IndicatorDebit, res.Candidates[1].Indicator)
	assert.Equal(t, IndicatorDebit, res.Candidates[2].Indicator)
	assert.Equal(t, "03/03", res.Candidates[1].RawDate)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "dated row outside activity section", res.Skipped[0].Reason)
}

func TestTDCredit_GluedAndSpacedDates(t *testing.T) {
	s, p := mustStrategy(t, "td-credit")
	doc := extract.FromText(
		"FEB 26 FEB 27 NETFLIX.COM 866-716-0414 16.94\n" +
			"FEB26 FEB27 UBER CANADA/UBERTRIP TORONTO 12.80\n" +
			"MAR 1 MAR 2 PREVIOUS STATEMENT BALANCE 1,000.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "FEB 26", res.Candidates[0].RawDate)
	assert.Equal(t, "FEB26", res.Candidates[1].RawDate)
	require.Len(t, res.Skipped, 1)
}

func TestTangerineSavings_MultiLineRows(t *testing.T) {
	s, p := mustStrategy(t, "tangerine-savings")
	doc := extract.FromText(
		"Transaction Date Description Amount Balance\n" +
			"01 Mar 2025 Interest paid 4.56 1,234.56\n" +
			"05 Mar 2025\n" +
			"EFT Withdrawal to TD CANADA\n" +
			"500.00 734.56\n" +
			"Current Interest Rate: 0.30%\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	interest := res.Candidates[0]
	assert.Equal(t, "01 Mar 2025", interest.RawDate)
	assert.Equal(t, "Interest paid", interest.RawDescription)
	assert.Equal(t, "4.56", interest.RawAmount)
	assert.Equal(t, "1,234.56", interest.RawBalance)
	assert.Equal(t, IndicatorCredit, interest.Indicator)

	eft := res.Candidates[1]
	assert.Equal(t, "05 Mar 2025", eft.RawDate)
	assert.Equal(t, "EFT Withdrawal to TD CANADA", eft.RawDescription)
	assert.Equal(t, "500.00", eft.RawAmount)
	assert.Equal(t, "734.56", eft.RawBalance)
	assert.Equal(t, IndicatorDebit, eft.Indicator)
}

func TestTangerineCredit(t *testing.T) {
	s, p := mustStrategy(t, "tangerine-credit")
	doc := extract.FromText(
		"15-Feb-2025 17-Feb-2025 SPOTIFY P21E25ABCD ON 12.43 $0.25\n" +
			"18-Feb-2025 18-Feb-2025 PAYMENT - THANK YOU -$345.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "SPOTIFY P21E25ABCD", res.Candidates[0].RawDescription,
		"province suffix should be stripped")
	assert.Equal(t, "12.43", res.Candidates[0].RawAmount)
	assert.Equal(t, "-$345.00", res.Candidates[1].RawAmount)
}

func TestRBCChequing_DateCarryForward(t *testing.T) {
	s, p := mustStrategy(t, "rbc-chequing")
	doc := extract.FromText(
		"Details of your account activity\n" +
			"Date Description Withdrawals ($) Deposits ($) Balance ($)\n" +
			"3 Mar Contactless Interac purchase - 4512 TIM HORTONS 4.50 1,200.00\n" +
			"e-Transfer - Autodeposit JANE D 500.00 1,700.00\n" +
			"Opening balance 1,204.50\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	first := res.Candidates[0]
	assert.Equal(t, "3 Mar", first.RawDate)
	assert.Equal(t, "4.50", first.RawAmount)
	assert.Equal(t, IndicatorDebit, first.Indicator)

	carried := res.Candidates[1]
	assert.Equal(t, "3 Mar", carried.RawDate, "date carries forward to continuation rows")
	assert.Equal(t, IndicatorCredit, carried.Indicator)
}

func TestRBCChequing_RequiresActivityPage(t *testing.T) {
	s, p := mustStrategy(t, "rbc-chequing")
	doc := extract.FromText("3 Mar Interac purchase COFFEE 4.50 100.00\n")
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
}

func TestRBCVisa(t *testing.T) {
	s, p := mustStrategy(t, "rbc-visa")
	doc := extract.FromText(
		"DEC22 DEC23 UBER CANADA/UBERTRIP TORONTO ON $24.99\n" +
			"DEC28 DEC29 AMAZON.CA PRIME MEMBER AMAZON.CA 9.99\n" +
			"ABC12 DEF13 NOT A REAL ROW 1.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "DEC22", res.Candidates[0].RawDate)
	assert.Equal(t, "DEC23", res.Candidates[0].RawPostDate)
	assert.Equal(t, "24.99", res.Candidates[0].RawAmount)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "invalid month token", res.Skipped[0].Reason)
}

func TestSimplii_SectionAndCategoryTrim(t *testing.T) {
	s, p := mustStrategy(t, "simplii")
	doc := extract.FromText(
		"Mar 1 Mar 1 BEFORE THE TABLE STARTS 99.99\n" +
			"Trans Post date Description Amount\n" +
			"Mar 3 Mar 4 TIM HORTONS #2471 TORONTO ON Personal and Household Expenses 5.25\n" +
			"Mar 6 Mar 7 FAIRMONT BANFF SPRINGS BANFF AB Hotel, Entertainment and Recreation 312.40\n" +
			"Total for 4500 XXXX XXXX 1234 317.65\n" +
			"Mar 9 Mar 9 AFTER THE TABLE ENDED 10.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, "TIM HORTONS #2471 TORONTO", res.Candidates[0].RawDescription)
	assert.Equal(t, "5.25", res.Candidates[0].RawAmount)
	assert.Equal(t, "FAIRMONT BANFF SPRINGS BANFF AB", res.Candidates[1].RawDescription)
	assert.Equal(t, "312.40", res.Candidates[1].RawAmount)
}

func TestCIBCChequing(t *testing.T) {
	s, p := mustStrategy(t, "cibc-chequing")
	doc := extract.FromText(
		"CIBC Account Statement first page summary\n",
		"Transaction details\n"+
			"Mar 3 RETAIL PURCHASE 4523 TIM HORTONS 4.50 1,195.50\n"+
			"E-TRANSFER 0456 JOHN D 250.00 1,445.50\n"+
			"Mar 5 WITHDRAWAL INSTANT TELLER 100.00 1,345.50\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, "Mar 3", res.Candidates[0].RawDate)
	assert.Equal(t, IndicatorDebit, res.Candidates[0].Indicator)
	assert.Equal(t, "1,195.50", res.Candidates[0].RawBalance)

	assert.Equal(t, "Mar 3", res.Candidates[1].RawDate, "carry forward")
	assert.Equal(t, IndicatorCredit, res.Candidates[1].Indicator)

	assert.Equal(t, "Mar 5", res.Candidates[2].RawDate)
}

func TestCIBCChequing_IgnoresFirstPage(t *testing.T) {
	s, p := mustStrategy(t, "cibc-chequing")
	doc := extract.FromText(
		"Transaction details\nMar 3 RETAIL PURCHASE 4.50 100.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
}

func TestCIBCVisaUSD_ConsumesExchangeLines(t *testing.T) {
	s, p := mustStrategy(t, "cibc-visa-usd")
	doc := extract.FromText(
		"Nov 12 Nov 13 AMAZON.COM AMZN.COM/BILL WA 13.72\n" +
			"18.53 CAD @ 1.350947\n" +
			"Nov 15 Nov 16 DELTA AIR LINES ATLANTA GA 412.88\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "USD", res.Candidates[0].Currency)
	assert.Equal(t, "13.72", res.Candidates[0].RawAmount)
	assert.Equal(t, "18.53", res.Candidates[0].RawConverted)
	assert.Empty(t, res.Candidates[1].RawConverted)
	assert.Empty(t, res.Skipped, "exchange detail lines are consumed, not skipped")
}

func TestAmex(t *testing.T) {
	s, p := mustStrategy(t, "amex-credit")
	doc := extract.FromText(
		"December16 December17 UBER EATS TORONTO 25.99\n" +
			"Dec18 Dec19 PRESTO FARE TORONTO 3.30\n" +
			"December20 Total of new charges 412.88\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "December16", res.Candidates[0].RawDate)
	assert.Equal(t, "December17", res.Candidates[0].RawPostDate)
	assert.Equal(t, "Dec18", res.Candidates[1].RawDate)
	require.Len(t, res.Skipped, 1)
}

func TestScotiabankChequing(t *testing.T) {
	s, p := mustStrategy(t, "scotiabank-chequing")
	doc := extract.FromText(
		"Mar5 Point of SalePurchase SOBEYS #4523 45.67\n" +
			"MB-TransferWITHDRAWAL to loan account 200.00\n" +
			"Mar7 Deposit PAYROLL 1,500.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, "Mar5", res.Candidates[0].RawDate)
	assert.Equal(t, IndicatorDebit, res.Candidates[0].Indicator)

	assert.Equal(t, "Mar5", res.Candidates[1].RawDate, "date carries forward")
	assert.Equal(t, IndicatorDebit, res.Candidates[1].Indicator)

	assert.Equal(t, "Mar7", res.Candidates[2].RawDate)
	assert.Equal(t, IndicatorCredit, res.Candidates[2].Indicator)
}

func TestScotiabankCredit(t *testing.T) {
	s, p := mustStrategy(t, "scotiabank-credit")
	doc := extract.FromText(
		"TIM HORTONS #2471 TORONTO Mar-5 123 8.75\n" +
			"Beginning points balance this period 4,312\n" +
			"Payments/credits since your last statement 250.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Mar-5", res.Candidates[0].RawDate)
	assert.Equal(t, "TIM HORTONS #2471 TORONTO", res.Candidates[0].RawDescription,
		"date token and standalone reference digits removed")
	assert.Equal(t, "8.75", res.Candidates[0].RawAmount)
}

func TestWise(t *testing.T) {
	s, p := mustStrategy(t, "wise")
	doc := extract.FromText(
		"Date: Mar 1, 2021 to Mar 23, 2021\n" +
			"Card payments $123.45\n" +
			"Top up $500.00\n" +
			"ATM withdrawals $0.00\n" +
			"Total balance $1,234.56\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, "Mar 23, 2021", res.Candidates[0].RawDate,
		"summary rows date to the end of the statement period")
	assert.Equal(t, IndicatorDebit, res.Candidates[0].Indicator)
	assert.Equal(t, "Top up", res.Candidates[1].RawDescription)
	assert.Equal(t, IndicatorCredit, res.Candidates[1].Indicator)
}

func TestGeneric(t *testing.T) {
	s, p := mustStrategy(t, profile.GenericID)
	doc := extract.FromText(
		"03/15 COFFEE SHOP PURCHASE 4.50\n" +
			"Mar 16, 2025 GROCERY STORE DOWNTOWN -78.12\n" +
			"Opening balance 1,000.00\n" +
			"random text without a date\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "03/15", res.Candidates[0].RawDate)
	assert.Equal(t, "Mar 16, 2025", res.Candidates[1].RawDate)
	assert.Equal(t, "-78.12", res.Candidates[1].RawAmount)
}

func TestGeneric_ISODates(t *testing.T) {
	s, p := mustStrategy(t, profile.GenericID)
	doc := extract.FromText(
		"2024-01-05 COFFEE SHOP -4.50\n" +
			"2024-01-06 PAYROLL DEPOSIT 2000.00\n",
	)
	res, err := s.Parse(doc, p)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, "2024-01-05", res.Candidates[0].RawDate)
	assert.Equal(t, "COFFEE SHOP", res.Candidates[0].RawDescription)
	assert.Equal(t, "-4.50", res.Candidates[0].RawAmount)
	assert.Equal(t, "2024-01-06", res.Candidates[1].RawDate)
	assert.Equal(t, "2000.00", res.Candidates[1].RawAmount)
}

func TestStrategies_HeaderOnlyStatement(t *testing.T) {
	// A statement whose pages carry only headers and summary text must
	// yield no candidates and no error from any registered strategy.
	doc := extract.FromText(
		"Account Statement\n" +
			"Statement period March 1 to March 31, 2025\n" +
			"Page 1 of 3\n" +
			"Opening balance 1,024.56\n" +
			"Date Description Amount Balance\n",
	)
	r := DefaultRegistry()
	profiles := append(profile.Default().All(), profile.Generic())
	for _, p := range profiles {
		t.Run(p.ID, func(t *testing.T) {
			s, err := r.ForProfile(p.ID)
			require.NoError(t, err)
			res, err := s.Parse(doc, p)
			require.NoError(t, err)
			assert.Empty(t, res.Candidates)
		})
	}
}
