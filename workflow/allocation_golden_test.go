package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func collection(gfs *models.GfsCode, billed, description string) *models.Collection {
	return &models.Collection{
		GfsCodeId:    gfs.ID,
		GfsCode:      gfs,
		AmountBilled: dec(billed),
		Description:  description,
		Date:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func testCentre() *models.Centre {
	return &models.Centre{ID: 1, Name: "DODOMA VETA", Rank: models.CentreRankA}
}

func TestParseMarkupVariants(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0.4", "0.4"},
		{"40", "0.4"},
		{"40%", "0.4"},
		{" 40 % ", "0.4"},
		{"0.30", "0.3"},
		{"", "0"},
		{"garbage", "0"},
	}
	for _, tc := range cases {
		got := models.ParseMarkup(tc.in)
		if !got.Equal(dec(tc.expected)) {
			t.Fatalf("ParseMarkup(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestNormalAllocationGolden(t *testing.T) {
	gfs := &models.GfsCode{ID: 3, Code: "142201610607", Description: "Miscellaneous receipts", MarkupPercent: "0.2"}
	items := []*models.Collection{collection(gfs, "120000.00", "misc")}

	allocations := AllocateByGfsCode(testCentre(), items)
	if len(allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(allocations))
	}
	a := allocations[0]

	// expenditure = 120000 / 1.2 = 100000.0000, profit = 20000
	if !a.ExpenditureAmount.Equal(dec("100000")) {
		t.Fatalf("expenditure expected 100000, got %s", a.ExpenditureAmount)
	}
	if !a.ProfitAmount.Equal(dec("20000")) {
		t.Fatalf("profit expected 20000, got %s", a.ProfitAmount)
	}
	if !a.DifferenceOnMarkup.Equal(dec("80000")) {
		t.Fatalf("difference expected 80000, got %s", a.DifferenceOnMarkup)
	}
	if !a.ContributionToCentralIGA.Equal(dec("6000")) {
		t.Fatalf("central IGA expected 6000, got %s", a.ContributionToCentralIGA)
	}
	if !a.FacilitationCentral.Equal(dec("800")) || !a.FacilitationZonal.Equal(dec("800")) {
		t.Fatalf("facilitation buckets expected 800/800, got %s/%s", a.FacilitationCentral, a.FacilitationZonal)
	}
	if !a.FacilitationCentre.Equal(dec("400")) {
		t.Fatalf("centre facilitation expected 400, got %s", a.FacilitationCentre)
	}
	if !a.ContributionToCentreFund.Equal(dec("12000")) {
		t.Fatalf("centre fund expected 12000, got %s", a.ContributionToCentreFund)
	}
	if !a.RemittedToCentre.Equal(dec("12400")) {
		t.Fatalf("remitted expected 12400, got %s", a.RemittedToCentre)
	}
	if !a.SupportToProductionUnit.IsZero() || !a.DepreciationIncentive.IsZero() {
		t.Fatalf("zero-rate buckets must be zero")
	}
}

func TestExpenditureRoundedToFourPlaces(t *testing.T) {
	gfs := &models.GfsCode{ID: 4, Code: "142301610001", Description: "Receipt from Vocational Workshop Production", MarkupPercent: "0.3"}
	items := []*models.Collection{collection(gfs, "100000.00", "workshop")}

	a := AllocateByGfsCode(testCentre(), items)[0]

	// 100000 / 1.3 = 76923.0769 (4dp HALF-UP)
	if !a.ExpenditureAmount.Equal(dec("76923.0769")) {
		t.Fatalf("expenditure expected 76923.0769, got %s", a.ExpenditureAmount)
	}
	if !a.ProfitAmount.Equal(dec("23076.9231")) {
		t.Fatalf("profit expected 23076.9231, got %s", a.ProfitAmount)
	}
}

func TestDrivingCodeSplitsByDescription(t *testing.T) {
	gfs := &models.GfsCode{ID: 1, Code: "142301600001", Description: "Vocational Short and Tailor made course fees", MarkupPercent: "0.4"}
	items := []*models.Collection{
		collection(gfs, "100000", "BASIC DRIVING COURSE"),
		collection(gfs, "50000", "psv renewal"),
		collection(gfs, "80000", "welding short course"),
	}

	allocations := AllocateByGfsCode(testCentre(), items)
	if len(allocations) != 2 {
		t.Fatalf("expected driving + short courses lines, got %d", len(allocations))
	}

	driving := allocations[0]
	if driving.GfsCode != "142301600001-DRIVING" || driving.GfsCodeDescription != "BASIC DRIVING" {
		t.Fatalf("unexpected driving line %s/%s", driving.GfsCode, driving.GfsCodeDescription)
	}
	// driving total 150000, markup 0.4 -> expenditure 107142.8571
	if !driving.OriginalAmount.Equal(dec("150000")) {
		t.Fatalf("driving total expected 150000, got %s", driving.OriginalAmount)
	}
	if !driving.ExpenditureAmount.Equal(dec("107142.8571")) {
		t.Fatalf("driving expenditure expected 107142.8571, got %s", driving.ExpenditureAmount)
	}

	short := allocations[1]
	if short.GfsCode != "142301600001-SHORT COURSES" || short.GfsCodeDescription != "SHORT COURSES" {
		t.Fatalf("unexpected short courses line %s/%s", short.GfsCode, short.GfsCodeDescription)
	}
	// short courses always use markup 0.30: 80000 / 1.3 = 61538.4615
	if !short.ExpenditureAmount.Equal(dec("61538.4615")) {
		t.Fatalf("short courses expenditure expected 61538.4615, got %s", short.ExpenditureAmount)
	}
}

func TestTuitionFeesAllocatesNothing(t *testing.T) {
	gfs := &models.GfsCode{ID: 2, Code: "142202120086", Description: "Tuition Fees", MarkupPercent: "0.1"}
	items := []*models.Collection{collection(gfs, "500000", "term tuition")}

	a := AllocateByGfsCode(testCentre(), items)[0]

	if !a.OriginalAmount.Equal(dec("500000")) {
		t.Fatalf("original amount expected 500000, got %s", a.OriginalAmount)
	}
	for name, v := range map[string]decimal.Decimal{
		"expenditure": a.ExpenditureAmount,
		"profit":      a.ProfitAmount,
		"centralIGA":  a.ContributionToCentralIGA,
		"centreFund":  a.ContributionToCentreFund,
		"remitted":    a.RemittedToCentre,
	} {
		if !v.IsZero() {
			t.Fatalf("tuition fees %s expected zero, got %s", name, v)
		}
	}
}

func TestApplicationFeeHasNoExpenditure(t *testing.T) {
	gfs := &models.GfsCode{ID: 6, Code: "142202540053", Description: "Receipts from Application Fee", MarkupPercent: "0.1"}
	items := []*models.Collection{collection(gfs, "10000", "application")}

	a := AllocateByGfsCode(testCentre(), items)[0]

	if !a.ExpenditureAmount.IsZero() {
		t.Fatalf("application fee expenditure expected zero, got %s", a.ExpenditureAmount)
	}
	if !a.ProfitAmount.Equal(dec("10000")) {
		t.Fatalf("application fee profit expected full amount, got %s", a.ProfitAmount)
	}
	// buckets still apply to the profit
	if !a.ContributionToCentralIGA.Equal(dec("3000")) {
		t.Fatalf("central IGA expected 3000, got %s", a.ContributionToCentralIGA)
	}
	if !a.RemittedToCentre.Equal(dec("6200")) {
		t.Fatalf("remitted expected 6200, got %s", a.RemittedToCentre)
	}
}

func TestDeriveServiceItemShares(t *testing.T) {
	item := DeriveServiceItem(ServiceRequest{
		ServiceName:         "Catering",
		ServiceReturnProfit: dec("200000"),
	})

	if !item.Executors.Equal(dec("20000")) {
		t.Fatalf("executors expected 20000, got %s", item.Executors)
	}
	if !item.SupportersToExecutors.Equal(dec("10000")) {
		t.Fatalf("supporters expected 10000, got %s", item.SupportersToExecutors)
	}
	if !item.AgencyFee.Equal(dec("10000")) {
		t.Fatalf("agency fee expected 10000, got %s", item.AgencyFee)
	}
	if !item.AmountPaid.Equal(dec("30000")) {
		t.Fatalf("amount paid expected executors+supporters=30000, got %s", item.AmountPaid)
	}
}
