package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/reporting"
)

func TestNormalizeCollectionsFlattensAssociations(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	collections := []*models.Collection{
		{
			ID:           7,
			AmountBilled: decimal.NewFromInt(125000),
			Date:         date,
			Customer:     &models.Customer{Name: "JOHN DOE"},
			Centre: &models.Centre{
				Name: "DODOMA RVTSC",
				Zone: &models.Zone{Name: "CENTRAL ZONE"},
			},
			GfsCode: &models.GfsCode{Code: "142201170127", Description: "Motor Vehicle Service"},
		},
		{ID: 8, AmountBilled: decimal.NewFromInt(500), Date: date},
	}

	records := normalizeCollections(collections)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	r := records[0]
	if r.ID != "7" || r.Subject != "JOHN DOE" || r.Centre != "DODOMA RVTSC" ||
		r.Zone != "CENTRAL ZONE" || r.ServiceCode != "142201170127" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Date != "2026-03-15" {
		t.Fatalf("expected date 2026-03-15, got %q", r.Date)
	}
	if records[1].Centre != "" || records[1].Zone != "" {
		t.Fatalf("missing associations should normalize to empty strings: %+v", records[1])
	}
}

func TestTopAndBottomCentres(t *testing.T) {
	summaries := []reporting.Summary{
		{Key: "A", Amount: decimal.NewFromInt(500)},
		{Key: "B", Amount: decimal.NewFromInt(400)},
		{Key: "C", Amount: decimal.NewFromInt(300)},
		{Key: "D", Amount: decimal.NewFromInt(200)},
		{Key: "E", Amount: decimal.NewFromInt(100)},
	}

	top := topN(summaries, 3)
	if len(top) != 3 || top[0].Key != "A" || top[2].Key != "C" {
		t.Fatalf("unexpected top centres: %+v", top)
	}

	bottom := bottomN(summaries, 3)
	if len(bottom) != 3 || bottom[0].Key != "E" || bottom[2].Key != "C" {
		t.Fatalf("expected lowest first, got: %+v", bottom)
	}
}

func TestTopNShorterThanLimit(t *testing.T) {
	summaries := []reporting.Summary{{Key: "A"}}
	if got := topN(summaries, 3); len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got := bottomN(summaries, 3); len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
}

func TestAllocationScopeContainment(t *testing.T) {
	alloc := &models.Allocation{
		Centre: &models.Centre{Name: "MWANZA RVTSC", Zone: &models.Zone{Name: "LAKE ZONE"}},
	}

	cases := []struct {
		name  string
		scope reporting.Scope
		want  bool
	}{
		{"hq sees all", reporting.Scope{Level: reporting.ScopeHQ}, true},
		{"own centre", reporting.Scope{Level: reporting.ScopeCentre, Centre: "MWANZA RVTSC"}, true},
		{"other centre", reporting.Scope{Level: reporting.ScopeCentre, Centre: "DODOMA RVTSC"}, false},
		{"own zone", reporting.Scope{Level: reporting.ScopeZone, Zone: "LAKE ZONE"}, true},
		{"other zone", reporting.Scope{Level: reporting.ScopeZone, Zone: "CENTRAL ZONE"}, false},
	}
	for _, tc := range cases {
		if got := allocationInScope(alloc, tc.scope); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestSumAllocations(t *testing.T) {
	allocations := []*models.Allocation{
		{OriginalAmount: decimal.NewFromInt(100), ProfitAmount: decimal.NewFromInt(20)},
		{OriginalAmount: decimal.NewFromInt(50), ProfitAmount: decimal.NewFromInt(10)},
	}
	totals := sumAllocations(allocations)
	if !totals.OriginalAmount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected original total 150, got %s", totals.OriginalAmount)
	}
	if !totals.ProfitAmount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected profit total 30, got %s", totals.ProfitAmount)
	}
}
