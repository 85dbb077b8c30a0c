package reporting

import (
	"testing"

	"github.com/shopspring/decimal"
)

func rec(centre, zone, service string, amount int64, date string) TransactionRecord {
	return TransactionRecord{
		Centre:      centre,
		Zone:        zone,
		ServiceCode: service,
		Amount:      decimal.NewFromInt(amount),
		Date:        date,
	}
}

func fixtureRecords() []TransactionRecord {
	return []TransactionRecord{
		rec("A", "EASTERN", "X", 100, "2024-01-05"),
		rec("B", "CENTRAL", "Y", 50, "2024-01-10"),
	}
}

func TestHQViewerSeesAllWithinRange(t *testing.T) {
	records := ApplyScope(fixtureRecords(), Scope{Level: ScopeHQ})
	filtered := ApplyFilter(records, Criteria{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Service:   "ALL",
		Centre:    "ALL",
	})

	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(filtered))
	}
	if total := Total(filtered); !total.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected total 150, got %s", total)
	}

	summaries := Aggregate(filtered, ByService)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Key != "X" || !summaries[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected X/100 first, got %s/%s", summaries[0].Key, summaries[0].Amount)
	}
	if summaries[1].Key != "Y" || !summaries[1].Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected Y/50 second, got %s/%s", summaries[1].Key, summaries[1].Amount)
	}
}

func TestStartDateExcludesEarlierRecord(t *testing.T) {
	filtered := ApplyFilter(fixtureRecords(), Criteria{StartDate: "2024-01-06"})
	if len(filtered) != 1 {
		t.Fatalf("expected 1 record, got %d", len(filtered))
	}
	if total := Total(filtered); !total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected total 50, got %s", total)
	}
}

func TestCentreScopeCannotBeWidenedByFilter(t *testing.T) {
	scoped := ApplyScope(fixtureRecords(), Scope{Level: ScopeCentre, Centre: "B"})

	// a centre filter chosen in the UI cannot reach outside the scope
	for _, centreFilter := range []string{"", "ALL", "A", "B"} {
		filtered := ApplyFilter(scoped, Criteria{Centre: centreFilter})
		for _, r := range filtered {
			if r.Centre != "B" {
				t.Fatalf("centre filter %q leaked record for centre %q", centreFilter, r.Centre)
			}
		}
	}
}

func TestZoneScopeContainment(t *testing.T) {
	records := []TransactionRecord{
		rec("A", "EASTERN", "X", 100, "2024-01-05"),
		rec("B", "CENTRAL", "Y", 50, "2024-01-10"),
		rec("C", "EASTERN", "Z", 25, "2024-01-12"),
	}
	scoped := ApplyScope(records, Scope{Level: ScopeZone, Zone: "EASTERN"})
	if len(scoped) != 2 {
		t.Fatalf("expected 2 records in zone, got %d", len(scoped))
	}
	for _, r := range scoped {
		if r.Zone != "EASTERN" {
			t.Fatalf("zone scope leaked record for zone %q", r.Zone)
		}
	}
}

func TestAggregateConservation(t *testing.T) {
	records := []TransactionRecord{
		rec("A", "EASTERN", "X", 100, "2024-01-05"),
		rec("B", "CENTRAL", "Y", 50, "2024-01-10"),
		rec("A", "EASTERN", "Y", 75, "2024-01-15"),
		rec("C", "LAKE", "X", 25, "2024-01-20"),
	}

	total := Total(records)
	byService := decimal.Zero
	for _, s := range Aggregate(records, ByService) {
		byService = byService.Add(s.Amount)
	}
	byCentre := decimal.Zero
	for _, s := range Aggregate(records, ByCentre) {
		byCentre = byCentre.Add(s.Amount)
	}

	if !byService.Equal(total) {
		t.Fatalf("service summaries sum to %s, total is %s", byService, total)
	}
	if !byCentre.Equal(total) {
		t.Fatalf("centre summaries sum to %s, total is %s", byCentre, total)
	}
}

func TestFilterIdempotence(t *testing.T) {
	base := fixtureRecords()
	c := Criteria{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	first := ApplyFilter(base, c)
	second := ApplyFilter(base, c)

	if len(first) != len(second) {
		t.Fatalf("filter changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs between runs", i)
		}
	}
	// base set unchanged
	if len(base) != 2 || base[0].Centre != "A" {
		t.Fatalf("filter mutated the base set")
	}
}

func TestInvertedDateRangeYieldsEmpty(t *testing.T) {
	filtered := ApplyFilter(fixtureRecords(), Criteria{
		StartDate: "2024-02-01",
		EndDate:   "2024-01-01",
	})
	if len(filtered) != 0 {
		t.Fatalf("inverted range should match nothing, got %d records", len(filtered))
	}
}

func TestEmptyDateNeverMatchesBoundedRange(t *testing.T) {
	records := []TransactionRecord{
		rec("A", "EASTERN", "X", 100, ""),
		rec("B", "CENTRAL", "Y", 50, "2024-01-10"),
	}
	filtered := ApplyFilter(records, Criteria{StartDate: "2020-01-01", EndDate: "2030-12-31"})
	if len(filtered) != 1 || filtered[0].Centre != "B" {
		t.Fatalf("empty-date record should be excluded from bounded range")
	}
	// with no bounds the record passes through
	unbounded := ApplyFilter(records, Criteria{})
	if len(unbounded) != 2 {
		t.Fatalf("unbounded filter should keep all records, got %d", len(unbounded))
	}
}

func TestPaginationCompleteness(t *testing.T) {
	records := make([]TransactionRecord, 13)
	for i := range records {
		records[i] = rec("A", "EASTERN", "X", int64(i), "2024-01-01")
	}

	pageSize := 5
	var reassembled []TransactionRecord
	for page := 1; page <= PageCount(len(records), pageSize); page++ {
		reassembled = append(reassembled, Paginate(records, page, pageSize)...)
	}

	if len(reassembled) != len(records) {
		t.Fatalf("pages reassemble to %d records, want %d", len(reassembled), len(records))
	}
	for i := range records {
		if !reassembled[i].Amount.Equal(records[i].Amount) {
			t.Fatalf("record %d out of order after pagination", i)
		}
	}
}

func TestPaginationPastEndIsEmpty(t *testing.T) {
	records := fixtureRecords()
	if page := Paginate(records, 5, 10); len(page) != 0 {
		t.Fatalf("page past end should be empty, got %d", len(page))
	}
}

func TestNormalizeDefaultsMalformedFields(t *testing.T) {
	raw := []RawRecord{
		{ID: "1", GfsCode: "X", Amount: "250,000.00 TSh", Date: "2024-01-05T10:30:00"},
		{ID: 2.0, GfsCode: "Y", Amount: "garbage", Date: "not-a-date"},
		{},
	}
	records := Normalize(raw)
	if len(records) != 3 {
		t.Fatalf("normalize must keep every record, got %d of 3", len(records))
	}
	if !records[0].Amount.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("expected 250000, got %s", records[0].Amount)
	}
	if records[0].Date != "2024-01-05" {
		t.Fatalf("expected 2024-01-05, got %q", records[0].Date)
	}
	if !records[1].Amount.IsZero() || records[1].Date != "" {
		t.Fatalf("malformed fields must default, got amount %s date %q", records[1].Amount, records[1].Date)
	}
	if records[1].ID != "2" {
		t.Fatalf("numeric id must stringify, got %q", records[1].ID)
	}
}
