package igasync

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRowAcceptsWellFormedRow(t *testing.T) {
	raw := json.RawMessage(`{
		"centreName": "DODOMA RVTSC",
		"customerName": "JANE DOE",
		"gfsCode": "142201170127",
		"description": "Motor Vehicle Service",
		"amountBilled": "120,000.00",
		"amountPaid": "120000",
		"controlNumber": "991234567890",
		"paymentType": "CASH",
		"date": "2026-03-15T10:30:00"
	}`)

	row, reason := parseRow(raw)
	if reason != "" {
		t.Fatalf("expected row to parse, got reason %q", reason)
	}
	if row.CentreName != "DODOMA RVTSC" || row.GfsCode != "142201170127" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if !row.amountBilled.Equal(row.amountPaid) {
		t.Fatalf("comma-grouped and plain amounts should parse equal: %s vs %s",
			row.amountBilled, row.amountPaid)
	}
	want := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	if !row.date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, row.date)
	}
}

func TestParseRowSkipReasons(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", `"hello`, "malformed row"},
		{"missing centre", `{"gfsCode":"1423","date":"2026-01-01","amountBilled":"1","amountPaid":"1"}`, "missing centre name"},
		{"missing gfs code", `{"centreName":"X","date":"2026-01-01","amountBilled":"1","amountPaid":"1"}`, "missing gfs code"},
		{"missing date", `{"centreName":"X","gfsCode":"1423","amountBilled":"1","amountPaid":"1"}`, "missing or unparseable date"},
		{"garbage date", `{"centreName":"X","gfsCode":"1423","date":"not a date","amountBilled":"1","amountPaid":"1"}`, "missing or unparseable date"},
		{"bad billed", `{"centreName":"X","gfsCode":"1423","date":"2026-01-01","amountBilled":"","amountPaid":"1"}`, "bad amount billed"},
		{"bad paid", `{"centreName":"X","gfsCode":"1423","date":"2026-01-01","amountBilled":"1","amountPaid":"null"}`, "bad amount paid"},
	}

	for _, tc := range cases {
		row, reason := parseRow(json.RawMessage(tc.raw))
		if reason != tc.want {
			t.Fatalf("%s: expected reason %q, got %q", tc.name, tc.want, reason)
		}
		if row != nil {
			t.Fatalf("%s: expected nil row on skip", tc.name)
		}
	}
}

func TestParseRowDefaultsMissingCustomer(t *testing.T) {
	raw := json.RawMessage(`{"centreName":"X","gfsCode":"1423","date":"2026-01-01","amountBilled":"10","amountPaid":"10"}`)
	row, reason := parseRow(raw)
	if reason != "" {
		t.Fatalf("expected row to parse, got reason %q", reason)
	}
	if row.CustomerName != "UNKNOWN CUSTOMER" {
		t.Fatalf("expected placeholder customer, got %q", row.CustomerName)
	}
}

func TestCursorOverlapAppliedToFloor(t *testing.T) {
	got := defaultCursor.Add(-cursorOverlap)
	want := time.Date(2025, 12, 30, 23, 55, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected overlapped floor %v, got %v", want, got)
	}
}
