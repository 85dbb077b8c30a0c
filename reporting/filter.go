package reporting

import "strings"

// Criteria is the user-adjustable query. Service, Centre and Zone are
// wildcarded when empty or "ALL". Dates are inclusive on both ends; an
// inverted range matches nothing.
type Criteria struct {
	StartDate string
	EndDate   string
	Service   string
	Centre    string
	Zone      string
}

func isWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, "ALL")
}

// ApplyFilter evaluates the criteria conjunctively over the scope-restricted
// set. Input order is preserved and the input slice is never mutated.
// Records with an empty (unparseable) date never match a bounded range.
func ApplyFilter(records []TransactionRecord, c Criteria) []TransactionRecord {
	start, hasStart := parseDate(c.StartDate)
	end, hasEnd := parseDate(c.EndDate)

	out := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if hasStart || hasEnd {
			date, ok := parseDate(r.Date)
			if !ok {
				continue
			}
			if hasStart && date.Before(start) {
				continue
			}
			if hasEnd && date.After(end) {
				continue
			}
		}
		if !isWildcard(c.Service) && !strings.EqualFold(r.ServiceCode, c.Service) {
			continue
		}
		if !isWildcard(c.Centre) && !strings.EqualFold(r.Centre, c.Centre) {
			continue
		}
		if !isWildcard(c.Zone) && !strings.EqualFold(r.Zone, c.Zone) {
			continue
		}
		out = append(out, r)
	}
	return out
}
