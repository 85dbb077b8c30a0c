package reporting

import "strings"

type ScopeLevel string

const (
	ScopeHQ     ScopeLevel = "HQ"
	ScopeZone   ScopeLevel = "ZONE"
	ScopeCentre ScopeLevel = "CENTRE"
)

// Scope is the viewer's authorization boundary, derived once from the
// session claims. It is applied before any user-chosen filter and the
// filter cannot widen it.
type Scope struct {
	Level  ScopeLevel
	Centre string
	Zone   string
}

// ApplyScope restricts records to the viewer's centre or zone. HQ passes
// everything through. The input slice is never mutated.
func ApplyScope(records []TransactionRecord, scope Scope) []TransactionRecord {
	if scope.Level == ScopeHQ {
		out := make([]TransactionRecord, len(records))
		copy(out, records)
		return out
	}

	out := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		switch scope.Level {
		case ScopeCentre:
			if strings.EqualFold(r.Centre, scope.Centre) {
				out = append(out, r)
			}
		case ScopeZone:
			if strings.EqualFold(r.Zone, scope.Zone) {
				out = append(out, r)
			}
		}
	}
	return out
}
