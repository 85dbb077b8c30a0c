package reporting

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GroupKey selects the grouping dimension for a summary.
type GroupKey func(TransactionRecord) (key string, label string)

func ByService(r TransactionRecord) (string, string) {
	label := r.ServiceDescription
	if label == "" {
		label = r.ServiceCode
	}
	return r.ServiceCode, label
}

func ByCentre(r TransactionRecord) (string, string) {
	return r.Centre, r.Centre
}

func ByZone(r TransactionRecord) (string, string) {
	return r.Zone, r.Zone
}

// Summary is one per-key subtotal row.
type Summary struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Aggregate groups records by key and sums amounts per group, sorted by
// amount descending. Ties keep first-encountered order.
func Aggregate(records []TransactionRecord, key GroupKey) []Summary {
	index := make(map[string]int)
	summaries := []Summary{}

	for _, r := range records {
		k, label := key(r)
		i, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			summaries = append(summaries, Summary{Key: k, Label: label})
			i = index[k]
		}
		summaries[i].Amount = summaries[i].Amount.Add(r.Amount)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Amount.GreaterThan(summaries[j].Amount)
	})
	return summaries
}

// Total sums all record amounts regardless of grouping.
func Total(records []TransactionRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
