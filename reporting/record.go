// Package reporting implements the shared report pipeline used by every
// report screen: normalize upstream records, restrict them to the viewer's
// scope, apply the user's filter, aggregate, and paginate.
package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/utils"
)

const DateLayout = "2006-01-02"

// TransactionRecord is the normalized unit of every report: one collection
// receipt or one distribution line, flattened from the upstream nesting.
type TransactionRecord struct {
	ID                 string          `json:"id"`
	Subject            string          `json:"subject"`
	Centre             string          `json:"centre"`
	Zone               string          `json:"zone"`
	ServiceCode        string          `json:"serviceCode"`
	ServiceDescription string          `json:"serviceDescription"`
	Amount             decimal.Decimal `json:"amount"`
	Date               string          `json:"date"`
}

// RawRecord mirrors the upstream payload shape: a customer object nesting a
// centre object nesting a zone object, with amounts and dates as strings.
type RawRecord struct {
	ID       interface{} `json:"id"`
	GfsCode  string      `json:"gfsCode"`
	GfsName  string      `json:"gfsName"`
	Amount   string      `json:"amount"`
	Date     string      `json:"date"`
	Customer struct {
		Name   string `json:"name"`
		Centre struct {
			Name string `json:"name"`
			Zone struct {
				Name string `json:"name"`
			} `json:"zone"`
		} `json:"centre"`
	} `json:"customer"`
}

// Normalize flattens raw upstream items. Malformed fields default rather
// than drop: a bad amount becomes zero, a bad date becomes the empty string.
// The output always has the same length as the input.
func Normalize(raw []RawRecord) []TransactionRecord {
	records := make([]TransactionRecord, 0, len(raw))
	for _, r := range raw {
		amount, err := utils.ParseDecimal(r.Amount)
		if err != nil {
			amount = decimal.Zero
		}

		date := ""
		if t, ok := utils.ParseFlexibleTime(r.Date); ok {
			date = t.Format(DateLayout)
		}

		records = append(records, TransactionRecord{
			ID:                 stringify(r.ID),
			Subject:            r.Customer.Name,
			Centre:             r.Customer.Centre.Name,
			Zone:               r.Customer.Centre.Zone.Name,
			ServiceCode:        r.GfsCode,
			ServiceDescription: r.GfsName,
			Amount:             amount,
			Date:               date,
		})
	}
	return records
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	case int:
		return decimal.NewFromInt(int64(t)).String()
	case nil:
		return ""
	default:
		return ""
	}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
