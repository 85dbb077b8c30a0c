package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "TZ"

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

func ProcessValidationErrors(err error) map[string]string {
	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

// GetThisMonthRange returns the current calendar month, the default report
// window at page load.
func GetThisMonthRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// GetPreviousMonthRange is the comparison window for the dashboard's
// month-over-month figures.
func GetPreviousMonthRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	return start, end
}

// ParseDecimal tolerantly parses upstream amount strings. The gateway has
// been observed to send "250,000.00", "250000 TSh", "null" and plain
// garbage; everything that cannot be salvaged parses to zero with an error.
func ParseDecimal(value string) (decimal.Decimal, error) {
	t := strings.TrimSpace(value)
	if t == "" || strings.EqualFold(t, "null") {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	t = strings.ReplaceAll(t, ",", "")
	var b strings.Builder
	for _, r := range t {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	t = b.String()
	if t == "" || t == "-" || t == "." {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", value)
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// upstream date layouts, most specific first
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFlexibleTime parses the upstream gateway's timestamp variants
// (with/without fractional seconds, with/without offset or Z). Returns the
// zero time and false when nothing matches.
func ParseFlexibleTime(value string) (time.Time, bool) {
	t := strings.TrimSpace(value)
	if t == "" || strings.EqualFold(t, "null") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}


