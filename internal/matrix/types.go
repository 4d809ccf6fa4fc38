package matrix

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SkidCount is the shipment-size dimension of the matrix.
// Only the values in Skids are ever stored.
type SkidCount int

// MaxSkids is the largest skid count with its own column.
const MaxSkids = 12

// Skids lists every valid skid count in column order.
var Skids = [MaxSkids]SkidCount{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// Valid reports whether s is one of the fixed skid counts.
func (s SkidCount) Valid() bool {
	return s >= 1 && s <= MaxSkids
}

// Header returns the CSV column header for s: "1 SKID", "2 SKIDS", ...
func (s SkidCount) Header() string {
	if s == 1 {
		return "1 SKID"
	}
	return strconv.Itoa(int(s)) + " SKIDS"
}

// ParseSkidCount converts a string such as "3" into a SkidCount.
// Returns false if the value is not an integer in the fixed set.
func ParseSkidCount(s string) (SkidCount, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	sc := SkidCount(n)
	return sc, sc.Valid()
}

// Selector identifies the (service, service type) slice a session edits.
// Both values are opaque identifiers such as "LTL" / "Standard".
type Selector struct {
	Service     string `json:"service"`
	ServiceType string `json:"serviceType"`
}

// String returns "service/serviceType" for logs.
func (s Selector) String() string {
	return s.Service + "/" + s.ServiceType
}

// RateKey addresses one row of the matrix.
// Build keys with NewRateKey so the city is normalized.
type RateKey struct {
	PickupCity  string
	Service     string
	ServiceType string
}

// NewRateKey returns the key for city under sel.
// The city is trimmed and upper-cased; service values are kept as given.
func NewRateKey(city string, sel Selector) RateKey {
	return RateKey{
		PickupCity:  NormalizeCity(city),
		Service:     sel.Service,
		ServiceType: sel.ServiceType,
	}
}

// Selector returns the (service, service type) part of the key.
func (k RateKey) Selector() Selector {
	return Selector{Service: k.Service, ServiceType: k.ServiceType}
}

// NormalizeCity is the canonical form of a pickup city: trimmed, upper case.
func NormalizeCity(city string) string {
	return strings.ToUpper(strings.TrimSpace(city))
}

// MaxRate is the largest amount a stored rate column (NUMERIC(12,2)) holds.
var MaxRate = decimal.RequireFromString("9999999999.99")

// maxRateIntDigits is the number of integer digits in MaxRate.
const maxRateIntDigits = 10

// ParseRate converts user or file input into a rate.
//
// Currency symbols ($) and thousands separators (,) are removed before
// parsing. What remains must be plain digits with at most one decimal point;
// exponents, signs, and anything else are unparseable. Empty, unparseable,
// and negative input, and amounts above MaxRate, all yield zero. The result
// is rounded to two decimal places.
func ParseRate(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	whole, frac, _ := strings.Cut(s, ".")
	if whole+frac == "" || !isDigits(whole) || !isDigits(frac) {
		return decimal.Zero
	}
	if len(strings.TrimLeft(whole, "0")) > maxRateIntDigits {
		return decimal.Zero
	}
	// Half-up rounding to cents depends only on the third decimal place.
	if len(frac) > 3 {
		frac = frac[:3]
	}
	if whole == "" {
		whole = "0"
	}
	if frac != "" {
		whole += "." + frac
	}

	d, err := decimal.NewFromString(whole)
	if err != nil {
		return decimal.Zero
	}
	d = d.Round(2)
	if d.GreaterThan(MaxRate) {
		return decimal.Zero
	}
	return d
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatRate renders r the way the CSV format expects: "$45.00".
func FormatRate(r decimal.Decimal) string {
	return "$" + r.StringFixed(2)
}
