package matrix

// codec.go converts one (service, service type) slice of the matrix to and
// from the canonical CSV layout shared with the carriers' spreadsheets.
//
// The format is positional and never quoted: fields are split on commas and
// rows on newlines. Decoding is strict about the header and forgiving about
// everything else: an unknown city skips the row, a bad or missing cell is 0.

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// PickupCityHeader must appear in the first header field of an import.
const PickupCityHeader = "PICKUP CITY"

// ErrInvalidHeader is returned by Decode when the header row does not carry
// the PICKUP CITY marker. Nothing is decoded in that case.
var ErrInvalidHeader = errors.New("invalid csv header: first column must contain " + PickupCityHeader)

// utf8BOM is stripped from the start of imported text.
const utf8BOM = "\uFEFF"

// RowImport is one decoded city row, ready to replace the stored row.
type RowImport struct {
	Key   RateKey
	Rates [MaxSkids]decimal.Decimal
	Line  int // 1-based line number in the source text
}

// DecodeResult lists the rows a Decode call produced.
type DecodeResult struct {
	Rows    []RowImport
	Skipped int // non-blank data lines whose city is not in the pickup list
}

// Keys returns the keys touched by the decoded rows, in file order.
// A key appears once even if the file repeats a city.
func (r DecodeResult) Keys() []RateKey {
	seen := make(map[RateKey]bool, len(r.Rows))
	keys := make([]RateKey, 0, len(r.Rows))
	for _, row := range r.Rows {
		if !seen[row.Key] {
			seen[row.Key] = true
			keys = append(keys, row.Key)
		}
	}
	return keys
}

// Header returns the canonical header line, without a newline.
func Header() string {
	var b strings.Builder
	b.WriteString(PickupCityHeader)
	for _, skid := range Skids {
		b.WriteByte(',')
		b.WriteString(skid.Header())
	}
	return b.String()
}

// Encode renders the sel slice of store as canonical CSV.
// One row is written per city, in the order given, with zero for any rate
// that is not stored. Rows are joined by "\n" with no trailing newline.
func Encode(store *Store, sel Selector, cities []string) string {
	var b strings.Builder
	b.WriteString(Header())
	for _, city := range cities {
		key := NewRateKey(city, sel)
		b.WriteByte('\n')
		b.WriteString(key.PickupCity)
		for _, skid := range Skids {
			b.WriteByte(',')
			b.WriteString(FormatRate(store.Rate(key, skid)))
		}
	}
	return b.String()
}

// Template is the export of an empty matrix: header plus an all-zero row
// for every city.
func Template(cities []string) string {
	return Encode(NewStore(), Selector{}, cities)
}

// Decode parses canonical CSV text into full rows for the sel slice.
//
// The first non-blank line is the header; if its first field does not contain
// PICKUP CITY, Decode returns ErrInvalidHeader. Each later non-blank line is
// matched to cities case-insensitively by its first field. Unknown cities are
// counted in Skipped. For a matched city all twelve rates are produced, with
// missing or unparseable cells set to zero.
func Decode(text string, sel Selector, cities []string) (DecodeResult, error) {
	known := make(map[string]bool, len(cities))
	for _, c := range cities {
		known[NormalizeCity(c)] = true
	}

	lines := strings.Split(strings.TrimPrefix(text, utf8BOM), "\n")

	headerAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return DecodeResult{}, ErrInvalidHeader
	}
	first, _, _ := strings.Cut(strings.TrimRight(lines[headerAt], "\r"), ",")
	if !strings.Contains(first, PickupCityHeader) {
		return DecodeResult{}, ErrInvalidHeader
	}

	var result DecodeResult
	for i := headerAt + 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		city := NormalizeCity(fields[0])
		if !known[city] {
			result.Skipped++
			continue
		}

		row := RowImport{Key: NewRateKey(city, sel), Line: i + 1}
		for col := range Skids {
			cell := "$0.00"
			if col+1 < len(fields) {
				cell = fields[col+1]
			}
			row.Rates[col] = ParseRate(cell)
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}
