package matrix

import "github.com/shopspring/decimal"

// Editor applies committed cell edits to a Store.
// Edits never fail: input that is not a non-negative number becomes 0.00.
type Editor struct {
	store *Store
}

// NewEditor returns an Editor writing to store.
func NewEditor(store *Store) *Editor {
	return &Editor{store: store}
}

// ApplyEdit normalizes raw with ParseRate, stores it, and returns the stored
// value so the caller can echo it back without reading the store again.
func (e *Editor) ApplyEdit(key RateKey, skid SkidCount, raw string) decimal.Decimal {
	rate := ParseRate(raw)
	e.store.SetRate(key, skid, rate)
	return rate
}
