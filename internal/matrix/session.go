package matrix

import (
	"context"

	"github.com/shopspring/decimal"
)

// Persister stores a matrix snapshot. It receives the full matrix, not just
// the active slice, along with the selector the user was editing.
type Persister interface {
	Persist(ctx context.Context, m Matrix, sel Selector) error
}

// PersistFunc adapts an ordinary function to the Persister interface.
type PersistFunc func(ctx context.Context, m Matrix, sel Selector) error

// Persist calls f(ctx, m, sel).
func (f PersistFunc) Persist(ctx context.Context, m Matrix, sel Selector) error {
	return f(ctx, m, sel)
}

// ImportResult reports what an ImportCSV call changed.
type ImportResult struct {
	Matched int       // rows applied
	Skipped int       // rows for cities not in the pickup list
	Keys    []RateKey // keys whose rows were replaced
}

// Session is one editor's working copy of the matrix under an active
// (service, service type, currency) selection.
//
// The dirty flag is set by every edit, import, and clear, and reset only by
// a successful Save. Changing the selector keeps all stored entries.
type Session struct {
	store    *Store
	editor   *Editor
	selector Selector
	currency string
	dirty    bool
}

// NewSession returns a clean session with an empty matrix.
func NewSession(sel Selector, currency string) *Session {
	store := NewStore()
	return &Session{
		store:    store,
		editor:   NewEditor(store),
		selector: sel,
		currency: currency,
	}
}

// Selector returns the active (service, service type).
func (s *Session) Selector() Selector { return s.selector }

// SetSelector switches the active slice. Entries for other slices stay in
// the matrix and the dirty flag is unchanged.
func (s *Session) SetSelector(sel Selector) { s.selector = sel }

// Currency returns the display currency code.
func (s *Session) Currency() string { return s.currency }

// SetCurrency changes the display currency code. Amounts are not converted.
func (s *Session) SetCurrency(code string) { s.currency = code }

// Dirty reports whether the matrix has changes not yet saved.
func (s *Session) Dirty() bool { return s.dirty }

// IsEmpty reports whether the matrix holds no keys at all.
func (s *Session) IsEmpty() bool { return s.store.IsEmpty() }

// Rate reads one cell of the active slice.
func (s *Session) Rate(city string, skid SkidCount) decimal.Decimal {
	return s.store.Rate(NewRateKey(city, s.selector), skid)
}

// RateFor reads one cell of any slice.
func (s *Session) RateFor(key RateKey, skid SkidCount) decimal.Decimal {
	return s.store.Rate(key, skid)
}

// EditCell applies raw to the active slice and returns the stored rate.
func (s *Session) EditCell(city string, skid SkidCount, raw string) decimal.Decimal {
	rate := s.editor.ApplyEdit(NewRateKey(city, s.selector), skid, raw)
	s.dirty = true
	return rate
}

// ExportCSV renders the active slice for cities. It does not touch dirty.
func (s *Session) ExportCSV(cities []string) string {
	return Encode(s.store, s.selector, cities)
}

// ImportCSV decodes text into the active slice.
//
// On ErrInvalidHeader nothing changes. Otherwise every matched row replaces
// the stored row for that city and the session becomes dirty, even when no
// row matched.
func (s *Session) ImportCSV(text string, cities []string) (ImportResult, error) {
	decoded, err := Decode(text, s.selector, cities)
	if err != nil {
		return ImportResult{}, err
	}

	for _, row := range decoded.Rows {
		s.store.ReplaceRow(row.Key, row.Rates)
	}
	s.dirty = true

	return ImportResult{
		Matched: len(decoded.Rows),
		Skipped: decoded.Skipped,
		Keys:    decoded.Keys(),
	}, nil
}

// ClearAll empties the entire matrix, every slice included.
func (s *Session) ClearAll() {
	s.store.Clear()
	s.dirty = true
}

// Save hands a snapshot of the full matrix and the active selector to p.
// On success the session is clean; on failure it stays dirty and p's error
// is returned as is.
func (s *Session) Save(ctx context.Context, p Persister) error {
	if err := p.Persist(ctx, s.store.Snapshot(), s.selector); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Snapshot returns a deep copy of the full matrix.
func (s *Session) Snapshot() Matrix {
	return s.store.Snapshot()
}

// Load merges previously persisted rows into the matrix without marking the
// session dirty.
func (s *Session) Load(m Matrix) {
	s.store.Load(m)
}
