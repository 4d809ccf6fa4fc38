package matrix

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Row holds the rates of one RateKey by skid count.
type Row map[SkidCount]decimal.Decimal

// Matrix is a detached copy of a Store's contents, as handed to persistence.
type Matrix map[RateKey]Row

// Store is the sparse rate mapping.
//
// Store does not track unsaved changes and performs no input validation
// beyond dropping out-of-range skid counts. Both are the Session's job.
type Store struct {
	rows map[RateKey]Row
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rows: make(map[RateKey]Row)}
}

// Rate returns the stored rate, or zero if nothing is stored.
func (s *Store) Rate(key RateKey, skid SkidCount) decimal.Decimal {
	row, ok := s.rows[key]
	if !ok {
		return decimal.Zero
	}
	r, ok := row[skid]
	if !ok {
		return decimal.Zero
	}
	return r
}

// SetRate stores value under key and skid, overwriting any prior value.
// Skid counts outside the fixed set are ignored.
func (s *Store) SetRate(key RateKey, skid SkidCount, value decimal.Decimal) {
	if !skid.Valid() {
		return
	}
	row, ok := s.rows[key]
	if !ok {
		row = make(Row, MaxSkids)
		s.rows[key] = row
	}
	row[skid] = value
}

// ReplaceRow discards every rate stored under key and stores rates in
// column order. rates[i] belongs to Skids[i].
func (s *Store) ReplaceRow(key RateKey, rates [MaxSkids]decimal.Decimal) {
	row := make(Row, MaxSkids)
	for i, skid := range Skids {
		row[skid] = rates[i]
	}
	s.rows[key] = row
}

// Clear empties the whole store, across every service and service type.
func (s *Store) Clear() {
	s.rows = make(map[RateKey]Row)
}

// IsEmpty reports whether no keys exist.
func (s *Store) IsEmpty() bool {
	return len(s.rows) == 0
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return len(s.rows)
}

// Keys returns every key in a stable order (service, type, city).
func (s *Store) Keys() []RateKey {
	keys := make([]RateKey, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Keys returns the keys of m in the same order as Store.Keys.
func (m Matrix) Keys() []RateKey {
	keys := make([]RateKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []RateKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.ServiceType != b.ServiceType {
			return a.ServiceType < b.ServiceType
		}
		return a.PickupCity < b.PickupCity
	})
}

// Snapshot returns a deep copy of the store's contents.
func (s *Store) Snapshot() Matrix {
	m := make(Matrix, len(s.rows))
	for k, row := range s.rows {
		cp := make(Row, len(row))
		for skid, r := range row {
			cp[skid] = r
		}
		m[k] = cp
	}
	return m
}

// Load merges m into the store. Rows in m replace existing rows with the
// same key; other keys are left alone. Out-of-range skid counts are dropped.
func (s *Store) Load(m Matrix) {
	for k, row := range m {
		cp := make(Row, MaxSkids)
		for skid, r := range row {
			if skid.Valid() {
				cp[skid] = r
			}
		}
		s.rows[k] = cp
	}
}

// Selectors returns the distinct (service, service type) pairs present in m.
func (m Matrix) Selectors() []Selector {
	seen := make(map[Selector]bool)
	var out []Selector
	for k := range m {
		sel := k.Selector()
		if !seen[sel] {
			seen[sel] = true
			out = append(out, sel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].ServiceType < out[j].ServiceType
	})
	return out
}
