package core

import (
	"context"
	"fmt"

	db "github.com/JonMunkholm/skidrates/internal/database"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateRepository loads and stores matrix slices.
type RateRepository interface {
	// LoadSlice returns the stored rows of one (service, service type).
	LoadSlice(ctx context.Context, sel matrix.Selector) (matrix.Matrix, error)
	// Persist replaces every listed slice with the rows of m in one
	// transaction. Slices not listed are left alone.
	Persist(ctx context.Context, m matrix.Matrix, slices []matrix.Selector, currency string) error
}

// CitySource supplies the ordered pickup city list.
type CitySource interface {
	PickupCities(ctx context.Context) ([]string, error)
}

// ServiceCatalog supplies the (service, service type) pairs users may edit.
type ServiceCatalog interface {
	Selectors(ctx context.Context) ([]matrix.Selector, error)
}

// PostgresStore implements RateRepository, CitySource, and ServiceCatalog.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) LoadSlice(ctx context.Context, sel matrix.Selector) (matrix.Matrix, error) {
	rows, err := db.New(p.pool).ListSkidRatesBySlice(ctx, db.ListSkidRatesBySliceParams{
		Service:     sel.Service,
		ServiceType: sel.ServiceType,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", sel, err)
	}

	return sliceFromRows(sel, rows), nil
}

// sliceFromRows builds the sel slice from stored rows. Cities are normalized
// so rows written outside the app load under the keys the codec looks up.
// Skid counts outside 1..12 are dropped.
func sliceFromRows(sel matrix.Selector, rows []db.SkidRate) matrix.Matrix {
	m := make(matrix.Matrix)
	for _, r := range rows {
		skid := matrix.SkidCount(r.SkidCount)
		if !skid.Valid() {
			continue
		}
		key := matrix.NewRateKey(r.PickupCity, sel)
		row, ok := m[key]
		if !ok {
			row = make(matrix.Row)
			m[key] = row
		}
		row[skid] = FromPgNumeric(r.Rate)
	}
	return m
}

func (p *PostgresStore) Persist(ctx context.Context, m matrix.Matrix, slices []matrix.Selector, currency string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := db.New(p.pool).WithTx(tx)
	for _, sel := range slices {
		if _, err := q.DeleteSkidRatesBySlice(ctx, db.DeleteSkidRatesBySliceParams{
			Service:     sel.Service,
			ServiceType: sel.ServiceType,
		}); err != nil {
			return fmt.Errorf("delete %s: %w", sel, err)
		}
	}

	params := copyParams(m, slices, currency)
	if len(params) > 0 {
		if _, err := q.CopySkidRates(ctx, params); err != nil {
			return fmt.Errorf("copy rates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// copyParams flattens the listed slices of m into COPY rows. Zero rates are
// skipped since an absent row already reads as zero.
func copyParams(m matrix.Matrix, slices []matrix.Selector, currency string) []db.CopySkidRatesParams {
	wanted := make(map[matrix.Selector]bool, len(slices))
	for _, sel := range slices {
		wanted[sel] = true
	}

	var out []db.CopySkidRatesParams
	for _, key := range m.Keys() {
		if !wanted[key.Selector()] {
			continue
		}
		row := m[key]
		for _, skid := range matrix.Skids {
			rate, ok := row[skid]
			if !ok || rate.IsZero() {
				continue
			}
			out = append(out, db.CopySkidRatesParams{
				PickupCity:  key.PickupCity,
				Service:     key.Service,
				ServiceType: key.ServiceType,
				SkidCount:   int16(skid),
				Rate:        ToPgNumeric(rate),
				Currency:    currency,
			})
		}
	}
	return out
}

func (p *PostgresStore) PickupCities(ctx context.Context) ([]string, error) {
	rows, err := db.New(p.pool).ListPickupCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pickup cities: %w", err)
	}
	cities := make([]string, 0, len(rows))
	for _, r := range rows {
		cities = append(cities, r.Name)
	}
	return cities, nil
}

func (p *PostgresStore) Selectors(ctx context.Context) ([]matrix.Selector, error) {
	rows, err := db.New(p.pool).ListRateServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rate services: %w", err)
	}
	sels := make([]matrix.Selector, 0, len(rows))
	for _, r := range rows {
		sels = append(sels, matrix.Selector{Service: r.Service, ServiceType: r.ServiceType})
	}
	return sels, nil
}

// Ping checks the database connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
