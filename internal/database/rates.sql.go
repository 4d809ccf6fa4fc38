package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listSkidRatesBySlice = `
SELECT pickup_city, service, service_type, skid_count, rate, currency, updated_at
FROM skid_rates
WHERE service = $1 AND service_type = $2
ORDER BY pickup_city, skid_count
`

type ListSkidRatesBySliceParams struct {
	Service     string
	ServiceType string
}

func (q *Queries) ListSkidRatesBySlice(ctx context.Context, arg ListSkidRatesBySliceParams) ([]SkidRate, error) {
	rows, err := q.db.Query(ctx, listSkidRatesBySlice, arg.Service, arg.ServiceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SkidRate
	for rows.Next() {
		var i SkidRate
		if err := rows.Scan(
			&i.PickupCity,
			&i.Service,
			&i.ServiceType,
			&i.SkidCount,
			&i.Rate,
			&i.Currency,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSkidRatesBySlice = `
DELETE FROM skid_rates
WHERE service = $1 AND service_type = $2
`

type DeleteSkidRatesBySliceParams struct {
	Service     string
	ServiceType string
}

func (q *Queries) DeleteSkidRatesBySlice(ctx context.Context, arg DeleteSkidRatesBySliceParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSkidRatesBySlice, arg.Service, arg.ServiceType)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteAllSkidRates = `
DELETE FROM skid_rates
`

func (q *Queries) DeleteAllSkidRates(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAllSkidRates)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type CopySkidRatesParams struct {
	PickupCity  string
	Service     string
	ServiceType string
	SkidCount   int16
	Rate        pgtype.Numeric
	Currency    string
}

var skidRateColumns = []string{"pickup_city", "service", "service_type", "skid_count", "rate", "currency"}

// CopySkidRates bulk-loads rows with COPY. Callers delete the affected
// slices first; COPY does not upsert.
func (q *Queries) CopySkidRates(ctx context.Context, arg []CopySkidRatesParams) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"skid_rates"}, skidRateColumns, pgx.CopyFromSlice(len(arg), func(i int) ([]interface{}, error) {
		r := arg[i]
		return []interface{}{r.PickupCity, r.Service, r.ServiceType, r.SkidCount, r.Rate, r.Currency}, nil
	}))
}

const countSkidRates = `SELECT COUNT(*) FROM skid_rates`

func (q *Queries) CountSkidRates(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countSkidRates).Scan(&n)
	return n, err
}
