package database

import "context"

const listPickupCities = `
SELECT name, position
FROM pickup_cities
ORDER BY position, name
`

func (q *Queries) ListPickupCities(ctx context.Context) ([]PickupCity, error) {
	rows, err := q.db.Query(ctx, listPickupCities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PickupCity
	for rows.Next() {
		var i PickupCity
		if err := rows.Scan(&i.Name, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRateServices = `
SELECT service, service_type, position
FROM rate_services
ORDER BY position, service, service_type
`

func (q *Queries) ListRateServices(ctx context.Context) ([]RateService, error) {
	rows, err := q.db.Query(ctx, listRateServices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RateService
	for rows.Next() {
		var i RateService
		if err := rows.Scan(&i.Service, &i.ServiceType, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
