package database

import (
	"net/netip"

	"github.com/jackc/pgx/v5/pgtype"
)

type SkidRate struct {
	PickupCity  string
	Service     string
	ServiceType string
	SkidCount   int16
	Rate        pgtype.Numeric
	Currency    string
	UpdatedAt   pgtype.Timestamptz
}

type PickupCity struct {
	Name     string
	Position int32
}

type RateService struct {
	Service     string
	ServiceType string
	Position    int32
}

type AuditLog struct {
	ID           pgtype.UUID
	Action       string
	Severity     string
	SessionID    pgtype.UUID
	Service      pgtype.Text
	ServiceType  pgtype.Text
	PickupCity   pgtype.Text
	SkidCount    pgtype.Int2
	OldValue     pgtype.Text
	NewValue     pgtype.Text
	RowsAffected pgtype.Int4
	IpAddress    *netip.Addr
	UserAgent    pgtype.Text
	Reason       pgtype.Text
	CreatedAt    pgtype.Timestamptz
}
