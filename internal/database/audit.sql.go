package database

import (
	"context"
	"net/netip"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAuditLog = `
INSERT INTO audit_log (
    action, severity, session_id, service, service_type, pickup_city, skid_count,
    old_value, new_value, rows_affected, ip_address, user_agent, reason
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
RETURNING id, action, severity, session_id, service, service_type, pickup_city, skid_count,
    old_value, new_value, rows_affected, ip_address, user_agent, reason, created_at
`

type InsertAuditLogParams struct {
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
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	row := q.db.QueryRow(ctx, insertAuditLog,
		arg.Action,
		arg.Severity,
		arg.SessionID,
		arg.Service,
		arg.ServiceType,
		arg.PickupCity,
		arg.SkidCount,
		arg.OldValue,
		arg.NewValue,
		arg.RowsAffected,
		arg.IpAddress,
		arg.UserAgent,
		arg.Reason,
	)
	var i AuditLog
	err := row.Scan(
		&i.ID,
		&i.Action,
		&i.Severity,
		&i.SessionID,
		&i.Service,
		&i.ServiceType,
		&i.PickupCity,
		&i.SkidCount,
		&i.OldValue,
		&i.NewValue,
		&i.RowsAffected,
		&i.IpAddress,
		&i.UserAgent,
		&i.Reason,
		&i.CreatedAt,
	)
	return i, err
}
