package core

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"

	db "github.com/JonMunkholm/skidrates/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionCellEdit     AuditAction = "cell_edit"
	ActionMatrixImport AuditAction = "matrix_import"
	ActionMatrixClear  AuditAction = "matrix_clear"
	ActionMatrixSave   AuditAction = "matrix_save"
	ActionMatrixReset  AuditAction = "matrix_reset"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

func auditSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionCellEdit:
		return SeverityLow
	case ActionMatrixImport, ActionMatrixSave:
		return SeverityHigh
	case ActionMatrixClear, ActionMatrixReset:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// AuditLogParams describes one state-changing action on a session.
type AuditLogParams struct {
	Action       AuditAction
	SessionID    string
	Service      string
	ServiceType  string
	PickupCity   string
	SkidCount    int
	OldValue     string
	NewValue     string
	RowsAffected int
	IPAddress    string
	UserAgent    string
	Reason       string
}

// AuditEntry is a recorded audit log row.
type AuditEntry struct {
	ID        string        `json:"id"`
	Action    AuditAction   `json:"action"`
	Severity  AuditSeverity `json:"severity"`
	SessionID string        `json:"sessionId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// AuditLogger records audit entries.
type AuditLogger interface {
	Log(ctx context.Context, params AuditLogParams) error
}

// AuditService writes audit entries to PostgreSQL.
type AuditService struct {
	pool *pgxpool.Pool
}

func NewAuditService(pool *pgxpool.Pool) *AuditService {
	return &AuditService{pool: pool}
}

// Log inserts one entry. An IP address with a port is accepted; one that
// does not parse is stored as NULL.
func (a *AuditService) Log(ctx context.Context, params AuditLogParams) error {
	_, err := a.Insert(ctx, params)
	return err
}

// Insert is Log returning the stored row.
func (a *AuditService) Insert(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	insertParams := db.InsertAuditLogParams{
		Action:       string(params.Action),
		Severity:     string(auditSeverity(params.Action)),
		SessionID:    ToPgUUID(params.SessionID),
		Service:      ToPgText(params.Service),
		ServiceType:  ToPgText(params.ServiceType),
		PickupCity:   ToPgText(params.PickupCity),
		SkidCount:    ToPgInt2(params.SkidCount),
		OldValue:     ToPgText(params.OldValue),
		NewValue:     ToPgText(params.NewValue),
		RowsAffected: ToPgInt4(params.RowsAffected),
		IpAddress:    parseAuditIP(params.IPAddress),
		UserAgent:    ToPgText(params.UserAgent),
		Reason:       ToPgText(params.Reason),
	}

	row, err := db.New(a.pool).InsertAuditLog(ctx, insertParams)
	if err != nil {
		return nil, err
	}
	return &AuditEntry{
		ID:        PgUUIDToString(row.ID),
		Action:    AuditAction(row.Action),
		Severity:  AuditSeverity(row.Severity),
		SessionID: PgUUIDToString(row.SessionID),
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

func parseAuditIP(raw string) *netip.Addr {
	if raw == "" {
		return nil
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}

// SlogAuditLogger writes audit entries to the structured log only. The CLI
// uses it when no audit table is wanted.
type SlogAuditLogger struct {
	Logger *slog.Logger
}

func (l SlogAuditLogger) Log(_ context.Context, p AuditLogParams) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit",
		"action", p.Action,
		"severity", auditSeverity(p.Action),
		"session_id", p.SessionID,
		"service", p.Service,
		"service_type", p.ServiceType,
		"pickup_city", p.PickupCity,
		"skids", strconv.Itoa(p.SkidCount),
		"rows_affected", p.RowsAffected,
	)
	return nil
}
