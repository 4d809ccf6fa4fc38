// Package admin provides destructive maintenance operations on stored rates.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/skidrates/internal/core"
	db "github.com/JonMunkholm/skidrates/internal/database"
	"github.com/JonMunkholm/skidrates/internal/logging"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// Resetter deletes stored rates outside of any editing session.
type Resetter struct {
	pool  *pgxpool.Pool
	audit core.AuditLogger
}

func NewResetter(pool *pgxpool.Pool, audit core.AuditLogger) *Resetter {
	if audit == nil {
		audit = core.SlogAuditLogger{}
	}
	return &Resetter{pool: pool, audit: audit}
}

type resetFn func(ctx context.Context, q *db.Queries) (int64, error)

// ResetSlices deletes the stored rates of every sel in one transaction and
// returns the number of rows removed.
func (r *Resetter) ResetSlices(ctx context.Context, sels ...matrix.Selector) (int64, error) {
	resets := make([]resetFn, 0, len(sels))
	for _, sel := range sels {
		resets = append(resets, func(ctx context.Context, q *db.Queries) (int64, error) {
			return q.DeleteSkidRatesBySlice(ctx, db.DeleteSkidRatesBySliceParams{
				Service:     sel.Service,
				ServiceType: sel.ServiceType,
			})
		})
	}

	counts, err := r.run(ctx, resets)
	if err != nil {
		return 0, err
	}
	var total int64
	for i, sel := range sels {
		r.log(ctx, sel, counts[i])
		total += counts[i]
	}
	return total, nil
}

// ResetAll deletes every stored rate.
func (r *Resetter) ResetAll(ctx context.Context) (int64, error) {
	counts, err := r.run(ctx, []resetFn{
		func(ctx context.Context, q *db.Queries) (int64, error) { return q.DeleteAllSkidRates(ctx) },
	})
	if err != nil {
		return 0, err
	}
	r.log(ctx, matrix.Selector{}, counts[0])
	return counts[0], nil
}

func (r *Resetter) run(ctx context.Context, resets []resetFn) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	var counts []int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		counts, err = runResets(ctx, db.New(tx), resets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reset rates: %w", err)
	}
	return counts, nil
}

// runResets applies each reset in order and stops at the first error.
// It returns the rows removed by each reset.
func runResets(ctx context.Context, q *db.Queries, resets []resetFn) ([]int64, error) {
	counts := make([]int64, 0, len(resets))
	for _, reset := range resets {
		n, err := reset(ctx, q)
		if err != nil {
			return counts, err
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func (r *Resetter) log(ctx context.Context, sel matrix.Selector, rows int64) {
	err := r.audit.Log(ctx, core.AuditLogParams{
		Action:       core.ActionMatrixReset,
		Service:      sel.Service,
		ServiceType:  sel.ServiceType,
		RowsAffected: int(rows),
		Reason:       "admin reset",
	})
	if err != nil {
		logging.FromContext(ctx).Warn("audit log failed", "action", core.ActionMatrixReset, "error", err)
	}
}
