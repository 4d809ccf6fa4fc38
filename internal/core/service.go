package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/skidrates/internal/config"
	"github.com/JonMunkholm/skidrates/internal/logging"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownSelector  = errors.New("unknown service selector")
	ErrUnknownCity      = errors.New("unknown pickup city")
	ErrInvalidSkidCount = errors.New("invalid skid count")
)

// Options tunes a Service. Zero values fall back to the config defaults.
type Options struct {
	DefaultCurrency string
	SaveTimeout     time.Duration
	IdleTimeout     time.Duration
	MaxImportSize   int64
}

// Deps are the collaborators a Service drives. Audit may be nil.
type Deps struct {
	Rates   RateRepository
	Cities  CitySource
	Catalog ServiceCatalog
	Audit   AuditLogger
	Limiter *ImportLimiter
}

// Service owns the open editing sessions and connects each one to the
// pickup city list, the service catalog, and rate storage.
type Service struct {
	rates   RateRepository
	cities  CitySource
	catalog ServiceCatalog
	audit   AuditLogger
	limiter *ImportLimiter
	opts    Options
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*openSession
}

// openSession is one handle. mu serializes every call against it.
type openSession struct {
	id       string
	mu       sync.Mutex
	session  *matrix.Session
	loaded   map[matrix.Selector]bool
	lastUsed time.Time
}

func NewService(deps Deps, opts Options) *Service {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "CAD"
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 15 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 8 * time.Hour
	}
	if deps.Limiter == nil {
		deps.Limiter = NewImportLimiter(0, 0)
	}
	if deps.Audit == nil {
		deps.Audit = SlogAuditLogger{}
	}
	return &Service{
		rates:    deps.Rates,
		cities:   deps.Cities,
		catalog:  deps.Catalog,
		audit:    deps.Audit,
		limiter:  deps.Limiter,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*openSession),
	}
}

// NewPostgresService wires a Service to PostgreSQL storage and audit.
func NewPostgresService(pool *pgxpool.Pool, cfg *config.Config) *Service {
	store := NewPostgresStore(pool)
	return NewService(Deps{
		Rates:   store,
		Cities:  store,
		Catalog: store,
		Audit:   NewAuditService(pool),
		Limiter: NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	}, Options{
		DefaultCurrency: cfg.Matrix.DefaultCurrency,
		SaveTimeout:     cfg.Matrix.SaveTimeout,
		IdleTimeout:     cfg.Matrix.SessionIdleTimeout,
		MaxImportSize:   cfg.Import.MaxFileSize,
	})
}

// Limiter exposes the import limiter for health output and shutdown.
func (s *Service) Limiter() *ImportLimiter { return s.limiter }

// ----------------------------------------------------------------------------
// Catalog
// ----------------------------------------------------------------------------

// Cities returns the pickup city list in display order.
func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.cities.PickupCities(ctx)
}

// Selectors returns the editable (service, service type) pairs.
func (s *Service) Selectors(ctx context.Context) ([]matrix.Selector, error) {
	return s.catalog.Selectors(ctx)
}

func (s *Service) checkSelector(ctx context.Context, sel matrix.Selector) error {
	sels, err := s.catalog.Selectors(ctx)
	if err != nil {
		return err
	}
	for _, known := range sels {
		if known == sel {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSelector, sel)
}

// Template returns the empty canonical CSV for the current city list.
func (s *Service) Template(ctx context.Context) (string, error) {
	cities, err := s.cities.PickupCities(ctx)
	if err != nil {
		return "", err
	}
	return matrix.Template(cities), nil
}

// ----------------------------------------------------------------------------
// Session lifecycle
// ----------------------------------------------------------------------------

// OpenSession starts a clean session on sel with its stored rates loaded.
// An empty currency uses the configured default.
func (s *Service) OpenSession(ctx context.Context, sel matrix.Selector, currency string) (string, error) {
	if err := s.checkSelector(ctx, sel); err != nil {
		return "", err
	}
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	stored, err := s.rates.LoadSlice(ctx, sel)
	if err != nil {
		return "", err
	}

	sess := matrix.NewSession(sel, currency)
	sess.Load(stored)

	h := &openSession{
		id:       uuid.NewString(),
		session:  sess,
		loaded:   map[matrix.Selector]bool{sel: true},
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.sessions[h.id] = h
	s.mu.Unlock()

	logging.ForSession(ctx, h.id, sel.Service, sel.ServiceType).Info("session opened",
		"currency", currency,
		"rows", len(stored),
	)
	return h.id, nil
}

// CloseSession discards a session and any unsaved changes.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	h, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	h.mu.Lock()
	dirty := h.session.Dirty()
	h.mu.Unlock()

	logging.WithFields(ctx, "session_id", id).Info("session closed", "discarded_changes", dirty)
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// with runs fn while holding the session's lock.
func (s *Service) with(id string, fn func(h *openSession) error) error {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastUsed = s.now()
	return fn(h)
}

// ----------------------------------------------------------------------------
// Session commands
// ----------------------------------------------------------------------------

// EditCell writes raw into the active slice and returns the stored rate.
func (s *Service) EditCell(ctx context.Context, id, city string, skid int, raw string) (decimal.Decimal, error) {
	sc := matrix.SkidCount(skid)
	if !sc.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidSkidCount, skid)
	}
	cities, err := s.cities.PickupCities(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !containsCity(cities, city) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}

	var (
		stored decimal.Decimal
		params AuditLogParams
	)
	err = s.with(id, func(h *openSession) error {
		sel := h.session.Selector()
		old := h.session.Rate(city, sc)
		stored = h.session.EditCell(city, sc, raw)

		params = AuditLogParams{
			Action:      ActionCellEdit,
			SessionID:   id,
			Service:     sel.Service,
			ServiceType: sel.ServiceType,
			PickupCity:  matrix.NormalizeCity(city),
			SkidCount:   skid,
			OldValue:    matrix.FormatRate(old),
			NewValue:    matrix.FormatRate(stored),
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logAudit(ctx, params)
	return stored, nil
}

// Export renders the active slice as canonical CSV text and returns the
// selector it was rendered for.
func (s *Service) Export(ctx context.Context, id string) (matrix.Selector, string, error) {
	cities, err := s.cities.PickupCities(ctx)
	if err != nil {
		return matrix.Selector{}, "", err
	}

	var (
		sel  matrix.Selector
		text string
	)
	err = s.with(id, func(h *openSession) error {
		sel = h.session.Selector()
		text = h.session.ExportCSV(cities)
		return nil
	})
	return sel, text, err
}

// Import reads a rate sheet from r into the active slice. Matched city rows
// replace their stored rows; everything else is kept.
func (s *Service) Import(ctx context.Context, id string, r io.Reader) (matrix.ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return matrix.ImportResult{}, err
	}
	defer s.limiter.Release()

	text, err := ReadImportText(r, s.opts.MaxImportSize)
	if err != nil {
		return matrix.ImportResult{}, err
	}
	cities, err := s.cities.PickupCities(ctx)
	if err != nil {
		return matrix.ImportResult{}, err
	}

	var (
		result matrix.ImportResult
		sel    matrix.Selector
	)
	err = s.with(id, func(h *openSession) error {
		sel = h.session.Selector()
		var importErr error
		result, importErr = h.session.ImportCSV(text, cities)
		return importErr
	})
	if err != nil {
		return matrix.ImportResult{}, err
	}

	logging.ForSession(ctx, id, sel.Service, sel.ServiceType).Info("rates imported",
		"matched", result.Matched,
		"skipped", result.Skipped,
	)
	s.logAudit(ctx, AuditLogParams{
		Action:       ActionMatrixImport,
		SessionID:    id,
		Service:      sel.Service,
		ServiceType:  sel.ServiceType,
		RowsAffected: result.Matched,
	})
	return result, nil
}

// ClearAll empties the session's matrix across every slice.
func (s *Service) ClearAll(ctx context.Context, id string) error {
	var sel matrix.Selector
	err := s.with(id, func(h *openSession) error {
		sel = h.session.Selector()
		h.session.ClearAll()
		return nil
	})
	if err != nil {
		return err
	}

	logging.ForSession(ctx, id, sel.Service, sel.ServiceType).Warn("matrix cleared")
	s.logAudit(ctx, AuditLogParams{
		Action:      ActionMatrixClear,
		SessionID:   id,
		Service:     sel.Service,
		ServiceType: sel.ServiceType,
	})
	return nil
}

// Save persists every slice the session has loaded or edited. The session
// stays dirty and the storage error is returned as is when persisting fails.
func (s *Service) Save(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SaveTimeout)
	defer cancel()

	var (
		sel  matrix.Selector
		rows int
	)
	err := s.with(id, func(h *openSession) error {
		sel = h.session.Selector()
		currency := h.session.Currency()
		return h.session.Save(ctx, matrix.PersistFunc(func(ctx context.Context, m matrix.Matrix, active matrix.Selector) error {
			rows = len(m)
			return s.rates.Persist(ctx, m, h.slices(m, active), currency)
		}))
	})

	log := logging.ForSession(ctx, id, sel.Service, sel.ServiceType)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			log.Error("save failed", "error", err)
		}
		return err
	}

	log.Info("matrix saved", "rows", rows)
	s.logAudit(ctx, AuditLogParams{
		Action:       ActionMatrixSave,
		SessionID:    id,
		Service:      sel.Service,
		ServiceType:  sel.ServiceType,
		RowsAffected: rows,
	})
	return nil
}

// slices lists what a save replaces: every slice loaded into the session,
// every slice present in m, and the active one. A cleared slice is still
// listed so its stored rows are removed.
func (h *openSession) slices(m matrix.Matrix, active matrix.Selector) []matrix.Selector {
	set := map[matrix.Selector]bool{active: true}
	for sel := range h.loaded {
		set[sel] = true
	}
	for _, sel := range m.Selectors() {
		set[sel] = true
	}

	out := make([]matrix.Selector, 0, len(set))
	for sel := range set {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// SetSelector switches the active slice, loading its stored rates the first
// time it is selected. Entries for other slices are kept.
func (s *Service) SetSelector(ctx context.Context, id string, sel matrix.Selector) error {
	if err := s.checkSelector(ctx, sel); err != nil {
		return err
	}
	return s.with(id, func(h *openSession) error {
		if !h.loaded[sel] {
			stored, err := s.rates.LoadSlice(ctx, sel)
			if err != nil {
				return err
			}
			h.session.Load(stored)
			h.loaded[sel] = true
		}
		h.session.SetSelector(sel)
		return nil
	})
}

// SetCurrency changes the currency tag of a session. Amounts are unchanged.
func (s *Service) SetCurrency(ctx context.Context, id, currency string) error {
	return s.with(id, func(h *openSession) error {
		h.session.SetCurrency(currency)
		return nil
	})
}

// ----------------------------------------------------------------------------
// Views
// ----------------------------------------------------------------------------

// GridRow is one pickup city with its twelve formatted rates.
type GridRow struct {
	City  string   `json:"city"`
	Rates []string `json:"rates"`
}

// Grid is the active slice laid out city by skid count.
type Grid struct {
	Headers []string  `json:"headers"`
	Rows    []GridRow `json:"rows"`
}

// SessionState is what a front end needs to render a session.
type SessionState struct {
	ID          string `json:"id"`
	Service     string `json:"service"`
	ServiceType string `json:"serviceType"`
	Currency    string `json:"currency"`
	Dirty       bool   `json:"dirty"`
	Grid        Grid   `json:"grid"`
}

// State returns the session's selector, currency, dirty flag, and grid.
func (s *Service) State(ctx context.Context, id string) (SessionState, error) {
	cities, err := s.cities.PickupCities(ctx)
	if err != nil {
		return SessionState{}, err
	}

	var st SessionState
	err = s.with(id, func(h *openSession) error {
		sel := h.session.Selector()
		st = SessionState{
			ID:          id,
			Service:     sel.Service,
			ServiceType: sel.ServiceType,
			Currency:    h.session.Currency(),
			Dirty:       h.session.Dirty(),
			Grid:        buildGrid(h.session, cities),
		}
		return nil
	})
	return st, err
}

// Grid returns only the city by skid view of the active slice.
func (s *Service) Grid(ctx context.Context, id string) (Grid, error) {
	st, err := s.State(ctx, id)
	return st.Grid, err
}

func buildGrid(sess *matrix.Session, cities []string) Grid {
	g := Grid{
		Headers: make([]string, 0, matrix.MaxSkids+1),
		Rows:    make([]GridRow, 0, len(cities)),
	}
	g.Headers = append(g.Headers, matrix.PickupCityHeader)
	for _, skid := range matrix.Skids {
		g.Headers = append(g.Headers, skid.Header())
	}

	for _, city := range cities {
		row := GridRow{City: matrix.NormalizeCity(city), Rates: make([]string, 0, matrix.MaxSkids)}
		for _, skid := range matrix.Skids {
			row.Rates = append(row.Rates, matrix.FormatRate(sess.Rate(city, skid)))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func containsCity(cities []string, city string) bool {
	want := matrix.NormalizeCity(city)
	for _, c := range cities {
		if matrix.NormalizeCity(c) == want {
			return true
		}
	}
	return false
}

// logAudit records p with the caller's client info. Failures are logged and
// never fail the action.
func (s *Service) logAudit(ctx context.Context, p AuditLogParams) {
	p.IPAddress, p.UserAgent = ClientFromContext(ctx)
	if err := s.audit.Log(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("audit log failed",
			"action", p.Action,
			"session_id", p.SessionID,
			"error", err,
		)
	}
}
