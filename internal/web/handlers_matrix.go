package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/skidrates/internal/core"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is room for form boundaries and headers on top of the
// configured file size.
const multipartOverhead = 64 << 10

type openSessionRequest struct {
	Service     string `json:"service"`
	ServiceType string `json:"serviceType"`
	Currency    string `json:"currency"`
}

type selectorRequest struct {
	Service     string `json:"service"`
	ServiceType string `json:"serviceType"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

type editCellRequest struct {
	City  string `json:"city"`
	Skids int    `json:"skids"`
	Value string `json:"value"`
}

type editCellResponse struct {
	City  string `json:"city"`
	Skids int    `json:"skids"`
	Value string `json:"value"`
	Dirty bool   `json:"dirty"`
}

type importResponse struct {
	Matched int  `json:"matched"`
	Skipped int  `json:"skipped"`
	Dirty   bool `json:"dirty"`
}

// ----------------------------------------------------------------------------
// Health and catalog
// ----------------------------------------------------------------------------

// handleHealth reports database reachability, import capacity, and the
// number of open sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"imports":  s.service.Limiter().Status(),
	}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body["database"] = core.MapError(err).Message
		} else {
			body["database"] = "ok"
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.service.Cities(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": cities})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	sels, err := s.service.Selectors(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]matrix.Selector{"services": sels})
}

// handleDownloadTemplate serves the header plus one zero row per city.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	text, err := s.service.Template(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeCSV(w, "skid_rates_template.csv", text)
}

// ----------------------------------------------------------------------------
// Sessions
// ----------------------------------------------------------------------------

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	sel := matrix.Selector{Service: req.Service, ServiceType: req.ServiceType}
	id, err := s.service.OpenSession(r.Context(), sel, strings.TrimSpace(req.Currency))
	if err != nil {
		respondError(w, r, err)
		return
	}

	st, err := s.service.State(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id)
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, r, chi.URLParam(r, "id"))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSelector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req selectorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	sel := matrix.Selector{Service: req.Service, ServiceType: req.ServiceType}
	if err := s.service.SetSelector(r.Context(), id, sel); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondState(w, r, id)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req currencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.SetCurrency(r.Context(), id, strings.TrimSpace(req.Currency)); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondState(w, r, id)
}

// handleEditCell commits one cell and returns its normalized display value.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editCellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	rate, err := s.service.EditCell(withRequestMetadata(r), id, req.City, req.Skids, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, editCellResponse{
		City:  matrix.NormalizeCity(req.City),
		Skids: req.Skids,
		Value: matrix.FormatRate(rate),
		Dirty: true,
	})
}

// handleImport reads the multipart "file" field as a rate sheet for the
// session's active slice.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, s.cfg.Import.MaxFileSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	result, err := s.service.Import(withRequestMetadata(r), id, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Matched: result.Matched,
		Skipped: result.Skipped,
		Dirty:   true,
	})
}

// handleExport downloads the active slice as CSV. The dirty flag is untouched.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, text, err := s.service.Export(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeCSV(w, exportFilename(sel.Service, sel.ServiceType), text)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.ClearAll(withRequestMetadata(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondState(w, r, id)
}

// handleSave persists the session. On failure the session stays dirty and
// the storage error is reported through the usual error mapping.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Save(withRequestMetadata(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondState(w, r, id)
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func (s *Server) respondState(w http.ResponseWriter, r *http.Request, id string) {
	st, err := s.service.State(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeCSV(w http.ResponseWriter, filename, text string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text)) //nolint:errcheck
}

// exportFilename builds "<service>_<type>_rates.csv" from a selector,
// keeping only filename-safe characters.
func exportFilename(service, serviceType string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			default:
				return '_'
			}
		}, strings.TrimSpace(s))
	}
	return clean(service) + "_" + clean(serviceType) + "_rates.csv"
}
