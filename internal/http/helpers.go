package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"gastos/internal/analytics"
	"gastos/internal/core"
	"gastos/internal/log"
)

const ownerHeader = "X-Owner-ID"

// maxBodyBytes bounds request bodies; every payload here is a small JSON
// document.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error            string `json:"error"`
	ExistingBudgetID string `json:"existing_budget_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as a plain 500 without leaking detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var overlap *core.OverlapError
	if errors.As(err, &overlap) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:            err.Error(),
			ExistingBudgetID: overlap.ExistingID.String(),
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrOwnerDisabled):
		writeErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrBudgetOverlap),
		errors.Is(err, core.ErrNameTaken),
		errors.Is(err, core.ErrCategoryInUse):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidDateRange),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidAlertPercentage),
		errors.Is(err, core.ErrInvalidRenewalDay),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyIcon),
		errors.Is(err, core.ErrEmptyColor),
		errors.Is(err, analytics.ErrWindowTooLarge),
		errors.Is(err, analytics.ErrInvalidTrendDays),
		errors.Is(err, analytics.ErrInvalidMonth):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// ownerID resolves the caller identity from the X-Owner-ID header. A
// missing or malformed header ends the request with 401.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(ownerHeader)
	if raw == "" {
		writeErrorMessage(w, http.StatusUnauthorized, "missing "+ownerHeader+" header")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeErrorMessage(w, http.StatusUnauthorized, "invalid "+ownerHeader+" header")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// queryDate parses a required YYYY-MM-DD query parameter.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (core.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing "+name+" parameter")
		return core.Date{}, false
	}
	d, err := parseDate(raw)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return core.Date{}, false
	}
	return d, true
}

func parseDate(raw string) (core.Date, error) {
	var d core.Date
	if err := d.UnmarshalJSON([]byte(`"` + raw + `"`)); err != nil {
		return core.Date{}, err
	}
	if d.IsZero() {
		return core.Date{}, core.ErrInvalidDate
	}
	return d, nil
}

// queryCategoryID parses an optional category_id query parameter.
func queryCategoryID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("category_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid category_id parameter")
		return nil, false
	}
	return &id, true
}

// queryInt parses an optional integer query parameter, falling back to def.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}
