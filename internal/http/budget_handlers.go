package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/services"
)

type createBudgetRequest struct {
	CategoryID      *uuid.UUID      `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	Period          core.Period     `json:"period"`
	StartDate       core.Date       `json:"start_date"`
	EndDate         core.Date       `json:"end_date"`
	AlertPercentage int             `json:"alert_percentage"`
}

type updateBudgetRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Period          *core.Period     `json:"period"`
	StartDate       *core.Date       `json:"start_date"`
	EndDate         *core.Date       `json:"end_date"`
	AlertPercentage *int             `json:"alert_percentage"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	var req createBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.budgets.Create(r.Context(), ownerID, services.CreateBudgetInput{
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Period:          req.Period,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		AlertPercentage: req.AlertPercentage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	includeExpired := r.URL.Query().Get("include_expired") == "true"

	list, err := s.budgets.List(r.Context(), ownerID, includeExpired)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	overview, err := s.budgets.Get(r.Context(), ownerID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.budgets.Update(r.Context(), ownerID, id, services.UpdateBudgetInput{
		Amount:          req.Amount,
		Period:          req.Period,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		AlertPercentage: req.AlertPercentage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.budgets.Delete(r.Context(), ownerID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetRollup(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	rollup, err := s.budgets.Rollup(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rollup)
}
