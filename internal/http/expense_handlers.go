package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/services"
)

type createExpenseRequest struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        core.Date       `json:"date"`
}

type updateExpenseRequest struct {
	CategoryID  *uuid.UUID       `json:"category_id"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *core.Date       `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := s.expenses.Create(r.Context(), ownerID, services.CreateExpenseInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}
	categoryID, ok := queryCategoryID(w, r)
	if !ok {
		return
	}

	list, err := s.expenses.List(r.Context(), ownerID, from, to, categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.expenses.Get(r.Context(), ownerID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := s.expenses.Update(r.Context(), ownerID, id, services.UpdateExpenseInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.expenses.Delete(r.Context(), ownerID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	w.WriteHeader(http.StatusNoContent)
}
