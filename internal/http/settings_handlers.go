package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/services"
)

type updateSettingsRequest struct {
	MonthlyBudget   *decimal.Decimal           `json:"monthly_budget"`
	RenewalDay      *int                       `json:"renewal_day"`
	AlertPercentage *int                       `json:"alert_percentage"`
	Notifications   *core.NotificationSettings `json:"notifications"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	settings, err := s.settings.Get(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	var req updateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := s.settings.Update(r.Context(), ownerID, services.UpdateSettingsInput{
		MonthlyBudget:   req.MonthlyBudget,
		RenewalDay:      req.RenewalDay,
		AlertPercentage: req.AlertPercentage,
		Notifications:   req.Notifications,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	settings, err := s.settings.Reset(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateOwner(ownerID.String())
	writeJSON(w, http.StatusOK, settings)
}
