package http

import (
	"net/http"
	"time"

	"gastos/internal/core"
)

const defaultTopExpensesLimit = 10

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.engine.Spend(r.Context(), ownerID, from, to, categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTrend serves either a trailing window (?days=N) or an explicit
// range (?from=...&to=...).
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}

	var (
		points []core.DailyPoint
		err    error
	)
	if r.URL.Query().Get("days") != "" {
		days, ok := queryInt(w, r, "days", 0)
		if !ok {
			return
		}
		points, err = s.engine.TrendDays(r.Context(), ownerID, days)
	} else {
		from, ok := queryDate(w, r, "from")
		if !ok {
			return
		}
		to, ok := queryDate(w, r, "to")
		if !ok {
			return
		}
		points, err = s.engine.Trend(r.Context(), ownerID, from, to)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	now := time.Now().UTC()
	year, ok := queryInt(w, r, "year", now.Year())
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month", int(now.Month()))
	if !ok {
		return
	}

	report, err := s.engine.MonthlyReport(r.Context(), ownerID, year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year", time.Now().UTC().Year())
	if !ok {
		return
	}

	report, err := s.engine.YearlyReport(r.Context(), ownerID, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
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

	shares, err := s.engine.CategoryDistribution(r.Context(), ownerID, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
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
	limit, ok := queryInt(w, r, "limit", defaultTopExpensesLimit)
	if !ok {
		return
	}

	top, err := s.engine.TopExpenses(r.Context(), ownerID, from, to, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleWeeklyProgress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}
	progress, err := s.engine.WeeklyProgress(r.Context(), ownerID, core.Today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.ownerID(w, r)
	if !ok {
		return
	}

	cacheKey := ownerID.String() + ":dashboard"
	if metrics, hit := s.dashCache.Get(cacheKey); hit {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, metrics)
		return
	}

	metrics, err := s.engine.Dashboard(r.Context(), ownerID, time.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.dashCache.Set(cacheKey, metrics)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, metrics)
}
