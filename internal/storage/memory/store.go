// Package memory holds an in-memory record store with the same surface as
// the SQLite repository. It backs tests and the zero-setup dev mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"
)

type Store struct {
	mu         sync.Mutex
	owners     map[uuid.UUID]core.Owner
	categories map[uuid.UUID]core.Category
	expenses   map[uuid.UUID]core.Expense
	budgets    map[uuid.UUID]core.Budget
	settings   map[uuid.UUID]core.Settings // keyed by owner id
	seq        int                         // insertion order for stable recent-first listings
	order      map[uuid.UUID]int
}

func New() *Store {
	return &Store{
		owners:     map[uuid.UUID]core.Owner{},
		categories: map[uuid.UUID]core.Category{},
		expenses:   map[uuid.UUID]core.Expense{},
		budgets:    map[uuid.UUID]core.Budget{},
		settings:   map[uuid.UUID]core.Settings{},
		order:      map[uuid.UUID]int{},
	}
}

var (
	_ analytics.Store          = (*Store)(nil)
	_ analytics.SettingsReader = (*Store)(nil)
)

// ---- Owners ----

func (s *Store) CreateOwner(_ context.Context, o core.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[o.ID] = o
	return nil
}

func (s *Store) GetOwner(_ context.Context, id uuid.UUID) (core.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[id]
	if !ok {
		return core.Owner{}, core.ErrNotFound
	}
	return o, nil
}

// ---- Categories ----

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	s.note(c.ID)
	return nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id uuid.UUID) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) Categories(_ context.Context, ownerID uuid.UUID) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.categories[c.ID]
	if !ok || old.OwnerID != c.OwnerID {
		return core.ErrNotFound
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) CategoryNameTaken(_ context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.OwnerID == ownerID && c.ID != exclude && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CategoryRecordCounts(_ context.Context, ownerID, id uuid.UUID) (expenses, budgets int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.OwnerID == ownerID && e.CategoryID == id {
			expenses++
		}
	}
	for _, b := range s.budgets {
		if b.OwnerID == ownerID && b.CategoryID != nil && *b.CategoryID == id {
			budgets++
		}
	}
	return expenses, budgets, nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id uuid.UUID, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	if cascade {
		for eid, e := range s.expenses {
			if e.OwnerID == ownerID && e.CategoryID == id {
				delete(s.expenses, eid)
			}
		}
		for bid, b := range s.budgets {
			if b.OwnerID == ownerID && b.CategoryID != nil && *b.CategoryID == id {
				delete(s.budgets, bid)
			}
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CategoryTotals(_ context.Context, ownerID, id uuid.UUID) (core.SpendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := core.SpendResult{Total: decimal.Zero}
	for _, e := range s.expenses {
		if e.OwnerID == ownerID && e.CategoryID == id {
			res.Total = res.Total.Add(e.Amount)
			res.Count++
		}
	}
	return res, nil
}

func (s *Store) MostUsedCategories(_ context.Context, ownerID uuid.UUID, limit int) ([]core.CategoryUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := map[uuid.UUID]*core.CategoryUsage{}
	for _, e := range s.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		u, ok := usage[e.CategoryID]
		if !ok {
			c, found := s.categories[e.CategoryID]
			if !found {
				continue
			}
			u = &core.CategoryUsage{Category: c, TotalAmount: decimal.Zero}
			usage[e.CategoryID] = u
		}
		u.ExpenseCount++
		u.TotalAmount = u.TotalAmount.Add(e.Amount)
	}
	out := make([]core.CategoryUsage, 0, len(usage))
	for _, u := range usage {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpenseCount != out[j].ExpenseCount {
			return out[i].ExpenseCount > out[j].ExpenseCount
		}
		return out[i].Category.Name < out[j].Category.Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Expenses ----

func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	s.note(e.ID)
	return nil
}

func (s *Store) GetExpense(_ context.Context, ownerID, id uuid.UUID) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.expenses[e.ID]
	if !ok || old.OwnerID != e.OwnerID {
		return core.ErrNotFound
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.OwnerID != ownerID || !inRange(e.Date, from, to) {
			continue
		}
		if categoryID != nil && e.CategoryID != *categoryID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) SumExpenses(_ context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := core.SpendResult{Total: decimal.Zero}
	for _, e := range s.expenses {
		if e.OwnerID != ownerID || !inRange(e.Date, from, to) {
			continue
		}
		if categoryID != nil && e.CategoryID != *categoryID {
			continue
		}
		res.Total = res.Total.Add(e.Amount)
		res.Count++
	}
	return res, nil
}

func (s *Store) DailyTotals(_ context.Context, ownerID uuid.UUID, from, to core.Date) (map[core.Date]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[core.Date]decimal.Decimal)
	for _, e := range s.expenses {
		if e.OwnerID != ownerID || !inRange(e.Date, from, to) {
			continue
		}
		cur, ok := totals[e.Date]
		if !ok {
			cur = decimal.Zero
		}
		totals[e.Date] = cur.Add(e.Amount)
	}
	return totals, nil
}

func (s *Store) ExpensesWithCategory(_ context.Context, ownerID uuid.UUID, from, to core.Date) ([]analytics.ExpenseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []analytics.ExpenseRow
	for _, e := range s.expenses {
		if e.OwnerID != ownerID || !inRange(e.Date, from, to) {
			continue
		}
		out = append(out, s.rowFor(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return s.order[out[i].Expense.ID] < s.order[out[j].Expense.ID]
	})
	return out, nil
}

func (s *Store) RecentExpenses(_ context.Context, ownerID uuid.UUID, limit int) ([]analytics.ExpenseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []analytics.ExpenseRow
	for _, e := range s.expenses {
		if e.OwnerID == ownerID {
			out = append(out, s.rowFor(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].Expense.ID] > s.order[out[j].Expense.ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Budgets ----

func (s *Store) CreateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOverlapLocked(b); err != nil {
		return err
	}
	s.budgets[b.ID] = b
	s.note(b.ID)
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.budgets[b.ID]
	if !ok || old.OwnerID != b.OwnerID {
		return core.ErrNotFound
	}
	if err := s.checkOverlapLocked(b); err != nil {
		return err
	}
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) checkOverlapLocked(b core.Budget) error {
	for _, existing := range s.budgets {
		if existing.ID == b.ID || existing.OwnerID != b.OwnerID {
			continue
		}
		if core.OverlapsBudget(b, existing) {
			return &core.OverlapError{ExistingID: existing.ID}
		}
	}
	return nil
}

func (s *Store) GetBudget(_ context.Context, ownerID, id uuid.UUID) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBudgets(_ context.Context, ownerID uuid.UUID, includeExpired bool, today core.Date) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID != ownerID {
			continue
		}
		if !includeExpired && b.EndDate.Before(today.Time) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] > s.order[out[j].ID] })
	return out, nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) BudgetsCovering(_ context.Context, ownerID uuid.UUID, date core.Date, categoryID uuid.UUID) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID != ownerID || date.Before(b.StartDate.Time) || date.After(b.EndDate.Time) {
			continue
		}
		if b.CategoryID != nil && *b.CategoryID != categoryID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out, nil
}

// ---- Settings ----

func (s *Store) SettingsFor(_ context.Context, ownerID uuid.UUID) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.settings[ownerID]; ok {
		return st, nil
	}
	return core.DefaultSettings(ownerID), nil
}

func (s *Store) SaveSettings(_ context.Context, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[st.OwnerID] = st
	return nil
}

func (s *Store) DeleteSettings(_ context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, ownerID)
	return nil
}

// ---- helpers ----

func (s *Store) note(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

func (s *Store) rowFor(e core.Expense) analytics.ExpenseRow {
	row := analytics.ExpenseRow{Expense: e}
	if c, ok := s.categories[e.CategoryID]; ok {
		row.CategoryName = c.Name
		row.CategoryIcon = c.Icon
		row.CategoryColor = c.Color
	}
	return row
}

func inRange(d, from, to core.Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}
