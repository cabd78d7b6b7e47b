// Package storage implements the record store on SQLite: owner-scoped CRUD
// for categories, expenses, budgets and settings, plus the filtered reads the
// analytics engine aggregates over.
//
// Monetary amounts are persisted as integer cents; dates as YYYY-MM-DD text,
// which compares correctly with plain string comparison.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// _txlock=immediate makes every transaction take the write lock up
	// front, which serializes the budget check-and-insert.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Interface conformance for the read-side ports.
var (
	_ analytics.Store          = (*SQLiteRepository)(nil)
	_ analytics.SettingsReader = (*SQLiteRepository)(nil)
)

// ---- Owners ----

func (r *SQLiteRepository) CreateOwner(ctx context.Context, o core.Owner) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO owners (id, email, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID.String(), o.Email, o.Name, string(o.Status), now, now)
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// GetOwner resolves an owner by id. Absent owners surface as ErrNotFound.
func (r *SQLiteRepository) GetOwner(ctx context.Context, id uuid.UUID) (core.Owner, error) {
	var o core.Owner
	var rawID, status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, status, created_at, updated_at FROM owners WHERE id = ?`,
		id.String()).Scan(&rawID, &o.Email, &o.Name, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Owner{}, core.ErrNotFound
	}
	if err != nil {
		return core.Owner{}, fmt.Errorf("get owner: %w", err)
	}
	o.ID, err = uuid.Parse(rawID)
	if err != nil {
		return core.Owner{}, fmt.Errorf("parse owner id: %w", err)
	}
	o.Status = core.OwnerStatus(status)
	return o, nil
}

// ---- Categories ----

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, owner_id, name, icon, color, is_system, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.OwnerID.String(), c.Name, c.Icon, c.Color, boolToInt(c.IsSystem), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved",
		"id", c.ID,
		"owner_id", c.OwnerID,
		"name", c.Name)
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, icon, color, is_system, created_at
		 FROM categories WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	return scanCategory(row)
}

func (r *SQLiteRepository) Categories(ctx context.Context, ownerID uuid.UUID) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, icon, color, is_system, created_at
		 FROM categories WHERE owner_id = ? ORDER BY created_at, id`,
		ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Icon, c.Color, c.ID.String(), c.OwnerID.String())
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

// CategoryNameTaken reports whether the owner already has a category with
// the given name, comparing case-insensitively. exclude skips one id so an
// update does not collide with itself.
func (r *SQLiteRepository) CategoryNameTaken(ctx context.Context, ownerID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE owner_id = ? AND lower(name) = lower(?) AND id != ?`,
		ownerID.String(), name, exclude.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

// CategoryRecordCounts returns how many expenses and budgets reference the
// category. Deletion without force is refused while either is nonzero.
func (r *SQLiteRepository) CategoryRecordCounts(ctx context.Context, ownerID, id uuid.UUID) (expenses, budgets int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM expenses WHERE owner_id = ? AND category_id = ?),
		   (SELECT COUNT(*) FROM budgets WHERE owner_id = ? AND category_id = ?)`,
		ownerID.String(), id.String(), ownerID.String(), id.String()).Scan(&expenses, &budgets)
	if err != nil {
		return 0, 0, fmt.Errorf("count category records: %w", err)
	}
	return expenses, budgets, nil
}

// DeleteCategory removes a category. With cascade, its expenses and budgets
// go with it inside one transaction.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID, cascade bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if cascade {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM expenses WHERE owner_id = ? AND category_id = ?`,
			ownerID.String(), id.String()); err != nil {
			return fmt.Errorf("delete category expenses: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM budgets WHERE owner_id = ? AND category_id = ?`,
			ownerID.String(), id.String()); err != nil {
			return fmt.Errorf("delete category budgets: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id, "owner_id", ownerID, "cascade", cascade)
	return nil
}

// CategoryTotals returns the lifetime spend total and expense count of one
// category.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, ownerID, id uuid.UUID) (core.SpendResult, error) {
	var cents int64
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses WHERE owner_id = ? AND category_id = ?`,
		ownerID.String(), id.String()).Scan(&cents, &count)
	if err != nil {
		return core.SpendResult{}, fmt.Errorf("category totals: %w", err)
	}
	return core.SpendResult{Total: core.FromCents(cents), Count: count}, nil
}

// MostUsedCategories ranks the owner's categories by expense count.
func (r *SQLiteRepository) MostUsedCategories(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.CategoryUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.owner_id, c.name, c.icon, c.color, c.is_system, c.created_at,
		        COUNT(e.id), COALESCE(SUM(e.amount_cents), 0)
		 FROM categories c
		 JOIN expenses e ON e.category_id = c.id
		 WHERE c.owner_id = ?
		 GROUP BY c.id
		 ORDER BY COUNT(e.id) DESC, c.name
		 LIMIT ?`,
		ownerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("most used categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryUsage
	for rows.Next() {
		var u core.CategoryUsage
		var rawID, rawOwner string
		var isSystem int
		var cents int64
		if err := rows.Scan(&rawID, &rawOwner, &u.Category.Name, &u.Category.Icon, &u.Category.Color,
			&isSystem, &u.Category.CreatedAt, &u.ExpenseCount, &cents); err != nil {
			return nil, fmt.Errorf("scan category usage: %w", err)
		}
		if u.Category.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		if u.Category.OwnerID, err = uuid.Parse(rawOwner); err != nil {
			return nil, fmt.Errorf("parse owner id: %w", err)
		}
		u.Category.IsSystem = isSystem != 0
		u.TotalAmount = core.FromCents(cents)
		out = append(out, u)
	}
	return out, rows.Err()
}

// ---- Expenses ----

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner_id, category_id, description, amount_cents, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.OwnerID.String(), e.CategoryID.String(), e.Description,
		core.Cents(e.Amount), e.Date.String(), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"owner_id", e.OwnerID,
		"amount_cents", core.Cents(e.Amount),
		"date", e.Date.String())
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, ownerID, id uuid.UUID) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, category_id, description, amount_cents, date, created_at, updated_at
		 FROM expenses WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	return scanExpense(row)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category_id = ?, description = ?, amount_cents = ?, date = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		e.CategoryID.String(), e.Description, core.Cents(e.Amount), e.Date.String(), e.UpdatedAt,
		e.ID.String(), e.OwnerID.String())
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// ListExpenses returns the owner's expenses in [from, to], newest date
// first, optionally restricted to one category.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) ([]core.Expense, error) {
	query := `SELECT id, owner_id, category_id, description, amount_cents, date, created_at, updated_at
	          FROM expenses WHERE owner_id = ? AND date >= ? AND date <= ?`
	args := []any{ownerID.String(), from.String(), to.String()}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, categoryID.String())
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumExpenses implements analytics.Store.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, ownerID uuid.UUID, from, to core.Date, categoryID *uuid.UUID) (core.SpendResult, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses
	          WHERE owner_id = ? AND date >= ? AND date <= ?`
	args := []any{ownerID.String(), from.String(), to.String()}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, categoryID.String())
	}

	var cents int64
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents, &count); err != nil {
		return core.SpendResult{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.SpendResult{Total: core.FromCents(cents), Count: count}, nil
}

// DailyTotals implements analytics.Store.
func (r *SQLiteRepository) DailyTotals(ctx context.Context, ownerID uuid.UUID, from, to core.Date) (map[core.Date]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, SUM(amount_cents) FROM expenses
		 WHERE owner_id = ? AND date >= ? AND date <= ?
		 GROUP BY date`,
		ownerID.String(), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[core.Date]decimal.Decimal)
	for rows.Next() {
		var rawDate string
		var cents int64
		if err := rows.Scan(&rawDate, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := parseDate(rawDate)
		if err != nil {
			return nil, err
		}
		totals[d] = core.FromCents(cents)
	}
	return totals, rows.Err()
}

// ExpensesWithCategory implements analytics.Store.
func (r *SQLiteRepository) ExpensesWithCategory(ctx context.Context, ownerID uuid.UUID, from, to core.Date) ([]analytics.ExpenseRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.owner_id, e.category_id, e.description, e.amount_cents, e.date,
		        e.created_at, e.updated_at, c.name, c.icon, c.color
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.owner_id = ? AND e.date >= ? AND e.date <= ?
		 ORDER BY e.date, e.created_at`,
		ownerID.String(), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("expenses with category: %w", err)
	}
	defer rows.Close()
	return scanExpenseRows(rows)
}

// RecentExpenses implements analytics.Store.
func (r *SQLiteRepository) RecentExpenses(ctx context.Context, ownerID uuid.UUID, limit int) ([]analytics.ExpenseRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.owner_id, e.category_id, e.description, e.amount_cents, e.date,
		        e.created_at, e.updated_at, c.name, c.icon, c.color
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.owner_id = ?
		 ORDER BY e.created_at DESC, e.id
		 LIMIT ?`,
		ownerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenseRows(rows)
}

// ---- Budgets ----

// CreateBudget runs the overlap check and the insert inside one immediate
// transaction, so two concurrent requests for overlapping budgets cannot
// both succeed. On conflict it returns a core.OverlapError naming the
// clashing budget.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	return r.writeBudgetExclusive(ctx, b, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, owner_id, category_id, amount_cents, period, start_date, end_date, alert_percentage, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID.String(), b.OwnerID.String(), nullableID(b.CategoryID), core.Cents(b.Amount),
			string(b.Period), b.StartDate.String(), b.EndDate.String(), b.AlertPercentage, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		return nil
	})
}

// UpdateBudget re-runs the overlap check (skipping the budget itself) and
// applies the update in the same transaction.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	return r.writeBudgetExclusive(ctx, b, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE budgets SET category_id = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ?, alert_percentage = ?
			 WHERE id = ? AND owner_id = ?`,
			nullableID(b.CategoryID), core.Cents(b.Amount), string(b.Period),
			b.StartDate.String(), b.EndDate.String(), b.AlertPercentage,
			b.ID.String(), b.OwnerID.String())
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		return requireRow(res)
	})
}

// writeBudgetExclusive runs the overlap check and the write inside one
// transaction. With immediate locking the check and the write cannot
// interleave with another writer.
func (r *SQLiteRepository) writeBudgetExclusive(ctx context.Context, b core.Budget, write func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget write: %w", err)
	}
	defer tx.Rollback()

	var clashing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM budgets
		 WHERE owner_id = ?
		   AND ((category_id IS NULL AND ? IS NULL) OR category_id = ?)
		   AND start_date <= ? AND end_date >= ?
		   AND id != ?
		 LIMIT 1`,
		b.OwnerID.String(), nullableID(b.CategoryID), nullableID(b.CategoryID),
		b.EndDate.String(), b.StartDate.String(), b.ID.String()).Scan(&clashing)
	switch {
	case err == nil:
		existing, parseErr := uuid.Parse(clashing)
		if parseErr != nil {
			return fmt.Errorf("parse clashing budget id: %w", parseErr)
		}
		return &core.OverlapError{ExistingID: existing}
	case errors.Is(err, sql.ErrNoRows):
		// no conflict
	default:
		return fmt.Errorf("check budget overlap: %w", err)
	}

	if err := write(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget write: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"owner_id", b.OwnerID,
		"start_date", b.StartDate.String(),
		"end_date", b.EndDate.String())
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, ownerID, id uuid.UUID) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, category_id, amount_cents, period, start_date, end_date, alert_percentage, created_at
		 FROM budgets WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	return scanBudget(row)
}

// ListBudgets returns the owner's budgets, newest first. Unless
// includeExpired is set, budgets whose end date is before today are
// filtered out.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID uuid.UUID, includeExpired bool, today core.Date) ([]core.Budget, error) {
	query := `SELECT id, owner_id, category_id, amount_cents, period, start_date, end_date, alert_percentage, created_at
	          FROM budgets WHERE owner_id = ?`
	args := []any{ownerID.String()}
	if !includeExpired {
		query += ` AND end_date >= ?`
		args = append(args, today.String())
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

// BudgetsCovering returns the owner's budgets whose range contains date and
// whose category is either the given one or the umbrella.
func (r *SQLiteRepository) BudgetsCovering(ctx context.Context, ownerID uuid.UUID, date core.Date, categoryID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category_id, amount_cents, period, start_date, end_date, alert_percentage, created_at
		 FROM budgets
		 WHERE owner_id = ? AND start_date <= ? AND end_date >= ?
		   AND (category_id IS NULL OR category_id = ?)`,
		ownerID.String(), date.String(), date.String(), categoryID.String())
	if err != nil {
		return nil, fmt.Errorf("budgets covering date: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- Settings ----

// SettingsFor implements analytics.SettingsReader. Owners without a stored
// record get the defaults.
func (r *SQLiteRepository) SettingsFor(ctx context.Context, ownerID uuid.UUID) (core.Settings, error) {
	var s core.Settings
	var rawID, rawOwner string
	var budgetCents int64
	var reminders, overspend, monthly, push int
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, monthly_budget_cents, renewal_day, alert_percentage,
		        notify_budget_reminders, notify_overspend_alerts, notify_monthly_email, notify_push,
		        created_at, updated_at
		 FROM settings WHERE owner_id = ?`,
		ownerID.String()).Scan(&rawID, &rawOwner, &budgetCents, &s.RenewalDay, &s.AlertPercentage,
		&reminders, &overspend, &monthly, &push, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(ownerID), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	if s.ID, err = uuid.Parse(rawID); err != nil {
		return core.Settings{}, fmt.Errorf("parse settings id: %w", err)
	}
	if s.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return core.Settings{}, fmt.Errorf("parse owner id: %w", err)
	}
	s.MonthlyBudget = core.FromCents(budgetCents)
	s.Notifications = core.NotificationSettings{
		BudgetReminders:     reminders != 0,
		OverspendAlerts:     overspend != 0,
		MonthlyEmailSummary: monthly != 0,
		PushNotifications:   push != 0,
	}
	return s, nil
}

// SaveSettings inserts or replaces the owner's settings record.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, owner_id, monthly_budget_cents, renewal_day, alert_percentage,
		                       notify_budget_reminders, notify_overspend_alerts, notify_monthly_email, notify_push,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET
		   monthly_budget_cents = excluded.monthly_budget_cents,
		   renewal_day = excluded.renewal_day,
		   alert_percentage = excluded.alert_percentage,
		   notify_budget_reminders = excluded.notify_budget_reminders,
		   notify_overspend_alerts = excluded.notify_overspend_alerts,
		   notify_monthly_email = excluded.notify_monthly_email,
		   notify_push = excluded.notify_push,
		   updated_at = excluded.updated_at`,
		s.ID.String(), s.OwnerID.String(), core.Cents(s.MonthlyBudget), s.RenewalDay, s.AlertPercentage,
		boolToInt(s.Notifications.BudgetReminders), boolToInt(s.Notifications.OverspendAlerts),
		boolToInt(s.Notifications.MonthlyEmailSummary), boolToInt(s.Notifications.PushNotifications),
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// DeleteSettings drops the stored record, reverting the owner to defaults.
func (r *SQLiteRepository) DeleteSettings(ctx context.Context, ownerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM settings WHERE owner_id = ?`, ownerID.String())
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

// ---- scanning helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var rawID, rawOwner string
	var isSystem int
	err := row.Scan(&rawID, &rawOwner, &c.Name, &c.Icon, &c.Color, &isSystem, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	if c.ID, err = uuid.Parse(rawID); err != nil {
		return core.Category{}, fmt.Errorf("parse category id: %w", err)
	}
	if c.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return core.Category{}, fmt.Errorf("parse owner id: %w", err)
	}
	c.IsSystem = isSystem != 0
	return c, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var rawID, rawOwner, rawCategory, rawDate string
	var cents int64
	err := row.Scan(&rawID, &rawOwner, &rawCategory, &e.Description, &cents, &rawDate, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	if e.ID, err = uuid.Parse(rawID); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense id: %w", err)
	}
	if e.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return core.Expense{}, fmt.Errorf("parse owner id: %w", err)
	}
	if e.CategoryID, err = uuid.Parse(rawCategory); err != nil {
		return core.Expense{}, fmt.Errorf("parse category id: %w", err)
	}
	e.Amount = core.FromCents(cents)
	if e.Date, err = parseDate(rawDate); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func scanExpenseRows(rows *sql.Rows) ([]analytics.ExpenseRow, error) {
	var out []analytics.ExpenseRow
	for rows.Next() {
		var r analytics.ExpenseRow
		var rawID, rawOwner, rawCategory, rawDate string
		var cents int64
		err := rows.Scan(&rawID, &rawOwner, &rawCategory, &r.Description, &cents, &rawDate,
			&r.CreatedAt, &r.UpdatedAt, &r.CategoryName, &r.CategoryIcon, &r.CategoryColor)
		if err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		if r.Expense.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse expense id: %w", err)
		}
		if r.Expense.OwnerID, err = uuid.Parse(rawOwner); err != nil {
			return nil, fmt.Errorf("parse owner id: %w", err)
		}
		if r.Expense.CategoryID, err = uuid.Parse(rawCategory); err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		r.Amount = core.FromCents(cents)
		if r.Expense.Date, err = parseDate(rawDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var rawID, rawOwner, rawStart, rawEnd, period string
	var rawCategory sql.NullString
	var cents int64
	err := row.Scan(&rawID, &rawOwner, &rawCategory, &cents, &period, &rawStart, &rawEnd, &b.AlertPercentage, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	if b.ID, err = uuid.Parse(rawID); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget id: %w", err)
	}
	if b.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return core.Budget{}, fmt.Errorf("parse owner id: %w", err)
	}
	if rawCategory.Valid {
		catID, err := uuid.Parse(rawCategory.String)
		if err != nil {
			return core.Budget{}, fmt.Errorf("parse category id: %w", err)
		}
		b.CategoryID = &catID
	}
	b.Amount = core.FromCents(cents)
	b.Period = core.Period(period)
	if b.StartDate, err = parseDate(rawStart); err != nil {
		return core.Budget{}, err
	}
	if b.EndDate, err = parseDate(rawEnd); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.Date{Time: t.UTC()}, nil
}

func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRow maps a zero-row write to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
