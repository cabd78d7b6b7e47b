package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	OwnerActive   OwnerStatus = "active"
	OwnerDisabled OwnerStatus = "disabled"
)

// DefaultAlertPercentage is applied when a budget or settings record does not
// specify its own threshold.
const DefaultAlertPercentage = 80

type (
	// Period is the informational cadence label on a budget. The actual
	// bounds are always the explicit start and end dates.
	Period string

	// OwnerStatus tags an owner as usable or shut off. Disabled owners are
	// rejected wherever an owner is resolved.
	OwnerStatus string

	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	Owner struct {
		ID        uuid.UUID   `json:"id"`
		Email     string      `json:"email"`
		Name      string      `json:"name"`
		Status    OwnerStatus `json:"status"`
		CreatedAt time.Time   `json:"created_at"`
		UpdatedAt time.Time   `json:"updated_at"`
	}

	Category struct {
		ID        uuid.UUID `json:"id"`
		OwnerID   uuid.UUID `json:"owner_id"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		IsSystem  bool      `json:"is_system"`
		CreatedAt time.Time `json:"created_at"`
	}

	Expense struct {
		ID          uuid.UUID       `json:"id"`
		OwnerID     uuid.UUID       `json:"owner_id"`
		CategoryID  uuid.UUID       `json:"category_id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// Budget caps spending over an explicit date range. A nil CategoryID is
	// an umbrella budget covering all of the owner's categories.
	Budget struct {
		ID              uuid.UUID       `json:"id"`
		OwnerID         uuid.UUID       `json:"owner_id"`
		CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
		Amount          decimal.Decimal `json:"amount"`
		Period          Period          `json:"period"`
		StartDate       Date            `json:"start_date"`
		EndDate         Date            `json:"end_date"`
		AlertPercentage int             `json:"alert_percentage"`
		CreatedAt       time.Time       `json:"created_at"`
	}

	// NotificationSettings is a structured record of named flags, validated
	// at the boundary rather than stored as a free-form map.
	NotificationSettings struct {
		BudgetReminders     bool `json:"budget_reminders"`
		OverspendAlerts     bool `json:"overspend_alerts"`
		MonthlyEmailSummary bool `json:"monthly_email_summary"`
		PushNotifications   bool `json:"push_notifications"`
	}

	Settings struct {
		ID              uuid.UUID            `json:"id"`
		OwnerID         uuid.UUID            `json:"owner_id"`
		MonthlyBudget   decimal.Decimal      `json:"monthly_budget"`
		RenewalDay      int                  `json:"renewal_day"`
		AlertPercentage int                  `json:"alert_percentage"`
		Notifications   NotificationSettings `json:"notifications"`
		CreatedAt       time.Time            `json:"created_at"`
		UpdatedAt       time.Time            `json:"updated_at"`
	}
)

var (
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidDateRange       = errors.New("end date must be after start date")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPeriod          = errors.New("invalid period")
	ErrInvalidAlertPercentage = errors.New("alert percentage must be between 1 and 100")
	ErrInvalidRenewalDay      = errors.New("renewal day must be between 1 and 31")
	ErrEmptyDescription       = errors.New("empty description")
	ErrEmptyName              = errors.New("empty category name")
	ErrEmptyIcon              = errors.New("empty category icon")
	ErrEmptyColor             = errors.New("empty category color")
)

// NewDate builds a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// Today returns the current calendar day in UTC.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the whole calendar days from d to other. Negative when
// other is in the past.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time) / (24 * time.Hour))
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = Date{Time: t.UTC()}
	return nil
}

func (p Period) Validate() error {
	switch p {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if strings.TrimSpace(c.Icon) == "" {
		return ErrEmptyIcon
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.CategoryID == uuid.Nil {
		return errors.New("expense requires a category")
	}
	return nil
}

func (b Budget) Validate() error {
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if err := b.EndDate.Validate(); err != nil {
		return err
	}
	if !b.EndDate.After(b.StartDate.Time) {
		return ErrInvalidDateRange
	}
	if b.AlertPercentage < 1 || b.AlertPercentage > 100 {
		return ErrInvalidAlertPercentage
	}
	return nil
}

// Active reports whether the budget has not yet expired as of today. Never
// stored, always recomputed at query time.
func (b Budget) Active(today Date) bool {
	return !b.EndDate.Before(today.Time)
}

func (s Settings) Validate() error {
	if s.MonthlyBudget.IsNegative() {
		return ErrInvalidAmount
	}
	if s.MonthlyBudget.Exponent() < -2 {
		return ErrInvalidAmount
	}
	if s.RenewalDay < 1 || s.RenewalDay > 31 {
		return ErrInvalidRenewalDay
	}
	if s.AlertPercentage < 1 || s.AlertPercentage > 100 {
		return ErrInvalidAlertPercentage
	}
	return nil
}

// DefaultSettings are the values applied when an owner has never saved
// settings of their own.
func DefaultSettings(ownerID uuid.UUID) Settings {
	return Settings{
		OwnerID:         ownerID,
		MonthlyBudget:   decimal.NewFromInt(1000),
		RenewalDay:      1,
		AlertPercentage: DefaultAlertPercentage,
		Notifications: NotificationSettings{
			BudgetReminders:   true,
			OverspendAlerts:   true,
			PushNotifications: true,
		},
	}
}
