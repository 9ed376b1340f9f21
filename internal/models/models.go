package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
)

type LedgerKind string

const (
	LedgerKindDebt    LedgerKind = "debt"
	LedgerKindAccount LedgerKind = "account"
)

type Bill struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   recurrence.Kind `json:"frequency"`
	Interval    int             `json:"interval"`
	InitialDate time.Time       `json:"initial_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Unavoidable bool            `json:"unavoidable"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Rule возвращает правило повторения счета.
func (b Bill) Rule() recurrence.Rule {
	return recurrence.Rule{Kind: b.Frequency, Interval: b.Interval}
}

type IncomeSource struct {
	ID             uuid.UUID               `json:"id"`
	HouseholdID    uuid.UUID               `json:"household_id"`
	Name           string                  `json:"name"`
	Amount         decimal.Decimal         `json:"amount"`
	Frequency      recurrence.PayFrequency `json:"frequency"`
	PaysOnWeekends bool                    `json:"pays_on_weekends"`
	DayOfMonth     int                     `json:"day_of_month,omitempty"`
	StartDate      time.Time               `json:"start_date"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Kind        LedgerKind      `json:"kind"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Debt возвращает запись как долг.
func (e LedgerEntry) Debt() Debt {
	return Debt{ID: e.ID, HouseholdID: e.HouseholdID, Name: e.Name, Amount: e.Amount, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// Account возвращает запись как счет.
func (e LedgerEntry) Account() Account {
	return Account{ID: e.ID, HouseholdID: e.HouseholdID, Name: e.Name, Amount: e.Amount, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

type Debt struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Account struct {
	ID          uuid.UUID       `json:"id"`
	HouseholdID uuid.UUID       `json:"household_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Investment struct {
	ID                 uuid.UUID       `json:"id"`
	HouseholdID        uuid.UUID       `json:"household_id"`
	Name               string          `json:"name"`
	Symbol             string          `json:"symbol"`
	Shares             decimal.Decimal `json:"shares"`
	CostBasisPerShare  decimal.Decimal `json:"cost_basis_per_share"`
	MarginDebt         decimal.Decimal `json:"margin_debt"`
	MarginInterestRate decimal.Decimal `json:"margin_interest_rate"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type ScheduledPayment struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type PaymentSchedule struct {
	ID          uuid.UUID          `json:"id"`
	HouseholdID uuid.UUID          `json:"household_id"`
	Name        string             `json:"name"`
	Payments    []ScheduledPayment `json:"payments"`
	CreatedAt   time.Time          `json:"created_at"`
}

type ScheduledStockVest struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Symbol            string          `json:"symbol"`
	Shares            decimal.Decimal `json:"shares"`
	CostBasisPerShare decimal.Decimal `json:"cost_basis_per_share"`
	TaxPercentage     decimal.Decimal `json:"tax_percentage"`
	Date              time.Time       `json:"date"`
}

type VestSchedule struct {
	ID          uuid.UUID            `json:"id"`
	HouseholdID uuid.UUID            `json:"household_id"`
	Name        string               `json:"name"`
	Vests       []ScheduledStockVest `json:"vests"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Snapshot содержит все коллекции домохозяйства на момент расчета.
// Движок только читает снимок и никогда его не изменяет.
type Snapshot struct {
	HouseholdID      uuid.UUID         `json:"household_id"`
	Bills            []Bill            `json:"bills"`
	Incomes          []IncomeSource    `json:"incomes"`
	Debts            []Debt            `json:"debts"`
	Accounts         []Account         `json:"accounts"`
	Investments      []Investment      `json:"investments"`
	PaymentSchedules []PaymentSchedule `json:"payment_schedules"`
	VestSchedules    []VestSchedule    `json:"vest_schedules"`
}

type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}
