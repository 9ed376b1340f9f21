package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationResult хранит итог одного прохода расчета. В карты по сущностям
// попадают только ненулевые значения, в суммы входят все.
type CalculationResult struct {
	HouseholdID  uuid.UUID `json:"household_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CalculatedAt time.Time `json:"calculated_at"`

	BillTotal            decimal.Decimal               `json:"bill_total"`
	UnavoidableBillTotal decimal.Decimal               `json:"unavoidable_bill_total"`
	Bills                map[uuid.UUID]decimal.Decimal `json:"bills"`

	IncomeTotal   decimal.Decimal               `json:"income_total"`
	Incomes       map[uuid.UUID]decimal.Decimal `json:"incomes"`
	IncomePeriods map[uuid.UUID]int             `json:"income_periods"`

	DebtTotal    decimal.Decimal `json:"debt_total"`
	AccountTotal decimal.Decimal `json:"account_total"`

	InvestmentTotal     decimal.Decimal               `json:"investment_total"`
	Investments         map[uuid.UUID]decimal.Decimal `json:"investments"`
	MarginInterestTotal decimal.Decimal               `json:"margin_interest_total"`
	CostBasisTotal      decimal.Decimal               `json:"cost_basis_total"`
	UnrealizedLossTotal decimal.Decimal               `json:"unrealized_loss_total"`

	VestTotal     decimal.Decimal               `json:"vest_total"`
	Vests         map[uuid.UUID]decimal.Decimal `json:"vests"`
	VestSchedules map[uuid.UUID]decimal.Decimal `json:"vest_schedules"`

	ScheduledPaymentTotal decimal.Decimal               `json:"scheduled_payment_total"`
	ScheduledPayments     map[uuid.UUID]decimal.Decimal `json:"scheduled_payments"`

	NetPosition decimal.Decimal `json:"net_position"`
}

// NewCalculationResult создает пустой результат с инициализированными картами.
func NewCalculationResult(householdID uuid.UUID, start, end time.Time) CalculationResult {
	return CalculationResult{
		HouseholdID:       householdID,
		Start:             start,
		End:               end,
		Bills:             make(map[uuid.UUID]decimal.Decimal),
		Incomes:           make(map[uuid.UUID]decimal.Decimal),
		IncomePeriods:     make(map[uuid.UUID]int),
		Investments:       make(map[uuid.UUID]decimal.Decimal),
		Vests:             make(map[uuid.UUID]decimal.Decimal),
		VestSchedules:     make(map[uuid.UUID]decimal.Decimal),
		ScheduledPayments: make(map[uuid.UUID]decimal.Decimal),
	}
}
