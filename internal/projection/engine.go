package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
	"github.com/jfrancis537/budget-oracle-sub000/internal/prices"
	"github.com/jfrancis537/budget-oracle-sub000/internal/valuation"
)

const defaultConcurrency = 8

var ErrInvalidWindow = errors.New("projection end date is before start date")

// Window задает окно расчета, обе даты включительно.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Engine выполняет один полный проход расчета по снимку домохозяйства.
type Engine struct {
	prices      prices.Source
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// NewEngine создает движок расчета.
func NewEngine(source prices.Source, logger *slog.Logger, concurrency int) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Engine{
		prices:      source,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Calculate рассчитывает итог по снимку за окно. Цены запрашиваются через
// кэш, созданный на этот проход. Любая ошибка прерывает проход целиком.
func (e *Engine) Calculate(ctx context.Context, snapshot models.Snapshot, window Window) (models.CalculationResult, error) {
	start, end := period.Normalize(window.Start), period.Normalize(window.End)
	if end.Before(start) {
		return models.CalculationResult{}, ErrInvalidWindow
	}

	startedAt := e.now()
	result := models.NewCalculationResult(snapshot.HouseholdID, start, end)

	addBills(&result, snapshot.Bills, start, end)
	addLedger(&result, snapshot.Debts, snapshot.Accounts)
	addScheduledPayments(&result, snapshot.PaymentSchedules, start, end)

	for _, investment := range snapshot.Investments {
		result.MarginInterestTotal = result.MarginInterestTotal.Add(valuation.MarginInterest(investment, start, end))
	}

	cache := prices.NewCache(e.prices)
	valuator := valuation.NewValuator(cache, e.logger)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for _, income := range snapshot.Incomes {
		income := income
		group.Go(guard("income", income.ID, func() error {
			projected := valuation.ProjectIncome(income, start, end)

			mu.Lock()
			defer mu.Unlock()

			result.IncomeTotal = result.IncomeTotal.Add(projected.Amount)
			if projected.Periods > 0 {
				result.Incomes[income.ID] = projected.Amount
				result.IncomePeriods[income.ID] = projected.Periods
			}
			return nil
		}))
	}

	for _, investment := range snapshot.Investments {
		investment := investment
		group.Go(guard("investment", investment.ID, func() error {
			holding, err := valuator.ValueHolding(groupCtx, investment)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			result.InvestmentTotal = result.InvestmentTotal.Add(holding.Value)
			result.CostBasisTotal = result.CostBasisTotal.Add(holding.CostBasis)
			result.UnrealizedLossTotal = result.UnrealizedLossTotal.Add(holding.UnrealizedLoss)
			if !holding.Value.IsZero() {
				result.Investments[investment.ID] = holding.Value
			}
			return nil
		}))
	}

	for _, schedule := range snapshot.VestSchedules {
		scheduleID := schedule.ID
		for _, vest := range schedule.Vests {
			vest := vest
			group.Go(guard("vest", vest.ID, func() error {
				value, err := valuator.ValueVest(groupCtx, vest, start, end)
				if err != nil {
					return err
				}
				if value.IsZero() {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()

				result.VestTotal = result.VestTotal.Add(value)
				result.Vests[vest.ID] = value
				result.VestSchedules[scheduleID] = result.VestSchedules[scheduleID].Add(value)
				return nil
			}))
		}
	}

	if err := group.Wait(); err != nil {
		return models.CalculationResult{}, fmt.Errorf("calculate projection: %w", err)
	}

	result.NetPosition = netPosition(result)
	result.CalculatedAt = e.now().UTC()

	e.logger.Debug("projection calculated",
		slog.String("household_id", snapshot.HouseholdID.String()),
		slog.Int("symbols", cache.Len()),
		slog.Duration("duration", time.Since(startedAt)),
	)

	return result, nil
}

func addBills(result *models.CalculationResult, bills []models.Bill, start, end time.Time) {
	// Списания в день начала окна уже учтены в балансах счетов.
	billStart := period.AddDays(start, 1)

	for _, bill := range bills {
		cost := valuation.BillCost(bill, billStart, end)
		result.BillTotal = result.BillTotal.Add(cost)
		if bill.Unavoidable {
			result.UnavoidableBillTotal = result.UnavoidableBillTotal.Add(cost)
		}
		if !cost.IsZero() {
			result.Bills[bill.ID] = cost
		}
	}
}

func addLedger(result *models.CalculationResult, debts []models.Debt, accounts []models.Account) {
	for _, debt := range debts {
		result.DebtTotal = result.DebtTotal.Add(debt.Amount)
	}
	for _, account := range accounts {
		result.AccountTotal = result.AccountTotal.Add(account.Amount)
	}
}

func addScheduledPayments(result *models.CalculationResult, schedules []models.PaymentSchedule, start, end time.Time) {
	totals := valuation.ScheduledPayments(schedules, start, end)

	result.ScheduledPaymentTotal = totals.Total
	for id, subtotal := range totals.BySchedule {
		if !subtotal.IsZero() {
			result.ScheduledPayments[id] = subtotal
		}
	}
}

func netPosition(result models.CalculationResult) decimal.Decimal {
	return result.AccountTotal.
		Sub(result.DebtTotal).
		Add(result.IncomeTotal).
		Sub(result.BillTotal).
		Add(result.InvestmentTotal).
		Sub(result.MarginInterestTotal).
		Add(result.VestTotal).
		Sub(result.ScheduledPaymentTotal)
}

// guard превращает панику в калькуляторе в ошибку прохода.
func guard(kind string, id uuid.UUID, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%s %s: panic: %v", kind, id, recovered)
			}
		}()

		return fn()
	}
}
