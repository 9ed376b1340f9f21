package valuation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
)

type ScheduleTotals struct {
	Total      decimal.Decimal
	BySchedule map[uuid.UUID]decimal.Decimal
}

// ScheduledPayments суммирует разовые платежи, даты которых лежат строго
// между start и end.
func ScheduledPayments(schedules []models.PaymentSchedule, start, end time.Time) ScheduleTotals {
	totals := ScheduleTotals{
		Total:      decimal.Zero,
		BySchedule: make(map[uuid.UUID]decimal.Decimal, len(schedules)),
	}

	for _, schedule := range schedules {
		subtotal := ScheduleTotal(schedule, start, end)
		totals.BySchedule[schedule.ID] = subtotal
		totals.Total = totals.Total.Add(subtotal)
	}

	return totals
}

// ScheduleTotal возвращает сумму платежей одного графика в окне (start, end).
func ScheduleTotal(schedule models.PaymentSchedule, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range schedule.Payments {
		if period.Between(payment.Date, start, end) {
			total = total.Add(payment.Amount)
		}
	}

	return total
}
