package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
)

func day(year int, month time.Month, d int) time.Time {
	return period.Date(year, month, d)
}

func testBill(kind recurrence.Kind, interval int, initial time.Time) models.Bill {
	return models.Bill{
		Name:        "test",
		Amount:      decimal.NewFromInt(10),
		Frequency:   kind,
		Interval:    interval,
		InitialDate: initial,
	}
}

// TestBillCostScenarios проверяет эталонные сценарии стоимости счетов.
func TestBillCostScenarios(t *testing.T) {
	weekly := testBill(recurrence.Weekly, 1, day(2021, time.September, 1))
	daily := testBill(recurrence.Daily, 3, day(2021, time.September, 1))
	monthly := testBill(recurrence.Monthly, 1, day(2021, time.September, 2))

	tests := []struct {
		name  string
		bill  models.Bill
		start time.Time
		end   time.Time
		want  int64
	}{
		{"weekly window before initial date", weekly, day(2021, time.August, 30), day(2021, time.October, 23), 80},
		{"weekly window after initial date", weekly, day(2021, time.September, 2), day(2021, time.October, 23), 70},
		{"weekly window ending mid-week", weekly, day(2021, time.September, 4), day(2021, time.October, 19), 60},
		{"daily every third day", daily, day(2021, time.September, 2), day(2021, time.September, 10), 30},
		{"daily short window", daily, day(2021, time.September, 2), day(2021, time.September, 5), 10},
		{"monthly across year end", monthly, day(2021, time.August, 2), day(2022, time.February, 1), 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BillCost(tc.bill, tc.start, tc.end)
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s, want %d", got, tc.want)
		})
	}
}

// TestBillCostZeroBeforeFirstOccurrence проверяет нулевую стоимость до начала или после окончания счета.
func TestBillCostZeroBeforeFirstOccurrence(t *testing.T) {
	bill := testBill(recurrence.Monthly, 1, day(2021, time.September, 2))
	assert.True(t, BillCost(bill, day(2021, time.August, 1), day(2021, time.September, 1)).IsZero())

	ended := day(2021, time.October, 1)
	bill.EndDate = &ended
	assert.True(t, BillCost(bill, day(2021, time.November, 1), day(2022, time.March, 1)).IsZero())

	got := BillCost(bill, day(2021, time.August, 1), day(2022, time.March, 1))
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "only the September charge precedes the end date, got %s", got)
}

// TestBillCostEndBeforeStart проверяет окно с концом раньше начала.
func TestBillCostEndBeforeStart(t *testing.T) {
	bill := testBill(recurrence.Daily, 1, day(2021, time.January, 1))
	assert.True(t, BillCost(bill, day(2021, time.March, 1), day(2021, time.February, 1)).IsZero())
}

// TestBillCostInvalidInterval проверяет, что счет без интервала ничего не стоит.
func TestBillCostInvalidInterval(t *testing.T) {
	bill := testBill(recurrence.Weekly, 0, day(2021, time.January, 1))
	assert.True(t, BillCost(bill, day(2021, time.January, 1), day(2021, time.December, 31)).IsZero())
}

// TestBillCostIdempotent проверяет повторяемость расчета.
func TestBillCostIdempotent(t *testing.T) {
	bill := testBill(recurrence.Weekly, 2, day(2021, time.September, 1))
	start, end := day(2021, time.September, 2), day(2022, time.January, 15)

	first := BillCost(bill, start, end)
	second := BillCost(bill, start, end)
	assert.True(t, first.Equal(second))
}

// TestBillCostMonotonic проверяет, что стоимость не убывает при сдвиге конца окна.
func TestBillCostMonotonic(t *testing.T) {
	bills := []models.Bill{
		testBill(recurrence.Daily, 1, day(2021, time.September, 1)),
		testBill(recurrence.Weekly, 1, day(2021, time.September, 1)),
		testBill(recurrence.Monthly, 1, day(2021, time.January, 31)),
		testBill(recurrence.Annual, 1, day(2020, time.February, 29)),
	}
	start := day(2021, time.September, 2)

	for _, bill := range bills {
		previous := decimal.Zero
		for offset := 0; offset < 800; offset++ {
			cost := BillCost(bill, start, period.AddDays(start, offset))
			assert.False(t, cost.IsNegative())
			if !assert.False(t, cost.LessThan(previous), "%s bill decreased at offset %d", bill.Frequency, offset) {
				break
			}
			previous = cost
		}
	}
}

// TestBillOccurrencesIntervalParity фиксирует деление с округлением вниз для
// четных интервалов дневных и недельных счетов и вверх для месячных.
func TestBillOccurrencesIntervalParity(t *testing.T) {
	daily := testBill(recurrence.Daily, 2, day(2021, time.September, 1))
	// Списания 1 и 3 сентября, но три дня окна делятся на 2 вниз.
	assert.Equal(t, 1, BillOccurrences(daily, day(2021, time.September, 1), day(2021, time.September, 3)))
	assert.Equal(t, 2, BillOccurrences(daily, day(2021, time.September, 1), day(2021, time.September, 4)))

	odd := testBill(recurrence.Daily, 3, day(2021, time.September, 1))
	assert.Equal(t, 2, BillOccurrences(odd, day(2021, time.September, 1), day(2021, time.September, 4)))

	monthly := testBill(recurrence.Monthly, 2, day(2021, time.January, 15))
	assert.Equal(t, 2, BillOccurrences(monthly, day(2021, time.January, 15), day(2021, time.April, 14)))
}

// TestBillOccurrencesMonthEnd проверяет месячные счета, выставляемые в конце месяца.
func TestBillOccurrencesMonthEnd(t *testing.T) {
	bill := testBill(recurrence.Monthly, 1, day(2021, time.January, 31))

	// 31 января, 28 февраля, 31 марта.
	assert.Equal(t, 3, BillOccurrences(bill, day(2021, time.January, 1), day(2021, time.March, 31)))
	assert.Equal(t, 1, BillOccurrences(bill, day(2021, time.February, 1), day(2021, time.February, 28)))
	// После февраля списание снова 31-го, 30 марта его еще нет.
	assert.Equal(t, 1, BillOccurrences(bill, day(2021, time.February, 1), day(2021, time.March, 30)))
	assert.Equal(t, 2, BillOccurrences(bill, day(2021, time.February, 1), day(2021, time.March, 31)))
	assert.Equal(t, 2, BillOccurrences(bill, day(2021, time.March, 1), day(2021, time.May, 30)))
}

// TestBillOccurrencesAnnualLeapDay проверяет годовой счет от 29 февраля.
func TestBillOccurrencesAnnualLeapDay(t *testing.T) {
	bill := testBill(recurrence.Annual, 1, day(2020, time.February, 29))

	assert.Equal(t, 1, BillOccurrences(bill, day(2021, time.January, 1), day(2021, time.December, 31)))
	assert.Equal(t, 4, BillOccurrences(bill, day(2020, time.February, 29), day(2023, time.March, 1)))
}

// TestBillOccurrencesAnnual проверяет годовые счета.
func TestBillOccurrencesAnnual(t *testing.T) {
	bill := testBill(recurrence.Annual, 1, day(2020, time.March, 10))

	assert.Equal(t, 2, BillOccurrences(bill, day(2020, time.March, 11), day(2022, time.March, 10)))
	assert.Equal(t, 0, BillOccurrences(bill, day(2020, time.March, 11), day(2021, time.March, 9)))
}
