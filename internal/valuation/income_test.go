package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
)

func testIncome(frequency recurrence.PayFrequency) models.IncomeSource {
	return models.IncomeSource{
		Name:      "salary",
		Amount:    decimal.NewFromInt(10),
		Frequency: frequency,
		StartDate: day(2021, time.January, 4),
	}
}

// TestProjectIncomeScenarios проверяет эталонные сценарии доходов.
func TestProjectIncomeScenarios(t *testing.T) {
	monthly := testIncome(recurrence.PayMonthly)
	monthly.DayOfMonth = 15

	tests := []struct {
		name   string
		source models.IncomeSource
		start  time.Time
		end    time.Time
		want   int64
	}{
		{"weekly", testIncome(recurrence.PayWeekly), day(2021, time.September, 1), day(2021, time.September, 25), 40},
		{"weekly starting on payday", testIncome(recurrence.PayWeekly), day(2021, time.October, 29), day(2021, time.November, 2), 0},
		{"semi-monthly middle", testIncome(recurrence.PaySemiMonthlyMiddle), day(2021, time.September, 1), day(2021, time.December, 31), 80},
		{"monthly", monthly, day(2021, time.January, 16), day(2021, time.August, 16), 70},
		// Внутри одного месяца выплата учитывается, если start раньше дня выплаты.
		{"monthly same month before payday", monthly, day(2021, time.January, 2), day(2021, time.January, 10), 10},
		{"monthly same month after payday", monthly, day(2021, time.January, 15), day(2021, time.January, 30), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectIncome(tc.source, tc.start, tc.end)
			assert.True(t, got.Amount.Equal(decimal.NewFromInt(tc.want)), "got %s, want %d", got.Amount, tc.want)
			assert.Equal(t, int(tc.want/10), got.Periods)
		})
	}
}

// TestProjectIncomeIdempotent проверяет повторяемость расчета дохода.
func TestProjectIncomeIdempotent(t *testing.T) {
	source := testIncome(recurrence.PayBiweeklyEven)
	start, end := day(2021, time.March, 3), day(2021, time.November, 20)

	assert.Equal(t, ProjectIncome(source, start, end), ProjectIncome(source, start, end))
}

// TestPayPeriodsNeverNegative проверяет отсечение отрицательного числа выплат.
func TestPayPeriodsNeverNegative(t *testing.T) {
	source := testIncome(recurrence.PayWeekly)
	friday := day(2021, time.October, 29)

	assert.Equal(t, 0, PayPeriods(source, friday, friday))
	assert.Equal(t, 0, PayPeriods(source, friday, day(2021, time.October, 1)))
}

// TestPayPeriodsBiweekly проверяет выплаты раз в две недели по четности ISO-недели.
func TestPayPeriodsBiweekly(t *testing.T) {
	start := day(2021, time.September, 1) // среда, 35-я неделя

	even := testIncome(recurrence.PayBiweeklyEven)
	// Пятницы 10 и 24 сентября.
	assert.Equal(t, 2, PayPeriods(even, start, day(2021, time.September, 30)))

	odd := testIncome(recurrence.PayBiweeklyOdd)
	// Пятницы 3 и 17 сентября.
	assert.Equal(t, 2, PayPeriods(odd, start, day(2021, time.September, 30)))
	// Конец окна в день выплаты 1 октября.
	assert.Equal(t, 3, PayPeriods(odd, start, day(2021, time.October, 1)))
}

// TestPayPeriodsBiweeklyYearParity фиксирует инверсию четности при нечетной
// разнице лет между окном и опорной датой источника.
func TestPayPeriodsBiweeklyYearParity(t *testing.T) {
	start, end := day(2021, time.September, 1), day(2021, time.October, 1)

	shifted := testIncome(recurrence.PayBiweeklyEven)
	shifted.StartDate = day(2020, time.January, 6)

	odd := testIncome(recurrence.PayBiweeklyOdd)

	assert.Equal(t, PayPeriods(odd, start, end), PayPeriods(shifted, start, end))
}

// TestPayPeriodsSemiMonthlyWeekendRollback проверяет перенос выплат с выходных на пятницу.
func TestPayPeriodsSemiMonthlyWeekendRollback(t *testing.T) {
	start, end := day(2021, time.May, 14), day(2021, time.May, 20)

	// 15 мая 2021 года суббота, выплата переносится на 14 мая и в окно не попадает.
	source := testIncome(recurrence.PaySemiMonthlyStart)
	assert.Equal(t, 0, PayPeriods(source, start, end))

	source.PaysOnWeekends = true
	assert.Equal(t, 1, PayPeriods(source, start, end))
}

// TestPayPeriodsQuarterly проверяет квартальные выплаты.
func TestPayPeriodsQuarterly(t *testing.T) {
	source := testIncome(recurrence.PayQuarterly)

	// 31 декабря 2021, 31 марта и 30 июня 2022.
	assert.Equal(t, 3, PayPeriods(source, day(2021, time.November, 1), day(2022, time.July, 15)))
	// Два полных года между началом и концом окна.
	assert.Equal(t, 11, PayPeriods(source, day(2021, time.November, 1), day(2024, time.July, 15)))
}

// TestPayPeriodsUnimplementedFrequencies фиксирует нерассчитываемые случаи:
// квартальный доход внутри одного года и годовой доход всегда дают 0.
func TestPayPeriodsUnimplementedFrequencies(t *testing.T) {
	quarterly := testIncome(recurrence.PayQuarterly)
	assert.Equal(t, 0, PayPeriods(quarterly, day(2021, time.January, 1), day(2021, time.December, 31)))

	annual := testIncome(recurrence.PayAnnual)
	assert.Equal(t, 0, PayPeriods(annual, day(2021, time.January, 1), day(2025, time.December, 31)))
	assert.True(t, ProjectIncome(annual, day(2021, time.January, 1), day(2025, time.December, 31)).Amount.IsZero())
}
