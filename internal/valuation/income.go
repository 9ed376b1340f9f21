package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
)

// Payday задает день выплаты для недельных и двухнедельных доходов.
const Payday = time.Friday

type IncomeProjection struct {
	Periods int
	Amount  decimal.Decimal
}

// ProjectIncome возвращает число выплат и сумму дохода за окно.
// Выплата в день start не учитывается.
func ProjectIncome(source models.IncomeSource, start, end time.Time) IncomeProjection {
	periods := PayPeriods(source, start, end)
	if periods == 0 {
		return IncomeProjection{Amount: decimal.Zero}
	}

	return IncomeProjection{
		Periods: periods,
		Amount:  source.Amount.Mul(decimal.NewFromInt(int64(periods))),
	}
}

// PayPeriods возвращает число выплат источника дохода в окне.
func PayPeriods(source models.IncomeSource, start, end time.Time) int {
	start, end = period.Normalize(start), period.Normalize(end)
	if end.Before(start) {
		return 0
	}

	var periods int
	switch source.Frequency {
	case recurrence.PayWeekly:
		periods = weeklyPeriods(start, end)
	case recurrence.PayBiweeklyEven, recurrence.PayBiweeklyOdd:
		periods = biweeklyPeriods(source, start, end)
	case recurrence.PaySemiMonthlyStart, recurrence.PaySemiMonthlyMiddle:
		periods = semiMonthlyPeriods(source, start, end)
	case recurrence.PayMonthly:
		periods = monthlyPeriods(source.DayOfMonth, start, end)
	case recurrence.PayQuarterly:
		periods = quarterlyPeriods(start, end)
	case recurrence.PayAnnual:
		// Годовой доход не рассчитывается.
		periods = 0
	}

	if periods < 0 {
		return 0
	}

	return periods
}

func weeklyPeriods(start, end time.Time) int {
	periods := period.WeeksBetween(start, end)
	if periods < 0 {
		periods = -periods
	}

	payday := int(Payday)
	startWeekday := period.Weekday(start)
	endWeekday := period.Weekday(end)

	if startWeekday >= payday {
		periods--
	}
	if endWeekday > payday {
		periods++
	}
	if startWeekday > endWeekday {
		periods++
	}

	return periods
}

// biweeklyPeriods считает выплаты раз в две недели. Неделя выплаты
// определяется четностью ISO-недели start; при нечетной разнице лет между
// start и опорной датой источника четность инвертируется.
func biweeklyPeriods(source models.IncomeSource, start, end time.Time) int {
	evenWeek := period.ISOWeek(start)%2 == 0
	if abs(start.Year()-source.StartDate.Year())%2 == 1 {
		evenWeek = !evenWeek
	}
	startPayWeek := evenWeek == (source.Frequency == recurrence.PayBiweeklyEven)

	weeks := period.WeeksBetween(period.StartOfWeek(start), period.StartOfWeek(end))
	periods := weeks / 2
	if weeks%2 == 1 && startPayWeek {
		periods++
	}

	payday := int(Payday)
	if startPayWeek && period.ISOWeekday(start) >= payday {
		periods--
	}

	endPayWeek := startPayWeek == (weeks%2 == 0)
	if endPayWeek && period.ISOWeekday(end) >= payday {
		periods++
	}

	return periods
}

func semiMonthlyPeriods(source models.IncomeSource, start, end time.Time) int {
	startMonth := period.MonthIndex(start)
	endMonth := period.MonthIndex(end)

	if startMonth == endMonth {
		count := 0
		for _, payday := range semiMonthlyPaydays(source, start) {
			if payday.After(start) && !payday.After(end) {
				count++
			}
		}
		return count
	}

	count := 0
	for _, payday := range semiMonthlyPaydays(source, start) {
		if payday.After(start) {
			count++
		}
	}
	for _, payday := range semiMonthlyPaydays(source, end) {
		if !payday.After(end) {
			count++
		}
	}

	return count + 2*(endMonth-startMonth-1)
}

// semiMonthlyPaydays возвращает две даты выплат месяца. Выплаты, попавшие
// на выходные, переносятся на предшествующую пятницу, если источник не
// платит в выходные.
func semiMonthlyPaydays(source models.IncomeSource, month time.Time) [2]time.Time {
	var paydays [2]time.Time
	if source.Frequency == recurrence.PaySemiMonthlyStart {
		paydays = [2]time.Time{
			period.Date(month.Year(), month.Month(), 1),
			period.Date(month.Year(), month.Month(), 15),
		}
	} else {
		paydays = [2]time.Time{
			period.Date(month.Year(), month.Month(), 15),
			period.EndOfMonth(month),
		}
	}

	if !source.PaysOnWeekends {
		for i, payday := range paydays {
			paydays[i] = previousWeekday(payday)
		}
	}

	return paydays
}

func previousWeekday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return period.AddDays(t, -1)
	case time.Sunday:
		return period.AddDays(t, -2)
	default:
		return t
	}
}

func monthlyPeriods(dayOfMonth int, start, end time.Time) int {
	startMonth := period.MonthIndex(start)
	endMonth := period.MonthIndex(end)

	if startMonth == endMonth {
		if start.Day() < dayOfMonth {
			return 1
		}
		return 0
	}

	periods := endMonth - startMonth - 1
	if start.Day() < dayOfMonth {
		periods++
	}
	if end.Day() >= dayOfMonth {
		periods++
	}

	return periods
}

// quarterlyPeriods считает концы кварталов. Окна внутри одного года
// пока не рассчитываются и возвращают 0.
func quarterlyPeriods(start, end time.Time) int {
	if start.Year() == end.Year() {
		return 0
	}

	periods := 0
	for _, quarterEnd := range period.QuarterEnds(start.Year()) {
		if quarterEnd.After(start) {
			periods++
		}
	}
	for _, quarterEnd := range period.QuarterEnds(end.Year()) {
		if !quarterEnd.After(end) {
			periods++
		}
	}

	return periods + 4*(end.Year()-start.Year()-1)
}

func abs(value int) int {
	if value < 0 {
		return -value
	}

	return value
}
