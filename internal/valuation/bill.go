package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
)

// BillCost возвращает стоимость счета за окно [start, end] включительно.
// Вызывающая сторона сдвигает start на день вперед, чтобы не учитывать
// списания текущего дня.
func BillCost(bill models.Bill, start, end time.Time) decimal.Decimal {
	occurrences := BillOccurrences(bill, start, end)
	if occurrences == 0 {
		return decimal.Zero
	}

	return bill.Amount.Mul(decimal.NewFromInt(int64(occurrences)))
}

// BillOccurrences возвращает количество списаний счета в окне [start, end].
func BillOccurrences(bill models.Bill, start, end time.Time) int {
	rule := bill.Rule()
	if rule.Interval < 1 {
		return 0
	}

	start, end = period.Normalize(start), period.Normalize(end)
	if bill.EndDate != nil {
		end = period.Min(end, period.Normalize(*bill.EndDate))
	}

	initial := period.Normalize(bill.InitialDate)
	cursor, k := firstOccurrence(rule, initial, start)
	if end.Before(cursor) {
		return 0
	}

	switch rule.Kind {
	case recurrence.Daily:
		return divideSlots(period.DaysBetween(cursor, end)+1, rule.Interval)
	case recurrence.Weekly:
		return divideSlots(weeklySlots(cursor, end, period.Weekday(bill.InitialDate)), rule.Interval)
	case recurrence.Monthly, recurrence.Annual:
		return lastStep(rule, initial, end) - k + 1
	default:
		return 0
	}
}

// firstOccurrence возвращает первое повторение, не раньше start, и его номер.
// Номер имеет смысл только для месячных и годовых счетов.
func firstOccurrence(rule recurrence.Rule, initial, start time.Time) (time.Time, int) {
	if !initial.Before(start) {
		return initial, 0
	}

	switch rule.Kind {
	case recurrence.Daily, recurrence.Weekly:
		step := rule.Interval
		if rule.Kind == recurrence.Weekly {
			step *= 7
		}
		steps := ceilDiv(period.DaysBetween(initial, start), step)
		return period.AddDays(initial, steps*step), steps
	}

	var elapsed int
	if rule.Kind == recurrence.Annual {
		elapsed = period.YearsBetween(initial, start)
	} else {
		elapsed = period.MonthsBetween(initial, start)
	}

	k := elapsed / rule.Interval
	cursor := rule.Step(initial, k)
	for cursor.Before(start) {
		k++
		cursor = rule.Step(initial, k)
	}

	return cursor, k
}

// lastStep возвращает номер последнего повторения не позже end. Повторения
// отсчитываются от initial, поэтому 31-е число после февраля снова 31-е.
func lastStep(rule recurrence.Rule, initial, end time.Time) int {
	if rule.Kind == recurrence.Annual {
		return period.YearsBetween(initial, end) / rule.Interval
	}

	return period.MonthsBetween(initial, end) / rule.Interval
}

// weeklySlots считает недельные слоты дня недели счета в [cursor, end]:
// целые недели плюс поправка на неполную неделю, сравнивающая день недели
// счета с днями недели начала и конца окна.
func weeklySlots(cursor, end time.Time, billWeekday int) int {
	slots := period.WeeksBetween(cursor, end)

	startWeekday := period.Weekday(cursor)
	endWeekday := period.Weekday(end)
	if startWeekday <= endWeekday {
		if billWeekday >= startWeekday && billWeekday <= endWeekday {
			slots++
		}
	} else if billWeekday >= startWeekday || billWeekday <= endWeekday {
		slots++
	}

	return slots
}

// divideSlots делит слоты на интервал: вверх для нечетных интервалов,
// вниз для четных. Месячные и годовые счета всегда делятся вверх.
func divideSlots(slots, interval int) int {
	if interval%2 == 1 {
		return ceilDiv(slots, interval)
	}

	return slots / interval
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}

	return (a + b - 1) / b
}
