package period

import "time"

// Day задает длительность календарного дня для дат, нормализованных к полуночи UTC.
const Day = 24 * time.Hour

type Unit string

const (
	UnitDay     Unit = "day"
	UnitWeek    Unit = "week"
	UnitMonth   Unit = "month"
	UnitQuarter Unit = "quarter"
	UnitYear    Unit = "year"
)

// Date создает календарную дату в полночь UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize отбрасывает время суток и часовой пояс, оставляя календарную дату.
func Normalize(t time.Time) time.Time {
	year, month, day := t.Date()
	return Date(year, month, day)
}

// Add сдвигает дату на n единиц.
func Add(t time.Time, unit Unit, n int) time.Time {
	switch unit {
	case UnitDay:
		return AddDays(t, n)
	case UnitWeek:
		return AddWeeks(t, n)
	case UnitMonth:
		return AddMonths(t, n)
	case UnitQuarter:
		return AddMonths(t, 3*n)
	case UnitYear:
		return AddMonths(t, 12*n)
	default:
		return t
	}
}

func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// AddMonths сдвигает дату на n месяцев, прижимая день к концу месяца
// (31 января + 1 месяц = 28 или 29 февраля).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween возвращает число целых дней от a до b (отрицательное, если b раньше a).
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)) / Day)
}

// WeeksBetween возвращает число целых недель от a до b с отбрасыванием остатка.
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(a, b) / 7
}

// MonthsBetween возвращает число целых месяцев от a до b с отбрасыванием остатка.
func MonthsBetween(a, b time.Time) int {
	a, b = Normalize(a), Normalize(b)
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}

	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if months > 0 && AddMonths(a, months).After(b) {
		months--
	}

	return months
}

func YearsBetween(a, b time.Time) int {
	return MonthsBetween(a, b) / 12
}

// MonthIndex возвращает порядковый номер месяца, удобный для разности месяцев.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// Weekday возвращает индекс дня недели: 0 воскресенье, 6 суббота.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// ISOWeekday возвращает день недели по ISO: 1 понедельник, 7 воскресенье.
func ISOWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}

	return int(t.Weekday())
}

// ISOWeek возвращает номер недели по ISO 8601.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// StartOfWeek возвращает понедельник ISO-недели, содержащей дату.
func StartOfWeek(t time.Time) time.Time {
	t = Normalize(t)
	return AddDays(t, 1-ISOWeekday(t))
}

func EndOfWeek(t time.Time) time.Time {
	return AddDays(StartOfWeek(t), 6)
}

func StartOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

func EndOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), DaysIn(t.Year(), t.Month()))
}

func StartOfQuarter(t time.Time) time.Time {
	month := (t.Month()-1)/3*3 + 1
	return Date(t.Year(), month, 1)
}

func EndOfQuarter(t time.Time) time.Time {
	return AddDays(AddMonths(StartOfQuarter(t), 3), -1)
}

func StartOfYear(t time.Time) time.Time {
	return Date(t.Year(), time.January, 1)
}

func EndOfYear(t time.Time) time.Time {
	return Date(t.Year(), time.December, 31)
}

// QuarterEnds возвращает последние дни кварталов года: 31.03, 30.06, 30.09, 31.12.
func QuarterEnds(year int) [4]time.Time {
	return [4]time.Time{
		Date(year, time.March, 31),
		Date(year, time.June, 30),
		Date(year, time.September, 30),
		Date(year, time.December, 31),
	}
}

// Between сообщает, лежит ли дата строго между start и end.
func Between(t, start, end time.Time) bool {
	t = Normalize(t)
	return t.After(Normalize(start)) && t.Before(Normalize(end))
}

// Within сообщает, лежит ли дата в отрезке [start, end] включительно.
func Within(t, start, end time.Time) bool {
	t = Normalize(t)
	return !t.Before(Normalize(start)) && !t.After(Normalize(end))
}

// Min возвращает более раннюю из двух дат.
func Min(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}

	return a
}
