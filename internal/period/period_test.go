package period

import (
	"testing"
	"time"
)

// TestAddMonthsClampsDay проверяет прижатие дня к концу месяца.
func TestAddMonthsClampsDay(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"jan31 plus one", Date(2021, time.January, 31), 1, Date(2021, time.February, 28)},
		{"leap year", Date(2020, time.January, 31), 1, Date(2020, time.February, 29)},
		{"backwards", Date(2021, time.March, 31), -1, Date(2021, time.February, 28)},
		{"across year", Date(2021, time.November, 15), 3, Date(2022, time.February, 15)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AddMonths(tc.in, tc.n); !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want.Format(time.DateOnly), got.Format(time.DateOnly))
			}
		})
	}
}

// TestMonthsBetween проверяет разность месяцев с отбрасыванием остатка.
func TestMonthsBetween(t *testing.T) {
	if got := MonthsBetween(Date(2021, time.September, 2), Date(2022, time.February, 1)); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := MonthsBetween(Date(2021, time.September, 2), Date(2022, time.February, 2)); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := MonthsBetween(Date(2021, time.January, 31), Date(2021, time.February, 28)); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := MonthsBetween(Date(2022, time.February, 2), Date(2021, time.September, 2)); got != -5 {
		t.Fatalf("expected -5, got %d", got)
	}
	if got := YearsBetween(Date(2020, time.March, 1), Date(2022, time.February, 28)); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

// TestDaysAndWeeksBetween проверяет разность дней и недель.
func TestDaysAndWeeksBetween(t *testing.T) {
	start := time.Date(2021, time.September, 1, 18, 30, 0, 0, time.UTC)
	end := Date(2021, time.September, 25)

	if got := DaysBetween(start, end); got != 24 {
		t.Fatalf("expected 24 days, got %d", got)
	}
	if got := WeeksBetween(start, end); got != 3 {
		t.Fatalf("expected 3 weeks, got %d", got)
	}
	if got := WeeksBetween(end, start); got != -3 {
		t.Fatalf("expected -3 weeks, got %d", got)
	}
}

// TestWeekBoundaries проверяет границы ISO-недели.
func TestWeekBoundaries(t *testing.T) {
	sunday := Date(2021, time.September, 5)

	if got := StartOfWeek(sunday); !got.Equal(Date(2021, time.August, 30)) {
		t.Fatalf("unexpected start of week: %s", got.Format(time.DateOnly))
	}
	if got := EndOfWeek(sunday); !got.Equal(sunday) {
		t.Fatalf("unexpected end of week: %s", got.Format(time.DateOnly))
	}
	if ISOWeekday(sunday) != 7 || Weekday(sunday) != 0 {
		t.Fatalf("unexpected weekday indexes for sunday: %d/%d", ISOWeekday(sunday), Weekday(sunday))
	}
}

// TestQuarterAndYearBoundaries проверяет границы кварталов и года.
func TestQuarterAndYearBoundaries(t *testing.T) {
	day := Date(2021, time.May, 17)

	if got := StartOfQuarter(day); !got.Equal(Date(2021, time.April, 1)) {
		t.Fatalf("unexpected start of quarter: %s", got.Format(time.DateOnly))
	}
	if got := EndOfQuarter(day); !got.Equal(Date(2021, time.June, 30)) {
		t.Fatalf("unexpected end of quarter: %s", got.Format(time.DateOnly))
	}
	if got := EndOfMonth(Date(2024, time.February, 3)); got.Day() != 29 {
		t.Fatalf("expected leap february end, got %s", got.Format(time.DateOnly))
	}
	if got := EndOfYear(day); !got.Equal(Date(2021, time.December, 31)) {
		t.Fatalf("unexpected end of year: %s", got.Format(time.DateOnly))
	}
	if ends := QuarterEnds(2021); !ends[1].Equal(EndOfQuarter(day)) {
		t.Fatalf("quarter ends disagree: %s", ends[1].Format(time.DateOnly))
	}
}

// TestBetweenIsExclusive проверяет разницу между Between и Within.
func TestBetweenIsExclusive(t *testing.T) {
	start := Date(2021, time.September, 1)
	end := Date(2021, time.September, 30)

	if Between(start, start, end) || Between(end, start, end) {
		t.Fatal("expected Between to exclude both ends")
	}
	if !Within(start, start, end) || !Within(end, start, end) {
		t.Fatal("expected Within to include both ends")
	}
	if !Between(Date(2021, time.September, 15), start, end) {
		t.Fatal("expected mid-month date to be between")
	}
}
