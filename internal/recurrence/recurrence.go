package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
)

// Kind задает единицу повторения счета.
type Kind string

const (
	Daily   Kind = "daily"
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
	Annual  Kind = "annual"
)

// Rule описывает повторение счета: каждые Interval единиц Kind.
type Rule struct {
	Kind     Kind `json:"kind"`
	Interval int  `json:"interval"`
}

// PayFrequency задает частоту выплат источника дохода.
type PayFrequency string

const (
	PayWeekly            PayFrequency = "weekly"
	PayBiweeklyEven      PayFrequency = "biweekly_even"
	PayBiweeklyOdd       PayFrequency = "biweekly_odd"
	PaySemiMonthlyStart  PayFrequency = "semi_monthly_start"
	PaySemiMonthlyMiddle PayFrequency = "semi_monthly_middle"
	PayMonthly           PayFrequency = "monthly"
	PayQuarterly         PayFrequency = "quarterly"
	PayAnnual            PayFrequency = "annual"
)

var kinds = []Kind{Daily, Weekly, Monthly, Annual}

var payFrequencies = []PayFrequency{
	PayWeekly,
	PayBiweeklyEven,
	PayBiweeklyOdd,
	PaySemiMonthlyStart,
	PaySemiMonthlyMiddle,
	PayMonthly,
	PayQuarterly,
	PayAnnual,
}

// ParseKind разбирает единицу повторения без учета регистра.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, kind := range kinds {
		if kind == normalized {
			return kind, true
		}
	}

	return "", false
}

// ParsePayFrequency разбирает частоту выплат без учета регистра.
func ParsePayFrequency(value string) (PayFrequency, bool) {
	normalized := PayFrequency(strings.ToLower(strings.TrimSpace(value)))
	for _, frequency := range payFrequencies {
		if frequency == normalized {
			return frequency, true
		}
	}

	return "", false
}

// Unit возвращает календарную единицу шага.
func (k Kind) Unit() period.Unit {
	switch k {
	case Daily:
		return period.UnitDay
	case Weekly:
		return period.UnitWeek
	case Monthly:
		return period.UnitMonth
	case Annual:
		return period.UnitYear
	default:
		return ""
	}
}

// Validate проверяет правило. Движок расчетов считает правило уже проверенным.
func (r Rule) Validate() error {
	if _, ok := ParseKind(string(r.Kind)); !ok {
		return fmt.Errorf("unknown recurrence kind %q", r.Kind)
	}
	if r.Interval < 1 {
		return fmt.Errorf("recurrence interval must be at least 1, got %d", r.Interval)
	}

	return nil
}

// Step возвращает дату k-го повторения, отсчитанного от anchor.
func (r Rule) Step(anchor time.Time, k int) time.Time {
	return period.Add(anchor, r.Kind.Unit(), k*r.Interval)
}

// IsBiweekly сообщает, зависит ли частота от четности недели.
func (f PayFrequency) IsBiweekly() bool {
	return f == PayBiweeklyEven || f == PayBiweeklyOdd
}

// IsSemiMonthly сообщает, платится ли доход дважды в месяц.
func (f PayFrequency) IsSemiMonthly() bool {
	return f == PaySemiMonthlyStart || f == PaySemiMonthlyMiddle
}
