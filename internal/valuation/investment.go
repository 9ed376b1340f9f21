package valuation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
	"github.com/jfrancis537/budget-oracle-sub000/internal/prices"
)

// marginDayCount задает базу начисления процентов по марже.
var marginDayCount = decimal.NewFromInt(360)

var hundred = decimal.NewFromInt(100)

type HoldingValue struct {
	Value          decimal.Decimal
	CostBasis      decimal.Decimal
	UnrealizedLoss decimal.Decimal
	PriceKnown     bool
}

// Valuator оценивает позиции и вестинги по текущим ценам.
type Valuator struct {
	prices prices.Source
	logger *slog.Logger
}

// NewValuator создает оценщик поверх источника цен.
func NewValuator(source prices.Source, logger *slog.Logger) *Valuator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Valuator{prices: source, logger: logger}
}

// ValueHolding оценивает позицию. Без цены используется стоимость покупки.
// Ошибка возвращается только при отмене контекста.
func (v *Valuator) ValueHolding(ctx context.Context, investment models.Investment) (HoldingValue, error) {
	price, known, err := v.price(ctx, investment.Symbol)
	if err != nil {
		return HoldingValue{}, err
	}
	if !known {
		price = investment.CostBasisPerShare
	}

	value := price.Mul(investment.Shares).Sub(investment.MarginDebt)
	costBasis := CostBasis(investment)

	loss := decimal.Zero
	if costBasis.GreaterThan(value) {
		loss = costBasis.Sub(value)
	}

	return HoldingValue{
		Value:          value,
		CostBasis:      costBasis,
		UnrealizedLoss: loss,
		PriceKnown:     known,
	}, nil
}

// ValueVest оценивает вестинг, если его дата попадает в [start, end].
func (v *Valuator) ValueVest(ctx context.Context, vest models.ScheduledStockVest, start, end time.Time) (decimal.Decimal, error) {
	if !period.Within(vest.Date, start, end) {
		return decimal.Zero, nil
	}

	price, known, err := v.price(ctx, vest.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !known {
		price = vest.CostBasisPerShare
	}

	return VestValue(vest, price), nil
}

// VestValue возвращает стоимость вестинга после налога.
func VestValue(vest models.ScheduledStockVest, price decimal.Decimal) decimal.Decimal {
	return vest.Shares.Mul(price).Mul(decimal.NewFromInt(1).Sub(vest.TaxPercentage))
}

// CostBasis возвращает стоимость покупки позиции за вычетом маржинального долга.
func CostBasis(investment models.Investment) decimal.Decimal {
	return investment.CostBasisPerShare.Mul(investment.Shares).Sub(investment.MarginDebt)
}

// MarginInterest возвращает проценты по марже, начисленные за окно.
func MarginInterest(investment models.Investment, start, end time.Time) decimal.Decimal {
	if investment.MarginDebt.IsZero() || investment.MarginInterestRate.IsZero() {
		return decimal.Zero
	}

	days := period.DaysBetween(start, end)
	if days <= 0 {
		return decimal.Zero
	}

	daily := investment.MarginInterestRate.Div(hundred).Mul(investment.MarginDebt).Div(marginDayCount)
	return daily.Mul(decimal.NewFromInt(int64(days)))
}

func (v *Valuator) price(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	if v.prices == nil || prices.NormalizeSymbol(symbol) == "" {
		return decimal.Zero, false, nil
	}

	price, err := v.prices.Price(ctx, symbol)
	if err == nil {
		return price, true, nil
	}

	if prices.IsFatal(err) {
		return decimal.Zero, false, err
	}

	if !errors.Is(err, prices.ErrUnavailable) {
		v.logger.Debug("price lookup failed, using cost basis",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	}

	return decimal.Zero, false, nil
}
