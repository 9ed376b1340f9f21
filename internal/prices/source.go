package prices

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnavailable означает, что цена для символа неизвестна.
var ErrUnavailable = errors.New("price unavailable")

// ErrSourcePanic оборачивает панику источника цен.
var ErrSourcePanic = errors.New("price source panicked")

// Source возвращает последнюю известную цену бумаги.
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SourceFunc адаптирует функцию к интерфейсу Source.
type SourceFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

func (f SourceFunc) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return f(ctx, symbol)
}

// NormalizeSymbol приводит тикер к каноническому виду.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
