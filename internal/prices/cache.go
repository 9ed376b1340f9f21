package prices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	price decimal.Decimal
	err   error
}

// Cache запоминает цены на время одного прохода расчета: каждый символ
// запрашивается у источника не больше одного раза, в том числе при
// конкурентных обращениях. Неудачный ответ тоже запоминается.
// Кэш не переиспользуется между проходами.
type Cache struct {
	source Source
	group  singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache создает кэш цен поверх источника.
func NewCache(source Source) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[string]cacheEntry),
	}
}

// Price возвращает цену из кэша или запрашивает ее у источника.
func (c *Cache) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return decimal.Zero, ErrUnavailable
	}

	if entry, ok := c.lookup(symbol); ok {
		return entry.price, entry.err
	}

	value, err, _ := c.group.Do(symbol, func() (interface{}, error) {
		if entry, ok := c.lookup(symbol); ok {
			return entry.price, entry.err
		}

		if c.source == nil {
			c.store(symbol, cacheEntry{err: ErrUnavailable})
			return decimal.Zero, ErrUnavailable
		}

		price, err := c.fetch(ctx, symbol)
		if err == nil || !IsFatal(err) {
			c.store(symbol, cacheEntry{price: price, err: err})
		}
		return price, err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return value.(decimal.Decimal), nil
}

// Len возвращает число запомненных символов.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, symbol string) (price decimal.Decimal, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %s: %v", ErrSourcePanic, symbol, recovered)
		}
	}()

	return c.source.Price(ctx, symbol)
}

func (c *Cache) lookup(symbol string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	return entry, ok
}

func (c *Cache) store(symbol string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbol] = entry
}

// IsFatal сообщает, должна ли ошибка прервать проход расчета вместо
// перехода на стоимость покупки.
func IsFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrSourcePanic)
}
