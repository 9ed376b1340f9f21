package prices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// TestCacheFetchesSymbolOnce проверяет, что символ запрашивается один раз за проход.
func TestCacheFetchesSymbolOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	source := SourceFunc(func(ctx context.Context, symbol string) (decimal.Decimal, error) {
		calls.Add(1)
		<-release
		return decimal.NewFromInt(42), nil
	})

	cache := NewCache(source)

	var wg sync.WaitGroup
	results := make([]decimal.Decimal, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price, err := cache.Price(context.Background(), " acme ")
			assert.NoError(t, err)
			results[i] = price
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	price, err := cache.Price(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, price.Equal(decimal.NewFromInt(42)))
	for _, result := range results {
		assert.True(t, result.Equal(decimal.NewFromInt(42)))
	}
	assert.Equal(t, 1, cache.Len())
}

// TestCacheRemembersFailures проверяет, что неудача тоже кэшируется.
func TestCacheRemembersFailures(t *testing.T) {
	var calls atomic.Int32
	source := SourceFunc(func(ctx context.Context, symbol string) (decimal.Decimal, error) {
		calls.Add(1)
		return decimal.Zero, ErrUnavailable
	})

	cache := NewCache(source)
	for i := 0; i < 3; i++ {
		_, err := cache.Price(context.Background(), "NOPE")
		require.ErrorIs(t, err, ErrUnavailable)
	}

	assert.Equal(t, int32(1), calls.Load())
}

// TestCacheDoesNotRememberCancellation проверяет, что отмена контекста не кэшируется.
func TestCacheDoesNotRememberCancellation(t *testing.T) {
	var calls atomic.Int32
	source := SourceFunc(func(ctx context.Context, symbol string) (decimal.Decimal, error) {
		if calls.Add(1) == 1 {
			return decimal.Zero, context.Canceled
		}
		return decimal.NewFromInt(7), nil
	})

	cache := NewCache(source)
	_, err := cache.Price(context.Background(), "ACME")
	require.ErrorIs(t, err, context.Canceled)

	price, err := cache.Price(context.Background(), "ACME")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(7)))
}

// TestCacheWithoutSource проверяет кэш без источника.
func TestCacheWithoutSource(t *testing.T) {
	_, err := NewCache(nil).Price(context.Background(), "ACME")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// TestHTTPSourcePrice проверяет разбор ответа API котировок.
func TestHTTPSourcePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		switch r.URL.Query().Get("symbol") {
		case "ACME":
			_, _ = w.Write([]byte(`{"symbol":"ACME","price":123.45}`))
		case "GONE":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down"}}`))
		}
	}))
	defer server.Close()

	source := NewHTTPSource("secret", server.URL+"/", time.Second, 0, 0)

	price, err := source.Price(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "123.45", price.String())

	_, err = source.Price(context.Background(), "GONE")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = source.Price(context.Background(), "DOWN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

type memoryQuoteStore struct {
	mu     sync.Mutex
	quotes map[string]models.Quote
}

func (s *memoryQuoteStore) SaveQuote(ctx context.Context, quote models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotes == nil {
		s.quotes = make(map[string]models.Quote)
	}
	s.quotes[quote.Symbol] = quote
	return nil
}

func (s *memoryQuoteStore) LatestQuote(ctx context.Context, symbol string) (models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, ok := s.quotes[symbol]
	if !ok {
		return models.Quote{}, errors.New("not found")
	}
	return quote, nil
}

// TestHistorySourceFallsBackToLastQuote проверяет использование последней известной цены.
func TestHistorySourceFallsBackToLastQuote(t *testing.T) {
	fail := false
	primary := SourceFunc(func(ctx context.Context, symbol string) (decimal.Decimal, error) {
		if fail {
			return decimal.Zero, errors.New("timeout")
		}
		return decimal.NewFromInt(10), nil
	})

	store := &memoryQuoteStore{}
	source := WithHistory(primary, store, nil)

	price, err := source.Price(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))
	assert.Contains(t, store.quotes, "ACME")

	fail = true
	price, err = source.Price(context.Background(), "ACME")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(10)))

	_, err = source.Price(context.Background(), "OTHER")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// TestCacheRecoversSourcePanic проверяет, что паника источника превращается в ошибку.
func TestCacheRecoversSourcePanic(t *testing.T) {
	source := SourceFunc(func(ctx context.Context, symbol string) (decimal.Decimal, error) {
		panic("feed exploded")
	})

	_, err := NewCache(source).Price(context.Background(), "ACME")
	require.ErrorIs(t, err, ErrSourcePanic)
	assert.True(t, IsFatal(err))
	assert.False(t, IsFatal(ErrUnavailable))
}
