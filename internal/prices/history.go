package prices

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// QuoteStore хранит последние полученные котировки.
type QuoteStore interface {
	SaveQuote(ctx context.Context, quote models.Quote) error
	LatestQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// HistorySource сохраняет успешные котировки и при сбое основного источника
// возвращает последнюю сохраненную цену.
type HistorySource struct {
	primary Source
	store   QuoteStore
	logger  *slog.Logger
	now     func() time.Time
}

// WithHistory оборачивает источник хранилищем котировок.
func WithHistory(primary Source, store QuoteStore, logger *slog.Logger) *HistorySource {
	if logger == nil {
		logger = slog.Default()
	}

	return &HistorySource{
		primary: primary,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Price запрашивает цену у основного источника, а при ошибке читает историю.
func (s *HistorySource) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)

	price, err := s.primary.Price(ctx, symbol)
	if err == nil {
		quote := models.Quote{Symbol: symbol, Price: price, FetchedAt: s.now().UTC()}
		if saveErr := s.store.SaveQuote(ctx, quote); saveErr != nil {
			s.logger.Warn("failed to save quote", slog.String("symbol", symbol), slog.String("error", saveErr.Error()))
		}
		return price, nil
	}

	if IsFatal(err) {
		return decimal.Zero, err
	}

	if !errors.Is(err, ErrUnavailable) {
		s.logger.Debug("quote lookup failed, using history", slog.String("symbol", symbol), slog.String("error", err.Error()))
	}

	quote, storeErr := s.store.LatestQuote(ctx, symbol)
	if storeErr != nil {
		return decimal.Zero, ErrUnavailable
	}

	return quote.Price, nil
}
