package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// QuoteRepository хранит последнюю полученную цену каждого символа.
type QuoteRepository struct {
	db *pgxpool.Pool
}

// NewQuoteRepository создает репозиторий котировок.
func NewQuoteRepository(db *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// SaveQuote сохраняет котировку, если она не старше сохраненной.
func (r *QuoteRepository) SaveQuote(ctx context.Context, quote models.Quote) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO price_quotes (symbol, price, fetched_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (symbol) DO UPDATE
		 SET price = EXCLUDED.price, fetched_at = EXCLUDED.fetched_at
		 WHERE price_quotes.fetched_at <= EXCLUDED.fetched_at`,
		quote.Symbol, quote.Price, quote.FetchedAt,
	)
	return err
}

// LatestQuote возвращает последнюю сохраненную котировку символа.
func (r *QuoteRepository) LatestQuote(ctx context.Context, symbol string) (models.Quote, error) {
	var quote models.Quote
	err := r.db.QueryRow(ctx,
		`SELECT symbol, price, fetched_at FROM price_quotes WHERE symbol = $1`,
		symbol,
	).Scan(&quote.Symbol, &quote.Price, &quote.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quote, ErrNotFound
		}
		return quote, err
	}

	return quote, nil
}
