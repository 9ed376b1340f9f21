package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

type InvestmentRepository struct {
	db *pgxpool.Pool
}

const investmentColumns = `id, household_id, name, symbol, shares, cost_basis_per_share, margin_debt, margin_interest_rate, created_at, updated_at`

// NewInvestmentRepository создает репозиторий инвестиций.
func NewInvestmentRepository(db *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// List возвращает позиции домохозяйства.
func (r *InvestmentRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.Investment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+investmentColumns+`
		 FROM investments
		 WHERE household_id = $1
		 ORDER BY symbol, name`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := make([]models.Investment, 0)
	for rows.Next() {
		investment, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, investment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return investments, nil
}

// Create сохраняет новую позицию.
func (r *InvestmentRepository) Create(ctx context.Context, investment models.Investment) (models.Investment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO investments (household_id, name, symbol, shares, cost_basis_per_share, margin_debt, margin_interest_rate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+investmentColumns,
		investment.HouseholdID, investment.Name, investment.Symbol, investment.Shares,
		investment.CostBasisPerShare, investment.MarginDebt, investment.MarginInterestRate,
	)

	return scanInvestment(row)
}

// Update обновляет позицию домохозяйства.
func (r *InvestmentRepository) Update(ctx context.Context, investment models.Investment) (models.Investment, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE investments
		 SET name = $3, symbol = $4, shares = $5, cost_basis_per_share = $6, margin_debt = $7, margin_interest_rate = $8, updated_at = NOW()
		 WHERE id = $1 AND household_id = $2
		 RETURNING `+investmentColumns,
		investment.ID, investment.HouseholdID, investment.Name, investment.Symbol, investment.Shares,
		investment.CostBasisPerShare, investment.MarginDebt, investment.MarginInterestRate,
	)

	updated, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет позицию домохозяйства.
func (r *InvestmentRepository) Delete(ctx context.Context, householdID, investmentID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM investments WHERE id = $1 AND household_id = $2`, investmentID, householdID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanInvestment(row pgx.Row) (models.Investment, error) {
	var investment models.Investment
	err := row.Scan(
		&investment.ID,
		&investment.HouseholdID,
		&investment.Name,
		&investment.Symbol,
		&investment.Shares,
		&investment.CostBasisPerShare,
		&investment.MarginDebt,
		&investment.MarginInterestRate,
		&investment.CreatedAt,
		&investment.UpdatedAt,
	)
	return investment, err
}
