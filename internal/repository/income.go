package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

type IncomeRepository struct {
	db *pgxpool.Pool
}

const incomeColumns = `id, household_id, name, amount, frequency, pays_on_weekends, day_of_month, start_date, created_at, updated_at`

// NewIncomeRepository создает репозиторий источников дохода.
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// List возвращает источники дохода домохозяйства.
func (r *IncomeRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.IncomeSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+incomeColumns+`
		 FROM income_sources
		 WHERE household_id = $1
		 ORDER BY name`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]models.IncomeSource, 0)
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incomes, nil
}

// Create сохраняет новый источник дохода.
func (r *IncomeRepository) Create(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO income_sources (household_id, name, amount, frequency, pays_on_weekends, day_of_month, start_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+incomeColumns,
		income.HouseholdID, income.Name, income.Amount, income.Frequency, income.PaysOnWeekends, income.DayOfMonth, income.StartDate,
	)

	return scanIncome(row)
}

// Update обновляет источник дохода домохозяйства.
func (r *IncomeRepository) Update(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE income_sources
		 SET name = $3, amount = $4, frequency = $5, pays_on_weekends = $6, day_of_month = $7, start_date = $8, updated_at = NOW()
		 WHERE id = $1 AND household_id = $2
		 RETURNING `+incomeColumns,
		income.ID, income.HouseholdID, income.Name, income.Amount, income.Frequency, income.PaysOnWeekends, income.DayOfMonth, income.StartDate,
	)

	updated, err := scanIncome(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет источник дохода домохозяйства.
func (r *IncomeRepository) Delete(ctx context.Context, householdID, incomeID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM income_sources WHERE id = $1 AND household_id = $2`, incomeID, householdID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanIncome(row pgx.Row) (models.IncomeSource, error) {
	var income models.IncomeSource
	err := row.Scan(
		&income.ID,
		&income.HouseholdID,
		&income.Name,
		&income.Amount,
		&income.Frequency,
		&income.PaysOnWeekends,
		&income.DayOfMonth,
		&income.StartDate,
		&income.CreatedAt,
		&income.UpdatedAt,
	)
	return income, err
}
