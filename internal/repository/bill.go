package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

type BillRepository struct {
	db *pgxpool.Pool
}

const billColumns = `id, household_id, name, amount, frequency, interval_count, initial_date, end_date, unavoidable, created_at, updated_at`

// NewBillRepository создает репозиторий счетов.
func NewBillRepository(db *pgxpool.Pool) *BillRepository {
	return &BillRepository{db: db}
}

// List возвращает счета домохозяйства.
func (r *BillRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.Bill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+billColumns+`
		 FROM bills
		 WHERE household_id = $1
		 ORDER BY initial_date, name`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]models.Bill, 0)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bills, nil
}

// Create сохраняет новый счет.
func (r *BillRepository) Create(ctx context.Context, bill models.Bill) (models.Bill, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO bills (household_id, name, amount, frequency, interval_count, initial_date, end_date, unavoidable)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+billColumns,
		bill.HouseholdID, bill.Name, bill.Amount, bill.Frequency, bill.Interval, bill.InitialDate, bill.EndDate, bill.Unavoidable,
	)

	return scanBill(row)
}

// Update обновляет счет домохозяйства.
func (r *BillRepository) Update(ctx context.Context, bill models.Bill) (models.Bill, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE bills
		 SET name = $3, amount = $4, frequency = $5, interval_count = $6, initial_date = $7, end_date = $8, unavoidable = $9, updated_at = NOW()
		 WHERE id = $1 AND household_id = $2
		 RETURNING `+billColumns,
		bill.ID, bill.HouseholdID, bill.Name, bill.Amount, bill.Frequency, bill.Interval, bill.InitialDate, bill.EndDate, bill.Unavoidable,
	)

	updated, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет счет домохозяйства.
func (r *BillRepository) Delete(ctx context.Context, householdID, billID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bills WHERE id = $1 AND household_id = $2`, billID, householdID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanBill(row pgx.Row) (models.Bill, error) {
	var bill models.Bill
	err := row.Scan(
		&bill.ID,
		&bill.HouseholdID,
		&bill.Name,
		&bill.Amount,
		&bill.Frequency,
		&bill.Interval,
		&bill.InitialDate,
		&bill.EndDate,
		&bill.Unavoidable,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	return bill, err
}
