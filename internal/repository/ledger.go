package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// LedgerRepository хранит долги и остатки на счетах в одной таблице.
type LedgerRepository struct {
	db *pgxpool.Pool
}

const ledgerColumns = `id, household_id, kind, name, amount, created_at, updated_at`

// NewLedgerRepository создает репозиторий долгов и счетов.
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// List возвращает записи домохозяйства указанного вида.
func (r *LedgerRepository) List(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind) ([]models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ledgerColumns+`
		 FROM ledger_entries
		 WHERE household_id = $1 AND kind = $2
		 ORDER BY name`,
		householdID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Create сохраняет новую запись.
func (r *LedgerRepository) Create(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, name string, amount decimal.Decimal) (models.LedgerEntry, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO ledger_entries (household_id, kind, name, amount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+ledgerColumns,
		householdID, kind, name, amount,
	)

	return scanLedgerEntry(row)
}

// Update обновляет запись домохозяйства указанного вида.
func (r *LedgerRepository) Update(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, entryID uuid.UUID, name string, amount decimal.Decimal) (models.LedgerEntry, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE ledger_entries
		 SET name = $4, amount = $5, updated_at = NOW()
		 WHERE id = $1 AND household_id = $2 AND kind = $3
		 RETURNING `+ledgerColumns,
		entryID, householdID, kind, name, amount,
	)

	entry, err := scanLedgerEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, ErrNotFound
		}
		return entry, err
	}

	return entry, nil
}

// Delete удаляет запись домохозяйства указанного вида.
func (r *LedgerRepository) Delete(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, entryID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM ledger_entries WHERE id = $1 AND household_id = $2 AND kind = $3`,
		entryID, householdID, kind,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanLedgerEntry(row pgx.Row) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := row.Scan(&entry.ID, &entry.HouseholdID, &entry.Kind, &entry.Name, &entry.Amount, &entry.CreatedAt, &entry.UpdatedAt)
	return entry, err
}
