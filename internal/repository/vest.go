package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// VestScheduleRepository хранит графики вестинга акций.
type VestScheduleRepository struct {
	db *pgxpool.Pool
}

// NewVestScheduleRepository создает репозиторий графиков вестинга.
func NewVestScheduleRepository(db *pgxpool.Pool) *VestScheduleRepository {
	return &VestScheduleRepository{db: db}
}

// List возвращает графики домохозяйства вместе с вестингами.
func (r *VestScheduleRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.VestSchedule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, household_id, name, created_at
		 FROM vest_schedules
		 WHERE household_id = $1
		 ORDER BY created_at`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.VestSchedule, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var schedule models.VestSchedule
		if err := rows.Scan(&schedule.ID, &schedule.HouseholdID, &schedule.Name, &schedule.CreatedAt); err != nil {
			return nil, err
		}
		schedule.Vests = make([]models.ScheduledStockVest, 0)
		index[schedule.ID] = len(schedules)
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(schedules) == 0 {
		return schedules, nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	for _, schedule := range schedules {
		ids = append(ids, schedule.ID)
	}

	vestRows, err := r.db.Query(ctx,
		`SELECT id, schedule_id, name, symbol, shares, cost_basis_per_share, tax_percentage, vest_date
		 FROM scheduled_vests
		 WHERE schedule_id = ANY($1)
		 ORDER BY vest_date, name`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer vestRows.Close()

	for vestRows.Next() {
		var vest models.ScheduledStockVest
		var scheduleID uuid.UUID
		err := vestRows.Scan(&vest.ID, &scheduleID, &vest.Name, &vest.Symbol, &vest.Shares, &vest.CostBasisPerShare, &vest.TaxPercentage, &vest.Date)
		if err != nil {
			return nil, err
		}

		if i, ok := index[scheduleID]; ok {
			schedules[i].Vests = append(schedules[i].Vests, vest)
		}
	}

	if err := vestRows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

// Create создает график с начальным набором вестингов.
func (r *VestScheduleRepository) Create(ctx context.Context, householdID uuid.UUID, name string, vests []models.ScheduledStockVest) (models.VestSchedule, error) {
	schedule := models.VestSchedule{Vests: make([]models.ScheduledStockVest, 0, len(vests))}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return schedule, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO vest_schedules (household_id, name)
		 VALUES ($1, $2)
		 RETURNING id, household_id, name, created_at`,
		householdID, name,
	).Scan(&schedule.ID, &schedule.HouseholdID, &schedule.Name, &schedule.CreatedAt)
	if err != nil {
		return schedule, err
	}

	for _, vest := range vests {
		created, err := insertVest(ctx, tx, schedule.ID, vest)
		if err != nil {
			return schedule, err
		}
		schedule.Vests = append(schedule.Vests, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return schedule, err
	}

	return schedule, nil
}

// Delete удаляет график вместе с вестингами.
func (r *VestScheduleRepository) Delete(ctx context.Context, householdID, scheduleID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM vest_schedules WHERE id = $1 AND household_id = $2`, scheduleID, householdID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVest добавляет вестинг в график домохозяйства.
func (r *VestScheduleRepository) AddVest(ctx context.Context, householdID, scheduleID uuid.UUID, vest models.ScheduledStockVest) (models.ScheduledStockVest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return vest, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := ensureOwned(ctx, tx, "vest_schedules", householdID, scheduleID); err != nil {
		return vest, err
	}

	created, err := insertVest(ctx, tx, scheduleID, vest)
	if err != nil {
		return vest, err
	}

	if err := tx.Commit(ctx); err != nil {
		return vest, err
	}

	return created, nil
}

// DeleteVest удаляет вестинг из графика домохозяйства.
func (r *VestScheduleRepository) DeleteVest(ctx context.Context, householdID, scheduleID, vestID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM scheduled_vests v
		 USING vest_schedules s
		 WHERE v.id = $1 AND v.schedule_id = $2 AND s.id = v.schedule_id AND s.household_id = $3`,
		vestID, scheduleID, householdID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var one = decimal.NewFromInt(1)

func insertVest(ctx context.Context, tx pgx.Tx, scheduleID uuid.UUID, vest models.ScheduledStockVest) (models.ScheduledStockVest, error) {
	if strings.TrimSpace(vest.Symbol) == "" || vest.Shares.IsNegative() ||
		vest.TaxPercentage.IsNegative() || vest.TaxPercentage.GreaterThan(one) {
		return vest, ErrInvalid
	}

	var created models.ScheduledStockVest
	err := tx.QueryRow(ctx,
		`INSERT INTO scheduled_vests (schedule_id, name, symbol, shares, cost_basis_per_share, tax_percentage, vest_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, name, symbol, shares, cost_basis_per_share, tax_percentage, vest_date`,
		scheduleID, vest.Name, strings.ToUpper(strings.TrimSpace(vest.Symbol)), vest.Shares, vest.CostBasisPerShare, vest.TaxPercentage, vest.Date,
	).Scan(&created.ID, &created.Name, &created.Symbol, &created.Shares, &created.CostBasisPerShare, &created.TaxPercentage, &created.Date)

	return created, err
}
