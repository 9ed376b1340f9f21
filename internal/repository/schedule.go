package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// PaymentScheduleRepository хранит графики разовых платежей.
type PaymentScheduleRepository struct {
	db *pgxpool.Pool
}

// NewPaymentScheduleRepository создает репозиторий графиков платежей.
func NewPaymentScheduleRepository(db *pgxpool.Pool) *PaymentScheduleRepository {
	return &PaymentScheduleRepository{db: db}
}

// List возвращает графики домохозяйства вместе с платежами.
func (r *PaymentScheduleRepository) List(ctx context.Context, householdID uuid.UUID) ([]models.PaymentSchedule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, household_id, name, created_at
		 FROM payment_schedules
		 WHERE household_id = $1
		 ORDER BY created_at`,
		householdID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.PaymentSchedule, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var schedule models.PaymentSchedule
		if err := rows.Scan(&schedule.ID, &schedule.HouseholdID, &schedule.Name, &schedule.CreatedAt); err != nil {
			return nil, err
		}
		schedule.Payments = make([]models.ScheduledPayment, 0)
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

	paymentRows, err := r.db.Query(ctx,
		`SELECT id, schedule_id, name, amount, payment_date
		 FROM scheduled_payments
		 WHERE schedule_id = ANY($1)
		 ORDER BY payment_date, name`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer paymentRows.Close()

	for paymentRows.Next() {
		var payment models.ScheduledPayment
		var scheduleID uuid.UUID
		if err := paymentRows.Scan(&payment.ID, &scheduleID, &payment.Name, &payment.Amount, &payment.Date); err != nil {
			return nil, err
		}

		if i, ok := index[scheduleID]; ok {
			schedules[i].Payments = append(schedules[i].Payments, payment)
		}
	}

	if err := paymentRows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

// Create создает график с начальным набором платежей.
func (r *PaymentScheduleRepository) Create(ctx context.Context, householdID uuid.UUID, name string, payments []models.ScheduledPayment) (models.PaymentSchedule, error) {
	schedule := models.PaymentSchedule{Payments: make([]models.ScheduledPayment, 0, len(payments))}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return schedule, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO payment_schedules (household_id, name)
		 VALUES ($1, $2)
		 RETURNING id, household_id, name, created_at`,
		householdID, name,
	).Scan(&schedule.ID, &schedule.HouseholdID, &schedule.Name, &schedule.CreatedAt)
	if err != nil {
		return schedule, err
	}

	for _, payment := range payments {
		created, err := insertPayment(ctx, tx, schedule.ID, payment)
		if err != nil {
			return schedule, err
		}
		schedule.Payments = append(schedule.Payments, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return schedule, err
	}

	return schedule, nil
}

// Delete удаляет график вместе с платежами.
func (r *PaymentScheduleRepository) Delete(ctx context.Context, householdID, scheduleID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM payment_schedules WHERE id = $1 AND household_id = $2`, scheduleID, householdID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddPayment добавляет платеж в график домохозяйства.
func (r *PaymentScheduleRepository) AddPayment(ctx context.Context, householdID, scheduleID uuid.UUID, payment models.ScheduledPayment) (models.ScheduledPayment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return payment, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := ensureOwned(ctx, tx, "payment_schedules", householdID, scheduleID); err != nil {
		return payment, err
	}

	created, err := insertPayment(ctx, tx, scheduleID, payment)
	if err != nil {
		return payment, err
	}

	if err := tx.Commit(ctx); err != nil {
		return payment, err
	}

	return created, nil
}

// DeletePayment удаляет платеж из графика домохозяйства.
func (r *PaymentScheduleRepository) DeletePayment(ctx context.Context, householdID, scheduleID, paymentID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM scheduled_payments p
		 USING payment_schedules s
		 WHERE p.id = $1 AND p.schedule_id = $2 AND s.id = p.schedule_id AND s.household_id = $3`,
		paymentID, scheduleID, householdID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func insertPayment(ctx context.Context, tx pgx.Tx, scheduleID uuid.UUID, payment models.ScheduledPayment) (models.ScheduledPayment, error) {
	if strings.TrimSpace(payment.Name) == "" || payment.Amount.IsNegative() {
		return payment, ErrInvalid
	}

	var created models.ScheduledPayment
	err := tx.QueryRow(ctx,
		`INSERT INTO scheduled_payments (schedule_id, name, amount, payment_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, amount, payment_date`,
		scheduleID, payment.Name, payment.Amount, payment.Date,
	).Scan(&created.ID, &created.Name, &created.Amount, &created.Date)

	return created, err
}

// ensureOwned проверяет, что строка таблицы принадлежит домохозяйству.
// Имя таблицы передается только из кода репозитория.
func ensureOwned(ctx context.Context, tx pgx.Tx, table string, householdID, id uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1 AND household_id = $2)`,
		id, householdID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !exists {
		return ErrNotFound
	}

	return nil
}
