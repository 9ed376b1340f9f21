package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
)

// SnapshotRepository собирает все коллекции домохозяйства для расчета.
type SnapshotRepository struct {
	bills            *BillRepository
	incomes          *IncomeRepository
	ledger           *LedgerRepository
	investments      *InvestmentRepository
	paymentSchedules *PaymentScheduleRepository
	vestSchedules    *VestScheduleRepository
}

// NewSnapshotRepository создает репозиторий снимков.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{
		bills:            NewBillRepository(db),
		incomes:          NewIncomeRepository(db),
		ledger:           NewLedgerRepository(db),
		investments:      NewInvestmentRepository(db),
		paymentSchedules: NewPaymentScheduleRepository(db),
		vestSchedules:    NewVestScheduleRepository(db),
	}
}

// Snapshot читает коллекции домохозяйства параллельно.
func (r *SnapshotRepository) Snapshot(ctx context.Context, householdID uuid.UUID) (models.Snapshot, error) {
	snapshot := models.Snapshot{HouseholdID: householdID}

	var debts, accounts []models.LedgerEntry

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		snapshot.Bills, err = r.bills.List(groupCtx, householdID)
		return wrap("bills", err)
	})
	group.Go(func() (err error) {
		snapshot.Incomes, err = r.incomes.List(groupCtx, householdID)
		return wrap("incomes", err)
	})
	group.Go(func() (err error) {
		debts, err = r.ledger.List(groupCtx, householdID, models.LedgerKindDebt)
		return wrap("debts", err)
	})
	group.Go(func() (err error) {
		accounts, err = r.ledger.List(groupCtx, householdID, models.LedgerKindAccount)
		return wrap("accounts", err)
	})
	group.Go(func() (err error) {
		snapshot.Investments, err = r.investments.List(groupCtx, householdID)
		return wrap("investments", err)
	})
	group.Go(func() (err error) {
		snapshot.PaymentSchedules, err = r.paymentSchedules.List(groupCtx, householdID)
		return wrap("payment schedules", err)
	})
	group.Go(func() (err error) {
		snapshot.VestSchedules, err = r.vestSchedules.List(groupCtx, householdID)
		return wrap("vest schedules", err)
	})

	if err := group.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	snapshot.Debts = make([]models.Debt, 0, len(debts))
	for _, entry := range debts {
		snapshot.Debts = append(snapshot.Debts, entry.Debt())
	}
	snapshot.Accounts = make([]models.Account, 0, len(accounts))
	for _, entry := range accounts {
		snapshot.Accounts = append(snapshot.Accounts, entry.Account())
	}

	return snapshot, nil
}

func wrap(collection string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", collection, err)
	}

	return nil
}
