package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/notifications"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
)

// Change называет коллекцию, изменение которой требует пересчета.
type Change string

const (
	ChangeBills            Change = "bills"
	ChangeIncomes          Change = "incomes"
	ChangeDebts            Change = "debts"
	ChangeAccounts         Change = "accounts"
	ChangeInvestments      Change = "investments"
	ChangePaymentSchedules Change = "payment_schedules"
	ChangeVestSchedules    Change = "vest_schedules"
	ChangeEndDate          Change = "end_date"
	ChangeRefresh          Change = "refresh"
)

const defaultHorizonMonths = 12

// Source отдает текущий снимок коллекций домохозяйства.
type Source interface {
	Snapshot(ctx context.Context, householdID uuid.UUID) (models.Snapshot, error)
}

// Publisher доставляет результаты подписчикам.
type Publisher interface {
	Publish(householdID uuid.UUID, event notifications.Event)
}

type subscriberLister interface {
	Households() []uuid.UUID
}

type Options struct {
	Debounce      time.Duration
	HorizonMonths int
	Concurrency   int
}

type household struct {
	run sync.Mutex

	endDate time.Time
	latest  *models.CalculationResult
	timer   *time.Timer
	pending []Change
	// generation отличает последний запланированный таймер от остановленных.
	generation uint64
}

// Service хранит дату окончания прогноза и последний результат каждого
// домохозяйства, пересчитывает итог после изменений и публикует его.
// Проходы одного домохозяйства выполняются последовательно.
type Service struct {
	engine    *Engine
	source    Source
	publisher Publisher
	logger    *slog.Logger
	options   Options
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	households map[uuid.UUID]*household
}

// NewService создает сервис прогноза.
func NewService(engine *Engine, source Source, publisher Publisher, logger *slog.Logger, options Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if options.HorizonMonths <= 0 {
		options.HorizonMonths = defaultHorizonMonths
	}
	if options.Concurrency <= 0 {
		options.Concurrency = defaultConcurrency
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		engine:     engine,
		source:     source,
		publisher:  publisher,
		logger:     logger,
		options:    options,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		households: make(map[uuid.UUID]*household),
	}
}

// Notify сообщает об изменении коллекции. Серия изменений в пределах
// интервала debounce приводит к одному пересчету.
func (s *Service) Notify(householdID uuid.UUID, change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	h := s.householdLocked(householdID)
	h.pending = append(h.pending, change)
	if h.timer != nil {
		h.timer.Stop()
	}
	h.generation++
	generation := h.generation
	h.timer = time.AfterFunc(s.options.Debounce, func() {
		s.flush(householdID, generation)
	})
}

func (s *Service) flush(householdID uuid.UUID, generation uint64) {
	s.mu.Lock()
	h := s.householdLocked(householdID)
	if s.closed || h.generation != generation {
		s.mu.Unlock()
		return
	}

	changes := h.pending
	h.pending = nil
	h.timer = nil

	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.logger.Debug("projection recalculation triggered",
		slog.String("household_id", householdID.String()),
		slog.Int("changes", len(changes)),
	)

	// Ошибка уже записана в лог, предыдущий результат остается актуальным.
	_, _ = s.Recalculate(s.ctx, householdID)
}

// Recalculate выполняет проход по окну [сегодня, дата окончания] и
// публикует результат. При ошибке публикация не выполняется и последний
// результат не меняется.
func (s *Service) Recalculate(ctx context.Context, householdID uuid.UUID) (models.CalculationResult, error) {
	s.mu.Lock()
	h := s.householdLocked(householdID)
	s.mu.Unlock()

	h.run.Lock()
	defer h.run.Unlock()

	window := s.window(householdID)
	result, err := s.calculate(ctx, householdID, window)
	if err != nil {
		s.logger.Error("projection recalculation failed",
			slog.String("household_id", householdID.String()),
			slog.String("error", err.Error()),
		)
		return models.CalculationResult{}, err
	}

	s.mu.Lock()
	h.latest = &result
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(householdID, notifications.Event{
			Type: notifications.EventProjectionUpdated,
			Data: result,
		})
	}

	s.logger.Info("projection updated",
		slog.String("household_id", householdID.String()),
		slog.String("net_position", result.NetPosition.StringFixed(2)),
	)

	return result, nil
}

// Request рассчитывает итог за произвольное окно без публикации.
func (s *Service) Request(ctx context.Context, householdID uuid.UUID, start, end time.Time) (models.CalculationResult, error) {
	if period.Normalize(end).Before(period.Normalize(start)) {
		return models.CalculationResult{}, ErrInvalidWindow
	}

	return s.calculate(ctx, householdID, Window{Start: start, End: end})
}

// SetEndDate меняет дату окончания прогноза и запускает пересчет.
func (s *Service) SetEndDate(householdID uuid.UUID, end time.Time) error {
	end = period.Normalize(end)
	if end.Before(s.today()) {
		return ErrInvalidWindow
	}

	s.mu.Lock()
	s.householdLocked(householdID).endDate = end
	s.mu.Unlock()

	s.Notify(householdID, ChangeEndDate)
	return nil
}

// EndDate возвращает дату окончания прогноза домохозяйства.
func (s *Service) EndDate(householdID uuid.UUID) time.Time {
	return s.window(householdID).End
}

// Latest возвращает последний опубликованный результат.
func (s *Service) Latest(householdID uuid.UUID) (models.CalculationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.households[householdID]
	if !ok || h.latest == nil {
		return models.CalculationResult{}, false
	}

	return *h.latest, true
}

// RefreshAll пересчитывает все известные домохозяйства со свежими ценами.
func (s *Service) RefreshAll(ctx context.Context) error {
	ids := s.knownHouseholds()
	if len(ids) == 0 {
		return nil
	}

	var mu sync.Mutex
	var errs []error

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.options.Concurrency)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			if _, err := s.Recalculate(groupCtx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("household %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	s.logger.Info("projection refresh finished",
		slog.Int("households", len(ids)),
		slog.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}

// Close останавливает отложенные пересчеты и дожидается текущих.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	for _, h := range s.households {
		if h.timer != nil {
			h.timer.Stop()
			h.timer = nil
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Service) calculate(ctx context.Context, householdID uuid.UUID, window Window) (models.CalculationResult, error) {
	snapshot, err := s.source.Snapshot(ctx, householdID)
	if err != nil {
		return models.CalculationResult{}, fmt.Errorf("load snapshot: %w", err)
	}
	snapshot.HouseholdID = householdID

	return s.engine.Calculate(ctx, snapshot, window)
}

func (s *Service) window(householdID uuid.UUID) Window {
	start := s.today()
	end := period.AddMonths(start, s.options.HorizonMonths)

	s.mu.Lock()
	if h, ok := s.households[householdID]; ok && !h.endDate.IsZero() {
		end = h.endDate
	}
	s.mu.Unlock()

	if end.Before(start) {
		end = start
	}

	return Window{Start: start, End: end}
}

func (s *Service) knownHouseholds() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})

	s.mu.Lock()
	for id := range s.households {
		seen[id] = struct{}{}
	}
	s.mu.Unlock()

	if lister, ok := s.publisher.(subscriberLister); ok {
		for _, id := range lister.Households() {
			seen[id] = struct{}{}
		}
	}

	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	return ids
}

func (s *Service) householdLocked(householdID uuid.UUID) *household {
	h, ok := s.households[householdID]
	if !ok {
		h = &household{}
		s.households[householdID] = h
	}

	return h
}

func (s *Service) today() time.Time {
	return period.Normalize(s.now())
}
