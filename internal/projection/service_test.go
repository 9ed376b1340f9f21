package projection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/notifications"
	"github.com/jfrancis537/budget-oracle-sub000/internal/period"
)

type fakeSource struct {
	calls    atomic.Int32
	mu       sync.Mutex
	snapshot models.Snapshot
	err      error
}

func (s *fakeSource) Snapshot(ctx context.Context, householdID uuid.UUID) (models.Snapshot, error) {
	s.calls.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return models.Snapshot{}, s.err
	}
	return s.snapshot, nil
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

type recordingPublisher struct {
	events chan notifications.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan notifications.Event, 32)}
}

func (p *recordingPublisher) Publish(householdID uuid.UUID, event notifications.Event) {
	p.events <- event
}

func newTestService(t *testing.T, source Source, publisher Publisher, debounce time.Duration) *Service {
	t.Helper()

	service := NewService(NewEngine(nil, nil, 2), source, publisher, nil, Options{Debounce: debounce, HorizonMonths: 1})
	service.now = func() time.Time {
		return time.Date(2021, time.September, 1, 15, 30, 0, 0, time.UTC)
	}
	t.Cleanup(service.Close)

	return service
}

func sampleLedger() models.Snapshot {
	return models.Snapshot{
		Accounts: []models.Account{{ID: uuid.New(), Amount: dec("100")}},
		Debts:    []models.Debt{{ID: uuid.New(), Amount: dec("30")}},
	}
}

// TestServiceRecalculatePublishes проверяет публикацию результата пересчета.
func TestServiceRecalculatePublishes(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	publisher := newRecordingPublisher()
	service := newTestService(t, source, publisher, 0)
	householdID := uuid.New()

	result, err := service.Recalculate(context.Background(), householdID)
	require.NoError(t, err)

	assert.Equal(t, householdID, result.HouseholdID)
	assert.Equal(t, period.Date(2021, time.September, 1), result.Start)
	assert.Equal(t, period.Date(2021, time.October, 1), result.End)
	assert.True(t, result.NetPosition.Equal(dec("70")))

	event := <-publisher.events
	assert.Equal(t, notifications.EventProjectionUpdated, event.Type)

	latest, ok := service.Latest(householdID)
	require.True(t, ok)
	assert.True(t, latest.NetPosition.Equal(dec("70")))
}

// TestServiceKeepsPreviousResultOnFailure проверяет, что неудачный проход не публикуется.
func TestServiceKeepsPreviousResultOnFailure(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	publisher := newRecordingPublisher()
	service := newTestService(t, source, publisher, 0)
	householdID := uuid.New()

	first, err := service.Recalculate(context.Background(), householdID)
	require.NoError(t, err)
	<-publisher.events

	source.fail(errors.New("database is down"))
	_, err = service.Recalculate(context.Background(), householdID)
	require.Error(t, err)

	latest, ok := service.Latest(householdID)
	require.True(t, ok)
	assert.Equal(t, first.CalculatedAt, latest.CalculatedAt)
	assert.Empty(t, publisher.events)
}

// TestServiceNotifyDebounces проверяет, что серия изменений приводит к одному пересчету.
func TestServiceNotifyDebounces(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	publisher := newRecordingPublisher()
	service := newTestService(t, source, publisher, 50*time.Millisecond)
	householdID := uuid.New()

	for _, change := range []Change{ChangeBills, ChangeIncomes, ChangeDebts, ChangeAccounts, ChangeInvestments} {
		service.Notify(householdID, change)
	}

	select {
	case <-publisher.events:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a publication after debounce")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), source.calls.Load())
	assert.Empty(t, publisher.events)
}

// TestServiceSetEndDate проверяет смену даты окончания прогноза.
func TestServiceSetEndDate(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	publisher := newRecordingPublisher()
	service := newTestService(t, source, publisher, 0)
	householdID := uuid.New()

	assert.Equal(t, period.Date(2021, time.October, 1), service.EndDate(householdID))

	err := service.SetEndDate(householdID, period.Date(2021, time.August, 31))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	end := period.Date(2022, time.March, 31)
	require.NoError(t, service.SetEndDate(householdID, end))
	assert.Equal(t, end, service.EndDate(householdID))

	select {
	case event := <-publisher.events:
		result, ok := event.Data.(models.CalculationResult)
		require.True(t, ok)
		assert.Equal(t, end, result.End)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a publication after end date change")
	}
}

// TestServiceRequest проверяет расчет по запросу без публикации.
func TestServiceRequest(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	publisher := newRecordingPublisher()
	service := newTestService(t, source, publisher, 0)
	householdID := uuid.New()

	start, end := period.Date(2021, time.January, 1), period.Date(2021, time.December, 31)
	result, err := service.Request(context.Background(), householdID, start, end)
	require.NoError(t, err)
	assert.Equal(t, start, result.Start)
	assert.Equal(t, end, result.End)

	_, err = service.Request(context.Background(), householdID, end, start)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	assert.Empty(t, publisher.events)
	_, ok := service.Latest(householdID)
	assert.False(t, ok)
}

// TestServiceRefreshAll проверяет пересчет всех известных домохозяйств.
func TestServiceRefreshAll(t *testing.T) {
	source := &fakeSource{snapshot: sampleLedger()}
	hub := notifications.NewHub()
	service := newTestService(t, source, hub, 0)

	known, subscribed := uuid.New(), uuid.New()
	_, err := service.Recalculate(context.Background(), known)
	require.NoError(t, err)

	ch, unsubscribe := hub.Subscribe(subscribed)
	defer unsubscribe()

	require.NoError(t, service.RefreshAll(context.Background()))
	assert.Equal(t, int32(3), source.calls.Load())

	_, ok := service.Latest(subscribed)
	assert.True(t, ok)

	select {
	case event := <-ch:
		assert.Equal(t, notifications.EventProjectionUpdated, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected subscribed household to receive a result")
	}

	source.fail(errors.New("boom"))
	assert.Error(t, service.RefreshAll(context.Background()))
}
