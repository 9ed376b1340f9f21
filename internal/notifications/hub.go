package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected         = "connected"
	EventProjectionUpdated = "projection_updated"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub рассылает события подписчикам домохозяйства. Последнее событие
// каждого домохозяйства запоминается и отдается новым подписчикам сразу
// после подписки.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	latest      map[uuid.UUID]Event
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		latest:      make(map[uuid.UUID]Event),
	}
}

// Subscribe подписывает домохозяйство на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(householdID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[householdID]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.subscribers[householdID] = subs
	}
	subs[ch] = struct{}{}

	if event, ok := h.latest[householdID]; ok {
		ch <- event
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[householdID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, householdID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам домохозяйства. Если буфер
// подписчика заполнен, самое старое событие вытесняется.
func (h *Hub) Publish(householdID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[householdID] = event

	for ch := range h.subscribers[householdID] {
		select {
		case ch <- event:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// Latest возвращает последнее опубликованное событие домохозяйства.
func (h *Hub) Latest(householdID uuid.UUID) (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event, ok := h.latest[householdID]
	return event, ok
}

// Households возвращает домохозяйства с активными подписками.
func (h *Hub) Households() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}

	return ids
}
