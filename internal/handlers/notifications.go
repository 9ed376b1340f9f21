package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/notifications"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
)

type Subscriber interface {
	Subscribe(householdID uuid.UUID) (<-chan notifications.Event, func())
}

type NotificationHandler struct {
	Hub      Subscriber
	Notifier Notifier
}

// NewNotificationHandler создает SSE-обработчик обновлений прогноза.
func NewNotificationHandler(hub Subscriber, notifier Notifier) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Notifier: notifier}
}

// Stream открывает SSE-поток обновлений прогноза для домохозяйства.
// Первый пересчет запрашивается сразу после подключения.
func (h *NotificationHandler) Stream(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(householdID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{
		Type: notifications.EventConnected,
		Data: map[string]string{"household_id": householdID.String()},
	})
	flusher.Flush()

	notify(h.Notifier, householdID, projection.ChangeRefresh)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}
