package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
)

const dateLayout = "2006-01-02"

// Notifier получает сигнал об изменении коллекции домохозяйства.
type Notifier interface {
	Notify(householdID uuid.UUID, change projection.Change)
}

func notify(notifier Notifier, householdID uuid.UUID, change projection.Change) {
	if notifier == nil {
		return
	}

	notifier.Notify(householdID, change)
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.New("invalid date format")
	}

	return parsed, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	parsed, err := parseDate(*value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

func parseWindow(start, end string) (time.Time, time.Time, error) {
	windowStart, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start format")
	}

	windowEnd, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end format")
	}

	if windowEnd.Before(windowStart) {
		return time.Time{}, time.Time{}, errors.New("end must not be before start")
	}

	return windowStart, windowEnd, nil
}

func formatDate(value time.Time) string {
	return value.Format(dateLayout)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
