package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
)

// Projections описывает операции сервиса прогноза, доступные по HTTP.
type Projections interface {
	Notifier
	Request(ctx context.Context, householdID uuid.UUID, start, end time.Time) (models.CalculationResult, error)
	Latest(householdID uuid.UUID) (models.CalculationResult, bool)
	SetEndDate(householdID uuid.UUID, end time.Time) error
	EndDate(householdID uuid.UUID) time.Time
}

type ProjectionHandler struct {
	Projections Projections
}

// NewProjectionHandler создает обработчик прогноза.
func NewProjectionHandler(projections Projections) *ProjectionHandler {
	return &ProjectionHandler{Projections: projections}
}

type EndDateRequest struct {
	EndDate string `json:"end_date" validate:"required"`
}

type EndDateResponse struct {
	EndDate string `json:"end_date"`
}

// Get рассчитывает итог за окно из параметров start и end.
func (h *ProjectionHandler) Get(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	start, end, err := parseWindow(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.Projections.Request(c.Request().Context(), householdID, start, end)
	if err != nil {
		if errors.Is(err, projection.ErrInvalidWindow) {
			return badRequest(c, "end must not be before start")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

// Latest возвращает последний опубликованный результат.
func (h *ProjectionHandler) Latest(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	result, ok := h.Projections.Latest(householdID)
	if !ok {
		notify(h.Projections, householdID, projection.ChangeRefresh)
		return notFound(c, "projection not calculated yet")
	}

	return c.JSON(http.StatusOK, result)
}

// GetEndDate возвращает текущую дату окончания прогноза.
func (h *ProjectionHandler) GetEndDate(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, EndDateResponse{EndDate: formatDate(h.Projections.EndDate(householdID))})
}

// SetEndDate меняет дату окончания прогноза.
func (h *ProjectionHandler) SetEndDate(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req EndDateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	end, err := parseDate(req.EndDate)
	if err != nil {
		return badRequest(c, "invalid end_date format")
	}

	if err := h.Projections.SetEndDate(householdID, end); err != nil {
		if errors.Is(err, projection.ErrInvalidWindow) {
			return badRequest(c, "end_date must not be in the past")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, EndDateResponse{EndDate: formatDate(end)})
}
