package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
	"github.com/jfrancis537/budget-oracle-sub000/internal/recurrence"
	"github.com/jfrancis537/budget-oracle-sub000/internal/repository"
)

type IncomeStore interface {
	List(ctx context.Context, householdID uuid.UUID) ([]models.IncomeSource, error)
	Create(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error)
	Update(ctx context.Context, income models.IncomeSource) (models.IncomeSource, error)
	Delete(ctx context.Context, householdID, incomeID uuid.UUID) error
}

type IncomeHandler struct {
	Incomes  IncomeStore
	Notifier Notifier
}

// NewIncomeHandler создает обработчик источников дохода.
func NewIncomeHandler(incomes IncomeStore, notifier Notifier) *IncomeHandler {
	return &IncomeHandler{Incomes: incomes, Notifier: notifier}
}

type IncomeRequest struct {
	Name           string                  `json:"name" validate:"required,max=200"`
	Amount         decimal.Decimal         `json:"amount" validate:"gt=0"`
	Frequency      recurrence.PayFrequency `json:"frequency" validate:"required,oneof=weekly biweekly_even biweekly_odd semi_monthly_start semi_monthly_middle monthly quarterly annual"`
	PaysOnWeekends bool                    `json:"pays_on_weekends"`
	DayOfMonth     int                     `json:"day_of_month" validate:"gte=0,lte=28"`
	StartDate      string                  `json:"start_date" validate:"required"`
}

type IncomeResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	Amount         decimal.Decimal         `json:"amount"`
	Frequency      recurrence.PayFrequency `json:"frequency"`
	PaysOnWeekends bool                    `json:"pays_on_weekends"`
	DayOfMonth     int                     `json:"day_of_month,omitempty"`
	StartDate      string                  `json:"start_date"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// List возвращает источники дохода домохозяйства.
func (h *IncomeHandler) List(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomes, err := h.Incomes.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	response := make([]IncomeResponse, 0, len(incomes))
	for _, income := range incomes {
		response = append(response, toIncomeResponse(income))
	}

	return c.JSON(http.StatusOK, map[string][]IncomeResponse{"incomes": response})
}

// Create добавляет источник дохода.
func (h *IncomeHandler) Create(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	income, err := bindIncome(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	income.HouseholdID = householdID

	created, err := h.Incomes.Create(c.Request().Context(), income)
	if err != nil {
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeIncomes)
	return c.JSON(http.StatusCreated, toIncomeResponse(created))
}

// Update обновляет источник дохода.
func (h *IncomeHandler) Update(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	income, err := bindIncome(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	income.ID = incomeID
	income.HouseholdID = householdID

	updated, err := h.Incomes.Update(c.Request().Context(), income)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeIncomes)
	return c.JSON(http.StatusOK, toIncomeResponse(updated))
}

// Delete удаляет источник дохода.
func (h *IncomeHandler) Delete(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	if err := h.Incomes.Delete(c.Request().Context(), householdID, incomeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeIncomes)
	return c.NoContent(http.StatusNoContent)
}

func bindIncome(c echo.Context) (models.IncomeSource, error) {
	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return models.IncomeSource{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.IncomeSource{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.IncomeSource{}, errors.New("name is required")
	}

	if req.Frequency == recurrence.PayMonthly && req.DayOfMonth < 1 {
		return models.IncomeSource{}, errors.New("day_of_month is required for monthly income")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return models.IncomeSource{}, errors.New("invalid start_date format")
	}

	return models.IncomeSource{
		Name:           name,
		Amount:         req.Amount,
		Frequency:      req.Frequency,
		PaysOnWeekends: req.PaysOnWeekends,
		DayOfMonth:     req.DayOfMonth,
		StartDate:      startDate,
	}, nil
}

func toIncomeResponse(income models.IncomeSource) IncomeResponse {
	return IncomeResponse{
		ID:             income.ID,
		Name:           income.Name,
		Amount:         income.Amount,
		Frequency:      income.Frequency,
		PaysOnWeekends: income.PaysOnWeekends,
		DayOfMonth:     income.DayOfMonth,
		StartDate:      formatDate(income.StartDate),
		CreatedAt:      income.CreatedAt,
		UpdatedAt:      income.UpdatedAt,
	}
}
