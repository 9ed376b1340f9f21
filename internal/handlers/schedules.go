package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
	"github.com/jfrancis537/budget-oracle-sub000/internal/repository"
)

type PaymentScheduleStore interface {
	List(ctx context.Context, householdID uuid.UUID) ([]models.PaymentSchedule, error)
	Create(ctx context.Context, householdID uuid.UUID, name string, payments []models.ScheduledPayment) (models.PaymentSchedule, error)
	Delete(ctx context.Context, householdID, scheduleID uuid.UUID) error
	AddPayment(ctx context.Context, householdID, scheduleID uuid.UUID, payment models.ScheduledPayment) (models.ScheduledPayment, error)
	DeletePayment(ctx context.Context, householdID, scheduleID, paymentID uuid.UUID) error
}

type VestScheduleStore interface {
	List(ctx context.Context, householdID uuid.UUID) ([]models.VestSchedule, error)
	Create(ctx context.Context, householdID uuid.UUID, name string, vests []models.ScheduledStockVest) (models.VestSchedule, error)
	Delete(ctx context.Context, householdID, scheduleID uuid.UUID) error
	AddVest(ctx context.Context, householdID, scheduleID uuid.UUID, vest models.ScheduledStockVest) (models.ScheduledStockVest, error)
	DeleteVest(ctx context.Context, householdID, scheduleID, vestID uuid.UUID) error
}

type ScheduleHandler struct {
	Payments PaymentScheduleStore
	Vests    VestScheduleStore
	Notifier Notifier
}

// NewScheduleHandler создает обработчик графиков платежей и вестинга.
func NewScheduleHandler(payments PaymentScheduleStore, vests VestScheduleStore, notifier Notifier) *ScheduleHandler {
	return &ScheduleHandler{Payments: payments, Vests: vests, Notifier: notifier}
}

type ScheduledPaymentRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Date   string          `json:"date" validate:"required"`
}

type PaymentScheduleRequest struct {
	Name     string                    `json:"name" validate:"required,max=200"`
	Payments []ScheduledPaymentRequest `json:"payments" validate:"dive"`
}

type ScheduledVestRequest struct {
	Name              string          `json:"name" validate:"max=200"`
	Symbol            string          `json:"symbol" validate:"required,max=16"`
	Shares            decimal.Decimal `json:"shares" validate:"gte=0"`
	CostBasisPerShare decimal.Decimal `json:"cost_basis_per_share" validate:"gte=0"`
	TaxPercentage     decimal.Decimal `json:"tax_percentage" validate:"gte=0,lte=1"`
	Date              string          `json:"date" validate:"required"`
}

type VestScheduleRequest struct {
	Name  string                 `json:"name" validate:"required,max=200"`
	Vests []ScheduledVestRequest `json:"vests" validate:"dive"`
}

// ListPaymentSchedules возвращает графики платежей.
func (h *ScheduleHandler) ListPaymentSchedules(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	schedules, err := h.Payments.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.PaymentSchedule{"payment_schedules": schedules})
}

// CreatePaymentSchedule создает график платежей.
func (h *ScheduleHandler) CreatePaymentSchedule(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PaymentScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	payments := make([]models.ScheduledPayment, 0, len(req.Payments))
	for _, item := range req.Payments {
		payment, err := toScheduledPayment(item)
		if err != nil {
			return badRequest(c, err.Error())
		}
		payments = append(payments, payment)
	}

	schedule, err := h.Payments.Create(c.Request().Context(), householdID, name, payments)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid payment")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangePaymentSchedules)
	return c.JSON(http.StatusCreated, schedule)
}

// DeletePaymentSchedule удаляет график платежей.
func (h *ScheduleHandler) DeletePaymentSchedule(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	if err := h.Payments.Delete(c.Request().Context(), householdID, scheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "schedule not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangePaymentSchedules)
	return c.NoContent(http.StatusNoContent)
}

// AddPayment добавляет платеж в график.
func (h *ScheduleHandler) AddPayment(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	var req ScheduledPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	payment, err := toScheduledPayment(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Payments.AddPayment(c.Request().Context(), householdID, scheduleID, payment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "schedule not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid payment")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangePaymentSchedules)
	return c.JSON(http.StatusCreated, created)
}

// DeletePayment удаляет платеж из графика.
func (h *ScheduleHandler) DeletePayment(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	paymentID, err := pathID(c, "entryId")
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	if err := h.Payments.DeletePayment(c.Request().Context(), householdID, scheduleID, paymentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "payment not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangePaymentSchedules)
	return c.NoContent(http.StatusNoContent)
}

// ListVestSchedules возвращает графики вестинга.
func (h *ScheduleHandler) ListVestSchedules(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	schedules, err := h.Vests.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.VestSchedule{"vest_schedules": schedules})
}

// CreateVestSchedule создает график вестинга.
func (h *ScheduleHandler) CreateVestSchedule(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req VestScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	vests := make([]models.ScheduledStockVest, 0, len(req.Vests))
	for _, item := range req.Vests {
		vest, err := toScheduledVest(item)
		if err != nil {
			return badRequest(c, err.Error())
		}
		vests = append(vests, vest)
	}

	schedule, err := h.Vests.Create(c.Request().Context(), householdID, name, vests)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid vest")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeVestSchedules)
	return c.JSON(http.StatusCreated, schedule)
}

// DeleteVestSchedule удаляет график вестинга.
func (h *ScheduleHandler) DeleteVestSchedule(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	if err := h.Vests.Delete(c.Request().Context(), householdID, scheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "schedule not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeVestSchedules)
	return c.NoContent(http.StatusNoContent)
}

// AddVest добавляет вестинг в график.
func (h *ScheduleHandler) AddVest(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	var req ScheduledVestRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	vest, err := toScheduledVest(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Vests.AddVest(c.Request().Context(), householdID, scheduleID, vest)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "schedule not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid vest")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeVestSchedules)
	return c.JSON(http.StatusCreated, created)
}

// DeleteVest удаляет вестинг из графика.
func (h *ScheduleHandler) DeleteVest(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	scheduleID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	vestID, err := pathID(c, "entryId")
	if err != nil {
		return badRequest(c, "invalid vest id")
	}

	if err := h.Vests.DeleteVest(c.Request().Context(), householdID, scheduleID, vestID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "vest not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeVestSchedules)
	return c.NoContent(http.StatusNoContent)
}

func toScheduledPayment(req ScheduledPaymentRequest) (models.ScheduledPayment, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.ScheduledPayment{}, errors.New("payment name is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return models.ScheduledPayment{}, errors.New("invalid payment date format")
	}

	return models.ScheduledPayment{Name: name, Amount: req.Amount, Date: date}, nil
}

func toScheduledVest(req ScheduledVestRequest) (models.ScheduledStockVest, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return models.ScheduledStockVest{}, errors.New("vest symbol is required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return models.ScheduledStockVest{}, errors.New("invalid vest date format")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = symbol
	}

	return models.ScheduledStockVest{
		Name:              name,
		Symbol:            symbol,
		Shares:            req.Shares,
		CostBasisPerShare: req.CostBasisPerShare,
		TaxPercentage:     req.TaxPercentage,
		Date:              date,
	}, nil
}
