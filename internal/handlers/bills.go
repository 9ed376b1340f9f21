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

type BillStore interface {
	List(ctx context.Context, householdID uuid.UUID) ([]models.Bill, error)
	Create(ctx context.Context, bill models.Bill) (models.Bill, error)
	Update(ctx context.Context, bill models.Bill) (models.Bill, error)
	Delete(ctx context.Context, householdID, billID uuid.UUID) error
}

type BillHandler struct {
	Bills    BillStore
	Notifier Notifier
}

// NewBillHandler создает обработчик счетов.
func NewBillHandler(bills BillStore, notifier Notifier) *BillHandler {
	return &BillHandler{Bills: bills, Notifier: notifier}
}

type BillRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Frequency   recurrence.Kind `json:"frequency" validate:"required,oneof=daily weekly monthly annual"`
	Interval    int             `json:"interval" validate:"gte=1,lte=1000"`
	InitialDate string          `json:"initial_date" validate:"required"`
	EndDate     *string         `json:"end_date"`
	Unavoidable bool            `json:"unavoidable"`
}

type BillResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   recurrence.Kind `json:"frequency"`
	Interval    int             `json:"interval"`
	InitialDate string          `json:"initial_date"`
	EndDate     *string         `json:"end_date,omitempty"`
	Unavoidable bool            `json:"unavoidable"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// List возвращает счета домохозяйства.
func (h *BillHandler) List(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	bills, err := h.Bills.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	response := make([]BillResponse, 0, len(bills))
	for _, bill := range bills {
		response = append(response, toBillResponse(bill))
	}

	return c.JSON(http.StatusOK, map[string][]BillResponse{"bills": response})
}

// Create добавляет счет.
func (h *BillHandler) Create(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	bill, err := bindBill(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	bill.HouseholdID = householdID

	created, err := h.Bills.Create(c.Request().Context(), bill)
	if err != nil {
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeBills)
	return c.JSON(http.StatusCreated, toBillResponse(created))
}

// Update обновляет счет.
func (h *BillHandler) Update(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	billID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid bill id")
	}

	bill, err := bindBill(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	bill.ID = billID
	bill.HouseholdID = householdID

	updated, err := h.Bills.Update(c.Request().Context(), bill)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "bill not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeBills)
	return c.JSON(http.StatusOK, toBillResponse(updated))
}

// Delete удаляет счет.
func (h *BillHandler) Delete(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	billID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid bill id")
	}

	if err := h.Bills.Delete(c.Request().Context(), householdID, billID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "bill not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeBills)
	return c.NoContent(http.StatusNoContent)
}

func bindBill(c echo.Context) (models.Bill, error) {
	var req BillRequest
	if err := c.Bind(&req); err != nil {
		return models.Bill{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.Bill{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Bill{}, errors.New("name is required")
	}

	initialDate, err := parseDate(req.InitialDate)
	if err != nil {
		return models.Bill{}, errors.New("invalid initial_date format")
	}

	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return models.Bill{}, errors.New("invalid end_date format")
	}
	if endDate != nil && endDate.Before(initialDate) {
		return models.Bill{}, errors.New("end_date must not be before initial_date")
	}

	return models.Bill{
		Name:        name,
		Amount:      req.Amount,
		Frequency:   req.Frequency,
		Interval:    req.Interval,
		InitialDate: initialDate,
		EndDate:     endDate,
		Unavoidable: req.Unavoidable,
	}, nil
}

func toBillResponse(bill models.Bill) BillResponse {
	var endDate *string
	if bill.EndDate != nil {
		formatted := formatDate(*bill.EndDate)
		endDate = &formatted
	}

	return BillResponse{
		ID:          bill.ID,
		Name:        bill.Name,
		Amount:      bill.Amount,
		Frequency:   bill.Frequency,
		Interval:    bill.Interval,
		InitialDate: formatDate(bill.InitialDate),
		EndDate:     endDate,
		Unavoidable: bill.Unavoidable,
		CreatedAt:   bill.CreatedAt,
		UpdatedAt:   bill.UpdatedAt,
	}
}
