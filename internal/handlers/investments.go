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

type InvestmentStore interface {
	List(ctx context.Context, householdID uuid.UUID) ([]models.Investment, error)
	Create(ctx context.Context, investment models.Investment) (models.Investment, error)
	Update(ctx context.Context, investment models.Investment) (models.Investment, error)
	Delete(ctx context.Context, householdID, investmentID uuid.UUID) error
}

type InvestmentHandler struct {
	Investments InvestmentStore
	Notifier    Notifier
}

// NewInvestmentHandler создает обработчик инвестиционных позиций.
func NewInvestmentHandler(investments InvestmentStore, notifier Notifier) *InvestmentHandler {
	return &InvestmentHandler{Investments: investments, Notifier: notifier}
}

type InvestmentRequest struct {
	Name               string          `json:"name" validate:"required,max=200"`
	Symbol             string          `json:"symbol" validate:"required,max=16"`
	Shares             decimal.Decimal `json:"shares" validate:"gte=0"`
	CostBasisPerShare  decimal.Decimal `json:"cost_basis_per_share" validate:"gte=0"`
	MarginDebt         decimal.Decimal `json:"margin_debt" validate:"gte=0"`
	MarginInterestRate decimal.Decimal `json:"margin_interest_rate" validate:"gte=0"`
}

// List возвращает позиции домохозяйства.
func (h *InvestmentHandler) List(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	investments, err := h.Investments.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Investment{"investments": investments})
}

// Create добавляет позицию.
func (h *InvestmentHandler) Create(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	investment, err := bindInvestment(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	investment.HouseholdID = householdID

	created, err := h.Investments.Create(c.Request().Context(), investment)
	if err != nil {
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeInvestments)
	return c.JSON(http.StatusCreated, created)
}

// Update обновляет позицию.
func (h *InvestmentHandler) Update(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	investmentID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid investment id")
	}

	investment, err := bindInvestment(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	investment.ID = investmentID
	investment.HouseholdID = householdID

	updated, err := h.Investments.Update(c.Request().Context(), investment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "investment not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeInvestments)
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет позицию.
func (h *InvestmentHandler) Delete(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	investmentID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid investment id")
	}

	if err := h.Investments.Delete(c.Request().Context(), householdID, investmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "investment not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, projection.ChangeInvestments)
	return c.NoContent(http.StatusNoContent)
}

func bindInvestment(c echo.Context) (models.Investment, error) {
	var req InvestmentRequest
	if err := c.Bind(&req); err != nil {
		return models.Investment{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.Investment{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if name == "" || symbol == "" {
		return models.Investment{}, errors.New("name and symbol are required")
	}

	return models.Investment{
		Name:               name,
		Symbol:             symbol,
		Shares:             req.Shares,
		CostBasisPerShare:  req.CostBasisPerShare,
		MarginDebt:         req.MarginDebt,
		MarginInterestRate: req.MarginInterestRate,
	}, nil
}
