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

type LedgerStore interface {
	List(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind) ([]models.LedgerEntry, error)
	Create(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, name string, amount decimal.Decimal) (models.LedgerEntry, error)
	Update(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, entryID uuid.UUID, name string, amount decimal.Decimal) (models.LedgerEntry, error)
	Delete(ctx context.Context, householdID uuid.UUID, kind models.LedgerKind, entryID uuid.UUID) error
}

// LedgerHandler обслуживает долги или счета, в зависимости от kind.
type LedgerHandler struct {
	Entries  LedgerStore
	Kind     models.LedgerKind
	Notifier Notifier
}

// NewLedgerHandler создает обработчик записей одного вида.
func NewLedgerHandler(entries LedgerStore, kind models.LedgerKind, notifier Notifier) *LedgerHandler {
	return &LedgerHandler{Entries: entries, Kind: kind, Notifier: notifier}
}

type LedgerRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// List возвращает записи домохозяйства.
func (h *LedgerHandler) List(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	entries, err := h.Entries.List(c.Request().Context(), householdID, h.Kind)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.LedgerEntry{h.collection(): entries})
}

// Create добавляет запись.
func (h *LedgerHandler) Create(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	name, amount, err := bindLedger(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entry, err := h.Entries.Create(c.Request().Context(), householdID, h.Kind, name, amount)
	if err != nil {
		return serverError(c)
	}

	notify(h.Notifier, householdID, h.change())
	return c.JSON(http.StatusCreated, entry)
}

// Update обновляет запись.
func (h *LedgerHandler) Update(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	entryID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid "+string(h.Kind)+" id")
	}

	name, amount, err := bindLedger(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	entry, err := h.Entries.Update(c.Request().Context(), householdID, h.Kind, entryID, name, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, string(h.Kind)+" not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, h.change())
	return c.JSON(http.StatusOK, entry)
}

// Delete удаляет запись.
func (h *LedgerHandler) Delete(c echo.Context) error {
	householdID, ok := auth.HouseholdIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	entryID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid "+string(h.Kind)+" id")
	}

	if err := h.Entries.Delete(c.Request().Context(), householdID, h.Kind, entryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, string(h.Kind)+" not found")
		}
		return serverError(c)
	}

	notify(h.Notifier, householdID, h.change())
	return c.NoContent(http.StatusNoContent)
}

func (h *LedgerHandler) collection() string {
	if h.Kind == models.LedgerKindDebt {
		return "debts"
	}
	return "accounts"
}

func (h *LedgerHandler) change() projection.Change {
	if h.Kind == models.LedgerKindDebt {
		return projection.ChangeDebts
	}
	return projection.ChangeAccounts
}

func bindLedger(c echo.Context) (string, decimal.Decimal, error) {
	var req LedgerRequest
	if err := c.Bind(&req); err != nil {
		return "", decimal.Zero, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return "", decimal.Zero, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", decimal.Zero, errors.New("name is required")
	}

	return name, req.Amount, nil
}
