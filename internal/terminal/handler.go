package terminal

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/bank_terminal/internal/account"
)

// Handler exposes terminal sessions over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler builds a terminal HTTP handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

type menuRequest struct {
	Choice string `json:"choice"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// Create opens a new session.
func (h *Handler) Create(c *fiber.Ctx) error {
	term, err := h.registry.Create(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(term.Snapshot())
}

// Get returns the session snapshot.
func (h *Handler) Get(c *fiber.Ctx) error {
	term, err := h.open(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(term.Snapshot())
}

// Reload rehydrates the session from storage.
func (h *Handler) Reload(c *fiber.Ctx) error {
	term, err := h.registry.Reload(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return sessionError(err)
	}
	return c.Status(http.StatusOK).JSON(term.Snapshot())
}

// Menu applies a main menu choice.
func (h *Handler) Menu(c *fiber.Ctx) error {
	var req menuRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.SelectMenu(ctx, req.Choice)
	})
}

// Deposit credits the session account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.Deposit(ctx, req.Amount)
	})
}

// Withdraw debits the session account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.Withdraw(ctx, req.Amount)
	})
}

// Back returns to the main menu.
func (h *Handler) Back(c *fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.Back(ctx)
	})
}

// NewSession leaves the exit screen keeping the balance.
func (h *Handler) NewSession(c *fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.StartNewSession(ctx)
	})
}

// Reset wipes all session data.
func (h *Handler) Reset(c *fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, t *Terminal) error {
		return t.Reset(ctx)
	})
}

// ClearMessages hides all status messages.
func (h *Handler) ClearMessages(c *fiber.Ctx) error {
	return h.apply(c, func(_ context.Context, t *Terminal) error {
		t.ClearMessages()
		return nil
	})
}

func (h *Handler) open(c *fiber.Ctx) (*Terminal, error) {
	term, err := h.registry.Open(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return nil, sessionError(err)
	}
	return term, nil
}

func (h *Handler) apply(c *fiber.Ctx, action func(context.Context, *Terminal) error) error {
	term, err := h.open(c)
	if err != nil {
		return err
	}

	err = action(c.UserContext(), term)
	switch {
	case err == nil:
		return c.Status(http.StatusOK).JSON(term.Snapshot())
	case errors.Is(err, ErrInvalidChoice),
		errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, account.ErrInsufficientFunds):
		return c.Status(http.StatusUnprocessableEntity).JSON(term.Snapshot())
	case errors.Is(err, ErrActionUnavailable):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func sessionError(err error) error {
	if errors.Is(err, ErrInvalidSession) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
