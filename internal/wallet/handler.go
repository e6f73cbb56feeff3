package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	CurrentBalance decimal.NullDecimal `json:"current_balance"`
}

type rechargeRequest struct {
	CreditCardNumber string              `json:"credit_card_number"`
	Amount           decimal.NullDecimal `json:"amount"`
}

type walletResponse struct {
	ID             string          `json:"id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:             w.ID,
		CurrentBalance: w.CurrentBalance,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// Create provisions a wallet with the requested opening balance.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !req.CurrentBalance.Valid {
		return fiber.NewError(http.StatusBadRequest, "current_balance is required")
	}
	w, err := h.service.Create(c.UserContext(), req.CurrentBalance.Decimal)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w))
}

// Get returns a wallet and its balance.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.service.Get(c.UserContext(), c.Params("walletId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(w))
}

// Recharge tops a wallet up from a credit card.
func (h *Handler) Recharge(c *fiber.Ctx) error {
	var req rechargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Recharge(c.UserContext(), c.Params("walletId"), RechargeRequest{
		PaymentInstrument: req.CreditCardNumber,
		Amount:            req.Amount,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(w))
}

// Subtract debits the amount given in the path.
func (h *Handler) Subtract(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Params("amount"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal number")
	}
	w, err := h.service.Charge(c.UserContext(), c.Params("walletId"), decimal.NewNullDecimal(amount))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(w))
}

func toHTTPError(err error) error {
	switch Kind(err) {
	case KindInvalidRequest:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case KindWalletNotFound:
		return fiber.NewError(http.StatusNotFound, err.Error())
	case KindPaymentAuthorizationFailed:
		return fiber.NewError(http.StatusPaymentRequired, err.Error())
	case KindInsufficientBalance:
		return fiber.NewError(http.StatusConflict, err.Error())
	}
	if errors.Is(err, ErrAuthorizerUnavailable) {
		return fiber.NewError(http.StatusServiceUnavailable, "payment processor unavailable")
	}
	return fiber.NewError(http.StatusInternalServerError, "internal error")
}
