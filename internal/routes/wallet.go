package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletd/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:walletId", h.Get)
	r.Patch("/wallets/:walletId/recharge", h.Recharge)
	r.Patch("/wallets/:walletId/subtract/:amount", h.Subtract)
}
