package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/starswipe/starswipe/internal/merchant"
)

// RegisterMerchantRoutes wires the merchant directory endpoints.
func RegisterMerchantRoutes(r fiber.Router, h *merchant.Handler) {
	r.Post("/merchants", h.Register)
	r.Get("/merchants/:merchantId", h.Get)
}
