package routes

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/starswipe/starswipe/internal/card"
	"github.com/starswipe/starswipe/internal/history"
	"github.com/starswipe/starswipe/internal/middleware"
)

// RegisterCardRoutes wires card lifecycle and history endpoints.
func RegisterCardRoutes(r fiber.Router, h *card.Handler, hist history.Repository, cache *redis.Client, chargePerMin int) {
	r.Post("/cards", h.Register)
	r.Get("/cards/:cardId", h.Get)
	r.Post("/cards/:cardId/topup", h.TopUp)
	r.Post("/cards/:cardId/charge", middleware.ChargeRateLimit(cache, chargePerMin), h.Charge)
	r.Post("/cards/:cardId/withdraw", h.Withdraw)
	r.Post("/cards/:cardId/status", h.SetStatus)

	r.Get("/cards/:cardId/transactions", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		records, err := hist.ListByCard(c.UserContext(), c.Params("cardId"), limit, offset)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		out := make([]fiber.Map, 0, len(records))
		for _, rec := range records {
			out = append(out, fiber.Map{
				"id":            rec.ID,
				"kind":          rec.Kind,
				"amount":        rec.Amount,
				"counterparty":  rec.Counterparty,
				"merchant_id":   rec.MerchantID,
				"balance_after": rec.BalanceAfter,
				"created_at":    rec.CreatedAt,
			})
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"transactions": out,
			"count":        len(out),
		})
	})
}
