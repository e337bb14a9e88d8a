package routes

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/starswipe/starswipe/internal/asset"
	"github.com/starswipe/starswipe/internal/card"
)

type setAssetRequest struct {
	Contract string `json:"contract"`
}

// RegisterConfigRoutes wires the settlement asset configuration endpoints.
// Writes are guarded by the admin token; reads are open.
func RegisterConfigRoutes(r fiber.Router, svc *card.Service, store asset.ConfigStore, adminToken string) {
	r.Post("/config/asset", func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}

		var req setAssetRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.Contract == "" {
			return fiber.NewError(http.StatusBadRequest, "contract is required")
		}
		if err := store.Set(c.UserContext(), req.Contract); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"contract": req.Contract})
	})

	r.Get("/config/asset", func(c *fiber.Ctx) error {
		contract, err := svc.AssetContract(c.UserContext())
		if err != nil {
			if errors.Is(err, card.ErrAssetNotConfigured) {
				return fiber.NewError(http.StatusNotFound, "asset not configured")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"contract": contract})
	})
}
