package merchant

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes merchant HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a merchant HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name          string `json:"name"`
	PayoutAddress string `json:"payout_address"`
}

type merchantResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PayoutAddress string    `json:"payout_address"`
	CreatedAt     time.Time `json:"created_at"`
}

// Register creates a merchant directory entry.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	m, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:          req.Name,
		PayoutAddress: req.PayoutAddress,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(merchantResponse{
		ID:            m.ID,
		Name:          m.Name,
		PayoutAddress: m.PayoutAddress,
		CreatedAt:     m.CreatedAt,
	})
}

// Get returns a merchant by identifier.
func (h *Handler) Get(c *fiber.Ctx) error {
	m, err := h.service.Get(c.UserContext(), c.Params("merchantId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "merchant not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(merchantResponse{
		ID:            m.ID,
		Name:          m.Name,
		PayoutAddress: m.PayoutAddress,
		CreatedAt:     m.CreatedAt,
	})
}
