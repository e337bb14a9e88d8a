package card

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/starswipe/starswipe/internal/asset"
	"github.com/starswipe/starswipe/internal/auth"
)

const signatureHeader = "X-Signature"

// MerchantResolver maps a merchant identifier to its payout address.
type MerchantResolver func(ctx context.Context, merchantID string) (string, error)

// Handler exposes the card HTTP endpoints.
type Handler struct {
	service   *Service
	merchants MerchantResolver
}

// NewHandler builds a card HTTP handler. merchants may be nil when no directory
// is wired; charges must then carry the payout address directly.
func NewHandler(service *Service, merchants MerchantResolver) *Handler {
	return &Handler{service: service, merchants: merchants}
}

type registerRequest struct {
	Owner       string `json:"owner"`
	CardID      string `json:"card_id"`
	CardAddress string `json:"card_address"`
	DailyLimit  int64  `json:"daily_limit"`
	PIN         string `json:"pin,omitempty"`
}

type amountRequest struct {
	Owner  string `json:"owner"`
	Amount int64  `json:"amount"`
}

type chargeRequest struct {
	CardAddress string `json:"card_address"`
	Amount      int64  `json:"amount"`
	Merchant    string `json:"merchant"`
	MerchantID  string `json:"merchant_id"`
	PIN         string `json:"pin,omitempty"`
}

type statusRequest struct {
	Owner    string `json:"owner"`
	IsActive bool   `json:"is_active"`
}

type cardResponse struct {
	CardID        string `json:"card_id"`
	CardAddress   string `json:"card_address"`
	Owner         string `json:"owner"`
	Balance       int64  `json:"balance"`
	DailyLimit    int64  `json:"daily_limit"`
	SpentToday    int64  `json:"spent_today"`
	LastSpendDate int64  `json:"last_spend_date"`
	IsActive      bool   `json:"is_active"`
}

func toResponse(c Card) cardResponse {
	return cardResponse{
		CardID:        c.CardID,
		CardAddress:   c.CardAddress,
		Owner:         c.Owner,
		Balance:       c.Balance,
		DailyLimit:    c.DailyLimit,
		SpentToday:    c.SpentToday,
		LastSpendDate: c.LastSpendDate,
		IsActive:      c.IsActive,
	}
}

// Register creates a new card for the signing owner.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.PIN != "" && len(req.PIN) < 4 {
		return fiber.NewError(http.StatusBadRequest, "pin must be at least 4 digits")
	}

	created, err := h.service.Register(c.UserContext(), RegisterInput{
		Owner:       principal(c, req.Owner),
		CardID:      req.CardID,
		CardAddress: req.CardAddress,
		DailyLimit:  req.DailyLimit,
		PIN:         req.PIN,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(created))
}

// TopUp funds a card from its owner.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.TopUp(c.UserContext(), TopUpInput{
		Owner:  principal(c, req.Owner),
		CardID: c.Params("cardId"),
		Amount: req.Amount,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Charge processes a point-of-sale payment authorized by the card address.
func (h *Handler) Charge(c *fiber.Ctx) error {
	var req chargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Merchant == "" && req.MerchantID != "" && h.merchants != nil {
		addr, err := h.merchants(c.UserContext(), req.MerchantID)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "unknown merchant")
		}
		req.Merchant = addr
	}

	updated, err := h.service.Charge(c.UserContext(), ChargeInput{
		CardAddress: principal(c, req.CardAddress),
		CardID:      c.Params("cardId"),
		Amount:      req.Amount,
		Merchant:    req.Merchant,
		MerchantID:  req.MerchantID,
		PIN:         req.PIN,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Withdraw returns funds to the owner; amount zero empties the card.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.Withdraw(c.UserContext(), WithdrawInput{
		Owner:  principal(c, req.Owner),
		CardID: c.Params("cardId"),
		Amount: req.Amount,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// SetStatus freezes or unfreezes a card.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.SetStatus(c.UserContext(), SetStatusInput{
		Owner:    principal(c, req.Owner),
		CardID:   c.Params("cardId"),
		IsActive: req.IsActive,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(updated))
}

// Get returns the card record. Public, no authorization.
func (h *Handler) Get(c *fiber.Ctx) error {
	found, err := h.service.Get(c.UserContext(), c.Params("cardId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(found))
}

// principal assembles the caller's principal: the claimed address from the
// request body, the raw body as the signed message, and the detached signature
// from the X-Signature header.
func principal(c *fiber.Ctx, address string) auth.Principal {
	sig, err := base64.RawURLEncoding.DecodeString(c.Get(signatureHeader))
	if err != nil {
		sig = nil
	}
	return auth.Principal{Address: address, Message: c.Body(), Signature: sig}
}

// domainError maps domain error kinds to HTTP statuses and stable codes.
func domainError(c *fiber.Ctx, err error) error {
	code, status := "INTERNAL", http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		code, status = "UNAUTHORIZED", http.StatusUnauthorized
	case errors.Is(err, ErrCardAlreadyExists):
		code, status = "CARD_ALREADY_EXISTS", http.StatusConflict
	case errors.Is(err, ErrCardNotFound):
		code, status = "CARD_NOT_FOUND", http.StatusNotFound
	case errors.Is(err, ErrInvalidCardAddress):
		code, status = "INVALID_CARD_ADDRESS", http.StatusBadRequest
	case errors.Is(err, ErrInvalidDailyLimit):
		code, status = "INVALID_DAILY_LIMIT", http.StatusBadRequest
	case errors.Is(err, ErrNotCardOwner):
		code, status = "NOT_CARD_OWNER", http.StatusForbidden
	case errors.Is(err, ErrNotCardAddress):
		code, status = "NOT_CARD_ADDRESS", http.StatusForbidden
	case errors.Is(err, ErrInvalidAmount):
		code, status = "INVALID_AMOUNT", http.StatusBadRequest
	case errors.Is(err, ErrCardInactive):
		code, status = "CARD_INACTIVE", http.StatusForbidden
	case errors.Is(err, ErrInsufficientBalance):
		code, status = "INSUFFICIENT_BALANCE", http.StatusUnprocessableEntity
	case errors.Is(err, ErrDailyLimitExceeded):
		code, status = "DAILY_LIMIT_EXCEEDED", http.StatusUnprocessableEntity
	case errors.Is(err, ErrAssetNotConfigured):
		code, status = "ASSET_NOT_CONFIGURED", http.StatusServiceUnavailable
	case errors.Is(err, asset.ErrInsufficientFunds):
		code, status = "INSUFFICIENT_FUNDS", http.StatusUnprocessableEntity
	case errors.Is(err, asset.ErrTransferFailed):
		code, status = "TRANSFER_FAILED", http.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"code": code, "error": err.Error()})
}
