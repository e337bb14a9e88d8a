package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, maxPerMin int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/cards/:cardId/charge", ChargeRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func doCharge(t *testing.T, app *fiber.App, cardID string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/cards/"+cardID+"/charge", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestChargeRateLimitBlocksAfterThreshold(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if status := doCharge(t, app, "NFC001"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := doCharge(t, app, "NFC001"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", status)
	}
}

func TestChargeRateLimitIsPerCard(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	if status := doCharge(t, app, "NFC001"); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status := doCharge(t, app, "NFC001"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted card, got %d", status)
	}
	if status := doCharge(t, app, "NFC002"); status != fiber.StatusOK {
		t.Fatalf("expected other card unaffected, got %d", status)
	}
}
