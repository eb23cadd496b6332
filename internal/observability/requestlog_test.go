package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

func TestRequestLoggerRecordsErrorStatus(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/denied", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusForbidden, "denied") })
	app.Get("/gone", func(c *fiber.Ctx) error { return apperrors.NewNotFound("restaurant", nil) })

	tests := []struct {
		path string
		key  string
	}{
		{path: "/ok", key: "/ok|GET|204"},
		{path: "/denied", key: "/denied|GET|403"},
		{path: "/gone", key: "/gone|GET|404"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			req.Header.Set(requestIDHeader, "req-1")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if got := resp.Header.Get(requestIDHeader); got != "req-1" {
				t.Errorf("request id = %q", got)
			}
			if got := metrics.Snapshot().Requests[tt.key]; got != 1 {
				t.Errorf("requests[%q] = %d, all = %v", tt.key, got, metrics.Snapshot().Requests)
			}
		})
	}
}
