package idempotency

import (
	"context"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"delivery-scheduler-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(store Store, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Post("/pauses", New(store, logger.NewNopLogger(), Config{}), handler)
	return app
}

func post(t *testing.T, app *fiber.App, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/pauses", nil)
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get(HeaderReplayed)
}

func TestMiddleware_ReplaysSuccessfulResponse(t *testing.T) {
	var calls atomic.Int32
	app := newTestApp(NewMemoryStore(), func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.JSON(fiber.Map{"call": n})
	})

	status, first, replayed := post(t, app, "abc")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, replayed)

	status, second, replayed := post(t, app, "abc")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "true", replayed)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	_, _, _ = post(t, app, "other")
	assert.Equal(t, int32(2), calls.Load())
}

func TestMiddleware_WithoutHeaderAlwaysRuns(t *testing.T) {
	var calls atomic.Int32
	app := newTestApp(NewMemoryStore(), func(c *fiber.Ctx) error {
		calls.Add(1)
		return c.SendStatus(fiber.StatusOK)
	})

	post(t, app, "")
	post(t, app, "")
	assert.Equal(t, int32(2), calls.Load())
}

func TestMiddleware_FailedResponseReleasesKey(t *testing.T) {
	var calls atomic.Int32
	app := newTestApp(NewMemoryStore(), func(c *fiber.Ctx) error {
		if calls.Add(1) == 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	status, _, _ := post(t, app, "retry-me")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, replayed := post(t, app, "retry-me")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, replayed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMiddleware_InFlightDuplicateConflicts(t *testing.T) {
	store := NewMemoryStore()
	reserved, err := store.Reserve(context.Background(), keyPrefix+"POST:/pauses:busy", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	var calls atomic.Int32
	app := newTestApp(store, func(c *fiber.Ctx) error {
		calls.Add(1)
		return c.SendStatus(fiber.StatusOK)
	})

	status, _, _ := post(t, app, "busy")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Zero(t, calls.Load())
}

func TestMemoryStore_ReserveIsExclusive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	second, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	require.NoError(t, store.Release(ctx, "k"))
	again, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}
