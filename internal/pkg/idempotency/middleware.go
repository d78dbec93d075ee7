package idempotency

import (
	"net/http"
	"strings"
	"time"

	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	DefaultTTL     = 24 * time.Hour
	DefaultLockTTL = 5 * time.Minute

	keyPrefix = "idempotency:"
)

type Config struct {
	// TTL is how long a completed response can be replayed
	TTL time.Duration
	// LockTTL bounds a reservation whose request never finished
	LockTTL time.Duration
}

// New replays the stored response for a repeated Idempotency-Key on the same
// route. Requests without the header pass straight through.
func New(store Store, log logger.ILogger, cfg Config) fiber.Handler {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}

	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(HeaderKey))
		if header == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		key := keyPrefix + c.Method() + ":" + c.Path() + ":" + header

		reserved, err := store.Reserve(ctx, key, cfg.LockTTL)
		if err != nil {
			// store outage should not block admin operations
			log.Warn("IDEMPOTENCY", "Reservation failed, serving without replay protection", map[string]interface{}{
				"key":   header,
				"error": err.Error(),
			})
			return c.Next()
		}

		if !reserved {
			return replay(c, store, key)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}

		status := c.Response().StatusCode()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			_ = store.Release(ctx, key)
			return nil
		}

		entry := Entry{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, key, entry, cfg.TTL); err != nil {
			log.Error("IDEMPOTENCY", "Failed to store response", map[string]interface{}{
				"key":   header,
				"error": err.Error(),
			})
		}
		return nil
	}
}

func replay(c *fiber.Ctx, store Store, key string) error {
	entry, err := store.Load(c.UserContext(), key)
	if err != nil || entry == nil || entry.Pending {
		return c.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(
			fiber.StatusConflict,
			"A request with this Idempotency-Key is already in progress",
		))
	}

	c.Set(HeaderReplayed, "true")
	if entry.ContentType != "" {
		c.Set(fiber.HeaderContentType, entry.ContentType)
	}
	return c.Status(entry.Status).Send(entry.Body)
}
