package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/pkg/idempotency"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/pkg/serverutils"
	"delivery-scheduler-be/internal/service"
	"delivery-scheduler-be/internal/testutil"
	"delivery-scheduler-be/pkg/admin/pause"
	"delivery-scheduler-be/pkg/admin/reactivation"
	"delivery-scheduler-be/pkg/admin/schedule"
	"delivery-scheduler-be/pkg/delivery"
	"delivery-scheduler-be/pkg/subscription"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

type ControllerSuite struct {
	suite.Suite
	store *testutil.InMemoryStore
	clock *testutil.Clock
	app   *fiber.App
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.store = testutil.NewInMemoryStore()
	s.store.SeedDefaultPolicies()
	s.clock = testutil.NewClock(time.Date(2024, time.March, 4, 10, 0, 0, 0, ist))

	log := logger.NewNopLogger()
	publisher := testutil.NewInMemoryPublisher()
	calendar := delivery.NewCalendar(ist, time.Sunday, 20)
	cache := delivery.NewPolicyCache(s.store.NewUnitOfWork(context.Background()).SchedulePolicyRepository(), log)
	cfg := pause.Config{PoolSize: 4, RowTimeout: time.Second}
	now := s.clock.NowFunc()

	adminService := service.NewAdminService(
		s.store,
		log,
		calendar,
		schedule.NewManager(log, cache, calendar, publisher, now),
		pause.NewOrchestrator(s.store, publisher, log, cfg, now),
		reactivation.NewOrchestrator(s.store, cache, calendar, publisher, log, cfg, now),
	)
	subscriptionService := service.NewSubscriptionService(
		s.store,
		subscription.NewManager(log, cache, calendar, publisher, now),
		calendar,
	)
	guard := idempotency.New(idempotency.NewMemoryStore(), log, idempotency.Config{})

	s.app = fiber.New()
	s.app.Use(serverutils.ErrorHandlerMiddleware())
	api := s.app.Group("/api")
	NewScheduleController(adminService).RegisterRoutes(api)
	NewPauseController(adminService, guard).RegisterRoutes(api)
	NewSubscriptionController(subscriptionService).RegisterRoutes(api)
}

func (s *ControllerSuite) do(method, path string, body any, headers map[string]string) (int, envelope, string) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env, resp.Header.Get(idempotency.HeaderReplayed)
}

func (s *ControllerSuite) seedActive(userId uuid.UUID) *entity.Subscription {
	next := time.Date(2024, time.March, 6, 0, 0, 0, 0, ist)
	return s.store.SeedSubscription(entity.Subscription{
		UserId:                userId,
		Category:              constant.CategoryProduce,
		Cadence:               entity.SubscriptionCadenceWeekly,
		Status:                entity.SubscriptionStatusActive,
		NextDeliveryDate:      &next,
		SubscriptionStartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, ist),
		SubscriptionEndDate:   time.Date(2024, time.December, 31, 0, 0, 0, 0, ist),
	})
}

func (s *ControllerSuite) TestUpdatePolicyThenRead() {
	status, env, _ := s.do(fiber.MethodPut, "/api/admin/schedule/policies/dairy", map[string]any{
		"gap_days": 3,
		"reason":   "route change",
		"actor_id": "ops-1",
	}, nil)
	s.Equal(fiber.StatusOK, status)
	s.True(env.Success)

	var updated struct {
		Policy           struct{ GapDays int `json:"gap_days"` } `json:"policy"`
		CacheInvalidated bool                                   `json:"cache_invalidated"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal(3, updated.Policy.GapDays)
	s.True(updated.CacheInvalidated)

	status, env, _ = s.do(fiber.MethodGet, "/api/admin/schedule/policies/dairy", nil, nil)
	s.Equal(fiber.StatusOK, status)
	var policy struct{ GapDays int `json:"gap_days"` }
	s.Require().NoError(json.Unmarshal(env.Data, &policy))
	s.Equal(3, policy.GapDays)
}

func (s *ControllerSuite) TestUpdatePolicyValidation() {
	status, env, _ := s.do(fiber.MethodPut, "/api/admin/schedule/policies/dairy", map[string]any{
		"gap_days": 45,
		"actor_id": "ops-1",
	}, nil)
	s.Equal(fiber.StatusBadRequest, status)
	s.False(env.Success)
	s.Equal("Request validation failed", env.Message)

	status, _, _ = s.do(fiber.MethodGet, "/api/admin/schedule/policies/meat", nil, nil)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *ControllerSuite) TestCreatePauseIsIdempotent() {
	s.seedActive(uuid.New())
	s.seedActive(uuid.New())

	body := map[string]any{
		"pause_type": "all",
		"start_date": "2024-03-05",
		"reason":     "flood",
		"actor_id":   "ops-1",
	}
	headers := map[string]string{idempotency.HeaderKey: "pause-1"}

	status, first, replayed := s.do(fiber.MethodPost, "/api/admin/pauses", body, headers)
	s.Equal(fiber.StatusOK, status)
	s.Empty(replayed)

	status, second, replayed := s.do(fiber.MethodPost, "/api/admin/pauses", body, headers)
	s.Equal(fiber.StatusOK, status)
	s.Equal("true", replayed)
	s.JSONEq(string(first.Data), string(second.Data))
	s.Len(s.store.PauseRecords(), 1)

	var res struct {
		ProcessedCount int `json:"processed_count"`
	}
	s.Require().NoError(json.Unmarshal(first.Data, &res))
	s.Equal(2, res.ProcessedCount)
}

func (s *ControllerSuite) TestPauseAndReactivateRoundTrip() {
	sub := s.seedActive(uuid.New())

	status, env, _ := s.do(fiber.MethodPost, "/api/admin/pauses", map[string]any{
		"pause_type": "all",
		"start_date": "2024-03-05",
		"reason":     "strike",
		"actor_id":   "ops-1",
	}, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var created struct {
		PauseRecordId uuid.UUID `json:"pause_record_id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))

	status, env, _ = s.do(fiber.MethodGet, "/api/admin/pauses/"+created.PauseRecordId.String(), nil, nil)
	s.Equal(fiber.StatusOK, status)
	var detail struct {
		HeldSubscriptionCount int `json:"held_subscription_count"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Equal(1, detail.HeldSubscriptionCount)

	status, env, _ = s.do(fiber.MethodPost, "/api/admin/pauses/reactivate", map[string]any{
		"pause_record_id": created.PauseRecordId,
		"scope":           "all",
		"actor_id":        "ops-2",
	}, nil)
	s.Equal(fiber.StatusOK, status)
	var reactivated struct {
		ReactivatedCount int  `json:"reactivated_count"`
		Completed        bool `json:"completed"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &reactivated))
	s.Equal(1, reactivated.ReactivatedCount)
	s.True(reactivated.Completed)
	s.Equal(entity.SubscriptionStatusActive, s.store.Subscription(sub.Id).Status)
}

func (s *ControllerSuite) TestSubscriptionLifecycle() {
	status, env, _ := s.do(fiber.MethodPost, "/api/subscriptions", map[string]any{
		"user_id":         uuid.New(),
		"category":        "dairy",
		"cadence":         "weekly",
		"start_date":      "2024-03-05",
		"duration_months": 3,
	}, nil)
	s.Require().Equal(fiber.StatusCreated, status)
	var created struct {
		Id               uuid.UUID `json:"id"`
		NextDeliveryDate string    `json:"next_delivery_date"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal("2024-03-05", created.NextDeliveryDate)

	base := "/api/subscriptions/" + created.Id.String()

	status, env, _ = s.do(fiber.MethodGet, base, nil, nil)
	s.Equal(fiber.StatusOK, status)
	var detail struct {
		UpcomingDeliveries []string `json:"upcoming_deliveries"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Len(detail.UpcomingDeliveries, subscription.UpcomingPreviewSize)

	status, _, _ = s.do(fiber.MethodPost, base+"/pause", map[string]any{"reason": "travel"}, nil)
	s.Equal(fiber.StatusOK, status)

	status, _, _ = s.do(fiber.MethodPost, base+"/resume", nil, nil)
	s.Equal(fiber.StatusOK, status)

	status, _, _ = s.do(fiber.MethodPost, base+"/cancel", nil, nil)
	s.Equal(fiber.StatusOK, status)

	status, _, _ = s.do(fiber.MethodPost, base+"/resume", nil, nil)
	s.Equal(fiber.StatusConflict, status)
}

func (s *ControllerSuite) TestSubscriptionNotFoundAndBadId() {
	status, _, _ := s.do(fiber.MethodGet, "/api/subscriptions/not-a-uuid", nil, nil)
	s.Equal(fiber.StatusBadRequest, status)

	status, env, _ := s.do(fiber.MethodGet, "/api/subscriptions/"+uuid.NewString(), nil, nil)
	s.Equal(fiber.StatusNotFound, status)
	s.False(env.Success)
}

func TestParseIdParam(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	app.Get("/:id", func(ctx *fiber.Ctx) error {
		id, err := parseIdParam(ctx, "id")
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	id := uuid.New()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+id.String(), nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, id.String(), string(body))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
