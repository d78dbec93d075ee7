package pause

import (
	"context"
	"errors"
	"testing"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

type fixture struct {
	store        *testutil.InMemoryStore
	publisher    *testutil.InMemoryPublisher
	clock        *testutil.Clock
	orchestrator *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewInMemoryStore()
	store.SeedDefaultPolicies()
	publisher := testutil.NewInMemoryPublisher()
	clock := testutil.NewClock(time.Date(2024, time.March, 4, 10, 0, 0, 0, ist))

	return &fixture{
		store:        store,
		publisher:    publisher,
		clock:        clock,
		orchestrator: NewOrchestrator(store, publisher, logger.NewNopLogger(), Config{PoolSize: 4, RowTimeout: time.Second}, clock.NowFunc()),
	}
}

func (f *fixture) seed(userId uuid.UUID, status entity.SubscriptionStatus) *entity.Subscription {
	next := time.Date(2024, time.March, 6, 0, 0, 0, 0, ist)
	return f.store.SeedSubscription(entity.Subscription{
		UserId:                userId,
		Category:              constant.CategoryProduce,
		Cadence:               entity.SubscriptionCadenceWeekly,
		Status:                status,
		NextDeliveryDate:      &next,
		SubscriptionStartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, ist),
		SubscriptionEndDate:   time.Date(2024, time.July, 1, 0, 0, 0, 0, ist),
	})
}

func request(pauseType entity.PauseType, users ...uuid.UUID) Request {
	end := time.Date(2024, time.March, 20, 0, 0, 0, 0, ist)
	return Request{
		PauseType: pauseType,
		UserIds:   users,
		StartDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, ist),
		EndDate:   &end,
		Reason:    "flooding",
		ActorId:   "ops-1",
	}
}

func TestPause_AllFlipsEveryActiveSubscription(t *testing.T) {
	f := newFixture(t)

	active := make([]*entity.Subscription, 0, 5)
	for i := 0; i < 5; i++ {
		active = append(active, f.seed(uuid.New(), entity.SubscriptionStatusActive))
	}
	selfPaused := f.seed(uuid.New(), entity.SubscriptionStatusPaused)
	cancelled := f.seed(uuid.New(), entity.SubscriptionStatusCancelled)

	res, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeAll))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Record.AffectedSubscriptionCount)
	assert.Equal(t, 5, res.ProcessedCount)
	assert.Zero(t, res.SkippedCount)
	assert.Empty(t, res.Errors)

	for _, sub := range active {
		stored := f.store.Subscription(sub.Id)
		assert.Equal(t, entity.SubscriptionStatusAdminPaused, stored.Status)
		require.NotNil(t, stored.AdminPauseId)
		assert.Equal(t, res.Record.Id, *stored.AdminPauseId)
		assert.Equal(t, "flooding", *stored.PauseReason)
		assert.True(t, stored.HasConsistentAdminPause())
	}
	assert.Equal(t, entity.SubscriptionStatusPaused, f.store.Subscription(selfPaused.Id).Status)
	assert.Equal(t, entity.SubscriptionStatusCancelled, f.store.Subscription(cancelled.Id).Status)

	record := f.store.PauseRecord(res.Record.Id)
	require.NotNil(t, record)
	assert.Equal(t, entity.PauseRecordStatusActive, record.Status)
	assert.Nil(t, record.AffectedUserIds)

	created := f.publisher.OfType(constant.EventAdminPauseCreated)
	require.Len(t, created, 1)
	assert.Equal(t, 5, created[0].Count)
}

func TestPause_AllWithNoTargetsStillRecords(t *testing.T) {
	f := newFixture(t)

	res, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeAll))
	require.NoError(t, err)
	assert.Zero(t, res.Record.AffectedSubscriptionCount)
	assert.Zero(t, res.ProcessedCount)
	assert.Len(t, f.store.PauseRecords(), 1)
}

func TestPause_SelectedOnlyTouchesListedUsers(t *testing.T) {
	f := newFixture(t)
	target := uuid.New()
	other := uuid.New()

	first := f.seed(target, entity.SubscriptionStatusActive)
	second := f.seed(target, entity.SubscriptionStatusActive)
	untouched := f.seed(other, entity.SubscriptionStatusActive)

	res, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeSelected, target, target))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{target}, res.Record.AffectedUserIds)
	assert.Equal(t, 2, res.Record.AffectedSubscriptionCount)
	assert.Equal(t, 2, res.ProcessedCount)
	assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(first.Id).Status)
	assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(second.Id).Status)
	assert.Equal(t, entity.SubscriptionStatusActive, f.store.Subscription(untouched.Id).Status)
}

func TestPause_RowFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	subs := lo.Times(4, func(int) *entity.Subscription { return f.seed(uuid.New(), entity.SubscriptionStatusActive) })
	broken := subs[2]
	f.store.FailRow(testutil.OpApplyAdminPause, broken.Id, errors.New("deadlock detected"))

	res, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeAll))
	require.NoError(t, err)

	assert.Equal(t, 3, res.ProcessedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, broken.Id, res.Errors[0].SubscriptionId)
	assert.Equal(t, entity.SubscriptionStatusActive, f.store.Subscription(broken.Id).Status)
	assert.Nil(t, f.store.Subscription(broken.Id).AdminPauseId)

	// the record stays usable for a retry once the row recovers
	f.store.FailRow(testutil.OpApplyAdminPause, broken.Id, nil)
	retry, err := f.orchestrator.RetryPause(context.Background(), res.Record.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.ProcessedCount)
	assert.Empty(t, retry.Errors)
	assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(broken.Id).Status)
}

func TestPause_RowThatLeftActiveIsSkipped(t *testing.T) {
	f := newFixture(t)
	keep := f.seed(uuid.New(), entity.SubscriptionStatusActive)
	racing := f.seed(uuid.New(), entity.SubscriptionStatusActive)

	f.store.BeforeWrite = func(op string, id uuid.UUID) {
		if op == testutil.OpApplyAdminPause && id == racing.Id {
			f.store.MutateSubscription(id, func(s *entity.Subscription) { s.Status = entity.SubscriptionStatusCancelled })
		}
	}

	res, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeAll))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProcessedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Empty(t, res.Errors)
	assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(keep.Id).Status)
	assert.Equal(t, entity.SubscriptionStatusCancelled, f.store.Subscription(racing.Id).Status)
}

func TestPause_CallerCancellationDoesNotStopRows(t *testing.T) {
	f := newFixture(t)
	subs := lo.Times(3, func(int) *entity.Subscription { return f.seed(uuid.New(), entity.SubscriptionStatusActive) })

	ctx, cancel := context.WithCancel(context.Background())
	f.store.BeforeWrite = func(op string, id uuid.UUID) {
		if op == testutil.OpApplyAdminPause {
			cancel()
		}
	}

	res, err := f.orchestrator.Pause(ctx, request(entity.PauseTypeAll))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ProcessedCount)
	for _, sub := range subs {
		assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(sub.Id).Status)
	}
}

func TestPause_RecordCreateFailure(t *testing.T) {
	f := newFixture(t)
	sub := f.seed(uuid.New(), entity.SubscriptionStatusActive)
	f.store.FailOn(testutil.OpPauseCreate, errors.New("connection reset"))

	_, err := f.orchestrator.Pause(context.Background(), request(entity.PauseTypeAll))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrDatabase))
	assert.Equal(t, entity.SubscriptionStatusActive, f.store.Subscription(sub.Id).Status)
	assert.Empty(t, f.store.PauseRecords())
}

func TestPause_Validation(t *testing.T) {
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, ist)
	before := start.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"unknown type", func(r *Request) { r.PauseType = "some" }},
		{"selected without users", func(r *Request) { r.PauseType = entity.PauseTypeSelected; r.UserIds = nil }},
		{"selected with nil user", func(r *Request) { r.PauseType = entity.PauseTypeSelected; r.UserIds = []uuid.UUID{uuid.Nil} }},
		{"missing start", func(r *Request) { r.StartDate = time.Time{} }},
		{"end before start", func(r *Request) { r.EndDate = &before }},
		{"blank reason", func(r *Request) { r.Reason = "   " }},
		{"missing actor", func(r *Request) { r.ActorId = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := request(entity.PauseTypeAll)
			tt.mutate(&req)

			_, err := f.orchestrator.Pause(context.Background(), req)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err), "unexpected error %v", err)
			assert.Empty(t, f.store.PauseRecords())
		})
	}
}

func TestRetryPause_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orchestrator.RetryPause(ctx, uuid.New())
	assert.True(t, ierr.IsNotFound(err))

	done := f.store.SeedPauseRecord(entity.AdminPauseRecord{
		PauseType: entity.PauseTypeAll,
		StartDate: f.clock.Now(),
		Reason:    "r",
		ActorId:   "a",
		Status:    entity.PauseRecordStatusCompleted,
	})
	_, err = f.orchestrator.RetryPause(ctx, done.Id)
	assert.True(t, ierr.IsInvalidOperation(err))
}
