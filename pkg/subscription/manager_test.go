package subscription

import (
	"context"
	"testing"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/testutil"
	"delivery-scheduler-be/pkg/delivery"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, ist)
}

type fixture struct {
	store     *testutil.InMemoryStore
	publisher *testutil.InMemoryPublisher
	clock     *testutil.Clock
	manager   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewInMemoryStore()
	store.SeedDefaultPolicies()
	log := logger.NewNopLogger()
	publisher := testutil.NewInMemoryPublisher()
	// Monday morning
	clock := testutil.NewClock(time.Date(2024, time.March, 4, 10, 0, 0, 0, ist))
	cache := delivery.NewPolicyCache(store.NewUnitOfWork(context.Background()).SchedulePolicyRepository(), log)

	return &fixture{
		store:     store,
		publisher: publisher,
		clock:     clock,
		manager:   NewManager(log, cache, delivery.NewCalendar(ist, time.Sunday, 20), publisher, clock.NowFunc()),
	}
}

func (f *fixture) seed(status entity.SubscriptionStatus, next time.Time) *entity.Subscription {
	return f.store.SeedSubscription(entity.Subscription{
		UserId:                uuid.New(),
		Category:              constant.CategoryProduce,
		Cadence:               entity.SubscriptionCadenceWeekly,
		Status:                status,
		NextDeliveryDate:      &next,
		SubscriptionStartDate: day(time.January, 1),
		SubscriptionEndDate:   day(time.July, 1),
	})
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.manager.Create(ctx, f.store.NewUnitOfWork(ctx), CreateInput{
		UserId:         uuid.New(),
		Category:       constant.CategoryProduce,
		Cadence:        entity.SubscriptionCadenceMonthly,
		StartDate:      time.Date(2024, time.March, 5, 15, 30, 0, 0, ist),
		DurationMonths: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, day(time.March, 5), sub.SubscriptionStartDate)
	assert.Equal(t, day(time.June, 5), sub.SubscriptionEndDate)
	require.NotNil(t, sub.NextDeliveryDate)
	assert.Equal(t, day(time.March, 5), *sub.NextDeliveryDate)
	assert.NotNil(t, f.store.Subscription(sub.Id))
}

func TestCreate_StartInThePastAnchorsOnSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// bakery every second day from Friday 2024-03-01: 1, 3->4 (Sunday shift), 5, ...
	sub, err := f.manager.Create(ctx, f.store.NewUnitOfWork(ctx), CreateInput{
		UserId:         uuid.New(),
		Category:       constant.CategoryBakery,
		Cadence:        entity.SubscriptionCadenceWeekly,
		StartDate:      day(time.March, 1),
		DurationMonths: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, day(time.March, 4), *sub.NextDeliveryDate)
}

func TestCreate_Validation(t *testing.T) {
	valid := CreateInput{
		UserId:         uuid.New(),
		Category:       constant.CategoryDairy,
		Cadence:        entity.SubscriptionCadenceWeekly,
		StartDate:      day(time.March, 5),
		DurationMonths: 1,
	}

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing user", func(in *CreateInput) { in.UserId = uuid.Nil }},
		{"unknown category", func(in *CreateInput) { in.Category = "meat" }},
		{"unknown cadence", func(in *CreateInput) { in.Cadence = "yearly" }},
		{"missing start", func(in *CreateInput) { in.StartDate = time.Time{} }},
		{"zero duration", func(in *CreateInput) { in.DurationMonths = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			input := valid
			tt.mutate(&input)

			_, err := f.manager.Create(ctx, f.store.NewUnitOfWork(ctx), input)
			assert.True(t, ierr.IsValidation(err), "unexpected error %v", err)
		})
	}
}

func TestGet_ListsUpcomingDeliveries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.seed(entity.SubscriptionStatusActive, day(time.March, 11))

	detail, err := f.manager.Get(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		day(time.March, 11), day(time.March, 18), day(time.March, 25), day(time.April, 1), day(time.April, 8),
	}, detail.Upcoming)
}

func TestGet_UpcomingStopsAtEndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.seed(entity.SubscriptionStatusActive, day(time.March, 11))
	f.store.MutateSubscription(sub.Id, func(s *entity.Subscription) { s.SubscriptionEndDate = day(time.March, 20) })

	detail, err := f.manager.Get(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(time.March, 11), day(time.March, 18)}, detail.Upcoming)
}

func TestGet_PausedHasNoUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.seed(entity.SubscriptionStatusPaused, day(time.March, 11))

	detail, err := f.manager.Get(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	require.NoError(t, err)
	assert.Empty(t, detail.Upcoming)

	_, err = f.manager.Get(ctx, f.store.NewUnitOfWork(ctx), uuid.New())
	assert.True(t, ierr.IsNotFound(err))
}

func TestPause(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		next       time.Time
		wantReason delivery.EligibilityReason
	}{
		{"delivery later this week", time.Date(2024, time.March, 4, 10, 0, 0, 0, ist), day(time.March, 6), delivery.EligibilityAccepted},
		{"tomorrow before cutoff", time.Date(2024, time.March, 4, 19, 59, 0, 0, ist), day(time.March, 5), delivery.EligibilityAccepted},
		{"tomorrow at cutoff", time.Date(2024, time.March, 4, 20, 0, 0, 0, ist), day(time.March, 5), delivery.EligibilityPastCutoff},
		{"delivery today", time.Date(2024, time.March, 4, 6, 0, 0, 0, ist), day(time.March, 4), delivery.EligibilityDeliveryCommitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.clock.Set(tt.now)
			ctx := context.Background()
			sub := f.seed(entity.SubscriptionStatusActive, tt.next)

			eligibility, err := f.manager.Eligibility(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantReason, eligibility.Reason)

			paused, err := f.manager.Pause(ctx, f.store.NewUnitOfWork(ctx), sub.Id, " travelling ")
			stored := f.store.Subscription(sub.Id)
			if tt.wantReason != delivery.EligibilityAccepted {
				assert.True(t, ierr.IsInvalidOperation(err), "unexpected error %v", err)
				assert.Equal(t, entity.SubscriptionStatusActive, stored.Status)
				assert.Empty(t, f.publisher.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, entity.SubscriptionStatusPaused, paused.Status)
			assert.Equal(t, entity.SubscriptionStatusPaused, stored.Status)
			assert.Equal(t, "travelling", lo.FromPtr(stored.PauseReason))
			assert.Equal(t, tt.now.AddDate(0, 3, 0), lo.FromPtr(stored.ReactivationDeadline))
			assert.Equal(t, tt.next, *stored.NextDeliveryDate)
			assert.Len(t, f.publisher.OfType(constant.EventSubscriptionPaused), 1)
		})
	}
}

func TestPause_OnlyFromActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []entity.SubscriptionStatus{
		entity.SubscriptionStatusPaused,
		entity.SubscriptionStatusAdminPaused,
		entity.SubscriptionStatusCancelled,
	} {
		sub := f.seed(status, day(time.March, 8))
		_, err := f.manager.Pause(ctx, f.store.NewUnitOfWork(ctx), sub.Id, "")
		assert.True(t, ierr.IsInvalidOperation(err), "status %s", status)
	}
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.seed(entity.SubscriptionStatusActive, day(time.March, 6))

	_, err := f.manager.Pause(ctx, f.store.NewUnitOfWork(ctx), sub.Id, "holiday")
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, time.March, 9, 12, 0, 0, 0, ist))
	resumed, err := f.manager.Resume(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, resumed.Status)

	stored := f.store.Subscription(sub.Id)
	assert.Equal(t, entity.SubscriptionStatusActive, stored.Status)
	// Saturday plus seven lands on a Saturday
	assert.Equal(t, day(time.March, 16), *stored.NextDeliveryDate)
	assert.Nil(t, stored.PauseDate)
	assert.Nil(t, stored.PauseReason)
	assert.Nil(t, stored.ReactivationDeadline)
	assert.Len(t, f.publisher.OfType(constant.EventSubscriptionResumed), 1)
}

func TestResume_RejectsAdminPauseAndActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held := f.seed(entity.SubscriptionStatusAdminPaused, day(time.March, 6))
	_, err := f.manager.Resume(ctx, f.store.NewUnitOfWork(ctx), held.Id)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.Equal(t, entity.SubscriptionStatusAdminPaused, f.store.Subscription(held.Id).Status)

	active := f.seed(entity.SubscriptionStatusActive, day(time.March, 6))
	_, err = f.manager.Resume(ctx, f.store.NewUnitOfWork(ctx), active.Id)
	assert.True(t, ierr.IsInvalidOperation(err))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := f.seed(entity.SubscriptionStatusActive, day(time.March, 6))
	cancelled, err := f.manager.Cancel(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusCancelled, cancelled.Status)
	assert.Nil(t, f.store.Subscription(sub.Id).NextDeliveryDate)

	_, err = f.manager.Cancel(ctx, f.store.NewUnitOfWork(ctx), sub.Id)
	assert.True(t, ierr.IsInvalidOperation(err))

	paused := f.seed(entity.SubscriptionStatusAdminPaused, day(time.March, 6))
	_, err = f.manager.Cancel(ctx, f.store.NewUnitOfWork(ctx), paused.Id)
	assert.True(t, ierr.IsInvalidOperation(err))
}
