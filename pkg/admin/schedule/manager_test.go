package schedule

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
	"delivery-scheduler-be/pkg/delivery"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

type fixture struct {
	store     *testutil.InMemoryStore
	cache     *delivery.PolicyCache
	publisher *testutil.InMemoryPublisher
	clock     *testutil.Clock
	manager   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewInMemoryStore()
	store.SeedDefaultPolicies()

	log := logger.NewNopLogger()
	cache := delivery.NewPolicyCache(store.NewUnitOfWork(context.Background()).SchedulePolicyRepository(), log)
	publisher := testutil.NewInMemoryPublisher()
	clock := testutil.NewClock(time.Date(2024, time.March, 4, 10, 0, 0, 0, ist))
	calendar := delivery.NewCalendar(ist, time.Sunday, 20)

	return &fixture{
		store:     store,
		cache:     cache,
		publisher: publisher,
		clock:     clock,
		manager:   NewManager(log, cache, calendar, publisher, clock.NowFunc()),
	}
}

func (f *fixture) update(category constant.Category, input UpdateInput) (*UpdateResult, error) {
	ctx := context.Background()
	return f.manager.Update(ctx, f.store.NewUnitOfWork(ctx), category, input)
}

func TestUpdate_WritesPolicyAndAudit(t *testing.T) {
	f := newFixture(t)

	res, err := f.update(constant.CategoryProduce, UpdateInput{GapDays: 5, Reason: "supplier change", ActorId: "ops-1"})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Policy.GapDays)
	assert.False(t, res.Policy.IsDaily)
	assert.Equal(t, "ops-1", res.Policy.UpdatedBy)
	assert.True(t, res.CacheInvalidated)

	stored := f.store.Policy(constant.CategoryProduce)
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.GapDays)
	assert.Equal(t, constant.DefaultPolicies[constant.CategoryProduce].Description, stored.Description)

	audits := f.store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, 7, audits[0].OldGapDays)
	assert.Equal(t, 5, audits[0].NewGapDays)
	assert.Equal(t, "supplier change", audits[0].Reason)
	assert.Equal(t, "ops-1", audits[0].ActorId)

	require.Len(t, f.publisher.OfType(constant.EventSchedulePolicyUpdated), 1)
}

func TestUpdate_DailyStoresGapOfOne(t *testing.T) {
	f := newFixture(t)

	res, err := f.update(constant.CategoryBakery, UpdateInput{GapDays: 0, IsDaily: true, Reason: "r", ActorId: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Policy.GapDays)
	assert.True(t, res.Policy.IsDaily)
	assert.Equal(t, 1, f.store.Policy(constant.CategoryBakery).GapDays)
}

func TestUpdate_AuditFailureRollsBackPolicy(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn(testutil.OpPolicyAudit, errors.New("disk full"))

	_, err := f.update(constant.CategoryProduce, UpdateInput{GapDays: 3, Reason: "r", ActorId: "a"})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrDatabase))

	assert.Equal(t, 7, f.store.Policy(constant.CategoryProduce).GapDays)
	assert.Empty(t, f.store.Audits())
	assert.Empty(t, f.publisher.Events())
}

func TestUpdate_InvalidatesCachedPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.cache.Resolve(ctx, constant.CategoryProduce)
	require.NoError(t, err)
	assert.Equal(t, 7, before.GapDays)

	_, err = f.update(constant.CategoryProduce, UpdateInput{GapDays: 10, Reason: "r", ActorId: "a"})
	require.NoError(t, err)

	after, err := f.cache.Resolve(ctx, constant.CategoryProduce)
	require.NoError(t, err)
	assert.Equal(t, 10, after.GapDays)
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		category constant.Category
		input    UpdateInput
		check    func(error) bool
	}{
		{"gap below range", constant.CategoryProduce, UpdateInput{GapDays: 0, Reason: "r", ActorId: "a"}, ierr.IsValidation},
		{"gap above range", constant.CategoryProduce, UpdateInput{GapDays: 31, Reason: "r", ActorId: "a"}, ierr.IsValidation},
		{"missing reason", constant.CategoryProduce, UpdateInput{GapDays: 3, Reason: "  ", ActorId: "a"}, ierr.IsValidation},
		{"missing actor", constant.CategoryProduce, UpdateInput{GapDays: 3, Reason: "r"}, ierr.IsValidation},
		{"unknown category", constant.Category("meat"), UpdateInput{GapDays: 3, Reason: "r", ActorId: "a"}, ierr.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.update(tt.category, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.Empty(t, f.store.Audits())
		})
	}
}

func TestGet_MissingRowIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	policy, err := f.manager.Get(ctx, f.store.NewUnitOfWork(ctx), constant.CategoryDairy)
	require.NoError(t, err)
	assert.True(t, policy.IsDaily)

	empty := testutil.NewInMemoryStore()
	_, err = f.manager.Get(ctx, empty.NewUnitOfWork(ctx), constant.CategoryDairy)
	assert.True(t, ierr.IsNotFound(err))
}

func TestList_OrderedByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	policies, err := f.manager.List(ctx, f.store.NewUnitOfWork(ctx))
	require.NoError(t, err)
	require.Len(t, policies, 3)
	assert.Equal(t, []constant.Category{constant.CategoryBakery, constant.CategoryDairy, constant.CategoryProduce},
		lo.Map(policies, func(p *entity.SchedulePolicy, _ int) constant.Category { return p.Category }))
}

func TestListAudit_NewestFirstAndFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, gap := range []int{3, 4, 5} {
		f.clock.Advance(time.Minute)
		_, err := f.update(constant.CategoryProduce, UpdateInput{GapDays: gap, Reason: "r", ActorId: "a"})
		require.NoError(t, err)
	}
	f.clock.Advance(time.Minute)
	_, err := f.update(constant.CategoryBakery, UpdateInput{GapDays: 3, Reason: "r", ActorId: "a"})
	require.NoError(t, err)

	all, err := f.manager.ListAudit(ctx, f.store.NewUnitOfWork(ctx), nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, constant.CategoryBakery, all[0].Category)

	produce := constant.CategoryProduce
	filtered, err := f.manager.ListAudit(ctx, f.store.NewUnitOfWork(ctx), &produce, 2)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, 5, filtered[0].NewGapDays)
	assert.Equal(t, 4, filtered[1].NewGapDays)

	unknown := constant.Category("meat")
	_, err = f.manager.ListAudit(ctx, f.store.NewUnitOfWork(ctx), &unknown, 10)
	assert.True(t, ierr.IsNotFound(err))
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, ist)

	t.Run("stored policy", func(t *testing.T) {
		res, err := f.manager.Preview(ctx, constant.CategoryProduce, start, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 7, res.Policy.GapDays)
		require.NotEmpty(t, res.Dates)
		assert.Equal(t, start, res.Dates[0])
	})

	t.Run("override gap", func(t *testing.T) {
		res, err := f.manager.Preview(ctx, constant.CategoryProduce, start, 1, &PreviewOverride{GapDays: lo.ToPtr(14)})
		require.NoError(t, err)
		assert.Equal(t, 14, res.Policy.GapDays)
		assert.Len(t, res.Dates, 3)
		assert.Equal(t, 7, f.store.Policy(constant.CategoryProduce).GapDays)
	})

	t.Run("zero months", func(t *testing.T) {
		res, err := f.manager.Preview(ctx, constant.CategoryBakery, start, 0, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Dates)
	})

	t.Run("invalid window", func(t *testing.T) {
		_, err := f.manager.Preview(ctx, constant.CategoryBakery, start, 13, nil)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := f.manager.Preview(ctx, constant.CategoryBakery, start, 1, &PreviewOverride{GapDays: lo.ToPtr(0)})
		assert.True(t, ierr.IsValidation(err))
	})
}
