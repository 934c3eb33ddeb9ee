package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	errors2 "github.com/lwhx/OVH/errors"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/internal/store"
	"github.com/lwhx/OVH/internal/store/memory"
	"github.com/lwhx/OVH/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestRegistry(t *testing.T) (*Registry, *store.Repository, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	n := 0
	repo := store.NewRepository(memory.New(), logging.Nop())
	reg := New(repo, logging.Nop(),
		WithClock(clock.Now),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	reg.Load(context.Background())
	return reg, repo, clock
}

func TestRegistry_AddItem(t *testing.T) {
	reg, repo, clock := newTestRegistry(t)
	ctx := context.Background()

	item, err := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: " 24sk202 ", Datacenter: "rbx", Options: []string{"ram-64g", " "}})
	require.NoError(t, err)
	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, "24sk202", item.PlanCode)
	assert.Equal(t, []string{"ram-64g"}, item.Options)
	assert.Equal(t, state.StatusRunning, item.Status)
	assert.Equal(t, 30, item.RetryInterval)
	assert.Zero(t, item.RetryCount)
	assert.Zero(t, item.LastCheckTime)
	assert.Equal(t, clock.t, item.CreatedAt)

	assert.Equal(t, []types.QueueItem{item}, repo.LoadQueue(ctx))
}

func TestRegistry_AddItem_Validation(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.AddItem(context.Background(), types.QueueItemRequest{RetryInterval: -1})
	var verr *errors2.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 3)
	assert.Empty(t, reg.Items())
}

func TestRegistry_RemoveItem(t *testing.T) {
	reg, repo, _ := newTestRegistry(t)
	ctx := context.Background()
	a, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx"})
	b, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "b", Datacenter: "gra"})

	require.NoError(t, reg.RemoveItem(ctx, a.ID))
	assert.ErrorIs(t, reg.RemoveItem(ctx, a.ID), ErrNotFound)
	assert.Equal(t, []types.QueueItem{b}, reg.Items())
	assert.Len(t, repo.LoadQueue(ctx), 1)
}

func TestRegistry_SetStatus(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()
	item, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx"})

	tests := []struct {
		name    string
		to      state.QueueStatus
		wantErr error
	}{
		{"pause", state.StatusPaused, nil},
		{"same status is a no-op", state.StatusPaused, nil},
		{"resume", state.StatusRunning, nil},
		{"unknown", state.QueueStatus("pending"), ErrInvalidTransition},
		{"complete", state.StatusCompleted, nil},
		{"completed is terminal", state.StatusRunning, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.SetStatus(ctx, item.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}

	_, err := reg.SetStatus(ctx, "missing", state.StatusPaused)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_AttemptLifecycle(t *testing.T) {
	reg, repo, clock := newTestRegistry(t)
	ctx := context.Background()
	item, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "24sk202", Datacenter: "rbx", RetryInterval: 30})

	snap, ok := reg.BeginAttempt(ctx, item.ID, clock.t)
	require.True(t, ok)
	assert.Equal(t, 1, snap.RetryCount)
	assert.Equal(t, clock.t.Unix(), snap.LastCheckTime)
	assert.Equal(t, 1, repo.LoadQueue(ctx)[0].RetryCount, "bookkeeping persisted before the attempt")

	_, ok = reg.BeginAttempt(ctx, item.ID, clock.t.Add(10*time.Second))
	assert.False(t, ok, "not due before the retry interval")

	rec := reg.FinishAttempt(ctx, snap, types.PurchaseOutcome{Err: errors.New("currently out of stock")})
	assert.Equal(t, state.OutcomeFailed, rec.Status)
	assert.Equal(t, 1, rec.AttemptCount)

	clock.t = clock.t.Add(30 * time.Second)
	snap, ok = reg.BeginAttempt(ctx, item.ID, clock.t)
	require.True(t, ok)
	assert.Equal(t, 2, snap.RetryCount)

	rec = reg.FinishAttempt(ctx, snap, types.PurchaseOutcome{Result: &types.PurchaseResult{OrderID: "1", OrderURL: "u"}})
	assert.Equal(t, state.OutcomeSuccess, rec.Status)
	assert.Equal(t, 2, rec.AttemptCount)

	got, _ := reg.Item(item.ID)
	assert.Equal(t, state.StatusCompleted, got.Status)
	require.Len(t, reg.History(), 1)
	assert.Len(t, repo.LoadHistory(ctx), 1)

	_, ok = reg.BeginAttempt(ctx, item.ID, clock.t.Add(time.Hour))
	assert.False(t, ok, "completed items are never attempted")

	assert.Equal(t, types.Stats{PurchaseSuccess: 1}, reg.Stats())
}

func TestRegistry_FinishAttemptAfterRemoval(t *testing.T) {
	reg, _, clock := newTestRegistry(t)
	ctx := context.Background()
	item, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx"})

	snap, ok := reg.BeginAttempt(ctx, item.ID, clock.t)
	require.True(t, ok)
	require.NoError(t, reg.RemoveItem(ctx, item.ID))

	reg.FinishAttempt(ctx, snap, types.PurchaseOutcome{Result: &types.PurchaseResult{OrderID: "1"}})
	assert.Empty(t, reg.Items())
	assert.Len(t, reg.History(), 1)
}

func TestRegistry_ClearHistory(t *testing.T) {
	reg, repo, clock := newTestRegistry(t)
	ctx := context.Background()
	item, _ := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx"})
	snap, _ := reg.BeginAttempt(ctx, item.ID, clock.t)
	reg.FinishAttempt(ctx, snap, types.PurchaseOutcome{Err: errors.New("x")})

	require.NoError(t, reg.ClearHistory(ctx))
	assert.Empty(t, reg.History())
	assert.Empty(t, repo.LoadHistory(ctx))
}

func TestRegistry_Plans(t *testing.T) {
	reg, repo, _ := newTestRegistry(t)
	ctx := context.Background()

	err := reg.SetPlans(ctx, []types.ServerPlan{{PlanCode: "a"}, {PlanCode: "a"}, {}})
	var verr *errors2.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)

	require.NoError(t, reg.SetPlans(ctx, []types.ServerPlan{
		{PlanCode: "a", Datacenters: []types.DatacenterAvailability{{Datacenter: "rbx", Availability: "unavailable"}, {Datacenter: "gra", Availability: "unknown"}}},
	}))
	require.NoError(t, reg.UpdatePlanAvailability(ctx, "a", types.AvailabilitySnapshot{"rbx": types.Available, "sbg": types.Unavailable}))
	assert.Error(t, reg.UpdatePlanAvailability(ctx, "zzz", nil))

	plans := reg.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, []types.DatacenterAvailability{
		{Datacenter: "rbx", Availability: "available"},
		{Datacenter: "gra", Availability: "unknown"},
		{Datacenter: "sbg", Availability: "unavailable"},
	}, plans[0].Datacenters)
	assert.Equal(t, plans, repo.LoadPlans(ctx))
	assert.Equal(t, types.Stats{TotalServers: 1, AvailableServers: 1}, reg.Stats())
}

func TestRegistry_SaveSettings(t *testing.T) {
	reg, repo, _ := newTestRegistry(t)
	ctx := context.Background()

	prev, err := reg.SaveSettings(ctx, types.Settings{AppKey: "k", Zone: "FR"})
	require.NoError(t, err)
	assert.Equal(t, types.Settings{}, prev)

	got := reg.Settings()
	assert.Equal(t, "ovh-eu", got.Endpoint)
	assert.Equal(t, "go-ovh-fr", got.IAM)
	assert.Equal(t, got, repo.LoadSettings(ctx))
}

func TestRegistry_GettersReturnCopies(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()
	_, _ = reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx", Options: []string{"x"}})

	items := reg.Items()
	items[0].Options[0] = "mutated"
	items[0].Status = state.StatusPaused
	assert.Equal(t, "x", reg.Items()[0].Options[0])
	assert.Equal(t, state.StatusRunning, reg.Items()[0].Status)
}

// failingRepository wraps a working repository and fails selected saves.
type failingRepository struct {
	Repository
	SaveQueueFunc   func(ctx context.Context, items []types.QueueItem) error
	SaveHistoryFunc func(ctx context.Context, records []types.HistoryRecord) error
	SavePlansFunc   func(ctx context.Context, plans []types.ServerPlan) error
}

func (f *failingRepository) SaveQueue(ctx context.Context, items []types.QueueItem) error {
	if f.SaveQueueFunc != nil {
		return f.SaveQueueFunc(ctx, items)
	}
	return f.Repository.SaveQueue(ctx, items)
}

func (f *failingRepository) SaveHistory(ctx context.Context, records []types.HistoryRecord) error {
	if f.SaveHistoryFunc != nil {
		return f.SaveHistoryFunc(ctx, records)
	}
	return f.Repository.SaveHistory(ctx, records)
}

func (f *failingRepository) SavePlans(ctx context.Context, plans []types.ServerPlan) error {
	if f.SavePlansFunc != nil {
		return f.SavePlansFunc(ctx, plans)
	}
	return f.Repository.SavePlans(ctx, plans)
}

func newFailingRegistry(t *testing.T) (*Registry, *failingRepository) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	n := 0
	repo := &failingRepository{Repository: store.NewRepository(memory.New(), logging.Nop())}
	reg := New(repo, logging.Nop(),
		WithClock(clock.Now),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	reg.Load(context.Background())
	return reg, repo
}

func TestRegistry_QueueUnchangedWhenSaveFails(t *testing.T) {
	reg, repo := newFailingRegistry(t)
	ctx := context.Background()
	kept, err := reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "a", Datacenter: "rbx"})
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	repo.SaveQueueFunc = func(context.Context, []types.QueueItem) error { return diskFull }

	_, err = reg.AddItem(ctx, types.QueueItemRequest{PlanCode: "b", Datacenter: "gra"})
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, []types.QueueItem{kept}, reg.Items())

	assert.ErrorIs(t, reg.RemoveItem(ctx, kept.ID), diskFull)
	assert.Equal(t, []types.QueueItem{kept}, reg.Items())

	_, err = reg.SetStatus(ctx, kept.ID, state.StatusPaused)
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, state.StatusRunning, reg.Items()[0].Status)
	assert.Equal(t, kept.UpdatedAt, reg.Items()[0].UpdatedAt)

	repo.SaveQueueFunc = nil
	_, err = reg.SetStatus(ctx, kept.ID, state.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, state.StatusPaused, reg.Items()[0].Status)
}

func TestRegistry_PlansUnchangedWhenSaveFails(t *testing.T) {
	reg, repo := newFailingRegistry(t)
	ctx := context.Background()
	plan := types.ServerPlan{PlanCode: "24sk202", Datacenters: []types.DatacenterAvailability{{Datacenter: "rbx", Availability: "unavailable"}}}
	require.NoError(t, reg.SetPlans(ctx, []types.ServerPlan{plan}))

	repo.SavePlansFunc = func(context.Context, []types.ServerPlan) error { return errors.New("disk full") }

	assert.Error(t, reg.SetPlans(ctx, nil))
	assert.Error(t, reg.UpdatePlanAvailability(ctx, "24sk202", types.AvailabilitySnapshot{"rbx": "1H", "gra": "72H"}))
	assert.Equal(t, []types.ServerPlan{plan}, reg.Plans())
}
