package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lwhx/OVH/internal/constants"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/internal/store"
	"github.com/lwhx/OVH/internal/store/memory"
	"github.com/lwhx/OVH/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := store.NewRepository(memory.New(), logging.Nop())
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	items := []types.QueueItem{{
		ID: "q1", PlanCode: "24sk202", Datacenter: "rbx", Options: []string{"ram-64g"},
		Status: state.StatusRunning, RetryInterval: 30, RetryCount: 3, LastCheckTime: now.Unix(),
		CreatedAt: now, UpdatedAt: now,
	}}
	history := []types.HistoryRecord{
		{ID: "h1", TaskID: "q1", PlanCode: "24sk202", Datacenter: "rbx", Options: []string{},
			Status: state.OutcomeFailed, ErrorMessage: strPtr("currently out of stock"), AttemptCount: 3, PurchaseTime: now},
		{ID: "h2", TaskID: "q2", PlanCode: "24sk203", Datacenter: "gra", Options: []string{"x"},
			Status: state.OutcomeSuccess, OrderID: strPtr("1"), OrderURL: strPtr("https://o/1"), AttemptCount: 1, PurchaseTime: now},
	}
	plans := []types.ServerPlan{{PlanCode: "24sk202", Name: "KS-2", Datacenters: []types.DatacenterAvailability{{Datacenter: "rbx", Availability: "1H-low"}}}}
	settings := types.Settings{AppKey: "a", AppSecret: "b", ConsumerKey: "c", Zone: "FR"}

	require.NoError(t, repo.SaveQueue(ctx, items))
	require.NoError(t, repo.SaveHistory(ctx, history))
	require.NoError(t, repo.SavePlans(ctx, plans))
	require.NoError(t, repo.SaveSettings(ctx, settings))

	assert.Equal(t, items, repo.LoadQueue(ctx))
	assert.Equal(t, history, repo.LoadHistory(ctx))
	assert.Equal(t, plans[0].PlanCode, repo.LoadPlans(ctx)[0].PlanCode)
	assert.Equal(t, settings, repo.LoadSettings(ctx))
}

func TestRepository_MissingAndCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	journal := logging.NewJournal(10)
	logger := logging.Nop()
	logger.AddHook(journal)
	repo := store.NewRepository(docs, logger)

	assert.Empty(t, repo.LoadQueue(ctx))
	assert.Equal(t, types.Settings{}, repo.LoadSettings(ctx))

	require.NoError(t, docs.Save(ctx, constants.QueueKey, []byte("{not json")))
	require.NoError(t, docs.Save(ctx, constants.HistoryKey, []byte("   ")))
	assert.Empty(t, repo.LoadQueue(ctx))
	assert.Empty(t, repo.LoadHistory(ctx))

	entries := journal.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "WARNING", entries[0].Level)
	assert.Equal(t, "store", entries[0].Source)
}

func TestRepository_PartiallyDecodableDocumentIsDiscarded(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	journal := logging.NewJournal(10)
	logger := logging.Nop()
	logger.AddHook(journal)
	repo := store.NewRepository(docs, logger)

	queue := `[{"id":"a","planCode":"X","status":"running"},{"id":"b","retryCount":"oops"}]`
	require.NoError(t, docs.Save(ctx, constants.QueueKey, []byte(queue)))
	require.NoError(t, docs.Save(ctx, constants.SettingsKey, []byte(`{"appKey":"k","zone":7}`)))

	assert.Empty(t, repo.LoadQueue(ctx))
	assert.Equal(t, types.Settings{}, repo.LoadSettings(ctx))

	entries := journal.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "WARNING", e.Level)
		assert.Contains(t, e.Message, "corrupt")
	}
}

func TestRepository_EmptyCollectionsPersistAsArrays(t *testing.T) {
	ctx := context.Background()
	docs := memory.New()
	repo := store.NewRepository(docs, logging.Nop())

	require.NoError(t, repo.SaveQueue(ctx, nil))
	raw, err := docs.Load(ctx, constants.QueueKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) Save(ctx context.Context, key string, data []byte) error {
	return errors.New("disk gone")
}
func (failingStore) Close() error { return nil }

func TestRepository_StoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := store.NewRepository(failingStore{}, logging.Nop())

	assert.Empty(t, repo.LoadHistory(ctx))
	err := repo.SaveHistory(ctx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save history")
}
