package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	errors2 "github.com/lwhx/OVH/errors"
	"github.com/lwhx/OVH/internal/constants"
	"github.com/lwhx/OVH/internal/inventory"
	"github.com/lwhx/OVH/internal/ledger"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/state"
	"github.com/lwhx/OVH/internal/stats"
	"github.com/lwhx/OVH/types"
)

var (
	ErrNotFound          = errors.New("queue item not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Repository is the persistence the registry writes through to.
type Repository interface {
	LoadQueue(ctx context.Context) []types.QueueItem
	SaveQueue(ctx context.Context, items []types.QueueItem) error
	LoadHistory(ctx context.Context) []types.HistoryRecord
	SaveHistory(ctx context.Context, records []types.HistoryRecord) error
	LoadPlans(ctx context.Context) []types.ServerPlan
	SavePlans(ctx context.Context, plans []types.ServerPlan) error
	LoadSettings(ctx context.Context) types.Settings
	SaveSettings(ctx context.Context, s types.Settings) error
}

type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// Registry owns the queue, history, catalog and settings. Every mutation
// goes through it under one mutex and is written through to the
// repository before the call returns. Getters return copies.
type Registry struct {
	mu     sync.Mutex
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
	newID  func() string

	items    []types.QueueItem
	history  []types.HistoryRecord
	plans    []types.ServerPlan
	settings types.Settings
}

func New(repo Repository, logger *logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory state with what the repository holds.
func (r *Registry) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = r.repo.LoadQueue(ctx)
	r.history = r.repo.LoadHistory(ctx)
	r.plans = r.repo.LoadPlans(ctx)
	r.settings = r.repo.LoadSettings(ctx)
	r.logger.Source("system").WithField("queue_items", len(r.items)).
		WithField("history_records", len(r.history)).Info("state loaded")
}

// AddItem validates req and appends a running item that will be attempted on
// the next tick.
func (r *Registry) AddItem(ctx context.Context, req types.QueueItemRequest) (types.QueueItem, error) {
	req.Normalize()
	verr := &errors2.ValidationError{}
	for _, err := range req.Validate() {
		verr.Add(err)
	}
	if err := verr.OrNil(); err != nil {
		return types.QueueItem{}, err
	}
	if req.RetryInterval == 0 {
		req.RetryInterval = constants.DefaultRetryInterval
	}

	now := r.now()
	item := types.QueueItem{
		ID:            r.newID(),
		PlanCode:      req.PlanCode,
		Datacenter:    req.Datacenter,
		Options:       req.Options,
		Status:        state.StatusRunning,
		RetryInterval: req.RetryInterval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := append(r.cloneItems(), item)
	if err := r.repo.SaveQueue(ctx, next); err != nil {
		return types.QueueItem{}, err
	}
	r.items = next
	r.logger.Source("queue").WithField("task_id", item.ID).
		Infof("added %s in %s to the queue", item.PlanCode, item.Datacenter)
	return item.Clone(), nil
}

// RemoveItem deletes the item. An attempt already running for it still
// records its outcome in the history.
func (r *Registry) RemoveItem(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	removed := r.items[idx]
	next := append(r.items[:idx:idx], r.items[idx+1:]...)
	if err := r.repo.SaveQueue(ctx, next); err != nil {
		return err
	}
	r.items = next
	r.logger.Source("queue").WithField("task_id", id).Infof("removed %s from the queue", removed.PlanCode)
	return nil
}

// SetStatus applies an operator status override.
func (r *Registry) SetStatus(ctx context.Context, id string, status state.QueueStatus) (types.QueueItem, error) {
	if !status.Valid() {
		return types.QueueItem{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return types.QueueItem{}, ErrNotFound
	}
	current := r.items[idx]
	if current.Status == status {
		return current.Clone(), nil
	}
	if !state.IsValidTransition(current.Status, status) {
		return types.QueueItem{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	next := r.cloneItems()
	item := &next[idx]
	item.Status = status
	item.UpdatedAt = r.now()
	if err := r.repo.SaveQueue(ctx, next); err != nil {
		return types.QueueItem{}, err
	}
	r.items = next
	r.logger.Source("queue").WithField("task_id", id).Infof("status of %s set to %s", item.PlanCode, status)
	return item.Clone(), nil
}

func (r *Registry) Items() []types.QueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.QueueItem, len(r.items))
	for i, item := range r.items {
		out[i] = item.Clone()
	}
	return out
}

func (r *Registry) Item(id string) (types.QueueItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return types.QueueItem{}, false
	}
	return r.items[idx].Clone(), true
}

// BeginAttempt stamps the item as attempted at now and persists that before
// any remote call is made. It returns false when the item is gone, no longer
// running or not due.
func (r *Registry) BeginAttempt(ctx context.Context, id string, now time.Time) (types.QueueItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 || !r.items[idx].IsDue(now) {
		return types.QueueItem{}, false
	}
	item := &r.items[idx]
	item.RetryCount++
	item.LastCheckTime = now.Unix()
	item.UpdatedAt = now
	if err := r.repo.SaveQueue(ctx, r.items); err != nil {
		r.logger.Source("queue").WithError(err).Error("could not persist attempt bookkeeping")
	}
	return item.Clone(), true
}

// FinishAttempt records the outcome of an attempt on item, the snapshot
// returned by BeginAttempt. A success completes the item if it still exists.
func (r *Registry) FinishAttempt(ctx context.Context, item types.QueueItem, outcome types.PurchaseOutcome) types.HistoryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	var rec types.HistoryRecord
	r.history, rec = ledger.Upsert(r.history, item, outcome, now, r.newID)

	if outcome.Succeeded() {
		if idx := r.indexOf(item.ID); idx >= 0 {
			r.items[idx].Status = state.StatusCompleted
			r.items[idx].UpdatedAt = now
		}
	}

	log := r.logger.Source("queue")
	if err := r.repo.SaveQueue(ctx, r.items); err != nil {
		log.WithError(err).Error("could not persist queue")
	}
	if err := r.repo.SaveHistory(ctx, r.history); err != nil {
		log.WithError(err).Error("could not persist history")
	}
	return rec.Clone()
}

func (r *Registry) History() []types.HistoryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.HistoryRecord, len(r.history))
	for i, h := range r.history {
		out[i] = h.Clone()
	}
	return out
}

func (r *Registry) ClearHistory(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.repo.SaveHistory(ctx, nil); err != nil {
		return err
	}
	r.history = nil
	r.logger.Source("system").Info("purchase history cleared")
	return nil
}

// Stats derives the counters from the current state.
func (r *Registry) Stats() types.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return stats.Compute(r.items, r.plans, r.history)
}

func (r *Registry) Plans() []types.ServerPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.ServerPlan, len(r.plans))
	for i, p := range r.plans {
		out[i] = p.Clone()
	}
	return out
}

// SetPlans replaces the catalog.
func (r *Registry) SetPlans(ctx context.Context, plans []types.ServerPlan) error {
	verr := &errors2.ValidationError{}
	seen := make(map[string]bool, len(plans))
	cloned := make([]types.ServerPlan, 0, len(plans))
	for i, p := range plans {
		switch {
		case p.PlanCode == "":
			verr.Addf("plan %d: planCode is required", i)
		case seen[p.PlanCode]:
			verr.Addf("plan %d: duplicate planCode %s", i, p.PlanCode)
		}
		seen[p.PlanCode] = true
		cloned = append(cloned, p.Clone())
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.repo.SavePlans(ctx, cloned); err != nil {
		return err
	}
	r.plans = cloned
	r.logger.Source("system").Infof("catalog replaced with %d plans", len(cloned))
	return nil
}

// UpdatePlanAvailability merges a fresh snapshot into the catalog entry for
// planCode. Datacenters missing from the snapshot keep their last value.
func (r *Registry) UpdatePlanAvailability(ctx context.Context, planCode string, snap types.AvailabilitySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i := range r.plans {
		if r.plans[i].PlanCode == planCode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("plan %s is not in the catalog", planCode)
	}

	next := make([]types.ServerPlan, len(r.plans))
	for i, p := range r.plans {
		next[i] = p.Clone()
	}
	plan := &next[idx]
	known := make(map[string]bool, len(plan.Datacenters))
	for i := range plan.Datacenters {
		dc := &plan.Datacenters[i]
		known[dc.Datacenter] = true
		if a, ok := snap[dc.Datacenter]; ok {
			dc.Availability = string(a)
		}
	}
	for _, name := range inventory.SortedDatacenters(snap) {
		if !known[name] {
			plan.Datacenters = append(plan.Datacenters, types.DatacenterAvailability{Datacenter: name, Availability: string(snap[name])})
		}
	}
	if err := r.repo.SavePlans(ctx, next); err != nil {
		return err
	}
	r.plans = next
	return nil
}

func (r *Registry) Settings() types.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// SaveSettings stores s with defaults applied and returns the previous value.
func (r *Registry) SaveSettings(ctx context.Context, s types.Settings) (types.Settings, error) {
	s = s.WithDefaults()
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.settings
	if err := r.repo.SaveSettings(ctx, s); err != nil {
		return prev, err
	}
	r.settings = s
	r.logger.Source("system").Info("settings updated")
	return prev, nil
}

// cloneItems copies the queue so a mutation can be persisted before it is
// made visible. Callers hold r.mu.
func (r *Registry) cloneItems() []types.QueueItem {
	out := make([]types.QueueItem, len(r.items), len(r.items)+1)
	for i, item := range r.items {
		out[i] = item.Clone()
	}
	return out
}

func (r *Registry) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
