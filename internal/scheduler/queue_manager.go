package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/notify"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/purchase"
	"github.com/lwhx/OVH/internal/registry"
	"github.com/lwhx/OVH/types"
	"github.com/lwhx/OVH/types/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Executor runs one purchase attempt.
type Executor interface {
	Execute(ctx context.Context, item types.QueueItem) types.PurchaseOutcome
}

type Metrics interface {
	RecordAttempt(outcome string, d time.Duration)
	RecordNotification(ok bool)
	SetActiveQueues(n int)
}

type QueueOption func(*QueueManager)

func WithTickInterval(d time.Duration) QueueOption {
	return func(m *QueueManager) { m.tick = d }
}

// WithWorkerCount bounds how many attempts run at once within a tick. One
// keeps the queue strictly sequential.
func WithWorkerCount(n int) QueueOption {
	return func(m *QueueManager) { m.workers = int64(n) }
}

func WithNotifyTimeout(d time.Duration) QueueOption {
	return func(m *QueueManager) { m.notifyTimeout = d }
}

func WithClock(now func() time.Time) QueueOption {
	return func(m *QueueManager) { m.now = now }
}

// QueueManager drives the purchase queue: every tick it attempts each
// running item whose retry interval has elapsed.
type QueueManager struct {
	registry *registry.Registry
	executor Executor
	notifier notify.Notifier
	metrics  Metrics
	logger   *logging.Logger

	tick          time.Duration
	workers       int64
	notifyTimeout time.Duration
	now           func() time.Time
}

func NewQueueManager(reg *registry.Registry, executor Executor, notifier notify.Notifier, metrics Metrics, logger *logging.Logger, opts ...QueueOption) *QueueManager {
	m := &QueueManager{
		registry:      reg,
		executor:      executor,
		notifier:      notifier,
		metrics:       metrics,
		logger:        logger,
		tick:          config.DefaultTickInterval,
		workers:       config.DefaultWorkerCount,
		notifyTimeout: config.DefaultNotifyTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.workers < 1 {
		m.workers = 1
	}
	return m
}

// Start runs the loop until ctx is cancelled. Attempts in flight when that
// happens are allowed to finish before Start returns.
func (m *QueueManager) Start(ctx context.Context) error {
	log := m.logger.Source("queue")
	log.WithField("tick", m.tick).WithField("workers", m.workers).Info("queue processor started")

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		m.Tick(ctx)
		select {
		case <-ctx.Done():
			log.Info("queue processor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick performs one pass over a snapshot of the queue and returns once every
// attempt it started has finished.
func (m *QueueManager) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := m.now()
	sem := semaphore.NewWeighted(m.workers)
	var wg sync.WaitGroup

	for _, item := range m.registry.Items() {
		if !item.IsDue(now) {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(id string) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Source("queue").WithField("task_id", id).Errorf("panic while handling attempt: %v", r)
				}
				sem.Release(1)
				wg.Done()
			}()
			m.attempt(context.WithoutCancel(ctx), id)
		}(item.ID)
	}
	wg.Wait()

	m.metrics.SetActiveQueues(m.registry.Stats().ActiveQueues)
}

// attempt stamps the item with the time the worker actually picked it up,
// which can lag the tick when workers are saturated.
func (m *QueueManager) attempt(ctx context.Context, id string) {
	item, ok := m.registry.BeginAttempt(ctx, id, m.now())
	if !ok {
		return
	}
	log := m.logger.Source("queue").WithFields(logrus.Fields{
		"task_id":    item.ID,
		"plan_code":  item.PlanCode,
		"datacenter": item.Datacenter,
		"attempt":    item.RetryCount,
	})
	if item.RetryCount == 1 {
		log.Info("first attempt")
	} else {
		log.Info("retrying")
	}

	start := time.Now()
	outcome := m.execute(ctx, item)
	m.registry.FinishAttempt(ctx, item, outcome)

	kind := purchase.Kind(outcome.Err)
	label := string(kind)
	if outcome.Succeeded() {
		label = "success"
	}
	m.metrics.RecordAttempt(label, time.Since(start))

	switch {
	case outcome.Succeeded():
		log.WithField("order_id", outcome.Result.OrderID).Info("purchase succeeded")
		m.notifySuccess(ctx, item, *outcome.Result)
	case kind == purchase.KindOutOfStock:
		log.Infof("not in stock, next check in %ds", item.RetryInterval)
	case ovhapi.IsAPIError(outcome.Err):
		log.WithError(outcome.Err).WithField("kind", kind).Errorf("provider rejected the order, next check in %ds", item.RetryInterval)
	default:
		log.WithError(outcome.Err).WithField("kind", kind).Errorf("attempt failed, next check in %ds", item.RetryInterval)
	}
}

// execute turns a panicking executor into an ordinary failure of this item.
func (m *QueueManager) execute(ctx context.Context, item types.QueueItem) (outcome types.PurchaseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = types.PurchaseOutcome{Err: fmt.Errorf("unexpected error: %v", r)}
		}
	}()
	return m.executor.Execute(ctx, item)
}

func (m *QueueManager) notifySuccess(ctx context.Context, item types.QueueItem, result types.PurchaseResult) {
	ctx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
	defer cancel()
	ok := m.notifier.Send(ctx, notify.PurchaseSucceeded(item, result, m.now()))
	m.metrics.RecordNotification(ok)
}
