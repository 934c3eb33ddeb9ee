package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lwhx/OVH/internal/constants"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/types"
)

// Repository maps the domain collections onto documents. Reads never fail:
// a missing, empty or unreadable document yields the zero value and a
// warning.
type Repository struct {
	docs   DocumentStore
	logger *logging.Logger
}

func NewRepository(docs DocumentStore, logger *logging.Logger) *Repository {
	return &Repository{docs: docs, logger: logger}
}

func (r *Repository) LoadQueue(ctx context.Context) []types.QueueItem {
	return load[[]types.QueueItem](ctx, r, constants.QueueKey)
}

func (r *Repository) SaveQueue(ctx context.Context, items []types.QueueItem) error {
	return r.save(ctx, constants.QueueKey, nonNil(items))
}

func (r *Repository) LoadHistory(ctx context.Context) []types.HistoryRecord {
	return load[[]types.HistoryRecord](ctx, r, constants.HistoryKey)
}

func (r *Repository) SaveHistory(ctx context.Context, records []types.HistoryRecord) error {
	return r.save(ctx, constants.HistoryKey, nonNil(records))
}

func (r *Repository) LoadPlans(ctx context.Context) []types.ServerPlan {
	return load[[]types.ServerPlan](ctx, r, constants.ServersKey)
}

func (r *Repository) SavePlans(ctx context.Context, plans []types.ServerPlan) error {
	return r.save(ctx, constants.ServersKey, nonNil(plans))
}

func (r *Repository) LoadSettings(ctx context.Context) types.Settings {
	return load[types.Settings](ctx, r, constants.SettingsKey)
}

func (r *Repository) SaveSettings(ctx context.Context, s types.Settings) error {
	return r.save(ctx, constants.SettingsKey, s)
}

func (r *Repository) Close() error {
	return r.docs.Close()
}

// load decodes into a fresh value and only returns it when the whole
// document decoded; a partial decode is discarded.
func load[T any](ctx context.Context, r *Repository, key string) T {
	var zero T
	log := r.logger.Source("store").WithField("document", key)
	data, err := r.docs.Load(ctx, key)
	if err != nil {
		log.WithError(err).Warn("could not read document, starting empty")
		return zero
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return zero
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.WithError(err).Warn("document is corrupt, starting empty")
		return zero
	}
	return v
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.docs.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// nonNil makes empty collections persist as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
