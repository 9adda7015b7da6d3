package persistence

import (
	"context"
	"encoding/json"

	"campusqa/domain/core/aggregates"
	"campusqa/infrastructure/persistence/abstractions"
	pkgerrors "campusqa/pkg/errors"

	"go.uber.org/zap"
)

// DefaultStateKey is the fixed key the whole forum is stored under
const DefaultStateKey = "college_queries_app_state_v2"

// StateRepository saves and loads the forum as one JSON blob
type StateRepository struct {
	store  abstractions.BlobStore
	key    string
	logger *zap.Logger
}

// NewStateRepository creates a repository over store; an empty key means DefaultStateKey
func NewStateRepository(store abstractions.BlobStore, key string, logger *zap.Logger) *StateRepository {
	if key == "" {
		key = DefaultStateKey
	}
	return &StateRepository{
		store:  store,
		key:    key,
		logger: logger,
	}
}

// Key returns the blob key in use
func (r *StateRepository) Key() string {
	return r.key
}

// Save serializes the full forum and overwrites the stored blob.
// Write failures are returned as-is to the caller.
func (r *StateRepository) Save(ctx context.Context, forum *aggregates.Forum) error {
	data, err := json.Marshal(forum)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode forum state").WithCause(err)
	}

	if err := r.store.Set(ctx, r.key, data); err != nil {
		return pkgerrors.NewDatabaseError("save state", err)
	}

	r.logger.Debug("Saved forum state",
		zap.String("key", r.key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load reads the stored forum.
// A missing blob yields an empty forum. A malformed blob is logged and also
// yields an empty forum. Otherwise every absent field gets its empty default.
func (r *StateRepository) Load(ctx context.Context) (*aggregates.Forum, error) {
	data, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load state", err)
	}
	if !found {
		return aggregates.NewForum(), nil
	}

	var forum aggregates.Forum
	if err := json.Unmarshal(data, &forum); err != nil {
		r.logger.Warn("Stored forum state is malformed, starting empty",
			zap.String("key", r.key),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return aggregates.NewForum(), nil
	}

	forum.Normalize()
	return &forum, nil
}
