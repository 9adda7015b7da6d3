package ports

import (
	"context"

	"campusqa/domain/core/aggregates"
)

// StateRepository persists the whole forum graph
type StateRepository interface {
	Load(ctx context.Context) (*aggregates.Forum, error)
	Save(ctx context.Context, forum *aggregates.Forum) error
}

// MutationObserver is told about every attempted forum mutation
type MutationObserver interface {
	ObserveMutation(operation string, err error)
}

// NopObserver discards observations
type NopObserver struct{}

func (NopObserver) ObserveMutation(string, error) {}
