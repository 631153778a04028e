package providers

import (
	"context"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
)

// ListOptions narrows a collection listing
type ListOptions struct {
	Skip   int
	Limit  int
	Search string
}

// CollectionProvider is the remote side of a mirrored collection
type CollectionProvider[T entities.Entity] interface {
	// Name identifies the collection in logs, metrics and notifications
	Name() string

	// List fetches the full collection
	List(ctx context.Context, opts ListOptions) ([]T, error)

	// Create sends a creation request and returns the server's representation
	Create(ctx context.Context, payload any) (T, error)

	// Update sends a partial update of the entity with the given id
	Update(ctx context.Context, id string, patch map[string]any) error

	// Delete removes the entity with the given id
	Delete(ctx context.Context, id string) error
}
