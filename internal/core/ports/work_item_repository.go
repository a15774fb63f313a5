package ports

import (
	"context"
	"time"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// WorkItemRepository defines persistence operations for work items.
// FindByID, Update and Delete return domain.ErrWorkItemNotFound for unknown ids.
type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) error
	FindByID(ctx context.Context, id string) (*domain.WorkItem, error)
	Update(ctx context.Context, item *domain.WorkItem) error
	Delete(ctx context.Context, id string) error
	// List returns the requested page and the number of rows matching the
	// query filters before paging. q is already normalised by the service.
	List(ctx context.Context, q domain.WorkItemQuery) ([]*domain.WorkItem, int64, error)
}

// IdempotencyStore remembers which work item a client-supplied key created.
type IdempotencyStore interface {
	// Reserve atomically claims key for workItemID. When the key is already
	// held it returns false and the id stored under it.
	Reserve(ctx context.Context, key, workItemID string, ttl time.Duration) (existingID string, reserved bool, err error)
	// Release drops the claim if key still maps to workItemID.
	Release(ctx context.Context, key, workItemID string) error
}
