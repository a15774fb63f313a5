package ports

import (
	"context"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// CreateWorkItemInput carries the fields accepted on creation. A nil Priority
// means the caller omitted it.
type CreateWorkItemInput struct {
	Title          string
	Description    *string
	Priority       *domain.WorkItemPriority
	IdempotencyKey string
}

// UpdateWorkItemInput replaces every mutable field of a work item.
type UpdateWorkItemInput struct {
	Title       string
	Description *string
	Status      *domain.WorkItemStatus
	Priority    *domain.WorkItemPriority
}

// ListWorkItemsInput is the raw listing request before normalisation.
type ListWorkItemsInput struct {
	Status   *domain.WorkItemStatus
	Priority *domain.WorkItemPriority
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

type WorkItemService interface {
	List(ctx context.Context, in ListWorkItemsInput) (*domain.Page, error)
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	Create(ctx context.Context, in CreateWorkItemInput) (*domain.WorkItem, error)
	Update(ctx context.Context, id string, in UpdateWorkItemInput) (*domain.WorkItem, error)
	Delete(ctx context.Context, id string) error
}
