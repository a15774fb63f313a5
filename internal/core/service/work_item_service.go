package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/ports"
	"github.com/portfolio/workitems-api/internal/pkg/validation"
)

const defaultIdempotencyTTL = 24 * time.Hour

type createWorkItemInput struct {
	Title       string                   `json:"title" validate:"notblank,min=3,max=255"`
	Description *string                  `json:"description" validate:"omitempty,max=2000"`
	Priority    *domain.WorkItemPriority `json:"priority" validate:"required,workitem_priority"`
}

type updateWorkItemInput struct {
	Title       string                   `json:"title" validate:"notblank,min=3,max=255"`
	Description *string                  `json:"description" validate:"omitempty,max=2000"`
	Status      *domain.WorkItemStatus   `json:"status" validate:"required,workitem_status"`
	Priority    *domain.WorkItemPriority `json:"priority" validate:"required,workitem_priority"`
}

type WorkItemService struct {
	repo           ports.WorkItemRepository
	idempotency    ports.IdempotencyStore
	idempotencyTTL time.Duration
	validate       *validation.Validator
	logger         zerolog.Logger
	now            func() time.Time
}

// NewWorkItemService wires the service. idempotency may be nil, in which case
// Idempotency-Key headers are ignored.
func NewWorkItemService(repo ports.WorkItemRepository, idempotency ports.IdempotencyStore, idempotencyTTL time.Duration, validate *validation.Validator, logger zerolog.Logger) *WorkItemService {
	if idempotencyTTL <= 0 {
		idempotencyTTL = defaultIdempotencyTTL
	}
	return &WorkItemService{
		repo:           repo,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		validate:       validate,
		logger:         logger,
		now:            time.Now,
	}
}

// List returns one page of work items. Out-of-range paging values are clamped
// rather than rejected.
func (s *WorkItemService) List(ctx context.Context, in ports.ListWorkItemsInput) (*domain.Page, error) {
	q := normalizeQuery(in)

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.WorkItem{}
	}

	totalPages := totalPagesFor(total, q.PageSize)
	return &domain.Page{
		Items:           items,
		Page:            q.Page,
		PageSize:        q.PageSize,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasNextPage:     q.Page < totalPages,
		HasPreviousPage: q.Page > 1,
	}, nil
}

func normalizeQuery(in ports.ListWorkItemsInput) domain.WorkItemQuery {
	page := in.Page
	if page < 1 {
		page = domain.DefaultPage
	}
	pageSize := in.PageSize
	if pageSize < 1 || pageSize > domain.MaxPageSize {
		pageSize = domain.DefaultPageSize
	}
	// Keeps (page-1)*pageSize from overflowing; such a page is empty anyway.
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return domain.WorkItemQuery{
		Status:   in.Status,
		Priority: in.Priority,
		SortBy:   domain.ParseSortField(in.SortBy),
		SortDir:  domain.ParseSortDirection(in.SortDir),
		Page:     page,
		PageSize: pageSize,
	}
}

func totalPagesFor(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

func (s *WorkItemService) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	if !isUUID(id) {
		return nil, domain.ErrWorkItemNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// Create stores a new work item in the Todo state. When an idempotency key was
// already used, the work item it created is returned instead.
func (s *WorkItemService) Create(ctx context.Context, in ports.CreateWorkItemInput) (*domain.WorkItem, error) {
	priority := domain.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	if err := s.validate.Struct(createWorkItemInput{
		Title:       in.Title,
		Description: in.Description,
		Priority:    &priority,
	}); err != nil {
		return nil, err
	}

	now := s.timestamp()
	item := &domain.WorkItem{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	reserved, replay, err := s.reserve(ctx, in.IdempotencyKey, item.ID)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error().Err(err).Msg("failed to create work item")
		if reserved {
			s.release(ctx, in.IdempotencyKey, item.ID)
		}
		return nil, err
	}

	s.logger.Info().Str("work_item_id", item.ID).Str("priority", item.Priority.String()).Msg("work item created")

	return item, nil
}

// reserve claims key for id before the insert so concurrent requests with the
// same key cannot both create. It returns the earlier item when the key was
// already used, or ErrIdempotencyBusy while that item is still being written.
// A failing idempotency store does not block creation.
func (s *WorkItemService) reserve(ctx context.Context, key, id string) (bool, *domain.WorkItem, error) {
	if key == "" || s.idempotency == nil {
		return false, nil, nil
	}

	existingID, reserved, err := s.idempotency.Reserve(ctx, key, id, s.idempotencyTTL)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed")
		return false, nil, nil
	}
	if reserved {
		return true, nil, nil
	}

	existing, err := s.repo.FindByID(ctx, existingID)
	if errors.Is(err, domain.ErrWorkItemNotFound) {
		return false, nil, domain.ErrIdempotencyBusy
	}
	if err != nil {
		return false, nil, err
	}

	s.logger.Info().Str("idempotency_key", key).Str("work_item_id", existingID).Msg("idempotent replay")
	return false, existing, nil
}

func (s *WorkItemService) release(ctx context.Context, key, id string) {
	if err := s.idempotency.Release(ctx, key, id); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency release failed")
	}
}

// Update replaces title, description, status and priority wholesale.
func (s *WorkItemService) Update(ctx context.Context, id string, in ports.UpdateWorkItemInput) (*domain.WorkItem, error) {
	if err := s.validate.Struct(updateWorkItemInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}); err != nil {
		return nil, err
	}

	if !isUUID(id) {
		return nil, domain.ErrWorkItemNotFound
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Title = in.Title
	item.Description = in.Description
	item.Status = *in.Status
	item.Priority = *in.Priority
	item.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, item); err != nil {
		if !errors.Is(err, domain.ErrWorkItemNotFound) {
			s.logger.Error().Err(err).Str("work_item_id", id).Msg("failed to update work item")
		}
		return nil, err
	}

	s.logger.Info().Str("work_item_id", id).Str("status", item.Status.String()).Msg("work item updated")
	return item, nil
}

func (s *WorkItemService) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrWorkItemNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("work_item_id", id).Msg("work item deleted")
	return nil
}

// timestamp is truncated to what every store can round-trip.
func (s *WorkItemService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
