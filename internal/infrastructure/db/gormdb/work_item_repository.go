package gormdb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByTitle:     "title",
	domain.SortByStatus:    "status",
	domain.SortByPriority:  "priority",
}

type WorkItemRepository struct{ db *gorm.DB }

func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository { return &WorkItemRepository{db: db} }

func toModel(w *domain.WorkItem) *workItemModel {
	return &workItemModel{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      int(w.Status),
		Priority:    int(w.Priority),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (m *workItemModel) toDomain() *domain.WorkItem {
	return &domain.WorkItem{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.WorkItemStatus(m.Status),
		Priority:    domain.WorkItemPriority(m.Priority),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (r *WorkItemRepository) Create(ctx context.Context, w *domain.WorkItem) error {
	if err := r.db.WithContext(ctx).Create(toModel(w)).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *WorkItemRepository) FindByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	var m workItemModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m.toDomain(), nil
}

func (r *WorkItemRepository) Update(ctx context.Context, w *domain.WorkItem) error {
	// A map keeps a nil description as an explicit NULL.
	res := r.db.WithContext(ctx).Model(&workItemModel{}).Where("id = ?", w.ID).Updates(map[string]any{
		"title":       w.Title,
		"description": w.Description,
		"status":      int(w.Status),
		"priority":    int(w.Priority),
		"updated_at":  w.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when nothing changed.
	var count int64
	if err := r.db.WithContext(ctx).Model(&workItemModel{}).Where("id = ?", w.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if count == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&workItemModel{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

func (r *WorkItemRepository) List(ctx context.Context, q domain.WorkItemQuery) ([]*domain.WorkItem, int64, error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		if q.Status != nil {
			tx = tx.Where("status = ?", int(*q.Status))
		}
		if q.Priority != nil {
			tx = tx.Where("priority = ?", int(*q.Priority))
		}
		return tx
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&workItemModel{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var rows []workItemModel
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumns[q.SortBy]}, Desc: q.SortDir == domain.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	items := make([]*domain.WorkItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items, total, nil
}
