package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

const workItemsCollection = "work_items"

type WorkItemRepository struct {
	col *mongo.Collection
}

func NewWorkItemRepository(db *mongo.Database) *WorkItemRepository {
	return &WorkItemRepository{col: db.Collection(workItemsCollection)}
}

// workItemDocument stores status and priority as ordinals so that sorting on
// them follows declaration order.
type workItemDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description"`
	Status      int       `bson:"status"`
	Priority    int       `bson:"priority"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toWorkItemDocument(w *domain.WorkItem) workItemDocument {
	return workItemDocument{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      int(w.Status),
		Priority:    int(w.Priority),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (d workItemDocument) toDomain() *domain.WorkItem {
	return &domain.WorkItem{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.WorkItemStatus(d.Status),
		Priority:    domain.WorkItemPriority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *WorkItemRepository) Create(ctx context.Context, w *domain.WorkItem) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toWorkItemDocument(w)); err != nil {
		return fmt.Errorf("insert work item: %w", err)
	}
	return nil
}

func (r *WorkItemRepository) FindByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var doc workItemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkItemNotFound
		}
		return nil, fmt.Errorf("find work item: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *WorkItemRepository) Update(ctx context.Context, w *domain.WorkItem) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": w.ID}, bson.M{"$set": bson.M{
		"title":       w.Title,
		"description": w.Description,
		"status":      int(w.Status),
		"priority":    int(w.Priority),
		"updated_at":  w.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update work item: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

func (r *WorkItemRepository) List(ctx context.Context, q domain.WorkItemQuery) ([]*domain.WorkItem, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	filter := listFilter(q)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count work items: %w", err)
	}

	opts := options.Find().
		SetSort(listSort(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list work items: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.WorkItem, 0, q.PageSize)
	for cur.Next(ctx) {
		var doc workItemDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode work item: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate work items: %w", err)
	}
	return items, total, nil
}

func listFilter(q domain.WorkItemQuery) bson.D {
	filter := bson.D{}
	if q.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: int(*q.Status)})
	}
	if q.Priority != nil {
		filter = append(filter, bson.E{Key: "priority", Value: int(*q.Priority)})
	}
	return filter
}

var sortKeys = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByTitle:     "title",
	domain.SortByStatus:    "status",
	domain.SortByPriority:  "priority",
}

// listSort always ends with _id ascending so equal keys page deterministically.
func listSort(q domain.WorkItemQuery) bson.D {
	dir := 1
	if q.SortDir == domain.SortDesc {
		dir = -1
	}
	return bson.D{
		{Key: sortKeys[q.SortBy], Value: dir},
		{Key: "_id", Value: 1},
	}
}
