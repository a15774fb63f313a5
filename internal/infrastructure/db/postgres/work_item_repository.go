package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

const workItemColumns = `id, title, description, status, priority, created_at, updated_at`

// sortColumns is the only source of ORDER BY identifiers; user input never
// reaches the SQL text.
var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByTitle:     "title",
	domain.SortByStatus:    "status",
	domain.SortByPriority:  "priority",
}

type WorkItemRepository struct {
	db DBTX
}

func NewWorkItemRepository(db DBTX) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var (
		w           domain.WorkItem
		description sql.NullString
		status      int
		priority    int
	)
	if err := row.Scan(&w.ID, &w.Title, &description, &status, &priority, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		w.Description = &description.String
	}
	w.Status = domain.WorkItemStatus(status)
	w.Priority = domain.WorkItemPriority(priority)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

func (r *WorkItemRepository) Create(ctx context.Context, w *domain.WorkItem) error {
	const q = `
		INSERT INTO work_items (id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, w.ID, w.Title, w.Description, int(w.Status), int(w.Priority), w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *WorkItemRepository) FindByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	q := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`

	w, err := scanWorkItem(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

func (r *WorkItemRepository) Update(ctx context.Context, w *domain.WorkItem) error {
	const q = `
		UPDATE work_items
		SET title = $2, description = $3, status = $4, priority = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, w.ID, w.Title, w.Description, int(w.Status), int(w.Priority), w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

func (r *WorkItemRepository) List(ctx context.Context, q domain.WorkItemQuery) ([]*domain.WorkItem, int64, error) {
	where, args := listWhere(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	args = append(args, q.PageSize, q.Offset())
	query := fmt.Sprintf(`SELECT %s FROM work_items%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		workItemColumns, where, listOrder(q), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.WorkItem, 0, q.PageSize)
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}

func listWhere(q domain.WorkItemQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Status != nil {
		args = append(args, int(*q.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Priority != nil {
		args = append(args, int(*q.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func listOrder(q domain.WorkItemQuery) string {
	dir := "ASC"
	if q.SortDir == domain.SortDesc {
		dir = "DESC"
	}
	return sortColumns[q.SortBy] + " " + dir + ", id ASC"
}
