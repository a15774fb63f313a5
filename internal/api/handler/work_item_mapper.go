package handler

import (
	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createWorkItemRequest, idempotencyKey string) ports.CreateWorkItemInput {
	return ports.CreateWorkItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		IdempotencyKey: idempotencyKey,
	}
}

func toUpdateInput(req updateWorkItemRequest) ports.UpdateWorkItemInput {
	return ports.UpdateWorkItemInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
}

// --- Service result → HTTP response ---

func toWorkItemResponse(w *domain.WorkItem) workItemResponse {
	return workItemResponse{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      w.Status.String(),
		Priority:    w.Priority.String(),
		CreatedAt:   w.CreatedAt.UTC(),
		UpdatedAt:   w.UpdatedAt.UTC(),
	}
}

func toPageResponse(p *domain.Page) workItemPageResponse {
	items := make([]workItemResponse, 0, len(p.Items))
	for _, w := range p.Items {
		items = append(items, toWorkItemResponse(w))
	}
	return workItemPageResponse{
		Items:           items,
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalCount:      p.TotalCount,
		TotalPages:      p.TotalPages,
		HasNextPage:     p.HasNextPage,
		HasPreviousPage: p.HasPreviousPage,
	}
}

func toAuthResponse(r *domain.AuthResult) authResponse {
	return authResponse{
		Token:     r.Token,
		Username:  r.Username,
		Email:     r.Email,
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}
