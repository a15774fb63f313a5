package handler

import (
	"time"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"s3cret!"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" example:"alice"`
	Password        string `json:"password"        example:"s3cret!"`
}

type authResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- Work items ---

// Status and priority accept a name in any letter case or the ordinal.
type createWorkItemRequest struct {
	Title       string                   `json:"title"       example:"Write release notes"`
	Description *string                  `json:"description" example:"Cover the API changes"`
	Priority    *domain.WorkItemPriority `json:"priority"    swaggertype:"string" enums:"Low,Medium,High"`
}

type updateWorkItemRequest struct {
	Title       string                   `json:"title"       example:"Write release notes"`
	Description *string                  `json:"description" example:"Cover the API changes"`
	Status      *domain.WorkItemStatus   `json:"status"      swaggertype:"string" enums:"Todo,InProgress,Done"`
	Priority    *domain.WorkItemPriority `json:"priority"    swaggertype:"string" enums:"Low,Medium,High"`
}

type workItemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"   enums:"Todo,InProgress,Done"`
	Priority    string    `json:"priority" enums:"Low,Medium,High"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type workItemPageResponse struct {
	Items           []workItemResponse `json:"items"`
	Page            int                `json:"page"`
	PageSize        int                `json:"pageSize"`
	TotalCount      int64              `json:"totalCount"`
	TotalPages      int                `json:"totalPages"`
	HasNextPage     bool               `json:"hasNextPage"`
	HasPreviousPage bool               `json:"hasPreviousPage"`
}
