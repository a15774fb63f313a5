package domain

import "strings"

// SortField is the closed set of columns a work-item listing can be ordered by.
type SortField int

const (
	SortByCreatedAt SortField = iota
	SortByUpdatedAt
	SortByTitle
	SortByStatus
	SortByPriority
)

// ParseSortField matches v case-insensitively and falls back to SortByCreatedAt.
func ParseSortField(v string) SortField {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "title":
		return SortByTitle
	case "status":
		return SortByStatus
	case "priority":
		return SortByPriority
	case "updatedat":
		return SortByUpdatedAt
	default:
		return SortByCreatedAt
	}
}

func (f SortField) String() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortByStatus:
		return "status"
	case SortByPriority:
		return "priority"
	case SortByUpdatedAt:
		return "updatedAt"
	default:
		return "createdAt"
	}
}

// SortDirection orders results ascending or descending.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

// ParseSortDirection returns SortDesc only for "desc" (any case).
func ParseSortDirection(v string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(v), "desc") {
		return SortDesc
	}
	return SortAsc
}

func (d SortDirection) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

// Paging limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// WorkItemQuery selects one page of work items. Stores always apply the id as
// an ascending secondary sort key so equal primary keys page deterministically.
type WorkItemQuery struct {
	Status   *WorkItemStatus
	Priority *WorkItemPriority
	SortBy   SortField
	SortDir  SortDirection
	Page     int
	PageSize int
}

// Offset is the number of matching rows skipped before this page.
func (q WorkItemQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one slice of a filtered, ordered work-item listing.
type Page struct {
	Items           []*WorkItem `json:"items"`
	Page            int         `json:"page"`
	PageSize        int         `json:"pageSize"`
	TotalCount      int64       `json:"totalCount"`
	TotalPages      int         `json:"totalPages"`
	HasNextPage     bool        `json:"hasNextPage"`
	HasPreviousPage bool        `json:"hasPreviousPage"`
}
