package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portfolio/workitems-api/internal/api/metrics"
	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/ports"
)

// WorkItemHandler handles HTTP requests for work item operations.
type WorkItemHandler struct {
	service ports.WorkItemService
}

func NewWorkItemHandler(service ports.WorkItemService) *WorkItemHandler {
	return &WorkItemHandler{service: service}
}

// List handles GET /api/work-items.
//
// @Summary      List work items
// @Tags         work-items
// @Produce      json
// @Param        status    query     string  false  "Filter by status (Todo, InProgress, Done)"
// @Param        priority  query     string  false  "Filter by priority (Low, Medium, High)"
// @Param        sortBy    query     string  false  "createdAt, updatedAt, title, status or priority"  default(createdAt)
// @Param        sortDir   query     string  false  "asc or desc"                                      default(desc)
// @Param        page      query     int     false  "Page number"                                      default(1)
// @Param        pageSize  query     int     false  "Page size (1-100)"                                default(10)
// @Success      200       {object}  workItemPageResponse
// @Failure      400       {object}  errorResponse
// @Router       /api/work-items [get]
func (h *WorkItemHandler) List(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// listInput reads the listing query string. Unknown filter values are
// rejected; sort and paging values fall back to their defaults.
func listInput(c echo.Context) (ports.ListWorkItemsInput, error) {
	in := ports.ListWorkItemsInput{
		SortBy:  c.QueryParam("sortBy"),
		SortDir: c.QueryParam("sortDir"),
	}
	if in.SortDir == "" {
		in.SortDir = domain.SortDesc.String()
	}

	ve := domain.NewValidationError()
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			ve.Add("status", "status must be one of: Todo, InProgress, Done")
		} else {
			in.Status = &s
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("priority")); raw != "" {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			ve.Add("priority", "priority must be one of: Low, Medium, High")
		} else {
			in.Priority = &p
		}
	}
	if err := ve.OrNil(); err != nil {
		return in, err
	}

	in.Page = queryInt(c, "page")
	in.PageSize = queryInt(c, "pageSize")
	return in, nil
}

// queryInt returns 0 for an absent or non-numeric parameter; the service
// replaces it with the default.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return 0
	}
	return n
}

// Get handles GET /api/work-items/:id.
//
// @Summary      Get a work item
// @Tags         work-items
// @Produce      json
// @Param        id   path      string  true  "Work item id (UUID)"
// @Success      200  {object}  workItemResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/work-items/{id} [get]
func (h *WorkItemHandler) Get(c echo.Context) error {
	item, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWorkItemResponse(item))
}

// Create handles POST /api/work-items.
//
// @Summary      Create a work item
// @Tags         work-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Replays the original item when the key was seen before"
// @Param        body             body      createWorkItemRequest  true   "Work item"
// @Success      201              {object}  workItemResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/work-items [post]
func (h *WorkItemHandler) Create(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	var req createWorkItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Create(c.Request().Context(), toCreateInput(req, c.Request().Header.Get("Idempotency-Key")))
	if err != nil {
		return err
	}
	metrics.WorkItemsCreatedTotal.WithLabelValues(item.Priority.String()).Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/api/work-items/"+item.ID)
	return c.JSON(http.StatusCreated, toWorkItemResponse(item))
}

// Update handles PUT /api/work-items/:id.
//
// @Summary      Replace a work item
// @Tags         work-items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Work item id (UUID)"
// @Param        body  body      updateWorkItemRequest  true  "Work item"
// @Success      200   {object}  workItemResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/work-items/{id} [put]
func (h *WorkItemHandler) Update(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	var req updateWorkItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Update(c.Request().Context(), c.Param("id"), toUpdateInput(req))
	if err != nil {
		return err
	}
	metrics.WorkItemMutationsTotal.WithLabelValues("update").Inc()

	return c.JSON(http.StatusOK, toWorkItemResponse(item))
}

// Delete handles DELETE /api/work-items/:id.
//
// @Summary      Delete a work item
// @Tags         work-items
// @Security     BearerAuth
// @Param        id   path  string  true  "Work item id (UUID)"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/work-items/{id} [delete]
func (h *WorkItemHandler) Delete(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.WorkItemMutationsTotal.WithLabelValues("delete").Inc()

	return c.NoContent(http.StatusNoContent)
}
