package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/documents/recurring"
	"facture/internal/infrastructure/http/v1/dto"
)

// RecurringHandler handles HTTP requests for recurring invoice templates.
type RecurringHandler struct {
	*BaseHandler
	service *recurring.Service
}

// NewRecurringHandler creates a new recurring template handler.
func NewRecurringHandler(base *BaseHandler, service *recurring.Service) *RecurringHandler {
	return &RecurringHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *RecurringHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := recurring.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "next_run_at")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	filter.CustomerID = parseIDQuery(c, "customerId")
	filter.Active = parseBoolQuery(c, "active")
	filter.DueBefore = parseTimeQuery(c, "dueBefore")

	if interval := c.Query("interval"); interval != "" {
		iv := recurring.Interval(interval)
		filter.Interval = &iv
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.RecurringTemplateResponse, len(result.Items))
	for i, tpl := range result.Items {
		items[i] = dto.FromRecurringTemplate(tpl)
	}

	c.JSON(http.StatusOK, dto.RecurringTemplateListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *RecurringHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tplID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	tpl, err := h.service.GetByID(ctx, tplID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRecurringTemplate(tpl))
}

func (h *RecurringHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRecurringTemplateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tpl := req.ToEntity()
	if err := h.service.Create(ctx, tpl); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromRecurringTemplate(tpl)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

func (h *RecurringHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	tplID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateRecurringTemplateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tpl, err := h.service.GetByID(ctx, tplID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(tpl)

	if err := h.service.Update(ctx, tpl); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromRecurringTemplate(tpl)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	tplID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, tplID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetActive handles POST /document/recurring/:id/activate and
// POST /document/recurring/:id/deactivate.
func (h *RecurringHandler) SetActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tplID, err := id.Parse(c.Param("id"))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format"))
			return
		}

		if err := h.service.SetActive(ctx, tplID, active); err != nil {
			h.Error(c, err)
			return
		}

		tpl, err := h.service.GetByID(ctx, tplID)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.FromRecurringTemplate(tpl))
	}
}

// RunDue handles POST /document/recurring/run-due - generate invoices
// for all templates whose next run is due.
func (h *RecurringHandler) RunDue(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 100)
	asOf := time.Now().UTC()
	if v := parseTimeQuery(c, "asOf"); v != nil {
		asOf = *v
	}

	generated, err := h.service.RunDue(ctx, asOf, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RunDueResponse{Generated: generated})
}

// RegisterRoutes registers recurring template routes.
func (h *RecurringHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/run-due", h.RunDue)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/activate", h.SetActive(true))
	rg.POST("/:id/deactivate", h.SetActive(false))
}
