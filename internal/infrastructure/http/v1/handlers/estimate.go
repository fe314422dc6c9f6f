package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/documents/estimate"
	"facture/internal/infrastructure/http/v1/dto"
	"facture/internal/infrastructure/storage/postgres"
)

// EstimateHandler handles HTTP requests for Estimate documents.
type EstimateHandler struct {
	*BaseDocumentHandler[*estimate.Estimate, dto.CreateEstimateRequest, dto.UpdateEstimateRequest]
	service *estimate.Service
}

// NewEstimateHandler creates a new estimate handler.
func NewEstimateHandler(base *BaseHandler, service *estimate.Service, audit *postgres.AuditService) *EstimateHandler {
	cfg := BaseDocumentHandlerConfig[*estimate.Estimate, dto.CreateEstimateRequest, dto.UpdateEstimateRequest]{
		Service:    service,
		EntityName: "estimate",
		Audit:      audit,
		MapCreateDTO: func(req dto.CreateEstimateRequest) *estimate.Estimate {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateEstimateRequest, existing *estimate.Estimate) *estimate.Estimate {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *estimate.Estimate) any {
			return dto.FromEstimate(entity)
		},
	}

	return &EstimateHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/estimate - list with filtering.
func (h *EstimateHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := estimate.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	filter.CustomerID = parseIDQuery(c, "customerId")
	filter.Currency = parseStringQuery(c, "currency")
	filter.Committed = parseBoolQuery(c, "committed")
	filter.Converted = parseBoolQuery(c, "converted")
	filter.ExpiredAsOf = parseTimeQuery(c, "expiredAsOf")
	filter.DateFrom = parseTimeQuery(c, "dateFrom")
	filter.DateTo = parseTimeQuery(c, "dateTo")

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.EstimateResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromEstimate(doc)
	}

	c.JSON(http.StatusOK, dto.EstimateListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Convert handles POST /document/estimate/:id/convert - accept an
// estimate into a new invoice.
func (h *EstimateHandler) Convert(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.Convert(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.ConvertEstimateResponse{
		EstimateID: docID.String(),
		InvoiceID:  inv.ID.String(),
	}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}
