package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/documents/invoice"
	"facture/internal/infrastructure/http/v1/dto"
	"facture/internal/infrastructure/storage/postgres"
)

// InvoiceHandler handles HTTP requests for Invoice documents.
type InvoiceHandler struct {
	*BaseDocumentHandler[*invoice.Invoice, dto.CreateInvoiceRequest, dto.UpdateInvoiceRequest]
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, audit *postgres.AuditService) *InvoiceHandler {
	cfg := BaseDocumentHandlerConfig[*invoice.Invoice, dto.CreateInvoiceRequest, dto.UpdateInvoiceRequest]{
		Service:    service,
		EntityName: "invoice",
		Audit:      audit,
		MapCreateDTO: func(req dto.CreateInvoiceRequest) *invoice.Invoice {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateInvoiceRequest, existing *invoice.Invoice) *invoice.Invoice {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *invoice.Invoice) any {
			return dto.FromInvoice(entity)
		},
		IsCommitImmediately: func(req dto.CreateInvoiceRequest) bool {
			return req.CommitImmediately
		},
	}

	return &InvoiceHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/invoice - list with filtering.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.ListFilter{
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
	filter.DueBefore = parseTimeQuery(c, "dueBefore")
	filter.DateFrom = parseTimeQuery(c, "dateFrom")
	filter.DateTo = parseTimeQuery(c, "dateTo")

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.InvoiceResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromInvoice(doc)
	}

	c.JSON(http.StatusOK, dto.InvoiceListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Copy handles POST /document/invoice/:id/copy - duplicate an invoice
// into a fresh uncommitted document.
func (h *InvoiceHandler) Copy(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	clone, err := h.service.Copy(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, clone.ID, postgres.AuditActionCreate)

	response := dto.FromInvoice(clone)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// --- shared query parsing helpers ---

func parseIDQuery(c *gin.Context, key string) *id.ID {
	if v := c.Query(key); v != "" {
		if parsed, err := id.Parse(v); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseStringQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	if v := c.Query(key); v != "" {
		b := v == "true"
		return &b
	}
	return nil
}

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	if v := c.Query(key); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			return &parsed
		}
	}
	return nil
}
