package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/domain/reports"
	"facture/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetRevenueSummary handles GET /reports/revenue-summary
func (h *ReportsHandler) GetRevenueSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RevenueSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetRevenueSummary(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTaxSummary handles GET /reports/tax-summary
func (h *ReportsHandler) GetTaxSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TaxSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetTaxSummary(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DocumentJournalRequest
	if !h.BindQuery(c, &req) {
		return
	}

	journal, err := h.service.GetDocumentJournal(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, journal)
}

// GetReceivablesAging handles GET /reports/receivables-aging
func (h *ReportsHandler) GetReceivablesAging(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AgingRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.GetReceivablesAging(ctx, req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/revenue-summary", h.GetRevenueSummary)
	rg.GET("/tax-summary", h.GetTaxSummary)
	rg.GET("/document-journal", h.GetDocumentJournal)
	rg.GET("/receivables-aging", h.GetReceivablesAging)
}
