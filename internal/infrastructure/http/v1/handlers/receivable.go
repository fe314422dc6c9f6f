package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/domain/registers/receivable"
	"facture/internal/infrastructure/http/v1/dto"
)

// ReceivableHandler handles HTTP requests for the receivables register.
type ReceivableHandler struct {
	*BaseHandler
	service *receivable.Service
	repo    receivable.Repository
}

// NewReceivableHandler creates a new receivables register handler.
func NewReceivableHandler(base *BaseHandler, service *receivable.Service, repo receivable.Repository) *ReceivableHandler {
	return &ReceivableHandler{
		BaseHandler: base,
		service:     service,
		repo:        repo,
	}
}

// GetBalances handles GET /registers/receivables/balances
func (h *ReceivableHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	filter := receivable.BalanceFilter{
		Currency:    parseStringQuery(c, "currency"),
		ExcludeZero: c.Query("excludeZero") == "true",
	}

	for _, raw := range c.QueryArray("customerId") {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerIDs = append(filter.CustomerIDs, parsed)
	}

	balances, err := h.service.ListBalances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": dto.FromReceivableBalances(balances),
		"count": len(balances),
	})
}

// GetCustomerBalance handles GET /registers/receivables/balances/:customerId
func (h *ReceivableHandler) GetCustomerBalance(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("customerId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}

	// One currency requested: return the single open amount. Otherwise
	// return the customer's exposure across all currencies.
	if currency := c.Query("currency"); currency != "" {
		amount, err := h.service.GetCustomerBalance(ctx, customerID, currency)
		if err != nil {
			h.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"customerId": customerID.String(),
			"currency":   currency,
			"amount":     amount,
		})
		return
	}

	balances, err := h.service.GetCustomerExposure(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customerId": customerID.String(),
		"items":      dto.FromReceivableBalances(balances),
	})
}

// GetMovements handles GET /registers/receivables/movements/:customerId
func (h *ReceivableHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("customerId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}

	filter := receivable.MovementFilter{
		Currency: parseStringQuery(c, "currency"),
		FromDate: parseTimeQuery(c, "dateFrom"),
		ToDate:   parseTimeQuery(c, "dateTo"),
		Limit:    h.ParseIntQuery(c, "limit", 100),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	if rt := c.Query("recordType"); rt != "" {
		recordType := entity.RecordType(rt)
		if recordType != entity.RecordTypeReceipt && recordType != entity.RecordTypeExpense {
			h.Error(c, apperror.NewValidation("recordType must be receipt or expense"))
			return
		}
		filter.RecordType = &recordType
	}

	movements, err := h.service.GetMovementHistory(ctx, customerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": dto.FromReceivableMovements(movements),
		"count": len(movements),
	})
}

// GetTurnover handles GET /registers/receivables/turnover
func (h *ReceivableHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	fromDate := parseTimeQuery(c, "dateFrom")
	toDate := parseTimeQuery(c, "dateTo")
	if fromDate == nil || toDate == nil {
		h.Error(c, apperror.NewValidation("dateFrom and dateTo are required"))
		return
	}

	filter := receivable.TurnoverFilter{
		CustomerID: parseIDQuery(c, "customerId"),
		Currency:   parseStringQuery(c, "currency"),
		FromDate:   *fromDate,
		ToDate:     *toDate,
	}

	turnover, err := h.service.GetTurnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTurnover(turnover))
}

// GetOverdue handles GET /registers/receivables/overdue
func (h *ReceivableHandler) GetOverdue(c *gin.Context) {
	ctx := c.Request.Context()

	asOf := time.Now().UTC()
	if v := parseTimeQuery(c, "asOf"); v != nil {
		asOf = *v
	}
	limit := h.ParseIntQuery(c, "limit", 100)

	movements, err := h.service.GetOverdue(ctx, asOf, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asOf":  asOf,
		"items": dto.FromReceivableMovements(movements),
		"count": len(movements),
	})
}

// Recalculate handles POST /registers/receivables/recalculate
// Rebuilds the balance table from the movement log.
func (h *ReceivableHandler) Recalculate(c *gin.Context) {
	ctx := c.Request.Context()

	customerID := parseIDQuery(c, "customerId")

	if err := h.repo.RecalculateBalances(ctx, customerID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "balances recalculated")
}

// RegisterRoutes registers receivables register routes.
func (h *ReceivableHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balances", h.GetBalances)
	rg.GET("/balances/:customerId", h.GetCustomerBalance)
	rg.GET("/movements/:customerId", h.GetMovements)
	rg.GET("/turnover", h.GetTurnover)
	rg.GET("/overdue", h.GetOverdue)
	rg.POST("/recalculate", h.Recalculate)
}
