package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/infrastructure/storage/postgres"
)

// auditEntityTypes lists entities whose history can be queried.
var auditEntityTypes = map[string]bool{
	"invoice":   true,
	"estimate":  true,
	"recurring": true,
	"customer":  true,
	"product":   true,
}

// AuditHandler exposes the change history recorded for documents and catalogs.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit history handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		audit:       audit,
	}
}

// GetEntityHistory handles GET /audit/:entityType/:entityId
func (h *AuditHandler) GetEntityHistory(c *gin.Context) {
	ctx := c.Request.Context()

	entityType := c.Param("entityType")
	if !auditEntityTypes[entityType] {
		h.Error(c, apperror.NewValidation("unknown entity type").
			WithDetail("entityType", entityType))
		return
	}

	entityID, err := id.Parse(c.Param("entityId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entity id format"))
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.Error(c, apperror.NewValidation("limit must be between 1 and 500"))
			return
		}
		limit = parsed
	}

	entries, err := h.audit.GetEntityHistory(ctx, entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		items = append(items, gin.H{
			"id":        e.ID.String(),
			"action":    e.Action,
			"userId":    e.UserID,
			"userEmail": e.UserEmail,
			"changes":   e.Changes,
			"createdAt": e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// RegisterRoutes registers audit endpoints on the given router group.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:entityType/:entityId", h.GetEntityHistory)
}
