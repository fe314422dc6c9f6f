package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/infrastructure/storage/postgres"
)

// DocumentService defines the interface that services must implement for BaseDocumentHandler.
type DocumentService[T any] interface {
	GetByID(ctx context.Context, id id.ID) (T, error)
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id id.ID) error
	Commit(ctx context.Context, id id.ID) error
	Void(ctx context.Context, id id.ID) error
	CommitAndSave(ctx context.Context, entity T) error
}

// BaseDocumentHandler provides generic HTTP handlers for document entities.
type BaseDocumentHandler[T any, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    DocumentService[T]
	entityName string
	audit      *postgres.AuditService

	// Mapper functions
	mapCreateDTO        func(dto CreateDTO) T
	mapUpdateDTO        func(dto UpdateDTO, existing T) T
	mapToDTO            func(entity T) any
	isCommitImmediately func(dto CreateDTO) bool
}

// BaseDocumentHandlerConfig configures the document handler.
type BaseDocumentHandlerConfig[T any, CreateDTO any, UpdateDTO any] struct {
	Service             DocumentService[T]
	EntityName          string
	Audit               *postgres.AuditService
	MapCreateDTO        func(dto CreateDTO) T
	MapUpdateDTO        func(dto UpdateDTO, existing T) T
	MapToDTO            func(entity T) any
	IsCommitImmediately func(dto CreateDTO) bool
}

// NewBaseDocumentHandler creates a new base document handler.
func NewBaseDocumentHandler[T any, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg BaseDocumentHandlerConfig[T, CreateDTO, UpdateDTO],
) *BaseDocumentHandler[T, CreateDTO, UpdateDTO] {
	return &BaseDocumentHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:         base,
		service:             cfg.Service,
		entityName:          cfg.EntityName,
		audit:               cfg.Audit,
		mapCreateDTO:        cfg.MapCreateDTO,
		mapUpdateDTO:        cfg.MapUpdateDTO,
		mapToDTO:            cfg.MapToDTO,
		isCommitImmediately: cfg.IsCommitImmediately,
	}
}

// logAudit records a lifecycle action. Failures are swallowed so an
// audit outage never blocks the business operation.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) logAudit(ctx context.Context, docID id.ID, action postgres.AuditAction) {
	if h.audit == nil {
		return
	}
	_ = h.audit.LogChange(ctx, h.entityName, docID, action, nil)
}

// Get handles GET /{entity}/:id
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, h.mapToDTO(doc))
}

// Create handles POST /{entity}
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc := h.mapCreateDTO(req)

	if h.isCommitImmediately != nil && h.isCommitImmediately(req) {
		if err := h.service.CommitAndSave(ctx, doc); err != nil {
			h.Error(c, err)
			return
		}
	} else {
		if err := h.service.Create(ctx, doc); err != nil {
			h.Error(c, err)
			return
		}
	}

	response := h.mapToDTO(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /{entity}/:id
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc = h.mapUpdateDTO(req, doc)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, docID, postgres.AuditActionUpdate)

	response := h.mapToDTO(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /{entity}/:id
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, docID, postgres.AuditActionDelete)

	c.Status(http.StatusNoContent)
}

// Commit handles POST /{entity}/:id/commit
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Commit(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Commit(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, docID, postgres.AuditActionCommit)

	// Return updated document
	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.mapToDTO(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// Void handles POST /{entity}/:id/void
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) Void(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Void(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, docID, postgres.AuditActionVoid)

	// Return updated document
	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := h.mapToDTO(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", response)
	c.JSON(http.StatusOK, response)
}

// RegisterRoutes registers standard routes.
func (h *BaseDocumentHandler[T, CreateDTO, UpdateDTO]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/commit", h.Commit)
	rg.POST("/:id/void", h.Void)
}
