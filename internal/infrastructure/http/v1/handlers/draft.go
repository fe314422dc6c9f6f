package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/domain/catalogs/customer"
	"facture/internal/domain/catalogs/product"
	"facture/internal/domain/documents"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/draft"
	"facture/internal/domain/fx"
	"facture/internal/infrastructure/http/v1/dto"
)

// DraftHandler drives interactive draft sessions. A draft lives in
// memory until it is committed into an invoice or cancelled.
type DraftHandler struct {
	*BaseHandler
	store        *draft.Store
	engine       *fx.Engine
	invoices     *invoice.Service
	customers    *customer.Service
	products     *product.Service
	persister    draft.Persister
	resolver     *documents.CurrencyResolver
	defaultOrgID id.ID
}

// NewDraftHandler creates a new draft session handler.
func NewDraftHandler(
	base *BaseHandler,
	store *draft.Store,
	engine *fx.Engine,
	invoices *invoice.Service,
	customers *customer.Service,
	products *product.Service,
	persister draft.Persister,
	resolver *documents.CurrencyResolver,
	defaultOrgID id.ID,
) *DraftHandler {
	return &DraftHandler{
		BaseHandler:  base,
		store:        store,
		engine:       engine,
		invoices:     invoices,
		customers:    customers,
		products:     products,
		persister:    persister,
		resolver:     resolver,
		defaultOrgID: defaultOrgID,
	}
}

// Open handles POST /drafts - start a new session, either empty or
// restored over an existing invoice.
func (h *DraftHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var d *draft.DocumentDraft
	if req.DocumentID != nil && *req.DocumentID != "" {
		docID, err := id.Parse(*req.DocumentID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid document_id format"))
			return
		}

		inv, err := h.invoices.GetByID(ctx, docID)
		if err != nil {
			h.Error(c, err)
			return
		}

		state := fx.NewState(inv.Currency)
		state.ExchangeRate = inv.ExchangeRate

		customerID := inv.CustomerID
		d = draft.Restore(inv.ID, inv.Number, inv.Date, &customerID, inv.Lines, inv.Policy(), state)
	} else {
		customerID := id.Nil()
		if req.CustomerID != nil && *req.CustomerID != "" {
			parsed, err := id.Parse(*req.CustomerID)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid customer_id format"))
				return
			}
			customerID = parsed
		}

		currency, err := h.resolver.ResolveForDocument(ctx, req.Currency, customerID, h.defaultOrgID)
		if err != nil {
			h.Error(c, err)
			return
		}
		d = draft.New(currency)
		if !id.IsNil(customerID) {
			cust, err := h.customers.GetByID(ctx, customerID)
			if err != nil {
				h.Error(c, err)
				return
			}

			profileCurrency := ""
			if cust.ProfileCurrency != nil {
				profileCurrency = *cust.ProfileCurrency
			}
			if err := d.SetCustomer(ctx, h.engine, customerID, profileCurrency); err != nil {
				h.Error(c, err)
				return
			}
		}
	}

	h.store.Put(d)

	response := dto.FromDraft(d)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.FromDraft(d))
}

// AddLine handles POST /drafts/:id/lines
func (h *DraftHandler) AddLine(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.DraftLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.Line.ToLineItem()
	if line.ProductID != nil {
		seed, err := h.products.Lookup(ctx, *line.ProductID)
		if err != nil {
			h.Error(c, err)
			return
		}
		// Fields the caller left blank are seeded from the catalog
		if line.Description == "" {
			line.Description = seed.Description
		}
		if line.UnitPrice.IsZero() {
			line.UnitPrice = seed.UnitPrice
		}
		if line.TaxRate.IsZero() {
			line.TaxRate = seed.TaxRate
		}
	}

	if err := d.AddLine(line); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// UpdateLine handles PUT /drafts/:id/lines/:lineId
func (h *DraftHandler) UpdateLine(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	lineID, err := id.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid lineId format"))
		return
	}

	var req dto.DraftLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.Line.ToLineItem()
	line.LineID = lineID

	if err := d.UpdateLine(line); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// RemoveLine handles DELETE /drafts/:id/lines/:lineId
func (h *DraftHandler) RemoveLine(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	lineID, err := id.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid lineId format"))
		return
	}

	if err := d.RemoveLine(lineID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// SetPolicy handles PUT /drafts/:id/policy
func (h *DraftHandler) SetPolicy(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.PolicyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := d.SetPolicy(ctx, req.ToPolicy()); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// ChangeCurrency handles POST /drafts/:id/currency
func (h *DraftHandler) ChangeCurrency(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.ChangeCurrencyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := d.ChangeCurrency(ctx, h.engine, req.Currency); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// SetFXOptions handles PUT /drafts/:id/fx
func (h *DraftHandler) SetFXOptions(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.FXOptionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := d.SetFXOptions(req.RateLocked, req.AutoConvert); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// SetCustomer handles POST /drafts/:id/customer
func (h *DraftHandler) SetCustomer(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.SetCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer_id format"))
		return
	}

	cust, err := h.customers.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	profileCurrency := ""
	if cust.ProfileCurrency != nil {
		profileCurrency = *cust.ProfileCurrency
	}

	if err := d.SetCustomer(ctx, h.engine, customerID, profileCurrency); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// SetNumber handles POST /drafts/:id/number
func (h *DraftHandler) SetNumber(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req dto.SetNumberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := d.SetNumber(req.Number); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromDraft(d))
}

// Cancel handles POST /drafts/:id/cancel
func (h *DraftHandler) Cancel(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	if err := d.Cancel(); err != nil {
		h.Error(c, err)
		return
	}

	h.store.Delete(d.ID)
	h.NoContent(c)
}

// Commit handles POST /drafts/:id/commit - persist the draft as an
// invoice and close the session.
func (h *DraftHandler) Commit(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.draft(c)
	if !ok {
		return
	}

	snapshot, err := d.Commit(ctx, h.persister)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.store.Delete(d.ID)
	h.OK(c, dto.FromCommitSnapshot(snapshot))
}

func (h *DraftHandler) draft(c *gin.Context) (*draft.DocumentDraft, bool) {
	draftID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return nil, false
	}

	d, err := h.store.Get(draftID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return d, true
}

// RegisterRoutes registers draft session routes.
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Open)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/lines", h.AddLine)
	rg.PUT("/:id/lines/:lineId", h.UpdateLine)
	rg.DELETE("/:id/lines/:lineId", h.RemoveLine)
	rg.PUT("/:id/policy", h.SetPolicy)
	rg.POST("/:id/currency", h.ChangeCurrency)
	rg.PUT("/:id/fx", h.SetFXOptions)
	rg.POST("/:id/customer", h.SetCustomer)
	rg.POST("/:id/number", h.SetNumber)
	rg.POST("/:id/cancel", h.Cancel)
	rg.POST("/:id/commit", h.Commit)
}
