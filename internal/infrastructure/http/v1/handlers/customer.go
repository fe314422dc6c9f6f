package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facture/internal/core/apperror"
	"facture/internal/domain/catalogs/customer"
	"facture/internal/infrastructure/http/v1/dto"
)

// CustomerHTTPHandler - псевдоним типа для сокращения сигнатур
type CustomerHTTPHandler = CatalogHandler[
	*customer.Customer,
	dto.CreateCustomerRequest,
	dto.UpdateCustomerRequest,
]

// CustomerHandler extends the generic catalog handler with
// customer-specific lookups.
type CustomerHandler struct {
	*CustomerHTTPHandler
	service *customer.Service
}

// NewCustomerHandler - фабрика, создающая настроенный Generic Handler
func NewCustomerHandler(
	base *BaseHandler,
	service *customer.Service,
) *CustomerHandler {

	config := CatalogHandlerConfig[
		*customer.Customer,
		dto.CreateCustomerRequest,
		dto.UpdateCustomerRequest,
	]{
		// Подключаем Generic Service
		Service:    service.CatalogService,
		EntityName: "customer",

		// Маппинг: DTO создания -> Сущность
		MapCreateDTO: func(req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity()
		},

		// Маппинг: DTO обновления -> Сущность
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
			req.ApplyTo(existing)
			return existing
		},

		// Маппинг: Сущность -> DTO ответа
		MapToDTO: func(entity *customer.Customer) any {
			return dto.FromCustomer(entity)
		},
	}

	return &CustomerHandler{
		CustomerHTTPHandler: NewCatalogHandler(base, config),
		service:             service,
	}
}

// FindByEmail handles GET /catalog/customer/by-email?email=...
func (h *CustomerHandler) FindByEmail(c *gin.Context) {
	ctx := c.Request.Context()

	email := c.Query("email")
	if email == "" {
		h.Error(c, apperror.NewValidation("email is required"))
		return
	}

	cust, err := h.service.FindByEmail(ctx, email)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(cust))
}
