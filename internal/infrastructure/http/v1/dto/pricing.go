package dto

import (
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/pricing"
)

// --- Line DTOs (shared by invoice, estimate and recurring template) ---

// LineItemRequest represents a document line in create/update requests.
// Negative and non-finite numeric inputs are coerced to zero by the
// totals calculator rather than rejected.
type LineItemRequest struct {
	ProductID    *string `json:"productId,omitempty"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	TaxRate      float64 `json:"taxRate"`
	LineDiscount float64 `json:"lineDiscount"`
}

// ToLineItem converts the request line to a domain line.
func (r *LineItemRequest) ToLineItem() pricing.LineItem {
	line := pricing.NewLineItem(
		r.Description,
		types.SanitizeAmount(r.Quantity),
		types.SanitizeAmount(r.UnitPrice),
		types.SanitizeAmount(r.TaxRate),
	)
	line.LineDiscount = types.SanitizeAmount(r.LineDiscount)

	if r.ProductID != nil {
		if productID, err := id.Parse(*r.ProductID); err == nil {
			line.ProductID = &productID
		}
	}

	return line
}

// LinesToItems converts a request line slice.
func LinesToItems(lines []LineItemRequest) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.ToLineItem())
	}
	return items
}

// LineItemResponse represents a document line in API responses.
type LineItemResponse struct {
	LineID       string      `json:"lineId"`
	LineNo       int         `json:"lineNo"`
	ProductID    *string     `json:"productId,omitempty"`
	Description  string      `json:"description"`
	Quantity     types.Money `json:"quantity"`
	UnitPrice    types.Money `json:"unitPrice"`
	TaxRate      types.Money `json:"taxRate"`
	LineDiscount types.Money `json:"lineDiscount"`
	NetAmount    types.Money `json:"netAmount"`
}

// FromLineItem converts a domain line to its response form.
func FromLineItem(line pricing.LineItem) LineItemResponse {
	resp := LineItemResponse{
		LineID:       line.LineID.String(),
		LineNo:       line.LineNo,
		Description:  line.Description,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		TaxRate:      line.TaxRate,
		LineDiscount: line.LineDiscount,
		NetAmount:    line.NetAmount(),
	}
	if line.ProductID != nil {
		s := line.ProductID.String()
		resp.ProductID = &s
	}
	return resp
}

// FromLineItems converts a domain line slice.
func FromLineItems(lines []pricing.LineItem) []LineItemResponse {
	resp := make([]LineItemResponse, len(lines))
	for i, line := range lines {
		resp[i] = FromLineItem(line)
	}
	return resp
}

// --- Policy DTOs ---

// PolicyRequest carries the document-level pricing knobs.
type PolicyRequest struct {
	DiscountMode  pricing.DiscountMode `json:"discountMode" binding:"required,oneof=amount percent"`
	Discount      float64              `json:"discount"`
	Shipping      float64              `json:"shipping"`
	TaxMode       pricing.TaxMode      `json:"taxMode" binding:"required,oneof=per_line global"`
	GlobalTaxRate float64              `json:"globalTaxRate"`
}

// ToPolicy converts the request to a domain policy.
func (r *PolicyRequest) ToPolicy() pricing.Policy {
	return pricing.Policy{
		DiscountMode:  r.DiscountMode,
		Discount:      types.SanitizeAmount(r.Discount),
		Shipping:      types.SanitizeAmount(r.Shipping),
		TaxMode:       r.TaxMode,
		GlobalTaxRate: types.SanitizeAmount(r.GlobalTaxRate),
	}
}

// PolicyResponse mirrors the stored policy columns.
type PolicyResponse struct {
	DiscountMode  pricing.DiscountMode `json:"discountMode"`
	Discount      types.Money          `json:"discount"`
	Shipping      types.Money          `json:"shipping"`
	TaxMode       pricing.TaxMode      `json:"taxMode"`
	GlobalTaxRate types.Money          `json:"globalTaxRate"`
}

// FromPolicy converts a domain policy to its response form.
func FromPolicy(p pricing.Policy) PolicyResponse {
	return PolicyResponse{
		DiscountMode:  p.DiscountMode,
		Discount:      p.Discount,
		Shipping:      p.Shipping,
		TaxMode:       p.TaxMode,
		GlobalTaxRate: p.GlobalTaxRate,
	}
}

// TotalsResponse carries the computed document totals.
type TotalsResponse struct {
	Subtotal    types.Money `json:"subtotal"`
	TaxTotal    types.Money `json:"taxTotal"`
	Shipping    types.Money `json:"shipping"`
	TotalAmount types.Money `json:"totalAmount"`
}

// FromTotals converts computed totals to their response form.
func FromTotals(t pricing.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:    t.Subtotal,
		TaxTotal:    t.TaxTotal,
		Shipping:    t.Shipping,
		TotalAmount: t.TotalAmount,
	}
}
