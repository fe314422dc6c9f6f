package dto

import (
	"time"

	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/registers/receivable"
)

// --- Response DTOs for Receivables Register ---

// ReceivableBalanceResponse represents a customer balance in API responses.
type ReceivableBalanceResponse struct {
	CustomerID     string      `json:"customerId"`
	Currency       string      `json:"currency"`
	Amount         types.Money `json:"amount"`
	LastMovementAt *time.Time  `json:"lastMovementAt,omitempty"`
}

// FromReceivableBalance converts entity to response DTO.
func FromReceivableBalance(b entity.ReceivableBalance) ReceivableBalanceResponse {
	// Zero-value timestamps render as null instead of "0001-01-01".
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return ReceivableBalanceResponse{
		CustomerID:     b.CustomerID.String(),
		Currency:       b.Currency,
		Amount:         b.Amount,
		LastMovementAt: lastMovement,
	}
}

// FromReceivableBalances converts a balance slice.
func FromReceivableBalances(balances []entity.ReceivableBalance) []ReceivableBalanceResponse {
	resp := make([]ReceivableBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = FromReceivableBalance(b)
	}
	return resp
}

// ReceivableMovementResponse represents a register movement in API responses.
type ReceivableMovementResponse struct {
	LineID          string      `json:"lineId"`
	RecorderID      string      `json:"recorderId"`
	RecorderType    string      `json:"recorderType"`
	RecorderVersion int         `json:"recorderVersion"`
	Period          time.Time   `json:"period"`
	RecordType      string      `json:"recordType"`
	CustomerID      string      `json:"customerId"`
	Currency        string      `json:"currency"`
	Amount          types.Money `json:"amount"`
	DueDate         time.Time   `json:"dueDate"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// FromReceivableMovement converts entity to response DTO.
func FromReceivableMovement(m entity.ReceivableMovement) ReceivableMovementResponse {
	return ReceivableMovementResponse{
		LineID:          m.LineID.String(),
		RecorderID:      m.RecorderID.String(),
		RecorderType:    m.RecorderType,
		RecorderVersion: m.RecorderVersion,
		Period:          m.Period,
		RecordType:      string(m.RecordType),
		CustomerID:      m.CustomerID.String(),
		Currency:        m.Currency,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		CreatedAt:       m.CreatedAt,
	}
}

// FromReceivableMovements converts a movement slice.
func FromReceivableMovements(movements []entity.ReceivableMovement) []ReceivableMovementResponse {
	resp := make([]ReceivableMovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = FromReceivableMovement(m)
	}
	return resp
}

// TurnoverResponse represents receipt/expense totals for a period.
type TurnoverResponse struct {
	CustomerID     string      `json:"customerId,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	OpeningBalance types.Money `json:"openingBalance"`
	Receipt        types.Money `json:"receipt"`
	Expense        types.Money `json:"expense"`
	ClosingBalance types.Money `json:"closingBalance"`
}

// FromTurnover converts domain turnover to response DTO.
func FromTurnover(t receivable.Turnover) TurnoverResponse {
	resp := TurnoverResponse{
		Currency:       t.Currency,
		OpeningBalance: t.OpeningBalance,
		Receipt:        t.Receipt,
		Expense:        t.Expense,
		ClosingBalance: t.ClosingBalance,
	}
	if !id.IsNil(t.CustomerID) {
		resp.CustomerID = t.CustomerID.String()
	}
	return resp
}
