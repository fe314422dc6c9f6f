// Package entity provides core domain entities.
package entity

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance (a committed invoice raises
	// what the customer owes)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance (a payment or credit)
	RecordTypeExpense RecordType = "expense"
)

// RegisterKind defines the type of register.
type RegisterKind string

const (
	// RegisterKindAccumulation - tracks amounts over time
	RegisterKindAccumulation RegisterKind = "accumulation"
	// RegisterKindInformation - stores dimensional data
	RegisterKindInformation RegisterKind = "information"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	// Used instead of hash for deterministic tracking
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Invoice")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which commit iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// ReceivableMovement represents a movement in the accounts-receivable
// accumulation register. Tracks what each customer owes, per currency.
type ReceivableMovement struct {
	MovementBase

	// Dimensions
	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Currency   string `db:"currency" json:"currency"`

	// Resources
	Amount types.Money `db:"amount" json:"amount"`

	// DueDate is when the receivable falls due (for aging queries)
	DueDate time.Time `db:"due_date" json:"dueDate"`
}

// NewReceivableMovement creates a new receivable movement.
func NewReceivableMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	customerID id.ID,
	currency string,
	amount types.Money,
	dueDate time.Time,
) ReceivableMovement {
	return ReceivableMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		CustomerID:   customerID,
		Currency:     currency,
		Amount:       amount,
		DueDate:      dueDate,
	}
}

// SignedAmount returns amount with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *ReceivableMovement) SignedAmount() types.Money {
	if m.RecordType == RecordTypeExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}

// ReceivableBalance represents the current balance in the receivables
// register. This is a materialized/cached view for fast balance queries.
type ReceivableBalance struct {
	// Dimensions
	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Currency   string `db:"currency" json:"currency"`

	// Balances
	Amount types.Money `db:"amount" json:"amount"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
