package invoice

import "facture/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Invoices need gapless audited numbers, so strict is required.
	NumeratorStrategy = numerator.StrategyStrict

	// NumberPrefix for generated invoice numbers, e.g. INV-2026-00042.
	NumberPrefix = "INV"
)
