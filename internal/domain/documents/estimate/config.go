package estimate

import "facture/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Estimates are internal documents; gaps after restarts are acceptable.
	NumeratorStrategy = numerator.StrategyCached

	// NumberPrefix for generated estimate numbers, e.g. EST-2026-00042.
	NumberPrefix = "EST"
)
