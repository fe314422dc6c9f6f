// Package fx rewrites the monetary fields of a document draft when its
// working currency changes: it looks up an exchange rate, rescales the
// line amounts and refreshes the totals.
package fx

import (
	"context"
	"errors"

	"facture/internal/core/apperror"
	"facture/internal/core/types"
	"facture/internal/domain/pricing"
	"facture/pkg/logger"
)

// ErrSuperseded reports that a newer currency change was issued while
// this one's rate lookup was in flight. The draft was left untouched.
var ErrSuperseded = errors.New("fx: currency change superseded")

// RateSource resolves an exchange rate for a currency pair.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (types.Money, error)
}

// Engine applies currency changes to a draft's state and lines.
type Engine struct {
	rates RateSource
	log   *logger.Logger
}

func NewEngine(rates RateSource, log *logger.Logger) *Engine {
	return &Engine{rates: rates, log: log}
}

// ChangeCurrency switches the draft to newCurrency and, when allowed,
// rescales lines by the looked-up rate. The rate lookup is the only
// blocking step; the currency label is updated before it starts.
//
// Outcomes:
//   - rate locked or auto-convert off: label-only change, amounts kept;
//   - lookup succeeds: lines rescaled in place, rate recorded, totals
//     recomputed;
//   - lookup fails: label-only change, Mismatched set, the rate error
//     returned for the caller to surface (the draft stays valid);
//   - a newer change was issued meanwhile: nothing applied, ErrSuperseded.
func (e *Engine) ChangeCurrency(ctx context.Context, st *State, lines []pricing.LineItem, policy pricing.Policy, newCurrency string) (pricing.Totals, error) {
	st.mu.Lock()
	// Same label is only a no-op while amounts agree with it; a
	// mismatched draft re-selecting its label is a conversion retry.
	if newCurrency == st.Currency && !st.Mismatched {
		st.mu.Unlock()
		return pricing.Compute(lines, policy), nil
	}

	gen := st.generation.Add(1)
	st.Currency = newCurrency

	if st.RateLocked || !st.AutoConvert {
		st.Mismatched = newCurrency != st.LastPriceCurrency
		st.mu.Unlock()
		return pricing.Compute(lines, policy), nil
	}

	if newCurrency == st.LastPriceCurrency {
		// Back to the currency the amounts are already priced in.
		st.Mismatched = false
		st.mu.Unlock()
		return pricing.Compute(lines, policy), nil
	}

	from := st.LastPriceCurrency
	st.mu.Unlock()

	rate, err := e.rates.GetRate(ctx, from, newCurrency)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.generation.Load() != gen {
		return pricing.Compute(lines, policy), ErrSuperseded
	}

	if err != nil {
		st.Mismatched = true
		e.log.WithContext(ctx).Warnw("exchange rate lookup failed, amounts left unconverted",
			"from", from, "to", newCurrency, "error", err)
		return pricing.Compute(lines, policy), apperror.NewRateUnavailable(from, newCurrency, err)
	}

	for i := range lines {
		lines[i].Rescale(rate)
	}
	st.LastPriceCurrency = newCurrency
	st.ExchangeRate = rate
	st.Mismatched = false

	return pricing.Compute(lines, policy), nil
}
