package fx

import (
	"sync"
	"sync/atomic"

	"facture/internal/core/types"
)

// State tracks the currency posture of a single document draft: the
// displayed currency, the currency its amounts were last priced in, and
// the rate that produced them.
//
// Currency and LastPriceCurrency diverge (Mismatched=true) when a rate
// lookup failed or rescaling is locked: the label has moved on, the
// amounts have not.
type State struct {
	Currency          string      `json:"currency" db:"currency"`
	LastPriceCurrency string      `json:"last_price_currency" db:"last_price_currency"`
	ExchangeRate      types.Money `json:"exchange_rate" db:"exchange_rate"`
	RateLocked        bool        `json:"rate_locked" db:"rate_locked"`
	AutoConvert       bool        `json:"auto_convert" db:"auto_convert"`
	Mismatched        bool        `json:"mismatched" db:"mismatched"`

	// generation orders currency changes so a late rate response for a
	// superseded change is discarded instead of overwriting newer data.
	generation atomic.Uint64
	mu         sync.Mutex
}

// NewState returns a consistent state priced in the given currency.
func NewState(currency string) *State {
	return &State{
		Currency:          currency,
		LastPriceCurrency: currency,
		ExchangeRate:      types.MustMoney("1"),
		AutoConvert:       true,
	}
}

// Generation returns the identifier of the most recently issued
// currency change.
func (s *State) Generation() uint64 {
	return s.generation.Load()
}

// SetOptions toggles the rate lock and auto-convert flags under the
// state lock, so an in-flight currency change observes either the old
// posture or the new one, never a half-applied pair.
func (s *State) SetOptions(rateLocked, autoConvert bool) {
	s.mu.Lock()
	s.RateLocked = rateLocked
	s.AutoConvert = autoConvert
	s.mu.Unlock()
}
