package fx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/apperror"
	"facture/internal/core/types"
	"facture/internal/domain/pricing"
	"facture/pkg/logger"
)

type fakeRateSource struct {
	mu    sync.Mutex
	rates map[string]types.Money
	err   error
	calls int
	// block, when non-nil, holds a lookup in flight until it is closed;
	// started is signalled when such a lookup begins waiting.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRateSource) GetRate(ctx context.Context, from, to string) (types.Money, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	started := f.started
	f.mu.Unlock()

	if block != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-block
	}
	if f.err != nil {
		return types.Zero(), f.err
	}
	rate, ok := f.rates[from+"/"+to]
	if !ok {
		return types.Zero(), errors.New("unknown pair")
	}
	return rate, nil
}

func testLines() []pricing.LineItem {
	return []pricing.LineItem{{
		Description:  "Consulting",
		Quantity:     types.MustMoney("1"),
		UnitPrice:    types.MustMoney("100"),
		LineDiscount: types.MustMoney("20"),
		TaxRate:      types.MustMoney("10"),
	}}
}

func newTestEngine(src RateSource) *Engine {
	return NewEngine(src, logger.Default())
}

func TestChangeCurrencyRescalesLines(t *testing.T) {
	src := &fakeRateSource{rates: map[string]types.Money{"EUR/USD": types.MustMoney("1.1")}}
	engine := newTestEngine(src)

	st := NewState("EUR")
	lines := testLines()

	totals, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "110.00", lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "22.00", lines[0].LineDiscount.StringFixed(2))
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, "USD", st.LastPriceCurrency)
	assert.Equal(t, "1.1", st.ExchangeRate.String())
	assert.False(t, st.Mismatched)

	// Totals reflect the rescaled amounts: net 88, tax 10% of gross 110.
	assert.Equal(t, "88.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "11.00", totals.TaxTotal.StringFixed(2))
}

func TestChangeCurrencyLookupFailure(t *testing.T) {
	src := &fakeRateSource{err: errors.New("gateway timeout")}
	engine := newTestEngine(src)

	st := NewState("EUR")
	lines := testLines()

	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeRateUnavailable, appErr.Code)

	// Label moved, amounts and rate did not.
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, "EUR", st.LastPriceCurrency)
	assert.Equal(t, "1", st.ExchangeRate.String())
	assert.True(t, st.Mismatched)
	assert.Equal(t, "100", lines[0].UnitPrice.String())
	assert.Equal(t, "20", lines[0].LineDiscount.String())
}

func TestChangeCurrencyRateLocked(t *testing.T) {
	src := &fakeRateSource{rates: map[string]types.Money{"EUR/USD": types.MustMoney("1.1")}}
	engine := newTestEngine(src)

	st := NewState("EUR")
	st.RateLocked = true
	lines := testLines()

	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.NoError(t, err)

	assert.Equal(t, 0, src.calls, "locked state must not trigger a lookup")
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, "EUR", st.LastPriceCurrency)
	assert.Equal(t, "100", lines[0].UnitPrice.String())
	assert.True(t, st.Mismatched)
}

func TestChangeCurrencyAutoConvertDisabled(t *testing.T) {
	src := &fakeRateSource{rates: map[string]types.Money{"EUR/USD": types.MustMoney("1.1")}}
	engine := newTestEngine(src)

	st := NewState("EUR")
	st.AutoConvert = false
	lines := testLines()

	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, "100", lines[0].UnitPrice.String())
}

func TestChangeCurrencySameCurrencyNoop(t *testing.T) {
	src := &fakeRateSource{}
	engine := newTestEngine(src)

	st := NewState("EUR")
	_, err := engine.ChangeCurrency(context.Background(), st, testLines(), pricing.DefaultPolicy(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, uint64(0), st.Generation())
}

func TestChangeCurrencyBackToPriceCurrency(t *testing.T) {
	src := &fakeRateSource{err: errors.New("down")}
	engine := newTestEngine(src)

	st := NewState("EUR")
	lines := testLines()

	// First change fails, leaving a mismatch.
	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.Error(t, err)
	require.True(t, st.Mismatched)

	// Returning to the currency the amounts are priced in needs no
	// lookup and clears the mismatch.
	callsBefore := src.calls
	_, err = engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, callsBefore, src.calls)
	assert.Equal(t, "EUR", st.Currency)
	assert.False(t, st.Mismatched)
}

func TestChangeCurrencyRetryAfterFailure(t *testing.T) {
	src := &fakeRateSource{err: errors.New("down")}
	engine := newTestEngine(src)

	st := NewState("EUR")
	lines := testLines()

	// First change fails: label USD, amounts still EUR.
	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.Error(t, err)
	require.True(t, st.Mismatched)
	require.Equal(t, 1, src.calls)

	// The rate source recovers; re-selecting the same label retries
	// the conversion instead of short-circuiting as a no-op.
	src.err = nil
	src.rates = map[string]types.Money{"EUR/USD": types.MustMoney("1.1")}

	_, err = engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, "USD", st.LastPriceCurrency)
	assert.Equal(t, "110.00", lines[0].UnitPrice.StringFixed(2))
	assert.False(t, st.Mismatched)
}

func TestChangeCurrencyStaleResponseDiscarded(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	src := &fakeRateSource{
		rates: map[string]types.Money{
			"EUR/USD": types.MustMoney("1.1"),
			"EUR/GBP": types.MustMoney("0.85"),
		},
		block:   block,
		started: started,
	}
	engine := newTestEngine(src)

	st := NewState("EUR")
	lines := testLines()

	firstDone := make(chan error, 1)
	go func() {
		_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "USD")
		firstDone <- err
	}()

	// Wait for the USD lookup to be in flight, then issue a newer change
	// to GBP that completes while the first is still blocked.
	<-started
	src.mu.Lock()
	src.block = nil
	src.started = nil
	src.mu.Unlock()

	_, err := engine.ChangeCurrency(context.Background(), st, lines, pricing.DefaultPolicy(), "GBP")
	require.NoError(t, err)

	// Release the stale USD response; it must be discarded.
	close(block)
	require.ErrorIs(t, <-firstDone, ErrSuperseded)

	// Only the GBP conversion was applied.
	assert.Equal(t, "GBP", st.Currency)
	assert.Equal(t, "GBP", st.LastPriceCurrency)
	assert.Equal(t, "0.85", st.ExchangeRate.String())
	assert.Equal(t, "85.00", lines[0].UnitPrice.StringFixed(2))
}
