package draft

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/fx"
	"facture/internal/domain/pricing"
	"facture/pkg/logger"
)

type fakePersister struct {
	createErr error
	updateErr error
	created   []Payload
	updated   map[id.ID]Payload
	nextID    id.ID
}

func newFakePersister() *fakePersister {
	return &fakePersister{updated: make(map[id.ID]Payload), nextID: id.New()}
}

func (f *fakePersister) Create(ctx context.Context, p Payload) (id.ID, error) {
	if f.createErr != nil {
		return id.Nil(), f.createErr
	}
	f.created = append(f.created, p)
	return f.nextID, nil
}

func (f *fakePersister) Update(ctx context.Context, documentID id.ID, p Payload) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[documentID] = p
	return nil
}

func draftWithLine(t *testing.T) *DocumentDraft {
	t.Helper()
	d := New("EUR")
	require.NoError(t, d.AddLine(pricing.LineItem{
		Description: "Consulting",
		Quantity:    types.MustMoney("2"),
		UnitPrice:   types.MustMoney("100"),
		TaxRate:     types.MustMoney("10"),
	}))
	return d
}

func TestNewDraftIsEmptyAndEditable(t *testing.T) {
	d := New("EUR")
	assert.Equal(t, StatusEditing, d.Status())
	assert.True(t, d.Totals.Equal(pricing.ZeroTotals()))
	assert.Equal(t, "EUR", d.FX.Currency)
}

func TestAddLineRecomputesTotals(t *testing.T) {
	d := draftWithLine(t)
	assert.Equal(t, "200.00", d.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", d.Totals.TaxTotal.StringFixed(2))
	assert.Equal(t, 1, d.Lines[0].LineNo)
	assert.False(t, id.IsNil(d.Lines[0].LineID))
}

func TestUpdateLineRecomputesTotals(t *testing.T) {
	d := draftWithLine(t)

	line := d.Lines[0]
	line.Quantity = types.MustMoney("3")
	require.NoError(t, d.UpdateLine(line))
	assert.Equal(t, "300.00", d.Totals.Subtotal.StringFixed(2))

	line.LineID = id.New()
	err := d.UpdateLine(line)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestRemoveLineRenumbers(t *testing.T) {
	d := draftWithLine(t)
	require.NoError(t, d.AddLine(pricing.LineItem{
		Description: "Hosting",
		Quantity:    types.MustMoney("1"),
		UnitPrice:   types.MustMoney("50"),
	}))

	require.NoError(t, d.RemoveLine(d.Lines[0].LineID))
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "Hosting", d.Lines[0].Description)
	assert.Equal(t, 1, d.Lines[0].LineNo)
	assert.Equal(t, "50.00", d.Totals.Subtotal.StringFixed(2))
}

func TestSetPolicyLeavesLinesUntouched(t *testing.T) {
	d := draftWithLine(t)
	before := d.Lines[0]

	policy := d.Policy
	policy.DiscountMode = pricing.DiscountPercent
	policy.Discount = types.MustMoney("10")
	require.NoError(t, d.SetPolicy(context.Background(), policy))

	assert.Equal(t, before, d.Lines[0])
	assert.Equal(t, "180.00", d.Totals.Subtotal.StringFixed(2))
}

func TestSetPolicyRejectsUnknownMode(t *testing.T) {
	d := draftWithLine(t)
	policy := d.Policy
	policy.TaxMode = "flat"
	require.Error(t, d.SetPolicy(context.Background(), policy))
}

func TestCommitRequiresCustomerAndNumber(t *testing.T) {
	d := draftWithLine(t)
	persister := newFakePersister()

	_, err := d.Commit(context.Background(), persister)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, StatusEditing, d.Status())

	customerID := id.New()
	require.NoError(t, d.SetCustomer(context.Background(), nil, customerID, ""))
	_, err = d.Commit(context.Background(), persister)
	require.Error(t, err, "number still missing")
	assert.Empty(t, persister.created, "validation must run before persistence")
}

func TestCommitFreezesSnapshot(t *testing.T) {
	d := draftWithLine(t)
	customerID := id.New()
	require.NoError(t, d.SetCustomer(context.Background(), nil, customerID, ""))
	require.NoError(t, d.SetNumber("INV-2026-00001"))

	persister := newFakePersister()
	snap, err := d.Commit(context.Background(), persister)
	require.NoError(t, err)

	assert.Equal(t, StatusCommitted, d.Status())
	assert.Equal(t, persister.nextID, snap.DocumentID)
	assert.Equal(t, "INV-2026-00001", snap.Payload.Number)
	assert.Equal(t, customerID, snap.Payload.CustomerID)
	assert.Equal(t, "EUR", snap.Payload.Currency)
	assert.Equal(t, "1", snap.Payload.FXRateSnapshot.String())
	assert.True(t, snap.Payload.TotalAmount.Equal(
		snap.Payload.Subtotal.Add(snap.Payload.TaxTotal).Add(snap.Payload.Shipping)))

	// Terminal: no further edits.
	err = d.AddLine(pricing.LineItem{})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDocumentCommitted, appErr.Code)
}

func TestCommitFailureReturnsToEditing(t *testing.T) {
	d := draftWithLine(t)
	customerID := id.New()
	require.NoError(t, d.SetCustomer(context.Background(), nil, customerID, ""))
	require.NoError(t, d.SetNumber("INV-2026-00002"))

	persister := newFakePersister()
	persister.createErr = errors.New("connection refused")

	snap, err := d.Commit(context.Background(), persister)
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Nil(t, d.Snapshot())
	assert.Equal(t, StatusEditing, d.Status())

	// Still editable after the failure.
	require.NoError(t, d.SetNumber("INV-2026-00003"))
}

func TestCommitOfRestoredDraftUpdates(t *testing.T) {
	existing := id.New()
	customerID := id.New()
	src := draftWithLine(t)

	d := Restore(existing, "INV-2026-00004", src.Date, &customerID, src.Lines, src.Policy, src.FX)
	assert.Equal(t, "200.00", d.Totals.Subtotal.StringFixed(2))

	persister := newFakePersister()
	snap, err := d.Commit(context.Background(), persister)
	require.NoError(t, err)
	assert.Equal(t, existing, snap.DocumentID)
	assert.Empty(t, persister.created)
	assert.Contains(t, persister.updated, existing)
}

func TestCancelDiscardsWithoutSideEffects(t *testing.T) {
	d := draftWithLine(t)
	require.NoError(t, d.Cancel())
	assert.Equal(t, StatusCancelled, d.Status())
	assert.Nil(t, d.Snapshot())
	require.Error(t, d.SetNumber("INV-X"))
}

func TestSnapshotIsNotRecomputed(t *testing.T) {
	d := draftWithLine(t)
	customerID := id.New()
	require.NoError(t, d.SetCustomer(context.Background(), nil, customerID, ""))
	require.NoError(t, d.SetNumber("INV-2026-00005"))

	persister := newFakePersister()
	snap, err := d.Commit(context.Background(), persister)
	require.NoError(t, err)
	recorded := snap.Payload.TotalAmount

	// Mutating the draft's slices afterwards must not reach the
	// snapshot's copy.
	d.Lines[0].UnitPrice = types.MustMoney("999")
	assert.Equal(t, "100", snap.Payload.Lines[0].UnitPrice.String())
	assert.True(t, recorded.Equal(snap.Payload.TotalAmount))
}

type stubRateSource struct {
	mu      sync.Mutex
	rates   map[string]types.Money
	calls   int
	block   chan struct{} // first lookup waits here when set
	started chan struct{}
}

func (s *stubRateSource) GetRate(ctx context.Context, from, to string) (types.Money, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if first && s.block != nil {
		close(s.started)
		<-s.block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rate, ok := s.rates[from+"/"+to]; ok {
		return rate, nil
	}
	return types.Money{}, errors.New("no rate")
}

func (s *stubRateSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSetFXOptionsControlsRescaling(t *testing.T) {
	d := draftWithLine(t)
	src := &stubRateSource{rates: map[string]types.Money{"EUR/USD": types.MustMoney("2")}}
	engine := fx.NewEngine(src, logger.Default())

	require.NoError(t, d.SetFXOptions(true, true))
	require.NoError(t, d.ChangeCurrency(context.Background(), engine, "USD"))
	assert.Equal(t, 0, src.callCount(), "locked draft must not trigger a lookup")
	assert.Equal(t, "USD", d.FX.Currency)
	assert.True(t, d.FX.Mismatched)
	assert.Equal(t, "100", d.Lines[0].UnitPrice.String())

	// Unlocking and re-selecting the label converts the amounts.
	require.NoError(t, d.SetFXOptions(false, true))
	require.NoError(t, d.ChangeCurrency(context.Background(), engine, "USD"))
	assert.Equal(t, 1, src.callCount())
	assert.False(t, d.FX.Mismatched)
	assert.Equal(t, "200", d.Lines[0].UnitPrice.String())
}

func TestChangeCurrencySupersededReportsCurrentState(t *testing.T) {
	d := draftWithLine(t)
	src := &stubRateSource{
		rates: map[string]types.Money{
			"EUR/USD": types.MustMoney("2"),
			"EUR/GBP": types.MustMoney("0.5"),
		},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	engine := fx.NewEngine(src, logger.Default())

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = d.ChangeCurrency(context.Background(), engine, "USD")
	}()
	<-src.started

	// A second change lands while the first lookup is still in flight.
	require.NoError(t, d.ChangeCurrency(context.Background(), engine, "GBP"))
	close(src.block)
	wg.Wait()

	require.NoError(t, firstErr, "a discarded change is not a failure")
	assert.Equal(t, "GBP", d.FX.Currency)
	assert.Equal(t, "GBP", d.FX.LastPriceCurrency)
	assert.Equal(t, "50", d.Lines[0].UnitPrice.String())
}
