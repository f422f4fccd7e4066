package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanAllocate_CapacityInvariant(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	existing := []ClientAllocation{
		{ID: 1, ClientId: 10, Qty: decimal.NewFromInt(20000)},
		{ID: 2, ClientId: 11, Qty: decimal.NewFromInt(15000)},
	}

	if !CanAllocate(nominal, existing, decimal.NewFromInt(10000), 0) {
		t.Fatalf("exact fill rejected")
	}
	if CanAllocate(nominal, existing, decimal.NewFromInt(10001), 0) {
		t.Fatalf("over-capacity allocation accepted")
	}
}

func TestCanAllocate_ExcludesReQuantifiedAllocation(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	existing := []ClientAllocation{
		{ID: 1, ClientId: 10, Qty: decimal.NewFromInt(20000)},
		{ID: 2, ClientId: 11, Qty: decimal.NewFromInt(15000)},
	}

	// Re-quantifying allocation 1 replaces its 20000, so 30000 fits.
	if !CanAllocate(nominal, existing, decimal.NewFromInt(30000), 1) {
		t.Fatalf("re-quantification within capacity rejected")
	}
	if CanAllocate(nominal, existing, decimal.NewFromInt(30001), 1) {
		t.Fatalf("re-quantification over capacity accepted")
	}
}

func TestDeliveredQty(t *testing.T) {
	qty := decimal.NewFromInt(20000)
	shortage := decimal.NewFromInt(500)

	full := ClientAllocation{Qty: qty}
	if !full.DeliveredQty().Equal(qty) {
		t.Fatalf("no shortage: got %s, want %s", full.DeliveredQty(), qty)
	}

	short := ClientAllocation{Qty: qty, ShortageQty: &shortage}
	want := decimal.NewFromInt(19500)
	if !short.DeliveredQty().Equal(want) {
		t.Fatalf("with shortage: got %s, want %s", short.DeliveredQty(), want)
	}
}

func TestShortageAmount(t *testing.T) {
	qty := decimal.NewFromInt(2000)
	price := decimal.NewFromInt(12)

	if got := ShortageAmount(qty, &price); !got.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("priced shortage: got %s, want 24000", got)
	}
	// No agreed price yet: the shortage has quantity but no monetary value.
	if got := ShortageAmount(qty, nil); !got.IsZero() {
		t.Fatalf("unpriced shortage: got %s, want 0", got)
	}
}
