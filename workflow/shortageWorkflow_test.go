package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTransportCost_NoShortage(t *testing.T) {
	got := ComputeTransportCost(false, decimal.NewFromInt(10), decimal.NewFromInt(45000), decimal.Zero)
	if !got.Equal(decimal.NewFromInt(450000)) {
		t.Fatalf("got %s, want 450000", got)
	}
}

func TestComputeTransportCost_ShortageReducesCost(t *testing.T) {
	// 45000 L at 10/L with a 20000 monetary shortage.
	got := ComputeTransportCost(false, decimal.NewFromInt(10), decimal.NewFromInt(45000), decimal.NewFromInt(20000))
	if !got.Equal(decimal.NewFromInt(430000)) {
		t.Fatalf("got %s, want 430000", got)
	}
}

func TestComputeTransportCost_FlooredAtZero(t *testing.T) {
	got := ComputeTransportCost(false, decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(2000))
	if !got.IsZero() {
		t.Fatalf("got %s, want 0", got)
	}
}

func TestComputeTransportCost_CessionCarriesNoCost(t *testing.T) {
	got := ComputeTransportCost(true, decimal.NewFromInt(10), decimal.NewFromInt(45000), decimal.Zero)
	if !got.IsZero() {
		t.Fatalf("cession trip: got %s, want 0", got)
	}
}
