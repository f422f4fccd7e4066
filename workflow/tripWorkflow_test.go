package workflow

import (
	"testing"

	"bitbucket.org/transfuel/fleet_backend/models"
	"github.com/shopspring/decimal"
)

func delivered(qty int64, shortage int64) models.ClientAllocation {
	s := decimal.NewFromInt(shortage)
	return models.ClientAllocation{
		Qty:            decimal.NewFromInt(qty),
		DeliveryStatus: models.DeliveryStatusDelivered,
		ShortageQty:    &s,
	}
}

func notDelivered(qty int64) models.ClientAllocation {
	return models.ClientAllocation{
		Qty:            decimal.NewFromInt(qty),
		DeliveryStatus: models.DeliveryStatusNotDelivered,
	}
}

func TestEvaluateCompletion_FullDeliveryNoShortage(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	state, err := EvaluateCompletion(nominal, []models.ClientAllocation{delivered(45000, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStateUnloaded {
		t.Fatalf("got %q, want UNLOADED", state)
	}
}

func TestEvaluateCompletion_ShortageLeavesTripPartial(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	state, err := EvaluateCompletion(nominal, []models.ClientAllocation{delivered(45000, 2000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStatePartiallyUnloaded {
		t.Fatalf("got %q, want PARTIALLY_UNLOADED", state)
	}
}

func TestEvaluateCompletion_SplitAllocationsExactFill(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	state, err := EvaluateCompletion(nominal, []models.ClientAllocation{
		delivered(20000, 0),
		delivered(25000, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStateUnloaded {
		t.Fatalf("got %q, want UNLOADED", state)
	}
}

func TestEvaluateCompletion_UndeliveredAllocationBlocksCompletion(t *testing.T) {
	nominal := decimal.NewFromInt(45000)
	state, err := EvaluateCompletion(nominal, []models.ClientAllocation{
		delivered(20000, 0),
		notDelivered(25000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStatePartiallyUnloaded {
		t.Fatalf("got %q, want PARTIALLY_UNLOADED", state)
	}
}

func TestEvaluateCompletion_ToleranceAbsorbsRounding(t *testing.T) {
	nominal := decimal.NewFromInt(45000)

	within := decimal.RequireFromString("44999.995")
	state, err := EvaluateCompletion(nominal, []models.ClientAllocation{{
		Qty:            within,
		DeliveryStatus: models.DeliveryStatusDelivered,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStateUnloaded {
		t.Fatalf("delivered %s: got %q, want UNLOADED", within, state)
	}

	outside := decimal.RequireFromString("44999.98")
	state, err = EvaluateCompletion(nominal, []models.ClientAllocation{{
		Qty:            outside,
		DeliveryStatus: models.DeliveryStatusDelivered,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != models.TripStatePartiallyUnloaded {
		t.Fatalf("delivered %s: got %q, want PARTIALLY_UNLOADED", outside, state)
	}
}

func TestEvaluateCompletion_NoAllocationsRejected(t *testing.T) {
	if _, err := EvaluateCompletion(decimal.NewFromInt(45000), nil); err == nil {
		t.Fatalf("expected an error for a trip without allocations")
	}
}
