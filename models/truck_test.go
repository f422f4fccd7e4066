package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func deliveredAllocation(qty int64) ClientAllocation {
	return ClientAllocation{Qty: decimal.NewFromInt(qty), DeliveryStatus: DeliveryStatusDelivered}
}

func pendingAllocation(qty int64) ClientAllocation {
	return ClientAllocation{Qty: decimal.NewFromInt(qty), DeliveryStatus: DeliveryStatusNotDelivered}
}

func TestDeriveTruckStatus_OnTheRoad(t *testing.T) {
	for _, state := range []TripState{
		TripStateLoading, TripStateLoaded, TripStateDeparted, TripStateArrived, TripStateCustoms,
	} {
		got := DeriveTruckStatus(TruckStatusAvailable, state, nil, false)
		if got != TruckStatusEnRoute {
			t.Fatalf("state %q: got %q, want EnRoute", state, got)
		}
	}
}

func TestDeriveTruckStatus_ReceivedAndDelivered(t *testing.T) {
	got := DeriveTruckStatus(TruckStatusEnRoute, TripStateDelivered, []ClientAllocation{deliveredAllocation(100)}, false)
	if got != TruckStatusAvailable {
		t.Fatalf("all delivered: got %q, want Available", got)
	}

	got = DeriveTruckStatus(TruckStatusEnRoute, TripStateDelivered, []ClientAllocation{deliveredAllocation(100), pendingAllocation(50)}, false)
	if got != TruckStatusEnRoute {
		t.Fatalf("partial delivery: got %q, want EnRoute", got)
	}

	got = DeriveTruckStatus(TruckStatusEnRoute, TripStateReceived, nil, false)
	if got != TruckStatusAvailable {
		t.Fatalf("received without allocations: got %q, want Available", got)
	}
}

func TestDeriveTruckStatus_Unloaded(t *testing.T) {
	allocations := []ClientAllocation{deliveredAllocation(100)}

	if got := DeriveTruckStatus(TruckStatusEnRoute, TripStateUnloaded, allocations, true); got != TruckStatusAvailable {
		t.Fatalf("unloaded + validated: got %q, want Available", got)
	}
	if got := DeriveTruckStatus(TruckStatusEnRoute, TripStateUnloaded, allocations, false); got != TruckStatusEnRoute {
		t.Fatalf("unloaded without validated checkpoint: got %q, want EnRoute", got)
	}
	if got := DeriveTruckStatus(TruckStatusEnRoute, TripStatePartiallyUnloaded, allocations, true); got != TruckStatusEnRoute {
		t.Fatalf("partially unloaded: got %q, want EnRoute", got)
	}
}

func TestDeriveTruckStatus_NeverOverridesMaintenance(t *testing.T) {
	for _, current := range []TruckStatus{TruckStatusMaintenance, TruckStatusOutOfService} {
		for _, state := range []TripState{TripStateLoading, TripStateReceived, TripStateUnloaded} {
			if got := DeriveTruckStatus(current, state, nil, true); got != current {
				t.Fatalf("current %q state %q: got %q, want unchanged", current, state, got)
			}
		}
	}
}
