package models

import "testing"

func TestParseTripState_CurrentNames(t *testing.T) {
	for _, s := range []TripState{
		TripStateLoading, TripStateLoaded, TripStateDeparted, TripStateArrived,
		TripStateCustoms, TripStateReceived, TripStateDelivered,
		TripStateUnloaded, TripStatePartiallyUnloaded,
	} {
		got, known := ParseTripState(string(s))
		if !known || got != s {
			t.Fatalf("ParseTripState(%q) = (%q, %v), want (%q, true)", s, got, known, s)
		}
	}
}

func TestParseTripState_LegacyAliases(t *testing.T) {
	cases := map[string]TripState{
		"CHARGEMENT":        TripStateLoading,
		"CHARGE":            TripStateLoaded,
		"EN_ROUTE":          TripStateDeparted,
		"ARRIVE":            TripStateArrived,
		"DOUANE":            TripStateCustoms,
		"RECEPTIONNE":       TripStateReceived,
		"LIVRE":             TripStateDelivered,
		"DECHARGE":          TripStateUnloaded,
		"DECHARGE_PARTIEL":  TripStatePartiallyUnloaded,
		"DECHARGEMENT":      TripStateUnloaded,
		"LIVRAISON_PARTIEL": TripStatePartiallyUnloaded,
	}
	for alias, want := range cases {
		got, known := ParseTripState(alias)
		if !known || got != want {
			t.Fatalf("ParseTripState(%q) = (%q, %v), want (%q, true)", alias, got, known, want)
		}
	}
}

func TestParseTripState_UnknownFallsBackToLoading(t *testing.T) {
	for _, s := range []string{"", "BOGUS", "loading", "chargement"} {
		got, known := ParseTripState(s)
		if known {
			t.Fatalf("ParseTripState(%q) reported known", s)
		}
		if got != TripStateLoading {
			t.Fatalf("ParseTripState(%q) = %q, want fallback %q", s, got, TripStateLoading)
		}
	}
}

func TestCheckpointNames_FixedOrderedSet(t *testing.T) {
	want := []CheckpointName{
		CheckpointLoading, CheckpointLoaded, CheckpointDeparted, CheckpointArrived,
		CheckpointCustoms, CheckpointReceived, CheckpointDelivered, CheckpointUnloaded,
	}
	if len(CheckpointNames) != len(want) {
		t.Fatalf("got %d checkpoint names, want %d", len(CheckpointNames), len(want))
	}
	for i, name := range want {
		if CheckpointNames[i] != name {
			t.Fatalf("CheckpointNames[%d] = %q, want %q", i, CheckpointNames[i], name)
		}
	}
}
