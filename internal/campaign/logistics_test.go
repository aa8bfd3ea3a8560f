package campaign

import (
	"errors"
	"testing"

	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/scenario"
)

func totalAmmo(s *State) int {
	total := s.TaskForce.Supplies.Ammo
	for _, d := range s.Depots {
		total += d.Supplies.Ammo
	}
	for _, sh := range s.Shipments {
		total += sh.Supplies.Ammo
	}
	return total
}

func TestDispatchValidationOrder(t *testing.T) {
	s := newTestState(t)

	if err := s.DispatchShipment("core", "staging", SupplyStock{}, UnitStock{}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("empty cargo: err = %v, want ErrInvalidPayload", err)
	}
	if err := s.DispatchShipment("core", "nowhere", SupplyStock{Ammo: 1}, UnitStock{}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("unknown lane: err = %v, want ErrNoRoute", err)
	}
	if err := s.DispatchShipment("core", "staging", SupplyStock{Ammo: 999999}, UnitStock{}); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("overdraw: err = %v, want ErrInsufficientStock", err)
	}

	if len(s.Shipments) != 0 {
		t.Errorf("rejected dispatches must not create shipments, found %d", len(s.Shipments))
	}
	if got := s.Depot("core").Supplies.Ammo; got != 2400 {
		t.Errorf("rejected dispatches must not debit the depot: ammo = %d, want 2400", got)
	}
}

func TestDispatchDebitsAtomically(t *testing.T) {
	s := newTestState(t)

	if err := s.DispatchShipment("core", "staging", SupplyStock{Ammo: 500}, UnitStock{Infantry: 200}); err != nil {
		t.Fatal(err)
	}

	if got := s.Depot("core").Supplies.Ammo; got != 1900 {
		t.Errorf("origin ammo = %d, want 1900", got)
	}
	if got := s.Depot("core").Units.Infantry; got != 1000 {
		t.Errorf("origin infantry = %d, want 1000", got)
	}
	if len(s.Shipments) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(s.Shipments))
	}
	sh := s.Shipments[0]
	if sh.DaysRemaining != 2 || sh.TotalDays != 2 {
		t.Errorf("travel time = %d/%d, want 2/2", sh.DaysRemaining, sh.TotalDays)
	}
}

func TestShipmentConservationWithoutInterdiction(t *testing.T) {
	s := newTestState(t) // scripted 0.99: every interdiction roll misses

	before := totalAmmo(s)
	if err := s.DispatchShipment("core", "staging", SupplyStock{Ammo: 500}, UnitStock{}); err != nil {
		t.Fatal(err)
	}

	for day := 0; day < 3; day++ {
		if got := totalAmmo(s); got != before {
			t.Fatalf("day %d: total ammo = %d, want conserved %d", day, got, before)
		}
		s.tickLogistics()
	}

	if len(s.Shipments) != 0 {
		t.Fatalf("shipment should have arrived, %d still in transit", len(s.Shipments))
	}
	if got := s.Depot("staging").Supplies.Ammo; got != 1100 {
		t.Errorf("staging ammo = %d, want 1100", got)
	}
	if got := totalAmmo(s); got != before {
		t.Errorf("total ammo after arrival = %d, want %d", got, before)
	}
}

func TestInterdictionRollsOnceAtMidpoint(t *testing.T) {
	// First roll 0.0 forces the hit on the staging→front lane (risk 0.25);
	// second roll 0.5 sets the loss inside the scenario band.
	src := &entropy.Scripted{Values: []float64{0.0, 0.5}}
	s := New(scenario.Default(7), src)

	if err := s.DispatchShipment("staging", "front", SupplyStock{Ammo: 600}, UnitStock{}); err != nil {
		t.Fatal(err)
	}

	// Day 1: remaining 2, midpoint is 1 — no roll yet.
	s.tickLogistics()
	if s.Shipments[0].Interdicted {
		t.Fatal("interdiction rolled before the midpoint checkpoint")
	}

	// Day 2: remaining 1 == TotalDays/2 — the single roll happens here.
	s.tickLogistics()
	sh := s.Shipments[0]
	if !sh.Interdicted {
		t.Fatal("forced interdiction roll did not register")
	}
	// lossPct = 0.10 + 0.5*(0.45-0.10) = 0.275; 600 * 0.725 = 435.
	if sh.InterdictionLossPct != 0.275 {
		t.Errorf("loss pct = %v, want 0.275", sh.InterdictionLossPct)
	}
	if sh.Supplies.Ammo != 435 {
		t.Errorf("surviving ammo = %d, want 435", sh.Supplies.Ammo)
	}

	// Day 3: arrival; no second roll on the same crossing.
	s.tickLogistics()
	if len(s.Shipments) != 0 {
		t.Fatalf("shipment should have arrived, %d in transit", len(s.Shipments))
	}
	if got := s.Depot("front").Supplies.Ammo; got != 250+435 {
		t.Errorf("front ammo = %d, want %d", got, 250+435)
	}
}

func TestUnitsArrivingAtTaskForceLocationJoinIt(t *testing.T) {
	s := newTestState(t)

	tfBefore := s.TaskForce.Units.Infantry
	if err := s.DispatchShipment("staging", "front", SupplyStock{}, UnitStock{Infantry: 300}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		s.tickLogistics()
	}

	if got := s.TaskForce.Units.Infantry; got != tfBefore+300 {
		t.Errorf("task force infantry = %d, want %d", got, tfBefore+300)
	}
	if got := s.Depot("front").Units.Infantry; got != 0 {
		t.Errorf("depot should not hold reinforcements bound for the task force, got %d", got)
	}
}

func TestTransitLogRecordsLifecycle(t *testing.T) {
	s := newTestState(t)

	if err := s.DispatchShipment("core", "staging", SupplyStock{Fuel: 100}, UnitStock{}); err != nil {
		t.Fatal(err)
	}
	s.tickLogistics()
	s.tickLogistics()

	kinds := make([]string, 0, len(s.TransitLog))
	for _, e := range s.TransitLog {
		kinds = append(kinds, e.Kind)
	}
	if len(kinds) != 2 || kinds[0] != "dispatch" || kinds[1] != "arrival" {
		t.Errorf("transit log kinds = %v, want [dispatch arrival]", kinds)
	}
}
