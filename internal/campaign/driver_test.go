package campaign

import (
	"math"
	"strings"
	"testing"
)

func TestAdvanceDayResetsActionPoints(t *testing.T) {
	s := newTestState(t)

	if err := s.QueueProductionJob("ammo", 10); err != nil {
		t.Fatal(err)
	}
	s.ActionPoints = 0

	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}
	if s.Day != 1 {
		t.Errorf("day = %d, want 1", s.Day)
	}
	if got := s.ActionPoints; got != s.Scenario.ActionPointsPerDay {
		t.Errorf("action points = %d, want reset to %d", got, s.Scenario.ActionPointsPerDay)
	}
}

func TestAdvanceDayBumpsVersion(t *testing.T) {
	s := newTestState(t)
	before := s.Version
	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}
	if s.Version <= before {
		t.Errorf("version = %d, want above %d", s.Version, before)
	}
}

// Production runs before logistics within a tick: a job completing today is
// reported before a convoy arriving today.
func TestTickOrderProductionBeforeLogistics(t *testing.T) {
	s := newTestState(t)

	if err := s.QueueProductionJob("ammo", 20); err != nil { // completes in 1 day
		t.Fatal(err)
	}
	// core→staging takes 2 days; advance one day first so both land together.
	if err := s.DispatchShipment("core", "staging", SupplyStock{Fuel: 50}, UnitStock{}); err != nil {
		t.Fatal(err)
	}
	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}
	s.Events = nil
	if err := s.QueueProductionJob("fuel", 20); err != nil {
		t.Fatal(err)
	}
	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}

	prodIdx, arriveIdx := -1, -1
	for i, e := range s.Events {
		if e.Category == "production" && prodIdx == -1 {
			prodIdx = i
		}
		if e.Category == "logistics" && strings.Contains(e.Description, "arrives") {
			arriveIdx = i
		}
	}
	if prodIdx == -1 || arriveIdx == -1 {
		t.Fatalf("expected both a completion and an arrival event, got %+v", s.Events)
	}
	if prodIdx > arriveIdx {
		t.Errorf("production event at %d after arrival at %d", prodIdx, arriveIdx)
	}
}

func TestGarrisonReinforcementWidensCeiling(t *testing.T) {
	s := newTestState(t)
	before := s.Planet.Intel.Infantry

	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}

	after := s.Planet.Intel.Infantry
	rate := int(s.Planet.ReinforcementRate)
	if after.Actual != before.Actual+rate {
		t.Errorf("garrison actual = %d, want %d", after.Actual, before.Actual+rate)
	}
	if after.Max != before.Max+rate {
		t.Errorf("band ceiling = %d, want %d", after.Max, before.Max+rate)
	}
	if after.Min != before.Min {
		t.Errorf("band floor moved without reconnaissance: %d -> %d", before.Min, after.Min)
	}
}

func TestQuietDaysRecuperate(t *testing.T) {
	s := newTestState(t)
	s.TaskForce.Cohesion = 0.5
	s.TaskForce.Readiness = 0.5

	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}

	if math.Abs(s.TaskForce.Cohesion-0.52) > 1e-9 {
		t.Errorf("cohesion = %v, want 0.52", s.TaskForce.Cohesion)
	}
	if math.Abs(s.TaskForce.Readiness-0.515) > 1e-9 {
		t.Errorf("readiness = %v, want 0.515", s.TaskForce.Readiness)
	}
}

func TestBattleDaysDoNotRecuperate(t *testing.T) {
	s := newTestState(t)
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPhaseDecisions(phaseOrders[PhaseContactShaping]); err != nil {
		t.Fatal(err)
	}

	before := s.TaskForce.Readiness
	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}
	if s.TaskForce.Readiness >= before {
		t.Errorf("readiness = %v, want below %v after a day in contact", s.TaskForce.Readiness, before)
	}
}
