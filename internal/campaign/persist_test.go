package campaign

import (
	"encoding/json"
	"testing"

	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/scenario"
)

// midCampaignState builds a state with every subsystem populated: queued
// jobs, a shipment in transit, and an operation mid-phase.
func midCampaignState(t *testing.T) *State {
	t.Helper()
	s := newTestState(t)

	if err := s.QueueProductionJob("ammo", 100); err != nil {
		t.Fatal(err)
	}
	if err := s.QueueBarracksJob("infantry", 50); err != nil {
		t.Fatal(err)
	}
	if err := s.DispatchShipment("core", "staging", SupplyStock{Ammo: 200}, UnitStock{}); err != nil {
		t.Fatal(err)
	}
	if err := s.StartOperation("kerrav", "campaign"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPhaseDecisions(phaseOrders[PhaseContactShaping]); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.AdvanceDay(); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	s := midCampaignState(t)

	// The envelope must survive serialization, as the store keeps JSON.
	raw, err := json.Marshal(s.Save())
	if err != nil {
		t.Fatal(err)
	}
	var sg SaveGame
	if err := json.Unmarshal(raw, &sg); err != nil {
		t.Fatal(err)
	}

	restored := Restore(scenario.Default(7), &entropy.Scripted{Values: []float64{0.99}}, sg)

	if restored.Day != s.Day || restored.Version != s.Version || restored.ActionPoints != s.ActionPoints {
		t.Errorf("scalars diverged: day %d/%d version %d/%d ap %d/%d",
			restored.Day, s.Day, restored.Version, s.Version, restored.ActionPoints, s.ActionPoints)
	}

	for _, d := range s.Depots {
		rd := restored.Depot(d.ID)
		if rd == nil || *rd != *d {
			t.Errorf("depot %s diverged: %+v vs %+v", d.ID, rd, d)
		}
	}
	if len(restored.Shipments) != len(s.Shipments) {
		t.Fatalf("shipments = %d, want %d", len(restored.Shipments), len(s.Shipments))
	}
	if len(restored.FactoryQueue) != 1 || restored.FactoryQueue[0].Remaining != s.FactoryQueue[0].Remaining {
		t.Error("factory queue did not survive the round trip")
	}
	if restored.TaskForce != s.TaskForce {
		t.Errorf("task force diverged: %+v vs %+v", restored.TaskForce, s.TaskForce)
	}
}

func TestSaveRestorePreservesHiddenIntel(t *testing.T) {
	s := midCampaignState(t)
	sg := s.Save()

	// Actual strengths are excluded from client-facing JSON but must survive
	// the persistence envelope.
	raw, _ := json.Marshal(sg)
	var back SaveGame
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}

	restored := Restore(scenario.Default(7), &entropy.Scripted{Values: []float64{0.99}}, back)
	if got := restored.Planet.Intel.Infantry.Actual; got != s.Planet.Intel.Infantry.Actual {
		t.Errorf("hidden garrison actual = %d, want %d", got, s.Planet.Intel.Infantry.Actual)
	}
	if restored.Planet.InitialIntelWidth != s.Planet.InitialIntelWidth {
		t.Errorf("intel anchor = %d, want %d", restored.Planet.InitialIntelWidth, s.Planet.InitialIntelWidth)
	}
}

func TestSaveRestorePreservesOperationRuntime(t *testing.T) {
	s := midCampaignState(t)
	raw, _ := json.Marshal(s.Save())
	var sg SaveGame
	if err := json.Unmarshal(raw, &sg); err != nil {
		t.Fatal(err)
	}

	restored := Restore(scenario.Default(7), &entropy.Scripted{Values: []float64{0.99}}, sg)
	op, orig := restored.Operation, s.Operation
	if op == nil {
		t.Fatal("operation lost in the round trip")
	}
	if op.CurrentPhase != orig.CurrentPhase || op.DayInPhase != orig.DayInPhase {
		t.Errorf("phase position diverged: %v/%d vs %v/%d",
			op.CurrentPhase, op.DayInPhase, orig.CurrentPhase, orig.DayInPhase)
	}
	if op.PhaseDurations[PhaseEngagement] != orig.PhaseDurations[PhaseEngagement] {
		t.Error("phase durations diverged")
	}
	if op.Decisions[PhaseContactShaping]["approach_axis"] != "direct" {
		t.Errorf("decisions diverged: %+v", op.Decisions)
	}
	if op.supplyPenalty != orig.supplyPenalty {
		t.Errorf("supply carry-over = %v, want %v", op.supplyPenalty, orig.supplyPenalty)
	}
	if len(op.CurrentPhaseDays) != len(orig.CurrentPhaseDays) {
		t.Errorf("battle days = %d, want %d", len(op.CurrentPhaseDays), len(orig.CurrentPhaseDays))
	}

	// The restored campaign must keep ticking from where it stopped.
	if err := restored.AdvanceDay(); err != nil {
		t.Fatalf("restored campaign cannot advance: %v", err)
	}
}
