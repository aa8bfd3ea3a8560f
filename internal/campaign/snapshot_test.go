package campaign

import "testing"

// A consumer holding a snapshot must never observe later engine activity,
// including through the operation and report pointers.
func TestSnapshotOperationDetached(t *testing.T) {
	s := newTestState(t)
	if err := s.StartOperation("kerrav", "campaign"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPhaseDecisions(phaseOrders[PhaseContactShaping]); err != nil {
		t.Fatal(err)
	}

	snap := s.Snap()
	if err := s.AdvanceDay(); err != nil {
		t.Fatal(err)
	}

	if got := snap.Operation.DayInOperation; got != 0 {
		t.Errorf("snapshot day_in_operation = %d after a live tick, want 0", got)
	}
	if got := len(snap.Operation.CurrentPhaseDays); got != 0 {
		t.Errorf("snapshot battle days = %d after a live tick, want 0", got)
	}
	if s.Operation.DayInOperation != 1 {
		t.Fatalf("live operation did not tick: day %d", s.Operation.DayInOperation)
	}
}

func TestSnapshotDecisionsDetached(t *testing.T) {
	s := newTestState(t)
	if err := s.StartOperation("kerrav", "campaign"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPhaseDecisions(phaseOrders[PhaseContactShaping]); err != nil {
		t.Fatal(err)
	}

	snap := s.Snap()
	s.Operation.Decisions[PhaseContactShaping]["approach_axis"] = "flanking"

	if got := snap.Operation.Decisions[PhaseContactShaping]["approach_axis"]; got != "direct" {
		t.Errorf("snapshot decision = %q after a live edit, want direct", got)
	}
}

func TestSnapshotObjectivesDetached(t *testing.T) {
	s := newTestState(t)
	snap := s.Snap()
	before := snap.ContestedPlanet.Objectives[0].Status

	s.Planet.Control = 1.0
	s.Planet.UpdateObjectives()

	if s.Planet.Objectives[0].Status != ObjectiveSecured {
		t.Fatal("live objective did not update")
	}
	if got := snap.ContestedPlanet.Objectives[0].Status; got != before {
		t.Errorf("snapshot objective status moved %v -> %v under the consumer", before, got)
	}
}

func TestSnapshotReportDetached(t *testing.T) {
	s := newTestState(t)
	runOperation(t, s, "raid")

	snap := s.Snap()
	if err := s.AcknowledgeAAR(); err != nil {
		t.Fatal(err)
	}
	if snap.LastAAR.Acknowledged {
		t.Error("snapshot report flipped to acknowledged under the consumer")
	}
}

func TestSnapshotWithoutOperation(t *testing.T) {
	s := newTestState(t)
	snap := s.Snap()
	if snap.Operation != nil || snap.LastAAR != nil {
		t.Errorf("fresh campaign snapshot: operation %v, report %v, want nil", snap.Operation, snap.LastAAR)
	}
}
