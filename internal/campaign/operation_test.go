package campaign

import (
	"errors"
	"testing"

	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/scenario"
)

var phaseOrders = map[Phase]map[string]string{
	PhaseContactShaping:     {"approach_axis": "direct", "fire_support": "massed"},
	PhaseEngagement:         {"posture": "balanced", "focus": "objectives"},
	PhaseExploitConsolidate: {"tempo": "deliberate", "reserves": "hold"},
}

// runOperation drives a full operation to its after-action report, submitting
// stock orders and acknowledging every phase report. Returns the visited
// phases in order.
func runOperation(t *testing.T, s *State, opType string) []Phase {
	t.Helper()
	if err := s.StartOperation("kerrav", opType); err != nil {
		t.Fatalf("start operation: %v", err)
	}

	var visited []Phase
	for s.Operation != nil {
		op := s.Operation
		if op.AwaitingDecision {
			visited = append(visited, op.CurrentPhase)
			if err := s.SubmitPhaseDecisions(phaseOrders[op.CurrentPhase]); err != nil {
				t.Fatalf("submit decisions for %s: %v", op.CurrentPhase, err)
			}
			continue
		}
		if op.PendingPhaseRecord != nil {
			if err := s.AcknowledgePhaseReport(); err != nil {
				t.Fatalf("acknowledge phase report: %v", err)
			}
			continue
		}
		if err := s.AdvanceDay(); err != nil {
			t.Fatalf("advance day %d: %v", s.Day, err)
		}
		if s.Day > 500 {
			t.Fatal("operation did not terminate")
		}
	}
	return visited
}

func TestStartOperationValidation(t *testing.T) {
	s := newTestState(t)

	if err := s.StartOperation("vanthos", "raid"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("unknown target: err = %v, want ErrInvalidTarget", err)
	}
	if err := s.StartOperation("kerrav", "blitz"); !errors.Is(err, ErrInvalidOpType) {
		t.Errorf("unknown op type: err = %v, want ErrInvalidOpType", err)
	}
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatalf("valid start rejected: %v", err)
	}
	if err := s.StartOperation("kerrav", "raid"); !errors.Is(err, ErrOperationAlreadyActive) {
		t.Errorf("second start: err = %v, want ErrOperationAlreadyActive", err)
	}
}

func TestPhaseDurationsScaleWithOpType(t *testing.T) {
	s := newTestState(t)

	// Fortification 0.55 x factor 2.0 adds 1 day to every phase; the 2860
	// estimated garrison adds 1 more to the middle phase (step 2500).
	tests := []struct {
		opType string
		want   map[Phase]int
	}{
		{"raid", map[Phase]int{PhaseContactShaping: 3, PhaseEngagement: 5, PhaseExploitConsolidate: 3}},
		{"campaign", map[Phase]int{PhaseContactShaping: 5, PhaseEngagement: 8, PhaseExploitConsolidate: 5}},
		{"siege", map[Phase]int{PhaseContactShaping: 7, PhaseEngagement: 11, PhaseExploitConsolidate: 7}},
	}
	var lastTotal int
	for _, tt := range tests {
		opType, _ := OpTypeFromString(tt.opType)
		got := s.phaseDurations(opType)
		total := 0
		for phase, days := range tt.want {
			if got[phase] != days {
				t.Errorf("%s %s: %d days, want %d", tt.opType, phase, got[phase], days)
			}
			total += days
		}
		if total <= lastTotal {
			t.Errorf("%s estimate (%d) should exceed the lighter op type (%d)", tt.opType, total, lastTotal)
		}
		lastTotal = total
	}
}

func TestDecisionGateBlocksBattleDays(t *testing.T) {
	s := newTestState(t)
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatal(err)
	}
	if !s.Operation.AwaitingDecision {
		t.Fatal("new operation must open awaiting phase-one orders")
	}

	// Days pass, the front stays quiet, logistics keeps moving.
	for i := 0; i < 3; i++ {
		if err := s.AdvanceDay(); err != nil {
			t.Fatal(err)
		}
	}
	if s.Operation.DayInOperation != 0 {
		t.Errorf("battle days ran while orders were pending: %d", s.Operation.DayInOperation)
	}
	if s.Day != 3 {
		t.Errorf("campaign day = %d, want 3 (time moves regardless)", s.Day)
	}
}

func TestSubmitPhaseDecisionsValidation(t *testing.T) {
	s := newTestState(t)

	if err := s.SubmitPhaseDecisions(map[string]string{"posture": "balanced"}); !errors.Is(err, ErrNoPendingDecision) {
		t.Errorf("no operation: err = %v, want ErrNoPendingDecision", err)
	}

	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing field", map[string]string{"approach_axis": "direct"}},
		{"bad value", map[string]string{"approach_axis": "direct", "fire_support": "orbital"}},
		{"unknown field", map[string]string{"approach_axis": "direct", "fire_support": "massed", "posture": "balanced"}},
	}
	for _, tt := range tests {
		if err := s.SubmitPhaseDecisions(tt.fields); !errors.Is(err, ErrInvalidPhaseDecision) {
			t.Errorf("%s: err = %v, want ErrInvalidPhaseDecision", tt.name, err)
		}
		if !s.Operation.AwaitingDecision {
			t.Fatalf("%s: rejected orders must leave the gate raised", tt.name)
		}
	}

	valid := map[string]string{"approach_axis": "flanking", "fire_support": "precision"}
	if err := s.SubmitPhaseDecisions(valid); err != nil {
		t.Fatalf("valid orders rejected: %v", err)
	}
	if s.Operation.AwaitingDecision {
		t.Error("valid orders should lower the decision gate")
	}
	if err := s.SubmitPhaseDecisions(valid); !errors.Is(err, ErrNoPendingDecision) {
		t.Errorf("resubmission: err = %v, want ErrNoPendingDecision", err)
	}
}

func TestPhaseReportGateBlocksBattleDays(t *testing.T) {
	s := newTestState(t)
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitPhaseDecisions(phaseOrders[PhaseContactShaping]); err != nil {
		t.Fatal(err)
	}

	duration := s.Operation.PhaseDurations[PhaseContactShaping]
	for i := 0; i < duration; i++ {
		if err := s.AdvanceDay(); err != nil {
			t.Fatal(err)
		}
	}
	if s.Operation.PendingPhaseRecord == nil {
		t.Fatal("phase should close with a pending record at its duration")
	}

	stalled := s.Operation.DayInOperation
	for i := 0; i < 2; i++ {
		if err := s.AdvanceDay(); err != nil {
			t.Fatal(err)
		}
	}
	if s.Operation.DayInOperation != stalled {
		t.Errorf("battle days ran under an unacknowledged report: %d -> %d", stalled, s.Operation.DayInOperation)
	}

	if err := s.AcknowledgePhaseReport(); err != nil {
		t.Fatal(err)
	}
	if got := s.Operation.CurrentPhase; got != PhaseEngagement {
		t.Errorf("phase after acknowledgement = %v, want engagement", got)
	}
	if err := s.AcknowledgePhaseReport(); !errors.Is(err, ErrNoPendingPhaseReport) {
		t.Errorf("double acknowledgement: err = %v, want ErrNoPendingPhaseReport", err)
	}
}

func TestOperationVisitsEachPhaseExactlyOnce(t *testing.T) {
	s := newTestState(t)
	visited := runOperation(t, s, "raid")

	want := []Phase{PhaseContactShaping, PhaseEngagement, PhaseExploitConsolidate}
	if len(visited) != len(want) {
		t.Fatalf("visited %d phases (%v), want %v", len(visited), visited, want)
	}
	for i, phase := range want {
		if visited[i] != phase {
			t.Errorf("phase %d = %v, want %v", i, visited[i], phase)
		}
	}

	if s.LastAAR == nil {
		t.Fatal("completed operation must leave an after-action report")
	}
	if s.Operation != nil {
		t.Error("completed operation must retire")
	}
}

func TestPhaseRecordsMatchDurations(t *testing.T) {
	s := newTestState(t)
	runOperation(t, s, "raid")

	report := s.LastAAR
	if len(report.Phases) != 3 {
		t.Fatalf("phase history = %d records, want 3", len(report.Phases))
	}
	durations := map[Phase]int{PhaseContactShaping: 3, PhaseEngagement: 5, PhaseExploitConsolidate: 3}
	for _, rec := range report.Phases {
		if got := len(rec.Days); got != durations[rec.Phase] {
			t.Errorf("%s: %d battle days recorded, want %d", rec.Phase, got, durations[rec.Phase])
		}
		if rec.Decisions == nil {
			t.Errorf("%s: record carries no decisions", rec.Phase)
		}
	}
	if report.Days != 11 {
		t.Errorf("operation length = %d days, want 11", report.Days)
	}
}

// secondTarget extends the default catalog with a second contested world so
// multi-target campaigns can be exercised.
func secondTarget() scenario.TargetProfile {
	return scenario.TargetProfile{
		NodeID:            "othmar",
		Name:              "Othmar's Hold",
		Fortification:     0.3,
		ReinforcementRate: 10,
		EnemyCohesion:     0.8,
		Infantry:          scenario.GarrisonBand{Min: 800, Max: 1600, Actual: 1100},
		Walkers:           scenario.GarrisonBand{Min: 50, Max: 200, Actual: 120},
		Support:           scenario.GarrisonBand{Min: 100, Max: 400, Actual: 250},
		Objectives: []scenario.ObjectiveSpec{
			{ID: "anchorage", Label: "Deepwater Anchorage", SecureAt: 0.50},
		},
	}
}

func TestStartOperationBindsPlanetToTarget(t *testing.T) {
	sc := scenario.Default(7)
	sc.Targets["othmar"] = secondTarget()
	s := New(sc, &entropy.Scripted{Values: []float64{0.99}})

	if err := s.StartOperation("othmar", "raid"); err != nil {
		t.Fatal(err)
	}
	if s.Planet.NodeID != "othmar" || s.Planet.Name != "Othmar's Hold" {
		t.Fatalf("operation fights %s (%s), want Othmar's Hold", s.Planet.Name, s.Planet.NodeID)
	}
	if got := s.Planet.Fortification; got != 0.3 {
		t.Errorf("fortification = %v, want the target's 0.3", got)
	}
	// Raid base {2,3,2} + 1 per phase from fortification (round(0.3*2.0));
	// the 1,575 estimated garrison stays under the 2,500 strength step.
	if got := s.Operation.EstimatedTotalDays; got != 10 {
		t.Errorf("estimated days = %d, want 10", got)
	}
}

func TestRestartAgainstSameTargetKeepsGroundTruth(t *testing.T) {
	s := newTestState(t)
	runOperation(t, s, "raid")
	if err := s.AcknowledgeAAR(); err != nil {
		t.Fatal(err)
	}

	control := s.Planet.Control
	intel := s.Planet.Intel
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Fatal(err)
	}
	if s.Planet.Control != control {
		t.Errorf("control reset on restart: %v -> %v", control, s.Planet.Control)
	}
	if s.Planet.Intel != intel {
		t.Errorf("narrowed intel reset on restart: %+v -> %+v", intel, s.Planet.Intel)
	}
}

func TestUnacknowledgedAARBlocksNextOperation(t *testing.T) {
	s := newTestState(t)
	runOperation(t, s, "raid")

	if err := s.StartOperation("kerrav", "raid"); !errors.Is(err, ErrOperationAlreadyActive) {
		t.Errorf("start under pending AAR: err = %v, want ErrOperationAlreadyActive", err)
	}

	if err := s.AcknowledgeAAR(); err != nil {
		t.Fatal(err)
	}
	if err := s.AcknowledgeAAR(); !errors.Is(err, ErrNoPendingAAR) {
		t.Errorf("double AAR acknowledgement: err = %v, want ErrNoPendingAAR", err)
	}
	if err := s.StartOperation("kerrav", "raid"); err != nil {
		t.Errorf("acknowledged AAR should clear the path: %v", err)
	}
}
