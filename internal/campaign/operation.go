package campaign

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// OpType selects the scale of a ground operation.
type OpType int

const (
	OpRaid OpType = iota
	OpCampaign
	OpSiege
)

// String returns the wire name of the op type.
func (t OpType) String() string {
	switch t {
	case OpRaid:
		return "raid"
	case OpCampaign:
		return "campaign"
	case OpSiege:
		return "siege"
	default:
		return "unknown"
	}
}

// OpTypeFromString maps a wire name to an op type.
func OpTypeFromString(name string) (OpType, bool) {
	switch name {
	case "raid":
		return OpRaid, true
	case "campaign":
		return OpCampaign, true
	case "siege":
		return OpSiege, true
	}
	return 0, false
}

// Phase is one stage of an operation. The machine is strictly linear:
// contact_shaping, engagement, exploit_consolidate, then the terminal
// complete — no cycles, no skips.
type Phase int

const (
	PhaseContactShaping Phase = iota
	PhaseEngagement
	PhaseExploitConsolidate
	PhaseComplete
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseContactShaping:
		return "contact_shaping"
	case PhaseEngagement:
		return "engagement"
	case PhaseExploitConsolidate:
		return "exploit_consolidate"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// next returns the following phase in the fixed order.
func (p Phase) next() Phase {
	switch p {
	case PhaseContactShaping:
		return PhaseEngagement
	case PhaseEngagement:
		return PhaseExploitConsolidate
	default:
		return PhaseComplete
	}
}

// PhaseDecisions is the recorded choice set for one phase.
type PhaseDecisions map[string]string

// phaseDecisionFields lists the required fields per phase and their allowed
// values. Phase 1 always requires an approach axis and a fire-support choice
// before the first battle day runs.
var phaseDecisionFields = map[Phase]map[string][]string{
	PhaseContactShaping: {
		"approach_axis": {"direct", "flanking", "infiltration"},
		"fire_support":  {"massed", "precision", "none"},
	},
	PhaseEngagement: {
		"posture": {"aggressive", "balanced", "cautious"},
		"focus":   {"objectives", "attrition"},
	},
	PhaseExploitConsolidate: {
		"tempo":    {"pursue", "deliberate"},
		"reserves": {"commit", "hold"},
	},
}

// PhaseSummary aggregates one phase's battle days.
type PhaseSummary struct {
	ProgressDelta      float64     `json:"progress_delta"`
	Losses             UnitStock   `json:"losses"`
	EnemyLosses        UnitStock   `json:"enemy_losses"`
	SuppliesSpent      SupplyStock `json:"supplies_spent"`
	ReadinessDelta     float64     `json:"readiness_delta"`
	CohesionDelta      float64     `json:"cohesion_delta"`
	EnemyCohesionDelta float64     `json:"enemy_cohesion_delta"`
}

// BattleEvent is a ranked, attributable occurrence inside an operation.
type BattleEvent struct {
	Day         int     `json:"day"`
	Name        string  `json:"name"`
	Delta       float64 `json:"delta"`
	Description string  `json:"description"`
}

// PhaseRecord is the immutable after-record of one completed phase.
type PhaseRecord struct {
	Phase     Phase           `json:"phase"`
	PhaseName string          `json:"phase_name"`
	StartDay  int             `json:"start_day"`
	EndDay    int             `json:"end_day"`
	Decisions PhaseDecisions  `json:"decisions"`
	Summary   PhaseSummary    `json:"summary"`
	Days      []BattleDayTick `json:"days"`
	Events    []BattleEvent   `json:"events"`
}

// OperationState tracks one active ground operation. Exactly one may exist
// at a time.
type OperationState struct {
	Target             string                   `json:"target"`
	Type               OpType                   `json:"-"`
	TypeName           string                   `json:"op_type"`
	CurrentPhase       Phase                    `json:"-"`
	CurrentPhaseName   string                   `json:"current_phase"`
	PhaseDurations     map[Phase]int            `json:"-"`
	EstimatedTotalDays int                      `json:"estimated_total_days"`
	DayInOperation     int                      `json:"day_in_operation"`
	DayInPhase         int                      `json:"day_in_phase"`
	AwaitingDecision   bool                     `json:"awaiting_decision"`
	PendingPhaseRecord *PhaseRecord             `json:"pending_phase_record,omitempty"`
	Decisions          map[Phase]PhaseDecisions `json:"-"`
	PhaseHistory       []PhaseRecord            `json:"phase_history"`
	LatestBattleDay    *BattleDayTick           `json:"latest_battle_day,omitempty"`
	CurrentPhaseDays   []BattleDayTick          `json:"current_phase_days"`

	// Per-phase baselines for summary deltas.
	phaseStartDay           int
	phaseStartReadiness     float64
	phaseStartCohesion      float64
	phaseStartEnemyCohesion float64

	// Supply shortage carry-over: next-day effective power multiplier.
	supplyPenalty float64
}

// StartOperation opens a new operation against a catalog target. Fails while
// another operation runs or its after-action report is unacknowledged.
func (s *State) StartOperation(target, opTypeName string) error {
	if s.Operation != nil {
		return ErrOperationAlreadyActive
	}
	if s.LastAAR != nil && !s.LastAAR.Acknowledged {
		return fmt.Errorf("%w: previous after-action report awaits acknowledgement", ErrOperationAlreadyActive)
	}

	profile, ok := s.Scenario.Targets[target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	opType, ok := OpTypeFromString(opTypeName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidOpType, opTypeName)
	}

	// Bind the contested planet to this target. An earlier front against the
	// same target keeps its ground truth (control, narrowed intel); switching
	// targets opens a fresh one. Must happen before durations are resolved:
	// fortification and the strength estimate come from the planet.
	if s.Planet.NodeID != profile.NodeID {
		s.Planet = planetFromProfile(profile)
		s.Planet.UpdateObjectives()
	}

	durations := s.phaseDurations(opType)
	total := durations[PhaseContactShaping] + durations[PhaseEngagement] + durations[PhaseExploitConsolidate]

	s.Operation = &OperationState{
		Target:             target,
		Type:               opType,
		TypeName:           opType.String(),
		CurrentPhase:       PhaseContactShaping,
		CurrentPhaseName:   PhaseContactShaping.String(),
		PhaseDurations:     durations,
		EstimatedTotalDays: total,
		AwaitingDecision:   true,
		Decisions:          make(map[Phase]PhaseDecisions),
		phaseStartDay:      s.Day,
		supplyPenalty:      1.0,
	}
	s.Operation.captureBaselines(s)

	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("Operation opens: %s against %s (%d days estimated)", opType, profile.Name, total),
		Category:    "operation",
	})
	slog.Info("operation started",
		"target", target,
		"op_type", opType.String(),
		"estimated_days", total,
		"fortification", profile.Fortification,
	)
	return nil
}

// phaseDurations resolves per-phase day counts from scenario data: the
// op-type base, stretched by fortification on every phase and by the
// enemy-strength estimate on the middle phase.
func (s *State) phaseDurations(t OpType) map[Phase]int {
	d := s.Scenario.Durations
	base := d.Base[t.String()]

	fortExtra := int(math.Round(s.Planet.Fortification * d.FortificationFactor))
	strengthExtra := 0
	if d.StrengthStep > 0 {
		strengthExtra = s.Planet.Intel.EstimatedTotal() / d.StrengthStep
	}

	return map[Phase]int{
		PhaseContactShaping:     base[0] + fortExtra,
		PhaseEngagement:         base[1] + fortExtra + strengthExtra,
		PhaseExploitConsolidate: base[2] + fortExtra,
	}
}

// SubmitPhaseDecisions records the choice set for the current phase and
// unblocks day advancement.
func (s *State) SubmitPhaseDecisions(fields map[string]string) error {
	op := s.Operation
	if op == nil || !op.AwaitingDecision {
		return ErrNoPendingDecision
	}

	required := phaseDecisionFields[op.CurrentPhase]
	for name, allowed := range required {
		value, ok := fields[name]
		if !ok {
			return fmt.Errorf("%w: missing field %q for phase %s", ErrInvalidPhaseDecision, name, op.CurrentPhase)
		}
		if !contains(allowed, value) {
			return fmt.Errorf("%w: field %q does not accept %q", ErrInvalidPhaseDecision, name, value)
		}
	}
	for name := range fields {
		if _, ok := required[name]; !ok {
			return fmt.Errorf("%w: unrecognized field %q for phase %s", ErrInvalidPhaseDecision, name, op.CurrentPhase)
		}
	}

	decisions := make(PhaseDecisions, len(fields))
	for k, v := range fields {
		decisions[k] = v
	}
	op.Decisions[op.CurrentPhase] = decisions
	op.AwaitingDecision = false

	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("Orders issued for %s phase", op.CurrentPhase),
		Category:    "operation",
	})
	slog.Info("phase decisions submitted", "phase", op.CurrentPhase.String(), "fields", len(fields))
	return nil
}

// tickOperation runs one battle day and closes the phase at its configured
// duration. The driver only calls this when no decision gate is raised.
func (s *State) tickOperation() error {
	op := s.Operation

	tick, err := s.resolveBattleDay()
	if err != nil {
		return err
	}

	op.CurrentPhaseDays = append(op.CurrentPhaseDays, tick)
	op.LatestBattleDay = &op.CurrentPhaseDays[len(op.CurrentPhaseDays)-1]
	op.DayInPhase++
	op.DayInOperation++

	if op.DayInPhase >= op.PhaseDurations[op.CurrentPhase] {
		s.closePhase()
	}
	return nil
}

// closePhase aggregates the phase's ticks into a pending record and halts
// further ticking until the caller acknowledges it.
func (s *State) closePhase() {
	op := s.Operation

	summary := PhaseSummary{
		ReadinessDelta:     s.TaskForce.Readiness - op.phaseStartReadiness,
		CohesionDelta:      s.TaskForce.Cohesion - op.phaseStartCohesion,
		EnemyCohesionDelta: s.Planet.EnemyCohesion - op.phaseStartEnemyCohesion,
	}
	for _, tick := range op.CurrentPhaseDays {
		summary.ProgressDelta += tick.ProgressDelta
		summary.Losses.AddAll(tick.Losses)
		summary.EnemyLosses.AddAll(tick.EnemyLosses)
		summary.SuppliesSpent.AddAll(tick.Supply.Spent)
	}

	record := PhaseRecord{
		Phase:     op.CurrentPhase,
		PhaseName: op.CurrentPhase.String(),
		StartDay:  op.phaseStartDay,
		EndDay:    s.Day,
		Decisions: op.Decisions[op.CurrentPhase],
		Summary:   summary,
		Days:      append([]BattleDayTick(nil), op.CurrentPhaseDays...),
		Events:    rankedPhaseEvents(op.CurrentPhaseDays),
	}
	op.PendingPhaseRecord = &record

	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("%s phase concludes after %d days, awaiting review", op.CurrentPhase, len(record.Days)),
		Category:    "operation",
	})
	slog.Info("phase closed",
		"phase", op.CurrentPhase.String(),
		"days", len(record.Days),
		"progress", fmt.Sprintf("%.3f", summary.ProgressDelta),
		"losses", summary.Losses.Total(),
	)
}

// AcknowledgePhaseReport files the pending record and advances the machine.
// Reaching complete generates the after-action report and retires the
// operation.
func (s *State) AcknowledgePhaseReport() error {
	op := s.Operation
	if op == nil || op.PendingPhaseRecord == nil {
		return ErrNoPendingPhaseReport
	}

	op.PhaseHistory = append(op.PhaseHistory, *op.PendingPhaseRecord)
	op.PendingPhaseRecord = nil
	op.CurrentPhase = op.CurrentPhase.next()
	op.CurrentPhaseName = op.CurrentPhase.String()
	op.DayInPhase = 0
	op.CurrentPhaseDays = nil
	op.phaseStartDay = s.Day
	op.captureBaselines(s)

	// The lull between phases lets both sides breathe.
	s.TaskForce.Cohesion = clamp01(s.TaskForce.Cohesion + 0.05)
	s.Planet.EnemyCohesion = clamp01(s.Planet.EnemyCohesion + 0.04)

	if op.CurrentPhase == PhaseComplete {
		s.LastAAR = s.generateAAR(op)
		s.Operation = nil
		s.EmitEvent(Event{
			Day:         s.Day,
			Description: fmt.Sprintf("Operation against %s concludes: %s", s.Planet.Name, s.LastAAR.Outcome),
			Category:    "operation",
		})
		slog.Info("operation complete", "target", op.Target, "outcome", s.LastAAR.Outcome, "days", op.DayInOperation)
		return nil
	}

	op.AwaitingDecision = true
	slog.Info("phase advanced", "phase", op.CurrentPhase.String())
	return nil
}

// AcknowledgeAAR marks the last after-action report consumed, allowing a new
// operation to start.
func (s *State) AcknowledgeAAR() error {
	if s.LastAAR == nil || s.LastAAR.Acknowledged {
		return ErrNoPendingAAR
	}
	s.LastAAR.Acknowledged = true
	slog.Info("after-action report acknowledged", "target", s.LastAAR.Target)
	return nil
}

func (op *OperationState) captureBaselines(s *State) {
	op.phaseStartReadiness = s.TaskForce.Readiness
	op.phaseStartCohesion = s.TaskForce.Cohesion
	op.phaseStartEnemyCohesion = s.Planet.EnemyCohesion
}

// decision returns the recorded value for a field of the current phase,
// or the empty string.
func (op *OperationState) decision(field string) string {
	if d, ok := op.Decisions[op.CurrentPhase]; ok {
		return d[field]
	}
	return ""
}

// rankedPhaseEvents extracts notable tick tags as events ranked by the
// magnitude of their contribution.
func rankedPhaseEvents(ticks []BattleDayTick) []BattleEvent {
	var events []BattleEvent
	for _, t := range ticks {
		for _, tag := range t.Tags {
			events = append(events, BattleEvent{
				Day:         t.GlobalDay,
				Name:        tag,
				Delta:       eventDelta(tag, t),
				Description: eventDescription(tag, t),
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return math.Abs(events[i].Delta) > math.Abs(events[j].Delta)
	})
	return events
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
