package campaign

import (
	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/scenario"
)

// SaveGame is the full-fidelity serialization envelope for a campaign,
// including fields the outward snapshot hides (enemy actuals, operation
// runtime baselines). The durable store keeps it as an opaque blob; the
// scenario catalog itself is regenerated from its seed, never persisted.
type SaveGame struct {
	Day          int    `json:"day"`
	Version      uint64 `json:"version"`
	ActionPoints int    `json:"action_points"`

	Depots     []Depot        `json:"depots"`
	Shipments  []Shipment     `json:"shipments"`
	TransitLog []TransitEntry `json:"transit_log"`

	FactoryCount  int             `json:"factory_count"`
	BarracksCount int             `json:"barracks_count"`
	FactoryQueue  []ProductionJob `json:"factory_queue"`
	BarracksQueue []BarracksJob   `json:"barracks_queue"`

	TaskForce TaskForce  `json:"task_force"`
	Planet    PlanetSave `json:"planet"`

	Operation *OperationSave     `json:"operation,omitempty"`
	LastAAR   *AfterActionReport `json:"last_aar,omitempty"`

	Events []Event `json:"events"`
}

// IntelBandSave carries the hidden actual alongside the public band.
type IntelBandSave struct {
	Min    int `json:"min"`
	Max    int `json:"max"`
	Actual int `json:"actual"`
}

// PlanetSave mirrors ContestedPlanet with hidden fields exported.
type PlanetSave struct {
	Name              string        `json:"name"`
	NodeID            string        `json:"node_id"`
	Control           float64       `json:"control"`
	Objectives        []Objective   `json:"objectives"`
	Infantry          IntelBandSave `json:"infantry"`
	Walkers           IntelBandSave `json:"walkers"`
	Support           IntelBandSave `json:"support"`
	Fortification     float64       `json:"fortification"`
	ReinforcementRate float64       `json:"reinforcement_rate"`
	EnemyCohesion     float64       `json:"enemy_cohesion"`
	IntelConfidence   float64       `json:"intel_confidence"`
	InitialIntelWidth int           `json:"initial_intel_width"`
}

// OperationSave mirrors OperationState with runtime baselines exported and
// enum maps keyed by wire names.
type OperationSave struct {
	Target             string                    `json:"target"`
	OpType             string                    `json:"op_type"`
	CurrentPhase       string                    `json:"current_phase"`
	PhaseDurations     map[string]int            `json:"phase_durations"`
	EstimatedTotalDays int                       `json:"estimated_total_days"`
	DayInOperation     int                       `json:"day_in_operation"`
	DayInPhase         int                       `json:"day_in_phase"`
	AwaitingDecision   bool                      `json:"awaiting_decision"`
	PendingPhaseRecord *PhaseRecord              `json:"pending_phase_record,omitempty"`
	Decisions          map[string]PhaseDecisions `json:"decisions"`
	PhaseHistory       []PhaseRecord             `json:"phase_history"`
	CurrentPhaseDays   []BattleDayTick           `json:"current_phase_days"`

	PhaseStartDay           int     `json:"phase_start_day"`
	PhaseStartReadiness     float64 `json:"phase_start_readiness"`
	PhaseStartCohesion      float64 `json:"phase_start_cohesion"`
	PhaseStartEnemyCohesion float64 `json:"phase_start_enemy_cohesion"`
	SupplyPenalty           float64 `json:"supply_penalty"`
}

var phasesByName = map[string]Phase{
	PhaseContactShaping.String():     PhaseContactShaping,
	PhaseEngagement.String():         PhaseEngagement,
	PhaseExploitConsolidate.String(): PhaseExploitConsolidate,
	PhaseComplete.String():           PhaseComplete,
}

// Save exports the campaign into its serialization envelope.
func (s *State) Save() SaveGame {
	sg := SaveGame{
		Day:           s.Day,
		Version:       s.Version,
		ActionPoints:  s.ActionPoints,
		TransitLog:    s.TransitLog,
		FactoryCount:  s.FactoryCount,
		BarracksCount: s.BarracksCount,
		TaskForce:     s.TaskForce,
		LastAAR:       s.LastAAR,
		Events:        s.Events,
	}
	for _, d := range s.Depots {
		sg.Depots = append(sg.Depots, *d)
	}
	for _, sh := range s.Shipments {
		sg.Shipments = append(sg.Shipments, *sh)
	}
	for _, j := range s.FactoryQueue {
		sg.FactoryQueue = append(sg.FactoryQueue, *j)
	}
	for _, j := range s.BarracksQueue {
		sg.BarracksQueue = append(sg.BarracksQueue, *j)
	}

	p := s.Planet
	sg.Planet = PlanetSave{
		Name:              p.Name,
		NodeID:            p.NodeID,
		Control:           p.Control,
		Objectives:        p.Objectives,
		Infantry:          IntelBandSave(p.Intel.Infantry),
		Walkers:           IntelBandSave(p.Intel.Walkers),
		Support:           IntelBandSave(p.Intel.Support),
		Fortification:     p.Fortification,
		ReinforcementRate: p.ReinforcementRate,
		EnemyCohesion:     p.EnemyCohesion,
		IntelConfidence:   p.IntelConfidence,
		InitialIntelWidth: p.InitialIntelWidth,
	}

	if op := s.Operation; op != nil {
		save := &OperationSave{
			Target:                  op.Target,
			OpType:                  op.Type.String(),
			CurrentPhase:            op.CurrentPhase.String(),
			PhaseDurations:          make(map[string]int, len(op.PhaseDurations)),
			EstimatedTotalDays:      op.EstimatedTotalDays,
			DayInOperation:          op.DayInOperation,
			DayInPhase:              op.DayInPhase,
			AwaitingDecision:        op.AwaitingDecision,
			PendingPhaseRecord:      op.PendingPhaseRecord,
			Decisions:               make(map[string]PhaseDecisions, len(op.Decisions)),
			PhaseHistory:            op.PhaseHistory,
			CurrentPhaseDays:        op.CurrentPhaseDays,
			PhaseStartDay:           op.phaseStartDay,
			PhaseStartReadiness:     op.phaseStartReadiness,
			PhaseStartCohesion:      op.phaseStartCohesion,
			PhaseStartEnemyCohesion: op.phaseStartEnemyCohesion,
			SupplyPenalty:           op.supplyPenalty,
		}
		for phase, days := range op.PhaseDurations {
			save.PhaseDurations[phase.String()] = days
		}
		for phase, d := range op.Decisions {
			save.Decisions[phase.String()] = d
		}
		sg.Operation = save
	}
	return sg
}

// Restore rebuilds a campaign from its envelope on top of a freshly built
// scenario catalog and random source.
func Restore(sc *scenario.Scenario, src entropy.Source, sg SaveGame) *State {
	st := New(sc, src)
	st.Day = sg.Day
	st.Version = sg.Version
	st.ActionPoints = sg.ActionPoints
	st.TransitLog = sg.TransitLog
	st.FactoryCount = sg.FactoryCount
	st.BarracksCount = sg.BarracksCount
	st.TaskForce = sg.TaskForce
	st.LastAAR = sg.LastAAR
	st.Events = sg.Events

	st.Depots = nil
	for i := range sg.Depots {
		d := sg.Depots[i]
		st.Depots = append(st.Depots, &d)
	}
	st.Shipments = nil
	for i := range sg.Shipments {
		sh := sg.Shipments[i]
		st.Shipments = append(st.Shipments, &sh)
	}
	st.FactoryQueue = nil
	for i := range sg.FactoryQueue {
		j := sg.FactoryQueue[i]
		st.FactoryQueue = append(st.FactoryQueue, &j)
	}
	st.BarracksQueue = nil
	for i := range sg.BarracksQueue {
		j := sg.BarracksQueue[i]
		st.BarracksQueue = append(st.BarracksQueue, &j)
	}

	p := sg.Planet
	st.Planet = ContestedPlanet{
		Name:              p.Name,
		NodeID:            p.NodeID,
		Control:           p.Control,
		Objectives:        p.Objectives,
		Fortification:     p.Fortification,
		ReinforcementRate: p.ReinforcementRate,
		EnemyCohesion:     p.EnemyCohesion,
		IntelConfidence:   p.IntelConfidence,
		InitialIntelWidth: p.InitialIntelWidth,
		Intel: EnemyIntel{
			Infantry: IntelRange(p.Infantry),
			Walkers:  IntelRange(p.Walkers),
			Support:  IntelRange(p.Support),
		},
	}

	if save := sg.Operation; save != nil {
		opType, _ := OpTypeFromString(save.OpType)
		phase := phasesByName[save.CurrentPhase]
		op := &OperationState{
			Target:                  save.Target,
			Type:                    opType,
			TypeName:                save.OpType,
			CurrentPhase:            phase,
			CurrentPhaseName:        save.CurrentPhase,
			PhaseDurations:          make(map[Phase]int, len(save.PhaseDurations)),
			EstimatedTotalDays:      save.EstimatedTotalDays,
			DayInOperation:          save.DayInOperation,
			DayInPhase:              save.DayInPhase,
			AwaitingDecision:        save.AwaitingDecision,
			PendingPhaseRecord:      save.PendingPhaseRecord,
			Decisions:               make(map[Phase]PhaseDecisions, len(save.Decisions)),
			PhaseHistory:            save.PhaseHistory,
			CurrentPhaseDays:        save.CurrentPhaseDays,
			phaseStartDay:           save.PhaseStartDay,
			phaseStartReadiness:     save.PhaseStartReadiness,
			phaseStartCohesion:      save.PhaseStartCohesion,
			phaseStartEnemyCohesion: save.PhaseStartEnemyCohesion,
			supplyPenalty:           save.SupplyPenalty,
		}
		for name, days := range save.PhaseDurations {
			op.PhaseDurations[phasesByName[name]] = days
		}
		for name, d := range save.Decisions {
			op.Decisions[phasesByName[name]] = d
		}
		if len(op.CurrentPhaseDays) > 0 {
			op.LatestBattleDay = &op.CurrentPhaseDays[len(op.CurrentPhaseDays)-1]
		}
		st.Operation = op
	}
	return st
}
