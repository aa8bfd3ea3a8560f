package campaign

import (
	"maps"

	"github.com/voryn/starfront/internal/scenario"
)

// RouteView is a route plus its derived status. Status is recomputed on
// every snapshot so risk changes surface immediately.
type RouteView struct {
	Route
	Status string `json:"status"`
}

// FacilityView summarizes one facility type and its queue.
type FacilityView struct {
	Count         int `json:"count"`
	Max           int `json:"max"`
	DailyCapacity int `json:"daily_capacity"`
}

// ProductionView is the factory side of the snapshot.
type ProductionView struct {
	FacilityView
	Queue []ProductionJob `json:"queue"`
}

// BarracksView is the recruitment side of the snapshot.
type BarracksView struct {
	FacilityView
	Queue []BarracksJob `json:"queue"`
}

// LogisticsView groups depots, routes, and everything in transit.
type LogisticsView struct {
	Depots     []Depot        `json:"depots"`
	Routes     []RouteView    `json:"routes"`
	Shipments  []Shipment     `json:"shipments"`
	TransitLog []TransitEntry `json:"transit_log"`
}

// Snapshot is the outward-facing read-only view of the campaign, assembled
// fresh per request. Consumers never see the mutable state itself.
type Snapshot struct {
	Day             int                   `json:"day"`
	Version         uint64                `json:"version"`
	ActionPoints    int                   `json:"action_points"`
	SystemNodes     []scenario.SystemNode `json:"system_nodes"`
	ContestedPlanet ContestedPlanet       `json:"contested_planet"`
	TaskForce       TaskForce             `json:"task_force"`
	Production      ProductionView        `json:"production"`
	Barracks        BarracksView          `json:"barracks"`
	Logistics       LogisticsView         `json:"logistics"`
	Operation       *OperationState       `json:"operation"`
	LastAAR         *AfterActionReport    `json:"last_aar"`
	Events          []Event               `json:"events"`
}

// Snap assembles the snapshot from current state. Everything mutable is
// copied — jobs, shipments, depots, the operation, the report — so the view
// stays stable while the engine moves on.
func (s *State) Snap() Snapshot {
	snap := Snapshot{
		Day:             s.Day,
		Version:         s.Version,
		ActionPoints:    s.ActionPoints,
		SystemNodes:     s.Scenario.Nodes,
		ContestedPlanet: s.Planet,
		TaskForce:       s.TaskForce,
		Operation:       s.Operation.clone(),
		LastAAR:         s.LastAAR.clone(),
	}
	snap.ContestedPlanet.Objectives = append([]Objective(nil), s.Planet.Objectives...)

	snap.Production = ProductionView{
		FacilityView: FacilityView{
			Count:         s.FactoryCount,
			Max:           s.Scenario.Facilities.MaxFactories,
			DailyCapacity: s.factoryCapacity(),
		},
	}
	for _, job := range s.FactoryQueue {
		snap.Production.Queue = append(snap.Production.Queue, *job)
	}

	snap.Barracks = BarracksView{
		FacilityView: FacilityView{
			Count:         s.BarracksCount,
			Max:           s.Scenario.Facilities.MaxBarracks,
			DailyCapacity: s.barracksCapacity(),
		},
	}
	for _, job := range s.BarracksQueue {
		snap.Barracks.Queue = append(snap.Barracks.Queue, *job)
	}

	for _, d := range s.Depots {
		snap.Logistics.Depots = append(snap.Logistics.Depots, *d)
	}
	for _, r := range s.Routes {
		snap.Logistics.Routes = append(snap.Logistics.Routes, RouteView{
			Route:  r,
			Status: r.Status().String(),
		})
	}
	for _, sh := range s.Shipments {
		snap.Logistics.Shipments = append(snap.Logistics.Shipments, *sh)
	}
	snap.Logistics.TransitLog = append(snap.Logistics.TransitLog, s.TransitLog...)

	// Recent events only; the full buffer stays internal.
	start := 0
	if len(s.Events) > 50 {
		start = len(s.Events) - 50
	}
	snap.Events = append(snap.Events, s.Events[start:]...)

	return snap
}

// clone deep-copies the operation so a snapshot holder never observes a
// later tick. Nil-safe: no operation clones to no operation.
func (op *OperationState) clone() *OperationState {
	if op == nil {
		return nil
	}
	out := *op
	out.PhaseDurations = maps.Clone(op.PhaseDurations)
	out.Decisions = make(map[Phase]PhaseDecisions, len(op.Decisions))
	for phase, d := range op.Decisions {
		out.Decisions[phase] = maps.Clone(d)
	}
	out.PhaseHistory = clonePhaseRecords(op.PhaseHistory)
	out.CurrentPhaseDays = cloneTicks(op.CurrentPhaseDays)
	if op.PendingPhaseRecord != nil {
		rec := op.PendingPhaseRecord.clone()
		out.PendingPhaseRecord = &rec
	}
	if len(out.CurrentPhaseDays) > 0 {
		out.LatestBattleDay = &out.CurrentPhaseDays[len(out.CurrentPhaseDays)-1]
	} else if op.LatestBattleDay != nil {
		tick := *op.LatestBattleDay
		tick.Tags = append([]string(nil), tick.Tags...)
		out.LatestBattleDay = &tick
	}
	return &out
}

func (r PhaseRecord) clone() PhaseRecord {
	out := r
	out.Decisions = maps.Clone(r.Decisions)
	out.Days = cloneTicks(r.Days)
	out.Events = append([]BattleEvent(nil), r.Events...)
	return out
}

func clonePhaseRecords(records []PhaseRecord) []PhaseRecord {
	if records == nil {
		return nil
	}
	out := make([]PhaseRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.clone())
	}
	return out
}

func cloneTicks(ticks []BattleDayTick) []BattleDayTick {
	if ticks == nil {
		return nil
	}
	out := make([]BattleDayTick, 0, len(ticks))
	for _, t := range ticks {
		t.Tags = append([]string(nil), t.Tags...)
		out = append(out, t)
	}
	return out
}

// clone deep-copies the report. Nil-safe.
func (r *AfterActionReport) clone() *AfterActionReport {
	if r == nil {
		return nil
	}
	out := *r
	out.TopFactors = append([]Factor(nil), r.TopFactors...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	out.Phases = clonePhaseRecords(r.Phases)
	out.Events = append([]BattleEvent(nil), r.Events...)
	return &out
}
