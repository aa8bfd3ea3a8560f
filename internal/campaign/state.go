package campaign

import (
	"log/slog"

	"github.com/voryn/starfront/internal/entropy"
	"github.com/voryn/starfront/internal/scenario"
)

// Event is a notable occurrence in the campaign, kept as a ring buffer.
type Event struct {
	Day         int    `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"` // "production", "logistics", "operation", "command"
}

// TransitEntry is one line of the logistics transit log.
type TransitEntry struct {
	Day        int    `json:"day"`
	ShipmentID string `json:"shipment_id"`
	Kind       string `json:"kind"` // "dispatch", "interdiction", "arrival"
	Detail     string `json:"detail"`
}

// State is the single authoritative campaign snapshot. All components receive
// it for the duration of one tick; callers mutate it only through the command
// contract, which validates and commits atomically.
type State struct {
	Scenario *scenario.Scenario

	Day          int
	Version      uint64
	ActionPoints int

	Depots []*Depot
	Routes []Route

	Shipments  []*Shipment
	TransitLog []TransitEntry

	FactoryCount  int
	BarracksCount int
	FactoryQueue  []*ProductionJob
	BarracksQueue []*BarracksJob

	TaskForce TaskForce
	Planet    ContestedPlanet

	Operation *OperationState
	LastAAR   *AfterActionReport

	Events []Event

	rng entropy.Source
}

// New builds the initial campaign state from a scenario catalog.
func New(sc *scenario.Scenario, src entropy.Source) *State {
	st := &State{
		Scenario:      sc,
		ActionPoints:  sc.ActionPointsPerDay,
		FactoryCount:  sc.Facilities.StartFactories,
		BarracksCount: sc.Facilities.StartBarracks,
		rng:           src,
	}

	for _, d := range sc.Depots {
		st.Depots = append(st.Depots, &Depot{
			ID:       d.ID,
			Label:    d.Label,
			Supplies: SupplyStock{Ammo: d.Ammo, Fuel: d.Fuel, MedSpares: d.Med},
			Units:    UnitStock{Infantry: d.Infantry, Walkers: d.Walkers, Support: d.Support},
		})
	}

	for _, r := range sc.Routes {
		st.Routes = append(st.Routes, Route{
			Origin:           r.Origin,
			Destination:      r.Destination,
			TravelDays:       r.TravelDays,
			InterdictionRisk: r.InterdictionRisk,
		})
	}

	tf := sc.TaskForce
	st.TaskForce = TaskForce{
		Units:     UnitStock{Infantry: tf.Infantry, Walkers: tf.Walkers, Support: tf.Support},
		Readiness: tf.Readiness,
		Cohesion:  tf.Cohesion,
		Location:  tf.Location,
		Supplies:  SupplyStock{Ammo: tf.Ammo, Fuel: tf.Fuel, MedSpares: tf.Med},
	}

	// The contested planet is seeded from the first catalog target; further
	// targets become reachable as scenarios grow.
	for _, profile := range sc.Targets {
		st.Planet = planetFromProfile(profile)
		break
	}
	st.Planet.UpdateObjectives()

	slog.Info("campaign state initialized",
		"scenario", sc.Name,
		"depots", len(st.Depots),
		"routes", len(st.Routes),
		"task_force", st.TaskForce.Units.Total(),
	)
	return st
}

func planetFromProfile(p scenario.TargetProfile) ContestedPlanet {
	planet := ContestedPlanet{
		Name:              p.Name,
		NodeID:            p.NodeID,
		Control:           0,
		Fortification:     p.Fortification,
		ReinforcementRate: p.ReinforcementRate,
		EnemyCohesion:     p.EnemyCohesion,
		Intel: EnemyIntel{
			Infantry: IntelRange{Min: p.Infantry.Min, Max: p.Infantry.Max, Actual: p.Infantry.Actual},
			Walkers:  IntelRange{Min: p.Walkers.Min, Max: p.Walkers.Max, Actual: p.Walkers.Actual},
			Support:  IntelRange{Min: p.Support.Min, Max: p.Support.Max, Actual: p.Support.Actual},
		},
	}
	for _, o := range p.Objectives {
		planet.Objectives = append(planet.Objectives, Objective{
			ID:       o.ID,
			Label:    o.Label,
			SecureAt: o.SecureAt,
		})
	}
	planet.InitialIntelWidth = planet.Intel.Infantry.Width() +
		planet.Intel.Walkers.Width() + planet.Intel.Support.Width()
	return planet
}

// Depot returns the depot with the given ID, or nil.
func (s *State) Depot(id string) *Depot {
	for _, d := range s.Depots {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// RouteBetween returns the directed route between two depots, or nil.
func (s *State) RouteBetween(origin, destination string) *Route {
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.Origin == origin && r.Destination == destination {
			return r
		}
	}
	return nil
}

// FrontDepot returns the depot the task force draws from, or nil when the
// task force is staged at a node without one.
func (s *State) FrontDepot() *Depot {
	return s.Depot(s.TaskForce.Location)
}

// EmitEvent appends an event, trimming the buffer at 1000 entries.
func (s *State) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

// logTransit appends a transit-log entry, trimming at 500 entries.
func (s *State) logTransit(e TransitEntry) {
	s.TransitLog = append(s.TransitLog, e)
	if len(s.TransitLog) > 500 {
		s.TransitLog = s.TransitLog[len(s.TransitLog)-500:]
	}
}
