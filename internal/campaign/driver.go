package campaign

import (
	"fmt"
	"log/slog"
)

// AdvanceDay runs one campaign tick in the fixed causal order: production,
// then logistics, then operation resolution. Materiel is produced before it
// can ship; shipments arrive before the day's battle consumes supply.
// Decision gates (awaiting decision, pending phase record) are caller-driven
// barriers: a stalled decision halts the operation while production and
// logistics continue independently.
//
// A scenario-configuration error aborts the tick and propagates; everything
// else always succeeds.
func (s *State) AdvanceDay() error {
	s.Day++
	s.ActionPoints = s.Scenario.ActionPointsPerDay

	s.tickProduction()
	s.tickLogistics()
	s.tickReinforcement()

	battleFought := false
	if op := s.Operation; op != nil && !op.AwaitingDecision && op.PendingPhaseRecord == nil {
		if err := s.tickOperation(); err != nil {
			return fmt.Errorf("day %d operation tick: %w", s.Day, err)
		}
		battleFought = true
	}
	if !battleFought {
		s.recuperate()
	}

	s.Version++

	slog.Info("daily report",
		"day", s.Day,
		"action_points", s.ActionPoints,
		"shipments_in_transit", len(s.Shipments),
		"factory_jobs", len(s.FactoryQueue),
		"barracks_jobs", len(s.BarracksQueue),
		"operation_active", s.Operation != nil,
		"battle_fought", battleFought,
		"planet_control", fmt.Sprintf("%.3f", s.Planet.Control),
	)
	return nil
}

// tickReinforcement feeds the garrison its daily reinforcement draft. The
// band's ceiling rises with it: the enemy we have not counted grows too.
func (s *State) tickReinforcement() {
	rate := int(s.Planet.ReinforcementRate)
	if rate <= 0 || s.Planet.Control >= 1 {
		return
	}
	ir := &s.Planet.Intel.Infantry
	ir.Actual += rate
	ir.Max += rate
}

// recuperate restores readiness and cohesion on days without contact.
func (s *State) recuperate() {
	s.TaskForce.Cohesion = clamp01(s.TaskForce.Cohesion + 0.02)
	s.TaskForce.Readiness = clamp01(s.TaskForce.Readiness + 0.015)
	s.Planet.EnemyCohesion = clamp01(s.Planet.EnemyCohesion + 0.01)
}
