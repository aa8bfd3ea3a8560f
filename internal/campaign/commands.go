package campaign

import "log/slog"

// CommandResult is the uniform reply to every player command. Failed commands
// carry a specific message and leave the state byte-for-byte unchanged.
type CommandResult struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
	// Fatal marks a scenario-configuration error: the tick aborted on a
	// data-integrity bug rather than a recoverable player mistake.
	Fatal bool `json:"-"`
}

// apply wraps a mutating player command with the action-point budget. The
// validation inside fn runs before any mutation, so a failure costs nothing
// and changes nothing.
func (s *State) apply(fn func() error) CommandResult {
	if s.ActionPoints <= 0 {
		return s.fail(ErrActionPointsExhausted)
	}
	if err := fn(); err != nil {
		return s.fail(err)
	}
	s.ActionPoints--
	s.Version++
	return s.ok()
}

func (s *State) ok() CommandResult {
	snap := s.Snap()
	return CommandResult{OK: true, State: &snap}
}

func (s *State) fail(err error) CommandResult {
	slog.Debug("command rejected", "reason", err)
	return CommandResult{OK: false, Message: err.Error(), Fatal: !Recoverable(err)}
}

// CmdQueueProduction queues a factory job. Costs one action point.
func (s *State) CmdQueueProduction(good string, quantity int) CommandResult {
	return s.apply(func() error { return s.QueueProductionJob(good, quantity) })
}

// CmdQueueBarracks queues a recruitment job. Costs one action point.
func (s *State) CmdQueueBarracks(good string, quantity int) CommandResult {
	return s.apply(func() error { return s.QueueBarracksJob(good, quantity) })
}

// CmdUpgradeFactory adds a factory. Costs one action point.
func (s *State) CmdUpgradeFactory() CommandResult {
	return s.apply(s.UpgradeFactory)
}

// CmdUpgradeBarracks adds a barracks. Costs one action point.
func (s *State) CmdUpgradeBarracks() CommandResult {
	return s.apply(s.UpgradeBarracks)
}

// CmdDispatchShipment dispatches a convoy. Costs one action point.
func (s *State) CmdDispatchShipment(origin, destination string, supplies SupplyStock, units UnitStock) CommandResult {
	return s.apply(func() error { return s.DispatchShipment(origin, destination, supplies, units) })
}

// CmdStartOperation opens a ground operation. Costs one action point.
func (s *State) CmdStartOperation(target, opType string) CommandResult {
	return s.apply(func() error { return s.StartOperation(target, opType) })
}

// CmdSubmitPhaseDecisions records the current phase's orders. Costs one
// action point.
func (s *State) CmdSubmitPhaseDecisions(fields map[string]string) CommandResult {
	return s.apply(func() error { return s.SubmitPhaseDecisions(fields) })
}

// CmdAcknowledgePhaseReport files the pending phase record. Reviewing
// reports is free of action points.
func (s *State) CmdAcknowledgePhaseReport() CommandResult {
	if err := s.AcknowledgePhaseReport(); err != nil {
		return s.fail(err)
	}
	s.Version++
	return s.ok()
}

// CmdAcknowledgeAAR consumes the last after-action report. Free.
func (s *State) CmdAcknowledgeAAR() CommandResult {
	if err := s.AcknowledgeAAR(); err != nil {
		return s.fail(err)
	}
	s.Version++
	return s.ok()
}

// CmdAdvanceDay runs one tick and resets the action-point budget. Advancing
// is never gated on spent points in the default scenario.
func (s *State) CmdAdvanceDay() CommandResult {
	if err := s.AdvanceDay(); err != nil {
		return s.fail(err)
	}
	return s.ok()
}
