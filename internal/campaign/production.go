package campaign

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// QueueProductionJob appends a factory order to the FIFO queue.
func (s *State) QueueProductionJob(goodName string, quantity int) error {
	good, ok := ProductionGoodFromString(goodName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJobType, goodName)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	job := &ProductionJob{
		ID:        uuid.NewString(),
		Good:      good,
		Quantity:  quantity,
		Remaining: quantity,
		DepotID:   s.homeDepotID(),
	}
	s.FactoryQueue = append(s.FactoryQueue, job)
	s.recomputeFactoryETAs()

	slog.Info("production job queued", "good", good, "quantity", quantity, "depot", job.DepotID)
	return nil
}

// QueueBarracksJob appends a recruitment order to the FIFO queue.
func (s *State) QueueBarracksJob(goodName string, quantity int) error {
	good, ok := BarracksGoodFromString(goodName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJobType, goodName)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	job := &BarracksJob{
		ID:        uuid.NewString(),
		Good:      good,
		Quantity:  quantity,
		Remaining: quantity,
		DepotID:   s.homeDepotID(),
	}
	s.BarracksQueue = append(s.BarracksQueue, job)
	s.recomputeBarracksETAs()

	slog.Info("barracks job queued", "good", good, "quantity", quantity, "depot", job.DepotID)
	return nil
}

// UpgradeFactory adds one factory, bounded by the scenario cap.
func (s *State) UpgradeFactory() error {
	if s.FactoryCount >= s.Scenario.Facilities.MaxFactories {
		return fmt.Errorf("%w: %d factories", ErrMaxCapacityReached, s.FactoryCount)
	}
	s.FactoryCount++
	s.recomputeFactoryETAs()
	slog.Info("factory upgraded", "count", s.FactoryCount, "daily_capacity", s.factoryCapacity())
	return nil
}

// UpgradeBarracks adds one barracks, bounded by the scenario cap.
func (s *State) UpgradeBarracks() error {
	if s.BarracksCount >= s.Scenario.Facilities.MaxBarracks {
		return fmt.Errorf("%w: %d barracks", ErrMaxCapacityReached, s.BarracksCount)
	}
	s.BarracksCount++
	s.recomputeBarracksETAs()
	slog.Info("barracks upgraded", "count", s.BarracksCount, "daily_capacity", s.barracksCapacity())
	return nil
}

func (s *State) factoryCapacity() int {
	return s.FactoryCount * s.Scenario.Facilities.FactorySlots
}

func (s *State) barracksCapacity() int {
	return s.BarracksCount * s.Scenario.Facilities.BarracksSlots
}

// homeDepotID is where completed goods and recruits are delivered: the
// scenario's first depot hosts the industrial base.
func (s *State) homeDepotID() string {
	return s.Scenario.Depots[0].ID
}

// tickProduction allocates the day's factory and barracks capacity to queued
// jobs in FIFO order; earlier jobs drain fully before later ones receive any
// slots. Completed jobs credit their destination depot and leave the queue.
func (s *State) tickProduction() {
	capacity := s.factoryCapacity()
	remaining := s.FactoryQueue[:0]
	for _, job := range s.FactoryQueue {
		alloc := min(capacity, job.Remaining)
		job.Remaining -= alloc
		capacity -= alloc

		if job.Remaining == 0 {
			if depot := s.Depot(job.DepotID); depot != nil {
				depot.Supplies.Add(job.Good.Resource(), job.Quantity)
			}
			s.EmitEvent(Event{
				Day:         s.Day,
				Description: fmt.Sprintf("Factories complete %d %s, delivered to %s", job.Quantity, job.Good, job.DepotID),
				Category:    "production",
			})
			continue
		}
		remaining = append(remaining, job)
	}
	s.FactoryQueue = remaining
	s.recomputeFactoryETAs()

	capacity = s.barracksCapacity()
	remainingB := s.BarracksQueue[:0]
	for _, job := range s.BarracksQueue {
		alloc := min(capacity, job.Remaining)
		job.Remaining -= alloc
		capacity -= alloc

		if job.Remaining == 0 {
			if depot := s.Depot(job.DepotID); depot != nil {
				depot.Units.Add(job.Good.UnitClass(), job.Quantity)
			}
			s.EmitEvent(Event{
				Day:         s.Day,
				Description: fmt.Sprintf("Barracks muster %d %s, delivered to %s", job.Quantity, job.Good, job.DepotID),
				Category:    "production",
			})
			continue
		}
		remainingB = append(remainingB, job)
	}
	s.BarracksQueue = remainingB
	s.recomputeBarracksETAs()
}

// recomputeFactoryETAs sets each job's ETA from the current allocation. FIFO
// means job i finishes once everything ahead of it has drained too, so its
// ETA is the cumulative remaining work through i over the daily capacity —
// leftover capacity flowing past an almost-done head counts for the job
// behind it.
func (s *State) recomputeFactoryETAs() {
	capacity := s.factoryCapacity()
	ahead := 0
	for _, job := range s.FactoryQueue {
		ahead += job.Remaining
		if capacity > 0 {
			job.ETADays = (ahead + capacity - 1) / capacity
		} else {
			job.ETADays = 0
		}
	}
}

func (s *State) recomputeBarracksETAs() {
	capacity := s.barracksCapacity()
	ahead := 0
	for _, job := range s.BarracksQueue {
		ahead += job.Remaining
		if capacity > 0 {
			job.ETADays = (ahead + capacity - 1) / capacity
		} else {
			job.ETADays = 0
		}
	}
}
