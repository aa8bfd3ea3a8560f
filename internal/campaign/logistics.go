package campaign

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DispatchShipment debits the origin depot and puts the cargo in transit.
// The debit and the shipment creation are one atomic step: any validation
// failure leaves both depots untouched.
func (s *State) DispatchShipment(origin, destination string, supplies SupplyStock, units UnitStock) error {
	if supplies.IsZero() && units.IsZero() {
		return ErrInvalidPayload
	}

	route := s.RouteBetween(origin, destination)
	if route == nil {
		return fmt.Errorf("%w: %s -> %s", ErrNoRoute, origin, destination)
	}

	depot := s.Depot(origin)
	if depot == nil {
		return fmt.Errorf("%w: %s -> %s", ErrNoRoute, origin, destination)
	}
	if !depot.Supplies.CanCover(supplies) || !depot.Units.CanCover(units) {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, origin)
	}

	depot.Supplies.Sub(supplies)
	depot.Units.Sub(units)

	shipment := &Shipment{
		ID:            uuid.NewString(),
		Origin:        origin,
		Destination:   destination,
		Supplies:      supplies,
		Units:         units,
		DaysRemaining: route.TravelDays,
		TotalDays:     route.TravelDays,
	}
	s.Shipments = append(s.Shipments, shipment)

	s.logTransit(TransitEntry{
		Day:        s.Day,
		ShipmentID: shipment.ID,
		Kind:       "dispatch",
		Detail:     fmt.Sprintf("%s -> %s: %d supplies, %d troops, %d days", origin, destination, supplies.Total(), units.Total(), route.TravelDays),
	})
	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("Convoy departs %s for %s", origin, destination),
		Category:    "logistics",
	})

	slog.Info("shipment dispatched",
		"id", shipment.ID,
		"origin", origin,
		"destination", destination,
		"travel_days", route.TravelDays,
		"route_status", route.Status().String(),
	)
	return nil
}

// tickLogistics advances every in-flight shipment one day. At the route's
// midpoint checkpoint each shipment faces one interdiction roll; at zero days
// remaining the surviving cargo credits the destination.
func (s *State) tickLogistics() {
	surviving := s.Shipments[:0]
	for _, sh := range s.Shipments {
		sh.DaysRemaining--

		// One interdiction roll per crossing, at the transit midpoint.
		if !sh.Interdicted && sh.DaysRemaining == sh.TotalDays/2 {
			s.rollInterdiction(sh)
		}

		if sh.DaysRemaining > 0 {
			surviving = append(surviving, sh)
			continue
		}
		s.unloadShipment(sh)
	}
	s.Shipments = surviving
}

// rollInterdiction applies the route's interdiction probability to a shipment
// and, on a hit, a stochastic cargo loss within the scenario band.
func (s *State) rollInterdiction(sh *Shipment) {
	route := s.RouteBetween(sh.Origin, sh.Destination)
	if route == nil || route.InterdictionRisk <= 0 {
		return
	}
	if s.rng.Float64() >= route.InterdictionRisk {
		return
	}

	b := s.Scenario.Battle
	lossPct := b.InterdictLossMin + s.rng.Float64()*(b.InterdictLossMax-b.InterdictLossMin)

	sh.Interdicted = true
	sh.InterdictionLossPct = lossPct
	sh.Supplies = sh.Supplies.Scaled(lossPct)
	sh.Units = sh.Units.Scaled(lossPct)

	s.logTransit(TransitEntry{
		Day:        s.Day,
		ShipmentID: sh.ID,
		Kind:       "interdiction",
		Detail:     fmt.Sprintf("raided en route to %s, %.0f%% of cargo lost", sh.Destination, lossPct*100),
	})
	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("Convoy to %s raided in transit (%.0f%% losses)", sh.Destination, lossPct*100),
		Category:    "logistics",
	})
	slog.Warn("shipment interdicted", "id", sh.ID, "destination", sh.Destination, "loss_pct", lossPct)
}

// unloadShipment credits arriving cargo. Supplies always land in the
// destination depot; units arriving where the task force is staged join it
// directly as reinforcements.
func (s *State) unloadShipment(sh *Shipment) {
	depot := s.Depot(sh.Destination)
	if depot != nil {
		depot.Supplies.AddAll(sh.Supplies)
	}

	if sh.Destination == s.TaskForce.Location && !sh.Units.IsZero() {
		s.TaskForce.Units.AddAll(sh.Units)
	} else if depot != nil {
		depot.Units.AddAll(sh.Units)
	}

	s.logTransit(TransitEntry{
		Day:        s.Day,
		ShipmentID: sh.ID,
		Kind:       "arrival",
		Detail:     fmt.Sprintf("arrived at %s: %d supplies, %d troops", sh.Destination, sh.Supplies.Total(), sh.Units.Total()),
	})
	s.EmitEvent(Event{
		Day:         s.Day,
		Description: fmt.Sprintf("Convoy arrives at %s", sh.Destination),
		Category:    "logistics",
	})
	slog.Info("shipment arrived", "id", sh.ID, "destination", sh.Destination, "interdicted", sh.Interdicted)
}
