// Package campaign implements the turn-based campaign simulation engine:
// the depot ledger, production scheduler, logistics network, operation state
// machine, battle resolver, AAR generator, and the day driver that ties them
// together. One tick = one campaign day.
package campaign

import "math"

// Resource identifies a supply commodity.
type Resource int

const (
	ResourceAmmo Resource = iota
	ResourceFuel
	ResourceMedSpares
)

// String returns the wire name of the resource.
func (r Resource) String() string {
	switch r {
	case ResourceAmmo:
		return "ammo"
	case ResourceFuel:
		return "fuel"
	case ResourceMedSpares:
		return "med_spares"
	default:
		return "unknown"
	}
}

// SupplyStock holds per-commodity quantities with strict typing (no maps).
type SupplyStock struct {
	Ammo      int `json:"ammo"`
	Fuel      int `json:"fuel"`
	MedSpares int `json:"med_spares"`
}

// Get returns the quantity for a resource.
func (s *SupplyStock) Get(r Resource) int {
	switch r {
	case ResourceAmmo:
		return s.Ammo
	case ResourceFuel:
		return s.Fuel
	case ResourceMedSpares:
		return s.MedSpares
	}
	return 0
}

// Add adds quantity for a resource.
func (s *SupplyStock) Add(r Resource, n int) {
	switch r {
	case ResourceAmmo:
		s.Ammo += n
	case ResourceFuel:
		s.Fuel += n
	case ResourceMedSpares:
		s.MedSpares += n
	}
}

// Remove removes quantity for a resource (floors at 0).
func (s *SupplyStock) Remove(r Resource, n int) {
	have := s.Get(r)
	if n > have {
		n = have
	}
	s.Add(r, -n)
}

// CanCover reports whether every commodity in want is available.
func (s *SupplyStock) CanCover(want SupplyStock) bool {
	return s.Ammo >= want.Ammo && s.Fuel >= want.Fuel && s.MedSpares >= want.MedSpares
}

// Sub debits other from s. Callers must check CanCover first; ledger debits
// never go negative.
func (s *SupplyStock) Sub(other SupplyStock) {
	s.Remove(ResourceAmmo, other.Ammo)
	s.Remove(ResourceFuel, other.Fuel)
	s.Remove(ResourceMedSpares, other.MedSpares)
}

// AddAll credits other into s.
func (s *SupplyStock) AddAll(other SupplyStock) {
	s.Ammo += other.Ammo
	s.Fuel += other.Fuel
	s.MedSpares += other.MedSpares
}

// Total returns the summed quantity across commodities.
func (s *SupplyStock) Total() int {
	return s.Ammo + s.Fuel + s.MedSpares
}

// IsZero reports whether the stock is entirely empty.
func (s *SupplyStock) IsZero() bool {
	return s.Total() == 0
}

// Scaled returns the stock reduced by lossPct (0.25 = lose a quarter),
// rounding surviving cargo down.
func (s SupplyStock) Scaled(lossPct float64) SupplyStock {
	keep := 1.0 - lossPct
	if keep < 0 {
		keep = 0
	}
	return SupplyStock{
		Ammo:      int(float64(s.Ammo) * keep),
		Fuel:      int(float64(s.Fuel) * keep),
		MedSpares: int(float64(s.MedSpares) * keep),
	}
}

// UnitClass identifies a combat unit pool.
type UnitClass int

const (
	UnitInfantry UnitClass = iota
	UnitWalkers
	UnitSupport
)

// String returns the wire name of the unit class.
func (u UnitClass) String() string {
	switch u {
	case UnitInfantry:
		return "infantry"
	case UnitWalkers:
		return "walkers"
	case UnitSupport:
		return "support"
	default:
		return "unknown"
	}
}

// UnitClasses lists every pool in engagement-priority-neutral order.
var UnitClasses = [3]UnitClass{UnitInfantry, UnitWalkers, UnitSupport}

// UnitStock holds per-class manpower with strict typing.
type UnitStock struct {
	Infantry int `json:"infantry"`
	Walkers  int `json:"walkers"`
	Support  int `json:"support"`
}

// Get returns manpower for a unit class.
func (u *UnitStock) Get(c UnitClass) int {
	switch c {
	case UnitInfantry:
		return u.Infantry
	case UnitWalkers:
		return u.Walkers
	case UnitSupport:
		return u.Support
	}
	return 0
}

// Add adds manpower for a unit class.
func (u *UnitStock) Add(c UnitClass, n int) {
	switch c {
	case UnitInfantry:
		u.Infantry += n
	case UnitWalkers:
		u.Walkers += n
	case UnitSupport:
		u.Support += n
	}
}

// Remove removes manpower for a unit class (floors at 0).
func (u *UnitStock) Remove(c UnitClass, n int) {
	have := u.Get(c)
	if n > have {
		n = have
	}
	u.Add(c, -n)
}

// CanCover reports whether every class in want is available.
func (u *UnitStock) CanCover(want UnitStock) bool {
	return u.Infantry >= want.Infantry && u.Walkers >= want.Walkers && u.Support >= want.Support
}

// Sub debits other from u (callers check CanCover first).
func (u *UnitStock) Sub(other UnitStock) {
	u.Remove(UnitInfantry, other.Infantry)
	u.Remove(UnitWalkers, other.Walkers)
	u.Remove(UnitSupport, other.Support)
}

// AddAll credits other into u.
func (u *UnitStock) AddAll(other UnitStock) {
	u.Infantry += other.Infantry
	u.Walkers += other.Walkers
	u.Support += other.Support
}

// Total returns total manpower across classes.
func (u *UnitStock) Total() int {
	return u.Infantry + u.Walkers + u.Support
}

// IsZero reports whether the stock has no units.
func (u *UnitStock) IsZero() bool {
	return u.Total() == 0
}

// Scaled returns the stock reduced by lossPct, rounding survivors down.
func (u UnitStock) Scaled(lossPct float64) UnitStock {
	keep := 1.0 - lossPct
	if keep < 0 {
		keep = 0
	}
	return UnitStock{
		Infantry: int(float64(u.Infantry) * keep),
		Walkers:  int(float64(u.Walkers) * keep),
		Support:  int(float64(u.Support) * keep),
	}
}

// Depot is a named supply and unit inventory at a system node.
// Stocks are mutated only by the production scheduler (credit), the logistics
// network (debit on dispatch, credit on arrival), and the battle resolver
// (draw during operations via the task force).
type Depot struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Supplies SupplyStock `json:"supplies"`
	Units    UnitStock   `json:"units"`
}

// RouteStatus is the derived operational state of a route.
type RouteStatus int

const (
	RouteActive RouteStatus = iota
	RouteDisrupted
	RouteBlocked
)

// String returns the wire name of the route status.
func (rs RouteStatus) String() string {
	switch rs {
	case RouteActive:
		return "active"
	case RouteDisrupted:
		return "disrupted"
	case RouteBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Route is a static lane between two depots. Status is always derived from
// the current interdiction risk, never stored.
type Route struct {
	Origin           string  `json:"origin"`
	Destination      string  `json:"destination"`
	TravelDays       int     `json:"travel_days"`
	InterdictionRisk float64 `json:"interdiction_risk"`
}

// Status derives the route's operational state from its interdiction risk:
// blocked above 0.6, disrupted above 0.3, active otherwise.
func (r Route) Status() RouteStatus {
	switch {
	case r.InterdictionRisk > 0.6:
		return RouteBlocked
	case r.InterdictionRisk > 0.3:
		return RouteDisrupted
	default:
		return RouteActive
	}
}

// Shipment is materiel in transit. Created atomically with a debit from the
// origin depot; destroyed with a credit to the destination on arrival.
type Shipment struct {
	ID                  string      `json:"id"`
	Origin              string      `json:"origin"`
	Destination         string      `json:"destination"`
	Supplies            SupplyStock `json:"supplies"`
	Units               UnitStock   `json:"units"`
	DaysRemaining       int         `json:"days_remaining"`
	TotalDays           int         `json:"total_days"`
	Interdicted         bool        `json:"interdicted"`
	InterdictionLossPct float64     `json:"interdiction_loss_pct"`
}

// ProductionGood is a closed enum of factory outputs.
type ProductionGood int

const (
	GoodAmmo ProductionGood = iota
	GoodFuel
	GoodMedSpares
)

// String returns the wire name of the production good.
func (g ProductionGood) String() string {
	switch g {
	case GoodAmmo:
		return "ammo"
	case GoodFuel:
		return "fuel"
	case GoodMedSpares:
		return "med_spares"
	default:
		return "unknown"
	}
}

// Resource maps the good to the supply commodity it credits.
func (g ProductionGood) Resource() Resource {
	switch g {
	case GoodFuel:
		return ResourceFuel
	case GoodMedSpares:
		return ResourceMedSpares
	default:
		return ResourceAmmo
	}
}

// ProductionGoodFromString maps a wire name to a production good.
func ProductionGoodFromString(name string) (ProductionGood, bool) {
	switch name {
	case "ammo":
		return GoodAmmo, true
	case "fuel":
		return GoodFuel, true
	case "med_spares":
		return GoodMedSpares, true
	}
	return 0, false
}

// BarracksGood is a closed enum of barracks outputs.
type BarracksGood int

const (
	RecruitInfantry BarracksGood = iota
	RecruitWalkers
	RecruitSupport
)

// String returns the wire name of the barracks good.
func (g BarracksGood) String() string {
	switch g {
	case RecruitInfantry:
		return "infantry"
	case RecruitWalkers:
		return "walkers"
	case RecruitSupport:
		return "support"
	default:
		return "unknown"
	}
}

// UnitClass maps the good to the unit pool it credits.
func (g BarracksGood) UnitClass() UnitClass {
	switch g {
	case RecruitWalkers:
		return UnitWalkers
	case RecruitSupport:
		return UnitSupport
	default:
		return UnitInfantry
	}
}

// BarracksGoodFromString maps a wire name to a barracks good.
func BarracksGoodFromString(name string) (BarracksGood, bool) {
	switch name {
	case "infantry":
		return RecruitInfantry, true
	case "walkers":
		return RecruitWalkers, true
	case "support":
		return RecruitSupport, true
	}
	return 0, false
}

// ProductionJob is a queued factory order. Remaining decreases by the daily
// capacity allocation; the job is removed at zero, crediting the depot.
type ProductionJob struct {
	ID        string         `json:"id"`
	Good      ProductionGood `json:"good"`
	Quantity  int            `json:"quantity"`
	Remaining int            `json:"remaining"`
	DepotID   string         `json:"depot_id"`
	// ETADays is recomputed each tick from the current allocation.
	// 0 means no capacity reaches this job yet (indeterminate).
	ETADays int `json:"eta_days"`
}

// BarracksJob is a queued recruitment order.
type BarracksJob struct {
	ID        string       `json:"id"`
	Good      BarracksGood `json:"good"`
	Quantity  int          `json:"quantity"`
	Remaining int          `json:"remaining"`
	DepotID   string       `json:"depot_id"`
	ETADays   int          `json:"eta_days"`
}

// TaskForce is the expeditionary force committed to operations. Mutated only
// by the battle resolver and by logistics resupply.
type TaskForce struct {
	Units     UnitStock   `json:"units"`
	Readiness float64     `json:"readiness"`
	Cohesion  float64     `json:"cohesion"`
	Location  string      `json:"location"`
	Supplies  SupplyStock `json:"supplies"`
}

// ObjectiveStatus tracks who holds an objective.
type ObjectiveStatus int

const (
	ObjectiveEnemy ObjectiveStatus = iota
	ObjectiveContested
	ObjectiveSecured
)

// String returns the wire name of the objective status.
func (os ObjectiveStatus) String() string {
	switch os {
	case ObjectiveEnemy:
		return "enemy"
	case ObjectiveContested:
		return "contested"
	case ObjectiveSecured:
		return "secured"
	default:
		return "unknown"
	}
}

// Objective is a named goal on the contested planet. SecureAt is the control
// level at which it flips to secured; contested from SecureAt-0.15.
type Objective struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	SecureAt float64         `json:"secure_at"`
	Status   ObjectiveStatus `json:"status"`
}

// IntelRange is an uncertainty band around an enemy pool. Actual is hidden
// from snapshots consumed by clients; Min/Max narrow as reconnaissance
// accumulates.
type IntelRange struct {
	Min    int `json:"min"`
	Max    int `json:"max"`
	Actual int `json:"-"`
}

// Width returns the size of the uncertainty band.
func (ir IntelRange) Width() int {
	return ir.Max - ir.Min
}

// Midpoint returns the band's center estimate.
func (ir IntelRange) Midpoint() int {
	return (ir.Min + ir.Max) / 2
}

// EnemyIntel holds per-class strength estimates for the defending force.
type EnemyIntel struct {
	Infantry IntelRange `json:"infantry"`
	Walkers  IntelRange `json:"walkers"`
	Support  IntelRange `json:"support"`
}

// Range returns the band for a unit class.
func (ei *EnemyIntel) Range(c UnitClass) *IntelRange {
	switch c {
	case UnitWalkers:
		return &ei.Walkers
	case UnitSupport:
		return &ei.Support
	default:
		return &ei.Infantry
	}
}

// ActualStock returns the hidden true enemy composition.
func (ei *EnemyIntel) ActualStock() UnitStock {
	return UnitStock{
		Infantry: ei.Infantry.Actual,
		Walkers:  ei.Walkers.Actual,
		Support:  ei.Support.Actual,
	}
}

// EstimatedTotal returns the midpoint estimate of total enemy manpower.
func (ei *EnemyIntel) EstimatedTotal() int {
	return ei.Infantry.Midpoint() + ei.Walkers.Midpoint() + ei.Support.Midpoint()
}

// ContestedPlanet is the target of ground operations.
type ContestedPlanet struct {
	Name              string      `json:"name"`
	NodeID            string      `json:"node_id"`
	Control           float64     `json:"control"`
	Objectives        []Objective `json:"objectives"`
	Intel             EnemyIntel  `json:"intel"`
	Fortification     float64     `json:"fortification"`
	ReinforcementRate float64     `json:"reinforcement_rate"`
	EnemyCohesion     float64     `json:"enemy_cohesion"`
	IntelConfidence   float64     `json:"intel_confidence"`
	// InitialIntelWidth anchors confidence: current band width over this.
	InitialIntelWidth int `json:"-"`
}

// UpdateObjectives recomputes objective statuses from current control.
func (p *ContestedPlanet) UpdateObjectives() {
	for i := range p.Objectives {
		o := &p.Objectives[i]
		switch {
		case p.Control >= o.SecureAt:
			o.Status = ObjectiveSecured
		case p.Control >= o.SecureAt-0.15:
			o.Status = ObjectiveContested
		default:
			o.Status = ObjectiveEnemy
		}
	}
}

// AllObjectivesSecured reports whether every objective is held.
func (p *ContestedPlanet) AllObjectivesSecured() bool {
	for _, o := range p.Objectives {
		if o.Status != ObjectiveSecured {
			return false
		}
	}
	return len(p.Objectives) > 0
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
