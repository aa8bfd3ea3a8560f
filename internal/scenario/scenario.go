// Package scenario holds the static campaign catalog: system nodes, depots,
// routes, target profiles, and every tunable coefficient the engine reads.
// The phase-duration formula is deliberately data here, not code — the exact
// coefficients are expected to be retuned per scenario.
package scenario

// SystemNode is one star system on the campaign map. Terrain, infrastructure,
// and combat width are generated from layered simplex noise (see generate.go).
type SystemNode struct {
	ID                    string  `json:"id"`
	Label                 string  `json:"label"`
	TerrainID             string  `json:"terrain_id"`
	Infrastructure        int     `json:"infrastructure"`
	CombatWidthMultiplier float64 `json:"combat_width_multiplier"`
	Contested             bool    `json:"contested"`
}

// DepotSeed is the starting inventory of a depot.
type DepotSeed struct {
	ID       string
	Label    string
	NodeID   string
	Ammo     int
	Fuel     int
	Med      int
	Infantry int
	Walkers  int
	Support  int
}

// RouteSeed is a static lane between depots.
type RouteSeed struct {
	Origin           string
	Destination      string
	TravelDays       int
	InterdictionRisk float64
}

// GarrisonBand is an intel uncertainty band around one enemy pool.
type GarrisonBand struct {
	Min    int
	Max    int
	Actual int
}

// ObjectiveSpec names an objective and the control level that secures it.
type ObjectiveSpec struct {
	ID       string
	Label    string
	SecureAt float64
}

// TargetProfile describes a planet operations can be launched against.
type TargetProfile struct {
	NodeID            string
	Name              string
	Fortification     float64 // 0–1, extends phase durations and resists progress
	ReinforcementRate float64 // garrison manpower regained per day
	EnemyCohesion     float64
	Infantry          GarrisonBand
	Walkers           GarrisonBand
	Support           GarrisonBand
	Objectives        []ObjectiveSpec
}

// DurationParams turn op type, fortification, and the enemy-strength estimate
// into per-phase day counts. Raids run short, sieges long; fortification and
// garrison size stretch everything.
type DurationParams struct {
	// Base days for the three combat phases, keyed by op type name.
	Base map[string][3]int
	// Extra days added to every phase per point of fortification:
	// extra = round(fortification * FortificationFactor).
	FortificationFactor float64
	// One extra day on the middle phase per StrengthStep of estimated
	// enemy manpower (midpoint of intel bands).
	StrengthStep int
}

// FacilityParams bound the industrial base.
type FacilityParams struct {
	StartFactories int
	StartBarracks  int
	MaxFactories   int
	MaxBarracks    int
	FactorySlots   int // units of output per factory per day
	BarracksSlots  int // recruits per barracks per day
}

// BattleParams are the tunable coefficients of the battle resolver.
type BattleParams struct {
	LethalityMin         float64 // lower bound on per-round casualty fraction
	LethalityMax         float64 // upper bound on per-round casualty fraction
	MinCasualties        int     // per-round floor when any force is engaged
	ManpowerPerBattalion int     // converts force-limit battalions to manpower
	AmmoPerHundred       float64 // ammo per 100 engaged manpower per day
	FuelPerHundred       float64
	MedPerHundred        float64
	ShortageThreshold    float64 // supply ratio below this raises a shortage
	ShortagePenalty      float64 // next-day power multiplier under shortage
	BaseProgressRate     float64 // control gained per day at full advantage
	InterdictLossMin     float64 // cargo loss band when a shipment is raided
	InterdictLossMax     float64
}

// TaskForceSeed is the expeditionary force at campaign start.
type TaskForceSeed struct {
	Infantry  int
	Walkers   int
	Support   int
	Readiness float64
	Cohesion  float64
	Location  string
	Ammo      int
	Fuel      int
	Med       int
}

// Scenario is the full static catalog consumed by the campaign engine.
type Scenario struct {
	Name               string
	Seed               int64
	Nodes              []SystemNode
	Depots             []DepotSeed
	Routes             []RouteSeed
	Targets            map[string]TargetProfile
	Durations          DurationParams
	Facilities         FacilityParams
	Battle             BattleParams
	TaskForce          TaskForceSeed
	ActionPointsPerDay int
}

// Node returns the node with the given ID, or nil.
func (s *Scenario) Node(id string) *SystemNode {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Route returns the lane connecting origin and destination in that direction,
// or nil when none exists.
func (s *Scenario) Route(origin, destination string) *RouteSeed {
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.Origin == origin && r.Destination == destination {
			return r
		}
	}
	return nil
}

// Default builds the standard two-faction scenario. Node terrain is
// regenerated deterministically from the seed; the economic and military
// seeds below are hand-tuned.
func Default(seed int64) *Scenario {
	s := &Scenario{
		Name: "Veskar Reach",
		Seed: seed,
		Depots: []DepotSeed{
			{ID: "core", Label: "Core Worlds Depot", NodeID: "veyra", Ammo: 2400, Fuel: 1800, Med: 900, Infantry: 1200, Walkers: 200, Support: 400},
			{ID: "staging", Label: "Forward Staging Point", NodeID: "halcyon", Ammo: 600, Fuel: 450, Med: 220, Infantry: 300, Walkers: 40, Support: 120},
			{ID: "front", Label: "Frontline Depot", NodeID: "kerrav", Ammo: 250, Fuel: 180, Med: 90, Infantry: 0, Walkers: 0, Support: 0},
		},
		Routes: []RouteSeed{
			{Origin: "core", Destination: "staging", TravelDays: 2, InterdictionRisk: 0.05},
			{Origin: "staging", Destination: "core", TravelDays: 2, InterdictionRisk: 0.05},
			{Origin: "staging", Destination: "front", TravelDays: 3, InterdictionRisk: 0.25},
			{Origin: "front", Destination: "staging", TravelDays: 3, InterdictionRisk: 0.25},
			{Origin: "core", Destination: "front", TravelDays: 6, InterdictionRisk: 0.45},
		},
		Targets: map[string]TargetProfile{
			"kerrav": {
				NodeID:            "kerrav",
				Name:              "Kerrav Prime",
				Fortification:     0.55,
				ReinforcementRate: 18,
				EnemyCohesion:     0.85,
				Infantry:          GarrisonBand{Min: 1400, Max: 2600, Actual: 1900},
				Walkers:           GarrisonBand{Min: 100, Max: 420, Actual: 260},
				Support:           GarrisonBand{Min: 300, Max: 900, Actual: 540},
				Objectives: []ObjectiveSpec{
					{ID: "spaceport", Label: "Orbital Spaceport", SecureAt: 0.45},
					{ID: "foundries", Label: "Southern Foundries", SecureAt: 0.60},
					{ID: "bastion", Label: "Governor's Bastion", SecureAt: 0.80},
				},
			},
		},
		Durations: DurationParams{
			Base: map[string][3]int{
				"raid":     {2, 3, 2},
				"campaign": {4, 6, 4},
				"siege":    {6, 9, 6},
			},
			FortificationFactor: 2.0,
			StrengthStep:        2500,
		},
		Facilities: FacilityParams{
			StartFactories: 2,
			StartBarracks:  1,
			MaxFactories:   5,
			MaxBarracks:    4,
			FactorySlots:   10,
			BarracksSlots:  25,
		},
		Battle: BattleParams{
			LethalityMin:         0.01,
			LethalityMax:         0.08,
			MinCasualties:        8,
			ManpowerPerBattalion: 400,
			AmmoPerHundred:       2.2,
			FuelPerHundred:       1.4,
			MedPerHundred:        0.6,
			ShortageThreshold:    0.9,
			ShortagePenalty:      0.8,
			BaseProgressRate:     0.035,
			InterdictLossMin:     0.10,
			InterdictLossMax:     0.45,
		},
		TaskForce: TaskForceSeed{
			Infantry:  2400,
			Walkers:   320,
			Support:   800,
			Readiness: 0.9,
			Cohesion:  0.95,
			Location:  "front",
			Ammo:      900,
			Fuel:      650,
			Med:       320,
		},
		ActionPointsPerDay: 3,
	}
	s.Nodes = generateNodes(seed)
	return s
}
