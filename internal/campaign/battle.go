package campaign

import (
	"fmt"
	"math"
	"sort"
)

// BattleSupplySnapshot records one day's supply accounting for the AAR.
type BattleSupplySnapshot struct {
	Before    SupplyStock `json:"before"`
	Spent     SupplyStock `json:"spent"`
	AmmoRatio float64     `json:"ammo_ratio"`
	FuelRatio float64     `json:"fuel_ratio"`
	MedRatio  float64     `json:"med_ratio"`
	ShortAmmo bool        `json:"short_ammo"`
	ShortFuel bool        `json:"short_fuel"`
	ShortMed  bool        `json:"short_med"`
}

// BattleDayTick is the immutable record of one resolved battle day.
type BattleDayTick struct {
	DayIndex              int                  `json:"day_index"`
	GlobalDay             int                  `json:"global_day"`
	Phase                 Phase                `json:"-"`
	PhaseName             string               `json:"phase"`
	TerrainID             string               `json:"terrain_id"`
	Infrastructure        int                  `json:"infrastructure"`
	CombatWidthMultiplier float64              `json:"combat_width_multiplier"`
	ForceLimitBattalions  int                  `json:"force_limit_battalions"`
	EngagementCapManpower int                  `json:"engagement_cap_manpower"`
	EligibleManpower      int                  `json:"eligible_manpower"`
	EngagedManpower       int                  `json:"engaged_manpower"`
	EnemyEligibleManpower int                  `json:"enemy_eligible_manpower"`
	EnemyEngagedManpower  int                  `json:"enemy_engaged_manpower"`
	EngagementRatio       float64              `json:"engagement_ratio"`
	EnemyEngagementRatio  float64              `json:"enemy_engagement_ratio"`
	YourPower             float64              `json:"your_power"`
	EnemyPower            float64              `json:"enemy_power"`
	Advantage             float64              `json:"advantage"`
	Initiative            bool                 `json:"initiative"`
	VarianceSwing         float64              `json:"variance_swing"`
	ProgressDelta         float64              `json:"progress_delta"`
	Losses                UnitStock            `json:"losses"`
	EnemyLosses           UnitStock            `json:"enemy_losses"`
	Remaining             UnitStock            `json:"remaining"`
	EnemyRemaining        UnitStock            `json:"enemy_remaining"`
	Cohesion              float64              `json:"cohesion"`
	EnemyCohesion         float64              `json:"enemy_cohesion"`
	Supply                BattleSupplySnapshot `json:"supply"`
	Tags                  []string             `json:"tags"`
}

// classStats are the per-pool combat coefficients. Offense applies to the
// attacking side's weight, defense to the defender's.
type classStats struct {
	offense   float64
	defense   float64
	moraleMod float64
}

var unitClassStats = map[UnitClass]classStats{
	UnitInfantry: {offense: 1.0, defense: 1.0, moraleMod: 1.0},
	UnitWalkers:  {offense: 1.6, defense: 1.3, moraleMod: 0.95},
	UnitSupport:  {offense: 0.6, defense: 0.8, moraleMod: 0.9},
}

// Pools below this manpower or morale cannot form a fighting line.
const (
	minPoolManpower = 100
	minPoolMorale   = 0.20
)

// decisionMods collapses the active phase decisions into resolver multipliers.
type decisionMods struct {
	power    float64 // expected-value scale on own power
	variance float64 // scale on the stochastic power swing
	ammo     float64 // scale on ammunition draw
	fuel     float64 // scale on fuel draw
	progress float64 // scale on objective progress
	enemyAtt float64 // scale on enemy casualties
	casualty float64 // scale on own casualties
	recon    bool    // decision set leans on reconnaissance
}

func (op *OperationState) activeMods() decisionMods {
	m := decisionMods{power: 1, variance: 1, ammo: 1, fuel: 1, progress: 1, enemyAtt: 1, casualty: 1}

	switch op.decision("approach_axis") {
	case "flanking":
		m.power *= 1.05
		m.variance *= 1.2
	case "infiltration":
		m.variance *= 0.8
		m.recon = true
	}
	switch op.decision("fire_support") {
	case "massed":
		m.power *= 1.15
		m.ammo *= 1.5
	case "precision":
		m.power *= 1.05
		m.ammo *= 1.1
		m.recon = true
	case "none":
		m.ammo *= 0.8
	}
	switch op.decision("posture") {
	case "aggressive":
		m.power *= 1.15
		m.variance *= 1.3
		m.ammo *= 1.3
		m.fuel *= 1.3
		m.casualty *= 1.15
	case "cautious":
		m.power *= 0.9
		m.variance *= 0.7
		m.ammo *= 0.8
		m.casualty *= 0.85
		m.recon = true
	}
	switch op.decision("focus") {
	case "objectives":
		m.progress *= 1.25
		m.enemyAtt *= 0.85
	case "attrition":
		m.progress *= 0.75
		m.enemyAtt *= 1.25
	}
	switch op.decision("tempo") {
	case "pursue":
		m.power *= 1.1
		m.variance *= 1.25
		m.fuel *= 1.4
	case "deliberate":
		m.power *= 0.95
		m.variance *= 0.8
		m.recon = true
	}
	if op.decision("reserves") == "commit" {
		m.power *= 1.08
		m.casualty *= 1.1
	}
	return m
}

// phaseIntensity scales how hard each stage presses the fight.
func phaseIntensity(p Phase) float64 {
	switch p {
	case PhaseContactShaping:
		return 0.6
	case PhaseExploitConsolidate:
		return 0.85
	default:
		return 1.0
	}
}

// pool is one side's eligible slice of a unit class.
type pool struct {
	class    UnitClass
	manpower int
	weight   float64
}

// selectEngaged picks eligible pools (manpower and morale floors), orders
// them by weight, and engages manpower up to the width cap, higher-weighted
// pools first. Returns eligible total, engaged total, and engaged per class.
func selectEngaged(units UnitStock, morale, mobilization float64, attacker bool, cap int) (int, int, UnitStock) {
	var pools []pool
	eligible := 0
	for _, c := range UnitClasses {
		manpower := units.Get(c)
		stats := unitClassStats[c]
		poolMorale := morale * stats.moraleMod
		if manpower < minPoolManpower || poolMorale < minPoolMorale {
			continue
		}
		stat := stats.defense
		if attacker {
			stat = stats.offense
		}
		pools = append(pools, pool{
			class:    c,
			manpower: manpower,
			weight:   float64(manpower) * poolMorale * mobilization * stat,
		})
		eligible += manpower
	}

	sort.SliceStable(pools, func(i, j int) bool { return pools[i].weight > pools[j].weight })

	var engaged UnitStock
	room := cap
	total := 0
	for _, p := range pools {
		take := min(p.manpower, room)
		if take <= 0 {
			break
		}
		engaged.Add(p.class, take)
		total += take
		room -= take
	}
	return eligible, total, engaged
}

// engagedWeight computes the committed force's fighting weight.
func engagedWeight(engaged UnitStock, morale, mobilization float64, attacker bool) float64 {
	w := 0.0
	for _, c := range UnitClasses {
		stats := unitClassStats[c]
		stat := stats.defense
		if attacker {
			stat = stats.offense
		}
		w += float64(engaged.Get(c)) * morale * stats.moraleMod * mobilization * stat
	}
	return w
}

// resolveBattleDay computes one day of combat inside the active operation.
// It never fails mid-battle — routs surface as tags and cohesion collapse —
// but a missing terrain record for the target is a fatal scenario bug.
func (s *State) resolveBattleDay() (BattleDayTick, error) {
	op := s.Operation
	b := s.Scenario.Battle

	node := s.Scenario.Node(s.Planet.NodeID)
	if node == nil || node.TerrainID == "" || node.CombatWidthMultiplier <= 0 {
		return BattleDayTick{}, fmt.Errorf("%w: node %q", ErrInsufficientEngagementData, s.Planet.NodeID)
	}

	mods := op.activeMods()
	intensity := phaseIntensity(op.CurrentPhase)

	// Engagement width bounds commitment regardless of strength on hand.
	forceLimit := int(math.Ceil((5 + float64(node.Infrastructure)/2) * node.CombatWidthMultiplier))
	capManpower := forceLimit * b.ManpowerPerBattalion

	eligible, engagedTotal, engaged := selectEngaged(
		s.TaskForce.Units, s.TaskForce.Cohesion, s.TaskForce.Readiness, true, capManpower)

	enemyUnits := s.Planet.Intel.ActualStock()
	enemyMobilization := 0.7 + 0.3*s.Planet.Fortification
	enemyEligible, enemyEngagedTotal, enemyEngaged := selectEngaged(
		enemyUnits, s.Planet.EnemyCohesion, enemyMobilization, false, capManpower)

	// Power: engaged weight scaled by decisions, supply carry-over, and a
	// bounded stochastic swing whose width the posture controls.
	swing := (s.rng.Float64()*2 - 1) * 0.15 * mods.variance
	yourPower := engagedWeight(engaged, s.TaskForce.Cohesion, s.TaskForce.Readiness, true) *
		mods.power * op.supplyPenalty * (1 + swing)
	enemyPower := engagedWeight(enemyEngaged, s.Planet.EnemyCohesion, enemyMobilization, false) *
		(1 + 0.3*s.Planet.Fortification) * (1 + (s.rng.Float64()*2-1)*0.10)

	advantage := 0.0
	if yourPower+enemyPower > 0 {
		advantage = (yourPower - enemyPower) / (yourPower + enemyPower)
	}
	initiative := advantage > 0

	// Casualties, bounded per round, split proportional to engaged mix.
	baseLethality := (b.LethalityMin + b.LethalityMax) / 2 * intensity
	yourFrac := boundFrac(baseLethality*(1-0.6*advantage)*mods.casualty, b.LethalityMin, b.LethalityMax)
	enemyFrac := boundFrac(baseLethality*(1+0.6*advantage)*mods.enemyAtt, b.LethalityMin, b.LethalityMax)

	losses := casualtySplit(engaged, engagedTotal, yourFrac, b.MinCasualties)
	enemyLosses := casualtySplit(enemyEngaged, enemyEngagedTotal, enemyFrac, b.MinCasualties)

	s.TaskForce.Units.Sub(losses)
	s.applyEnemyLosses(enemyLosses)

	// Cohesion falls with the day's casualty share.
	lossShare := share(losses.Total(), engagedTotal)
	enemyLossShare := share(enemyLosses.Total(), enemyEngagedTotal)
	s.TaskForce.Cohesion = clamp01(s.TaskForce.Cohesion - lossShare*0.8)
	s.Planet.EnemyCohesion = clamp01(s.Planet.EnemyCohesion - enemyLossShare*0.8)
	s.TaskForce.Readiness = clamp01(s.TaskForce.Readiness - 0.01)

	// Progress toward the objectives from sustained advantage.
	progress := 0.0
	if advantage > 0 {
		progress = b.BaseProgressRate * math.Min(advantage/0.5, 1) * mods.progress * intensity * (1 - 0.5*s.Planet.Fortification)
	} else {
		progress = b.BaseProgressRate * advantage * 0.5
	}
	s.Planet.Control = clamp01(s.Planet.Control + progress)
	s.Planet.UpdateObjectives()

	supply := s.drawSupplies(engagedTotal, mods, lossShare)

	// Shortage today means fighting under-gunned tomorrow.
	op.supplyPenalty = 1.0
	if supply.ShortAmmo || supply.ShortFuel || supply.ShortMed {
		op.supplyPenalty = b.ShortagePenalty
	}

	s.narrowIntel(mods.recon)

	tick := BattleDayTick{
		DayIndex:              op.DayInPhase,
		GlobalDay:             s.Day,
		Phase:                 op.CurrentPhase,
		PhaseName:             op.CurrentPhase.String(),
		TerrainID:             node.TerrainID,
		Infrastructure:        node.Infrastructure,
		CombatWidthMultiplier: node.CombatWidthMultiplier,
		ForceLimitBattalions:  forceLimit,
		EngagementCapManpower: capManpower,
		EligibleManpower:      eligible,
		EngagedManpower:       engagedTotal,
		EnemyEligibleManpower: enemyEligible,
		EnemyEngagedManpower:  enemyEngagedTotal,
		EngagementRatio:       share(engagedTotal, eligible),
		EnemyEngagementRatio:  share(enemyEngagedTotal, enemyEligible),
		YourPower:             yourPower,
		EnemyPower:            enemyPower,
		Advantage:             advantage,
		Initiative:            initiative,
		VarianceSwing:         swing,
		ProgressDelta:         progress,
		Losses:                losses,
		EnemyLosses:           enemyLosses,
		Remaining:             s.TaskForce.Units,
		EnemyRemaining:        s.Planet.Intel.ActualStock(),
		Cohesion:              s.TaskForce.Cohesion,
		EnemyCohesion:         s.Planet.EnemyCohesion,
		Supply:                supply,
	}
	tick.Tags = battleTags(tick, yourFrac, b.LethalityMax, mods.recon)
	return tick, nil
}

// applyEnemyLosses debits the hidden garrison and pulls the intel band down
// with the confirmed kills.
func (s *State) applyEnemyLosses(losses UnitStock) {
	for _, c := range UnitClasses {
		ir := s.Planet.Intel.Range(c)
		n := losses.Get(c)
		ir.Actual = max(0, ir.Actual-n)
		ir.Min = max(0, ir.Min-n)
		ir.Max = max(ir.Actual, ir.Max-n)
	}
}

// drawSupplies consumes the day's ammunition, fuel, and medical draw from the
// task force stock, then the front depot. Ratio is spent over forecast; a
// ratio under the scenario threshold raises the matching shortage flag.
func (s *State) drawSupplies(engagedTotal int, mods decisionMods, lossShare float64) BattleSupplySnapshot {
	b := s.Scenario.Battle
	hundreds := float64(engagedTotal) / 100

	need := SupplyStock{
		Ammo:      int(math.Ceil(hundreds * b.AmmoPerHundred * mods.ammo)),
		Fuel:      int(math.Ceil(hundreds * b.FuelPerHundred * mods.fuel)),
		MedSpares: int(math.Ceil(hundreds * b.MedPerHundred * (1 + lossShare*4))),
	}

	before := s.TaskForce.Supplies
	if depot := s.FrontDepot(); depot != nil {
		before.AddAll(depot.Supplies)
	}

	spent := SupplyStock{
		Ammo:      s.drawResource(ResourceAmmo, need.Ammo),
		Fuel:      s.drawResource(ResourceFuel, need.Fuel),
		MedSpares: s.drawResource(ResourceMedSpares, need.MedSpares),
	}

	snap := BattleSupplySnapshot{
		Before:    before,
		Spent:     spent,
		AmmoRatio: ratio(spent.Ammo, need.Ammo),
		FuelRatio: ratio(spent.Fuel, need.Fuel),
		MedRatio:  ratio(spent.MedSpares, need.MedSpares),
	}
	snap.ShortAmmo = snap.AmmoRatio < b.ShortageThreshold
	snap.ShortFuel = snap.FuelRatio < b.ShortageThreshold
	snap.ShortMed = snap.MedRatio < b.ShortageThreshold
	return snap
}

// drawResource takes up to n of a resource from the task force, then the
// front depot, returning what was actually drawn.
func (s *State) drawResource(r Resource, n int) int {
	drawn := min(n, s.TaskForce.Supplies.Get(r))
	s.TaskForce.Supplies.Remove(r, drawn)

	if drawn < n {
		if depot := s.FrontDepot(); depot != nil {
			extra := min(n-drawn, depot.Supplies.Get(r))
			depot.Supplies.Remove(r, extra)
			drawn += extra
		}
	}
	return drawn
}

// narrowIntel shrinks enemy strength bands; reconnaissance-leaning decisions
// double the day's gain. Confidence follows the remaining band width.
func (s *State) narrowIntel(recon bool) {
	rate := 0.04
	if recon {
		rate = 0.08
	}

	width := 0
	for _, c := range UnitClasses {
		ir := s.Planet.Intel.Range(c)
		shrink := int(math.Ceil(float64(ir.Width()) * rate))
		ir.Min = min(ir.Min+shrink, ir.Actual)
		ir.Max = max(ir.Max-shrink, ir.Actual)
		width += ir.Width()
	}

	if s.Planet.InitialIntelWidth > 0 {
		s.Planet.IntelConfidence = clamp01(1 - float64(width)/float64(s.Planet.InitialIntelWidth))
	}
}

// battleTags derives the qualitative markers the AAR attributes outcomes to.
func battleTags(t BattleDayTick, yourFrac, lethalityMax float64, recon bool) []string {
	var tags []string
	if t.Supply.ShortAmmo {
		tags = append(tags, "low_ammo")
	}
	if t.Supply.ShortFuel {
		tags = append(tags, "low_fuel")
	}
	if t.Supply.ShortMed {
		tags = append(tags, "low_med")
	}
	if yourFrac >= lethalityMax*0.9 {
		tags = append(tags, "casualty_spike")
	}
	if math.Abs(t.VarianceSwing) > 0.10 {
		tags = append(tags, "high_variance_outcome")
	}
	if t.Advantage > 0.15 {
		tags = append(tags, "initiative_held")
	}
	if t.Cohesion < 0.30 {
		tags = append(tags, "cohesion_critical")
	}
	if recon {
		tags = append(tags, "recon_gain")
	}
	return tags
}

// eventDelta assigns a signed contribution to a tagged occurrence, used to
// rank phase events.
func eventDelta(tag string, t BattleDayTick) float64 {
	switch tag {
	case "low_ammo":
		return -(1 - t.Supply.AmmoRatio) * 0.05
	case "low_fuel":
		return -(1 - t.Supply.FuelRatio) * 0.04
	case "low_med":
		return -(1 - t.Supply.MedRatio) * 0.03
	case "casualty_spike":
		return -float64(t.Losses.Total()) / 2000
	case "high_variance_outcome":
		return t.VarianceSwing * 0.2
	case "initiative_held":
		return t.ProgressDelta
	case "cohesion_critical":
		return -(0.30 - t.Cohesion)
	case "recon_gain":
		return 0.01
	default:
		return 0
	}
}

func eventDescription(tag string, t BattleDayTick) string {
	switch tag {
	case "low_ammo":
		return fmt.Sprintf("Day %d: ammunition ran at %.0f%% of requirement", t.GlobalDay, t.Supply.AmmoRatio*100)
	case "low_fuel":
		return fmt.Sprintf("Day %d: fuel ran at %.0f%% of requirement", t.GlobalDay, t.Supply.FuelRatio*100)
	case "low_med":
		return fmt.Sprintf("Day %d: medical spares ran at %.0f%% of requirement", t.GlobalDay, t.Supply.MedRatio*100)
	case "casualty_spike":
		return fmt.Sprintf("Day %d: %d casualties in a single day of fighting", t.GlobalDay, t.Losses.Total())
	case "high_variance_outcome":
		return fmt.Sprintf("Day %d: engagement swung well outside expectation", t.GlobalDay)
	case "initiative_held":
		return fmt.Sprintf("Day %d: held the initiative, %.1f%% ground gained", t.GlobalDay, t.ProgressDelta*100)
	case "cohesion_critical":
		return fmt.Sprintf("Day %d: task force cohesion critical at %.2f", t.GlobalDay, t.Cohesion)
	case "recon_gain":
		return fmt.Sprintf("Day %d: reconnaissance sharpened the enemy picture", t.GlobalDay)
	default:
		return tag
	}
}

func boundFrac(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// casualtySplit distributes total casualties across engaged pools
// proportional to their share of the line, with a per-round floor.
func casualtySplit(engaged UnitStock, engagedTotal int, frac float64, minimum int) UnitStock {
	var out UnitStock
	if engagedTotal == 0 {
		return out
	}

	total := int(float64(engagedTotal) * frac)
	if total < minimum {
		total = minimum
	}
	if total > engagedTotal {
		total = engagedTotal
	}

	assigned := 0
	for _, c := range UnitClasses {
		n := engaged.Get(c)
		if n == 0 {
			continue
		}
		loss := total * n / engagedTotal
		if loss > n {
			loss = n
		}
		out.Add(c, loss)
		assigned += loss
	}
	// Rounding remainder lands on the largest engaged pool.
	if rem := total - assigned; rem > 0 {
		largest := UnitInfantry
		for _, c := range UnitClasses {
			if engaged.Get(c) > engaged.Get(largest) {
				largest = c
			}
		}
		out.Add(largest, min(rem, engaged.Get(largest)-out.Get(largest)))
	}
	return out
}

func share(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func ratio(spent, need int) float64 {
	if need == 0 {
		return 1
	}
	return float64(spent) / float64(need)
}
