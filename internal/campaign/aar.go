package campaign

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Factor is one ranked causal driver of an operation's outcome.
type Factor struct {
	Name        string  `json:"name"`
	Delta       float64 `json:"delta"`
	Explanation string  `json:"explanation"`
}

// AfterActionReport is the post-operation causal summary. Construction is
// fully deterministic — everything here is derived from already-recorded
// ticks, never rolled fresh.
type AfterActionReport struct {
	Outcome           string        `json:"outcome"`
	Target            string        `json:"target"`
	OpType            string        `json:"op_type"`
	Days              int           `json:"days"`
	Losses            UnitStock     `json:"losses"`
	EnemyLosses       UnitStock     `json:"enemy_losses"`
	RemainingSupplies SupplyStock   `json:"remaining_supplies"`
	TopFactors        []Factor      `json:"top_factors"`
	Recommendations   []string      `json:"recommendations"`
	Phases            []PhaseRecord `json:"phases"`
	Events            []BattleEvent `json:"events"`
	Acknowledged      bool          `json:"acknowledged"`
}

// generateAAR aggregates a completed operation's phase records into the
// after-action report.
func (s *State) generateAAR(op *OperationState) *AfterActionReport {
	report := &AfterActionReport{
		Target:            op.Target,
		OpType:            op.Type.String(),
		Days:              op.DayInOperation,
		RemainingSupplies: s.TaskForce.Supplies,
		Phases:            op.PhaseHistory,
		Outcome:           operationOutcome(&s.Planet),
	}

	var allTicks []BattleDayTick
	for _, rec := range op.PhaseHistory {
		report.Losses.AddAll(rec.Summary.Losses)
		report.EnemyLosses.AddAll(rec.Summary.EnemyLosses)
		report.Events = append(report.Events, rec.Events...)
		allTicks = append(allTicks, rec.Days...)
	}
	sort.SliceStable(report.Events, func(i, j int) bool {
		return math.Abs(report.Events[i].Delta) > math.Abs(report.Events[j].Delta)
	})

	report.TopFactors = rankFactors(s, allTicks, report)
	report.Recommendations = recommendations(report.TopFactors)
	return report
}

// operationOutcome grades the final state of the contested planet.
func operationOutcome(p *ContestedPlanet) string {
	switch {
	case p.Control >= 0.75 && p.AllObjectivesSecured():
		return "decisive_victory"
	case p.Control >= 0.60:
		return "operational_success"
	case p.Control >= 0.40:
		return "contested_foothold"
	default:
		return "setback"
	}
}

// rankFactors accumulates each causal driver's signed contribution across
// every battle day, then orders by absolute magnitude.
func rankFactors(s *State, ticks []BattleDayTick, report *AfterActionReport) []Factor {
	var (
		supplyDelta     float64
		initiativeDelta float64
		varianceDelta   float64
		fortDelta       float64
		shortageDays    int
		initiativeDays  int
		swingDays       int
	)

	for _, t := range ticks {
		if t.Supply.ShortAmmo || t.Supply.ShortFuel || t.Supply.ShortMed {
			shortageDays++
			worst := math.Min(t.Supply.AmmoRatio, math.Min(t.Supply.FuelRatio, t.Supply.MedRatio))
			supplyDelta -= (1 - worst) * 0.04
		}
		if t.Initiative {
			initiativeDays++
			initiativeDelta += t.ProgressDelta
		} else {
			initiativeDelta += t.ProgressDelta // negative days drag the same ledger
		}
		if math.Abs(t.VarianceSwing) > 0.10 {
			swingDays++
			varianceDelta += t.VarianceSwing * 0.1
		}
		fortDelta -= s.Planet.Fortification * s.Scenario.Battle.BaseProgressRate * 0.5
	}

	var factors []Factor
	if shortageDays > 0 {
		factors = append(factors, Factor{
			Name:  "supply_shortage",
			Delta: supplyDelta,
			Explanation: fmt.Sprintf("Supply ran short on %d of %d battle days; forces fought under-gunned the following day each time.",
				shortageDays, len(ticks)),
		})
	}
	if len(ticks) > 0 {
		factors = append(factors, Factor{
			Name:  "initiative",
			Delta: initiativeDelta,
			Explanation: fmt.Sprintf("Initiative held on %d of %d battle days, driving the bulk of ground gained.",
				initiativeDays, len(ticks)),
		})
		factors = append(factors, Factor{
			Name:  "fortification_drag",
			Delta: fortDelta,
			Explanation: fmt.Sprintf("Fortification at %.2f slowed every day of progress against prepared positions.",
				s.Planet.Fortification),
		})
	}
	if swingDays > 0 {
		factors = append(factors, Factor{
			Name:  "variance_exposure",
			Delta: varianceDelta,
			Explanation: fmt.Sprintf("%d engagements swung well outside expectation under the chosen posture.",
				swingDays),
		})
	}
	if report.EnemyLosses.Total() > 0 {
		factors = append(factors, Factor{
			Name:  "enemy_attrition",
			Delta: float64(report.EnemyLosses.Total()) / 2000,
			Explanation: fmt.Sprintf("Inflicted %d enemy casualties against %d of our own.",
				report.EnemyLosses.Total(), report.Losses.Total()),
		})
	}
	if s.TaskForce.Cohesion < 0.40 {
		factors = append(factors, Factor{
			Name:  "cohesion_collapse",
			Delta: -(0.40 - s.TaskForce.Cohesion),
			Explanation: fmt.Sprintf("Task force cohesion ended at %.2f; sustained fighting outran recovery.",
				s.TaskForce.Cohesion),
		})
	}
	if s.Planet.IntelConfidence > 0.5 {
		factors = append(factors, Factor{
			Name:  "intel_picture",
			Delta: s.Planet.IntelConfidence * 0.05,
			Explanation: fmt.Sprintf("Reconnaissance narrowed enemy strength estimates to %.0f%% confidence.",
				s.Planet.IntelConfidence*100),
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Delta) > math.Abs(factors[j].Delta)
	})
	return factors
}

// adviceByKeyword maps factor-name keywords to fixed recommendation text.
// Order matters: the first keyword hit per factor wins.
var adviceByKeyword = []struct {
	keyword string
	advice  string
}{
	{"supply", "Stage deeper stockpiles at the front-line depot before the next operation; shortage days cost more than the convoys that prevent them."},
	{"intel", "Keep a recon-heavy posture early; a narrow enemy estimate pays for itself in phase two."},
	{"variance", "Favor lower-variance postures against this opponent; the swings cut against us more often than not."},
	{"cohesion", "Plan operational pauses; cohesion lost in sustained contact is not recovered under fire."},
	{"fortification", "Allocate siege preparation and heavier fire support against fortified targets."},
	{"initiative", "Exploit phases should commit reserves while the initiative holds."},
	{"attrition", "Attrition favored us; a focus on enemy losses remains viable for follow-on operations."},
}

// recommendations produces the fixed keyword-to-advice mapping over factor
// names. Purely derived; duplicates collapse.
func recommendations(factors []Factor) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range factors {
		for _, rule := range adviceByKeyword {
			if strings.Contains(f.Name, rule.keyword) && !seen[rule.keyword] {
				seen[rule.keyword] = true
				out = append(out, rule.advice)
				break
			}
		}
	}
	return out
}
