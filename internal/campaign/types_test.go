package campaign

import "testing"

func TestSupplyStockRemoveFloorsAtZero(t *testing.T) {
	s := SupplyStock{Ammo: 10, Fuel: 5}
	s.Remove(ResourceAmmo, 25)
	s.Remove(ResourceFuel, 5)
	s.Remove(ResourceMedSpares, 3)

	if s.Ammo != 0 || s.Fuel != 0 || s.MedSpares != 0 {
		t.Errorf("expected empty stock, got %+v", s)
	}
}

func TestSupplyStockCanCover(t *testing.T) {
	s := SupplyStock{Ammo: 100, Fuel: 50, MedSpares: 20}

	tests := []struct {
		name string
		want SupplyStock
		ok   bool
	}{
		{"exact", SupplyStock{Ammo: 100, Fuel: 50, MedSpares: 20}, true},
		{"partial", SupplyStock{Ammo: 10}, true},
		{"empty", SupplyStock{}, true},
		{"over on one", SupplyStock{Ammo: 101}, false},
		{"over on all", SupplyStock{Ammo: 200, Fuel: 60, MedSpares: 30}, false},
	}
	for _, tt := range tests {
		if got := s.CanCover(tt.want); got != tt.ok {
			t.Errorf("%s: CanCover(%+v) = %v, want %v", tt.name, tt.want, got, tt.ok)
		}
	}
}

func TestUnitStockScaled(t *testing.T) {
	u := UnitStock{Infantry: 1000, Walkers: 100, Support: 10}
	got := u.Scaled(0.275)

	want := UnitStock{Infantry: 725, Walkers: 72, Support: 7}
	if got != want {
		t.Errorf("Scaled(0.275) = %+v, want %+v", got, want)
	}

	if gone := u.Scaled(1.5); !gone.IsZero() {
		t.Errorf("Scaled(1.5) should wipe the stock, got %+v", gone)
	}
}

func TestRouteStatusThresholds(t *testing.T) {
	tests := []struct {
		risk float64
		want RouteStatus
	}{
		{0.0, RouteActive},
		{0.3, RouteActive},
		{0.31, RouteDisrupted},
		{0.6, RouteDisrupted},
		{0.61, RouteBlocked},
		{1.0, RouteBlocked},
	}
	for _, tt := range tests {
		r := Route{InterdictionRisk: tt.risk}
		if got := r.Status(); got != tt.want {
			t.Errorf("risk %.2f: status = %v, want %v", tt.risk, got, tt.want)
		}
	}
}

func TestObjectiveStatusFromControl(t *testing.T) {
	p := ContestedPlanet{
		Objectives: []Objective{{ID: "a", SecureAt: 0.50}},
	}

	tests := []struct {
		control float64
		want    ObjectiveStatus
	}{
		{0.0, ObjectiveEnemy},
		{0.34, ObjectiveEnemy},
		{0.35, ObjectiveContested},
		{0.49, ObjectiveContested},
		{0.50, ObjectiveSecured},
		{1.0, ObjectiveSecured},
	}
	for _, tt := range tests {
		p.Control = tt.control
		p.UpdateObjectives()
		if got := p.Objectives[0].Status; got != tt.want {
			t.Errorf("control %.2f: status = %v, want %v", tt.control, got, tt.want)
		}
	}
}

func TestAllObjectivesSecured(t *testing.T) {
	p := ContestedPlanet{}
	if p.AllObjectivesSecured() {
		t.Error("planet with no objectives should never report all secured")
	}

	p.Objectives = []Objective{
		{ID: "a", SecureAt: 0.3},
		{ID: "b", SecureAt: 0.6},
	}
	p.Control = 0.5
	p.UpdateObjectives()
	if p.AllObjectivesSecured() {
		t.Error("one objective still contested, should not report all secured")
	}

	p.Control = 0.6
	p.UpdateObjectives()
	if !p.AllObjectivesSecured() {
		t.Error("all objectives at or past their threshold should report secured")
	}
}

func TestIntelRangeMidpointAndWidth(t *testing.T) {
	ir := IntelRange{Min: 1400, Max: 2600, Actual: 1900}
	if ir.Width() != 1200 {
		t.Errorf("Width = %d, want 1200", ir.Width())
	}
	if ir.Midpoint() != 2000 {
		t.Errorf("Midpoint = %d, want 2000", ir.Midpoint())
	}
}

func TestGoodEnumsRoundTrip(t *testing.T) {
	for _, name := range []string{"ammo", "fuel", "med_spares"} {
		g, ok := ProductionGoodFromString(name)
		if !ok || g.String() != name {
			t.Errorf("production good %q did not round-trip (got %q, ok=%v)", name, g, ok)
		}
	}
	for _, name := range []string{"infantry", "walkers", "support"} {
		g, ok := BarracksGoodFromString(name)
		if !ok || g.String() != name {
			t.Errorf("barracks good %q did not round-trip (got %q, ok=%v)", name, g, ok)
		}
	}
	if _, ok := ProductionGoodFromString("plasma"); ok {
		t.Error("unknown production good should be rejected")
	}
	if _, ok := BarracksGoodFromString("dragoons"); ok {
		t.Error("unknown barracks good should be rejected")
	}
}
