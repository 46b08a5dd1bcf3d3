package settings

import (
	"path/filepath"
	"testing"

	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/world"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := map[string]func(p *Params){
		"step above support":   func(p *Params) { p.StepFraction, p.SupportFraction = 0.8, 0.5 },
		"fraction above one":   func(p *Params) { p.AirDamping = 1.5 },
		"zero tolerance":       func(p *Params) { p.ContactTolerance = 0 },
		"water min above":      func(p *Params) { p.WaterMinHeight = p.WaterDepth },
		"no iterations":        func(p *Params) { p.MaxIterations = 0 },
		"skin above tolerance": func(p *Params) { p.SkinWidth = p.ContactTolerance },
	}
	for name, mutate := range cases {
		p := Default()
		mutate(&p)
		if err := p.Validate(); !oerror.Is(err, oerror.KindInvalidParams) {
			t.Fatalf("%s: expected invalid params, got %v", name, err)
		}
	}
}

func TestLoadTOML(t *testing.T) {
	table, err := Load(filepath.Join("testdata", "archetypes.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	humanoid, err := table.Lookup("humanoid")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if humanoid.MaxSpeed != 5.5 || humanoid.StepFraction != 0.3 {
		t.Fatalf("overrides not applied: %+v", humanoid)
	}
	if humanoid.SkinWidth != Default().SkinWidth {
		t.Fatalf("expected defaults for absent fields, got skin width %v", humanoid.SkinWidth)
	}
	if humanoid.Masks.Terrain != world.LayerTerrain|world.LayerDynamic {
		t.Fatalf("expected named layers to be parsed, got %v", humanoid.Masks.Terrain)
	}
	gull, _ := table.Lookup("gull")
	if !gull.Flags.FlyOnly || !gull.Flags.CanFly || gull.Flags.CanSwim || gull.GravityFactor != 0 {
		t.Fatalf("unexpected gull params %+v", gull)
	}
}

func TestLoadYAML(t *testing.T) {
	table, err := Load(filepath.Join("testdata", "archetypes.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	lizard, err := table.Lookup("lizard")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !lizard.Flags.SurfaceUp || !lizard.Flags.RotateAll || lizard.Masks.Climb != world.LayerClimbable {
		t.Fatalf("unexpected lizard params %+v", lizard)
	}
	if _, err := table.Lookup("humanoid"); !oerror.Is(err, oerror.KindUnknownArchetype) {
		t.Fatalf("expected unknown archetype, got %v", err)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "[archetypes.a]\nmax_sped = 3.0\n",
		"wrong type":     "[archetypes.a]\nmax_speed = \"fast\"\n",
		"bad layer name": "[archetypes.a.masks]\nwater = [\"lava\"]\n",
		"no archetypes":  "title = \"x\"\n",
		"out of range":   "[archetypes.a]\nstep_fraction = 2.0\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc), ".toml"); !oerror.Is(err, oerror.KindInvalidParams) {
			t.Fatalf("%s: expected invalid params, got %v", name, err)
		}
	}
	// Passes the schema but fails the cross-field check.
	if _, err := Parse([]byte("archetypes:\n  a:\n    step_fraction: 0.9\n    support_fraction: 0.5\n"), ".yml"); err == nil {
		t.Fatalf("expected step/support ordering to be rejected")
	}
	if _, err := Parse(nil, ".json"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	table := Table{"walker": Default()}
	for _, name := range []string{"table.toml", "table.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, table); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if loaded["walker"] != table["walker"] {
			t.Fatalf("%s: round trip mismatch\n%+v\n%+v", name, loaded["walker"], table["walker"])
		}
	}
}
