package settings

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/world"
)

// Flags toggle optional movement abilities of an archetype.
type Flags struct {
	CanSwim bool `json:"can_swim" toml:"can_swim" yaml:"can_swim"`
	CanFly  bool `json:"can_fly" toml:"can_fly" yaml:"can_fly"`
	// FlyOnly agents are always airborne and never look for support.
	FlyOnly bool `json:"fly_only" toml:"fly_only" yaml:"fly_only"`
	// SurfaceUp aligns the agent's up axis with the supporting surface normal.
	SurfaceUp bool `json:"surface_up" toml:"surface_up" yaml:"surface_up"`
	// RotateAll rate-limits the whole orientation rather than only the surface alignment.
	RotateAll bool `json:"rotate_all" toml:"rotate_all" yaml:"rotate_all"`
}

// Masks select the collision layers an archetype treats as terrain, water, dynamic obstacles and climbable
// surfaces.
type Masks struct {
	Terrain world.Layer `json:"terrain" toml:"terrain" yaml:"terrain"`
	Water   world.Layer `json:"water" toml:"water" yaml:"water"`
	Dynamic world.Layer `json:"dynamic" toml:"dynamic" yaml:"dynamic"`
	Climb   world.Layer `json:"climb" toml:"climb" yaml:"climb"`
}

// Solid returns the layers the agent collides with.
func (m Masks) Solid() world.Layer {
	return m.Terrain | m.Dynamic | m.Climb
}

// Params is the physical parameter block of an agent archetype. Distances are in metres, speeds in metres per second
// and angles in radians.
type Params struct {
	// ContactTolerance is the gap under which the agent is considered to touch a surface.
	ContactTolerance float32 `json:"contact_tolerance" toml:"contact_tolerance" yaml:"contact_tolerance"`
	// SkinWidth is the gap the integrator keeps between the agent and obstacles.
	SkinWidth float32 `json:"skin_width" toml:"skin_width" yaml:"skin_width"`
	// StepFraction and SupportFraction are fractions of RaycastLength. Ground closer than StepFraction is snapped to,
	// ground closer than SupportFraction still supports the agent.
	StepFraction    float32 `json:"step_fraction" toml:"step_fraction" yaml:"step_fraction"`
	SupportFraction float32 `json:"support_fraction" toml:"support_fraction" yaml:"support_fraction"`
	// RaycastLength is the reach of the vertical support probe below the collider.
	RaycastLength float32 `json:"raycast_length" toml:"raycast_length" yaml:"raycast_length"`
	// StepSlope is the cosine of the steepest walkable slope. A normal whose dot product with up equals StepSlope is
	// walkable.
	StepSlope float32 `json:"step_slope" toml:"step_slope" yaml:"step_slope"`
	// FootHeight is how far below the feet a terrain contact may lie before it is ignored as ground clutter.
	FootHeight float32 `json:"foot_height" toml:"foot_height" yaml:"foot_height"`
	// AscendSpeed is the upward speed above which the agent counts as jumping.
	AscendSpeed   float32 `json:"ascend_speed" toml:"ascend_speed" yaml:"ascend_speed"`
	MaxSpeed      float32 `json:"max_speed" toml:"max_speed" yaml:"max_speed"`
	GravityFactor float32 `json:"gravity_factor" toml:"gravity_factor" yaml:"gravity_factor"`
	// AirDamping blends desired velocity into the current one while airborne or sliding.
	AirDamping float32 `json:"air_damping" toml:"air_damping" yaml:"air_damping"`

	// WaterMinHeight is the shallowest water the agent swims in.
	WaterMinHeight float32 `json:"water_min_height" toml:"water_min_height" yaml:"water_min_height"`
	// WaterMaxHeight is the depth of the feet below the water surface at which the agent floats.
	WaterMaxHeight float32 `json:"water_max_height" toml:"water_max_height" yaml:"water_max_height"`
	// WaterDepth is the height above the feet the water probe starts from.
	WaterDepth   float32 `json:"water_depth" toml:"water_depth" yaml:"water_depth"`
	Buoyancy     float32 `json:"buoyancy" toml:"buoyancy" yaml:"buoyancy"`
	WaterDamping float32 `json:"water_damping" toml:"water_damping" yaml:"water_damping"`
	ClimbDamping float32 `json:"climb_damping" toml:"climb_damping" yaml:"climb_damping"`

	// AngularSpeed limits how fast the surface alignment rotation may change.
	AngularSpeed      float32 `json:"angular_speed" toml:"angular_speed" yaml:"angular_speed"`
	NavArriveDistance float32 `json:"nav_arrive_distance" toml:"nav_arrive_distance" yaml:"nav_arrive_distance"`

	MaxIterations int `json:"max_iterations" toml:"max_iterations" yaml:"max_iterations"`
	MaxContacts   int `json:"max_contacts" toml:"max_contacts" yaml:"max_contacts"`

	Flags Flags `json:"flags" toml:"flags" yaml:"flags"`
	Masks Masks `json:"masks" toml:"masks" yaml:"masks"`
}

// Default returns the parameters of a humanoid walker.
func Default() Params {
	return Params{
		ContactTolerance:  0.05,
		SkinWidth:         0.01,
		StepFraction:      0.35,
		SupportFraction:   0.6,
		RaycastLength:     1,
		StepSlope:         math32.Cos(math32.Pi / 4),
		FootHeight:        0.1,
		AscendSpeed:       2,
		MaxSpeed:          6,
		GravityFactor:     1,
		AirDamping:        0.2,
		WaterMinHeight:    0.2,
		WaterMaxHeight:    1.2,
		WaterDepth:        2,
		Buoyancy:          3,
		WaterDamping:      0.5,
		ClimbDamping:      0.5,
		AngularSpeed:      2 * math32.Pi,
		NavArriveDistance: 0.25,
		MaxIterations:     4,
		MaxContacts:       16,
		Flags:             Flags{CanSwim: true},
		Masks: Masks{
			Terrain: world.LayerTerrain,
			Water:   world.LayerWater,
			Dynamic: world.LayerDynamic,
			Climb:   world.LayerClimbable,
		},
	}
}

// Validate checks that every parameter is within its range.
func (p Params) Validate() error {
	fraction := func(name string, v float32) error {
		if v < 0 || v > 1 || math32.IsNaN(v) {
			return oerror.Newk(oerror.KindInvalidParams, "settings: %s must be within [0, 1], got %v", name, v)
		}
		return nil
	}
	positive := func(name string, v float32) error {
		if !(v > 0) || math32.IsInf(v, 0) {
			return oerror.Newk(oerror.KindInvalidParams, "settings: %s must be positive, got %v", name, v)
		}
		return nil
	}
	nonNegative := func(name string, v float32) error {
		if !(v >= 0) || math32.IsInf(v, 0) {
			return oerror.Newk(oerror.KindInvalidParams, "settings: %s must not be negative, got %v", name, v)
		}
		return nil
	}

	checks := []error{
		positive("contact_tolerance", p.ContactTolerance),
		positive("skin_width", p.SkinWidth),
		fraction("step_fraction", p.StepFraction),
		fraction("support_fraction", p.SupportFraction),
		positive("raycast_length", p.RaycastLength),
		fraction("step_slope", p.StepSlope),
		nonNegative("foot_height", p.FootHeight),
		nonNegative("ascend_speed", p.AscendSpeed),
		positive("max_speed", p.MaxSpeed),
		nonNegative("gravity_factor", p.GravityFactor),
		fraction("air_damping", p.AirDamping),
		nonNegative("water_min_height", p.WaterMinHeight),
		positive("water_max_height", p.WaterMaxHeight),
		positive("water_depth", p.WaterDepth),
		nonNegative("buoyancy", p.Buoyancy),
		fraction("water_damping", p.WaterDamping),
		fraction("climb_damping", p.ClimbDamping),
		positive("angular_speed", p.AngularSpeed),
		nonNegative("nav_arrive_distance", p.NavArriveDistance),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if p.StepFraction > p.SupportFraction {
		return oerror.Newk(oerror.KindInvalidParams, "settings: step_fraction %v exceeds support_fraction %v", p.StepFraction, p.SupportFraction)
	}
	if p.WaterMinHeight >= p.WaterDepth {
		return oerror.Newk(oerror.KindInvalidParams, "settings: water_min_height %v must be below water_depth %v", p.WaterMinHeight, p.WaterDepth)
	}
	if p.SkinWidth >= p.ContactTolerance {
		return oerror.Newk(oerror.KindInvalidParams, "settings: skin_width %v must be below contact_tolerance %v", p.SkinWidth, p.ContactTolerance)
	}
	if p.MaxIterations < 1 {
		return oerror.Newk(oerror.KindInvalidParams, "settings: max_iterations must be at least 1, got %d", p.MaxIterations)
	}
	if p.MaxContacts < 1 {
		return oerror.Newk(oerror.KindInvalidParams, "settings: max_contacts must be at least 1, got %d", p.MaxContacts)
	}
	return nil
}

// Table maps archetype names to their parameters.
type Table map[string]Params

// DefaultTable returns a table holding only the "default" archetype.
func DefaultTable() Table {
	return Table{"default": Default()}
}

// Lookup returns the parameters of the named archetype.
func (t Table) Lookup(name string) (Params, error) {
	p, ok := t[name]
	if !ok {
		return Params{}, oerror.Newk(oerror.KindUnknownArchetype, "settings: unknown archetype %q", name)
	}
	return p, nil
}

// Validate validates every archetype in name order so the first reported error is stable.
func (t Table) Validate() error {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := t[name].Validate(); err != nil {
			return oerror.Wrap(oerror.KindInvalidParams, err, "archetype %q", name)
		}
	}
	return nil
}
