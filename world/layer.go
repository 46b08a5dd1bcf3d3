package world

import (
	"encoding/json"

	"github.com/oomph-ac/agentsim/oerror"
)

// Layer is a bit set of collision layers. A body belongs to one or more layers and queries select bodies by layer.
type Layer uint32

const (
	LayerTerrain Layer = 1 << iota
	LayerWater
	LayerDynamic
	LayerClimbable
	LayerAgent

	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// Has reports whether l shares at least one bit with other.
func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

// Filter describes the layers a body belongs to and the layers it collides with.
type Filter struct {
	Belongs  Layer
	Collides Layer
}

// Matches reports whether a body with this filter is selected by a query mask.
func (f Filter) Matches(mask Layer) bool {
	return f.Belongs&mask != 0
}

var layerNames = []struct {
	name  string
	layer Layer
}{
	{"terrain", LayerTerrain},
	{"water", LayerWater},
	{"dynamic", LayerDynamic},
	{"climbable", LayerClimbable},
	{"agent", LayerAgent},
}

// ParseLayers returns the union of the named layers.
func ParseLayers(names ...string) (Layer, error) {
	var l Layer
	for _, name := range names {
		found := false
		for _, n := range layerNames {
			if n.name == name {
				l |= n.layer
				found = true
				break
			}
		}
		if !found {
			return 0, oerror.Newk(oerror.KindInvalidParams, "world: unknown layer %q", name)
		}
	}
	return l, nil
}

// Names returns the names of the known layers set in l.
func (l Layer) Names() []string {
	var names []string
	for _, n := range layerNames {
		if l&n.layer != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

// UnmarshalJSON accepts either a raw bit mask or a list of layer names.
func (l *Layer) UnmarshalJSON(b []byte) error {
	var raw uint32
	if err := json.Unmarshal(b, &raw); err == nil {
		*l = Layer(raw)
		return nil
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return oerror.Wrap(oerror.KindInvalidParams, err, "world: layer must be a number or a list of names")
	}
	parsed, err := ParseLayers(names...)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
