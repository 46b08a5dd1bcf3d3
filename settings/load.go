package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oomph-ac/agentsim/oerror"
	"github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("archetypes.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// document is the layout of an archetype file.
type document struct {
	Archetypes Table `json:"archetypes" toml:"archetypes" yaml:"archetypes"`
}

// Load reads an archetype table from a TOML (.toml) or YAML (.yaml, .yml) file. Every archetype starts from Default
// and overrides the fields present in the file. The file is checked against the archetype schema before it is
// decoded and every archetype is validated afterwards.
func Load(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: read %s", path)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes an archetype table. ext selects the format and is either ".toml", ".yaml" or ".yml".
func Parse(raw []byte, ext string) (Table, error) {
	var generic map[string]any
	switch strings.ToLower(ext) {
	case ".toml":
		tree, err := toml.LoadBytes(raw)
		if err != nil {
			return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: decode toml")
		}
		generic = tree.ToMap()
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: decode yaml")
		}
	default:
		return nil, oerror.Newk(oerror.KindInvalidParams, "settings: unsupported file extension %q", ext)
	}
	return fromGeneric(generic)
}

// fromGeneric validates a decoded document against the schema and turns it into a Table. The document is passed
// through JSON so that TOML and YAML share the schema and the field tags.
func fromGeneric(generic map[string]any) (Table, error) {
	encoded, err := json.Marshal(generic)
	if err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: encode document")
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: re-decode document")
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: compile schema")
	}
	if err := s.Validate(instance); err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: schema")
	}

	var doc struct {
		Archetypes map[string]json.RawMessage `json:"archetypes"`
	}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: decode archetypes")
	}
	table := make(Table, len(doc.Archetypes))
	for name, rawParams := range doc.Archetypes {
		p := Default()
		dec := json.NewDecoder(bytes.NewReader(rawParams))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, oerror.Wrap(oerror.KindInvalidParams, err, "settings: archetype %q", name)
		}
		table[name] = p
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Save writes the table to path in the format selected by its extension.
func Save(path string, table Table) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		out, err = toml.Marshal(document{Archetypes: table})
	case ".yaml", ".yml":
		out, err = yaml.Marshal(document{Archetypes: table})
	default:
		return oerror.Newk(oerror.KindInvalidParams, "settings: unsupported file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return oerror.Wrap(oerror.KindInvalidParams, err, "settings: encode %s", path)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return oerror.Wrap(oerror.KindInvalidParams, err, "settings: write %s", path)
	}
	return nil
}
