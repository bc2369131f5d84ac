package statement

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is a canonical statement column.
type Field string

const (
	FieldDate            Field = "date"
	FieldIncome          Field = "income"
	FieldExpense         Field = "expense"
	FieldDescription     Field = "description"
	FieldDescriptionFull Field = "description_full"
)

// Profile describes one bank export format as data: which header labels map to
// which canonical field, which fields must be present, and the hint shown to
// the user when the header row cannot be found.
type Profile struct {
	Name       string             `yaml:"name"`
	HeaderHint string             `yaml:"header_hint"`
	Fields     map[Field][]string `yaml:"fields"`
	Required   []Field            `yaml:"required"`
}

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// DefaultProfile is the bank profile used when none is configured.
const DefaultProfile = "fineco"

// DefaultProfiles returns the embedded profile table.
func DefaultProfiles() (map[string]Profile, error) {
	return decodeProfiles(defaultProfilesYAML)
}

// LoadProfiles reads a profile table from a YAML file. An empty path returns
// the embedded defaults.
func LoadProfiles(path string) (map[string]Profile, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultProfiles()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return decodeProfiles(data)
}

func decodeProfiles(data []byte) (map[string]Profile, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	out := make(map[string]Profile, len(doc.Profiles))
	for _, p := range doc.Profiles {
		p = p.normalized()
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := out[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		out[p.Name] = p
	}
	return out, nil
}

// normalized lowercases and trims every label so matching can compare directly
// against normalized cell text.
func (p Profile) normalized() Profile {
	fields := make(map[Field][]string, len(p.Fields))
	for f, labels := range p.Fields {
		norm := make([]string, 0, len(labels))
		for _, l := range labels {
			if l = normalizeLabel(l); l != "" {
				norm = append(norm, l)
			}
		}
		fields[f] = norm
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Fields = fields
	return p
}

func (p Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile without name")
	}
	if len(p.Fields[FieldDate]) == 0 {
		return fmt.Errorf("profile %q: no labels for %s", p.Name, FieldDate)
	}
	for _, f := range p.Required {
		if len(p.Fields[f]) == 0 {
			return fmt.Errorf("profile %q: required field %s has no labels", p.Name, f)
		}
	}
	return nil
}

// Label returns the primary label of a field, used in user-facing messages.
func (p Profile) Label(f Field) string {
	if labels := p.Fields[f]; len(labels) > 0 {
		return labels[0]
	}
	return string(f)
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
