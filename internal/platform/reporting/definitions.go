package reporting

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed reports.yaml
var definitionsYAML []byte

// Definition is a predefined report backed by a single SQL query.
type Definition struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Parameters  []string `yaml:"parameters" json:"parameters,omitempty"`
	SQL         string   `yaml:"sql" json:"-"`
	Columns     []Column `yaml:"columns" json:"columns"`
}

// Catalog holds report definitions in file order.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

// LoadCatalog parses the embedded report definitions.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(definitionsYAML)
}

// ParseCatalog parses report definitions from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file struct {
		Reports []Definition `yaml:"reports"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse report definitions: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(file.Reports))}
	for _, d := range file.Reports {
		switch {
		case d.ID == "":
			return nil, fmt.Errorf("report definition %q has no id", d.Title)
		case d.ID == "dashboard" || d.ID == "age-distribution":
			return nil, fmt.Errorf("report id %q is reserved", d.ID)
		case d.SQL == "":
			return nil, fmt.Errorf("report %q has no sql", d.ID)
		case len(d.Columns) == 0:
			return nil, fmt.Errorf("report %q has no columns", d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate report id %q", d.ID)
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// All returns every definition in file order.
func (c *Catalog) All() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Find looks up a definition by id.
func (c *Catalog) Find(id string) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}
