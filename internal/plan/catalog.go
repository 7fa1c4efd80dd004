package plan

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default_plans.yaml
var defaultPlans []byte

type catalogFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// Catalog is a validated, read-only set of templates.
type Catalog struct {
	templates map[string]Template
}

// NewCatalog validates every template and requires a standard one.
func NewCatalog(templates map[string]Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for name, t := range templates {
		t.Name = name
		if err := t.Validate(); err != nil {
			return nil, err
		}
		c.templates[name] = t
	}
	if _, ok := c.templates[StandardTemplate]; !ok {
		return nil, ErrNoStandardTemplate
	}
	return c, nil
}

// ParseCatalog reads a YAML document of the form `templates: {name: {tasks, milestones}}`.
// Unknown fields are rejected.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidTemplate, err)
	}
	return NewCatalog(f.Templates)
}

// LoadCatalog reads templates from path, or the built-in set when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan templates: %w", err)
	}
	defer f.Close()

	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog returns the templates shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(defaultPlans))
}

func (c *Catalog) Lookup(name string) (Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
