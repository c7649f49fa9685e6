package scramble

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Catalog is the static game content: the station map and the pool of
// challenge templates. It is loaded once at startup and never mutated.
type Catalog struct {
	Stations  []Station           `yaml:"stations"`
	Templates []ChallengeTemplate `yaml:"challenges"`
}

// LoadCatalog parses and validates the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(rawCatalog, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return &c, nil
}

// Validate checks internal consistency: unique station names, known lines,
// and templates that reference existing stations and lines they serve.
func (c *Catalog) Validate() error {
	byName := make(map[string]Station, len(c.Stations))
	for _, st := range c.Stations {
		if st.Name == "" {
			return fmt.Errorf("station with empty name")
		}
		if _, dup := byName[st.Name]; dup {
			return fmt.Errorf("duplicate station %q", st.Name)
		}
		if len(st.Lines) == 0 {
			return fmt.Errorf("station %q serves no lines", st.Name)
		}
		for _, l := range st.Lines {
			if !l.Valid() {
				return fmt.Errorf("station %q: unknown line %q", st.Name, l)
			}
		}
		byName[st.Name] = st
	}

	for _, t := range c.Templates {
		if t.Title == "" {
			return fmt.Errorf("challenge with empty title at station %q", t.Station)
		}
		st, ok := byName[t.Station]
		if !ok {
			return fmt.Errorf("challenge %q references unknown station %q", t.Title, t.Station)
		}
		for _, l := range t.Lines {
			if !st.HasLine(l) {
				return fmt.Errorf("challenge %q: station %q is not on line %q", t.Title, t.Station, l)
			}
		}
	}

	// Every (station, line) pair must have at least one candidate, otherwise
	// the first unlock there can never succeed.
	for _, st := range c.Stations {
		for _, l := range st.Lines {
			if len(c.TemplatesFor(st.Name, l)) == 0 {
				return fmt.Errorf("no challenge templates for station %q line %q", st.Name, l)
			}
		}
	}

	return nil
}

// StationByName looks up a station in the catalog.
func (c *Catalog) StationByName(name string) (Station, bool) {
	for _, st := range c.Stations {
		if st.Name == name {
			return st, true
		}
	}
	return Station{}, false
}

// TemplatesFor returns the candidate pool for a (station, line) key.
func (c *Catalog) TemplatesFor(station string, line Line) []ChallengeTemplate {
	var out []ChallengeTemplate
	for _, t := range c.Templates {
		if t.Station == station && t.matchesLine(line) {
			out = append(out, t)
		}
	}
	return out
}
