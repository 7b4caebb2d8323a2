package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadCatalog reads extra personas from a YAML file of the form
//
//	personas:
//	  - id: bard
//	    name: The Bard
//	    avatar: https://...
func LoadCatalog(path string) ([]Persona, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse persona catalog %s: %w", path, err)
	}

	for i, p := range file.Personas {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("persona catalog %s: entry %d has no id", path, i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("persona catalog %s: persona %q has no name", path, p.ID)
		}
	}
	return file.Personas, nil
}
