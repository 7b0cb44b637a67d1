package repository

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"govready/internal/model"
)

// LoadCatalogFile reads a catalog from YAML. Question positions default to
// file order so resolution keeps the authored order.
func LoadCatalogFile(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document
func ParseCatalog(data []byte) (*model.Catalog, error) {
	var c model.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Version == "" {
		return nil, fmt.Errorf("catalog has no version")
	}

	for i := range c.Questions {
		if c.Questions[i].Position == 0 {
			c.Questions[i].Position = i + 1
		}
	}
	for i := range c.Personas {
		for j := range c.Personas[i].SubPersonas {
			if c.Personas[i].SubPersonas[j].PersonaID == "" {
				c.Personas[i].SubPersonas[j].PersonaID = c.Personas[i].ID
			}
		}
	}
	c.LoadedAt = time.Now()
	return &c, nil
}
