package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile holds the catalog badges and promotion templates applied at
// startup. Seeding is idempotent: badges match by name, templates by
// path/from/to step.
type SeedFile struct {
	CatalogBadges []SeedCatalogBadge `yaml:"catalog_badges"`
	Templates     []SeedTemplate     `yaml:"templates"`
}

// SeedCatalogBadge is one catalog badge definition in the seed file.
type SeedCatalogBadge struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Level       string `yaml:"level"`
}

// SeedTemplate is one promotion template definition in the seed file.
type SeedTemplate struct {
	Path      string     `yaml:"path"`
	FromLevel string     `yaml:"from_level"`
	Rules     []SeedRule `yaml:"rules"`
}

// SeedRule is one rule line of a seeded template.
type SeedRule struct {
	Category string `yaml:"category"`
	Level    string `yaml:"level"`
	Count    int    `yaml:"count"`
}

// LoadSeed parses the seed file at path.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}
