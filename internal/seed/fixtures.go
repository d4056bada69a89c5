// Package seed populates a development database with demo feed content.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var fixturesRaw []byte

// Fixtures holds the hand-curated seed vocabulary; gofakeit fills in the
// rest.
type Fixtures struct {
	Tags       []string `yaml:"tags"`
	Moderators []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"moderators"`
	FlagReasons []string `yaml:"flag_reasons"`
}

// LoadFixtures parses the embedded fixture file.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesRaw, &f); err != nil {
		return nil, fmt.Errorf("parsing seed fixtures: %w", err)
	}
	if len(f.Tags) == 0 {
		return nil, fmt.Errorf("seed fixtures define no tags")
	}
	return &f, nil
}
