package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a subgraph configuration file from path, then
// validates it (spec.md §9 Open Question #3: a malformed configuration is
// always reported as an error, never silently skipped). The caller's own
// startup code is still responsible for everything spec.md §1 scopes out
// of the core — locating the file, watching it for changes, wiring the
// parsed data sources to live connections — this is only the
// YAML-to-struct half, grounded on the teacher's own
// contrib/graphql.LoadGQLGenConfig.
func Load(path string) (Subgraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Subgraph{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var s Subgraph
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Subgraph{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Subgraph{}, err
	}

	return s, nil
}
