package config

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownPreset is returned by GetPreset for names not in Presets.
var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Description string
	Apply       func(c *Config)
}

var Presets = map[string]Preset{
	"default": {
		Description: "ferromagnet near the ordering temperature with slow drift",
		Apply:       func(c *Config) {},
	},
	"ordered": {
		Description: "cold ferromagnet that settles into one domain",
		Apply: func(c *Config) {
			c.Temperature = 0.5
			c.DriftStep = 0.02
		},
	},
	"paramagnet": {
		Description: "hot system, magnetization hovers around zero",
		Apply: func(c *Config) {
			c.Temperature = 4.5
		},
	},
	"antiferro": {
		Description: "negative coupling on a frustrated neighbour graph",
		Apply: func(c *Config) {
			c.Coupling = -1
			c.Temperature = 0.8
		},
	},
	"biased": {
		Description: "external field pulls the spins up",
		Apply: func(c *Config) {
			c.Temperature = 2
			c.Field = 1.5
		},
	},
	"free": {
		Description: "no coupling and no field, every flip is accepted",
		Apply: func(c *Config) {
			c.Coupling = 0
			c.Field = 0
			c.DriftStep = 0
		},
	},
	"ternary": {
		Description: "spins in {-1, 0, +1}",
		Apply: func(c *Config) {
			c.TernaryMode = true
		},
	},
	"large": {
		Description: "two thousand nodes on the k-d tree search",
		Apply: func(c *Config) {
			c.NumNodes = 2000
			c.BoxSize = 60
			c.NeighborSearch = "kdtree"
		},
	},
}

// GetPreset returns a fresh config with the named preset applied to the
// defaults.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPreset, "%q", name)
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	return cfg, nil
}

// ListPresets returns the preset names in alphabetical order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
