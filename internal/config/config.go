// Package config loads pipeline layouts: which pass sets exist, in what
// order, and which passes each one runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lumen/internal/pipeline"
)

// Config describes a pipeline layout.
//
//	pass_sets:
//	  - name: canonicalize
//	    passes: [simplify-branches, instcombine]
//	  - name: optimize
//	    passes: [constfold, copyprop, deadcode]
type Config struct {
	PassSets []PassSetConfig `yaml:"pass_sets"`
}

// PassSetConfig is one ordered group of passes. An empty pass list is
// representable on purpose: the engine rejects it at query time, which is
// where misconfiguration is defined to surface.
type PassSetConfig struct {
	Name   string   `yaml:"name"`
	Passes []string `yaml:"passes"`
}

// Default is the stock two-set layout.
func Default() *Config {
	return &Config{
		PassSets: []PassSetConfig{
			{Name: "canonicalize", Passes: []string{"simplify-branches", "instcombine"}},
			{Name: "optimize", Passes: []string{"constfold", "copyprop", "deadcode"}},
		},
	}
}

// Load reads a layout from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a layout from YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if len(cfg.PassSets) == 0 {
		return nil, fmt.Errorf("invalid pipeline config: no pass sets")
	}
	return &cfg, nil
}

// Registry instantiates the layout against a pass catalog. Unknown pass
// names are configuration errors and reported before anything runs.
func (c *Config) Registry(catalog map[string]func() pipeline.Pass, hooks ...pipeline.Hook) (*pipeline.Registry, error) {
	r := pipeline.NewRegistry()
	for _, set := range c.PassSets {
		passes := make([]pipeline.Pass, 0, len(set.Passes))
		for _, name := range set.Passes {
			construct, ok := catalog[name]
			if !ok {
				return nil, fmt.Errorf("unknown pass %q in set %q", name, set.Name)
			}
			passes = append(passes, construct())
		}
		r.AddSet(set.Name, passes...)
	}
	for _, h := range hooks {
		r.AddHook(h)
	}
	return r, nil
}
