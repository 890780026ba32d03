// Package driver wires the frontend, the IR builder, and the optimization
// pipeline into one compilation session.
package driver

import (
	"fmt"
	"sort"
	"sync"

	"lumen/grammar"
	"lumen/internal/config"
	"lumen/internal/errors"
	"lumen/internal/ir"
	"lumen/internal/passes"
	"lumen/internal/pipeline"
)

type options struct {
	registry *pipeline.Registry
	cfg      *config.Config
	hooks    []pipeline.Hook
}

type Option func(*options)

// WithRegistry supplies a fully built registry, bypassing configuration.
func WithRegistry(r *pipeline.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithConfig builds the registry from a pipeline layout.
func WithConfig(c *config.Config) Option {
	return func(o *options) { o.cfg = c }
}

// WithHooks adds instrumentation hooks in order.
func WithHooks(hooks ...pipeline.Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// Session is one compilation of one source file: parsed modules, lowered
// units, and the pipeline engine that optimizes them on demand.
type Session struct {
	path    string
	source  string
	modules []*ir.Module
	diags   []errors.CompilerError

	functions map[pipeline.UnitID]*ir.Function
	units     map[pipeline.UnitID]pipeline.SourceInfo

	engine    *pipeline.Engine
	providers pipeline.Providers

	// Raw builds are the builder's artifacts, cached on the builder side;
	// the pipeline cache only ever holds post-pass stages.
	mu       sync.Mutex
	rawCells map[pipeline.UnitID]*pipeline.Cell
}

// NewSession parses and lowers source, then wires the engine. A parse
// failure is returned as an error; lowering problems are collected as
// diagnostics and leave the session usable for the units that did lower.
func NewSession(path, source string, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	program, err := grammar.ParseSource(path, source)
	if err != nil {
		return nil, err
	}

	s := &Session{
		path:      path,
		source:    source,
		functions: make(map[pipeline.UnitID]*ir.Function),
		units:     make(map[pipeline.UnitID]pipeline.SourceInfo),
		rawCells:  make(map[pipeline.UnitID]*pipeline.Cell),
	}

	for _, mod := range program.Modules {
		lowered, diags := ir.BuildModule(mod)
		s.modules = append(s.modules, lowered)
		s.diags = append(s.diags, diags...)

		for _, decl := range mod.Decls {
			if decl.Function == nil {
				continue
			}
			unit := UnitID(mod.Name, decl.Function.Name)
			s.functions[unit] = lowered.Function(decl.Function.Name)
			s.units[unit] = pipeline.SourceInfo{
				Unit:   unit,
				File:   path,
				Line:   decl.Function.Pos.Line,
				Column: decl.Function.Pos.Column,
			}
		}
	}

	registry := o.registry
	if registry == nil {
		cfg := o.cfg
		if cfg == nil {
			cfg = config.Default()
		}
		registry, err = cfg.Registry(passes.Catalog(), o.hooks...)
		if err != nil {
			return nil, err
		}
	} else {
		for _, h := range o.hooks {
			registry.AddHook(h)
		}
	}

	s.engine = pipeline.NewEngine(registry, s.buildInitial, s.units)
	s.engine.Provide(&s.providers)
	return s, nil
}

// UnitID names one function as a pipeline unit.
func UnitID(module, function string) pipeline.UnitID {
	return pipeline.UnitID(fmt.Sprintf("%s::%s", module, function))
}

func (s *Session) Diagnostics() []errors.CompilerError {
	return s.diags
}

func (s *Session) HasErrors() bool {
	for _, d := range s.diags {
		if d.Level == errors.Error {
			return true
		}
	}
	return false
}

func (s *Session) Modules() []*ir.Module {
	return s.modules
}

func (s *Session) Engine() *pipeline.Engine {
	return s.engine
}

// Units lists every locally defined unit in stable order.
func (s *Session) Units() []pipeline.UnitID {
	units := make([]pipeline.UnitID, 0, len(s.units))
	for u := range s.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })
	return units
}

// Optimize resolves a unit's fully optimized IR through the provider table.
func (s *Session) Optimize(unit pipeline.UnitID) *pipeline.Cell {
	return s.providers.FinalArtifact(unit)
}

// OptimizeAll optimizes every local unit.
func (s *Session) OptimizeAll() map[pipeline.UnitID]*pipeline.Cell {
	out := make(map[pipeline.UnitID]*pipeline.Cell, len(s.units))
	for _, unit := range s.Units() {
		out[unit] = s.Optimize(unit)
	}
	return out
}

func (s *Session) buildInitial(unit pipeline.UnitID) *pipeline.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cell, ok := s.rawCells[unit]; ok {
		return cell
	}
	fn, ok := s.functions[unit]
	if !ok {
		panic(&pipeline.NonLocalUnitError{Unit: unit})
	}
	cell := pipeline.NewCell(pipeline.BuildKey(unit), fn)
	s.rawCells[unit] = cell
	return cell
}
