package pipeline

// BuildFunc produces the zeroth-stage artifact for a unit. It is supplied
// by the external builder; caching raw builds is the builder's own
// responsibility, not the pipeline's.
type BuildFunc func(UnitID) *Cell

// Providers is the host-side resolver table this pipeline registers into.
type Providers struct {
	FinalArtifact   func(UnitID) *Cell
	PassSetArtifact func(PassSetID, UnitID) *Cell
	PassArtifact    func(PassSetID, PassIndex, UnitID) *Cell
}

// Engine resolves pipeline queries demand-first: a request for a stage
// recursively guarantees every earlier stage is cached, running each pass
// exactly once.
type Engine struct {
	registry *Registry
	cache    *Cache
	build    BuildFunc
	units    map[UnitID]SourceInfo
}

// NewEngine wires a load-time-fixed registry, the external builder, and the
// table of locally defined units into an engine with a fresh session cache.
func NewEngine(registry *Registry, build BuildFunc, units map[UnitID]SourceInfo) *Engine {
	return &Engine{
		registry: registry,
		cache:    NewCache(),
		build:    build,
		units:    units,
	}
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) Cache() *Cache {
	return e.cache
}

// Provide registers the engine's three resolvers into the host's table.
func (e *Engine) Provide(p *Providers) {
	p.FinalArtifact = e.FinalArtifact
	p.PassSetArtifact = e.PassSetArtifact
	p.PassArtifact = e.PassArtifact
}

// FinalArtifact returns the unit's fully optimized IR. After the last pass
// set resolves there ought to be no more changes to the IR; a pass that
// stole the artifact and never released it is caught here.
func (e *Engine) FinalArtifact(unit UnitID) *Cell {
	if e.registry.NumSets() == 0 {
		panic(&EmptyPassSetError{Set: -1, Unit: unit})
	}
	last := PassSetID(e.registry.NumSets() - 1)
	cell := e.PassSetArtifact(last, unit)
	if cell.ExclusiveHeld() {
		panic(&FinalizationError{
			Unit:  unit,
			Set:   last,
			Index: PassIndex(e.registry.NumPasses(last) - 1),
		})
	}
	return cell
}

// PassSetArtifact returns the unit's IR after the whole pass set has run.
func (e *Engine) PassSetArtifact(set PassSetID, unit UnitID) *Cell {
	n := e.registry.NumPasses(set)
	if n == 0 {
		panic(&EmptyPassSetError{Set: set, Unit: unit})
	}
	return e.PassArtifact(set, PassIndex(n-1), unit)
}

// PassArtifact returns the unit's IR after one specific pass, computing it
// (and, transitively, every earlier uncached stage) on first demand.
func (e *Engine) PassArtifact(set PassSetID, index PassIndex, unit UnitID) *Cell {
	key := Key{Set: set, Index: index, Unit: unit}
	return e.cache.GetOrCompute(key, func() *Cell {
		return e.runPass(set, index, unit)
	})
}

func (e *Engine) runPass(set PassSetID, index PassIndex, unit UnitID) *Cell {
	pass := e.registry.Pass(set, index)
	cx := &Context{engine: e, set: set, index: index, unit: unit}

	// The input stage is resolved before the before-hooks fire and before
	// the pass starts, so earlier stages never nest inside later ones and
	// hooks observe stages in ascending pipeline order.
	cx.prev = e.resolvePrevious(set, index, unit)

	for _, h := range e.registry.Hooks() {
		h.OnPass(cx, nil)
	}

	cell := pass.Run(cx)
	cell.adopt(cx.Key())

	if hooks := e.registry.Hooks(); len(hooks) > 0 {
		ref := cell.Borrow()
		for _, h := range hooks {
			h.OnPass(cx, ref)
		}
		ref.Release()
	}

	return cell
}

// resolvePrevious walks backward one step: the previous pass in the same
// set, or the last pass of the previous set, or the external builder at
// the very start.
func (e *Engine) resolvePrevious(set PassSetID, index PassIndex, unit UnitID) *Cell {
	switch {
	case index > 0:
		return e.PassArtifact(set, index-1, unit)
	case set > 0:
		return e.PassSetArtifact(set-1, unit)
	default:
		return e.build(unit)
	}
}
