package pipeline

import "fmt"

// Pass is a single named transformation over a unit's IR. A pass obtains
// its input through the context, either by reading or by stealing the
// previous stage's artifact, and returns the cell holding its output.
//
// A pass may call ReadPrevious any number of times but must release every
// guard before returning. It may steal at most once: a second exclusive
// acquisition of an already-exclusive cell is fatal.
type Pass interface {
	Name() string
	Description() string
	Run(cx *Context) *Cell
}

// Hook observes pass execution. OnPass is called immediately before each
// pass with a nil view, and immediately after it with a shared read view of
// the produced artifact. Hooks fire for every stage actually computed,
// including stages computed transitively on behalf of a deeper request, in
// ascending pipeline order. Hooks are instrumentation, not control flow.
type Hook interface {
	OnPass(cx *Context, view *Ref)
}

// PassSet is an ordered group of passes applied as a unit.
type PassSet struct {
	Name   string
	Passes []Pass
}

// Registry is the load-time-fixed pipeline configuration: an ordered list
// of pass sets and an ordered list of hooks. It is populated once, before
// the first query, and never extended afterwards.
type Registry struct {
	sets  []PassSet
	hooks []Hook
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddSet appends a pass set. Empty sets are representable; demanding an
// artifact from one fails with EmptyPassSetError at query time.
func (r *Registry) AddSet(name string, passes ...Pass) {
	r.sets = append(r.sets, PassSet{Name: name, Passes: passes})
}

// AddHook appends a hook. Hooks are notified in registration order.
func (r *Registry) AddHook(h Hook) {
	r.hooks = append(r.hooks, h)
}

func (r *Registry) NumSets() int {
	return len(r.sets)
}

func (r *Registry) NumPasses(set PassSetID) int {
	return len(r.sets[set].Passes)
}

func (r *Registry) SetName(set PassSetID) string {
	return r.sets[set].Name
}

func (r *Registry) Pass(set PassSetID, index PassIndex) Pass {
	return r.sets[set].Passes[index]
}

func (r *Registry) Hooks() []Hook {
	return r.hooks
}

// Sets returns the configured layout for display purposes.
func (r *Registry) Sets() []PassSet {
	return r.sets
}

func (r *Registry) String() string {
	s := ""
	for i, set := range r.sets {
		s += fmt.Sprintf("set %d (%s):", i, set.Name)
		for _, p := range set.Passes {
			s += " " + p.Name()
		}
		s += "\n"
	}
	return s
}
