package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/internal/config"
	"lumen/internal/errors"
	"lumen/internal/ir"
	"lumen/internal/passes"
	"lumen/internal/pipeline"
)

const program = `module main {
	extern fn print(x: int);

	fn add(a: int, b: int): int {
		return a + b;
	}

	fn answer(): int {
		return 6 * 7;
	}
}`

type countingHook struct {
	before, after int
}

func (h *countingHook) OnPass(cx *pipeline.Context, view *pipeline.Ref) {
	if view == nil {
		h.before++
	} else {
		h.after++
	}
}

func TestSessionCompilesAndOptimizes(t *testing.T) {
	session, err := NewSession("test.lm", program)
	require.NoError(t, err)
	assert.False(t, session.HasErrors())

	assert.Equal(t, []pipeline.UnitID{"main::add", "main::answer"}, session.Units())

	cell := session.Optimize(UnitID("main", "answer"))
	cell.WithBorrow(func(fn *ir.Function) {
		assert.Contains(t, ir.Print(fn), "const 42", "the default pipeline folds constants")
	})

	assert.Same(t, cell, session.Optimize(UnitID("main", "answer")),
		"optimizing the same unit twice yields the same artifact")
}

func TestSessionOptimizeAll(t *testing.T) {
	session, err := NewSession("test.lm", program)
	require.NoError(t, err)

	cells := session.OptimizeAll()
	require.Len(t, cells, 2)
	for unit, cell := range cells {
		assert.True(t, cell.Free(), "no borrow outstanding on %s", unit)
	}
}

func TestSessionRunsEachPassOncePerUnit(t *testing.T) {
	hook := &countingHook{}
	session, err := NewSession("test.lm", program, WithHooks(hook))
	require.NoError(t, err)

	session.Optimize(UnitID("main", "answer"))
	session.Optimize(UnitID("main", "answer"))

	// The default pipeline runs five passes; memoization keeps it at five.
	assert.Equal(t, 5, hook.before)
	assert.Equal(t, 5, hook.after)
	assert.Equal(t, 5, session.Engine().Cache().Len())

	session.Optimize(UnitID("main", "add"))
	assert.Equal(t, 10, hook.before, "a second unit runs its own pipeline")
	assert.Equal(t, 10, session.Engine().Cache().Len())
}

func TestSessionSourceInfo(t *testing.T) {
	session, err := NewSession("test.lm", program)
	require.NoError(t, err)

	// Extern declarations are not units: only fn bodies enter the pipeline.
	units := session.Units()
	assert.NotContains(t, units, pipeline.UnitID("main::print"))
}

func TestSessionParseError(t *testing.T) {
	_, err := NewSession("test.lm", `module main { fn f( }`)
	require.Error(t, err)
}

func TestSessionCollectsDiagnostics(t *testing.T) {
	session, err := NewSession("test.lm", `module main {
	fn f(): int {
		return missing;
	}
}`)
	require.NoError(t, err, "lowering problems are diagnostics, not hard errors")
	assert.True(t, session.HasErrors())
	require.NotEmpty(t, session.Diagnostics())
	assert.Equal(t, errors.ErrorUndefinedVariable, session.Diagnostics()[0].Code)
}

func TestSessionRejectsUnknownPassName(t *testing.T) {
	cfg := &config.Config{PassSets: []config.PassSetConfig{
		{Name: "broken", Passes: []string{"not-a-pass"}},
	}}

	_, err := NewSession("test.lm", program, WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pass")
}

func TestSessionEmptyPassSetFailsAtQueryTime(t *testing.T) {
	cfg := &config.Config{PassSets: []config.PassSetConfig{{Name: "empty"}}}

	session, err := NewSession("test.lm", program, WithConfig(cfg))
	require.NoError(t, err, "an empty set is accepted at configuration time")

	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		session.Optimize(UnitID("main", "add"))
	}()
	emptyErr, ok := recovered.(*pipeline.EmptyPassSetError)
	require.True(t, ok, "expected *pipeline.EmptyPassSetError, got %v", recovered)
	assert.Equal(t, pipeline.PassSetID(0), emptyErr.Set)
}

func TestSessionWithRegistry(t *testing.T) {
	registry := pipeline.NewRegistry()
	registry.AddSet("only", passes.Catalog()["deadcode"]())

	session, err := NewSession("test.lm", program, WithRegistry(registry))
	require.NoError(t, err)

	cell := session.Optimize(UnitID("main", "add"))
	assert.Equal(t, pipeline.Key{Set: 0, Index: 0, Unit: "main::add"}, cell.Key())
}

func TestSessionMultipleModules(t *testing.T) {
	session, err := NewSession("test.lm", `module a {
	fn f(): int {
		return 1;
	}
}

module b {
	fn g(): int {
		return 2;
	}
}`)
	require.NoError(t, err)
	assert.Equal(t, []pipeline.UnitID{"a::f", "b::g"}, session.Units())
	require.Len(t, session.Modules(), 2)
}
