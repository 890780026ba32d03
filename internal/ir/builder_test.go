package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/grammar"
	"lumen/internal/errors"
)

func lowerSource(t *testing.T, source string) (*Module, []errors.CompilerError) {
	t.Helper()
	program, err := grammar.ParseSource("test.lm", source)
	require.NoError(t, err)
	require.Len(t, program.Modules, 1)
	return BuildModule(program.Modules[0])
}

func TestLowerSimpleFunction(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(x: int): int {
		return x;
	}
}`)
	assert.Empty(t, diags)

	fn := module.Function("f")
	require.NotNil(t, fn)
	out := Print(fn)
	assert.Contains(t, out, "fn f(%x) {")
	assert.Contains(t, out, "ret %x")
}

func TestLowerOperatorPrecedence(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(): int {
		return 2 + 3 * 4;
	}
}`)
	assert.Empty(t, diags)

	out := Print(module.Function("f"))
	assert.Contains(t, out, "%v3 = %v1 * %v2", "multiplication binds tighter")
	assert.Contains(t, out, "%v4 = %v0 + %v3")
	assert.Contains(t, out, "ret %v4")
}

func TestLowerParensOverridePrecedence(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(): int {
		return (2 + 3) * 4;
	}
}`)
	assert.Empty(t, diags)

	out := Print(module.Function("f"))
	assert.Contains(t, out, "%v2 = %v0 + %v1")
	assert.Contains(t, out, "%v4 = %v2 * %v3")
}

func TestLowerIfMergesWithPhi(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(c: bool): int {
		let y = 0;
		if c {
			y = 1;
		} else {
			y = 2;
		}
		return y;
	}
}`)
	assert.Empty(t, diags)

	out := Print(module.Function("f"))
	assert.Contains(t, out, "br %c, then0, else1")
	assert.Contains(t, out, "%y = phi [then0:")
	assert.Contains(t, out, "ret %y")
}

func TestLowerIfWithoutElse(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(c: bool): int {
		let y = 0;
		if c {
			y = 1;
		}
		return y;
	}
}`)
	assert.Empty(t, diags)

	out := Print(module.Function("f"))
	assert.Contains(t, out, "br %c, then0, join1")
	assert.Contains(t, out, "phi [then0:", "the untaken path merges the outer value")
}

func TestLowerBothArmsReturn(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(c: bool): int {
		if c {
			return 1;
		} else {
			return 2;
		}
	}
}`)
	assert.Empty(t, diags, "a function whose if covers every path needs no trailing return")

	out := Print(module.Function("f"))
	assert.NotContains(t, out, "join", "control never rejoins")
}

func TestLowerVariablesIntroducedInArmGoOutOfScope(t *testing.T) {
	_, diags := lowerSource(t, `module main {
	fn f(c: bool): int {
		if c {
			let y = 1;
		}
		return y;
	}
}`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUndefinedVariable, diags[0].Code)
}

func TestLowerCallsResolveForwardReferences(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(): int {
		return g(1);
	}

	fn g(x: int): int {
		return x;
	}
}`)
	assert.Empty(t, diags, "callees later in the module resolve")

	out := Print(module.Function("f"))
	assert.Contains(t, out, "call g(%v0)")
}

func TestLowerDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{
			name: "undefined variable",
			source: `module main {
	fn f(): int {
		return x;
	}
}`,
			code: errors.ErrorUndefinedVariable,
		},
		{
			name: "undefined function",
			source: `module main {
	fn f(): int {
		return g();
	}
}`,
			code: errors.ErrorUndefinedFunction,
		},
		{
			name: "arity mismatch",
			source: `module main {
	extern fn g(x: int): int;
	fn f(): int {
		return g(1, 2);
	}
}`,
			code: errors.ErrorArityMismatch,
		},
		{
			name: "duplicate declaration",
			source: `module main {
	fn f(): int {
		return 1;
	}
	fn f(): int {
		return 2;
	}
}`,
			code: errors.ErrorDuplicateDeclaration,
		},
		{
			name: "missing return",
			source: `module main {
	fn f(): int {
		let x = 1;
	}
}`,
			code: errors.ErrorMissingReturn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := lowerSource(t, tt.source)
			require.NotEmpty(t, diags)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.Equal(t, errors.Error, diags[0].Level)
			assert.Positive(t, diags[0].Position.Line)
		})
	}
}

func TestLowerProcedureGetsImplicitReturn(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	extern fn log(x: int);
	fn f() {
		log(1);
	}
}`)
	assert.Empty(t, diags, "functions without a return type may fall off the end")
	assert.Contains(t, Print(module.Function("f")), "ret\n")
}

func TestLowerUnreachableStatementsDropped(t *testing.T) {
	module, diags := lowerSource(t, `module main {
	fn f(): int {
		return 1;
		return 2;
	}
}`)
	assert.Empty(t, diags)
	assert.NotContains(t, Print(module.Function("f")), "const 2")
}
