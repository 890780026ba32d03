package errors

import "fmt"

// Constructors for the diagnostics the IR builder can produce.

func UndefinedVariable(name string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedVariable,
		Message:  fmt.Sprintf("cannot find variable `%s` in this scope", name),
		Position: pos,
		Length:   len(name),
		HelpText: "variables must be introduced with `let` or as parameters before use",
	}
}

func UndefinedFunction(name string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedFunction,
		Message:  fmt.Sprintf("cannot find function `%s` in this module", name),
		Position: pos,
		Length:   len(name),
		HelpText: "callees must be defined in the module or declared with `extern fn`",
	}
}

func ArityMismatch(name string, want, got int, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorArityMismatch,
		Message:  fmt.Sprintf("function `%s` takes %d argument(s) but %d were supplied", name, want, got),
		Position: pos,
		Length:   len(name),
	}
}

func DuplicateDeclaration(name string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorDuplicateDeclaration,
		Message:  fmt.Sprintf("`%s` is defined multiple times", name),
		Position: pos,
		Length:   len(name),
	}
}

func MissingReturn(fn string, pos Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorMissingReturn,
		Message:  fmt.Sprintf("function `%s` can fall off the end without returning", fn),
		Position: pos,
		Length:   len(fn),
		Notes:    []string{"every control-flow path must end in a `return`"},
	}
}
