package errors

// Error codes for the Lumen compiler. Codes keep diagnostics identifiable
// across the toolchain and in documentation.
//
// Error code ranges:
// E0001-E0099: Lowering errors
// E0100-E0199: Parser errors
// E0900-E0999: Reserved for tooling errors

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0002: Callee resolution errors
	ErrorUndefinedFunction = "E0002"

	// E0003: Call arity errors
	ErrorArityMismatch = "E0003"

	// E0004: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0004"

	// E0005: Missing return on a fall-through path
	ErrorMissingReturn = "E0005"
)
