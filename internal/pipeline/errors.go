package pipeline

import "fmt"

// Every violation in this package is a programming-invariant break, not a
// recoverable runtime condition. All four error types below are used as
// panic values; none is ever returned. They implement error so callers that
// recover at a unit boundary can log them with full diagnostic context.

// EmptyPassSetError reports a pass set configured with zero passes, or a
// registry configured with zero pass sets (Set is negative). Either way it
// is a static configuration bug and aborts before any pass runs.
type EmptyPassSetError struct {
	Set  PassSetID
	Unit UnitID
}

func (e *EmptyPassSetError) Error() string {
	if e.Set < 0 {
		return fmt.Sprintf("pipeline: no pass sets configured (requested for %s)", e.Unit)
	}
	return fmt.Sprintf("pipeline: no passes in set %d (requested for %s)", e.Set, e.Unit)
}

// NonLocalUnitError reports a source-info request for a unit that has no
// local definition.
type NonLocalUnitError struct {
	Unit  UnitID
	Set   PassSetID
	Index PassIndex
}

func (e *NonLocalUnitError) Error() string {
	return fmt.Sprintf("pipeline: source info requires a locally defined unit, got %s (set %d, pass %d)",
		e.Unit, e.Set, e.Index)
}

// BorrowError reports a violation of the cell borrow discipline: exclusive
// acquisition while any borrow is held, shared acquisition while an
// exclusive borrow is held, or release of a guard that was already released.
type BorrowError struct {
	Key   Key
	Op    string
	State string
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("pipeline: %s on %s cell %s", e.Op, e.State, e.Key)
}

// FinalizationError reports an outstanding exclusive borrow on an artifact
// at the moment it is declared final: some pass stole the artifact and
// never relinquished ownership.
type FinalizationError struct {
	Unit  UnitID
	Set   PassSetID
	Index PassIndex
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("pipeline: final artifact of %s still exclusively borrowed after set %d, pass %d",
		e.Unit, e.Set, e.Index)
}
