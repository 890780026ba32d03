package pipeline

// Context is the capability object handed to a running pass: the identity
// of the current stage plus accessors for the previous stage's artifact and
// the unit being compiled.
type Context struct {
	engine *Engine
	set    PassSetID
	index  PassIndex
	unit   UnitID

	// prev is the previous stage's cell, resolved by the engine before the
	// pass starts running.
	prev *Cell
}

func (cx *Context) Unit() UnitID {
	return cx.unit
}

func (cx *Context) PassSet() PassSetID {
	return cx.set
}

func (cx *Context) PassIndex() PassIndex {
	return cx.index
}

// Key is the pipeline key of the stage being computed.
func (cx *Context) Key() Key {
	return Key{Set: cx.set, Index: cx.index, Unit: cx.unit}
}

// Pass is the pass being run, for instrumentation.
func (cx *Context) Pass() Pass {
	return cx.engine.registry.Pass(cx.set, cx.index)
}

// Source returns site metadata for the unit. Only locally defined units
// have pipeline history; requesting source info for any other unit panics
// with *NonLocalUnitError.
func (cx *Context) Source() SourceInfo {
	info, ok := cx.engine.units[cx.unit]
	if !ok {
		panic(&NonLocalUnitError{Unit: cx.unit, Set: cx.set, Index: cx.index})
	}
	return info
}

// ReadPrevious acquires a shared read on the previous stage's artifact.
// The caller must release the guard before returning.
func (cx *Context) ReadPrevious() *Ref {
	return cx.StealPrevious().Borrow()
}

// StealPrevious hands over the previous stage's cell: the previous pass in
// this set, or the last pass of the previous set, or the external builder
// at the very start. The engine resolves it before the pass starts, so
// this never recurses mid-pass. The caller becomes the owner of the cell's
// storage and may mutate it in place under an exclusive borrow; once
// stolen, the superseded key must not be read again.
func (cx *Context) StealPrevious() *Cell {
	return cx.prev
}
