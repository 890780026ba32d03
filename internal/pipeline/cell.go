package pipeline

import (
	"sync"

	"lumen/internal/ir"
)

type borrowState int

const (
	stateFree borrowState = iota
	stateShared
	stateExclusive
)

func (s borrowState) String() string {
	switch s {
	case stateFree:
		return "free"
	case stateShared:
		return "shared"
	case stateExclusive:
		return "exclusively borrowed"
	}
	return "invalid"
}

// Cell holds one IR snapshot and enforces the borrow discipline at runtime:
// a cell is either free, shared by n readers, or exclusively held by one
// writer. Violations panic with *BorrowError; they are never tolerated
// silently. Exactly one cell exists per pipeline key, though a stealing
// pass republishes its input cell under its own key.
type Cell struct {
	mu      sync.Mutex
	state   borrowState
	readers int
	key     Key
	fn      *ir.Function
}

// NewCell wraps fn in a free cell published under key.
func NewCell(key Key, fn *ir.Function) *Cell {
	return &Cell{key: key, fn: fn}
}

func (c *Cell) Key() Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// adopt republishes the cell under a later key. A stolen artifact is a
// fresh logical artifact even when it reuses this cell's storage.
func (c *Cell) adopt(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
}

// Borrow acquires a shared read on the cell. It panics if an exclusive
// borrow is outstanding. Callers must Release the returned guard on every
// exit path; prefer WithBorrow where the scope is a single function.
func (c *Cell) Borrow() *Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateExclusive {
		panic(&BorrowError{Key: c.key, Op: "shared borrow", State: c.state.String()})
	}
	c.state = stateShared
	c.readers++
	return &Ref{cell: c}
}

// BorrowMut acquires exclusive ownership of the cell. Only a free cell can
// be exclusively borrowed.
func (c *Cell) BorrowMut() *MutRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateFree {
		panic(&BorrowError{Key: c.key, Op: "exclusive borrow", State: c.state.String()})
	}
	c.state = stateExclusive
	return &MutRef{cell: c}
}

// WithBorrow runs f under a shared borrow, releasing it on every exit path
// including panics.
func (c *Cell) WithBorrow(f func(*ir.Function)) {
	ref := c.Borrow()
	defer ref.Release()
	f(ref.Function())
}

// Free reports whether no borrow is outstanding.
func (c *Cell) Free() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateFree
}

// ExclusiveHeld reports whether an exclusive borrow is outstanding.
func (c *Cell) ExclusiveHeld() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateExclusive
}

func (c *Cell) releaseShared() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateShared {
		panic(&BorrowError{Key: c.key, Op: "shared release", State: c.state.String()})
	}
	c.readers--
	if c.readers == 0 {
		c.state = stateFree
	}
}

func (c *Cell) releaseExclusive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateExclusive {
		panic(&BorrowError{Key: c.key, Op: "exclusive release", State: c.state.String()})
	}
	c.state = stateFree
}

// Ref is a shared read guard. The IR must not be mutated through it.
type Ref struct {
	cell     *Cell
	released bool
}

func (r *Ref) Function() *ir.Function {
	if r.released {
		panic(&BorrowError{Key: r.cell.Key(), Op: "read through released guard", State: "released"})
	}
	return r.cell.fn
}

func (r *Ref) Release() {
	if r.released {
		panic(&BorrowError{Key: r.cell.Key(), Op: "double release", State: "released"})
	}
	r.released = true
	r.cell.releaseShared()
}

// MutRef is an exclusive write guard.
type MutRef struct {
	cell     *Cell
	released bool
}

func (m *MutRef) Function() *ir.Function {
	if m.released {
		panic(&BorrowError{Key: m.cell.Key(), Op: "write through released guard", State: "released"})
	}
	return m.cell.fn
}

func (m *MutRef) Release() {
	if m.released {
		panic(&BorrowError{Key: m.cell.Key(), Op: "double release", State: "released"})
	}
	m.released = true
	m.cell.releaseExclusive()
}
