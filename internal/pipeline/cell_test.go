package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumen/internal/ir"
)

func testFunction(name string) *ir.Function {
	fn := &ir.Function{Name: name}
	v := fn.NewValue("")
	fn.Blocks = []*ir.BasicBlock{{
		Label:        "entry",
		Instructions: []ir.Instruction{&ir.Const{Dest: v, Val: ir.IntLit(1)}},
		Terminator:   &ir.Return{Value: v},
	}}
	return fn
}

// recoverValue runs f, requires that it panics, and returns the panic value.
func recoverValue(t *testing.T, f func()) interface{} {
	t.Helper()
	var v interface{}
	func() {
		defer func() { v = recover() }()
		f()
	}()
	require.NotNil(t, v, "expected a panic")
	return v
}

func TestCellSharedBorrowsStack(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))

	a := cell.Borrow()
	b := cell.Borrow()
	assert.False(t, cell.Free())
	assert.Same(t, a.Function(), b.Function())

	a.Release()
	assert.False(t, cell.Free(), "cell still has one reader")
	b.Release()
	assert.True(t, cell.Free())
}

func TestCellExclusiveBorrow(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))

	mut := cell.BorrowMut()
	assert.True(t, cell.ExclusiveHeld())
	mut.Function().Name = "renamed"
	mut.Release()

	assert.True(t, cell.Free())
	cell.WithBorrow(func(fn *ir.Function) {
		assert.Equal(t, "renamed", fn.Name, "mutation is visible to later readers")
	})
}

func TestCellSharedBorrowWhileExclusive(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	mut := cell.BorrowMut()
	defer mut.Release()

	err, ok := recoverValue(t, func() { cell.Borrow() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "shared borrow", err.Op)
	assert.Equal(t, "exclusively borrowed", err.State)
	assert.Equal(t, BuildKey("main::f"), err.Key)
}

func TestCellExclusiveBorrowWhileShared(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	ref := cell.Borrow()
	defer ref.Release()

	err, ok := recoverValue(t, func() { cell.BorrowMut() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "exclusive borrow", err.Op)
	assert.Equal(t, "shared", err.State)
}

func TestCellStealTwice(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	mut := cell.BorrowMut()
	defer mut.Release()

	err, ok := recoverValue(t, func() { cell.BorrowMut() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "exclusive borrow", err.Op)
	assert.Equal(t, "exclusively borrowed", err.State)
}

func TestRefDoubleRelease(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	ref := cell.Borrow()
	ref.Release()

	err, ok := recoverValue(t, func() { ref.Release() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "double release", err.Op)
}

func TestMutRefDoubleRelease(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	mut := cell.BorrowMut()
	mut.Release()

	err, ok := recoverValue(t, func() { mut.Release() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "double release", err.Op)
}

func TestRefUseAfterRelease(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	ref := cell.Borrow()
	ref.Release()

	err, ok := recoverValue(t, func() { ref.Function() }).(*BorrowError)
	require.True(t, ok, "expected *BorrowError")
	assert.Equal(t, "read through released guard", err.Op)
}

func TestWithBorrowReleasesOnPanic(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))

	recoverValue(t, func() {
		cell.WithBorrow(func(fn *ir.Function) { panic("boom") })
	})
	assert.True(t, cell.Free(), "borrow must be released on the panic path")
}

func TestCellAdoptRepublishes(t *testing.T) {
	cell := NewCell(BuildKey("main::f"), testFunction("f"))
	assert.Equal(t, BuildKey("main::f"), cell.Key())

	next := Key{Set: 0, Index: 0, Unit: "main::f"}
	cell.adopt(next)
	assert.Equal(t, next, cell.Key())
}
