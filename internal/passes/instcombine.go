package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// InstCombine rewrites instructions into cheaper equivalents: arithmetic
// identities become copies, annihilators become constants, and doubled
// negations cancel. It never removes instructions; deadcode sweeps up the
// values that lose their last use.
type InstCombine struct{}

func (p *InstCombine) Name() string {
	return "instcombine"
}

func (p *InstCombine) Description() string {
	return "Folds algebraic identities into copies and constants"
}

func (p *InstCombine) Run(cx *pipeline.Context) *pipeline.Cell {
	cell := cx.StealPrevious()
	mut := cell.BorrowMut()
	defer mut.Release()

	fn := mut.Function()
	consts := literals(fn)
	defs := definitions(fn)

	for _, block := range fn.Blocks {
		for i, inst := range block.Instructions {
			switch in := inst.(type) {
			case *ir.Binary:
				if repl := combineBinary(in, consts); repl != nil {
					block.Instructions[i] = repl
				}
			case *ir.Unary:
				// neg(neg(x)) and not(not(x)) cancel.
				if inner, ok := defs[in.Operand].(*ir.Unary); ok && inner.Op == in.Op {
					block.Instructions[i] = &ir.Copy{Dest: in.Dest, Src: inner.Operand}
				}
			}
		}
	}
	return cell
}

func combineBinary(in *ir.Binary, consts map[*ir.Value]ir.Literal) ir.Instruction {
	left, leftConst := intConst(in.Left, consts)
	right, rightConst := intConst(in.Right, consts)

	switch in.Op {
	case "+":
		if leftConst && left == 0 {
			return &ir.Copy{Dest: in.Dest, Src: in.Right}
		}
		if rightConst && right == 0 {
			return &ir.Copy{Dest: in.Dest, Src: in.Left}
		}
	case "-":
		if rightConst && right == 0 {
			return &ir.Copy{Dest: in.Dest, Src: in.Left}
		}
	case "*":
		if leftConst && left == 1 {
			return &ir.Copy{Dest: in.Dest, Src: in.Right}
		}
		if rightConst && right == 1 {
			return &ir.Copy{Dest: in.Dest, Src: in.Left}
		}
		if (leftConst && left == 0) || (rightConst && right == 0) {
			return &ir.Const{Dest: in.Dest, Val: ir.IntLit(0)}
		}
	case "/":
		if rightConst && right == 1 {
			return &ir.Copy{Dest: in.Dest, Src: in.Left}
		}
	}
	return nil
}

func intConst(v *ir.Value, consts map[*ir.Value]ir.Literal) (int64, bool) {
	lit, ok := consts[v]
	if !ok || lit.Kind != ir.LitInt {
		return 0, false
	}
	return lit.Int, true
}
