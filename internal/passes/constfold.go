package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// ConstFold evaluates instructions whose operands are all compile-time
// constants and replaces them with const instructions. Known values are
// propagated through copies in the same sweep, so chains fold in one run.
type ConstFold struct{}

func (p *ConstFold) Name() string {
	return "constfold"
}

func (p *ConstFold) Description() string {
	return "Evaluates constant expressions at compile time"
}

func (p *ConstFold) Run(cx *pipeline.Context) *pipeline.Cell {
	cell := cx.StealPrevious()
	mut := cell.BorrowMut()
	defer mut.Release()

	fn := mut.Function()
	consts := make(map[*ir.Value]ir.Literal)

	for _, block := range fn.Blocks {
		for i, inst := range block.Instructions {
			switch in := inst.(type) {
			case *ir.Const:
				consts[in.Dest] = in.Val
			case *ir.Copy:
				if lit, ok := consts[in.Src]; ok {
					consts[in.Dest] = lit
				}
			case *ir.Unary:
				if lit, ok := foldUnary(in, consts); ok {
					block.Instructions[i] = &ir.Const{Dest: in.Dest, Val: lit}
					consts[in.Dest] = lit
				}
			case *ir.Binary:
				if lit, ok := foldBinary(in, consts); ok {
					block.Instructions[i] = &ir.Const{Dest: in.Dest, Val: lit}
					consts[in.Dest] = lit
				}
			}
		}
	}
	return cell
}

func foldUnary(in *ir.Unary, consts map[*ir.Value]ir.Literal) (ir.Literal, bool) {
	lit, ok := consts[in.Operand]
	if !ok {
		return ir.Literal{}, false
	}
	switch {
	case in.Op == "neg" && lit.Kind == ir.LitInt:
		return ir.IntLit(-lit.Int), true
	case in.Op == "not" && lit.Kind == ir.LitBool:
		return ir.BoolLit(!lit.Bool), true
	}
	return ir.Literal{}, false
}

func foldBinary(in *ir.Binary, consts map[*ir.Value]ir.Literal) (ir.Literal, bool) {
	left, ok := consts[in.Left]
	if !ok {
		return ir.Literal{}, false
	}
	right, ok := consts[in.Right]
	if !ok {
		return ir.Literal{}, false
	}

	if left.Kind == ir.LitInt && right.Kind == ir.LitInt {
		a, b := left.Int, right.Int
		switch in.Op {
		case "+":
			return ir.IntLit(a + b), true
		case "-":
			return ir.IntLit(a - b), true
		case "*":
			return ir.IntLit(a * b), true
		case "/":
			if b != 0 {
				return ir.IntLit(a / b), true
			}
		case "%":
			if b != 0 {
				return ir.IntLit(a % b), true
			}
		case "==":
			return ir.BoolLit(a == b), true
		case "!=":
			return ir.BoolLit(a != b), true
		case "<":
			return ir.BoolLit(a < b), true
		case "<=":
			return ir.BoolLit(a <= b), true
		case ">":
			return ir.BoolLit(a > b), true
		case ">=":
			return ir.BoolLit(a >= b), true
		}
		return ir.Literal{}, false
	}

	if left.Kind == ir.LitBool && right.Kind == ir.LitBool {
		a, b := left.Bool, right.Bool
		switch in.Op {
		case "&&":
			return ir.BoolLit(a && b), true
		case "||":
			return ir.BoolLit(a || b), true
		case "==":
			return ir.BoolLit(a == b), true
		case "!=":
			return ir.BoolLit(a != b), true
		}
	}
	return ir.Literal{}, false
}
