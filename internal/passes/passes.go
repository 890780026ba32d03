// Package passes contains the IR transformations the optimization pipeline
// runs, plus the catalog that lets a pipeline configuration refer to them
// by name.
package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// Catalog maps configuration names to pass constructors.
func Catalog() map[string]func() pipeline.Pass {
	return map[string]func() pipeline.Pass{
		"simplify-branches": func() pipeline.Pass { return &SimplifyBranches{} },
		"instcombine":       func() pipeline.Pass { return &InstCombine{} },
		"constfold":         func() pipeline.Pass { return &ConstFold{} },
		"copyprop":          func() pipeline.Pass { return &CopyProp{} },
		"deadcode":          func() pipeline.Pass { return &DeadCode{} },
	}
}

// DefaultRegistry is the stock pipeline layout: canonicalize the lowered
// IR first, then optimize it.
func DefaultRegistry(hooks ...pipeline.Hook) *pipeline.Registry {
	r := pipeline.NewRegistry()
	r.AddSet("canonicalize", &SimplifyBranches{}, &InstCombine{})
	r.AddSet("optimize", &ConstFold{}, &CopyProp{}, &DeadCode{})
	for _, h := range hooks {
		r.AddHook(h)
	}
	return r
}

// literals collects every value defined by a const instruction.
func literals(fn *ir.Function) map[*ir.Value]ir.Literal {
	consts := make(map[*ir.Value]ir.Literal)
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			if c, ok := inst.(*ir.Const); ok {
				consts[c.Dest] = c.Val
			}
		}
	}
	return consts
}

// definitions maps every value to its defining instruction.
func definitions(fn *ir.Function) map[*ir.Value]ir.Instruction {
	defs := make(map[*ir.Value]ir.Instruction)
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			if r := inst.Result(); r != nil {
				defs[r] = inst
			}
		}
	}
	return defs
}

// rewriteOperands applies subst to every value reference in the function,
// terminators and phi incomings included. Definitions are left alone.
func rewriteOperands(fn *ir.Function, subst func(*ir.Value) *ir.Value) {
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			switch i := inst.(type) {
			case *ir.Binary:
				i.Left = subst(i.Left)
				i.Right = subst(i.Right)
			case *ir.Unary:
				i.Operand = subst(i.Operand)
			case *ir.Copy:
				i.Src = subst(i.Src)
			case *ir.Call:
				for j, a := range i.Args {
					i.Args[j] = subst(a)
				}
			case *ir.Phi:
				for j := range i.Incomings {
					i.Incomings[j].Value = subst(i.Incomings[j].Value)
				}
			}
		}
		switch t := block.Terminator.(type) {
		case *ir.Return:
			if t.Value != nil {
				t.Value = subst(t.Value)
			}
		case *ir.Branch:
			t.Cond = subst(t.Cond)
		}
	}
}
