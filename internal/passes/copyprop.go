package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// CopyProp rewrites every use of a copied value to the copy's ultimate
// source, leaving the copy instructions themselves dead for deadcode.
//
// Unlike the stealing passes it reads the previous artifact and publishes
// a transformed clone in a fresh cell, so the input stage stays intact.
type CopyProp struct{}

func (p *CopyProp) Name() string {
	return "copyprop"
}

func (p *CopyProp) Description() string {
	return "Replaces uses of copies with their source values"
}

func (p *CopyProp) Run(cx *pipeline.Context) *pipeline.Cell {
	ref := cx.ReadPrevious()
	fn := ref.Function().Clone()
	ref.Release()

	src := make(map[*ir.Value]*ir.Value)
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			if c, ok := inst.(*ir.Copy); ok {
				src[c.Dest] = c.Src
			}
		}
	}

	// Copy chains are acyclic in SSA, so resolution terminates.
	resolve := func(v *ir.Value) *ir.Value {
		for {
			s, ok := src[v]
			if !ok {
				return v
			}
			v = s
		}
	}

	rewriteOperands(fn, resolve)
	return pipeline.NewCell(cx.Key(), fn)
}
