package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// SimplifyBranches replaces branches on constant conditions with direct
// jumps. The untaken arm becomes unreachable and is left for deadcode.
type SimplifyBranches struct{}

func (p *SimplifyBranches) Name() string {
	return "simplify-branches"
}

func (p *SimplifyBranches) Description() string {
	return "Replaces branches on constant conditions with direct jumps"
}

func (p *SimplifyBranches) Run(cx *pipeline.Context) *pipeline.Cell {
	cell := cx.StealPrevious()
	mut := cell.BorrowMut()
	defer mut.Release()

	fn := mut.Function()
	consts := literals(fn)
	for _, block := range fn.Blocks {
		br, ok := block.Terminator.(*ir.Branch)
		if !ok {
			continue
		}
		lit, ok := consts[br.Cond]
		if !ok || lit.Kind != ir.LitBool {
			continue
		}
		target := br.False
		if lit.Bool {
			target = br.True
		}
		block.Terminator = &ir.Jump{Target: target}
	}
	return cell
}
