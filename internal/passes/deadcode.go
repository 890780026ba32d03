package passes

import (
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

// DeadCode removes blocks unreachable from the entry and instructions
// whose results are never used. Calls are kept unconditionally; they may
// have side effects the IR does not model.
type DeadCode struct{}

func (p *DeadCode) Name() string {
	return "deadcode"
}

func (p *DeadCode) Description() string {
	return "Removes unreachable blocks and unused instructions"
}

func (p *DeadCode) Run(cx *pipeline.Context) *pipeline.Cell {
	cell := cx.StealPrevious()
	mut := cell.BorrowMut()
	defer mut.Release()

	fn := mut.Function()
	removeUnreachableBlocks(fn)
	removeUnusedInstructions(fn)
	return cell
}

func removeUnreachableBlocks(fn *ir.Function) {
	entry := fn.Entry()
	if entry == nil {
		return
	}

	reachable := make(map[*ir.BasicBlock]bool)
	var mark func(*ir.BasicBlock)
	mark = func(b *ir.BasicBlock) {
		if reachable[b] {
			return
		}
		reachable[b] = true
		if b.Terminator != nil {
			for _, succ := range b.Terminator.Successors() {
				mark(succ)
			}
		}
	}
	mark(entry)

	kept := fn.Blocks[:0]
	for _, block := range fn.Blocks {
		if reachable[block] {
			kept = append(kept, block)
		}
	}
	fn.Blocks = kept

	// Dropped blocks may still appear as phi incomings.
	for _, block := range fn.Blocks {
		for i, inst := range block.Instructions {
			phi, ok := inst.(*ir.Phi)
			if !ok {
				continue
			}
			live := phi.Incomings[:0]
			for _, in := range phi.Incomings {
				if reachable[in.Block] {
					live = append(live, in)
				}
			}
			phi.Incomings = live
			if len(phi.Incomings) == 1 {
				block.Instructions[i] = &ir.Copy{Dest: phi.Dest, Src: phi.Incomings[0].Value}
			}
		}
	}
}

func removeUnusedInstructions(fn *ir.Function) {
	for changed := true; changed; {
		changed = false

		used := make(map[*ir.Value]bool)
		for _, block := range fn.Blocks {
			for _, inst := range block.Instructions {
				for _, op := range inst.Operands() {
					used[op] = true
				}
			}
			if block.Terminator != nil {
				for _, op := range block.Terminator.Operands() {
					used[op] = true
				}
			}
		}

		for _, block := range fn.Blocks {
			kept := block.Instructions[:0]
			for _, inst := range block.Instructions {
				if keepInstruction(inst, used) {
					kept = append(kept, inst)
				} else {
					changed = true
				}
			}
			block.Instructions = kept
		}
	}
}

func keepInstruction(inst ir.Instruction, used map[*ir.Value]bool) bool {
	if _, ok := inst.(*ir.Call); ok {
		return true
	}
	r := inst.Result()
	return r == nil || used[r]
}
