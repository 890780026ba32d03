package ir

// Clone deep-copies a function: fresh blocks, fresh values, fresh
// instructions, with all internal references remapped. Passes that read
// the previous stage instead of stealing it transform a clone.
func (f *Function) Clone() *Function {
	out := &Function{Name: f.Name, NextID: f.NextID}

	values := make(map[*Value]*Value)
	cloneValue := func(v *Value) *Value {
		if v == nil {
			return nil
		}
		if c, ok := values[v]; ok {
			return c
		}
		c := &Value{ID: v.ID, Name: v.Name}
		values[v] = c
		return c
	}

	for _, param := range f.Params {
		out.Params = append(out.Params, cloneValue(param))
	}

	blocks := make(map[*BasicBlock]*BasicBlock, len(f.Blocks))
	for _, block := range f.Blocks {
		clone := &BasicBlock{Label: block.Label}
		blocks[block] = clone
		out.Blocks = append(out.Blocks, clone)
	}

	for _, block := range f.Blocks {
		clone := blocks[block]
		for _, inst := range block.Instructions {
			clone.Instructions = append(clone.Instructions, cloneInstruction(inst, cloneValue, blocks))
		}
		if block.Terminator != nil {
			clone.Terminator = cloneTerminator(block.Terminator, cloneValue, blocks)
		}
	}
	return out
}

func cloneInstruction(inst Instruction, val func(*Value) *Value, blocks map[*BasicBlock]*BasicBlock) Instruction {
	switch i := inst.(type) {
	case *Const:
		return &Const{Dest: val(i.Dest), Val: i.Val}
	case *Binary:
		return &Binary{Dest: val(i.Dest), Op: i.Op, Left: val(i.Left), Right: val(i.Right)}
	case *Unary:
		return &Unary{Dest: val(i.Dest), Op: i.Op, Operand: val(i.Operand)}
	case *Copy:
		return &Copy{Dest: val(i.Dest), Src: val(i.Src)}
	case *Call:
		args := make([]*Value, len(i.Args))
		for j, a := range i.Args {
			args[j] = val(a)
		}
		return &Call{Dest: val(i.Dest), Callee: i.Callee, Args: args}
	case *Phi:
		incomings := make([]Incoming, len(i.Incomings))
		for j, in := range i.Incomings {
			incomings[j] = Incoming{Block: blocks[in.Block], Value: val(in.Value)}
		}
		return &Phi{Dest: val(i.Dest), Incomings: incomings}
	}
	return inst
}

func cloneTerminator(term Terminator, val func(*Value) *Value, blocks map[*BasicBlock]*BasicBlock) Terminator {
	switch t := term.(type) {
	case *Return:
		return &Return{Value: val(t.Value)}
	case *Jump:
		return &Jump{Target: blocks[t.Target]}
	case *Branch:
		return &Branch{Cond: val(t.Cond), True: blocks[t.True], False: blocks[t.False]}
	}
	return term
}
