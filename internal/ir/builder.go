package ir

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"lumen/grammar"
	"lumen/internal/errors"
)

// Builder lowers parsed functions to IR. One builder serves one module: it
// carries the module-level callee table so calls resolve against both local
// functions and externs, including forward references.
type Builder struct {
	arity map[string]int
	diags []errors.CompilerError

	fn      *Function
	block   *BasicBlock
	blockID int
	vars    map[string]*Value
}

// NewBuilder collects the module's callable signatures. Duplicate
// declarations are reported here, before any function is lowered.
func NewBuilder(m *grammar.Module) *Builder {
	b := &Builder{arity: make(map[string]int)}
	for _, decl := range m.Decls {
		switch {
		case decl.Extern != nil:
			b.declare(decl.Extern.Name, len(decl.Extern.Params), decl.Extern.Pos)
		case decl.Function != nil:
			b.declare(decl.Function.Name, len(decl.Function.Params), decl.Function.Pos)
		}
	}
	return b
}

func (b *Builder) declare(name string, arity int, pos lexer.Position) {
	if _, ok := b.arity[name]; ok {
		b.diags = append(b.diags, errors.DuplicateDeclaration(name, position(pos)))
		return
	}
	b.arity[name] = arity
}

// Diagnostics returns everything reported so far, declaration checks
// included.
func (b *Builder) Diagnostics() []errors.CompilerError {
	return b.diags
}

// BuildModule lowers every function of a parsed module.
func BuildModule(m *grammar.Module) (*Module, []errors.CompilerError) {
	b := NewBuilder(m)
	module := &Module{Name: m.Name}
	for _, decl := range m.Decls {
		switch {
		case decl.Extern != nil:
			module.Externs = append(module.Externs, &Extern{
				Name:  decl.Extern.Name,
				Arity: len(decl.Extern.Params),
			})
		case decl.Function != nil:
			module.Functions = append(module.Functions, b.LowerFunction(decl.Function))
		}
	}
	return module, b.diags
}

// LowerFunction lowers one function body to a fresh IR function.
func (b *Builder) LowerFunction(decl *grammar.FuncDecl) *Function {
	b.fn = &Function{Name: decl.Name}
	b.blockID = 0
	b.vars = make(map[string]*Value)

	for _, p := range decl.Params {
		v := b.fn.NewValue(p.Name)
		b.fn.Params = append(b.fn.Params, v)
		b.vars[p.Name] = v
	}

	b.block = b.newBlock("entry")
	b.lowerStmts(decl.Body.Stmts)

	if b.block.Terminator == nil {
		if decl.Return != nil {
			b.diags = append(b.diags, errors.MissingReturn(decl.Name, position(decl.Pos)))
		}
		b.block.Terminator = &Return{}
	}
	return b.fn
}

func (b *Builder) newBlock(kind string) *BasicBlock {
	label := kind
	if kind != "entry" {
		label = fmt.Sprintf("%s%d", kind, b.blockID)
		b.blockID++
	}
	block := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, block)
	return block
}

func (b *Builder) emit(inst Instruction) {
	b.block.Instructions = append(b.block.Instructions, inst)
}

func (b *Builder) lowerStmts(stmts []*grammar.Stmt) {
	for _, s := range stmts {
		if b.block.Terminator != nil {
			// Statements after a return are unreachable; drop them here
			// rather than emitting blocks no terminator ever reaches.
			return
		}
		b.lowerStmt(s)
	}
}

func (b *Builder) lowerStmt(s *grammar.Stmt) {
	switch {
	case s.Let != nil:
		src := b.lowerExpr(s.Let.Expr)
		dest := b.fn.NewValue(s.Let.Name)
		b.emit(&Copy{Dest: dest, Src: src})
		b.vars[s.Let.Name] = dest
	case s.Assign != nil:
		if _, ok := b.vars[s.Assign.Target]; !ok {
			b.diags = append(b.diags, errors.UndefinedVariable(s.Assign.Target, position(s.Assign.Pos)))
		}
		src := b.lowerExpr(s.Assign.Value)
		dest := b.fn.NewValue("")
		b.emit(&Copy{Dest: dest, Src: src})
		b.vars[s.Assign.Target] = dest
	case s.Return != nil:
		var v *Value
		if s.Return.Expr != nil {
			v = b.lowerExpr(s.Return.Expr)
		}
		b.block.Terminator = &Return{Value: v}
	case s.If != nil:
		b.lowerIf(s.If)
	case s.Expr != nil:
		b.lowerExpr(s.Expr.Expr)
	}
}

func (b *Builder) lowerIf(s *grammar.IfStmt) {
	cond := b.lowerExpr(s.Cond)
	condBlock := b.block
	saved := copyVars(b.vars)

	thenBlock := b.newBlock("then")
	b.block = thenBlock
	b.lowerStmts(s.Then.Stmts)
	thenEnd, thenVars := b.block, b.vars

	var elseBlock, elseEnd *BasicBlock
	elseVars := saved
	if s.Else != nil {
		b.vars = copyVars(saved)
		elseBlock = b.newBlock("else")
		b.block = elseBlock
		b.lowerStmts(s.Else.Stmts)
		elseEnd, elseVars = b.block, b.vars
	}

	thenReaches := thenEnd.Terminator == nil
	elseReaches := elseBlock == nil || elseEnd.Terminator == nil

	if !thenReaches && !elseReaches {
		// Both arms returned; control never rejoins, so there is no join
		// block and anything after the if is unreachable.
		condBlock.Terminator = &Branch{Cond: cond, True: thenBlock, False: elseBlock}
		b.block = thenEnd
		b.vars = saved
		return
	}

	join := b.newBlock("join")

	if elseBlock != nil {
		condBlock.Terminator = &Branch{Cond: cond, True: thenBlock, False: elseBlock}
	} else {
		condBlock.Terminator = &Branch{Cond: cond, True: thenBlock, False: join}
		elseEnd = condBlock
	}
	if thenReaches {
		thenEnd.Terminator = &Jump{Target: join}
	}
	if elseEnd.Terminator == nil {
		elseEnd.Terminator = &Jump{Target: join}
	}

	b.block = join
	switch {
	case thenReaches && elseReaches:
		b.vars = b.mergeVars(saved, thenVars, thenEnd, elseVars, elseEnd)
	case thenReaches:
		b.vars = thenVars
	default:
		b.vars = elseVars
	}
}

// mergeVars inserts phis at a join for every outer variable the two arms
// left with different values. Variables introduced inside an arm go out of
// scope and are not merged.
func (b *Builder) mergeVars(saved, thenVars map[string]*Value, thenEnd *BasicBlock,
	elseVars map[string]*Value, elseEnd *BasicBlock) map[string]*Value {

	merged := make(map[string]*Value, len(saved))
	for name := range saved {
		tv, ev := thenVars[name], elseVars[name]
		if tv == ev {
			merged[name] = tv
			continue
		}
		dest := b.fn.NewValue(name)
		b.emit(&Phi{Dest: dest, Incomings: []Incoming{
			{Block: thenEnd, Value: tv},
			{Block: elseEnd, Value: ev},
		}})
		merged[name] = dest
	}
	return merged
}

func (b *Builder) lowerExpr(e *grammar.Expr) *Value {
	operands := []*Value{b.lowerUnary(e.Left)}
	var ops []string

	reduce := func() {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		dest := b.fn.NewValue("")
		b.emit(&Binary{Dest: dest, Op: op, Left: left, Right: right})
		operands = append(operands, dest)
	}

	for _, bin := range e.Ops {
		for len(ops) > 0 && precedence[ops[len(ops)-1]] >= precedence[bin.Operator] {
			reduce()
		}
		ops = append(ops, bin.Operator)
		operands = append(operands, b.lowerUnary(bin.Right))
	}
	for len(ops) > 0 {
		reduce()
	}
	return operands[0]
}

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (b *Builder) lowerUnary(u *grammar.UnaryExpr) *Value {
	v := b.lowerPrimary(u.Value)
	if u.Op == nil {
		return v
	}
	op := "neg"
	if *u.Op == "!" {
		op = "not"
	}
	dest := b.fn.NewValue("")
	b.emit(&Unary{Dest: dest, Op: op, Operand: v})
	return dest
}

func (b *Builder) lowerPrimary(p *grammar.PrimaryExpr) *Value {
	switch {
	case p.Call != nil:
		return b.lowerCall(p.Call)
	case p.Bool != nil:
		dest := b.fn.NewValue("")
		b.emit(&Const{Dest: dest, Val: BoolLit(*p.Bool == "true")})
		return dest
	case p.Number != nil:
		dest := b.fn.NewValue("")
		b.emit(&Const{Dest: dest, Val: IntLit(*p.Number)})
		return dest
	case p.Ident != nil:
		if v, ok := b.vars[*p.Ident]; ok {
			return v
		}
		b.diags = append(b.diags, errors.UndefinedVariable(*p.Ident, position(p.Pos)))
		return b.fn.NewValue(*p.Ident)
	case p.Parens != nil:
		return b.lowerExpr(p.Parens)
	}
	return b.fn.NewValue("")
}

func (b *Builder) lowerCall(c *grammar.CallExpr) *Value {
	if want, ok := b.arity[c.Callee]; !ok {
		b.diags = append(b.diags, errors.UndefinedFunction(c.Callee, position(c.Pos)))
	} else if want != len(c.Args) {
		b.diags = append(b.diags, errors.ArityMismatch(c.Callee, want, len(c.Args), position(c.Pos)))
	}

	args := make([]*Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = b.lowerExpr(a)
	}
	dest := b.fn.NewValue("")
	b.emit(&Call{Dest: dest, Callee: c.Callee, Args: args})
	return dest
}

func copyVars(vars map[string]*Value) map[string]*Value {
	out := make(map[string]*Value, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func position(pos lexer.Position) errors.Position {
	return errors.Position{Line: pos.Line, Column: pos.Column}
}
