package ir

import (
	"fmt"
	"strings"
)

// The IR is a small SSA form: functions of basic blocks, each block a run
// of instructions closed by exactly one terminator. Every value has one
// defining instruction (or is a parameter) and any number of uses.

// Module is a compiled Lumen module: locally defined functions plus the
// extern declarations they may call.
type Module struct {
	Name      string
	Functions []*Function
	Externs   []*Extern
}

func (m *Module) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (m *Module) Extern(name string) *Extern {
	for _, ex := range m.Externs {
		if ex.Name == name {
			return ex
		}
	}
	return nil
}

// Extern declares a function defined outside this module. Externs have no
// body and therefore no pipeline history.
type Extern struct {
	Name  string
	Arity int
}

// Function is the per-unit artifact the optimization pipeline transforms.
type Function struct {
	Name   string
	Params []*Value
	Blocks []*BasicBlock

	// NextID is the first unused value id, kept with the function so passes
	// can mint fresh values without colliding.
	NextID int
}

func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NewValue mints a fresh SSA value. An empty name renders as %v<id>.
func (f *Function) NewValue(name string) *Value {
	v := &Value{ID: f.NextID, Name: name}
	f.NextID++
	return v
}

// BasicBlock is a straight-line instruction sequence with one terminator.
type BasicBlock struct {
	Label        string
	Instructions []Instruction
	Terminator   Terminator
}

// Value is an SSA value: defined exactly once, used any number of times.
type Value struct {
	ID   int
	Name string
}

func (v *Value) String() string {
	if v == nil {
		return "%?"
	}
	if v.Name != "" {
		return "%" + v.Name
	}
	return fmt.Sprintf("%%v%d", v.ID)
}

// LiteralKind discriminates compile-time constant values.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitBool
)

// Literal is a compile-time constant. Comparable, so passes can track known
// values in plain maps.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Bool bool
}

func IntLit(v int64) Literal {
	return Literal{Kind: LitInt, Int: v}
}

func BoolLit(b bool) Literal {
	return Literal{Kind: LitBool, Bool: b}
}

func (l Literal) String() string {
	if l.Kind == LitBool {
		return fmt.Sprintf("%t", l.Bool)
	}
	return fmt.Sprintf("%d", l.Int)
}

// Instruction is one non-terminator operation.
type Instruction interface {
	Result() *Value
	Operands() []*Value
	String() string
}

// Terminator closes a basic block.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
}

// Const materializes a literal.
type Const struct {
	Dest *Value
	Val  Literal
}

// Binary applies an arithmetic, comparison, or logical operator.
type Binary struct {
	Dest  *Value
	Op    string // "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"
	Left  *Value
	Right *Value
}

// Unary negates a value: Op is "neg" or "not".
type Unary struct {
	Dest    *Value
	Op      string
	Operand *Value
}

// Copy renames a value. Introduced by lowering and by passes that replace
// an instruction with an already-computed value; cleaned up by copyprop
// and deadcode.
type Copy struct {
	Dest *Value
	Src  *Value
}

// Call invokes a local function or an extern.
type Call struct {
	Dest   *Value
	Callee string
	Args   []*Value
}

// Phi merges one value per predecessor at a control-flow join.
type Phi struct {
	Dest      *Value
	Incomings []Incoming
}

type Incoming struct {
	Block *BasicBlock
	Value *Value
}

// Return leaves the function; Value may be nil.
type Return struct {
	Value *Value
}

// Jump transfers control unconditionally.
type Jump struct {
	Target *BasicBlock
}

// Branch transfers control on a boolean condition.
type Branch struct {
	Cond  *Value
	True  *BasicBlock
	False *BasicBlock
}

func (c *Const) Result() *Value     { return c.Dest }
func (c *Const) Operands() []*Value { return nil }
func (c *Const) String() string     { return fmt.Sprintf("%s = const %s", c.Dest, c.Val) }

func (b *Binary) Result() *Value     { return b.Dest }
func (b *Binary) Operands() []*Value { return []*Value{b.Left, b.Right} }
func (b *Binary) String() string {
	return fmt.Sprintf("%s = %s %s %s", b.Dest, b.Left, b.Op, b.Right)
}

func (u *Unary) Result() *Value     { return u.Dest }
func (u *Unary) Operands() []*Value { return []*Value{u.Operand} }
func (u *Unary) String() string     { return fmt.Sprintf("%s = %s %s", u.Dest, u.Op, u.Operand) }

func (c *Copy) Result() *Value     { return c.Dest }
func (c *Copy) Operands() []*Value { return []*Value{c.Src} }
func (c *Copy) String() string     { return fmt.Sprintf("%s = copy %s", c.Dest, c.Src) }

func (c *Call) Result() *Value     { return c.Dest }
func (c *Call) Operands() []*Value { return c.Args }
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s = call %s(%s)", c.Dest, c.Callee, strings.Join(args, ", "))
}

func (p *Phi) Result() *Value { return p.Dest }
func (p *Phi) Operands() []*Value {
	ops := make([]*Value, len(p.Incomings))
	for i, in := range p.Incomings {
		ops[i] = in.Value
	}
	return ops
}
func (p *Phi) String() string {
	parts := make([]string, len(p.Incomings))
	for i, in := range p.Incomings {
		parts[i] = fmt.Sprintf("%s: %s", in.Block.Label, in.Value)
	}
	return fmt.Sprintf("%s = phi [%s]", p.Dest, strings.Join(parts, ", "))
}

func (r *Return) Result() *Value { return nil }
func (r *Return) Operands() []*Value {
	if r.Value == nil {
		return nil
	}
	return []*Value{r.Value}
}
func (r *Return) String() string {
	if r.Value == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", r.Value)
}
func (r *Return) Successors() []*BasicBlock { return nil }

func (j *Jump) Result() *Value            { return nil }
func (j *Jump) Operands() []*Value        { return nil }
func (j *Jump) String() string            { return fmt.Sprintf("jmp %s", j.Target.Label) }
func (j *Jump) Successors() []*BasicBlock { return []*BasicBlock{j.Target} }

func (b *Branch) Result() *Value     { return nil }
func (b *Branch) Operands() []*Value { return []*Value{b.Cond} }
func (b *Branch) String() string {
	return fmt.Sprintf("br %s, %s, %s", b.Cond, b.True.Label, b.False.Label)
}
func (b *Branch) Successors() []*BasicBlock { return []*BasicBlock{b.True, b.False} }
