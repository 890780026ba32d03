package ir

import (
	"fmt"
	"strings"
)

// Printer renders IR in a stable textual form. The output is deterministic
// for a given function, so tests can compare dumps directly.
type Printer struct {
	indent int
	output strings.Builder
}

func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns the string representation of one function.
func Print(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

// PrintModule renders every function of a module in declaration order.
func PrintModule(m *Module) string {
	p := NewPrinter()
	p.writeLine("module %s", m.Name)
	for _, ex := range m.Externs {
		p.writeLine("extern fn %s/%d", ex.Name, ex.Arity)
	}
	p.writeLine("")
	for i, fn := range m.Functions {
		if i > 0 {
			p.writeLine("")
		}
		p.printFunction(fn)
	}
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.String()
	}
	p.writeLine("fn %s(%s) {", fn.Name, strings.Join(params, ", "))

	for _, block := range fn.Blocks {
		p.writeLine("%s:", block.Label)
		p.indent++
		for _, inst := range block.Instructions {
			p.writeLine("%s", inst.String())
		}
		if block.Terminator != nil {
			p.writeLine("%s", block.Terminator.String())
		}
		p.indent--
	}
	p.writeLine("}")
}
