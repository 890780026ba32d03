// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lumen/internal/driver"
	"lumen/internal/errors"
	"lumen/internal/ir"
	"lumen/internal/pipeline"
)

const PROMPT = ">> "

// Start runs an interactive loop: enter `fn` or `extern fn` declarations
// and see the optimized IR of each function as it compiles. Commands:
// :stages toggles per-pass dumps, :list shows kept declarations, :quit
// exits.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	var decls []string
	var pending strings.Builder
	stages := false

	for {
		if pending.Len() == 0 {
			fmt.Fprint(out, PROMPT)
		} else {
			fmt.Fprint(out, ".. ")
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":quit":
				return
			case ":stages":
				stages = !stages
				fmt.Fprintf(out, "per-pass dumps %s\n", onOff(stages))
				continue
			case ":list":
				for _, d := range decls {
					fmt.Fprintln(out, d)
				}
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		if !complete(pending.String()) {
			continue
		}

		decl := pending.String()
		pending.Reset()

		// Keep the declaration only if it compiled cleanly; a broken one
		// would poison every later submission.
		if compile(out, append(decls, decl), decl, stages) {
			decls = append(decls, strings.TrimRight(decl, "\n"))
		}
	}
}

func compile(out io.Writer, decls []string, last string, stages bool) bool {
	source := "module repl {\n" + strings.Join(decls, "\n") + "\n}\n"

	var opts []driver.Option
	if stages {
		opts = append(opts, driver.WithHooks(pipeline.NewDumpHook(out)))
	}

	session, err := driver.NewSession("<repl>", source, opts...)
	if err != nil {
		fmt.Fprintf(out, "parse error: %s\n", err)
		return false
	}
	if session.HasErrors() {
		reporter := errors.NewReporter("<repl>", source)
		for _, diag := range session.Diagnostics() {
			fmt.Fprint(out, reporter.FormatError(diag))
		}
		return false
	}

	if name := declName(last); name != "" {
		cell := session.Optimize(driver.UnitID("repl", name))
		cell.WithBorrow(func(fn *ir.Function) {
			fmt.Fprint(out, ir.Print(fn))
		})
	}
	return true
}

// complete reports whether the buffered input closes every brace it opens.
// Extern declarations carry no braces and end at the first semicolon.
func complete(src string) bool {
	depth := 0
	for _, r := range src {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	if depth > 0 {
		return false
	}
	return strings.Contains(src, "}") || strings.Contains(src, ";")
}

// declName extracts the function name from a `fn` declaration; extern
// declarations have no body to optimize and yield "".
func declName(decl string) string {
	fields := strings.FieldsFunc(decl, func(r rune) bool {
		return r == ' ' || r == '(' || r == '\n' || r == '\t'
	})
	for i, f := range fields {
		if f == "fn" && i+1 < len(fields) {
			if i > 0 && fields[i-1] == "extern" {
				return ""
			}
			return fields[i+1]
		}
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
