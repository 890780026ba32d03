package pipeline

import (
	"fmt"
	"io"

	"lumen/internal/ir"
)

// DumpHook writes the IR of every computed stage to w, in the order the
// stages resolve. Useful for inspecting what each pass actually did.
type DumpHook struct {
	w io.Writer
}

func NewDumpHook(w io.Writer) *DumpHook {
	return &DumpHook{w: w}
}

func (h *DumpHook) OnPass(cx *Context, view *Ref) {
	if view == nil {
		return
	}
	fmt.Fprintf(h.w, "// %s after %s (set %d, pass %d)\n",
		cx.Unit(), cx.Pass().Name(), cx.PassSet(), cx.PassIndex())
	fmt.Fprint(h.w, ir.Print(view.Function()))
	fmt.Fprintln(h.w)
}
