package pipeline

import (
	"github.com/tliron/commonlog"
)

// LogHook reports every pass execution through commonlog. Wire it into the
// registry to trace which stages a query actually computed.
type LogHook struct {
	log commonlog.Logger
}

func NewLogHook() *LogHook {
	return &LogHook{log: commonlog.GetLogger("pipeline")}
}

func (h *LogHook) OnPass(cx *Context, view *Ref) {
	if view == nil {
		h.log.Debugf("running %s on %s (set %d, pass %d)",
			cx.Pass().Name(), cx.Unit(), cx.PassSet(), cx.PassIndex())
		return
	}
	h.log.Debugf("finished %s on %s: %d blocks",
		cx.Pass().Name(), cx.Unit(), len(view.Function().Blocks))
}
