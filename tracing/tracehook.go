package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/dasim/sim"
	"github.com/sarchlab/dasim/sim/hooking"
)

// CollectTrace lets the tracer collect the rounds of a domain.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that forwards the round events to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRoundStart:
		h.t.StartRound(ctx.Item.(int))
	case sim.HookPosMsgSend:
		h.t.RecordMsg(ctx.Item.(*sim.Msg))
	case sim.HookPosNodeDecided:
		h.t.RecordDecision(ctx.Item.(sim.NodeReport))
	case sim.HookPosRoundEnd:
		h.t.EndRound(ctx.Item.(sim.RoundSummary))
	case sim.HookPosAbort:
		h.t.Abort(ctx.Round, ctx.Item.(error))
	}
}
