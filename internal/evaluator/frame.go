package evaluator

import "github.com/eddmann/santa-lang-go/internal/span"

// FrameKind names one call-trace frame kind from the evaluator design.
type FrameKind int

const (
	ProgramFrame FrameKind = iota
	BlockFrame
	ClosureCallFrame
	BuiltinCallFrame
	ExternalCallFrame
)

// Frame is one entry of the call-trace stack; CallSpan is the span of the
// call site that pushed it (zero span for Program/Block frames).
type Frame struct {
	Kind     FrameKind
	CallSpan span.Span
}

// trace snapshots the current frame stack's call spans, outermost first,
// for attaching to a propagating error.
func (e *Evaluator) trace() []span.Span {
	spans := make([]span.Span, 0, len(e.frames))
	for _, f := range e.frames {
		if f.Kind == ClosureCallFrame || f.Kind == BuiltinCallFrame || f.Kind == ExternalCallFrame {
			spans = append(spans, f.CallSpan)
		}
	}
	return spans
}

func (e *Evaluator) pushFrame(kind FrameKind, callSpan span.Span) {
	e.frames = append(e.frames, Frame{Kind: kind, CallSpan: callSpan})
}

func (e *Evaluator) popFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}
