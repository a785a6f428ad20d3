/*
Package langerr implements the error taxonomy from the error-handling
design: every error kind carries a message, a span, and (for runtime
errors) a snapshot of call-trace spans. Built on github.com/samber/oops so
each error gets a stable code, chained wrapping, and arbitrary structured
context without us hand-rolling another error-wrapping scheme.
*/
package langerr

import (
	"github.com/samber/oops"

	"github.com/eddmann/santa-lang-go/internal/span"
)

// Kind names one taxonomy entry from the error-handling design.
type Kind string

const (
	Lex     Kind = "lex_error"
	Parse   Kind = "parse_error"
	Binding Kind = "binding_error"
	Type    Kind = "type_error"
	Pattern Kind = "pattern_error"
	Domain  Kind = "domain_error"
	Section Kind = "section_error"
	Host    Kind = "host_error"
)

const spanCtxKey = "span"
const traceCtxKey = "trace"

// New builds an error of the given Kind with message, tagged with sp so a
// host can point back at the offending source range.
func New(kind Kind, sp span.Span, format string, args ...any) error {
	return oops.
		Code(string(kind)).
		With(spanCtxKey, sp).
		Errorf(format, args...)
}

// WithTrace attaches a call-trace span snapshot (frame order, outermost
// first) to an existing error, as the evaluator does when an error
// propagates out through the frame stack.
func WithTrace(err error, trace []span.Span) error {
	return oops.
		With(traceCtxKey, trace).
		Wrap(err)
}

// Span recovers the Span attached by New, if any.
func Span(err error) (span.Span, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return span.Zero, false
	}
	ctx := oopsErr.Context()
	sp, ok := ctx[spanCtxKey].(span.Span)
	return sp, ok
}

// Trace recovers the call-trace span snapshot attached by WithTrace, if
// any.
func Trace(err error) ([]span.Span, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil, false
	}
	ctx := oopsErr.Context()
	trace, ok := ctx[traceCtxKey].([]span.Span)
	return trace, ok
}

// KindOf recovers the error's taxonomy Kind, if it was constructed via New.
func KindOf(err error) (Kind, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "", false
	}
	code := oopsErr.Code()
	if code == "" {
		return "", false
	}
	return Kind(code), true
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
