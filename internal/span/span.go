// Package span carries byte-offset source positions through every stage of
// the pipeline: tokens, AST nodes, runtime errors, and call-trace frames all
// anchor to a Span so a host can point a user back at the offending source.
package span

import "fmt"

// Span is a half-open byte-offset range `[Start, End)` into the original
// source string. Child spans are expected to nest within their parent's
// range; the parser and evaluator both rely on this to compute enclosing
// spans for composite nodes without re-scanning the source.
type Span struct {
	Start int
	End   int
}

// New builds a Span from explicit byte offsets.
func New(start, end int) Span {
	return Span{Start: start, End: end}
}

// Cover returns the smallest Span that contains both a and b, used when a
// parser combines a left and right child into one enclosing node span.
func Cover(a, b Span) Span {
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Slice extracts the text the Span covers from src. Callers are responsible
// for ensuring the Span was produced against this exact src.
func (s Span) Slice(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Zero is the empty Span, returned where no source location is known
// (e.g. by langerr.Span for an error that carries none).
var Zero = Span{}
