package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/lazyseq"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// evalRange builds a LazySequence for a range expression. Only integers
// are valid at evaluation time, per the specification.
func (e *Evaluator) evalRange(n *ast.RangeExpression, env *environment.Environment) (value.Value, error) {
	startV, err := e.Eval(n.Start, env)
	if err != nil {
		return nil, err
	}
	start, ok := startV.(value.Integer)
	if !ok {
		return nil, langerr.New(langerr.Type, n.Start.Span(), "range bounds must be integers, got %s", startV.Kind())
	}

	if n.Kind == ast.RangeUnbounded {
		return lazyseq.RangeUnbounded(int64(start), 1), nil
	}

	endV, err := e.Eval(n.End, env)
	if err != nil {
		return nil, err
	}
	end, ok := endV.(value.Integer)
	if !ok {
		return nil, langerr.New(langerr.Type, n.End.Span(), "range bounds must be integers, got %s", endV.Kind())
	}

	step := int64(1)
	if int64(end) < int64(start) {
		step = -1
	}

	if n.Kind == ast.RangeInclusive {
		return lazyseq.RangeInclusive(int64(start), int64(end), step), nil
	}
	return lazyseq.RangeExclusive(int64(start), int64(end), step), nil
}
