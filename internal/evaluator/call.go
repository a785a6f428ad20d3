package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

func (e *Evaluator) evalCall(n *ast.CallExpression, env *environment.Environment) (value.Value, error) {
	callee, err := e.Eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalExpressionsWithSpread(n.Arguments, env)
	if err != nil {
		return nil, err
	}
	return e.Apply(callee, args, n.Span())
}

// Apply invokes fn with args, dispatching across the four function
// variants and handling partial application for Closure and
// Builtin/External alike. It is exported so package builtins can call
// back into user-supplied function arguments (e.g. `map`'s callback).
func (e *Evaluator) Apply(fn value.Value, args []value.Value, callSpan span.Span) (value.Value, error) {
	f, ok := fn.(value.Function)
	if !ok {
		return nil, langerr.New(langerr.Type, callSpan, "value of kind %s is not callable", fn.Kind())
	}
	switch f.Kind {
	case value.ClosureFunc:
		return e.callClosure(f, args, callSpan)
	case value.BuiltinFunc:
		return e.callHostFunc(f, args, callSpan)
	case value.ExternalFunc:
		return e.callExternal(f, args, callSpan)
	case value.CompositionFunc:
		return e.callComposition(f, args, callSpan)
	default:
		return nil, langerr.New(langerr.Host, callSpan, "unknown function kind")
	}
}

func hasPlaceholderArg(args []value.Value) bool {
	for _, a := range args {
		if _, ok := a.(value.Placeholder); ok {
			return true
		}
	}
	return false
}

func (e *Evaluator) callClosure(fn value.Function, args []value.Value, callSpan span.Span) (value.Value, error) {
	outer, ok := fn.Env.(*environment.Environment)
	if !ok {
		return nil, langerr.New(langerr.Host, callSpan, "closure is missing its captured environment")
	}

	if fn.Rest == "" && (hasPlaceholderArg(args) || len(args) < len(fn.Params)) {
		return e.partiallyApplyClosure(fn, args, callSpan)
	}

	callEnv := environment.NewChild(outer)
	for i, pat := range fn.Params {
		var argVal value.Value = value.NilValue
		if i < len(args) {
			argVal = args[i]
		}
		if err := e.bindPattern(pat, argVal, false, callEnv); err != nil {
			return nil, err
		}
	}
	if fn.Rest != "" {
		var restVals []value.Value
		if len(args) > len(fn.Params) {
			restVals = append(restVals, args[len(fn.Params):]...)
		}
		if err := callEnv.Declare(fn.Rest, value.NewList(restVals...), false); err != nil {
			return nil, langerr.New(langerr.Binding, callSpan, "%s", err.Error())
		}
	}

	e.pushFrame(ClosureCallFrame, callSpan)
	result, err := e.Eval(fn.Body, callEnv)
	e.popFrame()
	if err != nil {
		return nil, langerr.WithTrace(err, e.trace())
	}
	if ret, ok := result.(value.Return); ok {
		return ret.Value, nil
	}
	return result, nil
}

// partiallyApplyClosure binds every supplied non-placeholder argument
// permanently into a fresh child environment and returns a new Closure
// over the remaining (placeholder or unsupplied) parameters, per §4.6's
// partial-application rule.
func (e *Evaluator) partiallyApplyClosure(fn value.Function, args []value.Value, callSpan span.Span) (value.Value, error) {
	outer, ok := fn.Env.(*environment.Environment)
	if !ok {
		return nil, langerr.New(langerr.Host, callSpan, "closure is missing its captured environment")
	}
	boundEnv := environment.NewChild(outer)
	var remaining []ast.Pattern
	for i, pat := range fn.Params {
		if i < len(args) {
			if _, isPH := args[i].(value.Placeholder); !isPH {
				if err := e.bindPattern(pat, args[i], false, boundEnv); err != nil {
					return nil, err
				}
				continue
			}
		}
		remaining = append(remaining, pat)
	}
	return value.Function{
		Kind:   value.ClosureFunc,
		Params: remaining,
		Rest:   fn.Rest,
		Body:   fn.Body,
		Env:    boundEnv,
	}, nil
}

// callHostFunc invokes a Builtin, honoring positional partial
// application the same way closures do: a placeholder or a short
// argument list returns a new Builtin with those positions pre-bound.
func (e *Evaluator) callHostFunc(fn value.Function, args []value.Value, callSpan span.Span) (value.Value, error) {
	full := mergeBound(fn, args)
	if fn.Arity > 0 && (hasPlaceholderArg(full) || len(full) < fn.Arity) {
		return partiallyApplyHostFunc(fn, full), nil
	}
	e.pushFrame(BuiltinCallFrame, callSpan)
	result, err := fn.Host(full, callSpan)
	e.popFrame()
	if err != nil {
		return nil, langerr.WithTrace(err, e.trace())
	}
	return result, nil
}

func (e *Evaluator) callExternal(fn value.Function, args []value.Value, callSpan span.Span) (value.Value, error) {
	full := mergeBound(fn, args)
	if fn.Arity > 0 && (hasPlaceholderArg(full) || len(full) < fn.Arity) {
		return partiallyApplyHostFunc(fn, full), nil
	}
	named := make(map[string]value.Value, len(full))
	for i, a := range full {
		named[indexedParamName(i)] = a
	}
	e.pushFrame(ExternalCallFrame, callSpan)
	result, err := fn.ExtCall(named, callSpan)
	e.popFrame()
	if err != nil {
		return nil, langerr.WithTrace(err, e.trace())
	}
	return result, nil
}

func indexedParamName(i int) string {
	names := "abcdefghijklmnopqrstuvwxyz"
	if i < len(names) {
		return string(names[i])
	}
	return "arg"
}

func mergeBound(fn value.Function, args []value.Value) []value.Value {
	if len(fn.Bound) == 0 {
		return args
	}
	out := make([]value.Value, 0, len(fn.Bound)+len(args))
	next := 0
	for i := 0; i < fn.Arity; i++ {
		if v, ok := fn.Bound[indexedParamName(i)]; ok {
			out = append(out, v)
		} else if next < len(args) {
			out = append(out, args[next])
			next++
		} else {
			out = append(out, value.Placeholder{})
		}
	}
	out = append(out, args[next:]...)
	return out
}

func partiallyApplyHostFunc(fn value.Function, args []value.Value) value.Value {
	bound := make(map[string]value.Value, len(args))
	for i, a := range args {
		if _, isPH := a.(value.Placeholder); isPH {
			continue
		}
		bound[indexedParamName(i)] = a
	}
	fn.Bound = bound
	return fn
}

func (e *Evaluator) callComposition(fn value.Function, args []value.Value, callSpan span.Span) (value.Value, error) {
	if len(args) != 1 {
		return nil, langerr.New(langerr.Type, callSpan, "a composed function takes exactly one argument")
	}
	cur := args[0]
	for _, stage := range fn.Stages {
		var err error
		cur, err = e.Apply(stage, []value.Value{cur}, callSpan)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (e *Evaluator) evalPipeline(n *ast.PipelineExpression, env *environment.Environment) (value.Value, error) {
	cur, err := e.Eval(n.Source, env)
	if err != nil {
		return nil, err
	}
	for _, stage := range n.Stages {
		fnVal, err := e.Eval(stage, env)
		if err != nil {
			return nil, err
		}
		cur, err = e.Apply(fnVal, []value.Value{cur}, stage.Span())
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (e *Evaluator) evalComposition(n *ast.CompositionExpression, env *environment.Environment) (value.Value, error) {
	stages := make([]value.Value, len(n.Stages))
	for i, s := range n.Stages {
		v, err := e.Eval(s, env)
		if err != nil {
			return nil, err
		}
		stages[i] = v
	}
	return value.Function{Kind: value.CompositionFunc, Stages: stages}, nil
}
