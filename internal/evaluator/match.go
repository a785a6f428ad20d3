package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// bindPattern destructures v against pat, declaring bindings into env; it
// is a hard error (not a silent skip) if the shape doesn't match, per
// §4.6's "destructuring failures are runtime errors with the offending
// sub-pattern's span".
func (e *Evaluator) bindPattern(pat ast.Pattern, v value.Value, mutable bool, env *environment.Environment) error {
	ok, err := e.matchAndBind(pat, v, mutable, env)
	if err != nil {
		return err
	}
	if !ok {
		return langerr.New(langerr.Pattern, pat.Span(), "value of kind %s does not match the binding pattern", v.Kind())
	}
	return nil
}

// matchAndBind reports whether v structurally matches pat, declaring any
// named bindings into env as a side effect of a successful match. A
// failed match may have already declared some bindings from earlier
// sibling patterns — callers that need all-or-nothing semantics (match
// arms) evaluate each arm in its own fresh child environment.
func (e *Evaluator) matchAndBind(pat ast.Pattern, v value.Value, mutable bool, env *environment.Environment) (bool, error) {
	switch p := pat.(type) {
	case *ast.IdentifierPattern:
		if err := env.Declare(p.Name, v, mutable); err != nil {
			return false, langerr.New(langerr.Binding, p.Span(), "%s", err.Error())
		}
		return true, nil

	case *ast.PlaceholderPattern:
		return true, nil

	case *ast.LiteralPattern:
		lit, err := e.Eval(p.Value, env)
		if err != nil {
			return false, err
		}
		return value.Equal(lit, v), nil

	case *ast.RangePattern:
		return e.matchRangePattern(p, v, env)

	case *ast.ListPattern:
		return e.matchListPattern(p, v, mutable, env)

	case *ast.DictPattern:
		return e.matchDictPattern(p, v, mutable, env)

	default:
		return false, langerr.New(langerr.Host, pat.Span(), "unhandled pattern kind %T", pat)
	}
}

func (e *Evaluator) matchRangePattern(p *ast.RangePattern, v value.Value, env *environment.Environment) (bool, error) {
	i, ok := v.(value.Integer)
	if !ok {
		return false, nil
	}
	startV, err := e.Eval(p.Value.Start, env)
	if err != nil {
		return false, err
	}
	start, ok := startV.(value.Integer)
	if !ok {
		return false, langerr.New(langerr.Type, p.Value.Start.Span(), "range pattern bounds must be integers")
	}
	if p.Value.Kind == ast.RangeUnbounded {
		if start <= 0 {
			return i >= start, nil
		}
		return i >= start, nil
	}
	endV, err := e.Eval(p.Value.End, env)
	if err != nil {
		return false, err
	}
	end, ok := endV.(value.Integer)
	if !ok {
		return false, langerr.New(langerr.Type, p.Value.End.Span(), "range pattern bounds must be integers")
	}
	if p.Value.Kind == ast.RangeInclusive {
		return i >= start && i <= end, nil
	}
	return i >= start && i < end, nil
}

func (e *Evaluator) matchListPattern(p *ast.ListPattern, v value.Value, mutable bool, env *environment.Environment) (bool, error) {
	list, ok := v.(*value.List)
	if !ok {
		return false, nil
	}
	elems := list.Elements

	if p.RestIndex == -1 {
		if len(elems) != len(p.Elements) {
			return false, nil
		}
		for i, sub := range p.Elements {
			ok, err := e.matchAndBind(sub, elems[i], mutable, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}

	prefix := p.Elements[:p.RestIndex]
	suffix := p.Elements[p.RestIndex:]
	if len(prefix)+len(suffix) > len(elems) {
		return false, nil
	}
	for i, sub := range prefix {
		ok, err := e.matchAndBind(sub, elems[i], mutable, env)
		if err != nil || !ok {
			return false, err
		}
	}
	restElems := elems[len(prefix) : len(elems)-len(suffix)]
	if p.RestName != "" {
		if err := env.Declare(p.RestName, value.NewList(restElems...), mutable); err != nil {
			return false, langerr.New(langerr.Binding, p.Span(), "%s", err.Error())
		}
	}
	for i, sub := range suffix {
		ok, err := e.matchAndBind(sub, elems[len(elems)-len(suffix)+i], mutable, env)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (e *Evaluator) matchDictPattern(p *ast.DictPattern, v value.Value, mutable bool, env *environment.Environment) (bool, error) {
	dict, ok := v.(*value.Dictionary)
	if !ok {
		return false, nil
	}
	matchedKeys := value.NewDictionary()
	for _, entry := range p.Entries {
		key, err := e.Eval(entry.Key, env)
		if err != nil {
			return false, err
		}
		val, ok := dict.Get(key)
		if !ok {
			return false, nil
		}
		matchedKeys, _ = matchedKeys.With(key, value.NilValue)
		ok, err = e.matchAndBind(entry.Pattern, val, mutable, env)
		if err != nil || !ok {
			return false, err
		}
	}
	if p.HasRest {
		rest := value.NewDictionary()
		for _, kv := range dict.Entries() {
			if _, matched := matchedKeys.Get(kv.Key); matched {
				continue
			}
			var err error
			rest, err = rest.With(kv.Key, kv.Value)
			if err != nil {
				return false, langerr.New(langerr.Type, p.Span(), "%s", err.Error())
			}
		}
		if err := env.Declare(p.RestName, rest, mutable); err != nil {
			return false, langerr.New(langerr.Binding, p.Span(), "%s", err.Error())
		}
	}
	return true, nil
}

// evalMatch tries each arm top-down in its own child environment (so a
// failed guard or shape mismatch never leaks partial bindings), returning
// the first arm whose pattern matches and whose optional guard (if any)
// is truthy. No matching arm evaluates to Nil.
func (e *Evaluator) evalMatch(n *ast.MatchExpression, env *environment.Environment) (value.Value, error) {
	subject, err := e.Eval(n.Subject, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		armEnv := environment.NewChild(env)
		ok, err := e.matchAndBind(arm.Pattern, subject, false, armEnv)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if arm.Guard != nil {
			guardVal, err := e.Eval(arm.Guard, armEnv)
			if err != nil {
				return nil, err
			}
			if !guardVal.Truthy() {
				continue
			}
		}
		return e.Eval(arm.Body, armEnv)
	}
	return value.NilValue, nil
}
