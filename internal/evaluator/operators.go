package evaluator

import (
	"strings"

	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

func isPlaceholder(e ast.Expression) bool {
	_, ok := e.(*ast.Placeholder)
	return ok
}

func (e *Evaluator) evalPrefix(n *ast.PrefixExpression, env *environment.Environment) (value.Value, error) {
	if isPlaceholder(n.Right) {
		body := &ast.ExpressionStatement{
			Base: ast.NewBase(n.Span()),
			Value: &ast.PrefixExpression{
				Base:     ast.NewBase(n.Span()),
				Operator: n.Operator,
				Right:    &ast.Identifier{Base: ast.NewBase(n.Right.Span()), Name: "__a"},
			},
		}
		return value.Function{
			Kind:   value.ClosureFunc,
			Params: []ast.Pattern{&ast.IdentifierPattern{Base: ast.NewBase(n.Right.Span()), Name: "__a"}},
			Body:   body,
			Env:    env,
		}, nil
	}

	right, err := e.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		switch r := right.(type) {
		case value.Integer:
			return value.NewInteger(-int64(r)), nil
		case value.Decimal:
			return value.Decimal(-float64(r)), nil
		default:
			return nil, langerr.New(langerr.Type, n.Span(), "cannot negate a value of kind %s", right.Kind())
		}
	case "!":
		return value.Boolean(!right.Truthy()), nil
	default:
		return nil, langerr.New(langerr.Host, n.Span(), "unknown prefix operator %q", n.Operator)
	}
}

// evalInfix handles placeholder desugaring, short-circuit boolean
// operators, and otherwise evaluates both operands and dispatches to
// ApplyInfixOp.
func (e *Evaluator) evalInfix(n *ast.InfixExpression, env *environment.Environment) (value.Value, error) {
	if isPlaceholder(n.Left) || isPlaceholder(n.Right) {
		return e.desugarPlaceholderInfix(n, env)
	}

	left, err := e.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "&&":
		if !left.Truthy() {
			return value.Boolean(false), nil
		}
		right, err := e.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Boolean(right.Truthy()), nil
	case "||":
		if left.Truthy() {
			return value.Boolean(true), nil
		}
		right, err := e.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.Boolean(right.Truthy()), nil
	}

	right, err := e.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return ApplyInfixOp(n.Operator, left, right, n.Span())
}

// desugarPlaceholderInfix builds the synthetic closure an infix
// expression with one or both operands as `_` produces, per §4.2: `_ + 1`
// becomes `|a| a + 1`, `_ + _` becomes `|a, b| a + b`.
func (e *Evaluator) desugarPlaceholderInfix(n *ast.InfixExpression, env *environment.Environment) (value.Value, error) {
	var params []ast.Pattern
	left := n.Left
	right := n.Right

	if isPlaceholder(left) {
		params = append(params, &ast.IdentifierPattern{Base: ast.NewBase(left.Span()), Name: "__a"})
		left = &ast.Identifier{Base: ast.NewBase(left.Span()), Name: "__a"}
	}
	if isPlaceholder(right) {
		name := "__b"
		if len(params) == 0 {
			name = "__a"
		}
		params = append(params, &ast.IdentifierPattern{Base: ast.NewBase(right.Span()), Name: name})
		right = &ast.Identifier{Base: ast.NewBase(right.Span()), Name: name}
	}

	body := &ast.ExpressionStatement{
		Base: ast.NewBase(n.Span()),
		Value: &ast.InfixExpression{
			Base:     ast.NewBase(n.Span()),
			Operator: n.Operator,
			Left:     left,
			Right:    right,
		},
	}
	return value.Function{Kind: value.ClosureFunc, Params: params, Body: body, Env: env}, nil
}

// ApplyInfixOp implements the value-level semantics of every infix
// operator across every legal operand-kind combination. The
// bare-operator bindings declared by NewGlobalEnvironment call it, so
// `+`/`-`/etc named as ordinary functions (e.g. `fold(0, +)`) follow the
// identical rules.
func ApplyInfixOp(op string, left, right value.Value, sp span.Span) (value.Value, error) {
	switch op {
	case "==":
		return value.Boolean(value.Equal(left, right)), nil
	case "!=":
		return value.Boolean(!value.Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return compareOp(op, left, right, sp)
	case "+":
		return addOp(left, right, sp)
	case "-":
		return subOp(left, right, sp)
	case "*":
		return mulOp(left, right, sp)
	case "/":
		return divOp(left, right, sp)
	case "%":
		return modOp(left, right, sp)
	default:
		return nil, langerr.New(langerr.Host, sp, "unknown infix operator %q", op)
	}
}

func bothInteger(l, r value.Value) (value.Integer, value.Integer, bool) {
	li, ok1 := l.(value.Integer)
	ri, ok2 := r.(value.Integer)
	return li, ri, ok1 && ok2
}

func numericOperands(l, r value.Value) (float64, float64, bool) {
	lf, ok1 := value.AsFloat64(l)
	rf, ok2 := value.AsFloat64(r)
	return lf, rf, ok1 && ok2
}

func addOp(l, r value.Value, sp span.Span) (value.Value, error) {
	if li, ri, ok := bothInteger(l, r); ok {
		return value.NewInteger(int64(li) + int64(ri)), nil
	}
	if lf, rf, ok := numericOperands(l, r); ok && (value.IsNumeric(l) && value.IsNumeric(r)) {
		return value.Decimal(lf + rf), nil
	}
	if ls, ok := l.(value.String); ok {
		if rs, ok := r.(value.String); ok {
			return value.String(string(ls) + string(rs)), nil
		}
		if value.IsNumeric(r) {
			return value.String(string(ls) + r.String()), nil
		}
	}
	if ll, ok := l.(*value.List); ok {
		if rl, ok := r.(*value.List); ok {
			out := make([]value.Value, 0, len(ll.Elements)+len(rl.Elements))
			out = append(out, ll.Elements...)
			out = append(out, rl.Elements...)
			return &value.List{Elements: out}, nil
		}
	}
	if ls, ok := l.(*value.Set); ok {
		if rs, ok := r.(*value.Set); ok {
			return unionSets(ls, rs)
		}
		if rl, ok := r.(*value.List); ok {
			rs, err := value.NewSet(rl.Elements...)
			if err != nil {
				return nil, langerr.New(langerr.Type, sp, "%s", err.Error())
			}
			return unionSets(ls, rs)
		}
	}
	if ld, ok := l.(*value.Dictionary); ok {
		if rd, ok := r.(*value.Dictionary); ok {
			out := ld
			var err error
			for _, kv := range rd.Entries() {
				out, err = out.With(kv.Key, kv.Value)
				if err != nil {
					return nil, langerr.New(langerr.Type, sp, "%s", err.Error())
				}
			}
			return out, nil
		}
	}
	return nil, langerr.New(langerr.Type, sp, "cannot add a value of kind %s to a value of kind %s", r.Kind(), l.Kind())
}

func unionSets(a, b *value.Set) (value.Value, error) {
	out, _ := value.NewSet(a.Elements()...)
	for _, e := range b.Elements() {
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func subOp(l, r value.Value, sp span.Span) (value.Value, error) {
	if li, ri, ok := bothInteger(l, r); ok {
		return value.NewInteger(int64(li) - int64(ri)), nil
	}
	if lf, rf, ok := numericOperands(l, r); ok && (value.IsNumeric(l) && value.IsNumeric(r)) {
		return value.Decimal(lf - rf), nil
	}
	if ll, ok := l.(*value.List); ok {
		if rl, ok := r.(*value.List); ok {
			var out []value.Value
			for _, e := range ll.Elements {
				found := false
				for _, re := range rl.Elements {
					if value.Equal(e, re) {
						found = true
						break
					}
				}
				if !found {
					out = append(out, e)
				}
			}
			return &value.List{Elements: out}, nil
		}
	}
	if ls, ok := l.(*value.Set); ok {
		if rs, ok := r.(*value.Set); ok {
			out, _ := value.NewSet()
			for _, e := range ls.Elements() {
				if !rs.Contains(e) {
					_ = out.Add(e)
				}
			}
			return out, nil
		}
	}
	return nil, langerr.New(langerr.Type, sp, "cannot subtract a value of kind %s from a value of kind %s", r.Kind(), l.Kind())
}

func mulOp(l, r value.Value, sp span.Span) (value.Value, error) {
	if li, ri, ok := bothInteger(l, r); ok {
		return value.NewInteger(int64(li) * int64(ri)), nil
	}
	if lf, rf, ok := numericOperands(l, r); ok && (value.IsNumeric(l) && value.IsNumeric(r)) {
		return value.Decimal(lf * rf), nil
	}
	if ls, ok := l.(value.String); ok {
		if ri, ok := r.(value.Integer); ok {
			return value.String(strings.Repeat(string(ls), int(ri))), nil
		}
	}
	if ll, ok := l.(*value.List); ok {
		if ri, ok := r.(value.Integer); ok {
			out := make([]value.Value, 0, len(ll.Elements)*int(ri))
			for i := int64(0); i < int64(ri); i++ {
				out = append(out, ll.Elements...)
			}
			return &value.List{Elements: out}, nil
		}
	}
	return nil, langerr.New(langerr.Type, sp, "cannot multiply a value of kind %s by a value of kind %s", l.Kind(), r.Kind())
}

func divOp(l, r value.Value, sp span.Span) (value.Value, error) {
	if li, ri, ok := bothInteger(l, r); ok {
		if ri == 0 {
			return nil, langerr.New(langerr.Domain, sp, "division by zero")
		}
		return value.NewInteger(int64(li) / int64(ri)), nil
	}
	if lf, rf, ok := numericOperands(l, r); ok && (value.IsNumeric(l) && value.IsNumeric(r)) {
		if rf == 0 {
			return nil, langerr.New(langerr.Domain, sp, "division by zero")
		}
		return value.Decimal(lf / rf), nil
	}
	return nil, langerr.New(langerr.Type, sp, "cannot divide a value of kind %s by a value of kind %s", l.Kind(), r.Kind())
}

func modOp(l, r value.Value, sp span.Span) (value.Value, error) {
	if li, ri, ok := bothInteger(l, r); ok {
		if ri == 0 {
			return nil, langerr.New(langerr.Domain, sp, "division by zero")
		}
		return value.NewInteger(int64(li) % int64(ri)), nil
	}
	return nil, langerr.New(langerr.Type, sp, "cannot modulo a value of kind %s by a value of kind %s", l.Kind(), r.Kind())
}

func compareOp(op string, l, r value.Value, sp span.Span) (value.Value, error) {
	var cmp int
	switch lv := l.(type) {
	case value.Integer:
		rv, ok := r.(value.Integer)
		if !ok {
			rf, ok2 := value.AsFloat64(r)
			if !ok2 {
				return nil, incomparable(l, r, sp)
			}
			cmp = value.Decimal(float64(lv)).Compare(value.Decimal(rf))
		} else if lv < rv {
			cmp = -1
		} else if lv > rv {
			cmp = 1
		}
	case value.Decimal:
		rf, ok := value.AsFloat64(r)
		if !ok {
			return nil, incomparable(l, r, sp)
		}
		cmp = lv.Compare(value.Decimal(rf))
	case value.String:
		rv, ok := r.(value.String)
		if !ok {
			return nil, incomparable(l, r, sp)
		}
		cmp = strings.Compare(string(lv), string(rv))
	default:
		return nil, incomparable(l, r, sp)
	}
	switch op {
	case "<":
		return value.Boolean(cmp < 0), nil
	case ">":
		return value.Boolean(cmp > 0), nil
	case "<=":
		return value.Boolean(cmp <= 0), nil
	case ">=":
		return value.Boolean(cmp >= 0), nil
	}
	return nil, langerr.New(langerr.Host, sp, "unknown comparison operator %q", op)
}

func incomparable(l, r value.Value, sp span.Span) error {
	return langerr.New(langerr.Type, sp, "cannot compare a value of kind %s with a value of kind %s", l.Kind(), r.Kind())
}
