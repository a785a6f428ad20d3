/*
Package evaluator implements the tree-walking evaluator: AST plus
Environment in, Value out. It maintains a frame stack for call-trace
reconstruction (see frame.go), dispatches calls across the four function
variants including partial application (call.go), implements structural
pattern matching for `let` destructuring and `match` (match.go), and the
operator dispatch table (operators.go). Its statement-block/let/call-site
shape is grounded on the teacher interpreter's eval package (a recursive
`Eval(node, scope)` switch over AST kinds using Go's native recursion for
the tree walk, rather than an explicit work-list), generalized to this
language's expression-oriented grammar and richer value model.
*/
package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// Evaluator holds the call-trace frame stack for one evaluation run. It
// is not safe for concurrent use — matching the specification's
// strictly single-threaded execution model.
type Evaluator struct {
	frames []Frame
}

// New builds an Evaluator ready to evaluate a program.
func New() *Evaluator {
	return &Evaluator{}
}

// RunProgram evaluates every statement of program in env, pushing a
// Program frame for the duration so an error anywhere inside carries a
// full call trace back to the top. This is the entry point package
// runner drives: one call per Script/Solution/part/test evaluation.
func (e *Evaluator) RunProgram(program *ast.BlockStatement, env *environment.Environment) (value.Value, error) {
	e.pushFrame(ProgramFrame, program.Span())
	defer e.popFrame()
	result, err := e.evalBlock(program, env)
	if err != nil {
		return nil, langerr.WithTrace(err, e.trace())
	}
	return value.Unwrap(result), nil
}

// Eval dispatches on the dynamic node type. Both Statement and
// Expression nodes flow through here since BlockStatement implements
// both and if/match/let are expressions with statement-shaped children.
func (e *Evaluator) Eval(node ast.Node, env *environment.Environment) (value.Value, error) {
	switch n := node.(type) {

	case *ast.BlockStatement:
		return e.evalBlock(n, env)
	case *ast.ExpressionStatement:
		return e.Eval(n.Value, env)
	case *ast.ReturnStatement:
		v, err := e.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		return value.Return{Value: v}, nil
	case *ast.BreakStatement:
		v, err := e.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		return value.Break{Value: v}, nil
	case *ast.CommentStatement:
		return value.NilValue, nil
	case *ast.SectionStatement:
		env.AddSection(n.Name, n.Body)
		return value.NilValue, nil

	case *ast.IntegerLiteral:
		return value.NewInteger(n.Value), nil
	case *ast.DecimalLiteral:
		return value.Decimal(n.Value), nil
	case *ast.StringLiteral:
		return value.String(n.Value), nil
	case *ast.BooleanLiteral:
		return value.Boolean(n.Value), nil
	case *ast.NilLiteral:
		return value.NilValue, nil
	case *ast.Placeholder:
		return value.Placeholder{}, nil

	case *ast.Identifier:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		return nil, langerr.New(langerr.Binding, n.Span(), "undeclared variable %q", n.Name)

	case *ast.LetExpression:
		return e.evalLet(n, env)
	case *ast.AssignExpression:
		return e.evalAssign(n, env)

	case *ast.ListLiteral:
		return e.evalListLiteral(n, env)
	case *ast.SetLiteral:
		return e.evalSetLiteral(n, env)
	case *ast.DictLiteral:
		return e.evalDictLiteral(n, env)

	case *ast.RangeExpression:
		return e.evalRange(n, env)

	case *ast.FunctionLiteral:
		return value.Function{
			Kind:   value.ClosureFunc,
			Params: n.Params,
			Rest:   n.Rest,
			Body:   n.Body,
			Env:    env,
		}, nil

	case *ast.CallExpression:
		return e.evalCall(n, env)
	case *ast.IndexExpression:
		return e.evalIndex(n, env)

	case *ast.IfExpression:
		return e.evalIf(n, env)
	case *ast.MatchExpression:
		return e.evalMatch(n, env)

	case *ast.PrefixExpression:
		return e.evalPrefix(n, env)
	case *ast.InfixExpression:
		return e.evalInfix(n, env)

	case *ast.PipelineExpression:
		return e.evalPipeline(n, env)
	case *ast.CompositionExpression:
		return e.evalComposition(n, env)

	case *ast.SpreadExpression:
		// A bare spread outside a collection/call-argument context just
		// evaluates its operand; evalExpressionsWithSpread (list/set
		// literals and call arguments) and evalDictLiteral special-case
		// SpreadExpression before recursing here.
		return e.Eval(n.Value, env)

	default:
		return nil, langerr.New(langerr.Host, node.Span(), "evaluator: unhandled node %T", node)
	}
}

// evalBlock evaluates statements in order, short-circuiting on a Return
// (or a propagating Break, which unwinds the same way); the final
// statement's value is the block's value.
func (e *Evaluator) evalBlock(block *ast.BlockStatement, env *environment.Environment) (value.Value, error) {
	var result value.Value = value.NilValue
	for _, stmt := range block.Statements {
		v, err := e.Eval(stmt, env)
		if err != nil {
			return nil, err
		}
		result = v
		switch result.(type) {
		case value.Return, value.Break:
			return result, nil
		}
	}
	return result, nil
}

func (e *Evaluator) evalLet(n *ast.LetExpression, env *environment.Environment) (value.Value, error) {
	v, err := e.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := e.bindPattern(n.Pattern, v, n.Mutable, env); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Evaluator) evalAssign(n *ast.AssignExpression, env *environment.Environment) (value.Value, error) {
	v, err := e.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := env.Assign(n.Name, v); err != nil {
		return nil, langerr.New(langerr.Binding, n.Span(), "%s", err.Error())
	}
	return v, nil
}

// evalExpressionsWithSpread evaluates a list of expressions, splatting
// any SpreadExpression's collection elements inline — shared by list,
// set literals and call arguments.
func (e *Evaluator) evalExpressionsWithSpread(exprs []ast.Expression, env *environment.Environment) ([]value.Value, error) {
	var out []value.Value
	for _, expr := range exprs {
		if spread, ok := expr.(*ast.SpreadExpression); ok {
			v, err := e.Eval(spread.Value, env)
			if err != nil {
				return nil, err
			}
			elems, err := spreadElements(v, spread.Span())
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
			continue
		}
		v, err := e.Eval(expr, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func spreadElements(v value.Value, sp span.Span) ([]value.Value, error) {
	switch x := v.(type) {
	case *value.List:
		return x.Elements, nil
	case *value.Set:
		return x.Elements(), nil
	case value.String:
		runes := []rune(string(x))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	default:
		return nil, langerr.New(langerr.Type, sp, "cannot spread a value of kind %s", v.Kind())
	}
}

func (e *Evaluator) evalListLiteral(n *ast.ListLiteral, env *environment.Environment) (value.Value, error) {
	elems, err := e.evalExpressionsWithSpread(n.Elements, env)
	if err != nil {
		return nil, err
	}
	return &value.List{Elements: elems}, nil
}

func (e *Evaluator) evalSetLiteral(n *ast.SetLiteral, env *environment.Environment) (value.Value, error) {
	elems, err := e.evalExpressionsWithSpread(n.Elements, env)
	if err != nil {
		return nil, err
	}
	set, err := value.NewSet(elems...)
	if err != nil {
		return nil, langerr.New(langerr.Type, n.Span(), "%s", err.Error())
	}
	return set, nil
}

func (e *Evaluator) evalDictLiteral(n *ast.DictLiteral, env *environment.Environment) (value.Value, error) {
	dict := value.NewDictionary()
	for _, entry := range n.Entries {
		if spread, ok := entry.Value.(*ast.SpreadExpression); ok {
			v, err := e.Eval(spread.Value, env)
			if err != nil {
				return nil, err
			}
			src, ok := v.(*value.Dictionary)
			if !ok {
				return nil, langerr.New(langerr.Type, spread.Span(), "cannot spread a value of kind %s into a dictionary", v.Kind())
			}
			for _, kv := range src.Entries() {
				var err error
				dict, err = dict.With(kv.Key, kv.Value)
				if err != nil {
					return nil, langerr.New(langerr.Type, entry.Key.Span(), "%s", err.Error())
				}
			}
			continue
		}
		k, err := e.Eval(entry.Key, env)
		if err != nil {
			return nil, err
		}
		val, err := e.Eval(entry.Value, env)
		if err != nil {
			return nil, err
		}
		dict, err = dict.With(k, val)
		if err != nil {
			return nil, langerr.New(langerr.Type, entry.Key.Span(), "%s", err.Error())
		}
	}
	return dict, nil
}

func (e *Evaluator) evalIndex(n *ast.IndexExpression, env *environment.Environment) (value.Value, error) {
	left, err := e.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	idx, err := e.Eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	return indexValue(left, idx, n.Span())
}

func (e *Evaluator) evalIf(n *ast.IfExpression, env *environment.Environment) (value.Value, error) {
	cond, err := e.Eval(n.Condition, env)
	if err != nil {
		return nil, err
	}
	if cond.Truthy() {
		return e.Eval(n.Then, environment.NewChild(env))
	}
	if n.Else != nil {
		return e.Eval(n.Else, environment.NewChild(env))
	}
	return value.NilValue, nil
}
