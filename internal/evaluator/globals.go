package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/builtins"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// binaryOperatorNames lists every infix operator token that §4.2's "a
// bare operator token parses as an identifier" clause requires a
// callable binding for (so `fold(0, +)` resolves `+` to a function
// value), excluding `&&`/`||`, which return one of their operands by
// truthiness and so get their own host functions below rather than
// routing through ApplyInfixOp.
var binaryOperatorNames = []string{"+", "-", "*", "/", "%", "==", "!=", "<", ">", "<=", ">="}

// NewGlobalEnvironment builds the root environment every program runs
// in: the builtins package's collection/conversion/bitwise/regex
// library, plus bindings for every operator token so it can be passed
// around as a value. Operator bindings live here rather than in
// package builtins because the arithmetic/comparison ones call this
// package's ApplyInfixOp, and package builtins must not import package
// evaluator. The `&&`/`||` bindings receive both operands already
// evaluated, so unlike the infix syntax they do not short-circuit.
func NewGlobalEnvironment() (*environment.Environment, *Evaluator, error) {
	env := environment.New()
	e := New()

	if err := builtins.Register(env, e.Apply); err != nil {
		return nil, nil, err
	}

	for _, op := range binaryOperatorNames {
		opName := op
		fn := value.Function{
			Kind:  value.BuiltinFunc,
			Name:  opName,
			Arity: 2,
			Host: func(args []value.Value, sp span.Span) (value.Value, error) {
				return ApplyInfixOp(opName, args[0], args[1], sp)
			},
		}
		if err := env.Declare(opName, fn, false); err != nil {
			return nil, nil, err
		}
	}

	and := value.Function{Kind: value.BuiltinFunc, Name: "&&", Arity: 2, Host: func(args []value.Value, sp span.Span) (value.Value, error) {
		if !args[0].Truthy() {
			return args[0], nil
		}
		return args[1], nil
	}}
	or := value.Function{Kind: value.BuiltinFunc, Name: "||", Arity: 2, Host: func(args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].Truthy() {
			return args[0], nil
		}
		return args[1], nil
	}}
	not := value.Function{Kind: value.BuiltinFunc, Name: "!", Arity: 1, Host: func(args []value.Value, sp span.Span) (value.Value, error) {
		return value.Boolean(!args[0].Truthy()), nil
	}}
	if err := env.Declare("&&", and, false); err != nil {
		return nil, nil, err
	}
	if err := env.Declare("||", or, false); err != nil {
		return nil, nil, err
	}
	if err := env.Declare("!", not, false); err != nil {
		return nil, nil, err
	}

	return env, e, nil
}
