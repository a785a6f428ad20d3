/*
Package builtins implements the standard library: the polymorphic
collection combinators (map/filter/fold/each/reduce/find/count/any?/
all?/includes?/excludes?/sum/first/rest/size/sort), the conversion
builtins (list/set/dict/string/int/float/bool), and the bitwise and regex
builtins. The bare-operator-as-function bindings that let `+`, `-`, etc.
be passed as values (`fold(0, +)`) are declared by package evaluator, not
here (see Register). None of this has a direct teacher equivalent —
akashmaji946-go-mix's std package covers a much smaller, non-generic
surface — so each combinator is grounded on the specification's §4.7
polymorphism contract directly, using github.com/samber/lo's UniqBy for
the `set` conversion's dedup pass, and
github.com/dlclark/regexp2 for the regex builtins (teacher has none;
regexp2 is pulled from the rest of the example pack's dependency
surface since stdlib's regexp lacks backreferences original_source's
regex builtins rely on).
*/
package builtins

import (
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// Apply is the callback into the evaluator's function-application logic,
// injected at registration time so this package never imports package
// evaluator (which itself registers these builtins — an import cycle
// otherwise).
type Apply func(fn value.Value, args []value.Value, callSpan span.Span) (value.Value, error)

// Register declares every builtin in this package into env as an
// immutable binding. The bare-operator-as-function bindings (`+`, `==`,
// `&&`, ...) are NOT registered here: they depend on the evaluator's own
// ApplyInfixOp, so package evaluator registers those itself alongside a
// call to Register (see evaluator.NewGlobalEnvironment), keeping this
// package free of an import back onto evaluator.
func Register(env *environment.Environment, apply Apply) error {
	groups := []map[string]value.Value{
		collectionBuiltins(apply),
		conversionBuiltins(),
		bitwiseBuiltins(),
		regexBuiltins(),
	}
	for _, group := range groups {
		for name, fn := range group {
			if err := env.Declare(name, fn, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func builtin(name string, arity int, host value.BuiltinFn) value.Value {
	return value.Function{Kind: value.BuiltinFunc, Name: name, Arity: arity, Host: host}
}

func typeErr(sp span.Span, format string, args ...any) error {
	return langerr.New(langerr.Type, sp, format, args...)
}

func domainErr(sp span.Span, format string, args ...any) error {
	return langerr.New(langerr.Domain, sp, format, args...)
}
