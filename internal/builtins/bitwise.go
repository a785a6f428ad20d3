package builtins

import (
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// bitwiseBuiltins supplements the operator table with the integer
// bitwise operators (`&`, `|`, `^`, `<<`, `>>`, `~`) that spec.md's
// operator grammar never gives dedicated infix syntax to, but which
// the builtin-library share of the source and the "bare operator token
// parses as an identifier" clause imply still need a callable binding
// (see original_source/lang/src/evaluator/builtins/bitwise.rs).
func bitwiseBuiltins() map[string]value.Value {
	return map[string]value.Value{
		"&":  builtin("&", 2, bitwiseBinary(func(a, b int64) int64 { return a & b })),
		"|":  builtin("|", 2, bitwiseBinary(func(a, b int64) int64 { return a | b })),
		"^":  builtin("^", 2, bitwiseBinary(func(a, b int64) int64 { return a ^ b })),
		"<<": builtin("<<", 2, bitwiseBinary(func(a, b int64) int64 { return a << uint(b) })),
		">>": builtin(">>", 2, bitwiseBinary(func(a, b int64) int64 { return a >> uint(b) })),
		"~":  builtin("~", 1, bitwiseUnary(func(a int64) int64 { return ^a })),
	}
}

func bitwiseBinary(op func(a, b int64) int64) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		a, ok := args[0].(value.Integer)
		if !ok {
			return nil, typeErr(sp, "bitwise operator expects an integer, got %s", args[0].Kind())
		}
		b, ok := args[1].(value.Integer)
		if !ok {
			return nil, typeErr(sp, "bitwise operator expects an integer, got %s", args[1].Kind())
		}
		return value.NewInteger(op(int64(a), int64(b))), nil
	}
}

func bitwiseUnary(op func(a int64) int64) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		a, ok := args[0].(value.Integer)
		if !ok {
			return nil, typeErr(sp, "bitwise operator expects an integer, got %s", args[0].Kind())
		}
		return value.NewInteger(op(int64(a))), nil
	}
}
