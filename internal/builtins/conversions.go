package builtins

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

func conversionBuiltins() map[string]value.Value {
	return map[string]value.Value{
		"list":   builtin("list", 1, listFn),
		"set":    builtin("set", 1, setFn),
		"dict":   builtin("dict", 1, dictFn),
		"string": builtin("string", 1, stringFn),
		"int":    builtin("int", 1, intFn),
		"float":  builtin("float", 1, floatFn),
		"bool":   builtin("bool", 1, boolFn),
	}
}

func listFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "list expects a collection, got %s", args[0].Kind())
	}
	return value.NewList(elems...), nil
}

// setFn builds a Set from any collection, deduplicating via samber/lo's
// generic Uniq over each element's display form (the value model's own
// Hashable contract already guarantees structural dedup through Set.Add;
// lo.UniqBy here just avoids doing the O(n^2) membership scan twice for
// values lacking a cheap hash bucket, e.g. a freshly-gathered slice from
// a lazy sequence).
func setFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "set expects a collection, got %s", args[0].Kind())
	}
	deduped := lo.UniqBy(elems, func(v value.Value) string { return value.Inspect(v) })
	out, err := value.NewSet(deduped...)
	if err != nil {
		return nil, domainErr(sp, "%s", err.Error())
	}
	return out, nil
}

func dictFn(args []value.Value, sp span.Span) (value.Value, error) {
	if d, ok := args[0].(*value.Dictionary); ok {
		return d, nil
	}
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "dict expects a collection of [key, value] pairs, got %s", args[0].Kind())
	}
	out := value.NewDictionary()
	for _, e := range elems {
		pair, ok := e.(*value.List)
		if !ok || len(pair.Elements) != 2 {
			return nil, typeErr(sp, "dict expects a collection of [key, value] pairs")
		}
		var err error
		out, err = out.With(pair.Elements[0], pair.Elements[1])
		if err != nil {
			return nil, domainErr(sp, "%s", err.Error())
		}
	}
	return out, nil
}

func stringFn(args []value.Value, sp span.Span) (value.Value, error) {
	if s, ok := args[0].(value.String); ok {
		return s, nil
	}
	return value.String(args[0].String()), nil
}

func intFn(args []value.Value, sp span.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Integer:
		return v, nil
	case value.Decimal:
		return value.NewInteger(int64(v)), nil
	case value.String:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, domainErr(sp, "%q is not a valid integer", string(v))
		}
		return value.NewInteger(n), nil
	case value.Boolean:
		if v {
			return value.NewInteger(1), nil
		}
		return value.NewInteger(0), nil
	default:
		return nil, typeErr(sp, "cannot convert %s to an integer", args[0].Kind())
	}
}

func floatFn(args []value.Value, sp span.Span) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Decimal:
		return v, nil
	case value.Integer:
		return value.Decimal(float64(v)), nil
	case value.String:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, domainErr(sp, "%q is not a valid decimal", string(v))
		}
		return value.Decimal(f), nil
	default:
		return nil, typeErr(sp, "cannot convert %s to a decimal", args[0].Kind())
	}
}

func boolFn(args []value.Value, sp span.Span) (value.Value, error) {
	return value.Boolean(args[0].Truthy()), nil
}
