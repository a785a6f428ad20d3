package builtins

import (
	"github.com/eddmann/santa-lang-go/internal/lazyseq"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// toSlice realizes any of the collection variants into a plain Value
// slice for the eager combinators (fold/each/reduce/find/count/any?/
// all?/includes?/excludes?/sum/first/rest/size/sort). Dictionary yields
// [key, value] pair Lists, matching the target language's convention
// that a dictionary behaves as a sequence of entry pairs when treated
// as a generic collection.
func toSlice(v value.Value) ([]value.Value, bool) {
	switch x := v.(type) {
	case *value.List:
		return x.Elements, true
	case *value.Set:
		return x.Elements(), true
	case value.String:
		runes := []rune(string(x))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, true
	case *value.Dictionary:
		entries := x.Entries()
		out := make([]value.Value, len(entries))
		for i, e := range entries {
			out[i] = value.NewList(e.Key, e.Value)
		}
		return out, true
	case value.LazySequence:
		return lazyseq.TakeAll(x), true
	default:
		return nil, false
	}
}

func collectionBuiltins(apply Apply) map[string]value.Value {
	return map[string]value.Value{
		"map":       builtin("map", 2, mapFn(apply)),
		"filter":    builtin("filter", 2, filterFn(apply)),
		"filter_map": builtin("filter_map", 2, filterMapFn(apply)),
		"each":      builtin("each", 2, eachFn(apply)),
		"fold":      builtin("fold", 3, foldFn(apply)),
		"reduce":    builtin("reduce", 2, reduceFn(apply)),
		"find":      builtin("find", 2, findFn(apply)),
		"count":     builtin("count", 2, countFn(apply)),
		"any?":      builtin("any?", 2, anyFn(apply)),
		"all?":      builtin("all?", 2, allFn(apply)),
		"includes?": builtin("includes?", 2, includesFn),
		"excludes?": builtin("excludes?", 2, excludesFn),
		"sum":       builtin("sum", 1, sumFn),
		"first":     builtin("first", 1, firstFn),
		"rest":      builtin("rest", 1, restFn),
		"size":      builtin("size", 1, sizeFn),
		"sort":      builtin("sort", 1, sortFn),
		"sort_by":   builtin("sort_by", 2, sortByFn(apply)),
		"push":      builtin("push", 2, pushFn),
		"assoc":     builtin("assoc", 3, assocFn),
		"update":    builtin("update", 3, updateFn(apply)),
		"dissoc":    builtin("dissoc", 2, dissocFn),
		"zip":       builtin("zip", 2, zipFn),
		"take":      builtin("take", 2, takeFn),
		"skip":      builtin("skip", 2, skipFn),
		"keys":      builtin("keys", 1, keysFn),
		"values":    builtin("values", 1, valuesFn),
	}
}

func mapFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		switch t := target.(type) {
		case *value.List:
			out := make([]value.Value, len(t.Elements))
			for i, e := range t.Elements {
				r, err := apply(fn, []value.Value{e}, sp)
				if err != nil {
					return nil, err
				}
				out[i] = value.Unwrap(r)
			}
			return value.NewList(out...), nil
		case *value.Set:
			out, _ := value.NewSet()
			for _, e := range t.Elements() {
				r, err := apply(fn, []value.Value{e}, sp)
				if err != nil {
					return nil, err
				}
				if err := out.Add(value.Unwrap(r)); err != nil {
					return nil, domainErr(sp, "%s", err.Error())
				}
			}
			return out, nil
		case *value.Dictionary:
			out := value.NewDictionary()
			var err error
			for _, e := range t.Entries() {
				r, aerr := apply(fn, []value.Value{e.Value}, sp)
				if aerr != nil {
					return nil, aerr
				}
				out, err = out.With(e.Key, value.Unwrap(r))
				if err != nil {
					return nil, domainErr(sp, "%s", err.Error())
				}
			}
			return out, nil
		case value.String:
			runes := []rune(string(t))
			out := make([]value.Value, len(runes))
			for i, r := range runes {
				rv, err := apply(fn, []value.Value{value.String(string(r))}, sp)
				if err != nil {
					return nil, err
				}
				out[i] = value.Unwrap(rv)
			}
			return value.NewList(out...), nil
		case value.LazySequence:
			var mapErr error
			mapped := lazyseq.Map(t, func(e value.Value) (value.Value, error) {
				r, err := apply(fn, []value.Value{e}, sp)
				if err != nil {
					return nil, err
				}
				return value.Unwrap(r), nil
			}, &mapErr)
			return mapped, mapErr
		default:
			return nil, typeErr(sp, "map expects a collection target, got %s", target.Kind())
		}
	}
}

func filterFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		truthy := func(v value.Value) (bool, error) {
			r, err := apply(fn, []value.Value{v}, sp)
			if err != nil {
				return false, err
			}
			return value.Unwrap(r).Truthy(), nil
		}
		switch t := target.(type) {
		case *value.List:
			var out []value.Value
			for _, e := range t.Elements {
				ok, err := truthy(e)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, e)
				}
			}
			return value.NewList(out...), nil
		case *value.Set:
			out, _ := value.NewSet()
			for _, e := range t.Elements() {
				ok, err := truthy(e)
				if err != nil {
					return nil, err
				}
				if ok {
					_ = out.Add(e)
				}
			}
			return out, nil
		case *value.Dictionary:
			out := value.NewDictionary()
			for _, e := range t.Entries() {
				ok, err := truthy(value.NewList(e.Key, e.Value))
				if err != nil {
					return nil, err
				}
				if ok {
					var werr error
					out, werr = out.With(e.Key, e.Value)
					if werr != nil {
						return nil, domainErr(sp, "%s", werr.Error())
					}
				}
			}
			return out, nil
		case value.String:
			var out []rune
			for _, r := range string(t) {
				ok, err := truthy(value.String(string(r)))
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, r)
				}
			}
			return value.String(string(out)), nil
		case value.LazySequence:
			var ferr error
			filtered := lazyseq.Filter(t, func(v value.Value) (bool, error) { return truthy(v) }, &ferr)
			return filtered, ferr
		default:
			return nil, typeErr(sp, "filter expects a collection target, got %s", target.Kind())
		}
	}
}

func filterMapFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "filter_map expects a collection target, got %s", target.Kind())
		}
		var out []value.Value
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			r = value.Unwrap(r)
			if r.Truthy() {
				out = append(out, r)
			}
		}
		return rebuild(target, out, sp)
	}
}

// rebuild reassembles a result slice back into the same variant as
// template, used by combinators whose output length can differ from
// the input (filter_map), so they still "preserve the target variant
// where it makes sense" per §4.7.
func rebuild(template value.Value, elems []value.Value, sp span.Span) (value.Value, error) {
	switch template.(type) {
	case *value.Set:
		out, _ := value.NewSet()
		for _, e := range elems {
			if err := out.Add(e); err != nil {
				return nil, domainErr(sp, "%s", err.Error())
			}
		}
		return out, nil
	case value.String:
		var sb []rune
		for _, e := range elems {
			s, ok := e.(value.String)
			if !ok {
				return value.NewList(elems...), nil
			}
			sb = append(sb, []rune(string(s))...)
		}
		return value.String(string(sb)), nil
	default:
		return value.NewList(elems...), nil
	}
}

func eachFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "each expects a collection target, got %s", target.Kind())
		}
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			if _, isBreak := r.(value.Break); isBreak {
				break
			}
		}
		return value.NilValue, nil
	}
}

func foldFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		initial, fn, target := args[0], args[1], args[2]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "fold expects a collection target, got %s", target.Kind())
		}
		acc := initial
		for _, e := range elems {
			r, err := apply(fn, []value.Value{acc, e}, sp)
			if err != nil {
				return nil, err
			}
			if b, isBreak := r.(value.Break); isBreak {
				return value.Unwrap(b), nil
			}
			acc = value.Unwrap(r)
		}
		return acc, nil
	}
}

func reduceFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "reduce expects a collection target, got %s", target.Kind())
		}
		if len(elems) == 0 {
			return nil, domainErr(sp, "cannot reduce an empty %s", target.Kind())
		}
		acc := elems[0]
		for _, e := range elems[1:] {
			r, err := apply(fn, []value.Value{acc, e}, sp)
			if err != nil {
				return nil, err
			}
			if b, isBreak := r.(value.Break); isBreak {
				return value.Unwrap(b), nil
			}
			acc = value.Unwrap(r)
		}
		return acc, nil
	}
}

func findFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "find expects a collection target, got %s", target.Kind())
		}
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			if value.Unwrap(r).Truthy() {
				return e, nil
			}
		}
		return value.NilValue, nil
	}
}

func countFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "count expects a collection target, got %s", target.Kind())
		}
		n := int64(0)
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			if value.Unwrap(r).Truthy() {
				n++
			}
		}
		return value.NewInteger(n), nil
	}
}

func anyFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "any? expects a collection target, got %s", target.Kind())
		}
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			if value.Unwrap(r).Truthy() {
				return value.Boolean(true), nil
			}
		}
		return value.Boolean(false), nil
	}
}

func allFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "all? expects a collection target, got %s", target.Kind())
		}
		for _, e := range elems {
			r, err := apply(fn, []value.Value{e}, sp)
			if err != nil {
				return nil, err
			}
			if !value.Unwrap(r).Truthy() {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}
}

func includesFn(args []value.Value, sp span.Span) (value.Value, error) {
	needle, target := args[0], args[1]
	if d, ok := target.(*value.Dictionary); ok {
		_, found := d.Get(needle)
		return value.Boolean(found), nil
	}
	elems, ok := toSlice(target)
	if !ok {
		return nil, typeErr(sp, "includes? expects a collection target, got %s", target.Kind())
	}
	for _, e := range elems {
		if value.Equal(e, needle) {
			return value.Boolean(true), nil
		}
	}
	return value.Boolean(false), nil
}

func excludesFn(args []value.Value, sp span.Span) (value.Value, error) {
	r, err := includesFn(args, sp)
	if err != nil {
		return nil, err
	}
	return value.Boolean(!r.Truthy()), nil
}

func sumFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "sum expects a collection, got %s", args[0].Kind())
	}
	var intAcc int64
	var fltAcc float64
	isFloat := false
	for _, e := range elems {
		switch n := e.(type) {
		case value.Integer:
			if isFloat {
				fltAcc += float64(n)
			} else {
				intAcc += int64(n)
			}
		case value.Decimal:
			if !isFloat {
				fltAcc = float64(intAcc)
				isFloat = true
			}
			fltAcc += float64(n)
		default:
			return nil, typeErr(sp, "sum expects a collection of numbers, found %s", e.Kind())
		}
	}
	if isFloat {
		return value.Decimal(fltAcc), nil
	}
	return value.NewInteger(intAcc), nil
}

func firstFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "first expects a collection, got %s", args[0].Kind())
	}
	if len(elems) == 0 {
		return value.NilValue, nil
	}
	return elems[0], nil
}

func restFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "rest expects a collection, got %s", args[0].Kind())
	}
	if len(elems) == 0 {
		return rebuild(args[0], nil, sp)
	}
	return rebuild(args[0], elems[1:], sp)
}

func sizeFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "size expects a collection, got %s", args[0].Kind())
	}
	return value.NewInteger(int64(len(elems))), nil
}

func sortFn(args []value.Value, sp span.Span) (value.Value, error) {
	elems, ok := toSlice(args[0])
	if !ok {
		return nil, typeErr(sp, "sort expects a collection, got %s", args[0].Kind())
	}
	out := append([]value.Value(nil), elems...)
	insertionSortBy(out, lessValue)
	return rebuild(args[0], out, sp)
}

func sortByFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		fn, target := args[0], args[1]
		elems, ok := toSlice(target)
		if !ok {
			return nil, typeErr(sp, "sort_by expects a collection target, got %s", target.Kind())
		}
		out := append([]value.Value(nil), elems...)
		var applyErr error
		insertionSortBy(out, func(a, b value.Value) bool {
			if applyErr != nil {
				return false
			}
			r, err := apply(fn, []value.Value{a, b}, sp)
			if err != nil {
				applyErr = err
				return false
			}
			i, ok := value.Unwrap(r).(value.Integer)
			if !ok {
				applyErr = typeErr(sp, "sort_by comparator must return an integer")
				return false
			}
			return i < 0
		})
		if applyErr != nil {
			return nil, applyErr
		}
		return rebuild(target, out, sp)
	}
}

func insertionSortBy(elems []value.Value, less func(a, b value.Value) bool) {
	for i := 1; i < len(elems); i++ {
		for j := i; j > 0 && less(elems[j], elems[j-1]); j-- {
			elems[j], elems[j-1] = elems[j-1], elems[j]
		}
	}
}

// lessValue orders values by the data model's total order: numerics by
// value, strings lexically, booleans false<true; mixed incomparable
// kinds sort by Kind enum order as a stable fallback.
func lessValue(a, b value.Value) bool {
	af, aok := value.AsFloat64(a)
	bf, bok := value.AsFloat64(b)
	if aok && bok {
		return af < bf
	}
	as, aok2 := a.(value.String)
	bs, bok2 := b.(value.String)
	if aok2 && bok2 {
		return as < bs
	}
	ab, aok3 := a.(value.Boolean)
	bb, bok3 := b.(value.Boolean)
	if aok3 && bok3 {
		return !bool(ab) && bool(bb)
	}
	return a.Kind() < b.Kind()
}

func pushFn(args []value.Value, sp span.Span) (value.Value, error) {
	target, elem := args[0], args[1]
	switch t := target.(type) {
	case *value.List:
		return t.With(elem), nil
	case *value.Set:
		out, _ := value.NewSet(t.Elements()...)
		if err := out.Add(elem); err != nil {
			return nil, domainErr(sp, "%s", err.Error())
		}
		return out, nil
	default:
		return nil, typeErr(sp, "push expects a list or set, got %s", target.Kind())
	}
}

func assocFn(args []value.Value, sp span.Span) (value.Value, error) {
	target, key, val := args[0], args[1], args[2]
	switch t := target.(type) {
	case *value.Dictionary:
		out, err := t.With(key, val)
		if err != nil {
			return nil, domainErr(sp, "%s", err.Error())
		}
		return out, nil
	case *value.List:
		i, ok := key.(value.Integer)
		if !ok {
			return nil, typeErr(sp, "assoc on a list expects an integer index, got %s", key.Kind())
		}
		idx := normalizeIndex(int64(i), len(t.Elements))
		if idx < 0 || idx >= int64(len(t.Elements)) {
			return nil, domainErr(sp, "assoc index %d is out of bounds", int64(i))
		}
		out := make([]value.Value, len(t.Elements))
		copy(out, t.Elements)
		out[idx] = val
		return value.NewList(out...), nil
	default:
		return nil, typeErr(sp, "assoc expects a dictionary or list, got %s", target.Kind())
	}
}

func updateFn(apply Apply) value.BuiltinFn {
	return func(args []value.Value, sp span.Span) (value.Value, error) {
		target, key, fn := args[0], args[1], args[2]
		switch t := target.(type) {
		case *value.Dictionary:
			cur, _ := t.Get(key)
			if cur == nil {
				cur = value.NilValue
			}
			next, err := apply(fn, []value.Value{cur}, sp)
			if err != nil {
				return nil, err
			}
			out, werr := t.With(key, value.Unwrap(next))
			if werr != nil {
				return nil, domainErr(sp, "%s", werr.Error())
			}
			return out, nil
		case *value.List:
			i, ok := key.(value.Integer)
			if !ok {
				return nil, typeErr(sp, "update on a list expects an integer index, got %s", key.Kind())
			}
			idx := normalizeIndex(int64(i), len(t.Elements))
			if idx < 0 || idx >= int64(len(t.Elements)) {
				return nil, domainErr(sp, "update index %d is out of bounds", int64(i))
			}
			next, err := apply(fn, []value.Value{t.Elements[idx]}, sp)
			if err != nil {
				return nil, err
			}
			out := make([]value.Value, len(t.Elements))
			copy(out, t.Elements)
			out[idx] = value.Unwrap(next)
			return value.NewList(out...), nil
		default:
			return nil, typeErr(sp, "update expects a dictionary or list, got %s", target.Kind())
		}
	}
}

func dissocFn(args []value.Value, sp span.Span) (value.Value, error) {
	target, key := args[0], args[1]
	switch t := target.(type) {
	case *value.Dictionary:
		return t.Without(key), nil
	case *value.Set:
		return t.Without(key), nil
	default:
		return nil, typeErr(sp, "dissoc expects a dictionary or set, got %s", target.Kind())
	}
}

func zipFn(args []value.Value, sp span.Span) (value.Value, error) {
	a, b := args[0], args[1]
	as, aok := toSlice(a)
	bs, bok := toSlice(b)
	if !aok || !bok {
		return nil, typeErr(sp, "zip expects two collections")
	}
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = value.NewList(as[i], bs[i])
	}
	return value.NewList(out...), nil
}

func takeFn(args []value.Value, sp span.Span) (value.Value, error) {
	n, ok := args[0].(value.Integer)
	if !ok {
		return nil, typeErr(sp, "take expects an integer count, got %s", args[0].Kind())
	}
	if seq, ok := args[1].(value.LazySequence); ok {
		return value.NewList(lazyseq.Take(seq, int64(n))...), nil
	}
	elems, ok := toSlice(args[1])
	if !ok {
		return nil, typeErr(sp, "take expects a collection, got %s", args[1].Kind())
	}
	if int64(len(elems)) < int64(n) {
		return rebuild(args[1], elems, sp)
	}
	return rebuild(args[1], elems[:n], sp)
}

func skipFn(args []value.Value, sp span.Span) (value.Value, error) {
	n, ok := args[0].(value.Integer)
	if !ok {
		return nil, typeErr(sp, "skip expects an integer count, got %s", args[0].Kind())
	}
	if seq, ok := args[1].(value.LazySequence); ok {
		return lazyseq.Skip(seq, int64(n)), nil
	}
	elems, ok := toSlice(args[1])
	if !ok {
		return nil, typeErr(sp, "skip expects a collection, got %s", args[1].Kind())
	}
	if int64(len(elems)) < int64(n) {
		return rebuild(args[1], nil, sp)
	}
	return rebuild(args[1], elems[n:], sp)
}

func keysFn(args []value.Value, sp span.Span) (value.Value, error) {
	d, ok := args[0].(*value.Dictionary)
	if !ok {
		return nil, typeErr(sp, "keys expects a dictionary, got %s", args[0].Kind())
	}
	entries := d.Entries()
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return value.NewList(out...), nil
}

func valuesFn(args []value.Value, sp span.Span) (value.Value, error) {
	d, ok := args[0].(*value.Dictionary)
	if !ok {
		return nil, typeErr(sp, "values expects a dictionary, got %s", args[0].Kind())
	}
	entries := d.Entries()
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return value.NewList(out...), nil
}
