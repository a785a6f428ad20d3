package evaluator

import (
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// indexValue implements E[I] for every indexable combination: list/string
// by integer or by a lazy sequence of integers (gathering a new list/
// string), and dictionary by key.
func indexValue(left, idx value.Value, sp span.Span) (value.Value, error) {
	switch l := left.(type) {
	case *value.List:
		if seq, ok := idx.(value.LazySequence); ok {
			return gatherList(l.Elements, seq), nil
		}
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, langerr.New(langerr.Type, sp, "cannot index a list with a value of kind %s", idx.Kind())
		}
		pos := normalizeIndex(int64(i), len(l.Elements))
		if pos < 0 || pos >= int64(len(l.Elements)) {
			return value.NilValue, nil
		}
		return l.Elements[pos], nil

	case value.String:
		runes := []rune(string(l))
		if seq, ok := idx.(value.LazySequence); ok {
			elems := make([]value.Value, len(runes))
			for i, r := range runes {
				elems[i] = value.String(string(r))
			}
			gathered := gatherList(elems, seq)
			var sb []rune
			for _, g := range gathered.(*value.List).Elements {
				sb = append(sb, []rune(string(g.(value.String)))...)
			}
			return value.String(string(sb)), nil
		}
		i, ok := idx.(value.Integer)
		if !ok {
			return nil, langerr.New(langerr.Type, sp, "cannot index a string with a value of kind %s", idx.Kind())
		}
		pos := normalizeIndex(int64(i), len(runes))
		if pos < 0 || pos >= int64(len(runes)) {
			return value.NilValue, nil
		}
		return value.String(string(runes[pos])), nil

	case *value.Dictionary:
		if v, ok := l.Get(idx); ok {
			return v, nil
		}
		return value.NilValue, nil

	default:
		return nil, langerr.New(langerr.Type, sp, "cannot index a value of kind %s", left.Kind())
	}
}

func normalizeIndex(i int64, length int) int64 {
	if i < 0 {
		return int64(length) + i
	}
	return i
}

// gatherList realizes idx (a lazy sequence of integers) against elems.
// Once the sequence has produced a negative index, gathering stops at its
// first non-negative index, so an unbounded negative range such as `-2..`
// yields the tail of elems. The rule applies to any index sequence,
// bounded or not.
func gatherList(elems []value.Value, idx value.LazySequence) value.Value {
	it := idx.NewIterator()
	var out []value.Value
	sawNegative := false
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		i, ok := v.(value.Integer)
		if !ok {
			break
		}
		if int64(i) < 0 {
			sawNegative = true
		} else if sawNegative {
			break
		}
		pos := normalizeIndex(int64(i), len(elems))
		if pos < 0 || pos >= int64(len(elems)) {
			continue
		}
		out = append(out, elems[pos])
	}
	return value.NewList(out...)
}
