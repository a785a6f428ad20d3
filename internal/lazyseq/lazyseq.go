/*
Package lazyseq implements the lazy sequence engine: generator kinds
(range variants, repeat, cycle, iterate) composed with an ordered list
of transforms (map, filter, filter_map, skip, zip). Every sequence is a
restartable, single-pass pull iterator, per value.LazySequence's
contract. There is no teacher equivalent (akashmaji946-go-mix has no
lazy evaluation), so this package is grounded directly on the
specification's §4.5 contract and, for exact generator semantics
(inclusive/exclusive/unbounded step ranges, cycle, iterate), on
original_source/evaluator/lazy_sequence.rs.
*/
package lazyseq

import "github.com/eddmann/santa-lang-go/internal/value"

// funcIterator adapts a plain closure into a value.Iterator.
type funcIterator struct {
	next func() (value.Value, bool)
}

func (f *funcIterator) Next() (value.Value, bool) { return f.next() }

func fromFunc(make func() func() (value.Value, bool)) value.LazySequence {
	return value.LazySequence{
		NewIterator: func() value.Iterator {
			return &funcIterator{next: make()}
		},
	}
}

// RangeExclusive generates start, start+step, ... stopping before end.
func RangeExclusive(start, end, step int64) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		cur := start
		return func() (value.Value, bool) {
			if step > 0 && cur >= end {
				return nil, false
			}
			if step < 0 && cur <= end {
				return nil, false
			}
			v := value.NewInteger(cur)
			cur += step
			return v, true
		}
	})
}

// RangeInclusive is as RangeExclusive but includes end.
func RangeInclusive(start, end, step int64) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		cur := start
		done := false
		return func() (value.Value, bool) {
			if done {
				return nil, false
			}
			if step > 0 && cur > end {
				return nil, false
			}
			if step < 0 && cur < end {
				return nil, false
			}
			v := value.NewInteger(cur)
			if (step > 0 && cur+step > end) || (step < 0 && cur+step < end) {
				done = true
			}
			cur += step
			return v, true
		}
	})
}

// RangeUnbounded generates start, start+step, ... forever.
func RangeUnbounded(start, step int64) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		cur := start
		return func() (value.Value, bool) {
			v := value.NewInteger(cur)
			cur += step
			return v, true
		}
	})
}

// Repeat yields v forever.
func Repeat(v value.Value) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		return func() (value.Value, bool) { return v, true }
	})
}

// Cycle yields the elements of elems repeatedly, forever. An empty elems
// yields an empty sequence.
func Cycle(elems []value.Value) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		i := 0
		return func() (value.Value, bool) {
			if len(elems) == 0 {
				return nil, false
			}
			v := elems[i%len(elems)]
			i++
			return v, true
		}
	})
}

// Iterate yields seed, f(seed), f(f(seed)), ... forever. A callback
// error aborts iteration by returning (nil, false); the caller
// distinguishes "exhausted" from "errored" via the accompanying err
// pointer, set at most once.
func Iterate(seed value.Value, f func(value.Value) (value.Value, error), errOut *error) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		cur := seed
		first := true
		return func() (value.Value, bool) {
			if first {
				first = false
				return cur, true
			}
			next, err := f(cur)
			if err != nil {
				*errOut = err
				return nil, false
			}
			cur = next
			return cur, true
		}
	})
}

// Map lazily applies f to every element of src.
func Map(src value.LazySequence, f func(value.Value) (value.Value, error), errOut *error) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		it := src.NewIterator()
		return func() (value.Value, bool) {
			v, ok := it.Next()
			if !ok {
				return nil, false
			}
			out, err := f(v)
			if err != nil {
				*errOut = err
				return nil, false
			}
			return out, true
		}
	})
}

// Filter lazily keeps elements of src for which pred returns true.
func Filter(src value.LazySequence, pred func(value.Value) (bool, error), errOut *error) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		it := src.NewIterator()
		return func() (value.Value, bool) {
			for {
				v, ok := it.Next()
				if !ok {
					return nil, false
				}
				keep, err := pred(v)
				if err != nil {
					*errOut = err
					return nil, false
				}
				if keep {
					return v, true
				}
			}
		}
	})
}

// FilterMap lazily applies f to every element, keeping only the Some
// results; f returns (value, true) to keep, (_, false) to skip.
func FilterMap(src value.LazySequence, f func(value.Value) (value.Value, bool, error), errOut *error) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		it := src.NewIterator()
		return func() (value.Value, bool) {
			for {
				v, ok := it.Next()
				if !ok {
					return nil, false
				}
				out, keep, err := f(v)
				if err != nil {
					*errOut = err
					return nil, false
				}
				if keep {
					return out, true
				}
			}
		}
	})
}

// Skip lazily drops the first n elements of src.
func Skip(src value.LazySequence, n int64) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		it := src.NewIterator()
		skipped := int64(0)
		return func() (value.Value, bool) {
			for skipped < n {
				if _, ok := it.Next(); !ok {
					return nil, false
				}
				skipped++
			}
			return it.Next()
		}
	})
}

// Zip combines src with others, yielding a *value.List tuple per step
// and stopping as soon as any operand is exhausted.
func Zip(src value.LazySequence, others []value.LazySequence) value.LazySequence {
	return fromFunc(func() func() (value.Value, bool) {
		it := src.NewIterator()
		rest := make([]value.Iterator, len(others))
		for i, o := range others {
			rest[i] = o.NewIterator()
		}
		return func() (value.Value, bool) {
			first, ok := it.Next()
			if !ok {
				return nil, false
			}
			tuple := make([]value.Value, 1+len(rest))
			tuple[0] = first
			for i, r := range rest {
				v, ok := r.Next()
				if !ok {
					return nil, false
				}
				tuple[i+1] = v
			}
			return value.NewList(tuple...), true
		}
	})
}

// Take materializes at most n elements from src; used by the `take`
// builtin. Full realization (list/set/dict, reduce, count, ...) goes
// through TakeAll instead.
func Take(src value.LazySequence, n int64) []value.Value {
	it := src.NewIterator()
	out := make([]value.Value, 0, n)
	for int64(len(out)) < n {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// TakeAll materializes every element of src. Calling this on a sequence
// with no bounding transform applied and an unbounded generator beneath
// it never returns — that mirrors the specification's stated behavior:
// realizing an unbounded sequence without a limit is a programmer error,
// not one this package can detect ahead of time.
func TakeAll(src value.LazySequence) []value.Value {
	it := src.NewIterator()
	var out []value.Value
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
