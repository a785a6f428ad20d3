/*
Package value implements the tagged runtime value model: the Value
variants produced by the evaluator, their equality/hashing/truthiness
rules, and display formatting. It mirrors the shape of the teacher
interpreter's objects package (a small tagged-union hierarchy dispatched
by a Kind enum) generalized to this language's richer value set —
persistent collections, lazy sequences, and the four function variants.
*/
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/span"
)

// Kind discriminates the runtime value variants.
type Kind int

const (
	NilKind Kind = iota
	IntegerKind
	DecimalKind
	BooleanKind
	StringKind
	ListKind
	SetKind
	DictionaryKind
	LazySequenceKind
	FunctionKind
	PlaceholderKind
	ReturnKind
	BreakKind
)

func (k Kind) String() string {
	switch k {
	case NilKind:
		return "nil"
	case IntegerKind:
		return "integer"
	case DecimalKind:
		return "decimal"
	case BooleanKind:
		return "boolean"
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case SetKind:
		return "set"
	case DictionaryKind:
		return "dictionary"
	case LazySequenceKind:
		return "lazy sequence"
	case FunctionKind:
		return "function"
	case PlaceholderKind:
		return "placeholder"
	case ReturnKind:
		return "return"
	case BreakKind:
		return "break"
	default:
		return "unknown"
	}
}

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	String() string
	Truthy() bool
}

// Hashable is implemented by the value variants legal as Set members or
// Dictionary keys (everything except Function and LazySequence).
type Hashable interface {
	Value
	Hash() uint64
}

// ---- Nil ----

type Nil struct{}

var NilValue = Nil{}

func (Nil) Kind() Kind      { return NilKind }
func (Nil) String() string  { return "nil" }
func (Nil) Truthy() bool    { return false }
func (Nil) Hash() uint64    { return 0 }

// ---- Integer ----

type Integer int64

// smallIntCache interns boxed Integer values in [-128, 255], the same
// range Go's own runtime interns for small-int-to-interface conversions;
// it plays the role the original Rust implementation's object pool
// (evaluator/object_pool.rs) plays for Rc<Object>-boxed small integers,
// cheaply cutting down on interface-boxing allocations for the integers
// loop counters and list indices overwhelmingly land on.
var smallIntCache [384]Value

func init() {
	for i := range smallIntCache {
		smallIntCache[i] = Integer(i - 128)
	}
}

// NewInteger returns a (possibly interned) Value wrapping n.
func NewInteger(n int64) Value {
	if n >= -128 && n <= 255 {
		return smallIntCache[n+128]
	}
	return Integer(n)
}

func (Integer) Kind() Kind     { return IntegerKind }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) Truthy() bool { return i != 0 }
func (i Integer) Hash() uint64 { return uint64(i) }

// ---- Decimal ----

type Decimal float64

func (Decimal) Kind() Kind { return DecimalKind }

func (d Decimal) String() string {
	s := strconv.FormatFloat(float64(d), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (d Decimal) Truthy() bool { return d != 0 }

// Hash hashes by raw bit pattern, so NaN hashes consistently with itself.
// +0 and -0 compare equal under Compare, so both hash as +0, keeping the
// hash consistent with the comparison used for set/dictionary membership.
func (d Decimal) Hash() uint64 {
	if d == 0 {
		return 0
	}
	return math.Float64bits(float64(d))
}

// Compare gives Decimal a total order (NaN sorts below everything, by
// convention, rather than being incomparable) so decimals are always
// sortable and hashable.
func (d Decimal) Compare(other Decimal) int {
	a, b := float64(d), float64(other)
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return -1
	case math.IsNaN(b):
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ---- Boolean ----

type Boolean bool

func (Boolean) Kind() Kind      { return BooleanKind }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (b Boolean) Truthy() bool  { return bool(b) }

func (b Boolean) Hash() uint64 {
	if b {
		return 1
	}
	return 0
}

// ---- String ----

type String string

func (String) Kind() Kind { return StringKind }

func (s String) String() string { return string(s) }

func (s String) Truthy() bool { return len(s) > 0 }

func (s String) Hash() uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// ---- List ----

// List is a persistent ordered sequence. Operations that would mutate a
// list instead return a new List value; the backing slice is never
// written to in place once shared.
type List struct {
	Elements []Value
}

func NewList(elems ...Value) *List { return &List{Elements: elems} }

func (*List) Kind() Kind     { return ListKind }
func (l *List) Truthy() bool { return len(l.Elements) > 0 }

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = Inspect(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// With returns a new List with elem appended, sharing the existing
// backing elements.
func (l *List) With(elem Value) *List {
	next := make([]Value, len(l.Elements)+1)
	copy(next, l.Elements)
	next[len(l.Elements)] = elem
	return &List{Elements: next}
}

// ---- Set ----

// Set is a persistent unordered collection of distinct Hashable values,
// preserving first-insertion order for display and iteration (as the
// teacher's map-backed collections do).
type Set struct {
	order []Value
	index map[uint64][]int
}

func NewSet(elems ...Value) (*Set, error) {
	s := &Set{index: make(map[uint64][]int)}
	for _, e := range elems {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (*Set) Kind() Kind     { return SetKind }
func (s *Set) Truthy() bool { return len(s.order) > 0 }

func (s *Set) String() string {
	parts := make([]string, len(s.order))
	for i, e := range s.order {
		parts[i] = Inspect(e)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Set) Elements() []Value { return s.order }
func (s *Set) Len() int          { return len(s.order) }

func (s *Set) Contains(v Value) bool {
	h, ok := v.(Hashable)
	if !ok {
		return false
	}
	hash := h.Hash()
	for _, i := range s.index[hash] {
		if Equal(s.order[i], v) {
			return true
		}
	}
	return false
}

// Add inserts v if not already present; it errors if v is not Hashable.
func (s *Set) Add(v Value) error {
	h, ok := v.(Hashable)
	if !ok {
		return fmt.Errorf("value of kind %s is not hashable", v.Kind())
	}
	if s.Contains(v) {
		return nil
	}
	hash := h.Hash()
	s.index[hash] = append(s.index[hash], len(s.order))
	s.order = append(s.order, v)
	return nil
}

// Without returns a new Set with v removed, if present.
func (s *Set) Without(v Value) *Set {
	next, _ := NewSet()
	for _, e := range s.order {
		if !Equal(e, v) {
			_ = next.Add(e)
		}
	}
	return next
}

// ---- Dictionary ----

// dictEntry is one key/value pair of a Dictionary, kept in an
// order-preserving slice alongside a hash index for O(1)-amortized
// lookup; insertion order is irrelevant to equality but kept for stable
// display.
type dictEntry struct {
	Key   Value
	Value Value
}

type Dictionary struct {
	entries []dictEntry
	index   map[uint64][]int
}

func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[uint64][]int)}
}

func (*Dictionary) Kind() Kind      { return DictionaryKind }
func (d *Dictionary) Truthy() bool  { return len(d.entries) > 0 }
func (d *Dictionary) Len() int      { return len(d.entries) }
func (d *Dictionary) Entries() []struct{ Key, Value Value } {
	out := make([]struct{ Key, Value Value }, len(d.entries))
	for i, e := range d.entries {
		out[i] = struct{ Key, Value Value }{e.Key, e.Value}
	}
	return out
}

func (d *Dictionary) String() string {
	parts := make([]string, len(d.entries))
	for i, e := range d.entries {
		parts[i] = fmt.Sprintf("%s: %s", Inspect(e.Key), Inspect(e.Value))
	}
	return "#{" + strings.Join(parts, ", ") + "}"
}

func (d *Dictionary) find(key Value) (int, bool) {
	h, ok := key.(Hashable)
	if !ok {
		return -1, false
	}
	for _, i := range d.index[h.Hash()] {
		if Equal(d.entries[i].Key, key) {
			return i, true
		}
	}
	return -1, false
}

func (d *Dictionary) Get(key Value) (Value, bool) {
	i, ok := d.find(key)
	if !ok {
		return nil, false
	}
	return d.entries[i].Value, true
}

// With returns a new Dictionary with key bound to val, replacing any
// existing binding for an equal key. Errors if key is not Hashable.
func (d *Dictionary) With(key, val Value) (*Dictionary, error) {
	h, ok := key.(Hashable)
	if !ok {
		return nil, fmt.Errorf("value of kind %s is not a valid dictionary key", key.Kind())
	}
	next := &Dictionary{
		entries: append([]dictEntry(nil), d.entries...),
		index:   make(map[uint64][]int, len(d.index)),
	}
	for hash, idxs := range d.index {
		next.index[hash] = append([]int(nil), idxs...)
	}
	if i, ok := next.find(key); ok {
		next.entries[i].Value = val
		return next, nil
	}
	hash := h.Hash()
	next.index[hash] = append(next.index[hash], len(next.entries))
	next.entries = append(next.entries, dictEntry{Key: key, Value: val})
	return next, nil
}

// Without returns a new Dictionary with key removed, if present.
func (d *Dictionary) Without(key Value) *Dictionary {
	next := NewDictionary()
	for _, e := range d.entries {
		if !Equal(e.Key, key) {
			next, _ = next.With(e.Key, e.Value)
		}
	}
	return next
}

// SortedKeysView returns entries sorted by key display, for output whose
// order must not depend on insertion history. No package in this module
// calls it at present.
func (d *Dictionary) SortedKeysView() []dictEntry {
	out := append([]dictEntry(nil), d.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// ---- LazySequence ----

// Iterator pulls successive elements from a LazySequence; each call to
// NewIterator below must return a fresh Iterator so that a sequence
// value can be iterated more than once, restarting from the beginning.
type Iterator interface {
	Next() (Value, bool)
}

// LazySequence wraps a generator-or-transform pipeline as a restartable,
// single-pass pull source. The generator/transform composition itself
// lives in package lazyseq; this type is the value-level handle the
// evaluator and builtins pass around.
type LazySequence struct {
	NewIterator func() Iterator
	// Describe renders the sequence's generator/transform chain for
	// display purposes (e.g. "<lazy sequence>") without materializing it.
	Describe string
}

func (LazySequence) Kind() Kind { return LazySequenceKind }
func (LazySequence) Truthy() bool { return true }

func (l LazySequence) String() string {
	if l.Describe != "" {
		return l.Describe
	}
	return "<lazy sequence>"
}

// ---- Function ----

type FuncKind int

const (
	ClosureFunc FuncKind = iota
	BuiltinFunc
	ExternalFunc
	CompositionFunc
)

// Function is the unified callable value. Env is an opaque handle to the
// evaluator's environment type (kept as `any` here, rather than importing
// package environment, to avoid a value<->environment import cycle: the
// environment stores Values, so Value cannot also import Environment).
type Function struct {
	Kind FuncKind

	// Closure
	Params []ast.Pattern
	Rest   string
	Body   ast.Statement
	Env    any

	// Builtin / External
	Name    string
	Arity   int
	Bound   map[string]Value // partially-applied argument bindings, keyed by positional name ("a", "b", ...)
	Host    BuiltinFn         // BuiltinFunc only
	ExtCall ExternalCallFn    // ExternalFunc only

	// Composition
	Stages []Value
}

// BuiltinFn is the host-side implementation of a Builtin function.
// args is positional, already including any previously-bound partial
// arguments threaded back in by the caller.
type BuiltinFn func(args []Value, callSpan span.Span) (Value, error)

// ExternalCallFn is the host embedding's callback for an External
// function: args maps positional names ("a", "b", ...) to argument values.
type ExternalCallFn func(args map[string]Value, callSpan span.Span) (Value, error)

func (Function) Kind() Kind      { return FunctionKind }
func (Function) Truthy() bool    { return true }

func (f Function) String() string {
	switch f.Kind {
	case ClosureFunc:
		return "<function>"
	case BuiltinFunc:
		return fmt.Sprintf("<builtin %s>", f.Name)
	case ExternalFunc:
		return fmt.Sprintf("<external %s>", f.Name)
	case CompositionFunc:
		return "<composed function>"
	default:
		return "<function>"
	}
}

// ---- Placeholder ----

type Placeholder struct{}

func (Placeholder) Kind() Kind      { return PlaceholderKind }
func (Placeholder) String() string  { return "_" }
func (Placeholder) Truthy() bool    { return true }

// ---- Control signals ----

// Return and Break are in-band control signals: they wrap the value
// being returned/broken-with and are unwrapped by the statement-block
// and combinator evaluation code. User code never observes one directly.

type Return struct{ Value Value }

func (Return) Kind() Kind      { return ReturnKind }
func (r Return) String() string { return r.Value.String() }
func (r Return) Truthy() bool  { return r.Value.Truthy() }

type Break struct{ Value Value }

func (Break) Kind() Kind      { return BreakKind }
func (b Break) String() string { return b.Value.String() }
func (b Break) Truthy() bool  { return b.Value.Truthy() }

// Unwrap strips Return/Break wrappers, returning the underlying value.
func Unwrap(v Value) Value {
	switch x := v.(type) {
	case Return:
		return Unwrap(x.Value)
	case Break:
		return Unwrap(x.Value)
	default:
		return v
	}
}

// ---- Equality ----

// Equal implements the equality rules from the data model: numeric
// variants compare only within their own variant, collections compare
// structurally, functions and lazy sequences never compare equal.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Nil:
		return true
	case Integer:
		return av == b.(Integer)
	case Decimal:
		return av.Compare(b.(Decimal)) == 0
	case Boolean:
		return av == b.(Boolean)
	case String:
		return av == b.(String)
	case *List:
		bv := b.(*List)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Set:
		bv := b.(*Set)
		if av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.order {
			if !bv.Contains(e) {
				return false
			}
		}
		return true
	case *Dictionary:
		bv := b.(*Dictionary)
		if av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.entries {
			bval, ok := bv.Get(e.Key)
			if !ok || !Equal(e.Value, bval) {
				return false
			}
		}
		return true
	case Placeholder:
		return true
	default:
		// Function, LazySequence: never equal, even to themselves.
		return false
	}
}

// ---- Numeric coercion helpers ----
//
// Arithmetic dispatch lives in package evaluator/builtins; these helpers
// centralize the Integer/Decimal <-> float64 coercion they both need,
// using spf13/cast so the conversion logic (and its error messages)
// matches the rest of the pack's numeric-coercion style rather than
// hand-rolled type switches.

// AsFloat64 reports the float64 value of an Integer or Decimal, or false
// for any other Kind.
func AsFloat64(v Value) (float64, bool) {
	switch x := v.(type) {
	case Integer:
		f, err := cast.ToFloat64E(int64(x))
		return f, err == nil
	case Decimal:
		return float64(x), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether v is an Integer or Decimal.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Integer, Decimal:
		return true
	default:
		return false
	}
}

// Inspect renders v the way it would appear nested inside a collection
// literal (strings quoted), as opposed to String() which renders a
// string's own contents bare.
func Inspect(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}
