package schema

import (
	"fmt"
)

// TypeDescriptor is the type of a field, argument or return value.
//
// The variant set is closed: ScalarDescriptor, ObjectDescriptor and
// ListDescriptor are the only implementations. Descriptors are values with no
// exported fields; "updating" one means building a new one.
type TypeDescriptor interface {
	// Kind returns the discriminant of the descriptor.
	Kind() TypeKind

	// Equal reports structural equality with other.
	Equal(other TypeDescriptor) bool

	String() string

	sealed()
}

// ScalarDescriptor carries only its kind tag.
type ScalarDescriptor struct {
	kind TypeKind
}

// ObjectDescriptor references a class by name. The reference is resolved
// against a Schema, never held as a pointer.
type ObjectDescriptor struct {
	name string
}

// ListDescriptor wraps the descriptor of its elements.
type ListDescriptor struct {
	elem TypeDescriptor
}

func (ScalarDescriptor) sealed() {}
func (ObjectDescriptor) sealed() {}
func (ListDescriptor) sealed() {}

func (d ScalarDescriptor) Kind() TypeKind { return d.kind }
func (ObjectDescriptor) Kind() TypeKind { return KindObject }
func (ListDescriptor) Kind() TypeKind { return KindList }

// Name returns the referenced class name.
func (d ObjectDescriptor) Name() string { return d.name }

// Elem returns the element descriptor.
func (d ListDescriptor) Elem() TypeDescriptor { return d.elem }

func (d ScalarDescriptor) String() string {
	switch d.kind {
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindVoid:
		return "Void"
	default:
		return d.kind.String()
	}
}

func (d ObjectDescriptor) String() string { return "Object(" + d.name + ")" }

func (d ListDescriptor) String() string {
	if d.elem == nil {
		return "List(<nil>)"
	}
	return "List(" + d.elem.String() + ")"
}

func (d ScalarDescriptor) Equal(other TypeDescriptor) bool {
	o, ok := other.(ScalarDescriptor)
	return ok && o.kind == d.kind
}

func (d ObjectDescriptor) Equal(other TypeDescriptor) bool {
	o, ok := other.(ObjectDescriptor)
	return ok && o.name == d.name
}

func (d ListDescriptor) Equal(other TypeDescriptor) bool {
	o, ok := other.(ListDescriptor)
	return ok && Equal(d.elem, o.elem)
}

// Equal reports whether a and b have the same kind and, recursively, the same
// payload. Two nil descriptors are equal.
func Equal(a, b TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// String returns the String scalar.
func String() ScalarDescriptor { return ScalarDescriptor{kind: KindString} }

// Integer returns the Integer scalar.
func Integer() ScalarDescriptor { return ScalarDescriptor{kind: KindInteger} }

// Float returns the Float scalar.
func Float() ScalarDescriptor { return ScalarDescriptor{kind: KindFloat} }

// Boolean returns the Boolean scalar.
func Boolean() ScalarDescriptor { return ScalarDescriptor{kind: KindBoolean} }

// Void returns the Void scalar, used for functions without a result.
func Void() ScalarDescriptor { return ScalarDescriptor{kind: KindVoid} }

// NewScalar returns the scalar descriptor for kind.
func NewScalar(kind TypeKind) (ScalarDescriptor, error) {
	if !kind.valid() {
		return ScalarDescriptor{}, newError(CodeUnknownKind, "", fmt.Sprintf("unknown type kind %d", int(kind)))
	}
	if !kind.IsScalar() {
		return ScalarDescriptor{}, newError(CodeMalformedTypeDescriptor, "", kind.String()+" is not a scalar kind")
	}
	return ScalarDescriptor{kind: kind}, nil
}

// NewObject returns a reference to the class called name.
func NewObject(name string) (ObjectDescriptor, error) {
	if name == "" {
		return ObjectDescriptor{}, newError(CodeMalformedTypeDescriptor, "", "ObjectKind requires a name")
	}
	return ObjectDescriptor{name: name}, nil
}

// NewList returns a list of elem. elem must itself be well formed.
func NewList(elem TypeDescriptor) (ListDescriptor, error) {
	if elem == nil {
		return ListDescriptor{}, newError(CodeMalformedTypeDescriptor, "", "ListKind requires an element type")
	}
	if err := ValidateType(elem); err != nil {
		return ListDescriptor{}, err
	}
	return ListDescriptor{elem: elem}, nil
}

// MustObject is like NewObject but panics on error.
func MustObject(name string) ObjectDescriptor {
	d, err := NewObject(name)
	if err != nil {
		panic(err)
	}
	return d
}

// MustList is like NewList but panics on error.
func MustList(elem TypeDescriptor) ListDescriptor {
	d, err := NewList(elem)
	if err != nil {
		panic(err)
	}
	return d
}

// New builds a descriptor from a kind tag and the payload that came with it.
// The payload must match the shape required by kind exactly: objects carry a
// name and nothing else, lists carry an element and nothing else, scalars
// carry neither.
func New(kind TypeKind, name string, elem TypeDescriptor) (TypeDescriptor, error) {
	switch {
	case !kind.valid():
		return nil, newError(CodeUnknownKind, "", fmt.Sprintf("unknown type kind %d", int(kind)))
	case kind == KindObject:
		if elem != nil {
			return nil, newError(CodeMalformedTypeDescriptor, "", "ObjectKind does not take an element type")
		}
		return nonNil(NewObject(name))
	case kind == KindList:
		if name != "" {
			return nil, newError(CodeMalformedTypeDescriptor, "", "ListKind does not take a name")
		}
		return nonNil(NewList(elem))
	default:
		if name != "" || elem != nil {
			return nil, newError(CodeMalformedTypeDescriptor, "", kind.String()+" does not take a payload")
		}
		return nonNil(NewScalar(kind))
	}
}

// nonNil drops the zero descriptor returned alongside an error so callers of
// New get a nil interface.
func nonNil[T TypeDescriptor](d T, err error) (TypeDescriptor, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ValidateType checks that td and every nested element is well formed. It
// catches zero-value literals such as ObjectDescriptor{} that bypassed the
// constructors.
func ValidateType(td TypeDescriptor) error {
	switch d := td.(type) {
	case nil:
		return newError(CodeMalformedTypeDescriptor, "", "missing type descriptor")
	case ScalarDescriptor:
		if !d.kind.valid() {
			return newError(CodeUnknownKind, "", fmt.Sprintf("unknown type kind %d", int(d.kind)))
		}
		if !d.kind.IsScalar() {
			return newError(CodeMalformedTypeDescriptor, "", d.kind.String()+" is not a scalar kind")
		}
		return nil
	case ObjectDescriptor:
		if d.name == "" {
			return newError(CodeMalformedTypeDescriptor, "", "ObjectKind requires a name")
		}
		return nil
	case ListDescriptor:
		if d.elem == nil {
			return newError(CodeMalformedTypeDescriptor, "", "ListKind requires an element type")
		}
		return ValidateType(d.elem)
	default:
		return newError(CodeUnknownKind, "", fmt.Sprintf("unknown type descriptor %T", td))
	}
}

// Unwrap follows list elements until it reaches a non-list descriptor and
// returns it together with the number of lists unwrapped.
func Unwrap(td TypeDescriptor) (TypeDescriptor, int) {
	depth := 0
	for {
		l, ok := td.(ListDescriptor)
		if !ok {
			return td, depth
		}
		td = l.elem
		depth++
	}
}

// Visitor handles each descriptor variant.
type Visitor[R any] interface {
	VisitScalar(d ScalarDescriptor) (R, error)
	VisitObject(d ObjectDescriptor) (R, error)
	VisitList(d ListDescriptor) (R, error)
}

// Walk dispatches td to the matching Visitor method. Anything outside the
// closed variant set fails with ErrUnknownKind.
func Walk[R any](td TypeDescriptor, v Visitor[R]) (R, error) {
	var zero R
	switch d := td.(type) {
	case ScalarDescriptor:
		if !d.kind.IsScalar() {
			return zero, newError(CodeUnknownKind, "", fmt.Sprintf("unknown scalar kind %s", d.kind))
		}
		return v.VisitScalar(d)
	case ObjectDescriptor:
		return v.VisitObject(d)
	case ListDescriptor:
		return v.VisitList(d)
	default:
		return zero, newError(CodeUnknownKind, "", fmt.Sprintf("unknown type descriptor %T", td))
	}
}

// VisitorFuncs adapts plain functions to a Visitor.
type VisitorFuncs[R any] struct {
	Scalar func(ScalarDescriptor) (R, error)
	Object func(ObjectDescriptor) (R, error)
	List   func(ListDescriptor) (R, error)
}

func (f VisitorFuncs[R]) VisitScalar(d ScalarDescriptor) (R, error) { return f.Scalar(d) }
func (f VisitorFuncs[R]) VisitObject(d ObjectDescriptor) (R, error) { return f.Object(d) }
func (f VisitorFuncs[R]) VisitList(d ListDescriptor) (R, error) { return f.List(d) }

// objectRefs appends every object name reachable from td.
func objectRefs(td TypeDescriptor, out []string) []string {
	leaf, _ := Unwrap(td)
	if o, ok := leaf.(ObjectDescriptor); ok {
		out = append(out, o.name)
	}
	return out
}
