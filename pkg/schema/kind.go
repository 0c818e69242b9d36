package schema

import "fmt"

// TypeKind discriminates the variants of a TypeDescriptor.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindVoid
	KindObject
	KindList
)

var kindNames = [...]string{
	KindInvalid: "",
	KindString:  "StringKind",
	KindInteger: "IntegerKind",
	KindFloat:   "FloatKind",
	KindBoolean: "BooleanKind",
	KindVoid:    "VoidKind",
	KindObject:  "ObjectKind",
	KindList:    "ListKind",
}

// String returns the wire tag of the kind, e.g. "ObjectKind".
func (k TypeKind) String() string {
	if k.valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// IsScalar reports whether the kind selects the payload-free scalar variant.
func (k TypeKind) IsScalar() bool {
	switch k {
	case KindString, KindInteger, KindFloat, KindBoolean, KindVoid:
		return true
	default:
		return false
	}
}

func (k TypeKind) valid() bool {
	return k > KindInvalid && k <= KindList
}

// ParseTypeKind maps a wire tag back to its kind. Tags outside the closed set
// fail with ErrUnknownKind.
func ParseTypeKind(s string) (TypeKind, error) {
	for k := KindString; k <= KindList; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindInvalid, newError(CodeUnknownKind, "", fmt.Sprintf("unknown type kind %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (k TypeKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, newError(CodeUnknownKind, "", fmt.Sprintf("unknown type kind %d", int(k)))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TypeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
