package model

// RawTypeDef is a type as an introspector reports it, before validation.
// Kind is one of the wire tags (StringKind, ObjectKind, ListKind, ...).
type RawTypeDef struct {
	Kind string      `json:"kind" yaml:"kind" mapstructure:"kind"`
	Name string      `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name,omitempty"`
	Of   *RawTypeDef `json:"typeDef,omitempty" yaml:"typeDef,omitempty" mapstructure:"typeDef,omitempty"`
}

// Scalar returns a RawTypeDef carrying only kind.
func Scalar(kind string) *RawTypeDef { return &RawTypeDef{Kind: kind} }

// Object returns a reference to the class name.
func Object(name string) *RawTypeDef { return &RawTypeDef{Kind: KindObject, Name: name} }

// List wraps of.
func List(of *RawTypeDef) *RawTypeDef { return &RawTypeDef{Kind: KindList, Of: of} }

// Wire tags of the kinds introspectors emit.
const (
	KindString  = "StringKind"
	KindInteger = "IntegerKind"
	KindFloat   = "FloatKind"
	KindBoolean = "BooleanKind"
	KindVoid    = "VoidKind"
	KindObject  = "ObjectKind"
	KindList    = "ListKind"
)

// Refs returns the class name at the bottom of t, if any.
func (t *RawTypeDef) Refs() (string, bool) {
	for t != nil && t.Kind == KindList {
		t = t.Of
	}
	if t == nil || t.Kind != KindObject {
		return "", false
	}
	return t.Name, true
}

type RawField struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description,omitempty"`
	Type        *RawTypeDef `json:"typeDef" yaml:"typeDef" mapstructure:"typeDef"`
	Exposed     bool        `json:"isExposed" yaml:"isExposed" mapstructure:"isExposed"`
	Deprecated  bool        `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated,omitempty"`
}

type RawArg struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description,omitempty"`
	Optional    bool        `json:"optional" yaml:"optional" mapstructure:"optional"`
	Default     *string     `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty" mapstructure:"defaultValue,omitempty"`
	Type        *RawTypeDef `json:"typeDef" yaml:"typeDef" mapstructure:"typeDef"`
}

type RawFunction struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description,omitempty"`
	Args        []*RawArg   `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args,omitempty"`
	Returns     *RawTypeDef `json:"returnType" yaml:"returnType" mapstructure:"returnType"`
	Deprecated  bool        `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated,omitempty"`
}

type RawConstructor struct {
	Args []*RawArg `json:"args" yaml:"args" mapstructure:"args"`
}

type RawClass struct {
	Name        string          `json:"name" yaml:"name" mapstructure:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description,omitempty"`
	Fields      []*RawField     `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields,omitempty"`
	Constructor *RawConstructor `json:"constructor,omitempty" yaml:"constructor,omitempty" mapstructure:"constructor,omitempty"`
	Methods     []*RawFunction  `json:"methods,omitempty" yaml:"methods,omitempty" mapstructure:"methods,omitempty"`
	Source      string          `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source,omitempty"` // package path, spec file or proto file
	Deprecated  bool            `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated,omitempty"`
}

// Warning records a member an introspector could not map and skipped.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Subject string `json:"subject" yaml:"subject"` // Class or Class.member
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return w.Subject + ": " + w.Message
}
