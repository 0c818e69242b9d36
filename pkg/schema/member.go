package schema

import "fmt"

// FieldDescriptor describes a data member of a class.
type FieldDescriptor struct {
	name        string
	description string
	typeDef     TypeDescriptor
	exposed     bool
}

// NewField validates and returns a field descriptor. Fields that are not
// exposed stay in the schema but renderers skip them.
func NewField(name, description string, typeDef TypeDescriptor, isExposed bool) (FieldDescriptor, error) {
	f := FieldDescriptor{name: name, description: description, typeDef: typeDef, exposed: isExposed}
	if err := f.validate(); err != nil {
		return FieldDescriptor{}, at(name, err)
	}
	return f, nil
}

func (f FieldDescriptor) Name() string { return f.name }
func (f FieldDescriptor) Description() string { return f.description }
func (f FieldDescriptor) TypeDef() TypeDescriptor { return f.typeDef }
func (f FieldDescriptor) IsExposed() bool { return f.exposed }

func (f FieldDescriptor) Equal(other FieldDescriptor) bool {
	return f.name == other.name &&
		f.description == other.description &&
		f.exposed == other.exposed &&
		Equal(f.typeDef, other.typeDef)
}

func (f FieldDescriptor) validate() error {
	if f.name == "" {
		return newError(CodeEmptyName, "", "field name is empty")
	}
	return at("typeDef", ValidateType(f.typeDef))
}

// FunctionArgDescriptor describes one argument of a function or constructor.
type FunctionArgDescriptor struct {
	name         string
	description  string
	optional     bool
	defaultValue string
	hasDefault   bool
	typeDef      TypeDescriptor
}

// NewFunctionArg validates and returns an argument descriptor. defaultValue
// is nil when the argument has no default; a required argument must not
// carry one.
func NewFunctionArg(name, description string, optional bool, defaultValue *string, typeDef TypeDescriptor) (FunctionArgDescriptor, error) {
	a := FunctionArgDescriptor{name: name, description: description, optional: optional, typeDef: typeDef}
	if defaultValue != nil {
		a.defaultValue, a.hasDefault = *defaultValue, true
	}
	if err := a.validate(); err != nil {
		return FunctionArgDescriptor{}, at(name, err)
	}
	return a, nil
}

func (a FunctionArgDescriptor) Name() string { return a.name }
func (a FunctionArgDescriptor) Description() string { return a.description }
func (a FunctionArgDescriptor) Optional() bool { return a.optional }
func (a FunctionArgDescriptor) TypeDef() TypeDescriptor { return a.typeDef }

// DefaultValue returns the default and whether one is present.
func (a FunctionArgDescriptor) DefaultValue() (string, bool) { return a.defaultValue, a.hasDefault }

func (a FunctionArgDescriptor) Equal(other FunctionArgDescriptor) bool {
	return a.name == other.name &&
		a.description == other.description &&
		a.optional == other.optional &&
		a.hasDefault == other.hasDefault &&
		a.defaultValue == other.defaultValue &&
		Equal(a.typeDef, other.typeDef)
}

func (a FunctionArgDescriptor) validate() error {
	if a.name == "" {
		return newError(CodeEmptyName, "", "argument name is empty")
	}
	if !a.optional && a.hasDefault {
		return newError(CodeInvalidOptionalDefault, "",
			fmt.Sprintf("required argument has default value %q", a.defaultValue))
	}
	return at("typeDef", ValidateType(a.typeDef))
}

// FunctionDescriptor describes a method of a class.
type FunctionDescriptor struct {
	name        string
	description string
	args        Args
	returnType  TypeDescriptor
}

// NewFunction validates and returns a function descriptor. Functions without
// a result return Void.
func NewFunction(name, description string, args Args, returnType TypeDescriptor) (FunctionDescriptor, error) {
	fn := FunctionDescriptor{name: name, description: description, args: args, returnType: returnType}
	if err := fn.validate(); err != nil {
		return FunctionDescriptor{}, at(name, err)
	}
	return fn, nil
}

func (fn FunctionDescriptor) Name() string { return fn.name }
func (fn FunctionDescriptor) Description() string { return fn.description }
func (fn FunctionDescriptor) Args() Args { return fn.args }
func (fn FunctionDescriptor) ReturnType() TypeDescriptor { return fn.returnType }

func (fn FunctionDescriptor) Equal(other FunctionDescriptor) bool {
	return fn.name == other.name &&
		fn.description == other.description &&
		fn.args.Equal(other.args) &&
		Equal(fn.returnType, other.returnType)
}

func (fn FunctionDescriptor) validate() error {
	if fn.name == "" {
		return newError(CodeEmptyName, "", "function name is empty")
	}
	return at("returnType", ValidateType(fn.returnType))
}

// ConstructorDescriptor describes how a class is instantiated. An empty
// argument list is an explicit no-argument constructor.
type ConstructorDescriptor struct {
	args Args
}

// NewConstructor returns a constructor taking args.
func NewConstructor(args Args) ConstructorDescriptor {
	return ConstructorDescriptor{args: args}
}

func (c ConstructorDescriptor) Args() Args { return c.args }

func (c ConstructorDescriptor) Equal(other ConstructorDescriptor) bool {
	return c.args.Equal(other.args)
}
