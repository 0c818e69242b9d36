package schema

// ClassDescriptor aggregates the fields, constructor and methods of a class.
type ClassDescriptor struct {
	name        string
	description string
	fields      Fields
	constructor ConstructorDescriptor
	hasCtor     bool
	methods     Methods
}

// NewClass validates and returns a class descriptor. A nil constructor means
// the class has no generator-visible constructor.
func NewClass(name, description string, fields Fields, constructor *ConstructorDescriptor, methods Methods) (ClassDescriptor, error) {
	c := ClassDescriptor{name: name, description: description, fields: fields, methods: methods}
	if constructor != nil {
		c.constructor, c.hasCtor = *constructor, true
	}
	if err := c.validate(); err != nil {
		return ClassDescriptor{}, err
	}
	return c, nil
}

func (c ClassDescriptor) Name() string { return c.name }
func (c ClassDescriptor) Description() string { return c.description }
func (c ClassDescriptor) Fields() Fields { return c.fields }
func (c ClassDescriptor) Methods() Methods { return c.methods }

// Constructor returns the constructor and whether the class declares one.
func (c ClassDescriptor) Constructor() (ConstructorDescriptor, bool) {
	return c.constructor, c.hasCtor
}

// ExposedFields returns the fields a renderer should emit, in order.
func (c ClassDescriptor) ExposedFields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range c.fields.All() {
		if f.IsExposed() {
			out = append(out, f)
		}
	}
	return out
}

func (c ClassDescriptor) Equal(other ClassDescriptor) bool {
	return c.name == other.name &&
		c.description == other.description &&
		c.hasCtor == other.hasCtor &&
		c.constructor.Equal(other.constructor) &&
		c.fields.Equal(other.fields) &&
		c.methods.Equal(other.methods)
}

func (c ClassDescriptor) validate() error {
	if c.name == "" {
		return newError(CodeEmptyName, "", "class name is empty")
	}
	return nil
}

// ArgSpec is the raw form of an argument handed to a ClassBuilder.
type ArgSpec struct {
	Name        string
	Description string
	Optional    bool
	Default     *string
	Type        TypeDescriptor
}

// ClassBuilder assembles a ClassDescriptor member by member and reports every
// defect at once from Build.
type ClassBuilder struct {
	name        string
	description string
	fields      []Entry[FieldDescriptor]
	methods     []Entry[FunctionDescriptor]
	ctor        *ConstructorDescriptor
	errs        []error
}

// NewClassBuilder starts a class called name.
func NewClassBuilder(name, description string) *ClassBuilder {
	return &ClassBuilder{name: name, description: description}
}

// Field adds a field.
func (b *ClassBuilder) Field(name, description string, typeDef TypeDescriptor, isExposed bool) *ClassBuilder {
	f, err := NewField(name, description, typeDef, isExposed)
	if err != nil {
		b.errs = append(b.errs, at("fields", err))
		return b
	}
	b.fields = append(b.fields, Entry[FieldDescriptor]{Key: name, Value: f})
	return b
}

// Constructor declares the constructor. Calling it without arguments declares
// an explicit no-argument constructor.
func (b *ClassBuilder) Constructor(args ...ArgSpec) *ClassBuilder {
	built, err := buildArgs(args)
	if err != nil {
		b.errs = append(b.errs, at("constructor.args", err))
		return b
	}
	ctor := NewConstructor(built)
	b.ctor = &ctor
	return b
}

// Method adds a method returning returnType.
func (b *ClassBuilder) Method(name, description string, returnType TypeDescriptor, args ...ArgSpec) *ClassBuilder {
	built, err := buildArgs(args)
	if err != nil {
		b.errs = append(b.errs, at(joinPath("methods", name, "args"), err))
		return b
	}
	fn, err := NewFunction(name, description, built, returnType)
	if err != nil {
		b.errs = append(b.errs, at("methods", err))
		return b
	}
	b.methods = append(b.methods, Entry[FunctionDescriptor]{Key: name, Value: fn})
	return b
}

// Build validates the accumulated members and returns the class.
func (b *ClassBuilder) Build() (ClassDescriptor, error) {
	errs := append([]error(nil), b.errs...)
	fields, err := NewFieldsFromEntries(b.fields...)
	if err != nil {
		errs = append(errs, at("fields", err))
	}
	methods, err := NewMethodsFromEntries(b.methods...)
	if err != nil {
		errs = append(errs, at("methods", err))
	}
	if b.name == "" {
		errs = append(errs, newError(CodeEmptyName, "", "class name is empty"))
	}
	if len(errs) > 0 {
		return ClassDescriptor{}, at(b.name, joinErrors(errs))
	}
	return NewClass(b.name, b.description, fields, b.ctor, methods)
}

func buildArgs(specs []ArgSpec) (Args, error) {
	entries := make([]Entry[FunctionArgDescriptor], 0, len(specs))
	var errs []error
	for _, s := range specs {
		a, err := NewFunctionArg(s.Name, s.Description, s.Optional, s.Default, s.Type)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, Entry[FunctionArgDescriptor]{Key: s.Name, Value: a})
	}
	args, err := NewArgsFromEntries(entries...)
	if err != nil {
		errs = append(errs, err)
	}
	return args, joinErrors(errs)
}
