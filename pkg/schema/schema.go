package schema

import (
	"fmt"
	"slices"
)

// Schema is the registry of every class described by one API surface.
// Object references inside it are guaranteed to resolve.
type Schema struct {
	classes []ClassDescriptor
	byName  map[string]int
}

// NewSchema assembles classes into a schema. Class names must be unique and
// every ObjectDescriptor reachable from a field, argument, return type or
// constructor argument must name one of the classes. All defects are
// reported together; on error no schema is returned.
func NewSchema(classes ...ClassDescriptor) (*Schema, error) {
	s := &Schema{
		classes: make([]ClassDescriptor, 0, len(classes)),
		byName:  make(map[string]int, len(classes)),
	}
	var errs []error
	for _, c := range classes {
		if err := c.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := s.byName[c.name]; dup {
			errs = append(errs, newError(CodeDuplicateName, c.name,
				fmt.Sprintf("class %q declared more than once", c.name)))
			continue
		}
		s.byName[c.name] = len(s.classes)
		s.classes = append(s.classes, c)
	}
	for _, c := range s.classes {
		errs = append(errs, s.resolveClass(c)...)
	}
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}
	return s, nil
}

func (s *Schema) resolveClass(c ClassDescriptor) []error {
	var errs []error
	check := func(path string, td TypeDescriptor) {
		for _, name := range objectRefs(td, nil) {
			if _, ok := s.byName[name]; !ok {
				errs = append(errs, newError(CodeUnresolvedObjectReference, joinPath(c.name, path),
					fmt.Sprintf("references unknown class %q", name)))
			}
		}
	}
	for name, f := range c.fields.All() {
		check(joinPath("fields", name, "typeDef"), f.TypeDef())
	}
	if ctor, ok := c.Constructor(); ok {
		for name, a := range ctor.Args().All() {
			check(joinPath("constructor.args", name, "typeDef"), a.TypeDef())
		}
	}
	for name, m := range c.methods.All() {
		for argName, a := range m.Args().All() {
			check(joinPath("methods", name, "args", argName, "typeDef"), a.TypeDef())
		}
		check(joinPath("methods", name, "returnType"), m.ReturnType())
	}
	return errs
}

// Len returns the number of classes.
func (s *Schema) Len() int { return len(s.classes) }

// Classes returns the classes in the order they were supplied.
func (s *Schema) Classes() []ClassDescriptor { return slices.Clone(s.classes) }

// Names returns the class names in order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.classes))
	for i, c := range s.classes {
		out[i] = c.name
	}
	return out
}

// Class looks up a class by name.
func (s *Schema) Class(name string) (ClassDescriptor, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ClassDescriptor{}, false
	}
	return s.classes[i], true
}

// Resolve returns the class an object descriptor refers to.
func (s *Schema) Resolve(ref ObjectDescriptor) (ClassDescriptor, error) {
	c, ok := s.Class(ref.Name())
	if !ok {
		return ClassDescriptor{}, newError(CodeUnresolvedObjectReference, "",
			fmt.Sprintf("references unknown class %q", ref.Name()))
	}
	return c, nil
}

// Equal reports whether both schemas hold equal classes in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.EqualFunc(s.classes, other.classes, ClassDescriptor.Equal)
}
