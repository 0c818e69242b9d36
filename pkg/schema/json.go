package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSON wire form. Every descriptor carries its fields under the names the
// introspector emits; type descriptors are discriminated by "kind".

type typeDefWire struct {
	Kind    string          `json:"kind"`
	Name    *string         `json:"name,omitempty"`
	TypeDef json.RawMessage `json:"typeDef,omitempty"`
}

// MarshalJSON implements json.Marshaler for ScalarDescriptor.
func (d ScalarDescriptor) MarshalJSON() ([]byte, error) {
	if err := ValidateType(d); err != nil {
		return nil, err
	}
	return json.Marshal(typeDefWire{Kind: d.kind.String()})
}

// MarshalJSON implements json.Marshaler for ObjectDescriptor.
func (d ObjectDescriptor) MarshalJSON() ([]byte, error) {
	if err := ValidateType(d); err != nil {
		return nil, err
	}
	return json.Marshal(typeDefWire{Kind: KindObject.String(), Name: &d.name})
}

// MarshalJSON implements json.Marshaler for ListDescriptor.
func (d ListDescriptor) MarshalJSON() ([]byte, error) {
	if err := ValidateType(d); err != nil {
		return nil, err
	}
	elem, err := json.Marshal(d.elem)
	if err != nil {
		return nil, err
	}
	return json.Marshal(typeDefWire{Kind: KindList.String(), TypeDef: elem})
}

// UnmarshalTypeDescriptor decodes a type descriptor. The payload must match
// the kind exactly; unknown members are rejected. An absent or null
// descriptor is malformed.
func UnmarshalTypeDescriptor(data []byte) (TypeDescriptor, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, newError(CodeMalformedTypeDescriptor, "", "missing type descriptor")
	}
	var w typeDefWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, newError(CodeMalformedTypeDescriptor, "", "decode type descriptor: "+err.Error())
	}
	kind, err := ParseTypeKind(w.Kind)
	if err != nil {
		return nil, err
	}
	if w.Name != nil && kind != KindObject {
		return nil, newError(CodeMalformedTypeDescriptor, "", kind.String()+" does not take a name")
	}
	var elem TypeDescriptor
	if len(w.TypeDef) > 0 && !bytes.Equal(w.TypeDef, []byte("null")) {
		if kind != KindList {
			return nil, newError(CodeMalformedTypeDescriptor, "", kind.String()+" does not take an element type")
		}
		if elem, err = UnmarshalTypeDescriptor(w.TypeDef); err != nil {
			return nil, at("typeDef", err)
		}
	}
	var name string
	if w.Name != nil {
		name = *w.Name
	}
	return New(kind, name, elem)
}

type fieldWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TypeDef     json.RawMessage `json:"typeDef"`
	IsExposed   bool            `json:"isExposed"`
}

// MarshalJSON implements json.Marshaler for FieldDescriptor.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	td, err := json.Marshal(f.typeDef)
	if err != nil {
		return nil, at(f.name, err)
	}
	return json.Marshal(fieldWire{Name: f.name, Description: f.description, TypeDef: td, IsExposed: f.exposed})
}

// UnmarshalJSON implements json.Unmarshaler for FieldDescriptor.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	td, err := UnmarshalTypeDescriptor(w.TypeDef)
	if err != nil {
		return at(joinPath(w.Name, "typeDef"), err)
	}
	out, err := NewField(w.Name, w.Description, td, w.IsExposed)
	if err != nil {
		return err
	}
	*f = out
	return nil
}

type argWire struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Optional     bool            `json:"optional"`
	DefaultValue *string         `json:"defaultValue,omitempty"`
	TypeDef      json.RawMessage `json:"typeDef"`
}

// MarshalJSON implements json.Marshaler for FunctionArgDescriptor.
func (a FunctionArgDescriptor) MarshalJSON() ([]byte, error) {
	td, err := json.Marshal(a.typeDef)
	if err != nil {
		return nil, at(a.name, err)
	}
	w := argWire{Name: a.name, Description: a.description, Optional: a.optional, TypeDef: td}
	if a.hasDefault {
		def := a.defaultValue
		w.DefaultValue = &def
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for FunctionArgDescriptor.
func (a *FunctionArgDescriptor) UnmarshalJSON(data []byte) error {
	var w argWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	td, err := UnmarshalTypeDescriptor(w.TypeDef)
	if err != nil {
		return at(joinPath(w.Name, "typeDef"), err)
	}
	out, err := NewFunctionArg(w.Name, w.Description, w.Optional, w.DefaultValue, td)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

type functionWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Args        json.RawMessage `json:"args"`
	ReturnType  json.RawMessage `json:"returnType"`
}

// MarshalJSON implements json.Marshaler for FunctionDescriptor.
func (fn FunctionDescriptor) MarshalJSON() ([]byte, error) {
	args, err := json.Marshal(fn.args)
	if err != nil {
		return nil, at(fn.name, err)
	}
	rt, err := json.Marshal(fn.returnType)
	if err != nil {
		return nil, at(fn.name, err)
	}
	return json.Marshal(functionWire{Name: fn.name, Description: fn.description, Args: args, ReturnType: rt})
}

// UnmarshalJSON implements json.Unmarshaler for FunctionDescriptor.
func (fn *FunctionDescriptor) UnmarshalJSON(data []byte) error {
	var w functionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	args, err := decodeArgs(w.Args)
	if err != nil {
		return at(joinPath(w.Name, "args"), err)
	}
	rt, err := UnmarshalTypeDescriptor(w.ReturnType)
	if err != nil {
		return at(joinPath(w.Name, "returnType"), err)
	}
	out, err := NewFunction(w.Name, w.Description, args, rt)
	if err != nil {
		return err
	}
	*fn = out
	return nil
}

type constructorWire struct {
	Args json.RawMessage `json:"args"`
}

// MarshalJSON implements json.Marshaler for ConstructorDescriptor.
func (c ConstructorDescriptor) MarshalJSON() ([]byte, error) {
	args, err := json.Marshal(c.args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(constructorWire{Args: args})
}

// UnmarshalJSON implements json.Unmarshaler for ConstructorDescriptor.
func (c *ConstructorDescriptor) UnmarshalJSON(data []byte) error {
	var w constructorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	args, err := decodeArgs(w.Args)
	if err != nil {
		return at("args", err)
	}
	*c = NewConstructor(args)
	return nil
}

type classWire struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fields      json.RawMessage `json:"fields"`
	Constructor json.RawMessage `json:"constructor,omitempty"`
	Methods     json.RawMessage `json:"methods"`
}

// MarshalJSON implements json.Marshaler for ClassDescriptor. An absent
// constructor is omitted; an explicit no-argument one is written as
// {"args":{}}.
func (c ClassDescriptor) MarshalJSON() ([]byte, error) {
	w := classWire{Name: c.name, Description: c.description}
	var err error
	if w.Fields, err = json.Marshal(c.fields); err != nil {
		return nil, at(c.name, err)
	}
	if w.Methods, err = json.Marshal(c.methods); err != nil {
		return nil, at(c.name, err)
	}
	if c.hasCtor {
		if w.Constructor, err = json.Marshal(c.constructor); err != nil {
			return nil, at(c.name, err)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for ClassDescriptor.
func (c *ClassDescriptor) UnmarshalJSON(data []byte) error {
	var w classWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var errs []error
	fields, err := decodeOrdered(w.Fields, func(b []byte) (FieldDescriptor, error) {
		var f FieldDescriptor
		return f, json.Unmarshal(b, &f)
	})
	if err != nil {
		errs = append(errs, at("fields", err))
	}
	methods, err := decodeOrdered(w.Methods, func(b []byte) (FunctionDescriptor, error) {
		var fn FunctionDescriptor
		return fn, json.Unmarshal(b, &fn)
	})
	if err != nil {
		errs = append(errs, at("methods", err))
	}
	var ctor *ConstructorDescriptor
	if len(w.Constructor) > 0 && !bytes.Equal(w.Constructor, []byte("null")) {
		ctor = new(ConstructorDescriptor)
		if err = json.Unmarshal(w.Constructor, ctor); err != nil {
			errs = append(errs, at("constructor", err))
		}
	}
	if len(errs) > 0 {
		return at(w.Name, joinErrors(errs))
	}
	out, err := NewClass(w.Name, w.Description, fields, ctor, methods)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

func decodeArgs(data []byte) (Args, error) {
	return decodeOrdered(data, func(b []byte) (FunctionArgDescriptor, error) {
		var a FunctionArgDescriptor
		return a, json.Unmarshal(b, &a)
	})
}

type schemaWire struct {
	Classes []json.RawMessage `json:"classes"`
}

// MarshalJSON implements json.Marshaler for Schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	w := schemaWire{Classes: make([]json.RawMessage, 0, len(s.classes))}
	for _, c := range s.classes {
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		w.Classes = append(w.Classes, b)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for Schema. The decoded classes
// go through NewSchema, so references are resolved again.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var w schemaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	classes := make([]ClassDescriptor, 0, len(w.Classes))
	var errs []error
	for i, raw := range w.Classes {
		var c ClassDescriptor
		if err := json.Unmarshal(raw, &c); err != nil {
			errs = append(errs, fmt.Errorf("class %d: %w", i, err))
			continue
		}
		classes = append(classes, c)
	}
	if len(errs) > 0 {
		return joinErrors(errs)
	}
	out, err := NewSchema(classes...)
	if err != nil {
		return err
	}
	*s = *out
	return nil
}

// Unmarshal decodes and validates a schema.
func Unmarshal(data []byte) (*Schema, error) {
	s := new(Schema)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes s as indented JSON without HTML escaping.
func Encode(w io.Writer, s *Schema) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
