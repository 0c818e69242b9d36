package schema

import (
	"errors"
	"strings"
)

var (
	ErrMalformedTypeDescriptor   = errors.New("malformed type descriptor")
	ErrDuplicateName             = errors.New("duplicate name")
	ErrInvalidOptionalDefault    = errors.New("required argument carries a default value")
	ErrUnresolvedObjectReference = errors.New("unresolved object reference")
	ErrUnknownKind               = errors.New("unknown type kind")
	ErrEmptyName                 = errors.New("empty name")
)

// Validation error codes.
const (
	CodeMalformedTypeDescriptor   = "malformed_type_descriptor"
	CodeDuplicateName             = "duplicate_name"
	CodeInvalidOptionalDefault    = "invalid_optional_default"
	CodeUnresolvedObjectReference = "unresolved_object_reference"
	CodeUnknownKind               = "unknown_kind"
	CodeEmptyName                 = "empty_name"
)

var sentinels = map[string]error{
	CodeMalformedTypeDescriptor:   ErrMalformedTypeDescriptor,
	CodeDuplicateName:             ErrDuplicateName,
	CodeInvalidOptionalDefault:    ErrInvalidOptionalDefault,
	CodeUnresolvedObjectReference: ErrUnresolvedObjectReference,
	CodeUnknownKind:               ErrUnknownKind,
	CodeEmptyName:                 ErrEmptyName,
}

// ValidationError describes a structural defect found while assembling a
// descriptor. Path is the dotted location of the defect inside the schema,
// for example "Container.methods.add.args.item".
type ValidationError struct {
	Code    string
	Path    string
	Message string
}

func newError(code, path, msg string) *ValidationError {
	return &ValidationError{Code: code, Path: path, Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Unwrap returns the sentinel matching Code so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	return sentinels[e.Code]
}

// at prefixes the path of every ValidationError found in err.
func at(prefix string, err error) error {
	if err == nil || prefix == "" {
		return err
	}
	var out []error
	for _, e := range flatten(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			cp := *ve
			cp.Path = joinPath(prefix, ve.Path)
			out = append(out, &cp)
			continue
		}
		out = append(out, e)
	}
	return joinErrors(out)
}

// flatten expands errors.Join trees into their leaves.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func joinPath(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// joinErrors returns the single error unchanged and joins several.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
