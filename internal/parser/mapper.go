package parser

import (
	"errors"
	"fmt"
	"go/types"

	"github.com/cmmoran/bindgen/internal/model"
)

var errUnsupportedType = errors.New("unsupported type")

func unsupported(t types.Type) error {
	return fmt.Errorf("%w: %s", errUnsupportedType, types.TypeString(t, nil))
}

// typeOf maps a Go type onto the raw kind vocabulary. Pointers are
// transparent, slices and arrays become lists, exported named structs become
// object references and named basic types collapse to their basic kind.
func typeOf(t types.Type) (*model.RawTypeDef, error) {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		return basicOf(tt)
	case *types.Pointer:
		return typeOf(tt.Elem())
	case *types.Slice:
		if isByte(tt.Elem()) {
			return model.Scalar(model.KindString), nil
		}
		elem, err := typeOf(tt.Elem())
		if err != nil {
			return nil, err
		}
		return model.List(elem), nil
	case *types.Array:
		elem, err := typeOf(tt.Elem())
		if err != nil {
			return nil, err
		}
		return model.List(elem), nil
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Time" {
			return model.Scalar(model.KindString), nil
		}
		switch u := tt.Underlying().(type) {
		case *types.Struct:
			if !obj.Exported() || tt.TypeArgs().Len() > 0 {
				return nil, unsupported(t)
			}
			return model.Object(obj.Name()), nil
		case *types.Basic, *types.Slice, *types.Array, *types.Pointer:
			return typeOf(u)
		}
	}
	return nil, unsupported(t)
}

func basicOf(b *types.Basic) (*model.RawTypeDef, error) {
	info := b.Info()
	switch {
	case info&types.IsString != 0:
		return model.Scalar(model.KindString), nil
	case info&types.IsBoolean != 0:
		return model.Scalar(model.KindBoolean), nil
	case info&types.IsInteger != 0:
		return model.Scalar(model.KindInteger), nil
	case info&types.IsFloat != 0:
		return model.Scalar(model.KindFloat), nil
	default:
		return nil, unsupported(b)
	}
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Byte
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func isContext(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// signature maps parameters and results. context.Context parameters are
// dropped, pointer and variadic parameters are optional, a trailing error
// result is dropped and no result at all means Void.
func signature(sig *types.Signature) ([]*model.RawArg, *model.RawTypeDef, error) {
	params := sig.Params()
	args := make([]*model.RawArg, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		if isContext(p.Type()) {
			continue
		}
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		_, isPtr := types.Unalias(p.Type()).(*types.Pointer)
		td, err := typeOf(p.Type())
		if err != nil {
			return nil, nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		args = append(args, &model.RawArg{
			Name:     name,
			Optional: isPtr || (sig.Variadic() && i == params.Len()-1),
			Type:     td,
		})
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isError(results.At(n-1).Type()) {
		n--
	}
	switch n {
	case 0:
		return args, model.Scalar(model.KindVoid), nil
	case 1:
		td, err := typeOf(results.At(0).Type())
		if err != nil {
			return nil, nil, fmt.Errorf("result: %w", err)
		}
		return args, td, nil
	default:
		return nil, nil, errMultipleResults
	}
}

var errMultipleResults = errors.New("more than one non-error result")
