// convert.go — the type coercion layer.
//
// ValueAs and typed write-backs go through a Converter when the raw value's
// runtime type does not already satisfy the requested one. The standard
// converter covers the coercions expressions actually need: numeric
// cross-conversion, string parsing, and string formatting. Hosts with richer
// needs install their own Converter on the Context.
//
// Conversion failures are plain errors here; the node layer wraps them into
// positioned TYPE_CONVERSION_ERROR evaluation errors.
package xpr

import (
	"fmt"
	"reflect"
	"strconv"
)

// Converter coerces values to requested types.
type Converter interface {
	// Convert returns v as type t, or an error when no coercion applies.
	// It is only called when v is non-nil and not already assignable to t.
	Convert(v any, t reflect.Type) (any, error)
}

// StandardConverter is the default coercion policy:
//
//   - assignable values pass through untouched,
//   - numeric kinds convert across int/uint/float freely,
//   - strings parse into numbers and bools,
//   - numbers and bools format into strings,
//   - anything converts to the empty interface.
//
// Notably absent: implicit number→string via Go's rune conversion (int→
// string in reflect semantics), which is never what an expression means.
type StandardConverter struct{}

func (StandardConverter) Convert(v any, t reflect.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(t) {
		return v, nil
	}
	if t.Kind() == reflect.Interface && vt.Implements(t) {
		return v, nil
	}

	switch {
	case isNumericKind(t.Kind()) && isNumericKind(vt.Kind()):
		return reflect.ValueOf(v).Convert(t).Interface(), nil

	case t.Kind() == reflect.String:
		switch x := v.(type) {
		case bool:
			return strconv.FormatBool(x), nil
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
		if isNumericKind(vt.Kind()) {
			return fmt.Sprintf("%v", v), nil
		}

	case vt.Kind() == reflect.String:
		s := reflect.ValueOf(v).String()
		switch t.Kind() {
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s", s, t)
			}
			return b, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s", s, t)
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to %s", s, t)
			}
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}
	}

	return nil, fmt.Errorf("cannot convert value of type %s to %s", vt, t)
}

//// END_OF_PUBLIC

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// coerceTo converts v for storage into a typed slot (map value, slice
// element, struct field), positioning failures at the writing node.
func coerceTo(state *State, pos int, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		// Zero value for the slot type; writing null into a non-nilable slot
		// is a conversion error.
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, evalErrf(CodeTypeConversion, pos, "cannot write null into %s", t)
	}
	if reflect.TypeOf(v).AssignableTo(t) {
		return reflect.ValueOf(v), nil
	}
	out, err := state.Context().Converter.Convert(v, t)
	if err != nil {
		return reflect.Value{}, evalErrf(CodeTypeConversion, pos, "%v", err)
	}
	return reflect.ValueOf(out), nil
}
