// builtins.go — the standard function registry.
//
// Every NewContext ships these. Hosts override or extend with
// Context.RegisterFunction; a registration under an existing name wins.
// Builtins work on the package value model (int64/float64/string/bool,
// []any, map[string]any) plus whatever reflect can measure.
package xpr

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArgCountError reports a builtin called with the wrong number of
// arguments; FunctionCall maps it to WRONG_ARGUMENT_COUNT.
type ArgCountError struct {
	Want string // e.g. "1" or "1..2"
	Got  int
}

func (e *ArgCountError) Error() string {
	return fmt.Sprintf("want %s argument(s), got %d", e.Want, e.Got)
}

//// END_OF_PUBLIC

func arity(args []any, want int) error {
	if len(args) != want {
		return &ArgCountError{Want: fmt.Sprintf("%d", want), Got: len(args)}
	}
	return nil
}

func registerStandardBuiltins(c *Context) {
	c.RegisterFunction("len", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		if args[0] == nil {
			return int64(0), nil
		}
		v := reflect.ValueOf(args[0])
		switch v.Kind() {
		case reflect.String:
			return int64(len([]rune(v.String()))), nil
		case reflect.Slice, reflect.Array, reflect.Map:
			return int64(v.Len()), nil
		}
		return nil, fmt.Errorf("len: unsupported type %s", typeName(args[0]))
	})

	c.RegisterFunction("abs", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case int64:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case float64:
			return math.Abs(x), nil
		}
		return nil, fmt.Errorf("abs: needs a number, got %s", typeName(args[0]))
	})

	c.RegisterFunction("min", numPick(func(a, b float64) bool { return a < b }))
	c.RegisterFunction("max", numPick(func(a, b float64) bool { return a > b }))

	c.RegisterFunction("upper", stringFn("upper", strings.ToUpper))
	c.RegisterFunction("lower", stringFn("lower", strings.ToLower))
	c.RegisterFunction("trim", stringFn("trim", strings.TrimSpace))

	c.RegisterFunction("contains", stringPred("contains", strings.Contains))
	c.RegisterFunction("startsWith", stringPred("startsWith", strings.HasPrefix))
	c.RegisterFunction("endsWith", stringPred("endsWith", strings.HasSuffix))

	// typeOf returns a reflect.Type value; ObjectClass resolves such values
	// to the type they reference rather than to reflect's own struct type.
	c.RegisterFunction("typeOf", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		if args[0] == nil {
			return nil, nil
		}
		return reflect.TypeOf(args[0]), nil
	})

	c.RegisterFunction("str", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		return stringify(args[0]), nil
	})

	c.RegisterFunction("int", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		out, err := (StandardConverter{}).Convert(args[0], reflect.TypeOf(int64(0)))
		if err != nil {
			return nil, err
		}
		return out, nil
	})

	c.RegisterFunction("num", func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		out, err := (StandardConverter{}).Convert(args[0], reflect.TypeOf(float64(0)))
		if err != nil {
			return nil, err
		}
		return out, nil
	})

	c.RegisterFunction("uuid", func(args []any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return uuid.NewString(), nil
	})

	c.RegisterFunction("now", func(args []any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return time.Now().UTC().Format(time.RFC3339), nil
	})
}

func stringFn(name string, f func(string) string) Function {
	return func(args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s: needs a string, got %s", name, typeName(args[0]))
		}
		return f(s), nil
	}
}

func stringPred(name string, f func(string, string) bool) Function {
	return func(args []any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		s, ok1 := args[0].(string)
		sub, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: needs two strings, got %s and %s", name, typeName(args[0]), typeName(args[1]))
		}
		return f(s, sub), nil
	}
}

// numPick builds min/max over any number of numeric arguments. The winning
// argument is returned unchanged, so an int winner stays int even among
// float arguments.
func numPick(better func(a, b float64) bool) Function {
	return func(args []any) (any, error) {
		if len(args) < 1 {
			return nil, &ArgCountError{Want: "1+", Got: 0}
		}
		bestF, ok := asFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("needs numbers, got %s", typeName(args[0]))
		}
		best := args[0]
		for _, a := range args[1:] {
			f, ok := asFloat(a)
			if !ok {
				return nil, fmt.Errorf("needs numbers, got %s", typeName(a))
			}
			if better(f, bestF) {
				bestF, best = f, a
			}
		}
		return best, nil
	}
}
