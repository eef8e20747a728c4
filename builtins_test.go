// builtins_test.go
package xpr

import (
	"reflect"
	"regexp"
	"testing"
)

func Test_Builtins_Basics(t *testing.T) {
	ctx := NewContext().SetRoot(map[string]any{
		"items": []any{int64(1), int64(2)},
		"word":  "  Hello  ",
	})
	cases := []struct {
		src  string
		want any
	}{
		{"len(items)", int64(2)},
		{"len('abc')", int64(3)},
		{"len(null)", int64(0)},
		{"abs(-3)", int64(3)},
		{"abs(-2.5)", 2.5},
		{"min(4, 2, 9)", int64(2)},
		{"max(4, 2, 9)", int64(9)},
		{"min(1, 0.5)", 0.5},
		// The winning argument keeps its own type among mixed numbers.
		{"max(3, 1.5)", int64(3)},
		{"max(1.5, 3)", int64(3)},
		{"min(4, 2.5)", 2.5},
		{"upper('ok')", "OK"},
		{"lower('OK')", "ok"},
		{"trim(word)", "Hello"},
		{"contains('haystack', 'hay')", true},
		{"startsWith('haystack', 'hay')", true},
		{"endsWith('haystack', 'hay')", false},
		{"str(12)", "12"},
		{"str(null)", "null"},
		{"int('42')", int64(42)},
		{"num('2.5')", 2.5},
	}
	for _, c := range cases {
		got := evalOne(t, ctx, c.src)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%q: want %#v, got %#v", c.src, c.want, got)
		}
	}
}

func Test_Builtins_TypeOfFeedsObjectClass(t *testing.T) {
	ctx := NewContext()
	got := evalOne(t, ctx, "typeOf('s')")
	rt, ok := got.(reflect.Type)
	if !ok {
		t.Fatalf("typeOf must yield a reflect.Type, got %T", got)
	}
	// A type reference resolves to itself through ObjectClass, unlike an
	// instance, which resolves to its runtime type.
	if ObjectClass(rt) != rt {
		t.Fatal("ObjectClass on a type reference must return the referenced type")
	}
	if rt != reflect.TypeOf("") {
		t.Fatalf("typeOf('s') must reference the string type, got %v", rt)
	}
	if got := evalOne(t, ctx, "typeOf(null)"); got != nil {
		t.Fatalf("typeOf(null) must be null, got %#v", got)
	}
}

func Test_Builtins_Uuid(t *testing.T) {
	ctx := NewContext()
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	a := evalOne(t, ctx, "uuid()").(string)
	b := evalOne(t, ctx, "uuid()").(string)
	if !pattern.MatchString(a) {
		t.Fatalf("not a uuid: %q", a)
	}
	if a == b {
		t.Fatal("uuid() must not repeat")
	}
}

func Test_Builtins_ArityErrors(t *testing.T) {
	ctx := NewContext()
	for _, src := range []string{"len()", "len(1, 2)", "abs()", "min()", "uuid(1)"} {
		wantEvalCode(t, ctx, src, CodeWrongArgumentCount)
	}
}

func Test_Builtins_HostOverride(t *testing.T) {
	ctx := NewContext()
	ctx.RegisterFunction("len", func(args []any) (any, error) {
		return int64(-1), nil
	})
	if got := evalOne(t, ctx, "len('abc')"); got != int64(-1) {
		t.Fatalf("host registration must win, got %#v", got)
	}
}
