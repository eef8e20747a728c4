// expression_test.go — end-to-end evaluation through the public facade.
package xpr

import (
	"reflect"
	"sync"
	"testing"
)

func sampleRoot() map[string]any {
	return map[string]any{
		"name": "Ada",
		"age":  int64(36),
		"address": map[string]any{
			"city": "Turin",
		},
		"tags": []any{"alpha", "beta"},
		"boss": nil,
	}
}

func sampleCtx() *Context {
	ctx := NewContext().SetRoot(sampleRoot())
	ctx.SetVariable("who", "grace")
	return ctx
}

func evalOne(t *testing.T, ctx *Context, src string) any {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := expr.Eval(ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func Test_Eval_Examples(t *testing.T) {
	cases := []struct {
		src  string
		want any
	}{
		{"1 + 2 * 3", int64(7)},
		{"(1 + 2) * 3", int64(9)},
		{"7 / 2", int64(3)},
		{"7.0 / 2", 3.5},
		{"10 % 3", int64(1)},
		{"2 ^ 10", int64(1024)},
		{"2.0 ^ -1", 0.5},
		{"-5 + 2", int64(-3)},
		{"'foo' + 'bar'", "foobar"},
		{"'n=' + 3", "n=3"},
		{"age >= 18", true},
		{"age < 18", false},
		{"name == 'Ada' && age != 36 || true", true},
		{"!(age < 18)", true},
		{"'abc' < 'abd'", true},
		{"1 == 1.0", true},
		{"null == null", true},
		{"name == null", false},
		{"age > 18 ? 'adult' : 'minor'", "adult"},
		{"boss ?: 'nobody'", "nobody"},
		{"name ?: 'nobody'", "Ada"},
		{"address.city", "Turin"},
		{"tags[1]", "beta"},
		{"name[0]", "A"},
		{"boss?.name", nil},
		{"boss?.name ?: 'vacant'", "vacant"},
		{"{1, 2, 3}[2]", int64(3)},
		{"{'k': age}['k']", int64(36)},
		{"{n: len(tags)}.n", int64(2)},
		{"upper(name)", "ADA"},
		{"upper(#who) + '!'", "GRACE!"},
		{"#missing", nil},
		{"min(3, 1.5)", 1.5},
		{"max(3, 1)", int64(3)},
		{"len('héllo')", int64(5)},
	}
	for _, c := range cases {
		got := evalOne(t, sampleCtx(), c.src)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%q: want %#v, got %#v", c.src, c.want, got)
		}
	}
}

func wantEvalCode(t *testing.T, ctx *Context, src string, code EvalCode) *EvalError {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	_, err = expr.Eval(ctx)
	ee, ok := err.(*EvalError)
	if !ok {
		t.Fatalf("%q: want *EvalError, got %v", src, err)
	}
	if ee.Code != code {
		t.Fatalf("%q: want %s, got %s (%s)", src, code, ee.Code, ee.Msg)
	}
	return ee
}

func Test_Eval_ErrorTaxonomy(t *testing.T) {
	ctx := sampleCtx()
	wantEvalCode(t, ctx, "boss.name", CodeValueIsNil)
	wantEvalCode(t, ctx, "address.zip", CodePropertyNotFound)
	wantEvalCode(t, ctx, "tags[9]", CodeIndexOutOfBounds)
	wantEvalCode(t, ctx, "age[0]", CodeCannotIndex)
	wantEvalCode(t, ctx, "nope()", CodeFunctionNotFound)
	wantEvalCode(t, ctx, "len()", CodeWrongArgumentCount)
	wantEvalCode(t, ctx, "1 / 0", CodeDivisionByZero)
	wantEvalCode(t, ctx, "10 % 0", CodeDivisionByZero)
	wantEvalCode(t, ctx, "1 && true", CodeTypeMismatch)
	wantEvalCode(t, ctx, "'a' - 1", CodeTypeMismatch)
	wantEvalCode(t, ctx, "age ? 1 : 2", CodeTypeMismatch)
	wantEvalCode(t, ctx, "-name", CodeTypeMismatch)
	wantEvalCode(t, ctx, "3 = 4", CodeSetValueNotSupported)
	wantEvalCode(t, ctx, "tags['x']", CodeTypeMismatch)
}

func Test_Eval_ErrorPositions(t *testing.T) {
	ctx := sampleCtx()
	// The '/' sits at offset 8.
	ee := wantEvalCode(t, ctx, "age + 1 / 0", CodeDivisionByZero)
	if ee.Pos != 8 {
		t.Fatalf("want position 8, got %d", ee.Pos)
	}
	// The failing step is '.name' at offset 4 of "boss.name".
	ee = wantEvalCode(t, ctx, "boss.name", CodeValueIsNil)
	if ee.Pos != 4 {
		t.Fatalf("want position 4, got %d", ee.Pos)
	}
}

func Test_Eval_SafeNavigation_MidChain(t *testing.T) {
	ctx := sampleCtx()
	// boss is null; '?.name' collapses the whole chain to null even with
	// further non-safe steps never reached... but a non-safe step after a
	// null must still fail.
	if got := evalOne(t, ctx, "boss?.name"); got != nil {
		t.Fatalf("want null, got %#v", got)
	}
	wantEvalCode(t, ctx, "boss?.name.first", CodeValueIsNil)
}

func Test_Eval_Assignment(t *testing.T) {
	ctx := sampleCtx()

	if got := evalOne(t, ctx, "#x = 5"); got != int64(5) {
		t.Fatalf("assignment yields the written value, got %#v", got)
	}
	if v, _ := ctx.Variable("x"); v != int64(5) {
		t.Fatalf("variable not bound: %#v", v)
	}

	evalOne(t, ctx, "age = 37")
	if got := evalOne(t, ctx, "age"); got != int64(37) {
		t.Fatalf("root property write: %#v", got)
	}

	evalOne(t, ctx, "tags[0] = 'zeta'")
	if got := evalOne(t, ctx, "tags[0]"); got != "zeta" {
		t.Fatalf("slice element write: %#v", got)
	}

	evalOne(t, ctx, "address.city = 'Rome'")
	if got := evalOne(t, ctx, "address.city"); got != "Rome" {
		t.Fatalf("chained property write: %#v", got)
	}

	// Chained assignment is right-associative.
	evalOne(t, ctx, "#a = #b = 9")
	a, _ := ctx.Variable("a")
	b, _ := ctx.Variable("b")
	if a != int64(9) || b != int64(9) {
		t.Fatalf("chained assignment: a=%v b=%v", a, b)
	}
}

func Test_Eval_WriteIntoNilMap(t *testing.T) {
	// A typed nil map reads like an empty one but must refuse writes with a
	// positioned error rather than panicking inside reflect.
	ctx := NewContext().SetRoot(map[string]any{"m": map[string]any(nil)})

	err := MustParse("m.x").SetValue(ctx, int64(1))
	ee, ok := err.(*EvalError)
	if !ok || ee.Code != CodeNotAssignable {
		t.Fatalf("property write into nil map: want NOT_ASSIGNABLE, got %v", err)
	}

	err = MustParse("m['x']").SetValue(ctx, int64(1))
	ee, ok = err.(*EvalError)
	if !ok || ee.Code != CodeNotAssignable {
		t.Fatalf("indexed write into nil map: want NOT_ASSIGNABLE, got %v", err)
	}

	for _, src := range []string{"m.x", "m['x']"} {
		w, err := MustParse(src).IsWritable(ctx)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if w {
			t.Fatalf("%q: a nil map target must not report writable", src)
		}
	}
}

type account struct {
	Owner   string
	Balance float64
}

func Test_Eval_StructRoot(t *testing.T) {
	acct := &account{Owner: "Ada", Balance: 12.5}
	ctx := NewContext().SetRoot(acct)

	if got := evalOne(t, ctx, "owner"); got != "Ada" {
		t.Fatalf("field read via lower-case name: %#v", got)
	}
	if got := evalOne(t, ctx, "balance * 2"); got != 25.0 {
		t.Fatalf("field arithmetic: %#v", got)
	}

	evalOne(t, ctx, "balance = 100")
	if acct.Balance != 100 {
		t.Fatalf("field write with int→float coercion: %v", acct.Balance)
	}

	// Struct values (not pointers) are not settable.
	ctx2 := NewContext().SetRoot(account{Owner: "Ada"})
	expr := MustParse("owner")
	if w, err := expr.IsWritable(ctx2); err != nil || w {
		t.Fatalf("value-struct field must not be writable: %v %v", w, err)
	}
}

func Test_Eval_Writability(t *testing.T) {
	ctx := sampleCtx()
	for src, want := range map[string]bool{
		"#x":           true,
		"age":          true,
		"address.city": true,
		"tags[0]":      true,
		"3":            false,
		"1 + 2":        false,
		"len(tags)":    false,
	} {
		w, err := MustParse(src).IsWritable(ctx)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if w != want {
			t.Errorf("%q: want writable=%v, got %v", src, want, w)
		}
	}
}

func Test_Eval_SetValueThroughFacade(t *testing.T) {
	ctx := sampleCtx()
	if err := MustParse("address.city").SetValue(ctx, "Pisa"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if got := evalOne(t, ctx, "address.city"); got != "Pisa" {
		t.Fatalf("got %#v", got)
	}
	err := MustParse("len(tags)").SetValue(ctx, 1)
	ee, ok := err.(*EvalError)
	if !ok || ee.Code != CodeSetValueNotSupported {
		t.Fatalf("want SETVALUE_NOT_SUPPORTED, got %v", err)
	}
}

func Test_Eval_DefaultContextAtFacade(t *testing.T) {
	// Only the facade fabricates a context, and only when asked with nil.
	got, err := MustParse("1 + 2").Eval(nil)
	if err != nil || got != int64(3) {
		t.Fatalf("facade default context: %v %v", got, err)
	}
}

func Test_Eval_EvalAsCoercion(t *testing.T) {
	ctx := sampleCtx()
	n, err := EvalAs[float64](MustParse("age"), ctx)
	if err != nil || n != 36.0 {
		t.Fatalf("int→float: %v %v", n, err)
	}
	s, err := EvalAs[string](MustParse("age"), ctx)
	if err != nil || s != "36" {
		t.Fatalf("int→string: %v %v", s, err)
	}
	b, err := EvalAs[bool](MustParse("'true'"), ctx)
	if err != nil || !b {
		t.Fatalf("string→bool: %v %v", b, err)
	}
}

func Test_Eval_OneTreeManyContexts_Concurrent(t *testing.T) {
	expr := MustParse("upper(name) + '/' + str(age)")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ctx := NewContext().SetRoot(map[string]any{"name": "ada", "age": int64(j)})
				got, err := expr.Eval(ctx)
				if err != nil {
					t.Errorf("eval: %v", err)
					return
				}
				if got.(string)[:4] != "ADA/" {
					t.Errorf("got %v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func Test_Eval_RoundTripRendering(t *testing.T) {
	for _, src := range []string{"#a = 5", "a.b[0]?.c", "upper(name)"} {
		e := MustParse(src)
		if e.String() == "" || e.Source() != src {
			t.Fatalf("rendering %q: %q / %q", src, e.String(), e.Source())
		}
	}
}
