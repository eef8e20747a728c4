// convert_test.go
package xpr

import (
	"reflect"
	"testing"
)

func Test_Convert_Standard(t *testing.T) {
	conv := StandardConverter{}
	cases := []struct {
		in   any
		to   reflect.Type
		want any
	}{
		{int64(42), reflect.TypeOf((*float64)(nil)).Elem(), 42.0},
		{3.0, reflect.TypeOf((*int64)(nil)).Elem(), int64(3)},
		{int64(7), reflect.TypeOf((*int)(nil)).Elem(), 7},
		{"42", reflect.TypeOf((*int64)(nil)).Elem(), int64(42)},
		{"3.5", reflect.TypeOf((*float64)(nil)).Elem(), 3.5},
		{"true", reflect.TypeOf((*bool)(nil)).Elem(), true},
		{int64(9), reflect.TypeOf((*string)(nil)).Elem(), "9"},
		{2.5, reflect.TypeOf((*string)(nil)).Elem(), "2.5"},
		{true, reflect.TypeOf((*string)(nil)).Elem(), "true"},
		{"as-is", reflect.TypeOf((*string)(nil)).Elem(), "as-is"},
		{"anything", reflect.TypeOf((*any)(nil)).Elem(), "anything"},
	}
	for _, c := range cases {
		got, err := conv.Convert(c.in, c.to)
		if err != nil {
			t.Errorf("Convert(%#v, %s): %v", c.in, c.to, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Convert(%#v, %s): want %#v, got %#v", c.in, c.to, c.want, got)
		}
	}
}

func Test_Convert_NoRuneConversion(t *testing.T) {
	// 65 must become "65", never "A".
	got, err := (StandardConverter{}).Convert(int64(65), reflect.TypeOf((*string)(nil)).Elem())
	if err != nil || got != "65" {
		t.Fatalf("int→string: %v %v", got, err)
	}
}

func Test_Convert_Failures(t *testing.T) {
	conv := StandardConverter{}
	fails := []struct {
		in any
		to reflect.Type
	}{
		{"not a number", reflect.TypeOf((*int64)(nil)).Elem()},
		{"maybe", reflect.TypeOf((*bool)(nil)).Elem()},
		{[]any{1}, reflect.TypeOf((*int64)(nil)).Elem()},
		{map[string]any{}, reflect.TypeOf((*float64)(nil)).Elem()},
	}
	for _, c := range fails {
		if _, err := conv.Convert(c.in, c.to); err == nil {
			t.Errorf("Convert(%#v, %s): want error", c.in, c.to)
		}
	}
}

func Test_Convert_NullIntoSlots(t *testing.T) {
	state := NewState(NewContext())
	// Nilable slots accept null as their zero value.
	if v, err := coerceTo(state, 0, nil, reflect.TypeOf((*any)(nil)).Elem()); err != nil || !v.IsZero() {
		t.Fatalf("null into interface: %v %v", v, err)
	}
	// Non-nilable slots refuse it with a conversion error.
	_, err := coerceTo(state, 3, nil, reflect.TypeOf((*int64)(nil)).Elem())
	ee, ok := err.(*EvalError)
	if !ok || ee.Code != CodeTypeConversion || ee.Pos != 3 {
		t.Fatalf("null into int64: %v", err)
	}
}
