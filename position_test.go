// position_test.go
package xpr

import "testing"

func Test_Position_PackAndExtract(t *testing.T) {
	p := NewPos(3, 5)
	if p.Start() != 3 || p.End() != 5 {
		t.Fatalf("want [3,5), got [%d,%d)", p.Start(), p.End())
	}
	if p == 0 {
		t.Fatal("packed position must never be zero")
	}
}

func Test_Position_StartOfSource(t *testing.T) {
	// A token at the very start of the source still packs nonzero because
	// tokens are never empty.
	p := NewPos(0, 1)
	if p == 0 {
		t.Fatal("packed [0,1) must be nonzero")
	}
	if p.Start() != 0 || p.End() != 1 {
		t.Fatalf("want [0,1), got [%d,%d)", p.Start(), p.End())
	}
}

func Test_Position_ZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewPos(0,0) must panic")
		}
	}()
	NewPos(0, 0)
}

func Test_Position_OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewPos past the 16-bit ceiling must panic")
		}
	}()
	NewPos(0, maxOffset+1)
}

func Test_Position_NodeZeroPosPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("constructing a node with zero position must panic")
		}
	}()
	n := &IntLiteral{}
	n.init(KindIntLiteral, 0)
}
