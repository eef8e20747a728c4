// printer.go — deterministic AST dump for tooling.
//
// DumpAST renders a parsed tree one node per line, children indented, each
// line showing the kind, the packed span, and the node's canonical text:
//
//	Compound [0,10) a.b[0]
//	  PropertyRef [0,1) a
//	  PropertyRef [1,3) .b
//	  Indexer [3,6) [0]
//
// The output is stable for identical trees; the CLI's `ast` subcommand and
// golden tests rely on that.
package xpr

import (
	"fmt"
	"strings"
)

// DumpAST renders n and its subtree as an indented listing.
func DumpAST(n Node) string {
	var b strings.Builder
	dumpNode(&b, n, 0)
	return b.String()
}

//// END_OF_PUBLIC

func dumpNode(b *strings.Builder, n Node, depth int) {
	fmt.Fprintf(b, "%s%s %s %s\n", strings.Repeat("  ", depth), n.Kind(), n.Position(), n.String())
	for i := 0; i < n.ChildCount(); i++ {
		dumpNode(b, n.Child(i), depth+1)
	}
}
