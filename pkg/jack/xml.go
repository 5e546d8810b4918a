package jack

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// XML serializer

// ToXML renders a ParseNode tree as the reference XML format: one element
// per whitelisted non-terminal and per terminal, 2-space indentation per
// nesting level, and a single trailing newline. Transparent non-terminals
// (anything not in the whitelist) are not themselves wrapped in an element;
// their children are inlined directly into the nearest whitelisted ancestor.
func ToXML(root *ParseNode) string {
	var b strings.Builder
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *ParseNode, depth int) {
	if n.Terminal {
		writeTerminal(b, n, depth)
		return
	}

	if n.transparent() {
		for _, child := range n.Children {
			writeNode(b, child, depth)
		}
		return
	}

	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(string(n.Tag))
	b.WriteString(">\n")

	for _, child := range n.Children {
		writeNode(b, child, depth+1)
	}

	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(string(n.Tag))
	b.WriteString(">\n")
}

func writeTerminal(b *strings.Builder, n *ParseNode, depth int) {
	value := n.Value
	if n.Kind != IntegerConstant {
		value = escape(value)
	}

	b.WriteString(strings.Repeat("  ", depth))
	b.WriteByte('<')
	b.WriteString(string(n.Kind))
	b.WriteString("> ")
	b.WriteString(value)
	b.WriteString(" </")
	b.WriteString(string(n.Kind))
	b.WriteString(">\n")
}

// ToGenericXML renders the tree with no transparency filter and no escaping:
// every non-terminal, whitelisted or not, wraps its children in an element
// named after its tag, and terminal values appear verbatim. This is not the
// reference format — it is a debugging view that shows the parser's internal
// groupings (file, subroutineCall) that ToXML inlines away.
func ToGenericXML(root *ParseNode) string {
	var b strings.Builder
	writeGenericNode(&b, root, 0)
	return b.String()
}

// String renders the node as generic XML, internal groupings included.
func (n *ParseNode) String() string { return ToGenericXML(n) }

func writeGenericNode(b *strings.Builder, n *ParseNode, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.Terminal {
		fmt.Fprintf(b, "%s<%s> %s </%s>\n", indent, n.Kind, n.Value, n.Kind)
		return
	}

	fmt.Fprintf(b, "%s<%s>\n", indent, n.Tag)
	for _, child := range n.Children {
		writeGenericNode(b, child, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, n.Tag)
}

var escaper = strings.NewReplacer(
	`"`, "&quot;",
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escape(s string) string { return escaper.Replace(s) }
