package velocity

import (
	"fmt"
	"strings"
)

// Node is a compiled template element. The concrete types are *TextNode,
// *IfNode, *ForeachNode and *SetNode.
type Node interface {
	String() string
	node()
}

// TextNode is literal text, substituted against the context when rendered.
type TextNode struct {
	Text string
}

func (n *TextNode) String() string {
	return fmt.Sprintf("Text(%q)", n.Text)
}

// IfBranch is one condition and the body rendered when it holds.
type IfBranch struct {
	Condition string
	Body      []Node
}

// IfNode is an #if chain. A trailing #else branch has the condition "true".
type IfNode struct {
	Branches []IfBranch
}

func (n *IfNode) String() string {
	parts := make([]string, 0, len(n.Branches))
	for i, br := range n.Branches {
		label := "ElseIf"
		if i == 0 {
			label = "If"
		}
		parts = append(parts, fmt.Sprintf("%s(%s)%s", label, br.Condition, FormatNodes(br.Body)))
	}
	return strings.Join(parts, " ")
}

// ForeachNode repeats its body once per element of Collection.
type ForeachNode struct {
	LoopVar    string
	Collection string
	Body       []Node
}

func (n *ForeachNode) String() string {
	return fmt.Sprintf("Foreach(%s in %s)%s", n.LoopVar, n.Collection, FormatNodes(n.Body))
}

// SetNode assigns the coerced value of ValueExpr to Key.
type SetNode struct {
	Key       string
	ValueExpr string
}

func (n *SetNode) String() string {
	return fmt.Sprintf("Set(%s = %s)", n.Key, n.ValueExpr)
}

func (*TextNode) node()    {}
func (*IfNode) node()      {}
func (*ForeachNode) node() {}
func (*SetNode) node()     {}

// FormatNodes renders a node list in its debug form, e.g.
// [Text("a") If($x)[Text("b")]].
func FormatNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Template is a compiled template. It is never modified after Compile
// returns and may be rendered concurrently.
type Template struct {
	Nodes  []Node
	Source string
	Hash   [32]byte
}

func (t *Template) String() string {
	return FormatNodes(t.Nodes)
}
