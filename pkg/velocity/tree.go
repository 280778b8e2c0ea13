package velocity

import (
	"fmt"
	"sort"
	"strings"
)

// TagTree is a span with its nesting resolved. Children are the spans
// inside its body; Branches is the #elseif/#else chain that follows an #if,
// where each branch opens exactly where the previous span closes.
type TagTree struct {
	TagSpan
	Children []*TagTree
	Branches []*TagTree
}

func (t *TagTree) String() string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	if len(t.Children) > 0 {
		b.WriteString(formatTrees(t.Children))
	}
	for _, br := range t.Branches {
		b.WriteByte(' ')
		b.WriteString(br.String())
	}
	return b.String()
}

func formatTrees(trees []*TagTree) string {
	parts := make([]string, len(trees))
	for i, t := range trees {
		parts[i] = t.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}

// BuildTagTree resolves nesting among spans by offset containment and
// returns the top-level spans in source order.
func BuildTagTree(spans []TagSpan) []*TagTree {
	ordered := make([]TagSpan, len(spans))
	copy(ordered, spans)
	// Innermost and rightmost first, so every child is built before its parent.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OpenStart > ordered[j].OpenStart
	})

	var working []*TagTree
	for _, span := range ordered {
		node := &TagTree{TagSpan: span}

		rest := working[:0:0]
		for _, w := range working {
			if span.contains(w.TagSpan) {
				node.Children = append(node.Children, w)
			} else {
				rest = append(rest, w)
			}
		}
		working = rest

		if span.Kind == TagIf {
			working = collectBranches(node, working)
		}

		sortTrees(node.Children)
		working = append(working, node)
	}

	sortTrees(working)
	return working
}

// collectBranches moves the contiguous #elseif/#else spans following node
// from working into node.Branches and returns what is left.
func collectBranches(node *TagTree, working []*TagTree) []*TagTree {
	cursor := node.CloseStart
	for {
		found := -1
		for i, w := range working {
			if w.OpenStart == cursor && (w.Kind == TagElseIf || w.Kind == TagElse) {
				found = i
				break
			}
		}
		if found < 0 {
			return working
		}
		branch := working[found]
		node.Branches = append(node.Branches, branch)
		working = append(working[:found:found], working[found+1:]...)
		cursor = branch.CloseStart
	}
}

func sortTrees(trees []*TagTree) {
	sort.Slice(trees, func(i, j int) bool {
		return trees[i].OpenStart < trees[j].OpenStart
	})
}
