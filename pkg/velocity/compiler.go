package velocity

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Compile parses src into a Template without consulting any cache.
func Compile(src string) (*Template, error) {
	return compile(src, GetLogger())
}

// compile is Compile with the debug output sent to logger.
func compile(src string, logger *Logger) (*Template, error) {
	tags := ScanTags(src)
	spans, err := matchSpans(src, tags, logger)
	if err != nil {
		return nil, err
	}
	roots := BuildTagTree(spans)

	c := &compiler{src: src}
	nodes, err := c.compileRange(0, len(src), roots, false)
	if err != nil {
		return nil, err
	}

	tmpl := &Template{
		Nodes:  nodes,
		Source: src,
		Hash:   sha256.Sum256([]byte(src)),
	}
	if logger.IsDebugMode() {
		logger.WithFields(Fields{"tags": len(tags), "nodes": len(nodes)}).Debug("Compiled template %x", tmpl.Hash[:6])
	}
	return tmpl, nil
}

type compiler struct {
	src string
}

func (c *compiler) errorAt(kind error, tag TagKind, offset int, format string, args ...interface{}) error {
	return NewParseError(kind, c.src, tag.String(), offset, fmt.Sprintf(format, args...))
}

// compileRange compiles src[start:end], whose tags are the given trees.
// trimLead drops the first newline of the range when it directly follows a tag.
func (c *compiler) compileRange(start, end int, trees []*TagTree, trimLead bool) ([]Node, error) {
	var nodes []Node
	pos := start
	trim := trimLead

	for _, t := range trees {
		nodes = c.appendText(nodes, pos, t.OpenStart, trim)

		node, next, err := c.compileTree(t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		pos = next
		trim = true
	}

	return c.appendText(nodes, pos, end, trim), nil
}

func (c *compiler) appendText(nodes []Node, start, end int, trim bool) []Node {
	if start >= end {
		return nodes
	}
	text := c.src[start:end]
	if trim {
		text = trimLeadingNewline(text)
	}
	if text == "" {
		return nodes
	}
	return append(nodes, &TextNode{Text: text})
}

func trimLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return s
}

// compileTree converts one top-level span and returns the node together
// with the offset where the literal text after it begins.
func (c *compiler) compileTree(t *TagTree) (Node, int, error) {
	switch t.Kind {
	case TagIf:
		return c.compileIf(t)
	case TagForeach:
		return c.compileForeach(t)
	case TagSet:
		return c.compileSet(t)
	default:
		return nil, 0, c.errorAt(ErrMisplacedBranch, t.Kind, t.OpenStart, "%s must follow #if or #elseif", t.Kind)
	}
}

// expression returns the trimmed text of the parenthesised expression after
// the keyword of t, and the offset just past its closing parenthesis.
func (c *compiler) expression(t *TagTree) (string, int, error) {
	open, closeParen, ok := findExpression(c.src, t.OpenEnd)
	if !ok || (t.Kind != TagSet && closeParen >= t.CloseStart) {
		return "", 0, c.errorAt(ErrMissingParenthesis, t.Kind, t.OpenStart, "expected balanced '(...)' after %s", t.Kind)
	}
	return strings.TrimSpace(c.src[open+1 : closeParen]), closeParen + 1, nil
}

func (c *compiler) compileIf(t *TagTree) (Node, int, error) {
	chain := append([]*TagTree{t}, t.Branches...)
	node := &IfNode{Branches: make([]IfBranch, 0, len(chain))}

	for i, br := range chain {
		if i > 0 && chain[i-1].Kind == TagElse {
			return nil, 0, c.errorAt(ErrMisplacedBranch, br.Kind, br.OpenStart, "%s after #else", br.Kind)
		}

		var (
			condition string
			bodyStart int
		)
		if br.Kind == TagElse {
			condition = "true"
			bodyStart = br.OpenEnd
		} else {
			expr, next, err := c.expression(br)
			if err != nil {
				return nil, 0, err
			}
			condition = expr
			bodyStart = next
		}

		body, err := c.compileRange(bodyStart, br.CloseStart, br.Children, true)
		if err != nil {
			return nil, 0, err
		}
		node.Branches = append(node.Branches, IfBranch{Condition: condition, Body: body})
	}

	last := chain[len(chain)-1]
	return node, last.CloseEnd, nil
}

func (c *compiler) compileForeach(t *TagTree) (Node, int, error) {
	if t.CloseKind != TagEnd {
		return nil, 0, c.errorAt(ErrMisplacedBranch, t.CloseKind, t.CloseStart, "%s cannot close #foreach", t.CloseKind)
	}

	expr, bodyStart, err := c.expression(t)
	if err != nil {
		return nil, 0, err
	}

	idx := strings.Index(expr, " in ")
	if idx < 0 {
		return nil, 0, c.errorAt(ErrMalformedForeach, t.Kind, t.OpenStart, "expected '<var> in <collection>', got %q", expr)
	}
	loopVar := referenceName(expr[:idx])
	collection := strings.TrimSpace(expr[idx+len(" in "):])
	if loopVar == "" || collection == "" {
		return nil, 0, c.errorAt(ErrMalformedForeach, t.Kind, t.OpenStart, "expected '<var> in <collection>', got %q", expr)
	}

	body, err := c.compileRange(bodyStart, t.CloseStart, t.Children, true)
	if err != nil {
		return nil, 0, err
	}

	return &ForeachNode{LoopVar: loopVar, Collection: collection, Body: body}, t.CloseEnd, nil
}

func (c *compiler) compileSet(t *TagTree) (Node, int, error) {
	expr, next, err := c.expression(t)
	if err != nil {
		return nil, 0, err
	}

	idx := strings.IndexByte(expr, '=')
	if idx < 0 {
		return nil, 0, c.errorAt(ErrMalformedSet, t.Kind, t.OpenStart, "expected 'key = value', got %q", expr)
	}
	key := referenceName(expr[:idx])
	if key == "" {
		return nil, 0, c.errorAt(ErrMalformedSet, t.Kind, t.OpenStart, "missing key in %q", expr)
	}

	return &SetNode{Key: key, ValueExpr: strings.TrimSpace(expr[idx+1:])}, next, nil
}

// referenceName strips the $ or ${...} decoration from a variable reference.
func referenceName(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return strings.TrimSpace(s[2 : len(s)-1])
	}
	return strings.TrimPrefix(s, "$")
}
