package velocity

import (
	"strconv"
	"strings"
)

// renderer walks a compiled template against one context. It is created
// per render call.
type renderer struct {
	evaluator ConditionEvaluator
	logger    *Logger
	maxDepth  int
	onRecover func(error)
}

func (r *renderer) render(t *Template, ctx Context) (string, error) {
	var b strings.Builder
	b.Grow(len(t.Source))
	if err := r.renderNodes(&b, t.Nodes, ctx, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *renderer) renderNodes(b *strings.Builder, nodes []Node, ctx Context, depth int) error {
	for _, node := range nodes {
		var err error
		switch n := node.(type) {
		case *TextNode:
			b.WriteString(Substitute(n.Text, ctx))
		case *IfNode:
			err = r.renderIf(b, n, ctx, depth)
		case *ForeachNode:
			err = r.renderForeach(b, n, ctx, depth)
		case *SetNode:
			r.renderSet(n, ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// enter checks the depth of a body about to be rendered.
func (r *renderer) enter(tag TagKind, depth int) error {
	if depth > r.maxDepth {
		return &RenderError{Node: tag.String(), Depth: depth, Cause: ErrMaxDepthExceeded}
	}
	return nil
}

// renderIf renders the body of the first branch whose condition holds.
func (r *renderer) renderIf(b *strings.Builder, n *IfNode, ctx Context, depth int) error {
	if err := r.enter(TagIf, depth+1); err != nil {
		return err
	}
	for _, br := range n.Branches {
		if r.condition(br.Condition, ctx) {
			return r.renderNodes(b, br.Body, ctx, depth+1)
		}
	}
	return nil
}

// condition evaluates one branch condition. Evaluation failures are logged,
// reported to the recovery hook and count as false.
func (r *renderer) condition(condition string, ctx Context) bool {
	substituted := Substitute(condition, ctx)
	ok, err := r.evaluator.Evaluate(substituted)
	if err != nil {
		evalErr := NewEvaluationError(substituted, err)
		r.logger.WithField("condition", condition).Warn("Condition treated as false: %v", evalErr)
		if r.onRecover != nil {
			r.onRecover(evalErr)
		}
		return false
	}
	return ok
}

func (r *renderer) renderForeach(b *strings.Builder, n *ForeachNode, ctx Context, depth int) error {
	if err := r.enter(TagForeach, depth+1); err != nil {
		return err
	}

	collection, ok := r.resolveCollection(n.Collection, ctx)
	if !ok {
		r.logger.WithField("collection", n.Collection).Debug("Foreach collection is not an array or object")
		return nil
	}

	prefix := n.LoopVar + "."
	setMeta := func(i, count int) {
		ctx[prefix+"index"] = IntValue(int64(i))
		ctx[prefix+"count"] = IntValue(int64(i + 1))
		ctx[prefix+"first"] = BoolValue(i == 0)
		ctx[prefix+"last"] = BoolValue(i == count-1)
		ctx[prefix+"hasNext"] = BoolValue(i < count-1)
	}

	switch collection.Kind() {
	case KindArray:
		items, _ := collection.AsArray()
		for i, item := range items {
			if fields, isObject := item.AsObject(); isObject {
				for k, v := range fields {
					ctx[prefix+k] = v
				}
			} else {
				ctx[n.LoopVar] = item
			}
			setMeta(i, len(items))
			if err := r.renderNodes(b, n.Body, ctx, depth+1); err != nil {
				return err
			}
		}

	case KindObject:
		fields, _ := collection.AsObject()
		keys := collection.Keys()
		for i, k := range keys {
			ctx[n.LoopVar] = ObjectValue(map[string]Value{k: fields[k]})
			ctx[prefix+"key"] = StringValue(k)
			ctx[prefix+"value"] = fields[k]
			setMeta(i, len(keys))
			if err := r.renderNodes(b, n.Body, ctx, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveCollection resolves a #foreach collection expression: a reference
// ($list, ${list} or a bare key), an inline JSON array or object, or an
// integer range such as [1..5]. Only arrays and objects are returned.
func (r *renderer) resolveCollection(expr string, ctx Context) (Value, bool) {
	s := strings.TrimSpace(expr)

	var v Value
	switch {
	case strings.HasPrefix(s, "["), strings.HasPrefix(s, "{"):
		substituted := Substitute(s, ctx)
		if rangeValue, ok := parseRange(substituted); ok {
			v = rangeValue
			break
		}
		parsed, err := ValueFromJSON([]byte(substituted))
		if err != nil {
			r.logger.WithField("collection", expr).Debug("Inline collection is not valid JSON: %v", err)
			return Value{}, false
		}
		v = parsed
	default:
		found, ok := ctx[referenceName(s)]
		if !ok {
			return Value{}, false
		}
		v = found
	}

	if v.Kind() != KindArray && v.Kind() != KindObject {
		return Value{}, false
	}
	return v, true
}

// maxRangeSize bounds the number of elements an inline range may produce.
const maxRangeSize = 1 << 20

// parseRange parses "[a..b]" into the inclusive integer sequence from a to b,
// counting down when a > b.
func parseRange(s string) (Value, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Value{}, false
	}
	from, to, found := strings.Cut(s[1:len(s)-1], "..")
	if !found {
		return Value{}, false
	}
	a, err := strconv.ParseInt(strings.TrimSpace(from), 10, 64)
	if err != nil {
		return Value{}, false
	}
	z, err := strconv.ParseInt(strings.TrimSpace(to), 10, 64)
	if err != nil {
		return Value{}, false
	}

	// The distance is taken in uint64 so bounds far apart cannot overflow.
	step := int64(1)
	dist := uint64(z) - uint64(a)
	if a > z {
		step = -1
		dist = uint64(a) - uint64(z)
	}
	if dist >= maxRangeSize {
		return Value{}, false
	}
	items := make([]Value, 0, dist+1)
	for i := a; ; i += step {
		items = append(items, IntValue(i))
		if i == z {
			break
		}
	}
	return ArrayValue(items...), true
}

func (r *renderer) renderSet(n *SetNode, ctx Context) {
	value := coerceSetValue(Substitute(n.ValueExpr, ctx), r.evaluator)
	ctx[n.Key] = value
	if value.Kind() == KindArray || value.Kind() == KindObject {
		ctx[n.Key+".size"] = IntValue(int64(value.Len()))
	}
}
