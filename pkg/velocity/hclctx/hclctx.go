// Package hclctx loads template contexts written as HCL attribute files.
//
//	name  = "Ada"
//	total = 3
//	items = ["a", "b", "c"]
//	owner = { name = "Grace", admin = true }
//
// Each top-level attribute becomes one context key. Attribute expressions
// are evaluated without variables or functions; blocks are not allowed.
package hclctx

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/benjaminschreck/go-velocity/pkg/velocity"
)

// LoadFile parses the HCL file at path into a context.
func LoadFile(path string) (velocity.Context, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeBody(file.Body, path)
}

// Parse parses HCL source into a context. filename is used in diagnostics.
func Parse(src []byte, filename string) (velocity.Context, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return decodeBody(file.Body, filename)
}

func decodeBody(body hcl.Body, filename string) (velocity.Context, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read attributes from %s: %w", filename, diags)
	}

	ctx := velocity.NewContext()
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate attribute '%s' in %s: %w", name, filename, diags)
		}
		v, err := FromCty(val)
		if err != nil {
			return nil, fmt.Errorf("in attribute '%s': %w", name, err)
		}
		ctx[name] = v
	}
	velocity.GetLogger().WithField("keys", len(ctx)).Debug("Loaded HCL context from %s", filename)
	return ctx, nil
}

// FromCty converts a cty value into a velocity Value. Lists, sets and
// tuples become arrays; maps and objects become objects. Null becomes the
// empty string. Unknown values are an error.
func FromCty(val cty.Value) (velocity.Value, error) {
	if !val.IsKnown() {
		return velocity.Value{}, fmt.Errorf("cannot convert unknown value of type %s", val.Type().FriendlyName())
	}
	if val.IsNull() {
		return velocity.StringValue(""), nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return velocity.StringValue(val.AsString()), nil

	case ty == cty.Number:
		return numberFromBigFloat(val.AsBigFloat()), nil

	case ty == cty.Bool:
		return velocity.BoolValue(val.True()), nil

	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		items := make([]velocity.Value, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			v, err := FromCty(elem)
			if err != nil {
				return velocity.Value{}, fmt.Errorf("index %d: %w", len(items), err)
			}
			items = append(items, v)
		}
		return velocity.ArrayValue(items...), nil

	case ty.IsMapType(), ty.IsObjectType():
		fields := make(map[string]velocity.Value)
		for key, elem := range val.AsValueMap() {
			v, err := FromCty(elem)
			if err != nil {
				return velocity.Value{}, fmt.Errorf("key '%s': %w", key, err)
			}
			fields[key] = v
		}
		return velocity.ObjectValue(fields), nil

	default:
		return velocity.Value{}, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

func numberFromBigFloat(bf *big.Float) velocity.Value {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return velocity.IntValue(i)
		}
	}
	f, _ := bf.Float64()
	return velocity.FloatValue(f)
}
