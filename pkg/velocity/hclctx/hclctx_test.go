package hclctx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/benjaminschreck/go-velocity/pkg/velocity"
)

const sample = `
name    = "Ada"
total   = 3
ratio   = 0.5
sum     = 1 + 2
enabled = true
nothing = null
items   = ["a", "b", "c"]
owner   = { name = "Grace", admin = true }
`

func TestParse(t *testing.T) {
	ctx, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)

	want := velocity.Context{
		"name":    velocity.StringValue("Ada"),
		"total":   velocity.IntValue(3),
		"ratio":   velocity.FloatValue(0.5),
		"sum":     velocity.IntValue(3),
		"enabled": velocity.BoolValue(true),
		"nothing": velocity.StringValue(""),
		"items":   velocity.ArrayValue(velocity.StringValue("a"), velocity.StringValue("b"), velocity.StringValue("c")),
		"owner": velocity.ObjectValue(map[string]velocity.Value{
			"name":  velocity.StringValue("Grace"),
			"admin": velocity.BoolValue(true),
		}),
	}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRendersWithEngine(t *testing.T) {
	ctx, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)

	out, err := velocity.New().Render("$name: #foreach($i in $items)$i#end ($total)", ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada: abc (3)", out)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "syntax error", src: `name = "unterminated`, wantErr: "failed to parse HCL"},
		{name: "blocks are rejected", src: "section {\n  a = 1\n}\n", wantErr: "failed to read attributes"},
		{name: "variables are rejected", src: "a = var.x\n", wantErr: "failed to evaluate attribute 'a'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "context.hcl")
	require.NoError(t, os.WriteFile(path, []byte("city = \"東京\"\ncount = 2\n"), 0644))

	ctx, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, velocity.StringValue("東京"), ctx["city"])
	assert.Equal(t, velocity.IntValue(2), ctx["count"])

	_, err = LoadFile(filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestFromCty(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want velocity.Value
	}{
		{name: "string", in: cty.StringVal("x"), want: velocity.StringValue("x")},
		{name: "integer", in: cty.NumberIntVal(-7), want: velocity.IntValue(-7)},
		{name: "float", in: cty.NumberFloatVal(2.25), want: velocity.FloatValue(2.25)},
		{name: "integral float", in: cty.NumberFloatVal(4), want: velocity.IntValue(4)},
		{name: "beyond int64", in: cty.NumberFloatVal(1e20), want: velocity.FloatValue(1e20)},
		{name: "bool", in: cty.False, want: velocity.BoolValue(false)},
		{name: "null", in: cty.NullVal(cty.String), want: velocity.StringValue("")},
		{
			name: "list",
			in:   cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}),
			want: velocity.ArrayValue(velocity.IntValue(1), velocity.IntValue(2)),
		},
		{
			name: "set",
			in:   cty.SetVal([]cty.Value{cty.StringVal("b"), cty.StringVal("a")}),
			want: velocity.ArrayValue(velocity.StringValue("a"), velocity.StringValue("b")),
		},
		{
			name: "map",
			in:   cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}),
			want: velocity.ObjectValue(map[string]velocity.Value{"k": velocity.StringValue("v")}),
		},
		{
			name: "nested",
			in: cty.ObjectVal(map[string]cty.Value{
				"tags": cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.True}),
			}),
			want: velocity.ObjectValue(map[string]velocity.Value{
				"tags": velocity.ArrayValue(velocity.StringValue("x"), velocity.BoolValue(true)),
			}),
		},
		{name: "empty list", in: cty.ListValEmpty(cty.String), want: velocity.ArrayValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCty(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromCty() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromCtyUnknown(t *testing.T) {
	_, err := FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown value")

	_, err = FromCty(cty.ListVal([]cty.Value{cty.UnknownVal(cty.Number)}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 0")
}
