package velocity

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "string verbatim", value: StringValue("a <b> & c"), want: "a <b> & c"},
		{name: "zero value", value: Value{}, want: ""},
		{name: "integer", value: IntValue(-42), want: "-42"},
		{name: "float", value: FloatValue(2.5), want: "2.5"},
		{name: "integral float", value: FloatValue(3), want: "3"},
		{name: "max int64", value: IntValue(math.MaxInt64), want: "9223372036854775807"},
		{name: "min int64", value: IntValue(math.MinInt64), want: "-9223372036854775808"},
		{name: "above float precision", value: IntValue(1<<53 + 1), want: "9007199254740993"},
		{name: "large int in array", value: ArrayValue(IntValue(1<<53 + 1)), want: "[9007199254740993]"},
		{name: "bool", value: BoolValue(true), want: "true"},
		{name: "array", value: ArrayValue(IntValue(1), StringValue("x"), BoolValue(false)), want: `[1,"x",false]`},
		{name: "empty array", value: ArrayValue(), want: `[]`},
		{
			name: "object keys sorted",
			value: ObjectValue(map[string]Value{
				"b": IntValue(2),
				"a": ArrayValue(StringValue("<tag>")),
			}),
			want: `{"a":["<tag>"],"b":2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestValueAccessors(t *testing.T) {
	i, ok := IntValue(7).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
	assert.True(t, IntValue(7).IsInt())
	assert.False(t, FloatValue(7).IsInt())

	i, ok = FloatValue(7).AsInt()
	assert.True(t, ok, "integral floats convert")
	assert.Equal(t, int64(7), i)

	_, ok = FloatValue(7.5).AsInt()
	assert.False(t, ok)

	_, ok = StringValue("7").AsInt()
	assert.False(t, ok)

	i, ok = IntValue(math.MaxInt64).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), i)

	i, ok = IntValue(1<<53 + 1).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), i)

	_, ok = FloatValue(1e19).AsInt()
	assert.False(t, ok, "floats beyond int64 do not convert")
	_, ok = FloatValue(math.Inf(1)).AsInt()
	assert.False(t, ok)
	_, ok = FloatValue(math.NaN()).AsInt()
	assert.False(t, ok)

	f, ok := IntValue(4).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)

	arr := ArrayValue(IntValue(1), IntValue(2))
	assert.Equal(t, 2, arr.Len())
	assert.Equal(t, KindArray, arr.Kind())

	obj := ObjectValue(map[string]Value{"z": IntValue(1), "a": IntValue(2)})
	assert.Equal(t, []string{"a", "z"}, obj.Keys())
	assert.Nil(t, arr.Keys())
	assert.Equal(t, 0, BoolValue(true).Len())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, IntValue(3).Equal(FloatValue(3)))
	assert.False(t, IntValue(3).Equal(StringValue("3")))
	assert.False(t, IntValue(1<<53+1).Equal(IntValue(1<<53)))
	assert.False(t, IntValue(1<<53+1).Equal(FloatValue(1<<53)))
	assert.False(t, FloatValue(1<<53).Equal(IntValue(1<<53+1)))
	assert.True(t, IntValue(1<<53).Equal(FloatValue(1<<53)))
	assert.False(t, IntValue(math.MaxInt64).Equal(FloatValue(math.MaxInt64)))
	assert.False(t, IntValue(3).Equal(FloatValue(3.5)))
	assert.True(t, ArrayValue(StringValue("a")).Equal(ArrayValue(StringValue("a"))))
	assert.False(t, ArrayValue(StringValue("a")).Equal(ArrayValue()))
	assert.True(t, ObjectValue(nil).Equal(ObjectValue(map[string]Value{})))
	assert.False(t, ObjectValue(map[string]Value{"a": IntValue(1)}).Equal(ObjectValue(map[string]Value{"b": IntValue(1)})))
}

func TestValueGoString(t *testing.T) {
	v := ObjectValue(map[string]Value{
		"n": IntValue(1),
		"l": ArrayValue(FloatValue(1.5), BoolValue(true), StringValue("s")),
	})
	assert.Equal(t, `ObjectValue({"l": ArrayValue(FloatValue(1.5), BoolValue(true), StringValue("s")), "n": IntValue(1)})`, v.GoString())
}

func TestValueFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Value
		wantErr bool
	}{
		{name: "integer", input: `5`, want: IntValue(5)},
		{name: "float", input: `5.25`, want: FloatValue(5.25)},
		{name: "integer above float precision", input: `9007199254740993`, want: IntValue(9007199254740993)},
		{name: "max int64", input: `9223372036854775807`, want: IntValue(math.MaxInt64)},
		{name: "beyond int64", input: `9223372036854775808`, want: FloatValue(9223372036854775808)},
		{name: "string", input: `"hi"`, want: StringValue("hi")},
		{name: "null", input: `null`, want: StringValue("")},
		{
			name:  "nested",
			input: `{"user": {"name": "Ada", "tags": ["x", 1]}, "ok": true}`,
			want: ObjectValue(map[string]Value{
				"user": ObjectValue(map[string]Value{
					"name": StringValue("Ada"),
					"tags": ArrayValue(StringValue("x"), IntValue(1)),
				}),
				"ok": BoolValue(true),
			}),
		},
		{name: "invalid", input: `{"a":`, wantErr: true},
		{name: "trailing data", input: `[1] [2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueFromJSON([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValueFromJSON() mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, tt.want.IsInt() == got.IsInt(), "integer flag must survive decoding")
		})
	}
}

func TestValueUnmarshalJSON(t *testing.T) {
	var v Value
	require.NoError(t, v.UnmarshalJSON([]byte(`[1, 2, 3]`)))
	assert.Equal(t, 3, v.Len())

	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(data))
}

func TestFromJSON(t *testing.T) {
	ctx, err := FromJSON([]byte(`{"name": "Ada", "age": 36}`))
	require.NoError(t, err)
	want := Context{"name": StringValue("Ada"), "age": IntValue(36)}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Errorf("FromJSON() mismatch (-want +got):\n%s", diff)
	}

	ctx, err = FromJSON([]byte(`{"id": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", ctx["id"].String())
	data, err := ctx["id"].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", string(data))

	_, err = FromJSON([]byte(`[1, 2]`))
	assert.ErrorContains(t, err, "must be an object")
}

func TestFromGo(t *testing.T) {
	type address struct {
		City string `json:"city"`
	}

	tests := []struct {
		name  string
		input interface{}
		want  Value
	}{
		{name: "nil", input: nil, want: StringValue("")},
		{name: "int", input: 3, want: IntValue(3)},
		{name: "uint8", input: uint8(3), want: IntValue(3)},
		{name: "max int64", input: int64(math.MaxInt64), want: IntValue(math.MaxInt64)},
		{name: "uint64 above int64", input: uint64(math.MaxUint64), want: FloatValue(math.MaxUint64)},
		{name: "float32", input: float32(0.5), want: FloatValue(0.5)},
		{name: "value passes through", input: BoolValue(true), want: BoolValue(true)},
		{name: "typed slice", input: []string{"a", "b"}, want: ArrayValue(StringValue("a"), StringValue("b"))},
		{name: "typed map", input: map[string]int{"a": 1}, want: ObjectValue(map[string]Value{"a": IntValue(1)})},
		{name: "struct via JSON", input: address{City: "Oslo"}, want: ObjectValue(map[string]Value{"city": StringValue("Oslo")})},
		{
			name:  "generic nested",
			input: map[string]interface{}{"list": []interface{}{1.5, "x"}},
			want:  ObjectValue(map[string]Value{"list": ArrayValue(FloatValue(1.5), StringValue("x"))}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromGo() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := FromGo(make(chan int))
	assert.Error(t, err)
}

func TestContextFromStruct(t *testing.T) {
	type order struct {
		ID    int      `json:"id"`
		Items []string `json:"items"`
	}

	ctx, err := ContextFromStruct(order{ID: 7, Items: []string{"pen"}})
	require.NoError(t, err)
	assert.Equal(t, "7", ctx["id"].String())
	assert.True(t, ctx["id"].IsInt())
	assert.Equal(t, `["pen"]`, ctx["items"].String())
}

func TestContextHelpers(t *testing.T) {
	ctx := NewContext()
	ctx.Set("a", IntValue(1))

	clone := ctx.Clone()
	clone.Set("b", IntValue(2))

	_, ok := ctx.Get("b")
	assert.False(t, ok)
	v, ok := clone.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v.String())
}
