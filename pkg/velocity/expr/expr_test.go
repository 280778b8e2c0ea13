package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "comparison",
			input: "5 >= 3",
			want: []Token{
				{Type: TokenNumber, Value: "5", Pos: 0},
				{Type: TokenOperator, Value: ">=", Pos: 2},
				{Type: TokenNumber, Value: "3", Pos: 5},
				{Type: TokenEOF, Pos: 6},
			},
		},
		{
			name:  "quoted strings and parens",
			input: `("a b" == 'c\'d')`,
			want: []Token{
				{Type: TokenLeftParen, Value: "(", Pos: 0},
				{Type: TokenString, Value: "a b", Pos: 1},
				{Type: TokenOperator, Value: "==", Pos: 7},
				{Type: TokenString, Value: "c'd", Pos: 10},
				{Type: TokenRightParen, Value: ")", Pos: 16},
				{Type: TokenEOF, Pos: 17},
			},
		},
		{
			name:  "word operators",
			input: "a and not b",
			want: []Token{
				{Type: TokenWord, Value: "a", Pos: 0},
				{Type: TokenOperator, Value: "&&", Pos: 2},
				{Type: TokenOperator, Value: "!", Pos: 6},
				{Type: TokenWord, Value: "b", Pos: 10},
				{Type: TokenEOF, Pos: 11},
			},
		},
		{
			name:  "dotted words and decimals",
			input: "v1.2 < 3.5",
			want: []Token{
				{Type: TokenWord, Value: "v1.2", Pos: 0},
				{Type: TokenOperator, Value: "<", Pos: 5},
				{Type: TokenNumber, Value: "3.5", Pos: 7},
				{Type: TokenEOF, Pos: 10},
			},
		},
		{
			name:  "no spaces",
			input: "1+2*3",
			want: []Token{
				{Type: TokenNumber, Value: "1", Pos: 0},
				{Type: TokenOperator, Value: "+", Pos: 1},
				{Type: TokenNumber, Value: "2", Pos: 2},
				{Type: TokenOperator, Value: "*", Pos: 3},
				{Type: TokenNumber, Value: "3", Pos: 4},
				{Type: TokenEOF, Pos: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{`"open`, "a = b", "a & b", "a | b"} {
		_, err := Tokenize(input)
		assert.Error(t, err, input)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1", want: "Literal(1)"},
		{input: "true", want: "Literal(true)"},
		{input: `"x"`, want: `Literal("x")`},
		{input: "hello world", want: `Literal("hello world")`},
		{input: "1 + 2 * 3", want: "BinaryOp(Literal(1) + BinaryOp(Literal(2) * Literal(3)))"},
		{input: "(1 + 2) * 3", want: "BinaryOp(BinaryOp(Literal(1) + Literal(2)) * Literal(3))"},
		{input: "1 - 2 - 3", want: "BinaryOp(BinaryOp(Literal(1) - Literal(2)) - Literal(3))"},
		{input: "a || b && c", want: `BinaryOp(Literal("a") || BinaryOp(Literal("b") && Literal("c")))`},
		{input: "1 < 2 == true", want: "BinaryOp(BinaryOp(Literal(1) < Literal(2)) == Literal(true))"},
		{input: "!-1", want: "UnaryOp(! UnaryOp(- Literal(1)))"},
		{input: "2.5", want: "Literal(2.5)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"1 +",
		"(1 + 2",
		"1 2 )",
		")",
		"== 1",
		"",
	}
	for _, input := range tests {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestEvaluateValue(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{input: "2 + 3", want: int64(5)},
		{input: "7 - 10", want: int64(-3)},
		{input: "6 * 7", want: int64(42)},
		{input: "8 / 2", want: int64(4)},
		{input: "7 / 2", want: 3.5},
		{input: "7 % 3", want: int64(1)},
		{input: "1.5 + 1", want: 2.5},
		{input: "-(2 + 3)", want: int64(-5)},
		{input: `"a" + "b"`, want: "ab"},
		{input: `"n" + 1`, want: "n1"},
		{input: "1 == 1.0", want: true},
		{input: `"10" == 10`, want: true},
		{input: "abc == abc", want: true},
		{input: `"abc" != "abd"`, want: true},
		{input: "true == true", want: true},
		{input: "3 > 2", want: true},
		{input: "3 <= 2", want: false},
		{input: `"10" > 9`, want: true},
		{input: "1 < 2 && 2 < 3", want: true},
		{input: "false || 0", want: false},
		{input: "!0", want: true},
		{input: "not false and true", want: true},
		{input: "5 ge 5", want: true},
		{input: "a eq a", want: true},
		{input: "New York == New York", want: true},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := e.EvaluateValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateValueErrors(t *testing.T) {
	tests := []struct {
		input   string
		wantErr string
	}{
		{input: "", wantErr: "empty expression"},
		{input: "   ", wantErr: "empty expression"},
		{input: "1 / 0", wantErr: "division by zero"},
		{input: "1 % 0", wantErr: "modulo by zero"},
		{input: "abc < 1", wantErr: "cannot compare"},
		{input: "a - b", wantErr: "cannot apply -"},
		{input: "-abc", wantErr: "unary minus"},
		{input: "1 +", wantErr: "failed to parse"},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := e.EvaluateValue(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateShortCircuits(t *testing.T) {
	e := New()

	ok, err := e.Evaluate("false && 1 / 0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Evaluate("true || 1 / 0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "true", want: true},
		{input: "false", want: false},
		{input: "1", want: true},
		{input: "0", want: false},
		{input: "0.0", want: false},
		{input: "yes", want: true},
		{input: `""`, want: false},
		{input: "${missing}", want: false},
		{input: "${missing} == ${missing}", want: true},
		{input: "2 > 1", want: true},
		{input: "9007199254740993 == 9007199254740992", want: false},
		{input: "9007199254740993 > 9007199254740992", want: true},
		{input: "9223372036854775807 != 9223372036854775806", want: true},
		{input: "9223372036854775806 <= 9223372036854775807", want: true},
		{input: "3 == 3.0", want: true},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := e.Evaluate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		val  interface{}
		want bool
	}{
		{val: nil, want: false},
		{val: true, want: true},
		{val: false, want: false},
		{val: int64(0), want: false},
		{val: int64(-1), want: true},
		{val: 0, want: false},
		{val: 0.0, want: false},
		{val: 0.1, want: true},
		{val: "", want: false},
		{val: "x", want: true},
		{val: "${x}", want: false},
		{val: "$x", want: true},
		{val: []int{}, want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTruthy(tt.val), "%#v", tt.val)
	}
}
