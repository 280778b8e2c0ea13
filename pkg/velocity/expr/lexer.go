package expr

import (
	"fmt"
	"strings"
)

// Token represents a token in a condition or value expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

type TokenType int

const (
	TokenWord TokenType = iota
	TokenNumber
	TokenString
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenEOF:
		return "EOF"
	default:
		return "invalid"
	}
}

// Two-character operators are listed first so they win over their prefixes.
var operators = []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "!", "+", "-", "*", "/", "%"}

// Word operators accepted as aliases of the symbolic ones.
var wordOperators = map[string]string{
	"and": "&&",
	"or":  "||",
	"not": "!",
	"eq":  "==",
	"ne":  "!=",
	"lt":  "<",
	"gt":  ">",
	"le":  "<=",
	"ge":  ">=",
}

// isDelimiter reports whether c ends a bare word.
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '"', '\'', '=', '!', '<', '>', '&', '|', '+', '-', '*', '/', '%':
		return true
	}
	return false
}

// Tokenize splits an expression into tokens. Any run of characters that is
// not an operator, parenthesis or quoted string is a bare word; words that
// look like numbers become number tokens.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	pos := 0

	for pos < len(input) {
		c := input[pos]

		// Skip whitespace
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pos++
			continue
		}

		switch c {
		case '(':
			tokens = append(tokens, Token{Type: TokenLeftParen, Value: "(", Pos: pos})
			pos++
			continue
		case ')':
			tokens = append(tokens, Token{Type: TokenRightParen, Value: ")", Pos: pos})
			pos++
			continue
		case '"', '\'':
			value, n, err := scanQuoted(input[pos:])
			if err != nil {
				return nil, fmt.Errorf("%w at position %d", err, pos)
			}
			tokens = append(tokens, Token{Type: TokenString, Value: value, Pos: pos})
			pos += n
			continue
		}

		if op := matchOperator(input[pos:]); op != "" {
			tokens = append(tokens, Token{Type: TokenOperator, Value: op, Pos: pos})
			pos += len(op)
			continue
		}
		if c == '=' || c == '&' || c == '|' {
			return nil, fmt.Errorf("unexpected character '%c' at position %d", c, pos)
		}

		start := pos
		for pos < len(input) && !isDelimiter(input[pos]) {
			pos++
		}
		word := input[start:pos]

		switch {
		case isNumeric(word):
			tokens = append(tokens, Token{Type: TokenNumber, Value: word, Pos: start})
		case wordOperators[word] != "":
			tokens = append(tokens, Token{Type: TokenOperator, Value: wordOperators[word], Pos: start})
		default:
			tokens = append(tokens, Token{Type: TokenWord, Value: word, Pos: start})
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Pos: pos})
	return tokens, nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// scanQuoted reads a quoted string at the start of s and returns its
// unescaped content and the number of bytes consumed.
func scanQuoted(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		if c == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// isNumeric accepts digits with at most one decimal point, e.g. 42, 3.14, .5
func isNumeric(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1 && s[len(s)-1] != '.'
}
