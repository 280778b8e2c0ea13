package expr

import (
	"fmt"
	"strconv"
)

// Node represents a node in the expression AST
type Node interface {
	String() string
	Evaluate() (interface{}, error)
}

// LiteralNode represents a literal value (string, number, boolean)
type LiteralNode struct {
	Value interface{}
}

func (n *LiteralNode) String() string {
	if str, ok := n.Value.(string); ok {
		return fmt.Sprintf("Literal(%q)", str)
	}
	return fmt.Sprintf("Literal(%v)", n.Value)
}

func (n *LiteralNode) Evaluate() (interface{}, error) {
	return n.Value, nil
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Left     Node
	Operator string
	Right    Node
}

func (n *BinaryOpNode) String() string {
	return fmt.Sprintf("BinaryOp(%s %s %s)", n.Left.String(), n.Operator, n.Right.String())
}

func (n *BinaryOpNode) Evaluate() (interface{}, error) {
	leftVal, err := n.Left.Evaluate()
	if err != nil {
		return nil, err
	}

	// Logical operators short-circuit.
	switch n.Operator {
	case "&&":
		if !IsTruthy(leftVal) {
			return false, nil
		}
	case "||":
		if IsTruthy(leftVal) {
			return true, nil
		}
	}

	rightVal, err := n.Right.Evaluate()
	if err != nil {
		return nil, err
	}

	return EvaluateBinaryOperation(leftVal, n.Operator, rightVal)
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Operator string
	Operand  Node
}

func (n *UnaryOpNode) String() string {
	return fmt.Sprintf("UnaryOp(%s %s)", n.Operator, n.Operand.String())
}

func (n *UnaryOpNode) Evaluate() (interface{}, error) {
	operandVal, err := n.Operand.Evaluate()
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "!":
		return !IsTruthy(operandVal), nil
	case "-":
		return evaluateUnaryMinus(operandVal)
	case "+":
		num, ok := toNumber(operandVal)
		if !ok {
			return nil, fmt.Errorf("cannot apply unary plus to %q", formatValue(operandVal))
		}
		return num, nil
	default:
		return nil, fmt.Errorf("unknown unary operator: %s", n.Operator)
	}
}

// Parse parses an expression string into an AST. The whole input must be
// consumed.
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	parser := &Parser{tokens: tokens}
	node, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if parser.current().Type != TokenEOF {
		token := parser.current()
		return nil, fmt.Errorf("unexpected trailing token %q at position %d", token.Value, token.Pos)
	}
	return node, nil
}

// Parser parses expression tokens into AST nodes
type Parser struct {
	tokens []Token
	pos    int
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) atOperator(ops ...string) (string, bool) {
	tok := p.current()
	if tok.Type != TokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Value == op {
			return op, true
		}
	}
	return "", false
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (Node, error), ops ...string) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.atOperator(ops...)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: op, Right: right}
	}
}

// parseExpression parses a complete expression
func (p *Parser) parseExpression() (Node, error) {
	return p.parseLogicalOr()
}

// parseLogicalOr parses || (lowest precedence)
func (p *Parser) parseLogicalOr() (Node, error) {
	return p.binaryLevel(p.parseLogicalAnd, "||")
}

// parseLogicalAnd parses &&
func (p *Parser) parseLogicalAnd() (Node, error) {
	return p.binaryLevel(p.parseEquality, "&&")
}

// parseEquality parses == and !=
func (p *Parser) parseEquality() (Node, error) {
	return p.binaryLevel(p.parseComparison, "==", "!=")
}

// parseComparison parses <, >, <= and >=
func (p *Parser) parseComparison() (Node, error) {
	return p.binaryLevel(p.parseTerm, "<", ">", "<=", ">=")
}

// parseTerm parses + and -
func (p *Parser) parseTerm() (Node, error) {
	return p.binaryLevel(p.parseFactor, "+", "-")
}

// parseFactor parses *, / and %
func (p *Parser) parseFactor() (Node, error) {
	return p.binaryLevel(p.parseUnary, "*", "/", "%")
}

// parseUnary parses !, - and +
func (p *Parser) parseUnary() (Node, error) {
	if op, ok := p.atOperator("!", "-", "+"); ok {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{Operator: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses literals, bare words and parenthesized expressions
func (p *Parser) parsePrimary() (Node, error) {
	token := p.current()

	switch token.Type {
	case TokenNumber:
		p.advance()
		if intVal, err := strconv.ParseInt(token.Value, 10, 64); err == nil {
			return &LiteralNode{Value: intVal}, nil
		}
		floatVal, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", token.Value)
		}
		return &LiteralNode{Value: floatVal}, nil

	case TokenString:
		p.advance()
		return &LiteralNode{Value: token.Value}, nil

	case TokenWord:
		p.advance()
		switch token.Value {
		case "true":
			return &LiteralNode{Value: true}, nil
		case "false":
			return &LiteralNode{Value: false}, nil
		}
		// Bare words compare as strings; adjacent words form one
		// space-separated string.
		text := token.Value
		for p.current().Type == TokenWord {
			text += " " + p.current().Value
			p.advance()
		}
		return &LiteralNode{Value: text}, nil

	case TokenLeftParen:
		p.advance()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRightParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.current().Pos)
		}
		p.advance()
		return node, nil

	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of expression")

	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", token.Value, token.Pos)
	}
}
