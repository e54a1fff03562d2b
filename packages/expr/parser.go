package expr

import (
	"strconv"
	"strings"
)

type parser struct {
	src string
}

// Parse turns source into a syntax tree. The whole source must be consumed.
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	node, pos, err := p.parse(0, nil, 0, "")
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, parseErrorf(0, "empty expression")
	}
	if pos = p.skipSpace(pos); pos < len(src) {
		return nil, parseErrorf(pos, "unexpected %q", nextWord(src, pos))
	}
	return node, nil
}

// parse is the single precedence-climbing loop. Starting at pos with the
// already accumulated left operand, it keeps applying productions until the
// input ends, a stop symbol is reached, or the next infix symbol binds looser
// than minPrec.
func (p *parser) parse(pos int, left Node, minPrec int, stops string) (Node, int, error) {
	for {
		pos = p.skipSpace(pos)
		if pos >= len(p.src) || strings.IndexByte(stops, p.src[pos]) >= 0 {
			return left, pos, nil
		}

		tok, err := dispatch(p.src, pos)
		if err != nil {
			return nil, pos, err
		}

		if left != nil {
			prec, infix := precedence[tok.text]
			if !infix {
				return nil, pos, parseErrorf(pos, "unexpected %q after complete operand", nextWord(p.src, pos))
			}
			if prec < minPrec {
				return left, pos, nil
			}
		}

		left, pos, err = p.produce(tok, pos, left, stops)
		if err != nil {
			return nil, pos, err
		}
	}
}

func (p *parser) produce(tok token, pos int, left Node, stops string) (Node, int, error) {
	switch tok.rule {
	case ruleNumber:
		return p.number(pos)
	case ruleString:
		return p.str(pos)
	case ruleIdentifier:
		return p.identifier(pos)
	case ruleAccessor:
		return p.accessor(pos, left, stops)
	case ruleParen:
		if left == nil {
			return p.group(pos)
		}
		return p.call(pos, left)
	case ruleIndex:
		return p.index(pos, left)
	case ruleNot:
		return p.not(pos, stops)
	case ruleArith:
		return p.arithmetic(tok.text, pos, left, stops)
	case ruleCompare:
		return p.compare(tok.text, pos, left, stops)
	case ruleAnd, ruleOr:
		return p.logical(tok, pos, left, stops)
	case ruleNew:
		return p.newCall(pos)
	case ruleLambda:
		return p.lambda(pos, left, stops)
	}
	return nil, pos, parseErrorf(pos, "no parser rule for symbol %q", tok.text)
}

func (p *parser) number(pos int) (Node, int, error) {
	end := pos
	for end < len(p.src) && (isDigit(p.src[end]) || p.src[end] == '.') {
		end++
	}
	f, err := strconv.ParseFloat(p.src[pos:end], 64)
	if err != nil {
		return nil, pos, parseErrorf(pos, "invalid number %q", p.src[pos:end])
	}
	return &NumberLiteral{At: pos, Value: f}, end, nil
}

func (p *parser) str(pos int) (Node, int, error) {
	quote := p.src[pos]
	end := strings.IndexByte(p.src[pos+1:], quote)
	if end < 0 {
		return nil, pos, parseErrorf(pos, "unterminated string")
	}
	end += pos + 1
	return &StringLiteral{At: pos, Value: p.src[pos+1 : end]}, end + 1, nil
}

func (p *parser) identifier(pos int) (Node, int, error) {
	end := pos
	for end < len(p.src) && isIdentPart(p.src[end]) {
		end++
	}
	switch name := p.src[pos:end]; name {
	case "true", "false":
		return &BoolLiteral{At: pos, Value: name == "true"}, end, nil
	case "null", "undefined":
		return &NullLiteral{At: pos}, end, nil
	default:
		return &Identifier{At: pos, Name: name}, end, nil
	}
}

// accessor reads the property name itself, so keywords such as null or new
// are plain names after a dot.
func (p *parser) accessor(pos int, left Node, stops string) (Node, int, error) {
	if left == nil {
		return nil, pos, parseErrorf(pos, "missing left operand for '.'")
	}
	next := p.skipSpace(pos + 1)
	if next >= len(p.src) || !isIdentStart(p.src[next]) {
		return nil, next, parseErrorf(next, "expected property name after '.'")
	}
	end := next
	for end < len(p.src) && isIdentPart(p.src[end]) {
		end++
	}
	name := &Identifier{At: next, Name: p.src[next:end]}
	right, end, err := p.parse(end, name, precPostfix, stops)
	if err != nil {
		return nil, end, err
	}
	return &Accessor{At: pos, Left: left, Right: right}, end, nil
}

func (p *parser) group(pos int) (Node, int, error) {
	inner, end, err := p.parse(pos+1, nil, 0, ")")
	if err != nil {
		return nil, end, err
	}
	if end >= len(p.src) {
		return nil, pos, parseErrorf(pos, "unterminated parenthesis")
	}
	if inner == nil {
		return nil, pos, parseErrorf(pos, "empty parentheses")
	}
	return &Enclosing{At: pos, Inner: inner}, end + 1, nil
}

func (p *parser) call(pos int, callee Node) (Node, int, error) {
	var args []Node
	next := p.skipSpace(pos + 1)
	if next < len(p.src) && p.src[next] == ')' {
		return &FunctionCall{At: pos, Callee: callee}, next + 1, nil
	}
	for {
		arg, end, err := p.parse(next, nil, 0, ",)")
		if err != nil {
			return nil, end, err
		}
		if end >= len(p.src) {
			return nil, pos, parseErrorf(pos, "unterminated argument list")
		}
		if arg == nil {
			return nil, end, parseErrorf(end, "expected argument")
		}
		args = append(args, arg)
		if p.src[end] == ')' {
			return &FunctionCall{At: pos, Callee: callee, Args: args}, end + 1, nil
		}
		next = end + 1
	}
}

func (p *parser) index(pos int, array Node) (Node, int, error) {
	if array == nil {
		return nil, pos, parseErrorf(pos, "array literals are not supported")
	}
	inner, end, err := p.parse(pos+1, nil, 0, "]")
	if err != nil {
		return nil, end, err
	}
	if end >= len(p.src) {
		return nil, pos, parseErrorf(pos, "unterminated array accessor")
	}
	if inner == nil {
		return nil, pos, parseErrorf(pos, "empty array accessor")
	}
	return &ArrayAccessor{At: pos, Array: array, Index: inner}, end + 1, nil
}

func (p *parser) not(pos int, stops string) (Node, int, error) {
	operand, end, err := p.parse(pos+1, nil, precUnary, stops)
	if err != nil {
		return nil, end, err
	}
	if operand == nil {
		return nil, end, parseErrorf(pos, "expected operand after '!'")
	}
	return &Inversion{At: pos, Operand: operand}, end, nil
}

var arithOps = map[string]ArithOp{"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv}

func (p *parser) arithmetic(sym string, pos int, left Node, stops string) (Node, int, error) {
	if left == nil {
		if sym == "-" {
			return nil, pos, parseErrorf(pos, "unary minus is not supported")
		}
		return nil, pos, parseErrorf(pos, "missing left operand for %q", sym)
	}
	right, end, err := p.operand(sym, pos, stops)
	if err != nil {
		return nil, end, err
	}
	return &Arithmetic{At: pos, Op: arithOps[sym], Left: left, Right: right}, end, nil
}

var compareOps = map[string]CompareOp{
	"==": OpEq, "!=": OpNotEq, "===": OpStrictEq, "!==": OpStrictNotEq,
	">": OpGt, ">=": OpGte, "<": OpLt, "<=": OpLte,
}

func (p *parser) compare(sym string, pos int, left Node, stops string) (Node, int, error) {
	if left == nil {
		return nil, pos, parseErrorf(pos, "missing left operand for %q", sym)
	}
	right, end, err := p.operand(sym, pos, stops)
	if err != nil {
		return nil, end, err
	}
	return &Comparer{At: pos, Op: compareOps[sym], Left: left, Right: right}, end, nil
}

func (p *parser) logical(tok token, pos int, left Node, stops string) (Node, int, error) {
	if left == nil {
		return nil, pos, parseErrorf(pos, "missing left operand for %q", tok.text)
	}
	right, end, err := p.operand(tok.text, pos, stops)
	if err != nil {
		return nil, end, err
	}
	if tok.rule == ruleAnd {
		return &And{At: pos, Left: left, Right: right}, end, nil
	}
	return &Or{At: pos, Left: left, Right: right}, end, nil
}

// operand parses the right side of a binary operator one level above the
// operator's own precedence, which makes every binary operator left associative.
func (p *parser) operand(sym string, pos int, stops string) (Node, int, error) {
	right, end, err := p.parse(pos+len(sym), nil, precedence[sym]+1, stops)
	if err != nil {
		return nil, end, err
	}
	if right == nil {
		return nil, end, parseErrorf(end, "expected operand after %q", sym)
	}
	return right, end, nil
}

func (p *parser) newCall(pos int) (Node, int, error) {
	next := p.skipSpace(pos + len("new"))
	if next >= len(p.src) || !isIdentStart(p.src[next]) {
		return nil, next, parseErrorf(pos, "new must be followed by a call")
	}
	callee, end, err := p.identifier(next)
	if err != nil {
		return nil, end, err
	}
	if _, ok := callee.(*Identifier); !ok {
		return nil, next, parseErrorf(pos, "new must be followed by a call")
	}
	end = p.skipSpace(end)
	if end >= len(p.src) || p.src[end] != '(' {
		return nil, end, parseErrorf(pos, "new must be followed by a call")
	}
	call, end, err := p.call(end, callee)
	if err != nil {
		return nil, end, err
	}
	return &New{At: pos, Call: call.(*FunctionCall)}, end, nil
}

func (p *parser) lambda(pos int, left Node, stops string) (Node, int, error) {
	param, ok := left.(*Identifier)
	if !ok {
		return nil, pos, parseErrorf(pos, "lambda parameter must be an identifier")
	}
	body, end, err := p.parse(pos+len("=>"), nil, 0, stops)
	if err != nil {
		return nil, end, err
	}
	if body == nil {
		return nil, end, parseErrorf(pos, "expected lambda body")
	}
	return &Lambda{At: param.At, Param: param.Name, Body: body}, end, nil
}

func (p *parser) skipSpace(pos int) int {
	for pos < len(p.src) && isSpace(p.src[pos]) {
		pos++
	}
	return pos
}
