package expr

import (
	"strconv"
	"strings"
)

// Node is an immutable syntax tree node. String renders a compact prefix form
// used by tests and `harpi eval --ast`.
type Node interface {
	Pos() int
	String() string
}

type CompareOp int

const (
	OpEq CompareOp = iota
	OpNotEq
	OpStrictEq
	OpStrictNotEq
	OpGt
	OpGte
	OpLt
	OpLte
)

var compareOpSymbols = map[CompareOp]string{
	OpEq:          "==",
	OpNotEq:       "!=",
	OpStrictEq:    "===",
	OpStrictNotEq: "!==",
	OpGt:          ">",
	OpGte:         ">=",
	OpLt:          "<",
	OpLte:         "<=",
}

func (op CompareOp) String() string { return compareOpSymbols[op] }

type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

type NumberLiteral struct {
	At    int
	Value float64
}

type StringLiteral struct {
	At    int
	Value string
}

type BoolLiteral struct {
	At    int
	Value bool
}

type NullLiteral struct {
	At int
}

type Identifier struct {
	At   int
	Name string
}

type Comparer struct {
	At          int
	Op          CompareOp
	Left, Right Node
}

// Accessor resolves Right against the value of Left.
type Accessor struct {
	At          int
	Left, Right Node
}

type ArrayAccessor struct {
	At    int
	Array Node
	Index Node
}

type Inversion struct {
	At      int
	Operand Node
}

type Arithmetic struct {
	At          int
	Op          ArithOp
	Left, Right Node
}

type And struct {
	At          int
	Left, Right Node
}

type Or struct {
	At          int
	Left, Right Node
}

type FunctionCall struct {
	At     int
	Callee Node
	Args   []Node
}

type New struct {
	At   int
	Call *FunctionCall
}

type Lambda struct {
	At    int
	Param string
	Body  Node
}

// Enclosing is a parenthesized group.
type Enclosing struct {
	At    int
	Inner Node
}

func (n *NumberLiteral) Pos() int { return n.At }
func (n *StringLiteral) Pos() int { return n.At }
func (n *BoolLiteral) Pos() int   { return n.At }
func (n *NullLiteral) Pos() int   { return n.At }
func (n *Identifier) Pos() int    { return n.At }
func (n *Comparer) Pos() int      { return n.At }
func (n *Accessor) Pos() int      { return n.At }
func (n *ArrayAccessor) Pos() int { return n.At }
func (n *Inversion) Pos() int     { return n.At }
func (n *Arithmetic) Pos() int    { return n.At }
func (n *And) Pos() int           { return n.At }
func (n *Or) Pos() int            { return n.At }
func (n *FunctionCall) Pos() int  { return n.At }
func (n *New) Pos() int           { return n.At }
func (n *Lambda) Pos() int        { return n.At }
func (n *Enclosing) Pos() int     { return n.At }

func (n *NumberLiteral) String() string { return formatNumber(n.Value) }
func (n *StringLiteral) String() string { return strconv.Quote(n.Value) }
func (n *BoolLiteral) String() string   { return strconv.FormatBool(n.Value) }
func (n *NullLiteral) String() string   { return "null" }
func (n *Identifier) String() string    { return n.Name }

func (n *Comparer) String() string {
	return sexpr(n.Op.String(), n.Left, n.Right)
}

func (n *Accessor) String() string { return sexpr(".", n.Left, n.Right) }

func (n *ArrayAccessor) String() string { return sexpr("[]", n.Array, n.Index) }

func (n *Inversion) String() string { return sexpr("!", n.Operand) }

func (n *Arithmetic) String() string { return sexpr(n.Op.String(), n.Left, n.Right) }

func (n *And) String() string { return sexpr("&&", n.Left, n.Right) }

func (n *Or) String() string { return sexpr("||", n.Left, n.Right) }

func (n *FunctionCall) String() string {
	return sexpr("call", append([]Node{n.Callee}, n.Args...)...)
}

func (n *New) String() string { return sexpr("new", n.Call) }

func (n *Lambda) String() string {
	return "(=> " + n.Param + " " + n.Body.String() + ")"
}

func (n *Enclosing) String() string { return sexpr("group", n.Inner) }

func sexpr(head string, nodes ...Node) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(head)
	for _, n := range nodes {
		b.WriteString(" ")
		b.WriteString(n.String())
	}
	b.WriteString(")")
	return b.String()
}
