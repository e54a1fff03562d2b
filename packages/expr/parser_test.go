package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Trees(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"2 > 1", "(> 2 1)"},
		{"2 * 2 + 2 == 6", "(== (+ (* 2 2) 2) 6)"},
		{"2 + 2 * 2 == 6", "(== (+ 2 (* 2 2)) 6)"},
		{"(2 + 2) * 2", "(* (group (+ 2 2)) 2)"},
		{"8 - 2 - 2", "(- (- 8 2) 2)"},
		{"8 / 2 / 2", "(/ (/ 8 2) 2)"},
		{"a && b || c", "(|| (&& a b) c)"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a == 1 && b != 'x'", `(&& (== a 1) (!= b "x"))`},
		{"x === null", "(=== x null)"},
		{"x !== undefined", "(!== x null)"},
		{"flag == true", "(== flag true)"},
		{"1.5 <= 2", "(<= 1.5 2)"},
		{`"double" == 'single'`, `(== "double" "single")`},
		{"response.value.length > 0", "(> (. response (. value length)) 0)"},
		{"response.value[0] == 1", "(== (. response ([] value 0)) 1)"},
		{"response[0].id", "(. ([] response 0) id)"},
		{"response.items[1 + 1]", "(. response ([] items (+ 1 1)))"},
		{"'str'.includes('str')", `(. "str" (call includes "str"))`},
		{"!'str'.includes('str')", `(! (. "str" (call includes "str")))`},
		{"!a == b", "(== (! a) b)"},
		{"!!a", "(! (! a))"},
		{"'abc'.substring(0, 2)", `(. "abc" (call substring 0 2))`},
		{"f()", "(call f)"},
		{"f(g(1, 2), 3)", "(call f (call g 1 2) 3)"},
		{
			"response.find(r => r.id == '1').children.length == 2",
			`(== (. response (. (call find (=> r (== (. r id) "1"))) (. children length))) 2)`,
		},
		{"items.filter(i => i.a && i.b)", "(. items (call filter (=> i (&& (. i a) (. i b)))))"},
		{
			"new Date('2020-01-01') > new Date('2019-01-01')",
			`(> (new (call Date "2020-01-01")) (new (call Date "2019-01-01")))`,
		},
		{"new Date().getTime()", "(. (new (call Date)) (call getTime))"},
		{"Object.values(response).length", "(. Object (. (call values response) length))"},
		{"newValue == 1", "(== newValue 1)"},
		{"response.new.items[0]", "(. response (. new ([] items 0)))"},
		{"$id + _x2", "(+ $id _x2)"},
		{"  a  \n ==\tb ", "(== a b)"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			node, err := Parse(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
	}{
		{"empty", "", "empty expression"},
		{"unterminated string", "'abc", "unterminated string"},
		{"unterminated parenthesis", "(1 + 2", "unterminated parenthesis"},
		{"unterminated index", "a[0", "unterminated array accessor"},
		{"unterminated call", "f(1, 2", "unterminated argument list"},
		{"empty parentheses", "()", "empty parentheses"},
		{"unrecognized comparer", "1 = 2", "unrecognized comparer"},
		{"single ampersand", "a & b", "expected &&"},
		{"single pipe", "a | b", "expected ||"},
		{"unknown symbol", "1 # 2", "no parser rule for symbol"},
		{"two operands", "1 2", "after complete operand"},
		{"unary minus", "-1", "unary minus is not supported"},
		{"missing left operand", "* 2", "missing left operand"},
		{"missing right operand", "1 +", "expected operand after"},
		{"dangling dot", "a.", "expected property name"},
		{"new without call", "new Date", "new must be followed by a call"},
		{"new with literal", "new 5", "new must be followed by a call"},
		{"lambda on group", "(a) => 1", "lambda parameter must be an identifier"},
		{"array literal", "[1]", "array literals are not supported"},
		{"stray comma", "a, b", "no parser rule for symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.code)
			require.Error(t, err)
			assert.Nil(t, node)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, ParseError, kind)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("a == 'open")
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 5, e.Position)
	assert.Equal(t, "parse error at position 5: unterminated string", e.Error())
}

func TestDispatch_LongestMatch(t *testing.T) {
	tests := []struct {
		src  string
		text string
		rule rule
	}{
		{"===", "===", ruleCompare},
		{"== 1", "==", ruleCompare},
		{"!==", "!==", ruleCompare},
		{"!= x", "!=", ruleCompare},
		{"!x", "!", ruleNot},
		{">=", ">=", ruleCompare},
		{"=> x", "=>", ruleLambda},
		{"new Date()", "new", ruleNew},
		{"newer", "", ruleIdentifier},
		{"7", "7", ruleNumber},
		{"'", "'", ruleString},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tok, err := dispatch(tt.src, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.text, tok.text)
			assert.Equal(t, tt.rule, tok.rule)
		})
	}
}
