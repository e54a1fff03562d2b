package expr

// rule names the production that handles a token.
type rule int

const (
	ruleNumber rule = iota + 1
	ruleString
	ruleIdentifier
	ruleAccessor
	ruleParen
	ruleIndex
	ruleNot
	ruleArith
	ruleAnd
	ruleOr
	ruleCompare
	ruleNew
	ruleLambda
)

var symbolTable = map[string]rule{
	"0": ruleNumber, "1": ruleNumber, "2": ruleNumber, "3": ruleNumber, "4": ruleNumber,
	"5": ruleNumber, "6": ruleNumber, "7": ruleNumber, "8": ruleNumber, "9": ruleNumber,

	"==": ruleCompare, "!=": ruleCompare, "===": ruleCompare, "!==": ruleCompare,
	">": ruleCompare, ">=": ruleCompare, "<": ruleCompare, "<=": ruleCompare,

	"'": ruleString, `"`: ruleString,

	".": ruleAccessor,
	"(": ruleParen,
	"[": ruleIndex,
	"!": ruleNot,
	"+": ruleArith, "-": ruleArith, "*": ruleArith, "/": ruleArith,
	"&&": ruleAnd,
	"||": ruleOr,
	"new": ruleNew,
	"=>": ruleLambda,
}

// Binding power of a symbol in infix or postfix position. A production stops
// its operand as soon as the next symbol binds looser than it asked for.
var precedence = map[string]int{
	"=>": 0,
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "===": 3, "!==": 3, ">": 3, ">=": 3, "<": 3, "<=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
	".": precPostfix, "(": precPostfix, "[": precPostfix,
}

// precUnary is the operand level of the prefix operators ! and new: they take
// member chains and calls but leave arithmetic and comparisons to the caller.
const precUnary = 6

// precPostfix is the level of member access, calls and indexing.
const precPostfix = 7

type token struct {
	text string
	rule rule
}

// dispatch selects the production for the token at pos using the longest
// symbol match, falling back to the identifier rule.
func dispatch(src string, pos int) (token, error) {
	for n := 3; n >= 1; n-- {
		if pos+n > len(src) {
			continue
		}
		text := src[pos : pos+n]
		r, ok := symbolTable[text]
		if !ok {
			continue
		}
		if r == ruleNew && (pos+n >= len(src) || !isSpace(src[pos+n])) {
			continue
		}
		return token{text: text, rule: r}, nil
	}

	ch := src[pos]
	switch {
	case isIdentStart(ch):
		return token{rule: ruleIdentifier}, nil
	case ch == '=':
		return token{}, parseErrorf(pos, "unrecognized comparer %q", nextWord(src, pos))
	case ch == '&' || ch == '|':
		return token{}, parseErrorf(pos, "expected %c%c", ch, ch)
	}
	return token{}, parseErrorf(pos, "no parser rule for symbol %q", string(ch))
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func nextWord(src string, pos int) string {
	end := pos
	for end < len(src) && !isSpace(src[end]) {
		end++
	}
	return src[pos:end]
}
