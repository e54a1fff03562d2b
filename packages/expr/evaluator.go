package expr

import (
	"errors"
	"strings"
)

// Eval parses code and evaluates it against response.
func Eval(code string, response Value) (Value, error) {
	if strings.TrimSpace(code) == "" {
		return Null(), &Error{Kind: ParamError, Message: "no code to evaluate", Position: -1}
	}
	node, err := Parse(code)
	if err != nil {
		return Null(), err
	}
	return Evaluate(node, NewEnv(response))
}

// EvalBool evaluates code and reports the truthiness of the result.
func EvalBool(code string, response Value) (bool, error) {
	v, err := Eval(code, response)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Evaluate walks an already parsed tree. The tree is not modified and may be
// evaluated again, concurrently, against other environments.
func Evaluate(node Node, env *Env) (Value, error) {
	return eval(node, env, nil)
}

// eval evaluates node. scope is the value the node is being resolved against
// when it sits on the right side of an accessor, nil otherwise.
func eval(node Node, env *Env, scope *Value) (Value, error) {
	v, err := evalNode(node, env, scope)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Position < 0 {
			e.Position = node.Pos()
		}
		return Null(), err
	}
	return v, nil
}

func evalNode(node Node, env *Env, scope *Value) (Value, error) {
	switch n := node.(type) {
	case *NumberLiteral:
		return Number(n.Value), nil
	case *StringLiteral:
		return String(n.Value), nil
	case *BoolLiteral:
		return Bool(n.Value), nil
	case *NullLiteral:
		return Null(), nil
	case *Identifier:
		if scope != nil {
			return property(*scope, n.Name)
		}
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		return Null(), evalErrorf("unknown variable %q", n.Name)
	case *Accessor:
		left, err := eval(n.Left, env, scope)
		if err != nil {
			return Null(), err
		}
		return eval(n.Right, env, &left)
	case *ArrayAccessor:
		idx, err := eval(n.Index, env, nil)
		if err != nil {
			return Null(), err
		}
		target, err := eval(n.Array, env, scope)
		if err != nil {
			return Null(), err
		}
		return index(target, idx)
	case *FunctionCall:
		return call(n, env, scope)
	case *New:
		return eval(n.Call, env, nil)
	case *Enclosing:
		return eval(n.Inner, env, nil)
	case *Inversion:
		v, err := eval(n.Operand, env, nil)
		if err != nil {
			return Null(), err
		}
		return Bool(!v.Truthy()), nil
	case *And:
		left, err := eval(n.Left, env, nil)
		if err != nil || !left.Truthy() {
			return left, err
		}
		right, err := eval(n.Right, env, nil)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil
	case *Or:
		left, err := eval(n.Left, env, nil)
		if err != nil {
			return Null(), err
		}
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := eval(n.Right, env, nil)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil
	case *Comparer:
		left, right, err := evalPair(n.Left, n.Right, env)
		if err != nil {
			return Null(), err
		}
		return compare(n.Op, left, right)
	case *Arithmetic:
		left, right, err := evalPair(n.Left, n.Right, env)
		if err != nil {
			return Null(), err
		}
		return arithmetic(n.Op, left, right)
	case *Lambda:
		return Null(), evalErrorf("a lambda may only be passed to find, filter or some")
	}
	return Null(), evalErrorf("unsupported node %T", node)
}

func evalPair(l, r Node, env *Env) (Value, Value, error) {
	left, err := eval(l, env, nil)
	if err != nil {
		return Null(), Null(), err
	}
	right, err := eval(r, env, nil)
	if err != nil {
		return Null(), Null(), err
	}
	return left, right, nil
}

func compare(op CompareOp, left, right Value) (Value, error) {
	switch op {
	case OpEq:
		return Bool(looseEqual(left, right)), nil
	case OpNotEq:
		return Bool(!looseEqual(left, right)), nil
	case OpStrictEq:
		return Bool(strictEqual(left, right)), nil
	case OpStrictNotEq:
		return Bool(!strictEqual(left, right)), nil
	}

	c, ok, err := order(left, right)
	if err != nil || !ok {
		return Bool(false), err
	}
	switch op {
	case OpGt:
		return Bool(c > 0), nil
	case OpGte:
		return Bool(c >= 0), nil
	case OpLt:
		return Bool(c < 0), nil
	case OpLte:
		return Bool(c <= 0), nil
	}
	return Null(), evalErrorf("unknown comparer %s", op)
}

func arithmetic(op ArithOp, left, right Value) (Value, error) {
	if op == OpAdd {
		if addend(left) && addend(right) {
			l, _ := left.toNumber()
			r, _ := right.toNumber()
			return Number(l + r), nil
		}
		return String(left.String() + right.String()), nil
	}

	l, lok := left.toNumber()
	r, rok := right.toNumber()
	if !lok || !rok {
		return Null(), evalErrorf("cannot apply %s to %s and %s", op, describe(left), describe(right))
	}
	switch op {
	case OpSub:
		return Number(l - r), nil
	case OpMul:
		return Number(l * r), nil
	case OpDiv:
		return Number(l / r), nil
	}
	return Null(), evalErrorf("unknown operator %s", op)
}

// addend reports whether + treats v as a number rather than concatenating.
func addend(v Value) bool {
	return v.kind == KindNumber || v.kind == KindBool
}

// call evaluates a function or method call. Arguments never see the accessor
// scope; the scope only selects the receiver.
func call(n *FunctionCall, env *Env, scope *Value) (Value, error) {
	callee, ok := n.Callee.(*Identifier)
	if !ok {
		return Null(), evalErrorf("%s is not callable", n.Callee)
	}

	for _, arg := range n.Args {
		if lambda, ok := arg.(*Lambda); ok {
			if len(n.Args) != 1 {
				return Null(), evalErrorf("%s expects exactly one lambda argument", callee.Name)
			}
			return applyLambda(callee.Name, lambda, env, scope)
		}
	}

	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := eval(arg, env, nil)
		if err != nil {
			return Null(), err
		}
		args[i] = v
	}

	if scope != nil {
		return callMethod(*scope, callee.Name, args)
	}
	fn, ok := env.function(callee.Name)
	if !ok {
		return Null(), evalErrorf("unknown function %q", callee.Name)
	}
	return fn(args)
}

// applyLambda runs find, filter or some over the array in scope, binding each
// element to the lambda parameter in a child environment.
func applyLambda(name string, lambda *Lambda, env *Env, scope *Value) (Value, error) {
	switch name {
	case "find", "filter", "some":
	default:
		return Null(), evalErrorf("%s does not accept a lambda", name)
	}
	if scope == nil || scope.kind != KindArray {
		recv := "nothing"
		if scope != nil {
			recv = describe(*scope)
		}
		return Null(), evalErrorf("%s requires an array, called on %s", name, recv)
	}

	var matched []Value
	for _, item := range scope.arr {
		child := env.child()
		child.Set(lambda.Param, item)
		v, err := eval(lambda.Body, child, nil)
		if err != nil {
			return Null(), err
		}
		if !v.Truthy() {
			continue
		}
		switch name {
		case "find":
			return item, nil
		case "some":
			return Bool(true), nil
		}
		matched = append(matched, item)
	}

	switch name {
	case "find":
		return Null(), nil
	case "some":
		return Bool(false), nil
	}
	return Array(matched), nil
}
