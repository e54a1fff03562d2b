// Package expr implements the expression language used by harpi code asserts
// and variable assignments.
//
// An expression is evaluated against the decoded response of a request:
//
//	response.items.length > 0
//	response.find(r => r.id == '1').children.length == 2
//	new Date(response.updatedAt) > new Date('2024-01-01')
//
// Supported syntax:
//   - Number, string ('...' or "..."), boolean and null literals
//   - Comparers: == != === !== > >= < <=
//   - Arithmetic: + - * / (+ concatenates when either side is not a number)
//   - Logic: && || !
//   - Member access, indexing and method calls: a.b, a[0], a.b(c)
//   - Lambdas passed to find, filter and some: items.filter(i => i.active)
//   - Date(x), new Date(x), Object.values(x), Object.keys(x)
//
// Parse and Eval return *Error values whose Kind tells parse, evaluation and
// parameter errors apart.
package expr
