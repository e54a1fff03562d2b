package expr

// Func is a host function callable from expressions by name.
type Func func(args []Value) (Value, error)

// Env holds variable and function bindings. Lambda applications get a child
// Env whose lookups fall back to the parent.
type Env struct {
	vars   map[string]Value
	funcs  map[string]Func
	parent *Env
}

// NewEnv returns the root environment for one evaluation: response, the
// Object namespace and the built-in functions.
func NewEnv(response Value) *Env {
	return &Env{
		vars: map[string]Value{
			"response": response,
			"Object":   namespace("Object"),
		},
		funcs: functions,
	}
}

func (e *Env) child() *Env {
	return &Env{vars: make(map[string]Value, 1), parent: e}
}

// Set binds a variable in this environment.
func (e *Env) Set(name string, v Value) {
	e.vars[name] = v
}

// Lookup resolves a variable, walking up the parent chain.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Null(), false
}

func (e *Env) function(name string) (Func, bool) {
	for env := e; env != nil; env = env.parent {
		if fn, ok := env.funcs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}
