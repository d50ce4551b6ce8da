package evaluator

// Env is the set of variable bindings visible at a point in evaluation.
// Environments are flat: a Function evaluation snapshots the current
// bindings into a fresh Env that the resulting closure (and every copy of
// it) shares, and a Call clones the closure's Env into a private frame for
// that call. The only shared mutation is the self-reference patch a Let
// applies to a closure's captured Env.
type Env struct {
	bindings map[string]Value
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Clone copies the bindings into a new, independent environment.
func (e *Env) Clone() *Env {
	bindings := make(map[string]Value, len(e.bindings))
	for name, val := range e.bindings {
		bindings[name] = val
	}
	return &Env{bindings: bindings}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Set binds a variable, replacing any previous binding of the same name.
func (e *Env) Set(name string, val Value) {
	e.bindings[name] = val
}
