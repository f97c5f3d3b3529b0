package engine

// cloneBlock deep-clones a sequence of statement buffers (a block body),
// used by every controller whose body is re-run more than once per Run call
// (For, ForIn, While) as well as by Clone itself.
func cloneBlock(stmts []*MutableBuffer) []*MutableBuffer {
	out := make([]*MutableBuffer, len(stmts))
	for i, s := range stmts {
		out[i] = s.Clone()
	}
	return out
}

// runBlock evaluates a sequence of statement buffers in order against env,
// stopping at (and propagating) the first error. Each statement gets its own
// pass through evalBuffer, including drainPending: a block is a sequence of
// independent top-level-style statements, not one shared capacity scope.
func runBlock(env *Environment, stmts []*MutableBuffer, lossy bool) *Error {
	for _, s := range stmts {
		if err := evalBuffer(env, s, lossy); err != nil {
			return err
		}
	}
	return nil
}

// IfController runs Body once, directly against the caller's own
// environment, when Cond evaluates truthy. If/IfElse are the one pair of
// controllers that introduce no scope of their own (unlike For/ForIn/
// FunctionCall's fresh child scope or Scoped's fresh child scope): a taken
// branch shares the enclosing block's scope and writer stack exactly as
// WhileController's body does.
type IfController struct {
	Cond *MutableBuffer
	Body []*MutableBuffer
}

func (c *IfController) ReturnCount() int { return 0 }

func (c *IfController) Clone() Controller {
	return &IfController{Cond: c.Cond.Clone(), Body: cloneBlock(c.Body)}
}

func (c *IfController) Run(env *Environment, lossy bool) *Error {
	truthy, err := runCondition(env, c.Cond, lossy)
	if err != nil {
		return err
	}
	if !truthy {
		return nil
	}
	return runBlock(env, cloneBlock(c.Body), lossy)
}

// IfElseController runs Body or Else depending on Cond, against the
// caller's own environment (see IfController's doc comment).
type IfElseController struct {
	Cond *MutableBuffer
	Body []*MutableBuffer
	Else []*MutableBuffer
}

func (c *IfElseController) ReturnCount() int { return 0 }

func (c *IfElseController) Clone() Controller {
	return &IfElseController{Cond: c.Cond.Clone(), Body: cloneBlock(c.Body), Else: cloneBlock(c.Else)}
}

func (c *IfElseController) Run(env *Environment, lossy bool) *Error {
	truthy, err := runCondition(env, c.Cond, lossy)
	if err != nil {
		return err
	}
	if truthy {
		return runBlock(env, cloneBlock(c.Body), lossy)
	}
	return runBlock(env, cloneBlock(c.Else), lossy)
}

// ScopedController introduces a lexical block: a sequence of statements
// evaluated in order in a fresh child scope. Unlike a loop or function body,
// it absorbs nothing: a BREAK or RETURN raised inside surfaces straight
// through to whatever encloses it, per spec.md's controller state machine.
type ScopedController struct {
	Exprs []*MutableBuffer
}

func (c *ScopedController) ReturnCount() int { return 0 }

func (c *ScopedController) Clone() Controller {
	return &ScopedController{Exprs: cloneBlock(c.Exprs)}
}

func (c *ScopedController) Run(env *Environment, lossy bool) *Error {
	return runBlock(env.Child(), cloneBlock(c.Exprs), lossy)
}

// ForController runs Body Times times, in a fresh child scope, optionally
// binding the 0-based iteration counter to Name.
type ForController struct {
	Times *MutableBuffer
	Name  string // empty if the loop does not bind a counter
	Body  []*MutableBuffer
}

func (c *ForController) ReturnCount() int { return 0 }

func (c *ForController) Clone() Controller {
	return &ForController{Times: c.Times.Clone(), Name: c.Name, Body: cloneBlock(c.Body)}
}

func (c *ForController) Run(env *Environment, lossy bool) *Error {
	n, err := evalPartitioned(env, env.Scope, c.Times.Clone())
	if err != nil {
		return err
	}
	count, ok := n.(Scalar)
	if !ok {
		return NewError(CodeSyntax, "for-loop count must be a number, got %s", n.Kind())
	}
	child := env.Child()
	for i := 0; i < int(count); i++ {
		if c.Name != "" {
			child.Scope.InsertLocal(c.Name, Scalar(i))
		}
		if err := runBlock(child, cloneBlock(c.Body), lossy); err != nil {
			if err.Code == CodeBreak {
				break
			}
			return err
		}
	}
	return nil
}

// ForInController runs Body once per element of an array, in a fresh child
// scope, optionally binding the element to Name.
type ForInController struct {
	Array *MutableBuffer
	Name  string
	Body  []*MutableBuffer
}

func (c *ForInController) ReturnCount() int { return 0 }

func (c *ForInController) Clone() Controller {
	return &ForInController{Array: c.Array.Clone(), Name: c.Name, Body: cloneBlock(c.Body)}
}

func (c *ForInController) Run(env *Environment, lossy bool) *Error {
	v, err := evalPartitioned(env, env.Scope, c.Array.Clone())
	if err != nil {
		return err
	}
	arr, ok := v.(*Array)
	if !ok {
		return NewError(CodeSyntax, "for-in source must be an array, got %s", v.Kind())
	}
	child := env.Child()
	for _, elem := range arr.Elems {
		if c.Name != "" {
			child.Scope.InsertLocal(c.Name, elem)
		}
		if err := runBlock(child, cloneBlock(c.Body), lossy); err != nil {
			if err.Code == CodeBreak {
				break
			}
			return err
		}
	}
	return nil
}

// WhileController re-evaluates Cond before every iteration and stops once it
// is no longer truthy. Per spec.md's resolution of this open question, both
// Cond and Body always run with lossy forced to false (so every
// intermediate value is retained and nothing from a stale iteration leaks
// into the next), and the buffer stack is popped back to its pre-iteration
// depth after each round trip, discarding whatever residue the iteration
// left behind — an explicitly-licensed optimization for a construct that,
// unlike for/for-in, has no built-in bound on how many times it runs.
type WhileController struct {
	Cond *MutableBuffer
	Body []*MutableBuffer
}

func (c *WhileController) ReturnCount() int { return 0 }

func (c *WhileController) Clone() Controller {
	return &WhileController{Cond: c.Cond.Clone(), Body: cloneBlock(c.Body)}
}

func (c *WhileController) Run(env *Environment, _ bool) *Error {
	// restore pops the front (most recently pushed) entries until the stack
	// is back to depth.
	restore := func(depth int) {
		for env.Buffers.Len() > depth {
			if _, ok := env.Buffers.Pop(); !ok {
				return
			}
		}
	}
	for {
		depth := env.Buffers.Len()
		truthy, err := runCondition(env, c.Cond, false)
		if err != nil {
			return err
		}
		if !truthy {
			restore(depth)
			return nil
		}
		if err := runBlock(env, cloneBlock(c.Body), false); err != nil {
			restore(depth)
			if err.Code == CodeBreak {
				return nil
			}
			return err
		}
		restore(depth)
	}
}

// FunctionCallController resolves Name to a *Function bound in scope,
// evaluates Args in order (each in its own partition), type-checks them
// against the function's declared parameters, and runs the function body in
// a fresh partition rooted at a call-local scope whose parent is the
// caller's own current scope (functions in this language are not lexical
// closures over their definition site; spec.md and the original's
// Function::evaluate both thread `environment.scope`, the caller's scope,
// as the new frame's parent).
type FunctionCallController struct {
	Name Path
	Args []*MutableBuffer
}

func (c *FunctionCallController) ReturnCount() int { return 1 }

func (c *FunctionCallController) Clone() Controller {
	return &FunctionCallController{Name: c.Name, Args: cloneBlock(c.Args)}
}

func (c *FunctionCallController) Run(env *Environment, lossy bool) *Error {
	fv, err := c.Name.Resolve(env.Scope)
	if err != nil {
		return err
	}
	fn, ok := fv.(*Function)
	if !ok {
		return NewError(CodeSyntax, "%q is not a function", c.Name)
	}
	if len(c.Args) != len(fn.Params) {
		return NewError(CodeArgTypeMismatch, "%q takes %d argument(s), got %d", c.Name, len(fn.Params), len(c.Args))
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := evalPartitioned(env, env.Scope, a.Clone())
		if err != nil {
			return err
		}
		args[i] = v
	}
	for i, p := range fn.Params {
		if args[i].Kind() != p.Kind {
			return NewError(CodeArgTypeMismatch, "%q parameter %q wants %s, got %s", c.Name, p.Name, p.Kind, args[i].Kind())
		}
	}

	callScope := env.Scope.Child()
	for i, p := range fn.Params {
		callScope.InsertLocal(p.Name, args[i])
	}
	callEnv, pb := env.Partitioned(callScope)

	runErr := runBlock(callEnv, cloneBlock(fn.Body), lossy)
	if runErr != nil && runErr.Code != CodeReturn {
		return runErr
	}

	ret, ok := pb.TakeReturn()
	if !ok {
		if fn.Return != KindNull {
			return NewError(CodeSyntax, "%q declares return type %s but returned nothing", c.Name, fn.Return)
		}
		return nil
	}
	if ret.Kind() != fn.Return {
		return NewError(CodeSyntax, "%q declares return type %s but returned %s", c.Name, fn.Return, ret.Kind())
	}
	if fn.Return == KindNull {
		return nil
	}
	return env.Write(ret)
}

// runCondition evaluates cond in the caller's own environment (conditions
// are not partitioned: they may read residue just like any other
// expression) and requires the result to be a Scalar.
func runCondition(env *Environment, cond *MutableBuffer, lossy bool) (bool, *Error) {
	clone := cond.Clone()
	if err := evalBuffer(env, clone, lossy); err != nil {
		return false, err
	}
	s, ok := GetScalar(env.Buffers, 0)
	if !ok {
		return false, NewError(CodeNonScalarCondition, "condition did not yield a number")
	}
	return s.Truthy(), nil
}
