package engine

// evalBuffer drains buf directive by directive against env, honoring lossy
// for whatever nested Controllers it runs into. Once buf is exhausted it
// drains any writer left pending (see Environment.drainPending): every
// postfix-positioned instruction in spec.md §8's worked examples (print-
// number and print-char always appear after the value they act on, never
// before) only resolves because the value it needs is already sitting on
// the buffer stack by the time the instruction itself is read.
func evalBuffer(env *Environment, buf *MutableBuffer, lossy bool) *Error {
	for {
		d, ok := buf.PopNext()
		if !ok {
			break
		}
		if err := evalDirective(env, d, lossy); err != nil {
			return err
		}
	}
	return env.drainPending()
}

// drainPending resolves a writer stack left non-empty once its owning
// MutableBuffer has run out of directives, by feeding it values already
// sitting on the buffer stack. Without this, any instruction used in
// "postfix" position — written after the expression whose value it
// consumes, as `.` and `,` are in every example in spec.md §8 — would sit
// forever unfilled: it was pushed as a pending writer expecting a value
// from a *following* directive that never comes, when the value it wants
// is the one its own statement already computed and left on the stack.
func (e *Environment) drainPending() *Error {
	for len(e.Writers) > 0 {
		v, ok := e.Buffers.Pop()
		if !ok {
			return NewError(CodeUnfilledSlot, "an instruction was left unfilled at the end of a statement")
		}
		if err := e.Write(v); err != nil {
			return err
		}
	}
	return nil
}

// evalPartitioned evaluates buf to completion inside a fresh partition of
// env rooted at scope, and returns the single value it produced (spec.md's
// "partitioned" evaluation used for array elements, index expressions,
// function arguments, scope-literal fields and bind-function/bind-scope
// right-hand sides).
func evalPartitioned(env *Environment, scope *Frame, buf *MutableBuffer) (Value, *Error) {
	sub, pb := env.Partitioned(scope)
	if err := evalBuffer(sub, buf, false); err != nil {
		return nil, err
	}
	v, ok := pb.TakeReturn()
	if !ok {
		return nil, NewError(CodeSyntax, "expression did not produce a value")
	}
	return v, nil
}

// evalDirective executes a single already-popped Directive against env.
func evalDirective(env *Environment, d Directive, lossy bool) *Error {
	switch d.Kind {
	case DReadTop:
		v, ok := env.Buffers.Get(0)
		if !ok {
			return NewError(CodeBufferRange, "tried to read buffer 0, which does not exist")
		}
		return env.Write(v)

	case DReadAt:
		v, ok := env.Buffers.Get(d.Index)
		if !ok {
			return NewError(CodeBufferRange, "tried to read buffer %d, which does not exist", d.Index)
		}
		return env.Write(v)

	case DReadIndexed:
		return evalReadIndexed(env, d)

	case DReadLongIndexed:
		return evalReadLongIndexed(env, d)

	case DReadNamed:
		v, err := d.Path.Resolve(env.Scope)
		if err != nil {
			return err
		}
		return env.Write(v.Clone())

	case DWriteLiteral:
		return env.Write(d.Literal)

	case DWriteArray:
		elems := make([]Value, len(d.Elems))
		for i, e := range d.Elems {
			v, err := evalPartitioned(env, env.Scope, e)
			if err != nil {
				return err
			}
			elems[i] = v
		}
		return env.Write(NewArray(elems))

	case DWriteFunction:
		return env.Write(d.Fn)

	case DWriteScope:
		sv := NewScopeValue()
		for _, f := range d.ScopeProto.Fields {
			v, err := evalPartitioned(env, env.Scope, f.Expr)
			if err != nil {
				return err
			}
			if v.Kind() != f.Kind {
				return NewError(CodeSyntax, "scope field %q declared %s but got %s", f.Name, f.Kind, v.Kind())
			}
			sv.Set(f.Name, v)
		}
		return env.Write(sv)

	case DWriteInstruction:
		env.PushWriter(d.Op.New())
		return nil

	case DBindScalar, DBindArray:
		return evalBindScalarOrArray(env, d, lossy)

	case DBindFunction, DBindScope:
		return evalBindFunctionOrScope(env, d)

	case DControl:
		return d.Control.Run(env, lossy)

	case DBreak:
		return NewError(CodeBreak, "break used outside of a loop")

	case DReturn:
		if d.Expr != nil {
			if err := evalBuffer(env, d.Expr, lossy); err != nil {
				return err
			}
		}
		return NewError(CodeReturn, "return used outside of a function")

	case DRemoveTop:
		if _, ok := env.Buffers.Pop(); !ok {
			return NewError(CodeBufferRange, "tried to remove buffer 0, which does not exist")
		}
		return nil

	default:
		return NewError(CodeInternal, "unknown directive kind %d", d.Kind)
	}
}

func evalReadIndexed(env *Environment, d Directive) *Error {
	idx, err := evalPartitioned(env, env.Scope, d.IndexExpr)
	if err != nil {
		return err
	}
	s, ok := idx.(Scalar)
	if !ok {
		return NewError(CodeSyntax, "array index must be a number, got %s", idx.Kind())
	}
	target, err := d.Path.Resolve(env.Scope)
	if err != nil {
		return err
	}
	arr, ok := target.(*Array)
	if !ok {
		return NewError(CodeSyntax, "%q is not an array", d.Path)
	}
	elem, ok := arr.At(int(s))
	if !ok {
		return NewError(CodeBufferRange, "index %d out of range for array %q of length %d", int(s), d.Path, arr.Len())
	}
	return env.Write(elem.Clone())
}

func evalReadLongIndexed(env *Environment, d Directive) *Error {
	target, err := d.Path.Resolve(env.Scope)
	if err != nil {
		return err
	}
	for i, idxExpr := range d.IndexExprs {
		idx, err := evalPartitioned(env, env.Scope, idxExpr)
		if err != nil {
			return err
		}
		s, ok := idx.(Scalar)
		if !ok {
			return NewError(CodeSyntax, "array index must be a number, got %s", idx.Kind())
		}
		arr, ok := target.(*Array)
		if !ok {
			return NewError(CodeSyntax, "%q is not an array at index depth %d", d.Path, i)
		}
		elem, ok := arr.At(int(s))
		if !ok {
			return NewError(CodeBufferRange, "index %d out of range for array %q of length %d", int(s), d.Path, arr.Len())
		}
		target = elem
	}
	return env.Write(target.Clone())
}

// evalBindScalarOrArray evaluates the rhs directly into env's own buffer
// stack (not a partition: the rhs is free to observe residue the caller
// already has, matching spec.md's "evaluate it into the current buffer
// stack" wording), then reads the result non-destructively off the front.
func evalBindScalarOrArray(env *Environment, d Directive, lossy bool) *Error {
	if err := evalBuffer(env, d.Expr, lossy); err != nil {
		return err
	}
	if d.Kind == DBindScalar {
		s, ok := GetScalar(env.Buffers, 0)
		if !ok {
			return NewError(CodeSyntax, "right-hand side of %q did not produce a number", d.Path)
		}
		return d.Path.Assign(env.Scope, d.Mode, s)
	}
	a, ok := GetArray(env.Buffers, 0)
	if !ok {
		return NewError(CodeSyntax, "right-hand side of %q did not produce an array", d.Path)
	}
	return d.Path.Assign(env.Scope, d.Mode, a)
}

// evalBindFunctionOrScope evaluates the rhs in its own partition (it must be
// exactly one WRITE_FUNCTION or WRITE_SCOPE directive) and requires the
// result's Kind to match the bind flavor.
func evalBindFunctionOrScope(env *Environment, d Directive) *Error {
	v, err := evalPartitioned(env, env.Scope, d.Expr)
	if err != nil {
		return err
	}
	want := KindFunction
	if d.Kind == DBindScope {
		want = KindScope
	}
	if v.Kind() != want {
		return NewError(CodeSyntax, "right-hand side of %q is a %s, not a %s", d.Path, v.Kind(), want)
	}
	return d.Path.Assign(env.Scope, d.Mode, v)
}

// Run evaluates an entire program: a flat sequence of top-level statements
// sharing one Environment, each built fresh from the token stream by the
// builder and then drained by evalBuffer with lossy=true. Buffer-stack
// residue deliberately survives between statements (lossy only licenses
// discarding it, it never requires doing so): the postfix-style print idiom
// in every worked example depends on it being there for drainPending to
// pick up.
func Run(env *Environment, b *Builder) *Error {
	for {
		stmt, err := b.NextStatement()
		if err != nil {
			return err
		}
		if stmt == nil {
			return nil
		}
		if err := evalBuffer(env, stmt, true); err != nil {
			return err
		}
	}
}
