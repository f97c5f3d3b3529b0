package engine

import (
	"io"
	"os"
)

// Environment is the tuple {buffer stack, writer stack, scope chain}
// threaded through every directive evaluation (spec.md §3).
type Environment struct {
	Buffers Buffers
	Writers []Writer
	Scope   *Frame

	// Stdout receives print-number/print-char output; defaults to os.Stdout
	// when nil, mirroring the teacher's Thread.Stdout default and the
	// mainer.Stdio.Stdout writer the CLI passes through.
	Stdout io.Writer
}

func (e *Environment) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

// PushWriter pushes w onto the writer stack (WRITE_INSTRUCTION).
func (e *Environment) PushWriter(w Writer) {
	e.Writers = append([]Writer{w}, e.Writers...)
}

// Write is the central operand-flow primitive of spec.md §4.3: if the
// writer stack is empty, v lands on the buffer stack; otherwise it fills the
// top writer's next slot, and if that fills the writer, pops it, evaluates
// it, and re-enters Write with the result. Recursion is bounded by the
// writer-stack depth at the time of the call, which in turn is bounded by
// how many nested WRITE_INSTRUCTIONs a single expression contains.
func (e *Environment) Write(v Value) *Error {
	if len(e.Writers) == 0 {
		e.Buffers.Push(v)
		return nil
	}

	top := e.Writers[0]
	s, ok := v.(Scalar)
	if !ok {
		return NewError(CodeIncompatibleWrite, "tried to write a %s into an instruction expecting a number", v.Kind())
	}
	if err := top.Fill(s); err != nil {
		return err
	}
	if !top.Full() {
		return nil
	}
	e.Writers = e.Writers[1:]
	result, err := top.Eval(e)
	if err != nil {
		return err
	}
	return e.Write(result)
}

// Child returns a new Environment sharing the same Buffers but with a child
// scope and a fresh writer stack, as used by scoped blocks and loop bodies
// (which get a child scope but keep writing into the caller's buffers).
func (e *Environment) Child() *Environment {
	return &Environment{
		Buffers: e.Buffers,
		Writers: nil,
		Scope:   e.Scope.Child(),
		Stdout:  e.Stdout,
	}
}

// Partitioned returns a new Environment wrapping e's buffers in a
// PartitionedBuffers overlay, a fresh writer stack, and the given scope (a
// fresh child scope for function calls, or e.Scope for plain sub-expression
// isolation). Used by function calls and by any directive that must observe
// no writes it did not itself produce (array elements, index expressions,
// scope-literal fields, bind-function/bind-scope right-hand sides).
func (e *Environment) Partitioned(scope *Frame) (*Environment, *PartitionedBuffers) {
	pb := NewPartitionedBuffers(e.Buffers)
	return &Environment{
		Buffers: pb,
		Writers: nil,
		Scope:   scope,
		Stdout:  e.Stdout,
	}, pb
}
