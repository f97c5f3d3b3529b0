// Package engine implements the execution engine of the Create language: the
// value model, the buffer stack, the scope chain, the writer stack, the
// directive IR and the evaluator and control constructors that drive them.
package engine

import "fmt"

// Code is the numeric error code taxonomy of the interpreter. Every error
// that can reach the top level carries one of these.
type Code int

const (
	// CodeInternal marks an I/O failure or otherwise unreachable condition.
	CodeInternal Code = 1
	// CodeTokenizer marks a tokenizer/formatting failure.
	CodeTokenizer Code = 2
	// CodeSyntax marks a syntax or structural error discovered at evaluation
	// time.
	CodeSyntax Code = 3
	// CodeBufferRange marks an out-of-range buffer index.
	CodeBufferRange Code = 4
	// CodeUnfilledSlot marks an instruction evaluated before all of its
	// slots were filled.
	CodeUnfilledSlot Code = 5
	// CodeUnknownIdent marks a reference to an identifier that does not
	// resolve in the scope chain.
	CodeUnknownIdent Code = 6
	// CodeIncompatibleWrite marks a write into an instruction or binder that
	// cannot accept it (e.g. writing a non-scalar into an arithmetic slot).
	CodeIncompatibleWrite Code = 7
	// CodeNonScalarCondition marks a control-flow condition that did not
	// evaluate to a Scalar.
	CodeNonScalarCondition Code = 9
	// CodeArgTypeMismatch marks an argument whose runtime type does not
	// match a function's declared parameter type.
	CodeArgTypeMismatch Code = 10
	// CodeBreak is the signal code produced by a BREAK directive; it is
	// absorbed by the nearest enclosing loop.
	CodeBreak Code = 11
	// CodeReturn is the signal code produced by a RETURN directive; it is
	// absorbed by the nearest enclosing function call.
	CodeReturn Code = 12
	// CodePathResolution marks a failure resolving a dotted identifier
	// path (a non-final segment that is not a Scope value).
	CodePathResolution Code = 13
)

var codeMessages = map[Code]string{
	CodeInternal:           "there was an internal error; run with -d to see a more detailed report",
	CodeTokenizer:          "the source could not be tokenized",
	CodeSyntax:             "there was a syntax error",
	CodeBufferRange:        "tried to read a buffer that does not exist",
	CodeUnfilledSlot:       "an instruction was evaluated with an unfilled slot",
	CodeUnknownIdent:       "reference to an unknown identifier",
	CodeIncompatibleWrite:  "tried to write an incompatible value",
	CodeNonScalarCondition: "a control-flow condition did not yield a number",
	CodeArgTypeMismatch:    "an argument had the wrong type for the call",
	CodeBreak:              "break used outside of a loop",
	CodeReturn:             "return used outside of a function",
	CodePathResolution:     "could not resolve an identifier path",
}

// Error is the error type produced anywhere in the engine. It carries a Code
// from the table above plus a human-readable message.
type Error struct {
	Code    Code
	Message string
}

// NewError builds an *Error with the given code and a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface with the short, human-facing message.
// It intentionally does not include the code: callers that want the code
// should use Debug or inspect Code directly.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg, ok := codeMessages[e.Code]; ok {
		return msg
	}
	return e.Message
}

// Debug renders the full diagnostic: code and internal message, for the
// --debug CLI flag.
func (e *Error) Debug() string {
	return fmt.Sprintf("error code %d: %s", e.Code, e.Message)
}

// IsSignal reports whether the error is a BREAK or RETURN control signal
// rather than a genuine failure.
func (e *Error) IsSignal() bool {
	return e != nil && (e.Code == CodeBreak || e.Code == CodeReturn)
}
