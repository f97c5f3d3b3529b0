package engine

import "github.com/createlang/create/lang/lexer"

// Builder turns a flat lexer.Token stream into MutableBuffers, one call to
// NextStatement per top-level statement, following spec.md §4.4's
// capacity-stack algorithm: read a token, turn it into a directive, and
// track a stack of still-open "how many more producers does this slot need"
// counts. A statement starts with an empty stack and ends the instant the
// stack empties again, which is what lets a single line of source split into
// several independent top-level statements (`+ 2 3 .` is two: `+ 2 3`, then
// the bare `.`).
type Builder struct {
	toks []lexer.Token
	pos  int
}

// NewBuilder wraps a complete token stream for a program.
func NewBuilder(toks []lexer.Token) *Builder {
	return &Builder{toks: toks}
}

func (b *Builder) peek() (lexer.Token, bool) {
	if b.pos >= len(b.toks) {
		return lexer.Token{}, false
	}
	return b.toks[b.pos], true
}

func (b *Builder) next() (lexer.Token, bool) {
	tok, ok := b.peek()
	if ok {
		b.pos++
	}
	return tok, ok
}

func (b *Builder) expect(k lexer.Kind) *Error {
	tok, ok := b.next()
	if !ok || tok.Kind != k {
		return NewError(CodeSyntax, "expected a %s", k)
	}
	return nil
}

// NextStatement builds one top-level statement (capacity stack starts
// empty) and returns (nil, nil) once the token stream is exhausted.
func (b *Builder) NextStatement() (*MutableBuffer, *Error) {
	if _, ok := b.peek(); !ok {
		return nil, nil
	}
	return b.build(nil)
}

// decrementCascade is spec.md §4.4 step 2's "a producer satisfies one unit
// of the innermost open demand; if that empties it, the completed frame
// itself counts as one unit toward whatever it was nested in, and so on."
// Every producer in this language yields exactly one value, so each call
// decrements the top of the stack by one, popping and repeating whenever
// that reaches zero.
func decrementCascade(capStack []int) []int {
	for len(capStack) > 0 {
		top := len(capStack) - 1
		capStack[top]--
		if capStack[top] > 0 {
			break
		}
		capStack = capStack[:top]
	}
	return capStack
}

// build runs the capacity-stack algorithm starting from capStack (nil/empty
// for a statement-level build, []int{1} for a single sub-expression, or
// deeper for nested bracketed forms) until it empties, the token stream runs
// out, or the next token belongs to an enclosing structure (see isBoundary).
// The last case is what lets a postfix-positioned instruction at the tail of
// a block — `{ 1 . }`, where `.` never receives an operand token before the
// closing `}` — end its own statement right there instead of reaching past
// the block for a token that isn't part of it; Environment.drainPending
// resolves it at evaluation time from whatever the previous statement left
// on the buffer stack.
func (b *Builder) build(capStack []int) (*MutableBuffer, *Error) {
	buf := newMutableBuffer()
	for {
		tok, ok := b.peek()
		if !ok || isBoundary(tok.Kind) {
			break
		}
		b.next()
		d, err := b.tokenToDirective(tok, &capStack)
		if err != nil {
			return nil, err
		}
		buf.append(d)
		if len(capStack) == 0 {
			break
		}
	}
	buf.finish()
	return buf, nil
}

// isBoundary reports whether k closes an enclosing structure rather than
// starting a new directive: the generic builder must never consume one of
// these itself, only whichever recursive parser (arrayElems, functionCall,
// block, scopeFields, ...) is expecting it.
func isBoundary(k lexer.Kind) bool {
	switch k {
	case lexer.BraceClose, lexer.BracketClose, lexer.ParenClose, lexer.Pipe:
		return true
	default:
		return false
	}
}

// buildExpr is a convenience for "recursively build exactly one self
// contained sub-expression," used for everything from array elements to
// bind right-hand sides.
func (b *Builder) buildExpr() (*MutableBuffer, *Error) {
	return b.build([]int{1})
}

func (b *Builder) tokenToDirective(tok lexer.Token, capStack *[]int) (Directive, *Error) {
	switch tok.Kind {
	case lexer.Number:
		*capStack = decrementCascade(*capStack)
		return Directive{Kind: DWriteLiteral, Literal: Scalar(tok.Num)}, nil

	case lexer.BinaryOp, lexer.UnaryOp, lexer.Print:
		op, ok := Ops[tok.Op]
		if !ok {
			return Directive{}, NewError(CodeSyntax, "unknown operator %q", tok.Op)
		}
		*capStack = append(*capStack, op.Arity)
		return Directive{Kind: DWriteInstruction, Op: op}, nil

	case lexer.ReadTop:
		*capStack = decrementCascade(*capStack)
		return Directive{Kind: DReadTop}, nil

	case lexer.ReadAt:
		*capStack = decrementCascade(*capStack)
		return Directive{Kind: DReadAt, Index: tok.Index}, nil

	case lexer.ReadNamed:
		*capStack = decrementCascade(*capStack)
		return Directive{Kind: DReadNamed, Path: Path(tok.Path)}, nil

	case lexer.ReadIndexedOpen:
		return b.readIndexed(tok, capStack)

	case lexer.CallOpen:
		return b.functionCall(tok, capStack)

	case lexer.BracketOpen:
		elems, err := b.arrayElems()
		if err != nil {
			return Directive{}, err
		}
		*capStack = decrementCascade(*capStack)
		return Directive{Kind: DWriteArray, Elems: elems}, nil

	case lexer.BraceOpen:
		stmts, err := b.block()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DControl, Control: &ScopedController{Exprs: stmts}}, nil

	case lexer.BindScalar:
		expr, err := b.buildExpr()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DBindScalar, Path: Path(tok.Path), Mode: modeFromLexer(tok.Mode), Expr: expr}, nil

	case lexer.BindArray:
		expr, err := b.buildExpr()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DBindArray, Path: Path(tok.Path), Mode: modeFromLexer(tok.Mode), Expr: expr}, nil

	case lexer.BindFunction:
		expr, err := b.functionExpr()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DBindFunction, Path: Path(tok.Path), Mode: modeFromLexer(tok.Mode), Expr: expr}, nil

	case lexer.BindScope:
		expr, err := b.scopeExpr()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DBindScope, Path: Path(tok.Path), Mode: modeFromLexer(tok.Mode), Expr: expr}, nil

	case lexer.Semicolon:
		return Directive{Kind: DRemoveTop}, nil

	case lexer.Break:
		return Directive{Kind: DBreak}, nil

	case lexer.Return:
		expr, err := b.buildExpr()
		if err != nil {
			return Directive{}, err
		}
		return Directive{Kind: DReturn, Expr: expr}, nil

	case lexer.If:
		return b.ifStmt()

	case lexer.For:
		return b.forStmt()

	case lexer.ForIn:
		return b.forInStmt()

	case lexer.While:
		return b.whileStmt()

	default:
		return Directive{}, NewError(CodeSyntax, "unexpected token %s", tok.Kind)
	}
}

// readIndexed parses the index expression(s) following `~name[`: one
// bracketed sub-expression, then as many more `[ expr ]` pairs as follow
// immediately, walking nested arrays one level per pair.
func (b *Builder) readIndexed(tok lexer.Token, capStack *[]int) (Directive, *Error) {
	first, err := b.buildExpr()
	if err != nil {
		return Directive{}, err
	}
	if err := b.expect(lexer.BracketClose); err != nil {
		return Directive{}, err
	}
	idxExprs := []*MutableBuffer{first}
	for {
		next, ok := b.peek()
		if !ok || next.Kind != lexer.BracketOpen {
			break
		}
		b.next()
		e, err := b.buildExpr()
		if err != nil {
			return Directive{}, err
		}
		if err := b.expect(lexer.BracketClose); err != nil {
			return Directive{}, err
		}
		idxExprs = append(idxExprs, e)
	}

	*capStack = decrementCascade(*capStack)
	if len(idxExprs) == 1 {
		return Directive{Kind: DReadIndexed, Path: Path(tok.Path), IndexExpr: idxExprs[0]}, nil
	}
	return Directive{Kind: DReadLongIndexed, Path: Path(tok.Path), IndexExprs: idxExprs}, nil
}

// functionCall parses the argument list following `~name(`.
func (b *Builder) functionCall(tok lexer.Token, capStack *[]int) (Directive, *Error) {
	var args []*MutableBuffer
	for {
		t, ok := b.peek()
		if !ok {
			return Directive{}, NewError(CodeSyntax, "unterminated function call: missing )")
		}
		if t.Kind == lexer.ParenClose {
			b.next()
			break
		}
		a, err := b.buildExpr()
		if err != nil {
			return Directive{}, err
		}
		args = append(args, a)
	}
	*capStack = decrementCascade(*capStack)
	return Directive{Kind: DControl, Control: &FunctionCallController{Name: Path(tok.Path), Args: args}}, nil
}

// arrayElems parses the element list of a `[ ... ]` array literal.
func (b *Builder) arrayElems() ([]*MutableBuffer, *Error) {
	var elems []*MutableBuffer
	for {
		tok, ok := b.peek()
		if !ok {
			return nil, NewError(CodeSyntax, "unterminated array literal: missing ]")
		}
		if tok.Kind == lexer.BracketClose {
			b.next()
			return elems, nil
		}
		e, err := b.buildExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
}

// block parses a `{ ... }` body as a sequence of independent top-level-style
// statements, assuming the opening brace has already been consumed.
func (b *Builder) block() ([]*MutableBuffer, *Error) {
	var stmts []*MutableBuffer
	for {
		tok, ok := b.peek()
		if !ok {
			return nil, NewError(CodeSyntax, "unterminated block: missing closing }")
		}
		if tok.Kind == lexer.BraceClose {
			b.next()
			return stmts, nil
		}
		stmt, err := b.build(nil)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (b *Builder) ifStmt() (Directive, *Error) {
	cond, err := b.buildExpr()
	if err != nil {
		return Directive{}, err
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return Directive{}, err
	}
	body, err := b.block()
	if err != nil {
		return Directive{}, err
	}

	tok, ok := b.peek()
	if !ok || tok.Kind != lexer.Else {
		return Directive{Kind: DControl, Control: &IfController{Cond: cond, Body: body}}, nil
	}
	b.next()

	elseTok, ok := b.peek()
	if ok && elseTok.Kind == lexer.If {
		b.next()
		nested, err := b.ifStmt()
		if err != nil {
			return Directive{}, err
		}
		nb := newMutableBuffer()
		nb.append(nested)
		nb.finish()
		return Directive{Kind: DControl, Control: &IfElseController{Cond: cond, Body: body, Else: []*MutableBuffer{nb}}}, nil
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return Directive{}, err
	}
	elseBody, err := b.block()
	if err != nil {
		return Directive{}, err
	}
	return Directive{Kind: DControl, Control: &IfElseController{Cond: cond, Body: body, Else: elseBody}}, nil
}

func (b *Builder) forStmt() (Directive, *Error) {
	name := ""
	if tok, ok := b.peek(); ok && tok.Kind == lexer.BindScalar {
		b.next()
		name = tok.Path[0]
	}
	times, err := b.buildExpr()
	if err != nil {
		return Directive{}, err
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return Directive{}, err
	}
	body, err := b.block()
	if err != nil {
		return Directive{}, err
	}
	return Directive{Kind: DControl, Control: &ForController{Times: times, Name: name, Body: body}}, nil
}

func (b *Builder) forInStmt() (Directive, *Error) {
	name := ""
	if tok, ok := b.peek(); ok && tok.Kind == lexer.BindScalar {
		b.next()
		name = tok.Path[0]
	}
	array, err := b.buildExpr()
	if err != nil {
		return Directive{}, err
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return Directive{}, err
	}
	body, err := b.block()
	if err != nil {
		return Directive{}, err
	}
	return Directive{Kind: DControl, Control: &ForInController{Array: array, Name: name, Body: body}}, nil
}

func (b *Builder) whileStmt() (Directive, *Error) {
	cond, err := b.buildExpr()
	if err != nil {
		return Directive{}, err
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return Directive{}, err
	}
	body, err := b.block()
	if err != nil {
		return Directive{}, err
	}
	return Directive{Kind: DControl, Control: &WhileController{Cond: cond, Body: body}}, nil
}

// functionExpr parses a `( =name type ... ) type { ... }` function literal
// and wraps it as a one-directive buffer, so that DBindFunction's Expr (like
// every other bind right-hand side) evaluates through evalPartitioned the
// same way a plain expression would.
func (b *Builder) functionExpr() (*MutableBuffer, *Error) {
	fn, err := b.parseFunctionLiteral()
	if err != nil {
		return nil, err
	}
	buf := newMutableBuffer()
	buf.append(Directive{Kind: DWriteFunction, Fn: fn})
	buf.finish()
	return buf, nil
}

func (b *Builder) parseFunctionLiteral() (*Function, *Error) {
	if err := b.expect(lexer.ParenOpen); err != nil {
		return nil, err
	}
	var params []Param
	for {
		tok, ok := b.peek()
		if !ok {
			return nil, NewError(CodeSyntax, "unterminated function literal: missing )")
		}
		if tok.Kind == lexer.ParenClose {
			b.next()
			break
		}
		if tok.Kind != lexer.BindScalar {
			return nil, NewError(CodeSyntax, "expected a parameter declaration, got %s", tok.Kind)
		}
		b.next()
		typeTok, ok := b.next()
		if !ok || typeTok.Kind != lexer.TypeTok {
			return nil, NewError(CodeSyntax, "expected a type after parameter %q", tok.Path[0])
		}
		params = append(params, Param{Name: tok.Path[0], Kind: kindFromType(typeTok.Type)})
	}
	retTok, ok := b.next()
	if !ok || retTok.Kind != lexer.TypeTok {
		return nil, NewError(CodeSyntax, "expected a return type after function parameters")
	}
	if err := b.expect(lexer.BraceOpen); err != nil {
		return nil, err
	}
	body, err := b.block()
	if err != nil {
		return nil, err
	}
	return &Function{Params: params, Body: body, Return: kindFromType(retTok.Type)}, nil
}

// scopeExpr parses a `| =name expr ... |` scope literal and wraps it as a
// one-directive buffer, mirroring functionExpr.
func (b *Builder) scopeExpr() (*MutableBuffer, *Error) {
	proto, err := b.parseScopeLiteral()
	if err != nil {
		return nil, err
	}
	buf := newMutableBuffer()
	buf.append(Directive{Kind: DWriteScope, ScopeProto: proto})
	buf.finish()
	return buf, nil
}

func (b *Builder) parseScopeLiteral() (*ScopePrototype, *Error) {
	if err := b.expect(lexer.Pipe); err != nil {
		return nil, err
	}
	fields, err := b.scopeFields()
	if err != nil {
		return nil, err
	}
	return &ScopePrototype{Fields: fields}, nil
}

// scopeFields parses the field declarations of a scope literal up to its
// closing `|`. Each field reuses the same Bind*-flavored token that a
// top-level bind would use, which doubles as the field's declared Kind.
func (b *Builder) scopeFields() ([]ScopeFieldProto, *Error) {
	var fields []ScopeFieldProto
	for {
		tok, ok := b.peek()
		if !ok {
			return nil, NewError(CodeSyntax, "unterminated scope literal: missing closing |")
		}
		if tok.Kind == lexer.Pipe {
			b.next()
			return fields, nil
		}
		b.next()

		var kind Kind
		var expr *MutableBuffer
		var err *Error
		switch tok.Kind {
		case lexer.BindScalar:
			kind = KindScalar
			expr, err = b.buildExpr()
		case lexer.BindArray:
			kind = KindArray
			expr, err = b.buildExpr()
		case lexer.BindFunction:
			kind = KindFunction
			expr, err = b.functionExpr()
		case lexer.BindScope:
			kind = KindScope
			expr, err = b.scopeExpr()
		default:
			return nil, NewError(CodeSyntax, "expected a field declaration in scope literal, got %s", tok.Kind)
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, ScopeFieldProto{Name: tok.Path[0], Kind: kind, Expr: expr})
	}
}

func kindFromType(t string) Kind {
	switch t {
	case "buf":
		return KindScalar
	case "arr":
		return KindArray
	case "fun":
		return KindFunction
	case "scp":
		return KindScope
	default:
		return KindNull
	}
}

func modeFromLexer(m lexer.InsertMode) InsertMode {
	switch m {
	case lexer.ModeGlobal:
		return InsertGlobal
	case lexer.ModeLocal:
		return InsertLocal
	default:
		return InsertNormal
	}
}
