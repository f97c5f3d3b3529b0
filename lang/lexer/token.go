// Package lexer turns Create source text into a flat token stream: the
// "lexer that converts source text into tokens" spec.md names as an
// external collaborator to the execution engine (lang/engine), specified
// here in full since the engine has nothing to run without it.
package lexer

import "github.com/createlang/create/lang/token"

// Kind tags one lexeme's syntactic role.
type Kind uint8

const (
	Number Kind = iota
	BinaryOp
	UnaryOp
	Print
	If
	Else
	For
	ForIn
	While
	Break
	Return
	BraceOpen
	BraceClose
	BracketOpen
	BracketClose
	ParenOpen
	ParenClose
	Pipe
	Semicolon
	ReadTop
	ReadAt
	ReadNamed
	ReadIndexedOpen
	CallOpen
	BindScalar
	BindArray
	BindFunction
	BindScope
	TypeTok
)

var kindNames = map[Kind]string{
	Number: "number", BinaryOp: "binary-op", UnaryOp: "unary-op", Print: "print",
	If: "if", Else: "else", For: "for", ForIn: "forin", While: "while",
	Break: "break", Return: "return", BraceOpen: "{", BraceClose: "}",
	BracketOpen: "[", BracketClose: "]", ParenOpen: "(", ParenClose: ")",
	Pipe: "|", Semicolon: ";", ReadTop: "~", ReadAt: "~N", ReadNamed: "~name",
	ReadIndexedOpen: "~name[", CallOpen: "~name(", BindScalar: "=name",
	BindArray: "=[]name", BindFunction: "=()name", BindScope: "=||name",
	TypeTok: "type",
}

func (k Kind) String() string { return kindNames[k] }

// InsertMode mirrors engine.InsertMode without importing the engine package
// (lexer must not depend on engine; engine depends on lexer).
type InsertMode uint8

const (
	ModeNormal InsertMode = iota
	ModeLocal
	ModeGlobal
)

// Token is one lexeme, tagged with whichever payload fields its Kind uses.
type Token struct {
	Kind  Kind
	Pos   token.Pos
	Op    string     // BinaryOp/UnaryOp/Print: the operator/command name
	Num   float32    // Number
	Index int        // ReadAt
	Path  []string   // ReadNamed/ReadIndexedOpen/CallOpen/Bind*
	Mode  InsertMode // Bind*
	Type  string     // TypeTok: "buf"/"arr"/"fun"/"scp"/"non"
}
