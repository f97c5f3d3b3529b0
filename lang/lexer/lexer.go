package lexer

import (
	"strconv"
	"strings"

	"github.com/createlang/create/lang/token"
)

// Error is a tokenizer failure: spec.md's error code 2, carrying the
// offending lexeme's line and column.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string { return e.Message }

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
	"==": true, ">": true, "<": true, "||": true, "&&": true,
}

var unaryOps = map[string]bool{
	"sin": true, "cos": true, "tan": true, "asin": true, "acos": true,
	"atan": true, "sqrt": true, "cbrt": true, "!": true,
}

var printOps = map[string]string{".": ".", ",": ","}

var typeTokens = map[string]bool{"buf": true, "arr": true, "fun": true, "scp": true, "non": true}

const piLiteral float32 = 3.14159265358979323846

// Scan splits src into lines then whitespace-delimited lexemes and converts
// each lexeme into a Token. It returns the first tokenizer error (code 2)
// encountered, with the offending lexeme's 1-based line and column.
func Scan(src string) ([]Token, *Error) {
	var toks []Token
	lines := strings.Split(src, "\n")
	for li, line := range lines {
		col := 1
		fields := splitFields(line)
		for _, f := range fields {
			lexeme, startCol := f.text, f.col
			pos := token.MakePos(li+1, startCol)
			tok, err := classify(lexeme, pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok...)
		}
		_ = col
	}
	return toks, nil
}

type field struct {
	text string
	col  int
}

// splitFields splits a line on runs of whitespace, tracking each field's
// 1-based starting column.
func splitFields(line string) []field {
	var out []field
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t' || line[i] == '\r') {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && line[i] != ' ' && line[i] != '\t' && line[i] != '\r' {
			i++
		}
		out = append(out, field{text: line[start:i], col: start + 1})
	}
	return out
}

func classify(lexeme string, pos token.Pos) ([]Token, *Error) {
	switch {
	case lexeme == "pi":
		return []Token{{Kind: Number, Pos: pos, Num: piLiteral}}, nil
	case binaryOps[lexeme]:
		return []Token{{Kind: BinaryOp, Pos: pos, Op: lexeme}}, nil
	case unaryOps[lexeme]:
		return []Token{{Kind: UnaryOp, Pos: pos, Op: lexeme}}, nil
	case printOps[lexeme] != "":
		return []Token{{Kind: Print, Pos: pos, Op: lexeme}}, nil
	case lexeme == "if":
		return []Token{{Kind: If, Pos: pos}}, nil
	case lexeme == "else":
		return []Token{{Kind: Else, Pos: pos}}, nil
	case lexeme == "for":
		return []Token{{Kind: For, Pos: pos}}, nil
	case lexeme == "forin":
		return []Token{{Kind: ForIn, Pos: pos}}, nil
	case lexeme == "while":
		return []Token{{Kind: While, Pos: pos}}, nil
	case lexeme == "break":
		return []Token{{Kind: Break, Pos: pos}}, nil
	case lexeme == "return":
		return []Token{{Kind: Return, Pos: pos}}, nil
	case lexeme == "{":
		return []Token{{Kind: BraceOpen, Pos: pos}}, nil
	case lexeme == "}":
		return []Token{{Kind: BraceClose, Pos: pos}}, nil
	case lexeme == "[":
		return []Token{{Kind: BracketOpen, Pos: pos}}, nil
	case lexeme == "]":
		return []Token{{Kind: BracketClose, Pos: pos}}, nil
	case lexeme == "(":
		return []Token{{Kind: ParenOpen, Pos: pos}}, nil
	case lexeme == ")":
		return []Token{{Kind: ParenClose, Pos: pos}}, nil
	case lexeme == "|":
		return []Token{{Kind: Pipe, Pos: pos}}, nil
	case lexeme == ";":
		return []Token{{Kind: Semicolon, Pos: pos}}, nil
	case typeTokens[lexeme]:
		return []Token{{Kind: TypeTok, Pos: pos, Type: lexeme}}, nil
	}

	if strings.HasPrefix(lexeme, "\"") {
		return stringShorthand(lexeme[1:], pos)
	}
	if strings.HasPrefix(lexeme, "'") {
		return charLiteral(lexeme[1:], pos)
	}
	if strings.HasPrefix(lexeme, "~") {
		return readForm(lexeme[1:], pos)
	}
	if strings.HasPrefix(lexeme, "g=") {
		return bindForm(lexeme[2:], pos, ModeGlobal)
	}
	if strings.HasPrefix(lexeme, "l=") {
		return bindForm(lexeme[2:], pos, ModeLocal)
	}
	if strings.HasPrefix(lexeme, "=") {
		return bindForm(lexeme[1:], pos, ModeNormal)
	}

	if n, err := strconv.ParseFloat(lexeme, 32); err == nil {
		return []Token{{Kind: Number, Pos: pos, Num: float32(n)}}, nil
	}

	line, col := pos.LineCol()
	return nil, &Error{Pos: pos, Message: "unrecognized token " + strconv.Quote(lexeme) +
		" at line " + strconv.Itoa(line) + ", column " + strconv.Itoa(col)}
}

// readForm parses everything after the leading `~`: bare (read-top), an
// unsigned integer (read-at), or a dotted path optionally followed by `[`
// (read-indexed) or `(` (function call).
func readForm(rest string, pos token.Pos) ([]Token, *Error) {
	if rest == "" {
		return []Token{{Kind: ReadTop, Pos: pos}}, nil
	}
	if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
		return []Token{{Kind: ReadAt, Pos: pos, Index: n}}, nil
	}
	if strings.HasSuffix(rest, "[") {
		return []Token{{Kind: ReadIndexedOpen, Pos: pos, Path: strings.Split(rest[:len(rest)-1], ".")}}, nil
	}
	if strings.HasSuffix(rest, "(") {
		return []Token{{Kind: CallOpen, Pos: pos, Path: strings.Split(rest[:len(rest)-1], ".")}}, nil
	}
	return []Token{{Kind: ReadNamed, Pos: pos, Path: strings.Split(rest, ".")}}, nil
}

// bindForm parses everything after the leading `=`/`g=`/`l=`: an optional
// `[]`/`()`/`||` flavor marker, then a dotted name path.
func bindForm(rest string, pos token.Pos, mode InsertMode) ([]Token, *Error) {
	switch {
	case strings.HasPrefix(rest, "[]"):
		return []Token{{Kind: BindArray, Pos: pos, Path: strings.Split(rest[2:], "."), Mode: mode}}, nil
	case strings.HasPrefix(rest, "()"):
		return []Token{{Kind: BindFunction, Pos: pos, Path: strings.Split(rest[2:], "."), Mode: mode}}, nil
	case strings.HasPrefix(rest, "||"):
		return []Token{{Kind: BindScope, Pos: pos, Path: strings.Split(rest[2:], "."), Mode: mode}}, nil
	default:
		return []Token{{Kind: BindScalar, Pos: pos, Path: strings.Split(rest, "."), Mode: mode}}, nil
	}
}

// escapeByte maps the four recognized single-letter escapes; ok is false for
// anything else, in which case escapeChar's catch-all takes over.
func escapeByte(c byte) (byte, bool) {
	switch c {
	case 's':
		return ' ', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case '\\':
		return '\\', true
	}
	return 0, false
}

// escapeChar resolves the byte following a `\` to the code point it
// produces: one of the four recognized escapes, or, for anything else, the
// byte itself verbatim (mirroring the original's catch-all `c => c as
// usize` arm) — a backslash always introduces a one-byte escape unit, never
// leaves itself to be re-tokenized as its own character.
func escapeChar(c byte) byte {
	if b, ok := escapeByte(c); ok {
		return b
	}
	return c
}

// stringShorthand turns the text following a leading `"` into one Number
// token per resulting character, honoring `\s \n \r \\` escapes and passing
// any other `\X` through as X's own code point.
func stringShorthand(rest string, pos token.Pos) ([]Token, *Error) {
	var toks []Token
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) {
			toks = append(toks, Token{Kind: Number, Pos: pos, Num: float32(escapeChar(rest[i+1]))})
			i++
			continue
		}
		toks = append(toks, Token{Kind: Number, Pos: pos, Num: float32(c)})
	}
	return toks, nil
}

// charLiteral turns the text following a leading `'` into a single Number
// token, honoring the same escapes as stringShorthand.
func charLiteral(rest string, pos token.Pos) ([]Token, *Error) {
	if rest == "" {
		return nil, &Error{Pos: pos, Message: "empty character literal"}
	}
	if rest[0] == '\\' && len(rest) > 1 {
		return []Token{{Kind: Number, Pos: pos, Num: float32(escapeChar(rest[1]))}}, nil
	}
	return []Token{{Kind: Number, Pos: pos, Num: float32(rest[0])}}, nil
}
