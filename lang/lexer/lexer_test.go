package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanNumbers(t *testing.T) {
	toks, err := Scan("3 2.5 pi")
	require.Nil(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, float32(3), toks[0].Num)
	assert.Equal(t, float32(2.5), toks[1].Num)
	assert.InDelta(t, 3.14159265, toks[2].Num, 1e-6)
}

func TestScanOperators(t *testing.T) {
	toks, err := Scan("+ sqrt . ,")
	require.Nil(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, BinaryOp, toks[0].Kind)
	assert.Equal(t, "+", toks[0].Op)
	assert.Equal(t, UnaryOp, toks[1].Kind)
	assert.Equal(t, "sqrt", toks[1].Op)
	assert.Equal(t, Print, toks[2].Kind)
	assert.Equal(t, ".", toks[2].Op)
	assert.Equal(t, Print, toks[3].Kind)
	assert.Equal(t, ",", toks[3].Op)
}

func TestScanControlFlowKeywords(t *testing.T) {
	toks, err := Scan("if else for forin while break return { } [ ] ( ) | ;")
	require.Nil(t, err)
	want := []Kind{If, Else, For, ForIn, While, Break, Return,
		BraceOpen, BraceClose, BracketOpen, BracketClose,
		ParenOpen, ParenClose, Pipe, Semicolon}
	require.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanReadForms(t *testing.T) {
	toks, err := Scan("~ ~3 ~x ~a.b ~arr[ ~fn(")
	require.Nil(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, ReadTop, toks[0].Kind)
	assert.Equal(t, ReadAt, toks[1].Kind)
	assert.Equal(t, 3, toks[1].Index)
	assert.Equal(t, ReadNamed, toks[2].Kind)
	assert.Equal(t, []string{"x"}, toks[2].Path)
	assert.Equal(t, ReadNamed, toks[3].Kind)
	assert.Equal(t, []string{"a", "b"}, toks[3].Path)
	assert.Equal(t, ReadIndexedOpen, toks[4].Kind)
	assert.Equal(t, []string{"arr"}, toks[4].Path)
	assert.Equal(t, CallOpen, toks[5].Kind)
	assert.Equal(t, []string{"fn"}, toks[5].Path)
}

func TestScanBindForms(t *testing.T) {
	toks, err := Scan("=x =[]arr =()fn =||scp g=gx l=lx")
	require.Nil(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, BindScalar, toks[0].Kind)
	assert.Equal(t, ModeNormal, toks[0].Mode)
	assert.Equal(t, BindArray, toks[1].Kind)
	assert.Equal(t, BindFunction, toks[2].Kind)
	assert.Equal(t, BindScope, toks[3].Kind)
	assert.Equal(t, BindScalar, toks[4].Kind)
	assert.Equal(t, ModeGlobal, toks[4].Mode)
	assert.Equal(t, BindScalar, toks[5].Kind)
	assert.Equal(t, ModeLocal, toks[5].Mode)
}

func TestScanStringAndCharShorthand(t *testing.T) {
	toks, err := Scan(`"ab\n 'c`)
	require.Nil(t, err)
	// "ab\n -> three Number tokens: 'a' 'b' '\n'
	require.Len(t, toks, 4)
	assert.Equal(t, float32('a'), toks[0].Num)
	assert.Equal(t, float32('b'), toks[1].Num)
	assert.Equal(t, float32('\n'), toks[2].Num)
	assert.Equal(t, float32('c'), toks[3].Num)
}

func TestScanUnrecognizedEscapeIsOneCodePoint(t *testing.T) {
	toks, err := Scan(`"a\q 'q`)
	require.Nil(t, err)
	// \q is not one of the s/n/r/\ escapes, so it still consumes both bytes
	// as a single unit and yields 'q', not a separate backslash token.
	require.Len(t, toks, 3)
	assert.Equal(t, float32('a'), toks[0].Num)
	assert.Equal(t, float32('q'), toks[1].Num)
	assert.Equal(t, float32('q'), toks[2].Num)
}

func TestScanUnrecognizedToken(t *testing.T) {
	_, err := Scan("3 @@@")
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "@@@")
}

func TestScanTypeTokens(t *testing.T) {
	toks, err := Scan("buf arr fun scp non")
	require.Nil(t, err)
	require.Len(t, toks, 5)
	for _, tok := range toks {
		assert.Equal(t, TypeTok, tok.Kind)
	}
}
