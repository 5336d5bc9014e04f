package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ccl/token"
)

func TestKeywordsAndIdentifiers(t *testing.T) {
	l := New("for each atom bond common parameter is where done sum EE cutoff cover myVar")
	toks, errs := l.ScanTokens()
	assert.Empty(t, errs)

	expected := []token.Type{
		token.FOR, token.EACH, token.ATOM, token.BOND, token.COMMON,
		token.PARAMETER, token.IS, token.WHERE, token.DONE, token.SUM,
		token.EE, token.CUTOFF, token.COVER, token.IDENT, token.EOF,
	}
	assert.Len(t, toks, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestNumbers(t *testing.T) {
	l := New("1 3.14 0.5 10")
	toks, errs := l.ScanTokens()
	assert.Empty(t, errs)
	assert.Equal(t, "1", toks[0].Lexeme)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	assert.Equal(t, "0.5", toks[2].Lexeme)
	assert.Equal(t, "10", toks[3].Lexeme)
	for _, tok := range toks[:4] {
		assert.Equal(t, token.NUMBER, tok.Type)
	}
}

func TestOperatorsAndRelationals(t *testing.T) {
	l := New("+ - * / ^ = < > <= >= == != ( ) [ ] , :")
	toks, errs := l.ScanTokens()
	assert.Empty(t, errs)
	expected := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.CARET,
		token.ASSIGN, token.LT, token.GT, token.LE, token.GE, token.EQ, token.NE,
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET, token.COMMA, token.COLON,
	}
	assert.GreaterOrEqual(t, len(toks), len(expected))
	for i, want := range expected {
		assert.Equal(t, want, toks[i].Type, "token %d", i)
	}
}

func TestCommentIsSkipped(t *testing.T) {
	l := New("q = 1 # a trailing comment\nwhere\n")
	toks, errs := l.ScanTokens()
	assert.Empty(t, errs)
	var lexemes []string
	for _, tok := range toks {
		if tok.Type != token.EOF {
			lexemes = append(lexemes, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"q", "=", "1", "where"}, lexemes)
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("a\nb")
	toks, errs := l.ScanTokens()
	assert.Empty(t, errs)
	assert.Equal(t, 1, toks[0].Position.Line)
	assert.Equal(t, 2, toks[1].Position.Line)
}

func TestUnexpectedCharacterIsReported(t *testing.T) {
	l := New("a $ b")
	_, errs := l.ScanTokens()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "Unexpected character")
}
