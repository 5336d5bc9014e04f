// Package parser implements a hand-written recursive-descent parser
// for CCL: a statement list followed by a `where` annotation block. A
// Parser struct walks a flat token slice, peeking further ahead only where
// the grammar needs it (bond decomposition, multi-word property phrases).
package parser

import (
	"fmt"
	"strings"

	"ccl/internal/ast"
	"ccl/internal/builtins"
	"ccl/internal/lexer"
	"ccl/token"
)

// ParseError reports a syntax error with its source position.
type ParseError struct {
	Message  string
	Position token.Position
}

func (e ParseError) Error() string { return e.Message }

// Parser walks a token slice produced by internal/lexer.
type Parser struct {
	tokens []token.Token
	pos    int
}

// ParseSource scans and parses source, returning the Program on success.
// Scan errors and the first parse error (parsing stops at the first
// syntax error, mirroring the analyser's own fail-fast contract) are
// returned separately so the caller can report whichever came first.
func ParseSource(source string) (prog *ast.Program, scanErrs []lexer.ScanError, parseErr *ParseError) {
	l := lexer.New(source)
	toks, scanErrs := l.ScanTokens()
	p := &Parser{tokens: toks}

	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(ParseError); ok {
				parseErr = &pe
				return
			}
			panic(r)
		}
	}()

	prog = p.parseProgram()
	return prog, scanErrs, nil
}

func (p *Parser) peek() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}
func (p *Parser) check(t token.Type) bool { return p.peek().Type == t }
func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t token.Type) token.Token {
	if !p.check(t) {
		p.fail(fmt.Sprintf("expected %s, got %s %q", t, p.peek().Type, p.peek().Lexeme))
	}
	return p.advance()
}

func (p *Parser) fail(msg string) {
	panic(ParseError{Message: msg, Position: p.peek().Position})
}

// parseProgram parses the whole statement list, the `where` keyword, and
// the annotation list.
func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.check(token.WHERE) && !p.check(token.EOF) {
		prog.Statements = append(prog.Statements, p.parseStmt())
	}
	wherePos := p.expect(token.WHERE).Position
	prog.WherePos = wherePos
	for !p.check(token.EOF) {
		prog.Annotations = append(prog.Annotations, p.parseAnnotation())
	}
	return prog
}

// --- statements ---------------------------------------------------------------

func (p *Parser) parseStmt() ast.Stmt {
	if p.check(token.FOR) {
		return p.parseForOrForEach()
	}
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Stmt {
	nameTok := p.expect(token.IDENT)
	name := &ast.Ident{Position: nameTok.Position, Name: nameTok.Lexeme}

	var indices []*ast.Ident
	if p.check(token.LBRACKET) {
		p.advance()
		indices = append(indices, p.parseIdentArg())
		for p.check(token.COMMA) {
			p.advance()
			indices = append(indices, p.parseIdentArg())
		}
		p.expect(token.RBRACKET)
	}

	p.expect(token.ASSIGN)
	rhs := p.parseExpr()
	return &ast.AssignStmt{Position: nameTok.Position, Name: name.Name, NamePos: nameTok.Position, Indices: indices, RHS: rhs}
}

func (p *Parser) parseIdentArg() *ast.Ident {
	tok := p.expect(token.IDENT)
	return &ast.Ident{Position: tok.Position, Name: tok.Lexeme}
}

func (p *Parser) parseForOrForEach() ast.Stmt {
	forTok := p.expect(token.FOR)
	if p.check(token.EACH) {
		p.advance()
		var kind token.Type
		switch {
		case p.check(token.ATOM):
			kind = token.ATOM
			p.advance()
		case p.check(token.BOND):
			kind = token.BOND
			p.advance()
		default:
			p.fail("expected 'atom' or 'bond' after 'for each'")
		}
		nameTok := p.expect(token.IDENT)
		name := &ast.Ident{Position: nameTok.Position, Name: nameTok.Lexeme}

		stmt := &ast.ForEachStmt{Position: forTok.Position, ObjectKind: kind, Name: name}

		if p.check(token.ASSIGN) {
			p.advance()
			p.expect(token.LBRACKET)
			i := p.parseIdentArg()
			p.expect(token.COMMA)
			j := p.parseIdentArg()
			p.expect(token.RBRACKET)
			stmt.DecompI, stmt.DecompJ = i, j
		}

		if p.check(token.SUCH) {
			p.advance()
			p.expect(token.THAT)
			stmt.Constraint = p.parseExpr()
		}

		p.expect(token.COLON)
		stmt.Body = p.parseBlock()
		p.expect(token.DONE)
		return stmt
	}

	varTok := p.expect(token.IDENT)
	stmt := &ast.ForStmt{Position: forTok.Position, Var: &ast.Ident{Position: varTok.Position, Name: varTok.Lexeme}}
	p.expect(token.ASSIGN)
	stmt.Lo = p.parseExpr()
	p.expect(token.TO)
	stmt.Hi = p.parseExpr()
	p.expect(token.COLON)
	stmt.Body = p.parseBlock()
	p.expect(token.DONE)
	return stmt
}

func (p *Parser) parseBlock() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.DONE) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

// --- annotations ----------------------------------------------------------

func (p *Parser) parseAnnotation() ast.Annotation {
	nameTok := p.expect(token.IDENT)
	name := &ast.Ident{Position: nameTok.Position, Name: nameTok.Lexeme}

	if p.check(token.LBRACKET) {
		return p.parseSubstitutionClause(name, nil)
	}

	if p.check(token.ASSIGN) {
		if p.peekAt(1).Type == token.LBRACKET {
			p.advance()
			p.advance()
			i := p.parseIdentArg()
			p.expect(token.COMMA)
			j := p.parseIdentArg()
			p.expect(token.RBRACKET)
			p.expect(token.IS)
			p.expect(token.BOND)
			return &ast.ObjectAnnotation{Position: name.Position, Name: name, Kind: token.BOND, DecompI: i, DecompJ: j}
		}
		return p.parseSubstitutionClause(name, nil)
	}

	p.expect(token.IS)

	if p.check(token.ATOM) || p.check(token.BOND) {
		kindTok := p.advance()
		if p.check(token.PARAMETER) {
			p.advance()
			return &ast.ParameterAnnotation{Position: name.Position, Name: name, Kind: kindTok.Type}
		}
		// disambiguate "is bond" (object) from "is bond order"/"is bond distance" (property)
		if kindTok.Type == token.BOND && p.check(token.IDENT) {
			next := strings.ToLower(p.peek().Lexeme)
			if next == "order" || next == "distance" {
				return p.parsePropertyOrConstant(name, "bond")
			}
		}
		obj := &ast.ObjectAnnotation{Position: name.Position, Name: name, Kind: kindTok.Type}
		if p.check(token.SUCH) {
			p.advance()
			p.expect(token.THAT)
			obj.Constraint = p.parseExpr()
		}
		return obj
	}

	return p.parsePropertyOrConstant(name, "")
}

// parsePropertyOrConstant parses the property-words of annotation shapes
// 3 and 4, given any leading word (e.g. "bond") already consumed.
func (p *Parser) parsePropertyOrConstant(name *ast.Ident, leading string) ast.Annotation {
	words := p.matchPropertyPhrase(leading)
	if sig, ok := builtins.LookupProperty(words); ok {
		words = sig.CanonicalName
	}

	if p.check(token.IDENT) && strings.EqualFold(p.peek().Lexeme, "of") {
		p.advance()
		elemTok := p.expect(token.IDENT)
		return &ast.ConstantAnnotation{Position: name.Position, Name: name, Property: words, Element: elemTok.Lexeme}
	}
	return &ast.PropertyAnnotation{Position: name.Position, Name: name, Words: words}
}

// matchPropertyPhrase greedily matches the longest known property phrase
// starting at the current token, given a word already consumed
// (leading == "" when nothing has been consumed yet). Unknown phrases
// fall back to a single raw word — left to the semantic analyser to
// reject with "Property ... is not known."
func (p *Parser) matchPropertyPhrase(leading string) string {
	for _, phrase := range builtins.PropertyPhrases {
		words := strings.Fields(phrase)
		if leading != "" {
			if !strings.EqualFold(words[0], leading) {
				continue
			}
			if p.lookaheadMatches(words[1:], 0) {
				p.pos += len(words) - 1
				return phrase
			}
			continue
		}
		if p.lookaheadMatches(words, 0) {
			p.pos += len(words)
			return phrase
		}
	}
	if leading != "" {
		return leading
	}
	tok := p.expect(token.IDENT)
	return tok.Lexeme
}

func (p *Parser) lookaheadMatches(words []string, offset int) bool {
	for i, w := range words {
		tok := p.peekAt(offset + i)
		if tok.Type == token.EOF {
			return false
		}
		if !strings.EqualFold(tok.Lexeme, w) {
			return false
		}
	}
	return true
}

func (p *Parser) parseSubstitutionClause(name *ast.Ident, already []*ast.Ident) *ast.SubstitutionClause {
	indices := already
	if indices == nil && p.check(token.LBRACKET) {
		p.advance()
		indices = append(indices, p.parseIdentArg())
		for p.check(token.COMMA) {
			p.advance()
			indices = append(indices, p.parseIdentArg())
		}
		p.expect(token.RBRACKET)
	}
	p.expect(token.ASSIGN)
	rhs := p.parseExpr()
	clause := &ast.SubstitutionClause{Position: name.Position, Name: name, FormalIndices: indices, RHS: rhs}
	if p.check(token.IF) {
		p.advance()
		clause.Constraint = p.parseExpr()
	}
	return clause
}
