package parser

import (
	"ccl/internal/ast"
	"ccl/token"
)

// parseExpr is the entry point for any expression or constraint: CCL
// treats a constraint as an ordinary expression that must later check as
// Bool, so logical operators sit at the bottom of one shared precedence
// ladder:
//
//	or  <  and  <  not (prefix)  <  relational  <  + -  <  * /  <  unary +/-  <  ^ (right-assoc)  <  primary
func (p *Parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *Parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.check(token.OR) {
		op := p.advance()
		y := p.parseAnd()
		x = &ast.BinaryExpr{Position: op.Position, Op: token.OR, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseAnd() ast.Expr {
	x := p.parseNot()
	for p.check(token.AND) {
		op := p.advance()
		y := p.parseNot()
		x = &ast.BinaryExpr{Position: op.Position, Op: token.AND, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseNot() ast.Expr {
	if p.check(token.NOT) {
		op := p.advance()
		x := p.parseNot()
		return &ast.NotExpr{Position: op.Position, X: x}
	}
	return p.parseRelational()
}

var relOps = map[token.Type]bool{
	token.LT: true, token.GT: true, token.LE: true,
	token.GE: true, token.EQ: true, token.NE: true,
}

func (p *Parser) parseRelational() ast.Expr {
	x := p.parseAdditive()
	for relOps[p.peek().Type] {
		op := p.advance()
		y := p.parseAdditive()
		x = &ast.BinaryExpr{Position: op.Position, Op: op.Type, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpr{Position: op.Position, Op: op.Type, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) {
		op := p.advance()
		y := p.parseUnary()
		x = &ast.BinaryExpr{Position: op.Position, Op: op.Type, X: x, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Position: op.Position, Op: op.Type, X: x}
	}
	return p.parsePower()
}

// parsePower is right-associative: 2^3^2 parses as 2^(3^2).
func (p *Parser) parsePower() ast.Expr {
	x := p.parsePrimary()
	if p.check(token.CARET) {
		op := p.advance()
		y := p.parseUnary() // allows `2 ^ -1` and right-assoc `2 ^ 3 ^ 2`
		return &ast.BinaryExpr{Position: op.Position, Op: token.CARET, X: x, Y: y}
	}
	return x
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return &ast.NumberLit{Position: tok.Position, Lexeme: tok.Lexeme, IsFloat: containsDot(tok.Lexeme)}
	case token.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	case token.SUM:
		return p.parseSum()
	case token.EE:
		return p.parseEE()
	case token.IDENT:
		return p.parseIdentExpr()
	default:
		p.fail("unexpected token " + tok.Type.String() + " " + tok.Lexeme)
		return nil
	}
}

func containsDot(lexeme string) bool {
	for _, c := range lexeme {
		if c == '.' {
			return true
		}
	}
	return false
}

func (p *Parser) parseSum() ast.Expr {
	sumTok := p.expect(token.SUM)
	p.expect(token.LBRACKET)
	idx := p.parseIdentArg()
	p.expect(token.RBRACKET)
	p.expect(token.LPAREN)
	body := p.parseExpr()
	p.expect(token.RPAREN)
	return &ast.SumExpr{Position: sumTok.Position, Index: idx, Body: body}
}

func (p *Parser) parseEE() ast.Expr {
	eeTok := p.expect(token.EE)
	p.expect(token.LBRACKET)
	i := p.parseIdentArg()
	p.expect(token.COMMA)
	j := p.parseIdentArg()
	p.expect(token.RBRACKET)
	p.expect(token.LPAREN)
	diag := p.parseExpr()
	p.expect(token.COMMA)
	off := p.parseExpr()
	p.expect(token.COMMA)
	rhs := p.parseExpr()

	e := &ast.EEExpr{Position: eeTok.Position, RowIndex: i, ColIndex: j, Diag: diag, Off: off, Rhs: rhs}
	if p.check(token.COMMA) {
		p.advance()
		if p.check(token.CUTOFF) {
			p.advance()
			e.Mode = "cutoff"
		} else if p.check(token.COVER) {
			p.advance()
			e.Mode = "cover"
		} else {
			p.fail("expected 'cutoff' or 'cover' in EE expression")
		}
		p.expect(token.COMMA)
		e.ModeParam = p.parseExpr()
	}
	p.expect(token.RPAREN)
	return e
}

// parseIdentExpr parses a bare Ident, a CallExpr (`f(args)`), or a
// SubscriptExpr (`x[i]`/`x[i,j]`) — disambiguated by the token following
// the identifier.
func (p *Parser) parseIdentExpr() ast.Expr {
	nameTok := p.advance()

	if p.check(token.LPAREN) {
		p.advance()
		var args []ast.Expr
		if !p.check(token.RPAREN) {
			args = append(args, p.parseExpr())
			for p.check(token.COMMA) {
				p.advance()
				args = append(args, p.parseExpr())
			}
		}
		p.expect(token.RPAREN)
		return &ast.CallExpr{Position: nameTok.Position, Func: nameTok.Lexeme, FuncPos: nameTok.Position, Args: args}
	}

	if p.check(token.LBRACKET) {
		p.advance()
		indices := []*ast.Ident{p.parseIdentArg()}
		for p.check(token.COMMA) {
			p.advance()
			indices = append(indices, p.parseIdentArg())
		}
		p.expect(token.RBRACKET)
		return &ast.SubscriptExpr{Position: nameTok.Position, Name: nameTok.Lexeme, NamePos: nameTok.Position, Indices: indices}
	}

	return &ast.Ident{Position: nameTok.Position, Name: nameTok.Lexeme}
}
