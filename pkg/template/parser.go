package template

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a syntax error with its byte offset in the source
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template parse error at offset %d: %s", e.Offset, e.Message)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenInteger
	tokenDot
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type lexer struct {
	src string
	pos int
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, offset: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]
	switch c {
	case '.':
		l.pos++
		return token{kind: tokenDot, text: ".", offset: start}, nil
	case '(':
		l.pos++
		return token{kind: tokenLParen, text: "(", offset: start}, nil
	case ')':
		l.pos++
		return token{kind: tokenRParen, text: ")", offset: start}, nil
	case ',':
		l.pos++
		return token{kind: tokenComma, text: ",", offset: start}, nil
	case '"':
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c == '"' {
				l.pos++
				return token{kind: tokenString, text: sb.String(), offset: start}, nil
			}
			if c == '\\' && l.pos+1 < len(l.src) {
				l.pos++
				switch l.src[l.pos] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				default:
					sb.WriteByte(l.src[l.pos])
				}
				l.pos++
				continue
			}
			sb.WriteByte(c)
			l.pos++
		}
		return token{}, &ParseError{Offset: start, Message: "unterminated string literal"}
	}
	if c >= '0' && c <= '9' {
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		return token{kind: tokenInteger, text: l.src[start:l.pos], offset: start}, nil
	}
	if isIdentByte(c) {
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokenIdent, text: l.src[start:l.pos], offset: start}, nil
	}
	return token{}, &ParseError{Offset: start, Message: fmt.Sprintf("unexpected character %q", string(c))}
}

// expr is a template AST node
type expr interface {
	eval(ctx Context) (Value, error)
}

type fieldExpr struct {
	name string
}

type stringExpr struct {
	value string
}

type integerExpr struct {
	value int64
}

type methodExpr struct {
	receiver expr
	method   string
	args     []expr
}

// Template is a parsed template, a whitespace-separated sequence of
// expressions whose rendered values are concatenated.
type Template struct {
	source string
	exprs  []expr
}

type parser struct {
	lex *lexer
	tok token
	err error
}

func (p *parser) advance() {
	if p.err != nil {
		return
	}
	p.tok, p.err = p.lex.next()
}

func (p *parser) parsePrimary() (expr, error) {
	switch p.tok.kind {
	case tokenIdent:
		name := p.tok.text
		p.advance()
		return &fieldExpr{name: name}, p.err
	case tokenString:
		value := p.tok.text
		p.advance()
		return &stringExpr{value: value}, p.err
	case tokenInteger:
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, &ParseError{Offset: p.tok.offset, Message: "invalid integer literal"}
		}
		p.advance()
		return &integerExpr{value: n}, p.err
	}
	return nil, &ParseError{Offset: p.tok.offset, Message: fmt.Sprintf("expected expression, got %q", p.tok.text)}
}

func (p *parser) parseExpr() (expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenDot {
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		if p.tok.kind != tokenIdent {
			return nil, &ParseError{Offset: p.tok.offset, Message: "expected method name after '.'"}
		}
		method := p.tok.text
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		if p.tok.kind != tokenLParen {
			return nil, &ParseError{Offset: p.tok.offset, Message: fmt.Sprintf("expected '(' after method %q", method)}
		}
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		var args []expr
		for p.tok.kind != tokenRParen {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind == tokenComma {
				p.advance()
				if p.err != nil {
					return nil, p.err
				}
				continue
			}
			if p.tok.kind != tokenRParen {
				return nil, &ParseError{Offset: p.tok.offset, Message: "expected ',' or ')' in argument list"}
			}
		}
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		node = &methodExpr{receiver: node, method: method, args: args}
	}
	return node, nil
}

// Parse compiles a template source string
func Parse(source string) (*Template, error) {
	p := &parser{lex: &lexer{src: source}}
	p.advance()
	if p.err != nil {
		return nil, p.err
	}
	t := &Template{source: source}
	for p.tok.kind != tokenEOF {
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		t.exprs = append(t.exprs, node)
	}
	return t, nil
}
