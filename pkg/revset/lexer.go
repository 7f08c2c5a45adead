// Package revset implements the commit query language: symbols resolve to
// single commits, operators combine sets, and evaluation yields commits in
// reverse-topological order with newer commits first.
package revset

import (
	"fmt"
	"strings"
)

// ParseError reports a revset syntax error with its byte offset
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("revset parse error at offset %d: %s", e.Offset, e.Message)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenSymbol
	tokenString
	tokenAt
	tokenPipe
	tokenAmp
	tokenTilde
	tokenDotDot // "::"
	tokenMinus
	tokenPlus
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

func isSymbolByte(c byte) bool {
	return c == '_' || c == '/' || c == '.' || c == '*' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && l.src[l.pos] == ' ' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, offset: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]
	switch c {
	case '@':
		l.pos++
		return token{kind: tokenAt, text: "@", offset: start}, nil
	case '|':
		l.pos++
		return token{kind: tokenPipe, text: "|", offset: start}, nil
	case '&':
		l.pos++
		return token{kind: tokenAmp, text: "&", offset: start}, nil
	case '~':
		l.pos++
		return token{kind: tokenTilde, text: "~", offset: start}, nil
	case '-':
		l.pos++
		return token{kind: tokenMinus, text: "-", offset: start}, nil
	case '+':
		l.pos++
		return token{kind: tokenPlus, text: "+", offset: start}, nil
	case '(':
		l.pos++
		return token{kind: tokenLParen, text: "(", offset: start}, nil
	case ')':
		l.pos++
		return token{kind: tokenRParen, text: ")", offset: start}, nil
	case ',':
		l.pos++
		return token{kind: tokenComma, text: ",", offset: start}, nil
	case ':':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == ':' {
			l.pos += 2
			return token{kind: tokenDotDot, text: "::", offset: start}, nil
		}
		return token{}, &ParseError{Offset: start, Message: "expected \"::\""}
	case '"':
		l.pos++
		var sb strings.Builder
		for l.pos < len(l.src) {
			if l.src[l.pos] == '"' {
				l.pos++
				return token{kind: tokenString, text: sb.String(), offset: start}, nil
			}
			if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
				l.pos++
			}
			sb.WriteByte(l.src[l.pos])
			l.pos++
		}
		return token{}, &ParseError{Offset: start, Message: "unterminated string literal"}
	}
	if isSymbolByte(c) {
		for l.pos < len(l.src) && isSymbolByte(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokenSymbol, text: l.src[start:l.pos], offset: start}, nil
	}
	return token{}, &ParseError{Offset: start, Message: fmt.Sprintf("unexpected character %q", string(c))}
}
