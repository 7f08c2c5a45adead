package revset

import "fmt"

// expr is a revset AST node
type expr interface{ revsetExpr() }

type symbolExpr struct {
	text   string
	quoted bool
	offset int
}

type workingCopyExpr struct{}

type funcExpr struct {
	name   string
	args   []expr
	offset int
}

type unionExpr struct{ left, right expr }

type intersectExpr struct{ left, right expr }

type differenceExpr struct{ left, right expr }

// rangeExpr is "from::to"; a nil side is unbounded
type rangeExpr struct{ from, to expr }

type parentsExpr struct{ of expr }

type childrenExpr struct{ of expr }

func (*symbolExpr) revsetExpr()      {}
func (*workingCopyExpr) revsetExpr() {}
func (*funcExpr) revsetExpr()        {}
func (*unionExpr) revsetExpr()       {}
func (*intersectExpr) revsetExpr()   {}
func (*differenceExpr) revsetExpr()  {}
func (*rangeExpr) revsetExpr()       {}
func (*parentsExpr) revsetExpr()     {}
func (*childrenExpr) revsetExpr()    {}

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

func startsExpr(k tokenKind) bool {
	switch k {
	case tokenSymbol, tokenString, tokenAt, tokenLParen, tokenDotDot:
		return true
	}
	return false
}

// Grammar, loosest binding first:
//
//	union      := rangeOrSet { "|" rangeOrSet }
//	rangeOrSet := setOp
//	setOp      := range { ("&" | "~") range }
//	range      := "::" [postfix] | postfix [ "::" [postfix] ]
//	postfix    := primary { "-" | "+" }
//	primary    := "@" | symbol | string | func "(" args ")" | "(" union ")"
func (p *parser) parseUnion() (expr, error) {
	left, err := p.parseSetOp()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenPipe {
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		right, err := p.parseSetOp()
		if err != nil {
			return nil, err
		}
		left = &unionExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseSetOp() (expr, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenAmp || p.tok.kind == tokenTilde {
		op := p.tok.kind
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		right, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		if op == tokenAmp {
			left = &intersectExpr{left: left, right: right}
		} else {
			left = &differenceExpr{left: left, right: right}
		}
	}
	return left, nil
}

func (p *parser) parseRange() (expr, error) {
	if p.tok.kind == tokenDotDot {
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		if !startsExpr(p.tok.kind) {
			return &rangeExpr{}, nil
		}
		to, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &rangeExpr{to: to}, nil
	}
	from, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenDotDot {
		return from, nil
	}
	p.advance()
	if p.err != nil {
		return nil, p.err
	}
	if !startsExpr(p.tok.kind) {
		return &rangeExpr{from: from}, nil
	}
	to, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	return &rangeExpr{from: from, to: to}, nil
}

func (p *parser) parsePostfix() (expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.kind {
		case tokenMinus:
			node = &parentsExpr{of: node}
		case tokenPlus:
			node = &childrenExpr{of: node}
		default:
			return node, nil
		}
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
	}
}

func (p *parser) parsePrimary() (expr, error) {
	switch p.tok.kind {
	case tokenAt:
		p.advance()
		return &workingCopyExpr{}, p.err
	case tokenString:
		node := &symbolExpr{text: p.tok.text, quoted: true, offset: p.tok.offset}
		p.advance()
		return node, p.err
	case tokenLParen:
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		node, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokenRParen {
			return nil, &ParseError{Offset: p.tok.offset, Message: "expected ')'"}
		}
		p.advance()
		return node, p.err
	case tokenSymbol:
		name := p.tok.text
		offset := p.tok.offset
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		if p.tok.kind != tokenLParen {
			return &symbolExpr{text: name, offset: offset}, nil
		}
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		fn := &funcExpr{name: name, offset: offset}
		for p.tok.kind != tokenRParen {
			arg, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			fn.args = append(fn.args, arg)
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
		return fn, p.err
	}
	return nil, &ParseError{Offset: p.tok.offset, Message: fmt.Sprintf("expected expression, got %q", p.tok.text)}
}

// Parse compiles a revset source string into its AST
func Parse(source string) (expr, error) {
	p := &parser{lex: &lexer{src: source}}
	p.advance()
	if p.err != nil {
		return nil, p.err
	}
	node, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, &ParseError{Offset: p.tok.offset, Message: fmt.Sprintf("unexpected trailing input %q", p.tok.text)}
	}
	return node, nil
}
