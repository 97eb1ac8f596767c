package equiv

import (
	"fmt"
	"strings"

	"github.com/aretw0/lousa/pkg/domain"
)

type parser struct {
	l   lexer
	cur token
}

// Parse builds the expression tree for s.
//
// Grammar, loosest first: sums, products (explicit or implicit, as in 2x or (a)(b)),
// unary signs, powers (right-associative, ^ or **) and primaries (numbers, names,
// function calls and parenthesised expressions).
func Parse(s string) (Node, error) {
	if strings.TrimSpace(s) == "" {
		return nil, domain.ErrEmptyExpression
	}
	p := &parser{l: lexer{s: s}}
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.unexpected()
	}
	return n, nil
}

func (p *parser) next() error {
	tok, err := p.l.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) unexpected() error {
	if p.cur.kind == tokEOF {
		return fmt.Errorf("%w: unexpected end of expression", domain.ErrSyntax)
	}
	return fmt.Errorf("%w: unexpected %q at %d", domain.ErrSyntax, p.cur.text, p.cur.pos)
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.text[0]
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = Bin{Op: op, L: left, R: right}
	}
	return left, nil
}

// startsOperand reports whether the current token can begin an implicit factor.
func (p *parser) startsOperand() bool {
	switch p.cur.kind {
	case tokNumber, tokIdent, tokLParen:
		return true
	}
	return false
}

func (p *parser) parseProduct() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch {
		case p.cur.kind == tokStar || p.cur.kind == tokSlash:
			op = p.cur.text[0]
			if err := p.next(); err != nil {
				return nil, err
			}
		case p.startsOperand():
			op = '*'
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Bin{Op: op, L: left, R: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		neg := p.cur.kind == tokMinus
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if neg {
			return Neg{X: x}, nil
		}
		return x, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokCaret {
		return base, nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	// The exponent may carry its own sign: 2^-1.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Bin{Op: '^', L: base, R: exp}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.cur.kind {
	case tokNumber:
		n := Num{Value: p.cur.num}
		if err := p.next(); err != nil {
			return nil, err
		}
		return n, nil
	case tokIdent:
		name := p.cur.text
		pos := p.cur.pos
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokLParen {
			// A single letter before a parenthesis is a factor: x(x+1).
			if !IsFunction(name) && len(name) == 1 {
				return Var{Name: name}, nil
			}
			if !IsFunction(name) {
				return nil, fmt.Errorf("%w: unknown function %q at %d", domain.ErrSyntax, name, pos)
			}
			arg, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			return Call{Func: name, Arg: arg}, nil
		}
		if IsFunction(name) {
			return nil, fmt.Errorf("%w: function %q needs a parenthesised argument", domain.ErrSyntax, name)
		}
		return Var{Name: name}, nil
	case tokLParen:
		return p.parseGroup()
	default:
		return nil, p.unexpected()
	}
}

// parseGroup parses "(" sum ")".
func (p *parser) parseGroup() (Node, error) {
	open := p.cur.pos
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokRParen {
		return nil, fmt.Errorf("%w: unbalanced parenthesis opened at %d", domain.ErrSyntax, open)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return n, nil
}
