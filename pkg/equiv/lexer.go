package equiv

import (
	"fmt"
	"math/big"
	"unicode"

	"github.com/aretw0/lousa/pkg/domain"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  *big.Rat
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() (token, error) {
	for l.i < len(l.s) && unicode.IsSpace(rune(l.s[l.i])) {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}, nil
	}

	start := l.i
	switch l.s[l.i] {
	case '+':
		l.i++
		return token{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		l.i++
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		l.i++
		if l.i < len(l.s) && l.s[l.i] == '*' {
			l.i++
			return token{kind: tokCaret, text: "**", pos: start}, nil
		}
		return token{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		l.i++
		return token{kind: tokSlash, text: "/", pos: start}, nil
	case '^':
		l.i++
		return token{kind: tokCaret, text: "^", pos: start}, nil
	case '(':
		l.i++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		l.i++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	}

	ch := l.s[l.i]
	if isIdentStart(ch) {
		l.i++
		for l.i < len(l.s) && isIdentContinue(l.s[l.i]) {
			l.i++
		}
		return token{kind: tokIdent, text: l.s[start:l.i], pos: start}, nil
	}
	if ch == '.' || isDigit(ch) {
		l.i = scanNumber(l.s, l.i)
		txt := l.s[start:l.i]
		r, ok := new(big.Rat).SetString(txt)
		if !ok || txt == "." {
			return token{}, fmt.Errorf("%w: malformed number %q at %d", domain.ErrSyntax, txt, start)
		}
		return token{kind: tokNumber, text: txt, pos: start, num: r}, nil
	}

	return token{}, fmt.Errorf("%w: unexpected character %q at %d", domain.ErrSyntax, rune(ch), start)
}

func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// Identifiers returns the distinct word tokens of s in order of first appearance.
// Lexing stops silently at the first invalid character.
func Identifiers(s string) []string {
	l := lexer{s: s}
	seen := make(map[string]bool)
	var out []string
	for {
		tok, err := l.next()
		if err != nil || tok.kind == tokEOF {
			return out
		}
		if tok.kind == tokIdent && !seen[tok.text] {
			seen[tok.text] = true
			out = append(out, tok.text)
		}
	}
}
