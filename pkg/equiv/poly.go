package equiv

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// factor is an atom raised to a non-zero integer power.
type factor struct {
	key  string // printed form of base, the identity of the atom
	base Node
	exp  int
}

// term is a rational coefficient times a product of factors sorted by key.
type term struct {
	coef    *big.Rat
	factors []factor
}

func (t term) key() string {
	if len(t.factors) == 0 {
		return ""
	}
	parts := make([]string, len(t.factors))
	for i, f := range t.factors {
		parts[i] = f.key + "^" + strconv.Itoa(f.exp)
	}
	return strings.Join(parts, "·")
}

func (t term) degree() int {
	d := 0
	for _, f := range t.factors {
		d += f.exp
	}
	return d
}

// poly is a canonical sum of terms keyed by their factor product.
// Terms with a zero coefficient are never stored.
type poly struct {
	terms map[string]term
}

func newPoly() poly {
	return poly{terms: make(map[string]term)}
}

func constPoly(r *big.Rat) poly {
	p := newPoly()
	p.addTerm(term{coef: r})
	return p
}

func atomPoly(base Node, exp int) poly {
	p := newPoly()
	p.addTerm(term{
		coef:    big.NewRat(1, 1),
		factors: []factor{{key: String(base), base: base, exp: exp}},
	})
	return p
}

func (p poly) addTerm(t term) {
	if t.coef.Sign() == 0 {
		return
	}
	k := t.key()
	if prev, ok := p.terms[k]; ok {
		sum := new(big.Rat).Add(prev.coef, t.coef)
		if sum.Sign() == 0 {
			delete(p.terms, k)
			return
		}
		p.terms[k] = term{coef: sum, factors: prev.factors}
		return
	}
	p.terms[k] = term{coef: new(big.Rat).Set(t.coef), factors: t.factors}
}

func (p poly) isZero() bool {
	return len(p.terms) == 0
}

// constant returns the value of p when it has no factors.
func (p poly) constant() (*big.Rat, bool) {
	switch len(p.terms) {
	case 0:
		return new(big.Rat), true
	case 1:
		t, ok := p.terms[""]
		if ok {
			return t.coef, true
		}
	}
	return nil, false
}

// monomial returns the single term of p.
func (p poly) monomial() (term, bool) {
	if len(p.terms) != 1 {
		return term{}, false
	}
	for _, t := range p.terms {
		return t, true
	}
	return term{}, false
}

func (p poly) add(q poly) poly {
	out := newPoly()
	for _, t := range p.terms {
		out.addTerm(t)
	}
	for _, t := range q.terms {
		out.addTerm(t)
	}
	return out
}

func (p poly) neg() poly {
	out := newPoly()
	for _, t := range p.terms {
		out.addTerm(term{coef: new(big.Rat).Neg(t.coef), factors: t.factors})
	}
	return out
}

// mul multiplies out p*q. It reports false when the expansion exceeds maxTerms
// products or a coefficient outgrows maxCoefBits.
func (p poly) mul(q poly) (poly, bool) {
	if len(p.terms)*len(q.terms) > maxTerms {
		return poly{}, false
	}
	out := newPoly()
	for _, a := range p.terms {
		for _, b := range q.terms {
			t, ok := mulTerms(a, b)
			if !ok {
				return poly{}, false
			}
			out.addTerm(t)
		}
	}
	return out, true
}

// pow expands p^n for n >= 0 by repeated squaring.
func (p poly) pow(n int) (poly, bool) {
	out := constPoly(big.NewRat(1, 1))
	base := p
	var ok bool
	for n > 0 {
		if n&1 == 1 {
			if out, ok = out.mul(base); !ok {
				return poly{}, false
			}
		}
		n >>= 1
		if n > 0 {
			if base, ok = base.mul(base); !ok {
				return poly{}, false
			}
		}
	}
	return out, true
}

func mulTerms(a, b term) (term, bool) {
	coef := new(big.Rat).Mul(a.coef, b.coef)
	if coefBits(coef) > maxCoefBits {
		return term{}, false
	}
	factors := make([]factor, 0, len(a.factors)+len(b.factors))
	i, j := 0, 0
	for i < len(a.factors) && j < len(b.factors) {
		fa, fb := a.factors[i], b.factors[j]
		switch {
		case fa.key < fb.key:
			factors = append(factors, fa)
			i++
		case fa.key > fb.key:
			factors = append(factors, fb)
			j++
		default:
			e := fa.exp + fb.exp
			if e < -maxDegree || e > maxDegree {
				return term{}, false
			}
			if e != 0 {
				factors = append(factors, factor{key: fa.key, base: fa.base, exp: e})
			}
			i++
			j++
		}
	}
	factors = append(factors, a.factors[i:]...)
	factors = append(factors, b.factors[j:]...)
	return term{coef: coef, factors: factors}, true
}

// powTerm raises a single term to an integer power. The coefficient must be non-zero.
// It reports false when |n| exceeds maxPower, or when an exponent or the coefficient
// would leave its bound.
func powTerm(t term, n int) (term, bool) {
	if n < -maxPower || n > maxPower {
		return term{}, false
	}
	coef, ok := ratPow(t.coef, n)
	if !ok {
		return term{}, false
	}
	factors := make([]factor, 0, len(t.factors))
	for _, f := range t.factors {
		if n == 0 {
			continue
		}
		e := f.exp * n
		if e < -maxDegree || e > maxDegree {
			return term{}, false
		}
		factors = append(factors, factor{key: f.key, base: f.base, exp: e})
	}
	return term{coef: coef, factors: factors}, true
}

func ratPow(r *big.Rat, n int) (*big.Rat, bool) {
	if n < 0 {
		r = new(big.Rat).Inv(r)
		n = -n
	}
	if coefBits(r)*n > maxCoefBits {
		return nil, false
	}
	num := new(big.Int).Exp(r.Num(), big.NewInt(int64(n)), nil)
	den := new(big.Int).Exp(r.Denom(), big.NewInt(int64(n)), nil)
	return new(big.Rat).SetFrac(num, den), true
}

func coefBits(r *big.Rat) int {
	return max(r.Num().BitLen(), r.Denom().BitLen())
}

// sortedTerms orders terms by descending degree, then by key.
func (p poly) sortedTerms() []term {
	out := make([]term, 0, len(p.terms))
	for _, t := range p.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].degree(), out[j].degree()
		if di != dj {
			return di > dj
		}
		return out[i].key() < out[j].key()
	})
	return out
}

// node converts p back to an expression tree.
func (p poly) node() Node {
	terms := p.sortedTerms()
	if len(terms) == 0 {
		return Int(0)
	}

	var acc Node
	for i, t := range terms {
		mag := new(big.Rat).Abs(t.coef)
		tn := termNode(mag, t.factors)
		negative := t.coef.Sign() < 0
		switch {
		case i == 0 && negative:
			acc = Neg{X: tn}
		case i == 0:
			acc = tn
		case negative:
			acc = Bin{Op: '-', L: acc, R: tn}
		default:
			acc = Bin{Op: '+', L: acc, R: tn}
		}
	}
	return acc
}

func termNode(mag *big.Rat, factors []factor) Node {
	var num, den []Node
	for _, f := range factors {
		if f.exp > 0 {
			num = append(num, factorNode(f.base, f.exp))
		} else {
			den = append(den, factorNode(f.base, -f.exp))
		}
	}

	one := mag.Cmp(big.NewRat(1, 1)) == 0
	if !one || len(num) == 0 {
		num = append([]Node{Num{Value: mag}}, num...)
	}
	n := product(num)
	if len(den) == 0 {
		return n
	}
	return Bin{Op: '/', L: n, R: product(den)}
}

func factorNode(base Node, exp int) Node {
	if exp == 1 {
		return base
	}
	return Bin{Op: '^', L: base, R: Int(int64(exp))}
}

func product(nodes []Node) Node {
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = Bin{Op: '*', L: acc, R: n}
	}
	return acc
}
