package equiv

import (
	"math"
	"math/big"
)

const (
	// maxExpand bounds the integer powers of sums that are multiplied out.
	maxExpand = 16
	// maxPower bounds integer powers applied to coefficients and single terms.
	maxPower = 64
	// maxTerms bounds the term products of a single multiplication.
	maxTerms = 1 << 14
	// maxDegree bounds the exponent of any factor.
	maxDegree = 1024
	// maxCoefBits bounds the bit length of a coefficient's numerator and denominator.
	maxCoefBits = 4096
)

// Simplify expands n into a canonical sum of products.
// Like terms cancel and constants fold; anything that is not a polynomial in the
// variables (function calls, non-integer powers, division by a sum) is kept as an
// opaque atom whose own argument is simplified.
func Simplify(n Node) Node {
	return canon(n).node()
}

// IsZero reports whether n simplifies to the literal 0.
func IsZero(n Node) bool {
	return canon(n).isZero()
}

func canon(n Node) poly {
	switch nn := n.(type) {
	case Num:
		return constPoly(nn.Value)
	case Var:
		return atomPoly(nn, 1)
	case Neg:
		return canon(nn.X).neg()
	case Call:
		return canonCall(nn)
	case Bin:
		switch nn.Op {
		case '+':
			return canon(nn.L).add(canon(nn.R))
		case '-':
			return canon(nn.L).add(canon(nn.R).neg())
		case '*':
			l, r := canon(nn.L), canon(nn.R)
			return mulOrAtom(l, r, func() Node { return Bin{Op: '*', L: l.node(), R: r.node()} })
		case '/':
			return canonDiv(canon(nn.L), canon(nn.R))
		case '^':
			return canonPow(canon(nn.L), canon(nn.R))
		}
	}
	return atomPoly(n, 1)
}

func canonCall(c Call) poly {
	call := Call{Func: c.Func, Arg: canon(c.Arg).node()}
	// Calls without free variables fold when their value is an integer: sin(pi), ln(1).
	if r, ok := exactly(Eval(call, nil)); ok {
		return constPoly(r)
	}
	return atomPoly(call, 1)
}

// mulOrAtom multiplies out l*r, or keeps the product opaque when the expansion exceeds the bounds.
func mulOrAtom(l, r poly, opaque func() Node) poly {
	if p, ok := l.mul(r); ok {
		return p
	}
	return atomPoly(opaque(), 1)
}

func canonDiv(num, den poly) poly {
	opaque := func() Node { return Bin{Op: '/', L: num.node(), R: den.node()} }
	if c, ok := den.constant(); ok {
		if c.Sign() == 0 {
			return atomPoly(Bin{Op: '/', L: num.node(), R: Int(0)}, 1)
		}
		return mulOrAtom(num, constPoly(new(big.Rat).Inv(c)), opaque)
	}
	if t, ok := den.monomial(); ok {
		if it, ok := powTerm(t, -1); ok {
			inv := newPoly()
			inv.addTerm(it)
			return mulOrAtom(num, inv, opaque)
		}
	}
	return mulOrAtom(num, atomPoly(den.node(), -1), opaque)
}

func canonPow(base, exp poly) poly {
	e, ok := exp.constant()
	if ok && e.IsInt() && e.Num().IsInt64() {
		n := e.Num().Int64()
		switch {
		case n == 0:
			return constPoly(big.NewRat(1, 1))
		case base.isZero():
			if n > 0 {
				return newPoly()
			}
		case n < -maxPower || n > maxPower:
			// left to the numeric fallback
		default:
			if t, ok := base.monomial(); ok {
				if pt, ok := powTerm(t, int(n)); ok {
					out := newPoly()
					out.addTerm(pt)
					return out
				}
			} else if n > 0 && n <= maxExpand {
				if p, ok := base.pow(int(n)); ok {
					return p
				}
			}
			return atomPoly(base.node(), int(n))
		}
	}

	pow := Bin{Op: '^', L: base.node(), R: exp.node()}
	if r, ok := exactly(Eval(pow, nil)); ok {
		return constPoly(r)
	}
	return atomPoly(pow, 1)
}

// exactly returns v as a rational when it is finite and an integer up to rounding noise.
func exactly(v float64) (*big.Rat, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e15 {
		return nil, false
	}
	r := math.Round(v)
	if math.Abs(v-r) > 1e-12 {
		return nil, false
	}
	return new(big.Rat).SetInt64(int64(r)), true
}
