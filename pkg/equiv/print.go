package equiv

import (
	"math/big"
	"strings"
)

const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precAtom
)

// String renders n in the syntax Parse accepts.
func String(n Node) string {
	var sb strings.Builder
	write(&sb, n, 0)
	return sb.String()
}

func write(sb *strings.Builder, n Node, parent int) {
	prec := precedence(n)
	if prec < parent {
		sb.WriteByte('(')
		defer sb.WriteByte(')')
	}

	switch nn := n.(type) {
	case Num:
		sb.WriteString(ratString(nn.Value))
	case Var:
		sb.WriteString(nn.Name)
	case Call:
		sb.WriteString(nn.Func)
		sb.WriteByte('(')
		write(sb, nn.Arg, 0)
		sb.WriteByte(')')
	case Neg:
		sb.WriteByte('-')
		write(sb, nn.X, precProduct)
	case Bin:
		switch nn.Op {
		case '+':
			write(sb, nn.L, precSum)
			sb.WriteString(" + ")
			write(sb, nn.R, precSum)
		case '-':
			write(sb, nn.L, precSum)
			sb.WriteString(" - ")
			write(sb, nn.R, precProduct)
		case '*':
			write(sb, nn.L, precProduct)
			sb.WriteByte('*')
			write(sb, nn.R, precUnary)
		case '/':
			write(sb, nn.L, precProduct)
			sb.WriteByte('/')
			write(sb, nn.R, precUnary+1)
		case '^':
			write(sb, nn.L, precAtom)
			sb.WriteByte('^')
			write(sb, nn.R, precUnary)
		}
	default:
		sb.WriteString("?")
	}
}

func precedence(n Node) int {
	switch nn := n.(type) {
	case Num:
		if nn.Value.Sign() < 0 {
			return precUnary
		}
		if !nn.Value.IsInt() && !terminating(nn.Value) {
			return precProduct
		}
		return precAtom
	case Neg:
		return precUnary
	case Bin:
		switch nn.Op {
		case '+', '-':
			return precSum
		case '*', '/':
			return precProduct
		case '^':
			return precPower
		}
	}
	return precAtom
}

// ratString prints integers and terminating decimals as decimals and everything else as p/q.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if terminating(r) {
		s := r.FloatString(decimalDigits(r.Denom()))
		return strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return r.String()
}

var (
	bigTwo  = big.NewInt(2)
	bigFive = big.NewInt(5)
)

// terminating reports whether r has a finite decimal expansion.
func terminating(r *big.Rat) bool {
	d := new(big.Int).Set(r.Denom())
	m := new(big.Int)
	for _, p := range []*big.Int{bigTwo, bigFive} {
		for {
			q, rem := new(big.Int).QuoRem(d, p, m)
			if rem.Sign() != 0 {
				break
			}
			d = q
		}
	}
	return d.Cmp(big.NewInt(1)) == 0
}

// decimalDigits returns the number of digits needed after the point for a
// denominator made only of 2s and 5s.
func decimalDigits(d *big.Int) int {
	ten := big.NewInt(10)
	p := big.NewInt(1)
	m := new(big.Int)
	for n := 0; ; n++ {
		if m.Mod(p, d).Sign() == 0 {
			return n
		}
		p.Mul(p, ten)
	}
}
