package equiv

import (
	"math"
)

// functions is the whitelist of callable names.
var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"sqrt": math.Sqrt,
	"exp":  math.Exp,
	"log":  math.Log,
	"ln":   math.Log,
	"abs":  math.Abs,
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// IsFunction reports whether name is a whitelisted function.
func IsFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

// Reserved reports whether name is a function or constant name and never a free variable.
func Reserved(name string) bool {
	if _, ok := constants[name]; ok {
		return true
	}
	return IsFunction(name)
}

// Eval computes n with the variables bound in env.
// Unbound variables evaluate to NaN.
func Eval(n Node, env map[string]float64) float64 {
	switch nn := n.(type) {
	case Num:
		f, _ := nn.Value.Float64()
		return f
	case Var:
		if v, ok := constants[nn.Name]; ok {
			return v
		}
		if v, ok := env[nn.Name]; ok {
			return v
		}
		return math.NaN()
	case Call:
		fn, ok := functions[nn.Func]
		if !ok {
			return math.NaN()
		}
		return fn(Eval(nn.Arg, env))
	case Neg:
		return -Eval(nn.X, env)
	case Bin:
		l := Eval(nn.L, env)
		r := Eval(nn.R, env)
		switch nn.Op {
		case '+':
			return l + r
		case '-':
			return l - r
		case '*':
			return l * r
		case '/':
			return l / r
		case '^':
			return math.Pow(l, r)
		}
	}
	return math.NaN()
}
