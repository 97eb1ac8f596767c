package equiv

import (
	"math/big"
)

// Node is an expression tree node.
type Node interface {
	node()
}

// Num is a rational literal.
type Num struct {
	Value *big.Rat
}

// Var is a variable or one of the constants pi and e.
type Var struct {
	Name string
}

// Call applies a whitelisted function to one argument.
type Call struct {
	Func string
	Arg  Node
}

// Neg is unary minus.
type Neg struct {
	X Node
}

// Bin is a binary operation. Op is one of + - * / ^.
type Bin struct {
	Op   byte
	L, R Node
}

func (Num) node()  {}
func (Var) node()  {}
func (Call) node() {}
func (Neg) node()  {}
func (Bin) node()  {}

// Int returns an integer literal.
func Int(n int64) Num {
	return Num{Value: new(big.Rat).SetInt64(n)}
}

// Sub returns the difference node l - r.
func Sub(l, r Node) Node {
	return Bin{Op: '-', L: l, R: r}
}
