/*
Package equiv checks whether two algebraic expressions are equivalent.

Expressions are parsed into a small tree (numbers, variables, whitelisted functions and the
arithmetic operators) and never evaluated as code. Check first expands lhs - rhs into a
canonical sum of products with rational coefficients; a literal zero proves equivalence.
Otherwise, when the expressions have free variables, the difference is sampled at five
deterministic points and must vanish (within 1e-6) at every one of them.

The numeric fallback is a heuristic: an Equivalent verdict means "likely equivalent".

	v := equiv.Check("(x+1)^2", "x^2+2x+1")
	fmt.Println(v.Message())
*/
package equiv
