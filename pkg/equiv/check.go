package equiv

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/lousa/pkg/domain"
)

const (
	// Trials is the number of sample points of the numeric fallback.
	Trials = 5
	// Tolerance is the largest absolute difference accepted at a sample point.
	Tolerance = 1e-6
)

// Kind is the outcome class of a check.
type Kind int

const (
	Equivalent Kind = iota
	Different
	Error
)

func (k Kind) String() string {
	switch k {
	case Equivalent:
		return "equivalent"
	case Different:
		return "different"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Verdict is the result of Check.
type Verdict struct {
	Kind Kind
	// Residual is the simplified lhs - rhs. Set for Different.
	Residual string
	// Reason explains an Error.
	Reason string
	// Sampled is true when Equivalent was decided by numeric sampling.
	Sampled bool
	// Err is the underlying error of an Error verdict.
	Err error
}

// Message is the status line shown to the user.
func (v Verdict) Message() string {
	switch v.Kind {
	case Equivalent:
		return "✅ The expressions look equivalent."
	case Different:
		return "⚠️ Symbolic difference: " + v.Residual
	default:
		return "❌ Check failed: " + v.Reason
	}
}

func failed(err error) Verdict {
	return Verdict{Kind: Error, Reason: err.Error(), Err: err}
}

// Check decides whether lhs and rhs are equivalent.
func Check(lhs, rhs string) Verdict {
	// 1. Both sides are required
	lhs, rhs = strings.TrimSpace(lhs), strings.TrimSpace(rhs)
	if lhs == "" || rhs == "" {
		return failed(domain.ErrEmptyExpression)
	}

	// 2. Parse
	l, err := Parse(lhs)
	if err != nil {
		return failed(fmt.Errorf("lhs: %w", err))
	}
	r, err := Parse(rhs)
	if err != nil {
		return failed(fmt.Errorf("rhs: %w", err))
	}
	diff := Sub(l, r)

	// 3. Symbolic proof
	simplified := canon(diff)
	if simplified.isZero() {
		return Verdict{Kind: Equivalent}
	}
	residual := String(simplified.node())

	// 4. Numeric sampling over the free variables
	vars := FreeVariables(lhs + " " + rhs)
	if len(vars) == 0 {
		return Verdict{Kind: Different, Residual: residual}
	}
	for i := 0; i < Trials; i++ {
		v := Eval(diff, SamplePoint(vars, i))
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > Tolerance {
			return Verdict{Kind: Different, Residual: residual}
		}
	}
	return Verdict{Kind: Equivalent, Sampled: true}
}

// FreeVariables returns the word tokens of s that are not function or constant names.
func FreeVariables(s string) []string {
	var out []string
	for _, id := range Identifiers(s) {
		if !Reserved(id) {
			out = append(out, id)
		}
	}
	return out
}

// SamplePoint assigns each variable its value for the given trial:
// (trial+2)*0.37 plus the first character code of the name modulo 5.
func SamplePoint(vars []string, trial int) map[string]float64 {
	env := make(map[string]float64, len(vars))
	for _, name := range vars {
		env[name] = float64(trial+2)*0.37 + float64(int(name[0])%5)
	}
	return env
}

// IsEmpty reports whether v failed because a side was blank.
func (v Verdict) IsEmpty() bool {
	return errors.Is(v.Err, domain.ErrEmptyExpression)
}
