// Package celpred builds spec predicates from CEL expressions. The value
// under test is bound to the variable self, as in Kubernetes validation
// rules:
//
//	self.lo <= self.hi
//	size(self) > 0 && self.matches('^[a-z]+$')
package celpred

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/cel-go/cel"

	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// ErrNotBool reports an expression whose result type cannot be a boolean.
var ErrNotBool = errors.New("celpred: expression does not evaluate to bool")

var env = mustEnv()

func mustEnv() *cel.Env {
	e, err := cel.NewEnv(cel.Variable("self", cel.DynType))
	if err != nil {
		panic(err)
	}
	return e
}

// Compile turns expr into a predicate named after the expression itself.
func Compile(expr string) (spec.Predicate, error) { return CompileNamed(expr, expr) }

// CompileNamed turns expr into a predicate with the given name. Evaluation
// errors (a missing field, a type mismatch) count as a failed check.
func CompileNamed(name, expr string) (spec.Predicate, error) {
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return spec.Predicate{}, fmt.Errorf("celpred: compile %q: %w", expr, iss.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return spec.Predicate{}, fmt.Errorf("%w: %q has type %s", ErrNotBool, expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return spec.Predicate{}, fmt.Errorf("celpred: program %q: %w", expr, err)
	}
	return spec.Predicate{Name: name, Fn: func(v value.Value) bool {
		out, _, err := prg.Eval(map[string]any{"self": native(v)})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}}, nil
}

// native converts v to the Go values the CEL type adapter understands.
// Arbitrary-precision numbers become int64 when they fit, float64
// otherwise.
func native(v value.Value) any {
	switch x := v.(type) {
	case value.BigInt:
		n := x.Int()
		if n.IsInt64() {
			return n.Int64()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	case value.BigDecimal:
		return decimalFloat(x.Decimal())
	case value.Array:
		out := make([]any, x.Len())
		for i, e := range x.Elems() {
			out[i] = native(e)
		}
		return out
	case value.Object:
		out := make(map[string]any, x.Len())
		x.Range(func(k string, e value.Value) bool {
			out[k] = native(e)
			return true
		})
		return out
	}
	return value.ToGo(v)
}

func decimalFloat(d *apd.Decimal) float64 {
	f, err := d.Float64()
	if err != nil {
		return 0
	}
	return f
}
