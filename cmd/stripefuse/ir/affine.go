// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir provides the polyhedral block intermediate representation
// the fusion pass rewrites: affine expressions, indices, refinements,
// statements and blocks, plus the primitives (ApplyTile, AliasMap) and
// textual encoding the pass consumes but does not define.
package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// constTerm is the map key Affine uses for its constant term.
const constTerm = ""

// Affine is an integer-linear expression over variable names plus a
// constant, Σ cᵢ·xᵢ + k, keyed by variable name with "" denoting k.
type Affine struct {
	terms map[string]int64
}

// NewAffine builds an Affine from a constant term.
func NewAffine(k int64) Affine {
	a := Affine{terms: map[string]int64{}}
	if k != 0 {
		a.terms[constTerm] = k
	}
	return a
}

// NewAffineVar builds a single-term affine coef·name.
func NewAffineVar(name string, coef int64) Affine {
	a := Affine{terms: map[string]int64{}}
	if coef != 0 {
		a.terms[name] = coef
	}
	return a
}

// Coef returns the coefficient of name ("" for the constant term).
func (a Affine) Coef(name string) int64 {
	return a.terms[name]
}

// Constant returns the constant term alone, as its own Affine.
func (a Affine) Constant() Affine {
	return NewAffine(a.terms[constTerm])
}

// ConstantValue returns the bare integer constant term.
func (a Affine) ConstantValue() int64 {
	return a.terms[constTerm]
}

// IsZero reports whether the affine is the zero polynomial.
func (a Affine) IsZero() bool {
	for _, v := range a.terms {
		if v != 0 {
			return false
		}
	}
	return true
}

// Vars returns the non-constant variable names mentioned, sorted for
// deterministic iteration.
func (a Affine) Vars() []string {
	vars := make([]string, 0, len(a.terms))
	for name := range a.terms {
		if name != constTerm {
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)
	return vars
}

// SingleTerm reports whether the affine has exactly one non-zero
// non-constant term, returning its variable and coefficient.
func (a Affine) SingleTerm() (name string, coef int64, ok bool) {
	vars := a.Vars()
	if len(vars) != 1 {
		return "", 0, false
	}
	if a.terms[constTerm] != 0 {
		return "", 0, false
	}
	return vars[0], a.terms[vars[0]], true
}

// Add returns a + b.
func (a Affine) Add(b Affine) Affine {
	out := Affine{terms: make(map[string]int64, len(a.terms)+len(b.terms))}
	for k, v := range a.terms {
		out.terms[k] += v
	}
	for k, v := range b.terms {
		out.terms[k] += v
	}
	out.prune()
	return out
}

// Scale returns a scaled by k.
func (a Affine) Scale(k int64) Affine {
	out := Affine{terms: make(map[string]int64, len(a.terms))}
	for name, coef := range a.terms {
		out.terms[name] = coef * k
	}
	out.prune()
	return out
}

// Substitute replaces every occurrence of var with repl, returning a new
// Affine. If var does not appear, a is returned unchanged (by value).
func (a Affine) Substitute(varName string, repl Affine) Affine {
	coef, ok := a.terms[varName]
	if !ok || coef == 0 {
		return a
	}
	out := Affine{terms: make(map[string]int64, len(a.terms))}
	for k, v := range a.terms {
		if k == varName {
			continue
		}
		out.terms[k] += v
	}
	scaled := repl.Scale(coef)
	for k, v := range scaled.terms {
		out.terms[k] += v
	}
	out.prune()
	return out
}

func (a *Affine) prune() {
	for k, v := range a.terms {
		if v == 0 {
			delete(a.terms, k)
		}
	}
}

// Equal reports structural equality: a term-by-term comparison of the
// nonzero coefficients. Zero-coefficient terms are ignored, so the order
// in which the terms were added does not matter.
func (a Affine) Equal(b Affine) bool {
	an, bn := a.nonZeroTerms(), b.nonZeroTerms()
	if len(an) != len(bn) {
		return false
	}
	for k, v := range an {
		if bn[k] != v {
			return false
		}
	}
	return true
}

func (a Affine) nonZeroTerms() map[string]int64 {
	return lo.PickBy(a.terms, func(_ string, v int64) bool { return v != 0 })
}

// String renders the affine as "c0 + c1*x1 + ...", used by debug traces
// and test messages (the textual writer has its own s-expression form).
func (a Affine) String() string {
	vars := a.Vars()
	var parts []string
	if k := a.terms[constTerm]; k != 0 || len(vars) == 0 {
		parts = append(parts, fmt.Sprintf("%d", k))
	}
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf("%d*%s", a.terms[v], v))
	}
	return strings.Join(parts, " + ")
}

// Clone returns a deep copy of a.
func (a Affine) Clone() Affine {
	out := Affine{terms: make(map[string]int64, len(a.terms))}
	for k, v := range a.terms {
		out.terms[k] = v
	}
	return out
}
