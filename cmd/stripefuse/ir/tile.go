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

package ir

// ApplyTile is the tiling primitive the fusion pass treats as an external
// collaborator: it subdivides a block by a given per-index factor.
// copyTags controls whether the new inner block inherits b's tags;
// interleave names the convention (shared with the rest of the
// polyhedral toolchain this pass plugs into) that outer and inner loops
// of the same axis keep the same index name, the inner one shadowing the
// outer in the nested scope. That convention lets FusionRefactor's own
// outer/inner split read tiled indices back out flatly without needing
// to know which axes ApplyTile actually subdivided.
//
// tile must have one entry per entry of b.Idxs, in the same order. Axes
// with tile[i] == 1 are left untouched in place; axes with tile[i] > 1
// have their range reduced to the outer trip count in b.Idxs, and the
// block's statements (together with the refinements and constraints they
// read) are moved down into one freshly inserted inner Block carrying the
// inner-range copies of the split indices. The outer block's refinements
// are rewritten to tile granularity: a split axis's access coefficient is
// multiplied by its tile factor, and the interior widens by
// (factor-1)·coef to cover the strip the inner block now iterates; the
// inner block keeps the original per-element view. If no axis needs
// splitting, ApplyTile is a no-op.
//
// Constraints are copied to the inner block verbatim; a constraint
// mentioning a split axis is not rewritten for the new iteration
// numbering. The fusion driver never produces that combination (its
// nontrivial tile factors come from buffer-access axes, checked for
// equal constraints before any tiling happens).
func ApplyTile(b *Block, tile []int64, copyTags, interleave bool) {
	_ = interleave // convention only; both outer and inner reuse split axis names either way

	if len(tile) != len(b.Idxs) {
		panic("ir: ApplyTile: tile vector length must match len(b.Idxs)")
	}

	anySplit := false
	for i := range b.Idxs {
		if tile[i] > 1 {
			anySplit = true
			break
		}
	}
	if !anySplit {
		return
	}

	inner := NewBlock(b.Name)
	if copyTags {
		inner.Tags = b.Tags.Clone()
	}
	inner.Constraints = cloneAffines(b.Constraints)
	inner.Refs = cloneRefs(b.Refs)
	for i := range inner.Refs {
		// The inner block reads through the enclosing refinement's view.
		inner.Refs[i].From = inner.Refs[i].Into
	}
	inner.Stmts = b.Stmts

	factors := map[string]int64{}
	for i := range b.Idxs {
		factor := tile[i]
		if factor <= 1 {
			continue
		}
		orig := b.Idxs[i]
		inner.Idxs = append(inner.Idxs, Index{
			Name:   orig.Name,
			Range:  factor,
			Affine: NewAffine(0),
		})
		b.Idxs[i].Range = ceilDiv(orig.Range, factor)
		factors[orig.Name] = factor
	}

	for i := range b.Refs {
		ref := &b.Refs[i]
		for j := range ref.Access {
			acc := ref.Access[j]
			for name, factor := range factors {
				coef := acc.Coef(name)
				if coef == 0 {
					continue
				}
				ref.InteriorShape.Dims[j].Size += (factor - 1) * coef
				acc = acc.Substitute(name, NewAffineVar(name, factor))
			}
			ref.Access[j] = acc
		}
	}

	b.Stmts = []Statement{&BlockStmt{Block: inner}}
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		panic("ir: ApplyTile: non-positive tile factor")
	}
	return (a + b - 1) / b
}

func cloneAffines(in []Affine) []Affine {
	out := make([]Affine, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneRefs(in []Refinement) []Refinement {
	out := make([]Refinement, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
