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

package fusion

import (
	"fmt"
	"sort"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

// Refactor tiles orig by tile and splits the result into two nested
// blocks: an outer block carrying only the indices named in mapping
// (renamed to their common, shared name) and an inner block carrying
// everything else: the rest of orig's own index space, its statements
// and its (now locally scoped) refinements. The outer block's
// refinements are widened to cover whatever range of the buffer the
// inner block now iterates internally; the inner block's refinements
// drop the axes the outer block took over, since those are fixed per
// outer iteration. orig itself is never modified.
func Refactor(orig *ir.Block, mapping map[string]string, tile []int64) *ir.Block {
	debugPrint("Refactor %s, mapping %v, tile %v", orig.Name, mapping, tile)

	tiled := orig.Clone()
	ir.ApplyTile(tiled, tile, true, true)

	outer := ir.NewBlock(tiled.Name)
	outer.Constraints = cloneAffineSlice(tiled.Constraints)
	outer.Tags = tiled.Tags.Clone()

	inner := ir.NewBlock(tiled.Name)

	for _, idx := range tiled.Idxs {
		newName, mapped := mapping[idx.Name]
		if !mapped {
			inner.Idxs = append(inner.Idxs, idx)
			continue
		}
		inner.Idxs = append(inner.Idxs, ir.Index{Name: idx.Name, Range: 1, Affine: ir.NewAffineVar(newName, 1)})
		outerIdx := idx
		outerIdx.Name = newName
		outer.Idxs = append(outer.Idxs, outerIdx)
	}
	sort.Slice(outer.Idxs, func(i, j int) bool { return outer.Idxs[i].Name < outer.Idxs[j].Name })

	inner.Constraints = cloneAffineSlice(tiled.Constraints)
	inner.Stmts = tiled.Stmts

	outer.Refs = cloneRefSlice(tiled.Refs)
	inner.Refs = cloneRefSlice(tiled.Refs)

	for i := range outer.Refs {
		ref := &outer.Refs[i]
		for j := range ref.Access {
			acc := ref.Access[j]
			maxVal := ref.InteriorShape.Dims[j].Size - 1
			result := acc.Constant()
			for _, name := range acc.Vars() {
				coef := acc.Coef(name)
				newName, mapped := mapping[name]
				if !mapped {
					if coef < 0 {
						panic(fmt.Errorf("fusion: Refactor(%s): %w", orig.Name, errNegativeStride))
					}
					srcIdx := tiled.IdxByName(name)
					maxVal += (srcIdx.Range - 1) * coef
					continue
				}
				result = result.Add(ir.NewAffineVar(newName, coef))
			}
			ref.InteriorShape.Dims[j].Size = maxVal + 1
			ref.Access[j] = result
		}
	}

	for i := range inner.Refs {
		ref := &inner.Refs[i]
		ref.From = ref.Into
		for j := range ref.Access {
			acc := ref.Access[j]
			result := ir.NewAffine(0)
			for _, name := range acc.Vars() {
				if _, mapped := mapping[name]; !mapped {
					result = result.Add(ir.NewAffineVar(name, acc.Coef(name)))
				}
			}
			ref.Access[j] = result
		}
	}

	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}}
	FlattenTrivial(outer)

	debugPrint("Refactor output: %s", outer.Name)
	return outer
}

func cloneAffineSlice(in []ir.Affine) []ir.Affine {
	out := make([]ir.Affine, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneRefSlice(in []ir.Refinement) []ir.Refinement {
	out := make([]ir.Refinement, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
