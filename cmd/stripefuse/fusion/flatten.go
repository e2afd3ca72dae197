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

import "github.com/ajroetker/go-stripe/cmd/stripefuse/ir"

// FlattenTrivial inlines any direct child block of outer whose index space
// has a single iteration (every Range is 1) and whose refinements don't
// rename anything (Into == From wherever From is set), splicing the child's
// statements directly into outer in its place. A nested block two levels
// down that copies one of the flattened block's own indices has that copy
// rewritten in terms of whatever the flattened block's index actually
// read. Renaming refinements are left alone; inlining them would require
// rewriting every inner statement that reads the renamed name, which this
// pass does not attempt.
func FlattenTrivial(outer *ir.Block) {
	out := make([]ir.Statement, 0, len(outer.Stmts))
	for _, stmt := range outer.Stmts {
		inner, ok := stmt.(*ir.BlockStmt)
		if !ok {
			out = append(out, stmt)
			continue
		}

		rangeProd := int64(1)
		for _, idx := range inner.Block.Idxs {
			rangeProd *= idx.Range
		}
		if rangeProd != 1 {
			out = append(out, stmt)
			continue
		}

		renames := false
		for _, ref := range inner.Block.Refs {
			if ref.From != "" && ref.Into != ref.From {
				renames = true
				break
			}
		}
		if renames {
			out = append(out, stmt)
			continue
		}

		for _, child := range inner.Block.Stmts {
			if deep, ok := child.(*ir.BlockStmt); ok {
				rewriteCopiedDownIdxs(deep.Block, inner.Block)
			}
			out = append(out, child)
		}
	}
	outer.Stmts = out
}

func rewriteCopiedDownIdxs(deep, flattened *ir.Block) {
	for i := range deep.Idxs {
		names := deep.Idxs[i].Affine.Vars()
		for _, name := range names {
			src := flattened.IdxByName(name)
			if src == nil {
				continue
			}
			deep.Idxs[i].Affine = deep.Idxs[i].Affine.Substitute(name, src.Affine)
		}
	}
}
