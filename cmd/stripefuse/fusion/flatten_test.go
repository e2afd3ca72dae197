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
	"testing"

	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

func TestFlattenTrivialInlinesSingleIterationBlock(t *testing.T) {
	inner := ir.NewBlock("inner")
	inner.Idxs = []ir.Index{{Name: "i", Range: 1, Affine: ir.NewAffineVar("o", 1)}}
	inner.Refs = []ir.Refinement{{Into: "x", From: "x"}}
	inner.Stmts = []ir.Statement{&ir.Constant{Name: "c", Value: 1}}

	outer := ir.NewBlock("outer")
	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}}

	FlattenTrivial(outer)

	if len(outer.Stmts) != 1 {
		t.Fatalf("FlattenTrivial: got %d stmts, want 1", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ir.Constant); !ok {
		t.Fatalf("FlattenTrivial: stmt type = %T, want *ir.Constant", outer.Stmts[0])
	}
}

func TestFlattenTrivialSkipsMultiIterationBlock(t *testing.T) {
	inner := ir.NewBlock("inner")
	inner.Idxs = []ir.Index{{Name: "i", Range: 4}}
	inner.Stmts = []ir.Statement{&ir.Constant{Name: "c", Value: 1}}

	outer := ir.NewBlock("outer")
	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}}

	FlattenTrivial(outer)

	if len(outer.Stmts) != 1 {
		t.Fatalf("FlattenTrivial: got %d stmts, want 1 (the untouched nested block)", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ir.BlockStmt); !ok {
		t.Fatalf("FlattenTrivial: expected multi-iteration block to survive untouched, got %T", outer.Stmts[0])
	}
}

func TestFlattenTrivialSkipsRenamingRefs(t *testing.T) {
	inner := ir.NewBlock("inner")
	inner.Idxs = []ir.Index{{Name: "i", Range: 1}}
	inner.Refs = []ir.Refinement{{Into: "y", From: "x"}}
	inner.Stmts = []ir.Statement{&ir.Constant{Name: "c", Value: 1}}

	outer := ir.NewBlock("outer")
	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}}

	FlattenTrivial(outer)

	if len(outer.Stmts) != 1 {
		t.Fatalf("FlattenTrivial: got %d stmts, want 1 (renaming block left alone)", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ir.BlockStmt); !ok {
		t.Fatalf("FlattenTrivial: expected renaming block to survive untouched, got %T", outer.Stmts[0])
	}
}

func TestFlattenTrivialIsIdempotent(t *testing.T) {
	inner := ir.NewBlock("inner")
	inner.Idxs = []ir.Index{{Name: "i", Range: 1, Affine: ir.NewAffineVar("o", 1)}}
	inner.Stmts = []ir.Statement{&ir.Constant{Name: "c", Value: 1}}

	multi := ir.NewBlock("multi")
	multi.Idxs = []ir.Index{{Name: "k", Range: 4}}
	multi.Stmts = []ir.Statement{&ir.Load{Into: "x", From: "a"}}

	outer := ir.NewBlock("outer")
	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}, &ir.BlockStmt{Block: multi}}

	FlattenTrivial(outer)
	once := outer.Clone()
	FlattenTrivial(outer)

	if len(outer.Stmts) != len(once.Stmts) {
		t.Fatalf("second flatten changed stmt count: %d vs %d", len(outer.Stmts), len(once.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ir.Constant); !ok {
		t.Fatalf("Stmts[0] type = %T, want the spliced *ir.Constant", outer.Stmts[0])
	}
	if _, ok := outer.Stmts[1].(*ir.BlockStmt); !ok {
		t.Fatalf("Stmts[1] type = %T, want the surviving multi-iteration block", outer.Stmts[1])
	}
}

func TestFlattenTrivialRewritesNestedCopiedDownIdx(t *testing.T) {
	deep := ir.NewBlock("deep")
	deep.Idxs = []ir.Index{{Name: "i", Range: 1, Affine: ir.NewAffineVar("i", 1)}}

	inner := ir.NewBlock("inner")
	inner.Idxs = []ir.Index{{Name: "i", Range: 1, Affine: ir.NewAffineVar("o", 3)}}
	inner.Stmts = []ir.Statement{&ir.BlockStmt{Block: deep}}

	outer := ir.NewBlock("outer")
	outer.Stmts = []ir.Statement{&ir.BlockStmt{Block: inner}}

	FlattenTrivial(outer)

	spliced, ok := outer.Stmts[0].(*ir.BlockStmt)
	if !ok {
		t.Fatalf("FlattenTrivial: expected deep block spliced into outer, got %T", outer.Stmts[0])
	}
	if coef := spliced.Block.Idxs[0].Affine.Coef("o"); coef != 3 {
		t.Fatalf("FlattenTrivial: expected deep block's copied-down affine to resolve through inner's own affine (coef o = 3), got %s", spliced.Block.Idxs[0].Affine)
	}
	if spliced.Block.Idxs[0].Affine.Coef("i") != 0 {
		t.Fatalf("FlattenTrivial: expected the inlined inner's own index name to no longer appear, got %s", spliced.Block.Idxs[0].Affine)
	}
}
