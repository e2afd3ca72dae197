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

// Strategy decides whether two adjacent block statements should be
// fused, and is notified of the outcome. AttemptFuse is consulted before
// any refactor work happens; OnFused/OnFailed fire after the actual
// merge attempt.
type Strategy interface {
	AttemptFuse(parent, a, b *ir.Block) bool
	OnFailed()
	OnFused(scope *ir.AliasMap, fused *ir.Block, origA, origB *ir.Block)
}

// Inner walks block's direct statements, and for every adjacent pair of
// nested blocks that share an output-to-input buffer dependency, tries to
// fuse them: compute a plan for the shared buffer, ask strategy whether
// to proceed, refactor both sides onto that plan and attempt the actual
// merge. A successful fuse replaces the pair with the merged block and
// retries fusing it with whatever now follows; any failure (no shared
// buffer, an unplannable access, the strategy declining, or the merge
// itself failing) stops retrying this position and moves on to the
// next statement.
func Inner(scope *ir.AliasMap, block *ir.Block, strategy Strategy) {
	for i := 0; i < len(block.Stmts); i++ {
		first, ok := block.Stmts[i].(*ir.BlockStmt)
		if !ok {
			continue
		}

		for {
			if i+1 >= len(block.Stmts) {
				break
			}
			second, ok := block.Stmts[i+1].(*ir.BlockStmt)
			if !ok {
				break
			}

			fuseOn := ""
			outsForFuse := make(map[string]bool)
			for _, ro := range first.Block.RefOuts() {
				outsForFuse[ro.From] = true
			}
			for _, ri := range second.Block.RefIns() {
				if outsForFuse[ri.From] {
					fuseOn = ri.From
					break
				}
			}
			if fuseOn == "" {
				debugPrint("Inner: nothing to fuse on between %s and %s", first.Block.Name, second.Block.Name)
				break
			}

			plan, ok := ComputePlan(first.Block, second.Block, fuseOn)
			if !ok {
				debugPrint("Inner: plan failed for %s", fuseOn)
				break
			}

			if !strategy.AttemptFuse(block, first.Block, second.Block) {
				debugPrint("Inner: fusion denied by strategy")
				break
			}

			refactorA := Refactor(first.Block, plan.RemapA, plan.TileA)
			refactorB := Refactor(second.Block, plan.RemapB, plan.TileB)

			if !FuseBlocks(scope, refactorA, refactorB) {
				strategy.OnFailed()
				debugPrint("Inner: actual fusion failed")
				break
			}

			debugPrint("Inner: fused block %s", refactorA.Name)
			origA, origB := first.Block, second.Block
			block.Stmts[i] = &ir.BlockStmt{Block: refactorA}
			block.Stmts = append(block.Stmts[:i+1], block.Stmts[i+2:]...)
			strategy.OnFused(scope, refactorA, origA, origB)

			first = block.Stmts[i].(*ir.BlockStmt)
		}
	}
}
