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

	"github.com/ajroetker/go-stripe/cmd/stripefuse/ir"
)

// Plan is the result of comparing how two blocks each access a shared
// buffer: a per-index tile factor for each block (1 where no retiling is
// needed) plus an index-renaming map from each block's own index names to
// the common name the refactored blocks will share.
type Plan struct {
	TileA, TileB   []int64
	RemapA, RemapB map[string]string
}

// ComputePlan looks at how a and b each access the buffer named bufName
// and, if their access patterns are compatible, derives a Plan that makes
// them fusable: same tile granularity, same index names on the shared
// axes. It reports false if the two blocks cannot be unified on this
// buffer (unknown buffer, an access more complex than a single scaled
// index, uneven tiling, or mismatched constraints).
func ComputePlan(a, b *ir.Block, bufName string) (*Plan, bool) {
	debugPrint("ComputePlan for %s between %s and %s", bufName, a.Name, b.Name)

	plan := &Plan{
		TileA:  onesVec(len(a.Idxs)),
		TileB:  onesVec(len(b.Idxs)),
		RemapA: map[string]string{},
		RemapB: map[string]string{},
	}

	refA, ok := a.RefByFrom(bufName, false)
	if !ok {
		debugPrint("ComputePlan: buffer name unknown in block a")
		return nil, false
	}
	refB, ok := b.RefByFrom(bufName, false)
	if !ok {
		debugPrint("ComputePlan: buffer name unknown in block b")
		return nil, false
	}
	if len(refA.Access) != len(refB.Access) {
		panic(fmt.Errorf("fusion: ComputePlan(%s, %s, %q): %w", a.Name, b.Name, bufName, errAccessRankMismatch))
	}

	for i := range refA.Access {
		polyA, polyB := refA.Access[i], refB.Access[i]
		if polyA.IsZero() && polyB.IsZero() {
			continue
		}
		idxA, mulA, ok := polyA.SingleTerm()
		if !ok {
			debugPrint("ComputePlan: complex access in a: %s", polyA)
			return nil, false
		}
		idxB, mulB, ok := polyB.SingleTerm()
		if !ok {
			debugPrint("ComputePlan: complex access in b: %s", polyB)
			return nil, false
		}
		if _, dup := plan.RemapA[idxA]; dup {
			debugPrint("ComputePlan: duplicate index %s", idxA)
			return nil, false
		}
		if mulA%mulB != 0 {
			debugPrint("ComputePlan: uneven index division %d / %d", mulA, mulB)
			return nil, false
		}
		for i := range b.Idxs {
			if b.Idxs[i].Name == idxB {
				plan.TileB[i] = mulA / mulB
			}
		}
		plan.RemapA[idxA] = idxA
		plan.RemapB[idxB] = idxA
	}

	if !ir.ConstraintsEqual(a.Constraints, b.Constraints) {
		debugPrint("ComputePlan: incompatible constraints")
		return nil, false
	}
	for _, c := range a.Constraints {
		for _, v := range c.Vars() {
			if _, ok := plan.RemapA[v]; !ok {
				plan.RemapA[v] = v
			}
		}
	}
	for _, c := range b.Constraints {
		for _, v := range c.Vars() {
			if _, ok := plan.RemapB[v]; !ok {
				plan.RemapB[v] = v
			}
		}
	}

	return plan, true
}

func onesVec(n int) []int64 {
	v := make([]int64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
