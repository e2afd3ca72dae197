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

// FuseBlocks merges b's refinements and statements into a in place,
// reporting whether the merge succeeded. scope is the AliasMap of the
// block enclosing both a and b, used to resolve their own refinements
// down to physical buffers.
//
// Refinements that resolve to the exact same buffer view are unified
// (their directions unioned); refinements that partially overlap the
// same buffer without being identical block any fusion where either side
// writes; anything else is copied across under a fresh name. a is
// inspected but left untouched until every refinement in b has been
// classified; once that probe succeeds fusion cannot fail, so every
// remaining step commits.
//
// FuseBlocks requires a and b to already share an identical index space.
// Mismatched indices abort the merge outright. Mismatched constraints
// also abort it but still report success: the caller's fusion plan
// guarantees matching constraints, so this branch only triggers when
// something upstream is inconsistent and is treated as nothing to do.
func FuseBlocks(scope *ir.AliasMap, a, b *ir.Block) bool {
	if !ir.IdxsEqual(a.Idxs, b.Idxs) {
		debugPrint("fuse failed: mismatched indexes")
		return false
	}
	if !ir.ConstraintsEqual(a.Constraints, b.Constraints) {
		debugPrint("fuse failed: mismatched constraints")
		return true
	}

	aMap := ir.NewAliasMap(scope, a)
	bMap := ir.NewAliasMap(scope, b)

	merged := cloneRefSlice(a.Refs)
	remapB := make(map[string]string, len(b.Refs))

	for _, newRef := range b.Refs {
		didMerge := false
		for i := range merged {
			old := &merged[i]
			oldInfo, _ := aMap.At(old.Into)
			newInfo, _ := bMap.At(newRef.Into)
			switch ir.AliasInfoCompare(oldInfo, newInfo) {
			case ir.AliasPartial:
				if ir.IsWriteDir(newRef.Dir) || ir.IsWriteDir(old.Dir) {
					debugPrint("fuse failed: mismatched aliases %s vs %s", old.Into, newRef.Into)
					return false
				}
			case ir.AliasExact:
				remapB[newRef.Into] = old.Into
				old.Dir = ir.UnionDir(old.Dir, newRef.Dir)
				didMerge = true
			}
			if didMerge {
				break
			}
		}
		if !didMerge {
			newName := uniqueRefName(merged, newRef.Into)
			remapB[newRef.Into] = newName
			copied := newRef.Clone()
			copied.Into = newName
			merged = append(merged, copied)
		}
	}

	// Every refinement in b has a home; the merge commits from here.
	a.Refs = merged
	switch {
	case a.Name != "":
		a.Name = fmt.Sprintf("%s+%s", a.Name, b.Name)
	case b.Name != "":
		a.Name = b.Name
	}

	allScalars := map[string]bool{}
	for _, stmt := range a.Stmts {
		for _, name := range stmt.ScalarDefs() {
			allScalars[name] = true
		}
	}
	scalarRename := map[string]string{}
	defScalar := func(orig string) string {
		if !allScalars[orig] {
			allScalars[orig] = true
			scalarRename[orig] = orig
			return orig
		}
		for i := 0; ; i++ {
			candidate := fmt.Sprintf("%s_%d", orig, i)
			if !allScalars[candidate] {
				allScalars[candidate] = true
				scalarRename[orig] = candidate
				return candidate
			}
		}
	}

	for _, stmt := range b.Stmts {
		switch s := stmt.(type) {
		case *ir.Load:
			s.Into = defScalar(s.Into)
			s.From = mustRemap(remapB, s.From)
		case *ir.Store:
			s.Into = mustRemap(remapB, s.Into)
			s.From = mustRename(scalarRename, s.From)
		case *ir.Special:
			for i, in := range s.Inputs {
				s.Inputs[i] = mustRemap(remapB, in)
			}
			for i, out := range s.Outputs {
				s.Outputs[i] = mustRemap(remapB, out)
			}
		case *ir.BlockStmt:
			for i := range s.Block.Refs {
				s.Block.Refs[i].From = mustRemap(remapB, s.Block.Refs[i].From)
			}
		case *ir.Constant:
			s.Name = defScalar(s.Name)
		case *ir.Intrinsic:
			for i, in := range s.Inputs {
				s.Inputs[i] = mustRename(scalarRename, in)
			}
			for i, out := range s.Outputs {
				s.Outputs[i] = defScalar(out)
			}
		}
		a.Stmts = append(a.Stmts, stmt)
	}

	return true
}

func uniqueRefName(refs []ir.Refinement, base string) string {
	used := make(map[string]bool, len(refs))
	for _, r := range refs {
		used[r.Into] = true
	}
	if !used[base] {
		return base
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}

func mustRemap(remap map[string]string, name string) string {
	v, ok := remap[name]
	if !ok {
		panic(fmt.Errorf("fusion: FuseBlocks: %q: %w", name, errNoRemapEntry))
	}
	return v
}

func mustRename(rename map[string]string, name string) string {
	v, ok := rename[name]
	if !ok {
		panic(fmt.Errorf("fusion: FuseBlocks: %q: %w", name, errNoRenameEntry))
	}
	return v
}
