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

import (
	"fmt"

	"github.com/samber/lo"
)

// Tags is a set of block tags, consulted by the default fusion strategy
// and manipulated by HasTags/AddTags.
type Tags map[string]bool

// NewTags builds a Tags set from a list of names.
func NewTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = true
	}
	return t
}

// Clone returns a deep copy of t.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Block is an IR node with its own index space, constraints, refinements
// and ordered statements; blocks nest via BlockStmt children.
type Block struct {
	Name        string
	Tags        Tags
	Idxs        []Index
	Constraints []Affine
	Refs        []Refinement
	Stmts       []Statement
}

// NewBlock returns an empty, named block.
func NewBlock(name string) *Block {
	return &Block{Name: name, Tags: Tags{}}
}

// Clone returns a deep copy of b, including nested block statements.
func (b *Block) Clone() *Block {
	out := &Block{
		Name:        b.Name,
		Tags:        b.Tags.Clone(),
		Idxs:        make([]Index, len(b.Idxs)),
		Constraints: make([]Affine, len(b.Constraints)),
		Refs:        make([]Refinement, len(b.Refs)),
		Stmts:       make([]Statement, len(b.Stmts)),
	}
	for i, idx := range b.Idxs {
		out.Idxs[i] = idx.Clone()
	}
	for i, c := range b.Constraints {
		out.Constraints[i] = c.Clone()
	}
	for i, r := range b.Refs {
		out.Refs[i] = r.Clone()
	}
	for i, s := range b.Stmts {
		out.Stmts[i] = s.Clone()
	}
	return out
}

// RefByFrom returns the refinement whose From matches name. If mustExist
// is true and none is found, it panics: call sites passing true already
// know the refinement exists. Callers unsure whether it exists should
// pass false and check ok.
func (b *Block) RefByFrom(name string, mustExist bool) (*Refinement, bool) {
	for i := range b.Refs {
		if b.Refs[i].From == name {
			return &b.Refs[i], true
		}
	}
	if mustExist {
		panic(fmt.Sprintf("ir: RefByFrom(%q) on block %q: no such refinement", name, b.Name))
	}
	return nil, false
}

// IdxByName returns the index with the given name, or nil if absent.
func (b *Block) IdxByName(name string) *Index {
	for i := range b.Idxs {
		if b.Idxs[i].Name == name {
			return &b.Idxs[i]
		}
	}
	return nil
}

// RefIns returns the refinements with a nonzero In bit (In or InOut).
func (b *Block) RefIns() []*Refinement {
	return refsByDirBit(b, DirIn)
}

// RefOuts returns the refinements with a nonzero Out bit (Out or InOut).
func (b *Block) RefOuts() []*Refinement {
	return refsByDirBit(b, DirOut)
}

func refsByDirBit(b *Block, bit Dir) []*Refinement {
	ptrs := make([]*Refinement, len(b.Refs))
	for i := range b.Refs {
		ptrs[i] = &b.Refs[i]
	}
	return lo.Filter(ptrs, func(r *Refinement, _ int) bool { return r.Dir&bit != 0 })
}

// UniqueRefName appends "_N" to base, starting at 0, until the result is
// not already used by a refinement Into name in b.
func (b *Block) UniqueRefName(base string) string {
	used := lo.SliceToMap(b.Refs, func(r Refinement) (string, bool) { return r.Into, true })
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

// HasTags reports whether b carries every tag in required.
func (b *Block) HasTags(required Tags) bool {
	for tag := range required {
		if !b.Tags[tag] {
			return false
		}
	}
	return true
}

// AddTags merges extra into b's tag set.
func (b *Block) AddTags(extra Tags) {
	if b.Tags == nil {
		b.Tags = Tags{}
	}
	for tag := range extra {
		b.Tags[tag] = true
	}
}

// IdxsEqual compares two index sequences for the ordered equality
// FuseBlocks requires before it will unify two blocks.
func IdxsEqual(a, b []Index) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ConstraintsEqual compares two constraint sequences as ordered,
// unnormalized affine expressions: no canonicalization or reordering is
// performed, so two constraint lists that are mathematically equivalent
// but textually different will compare unequal.
func ConstraintsEqual(a, b []Affine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
