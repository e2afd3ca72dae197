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

// AliasType classifies how two refinements' views of memory relate.
type AliasType int

const (
	AliasDisjoint AliasType = iota
	AliasPartial
	AliasExact
)

func (t AliasType) String() string {
	switch t {
	case AliasDisjoint:
		return "Disjoint"
	case AliasPartial:
		return "Partial"
	case AliasExact:
		return "Exact"
	default:
		return "AliasType(?)"
	}
}

// AliasInfo is what an AliasMap resolves a local refinement name to: the
// physical root buffer it ultimately views, plus the access pattern and
// interior shape through which it views it.
type AliasInfo struct {
	Root   string
	Access []Affine
	Shape  Shape
}

// AliasInfoCompare classifies how two resolved views relate. This is a
// deliberately conservative stand-in for full polyhedral interval-overlap
// analysis: different roots are Disjoint, identical root+access+shape are
// Exact, and anything else on the same root is Partial. That is the
// granularity FuseBlocks needs: only Exact may unify, Partial may block
// a writer, and Disjoint never conflicts.
func AliasInfoCompare(a, b AliasInfo) AliasType {
	if a.Root != b.Root {
		return AliasDisjoint
	}
	if accessEqual(a.Access, b.Access) && shapeEqual(a.Shape, b.Shape) {
		return AliasExact
	}
	return AliasPartial
}

func accessEqual(a, b []Affine) bool {
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

func shapeEqual(a, b Shape) bool {
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i].Size != b.Dims[i].Size {
			return false
		}
	}
	return true
}

// AliasMap resolves a block's local refinement names to root-buffer views,
// hierarchically: a child map's unresolved From names are looked up in its
// parent, all the way to a base map with no parent, where the From name is
// itself taken as the physical root. AliasMap is immutable once built and
// never mutates its parent; child scopes are purely additive, with no
// shared mutable state between sibling scopes.
type AliasMap struct {
	parent  *AliasMap
	entries map[string]AliasInfo
}

// NewAliasMap builds the AliasMap for block, given its enclosing scope
// (nil for the root block).
func NewAliasMap(parent *AliasMap, block *Block) *AliasMap {
	m := &AliasMap{parent: parent, entries: make(map[string]AliasInfo, len(block.Refs))}
	for _, ref := range block.Refs {
		root := ref.From
		if parent != nil {
			if parentInfo, ok := parent.entries[ref.From]; ok {
				root = parentInfo.Root
			}
		}
		m.entries[ref.Into] = AliasInfo{
			Root:   root,
			Access: cloneAffines(ref.Access),
			Shape:  ref.InteriorShape.Clone(),
		}
	}
	return m
}

// At resolves a local refinement (Into) name to its AliasInfo.
func (m *AliasMap) At(name string) (AliasInfo, bool) {
	info, ok := m.entries[name]
	return info, ok
}
