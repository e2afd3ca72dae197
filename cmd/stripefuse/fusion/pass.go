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

// Options gates a TagStrategy's fusion decisions and labels the result.
type Options struct {
	ParentReqs ir.Tags
	AReqs      ir.Tags
	BReqs      ir.Tags
	FusedSet   ir.Tags
}

// TagStrategy fuses a pair of blocks only when the enclosing block and
// both candidates carry the tags Options requires, and tags the merged
// block with FusedSet on success.
type TagStrategy struct {
	Options Options
}

func NewTagStrategy(opts Options) *TagStrategy {
	return &TagStrategy{Options: opts}
}

func (s *TagStrategy) AttemptFuse(parent, a, b *ir.Block) bool {
	return parent.HasTags(s.Options.ParentReqs) &&
		a.HasTags(s.Options.AReqs) &&
		b.HasTags(s.Options.BReqs)
}

func (s *TagStrategy) OnFailed() {}

func (s *TagStrategy) OnFused(scope *ir.AliasMap, fused, a, b *ir.Block) {
	fused.AddTags(s.Options.FusedSet)
}

// CountingStrategy wraps another Strategy and tallies how many fusion
// attempts were allowed through, how many of those actually fused, and
// how many failed after being allowed, for reporting from the
// CLI without threading counters through the recursive pass by hand.
type CountingStrategy struct {
	Inner    Strategy
	Attempts int
	Fused    int
	Failed   int
}

func NewCountingStrategy(inner Strategy) *CountingStrategy {
	return &CountingStrategy{Inner: inner}
}

func (s *CountingStrategy) AttemptFuse(parent, a, b *ir.Block) bool {
	allowed := s.Inner.AttemptFuse(parent, a, b)
	if allowed {
		s.Attempts++
	}
	return allowed
}

func (s *CountingStrategy) OnFailed() {
	s.Failed++
	s.Inner.OnFailed()
}

func (s *CountingStrategy) OnFused(scope *ir.AliasMap, fused, a, b *ir.Block) {
	s.Fused++
	s.Inner.OnFused(scope, fused, a, b)
}

// Pass applies Inner throughout root's block tree: first to root itself,
// then recursively into whatever nested blocks remain once root settles,
// each evaluated against the AliasMap of its own enclosing scope.
func Pass(root *ir.Block, opts Options) *CountingStrategy {
	counting := NewCountingStrategy(NewTagStrategy(opts))
	rootMap := ir.NewAliasMap(nil, root)
	passRecurse(rootMap, root, counting)
	return counting
}

func passRecurse(scope *ir.AliasMap, block *ir.Block, strategy Strategy) {
	Inner(scope, block, strategy)
	for _, stmt := range block.Stmts {
		inner, ok := stmt.(*ir.BlockStmt)
		if !ok {
			continue
		}
		innerMap := ir.NewAliasMap(scope, inner.Block)
		passRecurse(innerMap, inner.Block, strategy)
	}
}
