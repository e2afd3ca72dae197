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

// Index is a named induction variable with a nonnegative integer range
// and an affine expression in the enclosing block's indices: the
// "copied-down" affine used when tiling splits a loop into an outer/inner
// pair (the inner placeholder's Affine names the outer index it reads
// through).
type Index struct {
	Name   string
	Range  int64
	Affine Affine
}

// Clone returns a deep copy of idx.
func (idx Index) Clone() Index {
	return Index{Name: idx.Name, Range: idx.Range, Affine: idx.Affine.Clone()}
}

// Equal reports whether two indices are identical in name, range and
// affine. IdxsEqual uses this for the ordered-sequence comparison
// FuseBlocks requires.
func (idx Index) Equal(other Index) bool {
	return idx.Name == other.Name && idx.Range == other.Range && idx.Affine.Equal(other.Affine)
}
