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

// Dir is a refinement's read/write direction. The zero value is None.
type Dir uint8

const (
	DirNone  Dir = 0
	DirIn    Dir = 1 << 0
	DirOut   Dir = 1 << 1
	DirInOut Dir = DirIn | DirOut
)

// IsWriteDir reports whether d includes a write (Out or InOut).
func IsWriteDir(d Dir) bool {
	return d&DirOut != 0
}

// UnionDir is the lattice join of two directions.
func UnionDir(a, b Dir) Dir {
	return a | b
}

func (d Dir) String() string {
	switch d {
	case DirNone:
		return "None"
	case DirIn:
		return "In"
	case DirOut:
		return "Out"
	case DirInOut:
		return "InOut"
	default:
		return "Dir(?)"
	}
}

// Dim is one dimension of a refinement's interior (tile-local) shape.
type Dim struct {
	Size int64
}

// Shape is the per-dimension interior extents of a refinement.
type Shape struct {
	Dims []Dim
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	out := Shape{Dims: make([]Dim, len(s.Dims))}
	copy(out.Dims, s.Dims)
	return out
}

// Refinement names (Into) a view of an outer buffer (From) with one
// affine access expression and one interior dimension per axis.
type Refinement struct {
	Into          string
	From          string
	Dir           Dir
	Access        []Affine
	InteriorShape Shape
}

// Clone returns a deep copy of r.
func (r Refinement) Clone() Refinement {
	out := Refinement{
		Into:          r.Into,
		From:          r.From,
		Dir:           r.Dir,
		InteriorShape: r.InteriorShape.Clone(),
		Access:        make([]Affine, len(r.Access)),
	}
	for i, a := range r.Access {
		out.Access[i] = a.Clone()
	}
	return out
}
