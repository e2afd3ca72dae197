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
	"sort"
	"strconv"
	"strings"
)

// PrintBlock renders b in the textual form ParseBlock accepts.
func PrintBlock(b *Block) string {
	var sb strings.Builder
	writeBlock(&sb, b, 0)
	sb.WriteByte('\n')
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func writeBlock(sb *strings.Builder, b *Block, depth int) {
	indent(sb, depth)
	fmt.Fprintf(sb, "(block %s", quote(b.Name))

	if len(b.Tags) > 0 {
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteString("(tags")
		for _, t := range sortedKeys(b.Tags) {
			sb.WriteByte(' ')
			sb.WriteString(t)
		}
		sb.WriteByte(')')
	}

	if len(b.Idxs) > 0 {
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteString("(idxs")
		for _, idx := range b.Idxs {
			sb.WriteByte(' ')
			writeIdx(sb, idx)
		}
		sb.WriteByte(')')
	}

	if len(b.Constraints) > 0 {
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteString("(constraints")
		for _, c := range b.Constraints {
			sb.WriteByte(' ')
			writeAffine(sb, c)
		}
		sb.WriteByte(')')
	}

	if len(b.Refs) > 0 {
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteString("(refs")
		for _, r := range b.Refs {
			sb.WriteByte('\n')
			indent(sb, depth+2)
			writeRef(sb, r)
		}
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteByte(')')
	}

	if len(b.Stmts) > 0 {
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteString("(stmts")
		for _, s := range b.Stmts {
			sb.WriteByte('\n')
			writeStmt(sb, s, depth+2)
		}
		sb.WriteByte('\n')
		indent(sb, depth+1)
		sb.WriteByte(')')
	}

	sb.WriteByte(')')
}

func writeIdx(sb *strings.Builder, idx Index) {
	fmt.Fprintf(sb, "(idx %s %d ", quote(idx.Name), idx.Range)
	writeAffine(sb, idx.Affine)
	sb.WriteByte(')')
}

func writeAffine(sb *strings.Builder, a Affine) {
	sb.WriteString("(affine")
	if k := a.ConstantValue(); k != 0 {
		fmt.Fprintf(sb, " %d", k)
	}
	for _, v := range a.Vars() {
		fmt.Fprintf(sb, " (%d %s)", a.Coef(v), v)
	}
	sb.WriteByte(')')
}

func writeRef(sb *strings.Builder, r Refinement) {
	fmt.Fprintf(sb, "(ref %s %s %s (access", quote(r.Into), quote(r.From), r.Dir)
	for _, a := range r.Access {
		sb.WriteByte(' ')
		writeAffine(sb, a)
	}
	sb.WriteString(") (shape")
	for _, d := range r.InteriorShape.Dims {
		fmt.Fprintf(sb, " %d", d.Size)
	}
	sb.WriteString("))")
}

func writeStmt(sb *strings.Builder, s Statement, depth int) {
	indent(sb, depth)
	switch st := s.(type) {
	case *Load:
		fmt.Fprintf(sb, "(load %s %s)", quote(st.Into), quote(st.From))
	case *Store:
		fmt.Fprintf(sb, "(store %s %s)", quote(st.Into), quote(st.From))
	case *Constant:
		fmt.Fprintf(sb, "(const %s %d)", quote(st.Name), st.Value)
	case *Intrinsic:
		fmt.Fprintf(sb, "(intrinsic %s %s %s)", quote(st.Op), writeNamedStrings("in", st.Inputs), writeNamedStrings("out", st.Outputs))
	case *Special:
		fmt.Fprintf(sb, "(special %s %s %s)", quote(st.Op), writeNamedStrings("in", st.Inputs), writeNamedStrings("out", st.Outputs))
	case *BlockStmt:
		writeBlock(sb, st.Block, depth)
	default:
		panic(fmt.Sprintf("ir: print: unknown statement type %T", s))
	}
}

func writeNamedStrings(name string, vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = quote(v)
	}
	return fmt.Sprintf("(%s %s)", name, strings.Join(parts, " "))
}

func quote(s string) string {
	return strconv.Quote(s)
}

func sortedKeys(m Tags) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
