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

// Textual IR format (a small s-expression dialect, close in spirit to
// Stripe's own streamed ".tile" text form):
//
//	(block "name" (tags t0 t1)
//	  (idxs (idx "i" 16 (affine)) ...)
//	  (constraints (affine (1 i) -1) ...)
//	  (refs (ref "into" "from" InOut (access (affine (1 i))) (shape 16)) ...)
//	  (stmts
//	    (load "into" "from")
//	    (store "into" "from")
//	    (const "name" 5)
//	    (intrinsic "Add" (in "x" "y") (out "z"))
//	    (special "Copy" (in "a") (out "b"))
//	    (block ...)))
//
// Every section (tags/idxs/constraints/refs/stmts) is optional and may be
// omitted entirely from a block that doesn't need it.
package ir

import "fmt"

// ParseBlock parses a single textual Block.
func ParseBlock(src string) (*Block, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	b, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("ir: parse: line %d: trailing input after top-level block", p.tok.line)
	}
	return b, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(kind tokKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, fmt.Errorf("ir: parse: line %d: expected %s", p.tok.line, what)
	}
	t := p.tok
	return t, p.advance()
}

func (p *parser) expectIdentText(text string) error {
	t, err := p.expect(tokIdent, fmt.Sprintf("identifier %q", text))
	if err != nil {
		return err
	}
	if t.text != text {
		return fmt.Errorf("ir: parse: line %d: expected %q, got %q", t.line, text, t.text)
	}
	return nil
}

func (p *parser) parseString() (string, error) {
	t, err := p.expect(tokString, "string literal")
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func (p *parser) parseInt() (int64, error) {
	t, err := p.expect(tokNumber, "integer literal")
	if err != nil {
		return 0, err
	}
	return parseInt64(t.text)
}

func (p *parser) parseBlock() (*Block, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	if err := p.expectIdentText("block"); err != nil {
		return nil, err
	}
	name, err := p.parseString()
	if err != nil {
		return nil, err
	}
	b := NewBlock(name)
	if err := p.parseBlockSections(b); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')' closing block"); err != nil {
		return nil, err
	}
	return b, nil
}

// parseBlockSections parses the optional tags/idxs/constraints/refs/stmts
// sections into b, in whatever order they appear, stopping at the block's
// closing ')'.
func (p *parser) parseBlockSections(b *Block) error {
	for p.tok.kind == tokLParen {
		head, err := p.peekSectionHead()
		if err != nil {
			return err
		}
		switch head {
		case "tags":
			if b.Tags, err = p.parseTags(); err != nil {
				return err
			}
		case "idxs":
			if b.Idxs, err = p.parseIdxs(); err != nil {
				return err
			}
		case "constraints":
			if b.Constraints, err = p.parseConstraints(); err != nil {
				return err
			}
		case "refs":
			if b.Refs, err = p.parseRefs(); err != nil {
				return err
			}
		case "stmts":
			if b.Stmts, err = p.parseStmts(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("ir: parse: line %d: unknown block section %q", p.tok.line, head)
		}
	}
	return nil
}

// peekSectionHead consumes the opening '(' and the section keyword that
// follows it, returning the keyword; callers are left positioned right
// after the keyword, ready to parse the section body.
func (p *parser) peekSectionHead() (string, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return "", err
	}
	t, err := p.expect(tokIdent, "section keyword")
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func (p *parser) parseTags() (Tags, error) {
	tags := Tags{}
	for p.tok.kind == tokIdent {
		tags[p.tok.text] = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	_, err := p.expect(tokRParen, "')' closing tags")
	return tags, err
}

func (p *parser) parseIdxs() ([]Index, error) {
	var idxs []Index
	for p.tok.kind == tokLParen {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		if err := p.expectIdentText("idx"); err != nil {
			return nil, err
		}
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		rng, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokLParen, "'(' opening affine"); err != nil {
			return nil, err
		}
		aff, err := p.parseAffine()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing affine"); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing idx"); err != nil {
			return nil, err
		}
		idxs = append(idxs, Index{Name: name, Range: rng, Affine: aff})
	}
	_, err := p.expect(tokRParen, "')' closing idxs")
	return idxs, err
}

func (p *parser) parseAffine() (Affine, error) {
	if err := p.expectIdentText("affine"); err != nil {
		return Affine{}, err
	}
	a := NewAffine(0)
	for p.tok.kind == tokNumber || p.tok.kind == tokLParen {
		if p.tok.kind == tokNumber {
			k, err := p.parseInt()
			if err != nil {
				return Affine{}, err
			}
			a = a.Add(NewAffine(k))
			continue
		}
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return Affine{}, err
		}
		coef, err := p.parseInt()
		if err != nil {
			return Affine{}, err
		}
		name, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return Affine{}, err
		}
		if _, err := p.expect(tokRParen, "')' closing affine term"); err != nil {
			return Affine{}, err
		}
		a = a.Add(NewAffineVar(name.text, coef))
	}
	return a, nil
}

func (p *parser) parseConstraints() ([]Affine, error) {
	var out []Affine
	for p.tok.kind == tokLParen {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		a, err := p.parseAffine()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing affine"); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	_, err := p.expect(tokRParen, "')' closing constraints")
	return out, err
}

func (p *parser) parseRefs() ([]Refinement, error) {
	var refs []Refinement
	for p.tok.kind == tokLParen {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		if err := p.expectIdentText("ref"); err != nil {
			return nil, err
		}
		into, err := p.parseString()
		if err != nil {
			return nil, err
		}
		from, err := p.parseString()
		if err != nil {
			return nil, err
		}
		dirTok, err := p.expect(tokIdent, "direction")
		if err != nil {
			return nil, err
		}
		dir, err := parseDir(dirTok.text)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokLParen, "'(' opening access"); err != nil {
			return nil, err
		}
		if err := p.expectIdentText("access"); err != nil {
			return nil, err
		}
		var access []Affine
		for p.tok.kind == tokLParen {
			if _, err := p.expect(tokLParen, "'('"); err != nil {
				return nil, err
			}
			a, err := p.parseAffine()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, "')' closing affine"); err != nil {
				return nil, err
			}
			access = append(access, a)
		}
		if _, err := p.expect(tokRParen, "')' closing access"); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokLParen, "'(' opening shape"); err != nil {
			return nil, err
		}
		if err := p.expectIdentText("shape"); err != nil {
			return nil, err
		}
		var dims []Dim
		for p.tok.kind == tokNumber {
			sz, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			dims = append(dims, Dim{Size: sz})
		}
		if _, err := p.expect(tokRParen, "')' closing shape"); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing ref"); err != nil {
			return nil, err
		}
		refs = append(refs, Refinement{Into: into, From: from, Dir: dir, Access: access, InteriorShape: Shape{Dims: dims}})
	}
	_, err := p.expect(tokRParen, "')' closing refs")
	return refs, err
}

func parseDir(s string) (Dir, error) {
	switch s {
	case "None":
		return DirNone, nil
	case "In":
		return DirIn, nil
	case "Out":
		return DirOut, nil
	case "InOut":
		return DirInOut, nil
	default:
		return 0, fmt.Errorf("ir: parse: unknown direction %q", s)
	}
}

func (p *parser) parseStmts() ([]Statement, error) {
	var stmts []Statement
	for p.tok.kind == tokLParen {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	_, err := p.expect(tokRParen, "')' closing stmts")
	return stmts, err
}

func (p *parser) parseStmt() (Statement, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	head, err := p.expect(tokIdent, "statement keyword")
	if err != nil {
		return nil, err
	}
	switch head.text {
	case "load":
		into, err := p.parseString()
		if err != nil {
			return nil, err
		}
		from, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing load"); err != nil {
			return nil, err
		}
		return &Load{Into: into, From: from}, nil
	case "store":
		into, err := p.parseString()
		if err != nil {
			return nil, err
		}
		from, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing store"); err != nil {
			return nil, err
		}
		return &Store{Into: into, From: from}, nil
	case "const":
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		val, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing const"); err != nil {
			return nil, err
		}
		return &Constant{Name: name, Value: val}, nil
	case "intrinsic", "special":
		op, err := p.parseString()
		if err != nil {
			return nil, err
		}
		ins, err := p.parseNamedStrings("in")
		if err != nil {
			return nil, err
		}
		outs, err := p.parseNamedStrings("out")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing "+head.text); err != nil {
			return nil, err
		}
		if head.text == "intrinsic" {
			return &Intrinsic{Op: op, Inputs: ins, Outputs: outs}, nil
		}
		return &Special{Op: op, Inputs: ins, Outputs: outs}, nil
	case "block":
		// The leading '(' and "block" keyword were consumed while
		// dispatching on the statement head; pick up from the name.
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		b := NewBlock(name)
		if err := p.parseBlockSections(b); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')' closing nested block"); err != nil {
			return nil, err
		}
		return &BlockStmt{Block: b}, nil
	default:
		return nil, fmt.Errorf("ir: parse: line %d: unknown statement keyword %q", head.line, head.text)
	}
}

func (p *parser) parseNamedStrings(name string) ([]string, error) {
	if _, err := p.expect(tokLParen, "'(' opening "+name); err != nil {
		return nil, err
	}
	if err := p.expectIdentText(name); err != nil {
		return nil, err
	}
	var out []string
	for p.tok.kind == tokString {
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	_, err := p.expect(tokRParen, "')' closing "+name)
	return out, err
}
