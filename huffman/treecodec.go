/**
 * Copyright 2022 kmeaw
 *
 * Licensed under the GNU Affero General Public License (AGPL).
 *
 * This program is free software: you can redistribute it and/or modify it
 * under the terms of the GNU Affero General Public License as published by the
 * Free Software Foundation, version 3 of the License.
 *
 * This program is distributed in the hope that it will be useful, but WITHOUT
 * ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 * FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
 * for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */
package huffman

import "fmt"

const (
	tagInternal byte = 0x00
	tagLeaf     byte = 0x01

	// a full binary tree over a byte alphabet has at most 256 leaves
	maxTreeNodes = 2*256 - 1
)

// SerializeTree writes t in pre-order: 0x00 for an internal node followed
// by its zero and one subtrees, 0x01 followed by the symbol for a leaf.
// Frequencies are not stored.
func SerializeTree(t *Tree) []byte {
	out := make([]byte, 0, len(t.Nodes)+t.Leaves())
	var walk func(idx int)
	walk = func(idx int) {
		n := t.Nodes[idx]
		if n.IsLeaf() {
			out = append(out, tagLeaf, n.Symbol)
			return
		}
		out = append(out, tagInternal)
		walk(n.Zero)
		walk(n.One)
	}
	walk(t.Root)
	return out
}

type treeParser struct {
	data []byte
	pos  int
	seen [256]bool
	t    *Tree
}

func (p *treeParser) node() (int, error) {
	if p.pos >= len(p.data) {
		return 0, fmt.Errorf("%w: data ends at offset %d inside a node", ErrTreeParse, p.pos)
	}
	if len(p.t.Nodes) >= maxTreeNodes {
		return 0, fmt.Errorf("%w: more than %d nodes", ErrTreeParse, maxTreeNodes)
	}

	tag := p.data[p.pos]
	p.pos++

	switch tag {
	case tagLeaf:
		if p.pos >= len(p.data) {
			return 0, fmt.Errorf("%w: leaf at offset %d has no symbol", ErrTreeParse, p.pos-1)
		}
		sym := p.data[p.pos]
		p.pos++
		if p.seen[sym] {
			return 0, fmt.Errorf("%w: symbol %#02x appears twice", ErrTreeParse, sym)
		}
		p.seen[sym] = true
		return p.t.addLeaf(sym, 0), nil

	case tagInternal:
		idx := len(p.t.Nodes)
		p.t.Nodes = append(p.t.Nodes, Node{})
		zero, err := p.node()
		if err != nil {
			return 0, err
		}
		one, err := p.node()
		if err != nil {
			return 0, err
		}
		p.t.Nodes[idx].Zero = zero
		p.t.Nodes[idx].One = one
		return idx, nil

	default:
		return 0, fmt.Errorf("%w: unknown tag %#02x at offset %d", ErrTreeParse, tag, p.pos-1)
	}
}

// DeserializeTree rebuilds a tree written by SerializeTree.
func DeserializeTree(data []byte) (*Tree, error) {
	p := &treeParser{
		data: data,
		t:    &Tree{},
	}
	root, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTreeParse, len(data)-p.pos)
	}
	p.t.Root = root
	return p.t, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
