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

import (
	"fmt"
	"sort"
	"strings"
)

// Code is the path from the root to a leaf; false is a zero (left) edge.
type Code []bool

func (c Code) String() string {
	sb := &strings.Builder{}
	sb.Grow(len(c))
	for _, bit := range c {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// CodeTable maps every byte to its code; symbols absent from the tree have
// a nil entry.
type CodeTable [256]Code

// Codes walks t and returns its code table. A tree that is a single leaf
// gives that symbol the one-bit code "0".
func Codes(t *Tree) *CodeTable {
	table := &CodeTable{}
	root := t.Nodes[t.Root]
	if root.IsLeaf() {
		table[root.Symbol] = Code{false}
		return table
	}

	var fill func(idx int, prefix Code)
	fill = func(idx int, prefix Code) {
		n := t.Nodes[idx]
		if n.IsLeaf() {
			code := make(Code, len(prefix))
			copy(code, prefix)
			table[n.Symbol] = code
			return
		}
		fill(n.Zero, append(prefix, false))
		fill(n.One, append(prefix, true))
	}
	fill(t.Root, make(Code, 0, 16))

	return table
}

// Validate checks that every symbol counted in freqs has a code and that no
// code is a prefix of another.
func (ct *CodeTable) Validate(freqs *Frequencies) error {
	var codes []string
	for sym, code := range ct {
		if freqs != nil && freqs[sym] > 0 && len(code) == 0 {
			return fmt.Errorf("%w: symbol %#02x", ErrUnknownSymbol, sym)
		}
		if code != nil {
			if len(code) == 0 {
				return fmt.Errorf("%w: empty code for %#02x", ErrInvalidCode, sym)
			}
			codes = append(codes, code.String())
		}
	}

	// after sorting, a prefix always sorts right before one of its extensions
	sort.Strings(codes)
	for i := 1; i < len(codes); i++ {
		if strings.HasPrefix(codes[i], codes[i-1]) {
			return fmt.Errorf("%w: %q is a prefix of %q", ErrInvalidCode, codes[i-1], codes[i])
		}
	}

	return nil
}

// EncodedBits returns the length in bits of a stream with the counts of
// freqs coded with ct.
func (ct *CodeTable) EncodedBits(freqs *Frequencies) uint64 {
	var bits uint64
	for sym, count := range freqs {
		bits += count * uint64(len(ct[sym]))
	}
	return bits
}

// vim: ai:ts=8:sw=8:noet:syntax=go
