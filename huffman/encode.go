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

// Encode codes every byte of data with table and packs the result.
func Encode(data []byte, table *CodeTable) ([]byte, uint8, error) {
	w := NewBitWriter()
	for i, b := range data {
		code := table[b]
		if len(code) == 0 {
			return nil, 0, fmt.Errorf("%w: %#02x at offset %d", ErrUnknownSymbol, b, i)
		}
		if err := w.WriteCode(code); err != nil {
			return nil, 0, err
		}
	}
	return w.Finish()
}

// Decode reads exactly n symbols from r by walking t. When the root itself
// is a leaf every symbol is coded as a single zero bit.
func Decode(t *Tree, r *BitReader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative symbol count %d", ErrTruncatedBitstream, n)
	}
	// every symbol takes at least one bit
	capacity := uint64(n)
	if capacity > r.Remaining() {
		capacity = r.Remaining()
	}
	out := make([]byte, 0, capacity)
	root := t.Nodes[t.Root]

	if root.IsLeaf() {
		for len(out) < n {
			if _, err := r.ReadBit(); err != nil {
				return nil, fmt.Errorf("symbol %d of %d: %w", len(out), n, err)
			}
			out = append(out, root.Symbol)
		}
		return out, nil
	}

	for len(out) < n {
		node := root
		for !node.IsLeaf() {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("symbol %d of %d: %w", len(out), n, err)
			}
			if bit {
				node = t.Nodes[node.One]
			} else {
				node = t.Nodes[node.Zero]
			}
		}
		out = append(out, node.Symbol)
	}

	return out, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
