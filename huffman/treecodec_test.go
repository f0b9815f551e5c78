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
	"bytes"
	"errors"
	"testing"
)

func codeLengths(t *Tree) [256]int {
	var lengths [256]int
	for sym, c := range Codes(t) {
		lengths[sym] = len(c)
	}
	return lengths
}

func TestTreeRoundTrip(t *testing.T) {
	all := &Frequencies{}
	for i := range all {
		all[i] = uint64(i%7 + 1)
	}
	two := &Frequencies{}
	two['0'], two['1'] = 5, 9
	one := &Frequencies{}
	one[200] = 3

	tests := []struct {
		name  string
		freqs *Frequencies
		size  int
	}{
		{"single", one, 2},
		{"two", two, 5},
		{"full alphabet", all, 255 + 2*256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(tt.freqs)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			data := SerializeTree(tree)
			if len(data) != tt.size {
				t.Errorf("serialized size = %d, want %d", len(data), tt.size)
			}

			back, err := DeserializeTree(data)
			if err != nil {
				t.Fatalf("DeserializeTree: %v", err)
			}
			if !tree.Equal(back) {
				t.Fatal("deserialized tree differs from original")
			}
			if codeLengths(tree) != codeLengths(back) {
				t.Error("code lengths differ after round trip")
			}
			if !bytes.Equal(SerializeTree(back), data) {
				t.Error("re-serialization differs")
			}
		})
	}
}

func TestSerializeTreeLayout(t *testing.T) {
	tree, err := Build(Count([]byte("aaabbbbcc")))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []byte{tagInternal, tagLeaf, 'b', tagInternal, tagLeaf, 'c', tagLeaf, 'a'}
	if got := SerializeTree(tree); !bytes.Equal(got, want) {
		t.Errorf("SerializeTree = %v, want %v", got, want)
	}
}

func TestDeserializeTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"leaf without symbol", []byte{tagLeaf}},
		{"internal without children", []byte{tagInternal}},
		{"missing right child", []byte{tagInternal, tagLeaf, 'a'}},
		{"unknown tag", []byte{0x07}},
		{"unknown nested tag", []byte{tagInternal, tagLeaf, 'a', 0x02, 'b'}},
		{"duplicate symbol", []byte{tagInternal, tagLeaf, 'a', tagLeaf, 'a'}},
		{"trailing bytes", []byte{tagLeaf, 'a', 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeTree(tt.data)
			if !errors.Is(err, ErrTreeParse) {
				t.Errorf("expected ErrTreeParse, got %v", err)
			}
		})
	}
}

func TestDeserializeTreeTooManyNodes(t *testing.T) {
	// a left-leaning chain of internal nodes that never terminates in time
	data := bytes.Repeat([]byte{tagInternal}, 4096)
	_, err := DeserializeTree(data)
	if !errors.Is(err, ErrTreeParse) {
		t.Errorf("expected ErrTreeParse, got %v", err)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
