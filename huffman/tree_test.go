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
	"errors"
	"testing"
)

func TestCount(t *testing.T) {
	f := Count([]byte("aaabbbbcc"))
	if f['a'] != 3 || f['b'] != 4 || f['c'] != 2 {
		t.Errorf("got a=%d b=%d c=%d, want 3 4 2", f['a'], f['b'], f['c'])
	}
	if f.Distinct() != 3 {
		t.Errorf("Distinct() = %d, want 3", f.Distinct())
	}
	if f.Total() != 9 {
		t.Errorf("Total() = %d, want 9", f.Total())
	}
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(&Frequencies{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildSingleSymbol(t *testing.T) {
	f := &Frequencies{}
	f['x'] = 42

	tree, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := tree.Nodes[tree.Root]
	if !root.IsLeaf() || root.Symbol != 'x' {
		t.Fatalf("root = %+v, want leaf 'x'", root)
	}

	codes := Codes(tree)
	if got := codes['x'].String(); got != "0" {
		t.Errorf("code for 'x' = %q, want \"0\"", got)
	}
}

func TestBuildScenario(t *testing.T) {
	// a:3 b:4 c:2 -> c and a merge first (c popped first, so c is the zero
	// child), then b (4) and the merged node (5)
	tree, err := Build(Count([]byte("aaabbbbcc")))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	root := tree.Nodes[tree.Root]
	if root.Freq != 9 {
		t.Errorf("root frequency = %d, want 9", root.Freq)
	}

	codes := Codes(tree)
	want := map[byte]string{'b': "0", 'c': "10", 'a': "11"}
	for sym, code := range want {
		if got := codes[sym].String(); got != code {
			t.Errorf("code for %q = %q, want %q", sym, got, code)
		}
	}

	if bits := codes.EncodedBits(Count([]byte("aaabbbbcc"))); bits != 14 {
		t.Errorf("EncodedBits = %d, want 14", bits)
	}
}

func TestBuildDeterministic(t *testing.T) {
	f := &Frequencies{}
	for i := range f {
		f[i] = uint64(1 + i%5)
	}

	first, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Build(f)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !first.Equal(again) {
			t.Fatalf("run %d produced a different tree", i)
		}
	}
}

func TestBuildShapes(t *testing.T) {
	f := &Frequencies{}
	for i := range f {
		f[i] = uint64(i + 1)
	}

	tree, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Leaves() != 256 {
		t.Errorf("Leaves() = %d, want 256", tree.Leaves())
	}
	if len(tree.Nodes) != 511 {
		t.Errorf("len(Nodes) = %d, want 511", len(tree.Nodes))
	}
	if tree.Nodes[tree.Root].Freq != f.Total() {
		t.Errorf("root frequency %d != total %d", tree.Nodes[tree.Root].Freq, f.Total())
	}
	for i, n := range tree.Nodes {
		if n.IsLeaf() {
			continue
		}
		if n.Freq != tree.Nodes[n.Zero].Freq+tree.Nodes[n.One].Freq {
			t.Errorf("node %d frequency %d is not the sum of its children", i, n.Freq)
		}
	}
}

func TestBuildDeepTree(t *testing.T) {
	// Fibonacci counts give the most unbalanced tree possible
	f := &Frequencies{}
	a, b := uint64(1), uint64(1)
	for i := 0; i < 40; i++ {
		f[i] = a
		a, b = b, a+b
	}

	tree, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	codes := Codes(tree)
	if err := codes.Validate(f); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	longest := 0
	for _, c := range codes {
		if len(c) > longest {
			longest = len(c)
		}
	}
	if longest != 39 {
		t.Errorf("longest code = %d bits, want 39", longest)
	}
}

func TestCodesPrefixFree(t *testing.T) {
	inputs := []string{
		"ab",
		"hello, world",
		"the quick brown fox jumps over the lazy dog",
	}
	for _, in := range inputs {
		f := Count([]byte(in))
		tree, err := Build(f)
		if err != nil {
			t.Fatalf("Build(%q): %v", in, err)
		}
		codes := Codes(tree)
		if err := codes.Validate(f); err != nil {
			t.Errorf("Validate(%q): %v", in, err)
		}
		for sym := range f {
			if f[sym] == 0 && codes[sym] != nil {
				t.Errorf("%q: absent symbol %#02x has code %s", in, sym, codes[sym])
			}
		}
	}
}

func TestValidateRejects(t *testing.T) {
	table := &CodeTable{}
	table['a'] = Code{false}
	table['b'] = Code{false, true}
	if err := table.Validate(nil); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode for prefix pair, got %v", err)
	}

	table = &CodeTable{}
	table['a'] = Code{false}
	f := Count([]byte("ab"))
	if err := table.Validate(f); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol for missing code, got %v", err)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
