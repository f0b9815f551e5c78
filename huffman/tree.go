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
	"container/heap"
	"fmt"
)

const leaf = -1

// Node is an element of a Tree arena. Leaves have Zero == One == -1 and
// carry a Symbol; internal nodes index their children through Zero (bit 0)
// and One (bit 1) and carry no symbol.
type Node struct {
	Symbol    byte
	Freq      uint64
	Zero, One int
}

func (n Node) IsLeaf() bool {
	return n.Zero == leaf
}

// Tree is a prefix-code tree stored as an arena of nodes with a root index.
type Tree struct {
	Nodes []Node
	Root  int
}

func (t *Tree) addLeaf(sym byte, freq uint64) int {
	t.Nodes = append(t.Nodes, Node{Symbol: sym, Freq: freq, Zero: leaf, One: leaf})
	return len(t.Nodes) - 1
}

func (t *Tree) addInternal(zero, one int) int {
	t.Nodes = append(t.Nodes, Node{
		Freq: t.Nodes[zero].Freq + t.Nodes[one].Freq,
		Zero: zero,
		One:  one,
	})
	return len(t.Nodes) - 1
}

// Leaves returns the number of leaf nodes.
func (t *Tree) Leaves() int {
	n := 0
	for _, node := range t.Nodes {
		if node.IsLeaf() {
			n++
		}
	}
	return n
}

// Equal reports whether t and o have the same shape and leaf symbols.
// Frequencies are not compared.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	var eq func(a, b int) bool
	eq = func(a, b int) bool {
		na, nb := t.Nodes[a], o.Nodes[b]
		if na.IsLeaf() != nb.IsLeaf() {
			return false
		}
		if na.IsLeaf() {
			return na.Symbol == nb.Symbol
		}
		return eq(na.Zero, nb.Zero) && eq(na.One, nb.One)
	}
	return eq(t.Root, o.Root)
}

// nodeQueue is a min-heap of node indices ordered by frequency. Equal
// frequencies pop in index order, i.e. the node inserted first wins.
type nodeQueue struct {
	t     *Tree
	items []int
}

func (q nodeQueue) Len() int { return len(q.items) }
func (q nodeQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	fa, fb := q.t.Nodes[a].Freq, q.t.Nodes[b].Freq
	if fa != fb {
		return fa < fb
	}
	return a < b
}
func (q nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x interface{}) {
	q.items = append(q.items, x.(int))
}

func (q *nodeQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	x := old[n-1]
	q.items = old[0 : n-1]
	return x
}

// Build constructs the Huffman tree for freqs. The two least frequent nodes
// are merged repeatedly, the first popped becoming the zero child. A table
// with a single distinct symbol yields a tree whose root is that leaf.
func Build(freqs *Frequencies) (*Tree, error) {
	distinct := freqs.Distinct()
	if distinct == 0 {
		return nil, fmt.Errorf("%w: no symbols to code", ErrEmptyInput)
	}

	t := &Tree{Nodes: make([]Node, 0, 2*distinct-1)}
	q := &nodeQueue{t: t, items: make([]int, 0, distinct)}
	for sym, count := range freqs {
		if count > 0 {
			q.items = append(q.items, t.addLeaf(byte(sym), count))
		}
	}

	if distinct == 1 {
		t.Root = q.items[0]
		return t, nil
	}

	heap.Init(q)
	for q.Len() > 1 {
		zero := heap.Pop(q).(int)
		one := heap.Pop(q).(int)
		heap.Push(q, t.addInternal(zero, one))
	}
	t.Root = q.items[0]

	return t, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
