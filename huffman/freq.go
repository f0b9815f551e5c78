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

// Frequencies holds the occurrence count of every byte value.
type Frequencies [256]uint64

// Count builds the frequency table of data in a single pass.
func Count(data []byte) *Frequencies {
	f := &Frequencies{}
	for _, b := range data {
		f[b]++
	}
	return f
}

// Distinct returns the number of symbols with a non-zero count.
func (f *Frequencies) Distinct() int {
	n := 0
	for _, c := range f {
		if c > 0 {
			n++
		}
	}
	return n
}

func (f *Frequencies) Total() uint64 {
	var total uint64
	for _, c := range f {
		total += c
	}
	return total
}

// vim: ai:ts=8:sw=8:noet:syntax=go
