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

// Package huffman implements the byte-alphabet Huffman engine shared by the
// text and image codecs: frequency counting, tree construction, code
// generation, tree serialization and bit packing.
package huffman

import "errors"

var (
	ErrEmptyInput         = errors.New("huffman: empty input")
	ErrTruncatedBitstream = errors.New("huffman: truncated bitstream")
	ErrTreeParse          = errors.New("huffman: malformed tree")
	ErrUnknownSymbol      = errors.New("huffman: symbol has no code")
	ErrInvalidCode        = errors.New("huffman: code table is not a prefix code")
)

// vim: ai:ts=8:sw=8:noet:syntax=go
