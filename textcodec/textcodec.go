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

// Package textcodec compresses byte streams into .huff containers.
package textcodec

import (
	"fmt"
	"sort"

	"huffpress/container"
	"huffpress/huffman"
)

type Result struct {
	Container      []byte
	OriginalSize   int
	CompressedSize int
	// Ratio is the share of the original size saved, in percent. It is
	// negative when the container is larger than the input.
	Ratio float64
}

type Decoded struct {
	Data     []byte
	FileName string
}

// Compress codes raw and frames it together with the tree and name.
func Compress(raw []byte, name string) (*Result, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: text is empty", huffman.ErrEmptyInput)
	}

	freqs := huffman.Count(raw)
	tree, err := huffman.Build(freqs)
	if err != nil {
		return nil, err
	}
	codes := huffman.Codes(tree)
	if err := codes.Validate(freqs); err != nil {
		return nil, err
	}

	payload, padding, err := huffman.Encode(raw, codes)
	if err != nil {
		return nil, err
	}

	meta := container.NewTextMeta()
	meta.Tree = huffman.SerializeTree(tree)
	meta.Padding = padding
	meta.OriginalSize = len(raw)
	meta.OriginalName = name

	buf, err := container.Build(container.TextOrder, &meta, payload)
	if err != nil {
		return nil, err
	}

	return &Result{
		Container:      buf,
		OriginalSize:   len(raw),
		CompressedSize: len(buf),
		Ratio:          container.Ratio(len(raw), len(buf)),
	}, nil
}

// Decompress restores the bytes and file name stored by Compress.
func Decompress(buf []byte) (*Decoded, error) {
	var meta container.TextMeta
	payload, err := container.Parse(container.TextOrder, buf, &meta)
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	tree, err := huffman.DeserializeTree(meta.Tree)
	if err != nil {
		return nil, err
	}
	r, err := huffman.NewBitReader(payload, meta.Padding)
	if err != nil {
		return nil, err
	}
	data, err := huffman.Decode(tree, r, meta.OriginalSize)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bits follow the last symbol", container.ErrMalformed, r.Remaining())
	}

	return &Decoded{Data: data, FileName: meta.OriginalName}, nil
}

// Entry is one row of a code table report.
type Entry struct {
	Symbol byte   `json:"symbol"`
	Count  uint64 `json:"count"`
	Code   string `json:"code"`
}

type Analysis struct {
	Entries     []Entry `json:"entries"`
	TotalCount  uint64  `json:"totalCount"`
	EncodedBits uint64  `json:"encodedBits"`
	TreeBytes   int     `json:"treeBytes"`
}

// Analyze reports the code every symbol of raw would be given, most frequent
// symbols first.
func Analyze(raw []byte) (*Analysis, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: text is empty", huffman.ErrEmptyInput)
	}

	freqs := huffman.Count(raw)
	tree, err := huffman.Build(freqs)
	if err != nil {
		return nil, err
	}
	codes := huffman.Codes(tree)

	a := &Analysis{
		Entries:     make([]Entry, 0, freqs.Distinct()),
		TotalCount:  freqs.Total(),
		EncodedBits: codes.EncodedBits(freqs),
		TreeBytes:   len(huffman.SerializeTree(tree)),
	}
	for sym, count := range freqs {
		if count == 0 {
			continue
		}
		a.Entries = append(a.Entries, Entry{
			Symbol: byte(sym),
			Count:  count,
			Code:   codes[sym].String(),
		})
	}
	sort.SliceStable(a.Entries, func(i, j int) bool {
		return a.Entries[i].Count > a.Entries[j].Count
	})

	return a, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
