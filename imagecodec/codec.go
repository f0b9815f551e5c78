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

// Package imagecodec compresses RGBA pixel buffers into .huffimg containers.
//
// Compression is lossy: colour channels are first quantized to 64 levels.
// Every channel is then delta coded and Huffman coded on its own, so an
// image decodes to exactly its quantized pixels.
package imagecodec

import (
	"errors"
	"fmt"

	"huffpress/container"
	"huffpress/huffman"
)

var ErrInvalidImage = errors.New("imagecodec: invalid pixel buffer")

// Options carry the file details recorded in the container.
type Options struct {
	FileName  string
	Extension string
	// FileSize is the size of the uploaded file; when zero the size of the
	// pixel buffer is used.
	FileSize int64
}

type Result struct {
	Container      []byte
	Width, Height  int
	OriginalSize   int64
	CompressedSize int
	Ratio          float64
}

type Decoded struct {
	Pix           []byte
	Width, Height int
	FileName      string
	Extension     string
}

func codeChannel(deltas []byte) (container.ChannelMeta, []byte, error) {
	tree, err := huffman.Build(huffman.Count(deltas))
	if err != nil {
		return container.ChannelMeta{}, nil, err
	}
	packed, padding, err := huffman.Encode(deltas, huffman.Codes(tree))
	if err != nil {
		return container.ChannelMeta{}, nil, err
	}
	return container.ChannelMeta{
		Tree:       huffman.SerializeTree(tree),
		Padding:    padding,
		Length:     len(deltas),
		ByteLength: len(packed),
	}, packed, nil
}

// Compress quantizes, delta codes and Huffman codes the width x height RGBA
// buffer pix.
func Compress(pix []byte, width, height int, opts Options) (*Result, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: image is %dx%d", huffman.ErrEmptyInput, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d RGBA image", ErrInvalidImage, len(pix), width, height)
	}

	meta := container.NewImageMeta(width, height)
	meta.OriginalName = BaseName(opts.FileName)
	meta.OriginalExtension = opts.Extension
	if meta.OriginalExtension == "" {
		meta.OriginalExtension = ExtensionOf(opts.FileName)
	}
	meta.OriginalFileSize = opts.FileSize
	if meta.OriginalFileSize == 0 {
		meta.OriginalFileSize = int64(len(pix))
	}

	planes := SplitChannels(QuantizePixels(pix))
	var payload []byte
	for c, plane := range planes {
		ch, packed, err := codeChannel(DeltaEncode(plane))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
		meta.Channels = append(meta.Channels, ch)
		payload = append(payload, packed...)
	}

	buf, err := container.Build(container.ImageOrder, &meta, payload)
	if err != nil {
		return nil, err
	}

	return &Result{
		Container:      buf,
		Width:          width,
		Height:         height,
		OriginalSize:   meta.OriginalFileSize,
		CompressedSize: len(buf),
		Ratio:          container.Ratio(int(meta.OriginalFileSize), len(buf)),
	}, nil
}

func decodeChannel(ch container.ChannelMeta, packed []byte) ([]byte, error) {
	tree, err := huffman.DeserializeTree(ch.Tree)
	if err != nil {
		return nil, err
	}
	r, err := huffman.NewBitReader(packed, ch.Padding)
	if err != nil {
		return nil, err
	}
	deltas, err := huffman.Decode(tree, r, ch.Length)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bits follow the last value", container.ErrCorruptChannelData, r.Remaining())
	}
	return DeltaDecode(deltas), nil
}

// Decompress restores the quantized pixels stored by Compress.
func Decompress(buf []byte) (*Decoded, error) {
	var meta container.ImageMeta
	payload, err := container.Parse(container.ImageOrder, buf, &meta)
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(len(payload)); err != nil {
		return nil, err
	}

	var planes [4][]byte
	for c, packed := range meta.SplitChannels(payload) {
		plane, err := decodeChannel(meta.Channels[c], packed)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
		planes[c] = plane
	}

	return &Decoded{
		Pix:       MergeChannels(planes),
		Width:     meta.Width,
		Height:    meta.Height,
		FileName:  meta.OriginalName,
		Extension: meta.OriginalExtension,
	}, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
