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
package container

import (
	"encoding/binary"
	"fmt"
)

const (
	TextMagic   = "HUFF"
	TextVersion = 1

	ImageMagic    = "HUFFIMG"
	ImageVersion  = 1
	ImageChannels = 4
)

var (
	// TextOrder frames .huff files.
	TextOrder binary.ByteOrder = binary.BigEndian

	// ImageOrder frames .huffimg files.
	ImageOrder binary.ByteOrder = binary.LittleEndian
)

// TextMeta describes a compressed text payload.
type TextMeta struct {
	Magic        string `json:"magic"`
	Version      int    `json:"version"`
	Tree         []byte `json:"tree"`
	Padding      uint8  `json:"padding"`
	OriginalSize int    `json:"originalSize"`
	OriginalName string `json:"originalName"`
}

func NewTextMeta() TextMeta {
	return TextMeta{Magic: TextMagic, Version: TextVersion}
}

func (m *TextMeta) Validate() error {
	if m.Magic != TextMagic {
		return fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, m.Magic)
	}
	if m.Version != TextVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedFormat, m.Version)
	}
	if m.OriginalSize < 1 {
		return fmt.Errorf("%w: original size %d", ErrMalformed, m.OriginalSize)
	}
	return nil
}

// ChannelMeta describes one independently coded image channel.
type ChannelMeta struct {
	Tree       []byte `json:"tree"`
	Padding    uint8  `json:"padding"`
	Length     int    `json:"length"`
	ByteLength int    `json:"byteLength"`
}

// ImageMeta describes a compressed RGBA image; Channels are in R, G, B, A
// order and their packed bytes follow the metadata in that order.
type ImageMeta struct {
	Magic             string        `json:"magic"`
	Version           int           `json:"version"`
	Width             int           `json:"width"`
	Height            int           `json:"height"`
	Channels          []ChannelMeta `json:"channels"`
	OriginalName      string        `json:"originalName"`
	OriginalExtension string        `json:"originalExtension"`
	OriginalFileSize  int64         `json:"originalFileSize"`
}

func NewImageMeta(width, height int) ImageMeta {
	return ImageMeta{
		Magic:    ImageMagic,
		Version:  ImageVersion,
		Width:    width,
		Height:   height,
		Channels: make([]ChannelMeta, 0, ImageChannels),
	}
}

// Validate checks the record against the payload that followed it.
func (m *ImageMeta) Validate(payloadLen int) error {
	if m.Magic != ImageMagic {
		return fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, m.Magic)
	}
	if m.Version != ImageVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedFormat, m.Version)
	}
	if m.Width < 1 || m.Height < 1 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformed, m.Width, m.Height)
	}
	if len(m.Channels) != ImageChannels {
		return fmt.Errorf("%w: %d channels, want %d", ErrMalformed, len(m.Channels), ImageChannels)
	}

	pixels := m.Width * m.Height
	if pixels/m.Width != m.Height {
		return fmt.Errorf("%w: dimensions %dx%d overflow", ErrMalformed, m.Width, m.Height)
	}

	total := 0
	for i, ch := range m.Channels {
		if ch.ByteLength < 0 || ch.ByteLength > payloadLen {
			return fmt.Errorf("%w: channel %d claims %d bytes of a %d-byte payload", ErrCorruptChannelData, i, ch.ByteLength, payloadLen)
		}
		if ch.Length != pixels {
			return fmt.Errorf("%w: channel %d holds %d values, want %d", ErrCorruptChannelData, i, ch.Length, pixels)
		}
		total += ch.ByteLength
	}

	if total > payloadLen {
		return fmt.Errorf("%w: channels need %d bytes, payload has %d", ErrCorruptChannelData, total, payloadLen)
	}
	if total < payloadLen {
		return fmt.Errorf("%w: %d bytes trail the channel data", ErrMalformed, payloadLen-total)
	}

	return nil
}

// SplitChannels slices payload into the per-channel packed streams. The
// record must have been validated against payload.
func (m *ImageMeta) SplitChannels(payload []byte) [][]byte {
	out := make([][]byte, len(m.Channels))
	off := 0
	for i, ch := range m.Channels {
		out[i] = payload[off : off+ch.ByteLength]
		off += ch.ByteLength
	}
	return out
}

// vim: ai:ts=8:sw=8:noet:syntax=go
