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
	"fmt"

	"github.com/icza/bitio"
)

// BitWriter accumulates bits most-significant-bit first.
type BitWriter struct {
	buf *bytes.Buffer
	w   *bitio.Writer
	n   uint64
}

func NewBitWriter() *BitWriter {
	buf := &bytes.Buffer{}
	return &BitWriter{
		buf: buf,
		w:   bitio.NewWriter(buf),
	}
}

func (w *BitWriter) WriteBit(bit bool) error {
	if err := w.w.WriteBool(bit); err != nil {
		return err
	}
	w.n++
	return nil
}

func (w *BitWriter) WriteCode(c Code) error {
	for _, bit := range c {
		if err := w.WriteBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of bits written so far, padding excluded.
func (w *BitWriter) Len() uint64 {
	return w.n
}

// Finish pads the stream with zero bits up to a byte boundary and returns
// the packed bytes together with the number of padding bits (0-7).
func (w *BitWriter) Finish() ([]byte, uint8, error) {
	padding, err := w.w.Align()
	if err != nil {
		return nil, 0, err
	}
	if err := w.w.Close(); err != nil {
		return nil, 0, err
	}
	return w.buf.Bytes(), padding, nil
}

// BitReader reads back the meaningful bits of a packed stream, i.e. all
// bits except the trailing padding.
type BitReader struct {
	r         *bitio.Reader
	remaining uint64
}

func NewBitReader(data []byte, padding uint8) (*BitReader, error) {
	if padding > 7 {
		return nil, fmt.Errorf("%w: %d padding bits, at most 7 allowed", ErrTruncatedBitstream, padding)
	}
	total := uint64(len(data)) * 8
	if uint64(padding) > total {
		return nil, fmt.Errorf("%w: %d padding bits in a %d-bit stream", ErrTruncatedBitstream, padding, total)
	}
	return &BitReader{
		r:         bitio.NewReader(bytes.NewReader(data)),
		remaining: total - uint64(padding),
	}, nil
}

func (r *BitReader) ReadBit() (bool, error) {
	if r.remaining == 0 {
		return false, fmt.Errorf("%w: stream exhausted", ErrTruncatedBitstream)
	}
	bit, err := r.r.ReadBool()
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrTruncatedBitstream, err)
	}
	r.remaining--
	return bit, nil
}

// Remaining returns the number of meaningful bits not read yet.
func (r *BitReader) Remaining() uint64 {
	return r.remaining
}

// Pack packs bits into bytes MSB first and reports the padding appended.
func Pack(bits []bool) ([]byte, uint8, error) {
	w := NewBitWriter()
	for _, bit := range bits {
		if err := w.WriteBit(bit); err != nil {
			return nil, 0, err
		}
	}
	return w.Finish()
}

// Unpack is the inverse of Pack. It fails if padding exceeds the number of
// bits in data.
func Unpack(data []byte, padding uint8) ([]bool, error) {
	r, err := NewBitReader(data, padding)
	if err != nil {
		return nil, err
	}
	bits := make([]bool, 0, r.Remaining())
	for r.Remaining() > 0 {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		bits = append(bits, bit)
	}
	return bits, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
