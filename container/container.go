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

// Package container frames compressed payloads: a 4-byte metadata length,
// a JSON metadata record, then the packed payload bytes.
package container

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrMalformed          = errors.New("container: malformed container")
	ErrUnsupportedFormat  = errors.New("container: unsupported format")
	ErrCorruptChannelData = errors.New("container: corrupt channel data")
)

const lengthSize = 4

// Build encodes meta as JSON and frames it with payload. The metadata length
// is written in order.
func Build(order binary.ByteOrder, meta interface{}, payload []byte) ([]byte, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal metadata: %w", err)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("metadata of %d bytes does not fit the length field", len(data))
	}

	out := make([]byte, lengthSize, lengthSize+len(data)+len(payload))
	order.PutUint32(out, uint32(len(data)))
	out = append(out, data...)
	out = append(out, payload...)

	return out, nil
}

// Parse splits buf into its metadata, decoded into meta, and the payload.
// The returned payload aliases buf.
func Parse(order binary.ByteOrder, buf []byte, meta interface{}) ([]byte, error) {
	if len(buf) < lengthSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for the length field", ErrMalformed, len(buf))
	}

	n := uint64(order.Uint32(buf))
	rest := buf[lengthSize:]
	if n > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: metadata length %d exceeds the %d remaining bytes", ErrMalformed, n, len(rest))
	}

	if err := json.Unmarshal(rest[:n], meta); err != nil {
		return nil, fmt.Errorf("%w: cannot decode metadata: %s", ErrMalformed, err)
	}

	return rest[n:], nil
}

// Ratio returns the percentage saved by shrinking original bytes to
// compressed bytes.
func Ratio(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	return (1 - float64(compressed)/float64(original)) * 100
}

// vim: ai:ts=8:sw=8:noet:syntax=go
