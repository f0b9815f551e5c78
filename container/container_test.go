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
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestBuildParse(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		meta := NewTextMeta()
		meta.Tree = []byte{0x01, 'a'}
		meta.Padding = 3
		meta.OriginalSize = 5
		meta.OriginalName = "notes.txt"
		payload := []byte{0x00}

		buf, err := Build(order, &meta, payload)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		n := order.Uint32(buf)
		if int(n) != len(buf)-lengthSize-len(payload) {
			t.Errorf("length field %d does not match metadata size %d", n, len(buf)-lengthSize-len(payload))
		}

		var back TextMeta
		rest, err := Parse(order, buf, &back)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !bytes.Equal(rest, payload) {
			t.Errorf("payload = %v, want %v", rest, payload)
		}
		if back.OriginalName != meta.OriginalName || back.Padding != 3 || !bytes.Equal(back.Tree, meta.Tree) {
			t.Errorf("metadata round trip: got %+v, want %+v", back, meta)
		}
		if err := back.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	good, err := Build(binary.BigEndian, map[string]int{"padding": 1}, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tooLong := append([]byte(nil), good...)
	binary.BigEndian.PutUint32(tooLong, uint32(len(good)))

	badJSON := append([]byte(nil), good...)
	badJSON[lengthSize] = '['

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short length", []byte{0, 0, 1}},
		{"length beyond buffer", tooLong},
		{"max length", []byte{0xff, 0xff, 0xff, 0xff, '{', '}'}},
		{"bad json", badJSON},
		{"metadata cut", good[:lengthSize+2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta map[string]int
			if _, err := Parse(binary.BigEndian, tt.buf, &meta); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestTextMetaValidate(t *testing.T) {
	m := NewTextMeta()
	m.OriginalSize = 1
	m.Magic = "ZIP"
	if err := m.Validate(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("wrong magic: expected ErrUnsupportedFormat, got %v", err)
	}
	m = NewTextMeta()
	m.OriginalSize = 1
	m.Version = 2
	if err := m.Validate(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("wrong version: expected ErrUnsupportedFormat, got %v", err)
	}
}

func imageMeta(byteLengths ...int) *ImageMeta {
	m := NewImageMeta(2, 3)
	for _, n := range byteLengths {
		m.Channels = append(m.Channels, ChannelMeta{Length: 6, ByteLength: n})
	}
	return &m
}

func TestImageMetaValidate(t *testing.T) {
	if err := imageMeta(1, 2, 3, 4).Validate(10); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	noMagic := imageMeta(1, 1, 1, 1)
	noMagic.Magic = ""
	newer := imageMeta(1, 1, 1, 1)
	newer.Version = 2
	badLength := imageMeta(1, 1, 1, 1)
	badLength.Channels[2].Length = 5
	flat := imageMeta(1, 1, 1, 1)
	flat.Height = 0

	tests := []struct {
		name    string
		meta    *ImageMeta
		payload int
		want    error
	}{
		{"missing magic", noMagic, 4, ErrUnsupportedFormat},
		{"version", newer, 4, ErrUnsupportedFormat},
		{"three channels", imageMeta(1, 1, 1), 3, ErrMalformed},
		{"zero height", flat, 4, ErrMalformed},
		{"sum exceeds payload", imageMeta(1, 2, 3, 4), 9, ErrCorruptChannelData},
		{"negative length", imageMeta(-1, 2, 3, 4), 8, ErrCorruptChannelData},
		{"value count", badLength, 4, ErrCorruptChannelData},
		{"trailing payload", imageMeta(1, 1, 1, 1), 5, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.meta.Validate(tt.payload); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSplitChannels(t *testing.T) {
	m := imageMeta(1, 0, 2, 3)
	parts := m.SplitChannels([]byte{1, 2, 3, 4, 5, 6})
	want := [][]byte{{1}, {}, {2, 3}, {4, 5, 6}}
	for i := range want {
		if !bytes.Equal(parts[i], want[i]) {
			t.Errorf("channel %d = %v, want %v", i, parts[i], want[i])
		}
	}
}

func TestRatio(t *testing.T) {
	if r := Ratio(200, 50); r != 75 {
		t.Errorf("Ratio(200, 50) = %v, want 75", r)
	}
	if r := Ratio(10, 20); r != -100 {
		t.Errorf("Ratio(10, 20) = %v, want -100", r)
	}
	if r := Ratio(0, 20); r != 0 {
		t.Errorf("Ratio(0, 20) = %v, want 0", r)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
