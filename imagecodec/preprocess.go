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
package imagecodec

const (
	levels = 64
	step   = 256 / levels

	deltaBias = 128
)

// Quantize maps v onto one of 64 evenly spaced levels.
func Quantize(v byte) byte {
	return v / step * step
}

// QuantizePixels returns a copy of the RGBA buffer pix with R, G and B
// quantized. Alpha is kept as is.
func QuantizePixels(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		out[i] = Quantize(pix[i])
		out[i+1] = Quantize(pix[i+1])
		out[i+2] = Quantize(pix[i+2])
		out[i+3] = pix[i+3]
	}
	return out
}

// DeltaEncode keeps the first value and replaces every other one by its
// difference from the predecessor plus 128, modulo 256.
func DeltaEncode(ch []byte) []byte {
	out := make([]byte, len(ch))
	if len(ch) == 0 {
		return out
	}
	out[0] = ch[0]
	for i := 1; i < len(ch); i++ {
		out[i] = ch[i] - ch[i-1] + deltaBias
	}
	return out
}

// DeltaDecode reverses DeltaEncode.
func DeltaDecode(d []byte) []byte {
	out := make([]byte, len(d))
	if len(d) == 0 {
		return out
	}
	out[0] = d[0]
	for i := 1; i < len(d); i++ {
		out[i] = out[i-1] + d[i] - deltaBias
	}
	return out
}

// SplitChannels separates interleaved RGBA pixels into R, G, B and A planes.
func SplitChannels(pix []byte) [4][]byte {
	n := len(pix) / 4
	var planes [4][]byte
	for c := range planes {
		planes[c] = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 4; c++ {
			planes[c][i] = pix[4*i+c]
		}
	}
	return planes
}

// MergeChannels interleaves four equally long planes back into RGBA pixels.
func MergeChannels(planes [4][]byte) []byte {
	n := len(planes[0])
	pix := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		for c := 0; c < 4; c++ {
			pix[4*i+c] = planes[c][i]
		}
	}
	return pix
}

// vim: ai:ts=8:sw=8:noet:syntax=go
