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
package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"huffpress/imagecodec"
	"huffpress/textcodec"
)

type Operation string

const (
	OpCompress        Operation = "compress"
	OpDecompress      Operation = "decompress"
	OpCompressImage   Operation = "compress-image"
	OpDecompressImage Operation = "decompress-image"
)

var operations = map[Operation]string{
	OpCompress:        "/api/compress",
	OpDecompress:      "/api/decompress",
	OpCompressImage:   "/api/image/compress",
	OpDecompressImage: "/api/image/decompress",
}

func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if _, ok := operations[op]; !ok {
		return "", fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}

// Endpoint is the API route serving op.
func (op Operation) Endpoint() string {
	return operations[op]
}

// Outcome is the file an operation produced.
type Outcome struct {
	Op         Operation
	Source     string
	FileName   string
	Data       []byte
	InputSize  int64
	ResultSize int64

	// Ratio is set by the compressing operations.
	Ratio         float64
	Width, Height int
}

func baseName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

func stem(name string) string {
	name = baseName(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Run applies op to the contents of the file called name. Output names
// never carry a directory, whatever a container claims.
func (op Operation) Run(name string, data []byte) (*Outcome, error) {
	o := &Outcome{Op: op, Source: name}

	switch op {
	case OpCompress:
		res, err := textcodec.Compress(data, baseName(name))
		if err != nil {
			return nil, err
		}
		o.FileName = stem(name) + ".huff"
		o.Data = res.Container
		o.InputSize = int64(res.OriginalSize)
		o.Ratio = res.Ratio

	case OpDecompress:
		dec, err := textcodec.Decompress(data)
		if err != nil {
			return nil, err
		}
		orig := baseName(dec.FileName)
		if orig == "" {
			orig = stem(name) + ".txt"
		}
		o.FileName = "decompressed_" + orig
		o.Data = dec.Data
		o.InputSize = int64(len(data))

	case OpCompressImage:
		raster, err := imagecodec.Load(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		res, err := imagecodec.Compress(raster.Pix, raster.Width, raster.Height, imagecodec.Options{
			FileName:  baseName(name),
			Extension: imagecodec.ExtensionOf(name),
			FileSize:  int64(len(data)),
		})
		if err != nil {
			return nil, err
		}
		o.FileName = imagecodec.BaseName(baseName(name)) + ".huffimg"
		o.Data = res.Container
		o.InputSize = res.OriginalSize
		o.Ratio = res.Ratio
		o.Width, o.Height = res.Width, res.Height

	case OpDecompressImage:
		dec, err := imagecodec.Decompress(data)
		if err != nil {
			return nil, err
		}
		out := &bytes.Buffer{}
		ext, err := imagecodec.Store(out, dec)
		if err != nil {
			return nil, err
		}
		orig := baseName(dec.FileName)
		if orig == "" {
			orig = stem(name)
		}
		o.FileName = orig + "_decompressed." + ext
		o.Data = out.Bytes()
		o.InputSize = int64(len(data))
		o.Width, o.Height = dec.Width, dec.Height

	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	o.ResultSize = int64(len(o.Data))
	return o, nil
}

// RatioString formats the ratio the way the API reports it.
func (o *Outcome) RatioString() string {
	return fmt.Sprintf("%.2f%%", o.Ratio)
}

func (o *Outcome) compressing() bool {
	return o.Op == OpCompress || o.Op == OpCompressImage
}

func (o *Outcome) Event() Event {
	e := Event{
		Operation:    o.Op,
		Source:       o.Source,
		FileName:     o.FileName,
		OriginalSize: o.InputSize,
		ResultSize:   o.ResultSize,
	}
	if o.compressing() {
		e.Ratio = o.RatioString()
	}
	return e
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// vim: ai:ts=8:sw=8:noet:syntax=go
