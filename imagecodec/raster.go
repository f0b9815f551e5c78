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

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultExtension = "png"

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

// Raster is a decoded image file as non-premultiplied RGBA bytes.
type Raster struct {
	Pix           []byte
	Width, Height int
	Format        string
}

// Load decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func Load(r io.Reader) (*Raster, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		// copy rows as is, going through draw would premultiply alpha
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	} else {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}

	return &Raster{
		Pix:    dst.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}

// Store encodes d in the format named by its extension and returns the
// extension actually used. Formats without an encoder are written as PNG.
func Store(w io.Writer, d *Decoded) (string, error) {
	if len(d.Pix) != d.Width*d.Height*4 {
		return "", fmt.Errorf("%w: %d bytes for a %dx%d RGBA image", ErrInvalidImage, len(d.Pix), d.Width, d.Height)
	}
	img := &image.NRGBA{
		Pix:    d.Pix,
		Stride: 4 * d.Width,
		Rect:   image.Rect(0, 0, d.Width, d.Height),
	}

	ext := strings.ToLower(d.Extension)
	var err error
	switch ext {
	case "jpg", "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case "gif":
		err = gif.Encode(w, img, nil)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tif", "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		ext = defaultExtension
		err = png.Encode(w, img)
	}
	if err != nil {
		return "", fmt.Errorf("cannot encode %s: %w", ext, err)
	}

	return ext, nil
}

func knownExtension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := contentTypes[ext]; ok {
		return ext
	}
	return ""
}

// BaseName strips the directory and a known image extension from name.
func BaseName(name string) string {
	if name == "" {
		return ""
	}
	name = filepath.Base(name)
	if knownExtension(name) != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// ExtensionOf returns the lower-cased image extension of name, or "png".
func ExtensionOf(name string) string {
	if ext := knownExtension(name); ext != "" {
		return ext
	}
	return defaultExtension
}

func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return contentTypes[defaultExtension]
}

// vim: ai:ts=8:sw=8:noet:syntax=go
