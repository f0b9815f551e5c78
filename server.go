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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/yookoala/realpath"
	"golang.org/x/net/websocket"

	"huffpress/container"
	"huffpress/huffman"
	"huffpress/imagecodec"
	"huffpress/textcodec"
)

type Server struct {
	Config  *Config
	Policy  *Policy
	History *History
}

// codecError reports whether err was caused by the uploaded data rather
// than by the server.
func codecError(err error) bool {
	for _, kind := range []error{
		huffman.ErrEmptyInput,
		huffman.ErrTruncatedBitstream,
		huffman.ErrTreeParse,
		container.ErrMalformed,
		container.ErrUnsupportedFormat,
		container.ErrCorruptChannelData,
		imagecodec.ErrInvalidImage,
		image.ErrFormat,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func fail(c *gin.Context, status int, message string, err error) {
	h := gin.H{
		"success": false,
		"message": message,
	}
	if err != nil {
		h["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, h)
}

// receive reads the uploaded file after the policy has accepted it.
func (s *Server) receive(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded", nil)
		return "", nil, false
	}

	if err := s.Policy.Check(c.Request.Context(), fh.Filename, fh.Size); err != nil {
		if errors.Is(err, ErrRejected) {
			fail(c, http.StatusBadRequest, "File rejected", err)
		} else {
			fail(c, http.StatusInternalServerError, "Upload policy failed", err)
		}
		return "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Cannot read upload", err)
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Cannot read upload", err)
		return "", nil, false
	}

	return fh.Filename, data, true
}

func (s *Server) store(o *Outcome) error {
	if err := os.MkdirAll(s.Config.UploadDir, 0777); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Config.UploadDir, o.FileName), o.Data, 0666)
}

var opMessages = map[Operation]string{
	OpCompress:        "File compressed successfully",
	OpDecompress:      "File decompressed successfully",
	OpCompressImage:   "Image compressed successfully",
	OpDecompressImage: "Image decompressed successfully",
}

func (o *Outcome) reply() gin.H {
	h := gin.H{
		"success":      true,
		"message":      opMessages[o.Op],
		"filename":     o.FileName,
		"downloadPath": "/download/" + o.FileName,
	}
	if o.compressing() {
		h["originalSize"] = o.InputSize
		h["compressedSize"] = o.ResultSize
		h["compressionRatio"] = o.RatioString()
	} else {
		h["originalSize"] = o.ResultSize
		h["compressedSize"] = o.InputSize
		h["decompressedSize"] = o.ResultSize
	}
	if o.Op == OpCompressImage || o.Op == OpDecompressImage {
		h["width"] = o.Width
		h["height"] = o.Height
	}
	return h
}

func (s *Server) handle(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, data, ok := s.receive(c)
		if !ok {
			return
		}

		o, err := op.Run(name, data)
		if err != nil {
			log.Printf("%s %q failed: %s", op, name, err)
			s.History.Record(Event{
				Operation:    op,
				Source:       name,
				OriginalSize: int64(len(data)),
				Error:        err.Error(),
			})
			status := http.StatusInternalServerError
			if codecError(err) {
				status = http.StatusUnprocessableEntity
			}
			fail(c, status, fmt.Sprintf("%s failed", op), err)
			return
		}

		if err := s.store(o); err != nil {
			fail(c, http.StatusInternalServerError, "Cannot store result", err)
			return
		}

		s.History.Record(o.Event())
		c.JSON(http.StatusOK, o.reply())
	}
}

func (s *Server) codes(c *gin.Context) {
	name, data, ok := s.receive(c)
	if !ok {
		return
	}

	a, err := textcodec.Analyze(data)
	if err != nil {
		status := http.StatusInternalServerError
		if codecError(err) {
			status = http.StatusUnprocessableEntity
		}
		fail(c, status, "Analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"filename": name,
		"analysis": a,
	})
}

// resolve maps a download name onto a file directly inside the upload
// directory, following symlinks.
func (s *Server) resolve(name string) (string, error) {
	dir, err := realpath.Realpath(s.Config.UploadDir)
	if err != nil {
		return "", err
	}
	p, err := realpath.Realpath(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if filepath.Dir(p) != dir {
		return "", fmt.Errorf("%q is outside of %q", p, dir)
	}
	st, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("%q is not a regular file", p)
	}
	return p, nil
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("filename")
	p, err := s.resolve(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "File not found",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(p)))
	c.File(p)

	if err := os.Remove(p); err != nil {
		log.Printf("cannot clean up %q: %s", p, err)
	}
}

func (s *Server) loadPolicy(c *gin.Context) {
	var p struct {
		Script string `form:"script" json:"script"`
	}

	if err := c.ShouldBind(&p); err != nil {
		fail(c, http.StatusBadRequest, "Bad request", err)
		return
	}

	if err := s.Policy.LoadScript(p.Script); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Cannot load policy", err)
		return
	}

	s.Config.Policy = p.Script
	if err := s.Config.Save(); err != nil {
		log.Printf("cannot save config: %s", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) events(c *gin.Context) {
	handler := websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()

		// The request context outlives a hijacked connection, so a
		// failed read is what tells us the client went away.
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		go func() {
			defer cancel()
			io.Copy(io.Discard, ws)
		}()

		enc := json.NewEncoder(ws)
		ch := s.History.Subscribe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				err := enc.Encode(event)
				if err != nil {
					log.Printf("cannot send event: %s", err)
					return
				}
			}
		}
	})
	handler.ServeHTTP(c.Writer, c.Request)
}

func (s *Server) Routes(r *gin.Engine) {
	api := r.Group("/api")
	for op, endpoint := range operations {
		r.POST(endpoint, s.handle(op))
	}
	api.POST("/codes", s.codes)
	api.POST("/policy", s.loadPolicy)
	api.GET("/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"history": s.History.Recent(),
		})
	})

	r.GET("/download/:filename", s.download)
	r.GET("/events/ws", s.events)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Huffman Compression API is running",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Config":  s.Config,
			"History": s.History.Recent(),
			"Policy":  s.Policy.Script,
		})
	})
}

// vim: ai:ts=8:sw=8:noet:syntax=go
