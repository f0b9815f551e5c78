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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/context/ctxhttp"
)

// Client runs operations on a remote huffpress server.
type Client struct {
	Base *url.URL

	h *http.Client
}

func NewClient(base string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("cannot parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server URL %q", base)
	}
	return &Client{
		Base: u,
		h: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

type APIError struct {
	req  *http.Request
	resp *http.Response
	data []byte
	err  error
}

func (e APIError) Error() string {
	b := &bytes.Buffer{}
	if e.req != nil {
		fmt.Fprintf(b, "error while calling %s: ", e.req.URL)
	}
	if e.resp != nil {
		fmt.Fprintf(b, "got status %d: ", e.resp.StatusCode)
	}
	if e.data != nil {
		fmt.Fprintf(b, "got data: %q: ", string(e.data))
	}
	if e.err != nil {
		b.WriteString(e.err.Error())
	} else {
		b.WriteString("unexpected status code")
	}

	return b.String()
}

func (e APIError) Unwrap() error {
	return e.err
}

// StatusCode is the HTTP status of the failed call, or 0 when no response
// arrived.
func (e APIError) StatusCode() int {
	if e.resp == nil {
		return 0
	}
	return e.resp.StatusCode
}

// Reply is the JSON answer of the operation endpoints.
type Reply struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Error            string `json:"error,omitempty"`
	OriginalSize     int64  `json:"originalSize"`
	CompressedSize   int64  `json:"compressedSize"`
	DecompressedSize int64  `json:"decompressedSize"`
	CompressionRatio string `json:"compressionRatio"`
	FileName         string `json:"filename"`
	DownloadPath     string `json:"downloadPath"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
}

func (c *Client) endpoint(path string) string {
	u := *c.Base
	u.Path = u.Path + path
	return u.String()
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", "huffpress")

	resp, err := ctxhttp.Do(ctx, c.h, req)
	if err != nil {
		return nil, APIError{
			req: req,
			err: err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, APIError{
			req: req,
			err: err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, APIError{
			req:  req,
			resp: resp,
			data: data,
		}
	}

	return data, nil
}

func (c *Client) upload(ctx context.Context, path, name string, content []byte, result interface{}) error {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, err := mw.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("cannot create form field: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("cannot write into multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.endpoint(path), buf)
	if err != nil {
		return fmt.Errorf("cannot make http request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	err = json.Unmarshal(data, result)
	if err != nil {
		return fmt.Errorf("cannot unmarshal data: %w", err)
	}

	return nil
}

// Download fetches a result file; the server deletes it afterwards.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot make http request: %w", err)
	}
	return c.do(ctx, req)
}

// Run uploads the file called name to the endpoint of op and downloads the
// result.
func (c *Client) Run(ctx context.Context, op Operation, name string, content []byte) (*Outcome, error) {
	var r Reply
	if err := c.upload(ctx, op.Endpoint(), name, content, &r); err != nil {
		return nil, err
	}
	if !r.Success {
		return nil, fmt.Errorf("%s: %s", r.Message, r.Error)
	}

	var ratio float64
	if r.CompressionRatio != "" {
		if _, err := fmt.Sscanf(r.CompressionRatio, "%f%%", &ratio); err != nil {
			return nil, fmt.Errorf("cannot parse compression ratio %q: %w", r.CompressionRatio, err)
		}
	}

	data, err := c.Download(ctx, r.DownloadPath)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Op:         op,
		Source:     name,
		FileName:   r.FileName,
		Data:       data,
		InputSize:  int64(len(content)),
		ResultSize: int64(len(data)),
		Ratio:      ratio,
		Width:      r.Width,
		Height:     r.Height,
	}, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequest("GET", c.endpoint("/health"), nil)
	if err != nil {
		return fmt.Errorf("cannot make http request: %w", err)
	}
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	var v struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cannot unmarshal data: %w", err)
	}
	if v.Status != "ok" {
		return fmt.Errorf("server status is %q", v.Status)
	}
	return nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
