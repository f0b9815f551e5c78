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
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/contrib/renders/multitemplate"
	"github.com/gin-gonic/gin"
)

type Config struct {
	Listen      string `json:"listen"`
	UploadDir   string `json:"upload_dir"`
	Jobs        int    `json:"jobs"`
	HistorySize int    `json:"history_size"`
	Policy      string `json:"-"`

	huffpressConfigDir string
}

func (c *Config) SetDefaultPolicy() {
	c.Policy = `
allowed = ["txt", "huff", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp", "huffimg"]
max_size = 100 * 1024 * 1024

func accept(name, size) {
  if size > max_size {
    return sprintf("File is larger than %d bytes", max_size)
  }
  e = ext(name)
  for a in allowed {
    if a == e {
      return ""
    }
  }
  return "Only .txt, .huff, .png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff, .webp and .huffimg files are allowed"
}
`
}

func (c *Config) SetDefaults() {
	c.Listen = "localhost:5000"
	c.UploadDir = "uploads"
	c.Jobs = 4
	c.HistorySize = 50
}

func (c *Config) Init() error {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		return err
	}

	return c.InitDir(filepath.Join(cfgdir, "huffpress"))
}

// InitDir makes dir the directory config.json and policy.anko live in.
func (c *Config) InitDir(dir string) error {
	c.huffpressConfigDir = dir

	err := os.MkdirAll(c.huffpressConfigDir, 0777)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}

	return nil
}

func (c *Config) Load() error {
	for _, fn := range []func() error{c.LoadConfig, c.LoadPolicy} {
		err := fn()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) LoadConfig() error {
	c.SetDefaults()

	f, err := os.Open(filepath.Join(c.huffpressConfigDir, "config.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	err = dec.Decode(c)
	if err != nil {
		return fmt.Errorf("cannot decode %q: %w", f.Name(), err)
	}

	return nil
}

func (c *Config) LoadPolicy() error {
	b, err := os.ReadFile(filepath.Join(c.huffpressConfigDir, "policy.anko"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.SetDefaultPolicy()
			return nil
		}

		return err
	}

	c.Policy = string(b)
	return nil
}

func (c Config) Save() error {
	for _, fn := range []func() error{c.SaveConfig, c.SavePolicy} {
		err := fn()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c Config) SaveConfig() error {
	f, err := os.OpenFile(filepath.Join(c.huffpressConfigDir, "config.json"), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	err = enc.Encode(c)
	if err != nil {
		return err
	}

	return nil
}

func (c Config) SavePolicy() error {
	return os.WriteFile(filepath.Join(c.huffpressConfigDir, "policy.anko"), []byte(c.Policy), 0666)
}

// ReadDir lists the regular files of dirname, taking the copy in the config
// directory over the one in the working directory.
func (c Config) ReadDir(dirname string) ([]string, error) {
	locals := make(map[string]bool)
	entries, err := os.ReadDir(filepath.Join(c.huffpressConfigDir, dirname))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	result := make([]string, 0, len(entries))

	for _, entry := range entries {
		if skipEntry(entry) {
			continue
		}

		locals[entry.Name()] = true
		result = append(result, filepath.Join(c.huffpressConfigDir, dirname, entry.Name()))
	}

	entries, err = os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if skipEntry(entry) || locals[entry.Name()] {
			continue
		}

		result = append(result, filepath.Join(dirname, entry.Name()))
	}

	return result, nil
}

func skipEntry(entry fs.DirEntry) bool {
	if !entry.Type().IsRegular() {
		return true
	}
	name := entry.Name()
	return strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

func (c Config) InitAssetsTemplates(r *gin.Engine) error {
	var err error
	var data []byte
	var tmpl *template.Template

	var names, pnames []string

	template_files, err := c.ReadDir("templates")
	if err != nil {
		return err
	}
	for _, name := range template_files {
		if strings.HasPrefix(filepath.Base(name), "_") {
			pnames = append(pnames, name)
		} else {
			names = append(names, name)
		}
	}

	funcs := template.FuncMap{
		"join":  strings.Join,
		"bytes": formatBytes,
	}

	render := multitemplate.New()
	ptmpls := make(map[string]*template.Template)
	for _, pname := range pnames {
		if data, err = os.ReadFile(pname); err != nil {
			return fmt.Errorf("cannot open partial %q: %w", pname, err)
		}
		pname = strings.TrimSuffix(filepath.Base(pname), ".html")
		if tmpl, err = template.New(pname).Funcs(funcs).Parse(string(data)); err != nil {
			return fmt.Errorf("cannot parse template %q: %w", pname, err)
		}
		ptmpls[pname] = tmpl
	}
	for _, name := range names {
		if data, err = os.ReadFile(name); err != nil {
			return fmt.Errorf("cannot open template %q: %w", name, err)
		}
		if tmpl, err = template.New(filepath.Base(name)).Funcs(funcs).Parse(string(data)); err != nil {
			return fmt.Errorf("cannot parse template %q: %w", name, err)
		}
		for pname, ptmpl := range ptmpls {
			tmpl.AddParseTree(pname, ptmpl.Tree)
		}
		render.Add(filepath.Base(name), tmpl)
	}
	r.HTMLRender = render

	asset_files, err := c.ReadDir("assets")
	if err != nil {
		return err
	}
	for _, name := range asset_files {
		name := name
		r.GET("/assets/"+filepath.Base(name), func(c *gin.Context) {
			c.File(name)
		})
	}
	return nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
