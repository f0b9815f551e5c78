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
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	c := &Config{}
	if err := c.InitDir(t.TempDir()); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Listen != "localhost:5000" || c.UploadDir != "uploads" || c.Jobs != 4 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Policy == "" {
		t.Fatal("default policy is empty")
	}

	p := NewPolicy()
	if err := p.LoadScript(c.Policy); err != nil {
		t.Fatalf("default policy does not load: %v", err)
	}
	if err := p.Check(context.Background(), "notes.txt", 10); err != nil {
		t.Errorf("default policy rejects notes.txt: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	dir := t.TempDir()

	c := &Config{}
	if err := c.InitDir(dir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Listen = ":9999"
	c.Jobs = 7
	c.Policy = `func accept(name, size) { return "" }`
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// a shorter second save must not leave bytes of the first one behind
	c.Listen = ":1"
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back := &Config{}
	if err := back.InitDir(dir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	if err := back.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Listen != ":1" || back.Jobs != 7 || back.UploadDir != "uploads" {
		t.Errorf("loaded %+v", back)
	}
	if back.Policy != c.Policy {
		t.Errorf("policy = %q, want %q", back.Policy, c.Policy)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
