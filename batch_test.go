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
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestBatchLocal(t *testing.T) {
	src := t.TempDir()
	files := map[string]string{
		"a.txt": strings.Repeat("abracadabra ", 100),
		"b.txt": "b",
		"c.txt": "the cat sat on the mat",
	}
	paths := writeFiles(t, src, files)

	log := &bytes.Buffer{}
	b := &Batch{Jobs: 2, Log: log}
	outcomes, err := b.Run(context.Background(), OpCompress, paths)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(outcomes) != len(paths) {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	if !strings.Contains(log.String(), "1,200 ->") {
		t.Errorf("log lacks the thousands separator: %s", log)
	}

	var packed []string
	for name := range files {
		packed = append(packed, filepath.Join(src, strings.TrimSuffix(name, ".txt")+".huff"))
	}

	out := t.TempDir()
	b = &Batch{Jobs: 1, OutDir: out}
	if _, err := b.Run(context.Background(), OpDecompress, packed); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	for name, content := range files {
		got, err := os.ReadFile(filepath.Join(out, "decompressed_"+name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if string(got) != content {
			t.Errorf("%s: got %q", name, got)
		}
	}
}

func TestBatchFailure(t *testing.T) {
	src := t.TempDir()
	paths := writeFiles(t, src, map[string]string{"ok.txt": "fine", "empty.txt": ""})
	paths = append(paths, filepath.Join(src, "missing.txt"))

	b := &Batch{Jobs: 1}
	if _, err := b.Run(context.Background(), OpCompress, paths); err == nil {
		t.Error("batch with an empty and a missing file succeeded")
	}
}

func TestBatchRemote(t *testing.T) {
	_, r := testServer(t)
	ts := httptest.NewServer(r)
	defer ts.Close()

	client, err := NewClient(ts.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	src := t.TempDir()
	paths := writeFiles(t, src, map[string]string{"remote.txt": "sent over the wire and back"})

	b := &Batch{Runner: client, Jobs: 2}
	outcomes, err := b.Run(context.Background(), OpCompress, paths)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if outcomes[0].FileName != "remote.huff" {
		t.Errorf("FileName = %q", outcomes[0].FileName)
	}

	d, err := OpDecompress.Run("remote.huff", outcomes[0].Data)
	if err != nil {
		t.Fatalf("local decompress of a remote result: %v", err)
	}
	if string(d.Data) != "sent over the wire and back" {
		t.Errorf("got %q", d.Data)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
