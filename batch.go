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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Runner performs an operation on one file's contents.
type Runner interface {
	Run(ctx context.Context, op Operation, name string, data []byte) (*Outcome, error)
}

type localRunner struct{}

func (localRunner) Run(ctx context.Context, op Operation, name string, data []byte) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return op.Run(name, data)
}

// Batch runs an operation over several files concurrently.
type Batch struct {
	Runner Runner
	Jobs   int
	OutDir string
	Log    io.Writer
}

// Run processes paths and writes every result into OutDir, or next to its
// source when OutDir is empty. The first failure cancels the files not
// started yet.
func (b *Batch) Run(ctx context.Context, op Operation, paths []string) ([]*Outcome, error) {
	numWorkers := b.Jobs
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}

	runner := b.Runner
	if runner == nil {
		runner = localRunner{}
	}

	p := message.NewPrinter(language.English) // For commas between thousands
	out := b.Log
	if out == nil {
		out = io.Discard
	}

	outcomes := make([]*Outcome, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, numWorkers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			o, err := runner.Run(ctx, op, filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			dir := b.OutDir
			if dir == "" {
				dir = filepath.Dir(path)
			}
			dst := filepath.Join(dir, baseName(o.FileName))
			if err := os.WriteFile(dst, o.Data, 0666); err != nil {
				return err
			}

			if o.compressing() {
				p.Fprintf(out, "%s -> %s: %d -> %d bytes (%.2f%% saved)\n", path, dst, o.InputSize, o.ResultSize, o.Ratio)
			} else {
				p.Fprintf(out, "%s -> %s: %d -> %d bytes\n", path, dst, o.InputSize, o.ResultSize)
			}

			outcomes[i] = o
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
