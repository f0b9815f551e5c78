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
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/anko/env"
	"github.com/mattn/anko/vm"
)

var ErrRejected = errors.New("upload rejected")

// Policy decides which uploads are accepted by calling accept(name, size)
// from an anko script. The function returns "" to accept the upload or the
// message to reject it with.
type Policy struct {
	Script string

	e  *env.Env
	mu sync.Mutex
}

func NewPolicy() *Policy {
	return &Policy{}
}

func (p *Policy) LoadScript(script string) error {
	e := env.NewEnv()

	var errs []error
	errs = append(errs, e.Define("sprintf", fmt.Sprintf))
	errs = append(errs, e.Define("lower", strings.ToLower))
	errs = append(errs, e.Define("has_suffix", strings.HasSuffix))
	errs = append(errs, e.Define("ext", func(name string) string {
		return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	}))
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	_, err := vm.Execute(e, nil, script)
	if err != nil {
		return fmt.Errorf("cannot load policy: %w", err)
	}
	if _, err := e.Get("accept"); err != nil {
		return fmt.Errorf("policy does not define accept: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.e = e
	p.Script = script

	return nil
}

// Check runs accept for an upload of size bytes called name. A rejection is
// reported as ErrRejected wrapped with the script's message.
func (p *Policy) Check(ctx context.Context, name string, size int64) error {
	p.mu.Lock()
	if p.e == nil {
		p.mu.Unlock()
		return fmt.Errorf("policy is not loaded")
	}
	e := p.e.DeepCopy()
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := e.Define("name", name); err != nil {
		return err
	}
	if err := e.Define("size", size); err != nil {
		return err
	}

	result, err := vm.ExecuteContext(ctx, e, nil, "accept(name, size)")
	if err != nil {
		return fmt.Errorf("cannot execute policy: %w", err)
	}

	switch v := result.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRejected, v)
	default:
		return fmt.Errorf("policy returned %T, want string", result)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
