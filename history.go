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
	"sync"
	"time"
)

// Event records one finished operation.
type Event struct {
	Seq          uint64    `json:"seq"`
	Time         time.Time `json:"time"`
	Operation    Operation `json:"operation"`
	Source       string    `json:"source"`
	FileName     string    `json:"fileName,omitempty"`
	OriginalSize int64     `json:"originalSize"`
	ResultSize   int64     `json:"resultSize"`
	Ratio        string    `json:"compressionRatio,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// History keeps the most recent events and wakes up subscribers when a new
// one arrives.
type History struct {
	events []Event
	limit  int
	seq    uint64
	mu     *sync.Mutex
	cv     *sync.Cond
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	h := &History{limit: limit}
	h.mu = new(sync.Mutex)
	h.cv = sync.NewCond(h.mu)
	return h
}

func (h *History) Record(event Event) Event {
	h.mu.Lock()
	h.seq++
	event.Seq = h.seq
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	h.events = append(h.events, event)
	if len(h.events) > h.limit {
		h.events = append(h.events[:0:0], h.events[len(h.events)-h.limit:]...)
	}
	h.mu.Unlock()

	h.cv.Broadcast()

	return event
}

// Recent returns the kept events, newest first.
func (h *History) Recent() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, len(h.events))
	for i, e := range h.events {
		out[len(h.events)-1-i] = e
	}
	return out
}

// since returns the kept events newer than seq, oldest first. h.mu must be
// held.
func (h *History) since(seq uint64) []Event {
	i := len(h.events)
	for i > 0 && h.events[i-1].Seq > seq {
		i--
	}
	return append([]Event(nil), h.events[i:]...)
}

// Subscribe delivers every event recorded after the call, in order, until
// ctx is done. Events that fall out of the history before the subscriber
// wakes up are skipped. The channel is abandoned when the receiver does not
// pick an event up within a second.
func (h *History) Subscribe(ctx context.Context) <-chan Event {
	h.mu.Lock()
	last_seq := h.seq
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		h.cv.Broadcast()
		h.mu.Unlock()
	}()

	ch := make(chan Event)
	go func(ch chan Event) {
		for {
			h.mu.Lock()
			var pending []Event
			for ctx.Err() == nil {
				pending = h.since(last_seq)
				if len(pending) > 0 {
					break
				}
				h.cv.Wait()
			}
			h.mu.Unlock()

			if ctx.Err() != nil {
				return
			}

			for _, event := range pending {
				last_seq = event.Seq
				t := time.NewTimer(time.Second)
				select {
				case <-t.C:
					// timed out
					return
				case <-ctx.Done():
					t.Stop()
					return
				case ch <- event:
					// done
				}
				t.Stop()
			}
		}
	}(ch)
	return ch
}

// vim: ai:ts=8:sw=8:noet:syntax=go
