/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package window

import (
	"sync"

	"go.uber.org/atomic"
)

// Sequencer hands out sequence numbers shared by several engines. A number is drawn and its result enqueued while
// the sequencer is held, so results are enqueued in sequence order across every engine, and Frontier tells a reader
// which numbers can no longer show up.
type Sequencer struct {
	mu        sync.Mutex
	next      uint64
	published *atomic.Uint64
}

// NewSequencer returns a sequencer starting at zero.
func NewSequencer() *Sequencer {
	return &Sequencer{published: atomic.NewUint64(0)}
}

// Stamp calls write with the next sequence number. The number is consumed only when write succeeds.
func (s *Sequencer) Stamp(write func(seq uint64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := write(s.next); err != nil {
		return err
	}
	s.next++
	s.published.Store(s.next)
	return nil
}

// Frontier returns the number below which every stamped result has been enqueued. A reader that loads the frontier
// and then finds an input empty knows that input will only carry numbers at or above it.
func (s *Sequencer) Frontier() uint64 {
	return s.published.Load()
}
