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

/*
Package keyed implements the keyed time window engine. Every key owns a context holding a ring of N window slots,
where N is the number of windows that overlap the allowed lateness (see window.Assigner.Slots). The largest
timestamp seen for a key acts as its watermark: a record trailing it by more than the lateness is dropped, and once
the largest window id moves forward, the windows that fall out of the ring are lowered and emitted exactly once.

An Engine is not safe for concurrent use. Throughput comes from running several engines, one per lane, and merging
their results by sequence number.
*/
package keyed

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/aggregate"
	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/window"
)

// slot is one window of a key's ring.
type slot[AGG any] struct {
	windowID       uint32
	state          AGG
	firstTimestamp uint32
}

// keyContext is the per key state. Window ids are tracked as int64 so that the left edge of the ring may sit below
// zero right after the first record.
type keyContext[AGG any] struct {
	initialized  bool
	leftWindowID int64
	maxTimestamp uint32
	maxWindowID  int64
	slots        []slot[AGG]
}

func newKeyContext[AGG any](n int) *keyContext[AGG] {
	c := &keyContext[AGG]{slots: make([]slot[AGG], n)}
	for i := range c.slots {
		c.slots[i].windowID = window.EmptyWindowID
	}
	return c
}

// Engine aggregates keyed records into time windows that tolerate a bounded lateness.
type Engine[K comparable, IN, AGG, OUT any] struct {
	op       aggregate.Operator[IN, AGG, OUT]
	assigner window.Assigner
	n        int
	opts     *options
	contexts map[K]*keyContext[AGG]
	// keys holds every key in the order it was first seen, so that Flush is deterministic
	keys []K
	// current is the context of currentKey, swapped when a record of another key arrives
	current    *keyContext[AGG]
	currentKey K
	sequence   uint64
	log        *zap.SugaredLogger

	late, invalid, emitted prometheus.Counter
	active                 prometheus.Gauge
}

// NewEngine returns an engine folding records with op into the windows laid out by assigner.
func NewEngine[K comparable, IN, AGG, OUT any](op aggregate.Operator[IN, AGG, OUT], assigner window.Assigner, opts ...Option) (*Engine[K, IN, AGG, OUT], error) {
	if op == nil {
		return nil, fmt.Errorf("keyed window: nil aggregate operator")
	}
	if assigner == nil {
		return nil, fmt.Errorf("keyed window: nil window assigner")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	e := &Engine[K, IN, AGG, OUT]{
		op:       op,
		assigner: assigner,
		n:        assigner.Slots(o.lateness),
		opts:     o,
		contexts: make(map[K]*keyContext[AGG]),
		log:      o.logger,
		late:     droppedRecords.WithLabelValues(o.name, reasonLate),
		invalid:  droppedRecords.WithLabelValues(o.name, reasonInvalid),
		emitted:  windowsEmitted.WithLabelValues(o.name),
		active:   activeKeys.WithLabelValues(o.name),
	}
	e.log.Infow("Keyed window engine created", zap.String("strategy", assigner.Strategy().String()),
		zap.Uint32("lateness", o.lateness), zap.Int("slots", e.n), zap.Int("maxKeys", o.maxKeys))
	return e, nil
}

// Slots returns the number of window slots every key owns.
func (e *Engine[K, IN, AGG, OUT]) Slots() int {
	return e.n
}

// Keys returns the number of keys the engine holds a context for.
func (e *Engine[K, IN, AGG, OUT]) Keys() int {
	return len(e.contexts)
}

// Sequence returns the sequence number the next result will carry.
func (e *Engine[K, IN, AGG, OUT]) Sequence() uint64 {
	return e.sequence
}

// load makes the context of key the current one. It panics when key would exceed the configured number of keys.
func (e *Engine[K, IN, AGG, OUT]) load(key K) *keyContext[AGG] {
	if e.current != nil && e.currentKey == key {
		return e.current
	}
	c, ok := e.contexts[key]
	if !ok {
		if len(e.contexts) >= e.opts.maxKeys {
			panic(fmt.Sprintf("keyed window %s: key %v exceeds the limit of %d keys", e.opts.name, key, e.opts.maxKeys))
		}
		c = newKeyContext[AGG](e.n)
		e.contexts[key] = c
		e.keys = append(e.keys, key)
		e.active.Set(float64(len(e.contexts)))
	}
	e.current, e.currentKey = c, key
	return c
}

// Process admits one record and returns the windows it closed, in window id order.
func (e *Engine[K, IN, AGG, OUT]) Process(r window.Record[K, IN]) []window.Result[K, OUT] {
	if !r.Valid {
		e.invalid.Inc()
		return nil
	}
	c := e.load(r.Key)
	// timestamp < maxTimestamp - lateness, without underflow
	if c.initialized && uint64(r.Timestamp)+uint64(e.opts.lateness) < uint64(c.maxTimestamp) {
		e.late.Inc()
		e.log.Debugw("Dropping late record", zap.Any("key", r.Key), zap.Uint32("timestamp", r.Timestamp), zap.Uint32("watermark", c.maxTimestamp))
		return nil
	}

	lo, hi := e.assigner.Assign(r.Timestamp)
	var results []window.Result[K, OUT]
	if !c.initialized {
		c.initialized = true
		c.maxTimestamp = r.Timestamp
		c.maxWindowID = int64(hi)
		c.leftWindowID = c.maxWindowID - int64(e.n) + 1
	} else {
		if r.Timestamp > c.maxTimestamp {
			c.maxTimestamp = r.Timestamp
		}
		if int64(hi) > c.maxWindowID {
			c.maxWindowID = int64(hi)
			left := c.maxWindowID - int64(e.n) + 1
			results = e.evict(r.Key, c, left)
			c.leftWindowID = left
		}
	}

	for id := int64(lo); id <= int64(hi); id++ {
		if id < c.leftWindowID {
			continue
		}
		e.update(c, uint32(id), r)
	}
	return results
}

// update folds the record into the slot of window id, resetting the slot first if it held another window.
func (e *Engine[K, IN, AGG, OUT]) update(c *keyContext[AGG], id uint32, r window.Record[K, IN]) {
	s := &c.slots[int(id%uint32(e.n))]
	if s.windowID != id {
		s.windowID = id
		s.state = e.op.Identity()
		s.firstTimestamp = r.Timestamp
	}
	s.state = e.op.Combine(s.state, e.op.Lift(r.Value))
}

// evict lowers every slot holding a window below left, in window id order, and empties those slots.
func (e *Engine[K, IN, AGG, OUT]) evict(key K, c *keyContext[AGG], left int64) []window.Result[K, OUT] {
	var closing []int
	for i := range c.slots {
		id := c.slots[i].windowID
		if id != window.EmptyWindowID && int64(id) < left {
			closing = append(closing, i)
		}
	}
	if len(closing) == 0 {
		return nil
	}
	sort.Slice(closing, func(a, b int) bool {
		return c.slots[closing[a]].windowID < c.slots[closing[b]].windowID
	})
	results := make([]window.Result[K, OUT], 0, len(closing))
	for _, i := range closing {
		results = append(results, e.lower(key, &c.slots[i]))
	}
	return results
}

func (e *Engine[K, IN, AGG, OUT]) lower(key K, s *slot[AGG]) window.Result[K, OUT] {
	r := window.Result[K, OUT]{
		WindowID:  s.windowID,
		Key:       key,
		Value:     e.op.Lower(s.state),
		Timestamp: s.firstTimestamp,
		Sequence:  e.sequence,
	}
	e.sequence++
	e.emitted.Inc()
	s.windowID = window.EmptyWindowID
	return r
}

// Flush emits every window still held, key by key in the order the keys were first seen, each key's windows in
// window id order. It is meant for the end of input.
func (e *Engine[K, IN, AGG, OUT]) Flush() []window.Result[K, OUT] {
	var results []window.Result[K, OUT]
	for _, key := range e.keys {
		c := e.contexts[key]
		results = append(results, e.evict(key, c, c.maxWindowID+1)...)
		c.leftWindowID = c.maxWindowID + 1
	}
	return results
}

// Run processes in until its end marker, flushes, and ends every output. A result goes to lane
// windowID mod len(outs). With a shared sequencer the results are renumbered from it as they are written.
func (e *Engine[K, IN, AGG, OUT]) Run(ctx context.Context, in isb.BufferReader[window.Record[K, IN]], outs []isb.BufferWriter[window.Result[K, OUT]]) error {
	if len(outs) == 0 {
		return fmt.Errorf("keyed window %s: no output lanes", e.opts.name)
	}
	write := func(results []window.Result[K, OUT]) error {
		for _, r := range results {
			out := outs[int(r.WindowID%uint32(len(outs)))]
			var err error
			if seq := e.opts.sequencer; seq != nil {
				err = seq.Stamp(func(n uint64) error {
					r.Sequence = n
					return out.Write(ctx, r)
				})
			} else {
				err = out.Write(ctx, r)
			}
			if err != nil {
				return fmt.Errorf("keyed window %s: %w", e.opts.name, err)
			}
		}
		return nil
	}

	e.log.Debugw("Starting keyed window", zap.String("from", in.GetName()), zap.Int("lanes", len(outs)))
	var count int64
	for {
		end, err := in.ReadEnd(ctx)
		if err != nil {
			return fmt.Errorf("keyed window %s: %w", e.opts.name, err)
		}
		if end {
			break
		}
		r, err := in.Read(ctx)
		if err != nil {
			return fmt.Errorf("keyed window %s: %w", e.opts.name, err)
		}
		count++
		if err := write(e.Process(r)); err != nil {
			return err
		}
	}
	if err := write(e.Flush()); err != nil {
		return err
	}
	for _, out := range outs {
		if err := out.WriteEnd(ctx); err != nil {
			return fmt.Errorf("keyed window %s: %w", e.opts.name, err)
		}
	}
	e.log.Debugw("Keyed window finished", zap.Int64("records", count), zap.Uint64("windows", e.sequence))
	return nil
}
