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

// Package merge re-linearizes the outputs of parallel stages. Every input branch is expected to be sorted by the
// comparator already; the merge keeps at most one pending element per branch and always emits the least of them,
// so the output is sorted by the same comparator.
//
// A plain merge cannot emit anything while one branch is silent, so a silent branch that is not ended stalls every
// other branch behind it. When the producers share a position counter (see window.Sequencer), WithFrontier lets the
// merge skip branches that are empty and provably behind.
package merge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/window"
)

// Less reports whether a must be emitted before b.
type Less[T any] func(a, b T) bool

// BySequence orders window results by sequence number, then by timestamp.
func BySequence[K comparable, OUT any](a, b window.Result[K, OUT]) bool {
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	return a.Timestamp < b.Timestamp
}

// SequenceOf is the position of a window result for WithFrontier.
func SequenceOf[K comparable, OUT any](r window.Result[K, OUT]) uint64 {
	return r.Sequence
}

// branch is one input of a merge with its pending element.
type branch[T any] struct {
	in      isb.BufferReader[T]
	pending T
	has     bool
}

// refill reads the next element of the branch. A branch that reached its end marker is left without a pending
// element and takes no further part in the merge.
func (b *branch[T]) refill(ctx context.Context) error {
	end, err := b.in.ReadEnd(ctx)
	if err != nil {
		return err
	}
	if end {
		b.has = false
		return nil
	}
	b.pending, err = b.in.Read(ctx)
	if err != nil {
		return err
	}
	b.has = true
	return nil
}

// Merge is the N-way minimum search: it emits the least pending element over ins until every branch ended, then
// writes one end marker to out.
func Merge[T any](ctx context.Context, ins []isb.BufferReader[T], out isb.BufferWriter[T], less Less[T], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		return fmt.Errorf("merge %s: no input branches", o.name)
	}
	if less == nil {
		return fmt.Errorf("merge %s: nil comparator", o.name)
	}
	log := o.logger.With("stage", o.name)
	written := mergedCount.WithLabelValues(o.name)

	branches := make([]*branch[T], len(ins))
	for i, in := range ins {
		branches[i] = &branch[T]{in: in}
	}
	if o.frontier != nil {
		position, ok := o.position.(func(T) uint64)
		if !ok {
			return fmt.Errorf("merge %s: position %T does not accept the element type", o.name, o.position)
		}
		return mergeFrontier(ctx, branches, out, less, position, o)
	}
	for _, b := range branches {
		if err := b.refill(ctx); err != nil {
			return fmt.Errorf("merge %s: %w", o.name, err)
		}
	}
	var count int64
	for {
		least := -1
		for i, b := range branches {
			if b.has && (least < 0 || less(b.pending, branches[least].pending)) {
				least = i
			}
		}
		if least < 0 {
			break
		}
		if err := out.Write(ctx, branches[least].pending); err != nil {
			return fmt.Errorf("merge %s: %w", o.name, err)
		}
		written.Inc()
		count++
		if err := branches[least].refill(ctx); err != nil {
			return fmt.Errorf("merge %s: %w", o.name, err)
		}
	}
	log.Debugw("Merge finished", zap.Int("branches", len(ins)), zap.Int64("count", count))
	return out.WriteEnd(ctx)
}

// mergeFrontier is Merge driven by a frontier. It only refills branches that hold data, and emits the least
// pending element once every branch without one is empty and the element sits below the frontier. The frontier is
// loaded before the branches are inspected, so an element written after the inspection is at or above it.
func mergeFrontier[T any](ctx context.Context, branches []*branch[T], out isb.BufferWriter[T], less Less[T], position func(T) uint64, o *options) error {
	log := o.logger.With("stage", o.name)
	written := mergedCount.WithLabelValues(o.name)
	stalls := mergeStalls.WithLabelValues(o.name)
	ended := make([]bool, len(branches))
	var count int64
	for {
		frontier := o.frontier()
		waiting, done := false, true
		for i, b := range branches {
			if ended[i] {
				continue
			}
			if !b.has {
				if b.in.IsEmpty() {
					waiting, done = true, false
					continue
				}
				// IsEmpty is false, so this does not block
				if err := b.refill(ctx); err != nil {
					return fmt.Errorf("merge %s: %w", o.name, err)
				}
				if !b.has {
					ended[i] = true
					continue
				}
			}
			done = false
		}
		if done {
			break
		}
		least := -1
		for i, b := range branches {
			if b.has && (least < 0 || less(b.pending, branches[least].pending)) {
				least = i
			}
		}
		if least < 0 || (waiting && position(branches[least].pending) >= frontier) {
			stalls.Inc()
			select {
			case <-ctx.Done():
				return fmt.Errorf("merge %s: %w", o.name, ctx.Err())
			case <-time.After(o.retryInterval):
			}
			continue
		}
		if err := out.Write(ctx, branches[least].pending); err != nil {
			return fmt.Errorf("merge %s: %w", o.name, err)
		}
		written.Inc()
		count++
		branches[least].has = false
	}
	log.Debugw("Merge finished", zap.Int("branches", len(branches)), zap.Int64("count", count))
	return out.WriteEnd(ctx)
}

// MergeTree reduces ins to out through a binary tree of two-way merges connected by intermediate buffers. Every
// merge of the tree runs in its own goroutine.
func MergeTree[T any](ctx context.Context, ins []isb.BufferReader[T], out isb.BufferWriter[T], less Less[T], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		return fmt.Errorf("merge %s: no input branches", o.name)
	}
	g, gCtx := errgroup.WithContext(ctx)
	reduce(gCtx, g, ins, out, less, o, o.name)
	return g.Wait()
}

// reduce schedules the merge of ins into out, splitting ins in halves until at most two branches remain.
func reduce[T any](ctx context.Context, g *errgroup.Group, ins []isb.BufferReader[T], out isb.BufferWriter[T], less Less[T], o *options, name string) {
	mergeOpts := []Option{WithName(name), WithLogger(o.logger)}
	if len(ins) <= 2 {
		g.Go(func() error {
			return Merge(ctx, ins, out, less, mergeOpts...)
		})
		return
	}
	half := len(ins) / 2
	left := simplebuffer.NewInMemoryBuffer[T](name+"-l", o.bufferDepth, 0)
	right := simplebuffer.NewInMemoryBuffer[T](name+"-r", o.bufferDepth, 0)
	reduce[T](ctx, g, ins[:half], left, less, o, name+"-l")
	reduce[T](ctx, g, ins[half:], right, less, o, name+"-r")
	g.Go(func() error {
		return Merge(ctx, []isb.BufferReader[T]{left, right}, out, less, mergeOpts...)
	})
}
