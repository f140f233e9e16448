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

// Package generator implements a synthetic source. A generator writes fn(0), fn(1), ... to its output until it is
// stopped or reaches its limit, and then writes the end marker.
package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// Generator is an unbounded source of synthetic elements.
type Generator[T any] struct {
	out      isb.BufferWriter[T]
	fn       func(seq uint64) T
	opts     *options
	count    *atomic.Uint64
	stop     chan struct{}
	stopOnce sync.Once
	err      error
	log      *zap.SugaredLogger
}

// NewGenerator returns a generator writing fn(seq) to out for seq = 0, 1, ...
func NewGenerator[T any](out isb.BufferWriter[T], fn func(seq uint64) T, opts ...Option) (*Generator[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("generator: nil element function")
	}
	o := DefaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.NewLogger()
	}
	return &Generator[T]{
		out:   out,
		fn:    fn,
		opts:  o,
		count: atomic.NewUint64(0),
		stop:  make(chan struct{}),
		log:   o.logger.With("stage", o.name),
	}, nil
}

// Count returns the number of elements written so far.
func (g *Generator[T]) Count() uint64 {
	return g.count.Load()
}

// Stop asks the generator to end its stream. It is observed between two elements and while a write waits for room,
// in which case the waiting element is dropped. It is safe to call more than once.
func (g *Generator[T]) Stop() {
	g.stopOnce.Do(func() {
		g.log.Info("Stopping generator")
		close(g.stop)
	})
}

func (g *Generator[T]) stopped() bool {
	select {
	case <-g.stop:
		return true
	default:
		return false
	}
}

// Start runs the generator in the background. The returned channel is closed once the generator returned, after
// which Err reports its result.
func (g *Generator[T]) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.err = g.Run(ctx)
	}()
	return done
}

// Err returns the result of a generator started with Start, once its done channel is closed.
func (g *Generator[T]) Err() error {
	return g.err
}

// Run writes elements until Stop is called or the limit is reached, then writes the end marker. A cancelled context
// ends the generator with an error and no end marker.
func (g *Generator[T]) Run(ctx context.Context) error {
	written := generatedCount.WithLabelValues(g.opts.name)
	var tick <-chan time.Time
	if g.opts.interval > 0 {
		ticker := time.NewTicker(g.opts.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	g.log.Infow("Starting generator", zap.String("to", g.out.GetName()), zap.Uint64("limit", g.opts.limit))

	// writes are cancelled by Stop as well, so a stop is not held up by a full output
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-g.stop:
			cancel()
		case <-writeCtx.Done():
		}
	}()

loop:
	for seq := uint64(0); g.opts.limit == 0 || seq < g.opts.limit; seq++ {
		if tick != nil {
			select {
			case <-tick:
			case <-g.stop:
				break loop
			case <-ctx.Done():
				return fmt.Errorf("generator %s: %w", g.opts.name, ctx.Err())
			}
		} else {
			select {
			case <-g.stop:
				break loop
			case <-ctx.Done():
				return fmt.Errorf("generator %s: %w", g.opts.name, ctx.Err())
			default:
			}
		}
		if err := g.out.Write(writeCtx, g.fn(seq)); err != nil {
			if ctx.Err() == nil && g.stopped() {
				break loop
			}
			return fmt.Errorf("generator %s: %w", g.opts.name, err)
		}
		written.Inc()
		g.count.Inc()
	}
	g.log.Infow("Generator finished", zap.Uint64("count", g.count.Load()))
	return g.out.WriteEnd(ctx)
}
