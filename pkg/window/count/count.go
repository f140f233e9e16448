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

// Package count implements windows driven by the number of elements rather than by time. Both kinds run on a
// single timeline: every element belongs to the window it completes, and the windows are numbered from 0.
package count

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/aggregate"
	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/shared/queue"
	"github.com/numaproj/dataflow/pkg/window"
)

// Windower aggregates a stream of elements into count windows.
type Windower[IN, OUT any] interface {
	// Add admits one element and returns the result of the window it closed, if any.
	Add(value IN) (window.Result[window.NoKey, OUT], bool)
	// Flush returns the result of the window left open at the end of input, if it is emitted at all.
	Flush() (window.Result[window.NoKey, OUT], bool)
}

// Tumbling emits the aggregate of every size consecutive elements.
type Tumbling[IN, AGG, OUT any] struct {
	op       aggregate.Operator[IN, AGG, OUT]
	size     uint64
	acc      AGG
	count    uint64
	windowID uint32
	sequence uint64
	emitted  prometheus.Counter
}

// NewTumbling returns a tumbling count window of the given size.
func NewTumbling[IN, AGG, OUT any](op aggregate.Operator[IN, AGG, OUT], size uint64, opts ...Option) (*Tumbling[IN, AGG, OUT], error) {
	if size == 0 {
		return nil, fmt.Errorf("count window size must be positive")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Tumbling[IN, AGG, OUT]{
		op:      op,
		size:    size,
		acc:     op.Identity(),
		emitted: windowsEmitted.WithLabelValues(o.name),
	}, nil
}

func (t *Tumbling[IN, AGG, OUT]) Add(value IN) (window.Result[window.NoKey, OUT], bool) {
	t.acc = t.op.Combine(t.acc, t.op.Lift(value))
	t.count++
	if t.count < t.size {
		return window.Result[window.NoKey, OUT]{}, false
	}
	return t.emit(), true
}

// Flush emits the trailing partial window, if it holds any element.
func (t *Tumbling[IN, AGG, OUT]) Flush() (window.Result[window.NoKey, OUT], bool) {
	if t.count == 0 {
		return window.Result[window.NoKey, OUT]{}, false
	}
	return t.emit(), true
}

func (t *Tumbling[IN, AGG, OUT]) emit() window.Result[window.NoKey, OUT] {
	r := window.Result[window.NoKey, OUT]{
		WindowID: t.windowID,
		Value:    t.op.Lower(t.acc),
		Sequence: t.sequence,
	}
	t.acc = t.op.Identity()
	t.count = 0
	t.windowID++
	t.sequence++
	t.emitted.Inc()
	return r
}

// Sliding emits the aggregate of the last size elements every step elements, starting with the element that fills
// the first window. Windows that never filled are not emitted.
type Sliding[IN, AGG, OUT any] struct {
	op       aggregate.Operator[IN, AGG, OUT]
	size     uint64
	step     uint64
	history  *queue.OverflowQueue[AGG]
	count    uint64
	sequence uint64
	emitted  prometheus.Counter
}

// NewSliding returns a sliding count window. The step must not exceed the size.
func NewSliding[IN, AGG, OUT any](op aggregate.Operator[IN, AGG, OUT], size, step uint64, opts ...Option) (*Sliding[IN, AGG, OUT], error) {
	switch {
	case size == 0:
		return nil, fmt.Errorf("count window size must be positive")
	case step == 0:
		return nil, fmt.Errorf("count window step must be positive")
	case step > size:
		return nil, fmt.Errorf("count window step %d exceeds size %d", step, size)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Sliding[IN, AGG, OUT]{
		op:      op,
		size:    size,
		step:    step,
		history: queue.New[AGG](int(size)),
		emitted: windowsEmitted.WithLabelValues(o.name),
	}, nil
}

func (s *Sliding[IN, AGG, OUT]) Add(value IN) (window.Result[window.NoKey, OUT], bool) {
	s.history.Append(s.op.Lift(value))
	s.count++
	if s.count < s.size || (s.count-s.size)%s.step != 0 {
		return window.Result[window.NoKey, OUT]{}, false
	}
	acc := s.op.Identity()
	for _, a := range s.history.Items() {
		acc = s.op.Combine(acc, a)
	}
	r := window.Result[window.NoKey, OUT]{
		WindowID: uint32((s.count - s.size) / s.step),
		Value:    s.op.Lower(acc),
		Sequence: s.sequence,
	}
	s.sequence++
	s.emitted.Inc()
	return r, true
}

// Flush never emits, a sliding count window is only emitted once full.
func (s *Sliding[IN, AGG, OUT]) Flush() (window.Result[window.NoKey, OUT], bool) {
	return window.Result[window.NoKey, OUT]{}, false
}

// Run feeds in through the windower and writes every emitted window to out, followed by the end marker.
func Run[IN, OUT any](ctx context.Context, w Windower[IN, OUT], in isb.BufferReader[IN], out isb.BufferWriter[window.Result[window.NoKey, OUT]], opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	log := o.logger
	log.Debugw("Starting count window", zap.String("from", in.GetName()), zap.String("to", out.GetName()))
	for {
		end, err := in.ReadEnd(ctx)
		if err != nil {
			return fmt.Errorf("count window %s: %w", o.name, err)
		}
		if end {
			break
		}
		value, err := in.Read(ctx)
		if err != nil {
			return fmt.Errorf("count window %s: %w", o.name, err)
		}
		if r, ok := w.Add(value); ok {
			if err := out.Write(ctx, r); err != nil {
				return fmt.Errorf("count window %s: %w", o.name, err)
			}
		}
	}
	if r, ok := w.Flush(); ok {
		if err := out.Write(ctx, r); err != nil {
			return fmt.Errorf("count window %s: %w", o.name, err)
		}
	}
	log.Debug("Count window finished")
	return out.WriteEnd(ctx)
}
