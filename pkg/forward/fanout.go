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
Package forward implements the routing connectors that move elements between a single inter-step buffer and an
array of them. A fan-out reads one buffer and spreads the elements across N lanes, a fan-in collects N lanes into one
buffer. Both ends always propagate the end-of-stream: a fan-out writes one end marker to every lane and a fan-in
writes one end marker once every lane has ended.
*/
package forward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/isb"
)

// distributor writes a single element to one or more lanes according to a policy.
type distributor[T any] interface {
	send(ctx context.Context, value T) error
}

// FanOut reads in until its end marker and spreads the elements across outs. Once the input ends, every one of the
// outputs receives its own end marker.
func FanOut[T any](ctx context.Context, in isb.BufferReader[T], outs []isb.BufferWriter[T], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	d, err := newDistributor(o, outs)
	if err != nil {
		return err
	}
	log := o.logger
	readCounter := readMessagesCount.WithLabelValues(o.name, o.policy.String(), in.GetName())
	log.Debugw("Starting fan-out", zap.String("from", in.GetName()), zap.Int("lanes", len(outs)))

	var count int64
	for {
		end, err := in.ReadEnd(ctx)
		if err != nil {
			return fmt.Errorf("fan-out %s: %w", o.name, err)
		}
		if end {
			break
		}
		value, err := in.Read(ctx)
		if err != nil {
			return fmt.Errorf("fan-out %s: %w", o.name, err)
		}
		readCounter.Inc()
		if err := d.send(ctx, value); err != nil {
			return fmt.Errorf("fan-out %s: %w", o.name, err)
		}
		count++
	}
	for _, out := range outs {
		if err := out.WriteEnd(ctx); err != nil {
			return fmt.Errorf("fan-out %s: %w", o.name, err)
		}
	}
	log.Debugw("Fan-out finished", zap.Int64("count", count))
	return nil
}

func newDistributor[T any](o *options, outs []isb.BufferWriter[T]) (distributor[T], error) {
	if len(outs) == 0 {
		return nil, fmt.Errorf("fan-out %s: no output lanes", o.name)
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.GetName()
	}
	writes := laneCounters(writeMessagesCount, o, names)
	switch o.policy {
	case RoundRobin:
		return &roundRobinOut[T]{outs: outs, writes: writes}, nil
	case LoadBalanced:
		return &loadBalancedOut[T]{outs: outs, writes: writes, skips: laneCounters(skipCount, o, names), retryInterval: o.retryInterval}, nil
	case KeyBy:
		if o.keyExtractor == nil {
			return nil, fmt.Errorf("fan-out %s: KeyBy policy requires a key extractor", o.name)
		}
		extract, ok := o.keyExtractor.(func(T) int)
		if !ok {
			return nil, fmt.Errorf("fan-out %s: key extractor %T does not accept the element type", o.name, o.keyExtractor)
		}
		return &keyByOut[T]{outs: outs, writes: writes, extract: extract}, nil
	case Broadcast:
		return &broadcastOut[T]{outs: outs, writes: writes}, nil
	default:
		return nil, fmt.Errorf("fan-out %s: unknown policy %s", o.name, o.policy)
	}
}

type roundRobinOut[T any] struct {
	outs   []isb.BufferWriter[T]
	writes []prometheus.Counter
	id     int
}

func (r *roundRobinOut[T]) send(ctx context.Context, value T) error {
	if err := r.outs[r.id].Write(ctx, value); err != nil {
		return err
	}
	r.writes[r.id].Inc()
	r.id = (r.id + 1) % len(r.outs)
	return nil
}

type loadBalancedOut[T any] struct {
	outs          []isb.BufferWriter[T]
	writes        []prometheus.Counter
	skips         []prometheus.Counter
	retryInterval time.Duration
	id            int
}

func (l *loadBalancedOut[T]) send(ctx context.Context, value T) error {
	for {
		for tried := 0; tried < len(l.outs); tried++ {
			id := l.id
			l.id = (l.id + 1) % len(l.outs)
			if l.outs[id].IsFull() {
				l.skips[id].Inc()
				continue
			}
			err := l.outs[id].TryWrite(value)
			if err == nil {
				l.writes[id].Inc()
				return nil
			}
			var writeErr isb.BufferWriteErr
			if !errors.As(err, &writeErr) || !writeErr.IsFull() {
				return err
			}
			l.skips[id].Inc()
		}
		// every lane is full, back off before the next round
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

type keyByOut[T any] struct {
	outs    []isb.BufferWriter[T]
	writes  []prometheus.Counter
	extract func(T) int
}

func (k *keyByOut[T]) send(ctx context.Context, value T) error {
	id := lane(k.extract(value), len(k.outs))
	if err := k.outs[id].Write(ctx, value); err != nil {
		return err
	}
	k.writes[id].Inc()
	return nil
}

type broadcastOut[T any] struct {
	outs   []isb.BufferWriter[T]
	writes []prometheus.Counter
}

func (b *broadcastOut[T]) send(ctx context.Context, value T) error {
	for id, out := range b.outs {
		if err := out.Write(ctx, value); err != nil {
			return err
		}
		b.writes[id].Inc()
	}
	return nil
}
