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

package forward

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/isb"
)

// collector picks the next input lane to poll. A collector returns -1 when no lane is ready and the caller should
// back off before asking again.
type collector interface {
	next(ended *endMask) int
	// consumed is called after a data element was read from lane id.
	consumed(id int)
}

// FanIn collects ins into out until every input lane has delivered its end marker, then writes exactly one end
// marker to out. Only lanes whose end marker is still outstanding are ever polled.
func FanIn[T any](ctx context.Context, ins []isb.BufferReader[T], out isb.BufferWriter[T], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	c, err := newCollector(o, ins)
	if err != nil {
		return err
	}
	log := o.logger
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.GetName()
	}
	reads := laneCounters(readMessagesCount, o, names)
	writeCounter := writeMessagesCount.WithLabelValues(o.name, o.policy.String(), out.GetName())
	log.Debugw("Starting fan-in", zap.String("to", out.GetName()), zap.Int("lanes", len(ins)))

	ended := newEndMask(len(ins))
	var count int64
	for !ended.All() {
		id := c.next(ended)
		if id < 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("fan-in %s: %w", o.name, ctx.Err())
			case <-time.After(o.retryInterval):
			}
			continue
		}
		end, err := ins[id].ReadEnd(ctx)
		if err != nil {
			return fmt.Errorf("fan-in %s: %w", o.name, err)
		}
		if end {
			ended.Set(id)
			log.Debugw("Lane ended", zap.String("lane", ins[id].GetName()))
			continue
		}
		value, err := ins[id].Read(ctx)
		if err != nil {
			return fmt.Errorf("fan-in %s: %w", o.name, err)
		}
		reads[id].Inc()
		c.consumed(id)
		if err := out.Write(ctx, value); err != nil {
			return fmt.Errorf("fan-in %s: %w", o.name, err)
		}
		writeCounter.Inc()
		count++
	}
	if err := out.WriteEnd(ctx); err != nil {
		return fmt.Errorf("fan-in %s: %w", o.name, err)
	}
	log.Debugw("Fan-in finished", zap.Int64("count", count))
	return nil
}

func newCollector[T any](o *options, ins []isb.BufferReader[T]) (collector, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("fan-in %s: no input lanes", o.name)
	}
	switch o.policy {
	case RoundRobin, Broadcast:
		return &roundRobinIn{n: len(ins)}, nil
	case LoadBalanced:
		names := make([]string, len(ins))
		empty := make([]func() bool, len(ins))
		for i, in := range ins {
			names[i] = in.GetName()
			empty[i] = in.IsEmpty
		}
		return &loadBalancedIn{n: len(ins), empty: empty, skips: laneCounters(skipCount, o, names)}, nil
	case KeyBy:
		if o.keyGenerator == nil {
			return nil, fmt.Errorf("fan-in %s: KeyBy policy requires a key generator", o.name)
		}
		return &keyByIn{n: len(ins), generate: o.keyGenerator}, nil
	default:
		return nil, fmt.Errorf("fan-in %s: unknown policy %s", o.name, o.policy)
	}
}

// roundRobinIn blocks on each live lane in turn.
type roundRobinIn struct {
	n  int
	id int
}

func (r *roundRobinIn) next(ended *endMask) int {
	id := ended.NextClear(r.id)
	r.id = (id + 1) % r.n
	return id
}

func (r *roundRobinIn) consumed(int) {}

// loadBalancedIn skips lanes that are empty right now. A lane whose terminal marker is pending is not empty, so an
// ended lane is never mistaken for a temporarily idle one.
type loadBalancedIn struct {
	n     int
	id    int
	empty []func() bool
	skips []prometheus.Counter
}

func (l *loadBalancedIn) next(ended *endMask) int {
	for tried := 0; tried < l.n; tried++ {
		id := l.id
		l.id = (l.id + 1) % l.n
		if ended.IsSet(id) {
			continue
		}
		if l.empty[id]() {
			l.skips[id].Inc()
			continue
		}
		return id
	}
	return -1
}

func (l *loadBalancedIn) consumed(int) {}

// keyByIn polls the lane named by the generator for the i-th element. If that lane already ended, the next live
// lane is polled instead.
type keyByIn struct {
	n        int
	seq      int
	generate KeyGenerator
}

func (k *keyByIn) next(ended *endMask) int {
	return ended.NextClear(lane(k.generate(k.seq), k.n))
}

func (k *keyByIn) consumed(int) {
	k.seq++
}
