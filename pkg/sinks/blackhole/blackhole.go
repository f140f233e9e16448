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

package blackhole

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
)

// sinkWriteCount is used to indicate the number of elements written to a blackhole
var sinkWriteCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "blackhole_sink",
	Name:      "write_total",
	Help:      "Total number of elements written to blackhole sink",
}, []string{metricspkg.LabelStage})

// Blackhole is a sink to emulate /dev/null
type Blackhole[T any] struct {
	name    string
	written prometheus.Counter
}

// NewBlackhole returns a new Blackhole sink.
func NewBlackhole[T any](name string) *Blackhole[T] {
	return &Blackhole[T]{
		name:    name,
		written: sinkWriteCount.WithLabelValues(name),
	}
}

// GetName returns the name.
func (b *Blackhole[T]) GetName() string {
	return b.name
}

// Write discards the element.
func (b *Blackhole[T]) Write(context.Context, T) error {
	b.written.Inc()
	return nil
}

func (b *Blackhole[T]) Close() error {
	return nil
}
