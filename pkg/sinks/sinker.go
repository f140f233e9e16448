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

// Package sinks holds the terminal stages of a pipeline. A sink consumes a stream to its end marker; the packages
// below it write the elements to an external system.
package sinks

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/metrics"
)

// Sinker writes elements to an external system.
type Sinker[T any] interface {
	// GetName returns the name of the sink
	GetName() string
	// Write writes one element
	Write(ctx context.Context, value T) error
	// Close releases the resources of the sink
	Close() error
}

// Drain reads in until its end marker and calls fn for every element. A nil fn discards the elements.
func Drain[T any](ctx context.Context, in isb.BufferReader[T], fn func(T) error) (int64, error) {
	read := metrics.StageReadCount.WithLabelValues(in.GetName())
	var count int64
	for {
		end, err := in.ReadEnd(ctx)
		if err != nil {
			return count, err
		}
		if end {
			return count, nil
		}
		value, err := in.Read(ctx)
		if err != nil {
			return count, err
		}
		read.Inc()
		count++
		if fn == nil {
			continue
		}
		if err := fn(value); err != nil {
			return count, err
		}
	}
}

// Collect drains in and returns its elements.
func Collect[T any](ctx context.Context, in isb.BufferReader[T]) ([]T, error) {
	var out []T
	_, err := Drain(ctx, in, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Run drains in into s and closes s.
func Run[T any](ctx context.Context, in isb.BufferReader[T], s Sinker[T]) error {
	_, err := Drain(ctx, in, func(v T) error {
		return s.Write(ctx, v)
	})
	if err != nil {
		err = fmt.Errorf("sink %s: %w", s.GetName(), err)
	}
	return multierr.Append(err, s.Close())
}
