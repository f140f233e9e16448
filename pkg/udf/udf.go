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
Package udf wraps user functions into stages. A stage reads its input buffer until the end marker, applies the
function to every element, and forwards the end marker exactly once after the input ended. An error returned by the
user function stops the stage and is returned to the caller.
*/
package udf

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/metrics"
)

// MapFunc transforms one element.
type MapFunc[IN, OUT any] func(ctx context.Context, value IN) (OUT, error)

// FilterFunc reports whether an element is kept.
type FilterFunc[T any] func(ctx context.Context, value T) (bool, error)

// FlatMapFunc ships any number of elements for one input element.
type FlatMapFunc[IN, OUT any] func(ctx context.Context, value IN, shipper Shipper[OUT]) error

// Shipper is handed to a FlatMapFunc to emit elements downstream.
type Shipper[T any] interface {
	Ship(value T) error
}

type shipper[T any] struct {
	ctx     context.Context
	out     isb.BufferWriter[T]
	written prometheus.Counter
}

func (s *shipper[T]) Ship(value T) error {
	if err := s.out.Write(s.ctx, value); err != nil {
		return err
	}
	s.written.Inc()
	return nil
}

// Map writes fn(x) for every element x of in.
func Map[IN, OUT any](ctx context.Context, in isb.BufferReader[IN], out isb.BufferWriter[OUT], fn MapFunc[IN, OUT], opts ...Option) error {
	return FlatMap(ctx, in, out, func(ctx context.Context, value IN, s Shipper[OUT]) error {
		mapped, err := fn(ctx, value)
		if err != nil {
			return err
		}
		return s.Ship(mapped)
	}, opts...)
}

// Filter writes the elements of in for which pred holds.
func Filter[T any](ctx context.Context, in isb.BufferReader[T], out isb.BufferWriter[T], pred FilterFunc[T], opts ...Option) error {
	return FlatMap(ctx, in, out, func(ctx context.Context, value T, s Shipper[T]) error {
		keep, err := pred(ctx, value)
		if err != nil || !keep {
			return err
		}
		return s.Ship(value)
	}, opts...)
}

// FlatMap calls fn for every element of in, writing whatever fn ships.
func FlatMap[IN, OUT any](ctx context.Context, in isb.BufferReader[IN], out isb.BufferWriter[OUT], fn FlatMapFunc[IN, OUT], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("udf %s: nil function", o.name)
	}
	log := o.logger
	read := metrics.StageReadCount.WithLabelValues(o.name)
	s := &shipper[OUT]{ctx: ctx, out: out, written: metrics.StageWriteCount.WithLabelValues(o.name)}

	log.Debugw("Starting udf", zap.String("from", in.GetName()), zap.String("to", out.GetName()))
	for {
		end, err := in.ReadEnd(ctx)
		if err != nil {
			return fmt.Errorf("udf %s: %w", o.name, err)
		}
		if end {
			break
		}
		value, err := in.Read(ctx)
		if err != nil {
			return fmt.Errorf("udf %s: %w", o.name, err)
		}
		read.Inc()
		if err := fn(ctx, value, s); err != nil {
			log.Errorw("User function failed", zap.Error(err))
			return fmt.Errorf("udf %s: %w", o.name, err)
		}
	}
	log.Debug("Udf finished")
	return out.WriteEnd(ctx)
}
