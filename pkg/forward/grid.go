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

	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
)

// FanOutGrid spreads in across an N x M array of lanes. Lanes are numbered row-major, so lane r*M+c is outs[r][c].
func FanOutGrid[T any](ctx context.Context, in isb.BufferReader[T], outs [][]isb.BufferWriter[T], opts ...Option) error {
	return FanOut(ctx, in, flatten(outs), opts...)
}

// FanInGrid collects an N x M array of lanes into out. Lanes are numbered row-major.
func FanInGrid[T any](ctx context.Context, ins [][]isb.BufferReader[T], out isb.BufferWriter[T], opts ...Option) error {
	return FanIn(ctx, flatten(ins), out, opts...)
}

// Redistribute moves the elements of M input lanes onto N output lanes. The inputs are collected into an
// intermediate buffer, with LoadBalanced collection for the LoadBalanced policy and RoundRobin otherwise, and the
// intermediate buffer is spread with the configured policy.
func Redistribute[T any](ctx context.Context, ins []isb.BufferReader[T], outs []isb.BufferWriter[T], opts ...Option) error {
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	inPolicy := RoundRobin
	if o.policy == LoadBalanced {
		inPolicy = LoadBalanced
	}
	mid := simplebuffer.NewInMemoryBuffer[T](o.name+"-redistribute", o.bufferDepth, 0)
	inOpts := append(append([]Option{}, opts...), WithPolicy(inPolicy), WithName(o.name+"-in"))
	outOpts := append(append([]Option{}, opts...), WithName(o.name+"-out"))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return FanIn[T](gCtx, ins, mid, inOpts...)
	})
	g.Go(func() error {
		return FanOut[T](gCtx, mid, outs, outOpts...)
	})
	return g.Wait()
}

func flatten[B any](grid [][]B) []B {
	var flat []B
	for _, row := range grid {
		flat = append(flat, row...)
	}
	return flat
}
