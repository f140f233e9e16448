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

package udf

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/isb"
)

// MapLanes runs one Map per lane, ins[i] to outs[i], and waits for all of them.
func MapLanes[IN, OUT any](ctx context.Context, ins []isb.BufferReader[IN], outs []isb.BufferWriter[OUT], fn MapFunc[IN, OUT], opts ...Option) error {
	if len(ins) != len(outs) {
		return fmt.Errorf("udf: %d input lanes but %d output lanes", len(ins), len(outs))
	}
	o, err := buildOptions(ctx, opts)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := range ins {
		i := i
		laneOpts := append(append([]Option{}, opts...), WithName(fmt.Sprintf("%s-%d", o.name, i)))
		g.Go(func() error {
			return Map(gCtx, ins[i], outs[i], fn, laneOpts...)
		})
	}
	return g.Wait()
}
