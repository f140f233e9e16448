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

package count

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/aggregate"
	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/isb/testutils"
	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/window"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type result = window.Result[window.NoKey, int]

func values(results []result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func run(t *testing.T, w Windower[int, int], input []int) []result {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	in := simplebuffer.NewInMemoryBuffer[int]("in", 2, 0)
	out := simplebuffer.NewInMemoryBuffer[result]("out", 2, 0)
	var results []result
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return testutils.Feed[int](gCtx, in, input) })
	g.Go(func() error { return Run[int, int](gCtx, w, in, out, WithLogger(logging.NewNopLogger())) })
	g.Go(func() error {
		var err error
		results, err = testutils.Drain[result](gCtx, out)
		return err
	})
	require.NoError(t, g.Wait())
	return results
}

func TestTumbling(t *testing.T) {
	w, err := NewTumbling[int, int, int](aggregate.Sum[int]{}, 3)
	require.NoError(t, err)
	results := run(t, w, []int{1, 2, 3, 4, 5, 6, 7})
	assert.Equal(t, []int{6, 15, 7}, values(results))
	for i, r := range results {
		assert.Equal(t, uint32(i), r.WindowID)
		assert.Equal(t, uint64(i), r.Sequence)
	}
}

func TestTumbling_ExactMultiple(t *testing.T) {
	w, err := NewTumbling[int, int, int](aggregate.Sum[int]{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, values(run(t, w, []int{1, 2, 3, 4})))
}

func TestTumbling_Empty(t *testing.T) {
	w, err := NewTumbling[int, int, int](aggregate.Sum[int]{}, 2)
	require.NoError(t, err)
	assert.Empty(t, run(t, w, nil))
}

func TestSliding(t *testing.T) {
	w, err := NewSliding[int, int, int](aggregate.Sum[int]{}, 3, 2)
	require.NoError(t, err)
	results := run(t, w, []int{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, []int{6, 12, 18}, values(results))
	for i, r := range results {
		assert.Equal(t, uint32(i), r.WindowID)
		assert.Equal(t, uint64(i), r.Sequence)
	}
}

func TestSliding_NeverFull(t *testing.T) {
	w, err := NewSliding[int, int, int](aggregate.Sum[int]{}, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, run(t, w, []int{1, 2, 3, 4}))
}

func TestSliding_StepOne(t *testing.T) {
	w, err := NewSliding[int, int, int](aggregate.Sum[int]{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5, 7}, values(run(t, w, []int{1, 2, 3, 4})))
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewTumbling[int, int, int](aggregate.Sum[int]{}, 0)
	assert.Error(t, err)
	_, err = NewSliding[int, int, int](aggregate.Sum[int]{}, 0, 1)
	assert.Error(t, err)
	_, err = NewSliding[int, int, int](aggregate.Sum[int]{}, 3, 0)
	assert.Error(t, err)
	_, err = NewSliding[int, int, int](aggregate.Sum[int]{}, 3, 4)
	assert.Error(t, err)
}
