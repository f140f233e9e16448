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

package merge

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dataflow/pkg/isb"
	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/isb/testutils"
	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/window"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type result = window.Result[int, int]

type mergeFunc func(ctx context.Context, ins []isb.BufferReader[result], out isb.BufferWriter[result], less Less[result], opts ...Option) error

func runMerge(t *testing.T, merge mergeFunc, branches [][]result) []result {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = logging.WithLogger(ctx, logging.NewNopLogger())
	ins := simplebuffer.NewBuffers[result]("branch", len(branches), 2)
	out := simplebuffer.NewInMemoryBuffer[result]("merged", 2, 0)
	var merged []result

	g, gCtx := errgroup.WithContext(ctx)
	for i := range ins {
		i := i
		g.Go(func() error { return testutils.Feed[result](gCtx, ins[i], branches[i]) })
	}
	g.Go(func() error {
		return merge(gCtx, isb.Readers[result](ins), out, BySequence[int, int], WithBufferDepth(1))
	})
	g.Go(func() error {
		var err error
		merged, err = testutils.Drain[result](gCtx, out)
		return err
	})
	require.NoError(t, g.Wait())
	return merged
}

func sequences(results []result) []uint64 {
	out := make([]uint64, len(results))
	for i, r := range results {
		out[i] = r.Sequence
	}
	return out
}

func withSequences(seqs ...uint64) []result {
	out := make([]result, len(seqs))
	for i, s := range seqs {
		out[i] = result{Sequence: s, Value: int(s)}
	}
	return out
}

func TestMerge_TwoBranches(t *testing.T) {
	for name, merge := range map[string]mergeFunc{"Merge": Merge[result], "MergeTree": MergeTree[result]} {
		t.Run(name, func(t *testing.T) {
			merged := runMerge(t, merge, [][]result{withSequences(0, 2, 4), withSequences(1, 3, 5)})
			assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, sequences(merged))
		})
	}
}

func TestMerge_EmptyBranches(t *testing.T) {
	for name, merge := range map[string]mergeFunc{"Merge": Merge[result], "MergeTree": MergeTree[result]} {
		t.Run(name, func(t *testing.T) {
			merged := runMerge(t, merge, [][]result{nil, withSequences(1, 3), nil, withSequences(0), nil})
			assert.Equal(t, []uint64{0, 1, 3}, sequences(merged))
			assert.Empty(t, runMerge(t, merge, [][]result{nil, nil, nil}))
		})
	}
}

func TestMerge_ManyBranches(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 3, 4, 7, 8} {
		// deal sequence numbers at random across n branches, every branch stays sorted
		branches := make([][]result, n)
		total := 200
		for s := 0; s < total; s++ {
			i := r.Intn(n)
			branches[i] = append(branches[i], result{Sequence: uint64(s), Timestamp: uint32(r.Intn(100))})
		}
		for name, merge := range map[string]mergeFunc{"Merge": Merge[result], "MergeTree": MergeTree[result]} {
			merged := runMerge(t, merge, branches)
			require.Len(t, merged, total, "%s over %d branches", name, n)
			assert.True(t, sort.SliceIsSorted(merged, func(a, b int) bool { return BySequence(merged[a], merged[b]) }))
		}
	}
}

func TestBySequence(t *testing.T) {
	assert.True(t, BySequence(result{Sequence: 1, Timestamp: 9}, result{Sequence: 2, Timestamp: 0}))
	assert.False(t, BySequence(result{Sequence: 2}, result{Sequence: 1}))
	assert.True(t, BySequence(result{Sequence: 1, Timestamp: 3}, result{Sequence: 1, Timestamp: 4}))
	assert.False(t, BySequence(result{Sequence: 1, Timestamp: 4}, result{Sequence: 1, Timestamp: 4}))
}

func TestMerge_Invalid(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	out := simplebuffer.NewInMemoryBuffer[result]("merged", 1, 0)
	assert.Error(t, Merge[result](ctx, nil, out, BySequence[int, int]))
	assert.Error(t, MergeTree[result](ctx, nil, out, BySequence[int, int]))
	in := simplebuffer.NewInMemoryBuffer[result]("in", 1, 0)
	assert.Error(t, Merge[result](ctx, []isb.BufferReader[result]{in}, out, nil))
	assert.Error(t, MergeTree[result](ctx, []isb.BufferReader[result]{in}, out, BySequence[int, int], WithBufferDepth(0)))
	assert.Error(t, Merge[result](ctx, []isb.BufferReader[result]{in}, out, BySequence[int, int],
		WithFrontier(func() uint64 { return 0 }, func(s string) uint64 { return 0 })))
	assert.Error(t, Merge[result](ctx, []isb.BufferReader[result]{in}, out, BySequence[int, int], WithFrontier[result](nil, nil)))
	assert.Error(t, Merge[result](ctx, []isb.BufferReader[result]{in}, out, BySequence[int, int], WithRetryInterval(0)))
}

// stamp writes n results numbered by seq to in and ends it.
func stamp(ctx context.Context, seq *window.Sequencer, in isb.BufferWriter[result], key, n int) error {
	for i := 0; i < n; i++ {
		if err := seq.Stamp(func(s uint64) error {
			return in.Write(ctx, result{Key: key, Sequence: s})
		}); err != nil {
			return err
		}
	}
	return in.WriteEnd(ctx)
}

func TestMerge_FrontierSkipsSilentBranch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	seq := window.NewSequencer()
	ins := simplebuffer.NewBuffers[result]("branch", 2, 1)
	out := simplebuffer.NewInMemoryBuffer[result]("merged", 1, 0)
	busyMerged := make(chan struct{})
	var merged []result

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return stamp(gCtx, seq, ins[0], 0, 10) })
	g.Go(func() error {
		// the second branch stays silent until the first one went through the merge
		select {
		case <-busyMerged:
		case <-gCtx.Done():
			return gCtx.Err()
		}
		return stamp(gCtx, seq, ins[1], 1, 2)
	})
	g.Go(func() error {
		return Merge(gCtx, isb.Readers[result](ins), out, BySequence[int, int],
			WithFrontier(seq.Frontier, SequenceOf[int, int]), WithLogger(logging.NewNopLogger()))
	})
	g.Go(func() error {
		for {
			end, err := out.ReadEnd(gCtx)
			if err != nil || end {
				return err
			}
			r, err := out.Read(gCtx)
			if err != nil {
				return err
			}
			merged = append(merged, r)
			if len(merged) == 10 {
				close(busyMerged)
			}
		}
	})
	require.NoError(t, g.Wait())

	require.Len(t, merged, 12)
	for i, r := range merged {
		assert.Equal(t, uint64(i), r.Sequence)
	}
	assert.Equal(t, 1, merged[11].Key)
}

func TestMerge_FrontierInterleaved(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	seq := window.NewSequencer()
	ins := simplebuffer.NewBuffers[result]("branch", 4, 2)
	out := simplebuffer.NewInMemoryBuffer[result]("merged", 2, 0)
	var merged []result

	g, gCtx := errgroup.WithContext(ctx)
	for i := range ins {
		i := i
		g.Go(func() error { return stamp(gCtx, seq, ins[i], i, 25*i) })
	}
	g.Go(func() error {
		return Merge(gCtx, isb.Readers[result](ins), out, BySequence[int, int],
			WithFrontier(seq.Frontier, SequenceOf[int, int]), WithLogger(logging.NewNopLogger()))
	})
	g.Go(func() error {
		var err error
		merged, err = testutils.Drain[result](gCtx, out)
		return err
	})
	require.NoError(t, g.Wait())

	require.Len(t, merged, 150)
	for i, r := range merged {
		assert.Equal(t, uint64(i), r.Sequence)
	}
}
