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

package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/isb/testutils"
	"github.com/numaproj/dataflow/pkg/shared/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func square(seq uint64) uint64 {
	return seq * seq
}

func TestGenerator_Limit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 2, 0)
	g, err := NewGenerator[uint64](dest, square, WithLimit(5), WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	done := g.Start(ctx)

	got, err := testutils.Drain[uint64](ctx, dest)
	require.NoError(t, err)
	<-done
	assert.NoError(t, g.Err())
	assert.Equal(t, []uint64{0, 1, 4, 9, 16}, got)
	assert.Equal(t, uint64(5), g.Count())
}

// Intention of this test is test the wiring for stop: every element written before the stop is read and the stream
// ends with its marker.
func TestGenerator_Stop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 10, 0)
	g, err := NewGenerator[uint64](dest, square, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	done := g.Start(ctx)

	for !dest.IsFull() {
		time.Sleep(time.Millisecond)
	}
	g.Stop()
	g.Stop()

	got, err := testutils.Drain[uint64](ctx, dest)
	require.NoError(t, err)
	<-done
	assert.NoError(t, g.Err())
	assert.GreaterOrEqual(t, len(got), 10)
	assert.Equal(t, g.Count(), uint64(len(got)))
	for i, v := range got {
		assert.Equal(t, square(uint64(i)), v)
	}
}

func TestGenerator_StopWhileBlocked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 1, 0)
	g, err := NewGenerator[uint64](dest, square, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	done := g.Start(ctx)

	// nobody reads, so the generator waits for room to write its second element
	for !dest.IsFull() {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	g.Stop()

	got, err := testutils.Drain[uint64](ctx, dest)
	require.NoError(t, err)
	<-done
	assert.NoError(t, g.Err())
	assert.Equal(t, []uint64{0}, got)
	assert.Equal(t, uint64(1), g.Count())
}

func TestGenerator_Interval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 10, 0)
	g, err := NewGenerator[uint64](dest, square, WithLimit(3), WithInterval(5*time.Millisecond), WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, g.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	got, err := testutils.Drain[uint64](ctx, dest)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestGenerator_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 1, 0)
	g, err := NewGenerator[uint64](dest, square, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	done := g.Start(ctx)
	for !dest.IsFull() {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
	assert.ErrorIs(t, g.Err(), context.Canceled)
}

func TestNewGenerator_Invalid(t *testing.T) {
	dest := simplebuffer.NewInMemoryBuffer[uint64]("dest", 1, 0)
	_, err := NewGenerator[uint64](dest, nil)
	assert.Error(t, err)
	_, err = NewGenerator[uint64](dest, square, WithInterval(-time.Second))
	assert.Error(t, err)
}
