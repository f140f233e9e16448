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
Package simplebuffer is an in memory bounded queue that implements the isb interfaces on top of a Go channel.
Each slot carries either a data element with a false end marker or the terminal true end marker, so a reader can
never observe the end of a stream before it has read every element written ahead of it.
*/

package simplebuffer

import (
	"context"
	"fmt"

	"github.com/numaproj/dataflow/pkg/isb"
)

// elem is the element stored in the buffer
type elem[T any] struct {
	value T
	end   bool
}

// InMemoryBuffer implements the isb.Buffer interface.
type InMemoryBuffer[T any] struct {
	name         string
	size         int
	partitionIdx int32
	slots        chan elem[T]
	// ended is owned by the writer.
	ended bool
	// pending and endRead are owned by the reader.
	pending *elem[T]
	endRead bool
}

var _ isb.Buffer[int] = (*InMemoryBuffer[int])(nil)

// NewInMemoryBuffer returns a new buffer that holds up to size elements.
func NewInMemoryBuffer[T any](name string, size int, partition int32) *InMemoryBuffer[T] {
	if size < 1 {
		panic(fmt.Sprintf("buffer %q: depth must be at least 1, got %d", name, size))
	}
	return &InMemoryBuffer[T]{
		name:         name,
		size:         size,
		partitionIdx: partition,
		slots:        make(chan elem[T], size),
	}
}

// NewBuffers returns an n-wide array of buffers named <name>-<idx>.
func NewBuffers[T any](name string, n int, size int) []*InMemoryBuffer[T] {
	buffers := make([]*InMemoryBuffer[T], n)
	for i := range buffers {
		buffers[i] = NewInMemoryBuffer[T](fmt.Sprintf("%s-%d", name, i), size, int32(i))
	}
	return buffers
}

// NewBufferGrid returns an n x m array of buffers named <name>-<row>-<col>. The partition index is the row-major lane.
func NewBufferGrid[T any](name string, n, m int, size int) [][]*InMemoryBuffer[T] {
	grid := make([][]*InMemoryBuffer[T], n)
	for i := range grid {
		grid[i] = make([]*InMemoryBuffer[T], m)
		for j := range grid[i] {
			grid[i][j] = NewInMemoryBuffer[T](fmt.Sprintf("%s-%d-%d", name, i, j), size, int32(i*m+j))
		}
	}
	return grid
}

// Stringer
func (b *InMemoryBuffer[T]) String() string {
	return fmt.Sprintf("(%s) size:%d len:%d", b.name, b.size, len(b.slots))
}

// GetName returns the buffer name.
func (b *InMemoryBuffer[T]) GetName() string {
	return b.name
}

// GetPartitionIdx returns the partitionIdx.
func (b *InMemoryBuffer[T]) GetPartitionIdx() int32 {
	return b.partitionIdx
}

// Len returns the number of slots currently queued, end marker included.
func (b *InMemoryBuffer[T]) Len() int {
	return len(b.slots)
}

// IsFull returns whether the queue is full.
func (b *InMemoryBuffer[T]) IsFull() bool {
	return len(b.slots) == b.size
}

// IsEmpty returns whether the queue is empty.
func (b *InMemoryBuffer[T]) IsEmpty() bool {
	return b.pending == nil && len(b.slots) == 0
}

func (b *InMemoryBuffer[T]) Write(ctx context.Context, value T) error {
	b.mustBeOpen()
	select {
	case b.slots <- elem[T]{value: value}:
		return nil
	case <-ctx.Done():
		return isb.BufferWriteErr{Name: b.name, Message: "write cancelled", Err: ctx.Err()}
	}
}

func (b *InMemoryBuffer[T]) TryWrite(value T) error {
	b.mustBeOpen()
	select {
	case b.slots <- elem[T]{value: value}:
		return nil
	default:
		return isb.BufferWriteErr{Name: b.name, Full: true, Message: isb.BufferFullMessage}
	}
}

func (b *InMemoryBuffer[T]) WriteEnd(ctx context.Context) error {
	b.mustBeOpen()
	b.ended = true
	select {
	case b.slots <- elem[T]{end: true}:
		return nil
	case <-ctx.Done():
		return isb.BufferWriteErr{Name: b.name, Message: "write end cancelled", Err: ctx.Err()}
	}
}

func (b *InMemoryBuffer[T]) mustBeOpen() {
	if b.ended {
		panic(fmt.Sprintf("buffer %q: write after end of stream", b.name))
	}
}

func (b *InMemoryBuffer[T]) ReadEnd(ctx context.Context) (bool, error) {
	if b.pending != nil {
		return false, nil
	}
	if b.endRead {
		panic(fmt.Sprintf("buffer %q: end marker read twice", b.name))
	}
	e, err := b.receive(ctx)
	if err != nil {
		return false, err
	}
	if e.end {
		b.endRead = true
		return true, nil
	}
	b.pending = &e
	return false, nil
}

func (b *InMemoryBuffer[T]) Read(ctx context.Context) (T, error) {
	var zero T
	if b.pending != nil {
		v := b.pending.value
		b.pending = nil
		return v, nil
	}
	if b.endRead {
		return zero, isb.BufferReadErr{Name: b.name, Message: "read after end", Err: isb.ErrStreamEnded}
	}
	e, err := b.receive(ctx)
	if err != nil {
		return zero, err
	}
	if e.end {
		b.endRead = true
		return zero, isb.BufferReadErr{Name: b.name, Message: "read after end", Err: isb.ErrStreamEnded}
	}
	return e.value, nil
}

func (b *InMemoryBuffer[T]) receive(ctx context.Context) (elem[T], error) {
	select {
	case e := <-b.slots:
		return e, nil
	case <-ctx.Done():
		return elem[T]{}, isb.BufferReadErr{Name: b.name, Empty: len(b.slots) == 0, Message: "read cancelled", Err: ctx.Err()}
	}
}
