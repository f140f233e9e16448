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
Package isb defines the inter-step buffer, the only way two stages of a dataflow network talk to each other.
An inter-step buffer is a single-producer/single-consumer, depth-bounded, ordered queue. Every data element travels
with an end-of-stream marker set to false, and the stream is terminated by exactly one marker set to true. A reader
reads the marker first and the element second, so the end of a stream is always observed after the last element.
*/

package isb

import "context"

// BufferWriter is the buffer to which we are writing.
type BufferWriter[T any] interface {
	BufferInformation
	// Write blocks until the element and its end marker are enqueued, or the context is done.
	Write(context.Context, T) error
	// TryWrite enqueues the element only if there is space, otherwise it returns a BufferWriteErr with Full set.
	TryWrite(T) error
	// WriteEnd enqueues the terminal end-of-stream marker. It must be called exactly once.
	WriteEnd(context.Context) error
	// IsFull reports whether a Write would block right now.
	IsFull() bool
}

// BufferReader is the buffer from which we are reading.
type BufferReader[T any] interface {
	BufferInformation
	// ReadEnd consumes the next end marker. It returns true exactly once, after every element has been read.
	ReadEnd(context.Context) (bool, error)
	// Read returns the element paired with the last end marker read by ReadEnd.
	Read(context.Context) (T, error)
	// IsEmpty reports whether a ReadEnd would block right now. A buffer with a pending terminal marker is not empty.
	IsEmpty() bool
}

// Buffer is both ends of an inter-step buffer.
type Buffer[T any] interface {
	BufferWriter[T]
	BufferReader[T]
}

// BufferInformation has information regarding the buffer.
type BufferInformation interface {
	// GetName returns the name.
	GetName() string
	// GetPartitionIdx returns the lane index of the buffer inside its array.
	GetPartitionIdx() int32
}

// Readers converts a slice of buffers to their reader ends.
func Readers[T any, B BufferReader[T]](buffers []B) []BufferReader[T] {
	readers := make([]BufferReader[T], len(buffers))
	for i, b := range buffers {
		readers[i] = b
	}
	return readers
}

// Writers converts a slice of buffers to their writer ends.
func Writers[T any, B BufferWriter[T]](buffers []B) []BufferWriter[T] {
	writers := make([]BufferWriter[T], len(buffers))
	for i, b := range buffers {
		writers[i] = b
	}
	return writers
}
