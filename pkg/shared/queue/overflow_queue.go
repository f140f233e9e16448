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

package queue

import "sync"

// OverflowQueue is a thread safe ring with a fixed capacity. Appending to a full ring overwrites the oldest element.
type OverflowQueue[T any] struct {
	elements []T
	head     int
	length   int
	lock     *sync.RWMutex
}

// New returns an empty ring holding at most size elements.
func New[T any](size int) *OverflowQueue[T] {
	if size < 1 {
		panic("queue: capacity must be positive")
	}
	return &OverflowQueue[T]{
		elements: make([]T, size),
		lock:     new(sync.RWMutex),
	}
}

// Append adds an element to the tail and returns the element it evicted, if any.
func (q *OverflowQueue[T]) Append(value T) (evicted T, ok bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	capacity := len(q.elements)
	if q.length == capacity {
		evicted, ok = q.elements[q.head], true
		q.elements[q.head] = value
		q.head = (q.head + 1) % capacity
		return evicted, ok
	}
	q.elements[(q.head+q.length)%capacity] = value
	q.length++
	return evicted, false
}

// Items returns a copy of the elements from the oldest to the newest.
func (q *OverflowQueue[T]) Items() []T {
	q.lock.RLock()
	defer q.lock.RUnlock()
	r := make([]T, q.length)
	for i := range r {
		r[i] = q.elements[(q.head+i)%len(q.elements)]
	}
	return r
}

// ReversedItems returns the elements from the newest to the oldest.
func (q *OverflowQueue[T]) ReversedItems() []T {
	items := q.Items()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Length returns the current length of the queue
func (q *OverflowQueue[T]) Length() int {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return q.length
}

// Full reports whether the next Append evicts an element.
func (q *OverflowQueue[T]) Full() bool {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return q.length == len(q.elements)
}
