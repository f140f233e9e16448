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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppend(t *testing.T) {
	q := New[int](2)
	_, ok := q.Append(1)
	assert.False(t, ok)
	q.Append(2)
	assert.Equal(t, 2, q.Length())
	assert.True(t, q.Full())
	assert.Equal(t, []int{1, 2}, q.Items())

	evicted, ok := q.Append(3)
	assert.True(t, ok)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, q.Length())
	assert.Equal(t, []int{2, 3}, q.Items())

	q.Append(4)
	q.Append(5)
	q.Append(6)
	assert.Equal(t, 5, q.Items()[0])
	assert.Equal(t, 6, q.Items()[1])
	assert.Equal(t, 6, q.ReversedItems()[0])
	assert.Equal(t, 5, q.ReversedItems()[1])
}

func TestEmpty(t *testing.T) {
	q := New[string](3)
	assert.Equal(t, 0, q.Length())
	assert.False(t, q.Full())
	assert.Empty(t, q.Items())
	assert.Empty(t, q.ReversedItems())
	assert.Panics(t, func() { New[int](0) })
}
