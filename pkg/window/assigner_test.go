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

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_Assign(t *testing.T) {
	f, err := NewFixed(60)
	require.NoError(t, err)
	assert.Equal(t, Fixed, f.Strategy())

	tests := []struct {
		name      string
		timestamp uint32
		id        uint32
	}{
		{name: "zero", timestamp: 0, id: 0},
		{name: "inside", timestamp: 59, id: 0},
		{name: "boundary goes right", timestamp: 60, id: 1},
		{name: "far", timestamp: 600, id: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := f.Assign(tt.timestamp)
			assert.Equal(t, tt.id, lo)
			assert.Equal(t, tt.id, hi)
			start, end := f.Span(lo)
			assert.True(t, start <= uint64(tt.timestamp) && uint64(tt.timestamp) < end)
		})
	}
}

func TestSliding_Assign(t *testing.T) {
	s, err := NewSliding(10, 5)
	require.NoError(t, err)
	assert.Equal(t, Sliding, s.Strategy())

	tests := []struct {
		timestamp uint32
		lo, hi    uint32
	}{
		{timestamp: 0, lo: 0, hi: 0},
		{timestamp: 4, lo: 0, hi: 0},
		{timestamp: 5, lo: 0, hi: 1},
		{timestamp: 9, lo: 0, hi: 1},
		{timestamp: 10, lo: 1, hi: 2},
		{timestamp: 12, lo: 1, hi: 2},
		{timestamp: 4294967295, lo: 858993458, hi: 858993459},
	}
	for _, tt := range tests {
		lo, hi := s.Assign(tt.timestamp)
		assert.Equal(t, tt.lo, lo, "lo of %d", tt.timestamp)
		assert.Equal(t, tt.hi, hi, "hi of %d", tt.timestamp)
		for id := lo; id <= hi; id++ {
			start, end := s.Span(id)
			assert.True(t, start <= uint64(tt.timestamp) && uint64(tt.timestamp) < end, "window %d of %d", id, tt.timestamp)
		}
		if lo > 0 {
			_, end := s.Span(lo - 1)
			assert.LessOrEqual(t, end, uint64(tt.timestamp))
		}
	}
}

func TestSlots(t *testing.T) {
	f, _ := NewFixed(3)
	assert.Equal(t, 1, f.Slots(0))
	assert.Equal(t, 2, f.Slots(1))
	assert.Equal(t, 2, f.Slots(3))
	assert.Equal(t, 3, f.Slots(4))

	s, _ := NewSliding(10, 5)
	assert.Equal(t, 2, s.Slots(0))
	assert.Equal(t, 4, s.Slots(7))
}

func TestNewAssigner_Invalid(t *testing.T) {
	_, err := NewAssigner(Fixed, 0, 0)
	assert.Error(t, err)
	_, err = NewAssigner(Sliding, 10, 0)
	assert.Error(t, err)
	_, err = NewAssigner(Sliding, 10, 11)
	assert.Error(t, err)
	_, err = NewAssigner(Strategy(7), 10, 1)
	assert.Error(t, err)
	a, err := NewAssigner(Fixed, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, Fixed, a.Strategy())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Tumbling")
	require.NoError(t, err)
	assert.Equal(t, Fixed, s)
	s, err = ParseStrategy("sliding")
	require.NoError(t, err)
	assert.Equal(t, Sliding, s)
	assert.Equal(t, "sliding", s.String())
	_, err = ParseStrategy("session")
	assert.Error(t, err)
}
