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
	"fmt"
	"strings"
)

// Strategy names how windows are laid out on the timeline.
type Strategy int

const (
	Fixed Strategy = iota
	Sliding
)

func (s Strategy) String() string {
	switch s {
	case Fixed:
		return "fixed"
	case Sliding:
		return "sliding"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "fixed", "tumbling":
		return Fixed, nil
	case "sliding":
		return Sliding, nil
	default:
		return 0, fmt.Errorf("unrecognized window strategy %q", name)
	}
}

// Assigner maps a timestamp to the ids of the windows that contain it.
type Assigner interface {
	// Strategy returns the window strategy
	Strategy() Strategy
	// Assign returns the inclusive range of window ids whose windows contain the timestamp.
	Assign(timestamp uint32) (lo, hi uint32)
	// Span returns the first timestamp of the window and the first timestamp after it.
	Span(id uint32) (start, end uint64)
	// Slots returns how many windows must be retained so that none is closed before the lateness has elapsed.
	Slots(lateness uint32) int
}

// fixedAssigner lays out windows back to back.
type fixedAssigner struct {
	size uint32
}

// NewFixed returns the assigner of fixed windows of the given size.
func NewFixed(size uint32) (Assigner, error) {
	if size == 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	return fixedAssigner{size: size}, nil
}

func (f fixedAssigner) Strategy() Strategy {
	return Fixed
}

func (f fixedAssigner) Assign(timestamp uint32) (uint32, uint32) {
	// integer division truncates, so a boundary timestamp falls into the window to its right
	id := timestamp / f.size
	return id, id
}

func (f fixedAssigner) Span(id uint32) (uint64, uint64) {
	start := uint64(id) * uint64(f.size)
	return start, start + uint64(f.size)
}

func (f fixedAssigner) Slots(lateness uint32) int {
	return slots(lateness, f.size, f.size)
}

// slidingAssigner lays out windows of size that start every step.
type slidingAssigner struct {
	size uint32
	step uint32
}

// NewSliding returns the assigner of sliding windows. The step must not exceed the size, otherwise some timestamps
// would belong to no window.
func NewSliding(size, step uint32) (Assigner, error) {
	switch {
	case size == 0:
		return nil, fmt.Errorf("window size must be positive")
	case step == 0:
		return nil, fmt.Errorf("window step must be positive")
	case step > size:
		return nil, fmt.Errorf("window step %d exceeds window size %d", step, size)
	}
	return slidingAssigner{size: size, step: step}, nil
}

func (s slidingAssigner) Strategy() Strategy {
	return Sliding
}

func (s slidingAssigner) Assign(timestamp uint32) (uint32, uint32) {
	hi := timestamp / s.step
	// lo is ceil((timestamp-size+1)/step), the first window whose end is past the timestamp
	var lo uint32
	if uint64(timestamp)+1 > uint64(s.size) {
		lo = uint32((uint64(timestamp) - uint64(s.size) + uint64(s.step)) / uint64(s.step))
	}
	return lo, hi
}

func (s slidingAssigner) Span(id uint32) (uint64, uint64) {
	start := uint64(id) * uint64(s.step)
	return start, start + uint64(s.size)
}

func (s slidingAssigner) Slots(lateness uint32) int {
	return slots(lateness, s.size, s.step)
}

// NewAssigner builds the assigner of the given strategy. The step is ignored for fixed windows.
func NewAssigner(strategy Strategy, size, step uint32) (Assigner, error) {
	switch strategy {
	case Fixed:
		return NewFixed(size)
	case Sliding:
		return NewSliding(size, step)
	default:
		return nil, fmt.Errorf("unrecognized window strategy %s", strategy)
	}
}

// slots is ceil((lateness+size)/step).
func slots(lateness, size, step uint32) int {
	total := uint64(lateness) + uint64(size)
	return int((total + uint64(step) - 1) / uint64(step))
}
