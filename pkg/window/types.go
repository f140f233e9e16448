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
	"math"
)

// EmptyWindowID marks a slot that holds no window.
const EmptyWindowID = math.MaxUint32

// NoKey is the key type of results produced by windows that are not keyed.
type NoKey struct{}

// Record is a keyed, timestamped input of a window engine. A record that is not Valid is dropped on arrival.
type Record[K comparable, IN any] struct {
	Key       K
	Value     IN
	Timestamp uint32
	Valid     bool
}

// NewRecord returns a valid record.
func NewRecord[K comparable, IN any](key K, value IN, timestamp uint32) Record[K, IN] {
	return Record[K, IN]{Key: key, Value: value, Timestamp: timestamp, Valid: true}
}

// Result is the lowered aggregate of one window. Sequence is minted by the engine that produced the result, in
// emission order, and is what a merge uses to restore the order across parallel engines.
type Result[K comparable, OUT any] struct {
	WindowID  uint32
	Key       K
	Value     OUT
	Timestamp uint32
	Sequence  uint64
}

func (r Result[K, OUT]) String() string {
	return fmt.Sprintf("Result{window: %d, key: %v, value: %v, ts: %d, seq: %d}", r.WindowID, r.Key, r.Value, r.Timestamp, r.Sequence)
}
