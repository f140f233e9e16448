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

package pipeline

import (
	"strconv"

	"github.com/numaproj/dataflow/pkg/window"
)

// Record is the element generated by the pipeline source: a numeric reading of one of the keys.
type Record = window.Record[uint32, float64]

// Result is a window closed by the pipeline. Its value type depends on the configured aggregate.
type Result = window.Result[uint32, any]

// RecordFunc returns the generator function of the pipeline. Record seq belongs to key seq mod keys and its
// timestamp follows seq/keys, trailing it by up to disorder in a deterministic pattern. Values cycle through 0..99.
func RecordFunc(keys int, disorder uint32) func(seq uint64) Record {
	k := uint64(keys)
	return func(seq uint64) Record {
		base := uint32(seq / k)
		lag := uint32((seq * 7919) % (uint64(disorder) + 1))
		if lag > base {
			lag = base
		}
		return window.NewRecord(uint32(seq%k), float64(seq%100), base-lag)
	}
}

func recordKey(r Record) string {
	return strconv.FormatUint(uint64(r.Key), 10)
}

func resultKey(r Result) string {
	return strconv.FormatUint(uint64(r.Key), 10) + "-" + strconv.FormatUint(uint64(r.WindowID), 10)
}
