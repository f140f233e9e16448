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

package testutils

import (
	"context"

	"github.com/numaproj/dataflow/pkg/isb"
)

// Feed writes every element to the buffer followed by the terminal end marker.
func Feed[T any](ctx context.Context, w isb.BufferWriter[T], elements []T) error {
	for _, e := range elements {
		if err := w.Write(ctx, e); err != nil {
			return err
		}
	}
	return w.WriteEnd(ctx)
}

// Drain reads the buffer until its end marker and returns every element read.
func Drain[T any](ctx context.Context, r isb.BufferReader[T]) ([]T, error) {
	var out []T
	for {
		end, err := r.ReadEnd(ctx)
		if err != nil {
			return out, err
		}
		if end {
			return out, nil
		}
		v, err := r.Read(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Sequence returns the integers [0, n).
func Sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
