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

package merge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/shared/logging"
)

type options struct {
	// bufferDepth is the depth of the buffers between the levels of a merge tree
	bufferDepth int
	// frontier reports the position below which every element was already written to an input
	frontier func() uint64
	// position is a func(T) uint64 giving the position of an element, checked against the element type by Merge
	position any
	// retryInterval is the time.Duration to sleep when the least pending element is not yet safe to emit
	retryInterval time.Duration
	// name is the stage name used in logs and metrics
	name string
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		bufferDepth:   16,
		retryInterval: time.Millisecond,
		name:          "merge",
	}
}

// WithBufferDepth sets the depth of the intermediate buffers
func WithBufferDepth(d int) Option {
	return func(o *options) error {
		if d < 1 {
			return fmt.Errorf("buffer depth must be at least 1, got %d", d)
		}
		o.bufferDepth = d
		return nil
	}
}

// WithFrontier lets Merge emit an element without waiting for every input to hold one. frontier must report a
// position such that every element positioned below it was already written to its input, and position must order
// elements the same way as the comparator.
func WithFrontier[T any](frontier func() uint64, position func(T) uint64) Option {
	return func(o *options) error {
		if frontier == nil || position == nil {
			return fmt.Errorf("frontier and position must both be set")
		}
		o.frontier = frontier
		o.position = position
		return nil
	}
}

// WithRetryInterval sets the retry interval
func WithRetryInterval(f time.Duration) Option {
	return func(o *options) error {
		if f <= 0 {
			return fmt.Errorf("retry interval must be positive, got %s", f)
		}
		o.retryInterval = f
		return nil
	}
}

// WithName sets the stage name
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// WithLogger is used to return logger information
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

func buildOptions(ctx context.Context, opts []Option) (*options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.FromContext(ctx)
	}
	return o, nil
}
