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

package forward

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// options for routing elements between lanes
type options struct {
	// policy is the distribution policy
	policy Policy
	// keyExtractor is a func(T) int used by KeyBy fan-out, kept untyped so that options stay non-generic
	keyExtractor any
	// keyGenerator is used by KeyBy fan-in
	keyGenerator KeyGenerator
	// retryInterval is the time.Duration to sleep when every lane is full (fan-out) or empty (fan-in)
	retryInterval time.Duration
	// bufferDepth is the depth of intermediate buffers created by Redistribute
	bufferDepth int
	// name is the stage name used in logs and metrics
	name string
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		policy:        RoundRobin,
		retryInterval: time.Millisecond,
		bufferDepth:   16,
		name:          "connector",
	}
}

// WithPolicy sets the distribution policy
func WithPolicy(p Policy) Option {
	return func(o *options) error {
		if p < RoundRobin || p > Broadcast {
			return fmt.Errorf("unknown routing policy %d", p)
		}
		o.policy = p
		return nil
	}
}

// WithKeyExtractor sets the function that maps an element to its lane for KeyBy fan-out
func WithKeyExtractor[T any](f func(T) int) Option {
	return func(o *options) error {
		o.keyExtractor = f
		return nil
	}
}

// WithKeyGenerator sets the function that names the lane of the i-th read for KeyBy fan-in
func WithKeyGenerator(f KeyGenerator) Option {
	return func(o *options) error {
		o.keyGenerator = f
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
	o.logger = o.logger.With("stage", o.name, "policy", o.policy.String())
	return o, nil
}
