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

package generator

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type options struct {
	// limit is the number of elements to generate, 0 means until stopped
	limit uint64
	// interval is the pause between two elements, 0 means as fast as the output accepts
	interval time.Duration
	// name is the stage name used in logs and metrics
	name string
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		name: "generator",
	}
}

// WithLimit stops the generator after n elements
func WithLimit(n uint64) Option {
	return func(o *options) error {
		o.limit = n
		return nil
	}
}

// WithInterval sets the pause between two elements
func WithInterval(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("interval must not be negative, got %s", d)
		}
		o.interval = d
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
