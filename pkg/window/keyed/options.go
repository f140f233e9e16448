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

package keyed

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/window"
)

type options struct {
	// lateness is how far a timestamp may trail the largest timestamp seen for its key and still be admitted
	lateness uint32
	// maxKeys is the number of distinct keys the engine accepts
	maxKeys int
	// sequencer, when set, numbers the results written by Run instead of the engine's own counter
	sequencer *window.Sequencer
	// name is the stage name used in logs and metrics
	name string
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		maxKeys: 1024,
		name:    "keyed-window",
	}
}

// WithLateness sets the allowed lateness
func WithLateness(l uint32) Option {
	return func(o *options) error {
		o.lateness = l
		return nil
	}
}

// WithMaxKeys sets the number of distinct keys the engine accepts
func WithMaxKeys(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("max keys must be at least 1, got %d", n)
		}
		o.maxKeys = n
		return nil
	}
}

// WithSequencer makes Run number its results from a sequencer shared with other engines
func WithSequencer(s *window.Sequencer) Option {
	return func(o *options) error {
		o.sequencer = s
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

func buildOptions(opts []Option) (*options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.NewLogger()
	}
	o.logger = o.logger.With("stage", o.name)
	return o, nil
}
