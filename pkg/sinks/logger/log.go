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

package logger

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// ToLog prints the elements to a logger.
type ToLog[T any] struct {
	name    string
	logger  *zap.SugaredLogger
	written prometheus.Counter
}

type Option func(*options) error

type options struct {
	logger *zap.SugaredLogger
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) error {
		o.logger = log
		return nil
	}
}

// NewToLog returns ToLog type.
func NewToLog[T any](name string, opts ...Option) (*ToLog[T], error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.NewLogger()
	}
	return &ToLog[T]{
		name:    name,
		logger:  o.logger.With("sinkType", "log", "sink", name),
		written: logSinkWriteCount.WithLabelValues(name),
	}, nil
}

// GetName returns the name.
func (t *ToLog[T]) GetName() string {
	return t.name
}

// Write writes to the log.
func (t *ToLog[T]) Write(_ context.Context, value T) error {
	t.written.Inc()
	t.logger.Infow("Sink", zap.Any("payload", value))
	return nil
}

func (t *ToLog[T]) Close() error {
	return nil
}
