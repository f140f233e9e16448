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

// Package nats publishes a stream to a NATS subject, one JSON encoded message per element.
package nats

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	natslib "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// natsSinkWriteCount is used to indicate the number of messages published to nats
var natsSinkWriteCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "nats_sink",
	Name:      "write_total",
	Help:      "Total number of messages published to nats",
}, []string{metricspkg.LabelStage})

// ToNats publishes the elements of a stream to a subject.
type ToNats[T any] struct {
	name    string
	subject string
	conn    *natslib.Conn
	log     *zap.SugaredLogger
	written prometheus.Counter
}

type Option[T any] func(*ToNats[T]) error

func WithLogger[T any](log *zap.SugaredLogger) Option[T] {
	return func(t *ToNats[T]) error {
		t.log = log
		return nil
	}
}

// NewConn connects to the NATS server at url.
func NewConn(url string, name string) (*natslib.Conn, error) {
	conn, err := natslib.Connect(url, natslib.Name(name), natslib.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats server %s. %w", url, err)
	}
	return conn, nil
}

// NewToNats returns a sink publishing to subject over conn. The sink owns the connection and closes it.
func NewToNats[T any](name string, conn *natslib.Conn, subject string, opts ...Option[T]) (*ToNats[T], error) {
	if conn == nil {
		return nil, fmt.Errorf("nats sink %s: nil connection", name)
	}
	if subject == "" {
		return nil, fmt.Errorf("nats sink %s: empty subject", name)
	}
	t := &ToNats[T]{
		name:    name,
		subject: subject,
		conn:    conn,
		written: natsSinkWriteCount.WithLabelValues(name),
	}
	for _, o := range opts {
		if err := o(t); err != nil {
			return nil, err
		}
	}
	if t.log == nil {
		t.log = logging.NewLogger()
	}
	t.log = t.log.With("sinkType", "nats").With("subject", subject)
	return t, nil
}

// GetName returns the name.
func (t *ToNats[T]) GetName() string {
	return t.name
}

// Write publishes one element.
func (t *ToNats[T]) Write(_ context.Context, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("nats sink %s: encoding %v: %w", t.name, value, err)
	}
	if err := t.conn.Publish(t.subject, payload); err != nil {
		return fmt.Errorf("nats sink %s: %w", t.name, err)
	}
	t.written.Inc()
	return nil
}

// Close flushes the pending messages and closes the connection.
func (t *ToNats[T]) Close() error {
	t.log.Info("Closing nats connection...")
	defer t.conn.Close()
	return t.conn.Flush()
}
