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

// Package kafka writes a stream to a kafka topic, one JSON encoded message per element.
package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// ToKafka produce the output to a kafka sinks.
type ToKafka[T any] struct {
	name     string
	producer sarama.SyncProducer
	topic    string
	keyFunc  func(T) string
	log      *zap.SugaredLogger
	written  prometheus.Counter
	failed   prometheus.Counter
}

type Option[T any] func(*ToKafka[T]) error

func WithLogger[T any](log *zap.SugaredLogger) Option[T] {
	return func(t *ToKafka[T]) error {
		t.log = log
		return nil
	}
}

// WithKeyFunc sets the function computing the message key of an element. Messages carry no key by default.
func WithKeyFunc[T any](f func(T) string) Option[T] {
	return func(t *ToKafka[T]) error {
		t.keyFunc = f
		return nil
	}
}

// NewProducer returns a synchronous producer connected to brokers.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer. %w", err)
	}
	return producer, nil
}

// NewToKafka returns ToKafka type.
func NewToKafka[T any](name string, producer sarama.SyncProducer, topic string, opts ...Option[T]) (*ToKafka[T], error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka sink %s: nil producer", name)
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka sink %s: empty topic", name)
	}
	toKafka := &ToKafka[T]{
		name:     name,
		producer: producer,
		topic:    topic,
		written:  kafkaSinkWriteCount.WithLabelValues(name),
		failed:   kafkaSinkWriteErrors.WithLabelValues(name),
	}
	for _, o := range opts {
		if err := o(toKafka); err != nil {
			return nil, err
		}
	}
	if toKafka.log == nil {
		toKafka.log = logging.NewLogger()
	}
	toKafka.log = toKafka.log.With("sinkType", "kafka").With("topic", topic)
	return toKafka, nil
}

// GetName returns the name.
func (tk *ToKafka[T]) GetName() string {
	return tk.name
}

// Write sends one element to the kafka topic.
func (tk *ToKafka[T]) Write(_ context.Context, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka sink %s: encoding %v: %w", tk.name, value, err)
	}
	message := &sarama.ProducerMessage{
		Topic: tk.topic,
		Value: sarama.ByteEncoder(payload),
	}
	if tk.keyFunc != nil {
		message.Key = sarama.StringEncoder(tk.keyFunc(value))
	}
	if _, _, err := tk.producer.SendMessage(message); err != nil {
		tk.failed.Inc()
		tk.log.Errorw("SendMessage failed", zap.Error(err))
		return fmt.Errorf("kafka sink %s: %w", tk.name, err)
	}
	tk.written.Inc()
	return nil
}

func (tk *ToKafka[T]) Close() error {
	tk.log.Info("Closing kafka producer...")
	return tk.producer.Close()
}
