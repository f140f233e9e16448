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

// Package redis writes a stream to redis, one JSON encoded value per element under a key derived from the element.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
	"github.com/numaproj/dataflow/pkg/shared/logging"
)

// sinkWriteCount is used to indicate the number of elements written to redis
var sinkWriteCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "redis_sink",
	Name:      "write_total",
	Help:      "Total number of elements written to redis sink",
}, []string{metricspkg.LabelStage})

// Setter is the part of a redis client the sink uses.
type Setter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSink is a sink to publish to redis.
type RedisSink[T any] struct {
	name    string
	client  Setter
	keyFunc func(T) string
	ttl     time.Duration
	logger  *zap.SugaredLogger
	written prometheus.Counter
}

type Option[T any] func(sink *RedisSink[T]) error

func WithLogger[T any](log *zap.SugaredLogger) Option[T] {
	return func(rs *RedisSink[T]) error {
		rs.logger = log
		return nil
	}
}

// WithTTL sets the expiration of the written keys, 0 means no expiration
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(rs *RedisSink[T]) error {
		if ttl < 0 {
			return fmt.Errorf("ttl must not be negative, got %s", ttl)
		}
		rs.ttl = ttl
		return nil
	}
}

// NewClient returns a client of a single node, a sentinel group or a cluster, depending on the addresses.
func NewClient(addrs []string) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: addrs})
}

// NewRedisSink returns RedisSink type. Every element is written under name-keyFunc(element).
func NewRedisSink[T any](name string, client Setter, keyFunc func(T) string, opts ...Option[T]) (*RedisSink[T], error) {
	if client == nil {
		return nil, fmt.Errorf("redis sink %s: nil client", name)
	}
	if keyFunc == nil {
		return nil, fmt.Errorf("redis sink %s: nil key function", name)
	}
	rs := &RedisSink[T]{
		name:    name,
		client:  client,
		keyFunc: keyFunc,
		written: sinkWriteCount.WithLabelValues(name),
	}
	for _, o := range opts {
		if err := o(rs); err != nil {
			return nil, err
		}
	}
	if rs.logger == nil {
		rs.logger = logging.NewLogger()
	}
	rs.logger = rs.logger.With("sinkType", "redis")
	return rs, nil
}

// GetName returns the name.
func (rs *RedisSink[T]) GetName() string {
	return rs.name
}

// Write writes one element to redis.
func (rs *RedisSink[T]) Write(ctx context.Context, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis sink %s: encoding %v: %w", rs.name, value, err)
	}
	key := fmt.Sprintf("%s-%s", rs.name, rs.keyFunc(value))
	if err := rs.client.Set(ctx, key, payload, rs.ttl).Err(); err != nil {
		rs.logger.Errorw("Set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis sink %s: %w", rs.name, err)
	}
	rs.written.Inc()
	return nil
}

// Close closes the client if it can be closed.
func (rs *RedisSink[T]) Close() error {
	if c, ok := rs.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
