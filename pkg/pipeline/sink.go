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
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/dataflow/pkg/config"
	"github.com/numaproj/dataflow/pkg/sinks"
	"github.com/numaproj/dataflow/pkg/sinks/blackhole"
	"github.com/numaproj/dataflow/pkg/sinks/kafka"
	"github.com/numaproj/dataflow/pkg/sinks/logger"
	"github.com/numaproj/dataflow/pkg/sinks/nats"
	"github.com/numaproj/dataflow/pkg/sinks/redis"
)

// newSink builds the sink described by the configuration.
func newSink(conf *config.PipelineConfig, log *zap.SugaredLogger) (sinks.Sinker[Result], error) {
	name := conf.Name + "-sink"
	switch conf.Sink.Type {
	case config.SinkBlackhole:
		return blackhole.NewBlackhole[Result](name), nil
	case config.SinkLog:
		return logger.NewToLog[Result](name, logger.WithLogger(log))
	case config.SinkKafka:
		producer, err := kafka.NewProducer(conf.Sink.Brokers)
		if err != nil {
			return nil, err
		}
		return kafka.NewToKafka[Result](name, producer, conf.Sink.Topic,
			kafka.WithLogger[Result](log),
			kafka.WithKeyFunc[Result](resultKey))
	case config.SinkRedis:
		return redis.NewRedisSink[Result](name, redis.NewClient(conf.Sink.Addrs), resultKey,
			redis.WithLogger[Result](log),
			redis.WithTTL[Result](conf.Sink.TTL))
	case config.SinkNats:
		conn, err := nats.NewConn(conf.Sink.URL, name)
		if err != nil {
			return nil, err
		}
		return nats.NewToNats[Result](name, conn, conf.Sink.Topic, nats.WithLogger[Result](log))
	default:
		return nil, fmt.Errorf("unrecognized sink type %q", conf.Sink.Type)
	}
}
