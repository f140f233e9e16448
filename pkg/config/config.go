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

// Package config loads the configuration of a dataflow pipeline. Values come from, in increasing precedence, the
// defaults below, an optional YAML file and DATAFLOW_ prefixed environment variables (window.size is read from
// DATAFLOW_WINDOW_SIZE).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/numaproj/dataflow/pkg/aggregate"
	"github.com/numaproj/dataflow/pkg/forward"
	"github.com/numaproj/dataflow/pkg/shuffle"
	"github.com/numaproj/dataflow/pkg/window"
)

const envPrefix = "DATAFLOW"

// Sink types
const (
	SinkBlackhole = "blackhole"
	SinkLog       = "log"
	SinkKafka     = "kafka"
	SinkRedis     = "redis"
	SinkNats      = "nats"
)

// PipelineConfig describes a generator -> fan-out -> keyed windows -> merge -> sink pipeline.
type PipelineConfig struct {
	Name string `mapstructure:"name"`
	// Width is the number of parallel window engines
	Width int `mapstructure:"width"`
	// BufferDepth is the depth of every buffer between stages
	BufferDepth int `mapstructure:"bufferDepth"`
	// Policy routes generated records to the engines
	Policy string `mapstructure:"policy"`
	// Hasher hashes keys for the keyby policy
	Hasher string `mapstructure:"hasher"`
	// Filter is an optional expression records must satisfy to reach the engines
	Filter    string        `mapstructure:"filter"`
	Aggregate string        `mapstructure:"aggregate"`
	Source    SourceConfig  `mapstructure:"source"`
	Window    WindowConfig  `mapstructure:"window"`
	Sink      SinkConfig    `mapstructure:"sink"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig configures the synthetic record generator.
type SourceConfig struct {
	// Keys is the number of distinct keys generated, and the key limit of every engine
	Keys int `mapstructure:"keys"`
	// Limit is the number of records to generate, 0 means until interrupted
	Limit uint64 `mapstructure:"limit"`
	// Interval is the pause between two records
	Interval time.Duration `mapstructure:"interval"`
	// Disorder is how far a generated timestamp may trail the timeline
	Disorder uint32 `mapstructure:"disorder"`
}

type WindowConfig struct {
	Strategy string `mapstructure:"strategy"`
	Size     uint32 `mapstructure:"size"`
	Step     uint32 `mapstructure:"step"`
	Lateness uint32 `mapstructure:"lateness"`
}

// SinkConfig selects where the closed windows go. Brokers and Topic configure kafka, Addrs and TTL configure redis,
// URL and Topic configure nats, where the topic is the subject.
type SinkConfig struct {
	Type    string        `mapstructure:"type"`
	Brokers []string      `mapstructure:"brokers"`
	Topic   string        `mapstructure:"topic"`
	Addrs   []string      `mapstructure:"addrs"`
	TTL     time.Duration `mapstructure:"ttl"`
	URL     string        `mapstructure:"url"`
}

type MetricsConfig struct {
	// Addr is the listen address of the metrics server, empty disables it
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "dataflow")
	v.SetDefault("width", 4)
	v.SetDefault("bufferDepth", 64)
	v.SetDefault("policy", forward.KeyBy.String())
	v.SetDefault("hasher", string(shuffle.XXHash))
	v.SetDefault("filter", "")
	v.SetDefault("aggregate", "count")
	v.SetDefault("source.keys", 8)
	v.SetDefault("source.limit", 10000)
	v.SetDefault("source.interval", time.Duration(0))
	v.SetDefault("source.disorder", 2)
	v.SetDefault("window.strategy", window.Fixed.String())
	v.SetDefault("window.size", 10)
	v.SetDefault("window.step", 10)
	v.SetDefault("window.lateness", 2)
	v.SetDefault("sink.type", SinkLog)
	v.SetDefault("sink.topic", "dataflow-results")
	v.SetDefault("sink.ttl", time.Duration(0))
	v.SetDefault("sink.url", "")
	v.SetDefault("metrics.addr", "")
}

// LoadConfig reads the pipeline configuration. An empty path uses the defaults and the environment only.
func LoadConfig(path string) (*PipelineConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load configuration file. %w", err)
		}
	}
	conf := &PipelineConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed unmarshal configuration file. %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// WatchConfig calls onChange with the reloaded configuration every time the file at path is written. A reloaded
// configuration that does not validate is passed to onError instead.
func WatchConfig(path string, onChange func(*PipelineConfig), onError func(error)) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := LoadConfig(path)
		if err != nil {
			onError(err)
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

// Validate reports every invalid value of the configuration.
func (c *PipelineConfig) Validate() error {
	var err error
	if c.Width < 1 {
		err = multierr.Append(err, fmt.Errorf("width must be at least 1, got %d", c.Width))
	}
	if c.BufferDepth < 1 {
		err = multierr.Append(err, fmt.Errorf("bufferDepth must be at least 1, got %d", c.BufferDepth))
	}
	if policy, e := forward.ParsePolicy(c.Policy); e != nil {
		err = multierr.Append(err, e)
	} else if policy != forward.KeyBy && c.Width > 1 {
		// every window of a key must be built by one engine
		err = multierr.Append(err, fmt.Errorf("policy %s splits keys across engines, width %d requires keyby", policy, c.Width))
	}
	if _, e := shuffle.ParseHasher(c.Hasher); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := aggregate.Lookup(c.Aggregate); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Source.Keys < 1 {
		err = multierr.Append(err, fmt.Errorf("source.keys must be at least 1, got %d", c.Source.Keys))
	}
	if c.Source.Interval < 0 {
		err = multierr.Append(err, fmt.Errorf("source.interval must not be negative, got %s", c.Source.Interval))
	}
	if _, e := c.Window.Assigner(); e != nil {
		err = multierr.Append(err, e)
	}
	switch c.Sink.Type {
	case SinkBlackhole, SinkLog:
	case SinkKafka:
		if len(c.Sink.Brokers) == 0 {
			err = multierr.Append(err, fmt.Errorf("sink.brokers is required by the kafka sink"))
		}
		if c.Sink.Topic == "" {
			err = multierr.Append(err, fmt.Errorf("sink.topic is required by the kafka sink"))
		}
	case SinkRedis:
		if len(c.Sink.Addrs) == 0 {
			err = multierr.Append(err, fmt.Errorf("sink.addrs is required by the redis sink"))
		}
		if c.Sink.TTL < 0 {
			err = multierr.Append(err, fmt.Errorf("sink.ttl must not be negative, got %s", c.Sink.TTL))
		}
	case SinkNats:
		if c.Sink.URL == "" {
			err = multierr.Append(err, fmt.Errorf("sink.url is required by the nats sink"))
		}
		if c.Sink.Topic == "" {
			err = multierr.Append(err, fmt.Errorf("sink.topic is required by the nats sink"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unrecognized sink type %q", c.Sink.Type))
	}
	return err
}

// Assigner builds the window assigner of the configuration.
func (w WindowConfig) Assigner() (window.Assigner, error) {
	strategy, err := window.ParseStrategy(w.Strategy)
	if err != nil {
		return nil, err
	}
	return window.NewAssigner(strategy, w.Size, w.Step)
}
