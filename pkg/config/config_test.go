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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "dataflow", conf.Name)
	assert.Equal(t, 4, conf.Width)
	assert.Equal(t, 64, conf.BufferDepth)
	assert.Equal(t, "keyby", conf.Policy)
	assert.Equal(t, "xxhash", conf.Hasher)
	assert.Equal(t, "count", conf.Aggregate)
	assert.Equal(t, 8, conf.Source.Keys)
	assert.Equal(t, uint64(10000), conf.Source.Limit)
	assert.Equal(t, "fixed", conf.Window.Strategy)
	assert.Equal(t, uint32(10), conf.Window.Size)
	assert.Equal(t, SinkLog, conf.Sink.Type)
	assert.Empty(t, conf.Metrics.Addr)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
name: sensors
width: 2
bufferDepth: 8
policy: kb
hasher: murmur3
filter: "value > 10"
aggregate: mean
source:
  keys: 3
  limit: 500
  interval: 5ms
  disorder: 4
window:
  strategy: sliding
  size: 30
  step: 10
  lateness: 5
sink:
  type: redis
  addrs: ["localhost:6379"]
  ttl: 1m
metrics:
  addr: ":9090"
`)
	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sensors", conf.Name)
	assert.Equal(t, 2, conf.Width)
	assert.Equal(t, 8, conf.BufferDepth)
	assert.Equal(t, "kb", conf.Policy)
	assert.Equal(t, "murmur3", conf.Hasher)
	assert.Equal(t, "value > 10", conf.Filter)
	assert.Equal(t, "mean", conf.Aggregate)
	assert.Equal(t, SourceConfig{Keys: 3, Limit: 500, Interval: 5 * time.Millisecond, Disorder: 4}, conf.Source)
	assert.Equal(t, WindowConfig{Strategy: "sliding", Size: 30, Step: 10, Lateness: 5}, conf.Window)
	assert.Equal(t, SinkRedis, conf.Sink.Type)
	assert.Equal(t, []string{"localhost:6379"}, conf.Sink.Addrs)
	assert.Equal(t, time.Minute, conf.Sink.TTL)
	assert.Equal(t, ":9090", conf.Metrics.Addr)

	a, err := conf.Window.Assigner()
	require.NoError(t, err)
	assert.Equal(t, 4, a.Slots(conf.Window.Lateness))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DATAFLOW_WIDTH", "6")
	t.Setenv("DATAFLOW_WINDOW_SIZE", "20")
	t.Setenv("DATAFLOW_WINDOW_STEP", "20")
	conf, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 6, conf.Width)
	assert.Equal(t, uint32(20), conf.Window.Size)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `
width: 0
policy: random
aggregate: median
window:
  strategy: sliding
  size: 10
  step: 20
sink:
  type: kafka
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	// width, policy, aggregate, window step, kafka brokers
	assert.Len(t, multierr.Errors(err), 5)
	assert.Contains(t, err.Error(), "width")
	assert.Contains(t, err.Error(), "random")
	assert.Contains(t, err.Error(), "median")
	assert.Contains(t, err.Error(), "brokers")
}

func TestValidate_PolicyWidth(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)
	conf.Source.Keys = 3
	conf.Source.Limit = 60

	for _, policy := range []string{"roundrobin", "lb", "broadcast"} {
		conf.Policy = policy
		conf.Width = 2
		err := conf.Validate()
		require.Error(t, err, policy)
		assert.Contains(t, err.Error(), "requires keyby")
		conf.Width = 1
		assert.NoError(t, conf.Validate(), policy)
	}
	conf.Policy = "keyby"
	conf.Width = 2
	assert.NoError(t, conf.Validate())
}

func TestValidate_Sinks(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)

	conf.Sink.Type = SinkBlackhole
	assert.NoError(t, conf.Validate())

	conf.Sink.Type = SinkKafka
	conf.Sink.Brokers = []string{"localhost:9092"}
	assert.NoError(t, conf.Validate())
	conf.Sink.Topic = ""
	assert.Error(t, conf.Validate())

	conf.Sink.Type = SinkRedis
	assert.Error(t, conf.Validate())

	conf.Sink.Type = "s3"
	assert.Error(t, conf.Validate())
}

func TestWatchConfig(t *testing.T) {
	path := writeConfig(t, "name: before\n")
	changed := make(chan *PipelineConfig, 10)
	failed := make(chan error, 10)
	WatchConfig(path, func(c *PipelineConfig) { changed <- c }, func(err error) { failed <- err })
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("name: after\n"), 0o600))
	select {
	case c := <-changed:
		assert.Equal(t, "after", c.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration change not observed")
	}

	require.NoError(t, os.WriteFile(path, []byte("name: broken\nwidth: -1\n"), 0o600))
	select {
	case err := <-failed:
		assert.Contains(t, err.Error(), "width")
	case <-time.After(5 * time.Second):
		t.Fatal("invalid configuration not reported")
	}
}

func TestValidate_Nats(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)
	conf.Sink.Type = SinkNats
	assert.Error(t, conf.Validate())
	conf.Sink.URL = "nats://localhost:4222"
	assert.NoError(t, conf.Validate())
}
