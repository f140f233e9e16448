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

package nats

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natstestserver "github.com/nats-io/nats-server/v2/test"
	natslib "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/dataflow/pkg/shared/logging"
)

type payload struct {
	Window uint32 `json:"window"`
	Value  int    `json:"value"`
}

func runServer(t *testing.T) *server.Server {
	t.Helper()
	opts := natstestserver.DefaultTestOptions
	opts.Port = -1 // Random port
	return natstestserver.RunServer(&opts)
}

func TestToNats_Write(t *testing.T) {
	s := runServer(t)
	defer s.Shutdown()

	sub, err := natslib.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()
	inbox, err := sub.SubscribeSync("results")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	conn, err := NewConn(s.ClientURL(), "test-sink")
	require.NoError(t, err)
	toNats, err := NewToNats[payload]("test", conn, "results", WithLogger[payload](logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, "test", toNats.GetName())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, toNats.Write(ctx, payload{Window: uint32(i), Value: i * 10}))
	}
	require.NoError(t, toNats.Close())
	assert.True(t, conn.IsClosed())

	for i := 0; i < 3; i++ {
		msg, err := inbox.NextMsg(5 * time.Second)
		require.NoError(t, err)
		var p payload
		require.NoError(t, json.Unmarshal(msg.Data, &p))
		assert.Equal(t, payload{Window: uint32(i), Value: i * 10}, p)
	}
}

func TestToNats_WriteAfterClose(t *testing.T) {
	s := runServer(t)
	defer s.Shutdown()

	conn, err := NewConn(s.ClientURL(), "test-sink")
	require.NoError(t, err)
	toNats, err := NewToNats[payload]("test", conn, "results", WithLogger[payload](logging.NewNopLogger()))
	require.NoError(t, err)
	conn.Close()
	assert.Error(t, toNats.Write(context.Background(), payload{}))
}

func TestNewToNats_Invalid(t *testing.T) {
	_, err := NewToNats[payload]("test", nil, "results")
	assert.Error(t, err)

	s := runServer(t)
	defer s.Shutdown()
	conn, err := NewConn(s.ClientURL(), "test-sink")
	require.NoError(t, err)
	defer conn.Close()
	_, err = NewToNats[payload]("test", conn, "")
	assert.Error(t, err)
}

func TestNewConn_Unreachable(t *testing.T) {
	_, err := NewConn("nats://127.0.0.1:1", "test-sink")
	assert.Error(t, err)
}
