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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestToLog_Write(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	toLog, err := NewToLog[int]("printer", WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)
	assert.Equal(t, "printer", toLog.GetName())

	for i := 0; i < 3; i++ {
		require.NoError(t, toLog.Write(context.Background(), i))
	}
	require.NoError(t, toLog.Close())

	entries := logs.FilterMessage("Sink").All()
	require.Len(t, entries, 3)
	assert.Equal(t, int64(2), entries[2].ContextMap()["payload"])
	assert.Equal(t, "printer", entries[0].ContextMap()["sink"])
}
