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

package blackhole

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/numaproj/dataflow/pkg/isb/stores/simplebuffer"
	"github.com/numaproj/dataflow/pkg/isb/testutils"
	"github.com/numaproj/dataflow/pkg/sinks"
)

func TestBlackhole_Run(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buffer := simplebuffer.NewInMemoryBuffer[int]("from", 25, 0)
	go func() {
		_ = testutils.Feed[int](ctx, buffer, testutils.Sequence(100))
	}()

	s := NewBlackhole[int]("sinks.blackhole")
	assert.Equal(t, "sinks.blackhole", s.GetName())
	assert.NoError(t, sinks.Run[int](ctx, buffer, s))
	assert.Equal(t, 100.0, testutil.ToFloat64(sinkWriteCount.WithLabelValues("sinks.blackhole")))
}
