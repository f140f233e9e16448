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

package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/window"
)

func TestNew(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	f, err := New[uint32, float64](`value >= 10 && key != 3`)
	require.NoError(t, err)

	keep, err := f(ctx, window.NewRecord(uint32(1), 12.0, 0))
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = f(ctx, window.NewRecord(uint32(3), 12.0, 0))
	require.NoError(t, err)
	assert.False(t, keep)

	keep, err = f(ctx, window.NewRecord(uint32(1), 2.0, 0))
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestNew_NotBool(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	f, err := New[uint32, float64](`value`)
	require.NoError(t, err)
	keep, err := f(ctx, window.NewRecord(uint32(1), 12.0, 0))
	assert.NoError(t, err)
	assert.False(t, keep)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New[uint32, float64](`ab\na`)
	assert.Error(t, err)
}
