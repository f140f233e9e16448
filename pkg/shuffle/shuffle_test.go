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

package shuffle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShuffle_Partition(t *testing.T) {
	tests := []struct {
		name       string
		partitions int
		hasher     Hasher
	}{
		{name: "xxhash-few-lanes", partitions: 4, hasher: XXHash},
		{name: "xxhash-many-lanes", partitions: 100, hasher: XXHash},
		{name: "murmur3", partitions: 7, hasher: Murmur3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			shuffler := NewShuffle(test.partitions, WithHasher(test.hasher))
			counts := make(map[int]int)
			for i := 0; i < 10000; i++ {
				p := shuffler.Partition(fmt.Sprintf("key_%d", i))
				assert.GreaterOrEqual(t, p, 0)
				assert.Less(t, p, test.partitions)
				counts[p]++
			}
			// every lane gets some keys
			assert.Len(t, counts, test.partitions)
			// same key, same lane
			assert.Equal(t, shuffler.Partition("stable"), shuffler.Partition("stable"))
		})
	}
}

func TestKeyBy(t *testing.T) {
	type record struct{ user string }
	s := NewShuffle(3)
	extract := KeyBy(s, func(r record) string { return r.user })
	assert.Equal(t, extract(record{user: "alice"}), extract(record{user: "alice"}))
	assert.Equal(t, s.Partition("bob"), extract(record{user: "bob"}))
}

func TestNewShuffle_InvalidPartitions(t *testing.T) {
	assert.Panics(t, func() { NewShuffle(0) })
}

func TestParseHasher(t *testing.T) {
	h, err := ParseHasher("murmur3")
	assert.NoError(t, err)
	assert.Equal(t, Murmur3, h)
	h, err = ParseHasher("xxhash")
	assert.NoError(t, err)
	assert.Equal(t, XXHash, h)
	_, err = ParseHasher("md5")
	assert.Error(t, err)
}
