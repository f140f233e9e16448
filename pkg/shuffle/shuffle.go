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
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hasher names the hash function used to place keys on lanes.
type Hasher string

const (
	XXHash  Hasher = "xxhash"
	Murmur3 Hasher = "murmur3"
)

// ParseHasher returns the hasher named name.
func ParseHasher(name string) (Hasher, error) {
	switch h := Hasher(name); h {
	case XXHash, Murmur3:
		return h, nil
	default:
		return XXHash, fmt.Errorf("unrecognized hasher %q", name)
	}
}

// Shuffle maps string keys onto a fixed number of lanes.
// A Shuffle is not safe for concurrent use, every fan-out stage owns its own.
type Shuffle struct {
	partitions uint64
	hash       hash.Hash64
}

type Option func(*Shuffle)

// WithHasher selects the hash function, xxhash is the default.
func WithHasher(h Hasher) Option {
	return func(s *Shuffle) {
		switch h {
		case Murmur3:
			s.hash = murmur3.New64()
		default:
			s.hash = xxhash.New()
		}
	}
}

// NewShuffle accepts the number of lanes and returns new shuffle instance
func NewShuffle(partitions int, opts ...Option) *Shuffle {
	if partitions < 1 {
		panic("shuffle: partitions must be at least 1")
	}
	s := &Shuffle{
		partitions: uint64(partitions),
		hash:       xxhash.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Partition returns the lane of the key.
func (s *Shuffle) Partition(key string) int {
	return int(s.generateHash(key) % s.partitions)
}

// KeyBy builds a key extractor for the KeyBy routing policy out of a function returning the element's string key.
func KeyBy[T any](s *Shuffle, key func(T) string) func(T) int {
	return func(v T) int {
		return s.Partition(key(v))
	}
}

func (s *Shuffle) generateHash(key string) uint64 {
	s.hash.Reset()
	_, _ = s.hash.Write([]byte(key))
	return s.hash.Sum64()
}
