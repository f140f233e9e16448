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

package forward

import (
	"fmt"
	"strings"
)

// Policy decides how a connector spreads elements across lanes, or collects them back.
type Policy int

const (
	// RoundRobin visits the lanes cyclically and blocks on each one.
	RoundRobin Policy = iota
	// LoadBalanced visits the lanes cyclically but skips a full output or an empty input.
	LoadBalanced
	// KeyBy routes every element to the lane named by a key extractor (fan-out) or a key generator (fan-in).
	KeyBy
	// Broadcast writes every element to every lane. Fan-in falls back to RoundRobin.
	Broadcast
)

func (p Policy) String() string {
	switch p {
	case RoundRobin:
		return "RoundRobin"
	case LoadBalanced:
		return "LoadBalanced"
	case KeyBy:
		return "KeyBy"
	case Broadcast:
		return "Broadcast"
	default:
		return "Unknown"
	}
}

// ParsePolicy returns the policy for a case-insensitive name such as "roundrobin" or "keyby".
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "roundrobin", "rr":
		return RoundRobin, nil
	case "loadbalanced", "lb":
		return LoadBalanced, nil
	case "keyby", "kb":
		return KeyBy, nil
	case "broadcast":
		return Broadcast, nil
	default:
		return RoundRobin, fmt.Errorf("unrecognized routing policy %q", name)
	}
}

// KeyGenerator returns the lane a KeyBy fan-in reads its i-th element from. The result is taken mod N.
type KeyGenerator func(i int) int

// lane maps an arbitrary key onto [0, n).
func lane(key int, n int) int {
	idx := key % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// endMask tracks which input lanes have delivered their end marker.
type endMask struct {
	words []uint64
	n     int
	set   int
}

func newEndMask(n int) *endMask {
	return &endMask{words: make([]uint64, (n+63)/64), n: n}
}

func (m *endMask) Set(i int) {
	if m.IsSet(i) {
		return
	}
	m.words[i/64] |= 1 << (uint(i) % 64)
	m.set++
}

func (m *endMask) IsSet(i int) bool {
	return m.words[i/64]&(1<<(uint(i)%64)) != 0
}

// All returns true once every lane has ended.
func (m *endMask) All() bool {
	return m.set == m.n
}

// NextClear returns the first lane at or after i, cyclically, whose bit is clear. It must not be called once All is true.
func (m *endMask) NextClear(i int) int {
	for k := 0; k < m.n; k++ {
		idx := (i + k) % m.n
		if !m.IsSet(idx) {
			return idx
		}
	}
	panic("endMask: every lane has ended")
}
