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

package merge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
)

// mergedCount is used to indicate the number of elements a merge wrote
var mergedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "merge",
	Name:      "write_total",
	Help:      "Total number of elements written by a merge",
}, []string{metricspkg.LabelStage})

// mergeStalls is used to indicate the number of times a frontier merge waited for a silent branch
var mergeStalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "merge",
	Name:      "stall_total",
	Help:      "Total number of times a merge waited because an empty branch could still produce a smaller element",
}, []string{metricspkg.LabelStage})
