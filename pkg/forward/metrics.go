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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
)

// readMessagesCount is used to indicate the number of elements read from a lane
var readMessagesCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "connector",
	Name:      "read_total",
	Help:      "Total number of elements read by a connector",
}, []string{metricspkg.LabelStage, metricspkg.LabelPolicy, metricspkg.LabelPartitionName})

// writeMessagesCount is used to indicate the number of elements written to a lane
var writeMessagesCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "connector",
	Name:      "write_total",
	Help:      "Total number of elements written by a connector",
}, []string{metricspkg.LabelStage, metricspkg.LabelPolicy, metricspkg.LabelPartitionName})

// skipCount is used to indicate the number of times a load balanced connector skipped a lane
var skipCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "connector",
	Name:      "skip_total",
	Help:      "Total number of lanes skipped by a load balanced connector",
}, []string{metricspkg.LabelStage, metricspkg.LabelPolicy, metricspkg.LabelPartitionName})

// laneCounters resolves the per lane counters once so the hot loop does not look up labels.
func laneCounters(vec *prometheus.CounterVec, o *options, names []string) []prometheus.Counter {
	counters := make([]prometheus.Counter, len(names))
	for i, name := range names {
		counters[i] = vec.WithLabelValues(o.name, o.policy.String(), name)
	}
	return counters
}
