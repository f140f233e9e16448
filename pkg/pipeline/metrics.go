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

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/numaproj/dataflow/pkg/metrics"
)

// runDuration is the wall time of a pipeline run
var runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Subsystem: "pipeline",
	Name:      "run_duration_seconds",
	Help:      "Duration of a pipeline run",
	Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
}, []string{metrics.LabelPipeline})

// runFailures counts the runs that ended with an error
var runFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "pipeline",
	Name:      "run_failures_total",
	Help:      "Total number of pipeline runs that failed",
}, []string{metrics.LabelPipeline})
