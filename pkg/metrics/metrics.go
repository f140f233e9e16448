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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelPipeline      = "pipeline"
	LabelStage         = "stage"
	LabelPolicy        = "policy"
	LabelPartitionName = "partition_name"
	LabelReason        = "reason"
)

// Generic stage metrics
var (
	// StageReadCount is used to indicate the number of elements a stage read
	StageReadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "stage",
		Name:      "read_total",
		Help:      "Total number of elements read by a stage",
	}, []string{LabelStage})

	// StageWriteCount is used to indicate the number of elements a stage wrote
	StageWriteCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "stage",
		Name:      "write_total",
		Help:      "Total number of elements written by a stage",
	}, []string{LabelStage})
)
