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

package keyed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/numaproj/dataflow/pkg/metrics"
)

const (
	reasonLate    = "late"
	reasonInvalid = "invalid"
)

// droppedRecords is used to indicate the number of records dropped without touching a window
var droppedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "keyed_window",
	Name:      "dropped_total",
	Help:      "Total number of records dropped by a keyed window engine",
}, []string{metricspkg.LabelStage, metricspkg.LabelReason})

// windowsEmitted is used to indicate the number of windows lowered and emitted
var windowsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "keyed_window",
	Name:      "emitted_total",
	Help:      "Total number of windows emitted by a keyed window engine",
}, []string{metricspkg.LabelStage})

// activeKeys is used to indicate the number of keys an engine holds a context for
var activeKeys = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Subsystem: "keyed_window",
	Name:      "active_keys",
	Help:      "Number of keys with a context in a keyed window engine",
}, []string{metricspkg.LabelStage})
