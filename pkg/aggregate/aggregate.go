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

// Package aggregate provides the aggregate operator algebra used by every window kind. An operator turns an input
// value into a partial aggregate (Lift), merges two partial aggregates (Combine), and turns a partial aggregate into
// the output value (Lower). Identity is the neutral element of Combine. Combine is associative and commutative, so
// the order in which late records are admitted into a window does not change its result.
package aggregate

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// Operator is the lift/combine/lower contract of an aggregate.
type Operator[IN, AGG, OUT any] interface {
	Identity() AGG
	Lift(IN) AGG
	Combine(AGG, AGG) AGG
	Lower(AGG) OUT
}

// Number is the set of input types the numeric strategies accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// Fold aggregates values from the identity and lowers the result.
func Fold[IN, AGG, OUT any](op Operator[IN, AGG, OUT], values ...IN) OUT {
	acc := op.Identity()
	for _, v := range values {
		acc = op.Combine(acc, op.Lift(v))
	}
	return op.Lower(acc)
}

// erased hides the aggregate and output types of an operator behind any.
type erased[IN, AGG, OUT any] struct {
	op Operator[IN, AGG, OUT]
}

// Erase wraps an operator so that operators with different aggregate types can be stored and selected at runtime.
func Erase[IN, AGG, OUT any](op Operator[IN, AGG, OUT]) Operator[IN, any, any] {
	return erased[IN, AGG, OUT]{op: op}
}

func (e erased[IN, AGG, OUT]) Identity() any {
	return e.op.Identity()
}

func (e erased[IN, AGG, OUT]) Lift(v IN) any {
	return e.op.Lift(v)
}

func (e erased[IN, AGG, OUT]) Combine(a, b any) any {
	return e.op.Combine(a.(AGG), b.(AGG))
}

func (e erased[IN, AGG, OUT]) Lower(a any) any {
	return e.op.Lower(a.(AGG))
}

var registry = map[string]Operator[float64, any, any]{
	"count":             Erase[float64, uint64, uint64](Count[float64]{}),
	"sum":               Erase[float64, float64, float64](Sum[float64]{}),
	"max":               Erase[float64, Extremum[float64], float64](Max[float64]{}),
	"min":               Erase[float64, Extremum[float64], float64](Min[float64]{}),
	"mean":              Erase[float64, CountSum, float64](ArithmeticMean[float64]{}),
	"geomean":           Erase[float64, CountProduct, float64](GeometricMean[float64]{}),
	"maxcount":          Erase[float64, TiedExtremum[float64], ExtremumCount[float64]](MaxCount[float64]{}),
	"mincount":          Erase[float64, TiedExtremum[float64], ExtremumCount[float64]](MinCount[float64]{}),
	"stddev-sample":     Erase[float64, Moments, float64](SampleStdDev[float64]{}),
	"stddev-population": Erase[float64, Moments, float64](PopulationStdDev[float64]{}),
	"minmax":            Erase[float64, Bounds[float64], Range[float64]](MinMax[float64]{}),
}

// Lookup returns the float64 instantiation of the named operator.
func Lookup(name string) (Operator[float64, any, any], error) {
	op, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unrecognized aggregate %q", name)
	}
	return op, nil
}

// Names returns the registered operator names in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
