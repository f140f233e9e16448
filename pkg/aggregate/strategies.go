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

package aggregate

import "math"

// Count counts the admitted values.
type Count[IN any] struct{}

func (Count[IN]) Identity() uint64 { return 0 }
func (Count[IN]) Lift(IN) uint64 { return 1 }
func (Count[IN]) Combine(a, b uint64) uint64 { return a + b }
func (Count[IN]) Lower(a uint64) uint64 { return a }

// Sum adds the admitted values.
type Sum[N Number] struct{}

func (Sum[N]) Identity() N { return 0 }
func (Sum[N]) Lift(v N) N { return v }
func (Sum[N]) Combine(a, b N) N { return a + b }
func (Sum[N]) Lower(a N) N { return a }

// Extremum is the partial aggregate of Max and Min. Set is false for the identity.
type Extremum[N Number] struct {
	Value N
	Set   bool
}

func pick[N Number](a, b Extremum[N], better func(x, y N) bool) Extremum[N] {
	if !a.Set {
		return b
	}
	if !b.Set {
		return a
	}
	if better(b.Value, a.Value) {
		return b
	}
	return a
}

func greater[N Number](x, y N) bool { return x > y }
func less[N Number](x, y N) bool { return x < y }

// Max keeps the largest value. An empty window lowers to the zero value.
type Max[N Number] struct{}

func (Max[N]) Identity() Extremum[N] { return Extremum[N]{} }
func (Max[N]) Lift(v N) Extremum[N] { return Extremum[N]{Value: v, Set: true} }
func (Max[N]) Combine(a, b Extremum[N]) Extremum[N] { return pick(a, b, greater[N]) }
func (Max[N]) Lower(a Extremum[N]) N { return a.Value }

// Min keeps the smallest value. An empty window lowers to the zero value.
type Min[N Number] struct{}

func (Min[N]) Identity() Extremum[N] { return Extremum[N]{} }
func (Min[N]) Lift(v N) Extremum[N] { return Extremum[N]{Value: v, Set: true} }
func (Min[N]) Combine(a, b Extremum[N]) Extremum[N] { return pick(a, b, less[N]) }
func (Min[N]) Lower(a Extremum[N]) N { return a.Value }

// CountSum is the partial aggregate of ArithmeticMean.
type CountSum struct {
	Count uint64
	Sum   float64
}

// ArithmeticMean averages the admitted values. An empty window lowers to NaN.
type ArithmeticMean[N Number] struct{}

func (ArithmeticMean[N]) Identity() CountSum { return CountSum{} }
func (ArithmeticMean[N]) Lift(v N) CountSum { return CountSum{Count: 1, Sum: float64(v)} }
func (ArithmeticMean[N]) Combine(a, b CountSum) CountSum {
	return CountSum{Count: a.Count + b.Count, Sum: a.Sum + b.Sum}
}
func (ArithmeticMean[N]) Lower(a CountSum) float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return a.Sum / float64(a.Count)
}

// CountProduct is the partial aggregate of GeometricMean.
type CountProduct struct {
	Count   uint64
	Product float64
}

// GeometricMean is the count-th root of the product of the admitted values. An empty window lowers to NaN.
type GeometricMean[N Number] struct{}

func (GeometricMean[N]) Identity() CountProduct { return CountProduct{Product: 1} }
func (GeometricMean[N]) Lift(v N) CountProduct { return CountProduct{Count: 1, Product: float64(v)} }
func (GeometricMean[N]) Combine(a, b CountProduct) CountProduct {
	return CountProduct{Count: a.Count + b.Count, Product: a.Product * b.Product}
}
func (GeometricMean[N]) Lower(a CountProduct) float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return math.Pow(a.Product, 1/float64(a.Count))
}

// ExtremumCount is an extremum together with the number of times it was seen.
type ExtremumCount[N Number] struct {
	Value N
	Count uint64
}

// TiedExtremum is the partial aggregate of MaxCount and MinCount. Set is false for the identity.
type TiedExtremum[N Number] struct {
	Value N
	Count uint64
	Set   bool
}

func pickTied[N Number](a, b TiedExtremum[N], better func(x, y N) bool) TiedExtremum[N] {
	switch {
	case !a.Set:
		return b
	case !b.Set:
		return a
	case a.Value == b.Value:
		return TiedExtremum[N]{Value: a.Value, Count: a.Count + b.Count, Set: true}
	case better(b.Value, a.Value):
		return b
	default:
		return a
	}
}

// MaxCount keeps the largest value and how many times it occurred.
type MaxCount[N Number] struct{}

func (MaxCount[N]) Identity() TiedExtremum[N] { return TiedExtremum[N]{} }
func (MaxCount[N]) Lift(v N) TiedExtremum[N] { return TiedExtremum[N]{Value: v, Count: 1, Set: true} }
func (MaxCount[N]) Combine(a, b TiedExtremum[N]) TiedExtremum[N] {
	return pickTied(a, b, greater[N])
}
func (MaxCount[N]) Lower(a TiedExtremum[N]) ExtremumCount[N] {
	return ExtremumCount[N]{Value: a.Value, Count: a.Count}
}

// MinCount keeps the smallest value and how many times it occurred.
type MinCount[N Number] struct{}

func (MinCount[N]) Identity() TiedExtremum[N] { return TiedExtremum[N]{} }
func (MinCount[N]) Lift(v N) TiedExtremum[N] { return TiedExtremum[N]{Value: v, Count: 1, Set: true} }
func (MinCount[N]) Combine(a, b TiedExtremum[N]) TiedExtremum[N] {
	return pickTied(a, b, less[N])
}
func (MinCount[N]) Lower(a TiedExtremum[N]) ExtremumCount[N] {
	return ExtremumCount[N]{Value: a.Value, Count: a.Count}
}

// Moments is the partial aggregate of the standard deviations.
type Moments struct {
	Count uint64
	Sum   float64
	SumSq float64
}

func liftMoments(v float64) Moments {
	return Moments{Count: 1, Sum: v, SumSq: v * v}
}

func combineMoments(a, b Moments) Moments {
	return Moments{Count: a.Count + b.Count, Sum: a.Sum + b.Sum, SumSq: a.SumSq + b.SumSq}
}

// deviation returns the square root of the sum of squared deviations divided by count-ddof.
func deviation(a Moments, ddof uint64) float64 {
	if a.Count <= ddof {
		return 0
	}
	n := float64(a.Count)
	ss := a.SumSq - a.Sum*a.Sum/n
	if ss < 0 {
		// rounding can push an all-equal window slightly below zero
		ss = 0
	}
	return math.Sqrt(ss / (n - float64(ddof)))
}

// SampleStdDev is the sample standard deviation. Windows with fewer than two values lower to 0.
type SampleStdDev[N Number] struct{}

func (SampleStdDev[N]) Identity() Moments { return Moments{} }
func (SampleStdDev[N]) Lift(v N) Moments { return liftMoments(float64(v)) }
func (SampleStdDev[N]) Combine(a, b Moments) Moments { return combineMoments(a, b) }
func (SampleStdDev[N]) Lower(a Moments) float64 { return deviation(a, 1) }

// PopulationStdDev is the population standard deviation. An empty window lowers to 0.
type PopulationStdDev[N Number] struct{}

func (PopulationStdDev[N]) Identity() Moments { return Moments{} }
func (PopulationStdDev[N]) Lift(v N) Moments { return liftMoments(float64(v)) }
func (PopulationStdDev[N]) Combine(a, b Moments) Moments { return combineMoments(a, b) }
func (PopulationStdDev[N]) Lower(a Moments) float64 { return deviation(a, 0) }

// Range is the output of MinMax.
type Range[N Number] struct {
	Min N
	Max N
}

// Bounds is the partial aggregate of MinMax. Set is false for the identity.
type Bounds[N Number] struct {
	Min N
	Max N
	Set bool
}

// MinMax keeps the smallest and the largest value.
type MinMax[N Number] struct{}

func (MinMax[N]) Identity() Bounds[N] { return Bounds[N]{} }
func (MinMax[N]) Lift(v N) Bounds[N] { return Bounds[N]{Min: v, Max: v, Set: true} }
func (MinMax[N]) Combine(a, b Bounds[N]) Bounds[N] {
	if !a.Set {
		return b
	}
	if !b.Set {
		return a
	}
	return Bounds[N]{Min: min(a.Min, b.Min), Max: max(a.Max, b.Max), Set: true}
}
func (MinMax[N]) Lower(a Bounds[N]) Range[N] {
	return Range[N]{Min: a.Min, Max: a.Max}
}
