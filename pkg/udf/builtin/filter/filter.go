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

// Package filter builds a record filter from an expression, see package expr for the language.
package filter

import (
	"context"

	"github.com/numaproj/dataflow/pkg/shared/expr"
	"github.com/numaproj/dataflow/pkg/shared/logging"
	"github.com/numaproj/dataflow/pkg/udf"
	"github.com/numaproj/dataflow/pkg/window"
)

// New returns a filter keeping the records for which expression holds. A record the expression cannot be evaluated
// against is dropped and logged.
func New[K comparable, IN any](expression string) (udf.FilterFunc[window.Record[K, IN]], error) {
	p, err := expr.Compile(expression)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, r window.Record[K, IN]) (bool, error) {
		keep, err := p.Eval(r.Key, r.Value, r.Timestamp)
		if err != nil {
			logging.FromContext(ctx).Errorf("Filter function apply got an error: %v", err)
			return false, nil
		}
		return keep, nil
	}, nil
}
