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

// Package expr evaluates boolean expressions over records. Expressions are written in the antonmedv/expr language
// and see the record as the variables key, value and timestamp, together with the sprig function map and a few
// conversion helpers.
package expr

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/sprig/v3"
	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
)

var sprigFuncMap = sprig.GenericFuncMap()

const (
	keyVar       = "key"
	valueVar     = "value"
	timestampVar = "timestamp"
)

// Predicate is a compiled boolean expression.
type Predicate struct {
	expression string
	program    *vm.Program
}

// Compile parses the expression once so that it can be evaluated for every record.
func Compile(expression string) (*Predicate, error) {
	program, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("unable to compile expression '%s': %s", expression, err)
	}
	return &Predicate{expression: expression, program: program}, nil
}

// String returns the source of the expression.
func (p *Predicate) String() string {
	return p.expression
}

// Eval runs the expression against a record.
func (p *Predicate) Eval(key, value any, timestamp uint32) (bool, error) {
	result, err := expr.Run(p.program, getFuncMap(key, value, timestamp))
	if err != nil {
		return false, fmt.Errorf("unable to evaluate expression '%s': %s", p.expression, err)
	}
	resultBool, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("unable to cast expression result '%v' to bool", result)
	}
	return resultBool, nil
}

// EvalBool compiles and evaluates the expression against a single record.
func EvalBool(expression string, key, value any, timestamp uint32) (bool, error) {
	p, err := Compile(expression)
	if err != nil {
		return false, err
	}
	return p.Eval(key, value, timestamp)
}

func getFuncMap(key, value any, timestamp uint32) map[string]interface{} {
	return map[string]interface{}{
		keyVar:       key,
		valueVar:     value,
		timestampVar: timestamp,
		"sprig":      sprigFuncMap,
		"int":        _int,
		"string":     _string,
	}
}

func _int(v interface{}) int {
	switch w := v.(type) {
	case []byte:
		i, err := strconv.Atoi(string(w))
		if err != nil {
			panic(fmt.Errorf("cannot convert %q an int", v))
		}
		return i
	case string:
		i, err := strconv.Atoi(w)
		if err != nil {
			panic(fmt.Errorf("cannot convert %q to int", v))
		}
		return i
	case float64:
		return int(w)
	case int:
		return w
	case uint32:
		return int(w)
	default:
		panic(fmt.Errorf("cannot convert %v to int", v))
	}
}

func _string(v interface{}) string {
	switch w := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(w)
	default:
		return fmt.Sprintf("%v", v)
	}
}
