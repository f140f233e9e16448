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

package isb

import (
	"errors"
	"fmt"
)

const (
	BufferFullMessage  = "Buffer full!"
	BufferEmptyMessage = "Buffer empty!"
)

// ErrStreamEnded is returned by Read when the next marker in the buffer is the terminal end marker.
var ErrStreamEnded = errors.New("read past the end of the stream")

// BufferWriteErr when we cannot write to the buffer because of a full buffer or a cancelled context.
type BufferWriteErr struct {
	Name    string
	Full    bool
	Message string
	Err     error
}

func (e BufferWriteErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("(%s) %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("(%s) %s", e.Name, e.Message)
}

func (e BufferWriteErr) Unwrap() error {
	return e.Err
}

// IsFull returns true if buffer is full.
func (e BufferWriteErr) IsFull() bool {
	return e.Full
}

// BufferReadErr when we cannot read from the buffer.
type BufferReadErr struct {
	Name    string
	Empty   bool
	Message string
	Err     error
}

func (e BufferReadErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("(%s) %s: %v", e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("(%s) %s", e.Name, e.Message)
}

func (e BufferReadErr) Unwrap() error {
	return e.Err
}

// IsEmpty returns true if buffer is empty.
func (e BufferReadErr) IsEmpty() bool {
	return e.Empty
}
