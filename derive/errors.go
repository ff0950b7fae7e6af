/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package derive

import (
	"fmt"
)

// ErrorCode classifies derivation failures
type ErrorCode int

const (
	// ErrUnsupportedType means no rule derives a schema for the type
	ErrUnsupportedType ErrorCode = iota + 1
	// ErrInvalidUnion means the union would hold two members of the same kind
	ErrInvalidUnion
	// ErrUnsupportedDefault means the default value cannot be encoded against the field schema
	ErrUnsupportedDefault
	// ErrInvalidFixedAnnotation means a fixed annotation carries a size below one
	ErrInvalidFixedAnnotation
)

// String returns a human readable representation of an ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrUnsupportedType:
		return "unsupported type"
	case ErrInvalidUnion:
		return "invalid union"
	case ErrUnsupportedDefault:
		return "unsupported default"
	case ErrInvalidFixedAnnotation:
		return "invalid fixed annotation"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// Error is returned when a derivation fails. It aborts the whole pass.
type Error struct {
	code ErrorCode
	path string
	str  string
	err  error
}

func newError(code ErrorCode, path string, format string, args ...interface{}) Error {
	return Error{code: code, path: path, str: fmt.Sprintf(format, args...)}
}

// Error returns a human readable representation of an Error
func (e Error) Error() string {
	msg := e.str
	if msg == "" {
		msg = e.code.String()
	}
	if e.err != nil {
		msg = msg + ": " + e.err.Error()
	}
	if e.path == "" {
		return fmt.Sprintf("avro4s: %s", msg)
	}
	return fmt.Sprintf("avro4s: %s: %s", e.path, msg)
}

// Code returns the ErrorCode of an Error
func (e Error) Code() ErrorCode {
	return e.code
}

// Path returns the type and field path where the derivation failed
func (e Error) Path() string {
	return e.path
}

// Unwrap returns the underlying cause, if any
func (e Error) Unwrap() error {
	return e.err
}
