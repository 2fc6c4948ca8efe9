// Copyright (c) 2018 The Jaeger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package senders

import (
	"time"

	"github.com/opentracing/opentracing-go"
)

// Span is a read-only projection of a finished span handed to a Sender for
// transmission. Senders never mutate a Span; instrumentation must not modify
// it after calling Append.
type Span struct {
	// TraceIDHigh and TraceIDLow form the 128-bit trace identifier.
	// TraceIDHigh is zero when 64-bit trace IDs are in use.
	TraceIDHigh uint64
	TraceIDLow  uint64

	SpanID uint64

	// ParentID is zero for root spans.
	ParentID uint64

	// Flags is a bitmap of trace flags, e.g. the sampled bit.
	Flags int32

	OperationName string

	StartTime time.Time
	Duration  time.Duration

	Tags []Tag

	Logs []opentracing.LogRecord
}

// Tag is one key/value annotation on a span. Value may be a string, []byte,
// bool, any integer type, float32/float64, or anything else convertible to a
// string via fmt.
type Tag struct {
	Key   string
	Value interface{}
}
