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
	"github.com/uber/jaeger-lib/metrics"
)

// Metrics is a container of all stats emitted by the senders.
type Metrics struct {
	// Number of spans drained from the buffer by flushes
	SpansFlushed metrics.Counter `metric:"sender_spans" tags:"state=flushed" help:"Number of spans drained from the buffer by flushes"`

	// Number of spans transmitted successfully
	SpansSent metrics.Counter `metric:"sender_spans" tags:"state=sent" help:"Number of spans transmitted successfully"`

	// Number of spans dropped by failed transmissions
	SpansFailed metrics.Counter `metric:"sender_spans" tags:"state=failed" help:"Number of spans dropped by failed transmissions"`

	// Number of spans dropped because they exceed the datagram budget
	SpansDroppedOversized metrics.Counter `metric:"sender_spans" tags:"state=dropped_oversized" help:"Number of spans dropped because they exceed the datagram budget"`

	// Number of batches transmitted successfully
	BatchesEmitted metrics.Counter `metric:"sender_batches" tags:"state=emitted" help:"Number of batches transmitted successfully"`

	// Number of batches whose transmission failed
	BatchesFailed metrics.Counter `metric:"sender_batches" tags:"state=failed" help:"Number of batches whose transmission failed"`
}

// NewMetrics creates a new Metrics struct and initializes its fields using
// the given metrics factory.
func NewMetrics(factory metrics.Factory, globalTags map[string]string) *Metrics {
	m := &Metrics{}
	metrics.MustInit(m, factory.Namespace(metrics.NSOptions{Name: "jaeger"}), globalTags)
	return m
}

// NewNullMetrics creates a Metrics struct that discards all stats.
func NewNullMetrics() *Metrics {
	return NewMetrics(metrics.NullFactory, nil)
}
