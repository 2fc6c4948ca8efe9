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
	"io"
	"sync"

	"go.uber.org/atomic"

	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
)

// Sender accepts finished spans and ships them to a tracing backend.
//
// Append is safe for concurrent use by many producers. Flush and Close are
// not: the underlying transport is owned by one Sender instance and callers
// must serialize Flush/Close, typically via a single reporting goroutine.
type Sender interface {
	// SetProcess builds the process descriptor attached to every batch
	// emitted by this sender. It must be called before the first Flush;
	// calling it again replaces the previous descriptor. Tag values longer
	// than maxTagValueLength are truncated; a non-positive value disables
	// truncation.
	SetProcess(serviceName string, tags map[string]string, maxTagValueLength int)

	// Append adds a finished span to the sender's buffer. It never blocks
	// on I/O and never fails; spans stay buffered until the next Flush.
	Append(span *Span)

	// Flush drains the buffer and attempts to transmit the drained spans.
	// It returns the number of spans that were in the buffer at the time of
	// the call, regardless of the transmission outcome: on error the spans
	// are dropped, not re-queued. An empty buffer, or a sender without a
	// process descriptor, makes Flush a no-op returning 0.
	Flush() (int, error)

	// Closer flushes remaining spans and releases the transport.
	io.Closer
}

// baseSender holds the span buffer and process descriptor shared by the
// concrete senders. Its Flush builds a single batch out of the drained
// buffer and hands it to the transmit function supplied by the concrete
// sender; a baseSender without a transmit function fails Flush with
// ErrTransmitNotImplemented.
type baseSender struct {
	mu                sync.Mutex
	spans             []*Span
	process           *j.Process
	maxTagValueLength int

	// transmit performs the protocol-specific transmission of one batch.
	transmit func(batch *j.Batch) error

	metrics *Metrics
	logger  Logger

	batchSeqNo   atomic.Int64
	spansSent    atomic.Int64
	spansFailed  atomic.Int64
	spansDropped atomic.Int64
}

// initObservers wires the metrics container and logger, falling back to
// no-op implementations.
func (s *baseSender) initObservers(metrics *Metrics, logger Logger) {
	if metrics == nil {
		metrics = NewNullMetrics()
	}
	if logger == nil {
		logger = NullLogger
	}
	s.metrics = metrics
	s.logger = logger
}

// SetProcess implements SetProcess of Sender. The descriptor is immutable
// once built and shared by reference across all batches.
func (s *baseSender) SetProcess(serviceName string, tags map[string]string, maxTagValueLength int) {
	process := BuildThriftProcess(serviceName, tags, maxTagValueLength)
	s.mu.Lock()
	s.process = process
	s.maxTagValueLength = maxTagValueLength
	s.mu.Unlock()
}

// Append implements Append of Sender.
func (s *baseSender) Append(span *Span) {
	s.mu.Lock()
	s.spans = append(s.spans, span)
	s.mu.Unlock()
}

// SpanCount returns the number of spans currently buffered.
func (s *baseSender) SpanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spans)
}

// SentCount returns the total number of spans transmitted successfully over
// the sender's lifetime, counting whole batches emitted before any failure.
func (s *baseSender) SentCount() int64 { return s.spansSent.Load() }

// FailedCount returns the total number of spans dropped due to transmission
// failures.
func (s *baseSender) FailedCount() int64 { return s.spansFailed.Load() }

// DroppedCount returns the total number of spans dropped because their
// encoded size exceeded the datagram budget.
func (s *baseSender) DroppedCount() int64 { return s.spansDropped.Load() }

// drain atomically swaps the buffer for an empty one and returns the drained
// spans together with the process descriptor they should be batched under and
// the tag value length limit in force. It returns no spans when the buffer is
// empty or no descriptor has been set; in the latter case the buffer is left
// intact.
func (s *baseSender) drain() ([]*Span, *j.Process, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.spans) == 0 || s.process == nil {
		return nil, nil, 0
	}
	spans := s.spans
	s.spans = nil
	return spans, s.process, s.maxTagValueLength
}

// Flush implements Flush of Sender by sending the entire drained buffer as
// one batch through the transmit function.
func (s *baseSender) Flush() (int, error) {
	spans, process, maxTagValueLength := s.drain()
	if len(spans) == 0 {
		return 0, nil
	}
	n := len(spans)
	s.metrics.SpansFlushed.Inc(int64(n))

	jSpans := make([]*j.Span, 0, n)
	for _, span := range spans {
		jSpans = append(jSpans, BuildThriftSpan(span, maxTagValueLength))
	}
	if err := s.send(&j.Batch{Process: process, Spans: jSpans}); err != nil {
		s.spansFailed.Add(int64(n))
		s.metrics.SpansFailed.Inc(int64(n))
		s.metrics.BatchesFailed.Inc(1)
		return n, err
	}
	s.spansSent.Add(int64(n))
	s.metrics.SpansSent.Inc(int64(n))
	s.metrics.BatchesEmitted.Inc(1)
	return n, nil
}

func (s *baseSender) send(batch *j.Batch) error {
	if s.transmit == nil {
		return ErrTransmitNotImplemented
	}
	s.batchSeqNo.Inc()
	return s.transmit(batch)
}
