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
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/apache/thrift/lib/go/thrift"

	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
	"github.com/jaegertracing/jaeger-senders-go/utils"
)

// Empirically obtained constant for how many bytes the emitBatch envelope
// adds around the serialized batch. The total datagram size is:
// sum(sizeof(Span)) + sizeof(empty Batch with Process) + emitBatchOverhead <= maxPacketSize
// There is a unit test `TestEmitBatchOverhead` that validates this number.
// Note that due to the use of Compact Thrift protocol, the envelope grows
// with the number of spans in the batch, because the length of the span list
// is encoded as varint32, as well as the message SeqId.
const emitBatchOverhead = 30

// batchEmitter is the transport client that delivers one fully built batch
// to jaeger-agent. Satisfied by utils.AgentClientUDP.
type batchEmitter interface {
	EmitBatch(ctx context.Context, batch *j.Batch) error
	Close() error
}

// UDPSender submits spans to a local jaeger-agent, packing the buffered
// spans into as many size-bounded datagrams as the flush requires. No
// datagram emitted by this sender exceeds the configured max packet size.
type UDPSender struct {
	baseSender
	client         batchEmitter
	maxPacketSize  int
	thriftBuffer   *thrift.TMemoryBuffer // buffer used to measure byte sizes of spans and batches
	thriftProtocol thrift.TProtocol

	budgetProcess *j.Process // descriptor the cached budget was derived from
	spanBudget    int        // bytes available for spans in one datagram
}

// NewUDPSender creates a sender that ships spans to jaeger-agent over UDP.
// An empty hostPort selects the default agent address, a zero maxPacketSize
// option selects utils.UDPPacketMaxLength.
func NewUDPSender(hostPort string, options ...UDPOption) (*UDPSender, error) {
	opts := applyUDPOptions(options)
	if hostPort == "" {
		hostPort = fmt.Sprintf("%s:%d", DefaultUDPSpanServerHost, DefaultUDPSpanServerPort)
	}
	if opts.maxPacketSize <= 0 {
		opts.maxPacketSize = utils.UDPPacketMaxLength
	}

	// Each span is first written to thriftBuffer to determine its size in bytes.
	thriftBuffer := thrift.NewTMemoryBufferLen(opts.maxPacketSize)
	protocolFactory := thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{})

	client, err := utils.NewAgentClientUDP(hostPort, opts.maxPacketSize)
	if err != nil {
		return nil, err
	}

	sender := &UDPSender{
		client:         client,
		maxPacketSize:  opts.maxPacketSize,
		thriftBuffer:   thriftBuffer,
		thriftProtocol: protocolFactory.GetProtocol(thriftBuffer),
	}
	sender.initObservers(opts.metrics, opts.logger)
	return sender, nil
}

// Flush implements Flush of Sender. The drained spans are packed into
// datagrams in their original order; each datagram carries a contiguous run
// of spans whose combined encoded size fits the budget. A span too large to
// fit even alone is dropped and reported without aborting the flush; the
// first transport failure aborts the remaining packets.
func (s *UDPSender) Flush() (int, error) {
	spans, process, maxTagValueLength := s.drain()
	if len(spans) == 0 {
		return 0, nil
	}
	n := len(spans)
	s.metrics.SpansFlushed.Inc(int64(n))
	budget := s.datagramBudget(process)

	var (
		currentBatch []*j.Span
		currentSize  int
		oversized    error
		sent         int
		dropped      int
	)
	for _, span := range spans {
		jSpan := BuildThriftSpan(span, maxTagValueLength)
		spanSize := s.calcSizeOfSerializedThrift(jSpan)
		switch {
		case spanSize > budget:
			dropped++
			s.spansDropped.Inc()
			s.metrics.SpansDroppedOversized.Inc(1)
			s.logger.Error(fmt.Sprintf(
				"Dropping span %q: encoded size %d bytes exceeds datagram budget of %d bytes",
				span.OperationName, spanSize, budget))
			if oversized == nil {
				oversized = &SpanTooLargeError{Size: spanSize, Max: budget}
			}
		case len(currentBatch) > 0 && currentSize+spanSize > budget:
			if err := s.emit(process, currentBatch); err != nil {
				s.countFailed(n - sent - dropped)
				return n, err
			}
			sent += len(currentBatch)
			currentBatch = []*j.Span{jSpan}
			currentSize = spanSize
		default:
			currentBatch = append(currentBatch, jSpan)
			currentSize += spanSize
		}
	}
	if len(currentBatch) > 0 {
		if err := s.emit(process, currentBatch); err != nil {
			s.countFailed(n - sent - dropped)
			return n, err
		}
	}
	return n, oversized
}

// Close implements Close of Sender. It flushes remaining spans and closes
// the UDP connection to the agent.
func (s *UDPSender) Close() error {
	_, err := s.Flush()
	if closeErr := s.client.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (s *UDPSender) emit(process *j.Process, spans []*j.Span) error {
	seqNo := s.batchSeqNo.Inc()
	batch := &j.Batch{
		Process: process,
		Spans:   spans,
		SeqNo:   &seqNo,
	}
	if err := s.client.EmitBatch(context.Background(), batch); err != nil {
		s.metrics.BatchesFailed.Inc(1)
		return wrapAgentError(err)
	}
	s.spansSent.Add(int64(len(spans)))
	s.metrics.SpansSent.Inc(int64(len(spans)))
	s.metrics.BatchesEmitted.Inc(1)
	return nil
}

func (s *UDPSender) countFailed(failed int) {
	if failed <= 0 {
		return
	}
	s.spansFailed.Add(int64(failed))
	s.metrics.SpansFailed.Inc(int64(failed))
}

// datagramBudget returns the number of bytes available for spans in one
// datagram once the emitBatch envelope and the process descriptor are
// accounted for. The value is cached and re-derived when SetProcess replaces
// the descriptor.
func (s *UDPSender) datagramBudget(process *j.Process) int {
	if process != s.budgetProcess {
		emptyBatch := &j.Batch{Process: process, Spans: []*j.Span{}}
		s.spanBudget = s.maxPacketSize - emitBatchOverhead - s.calcSizeOfSerializedThrift(emptyBatch)
		s.budgetProcess = process
	}
	return s.spanBudget
}

func (s *UDPSender) calcSizeOfSerializedThrift(thriftStruct thrift.TStruct) int {
	s.thriftBuffer.Reset()
	_ = thriftStruct.Write(context.Background(), s.thriftProtocol)
	return s.thriftBuffer.Len()
}

// wrapAgentError maps a transport client failure onto the sender error
// taxonomy exactly once: causes originating in the socket layer become the
// socket variant of AgentError, anything else the protocol variant.
func wrapAgentError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &AgentError{Socket: true, Err: err}
	}
	return &AgentError{Err: err}
}
