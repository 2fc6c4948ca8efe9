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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
)

func makeSpan(operationName string, tags ...Tag) *Span {
	start := time.Now()
	return &Span{
		TraceIDLow:    1,
		SpanID:        2,
		Flags:         1,
		OperationName: operationName,
		StartTime:     start,
		Duration:      time.Millisecond,
		Tags:          tags,
		Logs: []opentracing.LogRecord{
			{
				Timestamp: start,
				Fields:    []log.Field{log.String("event", "begin")},
			},
		},
	}
}

// recordingTransmitter captures batches handed to a baseSender's transmit
// function, standing in for a protocol-specific transport.
type recordingTransmitter struct {
	batches []*j.Batch
	err     error
}

func (r *recordingTransmitter) transmit(batch *j.Batch) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, batch)
	return nil
}

func newRecordingSender() (*baseSender, *recordingTransmitter) {
	transmitter := &recordingTransmitter{}
	sender := &baseSender{}
	sender.initObservers(nil, nil)
	sender.transmit = transmitter.transmit
	return sender, transmitter
}

func TestSenderEmptyFlushIsNoop(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.SetProcess("service", nil, 0)

	n, err := sender.Flush()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, transmitter.batches)
}

func TestSenderProcesslessFlushIsNoop(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.Append(makeSpan("foo"))

	n, err := sender.Flush()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, transmitter.batches)
	assert.Equal(t, 1, sender.SpanCount(), "buffer must stay intact without a process descriptor")
}

func TestSenderFlushWithoutTransmitIsContractViolation(t *testing.T) {
	sender := &baseSender{}
	sender.initObservers(nil, nil)
	sender.SetProcess("service", nil, 0)
	sender.Append(makeSpan("foo"))

	n, err := sender.Flush()
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransmitNotImplemented)
	assert.Equal(t, 0, sender.SpanCount())
}

func TestSenderFlushPropagatesTransmitErrorUnmodified(t *testing.T) {
	sender, transmitter := newRecordingSender()
	transmitter.err = errors.New("Failed to send batch.")
	sender.SetProcess("service", nil, 0)
	sender.Append(makeSpan("foo"))
	require.Equal(t, 1, sender.SpanCount())

	n, err := sender.Flush()
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.Equal(t, "Failed to send batch.", err.Error())
	assert.Equal(t, 0, sender.SpanCount(), "spans are dropped, not re-queued")
	assert.EqualValues(t, 1, sender.FailedCount())
	assert.EqualValues(t, 0, sender.SentCount())
}

func TestSenderFlushBuildsSingleBatch(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.SetProcess("service", map[string]string{"hostname": "h1"}, 0)
	sender.Append(makeSpan("op-1"))
	sender.Append(makeSpan("op-2"))

	n, err := sender.Flush()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, transmitter.batches, 1)

	batch := transmitter.batches[0]
	assert.Equal(t, "service", batch.Process.ServiceName)
	require.Len(t, batch.Spans, 2)
	assert.Equal(t, "op-1", batch.Spans[0].OperationName)
	assert.Equal(t, "op-2", batch.Spans[1].OperationName)
	assert.EqualValues(t, 2, sender.SentCount())
}

func TestSenderSetProcessTruncatesTagValues(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.SetProcess("service", map[string]string{"ip": "123.456.789.123"}, 5)
	sender.Append(makeSpan("foo"))

	_, err := sender.Flush()
	require.NoError(t, err)
	require.Len(t, transmitter.batches, 1)
	tags := transmitter.batches[0].Process.Tags
	require.Len(t, tags, 1)
	assert.Equal(t, "ip", tags[0].Key)
	assert.Equal(t, "123.4", *tags[0].VStr)
}

func TestSenderSetProcessReplacesDescriptor(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.SetProcess("first", nil, 0)
	sender.SetProcess("second", nil, 0)
	sender.Append(makeSpan("foo"))

	_, err := sender.Flush()
	require.NoError(t, err)
	require.Len(t, transmitter.batches, 1)
	assert.Equal(t, "second", transmitter.batches[0].Process.ServiceName)
}

func TestSenderConcurrentAppendDuringFlush(t *testing.T) {
	sender, transmitter := newRecordingSender()
	sender.SetProcess("service", nil, 0)

	const producers = 8
	const spansPerProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < spansPerProducer; i++ {
				sender.Append(makeSpan(fmt.Sprintf("op-%d-%d", p, i)))
			}
		}(p)
	}

	flushed := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		n, err := sender.Flush()
		require.NoError(t, err)
		flushed += n
		select {
		case <-done:
			n, err := sender.Flush()
			require.NoError(t, err)
			flushed += n
			total := 0
			for _, batch := range transmitter.batches {
				total += len(batch.Spans)
			}
			assert.Equal(t, producers*spansPerProducer, flushed)
			assert.Equal(t, producers*spansPerProducer, total, "no span may be lost or duplicated by the drain")
			assert.Equal(t, 0, sender.SpanCount())
			return
		default:
		}
	}
}
