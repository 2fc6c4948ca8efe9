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

// Package testutils provides an in-process mock jaeger-agent for tests.
package testutils

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/jaegertracing/jaeger-idl/thrift-gen/agent"
	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
	"github.com/jaegertracing/jaeger-idl/thrift-gen/zipkincore"

	"github.com/jaegertracing/jaeger-senders-go/utils"
)

// MockAgent is a mock representation of jaeger-agent. It receives
// jaeger.thrift batches over UDP and accumulates them for inspection.
type MockAgent struct {
	conn    *net.UDPConn
	batches []*j.Batch
	mutex   sync.Mutex
	serving uint32
}

var _ agent.Agent = (*MockAgent)(nil)

// StartMockAgent runs a mock agent listening on an OS-assigned UDP port of
// the loopback interface. The returned agent is already serving.
func StartMockAgent() (*MockAgent, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		return nil, err
	}

	mock := &MockAgent{conn: conn}

	var started sync.WaitGroup
	started.Add(1)
	go mock.serve(&started)
	started.Wait()

	return mock, nil
}

// Close stops the serving of traffic.
func (s *MockAgent) Close() {
	atomic.StoreUint32(&s.serving, 0)
	s.conn.Close()
}

// SpanServerAddr returns the UDP host:port where the agent listens for spans.
func (s *MockAgent) SpanServerAddr() string {
	return s.conn.LocalAddr().String()
}

func (s *MockAgent) serve(started *sync.WaitGroup) {
	handler := agent.NewAgentProcessor(s)
	protocolFact := thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{})
	buf := make([]byte, utils.UDPPacketMaxLength)
	trans := thrift.NewTMemoryBufferLen(utils.UDPPacketMaxLength)

	atomic.StoreUint32(&s.serving, 1)
	started.Done()
	for s.IsServing() {
		n, err := s.conn.Read(buf)
		if err == nil {
			trans.Reset()
			trans.Write(buf[:n])
			protocol := protocolFact.GetProtocol(trans)
			handler.Process(context.Background(), protocol, protocol)
		}
	}
}

// IsServing indicates whether the agent is currently serving traffic.
func (s *MockAgent) IsServing() bool {
	return atomic.LoadUint32(&s.serving) == 1
}

// EmitBatch implements EmitBatch() of the agent.Agent interface by recording
// the batch.
func (s *MockAgent) EmitBatch(_ context.Context, batch *j.Batch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

// EmitZipkinBatch implements EmitZipkinBatch() of the agent.Agent interface.
// The mock agent does not accept Zipkin spans.
func (s *MockAgent) EmitZipkinBatch(_ context.Context, _ []*zipkincore.Span) error {
	return nil
}

// GetBatches returns the batches accumulated so far as a copy.
func (s *MockAgent) GetBatches() []*j.Batch {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	batches := make([]*j.Batch, len(s.batches))
	copy(batches, s.batches)
	return batches
}

// ResetBatches discards the accumulated batches.
func (s *MockAgent) ResetBatches() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.batches = nil
}
