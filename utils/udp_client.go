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

// Package utils holds the low-level transport clients used by the senders.
package utils

import (
	"context"
	"fmt"
	"net"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"

	"github.com/jaegertracing/jaeger-idl/thrift-gen/agent"
	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
)

// UDPPacketMaxLength is the max size of UDP packet we want to send, synced
// with jaeger-agent.
const UDPPacketMaxLength = 65000

// AgentClientUDP is a UDP client to jaeger-agent that delivers jaeger.thrift
// batches over the compact Thrift protocol.
type AgentClientUDP struct {
	connUDP       *net.UDPConn
	client        *agent.AgentClient
	maxPacketSize int                   // max size of datagram in bytes
	thriftBuffer  *thrift.TMemoryBuffer // the emitBatch call is encoded here before it hits the wire
}

// NewAgentClientUDP creates a client that sends spans to jaeger-agent over UDP.
func NewAgentClientUDP(hostPort string, maxPacketSize int) (*AgentClientUDP, error) {
	if maxPacketSize <= 0 {
		maxPacketSize = UDPPacketMaxLength
	}

	thriftBuffer := thrift.NewTMemoryBufferLen(maxPacketSize)
	protocolFactory := thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{})
	client := agent.NewAgentClientFactory(thriftBuffer, protocolFactory)

	destAddr, err := net.ResolveUDPAddr("udp", hostPort)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve UDP address %s", hostPort)
	}

	connUDP, err := net.DialUDP(destAddr.Network(), nil, destAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot dial UDP address %s", hostPort)
	}
	if err := connUDP.SetWriteBuffer(maxPacketSize); err != nil {
		return nil, errors.Wrap(err, "cannot set UDP write buffer size")
	}

	return &AgentClientUDP{
		connUDP:       connUDP,
		client:        client,
		maxPacketSize: maxPacketSize,
		thriftBuffer:  thriftBuffer,
	}, nil
}

// EmitBatch encodes the batch into one datagram and writes it to the agent.
// A batch that does not fit within one packet is rejected without a write;
// callers are expected to size batches against the packet limit.
func (a *AgentClientUDP) EmitBatch(ctx context.Context, batch *j.Batch) error {
	a.thriftBuffer.Reset()
	if err := a.client.EmitBatch(ctx, batch); err != nil {
		return err
	}
	if a.thriftBuffer.Len() > a.maxPacketSize {
		return fmt.Errorf("data does not fit within one UDP packet; size %d, max %d, spans %d",
			a.thriftBuffer.Len(), a.maxPacketSize, len(batch.Spans))
	}
	_, err := a.connUDP.Write(a.thriftBuffer.Bytes())
	return err
}

// Close implements io.Closer and closes the underlying UDP connection.
func (a *AgentClientUDP) Close() error {
	return a.connUDP.Close()
}
