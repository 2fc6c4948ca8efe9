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
)

// ErrTransmitNotImplemented is returned by Flush when a sender was built
// without a transport-specific transmit function. It indicates a programming
// error in the sender's construction, not a transmission failure.
var ErrTransmitNotImplemented = errors.New("transmit is not implemented by this sender")

// SpanTooLargeError is returned by UDPSender.Flush when one of the buffered
// spans does not fit into a datagram even as the only span of the batch.
// The offending span is dropped and the remaining spans are still flushed;
// the error reports the first such span seen during the flush.
type SpanTooLargeError struct {
	// Size is the encoded size of the span in bytes.
	Size int
	// Max is the per-datagram byte budget available for spans.
	Max int
}

func (e *SpanTooLargeError) Error() string {
	return fmt.Sprintf("Cannot send span of size %d bytes, maximum size is %d bytes", e.Size, e.Max)
}

// AgentError wraps a failure to deliver a datagram to jaeger-agent.
// Socket distinguishes raw socket failures from failures in the application
// protocol layer.
type AgentError struct {
	Socket bool
	Err    error
}

func (e *AgentError) Error() string {
	if e.Socket {
		return fmt.Sprintf("Failed to submit traces to jaeger-agent socket: %s", e.Err)
	}
	return fmt.Sprintf("Failed to submit traces to jaeger-agent: %s", e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// ConnectionError is returned by HTTPSender when the collector cannot be
// reached at all: DNS failure, connection refused, connection reset.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Failed to connect to %s: %s", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// BackendError is returned by HTTPSender when the collector answers with a
// non-2xx status. Reason carries the response body as provided by the
// backend.
type BackendError struct {
	StatusCode int
	Reason     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("HTTP %d: Error received from Jaeger: %s", e.StatusCode, e.Reason)
}

// SubmitError is returned by HTTPSender for any other failure while posting
// a batch, e.g. a broken round tripper or a request that could not be built.
type SubmitError struct {
	Endpoint string
	Err      error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("POST to %s failed: %s", e.Endpoint, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
