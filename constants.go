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

import "time"

const (
	// DefaultUDPSpanServerHost is the default host of the local jaeger-agent
	// that UDPSender submits spans to.
	DefaultUDPSpanServerHost = "localhost"

	// DefaultUDPSpanServerPort is the default port on which jaeger-agent
	// listens for jaeger.thrift spans over compact Thrift protocol.
	DefaultUDPSpanServerPort = 6831

	// HTTPContentTypeThrift is the MIME type of a serialized Thrift batch
	// posted to the collector.
	HTTPContentTypeThrift = "application/x-thrift"

	// defaultHTTPTimeout is how long HTTPSender waits for the collector to
	// accept a batch before giving up on the request.
	defaultHTTPTimeout = time.Second * 5
)
