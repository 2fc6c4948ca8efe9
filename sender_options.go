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
	"net/http"
	"time"
)

// UDPOption sets a parameter of UDPSender.
type UDPOption func(*udpOptions)

type udpOptions struct {
	maxPacketSize int
	metrics       *Metrics
	logger        Logger
}

// UDPMaxPacketSize sets the maximum size in bytes of datagrams emitted by
// the sender. Zero selects utils.UDPPacketMaxLength.
func UDPMaxPacketSize(size int) UDPOption {
	return func(o *udpOptions) {
		o.maxPacketSize = size
	}
}

// UDPMetrics sets the metrics container the sender updates.
func UDPMetrics(m *Metrics) UDPOption {
	return func(o *udpOptions) {
		o.metrics = m
	}
}

// UDPLogger sets the logger used to report dropped spans.
func UDPLogger(logger Logger) UDPOption {
	return func(o *udpOptions) {
		o.logger = logger
	}
}

func applyUDPOptions(options []UDPOption) udpOptions {
	opts := udpOptions{}
	for _, option := range options {
		option(&opts)
	}
	return opts
}

// HTTPOption sets a parameter of HTTPSender.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	timeout      time.Duration
	roundTripper http.RoundTripper
	token        string
	username     string
	password     string
	metrics      *Metrics
	logger       Logger
}

// HTTPTimeout sets how long the sender waits for the collector to accept a
// batch.
func HTTPTimeout(duration time.Duration) HTTPOption {
	return func(o *httpOptions) {
		o.timeout = duration
	}
}

// HTTPRoundTripper replaces the transport used by the sender's HTTP client,
// e.g. to configure TLS.
func HTTPRoundTripper(transport http.RoundTripper) HTTPOption {
	return func(o *httpOptions) {
		o.roundTripper = transport
	}
}

// HTTPAuthToken configures bearer token authentication. Mutually exclusive
// with HTTPBasicAuth; the token takes precedence if both are set.
func HTTPAuthToken(token string) HTTPOption {
	return func(o *httpOptions) {
		o.token = token
	}
}

// HTTPBasicAuth configures HTTP basic authentication. Mutually exclusive
// with HTTPAuthToken.
func HTTPBasicAuth(username string, password string) HTTPOption {
	return func(o *httpOptions) {
		o.username = username
		o.password = password
	}
}

// HTTPMetrics sets the metrics container the sender updates.
func HTTPMetrics(m *Metrics) HTTPOption {
	return func(o *httpOptions) {
		o.metrics = m
	}
}

// HTTPLogger sets the logger used by the sender.
func HTTPLogger(logger Logger) HTTPOption {
	return func(o *httpOptions) {
		o.logger = logger
	}
}

func applyHTTPOptions(options []HTTPOption) httpOptions {
	opts := httpOptions{timeout: defaultHTTPTimeout}
	for _, option := range options {
		option(&opts)
	}
	return opts
}
