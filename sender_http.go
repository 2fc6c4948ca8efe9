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
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/apache/thrift/lib/go/thrift"

	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
)

// backendErrorReasonLimit caps how much of an error response body is carried
// in a BackendError.
const backendErrorReasonLimit = 1024

// HTTPSender submits the entire span buffer as one POST request per flush,
// e.g. to the collector's /api/traces endpoint. The HTTP client pools
// connections and is reused across flushes.
type HTTPSender struct {
	baseSender
	endpoint   string
	client     *http.Client
	serializer *thrift.TSerializer
	token      string
	username   string
	password   string
}

// NewHTTPSender creates a sender that posts batches to the collector at the
// given endpoint URL.
func NewHTTPSender(endpoint string, options ...HTTPOption) *HTTPSender {
	opts := applyHTTPOptions(options)
	s := &HTTPSender{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   opts.timeout,
			Transport: opts.roundTripper,
		},
		serializer: thrift.NewTSerializer(),
		token:      opts.token,
		username:   opts.username,
		password:   opts.password,
	}
	s.initObservers(opts.metrics, opts.logger)
	s.transmit = s.post
	return s
}

// Close implements Close of Sender. It flushes remaining spans and releases
// pooled connections.
func (s *HTTPSender) Close() error {
	_, err := s.Flush()
	s.client.CloseIdleConnections()
	return err
}

// post serializes one batch and submits it. Transport failures are mapped
// onto the error taxonomy exactly once, at this boundary: unreachable
// collector -> ConnectionError, non-2xx response -> BackendError, anything
// else -> SubmitError.
func (s *HTTPSender) post(batch *j.Batch) error {
	body, err := s.serializer.Write(context.Background(), batch)
	if err != nil {
		return &SubmitError{Endpoint: s.endpoint, Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &SubmitError{Endpoint: s.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", HTTPContentTypeThrift)
	req.ContentLength = int64(len(body))
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	} else if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return &ConnectionError{Endpoint: s.endpoint, Err: err}
		}
		return &SubmitError{Endpoint: s.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, backendErrorReasonLimit))
		return &BackendError{StatusCode: resp.StatusCode, Reason: string(bytes.TrimSpace(reason))}
	}
	// Drain the body so the pooled connection can be reused.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	return nil
}

// isConnectionError reports whether the failure happened below HTTP: DNS,
// refused or reset connections, timeouts. url.Error itself satisfies
// net.Error, so the classification looks at the wrapped cause.
func isConnectionError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
