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

// Package senders implements the span emission layer of a Jaeger client.
// A Sender buffers finished spans and, on Flush, serializes them with the
// Thrift codec and ships them to the tracing backend, either as one or more
// size-bounded UDP datagrams to a local jaeger-agent (UDPSender) or as a
// single HTTP POST to a collector (HTTPSender).
//
// Senders own no scheduling: a reporting loop external to this package is
// expected to call Flush periodically and Close on shutdown. Append is safe
// for concurrent use by many producers; Flush and Close must be serialized
// by the caller, typically by a single reporting goroutine.
package senders
