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
	"fmt"
	"sort"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	j "github.com/jaegertracing/jaeger-idl/thrift-gen/jaeger"
)

// BuildThriftProcess creates the jaeger.thrift Process attached to every
// batch. Tags are sorted by key so the encoded size of the process is stable
// for the lifetime of the descriptor. Tag values longer than
// maxTagValueLength are truncated; a non-positive maxTagValueLength disables
// truncation.
func BuildThriftProcess(serviceName string, tags map[string]string, maxTagValueLength int) *j.Process {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	jTags := make([]*j.Tag, 0, len(tags))
	for _, k := range keys {
		v := truncateString(tags[k], maxTagValueLength)
		jTags = append(jTags, &j.Tag{
			Key:   k,
			VType: j.TagType_STRING,
			VStr:  &v,
		})
	}
	return &j.Process{
		ServiceName: serviceName,
		Tags:        jTags,
	}
}

// BuildThriftSpan converts a finished span into its jaeger.thrift
// representation. The input span is not modified.
func BuildThriftSpan(span *Span, maxTagValueLength int) *j.Span {
	return &j.Span{
		TraceIdLow:    int64(span.TraceIDLow),
		TraceIdHigh:   int64(span.TraceIDHigh),
		SpanId:        int64(span.SpanID),
		ParentSpanId:  int64(span.ParentID),
		OperationName: span.OperationName,
		Flags:         span.Flags,
		StartTime:     timeToMicrosecondsSinceEpochInt64(span.StartTime),
		Duration:      span.Duration.Nanoseconds() / int64(time.Microsecond),
		Tags:          buildTags(span.Tags, maxTagValueLength),
		Logs:          buildLogs(span.Logs, maxTagValueLength),
	}
}

func buildTags(tags []Tag, maxTagValueLength int) []*j.Tag {
	jTags := make([]*j.Tag, 0, len(tags))
	for i := range tags {
		jTags = append(jTags, buildTag(&tags[i], maxTagValueLength))
	}
	return jTags
}

func buildTag(tag *Tag, maxTagValueLength int) *j.Tag {
	jTag := &j.Tag{Key: tag.Key}
	switch value := tag.Value.(type) {
	case string:
		vStr := truncateString(value, maxTagValueLength)
		jTag.VStr = &vStr
		jTag.VType = j.TagType_STRING
	case []byte:
		if maxTagValueLength > 0 && len(value) > maxTagValueLength {
			value = value[:maxTagValueLength]
		}
		jTag.VBinary = value
		jTag.VType = j.TagType_BINARY
	case int:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case uint:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case int8:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case uint8:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case int16:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case uint16:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case int32:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case uint32:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case int64:
		vLong := value
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case uint64:
		vLong := int64(value)
		jTag.VLong = &vLong
		jTag.VType = j.TagType_LONG
	case float32:
		vDouble := float64(value)
		jTag.VDouble = &vDouble
		jTag.VType = j.TagType_DOUBLE
	case float64:
		vDouble := value
		jTag.VDouble = &vDouble
		jTag.VType = j.TagType_DOUBLE
	case bool:
		vBool := value
		jTag.VBool = &vBool
		jTag.VType = j.TagType_BOOL
	default:
		vStr := truncateString(stringify(value), maxTagValueLength)
		jTag.VStr = &vStr
		jTag.VType = j.TagType_STRING
	}
	return jTag
}

func buildLogs(logs []opentracing.LogRecord, maxTagValueLength int) []*j.Log {
	jLogs := make([]*j.Log, 0, len(logs))
	for _, logRecord := range logs {
		jLog := &j.Log{
			Timestamp: timeToMicrosecondsSinceEpochInt64(logRecord.Timestamp),
			Fields:    convertLogsToThriftTags(logRecord.Fields, maxTagValueLength),
		}
		jLogs = append(jLogs, jLog)
	}
	return jLogs
}

// convertLogsToThriftTags converts opentracing log fields into jaeger tags
// by walking the fields with a log.Encoder.
func convertLogsToThriftTags(logFields []log.Field, maxTagValueLength int) []*j.Tag {
	fields := tagsEncoder{
		tags:      make([]*j.Tag, 0, len(logFields)),
		maxLength: maxTagValueLength,
	}
	for _, field := range logFields {
		field.Marshal(&fields)
	}
	return fields.tags
}

type tagsEncoder struct {
	tags      []*j.Tag
	maxLength int
}

func (t *tagsEncoder) emit(key string, value interface{}) {
	t.tags = append(t.tags, buildTag(&Tag{Key: key, Value: value}, t.maxLength))
}

func (t *tagsEncoder) EmitString(key, value string)             { t.emit(key, value) }
func (t *tagsEncoder) EmitBool(key string, value bool)          { t.emit(key, value) }
func (t *tagsEncoder) EmitInt(key string, value int)            { t.emit(key, value) }
func (t *tagsEncoder) EmitInt32(key string, value int32)        { t.emit(key, value) }
func (t *tagsEncoder) EmitInt64(key string, value int64)        { t.emit(key, value) }
func (t *tagsEncoder) EmitUint32(key string, value uint32)      { t.emit(key, value) }
func (t *tagsEncoder) EmitUint64(key string, value uint64)      { t.emit(key, value) }
func (t *tagsEncoder) EmitFloat32(key string, value float32)    { t.emit(key, value) }
func (t *tagsEncoder) EmitFloat64(key string, value float64)    { t.emit(key, value) }
func (t *tagsEncoder) EmitObject(key string, value interface{}) { t.emit(key, value) }
func (t *tagsEncoder) EmitLazyLogger(value log.LazyLogger)      { value(t) }

func stringify(value interface{}) string {
	if s, ok := value.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%+v", value)
}

func truncateString(value string, maxLength int) string {
	// we ignore the problem of utf8 runes possibly being sliced in the middle,
	// as it is rather expensive to iterate through each tag just to find rune
	// boundaries.
	if maxLength > 0 && len(value) > maxLength {
		return value[:maxLength]
	}
	return value
}

func timeToMicrosecondsSinceEpochInt64(t time.Time) int64 {
	return t.UnixNano() / 1000
}
