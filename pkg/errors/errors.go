// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	// Framing: the 4-byte length prefix or the payload bytes were malformed.
	CodeFrameLengthInvalid Code = "protocol.frame.length.invalid_value"
	CodeFrameReadTruncated Code = "protocol.frame.read.truncated"
	CodeFrameWriteFailure  Code = "protocol.frame.write.failure"

	// Dispatch: per-request decode and validation failures.
	CodeRequestDecodeInvalid   Code = "server.request.decode.invalid_format"
	CodeRequestValidateInvalid Code = "server.request.validate.invalid_input"
	CodeRequestActionUnknown   Code = "server.request.action.unknown"

	// Connection loop lifecycle.
	CodeServerStartFailure  Code = "server.start.failure"
	CodeServerAcceptFailure Code = "server.accept.failure"
	CodeConnWriteFailure    Code = "server.conn.write.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeClientNotRunning     Code = "client.server.not_running"
	CodeClientRequestFailure Code = "client.request.failure"
	CodeClientServerError    Code = "client.response.server_error"

	CodeCLIInputInvalid Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldChunkID(value string) Attr {
	return Field("chunk_id", value)
}

func FieldDocID(value string) Attr {
	return Field("doc_id", value)
}

func FieldAddr(value string) Attr {
	return Field("addr", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsFraming reports whether err belongs to the wire framing family: a
// connection carrying it cannot be answered reliably.
func IsFraming(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "protocol.frame.")
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsTruncated(err error) bool {
	return reason(CodeOf(err)) == "truncated"
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
