// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

// Package protocol implements the vecserve wire protocol: each message is a
// 4-byte big-endian length prefix followed by exactly that many bytes of a
// JSON document. A connection carries one request frame in and one response
// frame out, then the server closes it.
package protocol

import (
	"encoding/binary"
	"io"

	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
)

// MaxFrameBytes is the largest payload either side will accept.
const MaxFrameBytes = 10 * 1024 * 1024

// ReadFrame blocks until a full frame has been read from r and returns its
// payload. A zero or oversized length prefix, or a connection closed before
// the frame completes, is a framing error.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeFrameReadTruncated, "reading message length")
	}

	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > MaxFrameBytes {
		return nil, vecerr.Errorf(vecerr.CodeFrameLengthInvalid, "invalid message length: %d", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, vecerr.Wrap(err, vecerr.CodeFrameReadTruncated, "reading message payload")
	}

	return payload, nil
}

// WriteFrame writes the length prefix and payload to w. Payloads that would
// be rejected by the peer's ReadFrame are refused before any bytes go out.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxFrameBytes {
		return vecerr.Errorf(vecerr.CodeFrameLengthInvalid, "invalid message length: %d", len(payload))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return vecerr.Wrap(err, vecerr.CodeFrameWriteFailure, "writing message length")
	}
	if _, err := w.Write(payload); err != nil {
		return vecerr.Wrap(err, vecerr.CodeFrameWriteFailure, "writing message payload")
	}

	return nil
}
