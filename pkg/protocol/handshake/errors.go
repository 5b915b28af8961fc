// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"errors"

	"github.com/crossbuild/dtls/pkg/protocol"
)

// Typed errors
var (
	errUnableToMarshalFragmented = &protocol.InternalError{Err: errors.New("unable to marshal fragmented handshakes")}
	errHandshakeMessageUnset     = &protocol.InternalError{Err: errors.New("handshake message unset, unable to marshal")}
	errBufferTooSmall            = &protocol.TemporaryError{Err: errors.New("buffer is too small")}
	errLengthMismatch            = &protocol.InternalError{Err: errors.New("data length and declared length do not match")}
	errCookieTooLong             = &protocol.FatalError{Err: errors.New("cookie must not be longer then 255 bytes")}
	errNotImplemented            = &protocol.InternalError{Err: errors.New("feature has not been implemented yet")}
)
