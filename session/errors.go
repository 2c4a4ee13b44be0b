// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package session

import "errors"

// Error kinds raised by the session, per spec.md §7.
var (
	// ErrDisconnected reports a fatal transport read/write EOF or I/O
	// error; the session is marked disconnected and OnError fires.
	ErrDisconnected = errors.New("session: disconnected")

	// ErrProtocolViolation reports an unexpected element, a missing bind
	// jid, or a mechanism that completed without a verified success.
	ErrProtocolViolation = errors.New("session: protocol violation")

	// ErrTimeout is returned by iq_request_blocking when its timeout
	// elapses without a response, except for the ping-liveness heuristic
	// case (spec.md §4.4.4), which instead disconnects the session.
	ErrTimeout = errors.New("session: iq request timed out")

	// ErrNegativeTimeout is returned when a blocking IQ timeout is
	// negative and not exactly -1 (infinite), per spec.md §8.
	ErrNegativeTimeout = errors.New("session: iq timeout must be >= 0 or exactly -1")

	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("session: closed")
)

// AuthenticationError reports an authentication-phase failure: SASL
// failure, a TLS-required violation, or no supported mechanism. Unlike the
// fatal kinds above, a caller may retry New/Authenticate with different
// credentials.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return "session: authentication failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "session: authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func authErr(reason string, err error) error {
	return &AuthenticationError{Reason: reason, Err: err}
}
