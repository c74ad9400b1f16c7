package services

import "errors"

// Error taxonomy shared by the JustTCG client and the decoders. Callers
// classify with errors.Is; the bulk refresher is the only component that
// recovers from these locally.
var (
	// ErrInvalidRequest means the operation's parameters could not be
	// formed into a valid request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRequestFailed is a transport-level failure; no response was obtained.
	ErrRequestFailed = errors.New("request failed")

	// ErrInvalidResponse means a response was obtained but its status code
	// falls outside 200-299.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrDecodingFailed means the response body does not parse into the
	// expected record shape.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrNoMatch reports a lookup that legitimately found nothing. Search
	// paths treat it as an empty result; the bulk refresher counts it as a
	// per-item failure.
	ErrNoMatch = errors.New("no match")

	// ErrRefreshRunning rejects a bulk refresh while one is in progress.
	ErrRefreshRunning = errors.New("bulk refresh already running")
)
