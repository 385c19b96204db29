// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
)

// ErrGatewayUnavailable reports a transport failure, an open circuit
// breaker, or a non-success status from the citation index.
var ErrGatewayUnavailable = errors.New("citation index unavailable")

// ErrMalformedResponse reports a response whose expected envelope is missing
// or unparseable.
var ErrMalformedResponse = errors.New("malformed citation index response")

// StatusError records a non-200 response from an E-utilities endpoint. It
// matches ErrGatewayUnavailable under errors.Is.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Unwrap lets callers test a StatusError against ErrGatewayUnavailable.
func (e *StatusError) Unwrap() error { return ErrGatewayUnavailable }
