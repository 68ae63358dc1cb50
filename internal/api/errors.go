package api

import (
	"errors"
	"fmt"
)

// ErrTransport reports that no usable response was obtained: the network
// failed, the request timed out, or the body could not be decoded.
var ErrTransport = errors.New("transport failure")

// ErrMalformedResponse is a transport failure caused by an undecodable body.
var ErrMalformedResponse = fmt.Errorf("%w: malformed response body", ErrTransport)

// ErrInvalidBody reports a request body that is not a JSON draft object.
var ErrInvalidBody = errors.New("invalid JSON body")

// StatusError is returned for any non-2xx response. Body holds the response
// text, trimmed, as the server's explanation.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
