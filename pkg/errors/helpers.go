package errors

import (
	"context"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}

// CodeOf extracts the error code from err, or Unknown if err was not
// created by this package.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code()
	}
	return Unknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	e, ok := err.(*Error)
	return ok && e.Code() == code
}
