package errors

import (
	"errors"
)

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode returns the code of err; CodeOK for nil and CodeInternal for
// errors from outside this package.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return CodeInternal
}

// GetReason extracts the combat reason from an error, empty when none is set.
func GetReason(err error) Reason {
	if e, ok := asError(err); ok {
		return e.Reason
	}
	return ""
}

// GetMeta returns the metadata of the outermost *Error in the chain.
func GetMeta(err error) map[string]interface{} {
	if e, ok := asError(err); ok {
		return e.Meta
	}
	return nil
}

// GetMessage returns the caller-facing message without code or cause.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// HasReason reports whether err carries the given reason.
func HasReason(err error, reason Reason) bool {
	return err != nil && GetReason(err) == reason
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return GetCode(err) == CodeNotFound }

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool { return GetCode(err) == CodeInvalidArgument }

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool { return GetCode(err) == CodeAlreadyExists }

// IsUnavailable checks if an error is an unavailable error
func IsUnavailable(err error) bool { return GetCode(err) == CodeUnavailable }

// IsFailedPrecondition checks if an error is a failed precondition error
func IsFailedPrecondition(err error) bool { return GetCode(err) == CodeFailedPrecondition }

// IsDataLoss checks if an error is a data loss error
func IsDataLoss(err error) bool { return GetCode(err) == CodeDataLoss }

// IsRetryable reports whether the task that produced err may be retried.
func IsRetryable(err error) bool {
	return err != nil && GetCode(err).Retryable()
}
