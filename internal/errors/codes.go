package errors

import "google.golang.org/grpc/codes"

// Code classifies an error for transport. Each code maps onto one gRPC code.
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeResourceExhausted  Code = "RESOURCE_EXHAUSTED"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeAborted            Code = "ABORTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeDataLoss           Code = "DATA_LOSS"
)

type codeInfo struct {
	grpc codes.Code
	// a task failing with this code may succeed on a later attempt
	// without any change to its input
	retryable bool
}

var codeTable = map[Code]codeInfo{
	CodeOK:                 {grpc: codes.OK},
	CodeCanceled:           {grpc: codes.Canceled},
	CodeInvalidArgument:    {grpc: codes.InvalidArgument},
	CodeDeadlineExceeded:   {grpc: codes.DeadlineExceeded, retryable: true},
	CodeNotFound:           {grpc: codes.NotFound},
	CodeAlreadyExists:      {grpc: codes.AlreadyExists},
	CodeResourceExhausted:  {grpc: codes.ResourceExhausted},
	CodeFailedPrecondition: {grpc: codes.FailedPrecondition},
	CodeAborted:            {grpc: codes.Aborted, retryable: true},
	CodeInternal:           {grpc: codes.Internal},
	CodeUnavailable:        {grpc: codes.Unavailable, retryable: true},
	CodeDataLoss:           {grpc: codes.DataLoss},
}

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// GRPCCode returns the status code sent to grpc callers.
func (c Code) GRPCCode() codes.Code {
	if info, ok := codeTable[c]; ok {
		return info.grpc
	}
	return codes.Unknown
}

// Retryable reports whether the worker runtime should retry a task that
// failed with this code.
func (c Code) Retryable() bool {
	return codeTable[c].retryable
}

func codeFromGRPC(gc codes.Code) Code {
	for code, info := range codeTable {
		if info.grpc == gc {
			return code
		}
	}
	return CodeInternal
}
