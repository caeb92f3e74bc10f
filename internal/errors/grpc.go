package errors

import (
	"strings"

	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToGRPCError renders err as a status error for the handler boundary.
// A reason becomes a "[REASON] " message prefix and metadata is attached as
// a structpb.Struct detail. Status errors pass through untouched.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	e, ok := asError(err)
	if !ok {
		return status.Error(CodeInternal.GRPCCode(), err.Error())
	}

	st := status.New(e.Code.GRPCCode(), e.reasonMessage())
	if len(e.Meta) == 0 {
		return st.Err()
	}
	detail, err := structpb.NewStruct(e.Meta)
	if err != nil {
		return st.Err()
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		st = withDetail
	}
	return st.Err()
}

// FromGRPCError is the client-side inverse of ToGRPCError. Errors that are
// not statuses are returned as they are.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	reason, msg := splitReason(st.Message())
	out := &Error{
		Code:    codeFromGRPC(st.Code()),
		Reason:  reason,
		Message: msg,
	}
	for _, d := range st.Details() {
		if detail, ok := d.(*structpb.Struct); ok {
			out.Meta = detail.AsMap()
			break
		}
	}
	return out
}

// splitReason undoes the "[REASON] message" prefix.
func splitReason(msg string) (Reason, string) {
	if !strings.HasPrefix(msg, "[") {
		return "", msg
	}
	end := strings.Index(msg, "] ")
	if end <= 1 {
		return "", msg
	}
	return Reason(msg[1:end]), msg[end+2:]
}
