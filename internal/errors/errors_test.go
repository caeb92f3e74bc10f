package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-combat/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "battle not found",
			expected: "NOT_FOUND: battle not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "strategy is invalid",
			expected: "INVALID_ARGUMENT: strategy is invalid",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorStringIncludesReason() {
	err := errors.BattleEnded("b-1")
	s.Assert().Equal("FAILED_PRECONDITION: [BATTLE_ENDED] battle b-1 has ended", err.Error())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndReason() {
	base := errors.ActorDead("b-1", "2")
	wrapped := errors.Wrap(base, "failed to register move")

	s.Assert().Equal(errors.CodeFailedPrecondition, wrapped.Code)
	s.Assert().Equal(errors.ReasonActorDead, wrapped.Reason)
	s.Assert().Equal("failed to register move", wrapped.Message)
	s.Assert().Equal(base, wrapped.Unwrap())
	s.Assert().Equal("2", errors.GetMeta(wrapped)["actor_id"])
}

func (s *ErrorsTestSuite) TestWrapPlainError() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to load battle")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Empty(wrapped.Reason)
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
	s.Assert().Nil(errors.StoreUnavailable(nil, "should be nil"))
}

func (s *ErrorsTestSuite) TestStoreUnavailableIsRetryable() {
	err := errors.StoreUnavailable(fmt.Errorf("i/o timeout"), "failed to read meta")

	s.Assert().True(errors.IsUnavailable(err))
	s.Assert().True(errors.IsRetryable(err))
	s.Assert().True(errors.HasReason(err, errors.ReasonStoreUnavailable))
	s.Assert().False(errors.IsRetryable(errors.InvalidArgument("bad")))
	s.Assert().False(errors.IsRetryable(nil))
}

func (s *ErrorsTestSuite) TestReasonConstructors() {
	testCases := []struct {
		name   string
		err    *errors.Error
		code   errors.Code
		reason errors.Reason
	}{
		{"invalid battle", errors.InvalidBattle("b"), errors.CodeNotFound, errors.ReasonInvalidBattle},
		{"battle ended", errors.BattleEnded("b"), errors.CodeFailedPrecondition, errors.ReasonBattleEnded},
		{"actor dead", errors.ActorDead("b", "1"), errors.CodeFailedPrecondition, errors.ReasonActorDead},
		{"consistency", errors.ConsistencyViolationf("temp %s orphaned", "u"), errors.CodeDataLoss, errors.ReasonConsistencyViolation},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.code, tc.err.Code)
			s.Assert().Equal(tc.reason, errors.GetReason(tc.err))
		})
	}
}

func (s *ErrorsTestSuite) TestErrorIs() {
	s.Assert().True(errors.NotFound("a").Is(errors.NotFound("b")))
	s.Assert().False(errors.NotFound("a").Is(errors.InvalidArgument("a")))

	// same code, different reasons
	s.Assert().False(errors.BattleEnded("b").Is(errors.ActorDead("b", "1")))
	s.Assert().True(errors.Is(errors.Wrap(errors.ActorDead("b", "1"), "x"), errors.ActorDead("c", "2")))
}

func (s *ErrorsTestSuite) TestGetCode() {
	err := errors.NotFound("test")
	wrapped := errors.Wrap(err, "wrapped")

	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(err))
	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFound("user friendly message")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Assert().Equal("user friendly message", errors.GetMessage(err))
	s.Assert().Equal("wrapped message", errors.GetMessage(wrapped))
	s.Assert().Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestGRPCRoundTrip() {
	err := errors.ActorDead("b-1", "7")

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Assert().Equal(codes.FailedPrecondition, st.Code())
	s.Assert().Equal("[ACTOR_DEAD] actor 7 cannot act in battle b-1", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Assert().Equal(errors.CodeFailedPrecondition, errors.GetCode(back))
	s.Assert().Equal(errors.ReasonActorDead, errors.GetReason(back))
	s.Assert().Equal("actor 7 cannot act in battle b-1", errors.GetMessage(back))
	s.Assert().Equal("7", errors.GetMeta(back)["actor_id"])
}

func (s *ErrorsTestSuite) TestGRPCPassthrough() {
	grpcErr := status.Error(codes.InvalidArgument, "invalid input")
	s.Assert().Equal(grpcErr, errors.ToGRPCError(grpcErr))

	back := errors.FromGRPCError(grpcErr)
	s.Assert().Equal(errors.CodeInvalidArgument, errors.GetCode(back))
	s.Assert().Empty(errors.GetReason(back))
}

func (s *ErrorsTestSuite) TestGRPCCodeMapping() {
	testCases := []struct {
		code     errors.Code
		expected codes.Code
	}{
		{errors.CodeNotFound, codes.NotFound},
		{errors.CodeInvalidArgument, codes.InvalidArgument},
		{errors.CodeAlreadyExists, codes.AlreadyExists},
		{errors.CodeFailedPrecondition, codes.FailedPrecondition},
		{errors.CodeInternal, codes.Internal},
		{errors.CodeUnavailable, codes.Unavailable},
		{errors.CodeDataLoss, codes.DataLoss},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Assert().Equal(tc.expected, tc.code.GRPCCode())
		})
	}
}
