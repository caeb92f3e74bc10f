package v1alpha1_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-combat/internal/entities/combat"
	"github.com/KirkDiggler/rpg-combat/internal/errors"
	"github.com/KirkDiggler/rpg-combat/internal/handlers/combat/v1alpha1"
	"github.com/KirkDiggler/rpg-combat/internal/orchestrators/turn"
	turnmock "github.com/KirkDiggler/rpg-combat/internal/orchestrators/turn/mock"
	"github.com/KirkDiggler/rpg-combat/internal/repositories/archive"
	"github.com/KirkDiggler/rpg-combat/internal/testutils"
)

type HandlerTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	mockTurn *turnmock.MockService
	handler  *v1alpha1.Handler
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockTurn = turnmock.NewMockService(s.ctrl)

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{TurnService: s.mockTurn})
	s.Require().NoError(err)
	s.handler = handler
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) request(m map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(m)
	s.Require().NoError(err)
	return req
}

func (s *HandlerTestSuite) TestNewHandlerRequiresTurnService() {
	_, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{})
	s.Error(err)
}

func (s *HandlerTestSuite) TestSubmitMove() {
	s.mockTurn.EXPECT().
		RegisterMove(s.ctx, &turn.RegisterMoveInput{
			BattleID: "b1",
			CharID:   "1",
			Strategy: combat.StrategyExchange,
			Payload:  combat.PayloadInput{TargetID: "2", AbilityID: "power_strike"},
		}).
		Return(&turn.RegisterMoveOutput{MoveID: "mv_1", Created: true}, nil)

	resp, err := s.handler.SubmitMove(s.ctx, s.request(map[string]any{
		"battle_id": "b1",
		"actor_id":  1,
		"strategy":  "exchange",
		"payload":   map[string]any{"target_id": "2", "ability_id": "power_strike"},
	}))
	s.Require().NoError(err)
	s.Equal("mv_1", resp.GetFields()["move_id"].GetStringValue())
	s.NotContains(resp.GetFields(), "duplicate")
}

func (s *HandlerTestSuite) TestSubmitMoveDuplicate() {
	s.mockTurn.EXPECT().
		RegisterMove(s.ctx, gomock.Any()).
		Return(&turn.RegisterMoveOutput{MoveID: "mv_1", Created: false}, nil)

	resp, err := s.handler.SubmitMove(s.ctx, s.request(map[string]any{
		"battle_id": "b1",
		"actor_id":  "1",
		"strategy":  "exchange",
		"payload":   map[string]any{"target_id": "2"},
	}))
	s.Require().NoError(err)
	s.Equal("mv_1", resp.GetFields()["move_id"].GetStringValue())
	s.True(resp.GetFields()["duplicate"].GetBoolValue())
}

func (s *HandlerTestSuite) TestSubmitMoveErrors() {
	testCases := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "unknown battle",
			err:      errors.InvalidBattle("b1"),
			wantCode: codes.NotFound,
			wantMsg:  "[INVALID_BATTLE] battle b1 not found",
		},
		{
			name:     "dead actor",
			err:      errors.ActorDead("b1", "1"),
			wantCode: codes.FailedPrecondition,
			wantMsg:  "[ACTOR_DEAD] actor 1 cannot act in battle b1",
		},
		{
			name:     "ended battle",
			err:      errors.BattleEnded("b1"),
			wantCode: codes.FailedPrecondition,
			wantMsg:  "[BATTLE_ENDED] battle b1 has ended",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.mockTurn.EXPECT().RegisterMove(s.ctx, gomock.Any()).Return(nil, tc.err)

			_, err := s.handler.SubmitMove(s.ctx, s.request(map[string]any{
				"battle_id": "b1",
				"actor_id":  "1",
				"strategy":  "exchange",
				"payload":   map[string]any{"target_id": "2"},
			}))
			st, ok := status.FromError(err)
			s.Require().True(ok)
			s.Equal(tc.wantCode, st.Code())
			s.Equal(tc.wantMsg, st.Message())
		})
	}
}

func (s *HandlerTestSuite) TestSubmitMoveRejectsMalformedActorID() {
	_, err := s.handler.SubmitMove(s.ctx, s.request(map[string]any{
		"battle_id": "b1",
		"actor_id":  map[string]any{"id": 1},
	}))
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlerTestSuite) TestBattleViewDefaultsToSnapshot() {
	duel := testutils.CreateTestDuel()
	s.mockTurn.EXPECT().
		GetBattleView(s.ctx, &turn.GetBattleViewInput{BattleID: "b1", View: turn.ViewSnapshot}).
		Return(&turn.GetBattleViewOutput{
			Meta:   duel.Meta,
			Actors: []combat.PublicActor{duel.Actors[0].Public(), duel.Actors[1].Public()},
			Page:   1,
		}, nil)

	resp, err := s.handler.BattleView(s.ctx, s.request(map[string]any{"battle_id": "b1"}))
	s.Require().NoError(err)

	var view v1alpha1.BattleViewResponse
	s.Require().NoError(v1alpha1.Decode(resp, &view))
	s.Equal(testutils.TestBattleID, view.Meta.BattleID)
	s.Require().Len(view.Actors, 2)
	s.Equal(100, view.Actors[0].HP)
	s.True(view.Actors[1].IsAlive)
	s.Nil(view.FinishedAt)
}

func (s *HandlerTestSuite) TestBattleViewHistory() {
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := testutils.CreateTestDuel().Meta
	meta.Active = false
	meta.Winner = testutils.TeamBlue

	s.mockTurn.EXPECT().
		GetBattleView(s.ctx, &turn.GetBattleViewInput{BattleID: "b1", View: turn.ViewHistory, Page: 2}).
		Return(&turn.GetBattleViewOutput{
			Entries: []*combat.LogEntry{{ActionID: "mv_51", ActionType: combat.ActionExchange}},
			Total:   51,
			Page:    2,
			Summary: &archive.Summary{Meta: meta, FinishedAt: finished},
		}, nil)

	resp, err := s.handler.BattleView(s.ctx, s.request(map[string]any{"battle_id": "b1", "view": "history", "page": 2}))
	s.Require().NoError(err)

	var view v1alpha1.BattleViewResponse
	s.Require().NoError(v1alpha1.Decode(resp, &view))
	s.Equal(testutils.TeamBlue, view.Meta.Winner)
	s.Equal(51, view.Total)
	s.Equal(2, view.Page)
	s.Require().Len(view.Entries, 1)
	s.Equal("mv_51", view.Entries[0].ActionID)
	s.Require().NotNil(view.FinishedAt)
	s.True(finished.Equal(*view.FinishedAt))
}

func (s *HandlerTestSuite) TestCreateBattle() {
	duel := testutils.CreateTestBotDuel()
	req, err := v1alpha1.Encode(&v1alpha1.CreateBattleRequest{
		Meta:    duel.Meta,
		Actors:  duel.Actors,
		Targets: map[string][]string{"2": {"1"}},
	})
	s.Require().NoError(err)

	s.mockTurn.EXPECT().
		CreateBattle(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *turn.CreateBattleInput) (*turn.CreateBattleOutput, error) {
			s.Equal(duel.Meta.Teams, in.Meta.Teams)
			s.True(in.Meta.IsAI("2"))
			s.Require().Len(in.Actors, 2)
			s.Equal("striker", in.Actors[1].Role)
			s.Equal([]string{"1"}, in.Targets["2"])
			return &turn.CreateBattleOutput{BattleID: in.Meta.BattleID}, nil
		})

	resp, err := s.handler.CreateBattle(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(testutils.TestBattleID, resp.GetFields()["battle_id"].GetStringValue())
}

// TestServiceOverGRPC drives the hand-written service descriptor through a
// real server and client.
func (s *HandlerTestSuite) TestServiceOverGRPC() {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	v1alpha1.RegisterCombatServiceServer(srv, s.handler)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()
	client := v1alpha1.NewCombatServiceClient(conn)

	s.mockTurn.EXPECT().
		RegisterMove(gomock.Any(), gomock.Any()).
		Return(&turn.RegisterMoveOutput{MoveID: "mv_7", Created: true}, nil)
	req, err := v1alpha1.Encode(&v1alpha1.SubmitMoveRequest{
		BattleID: "b1",
		ActorID:  "1",
		Strategy: "item",
		Payload:  combat.PayloadInput{ItemID: "potion"},
	})
	s.Require().NoError(err)

	resp, err := client.SubmitMove(s.ctx, req)
	s.Require().NoError(err)
	var out v1alpha1.SubmitMoveResponse
	s.Require().NoError(v1alpha1.Decode(resp, &out))
	s.Equal("mv_7", out.MoveID)

	s.mockTurn.EXPECT().
		GetBattleView(gomock.Any(), gomock.Any()).
		Return(nil, errors.InvalidBattle("b9"))
	_, err = client.BattleView(s.ctx, s.request(map[string]any{"battle_id": "b9", "view": "log"}))
	s.Require().Error(err)

	converted := errors.FromGRPCError(err)
	s.True(errors.IsNotFound(converted))
	s.True(errors.HasReason(converted, errors.ReasonInvalidBattle))
	s.Equal("b9", errors.GetMeta(converted)["battle_id"])
}
