package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the combat service
const ServiceName = "rpgcombat.v1alpha1.CombatService"

// Full method names of the combat service
const (
	CombatService_SubmitMove_FullMethodName   = "/" + ServiceName + "/SubmitMove"
	CombatService_BattleView_FullMethodName   = "/" + ServiceName + "/BattleView"
	CombatService_CreateBattle_FullMethodName = "/" + ServiceName + "/CreateBattle"
)

// CombatServiceServer is the server API of the combat service. Messages are
// structpb.Struct documents shaped like the request and response types of
// this package.
type CombatServiceServer interface {
	SubmitMove(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BattleView(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCombatServiceServer registers srv on s
func RegisterCombatServiceServer(s grpc.ServiceRegistrar, srv CombatServiceServer) {
	s.RegisterService(&CombatService_ServiceDesc, srv)
}

type unaryCall func(CombatServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CombatServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CombatServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CombatService_ServiceDesc is the grpc.ServiceDesc of the combat service
var CombatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CombatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitMove",
			Handler:    unaryHandler(CombatService_SubmitMove_FullMethodName, CombatServiceServer.SubmitMove),
		},
		{
			MethodName: "BattleView",
			Handler:    unaryHandler(CombatService_BattleView_FullMethodName, CombatServiceServer.BattleView),
		},
		{
			MethodName: "CreateBattle",
			Handler:    unaryHandler(CombatService_CreateBattle_FullMethodName, CombatServiceServer.CreateBattle),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// CombatServiceClient is the client API of the combat service
type CombatServiceClient interface {
	SubmitMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	BattleView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type combatServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCombatServiceClient creates a client on cc
func NewCombatServiceClient(cc grpc.ClientConnInterface) CombatServiceClient {
	return &combatServiceClient{cc: cc}
}

func (c *combatServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *combatServiceClient) SubmitMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CombatService_SubmitMove_FullMethodName, in, opts)
}

func (c *combatServiceClient) BattleView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CombatService_BattleView_FullMethodName, in, opts)
}

func (c *combatServiceClient) CreateBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CombatService_CreateBattle_FullMethodName, in, opts)
}
