package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// SimulationServiceName is the fully qualified gRPC service name
const SimulationServiceName = "jobshop.v1.SimulationService"

// Method names of the simulation service
const (
	MethodCreateSession = "CreateSession"
	MethodReset         = "Reset"
	MethodStep          = "Step"
	MethodSetGoal       = "SetGoal"
	MethodSnapshot      = "Snapshot"
	MethodListSessions  = "ListSessions"
	MethodCloseSession  = "CloseSession"
)

// SimulationServiceServer is the server side of jobshop.v1.SimulationService.
// Every request and response is a google.protobuf.Struct.
type SimulationServiceServer interface {
	CreateSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Reset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Step(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListSessions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(srv SimulationServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func structHandler(method string, call structCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SimulationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func fullMethod(method string) string {
	return "/" + SimulationServiceName + "/" + method
}

// SimulationServiceDesc describes the service for grpc.Server.RegisterService
var SimulationServiceDesc = grpc.ServiceDesc{
	ServiceName: SimulationServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateSession, Handler: structHandler(MethodCreateSession, SimulationServiceServer.CreateSession)},
		{MethodName: MethodReset, Handler: structHandler(MethodReset, SimulationServiceServer.Reset)},
		{MethodName: MethodStep, Handler: structHandler(MethodStep, SimulationServiceServer.Step)},
		{MethodName: MethodSetGoal, Handler: structHandler(MethodSetGoal, SimulationServiceServer.SetGoal)},
		{MethodName: MethodSnapshot, Handler: structHandler(MethodSnapshot, SimulationServiceServer.Snapshot)},
		{MethodName: MethodListSessions, Handler: structHandler(MethodListSessions, SimulationServiceServer.ListSessions)},
		{MethodName: MethodCloseSession, Handler: structHandler(MethodCloseSession, SimulationServiceServer.CloseSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobshop/v1/simulation.proto",
}

// RegisterSimulationServiceServer registers the service implementation
func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&SimulationServiceDesc, srv)
}
