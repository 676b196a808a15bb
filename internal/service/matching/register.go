package matching

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/mockmatch/internal/app"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mockmatch.v1.MatchService"

// MatchServiceServer is the server API of MatchService. Every method takes
// and returns a google.protobuf.Struct.
type MatchServiceServer interface {
	GetPotentialMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Like(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Dislike(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAcceptedMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAcceptedMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDailyQuotaStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAchievement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordInterviewFeedback(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GrantBonus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MatchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatchServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes MatchService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("GetPotentialMatches", MatchServiceServer.GetPotentialMatches),
		method("Like", MatchServiceServer.Like),
		method("Dislike", MatchServiceServer.Dislike),
		method("GetAcceptedMatches", MatchServiceServer.GetAcceptedMatches),
		method("ListAcceptedMatches", MatchServiceServer.ListAcceptedMatches),
		method("GetDailyQuotaStatus", MatchServiceServer.GetDailyQuotaStatus),
		method("GetAchievement", MatchServiceServer.GetAchievement),
		method("RecordInterviewFeedback", MatchServiceServer.RecordInterviewFeedback),
		method("GrantBonus", MatchServiceServer.GrantBonus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mockmatch/v1/match.proto",
}

// Registrar ties the Match service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Match service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&ServiceDesc, NewMatchService(r.appCtx))
}

// Client calls MatchService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req as the request struct.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
