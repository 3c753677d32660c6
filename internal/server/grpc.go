package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/text"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
)

const (
	ExtractionServiceName = "foreclosure.v1.ExtractionService"
	extractPagesMethod    = "/" + ExtractionServiceName + "/ExtractPages"
)

// ExtractionServer is the server API of foreclosure.v1.ExtractionService.
// Messages are google.protobuf.Struct so the service needs no generated code.
type ExtractionServer interface {
	ExtractPages(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractionServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ExtractPages",
			Handler:    extractPagesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foreclosure/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

func extractPagesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServer).ExtractPages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: extractPagesMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ExtractionServer).ExtractPages(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ExtractionClient calls foreclosure.v1.ExtractionService.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) ExtractPages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, extractPagesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractionService runs the pipeline over page texts sent by gRPC clients.
type ExtractionService struct {
	proc   *core.Processor
	logger *slog.Logger
}

func NewExtractionService(proc *core.Processor, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{proc: proc, logger: logger}
}

// ExtractPages expects {pages: [string|null, ...]} and answers with
// {run_id, summary, records}.
func (s *ExtractionService) ExtractPages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pages, err := pagesFromStruct(req)
	if err != nil {
		s.logger.Warn("grpc.extract.bad_request", "error", err)
		return nil, err
	}

	res, err := s.proc.Process(ctx, text.PagesFromStrings(pages))
	if err != nil {
		if me, ok := core.IsMisaligned(err); ok {
			return nil, common.FailedPreconditionError(me.Error())
		}
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		s.logger.Error("grpc.extract.failed", "error", err)
		return nil, common.InternalError("extraction failed")
	}

	out, err := documentStruct(export.NewDocument(res))
	if err != nil {
		s.logger.Error("grpc.extract.encode_failed", "run_id", res.RunID, "error", err)
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func pagesFromStruct(req *structpb.Struct) ([]*string, error) {
	v, ok := req.GetFields()["pages"]
	if !ok {
		return nil, common.InvalidArgumentError("pages is required")
	}
	list := v.GetListValue()
	if list == nil {
		return nil, common.InvalidArgumentError("pages must be a list")
	}
	pages := make([]*string, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		switch kind := item.GetKind().(type) {
		case *structpb.Value_NullValue:
			pages = append(pages, nil)
		case *structpb.Value_StringValue:
			s := kind.StringValue
			pages = append(pages, &s)
		default:
			return nil, common.InvalidArgumentErrorf("pages[%d] must be a string or null", i)
		}
	}
	return pages, nil
}

func documentStruct(doc export.Document) (*structpb.Struct, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// loggingInterceptor logs every unary call with its status code.
func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer builds a server with the extraction and health services registered.
func NewGRPCServer(proc *core.Processor, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ExtractionServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterExtractionServer(gs, NewExtractionService(proc, logger))
	return gs, hs
}
