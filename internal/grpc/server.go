// Package grpc exposes task generation as the marith.Worksheet gRPC service.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"marith/internal/models"
	"marith/internal/params"
	"marith/internal/task"
)

const (
	serviceName    = "marith.Worksheet"
	generateMethod = "/" + serviceName + "/Generate"
)

// WorksheetService is the server side of marith.Worksheet.
type WorksheetService interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.TasksResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*WorksheetService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marith/worksheet",
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(models.GenerateRequest)
	if err := dec(in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid generate request: %v", err)
	}
	if interceptor == nil {
		return srv.(WorksheetService).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: generateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorksheetService).Generate(ctx, req.(*models.GenerateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// WorksheetServer generates tasks for remote callers.
type WorksheetServer struct {
	defaults task.Config
	log      *slog.Logger
}

func NewWorksheetServer(defaults task.Config, logger *slog.Logger) *WorksheetServer {
	return &WorksheetServer{defaults: defaults, log: logger}
}

// Generate replaces a missing or invalid configuration with the defaults.
func (s *WorksheetServer) Generate(ctx context.Context, req *models.GenerateRequest) (*models.TasksResponse, error) {
	cfg := s.defaults
	if req.Config != nil {
		cfg = params.Sanitize(*req.Config, s.defaults)
	}

	var gen *task.Generator
	if req.Seed != nil {
		gen = task.NewSeededGenerator(*req.Seed)
	} else {
		gen = task.NewSeededGenerator(uint64(time.Now().UnixNano()))
	}

	tasks := gen.Tasks(cfg)
	s.log.Info("generated tasks", "count", len(tasks), "variables", cfg.VariableCount)

	return &models.TasksResponse{Config: cfg, Tasks: tasks}, nil
}

// NewServer returns a gRPC server with the worksheet service registered.
func NewServer(defaults task.Config, logger *slog.Logger) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.MaxRecvMsgSize(16 * 1024 * 1024), // 16MB
		grpc.MaxSendMsgSize(16 * 1024 * 1024), // 16MB
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s := grpc.NewServer(opts...)
	s.RegisterService(&serviceDesc, NewWorksheetServer(defaults, logger))
	return s
}

// StartServer listens on address and serves until the server stops.
func StartServer(address string, s *grpc.Server, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	logger.Info("gRPC server started", "addr", lis.Addr().String())
	return s.Serve(lis)
}
