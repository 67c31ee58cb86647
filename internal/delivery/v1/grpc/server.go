package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	server *grpc.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	return &GRPCServer{
		server: grpc.NewServer(),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *GRPCServer) RegisterServices(itemUC usecase.ItemUC, searchUC usecase.SearchUC) {
	RegisterSearchServiceServer(s.server, NewSearchService(itemUC, searchUC, s.logger))
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

// Serve обслуживает запросы на готовом listener.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Infof("gRPC server listening on %s", lis.Addr())
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
