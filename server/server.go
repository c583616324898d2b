// Package server exposes the router as a Model Context Protocol server
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/bububa/stockcritique/mcp"
)

// Version is the MCP server version
const Version = "0.1.0"

// Handler answers a raw query, orchestration.Router implements it
type Handler interface {
	HandleQuery(ctx context.Context, rawQuery string, source mcp.Source) (*mcp.Response, error)
}

type Server struct {
	handler Handler
	server  *sdkmcp.Server
	logger  *zap.Logger
}

func New(handler Handler, logger *zap.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("server: nil query handler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Server{
		handler: handler,
		logger:  logger,
		server: sdkmcp.NewServer(&sdkmcp.Implementation{
			Name:    "stockcritique",
			Version: Version,
		}, nil),
	}
	ret.registerTools()
	return ret, nil
}

// Run serves over stdio until ctx is done
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdkmcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(_ *http.Request) *sdkmcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is done
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("mcp http shutdown", zap.Error(err))
		}
	}()
	s.logger.Info("mcp http listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
