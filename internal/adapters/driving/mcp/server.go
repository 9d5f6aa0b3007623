package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veilchat/recall/internal/logger"
)

// Version is the implementation version advertised to MCP clients.
const Version = "0.1.0"

// shutdownGrace bounds how long in-flight HTTP requests may drain
// after the serving context is cancelled.
const shutdownGrace = 5 * time.Second

// Server exposes the tool registry and index resources over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer wires a Server from its ports. Every registered tool and
// resource is derived from the registry, so the capability surface
// stays identical across transports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "recall",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr. Cancelling the
// context drains in-flight requests for up to shutdownGrace before
// returning.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	logger.Info("Serving MCP on http://%s", addr)

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
