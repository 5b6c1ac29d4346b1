// Package mcpserver exposes a critpath database to coding agents over the
// Model Context Protocol. Agents list projects, read schedules, add tasks
// and propose dependencies; every edge goes through the same gate and
// per-project serialization as the command line, so concurrent agents can
// never jointly close a cycle.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papapumpkin/critpath/internal/store"
	"github.com/papapumpkin/critpath/internal/telemetry"
)

// Version is the server version reported during the MCP handshake.
const Version = "0.1.0"

// Server is the critpath MCP server. It serves whichever transport Run is
// given; the command line uses stdio.
type Server struct {
	store  *store.Store
	events *telemetry.Emitter
	mcp    *mcp.Server
}

// NewServer registers the critpath tools against st. events may be nil.
func NewServer(st *store.Store, events *telemetry.Emitter) *Server {
	s := &Server{
		store:  st,
		events: events,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "critpath",
				Version: Version,
			},
			nil,
		),
	}
	s.registerProjectTools()
	s.registerDependencyTools()
	return s
}

// Run serves MCP requests on t until the client disconnects or ctx is
// canceled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}

// emit records an event. Telemetry failures never fail a tool call.
func (s *Server) emit(evt telemetry.Event) {
	_ = s.events.Emit(evt)
}
