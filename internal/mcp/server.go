// Package mcp exposes read-only incarnation tools to agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSearchLimit = 50

// Server wraps the MCP server and the service credential it queries foxops with.
type Server struct {
	api          port.IncarnationAPI
	incarnations *service.IncarnationService
	audit        middleware.AuditWriter
	port         string
	mcp          *sdkmcp.Server
}

// NewServer creates the MCP server and registers its tools.
func NewServer(api port.IncarnationAPI, incarnations *service.IncarnationService, audit middleware.AuditWriter, port, version string) *Server {
	s := &Server{
		api:          api,
		incarnations: incarnations,
		audit:        audit,
		port:         port,
	}
	s.mcp = sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "foxops-dashboard",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: "Read-only access to foxops incarnations: search the list, read one record, inspect its template diff.",
	})
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *sdkmcp.Server {
	return s.mcp
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return s.mcp },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)
}

// Start begins the MCP server on the configured port.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.Handler())
	mux.Handle("/mcp/", s.Handler())

	slog.Info("MCP server starting", "port", s.port)
	return http.ListenAndServe(":"+s.port, mux)
}

// SearchInput is the argument of search_incarnations.
type SearchInput struct {
	Search string `json:"search,omitempty" jsonschema:"substring or regular expression to look for"`
	Sort   string `json:"sort,omitempty" jsonschema:"column to sort by, e.g. id, revision or template_version"`
	Asc    *bool  `json:"asc,omitempty" jsonschema:"sort ascending, default true"`
	Broad  bool   `json:"broad,omitempty" jsonschema:"search every column instead of id, repository and directory"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 50"`
}

// IDInput names one incarnation.
type IDInput struct {
	ID int `json:"id" jsonschema:"incarnation id"`
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.mcp, &sdkmcp.Tool{
		Name:        "search_incarnations",
		Description: "Search and sort the foxops incarnation list",
	}, s.searchIncarnations)

	sdkmcp.AddTool(s.mcp, &sdkmcp.Tool{
		Name:        "get_incarnation",
		Description: "Get the detailed record of one incarnation",
	}, s.getIncarnation)

	sdkmcp.AddTool(s.mcp, &sdkmcp.Tool{
		Name:        "get_incarnation_diff",
		Description: "Get the diff between an incarnation and a fresh rendering of its template",
	}, s.getIncarnationDiff)
}

func (s *Server) searchIncarnations(ctx context.Context, req *sdkmcp.CallToolRequest, in SearchInput) (*sdkmcp.CallToolResult, any, error) {
	s.record("search_incarnations", in)

	asc := true
	if in.Asc != nil {
		asc = *in.Asc
	}

	limit := in.Limit
	if limit < 1 {
		limit = defaultSearchLimit
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}

	res, err := s.incarnations.List(ctx, s.api, service.ListQuery{
		Search:  in.Search,
		Sort:    in.Sort,
		Asc:     asc,
		Page:    1,
		PerPage: limit,
		Broad:   in.Broad,
	})
	if err != nil {
		return toolError(err), nil, nil
	}
	return jsonResult(res)
}

func (s *Server) getIncarnation(ctx context.Context, req *sdkmcp.CallToolRequest, in IDInput) (*sdkmcp.CallToolResult, any, error) {
	s.record("get_incarnation", in)

	inc, err := s.incarnations.Get(ctx, s.api, in.ID)
	if err != nil {
		return toolError(err), nil, nil
	}
	return jsonResult(inc)
}

func (s *Server) getIncarnationDiff(ctx context.Context, req *sdkmcp.CallToolRequest, in IDInput) (*sdkmcp.CallToolResult, any, error) {
	s.record("get_incarnation_diff", in)

	diff, err := s.incarnations.Diff(ctx, s.api, in.ID)
	if err != nil {
		return toolError(err), nil, nil
	}
	return jsonResult(diff)
}

func (s *Server) record(tool string, in any) {
	details, _ := json.Marshal(in)
	middleware.Audit(s.audit, "mcp", domain.AuditActionMCPCall, "tool", tool, string(details), "", "")
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
	}
}
