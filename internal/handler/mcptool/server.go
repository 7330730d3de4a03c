// Package mcptool publishes dossier generation as an MCP tool so other
// agents can request dossiers.
package mcptool

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	model "github.com/zhouzirui/dossier-agent/backend/internal/model/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
)

const (
	ServerName    = "Dossier Agent MCP"
	ServerVersion = "1.0.0"
	ToolName      = "generate_dossier"
)

// Generator runs the dossier pipeline.
type Generator interface {
	Generate(ctx context.Context, clientName string, observer toolsession.Observer) (*model.Dossier, error)
}

// Handler adapts a Generator to MCP tool calls.
type Handler struct {
	gen Generator
}

// NewHandler wraps gen.
func NewHandler(gen Generator) *Handler {
	return &Handler{gen: gen}
}

// NewServer registers the generate_dossier tool on a fresh MCP server.
func NewServer(h *Handler) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))

	generateTool := mcp.NewTool(ToolName,
		mcp.WithDescription("Research a client on the web and return a markdown dossier with background, relations, news, opportunities, risks and recommendations."),
		mcp.WithString("client_name",
			mcp.Required(),
			mcp.Description("Client or customer name, e.g. 'Acme Corp'"),
		),
	)
	s.AddTool(generateTool, h.HandleGenerate)

	log.Printf("[mcp] server initialized with tool %s", ToolName)
	return s
}

// HandleGenerate answers one generate_dossier call. Failures are reported
// as tool errors, not protocol errors.
func (h *Handler) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientName := strings.TrimSpace(req.GetString("client_name", ""))
	if clientName == "" {
		return mcp.NewToolResultError("client_name parameter is required"), nil
	}

	result, err := h.gen.Generate(ctx, clientName, nil)
	if err != nil {
		log.Printf("[mcp] client=%q generation failed: %v", clientName, err)
		return mcp.NewToolResultError(fmt.Sprintf("dossier generation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(result.Markdown), nil
}
