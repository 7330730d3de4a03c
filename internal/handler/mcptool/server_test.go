package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	model "github.com/zhouzirui/dossier-agent/backend/internal/model/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
)

type fakeGenerator struct {
	calls  []string
	result *model.Dossier
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, clientName string, _ toolsession.Observer) (*model.Dossier, error) {
	f.calls = append(f.calls, clientName)
	return f.result, f.err
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", c)
		return ""
	}
}

func TestHandleGenerateReturnsMarkdown(t *testing.T) {
	gen := &fakeGenerator{result: &model.Dossier{Markdown: "# 📑 Client Dossier: Acme Corp"}}

	res, err := NewHandler(gen).HandleGenerate(context.Background(), callRequest(map[string]any{"client_name": "Acme Corp"}))
	if err != nil {
		t.Fatalf("HandleGenerate err: %v", err)
	}
	if res.IsError {
		t.Fatal("expected success result")
	}
	if got := resultText(t, res); got != "# 📑 Client Dossier: Acme Corp" {
		t.Fatalf("unexpected text: %q", got)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "Acme Corp" {
		t.Fatalf("unexpected calls: %v", gen.calls)
	}
}

func TestHandleGenerateRequiresClientName(t *testing.T) {
	gen := &fakeGenerator{}

	res, err := NewHandler(gen).HandleGenerate(context.Background(), callRequest(map[string]any{"client_name": " "}))
	if err != nil {
		t.Fatalf("HandleGenerate err: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for empty client name")
	}
	if len(gen.calls) != 0 {
		t.Fatal("expected pipeline not to run")
	}
}

func TestHandleGenerateReportsFailureAsToolError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}

	res, err := NewHandler(gen).HandleGenerate(context.Background(), callRequest(map[string]any{"client_name": "Acme Corp"}))
	if err != nil {
		t.Fatalf("expected no protocol error, got %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "model unavailable") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNewServerListsTool(t *testing.T) {
	s := NewServer(NewHandler(&fakeGenerator{}))

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if !strings.Contains(string(raw), ToolName) || !strings.Contains(string(raw), "client_name") {
		t.Fatalf("expected %s in tools/list, got %s", ToolName, raw)
	}
}
