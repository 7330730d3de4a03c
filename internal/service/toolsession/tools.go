package toolsession

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolErrorPrefix marks results the server flagged as failed. The model sees
// them as ordinary output so it can retry or change course.
const toolErrorPrefix = "tool error: "

// Phase is the stage of a single tool invocation.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
)

// ToolEvent describes one tool invocation as seen by the agent loop.
type ToolEvent struct {
	Name      string
	Arguments string
	Phase     Phase
	Err       error
}

// Observer receives tool events. It is called synchronously from the loop.
type Observer func(ToolEvent)

// LoadTools lists every tool the session offers and wraps each one as an
// eino InvokableTool. An empty list is not an error.
func (s *Session) LoadTools(ctx context.Context, observer Observer) ([]tool.BaseTool, error) {
	var defs []*mcp.Tool
	params := &mcp.ListToolsParams{}
	for {
		res, err := s.cs.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		defs = append(defs, res.Tools...)
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}

	tools := make([]tool.BaseTool, 0, len(defs))
	for _, def := range defs {
		info, err := toToolInfo(def)
		if err != nil {
			return nil, err
		}
		tools = append(tools, &mcpTool{cs: s.cs, def: def, info: info, observer: observer})
	}

	if len(tools) == 0 {
		log.Printf("[toolsession] server %s offers no tools", s.ServerName())
	} else {
		log.Printf("[toolsession] loaded %d tools from %s", len(tools), s.ServerName())
	}
	return tools, nil
}

func toToolInfo(def *mcp.Tool) (*schema.ToolInfo, error) {
	info := &schema.ToolInfo{Name: def.Name, Desc: def.Description}
	if info.Desc == "" {
		info.Desc = def.Title
	}
	if def.InputSchema == nil {
		return info, nil
	}

	raw, err := sonic.Marshal(def.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input schema of %s: %w", def.Name, err)
	}
	inputSchema := &jsonschema.Schema{}
	if err := sonic.Unmarshal(raw, inputSchema); err != nil {
		return nil, fmt.Errorf("failed to decode input schema of %s: %w", def.Name, err)
	}
	info.ParamsOneOf = schema.NewParamsOneOfByJSONSchema(inputSchema)
	return info, nil
}

type mcpTool struct {
	cs       *mcp.ClientSession
	def      *mcp.Tool
	info     *schema.ToolInfo
	observer Observer
}

func (t *mcpTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *mcpTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args := map[string]any{}
	if strings.TrimSpace(argumentsInJSON) != "" {
		if err := sonic.UnmarshalString(argumentsInJSON, &args); err != nil {
			return "", fmt.Errorf("failed to decode arguments for %s: %w", t.def.Name, err)
		}
	}

	t.notify(ToolEvent{Name: t.def.Name, Arguments: argumentsInJSON, Phase: PhaseStart})

	res, err := t.cs.CallTool(ctx, &mcp.CallToolParams{Name: t.def.Name, Arguments: args})
	if err != nil {
		err = fmt.Errorf("failed to call tool %s: %w", t.def.Name, err)
		t.notify(ToolEvent{Name: t.def.Name, Arguments: argumentsInJSON, Phase: PhaseEnd, Err: err})
		return "", err
	}

	text, err := resultText(res)
	if err != nil {
		t.notify(ToolEvent{Name: t.def.Name, Arguments: argumentsInJSON, Phase: PhaseEnd, Err: err})
		return "", err
	}
	if res.IsError {
		log.Printf("[toolsession] tool %s reported an error", t.def.Name)
		text = toolErrorPrefix + text
	}

	t.notify(ToolEvent{Name: t.def.Name, Arguments: argumentsInJSON, Phase: PhaseEnd})
	return text, nil
}

func (t *mcpTool) notify(ev ToolEvent) {
	if t.observer != nil {
		t.observer(ev)
	}
}

// resultText flattens a tool result for the model: text parts verbatim,
// anything else as JSON.
func resultText(res *mcp.CallToolResult) (string, error) {
	if len(res.Content) == 0 && res.StructuredContent != nil {
		return sonic.MarshalString(res.StructuredContent)
	}

	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
			continue
		}
		encoded, err := sonic.MarshalString(content)
		if err != nil {
			return "", fmt.Errorf("failed to encode tool content: %w", err)
		}
		parts = append(parts, encoded)
	}
	return strings.Join(parts, "\n"), nil
}
