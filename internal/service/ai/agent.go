package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
)

// AgentRunner drives one ReAct loop per call: model turns and tool calls
// alternate until the model answers without requesting a tool.
type AgentRunner struct {
	chatModel model.ToolCallingChatModel
	maxStep   int
}

// NewAgentRunner wraps chatModel. maxStep <= 0 keeps the loop library's default cap.
func NewAgentRunner(chatModel model.ToolCallingChatModel, maxStep int) *AgentRunner {
	return &AgentRunner{chatModel: chatModel, maxStep: maxStep}
}

// Run executes the loop to completion and returns the final message.
func (r *AgentRunner) Run(ctx context.Context, tools []tool.BaseTool, messages []*schema.Message) (*schema.Message, error) {
	if len(tools) == 0 {
		// Nothing to bind; ask the model directly.
		log.Printf("[agent] no tools available, querying model directly")
		response, err := r.chatModel.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("failed to generate response: %w", err)
		}
		return response, nil
	}

	cfg := &react.AgentConfig{
		ToolCallingModel: r.chatModel,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: tools},
	}
	if r.maxStep > 0 {
		cfg.MaxStep = r.maxStep
	}

	agent, err := react.NewAgent(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent: %w", err)
	}

	response, err := agent.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to run agent: %w", err)
	}
	return response, nil
}

// FinalText pulls the displayable text out of the loop's last message. When
// the message carries no text at all its string form is returned instead.
func FinalText(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Content != "" {
		return msg.Content
	}

	var parts []string
	for _, part := range msg.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText && part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	return msg.String()
}
