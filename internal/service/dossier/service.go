package dossier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/zhouzirui/dossier-agent/backend/internal/config"
	model "github.com/zhouzirui/dossier-agent/backend/internal/model/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/ai"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
)

var ErrEmptyClientName = errors.New("client name is required")

// ToolSession is an initialized tool channel owned by a single run.
type ToolSession interface {
	LoadTools(ctx context.Context, observer toolsession.Observer) ([]tool.BaseTool, error)
	ServerName() string
	Close() error
}

// Opener starts a tool session and completes its handshake.
type Opener func(ctx context.Context) (ToolSession, error)

// Runner executes the reasoning loop once.
type Runner interface {
	Run(ctx context.Context, tools []tool.BaseTool, messages []*schema.Message) (*schema.Message, error)
}

// CrawlOpener launches the configured crawling helper for every run.
func CrawlOpener(cfg config.CrawlConfig) Opener {
	return func(ctx context.Context) (ToolSession, error) {
		session, err := toolsession.Open(ctx, toolsession.CommandTransport(cfg))
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// Service runs the dossier pipeline: prompt, tool session, agent loop, text.
type Service struct {
	open   Opener
	runner Runner
}

// NewService wires the pipeline stages.
func NewService(open Opener, runner Runner) *Service {
	return &Service{open: open, runner: runner}
}

// NewFromConfig builds the production pipeline: Ark model, ReAct loop and
// the crawling helper as tool server.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	if cfg.Crawl.APIKey == "" {
		log.Println("[dossier] FIRECRAWL_API_KEY is empty, the crawl helper will likely reject requests")
	}
	return NewService(CrawlOpener(cfg.Crawl), ai.NewAgentRunner(chatModel, cfg.AI.MaxStep)), nil
}

// Generate produces a dossier for clientName. A blank name does nothing and
// returns ErrEmptyClientName. Every run gets its own session, closed on all paths.
func (s *Service) Generate(ctx context.Context, clientName string, observer toolsession.Observer) (*model.Dossier, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, ErrEmptyClientName
	}

	runID := uuid.NewString()
	started := time.Now()
	messages := ai.BuildMessages(clientName)

	session, err := s.open(ctx)
	if err != nil {
		log.Printf("[dossier] run=%s open session failed: %v", runID, err)
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("[dossier] run=%s close session: %v", runID, err)
		}
	}()

	tools, err := session.LoadTools(ctx, observer)
	if err != nil {
		log.Printf("[dossier] run=%s load tools failed: %v", runID, err)
		return nil, err
	}

	toolNames := make([]string, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read tool info: %w", err)
		}
		toolNames = append(toolNames, info.Name)
	}
	log.Printf("[dossier] run=%s client=%q server=%s tools=%d", runID, clientName, session.ServerName(), len(toolNames))

	final, err := s.runner.Run(ctx, tools, messages)
	if err != nil {
		log.Printf("[dossier] run=%s agent failed: %v", runID, err)
		return nil, err
	}

	result := &model.Dossier{
		RunID:      runID,
		ClientName: clientName,
		Markdown:   ai.FinalText(final),
		Tools:      toolNames,
		Duration:   time.Since(started),
		CreatedAt:  started.UTC(),
	}

	log.Printf("[dossier] run=%s completed in %s, length=%d", runID, result.Duration.Round(time.Millisecond), len(result.Markdown))
	return result, nil
}
