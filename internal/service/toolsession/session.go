// Package toolsession opens an MCP tool session on a helper process and
// exposes its tools to the agent loop.
package toolsession

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zhouzirui/dossier-agent/backend/internal/config"
	"github.com/zhouzirui/dossier-agent/backend/internal/redact"
)

// ClientName and ClientVersion identify us during the MCP handshake.
const (
	ClientName    = "dossier-agent"
	ClientVersion = "v1.0.0"
)

// Session is one initialized MCP client session. Tools loaded from it are
// only valid until Close.
type Session struct {
	cs *mcp.ClientSession
}

// CommandTransport builds a stdio transport that launches the crawling helper
// with the configured command, args and credential.
func CommandTransport(cfg config.CrawlConfig) mcp.Transport {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = cfg.Env()

	log.Printf("[toolsession] launching helper: %s %s env=%v",
		cfg.Command,
		redact.Secrets(strings.Join(cfg.Args, " "), cfg.APIKey),
		redact.Env(cmd.Env),
	)

	return &mcp.CommandTransport{Command: cmd}
}

// Open connects over transport and performs the initialize handshake. A
// helper that fails to start or speaks an incompatible protocol version
// surfaces here.
func Open(ctx context.Context, transport mcp.Transport) (*Session, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: ClientName, Version: ClientVersion}, nil)

	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open tool session: %w", err)
	}

	s := &Session{cs: cs}
	log.Printf("[toolsession] connected to %s", s.ServerName())
	return s, nil
}

// ServerName reports the server implementation name from the handshake.
func (s *Session) ServerName() string {
	if s == nil || s.cs == nil {
		return ""
	}
	res := s.cs.InitializeResult()
	if res == nil || res.ServerInfo == nil {
		return "unknown"
	}
	return res.ServerInfo.Name
}

// Close ends the session and stops the helper process.
func (s *Session) Close() error {
	if s == nil || s.cs == nil {
		return nil
	}
	if err := s.cs.Close(); err != nil {
		return fmt.Errorf("failed to close tool session: %w", err)
	}
	return nil
}
