package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL", "Model",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "AGENT_MAX_STEP",
		"FIRECRAWL_API_KEY", "CRAWL_MCP_COMMAND", "CRAWL_MCP_ARGS",
		"RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Server.Addr)
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.1 {
		t.Fatalf("expected default temperature 0.1, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxStep != 0 {
		t.Fatalf("expected no max step override, got %d", cfg.AI.MaxStep)
	}
	if cfg.AI.Enabled() {
		t.Fatal("expected AI to be disabled without credentials")
	}
	if cfg.Crawl.Command != "npx" {
		t.Fatalf("expected npx, got %s", cfg.Crawl.Command)
	}
	if len(cfg.Crawl.Args) != 1 || cfg.Crawl.Args[0] != "firecrawl-mcp" {
		t.Fatalf("unexpected crawl args: %v", cfg.Crawl.Args)
	}
	if !cfg.RateLimit.Enabled() || cfg.RateLimit.Burst != 2 {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("Model", "doubao-pro")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("AGENT_MAX_STEP", "20")
	t.Setenv("CRAWL_MCP_COMMAND", "node")
	t.Setenv("CRAWL_MCP_ARGS", "  /opt/firecrawl/dist/index.js   --stdio ")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("expected AI enabled with api key and legacy Model variable")
	}
	if cfg.AI.Model != "doubao-pro" {
		t.Fatalf("expected model fallback to Model, got %s", cfg.AI.Model)
	}
	if *cfg.AI.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %f", *cfg.AI.Temperature)
	}
	if cfg.AI.MaxStep != 20 {
		t.Fatalf("expected max step 20, got %d", cfg.AI.MaxStep)
	}
	if strings.Join(cfg.Crawl.Args, ",") != "/opt/firecrawl/dist/index.js,--stdio" {
		t.Fatalf("unexpected crawl args: %v", cfg.Crawl.Args)
	}
	if cfg.RateLimit.Enabled() {
		t.Fatal("expected rate limiting disabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                  "80 80",
		"ARK_TEMPERATURE":       "warm",
		"ARK_MAX_TOKENS":        "many",
		"AGENT_MAX_STEP":        "1.5",
		"RATE_LIMIT_PER_MINUTE": "fast",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestCrawlEnvCarriesCredential(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	t.Setenv("SECRET_DB_PASSWORD", "hunter2")

	env := CrawlConfig{APIKey: "fc-123"}.Env()

	joined := strings.Join(env, "\n")
	if !strings.Contains(joined, "FIRECRAWL_API_KEY=fc-123") {
		t.Fatalf("expected credential in env, got %v", env)
	}
	if !strings.Contains(joined, "PATH=/usr/bin") {
		t.Fatalf("expected PATH to be inherited, got %v", env)
	}
	if strings.Contains(joined, "hunter2") {
		t.Fatalf("unexpected variable leaked into helper env: %v", env)
	}
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	_, err := AIConfig{Model: "doubao-pro"}.NewChatModel(context.Background())
	if !errors.Is(err, ErrAINotConfigured) {
		t.Fatalf("expected ErrAINotConfigured, got %v", err)
	}
}

func TestNewChatModelReturnsToolCallingModel(t *testing.T) {
	cfg := AIConfig{APIKey: "ark-key", Model: "doubao-pro"}

	chatModel, err := cfg.NewChatModel(context.Background())
	if err != nil {
		t.Fatalf("NewChatModel err: %v", err)
	}
	var _ model.ToolCallingChatModel = chatModel
	if chatModel == nil {
		t.Fatal("expected a tool calling chat model")
	}

	params := schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
		"query": {Type: schema.String, Required: true},
	})
	bound, err := chatModel.WithTools([]*schema.ToolInfo{{Name: "firecrawl_search", Desc: "Search the web", ParamsOneOf: params}})
	if err != nil {
		t.Fatalf("WithTools err: %v", err)
	}
	if bound == nil {
		t.Fatal("expected a model with tools bound")
	}
}
