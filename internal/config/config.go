package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// ErrAINotConfigured 表示缺少 Ark 模型或凭证。
var ErrAINotConfigured = errors.New("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")

// defaultTemperature 让生成结果尽量稳定。
const defaultTemperature = 0.1

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Crawl     CrawlConfig
	RateLimit RateLimitConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	limit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Crawl: loadCrawlConfig(), RateLimit: limit}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	// MaxStep 限制 agent 循环步数，0 表示沿用框架默认值。
	MaxStep int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个支持工具调用的模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	if !c.Enabled() {
		return nil, ErrAINotConfigured
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		val := defaultTemperature
		temperature = &val
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	maxStep := 0
	if override, err := parseOptionalIntEnv("AGENT_MAX_STEP"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		maxStep = *override
	}

	modelName := strings.TrimSpace(os.Getenv("ARK_MODEL"))
	if modelName == "" {
		modelName = strings.TrimSpace(os.Getenv("Model"))
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       modelName,
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		MaxStep:     maxStep,
	}, nil
}

// CrawlConfig 描述 Firecrawl MCP 子进程的启动方式。
type CrawlConfig struct {
	APIKey  string
	Command string
	Args    []string
}

// inheritedEnv 列出子进程可以继承的环境变量。
var inheritedEnv = []string{"HOME", "LOGNAME", "PATH", "SHELL", "TERM", "USER"}

// Env 返回子进程的环境变量：最小继承集合加上 Firecrawl 凭证，
// 其余服务端变量不会传给子进程。
func (c CrawlConfig) Env() []string {
	env := make([]string, 0, len(inheritedEnv)+1)
	for _, key := range inheritedEnv {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return append(env, "FIRECRAWL_API_KEY="+c.APIKey)
}

func loadCrawlConfig() CrawlConfig {
	args := strings.Fields(os.Getenv("CRAWL_MCP_ARGS"))
	if len(args) == 0 {
		args = []string{"firecrawl-mcp"}
	}

	return CrawlConfig{
		APIKey:  strings.TrimSpace(os.Getenv("FIRECRAWL_API_KEY")),
		Command: getEnvOrDefault("CRAWL_MCP_COMMAND", "npx"),
		Args:    args,
	}
}

// RateLimitConfig 控制生成接口的按 IP 限流。
type RateLimitConfig struct {
	PerMinute float64
	Burst     int
}

// Enabled 表示是否对生成接口限流。
func (c RateLimitConfig) Enabled() bool {
	return c.PerMinute > 0
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	cfg := RateLimitConfig{PerMinute: 6, Burst: 2}

	perMinute, err := parseOptionalFloatEnv("RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if perMinute != nil {
		cfg.PerMinute = *perMinute
	}

	burst, err := parseOptionalIntEnv("RATE_LIMIT_BURST")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if burst != nil {
		cfg.Burst = *burst
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
