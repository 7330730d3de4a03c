// Command mcpserver exposes dossier generation as an MCP tool over stdio.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zhouzirui/dossier-agent/backend/internal/config"
	"github.com/zhouzirui/dossier-agent/backend/internal/handler/mcptool"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/dossier"
)

func main() {
	// stdout carries the protocol; keep logs on stderr.
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	svc, err := dossier.NewFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize dossier service: %v", err)
	}

	s := mcptool.NewServer(mcptool.NewHandler(svc))
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
