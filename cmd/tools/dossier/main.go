package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/dossier-agent/backend/internal/config"
	"github.com/zhouzirui/dossier-agent/backend/internal/render"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/toolsession"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file, using system environment: %v", err)
	}

	clientName := flag.String("client", "", "client/customer name to research")
	asHTML := flag.Bool("html", false, "print rendered HTML instead of markdown")
	verbose := flag.Bool("v", false, "log every tool invocation")
	flag.Parse()

	if *clientName == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := dossier.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize dossier service: %v", err)
	}

	var observer toolsession.Observer
	if *verbose {
		observer = func(ev toolsession.ToolEvent) {
			if ev.Err != nil {
				log.Printf("[tool] %s %s: %v", ev.Name, ev.Phase, ev.Err)
				return
			}
			log.Printf("[tool] %s %s %s", ev.Name, ev.Phase, ev.Arguments)
		}
	}

	result, err := svc.Generate(ctx, *clientName, observer)
	if err != nil {
		log.Fatalf("dossier generation failed: %v", err)
	}

	output := result.Markdown
	if *asHTML {
		output, err = render.Markdown(result.Markdown)
		if err != nil {
			log.Fatalf("render failed: %v", err)
		}
	}

	fmt.Println(output)
	log.Printf("run %s finished in %s using %d tools", result.RunID, result.Duration, len(result.Tools))
}
