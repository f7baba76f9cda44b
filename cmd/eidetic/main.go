// Eidetic orchestrator server - runs the Designer/Analyst/Synthesizer
// pipeline over an HTTP API and a per-project event bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/shipaleks/eidetic/pkg/adapter"
	"github.com/shipaleks/eidetic/pkg/analyst"
	"github.com/shipaleks/eidetic/pkg/api"
	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/designer"
	"github.com/shipaleks/eidetic/pkg/events"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/pipeline"
	"github.com/shipaleks/eidetic/pkg/store"
	"github.com/shipaleks/eidetic/pkg/synth"
	"github.com/shipaleks/eidetic/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ginMode := getEnv("GIN_MODE", "release")
	gin.SetMode(ginMode)

	color.Green("Starting %s", version.Full())
	log.Printf("Config Directory: %s", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()
	log.Println("Connected to Postgres, migrations applied")

	designerAgent, err := buildOracle(cfg, config.RoleDesigner)
	if err != nil {
		log.Fatalf("Failed to build designer oracle: %v", err)
	}
	analystAgent, err := buildOracle(cfg, config.RoleAnalyst)
	if err != nil {
		log.Fatalf("Failed to build analyst oracle: %v", err)
	}
	synthAgent, err := buildOracle(cfg, config.RoleSynthesizer)
	if err != nil {
		log.Fatalf("Failed to build synthesizer oracle: %v", err)
	}

	designerCfg, _ := cfg.GetAgent(config.RoleDesigner)
	analystCfg, _ := cfg.GetAgent(config.RoleAnalyst)
	synthCfg, _ := cfg.GetAgent(config.RoleSynthesizer)

	des := designer.New(designerAgent, designerCfg, cfg.Thresholds)
	an := analyst.New(analystAgent, analystCfg, cfg.Thresholds)
	sy := synth.New(synthAgent, synthCfg)

	ad := adapter.New(cfg.Adapter)
	bus := events.New(cfg.Events.SubscriberBacklog)
	pl := pipeline.New(st, an, des, ad, bus, cfg.Thresholds)

	server := api.NewServer(st, pl, ad, sy, bus)

	addr := cfg.HTTP.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("HTTP server listening on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		log.Println("Waiting for in-flight ingestions to finish...")
		pl.Wait()
	}
}

func buildOracle(cfg *config.Config, role config.AgentRole) (llmoracle.Oracle, error) {
	agentCfg, err := cfg.GetAgent(role)
	if err != nil {
		return nil, fmt.Errorf("agent role %s: %w", role, err)
	}
	return llmoracle.New(agentCfg)
}
