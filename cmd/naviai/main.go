// NaviAI - conversational assistant backend for elderly users.
// Entry point: flag handling plus the serve and migrate commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naviai/naviai/internal/domain/knowledge"
	"github.com/naviai/naviai/internal/domain/video"
	"github.com/naviai/naviai/internal/infra/config"
	"github.com/naviai/naviai/internal/infra/eventbus"
	"github.com/naviai/naviai/internal/infra/llm"
	"github.com/naviai/naviai/internal/infra/sqlite"
	"github.com/naviai/naviai/internal/server"
	"github.com/naviai/naviai/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("naviai", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	port := fs.Int("port", 8080, "HTTP listen port (serve)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	switch fs.Arg(0) {
	case "migrate":
		return runMigrate(out)
	case "serve", "":
		return runServe(out, *port)
	default:
		fmt.Fprintf(out, "unknown command %q\n\n", fs.Arg(0)) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// runMigrate applies pending migrations and exits.
func runMigrate(out io.Writer) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(out, "open database: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrate: %v\n", err) //nolint:errcheck
		return 1
	}

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "migration version: %v\n", err) //nolint:errcheck
		return 1
	}
	fmt.Fprintf(out, "database at migration version %d\n", v) //nolint:errcheck
	return 0
}

// runServe wires the full application and blocks until SIGINT/SIGTERM.
func runServe(out io.Writer, port int) int {
	cfg := config.Load()

	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(out, "open database: %v\n", err) //nolint:errcheck
		return 1
	}

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrate: %v\n", err) //nolint:errcheck
		return 1
	}

	registry := buildRegistry(cfg)
	if len(registry.Providers()) == 0 {
		log.Println("warning: no LLM providers configured; chat and vision will be unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed retrieval data: index the knowledge base and load trusted videos.
	// Both degrade gracefully when their inputs are missing.
	indexer := knowledge.NewIndexer(db, cfg.KnowledgeBaseDir)
	if err := indexer.IndexDir(ctx); err != nil {
		log.Printf("knowledge: initial indexing failed: %v", err)
	}
	if err := video.NewService(db).LoadSeed(ctx, cfg.TrustedVideosPath); err != nil {
		log.Printf("video: seed load failed: %v", err)
	}

	// Watch the knowledge directory and reindex on changes
	bus := eventbus.New()
	go knowledge.NewWatcher(cfg.KnowledgeBaseDir, bus).Run(ctx)
	go knowledge.RunReindexer(ctx, bus, indexer)

	serverCfg := server.DefaultConfig()
	serverCfg.Port = port
	srv := server.NewServer(db, registry, cfg, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		fmt.Fprintf(out, "server error: %v\n", err) //nolint:errcheck
		return 1
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(out, "shutdown: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

// buildRegistry registers an adapter per configured credential. Ollama is
// registered only when its base URL is explicitly set: unlike the hosted
// providers there is no key to signal intent.
func buildRegistry(cfg config.Config) *llm.Registry {
	registry := llm.NewRegistry(cfg.LLMProvider)

	if cfg.AnthropicAPIKey != "" {
		registry.Register("anthropic", llm.NewAnthropicAdapter(cfg.AnthropicAPIKey))
	}
	if cfg.OpenAIAPIKey != "" {
		registry.Register("openai", llm.NewOpenAIAdapter(cfg.OpenAIAPIKey))
	}
	if os.Getenv("OLLAMA_BASE_URL") != "" {
		registry.Register("ollama", llm.NewOllamaAdapter(cfg.OllamaBaseURL, cfg.OllamaVisionBaseURL))
	}

	return registry
}

func printHelp(out io.Writer) {
	helpText := `NaviAI - conversational assistant backend

Usage:
  naviai [options] [command]

Options:
  --version    Show version information
  --port       HTTP listen port for serve (default 8080)
  --help       Show this help message

Commands:
  serve        Start the server (default)
  migrate      Run database migrations and exit

Examples:
  naviai --version
  naviai serve --port 8080
  naviai migrate`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
