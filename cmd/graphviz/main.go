package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Pmariak1013/GraphVisualizer/internal/config"
	graphmcp "github.com/Pmariak1013/GraphVisualizer/internal/mcp"
	"github.com/Pmariak1013/GraphVisualizer/internal/server"
	"github.com/Pmariak1013/GraphVisualizer/pkg/engine"
	"github.com/Pmariak1013/GraphVisualizer/pkg/layout"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "graphviz:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	httpAddr := flag.String("http-addr", "", "Address for the REST API (e.g. :9191)")
	dataDir := flag.String("data-dir", "", "Directory holding graph files")
	filename := flag.String("file", "", "Default graph file inside the data directory")
	authToken := flag.String("auth-token", "", "Bearer token required by the REST API")
	mcpMode := flag.Bool("mcp", false, "Serve MCP tools over stdio instead of HTTP")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("graphviz", version)
		return nil
	}

	// 1. Configuration: file, then explicit flags
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTPAddr = *httpAddr
		case "data-dir":
			cfg.DataDir = *dataDir
		case "file":
			cfg.Filename = *filename
		case "auth-token":
			cfg.AuthToken = *authToken
		case "mcp":
			cfg.MCP = *mcpMode
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Logging
	logger, logCloser := config.NewLogger(cfg.Log)
	defer logCloser.Close()
	slog.SetDefault(logger)

	// 3. Engine
	opts := engine.DefaultOptions(cfg.DataDir)
	opts.Filename = cfg.Filename
	opts.AutoSaveInterval = cfg.AutoSaveInterval
	opts.AutoSaveThreshold = cfg.AutoSaveThreshold
	opts.Layout = layout.New(cfg.Layout)

	eng, err := engine.Open(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Error("Failed to save graph on shutdown", "error", err)
		}
	}()
	slog.Info("Graph engine ready", "file", eng.SourceName(), "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4a. MCP over stdio
	if cfg.MCP {
		slog.Info("Serving MCP tools on stdio")
		s := graphmcp.NewMCPServer(eng, version)
		if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	}

	// 4b. HTTP
	srv := server.NewServer(eng, cfg.HTTPAddr, cfg.AuthToken)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srv.Shutdown()
	return <-errCh
}
