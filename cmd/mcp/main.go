package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/zatekoja/medlibrary/internal/adapters/memory"
	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	librarymcp "github.com/zatekoja/medlibrary/internal/mcp"
	"github.com/zatekoja/medlibrary/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load configuration")
	}

	// stdout carries the protocol in stdio mode, so logs always go to stderr
	observability.InitLogger(observability.LoggerOptions{
		Service:     "medlibrary-mcp",
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
		Output:      os.Stderr,
	})
	logger := observability.GetLogger()

	lib, err := catalog.Default()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	s := librarymcp.NewServer(
		memory.NewContentAdapter(lib, nil),
		memory.NewProcedureAdapter(lib, nil),
	)

	switch cfg.MCP.Transport {
	case config.MCPTransportHTTP:
		logger.Info().Str("addr", cfg.MCP.Addr).Msg("starting MCP server over streamable HTTP")
		httpServer := server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
		if err := httpServer.Start(cfg.MCP.Addr); err != nil {
			logger.Fatal().Err(err).Msg("MCP HTTP server failed")
		}
	default:
		logger.Info().Msg("starting MCP server in stdio mode")
		if err := server.ServeStdio(s); err != nil {
			logger.Fatal().Err(err).Msg("MCP stdio server failed")
		}
	}
}
