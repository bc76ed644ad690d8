package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agentgateway/chateval/internal/chatui"
	"github.com/agentgateway/chateval/internal/config"
	"github.com/agentgateway/chateval/internal/logging"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadChatUI()

	logger := logging.FromEnv()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := chatui.NewServer(cfg, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}
