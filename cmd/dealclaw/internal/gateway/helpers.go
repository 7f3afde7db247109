package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal"
	"github.com/tinyland-inc/dealclaw/pkg/aliexpress"
	"github.com/tinyland-inc/dealclaw/pkg/bus"
	"github.com/tinyland-inc/dealclaw/pkg/channels"
	"github.com/tinyland-inc/dealclaw/pkg/health"
	"github.com/tinyland-inc/dealclaw/pkg/linkparse"
	"github.com/tinyland-inc/dealclaw/pkg/pipeline"
)

func gatewayCmd(debug bool) error {
	logger, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	msgBus := bus.NewMessageBus()

	channelManager, err := channels.NewManager(cfg, msgBus, logger)
	if err != nil {
		return fmt.Errorf("error creating channel manager: %w", err)
	}

	client := aliexpress.NewClient(cfg.AliExpress, logger)
	resolver := linkparse.NewResolver(time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second)
	loop := pipeline.NewLoop(msgBus, client, resolver, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthServer := health.NewServer(cfg.Gateway.Host, cfg.Gateway.Port, logger)
	if ch, ok := channelManager.GetChannel("telegram"); ok {
		if tc, ok := ch.(*channels.TelegramChannel); ok && tc.WebhookMode() {
			healthServer.Handle(tc.WebhookPath(), tc.WebhookHandler())
		}
	}
	go func() {
		if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}

	go loop.Run(ctx)
	go channelManager.DispatchOutbound(ctx)

	fmt.Printf("✓ Channels enabled: %v\n", channelManager.EnabledChannels())
	fmt.Printf("✓ Gateway started on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	healthServer.Stop(shutdownCtx)
	channelManager.StopAll(shutdownCtx)
	msgBus.Close()
	fmt.Println("✓ Gateway stopped")

	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
