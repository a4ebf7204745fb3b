package bootstrap

import (
	"context"
	"io"
	"log/slog"

	"github.com/osse101/liveops/internal/discord"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/scheduler"
	"github.com/osse101/liveops/internal/server"
	"github.com/osse101/liveops/internal/sse"
	"github.com/osse101/liveops/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
// Nil fields are skipped.
type ShutdownComponents struct {
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	Hub                *sse.Hub
	Announcer          *discord.Announcer
	DiscordSession     io.Closer
	ResilientPublisher *event.ResilientPublisher
	Store              io.Closer
}

// GracefulShutdown stops components in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler and worker pool (no new recurring or sweep work)
// 3. SSE hub and Discord announcer (drain outbound notifications)
// 4. Event publisher (flush pending retries)
// 5. Store
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Scheduler != nil {
		c.Scheduler.Stop(ctx)
	}
	if c.WorkerPool != nil {
		if err := c.WorkerPool.Stop(ctx); err != nil {
			slog.Error(LogMsgWorkerPoolFailed, "error", err)
		}
	}

	if c.Hub != nil {
		c.Hub.Stop()
	}
	if c.Announcer != nil {
		c.Announcer.Stop()
	}
	if c.DiscordSession != nil {
		if err := c.DiscordSession.Close(); err != nil {
			slog.Error(LogMsgDiscordCloseFailed, "error", err)
		}
	}

	if c.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			slog.Error(LogMsgStoreCloseFailed, "error", err)
		} else {
			slog.Info(LogMsgStoreClosed)
		}
	}

	slog.Info(LogMsgServerStopped)
}
