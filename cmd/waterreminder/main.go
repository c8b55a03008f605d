package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"waterreminder/internal/app"
	"waterreminder/internal/app/consumers"
	"waterreminder/internal/app/deps"
	"waterreminder/internal/app/services"
	"waterreminder/internal/core/domain/alert"
	dl "waterreminder/internal/core/domain/logging"
	restorereminders "waterreminder/internal/core/services/restore_reminders"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	services := services.InitServices(deps)
	shutdownConsumers := consumers.InitConsumers(deps, services)

	restore(deps, services)

	httpServer := app.InitHttpServer(deps, services)
	// Alert event streams never end by themselves.
	httpServer.RegisterOnShutdown(deps.SseServer.Close)
	go start(httpServer, deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	shutdown(context.Background(), httpServer, deps, shutdownConsumers, shutdownDeps)
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}

func restore(deps *deps.Deps, services *services.Services) {
	result, err := services.RestoreReminders.Run(context.Background(), restorereminders.Input{})
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not restore reminders.", dl.Entry("err", err))
		panic(err)
	}
	deps.Logger.Info(
		context.Background(),
		"Reminders restored.",
		dl.Entry("restored", result.Restored),
		dl.Entry("failed", result.Failed),
	)
}

func start(server *http.Server, deps *deps.Deps) {
	deps.Logger.Info(
		context.Background(),
		"HTTP server has started.",
		dl.Entry("address", server.Addr),
		dl.Entry("isTestMode", deps.Config.IsTestMode),
		dl.Entry("storeBackend", deps.Config.StoreBackend),
		dl.Entry("timeZone", deps.Location.String()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	} else {
		deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
	}
}

func shutdown(
	ctx context.Context,
	server *http.Server,
	deps *deps.Deps,
	shutdownConsumers func(),
	shutdownDeps func(),
) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error(ctx, "Could not shut down HTTP server gracefully.", dl.Entry("err", err))
	}

	shutdownConsumers()
	if deps.Ringer.StopAny(ctx, alert.StopReasonShutdown) {
		deps.Logger.Info(ctx, "Sounding alert stopped.")
	}

	shutdownDeps()
	deps.Logger.Info(ctx, "HTTP server has shutdowned.")
}
