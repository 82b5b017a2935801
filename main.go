package main

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/api/handlers"
	"github.com/healx-platform/healx-api/config"
)

const requestTimeout = 30 * time.Second

func main() {
	conf := config.New()

	app := &handlers.App{Config: conf}
	if err := app.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize application", "error", err)
	}

	go func() {
		if err := app.Socket.Serve(); err != nil {
			zap.S().Errorw("socket server stopped", "error", err)
		}
	}()
	defer app.Socket.Close()

	if err := app.Scheduler.Start(); err != nil {
		zap.S().Fatalw("failed to start scheduler", "error", err)
	}
	defer app.Scheduler.Stop()

	traced := api.MetricsMiddleware(app.Router)
	timed := api.TimeoutMiddleware(requestTimeout)(traced)

	// socket.io polling and telemetry streams outlive the request timeout
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/socket.io/") || r.URL.Path == "/api/v1/telemetry" {
			traced.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})

	port := conf.Port
	if port == "" {
		port = "8080"
	}

	zap.S().Infow("api listening", "port", port)
	if err := http.ListenAndServe(":"+port, root); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
}
