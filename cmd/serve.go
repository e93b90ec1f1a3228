// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeeDigitalWorks/zapthumb/pkg/api"
	"github.com/LeeDigitalWorks/zapthumb/pkg/debug"
	"github.com/LeeDigitalWorks/zapthumb/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServeOpts holds the HTTP server settings
type ServeOpts struct {
	ListenAddr      string
	DebugAddr       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve thumbnails over HTTP",
	Long: `Start an HTTP server running the same pipeline as the Lambda function.
Point a bucket website 404 redirect rule or a reverse proxy at it.
Metrics, health and pprof are served on the debug address.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("listen_addr", ":8080", "Address of the thumbnail HTTP server")
	f.String("debug_addr", ":8081", "Address of the debug/metrics HTTP server, empty to disable")
	f.Duration("read_timeout", 30*time.Second, "HTTP read timeout")
	f.Duration("write_timeout", 60*time.Second, "HTTP write timeout")
	f.Duration("shutdown_timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown")

	viper.BindPFlags(f)
}

func loadServeOpts(cmd *cobra.Command) ServeOpts {
	f := NewFlagLoader(cmd)
	return ServeOpts{
		ListenAddr:      f.String("listen_addr"),
		DebugAddr:       f.String("debug_addr"),
		ReadTimeout:     f.Duration("read_timeout"),
		WriteTimeout:    f.Duration("write_timeout"),
		ShutdownTimeout: f.Duration("shutdown_timeout"),
	}
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	opts := loadServeOpts(cmd)

	p := newPipeline(cmd.Context(), cfg)

	servers := []*http.Server{
		startHTTPServer(api.NewServer(p, cfg.Stage), opts.ListenAddr, opts),
	}
	if opts.DebugAddr != "" {
		servers = append(servers, startHTTPServer(debug.GetMux(), opts.DebugAddr, opts))
	}

	debug.SetReadyCheck(cfg.Validate)
	debug.SetReady()

	waitForShutdown()
	debug.SetNotReady()

	ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", srv.Addr).Msg("HTTP server shutdown")
		}
	}
	logger.Info().Msg("stopped")
}

func startHTTPServer(handler http.Handler, addr string, opts ServeOpts) *http.Server {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", addr).Msg("failed to create HTTP listener")
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	go func() {
		logger.Info().Str("http_addr", addr).Msg("Starting HTTP server")
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	return httpServer
}

func waitForShutdown() {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan
}
