package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"marith/internal/api"
	"marith/internal/auth"
	"marith/internal/database"
	marithgrpc "marith/internal/grpc"
	"marith/internal/page"
)

var (
	servePort uint16
	serveIPv6 bool
	serveAll  bool
	noGRPC    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet page, JSON API and gRPC service",
	Long: `Serve the worksheet page on / and the JSON API on /api/v1.

By default only localhost is listened on. --port, --ipv6 and --all
override the configured HTTP address.

Examples:
  marith serve
  marith serve -p 8080 --all
  marith serve --config marith.toml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Uint16VarP(&servePort, "port", "p", 8014, "HTTP port")
	serveCmd.Flags().BoolVarP(&serveIPv6, "ipv6", "6", false, "use IPv6 instead of IPv4")
	serveCmd.Flags().BoolVarP(&serveAll, "all", "a", false, "listen on all addresses instead of localhost")
	serveCmd.Flags().BoolVar(&noGRPC, "no-grpc", false, "do not start the gRPC service")
}

// listenAddr derives the HTTP address from the flags, or returns configured
// when none of them was given.
func listenAddr(cmd *cobra.Command, configured string) string {
	flags := cmd.Flags()
	if !flags.Changed("port") && !flags.Changed("ipv6") && !flags.Changed("all") {
		return configured
	}

	var host string
	switch {
	case serveIPv6 && serveAll:
		host = "::"
	case serveIPv6:
		host = "::1"
	case serveAll:
		host = "0.0.0.0"
	default:
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(int(servePort)))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	tmpl, err := page.Load(cfg.TemplatePath)
	if err != nil {
		return err
	}

	store, err := database.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	authManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	server := api.NewServer(store, authManager, tmpl, cfg.Worksheet, logger)

	httpServer := &http.Server{
		Addr:              listenAddr(cmd, cfg.HTTPAddr),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := marithgrpc.NewServer(cfg.Worksheet, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	if !noGRPC {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := marithgrpc.StartServer(cfg.GRPCAddr, grpcServer, logger)
			if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errs <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errs:
		logger.Error("server failed, shutting down", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	wg.Wait()
	return runErr
}
