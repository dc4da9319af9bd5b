// Command server runs the extension hub: the gRPC control plane and the
// HTTP bulk-transfer plane, wired from one HubConfig. Grounded on the
// teacher's daemon.go cobra-command-wrapping-a-grpc-server shape, adapted
// from a unix-socket build daemon into a networked service with two
// listeners instead of one.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/yazhouio/extension-hub/internal/bulk"
	"github.com/yazhouio/extension-hub/internal/config"
	"github.com/yazhouio/extension-hub/internal/fs"
	"github.com/yazhouio/extension-hub/internal/hub"
	"github.com/yazhouio/extension-hub/internal/metrics"
	"github.com/yazhouio/extension-hub/internal/rpcwire"
	"github.com/yazhouio/extension-hub/internal/store"
	"github.com/yazhouio/extension-hub/internal/tokens"
)

func main() {
	os.Exit(run())
}

func run() int {
	ui := &cli.ColoredUi{
		Ui:          &cli.BasicUi{Writer: os.Stdout, ErrorWriter: os.Stderr},
		OutputColor: cli.UiColorNone,
		ErrorColor:  cli.UiColorRed,
		WarnColor:   cli.UiColorYellow,
	}
	logger := hclog.New(&hclog.LoggerOptions{Name: "extension-hub", Level: hclog.Info})

	cmd := rootCmd(ui, logger)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func rootCmd(ui cli.Ui, logger hclog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "extension-hub-server",
		Short:         "Runs the extension hub control and bulk planes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.Flags(cmd.Flags())
	cmd.RunE = func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(c.Flags())
		if err != nil {
			logError(ui, logger, err)
			return err
		}
		return serve(cfg, ui, logger)
	}
	return cmd
}

func serve(cfg *config.HubConfig, ui cli.Ui, logger hclog.Logger) error {
	baseDir, err := fs.CheckedToAbsolutePath(cfg.BaseDir)
	if err != nil {
		baseDir = fs.UnsafeToAbsolutePath(cfg.BaseDir)
	}
	tarDir, err := fs.CheckedToAbsolutePath(cfg.TarDirPath)
	if err != nil {
		tarDir = fs.UnsafeToAbsolutePath(cfg.TarDirPath)
	}
	if err := baseDir.MkdirAll(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	s := store.New(tarDir)
	tr := tokens.New(cfg.UploadTokenTTL, cfg.DownloadTokenTTL)
	h := hub.New(baseDir, s, tr, rec, logger.Named("hub"))

	grpcSrv := grpc.NewServer(
		grpcmiddleware.WithUnaryServerChain(
			unaryLoggingInterceptor(logger),
			grpcrecovery.UnaryServerInterceptor(),
		),
	)
	rpcwire.RegisterExtensionHubServer(grpcSrv, rpcwire.NewServer(h))

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/version", versionHandler)
	mux.Mount("/", bulk.New(h, rec).Routes())
	// Already-extracted content is also reachable as plain static files, for
	// parity with the original binary's ServeDir fallback (SPEC_FULL.md §6).
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(baseDir.ToString()))))

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc control plane listening", "addr", cfg.GRPCAddr)
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		logger.Info("http bulk plane listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logError(ui, logger, err)
		return err
	case <-sigCh:
		logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcSrv.GracefulStop()
	return httpSrv.Shutdown(ctx)
}

// unaryLoggingInterceptor logs every RPC at the transport boundary — coarse
// method/outcome pairs, distinct from internal/hub's per-operation Debug/
// Warn/Error logging of business-level request detail. Chained ahead of
// go-grpc-middleware's recovery interceptor so a panic in a hand-rolled
// method handler (internal/rpcwire/service.go) still gets logged here before
// recovery turns it into an Internal status.
func unaryLoggingInterceptor(logger hclog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("rpc failed", "method", info.FullMethod, "err", err)
		} else {
			logger.Debug("rpc ok", "method", info.FullMethod)
		}
		return resp, err
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, buildVersion())
}

// buildVersion is overridden at link time via -ldflags in release builds;
// the default matches the original binary's "dev" placeholder.
var version = "dev"

func buildVersion() string { return version }

func logError(ui cli.Ui, logger hclog.Logger, err error) {
	logger.Error("fatal", "error", err)
	ui.Error(color.RedString("error: %v", err))
}
