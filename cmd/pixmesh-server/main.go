package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/pixmesh-go/internal/infra/confloader"
	"github.com/yndnr/pixmesh-go/internal/infra/discovery"
	"github.com/yndnr/pixmesh-go/internal/infra/shutdown"
	"github.com/yndnr/pixmesh-go/internal/server/config"
	"github.com/yndnr/pixmesh-go/internal/server/httpserver"
	"github.com/yndnr/pixmesh-go/internal/storage/memory"
	"github.com/yndnr/pixmesh-go/internal/storage/snapshot"
	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
	"github.com/yndnr/pixmesh-go/internal/telemetry/metric"
)

// shutdownTimeout bounds all shutdown hooks together.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command-line flags.
type options struct {
	configFile  string
	showVersion bool

	// port is applied to server.http.addr after loading; 0 keeps it.
	port int

	// overrides holds the explicitly set canvas flags as config keys.
	overrides map[string]any
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("pixmesh-server", flag.ContinueOnError)
	var (
		opts     options
		width    = fs.Int("width", 0, "Canvas width in pixels")
		height   = fs.Int("height", 0, "Canvas height in pixels")
		cooldown = fs.Int("cooldown", 0, "Seconds between writes from one client")
	)
	fs.StringVar(&opts.configFile, "config", "", "Path to configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.IntVar(&opts.port, "port", 0, "HTTP port (overrides the port of server.http.addr)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Only flags given on the command line override lower layers.
	opts.overrides = make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			opts.overrides["canvas.width"] = *width
		case "height":
			opts.overrides["canvas.height"] = *height
		case "cooldown":
			opts.overrides["canvas.cooldown_seconds"] = *cooldown
		}
	})
	return &opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Printf("pixmesh-server %s\n", buildinfo.String())
		return nil
	}

	cfg, sources, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	log.Info("starting pixmesh-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Get().Commit,
		"config", opts.configFile,
		"sources", sources)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := metric.NewRegistry()

	// 1. Persistence
	store, err := openStore(ctx, cfg, registry, slogLogger)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	// 2. Canvas state
	grid := snapshot.LoadGrid(ctx, store, cfg.Canvas.Width, cfg.Canvas.Height, slogLogger)
	canvas, err := memory.NewCanvas(cfg.Canvas.Width, cfg.Canvas.Height, grid)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init canvas: %w", err)
	}

	// 3. Services
	feed := service.NewFeed(service.DefaultSubscriberBuffer)
	svc := service.NewCanvasService(canvas,
		service.NewCooldownLedger(cfg.Canvas.Cooldown()),
		store,
		service.WithLogger(slogLogger.With("component", "canvas")),
		service.WithMetrics(registry),
		service.WithFeed(feed),
	)
	registry.Registerer().MustRegister(metric.NewCollector(func() metric.CanvasStats {
		board := svc.Board()
		return metric.CanvasStats{
			Width:           board.Width,
			Height:          board.Height,
			Version:         board.Version,
			FeedSubscribers: feed.Len(),
		}
	}))
	go svc.RunPruner(ctx, cfg.Canvas.LedgerPruneInterval)

	// 4. HTTP
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Service:           svc,
		Feed:              feed,
		Metrics:           registry,
		Logger:            slogLogger.With("component", "http"),
		TrustProxy:        cfg.Server.HTTP.TrustProxy,
		RequestsPerSecond: cfg.Server.HTTP.RequestsPerSecond,
		RequestBurst:      cfg.Server.HTTP.RequestBurst,
	})
	httpServer := httpserver.New(httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		TLSCertFile:  cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:   cfg.Server.HTTP.TLSKeyFile,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}, router, slogLogger)

	ln, err := httpServer.Listen()
	if err != nil {
		_ = store.Close()
		return err
	}

	// Hooks run in reverse: stop accepting, stop advertising, end feeds,
	// write the final snapshot, then release the store.
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))
	shutdownHandler.OnShutdown("snapshot store", func(context.Context) error {
		return store.Close()
	})
	shutdownHandler.OnShutdown("final snapshot", svc.Flush)
	shutdownHandler.OnShutdown("live feed", func(context.Context) error {
		feed.Close()
		return nil
	})

	// 5. Optional extras
	if cfg.Server.MDNS.Enabled {
		adv, err := advertise(cfg, ln.Addr())
		if err != nil {
			log.Warn("mDNS advertisement disabled", "error", err)
		} else {
			log.Info("advertising via mDNS", "instance", adv.Instance(), "service", discovery.ServiceType)
			shutdownHandler.OnShutdown("mdns", adv.Shutdown)
		}
	}

	if opts.configFile != "" {
		watcher, err := watchConfig(opts, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	err = shutdownHandler.Wait(ctx)

	select {
	case sErr := <-serveErr:
		err = errors.Join(sErr, err)
	default:
	}
	if err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the optional file, PIXMESH_ environment
// variables and flag overrides, in increasing priority. It also returns
// the names of the layers that were applied.
func loadConfig(opts *options) (*config.ServerConfig, []string, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(opts.configFile),
		confloader.WithOverrides(opts.overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if opts.port != 0 {
		addr, err := withPort(cfg.Server.HTTP.Addr, opts.port)
		if err != nil {
			return nil, nil, err
		}
		cfg.Server.HTTP.Addr = addr
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Sources(), nil
}

// withPort replaces the port of addr, keeping its host.
func withPort(addr string, port int) (string, error) {
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// advertise announces the bound HTTP port via mDNS.
func advertise(cfg *config.ServerConfig, addr net.Addr) (*discovery.Advertiser, error) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("unexpected listener address %s", addr)
	}
	return discovery.Advertise(discovery.Config{
		Instance: cfg.Server.MDNS.Instance,
		Port:     tcp.Port,
		Info:     discovery.CanvasInfo(cfg.Canvas.Width, cfg.Canvas.Height, buildinfo.Version),
	})
}

// watchConfig reapplies log.level when the config file changes. Other
// settings only take effect on restart.
func watchConfig(opts *options, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(opts.configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}
	watcher.OnChange(func(string) {
		cfg, _, err := loadConfig(opts)
		if err != nil {
			log.Warn("ignoring invalid configuration change", "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("log level not applied", "level", cfg.Log.Level, "error", err)
			return
		}
		log.Info("log level changed", "level", cfg.Log.Level)
	})
	watcher.Start()
	return watcher, nil
}
