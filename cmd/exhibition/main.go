// Reactive signs: a multi-surface poster installation that follows the
// viewer's position, fed by a pose detector or the mouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	envcfg "github.com/teslashibe/reactive-signs/internal/config"
	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/debug"
	"github.com/teslashibe/reactive-signs/pkg/display"
	"github.com/teslashibe/reactive-signs/pkg/emitter"
	"github.com/teslashibe/reactive-signs/pkg/exhibition"
	"github.com/teslashibe/reactive-signs/pkg/posters"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
	"github.com/teslashibe/reactive-signs/pkg/web"
)

type options struct {
	cfg        exhibition.Config
	fullscreen bool
	logLevel   string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log.Init(opts.logLevel)
	cfg := opts.cfg

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var appOpts []exhibition.Option
	var feedClient *tracking.FeedClient
	if cfg.Tracking.URL != "" {
		feed := tracking.NewFeed()
		feedClient = tracking.NewFeedClient(cfg.Tracking.URL, cfg.TrackingSourceConfig(), feed)
		appOpts = append(appOpts, exhibition.WithFeed(feed))
	}

	app, err := exhibition.New(cfg, posters.Registry(), appOpts...)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if err := app.Init(ctx); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	if feedClient != nil {
		go feedClient.Run(ctx)
	}

	if cfg.Dashboard.Port != "" {
		wcfg := web.DefaultConfig()
		wcfg.Port = cfg.Dashboard.Port
		server := web.NewServer(app, wcfg)
		app.OnPosterChange(server.PosterChanged)
		server.StartAsync(ctx)
		defer server.Shutdown()
	}

	if cfg.MQTT.Broker != "" {
		ecfg := emitter.DefaultConfig()
		ecfg.Broker = cfg.MQTT.Broker
		ecfg.TopicPrefix = cfg.MQTT.TopicPrefix
		ecfg.StatusInterval = cfg.MQTT.StatusInterval
		em := emitter.New(ecfg)
		if err := em.Connect(ctx); err != nil {
			// The client keeps retrying in the background
			log.Warn("mqtt unavailable at startup", "error", err)
		}
		app.OnPosterChange(em.PosterChanged)
		go em.Run(ctx, app)
		defer em.Disconnect()
	}

	dcfg := display.DefaultConfig()
	dcfg.Surfaces = cfg.Surfaces
	dcfg.PageW, dcfg.PageH = cfg.PageWidth, cfg.PageHeight
	dcfg.Fullscreen = opts.fullscreen

	var extra []display.Status
	if feedClient != nil {
		extra = append(extra, func() string {
			packets, rejected := feedClient.Stats()
			return fmt.Sprintf("feed: connected=%v packets=%d rejected=%d", feedClient.IsConnected(), packets, rejected)
		})
	}

	if err := display.Run(ctx, display.New(app, dcfg, extra...)); err != nil {
		log.Error("display stopped", "error", err)
	}
}

// parseFlags builds the configuration: defaults, then the YAML file,
// then flags, then environment for what is still empty.
func parseFlags() (options, error) {
	verbose := flag.Bool("debug", false, "Enable verbose debug logging and show the overlay")
	trackDebug := flag.Bool("debug-tracking", false, "Log every tracking packet (very verbose)")
	configPath := flag.String("config", envcfg.ConfigFile(), "YAML configuration file")
	surfaces := flag.Int("surfaces", 0, "Number of display surfaces (overrides config)")
	fullscreen := flag.Bool("fullscreen", envcfg.Bool("EXHIBITION_FULLSCREEN", false), "Start fullscreen in exhibition mode")
	trackingURL := flag.String("tracking-url", "", "Pose detector websocket URL (overrides TRACKING_URL)")
	port := flag.String("port", "", "Dashboard port (overrides DASHBOARD_PORT)")
	broker := flag.String("mqtt", "", "MQTT broker host:port (overrides MQTT_BROKER)")
	logLevel := flag.String("log-level", envcfg.String(envcfg.EnvLogLevel, "info"), "Log level: debug, info, warn, error")
	flag.Parse()

	cfg := exhibition.DefaultConfig()
	if *configPath != "" {
		loaded, err := exhibition.LoadConfig(*configPath)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	if *verbose {
		cfg.Debug = true
	}
	if *surfaces > 0 {
		cfg.Surfaces = *surfaces
	}
	if *trackingURL != "" {
		cfg.Tracking.URL = *trackingURL
	}
	if *port != "" {
		cfg.Dashboard.Port = *port
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	cfg.LoadEnvConfig()

	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	debug.Enabled = cfg.Debug
	debug.Tracking = *trackDebug
	level := *logLevel
	if cfg.Debug || *trackDebug {
		level = "debug"
	}
	return options{cfg: cfg, fullscreen: *fullscreen, logLevel: level}, nil
}
