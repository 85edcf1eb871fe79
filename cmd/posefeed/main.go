// posefeed simulates the pose detector: it serves OSC /depth packets over
// websocket with a viewer walking back and forth, leaving now and then.
// Point the exhibition at it with --tracking-url ws://localhost:8025.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	envcfg "github.com/teslashibe/reactive-signs/internal/config"
	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/tracking"
)

func main() {
	port := flag.Int("port", envcfg.Int("POSEFEED_PORT", 8025), "Listen port")
	rate := flag.Duration("interval", envcfg.Duration("POSEFEED_INTERVAL", 33*time.Millisecond), "Packet interval")
	period := flag.Duration("period", 20*time.Second, "Time for one walk across")
	away := flag.Duration("away", 5*time.Second, "Viewer absence after each walk (0 disables)")
	flag.Parse()
	log.Init("info")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/", websocket.New(func(c *websocket.Conn) {
		logger := log.Component("posefeed").With("remote", c.RemoteAddr().String())
		logger.Info("detector client connected")
		defer logger.Info("detector client gone")

		ticker := time.NewTicker(*rate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				data, err := tracking.EncodeDepth(walk(now.Sub(start), *period, *away))
				if err != nil {
					logger.Error("encode failed", "error", err)
					return
				}
				if err := c.WriteMessage(websocket.BinaryMessage, data); err != nil {
					return
				}
			}
		}
	}, websocket.Config{Subprotocols: []string{tracking.Subprotocol}}))

	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	log.Info("pose feed listening", "url", fmt.Sprintf("ws://localhost:%d", *port))
	if err := app.Listen(fmt.Sprintf(":%d", *port)); err != nil {
		log.Error("listen failed", "error", err)
		os.Exit(1)
	}
}

// walk returns the simulated sample t into the run. The viewer crosses
// once per period, then stays away for away.
func walk(t, period, away time.Duration) tracking.Sample {
	cycle := period + away
	phase := t % cycle
	if phase >= period {
		return tracking.Sample{X: 0.5, Y: 0.5, Z: 0, Tracking: false}
	}
	p := float64(phase) / float64(period)
	x := 0.5 - 0.5*math.Cos(2*math.Pi*p)
	return tracking.Sample{
		X:        x,
		Y:        0.45 + 0.05*math.Sin(4*math.Pi*p),
		Z:        0.6 + 0.2*math.Sin(2*math.Pi*p),
		Tracking: true,
	}
}
