package tracking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/debug"
)

// Subprotocol is the websocket subprotocol the detector negotiates.
const Subprotocol = "osc"

// FeedClient keeps a websocket connection to the pose detector and
// pushes every decoded sample into a Feed.
type FeedClient struct {
	url    string
	config Config
	feed   *Feed
	logger *slog.Logger
	now    func() time.Time

	connected atomic.Bool
	packets   atomic.Uint64
	rejected  atomic.Uint64
}

// NewFeedClient creates a client for url (ws:// or wss://)
func NewFeedClient(url string, config Config, feed *Feed) *FeedClient {
	return &FeedClient{
		url:    url,
		config: config,
		feed:   feed,
		logger: log.Component("feed"),
		now:    time.Now,
	}
}

// IsConnected reports whether a websocket session is open
func (c *FeedClient) IsConnected() bool {
	return c.connected.Load()
}

// Stats returns packets decoded and packets rejected
func (c *FeedClient) Stats() (packets, rejected uint64) {
	return c.packets.Load(), c.rejected.Load()
}

// Run connects and reads until ctx is cancelled, reconnecting with a
// capped exponential backoff. The caller's frame loop never waits on it.
func (c *FeedClient) Run(ctx context.Context) {
	delay := c.config.ReconnectMin
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	for {
		started := time.Now()
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Debug("feed session ended", "url", c.url, "error", err)
		}
		// A session that stayed up resets the backoff.
		if time.Since(started) > c.config.ReconnectMax {
			delay = c.config.ReconnectMin
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if c.config.ReconnectMax > 0 && delay > c.config.ReconnectMax {
			delay = c.config.ReconnectMax
		}
	}
}

func (c *FeedClient) session(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
		Subprotocols:     []string{Subprotocol},
	}
	conn, _, err := dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		return err
	}
	defer conn.Close()

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.logger.Info("tracking feed connected", "url", c.url)

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		if c.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		}
		kind, data, err := conn.ReadMessage()
		if err != nil {
			c.logger.Info("tracking feed disconnected", "url", c.url, "error", err)
			return err
		}
		if kind != websocket.BinaryMessage {
			debug.TrackLog("feed text message ignored", "bytes", len(data))
			continue
		}
		c.handle(data)
	}
}

func (c *FeedClient) handle(data []byte) {
	samples, err := DecodePacket(data, c.now())
	if err != nil {
		c.rejected.Add(1)
		if !errors.Is(err, ErrUnknownAddress) {
			debug.TrackLog("feed packet rejected", "error", err)
		}
		return
	}
	for _, s := range samples {
		c.feed.Push(s)
		debug.TrackLog("feed sample", "x", s.X, "y", s.Y, "z", s.Z, "tracking", s.Tracking)
	}
	c.packets.Add(1)
}
