// Package emitter mirrors installation state to an MQTT broker so other
// rooms of the exhibition (lighting, sound, signage) can follow which
// poster is showing.
//
// Topics, under a configurable prefix:
//
//	<prefix>/poster   retained, published on every active poster change
//	<prefix>/status   the full status, every StatusInterval
//	<prefix>/online   retained "true", with a last will of "false"
//
// Poster changes arrive through PosterChanged, which the scheduler calls
// on the frame loop; they are queued and published by Run in order.
package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/exhibition"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
)

// eventBuffer is how many poster changes may wait for the broker
const eventBuffer = 32

// ErrNotConnected is returned by publishes while the broker is unreachable
var ErrNotConnected = errors.New("emitter: mqtt not connected")

// Config holds broker settings
type Config struct {
	// Broker is host:port; tcp:// is implied.
	Broker         string
	ClientID       string
	TopicPrefix    string
	StatusInterval time.Duration
	QoS            byte
	PublishTimeout time.Duration
}

// DefaultConfig returns emitter defaults with a fresh client id
func DefaultConfig() Config {
	return Config{
		ClientID:       "reactive-signs-" + uuid.NewString()[:8],
		TopicPrefix:    exhibition.DefaultMQTTPrefix,
		StatusInterval: exhibition.DefaultStatusEvery,
		PublishTimeout: 2 * time.Second,
	}
}

// Source is what the emitter reads; *exhibition.App satisfies it
type Source interface {
	Status() exhibition.Status
}

// PosterEvent is the payload of <prefix>/poster
type PosterEvent struct {
	Index      int       `json:"index"`
	Name       string    `json:"name"`
	Generation uint64    `json:"generation"`
	Time       time.Time `json:"time"`
}

// publisher is the part of mqtt.Client the emitter publishes through
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Emitter publishes installation state to MQTT
type Emitter struct {
	cfg    Config
	logger *slog.Logger

	client mqtt.Client
	pub    publisher

	events chan PosterEvent

	mu         sync.RWMutex
	connected  bool
	published  map[string]uint64
	failures   uint64
	overflow   uint64
	lastPoster int
}

// New creates an emitter; call Connect before Run
func New(cfg Config) *Emitter {
	def := DefaultConfig()
	if cfg.ClientID == "" {
		cfg.ClientID = def.ClientID
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = def.TopicPrefix
	}
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = def.StatusInterval
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}
	return &Emitter{
		cfg:        cfg,
		logger:     log.Component("emitter").With("broker", cfg.Broker),
		events:     make(chan PosterEvent, eventBuffer),
		published:  make(map[string]uint64),
		lastPoster: -1,
	}
}

// Connect dials the broker. The client keeps reconnecting on its own
// after the first connection.
func (e *Emitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetWill(e.Topic("online"), "false", 1, true)

	opts.OnConnect = func(c mqtt.Client) {
		e.setConnected(true)
		e.logger.Info("mqtt connection established", "client_id", e.cfg.ClientID)
		c.Publish(e.Topic("online"), 1, true, "true")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.setConnected(false)
		e.logger.Warn("mqtt connection lost, will auto-reconnect", "error", err)
	}

	e.client = mqtt.NewClient(opts)
	e.pub = e.client

	e.logger.Info("connecting to mqtt broker")
	token := e.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("emitter: mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("emitter: mqtt connection failed: %w", err)
	}
	e.setConnected(true)
	return nil
}

// Topic returns prefix/name
func (e *Emitter) Topic(name string) string {
	return e.cfg.TopicPrefix + "/" + name
}

// PosterChanged queues a poster event for st. It never blocks, so it is
// safe as a scheduler OnChange callback; when the queue is full the event
// is counted and dropped, and the next status tick catches up.
func (e *Emitter) PosterChanged(st scheduler.Status) {
	if st.ActiveName == "" {
		return
	}
	ev := PosterEvent{
		Index:      st.Active,
		Name:       st.ActiveName,
		Generation: st.Generation,
		Time:       time.Now().UTC(),
	}
	select {
	case e.events <- ev:
	default:
		e.mu.Lock()
		e.overflow++
		e.mu.Unlock()
	}
}

// Run publishes queued poster events as they arrive and the status of
// src every StatusInterval, until ctx ends. Publishing happens on this
// goroutine, never on the frame loop.
func (e *Emitter) Run(ctx context.Context, src Source) {
	ticker := time.NewTicker(e.cfg.StatusInterval)
	defer ticker.Stop()

	e.tick(src.Status())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			e.poster(ev)
		case <-ticker.C:
			e.tick(src.Status())
		}
	}
}

// tick publishes st and republishes the active poster if the last
// poster publish was lost
func (e *Emitter) tick(st exhibition.Status) {
	sched := st.Scheduler
	if sched.ActiveName != "" {
		e.poster(PosterEvent{
			Index:      sched.Active,
			Name:       sched.ActiveName,
			Generation: sched.Generation,
			Time:       time.Now().UTC(),
		})
	}
	if err := e.PublishStatus(st); err != nil {
		e.logger.Debug("status publish failed", "error", err)
	}
}

// poster publishes ev unless that poster is already the published one.
// Transition starts report the unchanged active poster and are skipped.
func (e *Emitter) poster(ev PosterEvent) {
	e.mu.RLock()
	same := ev.Index == e.lastPoster
	e.mu.RUnlock()
	if same {
		return
	}

	if err := e.PublishPoster(ev); err != nil {
		e.logger.Debug("poster publish failed", "poster", ev.Name, "error", err)
		return
	}
	e.mu.Lock()
	e.lastPoster = ev.Index
	e.mu.Unlock()
}

// PublishPoster publishes ev as the retained poster message
func (e *Emitter) PublishPoster(ev PosterEvent) error {
	return e.publishJSON(e.Topic("poster"), true, ev)
}

// PublishStatus publishes st on the status topic
func (e *Emitter) PublishStatus(st exhibition.Status) error {
	return e.publishJSON(e.Topic("status"), false, st)
}

func (e *Emitter) publishJSON(topic string, retained bool, v any) error {
	if !e.isConnected() {
		e.fail()
		return ErrNotConnected
	}

	payload, err := json.Marshal(v)
	if err != nil {
		e.fail()
		return fmt.Errorf("emitter: marshal %s: %w", topic, err)
	}

	token := e.pub.Publish(topic, e.cfg.QoS, retained, payload)
	if !token.WaitTimeout(e.cfg.PublishTimeout) {
		e.fail()
		return fmt.Errorf("emitter: publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		e.fail()
		return fmt.Errorf("emitter: publish %s: %w", topic, err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()
	return nil
}

// Disconnect closes the broker connection
func (e *Emitter) Disconnect() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Publish(e.Topic("online"), 1, true, "false").WaitTimeout(time.Second)
		e.client.Disconnect(250)
		e.logger.Info("mqtt disconnected")
	}
	e.setConnected(false)
}

// Stats contains emitter statistics
type Stats struct {
	Connected bool
	Published map[string]uint64
	Failures  uint64
	// Overflow counts poster events dropped on a full queue.
	Overflow uint64
}

// Stats returns a copy of the emitter statistics
func (e *Emitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	published := make(map[string]uint64, len(e.published))
	for k, v := range e.published {
		published[k] = v
	}
	return Stats{Connected: e.connected, Published: published, Failures: e.failures, Overflow: e.overflow}
}

func (e *Emitter) setConnected(on bool) {
	e.mu.Lock()
	e.connected = on
	e.mu.Unlock()
}

func (e *Emitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *Emitter) fail() {
	e.mu.Lock()
	e.failures++
	e.mu.Unlock()
}
