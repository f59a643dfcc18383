package bridge

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/monitoring"
)

// DefaultThrottleWindow bounds how often resize reports reach the handler.
const DefaultThrottleWindow = 150 * time.Millisecond

// Config configures a Channel at construction. AllowedOrigins entries are
// exact origins; a configured origin also matches itself plus a numeric
// port. ExpectedSource, when set, resolves the one sender the channel
// accepts events from.
type Config struct {
	AllowedOrigins  []string
	ExpectedSource  func() any
	SketchID        string
	RequireSketchID bool
	ThrottleWindow  time.Duration
	Handlers        map[string]Handler
	Logger          *logging.Logger
	Metrics         *monitoring.Metrics
}

// Channel validates and routes messages from one execution context. It is
// owned by a single surface; create on mount, Reset before each re-run,
// Close on unmount.
type Channel struct {
	mu             sync.Mutex
	allowedOrigins map[string]struct{}
	expectedSource func() any
	sketchID       string
	requireSketch  bool
	handlers       map[string]Handler

	throttle *resizeThrottle
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewChannel creates a channel from configuration.
func NewChannel(cfg Config) *Channel {
	log := cfg.Logger
	if log == nil {
		log = logging.NewDefault()
	}
	window := cfg.ThrottleWindow
	if window <= 0 {
		window = DefaultThrottleWindow
	}

	c := &Channel{
		allowedOrigins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		expectedSource: cfg.ExpectedSource,
		sketchID:       cfg.SketchID,
		requireSketch:  cfg.RequireSketchID,
		handlers:       make(map[string]Handler, len(cfg.Handlers)),
		log:            log,
		metrics:        cfg.Metrics,
	}
	for _, origin := range cfg.AllowedOrigins {
		c.allowedOrigins[origin] = struct{}{}
	}
	for typ, fn := range cfg.Handlers {
		c.handlers[typ] = fn
	}
	c.throttle = newResizeThrottle(window, c.deliverResize, cfg.Metrics)
	return c
}

// RegisterHandler registers or replaces the handler for a message type.
func (c *Channel) RegisterHandler(typ string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[typ] = fn
}

// AddAllowedOrigin grows the allowed-origin set. Origins are stored as
// given; wildcards are not supported.
func (c *Channel) AddAllowedOrigin(origin string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowedOrigins[origin] = struct{}{}
}

// SetExpectedSource pins the one sender this channel accepts events from.
func (c *Channel) SetExpectedSource(resolve func() any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expectedSource = resolve
}

// Reset clears the resize throttle memory. Callers must invoke it before
// re-running a sketch so a run ending on previously seen dimensions still
// produces a notification.
func (c *Channel) Reset() {
	c.throttle.reset()
}

// Close releases timers. The channel must not be used afterwards.
func (c *Channel) Close() {
	c.throttle.reset()
}

// Handle validates one event and routes it. Guard failures are silent by
// design: they may be benign cross-talk from unrelated page activity.
func (c *Channel) Handle(ev Event) {
	if !c.originAllowed(ev.Origin) {
		c.reject("origin", zap.String("origin", ev.Origin))
		return
	}
	if !c.sourceAllowed(ev.Source) {
		c.reject("source")
		return
	}

	payload, ok := decodePayload(ev.Data)
	if !ok {
		c.reject("shape")
		return
	}
	typ, ok := payload["type"].(string)
	if !ok || typ == "" {
		c.reject("shape")
		return
	}

	if !c.identityAllowed(payload) {
		c.reject("identity", zap.String("type", typ))
		return
	}

	c.mu.Lock()
	handler, registered := c.handlers[typ]
	c.mu.Unlock()
	if !registered {
		c.log.Debug("no handler for message type", zap.String("type", typ))
		return
	}

	if typ == TypeResize {
		w, wok := payload["width"].(float64)
		h, hok := payload["height"].(float64)
		if !wok || !hok {
			c.reject("shape", zap.String("type", typ))
			return
		}
		c.throttle.observe(w, h, payload)
		return
	}

	if c.metrics != nil {
		c.metrics.MessagesAccepted.WithLabelValues(typ).Inc()
	}
	c.dispatch(handler, payload)
}

// deliverResize routes a coalesced resize payload through whatever handler
// is registered at delivery time. Acceptance is counted here, per delivery,
// so coalesced or malformed resizes never inflate the counter.
func (c *Channel) deliverResize(payload map[string]any) {
	c.mu.Lock()
	handler, registered := c.handlers[TypeResize]
	c.mu.Unlock()
	if registered {
		if c.metrics != nil {
			c.metrics.MessagesAccepted.WithLabelValues(TypeResize).Inc()
		}
		c.dispatch(handler, payload)
	}
}

// dispatch invokes a handler, containing panics so one bad handler cannot
// break delivery for subsequent events.
func (c *Channel) dispatch(handler Handler, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("message handler panicked", zap.Any("panic", r))
		}
	}()
	handler(payload)
}

func (c *Channel) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.allowedOrigins[origin]; ok {
		return true
	}
	for allowed := range c.allowedOrigins {
		if matchesWithPort(origin, allowed) {
			return true
		}
	}
	return false
}

// matchesWithPort accepts origin == allowed + ":" + digits. The boundary
// must be a colon so "http://localhost-attacker.com" never matches
// "http://localhost".
func matchesWithPort(origin, allowed string) bool {
	if !strings.HasPrefix(origin, allowed+":") {
		return false
	}
	port := origin[len(allowed)+1:]
	if port == "" {
		return false
	}
	for i := 0; i < len(port); i++ {
		if port[i] < '0' || port[i] > '9' {
			return false
		}
	}
	return true
}

func (c *Channel) sourceAllowed(source any) bool {
	c.mu.Lock()
	resolve := c.expectedSource
	c.mu.Unlock()
	if resolve == nil {
		return true
	}
	expected := resolve()
	if expected == nil {
		return true
	}
	return source == expected
}

func (c *Channel) identityAllowed(payload map[string]any) bool {
	sid, _ := payload[SketchIDField].(string)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requireSketch && sid == "" {
		return false
	}
	if c.sketchID != "" && sid != "" && sid != c.sketchID {
		return false
	}
	return true
}

func (c *Channel) reject(reason string, fields ...zap.Field) {
	if c.metrics != nil {
		c.metrics.MessagesRejected.WithLabelValues(reason).Inc()
	}
	c.log.Debug("message rejected", append([]zap.Field{zap.String("reason", reason)}, fields...)...)
}
