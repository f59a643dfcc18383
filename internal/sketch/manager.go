// Package sketch owns the lifecycle of mounted sketch surfaces: transpile,
// inject, execute, observe.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/id"
	"github.com/mjvo/sketchbridge/internal/linemap"
	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/monitoring"
	"github.com/mjvo/sketchbridge/internal/runtime"
	"github.com/mjvo/sketchbridge/internal/scaffold"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

// RuntimeOrigin is the synthetic origin headless runs report under. It is
// always part of a surface channel's allowed set.
const RuntimeOrigin = "goja://sketchbridge"

// ErrNotFound is returned for operations on unknown surface ids.
var ErrNotFound = errors.New("sketch surface not found")

// Config holds surface-channel defaults supplied by the host.
type Config struct {
	AllowedOrigins  []string
	ThrottleWindow  time.Duration
	RequireSketchID bool
}

// RunResult is the outcome of one execution attempt.
type RunResult struct {
	RunID      id.RunID               `json:"run_id"`
	Transpiled string                 `json:"transpiled"`
	Console    []runtime.ConsoleEntry `json:"console"`
	Errors     []string               `json:"errors"`
	Canvas     *CanvasSize            `json:"canvas,omitempty"`
	Duration   time.Duration          `json:"duration_ms"`
	Completed  bool                   `json:"completed"`
}

// Manager mounts, runs and unmounts sketch surfaces.
type Manager struct {
	cfg        Config
	transpiler *transpile.Transpiler
	runtime    *runtime.Runtime
	log        *logging.Logger
	metrics    *monitoring.Metrics

	surfaces syncMap
}

// NewManager wires the transpiler and runtime into a surface manager.
func NewManager(cfg Config, tr *transpile.Transpiler, rt *runtime.Runtime, log *logging.Logger, metrics *monitoring.Metrics) *Manager {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Manager{
		cfg:        cfg,
		transpiler: tr,
		runtime:    rt,
		log:        log,
		metrics:    metrics,
	}
}

// Mount creates a surface for source and installs its messaging channel
// with handlers for the closed message-type set.
func (m *Manager) Mount(source string) *Surface {
	s := &Surface{
		ID:        id.NewSketchID(),
		source:    source,
		state:     StateMounted,
		runToken:  new(int),
		createdAt: time.Now(),
	}

	origins := append([]string{RuntimeOrigin}, m.cfg.AllowedOrigins...)
	s.channel = bridge.NewChannel(bridge.Config{
		AllowedOrigins:  origins,
		ExpectedSource:  s.expectedSource,
		SketchID:        s.ID.String(),
		RequireSketchID: m.cfg.RequireSketchID,
		ThrottleWindow:  m.cfg.ThrottleWindow,
		Handlers: map[string]bridge.Handler{
			bridge.TypeReady:             m.onReady(s),
			bridge.TypeResize:            m.onResize(s),
			bridge.TypeError:             m.onError(s),
			bridge.TypeExecutionComplete: m.onComplete(s),
		},
		Logger:  m.log,
		Metrics: m.metrics,
	})

	m.surfaces.store(s.ID.String(), s)
	if m.metrics != nil {
		m.metrics.SurfacesActive.Inc()
	}
	m.log.Info("sketch surface mounted", zap.String("sketch_id", s.ID.String()))
	return s
}

// Get retrieves a surface by id string.
func (m *Manager) Get(sid string) (*Surface, bool) {
	return m.surfaces.load(sid)
}

// List snapshots every mounted surface.
func (m *Manager) List() []Info {
	var out []Info
	m.surfaces.each(func(s *Surface) {
		out = append(out, s.Info())
	})
	return out
}

// Unmount discards a surface, clearing its timers and handlers.
func (m *Manager) Unmount(sid string) bool {
	s, ok := m.surfaces.delete(sid)
	if !ok {
		return false
	}
	s.channel.Close()
	if m.metrics != nil {
		m.metrics.SurfacesActive.Dec()
	}
	m.log.Info("sketch surface unmounted", zap.String("sketch_id", sid))
	return true
}

// Attach pins an external execution context (a websocket connection) as the
// only sender the surface's source guard accepts.
func (m *Manager) Attach(sid string, sender any) error {
	s, ok := m.surfaces.load(sid)
	if !ok {
		return ErrNotFound
	}
	s.mu.Lock()
	s.activeSource = sender
	s.mu.Unlock()
	return nil
}

// Detach releases the pinned sender if it is still the active one.
func (m *Manager) Detach(sid string, sender any) {
	s, ok := m.surfaces.load(sid)
	if !ok {
		return
	}
	s.mu.Lock()
	if s.activeSource == sender {
		s.activeSource = nil
	}
	s.mu.Unlock()
}

// Run transpiles the surface's source and executes it headlessly. The
// returned error is non-nil only for transpile failures or internal faults;
// runtime sketch errors surface line-mapped inside the result.
func (m *Manager) Run(ctx context.Context, sid string) (*RunResult, error) {
	s, ok := m.surfaces.load(sid)
	if !ok {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	source := s.source
	s.console = nil
	s.errors = nil
	s.canvas = nil
	s.state = StateRunning
	s.activeSource = s.runToken
	s.mapper = linemap.New(source, 0)
	s.mu.Unlock()

	transpiled, err := m.transpiler.Transpile(source)
	if err != nil {
		m.countTranspile("error")
		m.countRun("syntax_error")
		s.setState(StateFailed)
		return nil, err
	}
	m.countTranspile("ok")

	sc := scaffold.Build()
	s.mu.Lock()
	s.mapper = linemap.New(source, sc.Lines)
	s.mu.Unlock()

	// resize dedup memory must not survive into the new attempt
	s.channel.Reset()

	emit := func(msgType string, fields map[string]any) {
		// a stale in-flight event from a superseded run is ignored
		if s.generation() != gen {
			return
		}
		payload := map[string]any{"type": msgType}
		payload[bridge.SketchIDField] = s.ID.String()
		for k, v := range fields {
			payload[k] = v
		}
		s.channel.Handle(bridge.Event{
			Origin: RuntimeOrigin,
			Source: s.runToken,
			Data:   payload,
		})
	}

	res, runErr := m.runtime.Execute(ctx, runtime.Program{
		SketchID: s.ID.String(),
		Scaffold: sc.Text,
		Source:   transpiled,
		Emit:     emit,
	})

	out := &RunResult{
		RunID:      id.NewRunID(),
		Transpiled: transpiled,
		Duration:   res.Duration,
		Completed:  runErr == nil,
	}

	if s.generation() == gen {
		s.mu.Lock()
		s.console = res.Console
		s.mu.Unlock()
		info := s.Info()
		out.Console = info.Console
		out.Errors = info.Errors
		out.Canvas = info.Canvas
	}

	if runErr != nil {
		m.countRun("runtime_error")
	} else {
		m.countRun("ok")
	}
	return out, nil
}

func (m *Manager) onReady(s *Surface) bridge.Handler {
	return func(payload map[string]any) {
		s.setState(StateRunning)
		m.log.Debug("execution context ready", zap.String("sketch_id", s.ID.String()))
	}
}

func (m *Manager) onResize(s *Surface) bridge.Handler {
	return func(payload map[string]any) {
		w, _ := payload["width"].(float64)
		h, _ := payload["height"].(float64)
		s.setCanvas(w, h)
		m.log.Debug("canvas resized",
			zap.String("sketch_id", s.ID.String()),
			zap.Float64("width", w),
			zap.Float64("height", h),
		)
	}
}

func (m *Manager) onError(s *Surface) bridge.Handler {
	return func(payload map[string]any) {
		msg, _ := payload["message"].(string)
		stack, _ := payload["stack"].(string)
		if stack != "" {
			msg = fmt.Sprintf("%s\n%s", msg, stack)
		}
		if msg == "" {
			msg = "unknown sketch error"
		}

		s.mu.Lock()
		mapper := s.mapper
		s.mu.Unlock()
		if mapper != nil {
			msg = mapper.MapMessage(msg)
		}
		s.appendError(msg)
		m.log.Info("sketch error reported",
			zap.String("sketch_id", s.ID.String()),
			zap.String("error", msg),
		)
	}
}

func (m *Manager) onComplete(s *Surface) bridge.Handler {
	return func(payload map[string]any) {
		s.mu.Lock()
		if s.state == StateRunning {
			s.state = StateComplete
		}
		s.mu.Unlock()
	}
}

func (m *Manager) countTranspile(status string) {
	if m.metrics != nil {
		m.metrics.TranspileTotal.WithLabelValues(status).Inc()
	}
}

func (m *Manager) countRun(status string) {
	if m.metrics != nil {
		m.metrics.RunsTotal.WithLabelValues(status).Inc()
	}
}
