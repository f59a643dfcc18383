package sketch

import (
	"sync"
	"time"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/id"
	"github.com/mjvo/sketchbridge/internal/linemap"
	"github.com/mjvo/sketchbridge/internal/runtime"
)

// State describes where a surface is in its lifecycle.
type State string

const (
	StateMounted  State = "mounted"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateFailed   State = "failed"
)

// CanvasSize is the last size reported through the resize channel.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Surface is one mounted sketch: its source, its messaging channel and the
// per-attempt mapping state. All mutation goes through its owning Manager.
type Surface struct {
	ID id.SketchID

	mu      sync.Mutex
	source  string
	state   State
	gen     uint64
	canvas  *CanvasSize
	console []runtime.ConsoleEntry
	errors  []string
	mapper  *linemap.Mapper

	channel *bridge.Channel
	// activeSource is the one sender currently allowed by the source
	// guard: the headless runtime's token during a run, or an attached
	// websocket connection. nil accepts any sender.
	activeSource any
	runToken     *int

	createdAt time.Time
}

// Info is a JSON-ready snapshot of a surface.
type Info struct {
	ID        string                 `json:"id"`
	State     State                  `json:"state"`
	Canvas    *CanvasSize            `json:"canvas,omitempty"`
	Console   []runtime.ConsoleEntry `json:"console"`
	Errors    []string               `json:"errors"`
	CreatedAt time.Time              `json:"created_at"`
}

// Channel exposes the surface's messaging channel for transports.
func (s *Surface) Channel() *bridge.Channel { return s.channel }

// Info returns a copied snapshot.
func (s *Surface) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{
		ID:        s.ID.String(),
		State:     s.state,
		Console:   append([]runtime.ConsoleEntry(nil), s.console...),
		Errors:    append([]string(nil), s.errors...),
		CreatedAt: s.createdAt,
	}
	if s.canvas != nil {
		c := *s.canvas
		info.Canvas = &c
	}
	return info
}

func (s *Surface) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// expectedSource resolves the sender the channel's source guard accepts.
func (s *Surface) expectedSource() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSource
}

func (s *Surface) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Surface) setCanvas(w, h float64) {
	s.mu.Lock()
	s.canvas = &CanvasSize{Width: w, Height: h}
	s.mu.Unlock()
}

func (s *Surface) appendError(msg string) {
	s.mu.Lock()
	s.errors = append(s.errors, msg)
	s.state = StateFailed
	s.mu.Unlock()
}
