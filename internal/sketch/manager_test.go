package sketch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/id"
	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/runtime"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	log := logging.NewNop()
	tr := transpile.New(nil, log)
	rt := runtime.New(runtime.Config{Timeout: 2 * time.Second}, nil, log)
	return NewManager(Config{
		AllowedOrigins: []string{"http://localhost"},
		ThrottleWindow: 40 * time.Millisecond,
	}, tr, rt, log, nil)
}

func TestMountRunComplete(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`
function setup() {
  createCanvas(200, 100);
  console.log("booted");
}
`)
	require.True(t, id.ValidSketchID(s.ID.String()))

	res, err := m.Run(context.Background(), s.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.NotEmpty(t, res.RunID)
	assert.Contains(t, res.Transpiled, "p.setup")
	assert.Contains(t, res.Transpiled, "p.createCanvas")

	require.NotNil(t, res.Canvas)
	assert.Equal(t, 200.0, res.Canvas.Width)
	assert.Equal(t, 100.0, res.Canvas.Height)

	require.NotEmpty(t, res.Console)
	assert.Equal(t, "log", res.Console[0].Level)
	assert.Equal(t, "booted", res.Console[0].Message)
	assert.Empty(t, res.Errors)

	assert.Equal(t, StateComplete, s.Info().State)
}

func TestRunReportsCanvasEveryAttempt(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`function setup() { createCanvas(200, 100); }`)

	for i := 0; i < 2; i++ {
		res, err := m.Run(context.Background(), s.ID.String())
		require.NoError(t, err)
		require.NotNil(t, res.Canvas, "attempt %d ended without a size report", i)
		assert.Equal(t, 200.0, res.Canvas.Width)
	}
}

func TestRunMapsRuntimeErrors(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`function setup() {
  createCanvas(50, 50);
  explode();
}`)

	res, err := m.Run(context.Background(), s.ID.String())
	require.NoError(t, err, "sketch faults are reported in the result, not as Run errors")
	assert.False(t, res.Completed)

	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "explode")
	assert.Equal(t, StateFailed, s.Info().State)
}

func TestRunSyntaxError(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`function setup( {`)

	_, err := m.Run(context.Background(), s.ID.String())
	require.Error(t, err)
	var serr *transpile.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Greater(t, serr.Line, 0)
	assert.Equal(t, StateFailed, s.Info().State)
}

func TestRunUnknownSurface(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Run(context.Background(), "sk_nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnmount(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`function setup() {}`)
	sid := s.ID.String()

	assert.Len(t, m.List(), 1)
	assert.True(t, m.Unmount(sid))
	assert.Empty(t, m.List())
	assert.False(t, m.Unmount(sid))

	_, ok := m.Get(sid)
	assert.False(t, ok)
}

func TestAttachPinsSender(t *testing.T) {
	m := newTestManager(t)
	s := m.Mount(`function setup() {}`)
	sid := s.ID.String()

	conn := new(int)
	require.NoError(t, m.Attach(sid, conn))

	errEvent := func(source any) bridge.Event {
		return bridge.Event{
			Origin: "http://localhost",
			Source: source,
			Data:   map[string]any{"type": bridge.TypeError, "message": "boom"},
		}
	}

	s.Channel().Handle(errEvent(new(int)))
	assert.Empty(t, s.Info().Errors, "unattached sender is refused")

	s.Channel().Handle(errEvent(conn))
	assert.Len(t, s.Info().Errors, 1)

	m.Detach(sid, conn)
	s.Channel().Handle(errEvent(nil))
	assert.Len(t, s.Info().Errors, 2, "any sender accepted after detach")
}

func TestAttachUnknownSurface(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.Attach("sk_nope", new(int)), ErrNotFound)
}
