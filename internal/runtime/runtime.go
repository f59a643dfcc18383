// Package runtime executes transpiled sketch code inside an embedded
// JavaScript engine, standing in for the browser-side execution context.
// It reports lifecycle events (ready, resize, error, execution-complete)
// through an emitter instead of window messaging.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/scaffold"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

// Config defines execution limits.
type Config struct {
	Timeout      time.Duration // wall-clock limit per run
	MaxCallStack int           // goja call stack depth limit
}

// DefaultConfig returns the limits used for untrusted sketch code.
func DefaultConfig() Config {
	return Config{
		Timeout:      5 * time.Second,
		MaxCallStack: 1024,
	}
}

// ConsoleEntry is one captured console line.
type ConsoleEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Emitter posts one lifecycle message toward the controlling surface.
// fields may be nil for types without extra payload.
type Emitter func(msgType string, fields map[string]any)

// Result holds the outcome of one run.
type Result struct {
	Console  []ConsoleEntry
	Duration time.Duration
}

// Program is one prepared execution: scaffold ahead of transpiled user code.
type Program struct {
	SketchID string
	Scaffold string
	Source   string
	Emit     Emitter
}

// Runtime executes programs. A fresh VM is created per run; nothing leaks
// between attempts.
type Runtime struct {
	config Config
	table  *transpile.SymbolTable
	log    *logging.Logger
}

// New creates a runtime over the given symbol table.
func New(cfg Config, table *transpile.SymbolTable, log *logging.Logger) *Runtime {
	if table == nil {
		table = transpile.DefaultSymbols()
	}
	if log == nil {
		log = logging.NewDefault()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Runtime{config: cfg, table: table, log: log}
}

// Execute runs scaffold+source, then invokes setup and a single draw frame.
// Runtime errors are emitted as error messages and also returned.
func (r *Runtime) Execute(ctx context.Context, prog Program) (*Result, error) {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}

	// Shadow Node-style globals so sketch code cannot reach them.
	for _, name := range []string{"require", "process", "module", "exports"} {
		vm.Set(name, goja.Undefined())
	}

	res := &Result{}
	var consoleMu sync.Mutex
	record := func(level, msg string) {
		consoleMu.Lock()
		res.Console = append(res.Console, ConsoleEntry{Level: level, Message: msg})
		consoleMu.Unlock()
	}

	vm.Set(scaffold.RecordFunc, func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 2 {
			record(call.Arguments[0].String(), call.Arguments[1].String())
		}
		return goja.Undefined()
	})

	emit := prog.Emit
	if emit == nil {
		emit = func(string, map[string]any) {}
	}
	inst := newInstance(vm, r.table, emit, record)
	vm.Set(scaffold.InstanceBinding, inst)

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	start := time.Now()
	emit(bridge.TypeReady, nil)

	if _, err := vm.RunScript("sketch.js", prog.Scaffold+prog.Source); err != nil {
		return r.fail(res, prog, emit, start, err)
	}

	for _, hook := range []string{"setup", "draw"} {
		fn, ok := goja.AssertFunction(inst.Get(hook))
		if !ok {
			continue
		}
		if _, err := fn(inst); err != nil {
			return r.fail(res, prog, emit, start, err)
		}
	}

	res.Duration = time.Since(start)
	emit(bridge.TypeExecutionComplete, nil)
	return res, nil
}

func (r *Runtime) fail(res *Result, prog Program, emit Emitter, start time.Time, err error) (*Result, error) {
	res.Duration = time.Since(start)

	fields := map[string]any{"message": err.Error()}
	var ex *goja.Exception
	if x, ok := err.(*goja.Exception); ok {
		ex = x
		fields["stack"] = ex.String()
	}
	r.log.Debug("sketch execution failed",
		zap.String("sketch_id", prog.SketchID),
		zap.Error(err),
	)
	emit(bridge.TypeError, fields)
	return res, err
}
