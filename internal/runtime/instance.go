package runtime

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

// newInstance builds the sketch instance handle. Recognized library
// functions exist as no-ops so transpiled code never trips over a missing
// property; canvas sizing and a handful of math helpers behave for real so
// headless runs produce useful resize reports and console output.
func newInstance(vm *goja.Runtime, table *transpile.SymbolTable, emit Emitter, record func(level, msg string)) *goja.Object {
	inst := vm.NewObject()

	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range table.Functions() {
		inst.Set(name, noop)
	}

	// constants default to their lowercase names (mode/alignment strings),
	// numeric and environment values overwrite below
	for _, name := range table.Constants() {
		inst.Set(name, strings.ToLower(name))
	}
	inst.Set("PI", math.Pi)
	inst.Set("TWO_PI", 2*math.Pi)
	inst.Set("TAU", 2*math.Pi)
	inst.Set("HALF_PI", math.Pi/2)
	inst.Set("QUARTER_PI", math.Pi/4)
	for _, name := range []string{
		"width", "height", "windowWidth", "windowHeight",
		"mouseX", "mouseY", "pmouseX", "pmouseY",
		"frameCount", "deltaTime",
	} {
		inst.Set(name, 0)
	}
	inst.Set("mouseIsPressed", false)
	inst.Set("keyIsPressed", false)

	setCanvas := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		w := call.Arguments[0].ToFloat()
		h := call.Arguments[1].ToFloat()
		inst.Set("width", w)
		inst.Set("height", h)
		emit(bridge.TypeResize, map[string]any{"width": w, "height": h})
		return goja.Undefined()
	}
	inst.Set("createCanvas", setCanvas)
	inst.Set("resizeCanvas", setCanvas)

	inst.Set("print", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		record("log", strings.Join(parts, " "))
		return goja.Undefined()
	})

	start := time.Now()
	inst.Set("millis", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(float64(time.Since(start).Milliseconds()))
	})

	installMath(vm, inst)
	return inst
}

// installMath wires the math helpers sketches lean on most.
func installMath(vm *goja.Runtime, inst *goja.Object) {
	unary := map[string]func(float64) float64{
		"abs":     math.Abs,
		"ceil":    math.Ceil,
		"floor":   math.Floor,
		"round":   math.Round,
		"sqrt":    math.Sqrt,
		"sq":      func(x float64) float64 { return x * x },
		"sin":     math.Sin,
		"cos":     math.Cos,
		"tan":     math.Tan,
		"asin":    math.Asin,
		"acos":    math.Acos,
		"atan":    math.Atan,
		"exp":     math.Exp,
		"log":     math.Log,
		"degrees": func(x float64) float64 { return x * 180 / math.Pi },
		"radians": func(x float64) float64 { return x * math.Pi / 180 },
	}
	for name, fn := range unary {
		fn := fn
		inst.Set(name, func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				return goja.Undefined()
			}
			return vm.ToValue(fn(call.Arguments[0].ToFloat()))
		})
	}

	inst.Set("atan2", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		return vm.ToValue(math.Atan2(call.Arguments[0].ToFloat(), call.Arguments[1].ToFloat()))
	})

	inst.Set("dist", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 4 {
			return goja.Undefined()
		}
		dx := call.Arguments[2].ToFloat() - call.Arguments[0].ToFloat()
		dy := call.Arguments[3].ToFloat() - call.Arguments[1].ToFloat()
		return vm.ToValue(math.Hypot(dx, dy))
	})

	inst.Set("constrain", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			return goja.Undefined()
		}
		v := call.Arguments[0].ToFloat()
		lo := call.Arguments[1].ToFloat()
		hi := call.Arguments[2].ToFloat()
		return vm.ToValue(math.Min(math.Max(v, lo), hi))
	})

	inst.Set("lerp", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			return goja.Undefined()
		}
		a := call.Arguments[0].ToFloat()
		b := call.Arguments[1].ToFloat()
		t := call.Arguments[2].ToFloat()
		return vm.ToValue(a + (b-a)*t)
	})

	inst.Set("map", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 5 {
			return goja.Undefined()
		}
		v := call.Arguments[0].ToFloat()
		a1 := call.Arguments[1].ToFloat()
		a2 := call.Arguments[2].ToFloat()
		b1 := call.Arguments[3].ToFloat()
		b2 := call.Arguments[4].ToFloat()
		if a2 == a1 {
			return vm.ToValue(b1)
		}
		return vm.ToValue(b1 + (v-a1)*(b2-b1)/(a2-a1))
	})

	inst.Set("min", variadicFold(vm, math.Min))
	inst.Set("max", variadicFold(vm, math.Max))

	rng := newRand()
	inst.Set("random", func(call goja.FunctionCall) goja.Value {
		switch len(call.Arguments) {
		case 0:
			return vm.ToValue(rng.Float64())
		case 1:
			return vm.ToValue(rng.Float64() * call.Arguments[0].ToFloat())
		default:
			lo := call.Arguments[0].ToFloat()
			hi := call.Arguments[1].ToFloat()
			return vm.ToValue(lo + rng.Float64()*(hi-lo))
		}
	})
	inst.Set("randomSeed", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 1 {
			rng.Seed(int64(call.Arguments[0].ToFloat()))
		}
		return goja.Undefined()
	})
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func variadicFold(vm *goja.Runtime, fold func(a, b float64) float64) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		acc := call.Arguments[0].ToFloat()
		for _, a := range call.Arguments[1:] {
			acc = fold(acc, a.ToFloat())
		}
		return vm.ToValue(acc)
	}
}
