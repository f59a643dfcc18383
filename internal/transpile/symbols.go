package transpile

// InstanceName is the handle every library reference is qualified through.
const InstanceName = "p"

// RenamePrefix is prepended to user-declared top-level bindings.
const RenamePrefix = "_"

// SymbolTable is the static set of recognized library names. It is plain
// configuration, never derived from a live runtime.
type SymbolTable struct {
	functions map[string]struct{}
	constants map[string]struct{}
	lifecycle map[string]struct{}
}

// NewSymbolTable builds a table from explicit name lists.
func NewSymbolTable(functions, constants, lifecycle []string) *SymbolTable {
	t := &SymbolTable{
		functions: make(map[string]struct{}, len(functions)),
		constants: make(map[string]struct{}, len(constants)),
		lifecycle: make(map[string]struct{}, len(lifecycle)),
	}
	for _, n := range functions {
		t.functions[n] = struct{}{}
	}
	for _, n := range constants {
		t.constants[n] = struct{}{}
	}
	for _, n := range lifecycle {
		t.lifecycle[n] = struct{}{}
	}
	return t
}

// Function reports whether name is a recognized global library function.
func (t *SymbolTable) Function(name string) bool {
	_, ok := t.functions[name]
	return ok
}

// Constant reports whether name is a recognized global library constant
// or environment variable (width, mouseX, ...).
func (t *SymbolTable) Constant(name string) bool {
	_, ok := t.constants[name]
	return ok
}

// Lifecycle reports whether name is a recognized lifecycle hook.
func (t *SymbolTable) Lifecycle(name string) bool {
	_, ok := t.lifecycle[name]
	return ok
}

// Functions lists every recognized global function name.
func (t *SymbolTable) Functions() []string {
	return keys(t.functions)
}

// Constants lists every recognized global constant name.
func (t *SymbolTable) Constants() []string {
	return keys(t.constants)
}

// LifecycleHooks lists every recognized lifecycle hook name.
func (t *SymbolTable) LifecycleHooks() []string {
	return keys(t.lifecycle)
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// DefaultSymbols returns the p5-style symbol table used by the bridge.
func DefaultSymbols() *SymbolTable {
	return NewSymbolTable(defaultFunctions, defaultConstants, defaultLifecycle)
}

var defaultLifecycle = []string{
	"preload", "setup", "draw",
	"mousePressed", "mouseReleased", "mouseClicked", "mouseMoved",
	"mouseDragged", "doubleClicked", "mouseWheel",
	"keyPressed", "keyReleased", "keyTyped",
	"touchStarted", "touchMoved", "touchEnded",
	"deviceMoved", "deviceTurned", "deviceShaken",
	"windowResized",
}

var defaultFunctions = []string{
	// structure / environment
	"createCanvas", "resizeCanvas", "noCanvas", "createGraphics",
	"pixelDensity", "frameRate", "noLoop", "loop", "redraw", "remove",
	"cursor", "noCursor", "fullscreen", "describe",
	// color
	"background", "fill", "noFill", "stroke", "noStroke", "strokeWeight",
	"color", "colorMode", "alpha", "red", "green", "blue", "hue",
	"saturation", "brightness", "lerpColor", "clear", "erase", "noErase",
	// shape
	"point", "line", "rect", "square", "ellipse", "circle", "arc",
	"triangle", "quad", "beginShape", "endShape", "vertex", "curveVertex",
	"bezierVertex", "quadraticVertex", "bezier", "curve", "rectMode",
	"ellipseMode", "strokeCap", "strokeJoin", "smooth", "noSmooth",
	// transform
	"translate", "rotate", "rotateX", "rotateY", "rotateZ", "scale",
	"shearX", "shearY", "push", "pop", "applyMatrix", "resetMatrix",
	// math
	"abs", "ceil", "constrain", "dist", "exp", "floor", "lerp", "log",
	"mag", "map", "max", "min", "norm", "pow", "round", "sq", "sqrt",
	"fract", "random", "randomSeed", "randomGaussian", "noise",
	"noiseSeed", "noiseDetail", "sin", "cos", "tan", "asin", "acos",
	"atan", "atan2", "degrees", "radians", "angleMode", "createVector",
	// typography / text
	"text", "textAlign", "textSize", "textFont", "textLeading",
	"textStyle", "textWidth", "textAscent", "textDescent", "loadFont",
	// image
	"loadImage", "image", "imageMode", "tint", "noTint", "createImage",
	"loadPixels", "updatePixels", "get", "set", "filter", "blend", "copy",
	"save", "saveCanvas", "saveFrames",
	// data conversion
	"float", "int", "str", "boolean", "byte", "char", "unchar", "hex",
	"unhex", "nf", "nfc", "nfp", "nfs",
	// input
	"keyIsDown", "day", "hour", "minute", "millis", "month", "second",
	"year",
	// events / misc
	"print", "shuffle", "append", "reverse", "sort", "splice", "subset",
}

var defaultConstants = []string{
	// math constants
	"PI", "TWO_PI", "HALF_PI", "QUARTER_PI", "TAU",
	// environment
	"width", "height", "windowWidth", "windowHeight", "displayWidth",
	"displayHeight", "deviceOrientation", "frameCount", "deltaTime",
	"focused", "pixels",
	// input state
	"mouseX", "mouseY", "pmouseX", "pmouseY", "winMouseX", "winMouseY",
	"movedX", "movedY", "mouseButton", "mouseIsPressed", "touches",
	"key", "keyCode", "keyIsPressed",
	"accelerationX", "accelerationY", "accelerationZ",
	"rotationX", "rotationY", "rotationZ",
	// mode and alignment constants
	"DEGREES", "RADIANS", "CORNER", "CORNERS", "RADIUS", "CENTER",
	"LEFT", "RIGHT", "TOP", "BOTTOM", "BASELINE",
	"POINTS", "LINES", "TRIANGLES", "TRIANGLE_FAN", "TRIANGLE_STRIP",
	"QUADS", "QUAD_STRIP", "CLOSE", "OPEN", "CHORD", "PIE", "ARC",
	"RGB", "HSB", "HSL", "BLEND", "ADD", "MULTIPLY", "SCREEN",
	"NORMAL", "ITALIC", "BOLD", "BOLDITALIC",
	"BACKSPACE", "DELETE", "ENTER", "RETURN", "TAB", "ESCAPE", "SHIFT",
	"CONTROL", "OPTION", "ALT", "UP_ARROW", "DOWN_ARROW", "LEFT_ARROW",
	"RIGHT_ARROW",
}
