package transpile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjvo/sketchbridge/internal/logging"
)

func newTranspiler() *Transpiler {
	return New(DefaultSymbols(), logging.NewNop())
}

func TestTranspileRenaming(t *testing.T) {
	tr := newTranspiler()

	tests := []struct {
		name        string
		source      string
		contains    []string
		notContains []string
	}{
		{
			name:        "top-level let renamed at declaration and use",
			source:      "let size = 10;\nfunction draw() { circle(size, size, size); }",
			contains:    []string{"let _size = 10", "p.circle(_size, _size, _size)"},
			notContains: []string{"circle(size"},
		},
		{
			name:     "object literal key untouched",
			source:   "let size = 10;\nconst obj = { size: 1 };",
			contains: []string{"let _size = 10", "{ size: 1 }"},
		},
		{
			name:        "shorthand expanded before renaming",
			source:      "let size = 10;\nconst obj = { size };",
			contains:    []string{"{ size: _size }"},
			notContains: []string{"{ _size }"},
		},
		{
			name:     "member property name untouched",
			source:   "let size = 10;\nconst n = other.size + size;",
			contains: []string{"other.size + _size"},
		},
		{
			name:     "assignment left and right hand sides renamed",
			source:   "let a = 1;\nlet b = 2;\nfunction draw() { a = b + a; }",
			contains: []string{"_a = _b + _a"},
		},
		{
			name:        "already prefixed name left alone",
			source:      "let _size = 10;\nfunction draw() { circle(_size, 1, 1); }",
			contains:    []string{"let _size = 10", "p.circle(_size, 1, 1)"},
			notContains: []string{"__size"},
		},
		{
			name:        "user declaration shadows library constant",
			source:      "let width = 3;\nfunction draw() { rect(0, 0, width, 1); }",
			contains:    []string{"let _width = 3", "p.rect(0, 0, _width, 1)"},
			notContains: []string{"p.width"},
		},
		{
			name:     "method key untouched in class body",
			source:   "let size = 1;\nclass Dot { size() { return size; } }",
			contains: []string{"size() { return _size; }"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transpile(tt.source)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.notContains {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestTranspileGlobalRewrite(t *testing.T) {
	tr := newTranspiler()

	tests := []struct {
		name        string
		source      string
		contains    []string
		notContains []string
	}{
		{
			name:     "function declaration lifecycle hoisted",
			source:   "function setup() { createCanvas(200, 100); }",
			contains: []string{"p.setup = ", "p.createCanvas(200, 100)"},
		},
		{
			name:     "arrow lifecycle hoisted",
			source:   "const setup = () => { createCanvas(100, 100); };",
			contains: []string{"p.setup = () => { p.createCanvas(100, 100); }"},
		},
		{
			name:     "function expression lifecycle hoisted",
			source:   "var draw = function () { background(0); };",
			contains: []string{"p.draw = function () { p.background(0); }"},
		},
		{
			name:     "async lifecycle keeps async",
			source:   "async function setup() { createCanvas(10, 10); }",
			contains: []string{"p.setup = async function", "p.createCanvas(10, 10)"},
		},
		{
			name:     "bare lifecycle assignment qualified",
			source:   "setup = function () { background(255); };",
			contains: []string{"p.setup = function () { p.background(255); }"},
		},
		{
			name:     "recognized constant qualified",
			source:   "function draw() { ellipse(mouseX, mouseY, 10, 10); }",
			contains: []string{"p.ellipse(p.mouseX, p.mouseY, 10, 10)"},
		},
		{
			name:        "constant in key position untouched",
			source:      "const modes = { CENTER: 1 };\nfunction draw() { rectMode(CENTER); }",
			contains:    []string{"{ CENTER: 1 }", "p.rectMode(p.CENTER)"},
			notContains: []string{"{ p.CENTER: 1 }"},
		},
		{
			name:        "unknown call untouched",
			source:      "function draw() { helper(1); }\nfunction helper(n) { return n; }",
			contains:    []string{"helper(1)"},
			notContains: []string{"p.helper"},
		},
		{
			name:        "user function shadows library name",
			source:      "const random = 4;\nfunction draw() { circle(random, 1, 1); }",
			contains:    []string{"const _random = 4", "p.circle(_random, 1, 1)"},
			notContains: []string{"p.random"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transpile(tt.source)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.notContains {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestTranspileReachesNestedPositions(t *testing.T) {
	tr := newTranspiler()

	tests := []struct {
		name        string
		source      string
		contains    []string
		notContains []string
	}{
		{
			name: "control flow nesting",
			source: "let size = 10;\n" +
				"function draw() { if (size > 5) { while (size < 20) { size = size + 1; } } }",
			contains: []string{"if (_size > 5)", "while (_size < 20)", "_size = _size + 1"},
		},
		{
			name: "switch and catch",
			source: "let size = 1;\n" +
				"function draw() { try { switch (size) { case 1: circle(size, 1, 1); break; } } catch (e) { print(e); } }",
			contains: []string{"switch (_size)", "p.circle(_size, 1, 1)", "p.print(e)"},
		},
		{
			name:     "template literal expression",
			source:   "let size = 2;\nfunction draw() { text(\x60s=${size}\x60, 10, 10); }",
			contains: []string{"p.text(\x60s=${_size}\x60, 10, 10)"},
		},
		{
			name: "for-of over a renamed collection",
			source: "let items = [1, 2];\n" +
				"function draw() { for (const item of items) { circle(item, 1, 1); } }",
			contains: []string{"for (const item of _items)", "p.circle(item, 1, 1)"},
		},
		{
			name: "classic for loop clauses",
			source: "let size = 3;\n" +
				"function draw() { for (let i = 0; i < size; i = i + 1) { point(i, size); } }",
			contains: []string{"i < _size", "p.point(i, _size)"},
		},
		{
			name: "spread new and conditional",
			source: "let size = 2;\n" +
				"function draw() { const d = new Dot(...[size]); circle(size > 1 ? size : 0, 1, 1); }",
			contains: []string{"new Dot(...[_size])", "p.circle(_size > 1 ? _size : 0, 1, 1)"},
		},
		{
			name: "class field and static block",
			source: "let size = 1;\n" +
				"class Dot { r = size; static { size = 2; } }",
			contains: []string{"r = _size", "_size = 2"},
		},
		{
			name: "destructuring default rewritten but targets kept",
			source: "let size = 5;\n" +
				"function draw() { const { a = size, b } = opts(); circle(a, b, size); }",
			contains:    []string{"{ a = _size, b }", "p.circle(a, b, _size)"},
			notContains: []string{"p.a", "p.b"},
		},
		{
			name: "array destructuring targets shield library names",
			source:      "function draw() { let [width, height] = pt(); rect(0, 0, 1, 1); }",
			contains:    []string{"let [width, height] = pt()", "p.rect(0, 0, 1, 1)"},
			notContains: []string{"[p.width", "p.height]"},
		},
		{
			name:        "rest parameter shields library names",
			source:      "function draw() { pick((...width) => 1); }",
			contains:    []string{"(...width) => 1"},
			notContains: []string{"...p.width"},
		},
		{
			name:        "for-of declaration target shields library names",
			source:      "function draw() { for (const width of sizes()) { point(0, 0); } }",
			contains:    []string{"for (const width of"},
			notContains: []string{"for (const p.width"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transpile(tt.source)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, not := range tt.notContains {
				assert.NotContains(t, out, not)
			}
		})
	}
}

func TestTranspileIdempotent(t *testing.T) {
	tr := newTranspiler()

	sources := []string{
		"let size = 10;\nfunction setup() { createCanvas(size, size); }",
		"const setup = () => { background(PI); };",
		"let a = 1;\nconst obj = { a };\nfunction draw() { ellipse(mouseX, a, 5, 5); }",
	}

	for _, source := range sources {
		once, err := tr.Transpile(source)
		require.NoError(t, err)
		twice, err := tr.Transpile(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "second transpile must not rewrite further")
	}
}

func TestTranspileSyntaxError(t *testing.T) {
	tr := newTranspiler()

	out, err := tr.Transpile("function setup( {")
	require.Error(t, err)
	assert.Empty(t, out, "no partial output on parse failure")

	serr, ok := err.(*SyntaxError)
	require.True(t, ok, "parse failure must be a *SyntaxError")
	assert.NotEmpty(t, serr.Detail)
	assert.Greater(t, serr.Line, 0)
}

func TestTranspilePreservesLineStructure(t *testing.T) {
	tr := newTranspiler()

	source := "let size = 10;\n\nfunction setup() {\n  createCanvas(size, 100);\n}\n"
	out, err := tr.Transpile(source)
	require.NoError(t, err)

	assert.Equal(t, countLines(source), countLines(out),
		"patching must not add or remove lines")
}

func countLines(s string) int {
	n := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
