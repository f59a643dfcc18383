package transpile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/logging"
)

// SyntaxError reports that the sketch source failed to parse. No partial
// output accompanies it; the run is fatal and the detail is shown verbatim.
type SyntaxError struct {
	Line   int
	Column int
	Detail string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Detail)
	}
	return fmt.Sprintf("syntax error: %s", e.Detail)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Transpiler converts global-mode sketch source into instance-mode source.
// Each call is independent; no state survives between calls.
type Transpiler struct {
	table *SymbolTable
	log   *logging.Logger
}

// New creates a transpiler over the given symbol table.
func New(table *SymbolTable, log *logging.Logger) *Transpiler {
	if table == nil {
		table = DefaultSymbols()
	}
	if log == nil {
		log = logging.NewDefault()
	}
	return &Transpiler{table: table, log: log}
}

// Transpile parses source, applies the rename and global-rewrite passes and
// returns the patched text. A parse failure returns a *SyntaxError.
func (t *Transpiler) Transpile(source string) (string, error) {
	prog, err := parser.ParseFile(nil, "sketch.js", source, 0)
	if err != nil {
		serr := asSyntaxError(err)
		t.log.Debug("sketch failed to parse",
			zap.Int("line", serr.Line),
			zap.String("detail", serr.Detail),
		)
		return "", serr
	}

	r := &rewriter{
		src:     source,
		table:   t.table,
		renames: collectRenames(prog, t.table),
		ed:      &editor{},
	}
	r.hoistLifecycle(prog)
	walk(r, prog)

	out, err := r.ed.apply(source)
	if err != nil {
		return "", fmt.Errorf("transpile: %w", err)
	}
	if _, err := parser.ParseFile(nil, "sketch.js", out, 0); err != nil {
		return "", fmt.Errorf("transpile produced unparseable output: %w", err)
	}
	return out, nil
}

var errPosition = regexp.MustCompile(`Line (\d+):(\d+)`)

func asSyntaxError(err error) *SyntaxError {
	serr := &SyntaxError{Detail: err.Error(), Err: err}
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		serr.Line = list[0].Position.Line
		serr.Column = list[0].Position.Column
		serr.Detail = list[0].Message
		return serr
	}
	// the parser formats positions as "Line N:C" when it does not hand
	// back a structured list
	if m := errPosition.FindStringSubmatch(serr.Detail); m != nil {
		serr.Line, _ = strconv.Atoi(m[1])
		serr.Column, _ = strconv.Atoi(m[2])
	}
	return serr
}

// collectRenames gathers every top-level var/let/const identifier that is
// not a lifecycle hook. Names already carrying the prefix are left alone so
// transpiling output a second time renames nothing further.
func collectRenames(prog *ast.Program, table *SymbolTable) map[string]string {
	renames := make(map[string]string)
	add := func(b *ast.Binding) {
		id, ok := b.Target.(*ast.Identifier)
		if !ok {
			return
		}
		name := string(id.Name)
		if table.Lifecycle(name) || len(name) == 0 {
			return
		}
		if name[:1] == RenamePrefix {
			return
		}
		if _, seen := renames[name]; !seen {
			renames[name] = RenamePrefix + name
		}
	}
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.VariableStatement:
			for _, b := range s.List {
				add(b)
			}
		case *ast.LexicalDeclaration:
			for _, b := range s.List {
				add(b)
			}
		}
	}
	return renames
}

// rewriter walks the tree once, recording text patches for both passes.
// The rename map is local to one Transpile call by construction.
type rewriter struct {
	src     string
	table   *SymbolTable
	renames map[string]string
	ed      *editor
}

func (r *rewriter) Exit(ast.Node) {}

func (r *rewriter) Enter(n ast.Node) visitor {
	switch n := n.(type) {
	case *ast.Identifier:
		r.identifier(n)
		return nil

	case *ast.DotExpression:
		// property names after '.' are never rewritten
		walk(r, n.Left)
		return nil

	case *ast.Binding:
		// binding targets may be renamed but never become property accesses
		r.bindingTarget(n.Target)
		if n.Initializer != nil {
			walk(r, n.Initializer)
		}
		return nil

	case *ast.PropertyKeyed:
		if n.Computed {
			walk(r, n.Key)
		}
		walk(r, n.Value)
		return nil

	case *ast.PropertyShort:
		r.shorthand(n)
		return nil

	case *ast.ObjectPattern:
		r.objectPattern(n)
		return nil

	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			r.bindingElement(el)
		}
		r.bindingTarget(n.Rest)
		return nil

	case *ast.ParameterList:
		for _, b := range n.List {
			if b != nil {
				walk(r, b)
			}
		}
		r.bindingTarget(n.Rest)
		return nil

	case *ast.ForDeclaration:
		r.bindingTarget(n.Target)
		return nil

	case *ast.MethodDefinition:
		if n.Computed {
			walk(r, n.Key)
		}
		walk(r, n.Body)
		return nil

	case *ast.FieldDefinition:
		if n.Computed {
			walk(r, n.Key)
		}
		if n.Initializer != nil {
			walk(r, n.Initializer)
		}
		return nil

	case *ast.CatchStatement:
		if id, ok := n.Parameter.(*ast.Identifier); ok {
			r.renameOnly(id)
		} else if n.Parameter != nil {
			walk(r, n.Parameter)
		}
		walk(r, n.Body)
		return nil

	case *ast.LabelledStatement:
		walk(r, n.Statement)
		return nil

	case *ast.CallExpression:
		r.call(n)
		return r
	}
	return r
}

// identifier applies the rename map first; an untouched recognized constant
// becomes a property access on the instance handle.
func (r *rewriter) identifier(id *ast.Identifier) {
	name := string(id.Name)
	start := int(id.Idx) - 1
	if to, ok := r.renames[name]; ok {
		r.ed.replace(start, start+len(name), to)
		return
	}
	if r.table.Constant(name) {
		r.ed.insert(start, InstanceName+".")
	}
}

// renameOnly renames a binding target without ever qualifying it.
func (r *rewriter) renameOnly(id *ast.Identifier) {
	name := string(id.Name)
	if to, ok := r.renames[name]; ok {
		start := int(id.Idx) - 1
		r.ed.replace(start, start+len(name), to)
	}
}

// call qualifies a bare recognized library function in call position.
func (r *rewriter) call(c *ast.CallExpression) {
	id, ok := c.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	name := string(id.Name)
	if _, renamed := r.renames[name]; renamed {
		return
	}
	if r.table.Function(name) {
		r.ed.insert(int(id.Idx)-1, InstanceName+".")
	}
}

// shorthand expands { x } so the key text survives renaming of the value.
func (r *rewriter) shorthand(p *ast.PropertyShort) {
	name := string(p.Name.Name)
	end := int(p.Name.Idx) - 1 + len(name)
	if to, ok := r.renames[name]; ok {
		r.ed.insert(end, ": "+to)
	} else if r.table.Constant(name) {
		r.ed.insert(end, ": "+InstanceName+"."+name)
	}
	if p.Initializer != nil {
		walk(r, p.Initializer)
	}
}

// objectPattern walks default-value expressions; destructuring targets and
// keys must keep their spelling.
func (r *rewriter) objectPattern(p *ast.ObjectPattern) {
	for _, prop := range p.Properties {
		switch prop := prop.(type) {
		case *ast.PropertyShort:
			if prop.Initializer != nil {
				walk(r, prop.Initializer)
			}
		case *ast.PropertyKeyed:
			if prop.Computed {
				walk(r, prop.Key)
			}
			r.bindingElement(prop.Value)
		}
	}
	r.bindingTarget(p.Rest)
}

// bindingElement handles one destructuring element: plain targets and the
// left side of a default get rename treatment only, defaults and nested
// patterns walk normally.
func (r *rewriter) bindingElement(e ast.Expression) {
	switch e := e.(type) {
	case nil:
	case *ast.Identifier:
		r.renameOnly(e)
	case *ast.AssignExpression:
		r.bindingTarget(e.Left)
		walk(r, e.Right)
	default:
		walk(r, e)
	}
}

// bindingTarget renames a plain identifier target; pattern targets recurse.
// Targets never become property accesses.
func (r *rewriter) bindingTarget(t ast.Expression) {
	switch t := t.(type) {
	case nil:
	case *ast.Identifier:
		r.renameOnly(t)
	default:
		walk(r, t)
	}
}

// hoistLifecycle rewrites top-level lifecycle declarations into assignments
// on the instance handle.
func (r *rewriter) hoistLifecycle(prog *ast.Program) {
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			if s.Function.Name == nil {
				continue
			}
			if r.table.Lifecycle(string(s.Function.Name.Name)) {
				r.hoistFunction(s.Function)
			}

		case *ast.VariableStatement:
			if len(s.List) == 1 {
				r.hoistBinding(int(s.Idx0())-1, s.List[0])
			}

		case *ast.LexicalDeclaration:
			if len(s.List) == 1 {
				r.hoistBinding(int(s.Idx0())-1, s.List[0])
			}

		case *ast.ExpressionStatement:
			assign, ok := s.Expression.(*ast.AssignExpression)
			if !ok || assign.Operator != token.ASSIGN {
				continue
			}
			if id, ok := assign.Left.(*ast.Identifier); ok && r.table.Lifecycle(string(id.Name)) {
				r.ed.insert(int(id.Idx)-1, InstanceName+".")
			}
		}
	}
}

// hoistFunction turns `function setup(...) {...}` into
// `p.setup = function (...) {...};` keeping async/generator markers as they
// appear in the source text.
func (r *rewriter) hoistFunction(fl *ast.FunctionLiteral) {
	name := string(fl.Name.Name)
	start := int(fl.Idx0()) - 1
	if fl.Async {
		start = asyncStart(r.src, start)
	}
	nameStart := int(fl.Name.Idx) - 1
	r.ed.insert(start, InstanceName+"."+name+" = ")
	r.ed.replace(nameStart, nameStart+len(name), "")
	r.ed.insert(int(fl.Idx1())-1, ";")
}

// hoistBinding turns `const setup = () => {...}` (or a function expression)
// into `p.setup = () => {...}` by replacing the declaration keyword and name.
func (r *rewriter) hoistBinding(declStart int, b *ast.Binding) {
	id, ok := b.Target.(*ast.Identifier)
	if !ok {
		return
	}
	name := string(id.Name)
	if !r.table.Lifecycle(name) {
		return
	}
	switch b.Initializer.(type) {
	case *ast.ArrowFunctionLiteral, *ast.FunctionLiteral:
	default:
		return
	}
	nameEnd := int(id.Idx) - 1 + len(name)
	r.ed.replace(declStart, nameEnd, InstanceName+"."+name)
}

// asyncStart extends a function's start offset backward over a preceding
// `async` keyword when the parser anchors the literal at `function`.
func asyncStart(src string, start int) int {
	i := start
	for i > 0 && isSpace(src[i-1]) {
		i--
	}
	const kw = "async"
	if i >= len(kw) && src[i-len(kw):i] == kw {
		j := i - len(kw)
		if j == 0 || !isIdentChar(src[j-1]) {
			return j
		}
	}
	return start
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
