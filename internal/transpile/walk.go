package transpile

import "github.com/dop251/goja/ast"

// visitor is the traversal callback pair. Enter returns the visitor used
// for the node's children; returning nil prunes the subtree and skips the
// matching Exit.
type visitor interface {
	Enter(n ast.Node) visitor
	Exit(n ast.Node)
}

// walk drives v over n in source order. goja's ast package defines node
// types only, so child enumeration lives here. Pure-name positions that
// can never be variable references are not visited: member properties
// after '.', function and class declaration names, statement labels and
// new.target.
func walk(v visitor, n ast.Node) {
	if n == nil {
		return
	}
	w := v.Enter(n)
	if w == nil {
		return
	}

	switch n := n.(type) {
	case *ast.Program:
		walkStmts(w, n.Body)

	case *ast.ArrayLiteral:
		walkExprs(w, n.Value)
	case *ast.ArrayPattern:
		walkExprs(w, n.Elements)
		walk(w, n.Rest)
	case *ast.AssignExpression:
		walk(w, n.Left)
		walk(w, n.Right)
	case *ast.AwaitExpression:
		walk(w, n.Argument)
	case *ast.BinaryExpression:
		walk(w, n.Left)
		walk(w, n.Right)
	case *ast.Binding:
		walk(w, n.Target)
		walk(w, n.Initializer)
	case *ast.BracketExpression:
		walk(w, n.Left)
		walk(w, n.Member)
	case *ast.CallExpression:
		walk(w, n.Callee)
		walkExprs(w, n.ArgumentList)
	case *ast.ConditionalExpression:
		walk(w, n.Test)
		walk(w, n.Consequent)
		walk(w, n.Alternate)
	case *ast.DotExpression:
		walk(w, n.Left)
	case *ast.PrivateDotExpression:
		walk(w, n.Left)
	case *ast.OptionalChain:
		walk(w, n.Expression)
	case *ast.Optional:
		walk(w, n.Expression)
	case *ast.FunctionLiteral:
		if n.ParameterList != nil {
			walk(w, n.ParameterList)
		}
		walk(w, n.Body)
	case *ast.ArrowFunctionLiteral:
		if n.ParameterList != nil {
			walk(w, n.ParameterList)
		}
		walk(w, n.Body)
	case *ast.ClassLiteral:
		walk(w, n.SuperClass)
		for _, el := range n.Body {
			walk(w, el)
		}
	case *ast.ExpressionBody:
		walk(w, n.Expression)
	case *ast.NewExpression:
		walk(w, n.Callee)
		walkExprs(w, n.ArgumentList)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			walk(w, p)
		}
	case *ast.ObjectPattern:
		for _, p := range n.Properties {
			walk(w, p)
		}
		walk(w, n.Rest)
	case *ast.ParameterList:
		for _, b := range n.List {
			walk(w, b)
		}
		walk(w, n.Rest)
	case *ast.PropertyShort:
		walk(w, n.Initializer)
	case *ast.PropertyKeyed:
		walk(w, n.Key)
		walk(w, n.Value)
	case *ast.SpreadElement:
		walk(w, n.Expression)
	case *ast.SequenceExpression:
		walkExprs(w, n.Sequence)
	case *ast.TemplateLiteral:
		walk(w, n.Tag)
		walkExprs(w, n.Expressions)
	case *ast.UnaryExpression:
		walk(w, n.Operand)
	case *ast.YieldExpression:
		walk(w, n.Argument)

	case *ast.BlockStatement:
		walkStmts(w, n.List)
	case *ast.CaseStatement:
		walk(w, n.Test)
		walkStmts(w, n.Consequent)
	case *ast.CatchStatement:
		walk(w, n.Parameter)
		if n.Body != nil {
			walk(w, n.Body)
		}
	case *ast.DoWhileStatement:
		walk(w, n.Body)
		walk(w, n.Test)
	case *ast.ExpressionStatement:
		walk(w, n.Expression)
	case *ast.ForInStatement:
		walk(w, n.Into)
		walk(w, n.Source)
		walk(w, n.Body)
	case *ast.ForOfStatement:
		walk(w, n.Into)
		walk(w, n.Source)
		walk(w, n.Body)
	case *ast.ForStatement:
		walk(w, n.Initializer)
		walk(w, n.Test)
		walk(w, n.Update)
		walk(w, n.Body)
	case *ast.IfStatement:
		walk(w, n.Test)
		walk(w, n.Consequent)
		walk(w, n.Alternate)
	case *ast.LabelledStatement:
		walk(w, n.Statement)
	case *ast.ReturnStatement:
		walk(w, n.Argument)
	case *ast.SwitchStatement:
		walk(w, n.Discriminant)
		for _, cs := range n.Body {
			walk(w, cs)
		}
	case *ast.ThrowStatement:
		walk(w, n.Argument)
	case *ast.TryStatement:
		if n.Body != nil {
			walk(w, n.Body)
		}
		if n.Catch != nil {
			walk(w, n.Catch)
		}
		if n.Finally != nil {
			walk(w, n.Finally)
		}
	case *ast.VariableStatement:
		walkBindings(w, n.List)
	case *ast.LexicalDeclaration:
		walkBindings(w, n.List)
	case *ast.WhileStatement:
		walk(w, n.Test)
		walk(w, n.Body)
	case *ast.WithStatement:
		walk(w, n.Object)
		walk(w, n.Body)
	case *ast.FunctionDeclaration:
		walk(w, n.Function)
	case *ast.ClassDeclaration:
		walk(w, n.Class)

	case *ast.FieldDefinition:
		walk(w, n.Key)
		walk(w, n.Initializer)
	case *ast.MethodDefinition:
		walk(w, n.Key)
		if n.Body != nil {
			walk(w, n.Body)
		}
	case *ast.ClassStaticBlock:
		if n.Block != nil {
			walk(w, n.Block)
		}

	case *ast.ForLoopInitializerExpression:
		walk(w, n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		walkBindings(w, n.List)
	case *ast.ForLoopInitializerLexicalDecl:
		walkBindings(w, n.LexicalDeclaration.List)
	case *ast.ForIntoVar:
		if n.Binding != nil {
			walk(w, n.Binding)
		}
	case *ast.ForDeclaration:
		walk(w, n.Target)
	case *ast.ForIntoExpression:
		walk(w, n.Expression)
	}

	w.Exit(n)
}

func walkExprs(v visitor, list []ast.Expression) {
	for _, e := range list {
		walk(v, e)
	}
}

func walkStmts(v visitor, list []ast.Statement) {
	for _, s := range list {
		walk(v, s)
	}
}

func walkBindings(v visitor, list []*ast.Binding) {
	for _, b := range list {
		if b != nil {
			walk(v, b)
		}
	}
}
