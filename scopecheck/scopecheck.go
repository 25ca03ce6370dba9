// Package scopecheck defines an analyzer reporting misuses of recovery
// scopes that are not checked at runtime.
//
// The analyzer inspects every function body for scopes created with
// longjump.NewScope and reports:
//
//   - scopes whose Close is not deferred in the function that created them,
//   - scopes on which Set is called more than once, including from a loop
//     that does not also create the scope,
//   - scopes referenced from a function started with a go statement.
package scopecheck

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

const longjumpPath = "github.com/stealthrocket/longjump"

// Analyzer reports misuses of longjump recovery scopes.
var Analyzer = &analysis.Analyzer{
	Name:     "scopecheck",
	Doc:      "report misuses of longjump recovery scopes",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// scope tracks the uses of one scope variable within the function body that
// created it.
type scope struct {
	obj      types.Object
	created  token.Pos
	deferred bool
	closed   bool
	sets     int
}

func run(pass *analysis.Pass) (any, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
		(*ast.GoStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.FuncDecl:
			if n.Body != nil {
				checkBody(pass, n.Body)
			}
		case *ast.FuncLit:
			checkBody(pass, n.Body)
		case *ast.GoStmt:
			checkGoStmt(pass, n)
		}
	})
	return nil, nil
}

// checkBody collects the scopes created in body and the calls made on them.
// Nested function literals are checked on their own and skipped here.
func checkBody(pass *analysis.Pass, body *ast.BlockStmt) {
	var scopes []*scope
	lookup := func(obj types.Object) *scope {
		for _, s := range scopes {
			if s.obj == obj {
				return s
			}
		}
		return nil
	}

	var loops []*ast.BlockStmt
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ForStmt:
			loops = append(loops, n.Body)
		case *ast.RangeStmt:
			loops = append(loops, n.Body)
		}
		return true
	})
	// repeated reports whether a call at pos runs more than once for a single
	// creation of s.
	repeated := func(s *scope, pos token.Pos) bool {
		for _, loop := range loops {
			if loop.Pos() <= pos && pos < loop.End() && !(loop.Pos() <= s.created && s.created < loop.End()) {
				return true
			}
		}
		return false
	}

	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false

		case *ast.AssignStmt:
			for i, rhs := range n.Rhs {
				if i >= len(n.Lhs) || !isNewScope(pass.TypesInfo, rhs) {
					continue
				}
				if id, ok := n.Lhs[i].(*ast.Ident); ok && id.Name != "_" {
					if obj := pass.TypesInfo.ObjectOf(id); obj != nil && lookup(obj) == nil {
						scopes = append(scopes, &scope{obj: obj, created: rhs.Pos()})
					}
				}
			}

		case *ast.ValueSpec:
			for i, rhs := range n.Values {
				if i >= len(n.Names) || !isNewScope(pass.TypesInfo, rhs) {
					continue
				}
				if obj := pass.TypesInfo.ObjectOf(n.Names[i]); obj != nil {
					scopes = append(scopes, &scope{obj: obj, created: rhs.Pos()})
				}
			}

		case *ast.DeferStmt:
			if s := lookup(scopeMethodReceiver(pass.TypesInfo, n.Call, "Close")); s != nil {
				s.deferred = true
				s.closed = true
			}
			return false

		case *ast.CallExpr:
			if s := lookup(scopeMethodReceiver(pass.TypesInfo, n, "Close")); s != nil {
				s.closed = true
			}
			if s := lookup(scopeMethodReceiver(pass.TypesInfo, n, "Set")); s != nil {
				s.sets++
				if s.sets > 1 || repeated(s, n.Pos()) {
					pass.Reportf(n.Pos(), "Set called more than once on scope %s", s.obj.Name())
				}
			}
		}
		return true
	})

	for _, s := range scopes {
		switch {
		case !s.closed:
			pass.Reportf(s.created, "scope %s is never closed", s.obj.Name())
		case !s.deferred:
			pass.Reportf(s.created, "scope %s is not closed with defer", s.obj.Name())
		}
	}
}

// checkGoStmt reports scope variables declared outside of a go statement and
// referenced from within it, since the goroutine it starts does not own the
// thread of the scope.
func checkGoStmt(pass *analysis.Pass, stmt *ast.GoStmt) {
	reported := make(map[types.Object]bool)

	ast.Inspect(stmt.Call, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		obj, ok := pass.TypesInfo.Uses[id].(*types.Var)
		if !ok || reported[obj] || !isScopeType(obj.Type()) {
			return true
		}
		if obj.Pos() >= stmt.Pos() && obj.Pos() < stmt.End() {
			return true
		}
		reported[obj] = true
		pass.Reportf(id.Pos(), "scope %s is used from another goroutine", obj.Name())
		return true
	})
}

func isNewScope(info *types.Info, expr ast.Expr) bool {
	call, ok := astutil.Unparen(expr).(*ast.CallExpr)
	if !ok {
		return false
	}
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	return ok && fn.Name() == "NewScope" && fn.Pkg() != nil && fn.Pkg().Path() == longjumpPath
}

// scopeMethodReceiver returns the variable on which call invokes the scope
// method name, or nil if call is not such an invocation.
func scopeMethodReceiver(info *types.Info, call *ast.CallExpr, name string) types.Object {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return nil
	}
	fn, ok := typeutil.Callee(info, call).(*types.Func)
	if !ok {
		return nil
	}
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil || !isScopeType(recv.Type()) {
		return nil
	}
	id, ok := astutil.Unparen(sel.X).(*ast.Ident)
	if !ok {
		return nil
	}
	return info.ObjectOf(id)
}

func isScopeType(t types.Type) bool {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Name() == "Scope" && obj.Pkg() != nil && obj.Pkg().Path() == longjumpPath
}
