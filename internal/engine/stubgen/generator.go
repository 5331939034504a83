// Package stubgen rewrites a parsed Python module into its declaration-only
// form: bodies erased, parameter annotations inferred from the naming policy,
// constructors synthesized from class-level annotations, imports added for
// every inferred type.
package stubgen

import (
	"ivrit/internal/engine/pyast"
	"ivrit/internal/shared/util"
)

// implicitReceivers are never annotated.
var implicitReceivers = map[string]bool{
	"self": true,
	"cls":  true,
}

// Result is the outcome of rewriting one module. When Changed is false the
// module needs no declaration file and Module is nil.
type Result struct {
	Module  *pyast.Module
	Changed bool
	// Needed holds the fully qualified type names introduced, sorted.
	Needed []string
	// Imports holds the module paths imported for Needed, sorted.
	Imports []string
	// Unmatched counts unannotated parameter names missing from the policy.
	Unmatched   map[string]int
	Inferred    int
	Synthesized int
}

// Stub renders the declaration source, or "" when nothing changed.
func (r Result) Stub() string {
	if !r.Changed {
		return ""
	}
	return pyast.Print(r.Module)
}

// Generate rewrites mod under policy. mod is not modified.
func Generate(mod *pyast.Module, policy Policy) Result {
	g := &generator{
		policy:    policy,
		needed:    make(map[string]bool),
		unmatched: make(map[string]int),
	}

	var body []pyast.Stmt
	changed := false
	if mod != nil {
		body, changed = g.block(mod.Body, nil)
	}

	res := Result{
		Changed:     changed,
		Unmatched:   g.unmatched,
		Inferred:    g.inferred,
		Synthesized: g.synthesized,
	}
	if !changed {
		return res
	}
	res.Needed = util.SortedStringKeys(g.needed)
	res.Imports = ResolveImports(res.Needed)
	res.Module = &pyast.Module{Body: InsertImports(body, res.Imports)}
	return res
}

type generator struct {
	policy      Policy
	needed      map[string]bool
	unmatched   map[string]int
	inferred    int
	synthesized int
}

// classScope buffers the annotated attributes of the class being visited.
// Each class visit owns one, so nesting restores the outer buffer on return.
type classScope struct {
	attrs []*pyast.AnnAssign
}

func (g *generator) block(body []pyast.Stmt, scope *classScope) ([]pyast.Stmt, bool) {
	out := make([]pyast.Stmt, 0, len(body))
	changed := false
	for _, s := range body {
		next, keep, c := g.visit(s, scope)
		changed = changed || c
		if keep {
			out = append(out, next)
		}
	}
	if len(out) == 0 {
		out = pyast.PlaceholderBody()
	}
	return out, changed
}

// visit returns the rewritten statement, whether it is kept, and whether
// anything under it changed.
func (g *generator) visit(s pyast.Stmt, scope *classScope) (pyast.Stmt, bool, bool) {
	switch n := s.(type) {
	case *pyast.FunctionDef:
		fn, changed := g.function(n)
		return fn, true, changed
	case *pyast.ClassDef:
		cls, changed := g.class(n)
		return cls, true, changed
	case *pyast.AnnAssign:
		if scope != nil && n.Simple {
			scope.attrs = append(scope.attrs, n)
		}
		return n, true, false
	case *pyast.Import, *pyast.Assign, *pyast.Ellipsis:
		return s, true, false
	default:
		return nil, false, false
	}
}

func (g *generator) function(n *pyast.FunctionDef) (*pyast.FunctionDef, bool) {
	if n.IsConstructor() {
		return n, false
	}

	fn := *n
	fn.Params = make([]pyast.Param, len(n.Params))
	copy(fn.Params, n.Params)

	changed := false
	for i := range fn.Params {
		if g.infer(&fn.Params[i]) {
			changed = true
		}
	}
	fn.Body = pyast.PlaceholderBody()
	return &fn, changed
}

func (g *generator) infer(p *pyast.Param) bool {
	if p.Kind != pyast.ParamRegular || p.IsAnnotated() || !isIdentifier(p.Name) {
		return false
	}
	if implicitReceivers[p.Name] || g.policy.IgnoresName(p.Name) {
		return false
	}

	fq, ok := g.policy.Lookup(p.Name)
	if !ok {
		g.unmatched[p.Name]++
		return false
	}

	p.Annotation = fq
	p.Source = ""
	g.needed[fq] = true
	g.inferred++
	return true
}

func (g *generator) class(n *pyast.ClassDef) (*pyast.ClassDef, bool) {
	scope := &classScope{}
	body, changed := g.block(n.Body, scope)

	if len(scope.attrs) > 0 && !hasConstructor(body) {
		body = append(body, synthesizeConstructor(scope.attrs))
		g.synthesized++
		changed = true
	}

	cls := *n
	cls.Body = body
	return &cls, changed
}

func hasConstructor(body []pyast.Stmt) bool {
	for _, s := range body {
		if fn, ok := s.(*pyast.FunctionDef); ok && fn.IsConstructor() {
			return true
		}
	}
	return false
}

// synthesizeConstructor builds `def __init__(self, *, a: A = x, ...): ...`
// with one keyword-only parameter per attribute, in declaration order.
func synthesizeConstructor(attrs []*pyast.AnnAssign) *pyast.FunctionDef {
	params := make([]pyast.Param, 0, len(attrs)+2)
	params = append(params,
		pyast.Param{Kind: pyast.ParamRegular, Name: "self"},
		pyast.Param{Kind: pyast.ParamStar},
	)
	for _, attr := range attrs {
		param := pyast.Param{
			Kind:       pyast.ParamRegular,
			Name:       attr.Target,
			Annotation: attr.Annotation,
		}
		if attr.HasValue {
			param.Default = attr.Value
		}
		params = append(params, param)
	}
	return &pyast.FunctionDef{
		Name:   pyast.ConstructorName,
		Params: params,
		Body:   pyast.PlaceholderBody(),
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	return true
}
