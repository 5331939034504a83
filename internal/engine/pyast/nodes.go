// Package pyast is the statement-level syntax model that stub generation works
// on. It only distinguishes the statement kinds a declaration file cares about;
// everything else is carried as Other and dropped by the rewriter.
package pyast

// Stmt is implemented by every statement node. The set is closed.
type Stmt interface {
	stmt()
}

type Module struct {
	Body []Stmt
}

// Import covers `import x`, `from x import y` and `from __future__ import y`.
type Import struct {
	Source string
	Future bool
}

// Assign is a plain (non-annotated) assignment kept verbatim.
type Assign struct {
	Source string
}

// AnnAssign is `target: annotation [= value]`.
type AnnAssign struct {
	Target     string
	Annotation string
	Value      string
	HasValue   bool
	// Simple reports whether Target is a bare identifier.
	Simple bool
	Source string
}

type FunctionDef struct {
	Decorators []string
	Async      bool
	Name       string
	TypeParams string
	Params     []Param
	Returns    string
	Body       []Stmt
	// Source is the original definition text without decorators. The parser
	// fills it for constructors and sets Verbatim, so they print as written.
	Source   string
	Verbatim bool
}

type ClassDef struct {
	Decorators []string
	Name       string
	TypeParams string
	// Bases is the raw superclass list including parentheses, or empty.
	Bases string
	Body  []Stmt
}

// Ellipsis is the `...` placeholder body.
type Ellipsis struct{}

// Other is any statement without stub semantics (expressions, control flow,
// comments, docstrings).
type Other struct {
	Kind   string
	Source string
}

func (*Import) stmt()      {}
func (*Assign) stmt()      {}
func (*AnnAssign) stmt()   {}
func (*FunctionDef) stmt() {}
func (*ClassDef) stmt()    {}
func (*Ellipsis) stmt()    {}
func (*Other) stmt()       {}

type ParamKind int

const (
	// ParamRegular is a named parameter: positional-only, positional or
	// keyword-only depending on its position relative to the markers.
	ParamRegular ParamKind = iota
	// ParamSlash is the positional-only marker `/`.
	ParamSlash
	// ParamStar is the bare keyword-only marker `*`.
	ParamStar
	ParamVarArgs
	ParamKwArgs
)

type Param struct {
	Kind       ParamKind
	Name       string
	Annotation string
	Default    string
	// Source is the original parameter text. An empty Source means the
	// parameter was built or modified and is rendered from its fields.
	Source string
}

// IsAnnotated reports whether the parameter carries a type annotation.
func (p Param) IsAnnotated() bool {
	return p.Annotation != ""
}

// IsConstructor reports whether f is an `__init__` method.
func (f *FunctionDef) IsConstructor() bool {
	return f.Name == ConstructorName
}

const (
	ConstructorName = "__init__"
	Placeholder     = "..."
)

// PlaceholderBody returns a fresh single-placeholder body.
func PlaceholderBody() []Stmt {
	return []Stmt{&Ellipsis{}}
}
