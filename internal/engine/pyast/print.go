package pyast

import (
	"strings"
)

const indentUnit = "    "

// Print renders mod as declaration source. Blocks are indented with four
// spaces, an empty block renders as the placeholder, and definitions that are
// not first in their block are preceded by a blank line.
func Print(mod *Module) string {
	if mod == nil {
		return ""
	}
	p := &printer{}
	p.block(mod.Body, 0)
	return p.b.String()
}

// FormatParams renders a parameter list without the surrounding parentheses.
func FormatParams(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, FormatParam(param))
	}
	return strings.Join(parts, ", ")
}

func FormatParam(p Param) string {
	if p.Source != "" {
		return p.Source
	}
	switch p.Kind {
	case ParamSlash:
		return "/"
	case ParamStar:
		return "*"
	case ParamVarArgs:
		return "*" + annotated(p.Name, p.Annotation)
	case ParamKwArgs:
		return "**" + annotated(p.Name, p.Annotation)
	}
	out := annotated(p.Name, p.Annotation)
	if p.Default == "" {
		return out
	}
	if p.Annotation != "" {
		return out + " = " + p.Default
	}
	return out + "=" + p.Default
}

func annotated(name, annotation string) string {
	if annotation == "" {
		return name
	}
	return name + ": " + annotation
}

type printer struct {
	b strings.Builder
}

func (p *printer) block(body []Stmt, depth int) {
	if len(body) == 0 {
		p.line(depth, Placeholder)
		return
	}
	for i, s := range body {
		if i > 0 && isDefinition(s) {
			p.b.WriteString("\n")
		}
		p.stmt(s, depth)
	}
}

func (p *printer) stmt(s Stmt, depth int) {
	switch n := s.(type) {
	case *Import:
		p.verbatim(depth, n.Source)
	case *Assign:
		p.verbatim(depth, n.Source)
	case *AnnAssign:
		if n.Source != "" {
			p.verbatim(depth, n.Source)
			return
		}
		text := n.Target + ": " + n.Annotation
		if n.HasValue {
			text += " = " + n.Value
		}
		p.verbatim(depth, text)
	case *Ellipsis:
		p.line(depth, Placeholder)
	case *FunctionDef:
		p.decorators(depth, n.Decorators)
		if n.Verbatim {
			p.verbatim(depth, n.Source)
			return
		}
		p.line(depth, functionHeader(n))
		p.block(n.Body, depth+1)
	case *ClassDef:
		p.decorators(depth, n.Decorators)
		p.line(depth, "class "+n.Name+n.TypeParams+n.Bases+":")
		p.block(n.Body, depth+1)
	case *Other:
		p.verbatim(depth, n.Source)
	}
}

func functionHeader(f *FunctionDef) string {
	var b strings.Builder
	if f.Async {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(f.Name)
	b.WriteString(f.TypeParams)
	b.WriteString("(")
	b.WriteString(FormatParams(f.Params))
	b.WriteString(")")
	if f.Returns != "" {
		b.WriteString(" -> ")
		b.WriteString(f.Returns)
	}
	b.WriteString(":")
	return b.String()
}

func (p *printer) decorators(depth int, decorators []string) {
	for _, dec := range decorators {
		p.line(depth, "@"+dec)
	}
}

func (p *printer) line(depth int, text string) {
	p.b.WriteString(strings.Repeat(indentUnit, depth))
	p.b.WriteString(text)
	p.b.WriteString("\n")
}

// verbatim writes dedented source text at depth, keeping its relative
// indentation. Lines inside string literals are written unchanged.
func (p *printer) verbatim(depth int, src string) {
	prefix := strings.Repeat(indentUnit, depth)
	src = strings.TrimRight(src, "\n")
	literal := literalLines(src)
	for i, ln := range strings.Split(src, "\n") {
		switch {
		case literal[i]:
		case strings.TrimSpace(ln) == "":
			ln = ""
		default:
			p.b.WriteString(prefix)
		}
		p.b.WriteString(ln)
		p.b.WriteString("\n")
	}
}

func isDefinition(s Stmt) bool {
	switch s.(type) {
	case *FunctionDef, *ClassDef:
		return true
	}
	return false
}
