package parser

import (
	"strings"

	"ivrit/internal/engine/pyast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// stmtHandler lowers one statement node. Kinds without a handler become
// pyast.Other.
type stmtHandler func(b *builder, node *sitter.Node) pyast.Stmt

// builder lowers a tree-sitter Python tree into the pyast model. Every string
// it produces is copied out of source, so the tree can be closed afterwards.
type builder struct {
	source   []byte
	handlers map[string]stmtHandler
}

func newBuilder(source []byte) *builder {
	return &builder{
		source: source,
		handlers: map[string]stmtHandler{
			"import_statement":        (*builder).importStmt,
			"import_from_statement":   (*builder).importStmt,
			"future_import_statement": (*builder).importStmt,
			"expression_statement":    (*builder).expressionStmt,
			"function_definition": func(b *builder, node *sitter.Node) pyast.Stmt {
				return b.function(node, nil)
			},
			"class_definition": func(b *builder, node *sitter.Node) pyast.Stmt {
				return b.class(node, nil)
			},
			"decorated_definition": (*builder).decorated,
		},
	}
}

func (b *builder) module(root *sitter.Node) *pyast.Module {
	return &pyast.Module{Body: b.statements(root)}
}

func (b *builder) statements(node *sitter.Node) []pyast.Stmt {
	if node == nil {
		return nil
	}
	out := make([]pyast.Stmt, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		out = append(out, b.statement(node.NamedChild(i)))
	}
	return out
}

func (b *builder) statement(node *sitter.Node) pyast.Stmt {
	if handler, ok := b.handlers[node.Kind()]; ok {
		return handler(b, node)
	}
	return &pyast.Other{Kind: node.Kind(), Source: b.dedented(node)}
}

func (b *builder) importStmt(node *sitter.Node) pyast.Stmt {
	return &pyast.Import{
		Source: b.dedented(node),
		Future: node.Kind() == "future_import_statement",
	}
}

func (b *builder) expressionStmt(node *sitter.Node) pyast.Stmt {
	if node.NamedChildCount() != 1 || node.NamedChild(0).Kind() != "assignment" {
		return &pyast.Other{Kind: node.Kind(), Source: b.dedented(node)}
	}
	assignment := node.NamedChild(0)
	typeNode := assignment.ChildByFieldName("type")
	if typeNode == nil {
		return &pyast.Assign{Source: b.dedented(node)}
	}

	left := assignment.ChildByFieldName("left")
	ann := &pyast.AnnAssign{
		Target:     b.text(left),
		Annotation: b.text(typeNode),
		Simple:     left != nil && left.Kind() == "identifier",
		Source:     b.dedented(node),
	}
	if right := assignment.ChildByFieldName("right"); right != nil {
		ann.Value = b.text(right)
		ann.HasValue = true
	}
	return ann
}

func (b *builder) decorated(node *sitter.Node) pyast.Stmt {
	var decorators []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() != "decorator" {
			continue
		}
		dec := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(b.text(child)), "@"))
		if dec != "" {
			decorators = append(decorators, dec)
		}
	}

	definition := node.ChildByFieldName("definition")
	if definition == nil {
		return &pyast.Other{Kind: node.Kind(), Source: b.dedented(node)}
	}
	switch definition.Kind() {
	case "function_definition":
		return b.function(definition, decorators)
	case "class_definition":
		return b.class(definition, decorators)
	}
	return &pyast.Other{Kind: node.Kind(), Source: b.dedented(node)}
}

func (b *builder) function(node *sitter.Node, decorators []string) pyast.Stmt {
	fn := &pyast.FunctionDef{
		Decorators: decorators,
		Name:       b.text(node.ChildByFieldName("name")),
		TypeParams: b.text(node.ChildByFieldName("type_parameters")),
		Params:     b.params(node.ChildByFieldName("parameters")),
		Returns:    b.text(node.ChildByFieldName("return_type")),
		Body:       b.statements(node.ChildByFieldName("body")),
	}
	if fn.IsConstructor() {
		fn.Source = b.dedented(node)
		fn.Verbatim = true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		kind := node.Child(i).Kind()
		if kind == "async" {
			fn.Async = true
		}
		if kind == "def" {
			break
		}
	}
	return fn
}

func (b *builder) class(node *sitter.Node, decorators []string) pyast.Stmt {
	return &pyast.ClassDef{
		Decorators: decorators,
		Name:       b.text(node.ChildByFieldName("name")),
		TypeParams: b.text(node.ChildByFieldName("type_parameters")),
		Bases:      b.text(node.ChildByFieldName("superclasses")),
		Body:       b.statements(node.ChildByFieldName("body")),
	}
}

func (b *builder) params(node *sitter.Node) []pyast.Param {
	if node == nil {
		return nil
	}
	params := make([]pyast.Param, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		params = append(params, b.param(child))
	}
	return params
}

func (b *builder) param(node *sitter.Node) pyast.Param {
	param := pyast.Param{Kind: pyast.ParamRegular, Source: b.text(node)}

	switch node.Kind() {
	case "identifier":
		param.Name = param.Source
	case "positional_separator":
		param.Kind = pyast.ParamSlash
	case "keyword_separator":
		param.Kind = pyast.ParamStar
	case "list_splat_pattern", "dictionary_splat_pattern":
		param.Kind, param.Name = b.splat(node)
	case "typed_parameter":
		param.Annotation = b.text(node.ChildByFieldName("type"))
		if node.NamedChildCount() > 0 {
			target := node.NamedChild(0)
			switch target.Kind() {
			case "list_splat_pattern", "dictionary_splat_pattern":
				param.Kind, param.Name = b.splat(target)
			default:
				param.Name = b.text(target)
			}
		}
	case "default_parameter":
		param.Name = b.text(node.ChildByFieldName("name"))
		param.Default = b.text(node.ChildByFieldName("value"))
	case "typed_default_parameter":
		param.Name = b.text(node.ChildByFieldName("name"))
		param.Annotation = b.text(node.ChildByFieldName("type"))
		param.Default = b.text(node.ChildByFieldName("value"))
	default:
		param.Name = param.Source
	}
	return param
}

func (b *builder) splat(node *sitter.Node) (pyast.ParamKind, string) {
	kind := pyast.ParamVarArgs
	if node.Kind() == "dictionary_splat_pattern" {
		kind = pyast.ParamKwArgs
	}
	return kind, strings.TrimLeft(b.text(node), "*")
}

func (b *builder) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(b.source[node.StartByte():node.EndByte()])
}

// dedented returns the node text with the node's start column removed from
// every continuation line, so the printer can re-indent it at any depth.
func (b *builder) dedented(node *sitter.Node) string {
	text := strings.TrimRight(b.text(node), " \t\r\n")
	return pyast.Dedent(text, int(node.StartPosition().Column))
}
